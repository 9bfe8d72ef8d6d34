package store

import (
	"context"
	"time"

	"finance/internal/models"
)

type OrderStore struct {
	db DB
}

type orderRow struct {
	ID         string `db:"id"`
	UserID     string `db:"user_id"`
	Symbol     string `db:"symbol"`
	Name       string `db:"name"`
	Shares     int64  `db:"shares"`
	Price      int64  `db:"price"`
	ExecutedAt string `db:"executed_at"`
}

type OrderInput struct {
	ID         string
	UserID     string
	Symbol     string
	Name       string
	Shares     int64
	Price      int64
	ExecutedAt time.Time
}

func NewOrderStore(db DB) *OrderStore {
	return &OrderStore{db: db}
}

func (s *OrderStore) Create(ctx context.Context, tx Execer, input OrderInput) error {
	query := `
		INSERT INTO orders (id, user_id, symbol, name, shares, price, executed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := tx.ExecContext(ctx, query,
		input.ID, input.UserID, input.Symbol, input.Name, input.Shares, input.Price, formatTime(input.ExecutedAt),
	)
	return err
}

// ListByUser returns the user's orders oldest first. Orders sharing a
// timestamp keep insertion order.
func (s *OrderStore) ListByUser(ctx context.Context, userID string) ([]models.Order, error) {
	var rows []orderRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, user_id, symbol, name, shares, price, executed_at
		FROM orders
		WHERE user_id = ?
		ORDER BY executed_at ASC, rowid ASC
	`, userID)
	if err != nil {
		return nil, err
	}
	return orderRowsToModels(rows), nil
}

// SharesHeld is the net position in symbol, read through tx so a sell sees
// the same snapshot it writes against.
func (s *OrderStore) SharesHeld(ctx context.Context, tx Getter, userID, symbol string) (int64, error) {
	var shares int64
	err := tx.GetContext(ctx, &shares, `
		SELECT COALESCE(SUM(shares), 0)
		FROM orders
		WHERE user_id = ? AND symbol = ?
	`, userID, symbol)
	return shares, err
}

// HeldSymbols lists symbols with a positive net position, alphabetically.
func (s *OrderStore) HeldSymbols(ctx context.Context, userID string) ([]string, error) {
	var symbols []string
	err := s.db.SelectContext(ctx, &symbols, `
		SELECT symbol
		FROM orders
		WHERE user_id = ?
		GROUP BY symbol
		HAVING SUM(shares) > 0
		ORDER BY symbol ASC
	`, userID)
	if err != nil {
		return nil, err
	}
	return symbols, nil
}

func orderRowsToModels(rows []orderRow) []models.Order {
	orders := make([]models.Order, 0, len(rows))
	for _, row := range rows {
		orders = append(orders, models.Order{
			ID:         row.ID,
			UserID:     row.UserID,
			Symbol:     row.Symbol,
			Name:       row.Name,
			Shares:     row.Shares,
			Price:      row.Price,
			ExecutedAt: parseTime(row.ExecutedAt),
		})
	}
	return orders
}
