package store

import (
	"context"
	"database/sql"

	"finance/internal/models"
)

type UserStore struct {
	db DB
}

func NewUserStore(db DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) Create(ctx context.Context, tx Execer, id, username, passwordHash string, cash int64) error {
	query := `
		INSERT INTO users (id, username, hash, cash)
		VALUES (?, ?, ?, ?)
	`
	_, err := tx.ExecContext(ctx, query, id, username, passwordHash, cash)
	return err
}

func (s *UserStore) GetByUsername(ctx context.Context, username string) (models.User, error) {
	var user models.User
	err := s.db.GetContext(ctx, &user, `SELECT id, username, hash, cash FROM users WHERE username = ?`, username)
	return user, err
}

func (s *UserStore) GetByID(ctx context.Context, userID string) (models.User, error) {
	var user models.User
	err := s.db.GetContext(ctx, &user, `SELECT id, username, hash, cash FROM users WHERE id = ?`, userID)
	return user, err
}

// GetCash reads the balance through tx so it sees the transaction's own writes.
func (s *UserStore) GetCash(ctx context.Context, tx Getter, userID string) (int64, error) {
	var cash int64
	err := tx.GetContext(ctx, &cash, `SELECT cash FROM users WHERE id = ?`, userID)
	return cash, err
}

func (s *UserStore) UpdateCash(ctx context.Context, tx Execer, userID string, cash int64) error {
	result, err := tx.ExecContext(ctx, `UPDATE users SET cash = ? WHERE id = ?`, cash, userID)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
