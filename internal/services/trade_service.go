package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"finance/internal/db"
	"finance/internal/models"
	"finance/internal/money"
	"finance/internal/store"
	"finance/internal/validator"
	"finance/internal/websocket"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

// maxQuoteFanout bounds concurrent lookups while pricing a portfolio.
const maxQuoteFanout = 4

type QuoteLookup interface {
	Lookup(ctx context.Context, symbol string) (models.Quote, error)
}

type CashStore interface {
	GetByID(ctx context.Context, userID string) (models.User, error)
	GetCash(ctx context.Context, tx store.Getter, userID string) (int64, error)
	UpdateCash(ctx context.Context, tx store.Execer, userID string, cash int64) error
}

type OrderStore interface {
	Create(ctx context.Context, tx store.Execer, input store.OrderInput) error
	ListByUser(ctx context.Context, userID string) ([]models.Order, error)
	SharesHeld(ctx context.Context, tx store.Getter, userID, symbol string) (int64, error)
	HeldSymbols(ctx context.Context, userID string) ([]string, error)
}

type TradeHub interface {
	BroadcastTrade(userID string, update websocket.TradeUpdate)
}

type TradeService struct {
	txRunner db.TxRunner
	users    CashStore
	orders   OrderStore
	audit    AuditStore
	quotes   QuoteLookup
	hub      TradeHub
	now      func() time.Time
}

func NewTradeService(txRunner db.TxRunner, users CashStore, orders OrderStore, audit AuditStore, quotes QuoteLookup, hub TradeHub) *TradeService {
	return &TradeService{
		txRunner: txRunner,
		users:    users,
		orders:   orders,
		audit:    audit,
		quotes:   quotes,
		hub:      hub,
		now:      time.Now,
	}
}

func (s *TradeService) Quote(ctx context.Context, rawSymbol string) (models.Quote, error) {
	symbol, err := validator.NormalizeSymbol(rawSymbol)
	if err != nil {
		return models.Quote{}, err
	}
	return s.quotes.Lookup(ctx, symbol)
}

// Buy checks, in order: symbol present, shares present, shares a positive
// integer, symbol resolvable, cash sufficient. The order row and the debit
// commit together.
func (s *TradeService) Buy(ctx context.Context, userID, rawSymbol, rawShares string) (models.Order, error) {
	symbol, shares, err := parseOrder(rawSymbol, rawShares)
	if err != nil {
		return models.Order{}, err
	}
	q, err := s.quotes.Lookup(ctx, symbol)
	if err != nil {
		return models.Order{}, err
	}
	cost, err := money.Total(q.Price, shares)
	if err != nil {
		return models.Order{}, ErrInsufficientFunds
	}

	order := s.newOrder(userID, q, shares)
	var cashAfter int64
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		cash, err := s.readCash(ctx, tx, userID)
		if err != nil {
			return err
		}
		if cash < cost {
			return ErrInsufficientFunds
		}
		cashAfter = cash - cost
		return s.record(ctx, tx, order, cashAfter, "order.buy")
	})
	if err != nil {
		return models.Order{}, err
	}
	s.announce(order, cashAfter)
	return order, nil
}

// Sell checks symbol and shares like Buy, then that the symbol resolves, then
// that the user holds some and at least the requested amount. The sale is a
// negative-share order at the current price.
func (s *TradeService) Sell(ctx context.Context, userID, rawSymbol, rawShares string) (models.Order, error) {
	symbol, shares, err := parseOrder(rawSymbol, rawShares)
	if err != nil {
		return models.Order{}, err
	}
	q, err := s.quotes.Lookup(ctx, symbol)
	if err != nil {
		return models.Order{}, err
	}
	proceeds, err := money.Total(q.Price, shares)
	if err != nil {
		return models.Order{}, ErrTooManyShares
	}

	order := s.newOrder(userID, q, -shares)
	var cashAfter int64
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		held, err := s.orders.SharesHeld(ctx, tx, userID, q.Symbol)
		if err != nil {
			return fmt.Errorf("read holdings: %w", err)
		}
		if held <= 0 {
			return ErrNoShares
		}
		if shares > held {
			return ErrTooManyShares
		}
		cash, err := s.readCash(ctx, tx, userID)
		if err != nil {
			return err
		}
		cashAfter = cash + proceeds
		if cashAfter < cash {
			return fmt.Errorf("cash overflow for user %s", userID)
		}
		return s.record(ctx, tx, order, cashAfter, "order.sell")
	})
	if err != nil {
		return models.Order{}, err
	}
	s.announce(order, cashAfter)
	return order, nil
}

func (s *TradeService) History(ctx context.Context, userID string) ([]models.Order, error) {
	return s.orders.ListByUser(ctx, userID)
}

// HeldSymbols feeds the sell form.
func (s *TradeService) HeldSymbols(ctx context.Context, userID string) ([]string, error) {
	return s.orders.HeldSymbols(ctx, userID)
}

// Portfolio replays the order log and prices each open position. A position
// whose quote fails is listed unpriced and left out of the total.
func (s *TradeService) Portfolio(ctx context.Context, userID string) (models.Portfolio, error) {
	user, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Portfolio{}, ErrUnknownUser
	}
	if err != nil {
		return models.Portfolio{}, fmt.Errorf("load user: %w", err)
	}
	orders, err := s.orders.ListByUser(ctx, userID)
	if err != nil {
		return models.Portfolio{}, fmt.Errorf("load orders: %w", err)
	}
	holdings := Replay(orders)
	names := lastNames(orders)

	positions := make([]models.Position, len(holdings))
	sem := make(chan struct{}, maxQuoteFanout)
	var wg sync.WaitGroup
	for i, h := range holdings {
		positions[i] = models.Position{Symbol: h.Symbol, Name: names[h.Symbol], Shares: h.Shares}
		wg.Add(1)
		go func(p *models.Position) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			q, err := s.quotes.Lookup(ctx, p.Symbol)
			if err != nil {
				return
			}
			value, err := money.Total(q.Price, p.Shares)
			if err != nil {
				return
			}
			p.Name = q.Name
			p.Price = q.Price
			p.Value = value
			p.Priced = true
		}(&positions[i])
	}
	wg.Wait()

	portfolio := models.Portfolio{Positions: positions, Cash: user.Cash, Total: user.Cash}
	for _, p := range positions {
		if p.Priced {
			portfolio.Total += p.Value
		}
	}
	return portfolio, nil
}

// Replay folds the order log into net holdings, sorted by symbol, leaving out
// symbols at zero.
func Replay(orders []models.Order) []models.Holding {
	net := make(map[string]int64)
	for _, o := range orders {
		net[o.Symbol] += o.Shares
	}
	holdings := make([]models.Holding, 0, len(net))
	for symbol, shares := range net {
		if shares == 0 {
			continue
		}
		holdings = append(holdings, models.Holding{Symbol: symbol, Shares: shares})
	}
	sort.Slice(holdings, func(i, j int) bool { return holdings[i].Symbol < holdings[j].Symbol })
	return holdings
}

func lastNames(orders []models.Order) map[string]string {
	names := make(map[string]string)
	for _, o := range orders {
		if o.Name != "" {
			names[o.Symbol] = o.Name
		}
	}
	return names
}

func (s *TradeService) readCash(ctx context.Context, tx *sqlx.Tx, userID string) (int64, error) {
	cash, err := s.users.GetCash(ctx, tx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrUnknownUser
	}
	if err != nil {
		return 0, fmt.Errorf("read cash: %w", err)
	}
	return cash, nil
}

func parseOrder(rawSymbol, rawShares string) (string, int64, error) {
	symbol, err := validator.NormalizeSymbol(rawSymbol)
	if err != nil {
		return "", 0, err
	}
	shares, err := validator.ParseShares(rawShares)
	if err != nil {
		return "", 0, err
	}
	return symbol, shares, nil
}

func (s *TradeService) newOrder(userID string, q models.Quote, shares int64) models.Order {
	return models.Order{
		ID:         uuid.NewString(),
		UserID:     userID,
		Symbol:     q.Symbol,
		Name:       q.Name,
		Shares:     shares,
		Price:      q.Price,
		ExecutedAt: s.now().UTC(),
	}
}

// record appends the order, sets the new balance and writes the audit row, all
// on tx.
func (s *TradeService) record(ctx context.Context, tx *sqlx.Tx, order models.Order, cashAfter int64, action string) error {
	if err := s.orders.Create(ctx, tx, store.OrderInput{
		ID:         order.ID,
		UserID:     order.UserID,
		Symbol:     order.Symbol,
		Name:       order.Name,
		Shares:     order.Shares,
		Price:      order.Price,
		ExecutedAt: order.ExecutedAt,
	}); err != nil {
		return fmt.Errorf("append order: %w", err)
	}
	if err := s.users.UpdateCash(ctx, tx, order.UserID, cashAfter); err != nil {
		return fmt.Errorf("update cash: %w", err)
	}
	data, err := json.Marshal(map[string]any{
		"symbol": order.Symbol,
		"shares": order.Shares,
		"price":  order.Price,
		"cash":   cashAfter,
	})
	if err != nil {
		return fmt.Errorf("encode audit data: %w", err)
	}
	return s.audit.Log(ctx, tx, order.UserID, action, "order", order.ID, string(data))
}

func (s *TradeService) announce(order models.Order, cashAfter int64) {
	log.Info().
		Str("user_id", order.UserID).
		Str("order_id", order.ID).
		Str("symbol", order.Symbol).
		Int64("shares", order.Shares).
		Int64("price", order.Price).
		Msg("trade executed")
	s.hub.BroadcastTrade(order.UserID, websocket.TradeUpdate{
		OrderID: order.ID,
		Symbol:  order.Symbol,
		Shares:  order.Shares,
		Price:   money.FormatUSD(order.Price),
		Cash:    money.FormatUSD(cashAfter),
	})
}
