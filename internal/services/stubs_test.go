package services

import (
	"context"
	"database/sql"
	"sync"

	"finance/internal/models"
	"finance/internal/quote"
	"finance/internal/store"
	"finance/internal/websocket"

	"github.com/jmoiron/sqlx"
)

type fakeTxRunner struct {
	err error
}

func (f fakeTxRunner) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	if f.err != nil {
		return f.err
	}
	return fn(nil)
}

type stubUserStore struct {
	createFn        func(ctx context.Context, tx store.Execer, id, username, passwordHash string, cash int64) error
	getByUsernameFn func(ctx context.Context, username string) (models.User, error)
	getByIDFn       func(ctx context.Context, userID string) (models.User, error)
	getCashFn       func(ctx context.Context, tx store.Getter, userID string) (int64, error)
	updateCashFn    func(ctx context.Context, tx store.Execer, userID string, cash int64) error
}

func (s stubUserStore) Create(ctx context.Context, tx store.Execer, id, username, passwordHash string, cash int64) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, id, username, passwordHash, cash)
}

func (s stubUserStore) GetByUsername(ctx context.Context, username string) (models.User, error) {
	if s.getByUsernameFn == nil {
		return models.User{}, sql.ErrNoRows
	}
	return s.getByUsernameFn(ctx, username)
}

func (s stubUserStore) GetByID(ctx context.Context, userID string) (models.User, error) {
	if s.getByIDFn == nil {
		return models.User{}, sql.ErrNoRows
	}
	return s.getByIDFn(ctx, userID)
}

func (s stubUserStore) GetCash(ctx context.Context, tx store.Getter, userID string) (int64, error) {
	if s.getCashFn == nil {
		return 0, nil
	}
	return s.getCashFn(ctx, tx, userID)
}

func (s stubUserStore) UpdateCash(ctx context.Context, tx store.Execer, userID string, cash int64) error {
	if s.updateCashFn == nil {
		return nil
	}
	return s.updateCashFn(ctx, tx, userID, cash)
}

type stubOrderStore struct {
	createFn      func(ctx context.Context, tx store.Execer, input store.OrderInput) error
	listByUserFn  func(ctx context.Context, userID string) ([]models.Order, error)
	sharesHeldFn  func(ctx context.Context, tx store.Getter, userID, symbol string) (int64, error)
	heldSymbolsFn func(ctx context.Context, userID string) ([]string, error)
}

func (s stubOrderStore) Create(ctx context.Context, tx store.Execer, input store.OrderInput) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, input)
}

func (s stubOrderStore) ListByUser(ctx context.Context, userID string) ([]models.Order, error) {
	if s.listByUserFn == nil {
		return nil, nil
	}
	return s.listByUserFn(ctx, userID)
}

func (s stubOrderStore) SharesHeld(ctx context.Context, tx store.Getter, userID, symbol string) (int64, error) {
	if s.sharesHeldFn == nil {
		return 0, nil
	}
	return s.sharesHeldFn(ctx, tx, userID, symbol)
}

func (s stubOrderStore) HeldSymbols(ctx context.Context, userID string) ([]string, error) {
	if s.heldSymbolsFn == nil {
		return nil, nil
	}
	return s.heldSymbolsFn(ctx, userID)
}

type stubAuditStore struct {
	logFn func(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error
}

func (s stubAuditStore) Log(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error {
	if s.logFn == nil {
		return nil
	}
	return s.logFn(ctx, tx, actorID, action, entityType, entityID, data)
}

type stubHasher struct{}

func (stubHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }

func (stubHasher) Verify(hash, password string) bool { return hash == "hashed:"+password }

// fakeQuotes serves fixed prices; unknown symbols are not found.
type fakeQuotes struct {
	mu     sync.Mutex
	prices map[string]int64
	calls  int
}

func newFakeQuotes(prices map[string]int64) *fakeQuotes {
	return &fakeQuotes{prices: prices}
}

func (f *fakeQuotes) set(symbol string, price int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prices[symbol] = price
}

func (f *fakeQuotes) Lookup(_ context.Context, symbol string) (models.Quote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	price, ok := f.prices[symbol]
	if !ok {
		return models.Quote{}, quote.ErrNotFound
	}
	return models.Quote{Symbol: symbol, Name: symbol + " Inc", Price: price}, nil
}

type stubHub struct {
	mu    sync.Mutex
	calls []websocket.TradeUpdate
}

func (s *stubHub) BroadcastTrade(_ string, update websocket.TradeUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, update)
}
