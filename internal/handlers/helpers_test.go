package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"finance/internal/config"
	"finance/internal/middleware"
	"finance/internal/models"
	"finance/internal/websocket"
)

type stubAuthService struct {
	registerFn func(ctx context.Context, username, password, confirmation string) (models.User, error)
	loginFn    func(ctx context.Context, username, password string) (models.User, error)
	currentFn  func(ctx context.Context, userID string) (models.User, error)
}

func (s stubAuthService) Register(ctx context.Context, username, password, confirmation string) (models.User, error) {
	if s.registerFn == nil {
		return models.User{ID: "user-1", Username: username}, nil
	}
	return s.registerFn(ctx, username, password, confirmation)
}

func (s stubAuthService) Login(ctx context.Context, username, password string) (models.User, error) {
	if s.loginFn == nil {
		return models.User{ID: "user-1", Username: username}, nil
	}
	return s.loginFn(ctx, username, password)
}

func (s stubAuthService) CurrentUser(ctx context.Context, userID string) (models.User, error) {
	if s.currentFn == nil {
		return models.User{ID: userID}, nil
	}
	return s.currentFn(ctx, userID)
}

type stubTradeService struct {
	quoteFn       func(ctx context.Context, symbol string) (models.Quote, error)
	buyFn         func(ctx context.Context, userID, symbol, shares string) (models.Order, error)
	sellFn        func(ctx context.Context, userID, symbol, shares string) (models.Order, error)
	portfolioFn   func(ctx context.Context, userID string) (models.Portfolio, error)
	historyFn     func(ctx context.Context, userID string) ([]models.Order, error)
	heldSymbolsFn func(ctx context.Context, userID string) ([]string, error)
}

func (s stubTradeService) Quote(ctx context.Context, symbol string) (models.Quote, error) {
	if s.quoteFn == nil {
		return models.Quote{}, nil
	}
	return s.quoteFn(ctx, symbol)
}

func (s stubTradeService) Buy(ctx context.Context, userID, symbol, shares string) (models.Order, error) {
	if s.buyFn == nil {
		return models.Order{}, nil
	}
	return s.buyFn(ctx, userID, symbol, shares)
}

func (s stubTradeService) Sell(ctx context.Context, userID, symbol, shares string) (models.Order, error) {
	if s.sellFn == nil {
		return models.Order{}, nil
	}
	return s.sellFn(ctx, userID, symbol, shares)
}

func (s stubTradeService) Portfolio(ctx context.Context, userID string) (models.Portfolio, error) {
	if s.portfolioFn == nil {
		return models.Portfolio{}, nil
	}
	return s.portfolioFn(ctx, userID)
}

func (s stubTradeService) History(ctx context.Context, userID string) ([]models.Order, error) {
	if s.historyFn == nil {
		return nil, nil
	}
	return s.historyFn(ctx, userID)
}

func (s stubTradeService) HeldSymbols(ctx context.Context, userID string) ([]string, error) {
	if s.heldSymbolsFn == nil {
		return nil, nil
	}
	return s.heldSymbolsFn(ctx, userID)
}

func testConfig() config.Config {
	return config.Config{
		AppEnv:         "test",
		Port:           "0",
		SessionSecret:  "secret",
		SessionTTL:     time.Minute,
		AllowedOrigins: "*",
		APIKey:         "pk_test",
	}
}

func newTestHandler(auth AuthService, trade TradeService) http.Handler {
	return New(testConfig(), auth, trade, websocket.NewHub()).Routes()
}

func sessionCookie(t *testing.T, userID string) *http.Cookie {
	t.Helper()
	cfg := testConfig()
	rr := httptest.NewRecorder()
	sessions := middleware.Sessions{Secret: cfg.SessionSecret, TTL: cfg.SessionTTL}
	if err := sessions.Start(rr, userID); err != nil {
		t.Fatalf("failed to start session: %v", err)
	}
	return rr.Result().Cookies()[0]
}

func serve(handler http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func get(path string, cookies ...*http.Cookie) *http.Request {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return req
}

func postForm(path string, form url.Values, cookies ...*http.Cookie) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return req
}

func findCookie(rr *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rr.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}
