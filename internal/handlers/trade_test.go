package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"finance/internal/models"
	"finance/internal/quote"
	"finance/internal/services"
	"finance/internal/websocket"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProtectedPagesRedirectToLogin(t *testing.T) {
	handler := newTestHandler(stubAuthService{}, stubTradeService{})
	for _, path := range []string{"/", "/buy", "/sell", "/quote", "/history"} {
		rr := serve(handler, get(path))
		assert.Equal(t, http.StatusFound, rr.Code, path)
		assert.Equal(t, "/login", rr.Header().Get("Location"), path)
	}
	rr := serve(handler, postForm("/buy", url.Values{"symbol": {"NFLX"}, "shares": {"1"}}))
	assert.Equal(t, http.StatusFound, rr.Code)
}

func TestIndexShowsPortfolioAndFlash(t *testing.T) {
	handler := newTestHandler(stubAuthService{}, stubTradeService{
		portfolioFn: func(_ context.Context, userID string) (models.Portfolio, error) {
			assert.Equal(t, "user-1", userID)
			return models.Portfolio{
				Positions: []models.Position{
					{Symbol: "NFLX", Name: "Netflix Inc", Shares: 6, Price: 60000, Value: 360000, Priced: true},
					{Symbol: "GONE", Name: "Delisted", Shares: 1},
				},
				Cash:  740000,
				Total: 1100000,
			}, nil
		},
	})

	req := get("/", sessionCookie(t, "user-1"))
	req.AddCookie(&http.Cookie{Name: "flash", Value: "U29sZCE"})
	rr := serve(handler, req)
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "Netflix Inc")
	assert.Contains(t, body, "$3,600.00")
	assert.Contains(t, body, "$7,400.00")
	assert.Contains(t, body, "$11,000.00")
	assert.Contains(t, body, "unavailable")
	assert.Contains(t, body, "Sold!")
	assert.Equal(t, "no-cache, no-store, must-revalidate", rr.Header().Get("Cache-Control"))
}

func TestBuyRedirectsWithFlash(t *testing.T) {
	var got [3]string
	handler := newTestHandler(stubAuthService{}, stubTradeService{
		buyFn: func(_ context.Context, userID, symbol, shares string) (models.Order, error) {
			got = [3]string{userID, symbol, shares}
			return models.Order{ID: "o1"}, nil
		},
	})
	rr := serve(handler, postForm("/buy", url.Values{"symbol": {"nflx"}, "shares": {"10"}}, sessionCookie(t, "user-1")))
	assert.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "/", rr.Header().Get("Location"))
	assert.Equal(t, [3]string{"user-1", "nflx", "10"}, got)
	assert.NotNil(t, findCookie(rr, "flash"))
}

func TestTradeErrorsRenderApology(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		text   string
	}{
		{"unknown symbol", quote.ErrNotFound, http.StatusBadRequest, "INVALID SYMBOL"},
		{"too many shares", services.ErrTooManyShares, http.StatusBadRequest, "MORE SHARES THAN YOU OWN"},
		{"internal", errors.New("database is locked"), http.StatusInternalServerError, "INTERNAL SERVER ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := newTestHandler(stubAuthService{}, stubTradeService{
				sellFn: func(context.Context, string, string, string) (models.Order, error) {
					return models.Order{}, tt.err
				},
			})
			rr := serve(handler, postForm("/sell", url.Values{"symbol": {"NFLX"}, "shares": {"7"}}, sessionCookie(t, "user-1")))
			assert.Equal(t, tt.status, rr.Code)
			assert.Contains(t, rr.Body.String(), tt.text)
			assert.NotContains(t, rr.Body.String(), "database is locked")
			assert.Nil(t, findCookie(rr, "flash"))
		})
	}
}

func TestQuoteRendersPrice(t *testing.T) {
	handler := newTestHandler(stubAuthService{}, stubTradeService{
		quoteFn: func(_ context.Context, symbol string) (models.Quote, error) {
			assert.Equal(t, "nflx", symbol)
			return models.Quote{Symbol: "NFLX", Name: "Netflix Inc", Price: 50000}, nil
		},
	})
	rr := serve(handler, postForm("/quote", url.Values{"symbol": {"nflx"}}, sessionCookie(t, "user-1")))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "A share of Netflix Inc (NFLX) costs $500.00.")
}

func TestSellFormListsHeldSymbols(t *testing.T) {
	handler := newTestHandler(stubAuthService{}, stubTradeService{
		heldSymbolsFn: func(context.Context, string) ([]string, error) {
			return []string{"AAPL", "NFLX"}, nil
		},
	})
	rr := serve(handler, get("/sell", sessionCookie(t, "user-1")))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `<option value="AAPL">AAPL</option>`)
	assert.Contains(t, rr.Body.String(), `<option value="NFLX">NFLX</option>`)
}

func TestHistoryListsOrders(t *testing.T) {
	handler := newTestHandler(stubAuthService{}, stubTradeService{
		historyFn: func(context.Context, string) ([]models.Order, error) {
			return []models.Order{
				{Symbol: "NFLX", Shares: 10, Price: 50000, ExecutedAt: time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)},
				{Symbol: "NFLX", Shares: -4, Price: 60000, ExecutedAt: time.Date(2024, 3, 2, 9, 30, 0, 0, time.UTC)},
			}, nil
		},
	})
	rr := serve(handler, get("/history", sessionCookie(t, "user-1")))
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "2024-03-01 09:30:00")
	assert.Contains(t, body, ">-4<")
	assert.Contains(t, body, "$600.00")
}

func TestHealth(t *testing.T) {
	handler := newTestHandler(stubAuthService{}, stubTradeService{})
	rr := serve(handler, get("/health"))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}

func TestViewsParse(t *testing.T) {
	v, err := loadViews()
	require.NoError(t, err)
	assert.Len(t, v, len(pages))
}

func TestDeletedUserSessionIsCleared(t *testing.T) {
	gone := stubAuthService{
		currentFn: func(context.Context, string) (models.User, error) {
			return models.User{}, services.ErrUnknownUser
		},
	}
	handler := newTestHandler(gone, stubTradeService{
		portfolioFn: func(context.Context, string) (models.Portfolio, error) {
			t.Fatal("portfolio loaded for a deleted user")
			return models.Portfolio{}, nil
		},
	})
	for _, path := range []string{"/", "/history", "/ws/portfolio"} {
		rr := serve(handler, get(path, sessionCookie(t, "user-1")))
		assert.Equal(t, http.StatusFound, rr.Code, path)
		assert.Equal(t, "/login", rr.Header().Get("Location"), path)
		cleared := findCookie(rr, "session")
		require.NotNil(t, cleared, path)
		assert.Empty(t, cleared.Value)
		assert.Negative(t, cleared.MaxAge)
	}
}

func TestTradeForDeletedUserClearsSession(t *testing.T) {
	handler := newTestHandler(stubAuthService{}, stubTradeService{
		buyFn: func(context.Context, string, string, string) (models.Order, error) {
			return models.Order{}, services.ErrUnknownUser
		},
	})
	rr := serve(handler, postForm("/buy", url.Values{"symbol": {"NFLX"}, "shares": {"1"}}, sessionCookie(t, "user-1")))
	assert.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "/login", rr.Header().Get("Location"))
	require.NotNil(t, findCookie(rr, "session"))
	assert.Empty(t, findCookie(rr, "session").Value)
}

func TestSessionCheckFailureRendersApology(t *testing.T) {
	handler := newTestHandler(stubAuthService{
		currentFn: func(context.Context, string) (models.User, error) {
			return models.User{}, errors.New("disk I/O error")
		},
	}, stubTradeService{})
	rr := serve(handler, get("/", sessionCookie(t, "user-1")))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, rr.Body.String(), "INTERNAL SERVER ERROR")
	assert.Nil(t, findCookie(rr, "session"))
}

func TestUnknownRoutesRenderApology(t *testing.T) {
	handler := newTestHandler(stubAuthService{}, stubTradeService{})

	rr := serve(handler, get("/nope"))
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "text/html; charset=utf-8", rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Body.String(), "NOT FOUND")

	rr = serve(handler, httptest.NewRequest(http.MethodDelete, "/login", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	assert.Contains(t, rr.Body.String(), "METHOD NOT ALLOWED")
}

func TestPanicRendersApology(t *testing.T) {
	h := New(testConfig(), stubAuthService{}, stubTradeService{}, websocket.NewHub())
	handler := h.recoverPanic(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("nil map write")
	}))
	rr := serve(handler, get("/"))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, rr.Body.String(), "INTERNAL SERVER ERROR")
	assert.NotContains(t, rr.Body.String(), "nil map write")

	aborting := h.recoverPanic(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	}))
	assert.PanicsWithValue(t, http.ErrAbortHandler, func() { serve(aborting, get("/")) })
}
