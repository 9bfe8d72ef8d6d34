package handlers

import (
	"net/http"
	"strings"

	"finance/internal/config"
	"finance/internal/middleware"
	"finance/internal/websocket"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type Handler struct {
	cfg      config.Config
	sessions middleware.Sessions
	auth     AuthService
	trade    TradeService
	hub      *websocket.Hub
	views    views
}

func New(cfg config.Config, auth AuthService, trade TradeService, hub *websocket.Hub) *Handler {
	return &Handler{
		cfg: cfg,
		sessions: middleware.Sessions{
			Secret: cfg.SessionSecret,
			TTL:    cfg.SessionTTL,
			Secure: cfg.IsProduction(),
		},
		auth:  auth,
		trade: trade,
		hub:   hub,
		views: mustLoadViews(),
	}
}

func (h *Handler) Routes() http.Handler {
	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(middleware.RequestLogger)
	router.Use(h.recoverPanic)
	router.Use(middleware.NoCache)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   splitOrigins(h.cfg.AllowedOrigins),
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Get("/login", h.LoginForm)
	router.Post("/login", h.Login)
	router.Get("/logout", h.Logout)
	router.Get("/register", h.RegisterForm)
	router.Post("/register", h.Register)

	router.Group(func(r chi.Router) {
		r.Use(h.sessions.Require)
		r.Use(h.requireUser)
		r.Get("/", h.Index)
		r.Get("/buy", h.BuyForm)
		r.Post("/buy", h.Buy)
		r.Get("/sell", h.SellForm)
		r.Post("/sell", h.Sell)
		r.Get("/quote", h.QuoteForm)
		r.Post("/quote", h.Quote)
		r.Get("/history", h.History)
		r.Get("/ws/portfolio", h.WSPortfolio)
	})

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		h.views.apologyStatus(w, false, http.StatusNotFound, http.StatusText(http.StatusNotFound))
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		h.views.apologyStatus(w, false, http.StatusMethodNotAllowed, http.StatusText(http.StatusMethodNotAllowed))
	})
	return router
}

func splitOrigins(raw string) []string {
	var origins []string
	for _, origin := range strings.Split(raw, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
