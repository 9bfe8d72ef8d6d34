package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"finance/internal/auth"
	"finance/internal/config"
	"finance/internal/db"
	"finance/internal/handlers"
	"finance/internal/logging"
	"finance/internal/quote"
	"finance/internal/services"
	"finance/internal/store"
	"finance/internal/websocket"

	"github.com/rs/zerolog/log"
)

func main() {
	cfg := config.Load()
	logging.Setup(cfg.AppEnv, cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	database, err := db.Connect(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DatabasePath).Msg("failed to open database")
	}
	defer database.Close()
	if err := db.EnsureSchema(context.Background(), database); err != nil {
		log.Fatal().Err(err).Msg("failed to create schema")
	}

	users := store.NewUserStore(database)
	orders := store.NewOrderStore(database)
	audit := store.NewAuditStore(database)
	txRunner := db.NewTxRunner(database)
	hub := websocket.NewHub()
	quotes := quote.NewClient(quote.Config{
		BaseURL:    cfg.QuoteBaseURL,
		APIKey:     cfg.APIKey,
		NamePath:   cfg.QuoteNamePath,
		PricePath:  cfg.QuotePricePath,
		SymbolPath: cfg.QuoteSymbolPath,
		Timeout:    cfg.QuoteTimeout,
	}, &http.Client{})

	authService := services.NewAuthService(txRunner, users, audit, auth.BcryptHasher{}, cfg.StartingCash)
	tradeService := services.NewTradeService(txRunner, users, orders, audit, quotes, hub)

	handler := handlers.New(cfg, authService, tradeService, hub)
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler.Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10*time.Second + cfg.QuoteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Str("env", cfg.AppEnv).Msg("finance listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	<-shutdown
	log.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	}
}
