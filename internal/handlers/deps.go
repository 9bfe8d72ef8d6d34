package handlers

import (
	"context"

	"finance/internal/models"
)

type AuthService interface {
	Register(ctx context.Context, username, password, confirmation string) (models.User, error)
	Login(ctx context.Context, username, password string) (models.User, error)
	CurrentUser(ctx context.Context, userID string) (models.User, error)
}

type TradeService interface {
	Quote(ctx context.Context, symbol string) (models.Quote, error)
	Buy(ctx context.Context, userID, symbol, shares string) (models.Order, error)
	Sell(ctx context.Context, userID, symbol, shares string) (models.Order, error)
	Portfolio(ctx context.Context, userID string) (models.Portfolio, error)
	History(ctx context.Context, userID string) ([]models.Order, error)
	HeldSymbols(ctx context.Context, userID string) ([]string, error)
}
