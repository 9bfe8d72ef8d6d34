package services

import "finance/internal/apperr"

var (
	ErrInsufficientFunds  = apperr.New(apperr.KindValidation, "can't afford")
	ErrNoShares           = apperr.New(apperr.KindValidation, "you don't own any shares of this stock")
	ErrTooManyShares      = apperr.New(apperr.KindValidation, "you are trying to sell more shares than you own")
	ErrUsernameTaken      = apperr.New(apperr.KindValidation, "username already exists")
	ErrInvalidCredentials = apperr.New(apperr.KindAuth, "invalid username and/or password")
	ErrLoginUsername      = apperr.New(apperr.KindAuth, "must provide username")
	ErrLoginPassword      = apperr.New(apperr.KindAuth, "must provide password")
	// ErrUnknownUser means a signed session names a user that is gone.
	ErrUnknownUser = apperr.New(apperr.KindAuth, "please log in again")
)
