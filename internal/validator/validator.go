package validator

import (
	"regexp"
	"strconv"
	"strings"

	"finance/internal/apperr"

	validation "github.com/go-ozzo/ozzo-validation"
)

var (
	ErrMissingUsername  = apperr.New(apperr.KindValidation, "must provide username")
	ErrInvalidUsername  = apperr.New(apperr.KindValidation, "invalid username")
	ErrMissingPassword  = apperr.New(apperr.KindValidation, "must provide password")
	ErrPasswordMismatch = apperr.New(apperr.KindValidation, "passwords do not match")
	ErrPasswordTooLong  = apperr.New(apperr.KindValidation, "password too long")
	ErrMissingSymbol    = apperr.New(apperr.KindValidation, "missing symbol")
	ErrMissingShares    = apperr.New(apperr.KindValidation, "missing shares")
	ErrInvalidShares    = apperr.New(apperr.KindValidation, "invalid shares")
)

var (
	sharesRegex = regexp.MustCompile(`^\+?[0-9]+$`)
)

// ValidateUsername returns the trimmed username.
func ValidateUsername(username string) (string, error) {
	username = strings.TrimSpace(username)
	if err := validation.Validate(username, validation.Required); err != nil {
		return "", ErrMissingUsername
	}
	if err := validation.Validate(username, validation.RuneLength(1, 64)); err != nil {
		return "", ErrInvalidUsername
	}
	return username, nil
}

func ValidatePassword(password string) error {
	if err := validation.Validate(password, validation.Required); err != nil {
		return ErrMissingPassword
	}
	return nil
}

// maxPasswordBytes is the most bcrypt will hash.
const maxPasswordBytes = 72

func ValidateRegistrationPassword(password, confirmation string) error {
	if err := ValidatePassword(password); err != nil {
		return err
	}
	// Length counts bytes for strings, which is what bcrypt limits.
	if err := validation.Validate(password, validation.Length(1, maxPasswordBytes)); err != nil {
		return ErrPasswordTooLong
	}
	if password != confirmation {
		return ErrPasswordMismatch
	}
	return nil
}

// NormalizeSymbol trims and upper-cases a ticker symbol.
func NormalizeSymbol(symbol string) (string, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if err := validation.Validate(symbol, validation.Required); err != nil {
		return "", ErrMissingSymbol
	}
	return symbol, nil
}

// ParseShares accepts only positive whole numbers.
func ParseShares(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if err := validation.Validate(raw, validation.Required); err != nil {
		return 0, ErrMissingShares
	}
	if err := validation.Validate(raw, validation.Match(sharesRegex)); err != nil {
		return 0, ErrInvalidShares
	}
	shares, err := strconv.ParseInt(strings.TrimPrefix(raw, "+"), 10, 64)
	if err != nil || shares <= 0 {
		return 0, ErrInvalidShares
	}
	return shares, nil
}
