// Package money handles dollar amounts as int64 cents.
package money

import (
	"errors"
	"math"
	"strconv"
	"strings"

	gomoney "github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrTooManyDecimals = errors.New("amount has too many decimal places")
	ErrOverflow        = errors.New("amount out of range")
)

var maxMinor = decimal.NewFromInt(math.MaxInt64)

func ParseMinor(input string) (int64, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return 0, ErrInvalidAmount
	}
	sign := int64(1)
	switch trimmed[0] {
	case '-':
		sign = -1
		trimmed = trimmed[1:]
	case '+':
		trimmed = trimmed[1:]
	}
	parts := strings.SplitN(trimmed, ".", 2)
	wholePart := parts[0]
	if wholePart == "" {
		wholePart = "0"
	}
	if !isDigits(wholePart) {
		return 0, ErrInvalidAmount
	}
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if len(fracPart) > 2 {
		return 0, ErrTooManyDecimals
	}
	if fracPart != "" && !isDigits(fracPart) {
		return 0, ErrInvalidAmount
	}
	whole, err := strconv.ParseInt(wholePart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	frac := int64(0)
	if len(fracPart) == 1 {
		frac = int64(fracPart[0]-'0') * 10
	} else if len(fracPart) == 2 {
		value, err := strconv.ParseInt(fracPart, 10, 64)
		if err != nil {
			return 0, ErrInvalidAmount
		}
		frac = value
	}
	if whole > (math.MaxInt64-frac)/100 {
		return 0, ErrOverflow
	}
	minor := whole*100 + frac
	return sign * minor, nil
}

// FormatUSD renders cents the way the pages show them, e.g. $1,234.56.
func FormatUSD(value int64) string {
	return gomoney.New(value, gomoney.USD).Display()
}

// FromDecimal converts a dollar price to cents, rounding half away from zero.
func FromDecimal(price decimal.Decimal) (int64, error) {
	cents := price.Shift(2).Round(0)
	if cents.Abs().GreaterThan(maxMinor) {
		return 0, ErrOverflow
	}
	return cents.IntPart(), nil
}

// Total is priceMinor × shares, failing instead of wrapping around.
func Total(priceMinor, shares int64) (int64, error) {
	total := decimal.NewFromInt(priceMinor).Mul(decimal.NewFromInt(shares))
	if total.Abs().GreaterThan(maxMinor) {
		return 0, ErrOverflow
	}
	return total.IntPart(), nil
}

func isDigits(value string) bool {
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
