// Package quote looks up current prices from the external quote service.
package quote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"finance/internal/apperr"
	"finance/internal/models"
	"finance/internal/money"

	"github.com/PaesslerAG/jsonpath"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// ErrNotFound covers unknown symbols and every failed lookup, timeouts included.
var ErrNotFound = apperr.New(apperr.KindNotFound, "invalid symbol")

type Config struct {
	BaseURL    string
	APIKey     string
	NamePath   string
	PricePath  string
	SymbolPath string
	Timeout    time.Duration
}

type Client struct {
	http *http.Client
	cfg  Config
}

func NewClient(cfg Config, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	return &Client{http: httpClient, cfg: cfg}
}

// Lookup returns the current quote for symbol. The symbol is expected to be
// normalized already; an empty symbol is not found.
func (c *Client) Lookup(ctx context.Context, symbol string) (models.Quote, error) {
	if symbol == "" {
		return models.Quote{}, ErrNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	payload, err := c.get(ctx, c.endpoint(symbol))
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.Warn().Err(err).Str("symbol", symbol).Msg("quote lookup failed")
		}
		return models.Quote{}, ErrNotFound
	}
	q, err := c.decode(symbol, payload)
	if err != nil {
		log.Warn().Err(err).Str("symbol", symbol).Msg("unusable quote payload")
		return models.Quote{}, ErrNotFound
	}
	return q, nil
}

func (c *Client) endpoint(symbol string) string {
	return fmt.Sprintf("%s/stock/%s/quote?token=%s", c.cfg.BaseURL, url.PathEscape(symbol), url.QueryEscape(c.cfg.APIKey))
}

// get performs the GET and decodes the JSON body, keeping numbers exact.
func (c *Client) get(ctx context.Context, addr string) (any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusBadRequest:
		return nil, ErrNotFound
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("quote service %s: %s", req.URL.Host, resp.Status)
	}
	var payload any
	decoder := json.NewDecoder(resp.Body)
	decoder.UseNumber()
	if err := decoder.Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode quote: %w", err)
	}
	return payload, nil
}

func (c *Client) decode(symbol string, payload any) (models.Quote, error) {
	if payload == nil {
		return models.Quote{}, errors.New("empty payload")
	}
	rawPrice, err := first(jsonpath.Get(c.cfg.PricePath, payload))
	if err != nil {
		return models.Quote{}, fmt.Errorf("price %q: %w", c.cfg.PricePath, err)
	}
	price, err := toDecimal(rawPrice)
	if err != nil {
		return models.Quote{}, err
	}
	if !price.IsPositive() {
		return models.Quote{}, fmt.Errorf("non-positive price %s", price)
	}
	cents, err := money.FromDecimal(price)
	if err != nil {
		return models.Quote{}, err
	}
	if cents <= 0 {
		return models.Quote{}, fmt.Errorf("price %s rounds to zero cents", price)
	}
	q := models.Quote{Symbol: symbol, Name: symbol, Price: cents}
	if name, err := first(jsonpath.Get(c.cfg.NamePath, payload)); err == nil {
		if s, ok := name.(string); ok && strings.TrimSpace(s) != "" {
			q.Name = s
		}
	}
	if sym, err := first(jsonpath.Get(c.cfg.SymbolPath, payload)); err == nil {
		if s, ok := sym.(string); ok && s != "" {
			q.Symbol = strings.ToUpper(s)
		}
	}
	return q, nil
}

// first unwraps single-element results; jsonpath returns a list for some
// expressions and a scalar for others.
func first(value any, err error) (any, error) {
	if err != nil {
		return nil, err
	}
	if list, ok := value.([]any); ok {
		if len(list) == 0 {
			return nil, errors.New("no match")
		}
		return list[0], nil
	}
	if value == nil {
		return nil, errors.New("null value")
	}
	return value, nil
}

func toDecimal(value any) (decimal.Decimal, error) {
	switch v := value.(type) {
	case json.Number:
		return decimal.NewFromString(v.String())
	case string:
		return decimal.NewFromString(strings.TrimSpace(v))
	case float64:
		return decimal.NewFromFloat(v), nil
	default:
		return decimal.Zero, fmt.Errorf("price is %T", value)
	}
}
