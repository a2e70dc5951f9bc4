// Package exchangerateapi implements money.ExchangeRates against
// exchangerate-api.com. It is meant for converting final reports into a
// display currency; it is never called from the matching loop.
package exchangerateapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/quantlab/backsim/money"
)

// Client fetches spot rates over HTTP and caches them per base currency.
// Rates are time-invariant from the caller's perspective; the `at` argument
// of Rate is ignored because the API only serves latest rates.
type Client struct {
	baseURL string
	client  *http.Client
	log     zerolog.Logger

	mu    sync.Mutex
	cache map[money.Currency]map[string]float64
}

// NewClient returns a client for exchangerate-api.com.
func NewClient(log zerolog.Logger) *Client {
	return &Client{
		baseURL: "https://api.exchangerate-api.com/v4/latest",
		client:  &http.Client{Timeout: 10 * time.Second},
		log:     log.With().Str("client", "exchangerate-api").Logger(),
		cache:   make(map[money.Currency]map[string]float64),
	}
}

type ratesResponse struct {
	Base  string             `json:"base"`
	Rates map[string]float64 `json:"rates"`
}

// Rate implements money.ExchangeRates.
func (c *Client) Rate(from, to money.Currency, at time.Time) (float64, error) {
	if from == to {
		return 1.0, nil
	}

	c.mu.Lock()
	table, ok := c.cache[from]
	c.mu.Unlock()

	if !ok {
		fetched, err := c.fetch(from)
		if err != nil {
			return 0, err
		}
		table = fetched

		c.mu.Lock()
		c.cache[from] = table
		c.mu.Unlock()
	}

	rate, ok := table[string(to)]
	if !ok || rate == 0 {
		return 0, fmt.Errorf("%w: %s/%s", money.ErrNoRate, from, to)
	}
	return rate, nil
}

func (c *Client) fetch(base money.Currency) (map[string]float64, error) {
	url := fmt.Sprintf("%s/%s", c.baseURL, base)
	c.log.Debug().Str("url", url).Msg("fetching rates")

	resp, err := c.client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("exchangerateapi: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s (status %d)", money.ErrNoRate, base, resp.StatusCode)
	}

	var body ratesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("exchangerateapi: decode response: %w", err)
	}
	if len(body.Rates) == 0 {
		return nil, fmt.Errorf("%w: %s (empty table)", money.ErrNoRate, base)
	}
	return body.Rates, nil
}
