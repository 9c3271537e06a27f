// Package eodhd fetches current quotes and exchange rates from the EOD
// Historical Data real-time API.
//
// A single request quotes a whole batch of tickers. Quotes carry no currency:
// they are read in the Client currency.
package eodhd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/etnz/savings"
	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
)

const (
	// DefaultBaseURL is the EODHD API host.
	DefaultBaseURL = "https://eodhd.com"
	// DemoKey is accepted by the API for a few tickers like "MCD.US".
	DemoKey = "demo"

	batchSize = 20
)

// Client fetches quotes. It implements savings.PriceFetcher and savings.RateFetcher.
type Client struct {
	BaseURL  string
	APIKey   string
	Currency string // currency of the quoted prices
	HTTP     *http.Client

	quotes *cache.Cache
}

var (
	_ savings.PriceFetcher = (*Client)(nil)
	_ savings.RateFetcher  = (*Client)(nil)
)

// New returns a Client reading prices in currency and reusing quotes for
// ttl. A zero ttl disables the reuse.
func New(apiKey, currency string, ttl time.Duration) *Client {
	c := &Client{
		BaseURL:  DefaultBaseURL,
		APIKey:   apiKey,
		Currency: currency,
		HTTP:     &http.Client{Timeout: 10 * time.Second},
	}
	if ttl > 0 {
		c.quotes = cache.New(ttl, 2*ttl)
	}
	return c
}

var euronext = regexp.MustCompile(`(?i)^EPA[.:](.+)$`)

// Symbol returns the EODHD code of a ticker: Euronext Paris tickers written
// "EPA:CW8" or "EPA.CW8" become "CW8.PA".
func Symbol(ticker string) string {
	ticker = strings.TrimSpace(ticker)
	if m := euronext.FindStringSubmatch(ticker); m != nil && m[1] != "" {
		return m[1] + ".PA"
	}
	return ticker
}

// realTime is a quote of the real-time endpoint. Close is "NA" for unknown codes.
type realTime struct {
	Code  string `json:"code"`
	Close any    `json:"close"`
}

// fetch quotes a batch of codes in a single request.
func (c *Client) fetch(ctx context.Context, codes []string) ([]realTime, error) {
	q := url.Values{"api_token": {c.APIKey}, "fmt": {"json"}}
	if len(codes) > 1 {
		q.Set("s", strings.Join(codes[1:], ","))
	}
	addr := fmt.Sprintf("%s/api/real-time/%s?%s", c.BaseURL, url.PathEscape(codes[0]), q.Encode())

	var raw json.RawMessage
	if err := jwget(ctx, c.HTTP, addr, &raw); err != nil {
		return nil, err
	}
	// a single code is answered with an object, several with a list
	if raw = bytes.TrimSpace(raw); len(raw) > 0 && raw[0] == '{' {
		var one realTime
		err := json.Unmarshal(raw, &one)
		return []realTime{one}, err
	}
	var list []realTime
	err := json.Unmarshal(raw, &list)
	return list, err
}

// quoteAll quotes keys, batching the codes not in cache. Failures are logged,
// joined in the returned error, and missing from the result.
func (c *Client) quoteAll(ctx context.Context, keys []string, code func(string) string) (map[string]decimal.Decimal, error) {
	quotes := make(map[string]decimal.Decimal, len(keys))
	byCode := make(map[string][]string)
	var missing []string
	for _, key := range keys {
		k := code(key)
		if c.quotes != nil {
			if q, ok := c.quotes.Get(k); ok {
				quotes[key] = q.(decimal.Decimal)
				continue
			}
		}
		if _, ok := byCode[k]; !ok {
			missing = append(missing, k)
		}
		byCode[k] = append(byCode[k], key)
	}

	var errs []error
	failed := make(map[string]bool)
	for start := 0; start < len(missing); start += batchSize {
		batch := missing[start:min(start+batchSize, len(missing))]
		list, err := c.fetch(ctx, batch)
		if err != nil {
			log.Printf("eodhd-fetch-failed codes=%q err=%q", batch, err)
			errs = append(errs, fmt.Errorf("error retrieving %v: %w", batch, err))
			for _, k := range batch {
				failed[k] = true
			}
			continue
		}
		for _, rt := range list {
			price, ok := rt.Close.(float64)
			if !ok || price <= 0 {
				continue
			}
			value := decimal.NewFromFloat(price)
			if c.quotes != nil {
				c.quotes.SetDefault(rt.Code, value)
			}
			for _, key := range byCode[rt.Code] {
				quotes[key] = value
			}
		}
	}
	for _, key := range keys {
		if _, ok := quotes[key]; !ok && !failed[code(key)] {
			log.Printf("eodhd-quote-missing key=%q code=%q", key, code(key))
			errs = append(errs, fmt.Errorf("%s: no quote for %q", key, code(key)))
		}
	}
	return quotes, errors.Join(errs...)
}

// FetchPrices returns the current price of tickers, keyed by ticker.
func (c *Client) FetchPrices(ctx context.Context, tickers []string) (savings.Prices, error) {
	quotes, err := c.quoteAll(ctx, tickers, Symbol)
	prices := make(savings.Prices, len(quotes))
	for ticker, q := range quotes {
		prices[ticker] = savings.M(q, c.Currency)
	}
	return prices, err
}

// FetchRates returns the exchange rates of currency pairs like "USDEUR".
func (c *Client) FetchRates(ctx context.Context, pairs []string) (savings.Rates, error) {
	quotes, err := c.quoteAll(ctx, pairs, func(pair string) string { return strings.ToUpper(pair) + ".FOREX" })
	return savings.Rates(quotes), err
}
