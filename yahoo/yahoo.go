// Package yahoo fetches current quotes and exchange rates from the Yahoo
// Finance chart API.
package yahoo

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/etnz/savings"
	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
)

const (
	// DefaultBaseURL is the Yahoo Finance API host.
	DefaultBaseURL = "https://query1.finance.yahoo.com"
	// DefaultTTL is how long a quote is reused.
	DefaultTTL = time.Minute

	userAgent   = "Mozilla/5.0 (compatible; savings)"
	maxParallel = 8

	pricePath    = "$.chart.result[0].meta.regularMarketPrice"
	currencyPath = "$.chart.result[0].meta.currency"
)

// Client fetches quotes. It implements savings.PriceFetcher and savings.RateFetcher.
type Client struct {
	BaseURL string
	HTTP    *http.Client

	quotes *cache.Cache
}

var (
	_ savings.PriceFetcher = (*Client)(nil)
	_ savings.RateFetcher  = (*Client)(nil)
)

// New returns a Client reusing quotes for ttl. A zero ttl disables the reuse.
func New(ttl time.Duration) *Client {
	c := &Client{
		BaseURL: DefaultBaseURL,
		HTTP:    &http.Client{Timeout: 10 * time.Second},
	}
	if ttl > 0 {
		c.quotes = cache.New(ttl, 2*ttl)
	}
	return c
}

var euronext = regexp.MustCompile(`(?i)^EPA[.:](.+)$`)

// Symbol returns the Yahoo symbol of a ticker: Euronext Paris tickers
// written "EPA:CW8" or "EPA.CW8" become "CW8.PA".
func Symbol(ticker string) string {
	ticker = strings.TrimSpace(ticker)
	if m := euronext.FindStringSubmatch(ticker); m != nil && m[1] != "" {
		return m[1] + ".PA"
	}
	return ticker
}

// Quote returns the latest price of symbol, in its trading currency.
func (c *Client) Quote(ctx context.Context, symbol string) (savings.Money, error) {
	if c.quotes != nil {
		if q, ok := c.quotes.Get(symbol); ok {
			return q.(savings.Money), nil
		}
	}
	addr := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=1d", c.BaseURL, url.PathEscape(symbol))
	var jobj any
	if err := jwget(ctx, c.HTTP, addr, &jobj); err != nil {
		return savings.Money{}, fmt.Errorf("error retrieving %q: %w", symbol, err)
	}
	jval, err := pluck(pricePath, jobj)
	if err != nil {
		return savings.Money{}, fmt.Errorf("error retrieving %q: %w", symbol, err)
	}
	price, ok := jval.(float64)
	if !ok || price <= 0 {
		return savings.Money{}, fmt.Errorf("error retrieving %q: %s %v", symbol, "not a price", jval)
	}
	cur := ""
	if jval, err := pluck(currencyPath, jobj); err == nil {
		cur, _ = jval.(string)
	}
	value := decimal.NewFromFloat(price)
	if cur == "GBp" {
		// London quotes in pence
		value, cur = value.Shift(-2), "GBP"
	}
	q := savings.M(value, strings.ToUpper(cur))
	if c.quotes != nil {
		c.quotes.SetDefault(symbol, q)
	}
	return q, nil
}

// quoteAll quotes every symbol in parallel. Failures are logged, joined in
// the returned error, and missing from the result.
func (c *Client) quoteAll(ctx context.Context, keys []string, symbol func(string) string) (map[string]savings.Money, error) {
	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		errs   []error
		quotes = make(map[string]savings.Money, len(keys))
		sem    = make(chan struct{}, maxParallel)
	)
	for _, key := range keys {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			q, err := c.Quote(ctx, symbol(key))
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				log.Printf("yahoo-quote-failed key=%q err=%q", key, err)
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			quotes[key] = q
		}()
	}
	wg.Wait()
	return quotes, errors.Join(errs...)
}

// FetchPrices returns the current price of tickers, keyed by ticker.
func (c *Client) FetchPrices(ctx context.Context, tickers []string) (savings.Prices, error) {
	quotes, err := c.quoteAll(ctx, tickers, Symbol)
	return savings.Prices(quotes), err
}

// FetchRates returns the exchange rates of currency pairs like "USDEUR".
func (c *Client) FetchRates(ctx context.Context, pairs []string) (savings.Rates, error) {
	quotes, err := c.quoteAll(ctx, pairs, func(pair string) string { return strings.ToUpper(pair) + "=X" })
	rates := make(savings.Rates, len(quotes))
	for pair, q := range quotes {
		rates[pair] = q.Decimal()
	}
	return rates, err
}
