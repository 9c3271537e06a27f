package eodhd

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/etnz/savings"
	"github.com/shopspring/decimal"
)

// realTimeServer serves real-time quotes for the known codes, answering
// "NA" for the others.
func realTimeServer(t *testing.T, closes map[string]float64, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Query().Get("api_token") != "key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		codes := []string{strings.TrimPrefix(r.URL.Path, "/api/real-time/")}
		if s := r.URL.Query().Get("s"); s != "" {
			codes = append(codes, strings.Split(s, ",")...)
		}
		var list []map[string]any
		for _, code := range codes {
			var price any = "NA"
			if v, ok := closes[code]; ok {
				price = v
			}
			list = append(list, map[string]any{"code": code, "close": price})
		}
		if len(list) == 1 {
			json.NewEncoder(w).Encode(list[0])
			return
		}
		json.NewEncoder(w).Encode(list)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(srv *httptest.Server) *Client {
	c := New("key", "EUR", time.Minute)
	c.BaseURL = srv.URL
	c.HTTP = srv.Client()
	return c
}

func TestSymbol(t *testing.T) {
	tests := []struct{ in, want string }{
		{"EPA:CW8", "CW8.PA"},
		{"epa.ESE", "ESE.PA"},
		{"MCD.US", "MCD.US"},
	}
	for _, tt := range tests {
		if got := Symbol(tt.in); got != tt.want {
			t.Errorf("Symbol(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFetchPrices(t *testing.T) {
	var hits atomic.Int32
	srv := realTimeServer(t, map[string]float64{"CW8.PA": 512.3, "ESE.PA": 25.1}, &hits)
	c := newTestClient(srv)
	ctx := context.Background()

	got, err := c.FetchPrices(ctx, []string{"EPA:CW8", "EPA:ESE", "NOPE"})
	if err == nil || !strings.Contains(err.Error(), "NOPE") {
		t.Errorf("FetchPrices() error = %v, want an error about NOPE", err)
	}
	want := savings.Prices{"EPA:CW8": savings.M(512.3, "EUR"), "EPA:ESE": savings.M(25.1, "EUR")}
	if len(got) != len(want) {
		t.Fatalf("FetchPrices() = %v, want %v", got, want)
	}
	for k, v := range want {
		if !got[k].Equal(v) {
			t.Errorf("FetchPrices()[%s] = %v, want %v", k, got[k], v)
		}
	}
	if n := hits.Load(); n != 1 {
		t.Errorf("FetchPrices() made %d requests, want a single batch", n)
	}

	// cached quotes are not fetched again
	if _, err := c.FetchPrices(ctx, []string{"EPA:CW8"}); err != nil {
		t.Errorf("FetchPrices() error = %v", err)
	}
	if n := hits.Load(); n != 1 {
		t.Errorf("FetchPrices() made %d requests, want 1", n)
	}
}

func TestFetchRates(t *testing.T) {
	var hits atomic.Int32
	srv := realTimeServer(t, map[string]float64{"USDEUR.FOREX": 0.92}, &hits)
	c := newTestClient(srv)

	got, err := c.FetchRates(context.Background(), []string{"USDEUR"})
	if err != nil {
		t.Fatalf("FetchRates() error = %v", err)
	}
	if want := decimal.RequireFromString("0.92"); !got["USDEUR"].Equal(want) {
		t.Errorf("FetchRates()[USDEUR] = %v, want %v", got["USDEUR"], want)
	}
}

func TestUnauthorized(t *testing.T) {
	var hits atomic.Int32
	srv := realTimeServer(t, nil, &hits)
	c := newTestClient(srv)
	c.APIKey = "wrong"

	got, err := c.FetchPrices(context.Background(), []string{"MCD.US"})
	if err == nil || len(got) != 0 {
		t.Errorf("FetchPrices() = %v, %v, want an error", got, err)
	}
}
