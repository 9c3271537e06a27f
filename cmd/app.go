// Package cmd implements the savings command line application.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"time"

	"github.com/etnz/savings"
	"github.com/etnz/savings/eodhd"
	"github.com/etnz/savings/store"
	"github.com/etnz/savings/yahoo"
	"github.com/joho/godotenv"
)

// Environment variables defaulting the global flags. They can also be set in
// a .env file of the working directory.
const (
	EnvDataPath = "SAVINGS_DATA_PATH"
	EnvCurrency = "SAVINGS_CURRENCY"
	EnvVerbose  = "SAVINGS_VERBOSE"
	EnvQuotes   = "SAVINGS_QUOTES"

	// EnvEODHDKey is the EOD Historical Data API key, used with -quotes eodhd.
	EnvEODHDKey = "EODHD_API_KEY"
)

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var (
	dataPath        = flag.String("data", "savings-data", "Path to the savings data directory")
	defaultCurrency = flag.String("currency", "EUR", "Currency of the net worth")
	Verbose         = flag.Bool("v", false, "Log internal events to stderr")
	quotesProvider  = flag.String("quotes", "yahoo", "Quotes provider: yahoo or eodhd")
)

// Setup applies the environment (and .env file) to the global flags that
// were not set on the command line. It must be called after flag.Parse.
func Setup() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: could not read .env file: %v\n", err)
	}
	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	for name, env := range map[string]string{"data": EnvDataPath, "currency": EnvCurrency, "v": EnvVerbose, "quotes": EnvQuotes} {
		if v, ok := os.LookupEnv(env); ok && !set[name] {
			if err := flag.Set(name, v); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: invalid %s=%q: %v\n", env, v, err)
			}
		}
	}
	if !*Verbose {
		log.SetOutput(io.Discard)
	}
}

// openStore opens the data directory.
func openStore() (*store.Dir, error) {
	return store.Open(*dataPath)
}

// quotes is a source of prices and rates.
type quotes interface {
	savings.PriceFetcher
	savings.RateFetcher
}

// newQuotes returns the quotes provider selected by -quotes.
func newQuotes() (quotes, error) {
	switch *quotesProvider {
	case "yahoo":
		return yahoo.New(yahoo.DefaultTTL), nil
	case "eodhd":
		key := os.Getenv(EnvEODHDKey)
		if key == "" {
			key = eodhd.DemoKey
		}
		return eodhd.New(key, *defaultCurrency, time.Minute), nil
	default:
		return nil, fmt.Errorf("unknown quotes provider %q", *quotesProvider)
	}
}

// openEngine opens the data directory and an engine pricing it with the quotes provider.
func openEngine() (*savings.Engine, *store.Dir, error) {
	d, err := openStore()
	if err != nil {
		return nil, nil, err
	}
	q, err := newQuotes()
	if err != nil {
		return nil, nil, err
	}
	return savings.NewEngine(d, q, q), d, nil
}

// resolveAccount returns the account id, or the default account when id is
// empty. Without a default, a single account is picked.
func resolveAccount(ctx context.Context, e *savings.Engine, id string) (savings.Account, error) {
	if id != "" {
		return e.Account(ctx, id)
	}
	accounts, err := e.Accounts(ctx)
	if err != nil {
		return savings.Account{}, err
	}
	for _, a := range accounts {
		if a.Default {
			return a, nil
		}
	}
	if len(accounts) == 1 {
		return accounts[0], nil
	}
	return savings.Account{}, errors.New("no default account, use -a to pick one")
}
