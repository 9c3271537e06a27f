package cmd

import (
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"testing"
)

func TestExtensionEnv(t *testing.T) {
	oldData, oldCurrency := *dataPath, *defaultCurrency
	t.Cleanup(func() { *dataPath, *defaultCurrency = oldData, oldCurrency })
	*dataPath, *defaultCurrency = "/tmp/savings", "USD"

	got := extensionEnv()
	for _, want := range []string{EnvDataPath + "=/tmp/savings", EnvCurrency + "=USD", EnvVerbose + "=false"} {
		if !slices.Contains(got, want) {
			t.Errorf("extensionEnv() = %v, want it to contain %q", got, want)
		}
	}
}

func TestRunExtension(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script extension")
	}
	dir := t.TempDir()
	script := "#!/bin/sh\necho \"$" + EnvCurrency + " $1\" > \"$2\"\nexit 3\n"
	if err := os.WriteFile(filepath.Join(dir, "sav-hello"), []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))

	out := filepath.Join(dir, "out")
	found, code := RunExtension("hello", []string{"world", out})
	if !found || code != 3 {
		t.Fatalf("RunExtension(hello) = %v, %d, want true, 3", found, code)
	}
	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := strings.TrimSpace(string(b)), *defaultCurrency+" world"; got != want {
		t.Errorf("extension output = %q, want %q", got, want)
	}

	if found, _ := RunExtension("unknown-extension", nil); found {
		t.Errorf("RunExtension(unknown-extension) found = true, want false")
	}
}

// TestUsage checks that every command documents itself.
func TestUsage(t *testing.T) {
	for group, cmds := range Commands {
		for _, c := range cmds {
			if c.Name() == "" || c.Synopsis() == "" || !strings.Contains(c.Usage(), c.Name()) {
				t.Errorf("%s command %q has an incomplete documentation", group, c.Name())
			}
		}
	}
}

func TestNewQuotes(t *testing.T) {
	old := *quotesProvider
	t.Cleanup(func() { *quotesProvider = old })

	for _, name := range []string{"yahoo", "eodhd"} {
		*quotesProvider = name
		if q, err := newQuotes(); err != nil || q == nil {
			t.Errorf("newQuotes(%s) = %v, %v, want a provider", name, q, err)
		}
	}
	*quotesProvider = "bloomberg"
	if _, err := newQuotes(); err == nil {
		t.Error("newQuotes(bloomberg) error = nil, want an error")
	}
}
