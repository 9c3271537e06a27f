package savings

import (
	"math/rand"
	"slices"
	"testing"
	"time"
)

func TestBuildPosition(t *testing.T) {
	txs := []Transaction{
		buy(day(2024, time.January, 10), "CW8", 10, 100),
		buy(day(2024, time.February, 10), "CW8", 10, 130),
		sell(day(2024, time.March, 10), "CW8", 5, 140),
		NewDividend(day(2024, time.April, 1), "CW8", EUR(12)),
		buy(day(2024, time.January, 5), "ESE", 1, 20),
	}
	prices := Prices{"CW8": EUR(150)}

	got := BuildPosition(txs, "CW8", prices)

	if want := Q(15); !got.Quantity.Equal(want) {
		t.Errorf("Quantity = %v, want %v", got.Quantity, want)
	}
	if want := EUR(115); !got.AverageCost.Equal(want) {
		t.Errorf("AverageCost = %v, want %v", got.AverageCost, want)
	}
	if want := EUR(1725); !got.TotalInvested.Equal(want) {
		t.Errorf("TotalInvested = %v, want %v", got.TotalInvested, want)
	}
	if want := EUR(125); !got.RealizedGain.Equal(want) {
		t.Errorf("RealizedGain = %v, want %v", got.RealizedGain, want)
	}
	if want := EUR(12); !got.Income.Equal(want) {
		t.Errorf("Income = %v, want %v", got.Income, want)
	}
	if !got.Valued {
		t.Fatalf("Valued = false, want true")
	}
	if want := EUR(2250); !got.CurrentValue.Equal(want) {
		t.Errorf("CurrentValue = %v, want %v", got.CurrentValue, want)
	}
	if want := EUR(525); !got.UnrealizedGain.Equal(want) {
		t.Errorf("UnrealizedGain = %v, want %v", got.UnrealizedGain, want)
	}
	p, ok := got.UnrealizedPercent()
	if !ok || !p.Equal(Percent(100*525.0/1725)) {
		t.Errorf("UnrealizedPercent() = %v, %v, want %v", p, ok, Percent(100*525.0/1725))
	}
}

func TestBuildPositionFeesInCost(t *testing.T) {
	txs := []Transaction{
		NewBuy(day(2024, time.January, 10), "CW8", Q(10), EUR(100), EUR(5), EUR(3)),
		NewSell(day(2024, time.March, 10), "CW8", Q(10), EUR(110), EUR(5)),
	}
	got := BuildPosition(txs, "CW8", nil)
	if want := EUR(100.8); !got.AverageCost.Equal(want) {
		t.Errorf("AverageCost = %v, want %v", got.AverageCost, want)
	}
	if want := EUR(87); !got.RealizedGain.Equal(want) {
		t.Errorf("RealizedGain = %v, want %v", got.RealizedGain, want)
	}
}

func TestBuildPositionClosed(t *testing.T) {
	txs := []Transaction{
		buy(day(2024, time.January, 10), "AAPL", 10, 10),
		sell(day(2024, time.February, 10), "AAPL", 10, 12),
	}
	got := BuildPosition(txs, "AAPL", nil)

	if !got.Quantity.IsZero() {
		t.Errorf("Quantity = %v, want 0", got.Quantity)
	}
	if !got.TotalInvested.IsZero() || got.TotalInvested.Currency() != "EUR" {
		t.Errorf("TotalInvested = %v, want 0 EUR", got.TotalInvested)
	}
	if want := EUR(10); !got.AverageCost.Equal(want) {
		t.Errorf("AverageCost = %v, want %v unchanged by the sell", got.AverageCost, want)
	}
	if want := EUR(20); !got.RealizedGain.Equal(want) {
		t.Errorf("RealizedGain = %v, want %v", got.RealizedGain, want)
	}
}

func TestBuildPositionsOrderIndependence(t *testing.T) {
	txs := []Transaction{
		buy(day(2023, time.January, 10), "CW8", 7, 100),
		buy(day(2023, time.March, 1), "CW8", 3, 90),
		sell(day(2023, time.June, 1), "CW8", 4, 110),
		buy(day(2023, time.September, 1), "CW8", 6, 120),
		buy(day(2023, time.February, 1), "PAEEM", 30, 21),
		sell(day(2023, time.December, 1), "PAEEM", 10, 23),
		buy(day(2024, time.January, 3), "PAEEM", 5, 22.5),
	}
	prices := Prices{"CW8": EUR(125), "PAEEM": EUR(24)}
	want := BuildPositions(txs, prices)

	rng := rand.New(rand.NewSource(1))
	for i := range 20 {
		shuffled := slices.Clone(txs)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		got := BuildPositions(shuffled, prices)
		if len(got) != len(want) {
			t.Fatalf("#%d BuildPositions() returned %d positions, want %d", i, len(got), len(want))
		}
		for j := range got {
			if !got[j].Quantity.Equal(want[j].Quantity) || !got[j].AverageCost.Equal(want[j].AverageCost) {
				t.Errorf("#%d BuildPositions()[%s] = %v @ %v, want %v @ %v", i, got[j].Ticker,
					got[j].Quantity, got[j].AverageCost, want[j].Quantity, want[j].AverageCost)
			}
		}
	}
}

func TestBuildPositionsSameDayKeepsOrder(t *testing.T) {
	on := day(2024, time.May, 2)
	// Sold then bought back the same day: the sell uses the former basis.
	txs := []Transaction{
		buy(day(2024, time.January, 2), "CW8", 10, 100),
		sell(on, "CW8", 10, 150),
		buy(on, "CW8", 10, 150),
	}
	got := BuildPosition(txs, "CW8", nil)
	if want := EUR(500); !got.RealizedGain.Equal(want) {
		t.Errorf("RealizedGain = %v, want %v", got.RealizedGain, want)
	}
	if want := EUR(150); !got.AverageCost.Equal(want) {
		t.Errorf("AverageCost = %v, want %v", got.AverageCost, want)
	}
}

func TestBuildPositionMissingPrice(t *testing.T) {
	txs := []Transaction{buy(day(2024, time.January, 10), "CW8", 10, 100)}
	got := BuildPosition(txs, "CW8", Prices{"OTHER": EUR(1)})
	if got.Valued {
		t.Errorf("Valued = true, want false without a price")
	}
	if _, ok := got.UnrealizedPercent(); ok {
		t.Errorf("UnrealizedPercent() is defined without a price")
	}
}

func TestBuildPositionOtherCurrencyPrice(t *testing.T) {
	txs := []Transaction{buy(day(2024, time.January, 10), "CW8", 10, 100)}
	got := BuildPosition(txs, "CW8", Prices{"CW8": USD(120)})
	if got.Valued {
		t.Errorf("Valued = true, want false for a price in another currency")
	}
}

func TestBuildPositionMixedCurrencies(t *testing.T) {
	txs := []Transaction{
		buy(day(2024, time.January, 10), "CW8", 10, 100),
		NewBuy(day(2024, time.February, 10), "CW8", Q(5), USD(110), USD(0), USD(0)),
		NewSell(day(2024, time.March, 10), "CW8", Q(2), USD(120), USD(0)),
	}
	got := BuildPosition(txs, "CW8", Prices{"CW8": EUR(150)})

	if got.Currency != "EUR" {
		t.Errorf("Currency = %q, want EUR", got.Currency)
	}
	if got.Excluded != 2 || !got.Mismatched() {
		t.Errorf("Excluded = %d, want 2", got.Excluded)
	}
	if want := Q(10); !got.Quantity.Equal(want) {
		t.Errorf("Quantity = %v, want %v", got.Quantity, want)
	}
	if want := EUR(1000); !got.TotalInvested.Equal(want) {
		t.Errorf("TotalInvested = %v, want %v", got.TotalInvested, want)
	}
	if want := EUR(1500); !got.Valued || !got.CurrentValue.Equal(want) {
		t.Errorf("CurrentValue = %v, want %v", got.CurrentValue, want)
	}
}

func TestBuildPositionOversold(t *testing.T) {
	txs := []Transaction{
		buy(day(2024, time.January, 10), "CW8", 5, 100),
		sell(day(2024, time.February, 10), "CW8", 8, 110),
	}
	got := BuildPosition(txs, "CW8", Prices{"CW8": EUR(120)})
	if !got.Oversold() {
		t.Fatalf("Oversold() = false, want true for %v", got.Quantity)
	}
	if want := Q(-3); !got.Quantity.Equal(want) {
		t.Errorf("Quantity = %v, want %v", got.Quantity, want)
	}
	if want := EUR(-360); !got.CurrentValue.Equal(want) {
		t.Errorf("CurrentValue = %v, want %v", got.CurrentValue, want)
	}
	if !got.TotalInvested.IsZero() {
		t.Errorf("TotalInvested = %v, want 0", got.TotalInvested)
	}

	// buying back starts a fresh basis
	txs = append(txs, buy(day(2024, time.March, 10), "CW8", 5, 90))
	got = BuildPosition(txs, "CW8", nil)
	if want := Q(2); !got.Quantity.Equal(want) {
		t.Errorf("Quantity = %v, want %v", got.Quantity, want)
	}
	if want := EUR(90); !got.AverageCost.Equal(want) {
		t.Errorf("AverageCost = %v, want %v", got.AverageCost, want)
	}
	if want := EUR(180); !got.TotalInvested.Equal(want) {
		t.Errorf("TotalInvested = %v, want %v", got.TotalInvested, want)
	}
}
