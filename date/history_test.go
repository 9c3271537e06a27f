package date

import "testing"

func TestAppend(t *testing.T) {
	h := new(History[string])
	d1, v1 := New(2025, 07, 01), "25 Jul 1"
	d2, v2 := New(2024, 07, 01), "24 Jul 1"

	// Appending two values in reverse order must keep the history sorted.

	if h.Len() != 0 {
		t.Errorf("History.Len() = %v want 0", h.Len())
	}

	h.Append(d1, v1)
	if h.Len() != 1 {
		t.Errorf("Append(d1, v1).Len() = %v want 1", h.Len())
	}

	h.Append(d2, v2)
	if h.Len() != 2 {
		t.Errorf("Append(d2, v2).Len() = %v want 2", h.Len())
	}

	if h.days[0] != d2 || h.days[1] != d1 {
		t.Errorf("history days = %v want [%v %v]", h.days, d2, d1)
	}
	if h.values[0] != v2 || h.values[1] != v1 {
		t.Errorf("history values = %v want [%v %v]", h.values, v2, v1)
	}
}

func TestAppendOverwrites(t *testing.T) {
	h := new(History[float64])
	on := New(2024, 3, 1)
	h.Append(on, 10).Append(on, 12)
	if h.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", h.Len())
	}
	if v, _ := h.Get(on); v != 12 {
		t.Errorf("Get() = %v, want 12", v)
	}
}

func TestLatestEarliest(t *testing.T) {
	h := new(History[float64])
	if _, _, ok := h.Latest(); ok {
		t.Errorf("Latest() on empty history must not be ok")
	}
	h.Append(New(2024, 5, 1), 2).Append(New(2023, 5, 1), 1).Append(New(2025, 5, 1), 3)

	if day, v, _ := h.Latest(); day != New(2025, 5, 1) || v != 3 {
		t.Errorf("Latest() = %v %v, want 2025-05-01 3", day, v)
	}
	if day, v, _ := h.Earliest(); day != New(2023, 5, 1) || v != 1 {
		t.Errorf("Earliest() = %v %v, want 2023-05-01 1", day, v)
	}
}

func TestValueAsOf(t *testing.T) {
	h := new(History[float64])
	h.Append(New(2024, 1, 10), 100).Append(New(2024, 2, 10), 200)

	tests := []struct {
		on     Date
		want   float64
		wantOk bool
	}{
		{New(2024, 1, 9), 0, false},
		{New(2024, 1, 10), 100, true},
		{New(2024, 2, 1), 100, true},
		{New(2024, 3, 1), 200, true},
	}
	for _, tc := range tests {
		got, ok := h.ValueAsOf(tc.on)
		if got != tc.want || ok != tc.wantOk {
			t.Errorf("ValueAsOf(%v) = %v, %v want %v, %v", tc.on, got, ok, tc.want, tc.wantOk)
		}
	}
}
