package date

import "fmt"

// Range represents a range of dates, boundaries included.
type Range struct{ From, To Date }

// NewRange returns the range [from, to].
func NewRange(from, to Date) Range { return Range{From: from, To: to} }

// Year returns the full calendar year range.
func Year(year int) Range { return Range{From: StartOfYear(year), To: EndOfYear(year)} }

// Contains return true date is included in the range (boundaries included)
func (r Range) Contains(date Date) bool { return !date.Before(r.From) && !date.After(r.To) }

// Days returns the number of days spanned by the range.
func (r Range) Days() int { return r.To.Sub(r.From) }

func (r Range) String() string { return fmt.Sprintf("%s..%s", r.From, r.To) }
