package graph

import (
	"fmt"
	"strings"
)

// Criterion is the optimisation axis used both to consolidate duplicate legs
// and to weight the shortest-path search.
type Criterion int

const (
	// Price selects the cheapest route.
	Price Criterion = iota + 1
	// Duration selects the shortest route.
	Duration
)

// Weight returns the edge weight of l under c.
func (c Criterion) Weight(l Leg) float64 {
	if c == Duration {
		return float64(l.Duration)
	}
	return l.Price
}

// Valid reports whether c is Price or Duration.
func (c Criterion) Valid() bool { return c == Price || c == Duration }

// String returns "cheapest" or "shortest", the labels used in output.
func (c Criterion) String() string {
	switch c {
	case Price:
		return "cheapest"
	case Duration:
		return "shortest"
	default:
		return fmt.Sprintf("criterion(%d)", int(c))
	}
}

// ParseCriterion accepts "cheapest"/"price"/"1" and "shortest"/"duration"/"time"/"2".
func ParseCriterion(s string) (Criterion, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cheapest", "price", "1":
		return Price, nil
	case "shortest", "duration", "time", "2":
		return Duration, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownCriterion, s)
}
