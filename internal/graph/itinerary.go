package graph

import (
	"fmt"
	"strings"
)

// Itinerary is an ordered journey of legs with running totals.
// A zero-leg itinerary means no route was found; check Empty, not the totals.
type Itinerary struct {
	legs          []Leg
	totalPrice    float64
	totalDuration int
}

// NewItinerary returns an empty itinerary.
func NewItinerary() *Itinerary { return &Itinerary{} }

// Append adds l at the end and accumulates its price and duration.
func (it *Itinerary) Append(l Leg) {
	it.legs = append(it.legs, l)
	it.totalPrice += l.Price
	it.totalDuration += l.Duration
}

// TotalPrice is the sum of leg prices.
func (it *Itinerary) TotalPrice() float64 { return it.totalPrice }

// TotalDuration is the sum of leg durations in minutes.
func (it *Itinerary) TotalDuration() int { return it.totalDuration }

// Legs returns a copy of the legs in travel order.
func (it *Itinerary) Legs() []Leg {
	out := make([]Leg, len(it.legs))
	copy(out, it.legs)
	return out
}

func (it *Itinerary) Len() int { return len(it.legs) }

func (it *Itinerary) Empty() bool { return len(it.legs) == 0 }

// Origin is the first leg's origin, or "" when empty.
func (it *Itinerary) Origin() string {
	if it.Empty() {
		return ""
	}
	return it.legs[0].Origin
}

// Destination is the last leg's destination, or "" when empty.
func (it *Itinerary) Destination() string {
	if it.Empty() {
		return ""
	}
	return it.legs[len(it.legs)-1].Destination
}

// Hops renders the carrier-by-carrier description,
// e.g. "PIA (LHE -> DXB) -> Emirates (DXB -> LHR)".
func (it *Itinerary) Hops() string {
	parts := make([]string, len(it.legs))
	for i, l := range it.legs {
		parts[i] = l.String()
	}
	return strings.Join(parts, " -> ")
}

// DurationHM splits TotalDuration into hours and minutes.
func (it *Itinerary) DurationHM() (hours, minutes int) {
	return it.totalDuration / 60, it.totalDuration % 60
}

// FormatDuration renders TotalDuration as "03 Hours and 30 Minutes".
func (it *Itinerary) FormatDuration() string {
	return FormatMinutes(it.totalDuration)
}

// FormatMinutes renders a minute count as "HH Hours and MM Minutes".
func FormatMinutes(total int) string {
	return fmt.Sprintf("%02d Hours and %02d Minutes", total/60, total%60)
}
