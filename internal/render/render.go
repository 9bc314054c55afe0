// Package render turns itineraries into the terminal text and JSON views
// shown to travellers.
package render

import (
	"context"
	"fmt"
	"strings"
	"time"

	"flightroute/internal/currency"
	"flightroute/internal/graph"
)

const NoFlights = "We're sorry but there are no flights available"

const rule = "+----------------------+----------------------+----------------------+"

type LegView struct {
	Origin      string  `json:"origin"`
	Destination string  `json:"destination"`
	Carrier     string  `json:"carrier"`
	Price       float64 `json:"price"`
	Duration    int     `json:"duration_minutes"`
}

// Summary is the presentation of one search result. Prices are in the
// source currency unless ConvertedPrice is set.
type Summary struct {
	Criterion            string    `json:"criterion"`
	Found                bool      `json:"found"`
	Legs                 []LegView `json:"legs"`
	Hops                 string    `json:"hops,omitempty"`
	TotalPrice           float64   `json:"total_price"`
	Currency             string    `json:"currency,omitempty"`
	ConvertedPrice       *float64  `json:"converted_price,omitempty"`
	TargetCurrency       string    `json:"target_currency,omitempty"`
	ConversionError      string    `json:"conversion_error,omitempty"`
	TotalDurationMinutes int       `json:"total_duration_minutes"`
	Duration             string    `json:"duration"`
}

// Summarize builds the view of it. conv may be nil; a conversion failure is
// recorded on the summary and never hides the itinerary.
func Summarize(ctx context.Context, it *graph.Itinerary, c graph.Criterion, conv currency.Converter) Summary {
	s := Summary{Criterion: c.String(), Legs: []LegView{}}
	if it == nil || it.Empty() {
		s.Duration = graph.FormatMinutes(0)
		return s
	}
	s.Found = true
	for _, l := range it.Legs() {
		s.Legs = append(s.Legs, LegView{Origin: l.Origin, Destination: l.Destination, Carrier: l.Carrier, Price: l.Price, Duration: l.Duration})
	}
	s.Hops = it.Hops()
	s.TotalPrice = it.TotalPrice()
	s.TotalDurationMinutes = it.TotalDuration()
	s.Duration = it.FormatDuration()
	if src, ok := conv.(interface{ Source() string }); ok {
		s.Currency = src.Source()
	}
	if conv != nil {
		s.TargetCurrency = conv.Target()
		v, err := conv.Convert(ctx, it.TotalPrice())
		if err != nil {
			s.ConversionError = err.Error()
		} else {
			s.ConvertedPrice = &v
		}
	}
	return s
}

// Headline introduces the route, e.g. "The Cheapest Route for you will be:".
func (s Summary) Headline() string {
	label := "Cheapest"
	if s.Criterion == graph.Duration.String() {
		label = "Shortest"
	}
	return fmt.Sprintf("The %s Route for you will be:", label)
}

// Text renders the route block:
//
//	Route: Emirates (KHI -> DXB) -> Emirates (DXB -> LHR)
//	Total Price: PKR 123.45
//	Total Duration: 03 Hours and 30 Minutes
func (s Summary) Text() string {
	if !s.Found {
		return NoFlights
	}
	var b strings.Builder
	b.WriteString("Route: ")
	b.WriteString(s.Hops)
	b.WriteString("\nTotal Price: ")
	switch {
	case s.ConvertedPrice != nil:
		fmt.Fprintf(&b, "%s %.2f", s.TargetCurrency, *s.ConvertedPrice)
	case s.Currency != "":
		fmt.Fprintf(&b, "%s %.2f", s.Currency, s.TotalPrice)
	default:
		fmt.Fprintf(&b, "%.2f", s.TotalPrice)
	}
	if s.ConversionError != "" {
		fmt.Fprintf(&b, " (conversion to %s unavailable: %s)", s.TargetCurrency, s.ConversionError)
	}
	b.WriteString("\nTotal Duration: ")
	b.WriteString(s.Duration)
	return b.String()
}

// Banner is the flight summary printed before the search runs.
func Banner(origin, destination string, date time.Time, c graph.Criterion) string {
	yesNo := func(v bool) string {
		if v {
			return "Yes"
		}
		return "No"
	}
	var b strings.Builder
	b.WriteString("FLIGHT SUMMARY\n")
	b.WriteString(rule + "\n")
	fmt.Fprintf(&b, "Origin: %s\n", origin)
	fmt.Fprintf(&b, "Destination: %s\n", destination)
	fmt.Fprintf(&b, "Date: %s\n", date.Format("2006-01-02"))
	fmt.Fprintf(&b, "Cheapest: %s\n", yesNo(c == graph.Price))
	fmt.Fprintf(&b, "Shortest: %s\n", yesNo(c == graph.Duration))
	b.WriteString(rule)
	return b.String()
}
