package render

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flightroute/internal/graph"
)

type fixedRate struct {
	rate float64
	err  error
}

func (f fixedRate) Convert(_ context.Context, amount float64) (float64, error) {
	if f.err != nil {
		return 0, f.err
	}
	return amount * f.rate, nil
}

func (fixedRate) Target() string { return "PKR" }
func (fixedRate) Source() string { return "EUR" }

func itinerary() *graph.Itinerary {
	it := graph.NewItinerary()
	it.Append(graph.Leg{Origin: "A", Destination: "B", Price: 50, Duration: 120, Carrier: "One"})
	it.Append(graph.Leg{Origin: "B", Destination: "C", Price: 30, Duration: 90, Carrier: "Two"})
	return it
}

func TestSummarize_Converted(t *testing.T) {
	s := Summarize(context.Background(), itinerary(), graph.Price, fixedRate{rate: 300})
	require.True(t, s.Found)
	require.NotNil(t, s.ConvertedPrice)
	assert.InDelta(t, 24000.0, *s.ConvertedPrice, 1e-9)
	assert.Equal(t, 80.0, s.TotalPrice)
	assert.Equal(t, "EUR", s.Currency)
	assert.Len(t, s.Legs, 2)
	assert.Equal(t, "The Cheapest Route for you will be:", s.Headline())
	assert.Equal(t,
		"Route: One (A -> B) -> Two (B -> C)\n"+
			"Total Price: PKR 24000.00\n"+
			"Total Duration: 03 Hours and 30 Minutes",
		s.Text())
}

func TestSummarize_ConversionFailureKeepsItinerary(t *testing.T) {
	s := Summarize(context.Background(), itinerary(), graph.Duration, fixedRate{err: errors.New("quota")})
	assert.True(t, s.Found)
	assert.Nil(t, s.ConvertedPrice)
	assert.Equal(t, "quota", s.ConversionError)
	assert.Equal(t, 210, s.TotalDurationMinutes)
	assert.Equal(t, "The Shortest Route for you will be:", s.Headline())
	assert.Equal(t,
		"Route: One (A -> B) -> Two (B -> C)\n"+
			"Total Price: EUR 80.00 (conversion to PKR unavailable: quota)\n"+
			"Total Duration: 03 Hours and 30 Minutes",
		s.Text())
}

func TestSummarize_NoConverter(t *testing.T) {
	s := Summarize(context.Background(), itinerary(), graph.Price, nil)
	assert.Contains(t, s.Text(), "Total Price: 80.00\n")
	assert.Empty(t, s.TargetCurrency)
}

func TestSummarize_NotFound(t *testing.T) {
	for _, it := range []*graph.Itinerary{nil, graph.NewItinerary()} {
		s := Summarize(context.Background(), it, graph.Price, fixedRate{rate: 2})
		assert.False(t, s.Found)
		assert.NotNil(t, s.Legs)
		assert.Equal(t, NoFlights, s.Text())
	}
}

func TestBanner(t *testing.T) {
	b := Banner("Pakistan (KHI)", "United Kingdom (LHR)", time.Date(2030, 5, 1, 0, 0, 0, 0, time.UTC), graph.Duration)
	assert.Contains(t, b, "FLIGHT SUMMARY\n")
	assert.Contains(t, b, "Origin: Pakistan (KHI)\n")
	assert.Contains(t, b, "Date: 2030-05-01\n")
	assert.Contains(t, b, "Cheapest: No\n")
	assert.Contains(t, b, "Shortest: Yes\n")
}
