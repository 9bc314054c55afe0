// Package planner answers one route query end to end: fetch legs from the
// offer source, consolidate them into a fresh route graph under the query's
// criterion, and search it.
package planner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"flightroute/internal/config"
	"flightroute/internal/graph"
	"flightroute/internal/infra/log"
	"flightroute/internal/infra/metrics"
	"flightroute/internal/provider/common"
	"flightroute/internal/refdata"
)

var (
	ErrMissingAirport = errors.New("planner: origin and destination are required")
	ErrUnknownAirport = errors.New("planner: unknown airport")
	ErrSameAirport    = errors.New("planner: origin and destination are the same airport")
	ErrPastDate       = errors.New("planner: departure date is in the past")
	ErrSourceFailed   = errors.New("planner: offer source failed")
)

type Query struct {
	Origin      string
	Destination string
	Date        time.Time
	Criterion   graph.Criterion
	MaxOffers   int // 0 uses the configured default
}

// Normalize upper-cases and trims the airport codes.
func (q Query) Normalize() Query {
	q.Origin = strings.ToUpper(strings.TrimSpace(q.Origin))
	q.Destination = strings.ToUpper(strings.TrimSpace(q.Destination))
	return q
}

// Validate checks a normalized query against the calendar day of now.
func (q Query) Validate(now time.Time) error {
	switch {
	case q.Origin == "" || q.Destination == "":
		return ErrMissingAirport
	case q.Origin == q.Destination:
		return fmt.Errorf("%w: %s", ErrSameAirport, q.Origin)
	case !q.Criterion.Valid():
		return fmt.Errorf("%w: %d", graph.ErrUnknownCriterion, int(q.Criterion))
	case q.Date.IsZero():
		return fmt.Errorf("%w: missing date", ErrPastDate)
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	day := time.Date(q.Date.Year(), q.Date.Month(), q.Date.Day(), 0, 0, 0, 0, time.UTC)
	if day.Before(today) {
		return fmt.Errorf("%w: %s", ErrPastDate, day.Format(common.DateLayout))
	}
	return nil
}

// IsInvalidQuery reports whether err came from query validation rather than
// from the offer source.
func IsInvalidQuery(err error) bool {
	return errors.Is(err, ErrMissingAirport) || errors.Is(err, ErrUnknownAirport) ||
		errors.Is(err, ErrSameAirport) || errors.Is(err, ErrPastDate) ||
		errors.Is(err, graph.ErrUnknownCriterion)
}

type Result struct {
	Query         Query
	Itinerary     *graph.Itinerary
	LegsFetched   int
	LegsInserted  int
	LegsReplaced  int
	LegsKept      int
	LegsSkipped   int
	GraphAirports int
}

// LegsRetained is the number of edges the graph kept, one per airport pair.
func (r Result) LegsRetained() int { return r.LegsInserted }

type Planner struct {
	cfg      config.Config
	source   common.OfferSource
	airports *refdata.Airports
	logger   log.Logger
	now      func() time.Time
}

// New builds a planner. airports may be nil, in which case codes are not
// checked against the reference table.
func New(cfg config.Config, source common.OfferSource, airports *refdata.Airports, logger log.Logger) *Planner {
	return &Planner{cfg: cfg, source: source, airports: airports, logger: logger, now: time.Now}
}

// Plan runs one query. Every call builds its own graph, so concurrent calls
// share nothing but the offer source.
func (p *Planner) Plan(ctx context.Context, q Query) (Result, error) {
	q = q.Normalize()
	if err := q.Validate(p.now()); err != nil {
		metrics.SearchesTotal.WithLabelValues(q.Criterion.String(), "invalid").Inc()
		return Result{Query: q}, err
	}
	if p.airports != nil {
		for _, code := range []string{q.Origin, q.Destination} {
			if _, ok := p.airports.Lookup(code); !ok {
				metrics.SearchesTotal.WithLabelValues(q.Criterion.String(), "invalid").Inc()
				return Result{Query: q}, fmt.Errorf("%w: %s", ErrUnknownAirport, code)
			}
		}
	}
	if q.MaxOffers <= 0 {
		q.MaxOffers = p.cfg.Search.MaxOffers
	}
	res := Result{Query: q}

	if secs := p.cfg.Search.TimeoutSeconds; secs > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(secs)*time.Second)
		defer cancel()
	}

	name := p.source.Name()
	fetchStart := time.Now()
	legs, err := p.source.SearchLegs(ctx, common.SearchRequest{
		Origin:      q.Origin,
		Destination: q.Destination,
		Date:        q.Date,
		Adults:      p.cfg.Search.Adults,
		Max:         q.MaxOffers,
	})
	metrics.ProviderLatencyMs.WithLabelValues(name).Observe(float64(time.Since(fetchStart).Microseconds()) / 1000.0)
	if err != nil {
		metrics.SearchesTotal.WithLabelValues(q.Criterion.String(), "error").Inc()
		p.logger.Warn().Err(err).Str("provider", name).Str("origin", q.Origin).Str("destination", q.Destination).Msg("offer fetch failed")
		return res, fmt.Errorf("%w: %s: %w", ErrSourceFailed, name, err)
	}
	res.LegsFetched = len(legs)
	metrics.OffersFetchedTotal.WithLabelValues(name).Add(float64(len(legs)))

	searchStart := time.Now()
	g := graph.NewRouteGraph()
	for _, l := range legs {
		outcome, err := g.AddLeg(l, q.Criterion)
		if err != nil {
			res.LegsSkipped++
			metrics.LegsConsolidatedTotal.WithLabelValues("skipped").Inc()
			p.logger.Debug().Err(err).Str("leg", l.String()).Msg("leg skipped")
			continue
		}
		switch outcome {
		case graph.Inserted:
			res.LegsInserted++
		case graph.Replaced:
			res.LegsReplaced++
		case graph.Kept:
			res.LegsKept++
		}
		metrics.LegsConsolidatedTotal.WithLabelValues(outcome.String()).Inc()
	}
	res.GraphAirports = len(g.Airports())
	metrics.GraphAirports.Set(float64(res.GraphAirports))

	it, err := graph.NewPathFinder(g, q.Criterion).FindRoute(q.Origin, q.Destination)
	if err != nil {
		metrics.SearchesTotal.WithLabelValues(q.Criterion.String(), "error").Inc()
		return res, err
	}
	metrics.SearchLatencyMs.Observe(float64(time.Since(searchStart).Microseconds()) / 1000.0)
	res.Itinerary = it

	outcome := "found"
	if it.Empty() {
		outcome = "not_found"
	} else {
		metrics.ItineraryLegs.Observe(float64(it.Len()))
	}
	metrics.SearchesTotal.WithLabelValues(q.Criterion.String(), outcome).Inc()
	p.logger.Info().
		Str("origin", q.Origin).Str("destination", q.Destination).
		Str("criterion", q.Criterion.String()).
		Int("legs_fetched", res.LegsFetched).Int("edges", g.EdgeCount()).Int("skipped", res.LegsSkipped).
		Int("hops", it.Len()).Float64("total_price", it.TotalPrice()).Int("total_minutes", it.TotalDuration()).
		Msg(outcome)
	return res, nil
}
