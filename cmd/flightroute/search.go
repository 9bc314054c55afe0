package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"time"

	"flightroute/internal/config"
	"flightroute/internal/graph"
	"flightroute/internal/infra/log"
	"flightroute/internal/planner"
	"flightroute/internal/prompt"
	"flightroute/internal/refdata"
	"flightroute/internal/render"
)

func runSearch(ctx context.Context, cfg config.Config, logger log.Logger, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("search", flag.ContinueOnError)
	fs.SetOutput(out)
	origin := fs.String("origin", "", "origin IATA code")
	destination := fs.String("destination", "", "destination IATA code")
	date := fs.String("date", "", "departure date, YYYY-MM-DD")
	mode := fs.String("mode", cfg.Search.DefaultCriterion, "cheapest or shortest")
	maxOffers := fs.Int("max", cfg.Search.MaxOffers, "maximum offers to request")
	if err := fs.Parse(args); err != nil {
		return err
	}

	c, err := graph.ParseCriterion(*mode)
	if err != nil {
		return err
	}
	day, err := prompt.ParseDate(*date, time.Now())
	if err != nil {
		return err
	}
	d, err := buildDeps(cfg, logger, false)
	if err != nil {
		return err
	}
	q := planner.Query{Origin: *origin, Destination: *destination, Date: day, Criterion: c, MaxOffers: *maxOffers}
	return searchAndPrint(ctx, cfg, logger, d, q, label(d.airports, *origin), label(d.airports, *destination), out)
}

// searchAndPrint prints the flight summary banner, runs q and prints the
// rendered route.
func searchAndPrint(ctx context.Context, cfg config.Config, logger log.Logger, d deps, q planner.Query, originLabel, destLabel string, out io.Writer) error {
	fmt.Fprintln(out)
	fmt.Fprintln(out, render.Banner(originLabel, destLabel, q.Date, q.Criterion))
	fmt.Fprintln(out, "Getting the flights....")

	p := planner.New(cfg, d.source, d.airports, logger)
	res, err := p.Plan(ctx, q)
	if err != nil {
		if errors.Is(err, planner.ErrSourceFailed) {
			fmt.Fprintln(out, render.NoFlights)
		}
		return err
	}
	s := render.Summarize(ctx, res.Itinerary, q.Criterion, d.converter)
	if s.Found {
		fmt.Fprintln(out, s.Headline())
	}
	fmt.Fprintln(out, s.Text())
	return nil
}

// label names an airport for the banner, falling back to its code.
func label(airports *refdata.Airports, code string) string {
	if airports != nil {
		if a, ok := airports.Lookup(code); ok {
			return fmt.Sprintf("%s, %s (%s)", a.City, a.Country, a.IATA)
		}
	}
	return code
}
