package main

import (
	"context"
	"fmt"
	"io"

	"flightroute/internal/config"
	"flightroute/internal/infra/log"
	"flightroute/internal/planner"
	"flightroute/internal/prompt"
)

func runInteractive(ctx context.Context, cfg config.Config, logger log.Logger, in io.Reader, out io.Writer) error {
	d, err := buildDeps(cfg, logger, true)
	if err != nil {
		return err
	}
	p := prompt.New(in, out, d.airports)

	origin, err := p.SelectAirport(prompt.Origin)
	if err != nil {
		return err
	}
	destination, err := p.SelectAirport(prompt.Destination)
	if err != nil {
		return err
	}
	date, err := p.Date()
	if err != nil {
		return err
	}
	c, err := p.Mode()
	if err != nil {
		return err
	}

	q := planner.Query{Origin: origin.IATA, Destination: destination.IATA, Date: date, Criterion: c}
	return searchAndPrint(ctx, cfg, logger, d, q,
		fmt.Sprintf("%s (%s)", origin.Country, origin.IATA),
		fmt.Sprintf("%s (%s)", destination.Country, destination.IATA),
		out)
}
