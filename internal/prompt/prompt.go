// Package prompt drives the interactive terminal flow: choose origin and
// destination airports by country, region and city, then a date and a
// search mode.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"flightroute/internal/graph"
	"flightroute/internal/provider/common"
	"flightroute/internal/refdata"
)

var (
	ErrEmptyInput       = errors.New("prompt: input cannot be empty")
	ErrNoMatch          = errors.New("prompt: no airports found")
	ErrInvalidSelection = errors.New("prompt: invalid selection")
	ErrPastDate         = errors.New("prompt: date cannot be in the past")
	ErrBadDate          = errors.New("prompt: invalid date, use YYYY-MM-DD")
)

const rule = "+----------------------+----------------------+----------------------+"

// Role tells the traveller which end of the trip is being chosen.
type Role int

const (
	Origin Role = iota
	Destination
)

func (r Role) String() string {
	if r == Destination {
		return "destination"
	}
	return "origin"
}

type Prompter struct {
	in       *bufio.Scanner
	out      io.Writer
	airports *refdata.Airports
	now      func() time.Time
}

func New(in io.Reader, out io.Writer, airports *refdata.Airports) *Prompter {
	return &Prompter{in: bufio.NewScanner(in), out: out, airports: airports, now: time.Now}
}

func (p *Prompter) readLine(question string) (string, error) {
	fmt.Fprint(p.out, question)
	if !p.in.Scan() {
		if err := p.in.Err(); err != nil {
			return "", err
		}
		return "", ErrEmptyInput
	}
	s := strings.TrimSpace(p.in.Text())
	if s == "" {
		return "", ErrEmptyInput
	}
	return s, nil
}

// choose lists options numbered from 1 and returns the picked index.
func (p *Prompter) choose(question string, options []string) (int, error) {
	fmt.Fprintln(p.out, rule)
	for i, o := range options {
		fmt.Fprintf(p.out, "|- %d: %s\n", i+1, o)
	}
	s, err := p.readLine(question)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > len(options) {
		return 0, fmt.Errorf("%w: %q (choose 1-%d)", ErrInvalidSelection, s, len(options))
	}
	return n - 1, nil
}

// SelectAirport narrows the airport table by a country search, then by
// country when several match, then region, then airport.
func (p *Prompter) SelectAirport(role Role) (refdata.Airport, error) {
	q, err := p.readLine(fmt.Sprintf("Enter the %s country, or search for the country if you don't know the exact official name: ", role))
	if err != nil {
		return refdata.Airport{}, fmt.Errorf("%s country: %w", role, err)
	}
	matches := p.airports.SearchByCountry(q)
	if len(matches) == 0 {
		return refdata.Airport{}, fmt.Errorf("%w for %s country %q", ErrNoMatch, role, q)
	}

	countries := refdata.Countries(matches)
	country := countries[0]
	if len(countries) > 1 {
		i, err := p.choose("Select your country: ", countries)
		if err != nil {
			return refdata.Airport{}, err
		}
		country = countries[i]
	}
	inCountry := refdata.InCountry(matches, country)

	fmt.Fprintf(p.out, "Following are the regions in %s:\n", country)
	regions := refdata.Regions(inCountry)
	ri, err := p.choose("Select your state/region/province: ", regions)
	if err != nil {
		return refdata.Airport{}, err
	}
	inRegion := refdata.InRegion(inCountry, regions[ri])

	fmt.Fprintf(p.out, "Following are the cities in %s:\n", regions[ri])
	labels := make([]string, len(inRegion))
	for i, a := range inRegion {
		labels[i] = fmt.Sprintf("%s - %s (%s)", a.City, a.Name, a.IATA)
	}
	ai, err := p.choose("Select your city: ", labels)
	if err != nil {
		return refdata.Airport{}, err
	}
	picked := inRegion[ai]

	verb := "take off from"
	if role == Destination {
		verb = "land at"
	}
	fmt.Fprintln(p.out, rule)
	fmt.Fprintf(p.out, "|--+ Your flight will %s %s +--|\n", verb, picked.Name)
	fmt.Fprintln(p.out, rule)
	return picked, nil
}

// Date reads a YYYY-MM-DD departure date that is today or later.
func (p *Prompter) Date() (time.Time, error) {
	s, err := p.readLine("Enter the date you want to fly on (YYYY-MM-DD): ")
	if err != nil {
		return time.Time{}, fmt.Errorf("date: %w", err)
	}
	return ParseDate(s, p.now())
}

// ParseDate parses s as a calendar date and rejects days before now's.
func ParseDate(s string, now time.Time) (time.Time, error) {
	d, err := time.Parse(common.DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrBadDate, s)
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if d.Before(today) {
		return time.Time{}, fmt.Errorf("%w: %s", ErrPastDate, d.Format(common.DateLayout))
	}
	return d, nil
}

// Mode asks for 1 (cheapest) or 2 (shortest).
func (p *Prompter) Mode() (graph.Criterion, error) {
	fmt.Fprintln(p.out, "\nFlight Mode Selection:")
	fmt.Fprintln(p.out, "1. Cheapest Flight")
	fmt.Fprintln(p.out, "2. Shortest Flight")
	s, err := p.readLine("Select the flight mode you want to choose (1/2): ")
	if err != nil {
		return 0, fmt.Errorf("mode: %w", err)
	}
	c, err := graph.ParseCriterion(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q (choose 1 or 2)", ErrInvalidSelection, s)
	}
	return c, nil
}
