// Package graph is the flight routing core: it consolidates flight legs into
// a directed graph with one retained leg per ordered airport pair, searches
// it with Dijkstra under a price or duration criterion and turns the winning
// path into an Itinerary.
//
// A RouteGraph is built once and then only read. The criterion used to
// consolidate it is the criterion it must be searched with; the graph records
// it on the first AddLeg and rejects the other one with ErrCriterionMismatch.
// None of the types here are safe for concurrent mutation.
package graph

import (
	"errors"
	"fmt"
	"sort"
)

// Consolidation describes what AddLeg did with a leg.
type Consolidation int

const (
	// Inserted means the ordered pair had no leg yet.
	Inserted Consolidation = iota + 1
	// Replaced means the new leg was strictly better than the retained one.
	Replaced
	// Kept means the retained leg was as good or better; the new leg was dropped.
	Kept
)

func (c Consolidation) String() string {
	switch c {
	case Inserted:
		return "inserted"
	case Replaced:
		return "replaced"
	case Kept:
		return "kept"
	}
	return "unknown"
}

// RouteGraph maps origin → destination → the single retained Leg.
type RouteGraph struct {
	adj       map[string]map[string]Leg
	airports  map[string]struct{}
	criterion Criterion
	edges     int
}

// NewRouteGraph returns an empty graph. Its criterion is fixed by the first AddLeg.
func NewRouteGraph() *RouteGraph {
	return &RouteGraph{
		adj:      make(map[string]map[string]Leg),
		airports: make(map[string]struct{}),
	}
}

// Build consolidates legs under c into a fresh graph. Self-loops are skipped;
// any other invalid leg aborts the build.
func Build(legs []Leg, c Criterion) (*RouteGraph, error) {
	g := NewRouteGraph()
	for _, l := range legs {
		if _, err := g.AddLeg(l, c); err != nil {
			if errors.Is(err, ErrSelfLoop) {
				continue
			}
			return nil, err
		}
	}
	return g, nil
}

// AddLeg offers l to the graph under criterion c. The leg is stored when its
// pair is new, or replaces the retained leg when its weight is strictly lower.
// Ties keep the retained leg.
func (g *RouteGraph) AddLeg(l Leg, c Criterion) (Consolidation, error) {
	if !c.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrUnknownCriterion, int(c))
	}
	if g.criterion != 0 && g.criterion != c {
		return 0, fmt.Errorf("%w: graph=%s leg=%s", ErrCriterionMismatch, g.criterion, c)
	}
	if err := l.Validate(); err != nil {
		return 0, err
	}
	if l.Origin == l.Destination {
		return 0, ErrSelfLoop
	}
	g.criterion = c

	dests, ok := g.adj[l.Origin]
	if !ok {
		dests = make(map[string]Leg)
		g.adj[l.Origin] = dests
	}
	g.airports[l.Origin] = struct{}{}
	g.airports[l.Destination] = struct{}{}

	existing, ok := dests[l.Destination]
	if !ok {
		dests[l.Destination] = l
		g.edges++
		return Inserted, nil
	}
	if c.Weight(l) < c.Weight(existing) {
		dests[l.Destination] = l
		return Replaced, nil
	}
	return Kept, nil
}

// Criterion returns the consolidation criterion, or 0 for a graph with no legs.
func (g *RouteGraph) Criterion() Criterion { return g.criterion }

// Leg returns the retained leg for from → to.
func (g *RouteGraph) Leg(from, to string) (Leg, bool) {
	l, ok := g.adj[from][to]
	return l, ok
}

// Neighbors returns the retained outgoing legs of from, ordered by destination.
func (g *RouteGraph) Neighbors(from string) []Leg {
	dests := g.adj[from]
	if len(dests) == 0 {
		return nil
	}
	out := make([]Leg, 0, len(dests))
	for _, l := range dests {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Destination < out[j].Destination })
	return out
}

// HasAirport reports whether code is the origin or destination of any retained leg.
func (g *RouteGraph) HasAirport(code string) bool {
	_, ok := g.airports[code]
	return ok
}

// Airports returns every airport code in the graph, sorted.
func (g *RouteGraph) Airports() []string {
	out := make([]string, 0, len(g.airports))
	for a := range g.airports {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}

// EdgeCount is the number of retained legs.
func (g *RouteGraph) EdgeCount() int { return g.edges }
