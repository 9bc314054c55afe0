package graph

import (
	"errors"
	"fmt"
	"math"
)

// Sentinel errors returned by the routing core.
var (
	// ErrInvalidLeg indicates a leg with a missing airport code or a negative
	// (or non-finite) weight. Dijkstra is only correct on non-negative weights.
	ErrInvalidLeg = errors.New("graph: invalid leg")

	// ErrSelfLoop indicates a leg whose origin equals its destination.
	// Such legs are discarded during consolidation.
	ErrSelfLoop = errors.New("graph: self-loop leg")

	// ErrCriterionMismatch indicates that a graph consolidated under one
	// criterion was asked to consolidate or search under the other.
	ErrCriterionMismatch = errors.New("graph: criterion does not match consolidation criterion")

	// ErrUnknownCriterion indicates a Criterion value outside Price/Duration.
	ErrUnknownCriterion = errors.New("graph: unknown criterion")
)

// Leg is one priced, timed, directed connection between two airports
// operated by one carrier. Price is in the upstream offer's currency,
// Duration is in minutes.
type Leg struct {
	Origin      string
	Destination string
	Price       float64
	Duration    int
	Carrier     string
}

// NewLeg builds a validated Leg.
func NewLeg(origin, destination string, price float64, duration int, carrier string) (Leg, error) {
	l := Leg{Origin: origin, Destination: destination, Price: price, Duration: duration, Carrier: carrier}
	if err := l.Validate(); err != nil {
		return Leg{}, err
	}
	return l, nil
}

// Validate reports whether l can enter a RouteGraph. A self-loop is valid as
// a value but is rejected by consolidation with ErrSelfLoop.
func (l Leg) Validate() error {
	switch {
	case l.Origin == "":
		return fmt.Errorf("%w: empty origin", ErrInvalidLeg)
	case l.Destination == "":
		return fmt.Errorf("%w: empty destination", ErrInvalidLeg)
	case math.IsNaN(l.Price) || math.IsInf(l.Price, 0):
		return fmt.Errorf("%w: %s→%s price=%v", ErrInvalidLeg, l.Origin, l.Destination, l.Price)
	case l.Price < 0:
		return fmt.Errorf("%w: %s→%s negative price=%.2f", ErrInvalidLeg, l.Origin, l.Destination, l.Price)
	case l.Duration < 0:
		return fmt.Errorf("%w: %s→%s negative duration=%d", ErrInvalidLeg, l.Origin, l.Destination, l.Duration)
	}
	return nil
}

// String renders the leg as a hop, e.g. "Emirates (DXB -> LHR)".
func (l Leg) String() string {
	return fmt.Sprintf("%s (%s -> %s)", l.Carrier, l.Origin, l.Destination)
}
