// Package common defines the contract between the route planner and the
// sources that supply flight legs.
package common

import (
	"context"
	"time"

	"flightroute/internal/graph"
)

// DateLayout is the departure date format used by every source.
const DateLayout = "2006-01-02"

type SearchRequest struct {
	Origin      string
	Destination string
	Date        time.Time
	Adults      int
	Max         int // upper bound on offers requested; 0 means source default
}

// OfferSource fetches candidate legs for one origin/destination/date. An
// empty slice with a nil error means the source had nothing to offer.
type OfferSource interface {
	Name() string
	SearchLegs(ctx context.Context, req SearchRequest) ([]graph.Leg, error)
}

// CarrierNamer resolves carrier codes to display names.
type CarrierNamer interface {
	Name(code string) string
}

// CodeNamer leaves carrier codes as they are.
type CodeNamer struct{}

func (CodeNamer) Name(code string) string { return code }
