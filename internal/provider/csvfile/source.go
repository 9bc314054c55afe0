// Package csvfile serves flight legs from a local CSV file, for offline runs
// and demos without API credentials.
//
// Format: origin,destination,price,duration_minutes,carrier
// A header row whose first column is "origin" is optional.
package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"flightroute/internal/graph"
	"flightroute/internal/provider/common"
)

type Source struct {
	path string
	legs []graph.Leg
}

// Load parses every row up front; a row that fails to parse aborts with its
// line number.
func Load(r io.Reader) (*Source, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.Comment = '#'

	s := &Source{}
	first := true
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csvfile: %w", err)
		}
		line, _ := cr.FieldPos(0)
		if first {
			first = false
			if isHeader(rec) {
				continue
			}
		}
		leg, err := parseRow(rec)
		if err != nil {
			return nil, fmt.Errorf("csvfile: line %d: %w", line, err)
		}
		s.legs = append(s.legs, leg)
	}
	return s, nil
}

func Open(path string) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("csvfile: open %s: %w", path, err)
	}
	defer f.Close()
	s, err := Load(f)
	if err != nil {
		return nil, err
	}
	s.path = path
	return s, nil
}

// isHeader recognises the column-name row. Anything else on the first line
// is data and must parse.
func isHeader(rec []string) bool {
	return len(rec) > 0 && strings.EqualFold(strings.TrimSpace(rec[0]), "origin")
}

func parseRow(rec []string) (graph.Leg, error) {
	if len(rec) < 5 {
		return graph.Leg{}, fmt.Errorf("want 5 fields, got %d", len(rec))
	}
	price, err := strconv.ParseFloat(strings.TrimSpace(rec[2]), 64)
	if err != nil {
		return graph.Leg{}, fmt.Errorf("price %q: %w", rec[2], err)
	}
	minutes, err := strconv.Atoi(strings.TrimSpace(rec[3]))
	if err != nil {
		return graph.Leg{}, fmt.Errorf("duration %q: %w", rec[3], err)
	}
	return graph.NewLeg(
		strings.ToUpper(strings.TrimSpace(rec[0])),
		strings.ToUpper(strings.TrimSpace(rec[1])),
		price, minutes,
		strings.TrimSpace(rec[4]),
	)
}

func (s *Source) Name() string { return "csv" }

func (s *Source) Len() int { return len(s.legs) }

// SearchLegs returns every leg in the file. Rows are connections rather
// than priced offers, so origin, destination and Max do not filter: the
// route search decides which legs matter. The date is ignored.
func (s *Source) SearchLegs(ctx context.Context, _ common.SearchRequest) ([]graph.Leg, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]graph.Leg, len(s.legs))
	copy(out, s.legs)
	return out, nil
}
