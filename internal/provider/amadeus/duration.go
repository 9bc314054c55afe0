package amadeus

import (
	"fmt"
	"strconv"
	"strings"
)

// parseDuration converts an ISO-8601 duration such as PT2H35M or P1DT3H
// into whole minutes. Seconds are truncated.
func parseDuration(s string) (int, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "P") || len(s) < 2 {
		return 0, fmt.Errorf("amadeus: bad duration %q", s)
	}
	var (
		total  float64
		num    strings.Builder
		inTime bool
		seen   bool
	)
	for _, r := range s[1:] {
		switch {
		case r == 'T':
			if inTime || num.Len() > 0 {
				return 0, fmt.Errorf("amadeus: bad duration %q", s)
			}
			inTime = true
		case (r >= '0' && r <= '9') || r == '.':
			num.WriteRune(r)
		default:
			if num.Len() == 0 {
				return 0, fmt.Errorf("amadeus: bad duration %q", s)
			}
			v, err := strconv.ParseFloat(num.String(), 64)
			if err != nil {
				return 0, fmt.Errorf("amadeus: bad duration %q: %w", s, err)
			}
			num.Reset()
			switch {
			case r == 'D' && !inTime:
				total += v * 24 * 60
			case r == 'H' && inTime:
				total += v * 60
			case r == 'M' && inTime:
				total += v
			case r == 'S' && inTime:
				total += v / 60
			default:
				return 0, fmt.Errorf("amadeus: bad duration %q", s)
			}
			seen = true
		}
	}
	if num.Len() > 0 || !seen {
		return 0, fmt.Errorf("amadeus: bad duration %q", s)
	}
	return int(total), nil
}
