// Package refdata loads the airport and airline lookup tables used to pick
// endpoints interactively and to name carriers in rendered itineraries.
package refdata

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
)

var ErrNoData = errors.New("refdata: no usable rows")

type Airport struct {
	Country     string  `json:"country"`
	City        string  `json:"city"`
	CountryCode string  `json:"country_code"`
	Region      string  `json:"region"`
	IATA        string  `json:"iata"`
	ICAO        string  `json:"icao"`
	Name        string  `json:"name"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
}

// Airports is an immutable table keyed by IATA code.
type Airports struct {
	byIATA  map[string]Airport
	skipped int
}

// minimum columns: seven named fields plus trailing lat,lon
const airportMinFields = 9

// LoadAirports reads country,city,country_code,region,iata,icao,name,...,lat,lon
// rows after a header line. Latitude and longitude are always the last two
// columns. Short rows, rows without an IATA code and rows with unparsable
// coordinates are skipped and counted. A later row for the same IATA code
// replaces an earlier one.
func LoadAirports(r io.Reader) (*Airports, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	if _, err := cr.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrNoData
		}
		return nil, fmt.Errorf("refdata: airports header: %w", err)
	}
	a := &Airports{byIATA: make(map[string]Airport)}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("refdata: airports: %w", err)
		}
		if len(rec) < airportMinFields {
			a.skipped++
			continue
		}
		iata := strings.ToUpper(strings.TrimSpace(rec[4]))
		lat, errLat := strconv.ParseFloat(strings.TrimSpace(rec[len(rec)-2]), 64)
		lon, errLon := strconv.ParseFloat(strings.TrimSpace(rec[len(rec)-1]), 64)
		if iata == "" || errLat != nil || errLon != nil {
			a.skipped++
			continue
		}
		a.byIATA[iata] = Airport{
			Country:     strings.TrimSpace(rec[0]),
			City:        strings.TrimSpace(rec[1]),
			CountryCode: strings.TrimSpace(rec[2]),
			Region:      strings.TrimSpace(rec[3]),
			IATA:        iata,
			ICAO:        strings.TrimSpace(rec[5]),
			Name:        strings.TrimSpace(rec[6]),
			Latitude:    lat,
			Longitude:   lon,
		}
	}
	if len(a.byIATA) == 0 {
		return nil, ErrNoData
	}
	return a, nil
}

func LoadAirportsFile(path string) (*Airports, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("refdata: open %s: %w", path, err)
	}
	defer f.Close()
	return LoadAirports(f)
}

func (a *Airports) Len() int { return len(a.byIATA) }

// Skipped is the number of malformed rows ignored while loading.
func (a *Airports) Skipped() int { return a.skipped }

func (a *Airports) Lookup(iata string) (Airport, bool) {
	ap, ok := a.byIATA[strings.ToUpper(strings.TrimSpace(iata))]
	return ap, ok
}

// SearchByCountry returns airports whose country name contains q, ignoring
// case, ordered by country, region, city and IATA code.
func (a *Airports) SearchByCountry(q string) []Airport {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return nil
	}
	var out []Airport
	for _, ap := range a.byIATA {
		if strings.Contains(strings.ToLower(ap.Country), q) {
			out = append(out, ap)
		}
	}
	sortAirports(out)
	return out
}

func sortAirports(list []Airport) {
	sort.Slice(list, func(i, j int) bool {
		x, y := list[i], list[j]
		if x.Country != y.Country {
			return x.Country < y.Country
		}
		if x.Region != y.Region {
			return x.Region < y.Region
		}
		if x.City != y.City {
			return x.City < y.City
		}
		return x.IATA < y.IATA
	})
}

// Countries returns the distinct country names in list, in first-seen order.
func Countries(list []Airport) []string {
	return distinct(list, func(a Airport) string { return a.Country })
}

// Regions returns the distinct region names in list, in first-seen order.
func Regions(list []Airport) []string {
	return distinct(list, func(a Airport) string { return a.Region })
}

func InCountry(list []Airport, country string) []Airport {
	return filter(list, func(a Airport) bool { return a.Country == country })
}

func InRegion(list []Airport, region string) []Airport {
	return filter(list, func(a Airport) bool { return a.Region == region })
}

func distinct(list []Airport, key func(Airport) string) []string {
	seen := make(map[string]struct{}, len(list))
	var out []string
	for _, a := range list {
		k := key(a)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

func filter(list []Airport, keep func(Airport) bool) []Airport {
	var out []Airport
	for _, a := range list {
		if keep(a) {
			out = append(out, a)
		}
	}
	return out
}
