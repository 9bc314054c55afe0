package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const airportsCSV = `country,city,country_code,region,iata,icao,name,type,lat,lon
Pakistan,Karachi,PK,Sindh,KHI,OPKC,Jinnah International,large,24.9065,67.1608
United Arab Emirates,Dubai,AE,Dubai,DXB,OMDB,Dubai International,large,25.2528,55.3644
United Kingdom,London,GB,England,LHR,EGLL,Heathrow,large,51.47,-0.4543
`

const offersCSV = `origin,destination,price,duration_minutes,carrier
KHI,DXB,150,130,Emirates
DXB,LHR,200,420,Emirates
KHI,LHR,500,480,PIA
`

// setup points the configuration at CSV fixtures in a temp dir and runs the
// test from there so no .env is picked up.
func setup(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "airports.csv"), []byte(airportsCSV), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "offers.csv"), []byte(offersCSV), 0o600))
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	t.Setenv("FLIGHTROUTE_CONFIG", "")
	t.Setenv("FLIGHTROUTE_PROVIDER", "csv")
	t.Setenv("FLIGHTROUTE_OFFERS_CSV", "offers.csv")
	t.Setenv("FLIGHTROUTE_AIRPORTS_CSV", "airports.csv")
	t.Setenv("FLIGHTROUTE_AIRLINES_CSV", "missing-airlines.csv")
	t.Setenv("FLIGHTROUTE_CURRENCY_ENABLED", "false")
	t.Setenv("FLIGHTROUTE_LOG_LEVEL", "error")
}

func tomorrow() string { return time.Now().AddDate(0, 0, 1).Format("2006-01-02") }

func TestRun_Usage(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, 2, run(nil, strings.NewReader(""), &stdout, &stderr))
	assert.Contains(t, stderr.String(), "usage: flightroute")

	stderr.Reset()
	setup(t)
	assert.Equal(t, 2, run([]string{"fly"}, strings.NewReader(""), &stdout, &stderr))
	assert.Contains(t, stderr.String(), `unknown command "fly"`)
}

func TestRun_Version(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, 0, run([]string{"version"}, strings.NewReader(""), &stdout, &stderr))
	assert.True(t, strings.HasPrefix(stdout.String(), "flightroute dev"))
}

func TestRun_SearchCheapest(t *testing.T) {
	setup(t)
	var stdout, stderr bytes.Buffer
	code := run([]string{"search", "-origin", "KHI", "-destination", "LHR", "-date", tomorrow()}, strings.NewReader(""), &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())
	out := stdout.String()
	assert.Contains(t, out, "FLIGHT SUMMARY")
	assert.Contains(t, out, "Origin: Karachi, Pakistan (KHI)")
	assert.Contains(t, out, "The Cheapest Route for you will be:")
	assert.Contains(t, out, "Route: Emirates (KHI -> DXB) -> Emirates (DXB -> LHR)")
	assert.Contains(t, out, "Total Price: 350.00")
	assert.Contains(t, out, "Total Duration: 09 Hours and 10 Minutes")
}

func TestRun_SearchShortest(t *testing.T) {
	setup(t)
	var stdout, stderr bytes.Buffer
	code := run([]string{"search", "-origin", "KHI", "-destination", "LHR", "-date", tomorrow(), "-mode", "shortest"}, strings.NewReader(""), &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())
	assert.Contains(t, stdout.String(), "The Shortest Route for you will be:")
	assert.Contains(t, stdout.String(), "Route: PIA (KHI -> LHR)")
}

func TestRun_SearchNoRoute(t *testing.T) {
	setup(t)
	var stdout, stderr bytes.Buffer
	code := run([]string{"search", "-origin", "LHR", "-destination", "KHI", "-date", tomorrow()}, strings.NewReader(""), &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())
	assert.Contains(t, stdout.String(), "We're sorry but there are no flights available")
}

func TestRun_SearchErrors(t *testing.T) {
	setup(t)
	for _, args := range [][]string{
		{"search", "-origin", "KHI", "-destination", "LHR", "-date", "2000-01-01"},
		{"search", "-origin", "KHI", "-destination", "LHR", "-date", tomorrow(), "-mode", "fastest"},
		{"search", "-origin", "KHI", "-destination", "KHI", "-date", tomorrow()},
	} {
		var stdout, stderr bytes.Buffer
		assert.Equal(t, 1, run(args, strings.NewReader(""), &stdout, &stderr), args)
		assert.Contains(t, stderr.String(), "error:", args)
	}
}

func TestRun_Interactive(t *testing.T) {
	setup(t)
	// origin: "pakistan" -> region 1 -> city 1; destination: "kingdom" -> 1 -> 1
	input := "pakistan\n1\n1\nkingdom\n1\n1\n" + tomorrow() + "\n2\n"
	var stdout, stderr bytes.Buffer
	code := run([]string{"interactive"}, strings.NewReader(input), &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())
	out := stdout.String()
	assert.Contains(t, out, "Your flight will take off from Jinnah International")
	assert.Contains(t, out, "Your flight will land at Heathrow")
	assert.Contains(t, out, "Origin: Pakistan (KHI)")
	assert.Contains(t, out, "Shortest: Yes")
	assert.Contains(t, out, "Route: PIA (KHI -> LHR)")
}

func TestRun_InteractiveBadInput(t *testing.T) {
	setup(t)
	var stdout, stderr bytes.Buffer
	code := run([]string{"interactive"}, strings.NewReader("atlantis\n"), &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "no airports found")
}
