package prompt

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flightroute/internal/graph"
	"flightroute/internal/refdata"
)

const airportsCSV = `country,city,country_code,region,iata,icao,name,type,lat,lon
Pakistan,Karachi,PK,Sindh,KHI,OPKC,Jinnah International,large,24.9065,67.1608
Pakistan,Sukkur,PK,Sindh,SKZ,OPSK,Sukkur Airport,medium,27.722,68.7917
Pakistan,Lahore,PK,Punjab,LHE,OPLA,Allama Iqbal International,large,31.5216,74.4036
Papua New Guinea,Port Moresby,PG,National Capital,POM,AYPY,Jacksons International,large,-9.4434,147.22
United Kingdom,London,GB,England,LHR,EGLL,Heathrow,large,51.47,-0.4543
`

func newPrompter(t *testing.T, input string) (*Prompter, *bytes.Buffer) {
	t.Helper()
	a, err := refdata.LoadAirports(strings.NewReader(airportsCSV))
	require.NoError(t, err)
	var out bytes.Buffer
	p := New(strings.NewReader(input), &out, a)
	p.now = func() time.Time { return time.Date(2030, 5, 1, 15, 0, 0, 0, time.UTC) }
	return p, &out
}

func TestSelectAirport_SeveralCountries(t *testing.T) {
	// "pa" matches Pakistan and Papua New Guinea
	p, out := newPrompter(t, "pa\n1\n2\n1\n")
	a, err := p.SelectAirport(Origin)
	require.NoError(t, err)
	assert.Equal(t, "KHI", a.IATA)
	assert.Contains(t, out.String(), "|- 2: Papua New Guinea")
	assert.Contains(t, out.String(), "Following are the regions in Pakistan:")
	assert.Contains(t, out.String(), "|- 1: Karachi - Jinnah International (KHI)")
	assert.Contains(t, out.String(), "Your flight will take off from Jinnah International")
}

func TestSelectAirport_SingleCountrySkipsCountryMenu(t *testing.T) {
	p, out := newPrompter(t, "kingdom\n1\n1\n")
	a, err := p.SelectAirport(Destination)
	require.NoError(t, err)
	assert.Equal(t, "LHR", a.IATA)
	assert.NotContains(t, out.String(), "Select your country")
	assert.Contains(t, out.String(), "Your flight will land at Heathrow")
}

func TestSelectAirport_Errors(t *testing.T) {
	cases := []struct {
		input string
		want  error
	}{
		{"\n", ErrEmptyInput},
		{"", ErrEmptyInput},
		{"atlantis\n", ErrNoMatch},
		{"pa\n3\n", ErrInvalidSelection},
		{"pa\n0\n", ErrInvalidSelection},
		{"pa\nx\n", ErrInvalidSelection},
		{"kingdom\n1\n9\n", ErrInvalidSelection},
		{"kingdom\n1\n", ErrEmptyInput},
	}
	for _, tc := range cases {
		p, _ := newPrompter(t, tc.input)
		_, err := p.SelectAirport(Origin)
		assert.ErrorIs(t, err, tc.want, "%q", tc.input)
	}
}

func TestDate(t *testing.T) {
	p, _ := newPrompter(t, "2030-05-01\n")
	d, err := p.Date()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2030, 5, 1, 0, 0, 0, 0, time.UTC), d)

	for in, want := range map[string]error{
		"2030-04-30\n": ErrPastDate,
		"01/05/2030\n": ErrBadDate,
		"2030-02-30\n": ErrBadDate,
		"\n":           ErrEmptyInput,
	} {
		p, _ := newPrompter(t, in)
		_, err := p.Date()
		assert.ErrorIs(t, err, want, "%q", in)
	}
}

func TestMode(t *testing.T) {
	for in, want := range map[string]graph.Criterion{"1\n": graph.Price, "2\n": graph.Duration, " shortest \n": graph.Duration} {
		p, _ := newPrompter(t, in)
		c, err := p.Mode()
		require.NoError(t, err, in)
		assert.Equal(t, want, c)
	}
	p, out := newPrompter(t, "3\n")
	_, err := p.Mode()
	assert.ErrorIs(t, err, ErrInvalidSelection)
	assert.Contains(t, out.String(), "1. Cheapest Flight")
}
