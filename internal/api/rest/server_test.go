package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flightroute/internal/config"
	"flightroute/internal/graph"
	"flightroute/internal/infra/health"
	"flightroute/internal/infra/log"
	"flightroute/internal/infra/metrics"
	"flightroute/internal/infra/netutil"
	"flightroute/internal/planner"
	"flightroute/internal/provider/common"
	"flightroute/internal/refdata"
)

const airportsCSV = `country,city,country_code,region,iata,icao,name,type,lat,lon
Pakistan,Karachi,PK,Sindh,KHI,OPKC,Jinnah International,large,24.9065,67.1608
United Arab Emirates,Dubai,AE,Dubai,DXB,OMDB,Dubai International,large,25.2528,55.3644
United Kingdom,London,GB,England,LHR,EGLL,Heathrow,large,51.47,-0.4543
`

type stubSource struct {
	legs []graph.Leg
	err  error
}

func (s stubSource) Name() string { return "stub" }

func (s stubSource) SearchLegs(ctx context.Context, _ common.SearchRequest) ([]graph.Leg, error) {
	return s.legs, s.err
}

type halfRate struct{}

func (halfRate) Convert(_ context.Context, v float64) (float64, error) { return v / 2, nil }
func (halfRate) Target() string { return "GBP" }

func legs() []graph.Leg {
	return []graph.Leg{
		{Origin: "KHI", Destination: "DXB", Price: 150, Duration: 130, Carrier: "Emirates"},
		{Origin: "DXB", Destination: "LHR", Price: 200, Duration: 420, Carrier: "Emirates"},
		{Origin: "KHI", Destination: "LHR", Price: 500, Duration: 480, Carrier: "PIA"},
	}
}

func newServer(t *testing.T, src common.OfferSource) *httptest.Server {
	t.Helper()
	airports, err := refdata.LoadAirports(strings.NewReader(airportsCSV))
	require.NoError(t, err)

	var cfg config.Config
	cfg.Search.MaxOffers = 50
	logger := log.Nop()
	cidrs, _ := netutil.ParseCIDRs([]string{"127.0.0.0/8", "::1/128"})
	s := New(Options{
		Planner:     planner.New(cfg, src, airports, logger),
		Airports:    airports,
		Converter:   halfRate{},
		Registry:    metrics.Init(logger),
		AdminCIDRs:  cidrs,
		CORSOrigins: []string{"https://example.test"},
		Logger:      logger,
	})
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return srv
}

func getJSON(t *testing.T, url string, v any) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if v != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	}
	return resp
}

func TestGetRoute_Cheapest(t *testing.T) {
	srv := newServer(t, stubSource{legs: legs()})

	var body map[string]any
	resp := getJSON(t, srv.URL+"/v1/routes?origin=khi&destination=LHR&date=2099-01-15", &body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.NotEmpty(t, resp.Header.Get("X-Request-Id"))

	assert.Equal(t, "KHI", body["origin"])
	assert.Equal(t, "2099-01-15", body["date"])
	assert.Equal(t, "cheapest", body["criterion"])
	assert.Equal(t, true, body["found"])
	assert.Equal(t, 350.0, body["total_price"])
	assert.Equal(t, 175.0, body["converted_price"])
	assert.Equal(t, "GBP", body["target_currency"])
	assert.Equal(t, 550.0, body["total_duration_minutes"])
	assert.Equal(t, "09 Hours and 10 Minutes", body["duration"])
	assert.Len(t, body["legs"], 2)
	assert.Equal(t, 3.0, body["legs_fetched"])
}

func TestGetRoute_Shortest(t *testing.T) {
	srv := newServer(t, stubSource{legs: legs()})
	var body map[string]any
	resp := getJSON(t, srv.URL+"/v1/routes?origin=KHI&destination=LHR&date=2099-01-15&mode=shortest&max=5", &body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "shortest", body["criterion"])
	assert.Equal(t, "PIA (KHI -> LHR)", body["hops"])
}

func TestGetRoute_NotFound(t *testing.T) {
	srv := newServer(t, stubSource{})
	var body map[string]any
	resp := getJSON(t, srv.URL+"/v1/routes?origin=KHI&destination=LHR&date=2099-01-15", &body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, body["found"])
	assert.Empty(t, body["legs"])
}

func TestGetRoute_BadRequests(t *testing.T) {
	srv := newServer(t, stubSource{legs: legs()})
	for _, q := range []string{
		"origin=KHI&destination=LHR",
		"origin=KHI&destination=LHR&date=15-01-2099",
		"origin=KHI&destination=LHR&date=2099-01-15&mode=fastest",
		"origin=KHI&destination=LHR&date=2099-01-15&max=0",
		"destination=LHR&date=2099-01-15",
		"origin=KHI&destination=khi&date=2099-01-15",
		"origin=KHI&destination=LHR&date=2000-01-15",
		"origin=KHI&destination=XXX&date=2099-01-15",
	} {
		var body errorResponse
		resp := getJSON(t, srv.URL+"/v1/routes?"+q, &body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, q)
		assert.NotEmpty(t, body.Error, q)
	}
}

func TestGetRoute_ProviderFailure(t *testing.T) {
	srv := newServer(t, stubSource{err: errors.New("upstream 500")})
	var body errorResponse
	resp := getJSON(t, srv.URL+"/v1/routes?origin=KHI&destination=LHR&date=2099-01-15", &body)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Contains(t, body.Error, "upstream 500")
}

func TestAirports(t *testing.T) {
	srv := newServer(t, stubSource{})

	var list airportsResponse
	resp := getJSON(t, srv.URL+"/v1/airports?country=united", &list)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 2, list.Count)
	assert.Equal(t, "DXB", list.Airports[0].IATA)

	resp = getJSON(t, srv.URL+"/v1/airports?country=atlantis", &list)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 0, list.Count)
	assert.NotNil(t, list.Airports)

	resp = getJSON(t, srv.URL+"/v1/airports", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var a refdata.Airport
	resp = getJSON(t, srv.URL+"/v1/airports/lhr", &a)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Heathrow", a.Name)

	resp = getJSON(t, srv.URL+"/v1/airports/ZZZ", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAdminAndProbes(t *testing.T) {
	srv := newServer(t, stubSource{})
	t.Cleanup(func() { health.SetReady(false) })

	health.SetReady(false)
	resp := getJSON(t, srv.URL+"/readyz", nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	health.SetReady(true)
	resp = getJSON(t, srv.URL+"/readyz", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = getJSON(t, srv.URL+"/healthz", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var v map[string]string
	resp = getJSON(t, srv.URL+"/version", &v)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, v, "version")

	metricsResp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer metricsResp.Body.Close()
	assert.Equal(t, http.StatusOK, metricsResp.StatusCode)
	b, err := io.ReadAll(metricsResp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(b), "route_graph_airports")
}

func TestCORSPreflight(t *testing.T) {
	srv := newServer(t, stubSource{})
	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/v1/routes", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://example.test")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "https://example.test", resp.Header.Get("Access-Control-Allow-Origin"))
}
