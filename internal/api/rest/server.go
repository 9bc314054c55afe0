// Package rest exposes route search and airport lookup over HTTP.
package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/pprof"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"

	"flightroute/internal/currency"
	"flightroute/internal/graph"
	"flightroute/internal/infra/health"
	"flightroute/internal/infra/http/middleware"
	"flightroute/internal/infra/log"
	"flightroute/internal/infra/metrics"
	"flightroute/internal/infra/version"
	"flightroute/internal/planner"
	"flightroute/internal/provider/common"
	"flightroute/internal/refdata"
	"flightroute/internal/render"
)

// RoutePlanner answers one route query.
type RoutePlanner interface {
	Plan(ctx context.Context, q planner.Query) (planner.Result, error)
}

type Options struct {
	Planner          RoutePlanner
	Airports         *refdata.Airports
	Converter        currency.Converter // optional
	Registry         *prometheus.Registry
	AdminCIDRs       []*net.IPNet
	CORSOrigins      []string
	Pprof            bool
	DefaultCriterion graph.Criterion
	Logger           log.Logger
}

type Server struct {
	opts   Options
	router chi.Router
}

func New(opts Options) *Server {
	if !opts.DefaultCriterion.Valid() {
		opts.DefaultCriterion = graph.Price
	}
	s := &Server{opts: opts}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(opts.Logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader},
		MaxAge:         300,
	}))

	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)
	r.Get("/version", version.Handler)
	if opts.Registry != nil {
		r.Handle("/metrics", middleware.AdminGate(opts.AdminCIDRs, metrics.Handler(opts.Registry)))
	}
	if opts.Pprof {
		gate := func(h http.HandlerFunc) http.Handler { return middleware.AdminGate(opts.AdminCIDRs, h) }
		r.Handle("/debug/pprof/", gate(pprof.Index))
		r.Handle("/debug/pprof/cmdline", gate(pprof.Cmdline))
		r.Handle("/debug/pprof/profile", gate(pprof.Profile))
		r.Handle("/debug/pprof/symbol", gate(pprof.Symbol))
		r.Handle("/debug/pprof/trace", gate(pprof.Trace))
		r.Handle("/debug/pprof/{name}", gate(pprof.Index))
	}

	r.Route("/v1", func(r chi.Router) {
		r.Get("/routes", s.getRoute)
		r.Get("/airports", s.searchAirports)
		r.Get("/airports/{iata}", s.getAirport)
	})
	s.router = r
	return s
}

func (s *Server) Handler() http.Handler { return s.router }

type errorResponse struct {
	Error string `json:"error"`
}

type routeResponse struct {
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	Date        string `json:"date"`
	render.Summary
	LegsFetched int `json:"legs_fetched"`
	LegsSkipped int `json:"legs_skipped"`
}

type airportsResponse struct {
	Count    int               `json:"count"`
	Airports []refdata.Airport `json:"airports"`
}

// getRoute handles GET /v1/routes?origin=&destination=&date=&mode=&max=
func (s *Server) getRoute(w http.ResponseWriter, r *http.Request) {
	qv := r.URL.Query()
	q := planner.Query{
		Origin:      qv.Get("origin"),
		Destination: qv.Get("destination"),
		Criterion:   s.opts.DefaultCriterion,
	}
	if v := qv.Get("mode"); v != "" {
		c, err := graph.ParseCriterion(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "mode must be cheapest or shortest")
			return
		}
		q.Criterion = c
	}
	date, err := time.Parse(common.DateLayout, qv.Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}
	q.Date = date
	if v := qv.Get("max"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "max must be a positive integer")
			return
		}
		q.MaxOffers = n
	}

	res, err := s.opts.Planner.Plan(r.Context(), q)
	switch {
	case err == nil:
	case planner.IsInvalidQuery(err):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusGatewayTimeout, "offer search timed out")
		return
	case errors.Is(err, planner.ErrSourceFailed):
		writeError(w, http.StatusBadGateway, err.Error())
		return
	default:
		s.opts.Logger.Error().Err(err).Str("rid", middleware.GetRequestID(r.Context())).Msg("route search failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, routeResponse{
		Origin:      res.Query.Origin,
		Destination: res.Query.Destination,
		Date:        res.Query.Date.Format(common.DateLayout),
		Summary:     render.Summarize(r.Context(), res.Itinerary, res.Query.Criterion, s.opts.Converter),
		LegsFetched: res.LegsFetched,
		LegsSkipped: res.LegsSkipped,
	})
}

// searchAirports handles GET /v1/airports?country=
func (s *Server) searchAirports(w http.ResponseWriter, r *http.Request) {
	if s.opts.Airports == nil {
		writeError(w, http.StatusServiceUnavailable, "airport data not loaded")
		return
	}
	country := strings.TrimSpace(r.URL.Query().Get("country"))
	if country == "" {
		writeError(w, http.StatusBadRequest, "country is required")
		return
	}
	list := s.opts.Airports.SearchByCountry(country)
	if list == nil {
		list = []refdata.Airport{}
	}
	writeJSON(w, http.StatusOK, airportsResponse{Count: len(list), Airports: list})
}

// getAirport handles GET /v1/airports/{iata}
func (s *Server) getAirport(w http.ResponseWriter, r *http.Request) {
	if s.opts.Airports == nil {
		writeError(w, http.StatusServiceUnavailable, "airport data not loaded")
		return
	}
	a, ok := s.opts.Airports.Lookup(chi.URLParam(r, "iata"))
	if !ok {
		writeError(w, http.StatusNotFound, "airport not found")
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
