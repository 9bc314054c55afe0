package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

var (
	SearchLatencyMs       = prometheus.NewHistogram(prometheus.HistogramOpts{Name: "route_search_latency_ms", Help: "Graph build plus shortest-path search latency", Buckets: prometheus.ExponentialBuckets(0.05, 2, 16)})
	ProviderLatencyMs     = prometheus.NewHistogramVec(prometheus.HistogramOpts{Name: "provider_latency_ms", Help: "Offer fetch latency by provider", Buckets: prometheus.LinearBuckets(50, 250, 20)}, []string{"provider"})
	SearchesTotal         = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "route_searches_total", Help: "Route searches by criterion and outcome"}, []string{"criterion", "outcome"})
	OffersFetchedTotal    = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "offer_legs_fetched_total", Help: "Legs returned by offer providers"}, []string{"provider"})
	LegsConsolidatedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "legs_consolidated_total", Help: "Legs offered to the route graph by outcome"}, []string{"outcome"})
	ItineraryLegs         = prometheus.NewHistogram(prometheus.HistogramOpts{Name: "itinerary_legs", Help: "Legs per found itinerary", Buckets: prometheus.LinearBuckets(1, 1, 6)})
	GraphAirports         = prometheus.NewGauge(prometheus.GaugeOpts{Name: "route_graph_airports", Help: "Airports in the most recently built route graph"})
	APIErrorsTotal        = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "api_errors_total", Help: "Upstream API errors by provider and endpoint"}, []string{"provider", "endpoint"})
	ConversionsTotal      = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "currency_conversions_total", Help: "Currency conversions by outcome"}, []string{"outcome"})
	RateLimitWaitsTotal   = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "rate_limit_waits_total", Help: "Requests delayed by the client-side token bucket"}, []string{"provider"})
)

func Init(logger zerolog.Logger) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	toRegister := []prometheus.Collector{
		SearchLatencyMs, ProviderLatencyMs, SearchesTotal, OffersFetchedTotal,
		LegsConsolidatedTotal, ItineraryLegs, GraphAirports,
		APIErrorsTotal, ConversionsTotal, RateLimitWaitsTotal,
		collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	}
	for _, c := range toRegister {
		_ = reg.Register(c)
	}
	logger.Debug().Msg("Prometheus metrics initialized")
	return reg
}

func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
