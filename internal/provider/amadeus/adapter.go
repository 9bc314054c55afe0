// Package amadeus fetches flight offers from the Amadeus Self-Service API and
// flattens them into graph legs.
package amadeus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"flightroute/internal/config"
	"flightroute/internal/graph"
	"flightroute/internal/infra/metrics"
	"flightroute/internal/infra/network"
	"flightroute/internal/provider/common"
)

var (
	ErrMissingCredentials = errors.New("amadeus: API key and secret are required")
	ErrUnauthorized       = errors.New("amadeus: unauthorized")
	ErrUpstream           = errors.New("amadeus: upstream error")
	ErrMalformedResponse  = errors.New("amadeus: malformed response")
)

const (
	name          = "amadeus"
	tokenPath     = "/v1/security/oauth2/token"
	offersPath    = "/v2/shopping/flight-offers"
	tokenMargin   = 30 * time.Second
	rttWindowSize = 8
)

type Adapter struct {
	baseURL   string
	apiKey    string
	apiSecret string
	http      *http.Client
	limiter   *network.TokenBucket
	namer     common.CarrierNamer
	log       zerolog.Logger
	now       func() time.Time

	mu      sync.Mutex
	token   string
	expires time.Time
	rtts    []float64
}

// New builds an adapter from the provider section of cfg. A nil namer
// leaves carrier codes unresolved.
func New(cfg config.Config, namer common.CarrierNamer, logger zerolog.Logger) (*Adapter, error) {
	ac := cfg.Provider.Amadeus
	if ac.APIKey == "" || ac.APISecret == "" {
		return nil, ErrMissingCredentials
	}
	if namer == nil {
		namer = common.CodeNamer{}
	}
	rate, burst := ac.RatePerSec, ac.Burst
	if rate <= 0 {
		rate = 10
	}
	if burst <= 0 {
		burst = int(rate)
	}
	timeout := time.Duration(cfg.Search.TimeoutSeconds) * time.Second
	return &Adapter{
		baseURL:   strings.TrimRight(ac.BaseURL, "/"),
		apiKey:    ac.APIKey,
		apiSecret: ac.APISecret,
		http:      network.NewHTTPClient(timeout),
		limiter:   network.NewTokenBucket(burst, rate, ac.BaselineRTTMs),
		namer:     namer,
		log:       logger.With().Str("provider", name).Logger(),
		now:       time.Now,
	}, nil
}

func (a *Adapter) Name() string { return name }

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

type apiErrors struct {
	Errors []struct {
		Status int    `json:"status"`
		Code   int    `json:"code"`
		Title  string `json:"title"`
		Detail string `json:"detail"`
	} `json:"errors"`
}

func (e apiErrors) String() string {
	var parts []string
	for _, x := range e.Errors {
		s := x.Title
		if x.Detail != "" {
			s += ": " + x.Detail
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, "; ")
}

type offersResponse struct {
	Data []offer `json:"data"`
}

type offer struct {
	ID    string `json:"id"`
	Price struct {
		Total    string `json:"total"`
		Currency string `json:"currency"`
	} `json:"price"`
	Itineraries []itinerary `json:"itineraries"`
}

type itinerary struct {
	Duration string    `json:"duration"`
	Segments []segment `json:"segments"`
}

type segment struct {
	Departure struct {
		IATACode string `json:"iataCode"`
	} `json:"departure"`
	Arrival struct {
		IATACode string `json:"iataCode"`
	} `json:"arrival"`
	CarrierCode string `json:"carrierCode"`
	Duration    string `json:"duration"`
}

// SearchLegs queries flight offers and emits one leg per segment. Each leg
// carries its itinerary's share of the offer price.
func (a *Adapter) SearchLegs(ctx context.Context, req common.SearchRequest) ([]graph.Leg, error) {
	q := url.Values{}
	q.Set("originLocationCode", req.Origin)
	q.Set("destinationLocationCode", req.Destination)
	q.Set("departureDate", req.Date.Format(common.DateLayout))
	adults := req.Adults
	if adults < 1 {
		adults = 1
	}
	q.Set("adults", strconv.Itoa(adults))
	if req.Max > 0 {
		q.Set("max", strconv.Itoa(req.Max))
	}

	body, err := a.getOffers(ctx, q, true)
	if err != nil {
		return nil, err
	}
	var resp offersResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		a.countError("offers")
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	legs, err := a.flatten(resp.Data)
	if err != nil {
		a.countError("offers")
		return nil, err
	}
	a.log.Debug().Int("offers", len(resp.Data)).Int("legs", len(legs)).
		Str("origin", req.Origin).Str("destination", req.Destination).Msg("offers fetched")
	return legs, nil
}

func (a *Adapter) getOffers(ctx context.Context, q url.Values, retryAuth bool) ([]byte, error) {
	tok, err := a.accessToken(ctx)
	if err != nil {
		return nil, err
	}
	if err := a.wait(ctx); err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+offersPath+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+tok)
	httpReq.Header.Set("Accept", "application/vnd.amadeus+json, application/json")

	start := a.now()
	resp, err := a.http.Do(httpReq)
	if err != nil {
		a.countError("offers")
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		a.countError("offers")
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	a.observeRTT(a.now().Sub(start))

	switch {
	case resp.StatusCode == http.StatusUnauthorized && retryAuth:
		// token revoked or expired early; fetch a new one once
		a.invalidateToken()
		return a.getOffers(ctx, q, false)
	case resp.StatusCode == http.StatusUnauthorized:
		a.countError("offers")
		return nil, fmt.Errorf("%w: %s", ErrUnauthorized, describe(body))
	case resp.StatusCode != http.StatusOK:
		a.countError("offers")
		return nil, fmt.Errorf("%w: status %d: %s", ErrUpstream, resp.StatusCode, describe(body))
	}
	return body, nil
}

func (a *Adapter) flatten(offers []offer) ([]graph.Leg, error) {
	var legs []graph.Leg
	for _, o := range offers {
		total, err := strconv.ParseFloat(strings.TrimSpace(o.Price.Total), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: offer %s price %q", ErrMalformedResponse, o.ID, o.Price.Total)
		}
		for _, it := range o.Itineraries {
			n := len(it.Segments)
			if n == 0 {
				continue
			}
			share := total / float64(n)
			var itinMinutes int
			if it.Duration != "" {
				if itinMinutes, err = parseDuration(it.Duration); err != nil {
					return nil, fmt.Errorf("%w: offer %s: %v", ErrMalformedResponse, o.ID, err)
				}
			}
			for _, s := range it.Segments {
				minutes := itinMinutes / n
				if s.Duration != "" {
					if minutes, err = parseDuration(s.Duration); err != nil {
						return nil, fmt.Errorf("%w: offer %s: %v", ErrMalformedResponse, o.ID, err)
					}
				}
				leg := graph.Leg{
					Origin:      strings.ToUpper(s.Departure.IATACode),
					Destination: strings.ToUpper(s.Arrival.IATACode),
					Price:       share,
					Duration:    minutes,
					Carrier:     a.namer.Name(s.CarrierCode),
				}
				if err := leg.Validate(); err != nil {
					return nil, fmt.Errorf("%w: offer %s: %v", ErrMalformedResponse, o.ID, err)
				}
				legs = append(legs, leg)
			}
		}
	}
	return legs, nil
}

// accessToken returns the cached bearer token, refreshing it when it is
// missing or about to expire.
func (a *Adapter) accessToken(ctx context.Context) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.token != "" && a.now().Before(a.expires) {
		return a.token, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", a.apiKey)
	form.Set("client_secret", a.apiSecret)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+tokenPath, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := a.http.Do(req)
	if err != nil {
		a.countError("token")
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer func() { _ = resp.Body.Close() }()
	body, _ := io.ReadAll(resp.Body)

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusBadRequest:
		a.countError("token")
		return "", fmt.Errorf("%w: %s", ErrUnauthorized, describe(body))
	case resp.StatusCode != http.StatusOK:
		a.countError("token")
		return "", fmt.Errorf("%w: token status %d", ErrUpstream, resp.StatusCode)
	}
	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil || tr.AccessToken == "" {
		a.countError("token")
		return "", fmt.Errorf("%w: token response", ErrMalformedResponse)
	}
	ttl := time.Duration(tr.ExpiresIn)*time.Second - tokenMargin
	if ttl < 0 {
		ttl = 0
	}
	a.token = tr.AccessToken
	a.expires = a.now().Add(ttl)
	a.log.Debug().Int("expires_in", tr.ExpiresIn).Msg("access token refreshed")
	return a.token, nil
}

func (a *Adapter) invalidateToken() {
	a.mu.Lock()
	a.token = ""
	a.mu.Unlock()
}

func (a *Adapter) wait(ctx context.Context) error {
	waited, err := a.limiter.Wait(ctx)
	if waited {
		metrics.RateLimitWaitsTotal.WithLabelValues(name).Inc()
	}
	return err
}

// observeRTT feeds the median of each full sample window to the limiter.
func (a *Adapter) observeRTT(d time.Duration) {
	a.mu.Lock()
	a.rtts = append(a.rtts, float64(d.Microseconds())/1000)
	if len(a.rtts) < rttWindowSize {
		a.mu.Unlock()
		return
	}
	window := a.rtts
	a.rtts = nil
	a.mu.Unlock()

	sort.Float64s(window)
	median := window[len(window)/2]
	a.limiter.AdjustForRTT(median)
}

func (a *Adapter) countError(endpoint string) {
	metrics.APIErrorsTotal.WithLabelValues(name, endpoint).Inc()
}

func describe(body []byte) string {
	var e apiErrors
	if err := json.Unmarshal(body, &e); err == nil && len(e.Errors) > 0 {
		return e.String()
	}
	s := strings.TrimSpace(string(body))
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}
