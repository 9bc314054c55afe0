// Package currency converts itinerary totals from the offer currency into the
// display currency using the ExchangeRate-API pair endpoint.
package currency

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"flightroute/internal/config"
	"flightroute/internal/infra/metrics"
	"flightroute/internal/infra/network"
)

var (
	ErrMissingAPIKey     = errors.New("currency: API key is required")
	ErrConversionFailed  = errors.New("currency: conversion failed")
	ErrMalformedResponse = errors.New("currency: malformed response")
	ErrUpstream          = errors.New("currency: upstream error")
	ErrNegativeAmount    = errors.New("currency: negative amount")
)

// Converter turns an amount in the offer currency into Target().
type Converter interface {
	Convert(ctx context.Context, amount float64) (float64, error)
	Target() string
}

// DefaultRateTTL bounds how long a fetched rate is reused.
const DefaultRateTTL = 10 * time.Minute

type Client struct {
	baseURL string
	apiKey  string
	from    string
	to      string
	ttl     time.Duration
	http    *http.Client
	log     zerolog.Logger
	now     func() time.Time

	mu      sync.Mutex
	rate    float64
	fetched time.Time
}

func New(cfg config.Config, logger zerolog.Logger) (*Client, error) {
	cc := cfg.Currency
	if strings.TrimSpace(cc.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}
	return &Client{
		baseURL: strings.TrimRight(cc.BaseURL, "/"),
		apiKey:  cc.APIKey,
		from:    strings.ToUpper(cc.From),
		to:      strings.ToUpper(cc.To),
		ttl:     DefaultRateTTL,
		http:    network.NewHTTPClient(10 * time.Second),
		log:     logger.With().Str("component", "currency").Logger(),
		now:     time.Now,
	}, nil
}

func (c *Client) Source() string { return c.from }
func (c *Client) Target() string { return c.to }

type pairResponse struct {
	Result         string   `json:"result"`
	ErrorType      string   `json:"error-type"`
	BaseCode       string   `json:"base_code"`
	TargetCode     string   `json:"target_code"`
	ConversionRate *float64 `json:"conversion_rate"`
}

// Convert multiplies amount by the current FROM/TO rate.
func (c *Client) Convert(ctx context.Context, amount float64) (float64, error) {
	if amount < 0 {
		metrics.ConversionsTotal.WithLabelValues("error").Inc()
		return 0, fmt.Errorf("%w: %.2f", ErrNegativeAmount, amount)
	}
	rate, err := c.Rate(ctx)
	if err != nil {
		metrics.ConversionsTotal.WithLabelValues("error").Inc()
		return 0, err
	}
	metrics.ConversionsTotal.WithLabelValues("ok").Inc()
	return amount * rate, nil
}

// Rate returns the cached rate, fetching a fresh one once it is older than
// the TTL.
func (c *Client) Rate(ctx context.Context) (float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.rate > 0 && c.now().Sub(c.fetched) < c.ttl {
		return c.rate, nil
	}
	rate, err := c.fetch(ctx)
	if err != nil {
		return 0, err
	}
	c.rate, c.fetched = rate, c.now()
	c.log.Debug().Str("from", c.from).Str("to", c.to).Float64("rate", rate).Msg("exchange rate refreshed")
	return rate, nil
}

func (c *Client) fetch(ctx context.Context) (float64, error) {
	url := fmt.Sprintf("%s/v6/%s/pair/%s/%s", c.baseURL, c.apiKey, c.from, c.to)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.APIErrorsTotal.WithLabelValues("exchangerate", "pair").Inc()
		return 0, fmt.Errorf("%w: %v", ErrUpstream, redact(err.Error(), c.apiKey))
	}
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.APIErrorsTotal.WithLabelValues("exchangerate", "pair").Inc()
		return 0, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	var pr pairResponse
	decodeErr := json.Unmarshal(body, &pr)
	switch {
	case decodeErr == nil && pr.Result == "error":
		// the API reports bad keys and unsupported codes with a JSON body
		metrics.APIErrorsTotal.WithLabelValues("exchangerate", "pair").Inc()
		return 0, fmt.Errorf("%w: %s", ErrConversionFailed, pr.ErrorType)
	case resp.StatusCode != http.StatusOK:
		metrics.APIErrorsTotal.WithLabelValues("exchangerate", "pair").Inc()
		return 0, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	case decodeErr != nil:
		metrics.APIErrorsTotal.WithLabelValues("exchangerate", "pair").Inc()
		return 0, fmt.Errorf("%w: %v", ErrMalformedResponse, decodeErr)
	case pr.Result != "success":
		metrics.APIErrorsTotal.WithLabelValues("exchangerate", "pair").Inc()
		return 0, fmt.Errorf("%w: result %q", ErrConversionFailed, pr.Result)
	case pr.ConversionRate == nil || *pr.ConversionRate <= 0:
		metrics.APIErrorsTotal.WithLabelValues("exchangerate", "pair").Inc()
		return 0, fmt.Errorf("%w: missing conversion_rate", ErrMalformedResponse)
	}
	return *pr.ConversionRate, nil
}

// the key is part of the URL path and would otherwise leak into logs
func redact(s, secret string) string {
	if secret == "" {
		return s
	}
	return strings.ReplaceAll(s, secret, "***")
}
