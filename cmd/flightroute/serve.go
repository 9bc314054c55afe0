package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"flightroute/internal/api/rest"
	"flightroute/internal/config"
	"flightroute/internal/graph"
	"flightroute/internal/infra/health"
	"flightroute/internal/infra/log"
	"flightroute/internal/infra/metrics"
	"flightroute/internal/infra/netutil"
	"flightroute/internal/infra/runner"
	"flightroute/internal/planner"
)

func runServe(ctx context.Context, cfg config.Config, logger log.Logger) error {
	registry := metrics.Init(logger)
	d, err := buildDeps(cfg, logger, false)
	if err != nil {
		return err
	}

	adminCIDRs, bad := netutil.ParseCIDRs(cfg.Server.AdminAllowCIDRs)
	if len(bad) > 0 {
		logger.Warn().Strs("entries", bad).Msg("ignoring invalid admin CIDRs")
	}
	def, err := graph.ParseCriterion(cfg.Search.DefaultCriterion)
	if err != nil {
		logger.Warn().Err(err).Msg("default criterion falls back to cheapest")
		def = graph.Price
	}

	api := rest.New(rest.Options{
		Planner:          planner.New(cfg, d.source, d.airports, logger),
		Airports:         d.airports,
		Converter:        d.converter,
		Registry:         registry,
		AdminCIDRs:       adminCIDRs,
		CORSOrigins:      cfg.Server.CORSOrigins,
		Pprof:            cfg.Server.Pprof,
		DefaultCriterion: def,
		Logger:           logger,
	})
	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 2 * time.Second,
		ReadTimeout:       time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout:      time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
		IdleTimeout:       time.Duration(cfg.Server.IdleTimeoutSeconds) * time.Second,
	}

	g := &runner.Group{}
	serveErr := g.Go(ctx, func(context.Context) error {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	logger.Info().Str("addr", cfg.Server.Addr).Str("provider", d.source.Name()).Msg("flightroute API started")
	health.SetReady(true)

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
	case runErr = <-serveErr:
		if runErr != nil {
			logger.Error().Err(runErr).Msg("http server error")
		}
	}

	health.SetReady(false)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if serr := server.Shutdown(shutdownCtx); serr != nil {
		logger.Error().Err(serr).Msg("graceful shutdown failed")
	}
	g.Wait()
	logger.Info().Msg("shutdown complete")
	return runErr
}
