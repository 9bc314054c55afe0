package main

import (
	"errors"
	"fmt"

	"flightroute/internal/config"
	"flightroute/internal/currency"
	"flightroute/internal/infra/log"
	"flightroute/internal/provider/amadeus"
	"flightroute/internal/provider/common"
	"flightroute/internal/provider/csvfile"
	"flightroute/internal/refdata"
)

// deps holds everything built from configuration before a command runs.
type deps struct {
	airports  *refdata.Airports // nil when the table could not be loaded
	airlines  *refdata.Airlines
	source    common.OfferSource
	converter currency.Converter // nil when conversion is disabled
}

// buildDeps loads reference data and constructs the offer source and
// converter. Missing airline or currency setup degrades with a warning;
// a source that cannot be built is an error.
func buildDeps(cfg config.Config, logger log.Logger, needAirports bool) (deps, error) {
	var d deps

	airports, err := refdata.LoadAirportsFile(cfg.RefData.AirportsPath)
	switch {
	case err == nil:
		d.airports = airports
		logger.Info().Int("airports", airports.Len()).Int("skipped_rows", airports.Skipped()).Msg("airports loaded")
	case needAirports:
		return d, err
	default:
		logger.Warn().Err(err).Msg("airports unavailable; codes will not be checked")
	}

	airlines, err := refdata.LoadAirlinesFile(cfg.RefData.AirlinesPath)
	if err != nil {
		logger.Warn().Err(err).Msg("airlines unavailable; carriers shown by code")
	} else {
		d.airlines = airlines
	}

	switch cfg.Provider.Kind {
	case "csv":
		src, err := csvfile.Open(cfg.Provider.CSVPath)
		if err != nil {
			return d, err
		}
		logger.Info().Str("path", cfg.Provider.CSVPath).Int("legs", src.Len()).Msg("csv offers loaded")
		d.source = src
	case "amadeus", "":
		var namer common.CarrierNamer = common.CodeNamer{}
		if d.airlines != nil {
			namer = d.airlines
		}
		src, err := amadeus.New(cfg, namer, logger)
		if errors.Is(err, amadeus.ErrMissingCredentials) {
			return d, fmt.Errorf("%w (set API_KEY and API_SECRET, or FLIGHTROUTE_PROVIDER=csv)", err)
		}
		if err != nil {
			return d, err
		}
		d.source = src
	default:
		return d, fmt.Errorf("unknown provider %q", cfg.Provider.Kind)
	}

	if cfg.Currency.Enabled {
		conv, err := currency.New(cfg, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("currency conversion disabled")
		} else {
			d.converter = conv
		}
	}
	return d, nil
}
