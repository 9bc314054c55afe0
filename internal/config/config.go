package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"flightroute/internal/infra/vault"
)

type Config struct {
	Logging struct {
		Level  string `yaml:"level"`
		Pretty bool   `yaml:"pretty"`
	} `yaml:"logging"`
	Server struct {
		Addr                string   `yaml:"addr"`
		Pprof               bool     `yaml:"pprof"`
		ReadTimeoutSeconds  int      `yaml:"read_timeout_seconds"`
		WriteTimeoutSeconds int      `yaml:"write_timeout_seconds"`
		IdleTimeoutSeconds  int      `yaml:"idle_timeout_seconds"`
		AdminAllowCIDRs     []string `yaml:"admin_allow_cidrs"`
		CORSOrigins         []string `yaml:"cors_origins"`
	} `yaml:"server"`
	Search struct {
		MaxOffers        int    `yaml:"max_offers"`
		Adults           int    `yaml:"adults"`
		DefaultCriterion string `yaml:"default_criterion"`
		TimeoutSeconds   int    `yaml:"timeout_seconds"`
	} `yaml:"search"`
	Provider struct {
		Kind    string `yaml:"kind"` // amadeus | csv
		CSVPath string `yaml:"csv_path"`
		Amadeus struct {
			BaseURL       string  `yaml:"base_url"`
			APIKey        string  `yaml:"api_key"`
			APISecret     string  `yaml:"api_secret"`
			RatePerSec    float64 `yaml:"rate_per_sec"`
			Burst         int     `yaml:"burst"`
			BaselineRTTMs float64 `yaml:"baseline_rtt_ms"`
		} `yaml:"amadeus"`
	} `yaml:"provider"`
	Currency struct {
		Enabled bool   `yaml:"enabled"`
		BaseURL string `yaml:"base_url"`
		APIKey  string `yaml:"api_key"`
		From    string `yaml:"from"`
		To      string `yaml:"to"`
	} `yaml:"currency"`
	RefData struct {
		AirportsPath string `yaml:"airports_path"`
		AirlinesPath string `yaml:"airlines_path"`
	} `yaml:"refdata"`
}

func defaultConfig() Config {
	var c Config
	c.Logging.Level = "info"
	c.Logging.Pretty = false
	c.Server.Addr = ":8080"
	c.Server.Pprof = false
	c.Server.ReadTimeoutSeconds = 5
	c.Server.WriteTimeoutSeconds = 30
	c.Server.IdleTimeoutSeconds = 60
	c.Server.AdminAllowCIDRs = []string{"127.0.0.0/8", "::1/128"}
	c.Server.CORSOrigins = []string{"*"}
	c.Search.MaxOffers = 100
	c.Search.Adults = 1
	c.Search.DefaultCriterion = "cheapest"
	c.Search.TimeoutSeconds = 20
	c.Provider.Kind = "amadeus"
	c.Provider.Amadeus.BaseURL = "https://test.api.amadeus.com"
	c.Provider.Amadeus.RatePerSec = 10
	c.Provider.Amadeus.Burst = 10
	c.Provider.Amadeus.BaselineRTTMs = 400
	c.Currency.Enabled = true
	c.Currency.BaseURL = "https://v6.exchangerate-api.com"
	c.Currency.From = "EUR"
	c.Currency.To = "PKR"
	c.RefData.AirportsPath = "airports.csv"
	c.RefData.AirlinesPath = "airlines.csv"
	return c
}

// Load builds the configuration: defaults, then .env (never overriding the
// real environment), then the YAML file named by FLIGHTROUTE_CONFIG, then
// FLIGHTROUTE_* overrides. Credentials come from the environment only.
func Load() (Config, error) {
	_ = godotenv.Load() // .env is optional
	c := defaultConfig()
	if path := os.Getenv("FLIGHTROUTE_CONFIG"); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return c, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return c, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	if v := os.Getenv("FLIGHTROUTE_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("FLIGHTROUTE_LOG_PRETTY"); v == "1" || v == "true" {
		c.Logging.Pretty = true
	}
	if v := os.Getenv("FLIGHTROUTE_HTTP_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("FLIGHTROUTE_PPROF"); v == "1" || v == "true" {
		c.Server.Pprof = true
	}
	if v := os.Getenv("FLIGHTROUTE_ADMIN_ALLOW_CIDRS"); v != "" {
		c.Server.AdminAllowCIDRs = splitCSV(v)
	}
	if v := os.Getenv("FLIGHTROUTE_CORS_ORIGINS"); v != "" {
		c.Server.CORSOrigins = splitCSV(v)
	}
	if v := os.Getenv("FLIGHTROUTE_MAX_OFFERS"); v != "" {
		var n int
		_, _ = fmt.Sscan(v, &n)
		if n > 0 {
			c.Search.MaxOffers = n
		}
	}
	if v := os.Getenv("FLIGHTROUTE_PROVIDER"); v != "" {
		c.Provider.Kind = v
	}
	if v := os.Getenv("FLIGHTROUTE_OFFERS_CSV"); v != "" {
		c.Provider.CSVPath = v
	}
	if v := os.Getenv("FLIGHTROUTE_AMADEUS_BASE_URL"); v != "" {
		c.Provider.Amadeus.BaseURL = v
	}
	if v := os.Getenv("FLIGHTROUTE_CURRENCY_ENABLED"); v == "0" || v == "false" {
		c.Currency.Enabled = false
	}
	if v := os.Getenv("FLIGHTROUTE_CURRENCY_TO"); v != "" {
		c.Currency.To = v
	}
	if v := os.Getenv("FLIGHTROUTE_AIRPORTS_CSV"); v != "" {
		c.RefData.AirportsPath = v
	}
	if v := os.Getenv("FLIGHTROUTE_AIRLINES_CSV"); v != "" {
		c.RefData.AirlinesPath = v
	}

	secrets := vault.EnvStore{Prefix: "FLIGHTROUTE"}
	if v, err := secrets.Get("API_KEY"); err == nil {
		c.Provider.Amadeus.APIKey = v
	}
	if v, err := secrets.Get("API_SECRET"); err == nil {
		c.Provider.Amadeus.APISecret = v
	}
	if v, err := secrets.Get("EXCHANGE_RATE_API_KEY"); err == nil {
		c.Currency.APIKey = v
	}
	return c, nil
}

func splitCSV(s string) []string {
	var out []string
	buf := []rune{}
	for _, r := range s {
		if r == ',' {
			if len(buf) > 0 {
				out = append(out, string(buf))
				buf = buf[:0]
			}
			continue
		}
		buf = append(buf, r)
	}
	if len(buf) > 0 {
		out = append(out, string(buf))
	}
	return out
}
