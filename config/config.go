// Package config assembles the bot configuration from flags, an optional
// yaml file, and environment variables.
package config

import (
	"flag"
	"os"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Environment variables carrying the two credential pairs. Credentials are
// never accepted via flags or yaml.
const (
	envBuyAPIKey     = "BISCOINT_BUY_API_KEY"
	envBuyAPISecret  = "BISCOINT_BUY_API_SECRET"
	envSellAPIKey    = "BISCOINT_SELL_API_KEY"
	envSellAPISecret = "BISCOINT_SELL_API_SECRET"
)

// Config is the full process configuration.
type Config struct {
	BuyAPIKey     string
	BuyAPISecret  string
	SellAPIKey    string
	SellAPISecret string

	// Simulation evaluates spreads without executing trades.
	Simulation bool
	// MetricsAddr listen address of the metrics server, empty disables it.
	MetricsAddr string
	// JournalDir directory for persisted error and partial-fill records.
	JournalDir string
	// APIBaseURL overrides the exchange API host, used in tests.
	APIBaseURL string
}

type configYaml struct {
	Simulation  *bool   `yaml:"simulation,omitempty"`
	MetricsAddr *string `yaml:"metrics_addr,omitempty"`
	JournalDir  *string `yaml:"journal_dir,omitempty"`
	APIBaseURL  *string `yaml:"api_base_url,omitempty"`
}

// Get parses flags and builds the configuration. Missing credentials are a
// startup-fatal condition surfaced as an error.
func Get() (Config, error) {
	cfgPath := flag.String("config", "", "path to yaml config")
	simulation := flag.Bool("simulation", false, "evaluate spreads without executing trades")
	metricsAddr := flag.String("metrics-addr", ":9090", "metrics server listen address, empty disables")
	journalDir := flag.String("journal-dir", "./journal", "directory for persisted error records")
	flag.Parse()

	return build(*cfgPath, Config{
		Simulation:  *simulation,
		MetricsAddr: *metricsAddr,
		JournalDir:  *journalDir,
	})
}

func build(path string, cfg Config) (Config, error) {
	// .env is optional, absence is not an error.
	_ = godotenv.Load()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, errors.Wrapf(err, "read config file %s", path)
		}

		var fromFile configYaml
		if err := yaml.Unmarshal(raw, &fromFile); err != nil {
			return Config{}, errors.Wrapf(err, "parse config file %s", path)
		}

		if fromFile.Simulation != nil {
			cfg.Simulation = *fromFile.Simulation
		}
		if fromFile.MetricsAddr != nil {
			cfg.MetricsAddr = *fromFile.MetricsAddr
		}
		if fromFile.JournalDir != nil {
			cfg.JournalDir = *fromFile.JournalDir
		}
		if fromFile.APIBaseURL != nil {
			cfg.APIBaseURL = *fromFile.APIBaseURL
		}
	}

	cfg.BuyAPIKey = os.Getenv(envBuyAPIKey)
	cfg.BuyAPISecret = os.Getenv(envBuyAPISecret)
	cfg.SellAPIKey = os.Getenv(envSellAPIKey)
	cfg.SellAPISecret = os.Getenv(envSellAPISecret)

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch {
	case c.BuyAPIKey == "":
		return errors.Errorf("missing %s", envBuyAPIKey)
	case c.BuyAPISecret == "":
		return errors.Errorf("missing %s", envBuyAPISecret)
	case c.SellAPIKey == "":
		return errors.Errorf("missing %s", envSellAPIKey)
	case c.SellAPISecret == "":
		return errors.Errorf("missing %s", envSellAPISecret)
	}
	return nil
}
