// config loads the application config: a yaml file with a kind and a def, where def
// holds the settings below. Keys are snake_case since viper lowercases every key.
package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"balancechart/ledger"
)

// Kind is the only config kind this application reads.
const Kind = "balancechart"

type OuterConfig struct {
	Kind string      `mapstructure:"kind"`
	Def  interface{} `mapstructure:"def"`
}

type Config struct {
	Server ServerConfig `yaml:"server"`
	Chart  ChartConfig  `yaml:"chart"`
	Ledger LedgerConfig `yaml:"ledger"`
	Log    LogConfig    `yaml:"log"`
}

type ServerConfig struct {
	Host  string `yaml:"host"`
	Port  int    `yaml:"port"`
	Title string `yaml:"title"`
	// EchartsURL is where pages load the echarts library from.
	EchartsURL string `yaml:"echarts_url"`
	// BatchRate is how often element updates are flushed to each page.
	BatchRate time.Duration `yaml:"batch_rate"`
}

type ChartConfig struct {
	// Backend is "echarts" (drawn in the page) or "svg" (drawn by the server).
	Backend        string  `yaml:"backend"`
	CurrencySymbol string  `yaml:"currency_symbol"`
	XAxisTitle     string  `yaml:"x_axis_title"`
	YAxisTitle     string  `yaml:"y_axis_title"`
	TooltipTitle   string  `yaml:"tooltip_title"`
	Tension        float64 `yaml:"tension"`
	PointRadius    float64 `yaml:"point_radius"`
	HoverRadius    float64 `yaml:"hover_radius"`
	Width          string  `yaml:"width"`
	Height         string  `yaml:"height"`
	SVGWidth       int     `yaml:"svg_width"`
	SVGHeight      int     `yaml:"svg_height"`
}

type LedgerConfig struct {
	// Start is the first simulated day, as 2006-01-02. Empty means today.
	Start        string          `yaml:"start"`
	Months       int             `yaml:"months"`
	Tick         time.Duration   `yaml:"tick"`
	Seed         int64           `yaml:"seed"`
	PostsPerDay  int             `yaml:"posts_per_day"`
	MaxPostMinor int64           `yaml:"max_post_minor"`
	Accounts     []AccountConfig `yaml:"accounts"`
}

type AccountConfig struct {
	ID           string `yaml:"id"`
	Name         string `yaml:"name"`
	OpeningMinor int64  `yaml:"opening_minor"`
	LifetimeDays int    `yaml:"lifetime_days"`
}

type LogConfig struct {
	Debug        bool   `yaml:"debug"`
	Dir          string `yaml:"dir"`
	DisableColor bool   `yaml:"disable_color"`
}

const (
	BackendEcharts = "echarts"
	BackendSVG     = "svg"
)

const dateLayout = "2006-01-02"

// Default is used for anything the config file leaves out.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host:       "localhost",
			Port:       8080,
			Title:      "Accounts",
			EchartsURL: "https://cdn.jsdelivr.net/npm/echarts@5.4.3/dist/echarts.min.js",
			BatchRate:  20 * time.Millisecond,
		},
		Chart: ChartConfig{
			Backend:        BackendEcharts,
			CurrencySymbol: "€",
			XAxisTitle:     "Day of Month",
			YAxisTitle:     "Balance (EUR)",
			TooltipTitle:   "Day",
			Tension:        0.4,
			PointRadius:    2,
			HoverRadius:    6,
			Width:          "100%",
			Height:         "360px",
			SVGWidth:       800,
			SVGHeight:      360,
		},
		Ledger: LedgerConfig{
			Months:       2,
			Tick:         time.Second,
			Seed:         1,
			PostsPerDay:  2,
			MaxPostMinor: 5000,
			Accounts: []AccountConfig{
				{ID: "checking", Name: "Checking", OpeningMinor: 125000},
				{ID: "savings", Name: "Savings", OpeningMinor: 1000000},
			},
		},
	}
}

// FromYaml reads the config file at path over the defaults.
func FromYaml(path string) (Config, error) {
	cfg := Default()

	vp := viper.New()
	vp.SetConfigFile(path)
	vp.SetConfigType("yaml")
	vp.AddConfigPath(filepath.Dir(path))
	if err := vp.ReadInConfig(); err != nil {
		return cfg, errors.Wrapf(err, "read config %s", path)
	}

	outer := &OuterConfig{}
	if err := vp.Unmarshal(outer); err != nil {
		return cfg, errors.Wrapf(err, "decode config %s", path)
	}
	if outer.Kind != Kind {
		return cfg, errors.Errorf("config %s: kind %q, expected %q", path, outer.Kind, Kind)
	}
	if outer.Def == nil {
		return cfg, nil
	}

	spec, err := yaml.Marshal(outer.Def)
	if err != nil {
		return cfg, errors.Wrapf(err, "config %s", path)
	}
	if err := yaml.Unmarshal(spec, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "decode config %s def", path)
	}
	return cfg, nil
}

// Validate returns every problem with the config at once.
func (cfg Config) Validate() error {
	var result *multierror.Error
	fail := func(format string, args ...interface{}) {
		result = multierror.Append(result, fmt.Errorf(format, args...))
	}

	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		fail("server.port %d out of range", cfg.Server.Port)
	}
	if cfg.Server.BatchRate <= 0 {
		fail("server.batch_rate must be positive")
	}

	switch cfg.Chart.Backend {
	case BackendEcharts, BackendSVG:
	default:
		fail("chart.backend %q: expected %q or %q", cfg.Chart.Backend, BackendEcharts, BackendSVG)
	}
	if cfg.Chart.Tension < 0 || cfg.Chart.Tension > 1 {
		fail("chart.tension %v not in [0, 1]", cfg.Chart.Tension)
	}
	if cfg.Chart.PointRadius < 0 || cfg.Chart.HoverRadius < 0 {
		fail("chart radii must not be negative")
	}

	if _, err := cfg.StartDate(time.Now()); err != nil {
		fail("ledger.start: %v", err)
	}
	if cfg.Ledger.Months < 1 {
		fail("ledger.months must be at least 1")
	}
	if cfg.Ledger.Tick <= 0 {
		fail("ledger.tick must be positive")
	}
	if cfg.Ledger.MaxPostMinor < 0 {
		fail("ledger.max_post_minor must not be negative")
	}
	if len(cfg.Ledger.Accounts) == 0 {
		fail("ledger.accounts is empty")
	}
	seen := map[string]bool{}
	for i, acct := range cfg.Ledger.Accounts {
		switch {
		case acct.ID == "":
			fail("ledger.accounts[%d]: missing id", i)
		case seen[acct.ID]:
			fail("ledger.accounts[%d]: duplicate id %q", i, acct.ID)
		}
		seen[acct.ID] = true
	}

	return result.ErrorOrNil()
}

// Addr is the listen address.
func (cfg Config) Addr() string {
	return fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
}

// StartDate returns the configured start day, or today's date.
func (cfg Config) StartDate(now time.Time) (time.Time, error) {
	if cfg.Ledger.Start == "" {
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	return time.Parse(dateLayout, cfg.Ledger.Start)
}

func (cfg Config) Accounts() []ledger.AccountConfig {
	accounts := make([]ledger.AccountConfig, 0, len(cfg.Ledger.Accounts))
	for _, acct := range cfg.Ledger.Accounts {
		name := acct.Name
		if name == "" {
			name = acct.ID
		}
		accounts = append(accounts, ledger.AccountConfig{
			ID:           acct.ID,
			Name:         name,
			OpeningMinor: acct.OpeningMinor,
			LifetimeDays: acct.LifetimeDays,
		})
	}
	return accounts
}

func (cfg Config) Simulation() ledger.SimConfig {
	return ledger.SimConfig{
		Tick:         cfg.Ledger.Tick,
		Seed:         cfg.Ledger.Seed,
		PostsPerDay:  cfg.Ledger.PostsPerDay,
		MaxPostMinor: cfg.Ledger.MaxPostMinor,
	}
}
