// Package config loads runtime configuration: defaults, an optional YAML file, then SEITHI_*
// environment variables (a local .env file is read first).
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/Adda-Baaj/seithi/internal/pipeline"
)

// EnvPrefix prefixes every environment override, e.g. SEITHI_GNEWS_API_KEY.
const EnvPrefix = "SEITHI"

var (
	ErrInvalidLogLevel  = errors.New("log.level must be one of: debug, info, warn, error")
	ErrInvalidLogFormat = errors.New("log.format must be json or console")
	ErrInvalidWorkers   = errors.New("scrape.detail_workers must be between 1 and 10")
	ErrMissingAddr      = errors.New("server.addr is required")
	ErrInvalidImage     = errors.New("placeholder_image must be an absolute http(s) url")
	ErrInvalidHomeURL   = errors.New("pipeline.home_url must be an absolute http(s) url")
)

// Config is the complete runtime configuration.
type Config struct {
	Server           ServerConfig     `mapstructure:"server"`
	Log              LogConfig        `mapstructure:"log"`
	GNews            GNewsConfig      `mapstructure:"gnews"`
	GoogleNews       GoogleNewsConfig `mapstructure:"google_news"`
	Scrape           ScrapeConfig     `mapstructure:"scrape"`
	Pipeline         PipelineConfig   `mapstructure:"pipeline"`
	Auth             AuthConfig       `mapstructure:"auth"`
	History          HistoryConfig    `mapstructure:"history"`
	PlaceholderImage string           `mapstructure:"placeholder_image"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	RateLimit       float64       `mapstructure:"rate_limit"`
	RateBurst       int           `mapstructure:"rate_burst"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type GNewsConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type GoogleNewsConfig struct {
	SearchURL string `mapstructure:"search_url"`
}

type ScrapeConfig struct {
	ListingTimeout time.Duration `mapstructure:"listing_timeout"`
	DetailTimeout  time.Duration `mapstructure:"detail_timeout"`
	DetailWorkers  int           `mapstructure:"detail_workers"`
	UserAgent      string        `mapstructure:"user_agent"`
	// ProfilesFile overrides publisher profiles by id.
	ProfilesFile string `mapstructure:"profiles_file"`
}

type PipelineConfig struct {
	HeadlinesMax          int `mapstructure:"headlines_max"`
	SupplementBelow       int `mapstructure:"supplement_below"`
	TamilEarlyExit        int `mapstructure:"tamil_early_exit"`
	TamilCap              int `mapstructure:"tamil_cap"`
	SearchMax             int `mapstructure:"search_max"`
	SearchSupplementBelow int `mapstructure:"search_supplement_below"`
	// HomeURL is the link of informational placeholder articles.
	HomeURL string `mapstructure:"home_url"`
}

type AuthConfig struct {
	JWTSecret  string        `mapstructure:"jwt_secret"`
	JWTIssuer  string        `mapstructure:"jwt_issuer"`
	CookieName string        `mapstructure:"cookie_name"`
	TokenTTL   time.Duration `mapstructure:"token_ttl"`
}

type HistoryConfig struct {
	BoltPath       string `mapstructure:"bolt_path"`
	PublishersFile string `mapstructure:"publishers_file"`
}

// Load reads configuration. cfgFile may be empty, in which case SEITHI_CONFIG is consulted and
// a missing file is not an error.
func Load(cfgFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if cfgFile == "" {
		cfgFile = os.Getenv(EnvPrefix + "_CONFIG")
	}
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))
	cfg.Log.Format = strings.ToLower(strings.TrimSpace(cfg.Log.Format))

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := pipeline.DefaultSettings()

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.rate_limit", 10.0)
	v.SetDefault("server.rate_burst", 20)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("gnews.base_url", "https://gnews.io/api/v4")
	v.SetDefault("gnews.api_key", "")
	v.SetDefault("gnews.timeout", 30*time.Second)

	v.SetDefault("google_news.search_url", "")

	v.SetDefault("scrape.listing_timeout", 15*time.Second)
	v.SetDefault("scrape.detail_timeout", 10*time.Second)
	v.SetDefault("scrape.detail_workers", 1)
	v.SetDefault("scrape.user_agent", "")
	v.SetDefault("scrape.profiles_file", "")

	v.SetDefault("pipeline.headlines_max", d.HeadlinesMax)
	v.SetDefault("pipeline.supplement_below", d.SupplementBelow)
	v.SetDefault("pipeline.tamil_early_exit", d.TamilEarlyExit)
	v.SetDefault("pipeline.tamil_cap", d.TamilCap)
	v.SetDefault("pipeline.search_max", d.SearchMax)
	v.SetDefault("pipeline.search_supplement_below", d.SearchSupplementBelow)
	v.SetDefault("pipeline.home_url", d.HomeURL)

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.jwt_issuer", "seithi")
	v.SetDefault("auth.cookie_name", "seithi_session")
	v.SetDefault("auth.token_ttl", 7*24*time.Hour)

	v.SetDefault("history.bolt_path", "seithi-history.db")
	v.SetDefault("history.publishers_file", "")

	v.SetDefault("placeholder_image", "")
}

func validate(cfg *Config) error {
	switch cfg.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return ErrInvalidLogLevel
	}
	switch cfg.Log.Format {
	case "json", "console":
	default:
		return ErrInvalidLogFormat
	}
	if cfg.Scrape.DetailWorkers < 1 || cfg.Scrape.DetailWorkers > 10 {
		return ErrInvalidWorkers
	}
	if strings.TrimSpace(cfg.Server.Addr) == "" {
		return ErrMissingAddr
	}
	if img := strings.TrimSpace(cfg.PlaceholderImage); img != "" && !absoluteHTTP(img) {
		return ErrInvalidImage
	}
	if !absoluteHTTP(strings.TrimSpace(cfg.Pipeline.HomeURL)) {
		return ErrInvalidHomeURL
	}
	return nil
}

func absoluteHTTP(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

// Settings converts the pipeline section into pipeline thresholds. Unset values keep their
// defaults.
func (c *Config) Settings() pipeline.Settings {
	s := pipeline.DefaultSettings()
	p := c.Pipeline
	for _, f := range []struct {
		dst *int
		v   int
	}{
		{&s.HeadlinesMax, p.HeadlinesMax},
		{&s.SupplementBelow, p.SupplementBelow},
		{&s.TamilEarlyExit, p.TamilEarlyExit},
		{&s.TamilCap, p.TamilCap},
		{&s.SearchMax, p.SearchMax},
		{&s.SearchSupplementBelow, p.SearchSupplementBelow},
	} {
		if f.v > 0 {
			*f.dst = f.v
		}
	}
	if home := strings.TrimSpace(p.HomeURL); home != "" {
		s.HomeURL = home
	}
	return s
}
