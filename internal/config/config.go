package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/dharmasatrya/faresweep/internal/logger"
	"github.com/dharmasatrya/faresweep/internal/models"
	"github.com/dharmasatrya/faresweep/internal/timezone"
)

const EnvPrefix = "FARESWEEP"

const (
	ProviderSimulated = "simulated"
	ProviderHTTP      = "http"
)

type Config struct {
	Search    SearchConfig    `mapstructure:"search"`
	Provider  ProviderConfig  `mapstructure:"provider"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Output    OutputConfig    `mapstructure:"output"`
	Server    ServerConfig    `mapstructure:"server"`
	Workers   int             `mapstructure:"workers"`
	Log       logger.Config   `mapstructure:"log"`
}

type SearchConfig struct {
	Origin       string        `mapstructure:"origin"`
	Destination  string        `mapstructure:"destination"`
	StartDate    string        `mapstructure:"start_date"`
	EndDate      string        `mapstructure:"end_date"`
	MinStay      int           `mapstructure:"min_stay"`
	MaxStay      int           `mapstructure:"max_stay"`
	Adults       int           `mapstructure:"adults"`
	Seat         string        `mapstructure:"seat"`
	QueryTimeout time.Duration `mapstructure:"query_timeout"`
}

type ProviderConfig struct {
	Kind        string        `mapstructure:"kind"`
	BaseURL     string        `mapstructure:"base_url"`
	APIKey      string        `mapstructure:"api_key"`
	ResultsPath string        `mapstructure:"results_path"`
	Timeout     time.Duration `mapstructure:"timeout"`
	FailureRate float64       `mapstructure:"failure_rate"`
	MinLatency  time.Duration `mapstructure:"min_latency"`
	MaxLatency  time.Duration `mapstructure:"max_latency"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64                      `mapstructure:"rps"`
	Burst             int                          `mapstructure:"burst"`
	Providers         map[string]ProviderRateLimit `mapstructure:"providers"`
}

// ProviderRateLimit overrides the default limit for one provider name.
type ProviderRateLimit struct {
	RequestsPerSecond float64 `mapstructure:"rps"`
	Burst             int     `mapstructure:"burst"`
}

type CacheConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Host     string        `mapstructure:"host"`
	Port     string        `mapstructure:"port"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type OutputConfig struct {
	Dir     string `mapstructure:"dir"`
	Save    bool   `mapstructure:"save"`
	HTML    bool   `mapstructure:"html"`
	Pattern string `mapstructure:"pattern"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
}

// SearchParameters builds the sweep parameters from the search section.
func (c *Config) SearchParameters() models.SearchParameters {
	return models.SearchParameters{
		Origin:      c.Search.Origin,
		Destination: c.Search.Destination,
		StartDate:   c.Search.StartDate,
		EndDate:     c.Search.EndDate,
		MinStayDays: c.Search.MinStay,
		MaxStayDays: c.Search.MaxStay,
		Adults:      c.Search.Adults,
		SeatType:    models.SeatClass(c.Search.Seat),
	}
}

func (c *Config) Validate() error {
	switch c.Provider.Kind {
	case ProviderSimulated:
	case ProviderHTTP:
		if c.Provider.BaseURL == "" {
			return errors.New("provider.base_url is required for the http provider")
		}
	default:
		return fmt.Errorf("unknown provider %q", c.Provider.Kind)
	}
	if c.Provider.FailureRate < 0 || c.Provider.FailureRate > 1 {
		return errors.New("provider.failure_rate must be between 0 and 1")
	}
	if c.Workers < 1 {
		return errors.New("workers must be at least 1")
	}
	if _, err := models.ParseSeatClass(c.Search.Seat); err != nil {
		return err
	}
	return c.Log.Validate()
}

type loadOptions struct {
	now      time.Time
	defaults map[string]any
	envFile  string
}

type Option func(*loadOptions)

// WithNow fixes the date the default search window is computed from.
func WithNow(now time.Time) Option {
	return func(o *loadOptions) { o.now = now }
}

// WithDefault overrides a built-in default, keyed by its dotted config key.
func WithDefault(key string, value any) Option {
	return func(o *loadOptions) { o.defaults[key] = value }
}

// WithEnvFile sets the dotenv file read before the environment; "" skips it.
func WithEnvFile(path string) Option {
	return func(o *loadOptions) { o.envFile = path }
}

// Load resolves the configuration. Precedence, highest first: flags set on
// the command line, FARESWEEP_* environment (after the .env file), the YAML
// file named by --config, defaults.
func Load(flags *pflag.FlagSet, opts ...Option) (*Config, error) {
	o := &loadOptions{now: time.Now(), defaults: map[string]any{}, envFile: ".env"}
	for _, opt := range opts {
		opt(o)
	}

	if o.envFile != "" {
		if err := godotenv.Load(o.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", o.envFile, err)
		}
	}

	v := viper.New()
	setDefaults(v)
	for key, value := range o.defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		if err := bindFlags(v, flags); err != nil {
			return nil, err
		}
		if f := flags.Lookup("config"); f != nil && f.Value.String() != "" {
			v.SetConfigFile(f.Value.String())
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.Search.Origin = strings.ToUpper(cfg.Search.Origin)
	cfg.Search.Destination = strings.ToUpper(cfg.Search.Destination)

	// The default window starts a week after today at the origin airport.
	today := timezone.LocalDate(o.now, cfg.Search.Origin)
	if cfg.Search.StartDate == "" {
		cfg.Search.StartDate = today.AddDate(0, 0, 7).Format(models.DateLayout)
	}
	if cfg.Search.EndDate == "" {
		cfg.Search.EndDate = today.AddDate(0, 0, 14).Format(models.DateLayout)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("search.origin", "PUS")
	v.SetDefault("search.destination", "KIX")
	v.SetDefault("search.start_date", "")
	v.SetDefault("search.end_date", "")
	v.SetDefault("search.min_stay", 5)
	v.SetDefault("search.max_stay", 7)
	v.SetDefault("search.adults", 1)
	v.SetDefault("search.seat", string(models.SeatEconomy))
	v.SetDefault("search.query_timeout", 30*time.Second)

	v.SetDefault("provider.kind", ProviderSimulated)
	v.SetDefault("provider.base_url", "")
	v.SetDefault("provider.api_key", "")
	v.SetDefault("provider.results_path", "flights")
	v.SetDefault("provider.timeout", 30*time.Second)
	v.SetDefault("provider.failure_rate", 0.0)
	v.SetDefault("provider.min_latency", 20*time.Millisecond)
	v.SetDefault("provider.max_latency", 120*time.Millisecond)

	v.SetDefault("ratelimit.rps", 2.0)
	v.SetDefault("ratelimit.burst", 4)

	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.host", "localhost")
	v.SetDefault("cache.port", "6379")
	v.SetDefault("cache.password", "")
	v.SetDefault("cache.db", 0)
	v.SetDefault("cache.ttl", 30*time.Minute)

	v.SetDefault("output.dir", ".")
	v.SetDefault("output.save", false)
	v.SetDefault("output.html", false)
	v.SetDefault("output.pattern", "")

	v.SetDefault("server.port", "8080")
	v.SetDefault("workers", 1)

	logDefaults := logger.DefaultConfig()
	v.SetDefault("log.level", logDefaults.Level)
	v.SetDefault("log.format", logDefaults.Format)
	v.SetDefault("log.output", logDefaults.Output)
	v.SetDefault("log.file.filename", logDefaults.File.Filename)
	v.SetDefault("log.file.maxsize", logDefaults.File.MaxSize)
	v.SetDefault("log.file.maxage", logDefaults.File.MaxAge)
	v.SetDefault("log.file.maxbackups", logDefaults.File.MaxBackups)
	v.SetDefault("log.file.compress", logDefaults.File.Compress)
}
