package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lzy756/deepseekocr-cli/internal/log"
	"github.com/lzy756/deepseekocr-cli/internal/model"
)

// Built-in defaults, the lowest precedence layer.
const (
	DefaultMode         = "markdown"
	DefaultResolution   = "base"
	DefaultDPI          = 144
	DefaultMaxPages     = 40
	DefaultWorkers      = 4
	DefaultTimeout      = 2 * time.Minute
	DefaultPollInterval = 2 * time.Second
	DefaultPollTimeout  = 10 * time.Minute
)

// Environment variable names, the second precedence layer.
const (
	EnvAPIURL       = "DEEPSEEK_OCR_API_URL"
	EnvAPIKey       = "DEEPSEEK_OCR_API_KEY"
	EnvTimeout      = "DEEPSEEK_OCR_TIMEOUT"
	EnvMode         = "DEEPSEEK_OCR_MODE"
	EnvResolution   = "DEEPSEEK_OCR_RESOLUTION"
	EnvDPI          = "DEEPSEEK_OCR_DPI"
	EnvMaxPages     = "DEEPSEEK_OCR_MAX_PAGES"
	EnvWorkers      = "DEEPSEEK_OCR_WORKERS"
	EnvPollInterval = "DEEPSEEK_OCR_POLL_INTERVAL"
	EnvPollTimeout  = "DEEPSEEK_OCR_POLL_TIMEOUT"
)

// Overrides are the CLI-supplied values, the highest precedence layer. A nil
// field means the flag was not supplied and the layer doesn't participate in
// the merge for that field.
type Overrides struct {
	APIURL         *string
	APIKey         *string
	RequestTimeout *time.Duration
	Mode           *string
	Resolution     *string
	DPI            *int
	MaxPages       *int
	Workers        *int
	PollInterval   *time.Duration
	PollTimeout    *time.Duration
}

// fileConfig is the persisted configuration document shape. All fields are
// optional, durations accept Go duration strings or plain seconds.
type fileConfig struct {
	APIURL       *string `yaml:"api_url"`
	APIKey       *string `yaml:"api_key"`
	Timeout      *string `yaml:"timeout"`
	Mode         *string `yaml:"mode"`
	Resolution   *string `yaml:"resolution"`
	DPI          *int    `yaml:"dpi"`
	MaxPages     *int    `yaml:"max_pages"`
	Workers      *int    `yaml:"workers"`
	PollInterval *string `yaml:"poll_interval"`
	PollTimeout  *string `yaml:"poll_timeout"`
}

// ResolverConfig is the configuration for the resolver.
type ResolverConfig struct {
	// FilePath is the persisted configuration file path. A missing file is
	// not an error, the layer just doesn't participate.
	FilePath string
	// LookupEnv is the environment lookup, os.LookupEnv by default.
	LookupEnv func(key string) (string, bool)
	Logger    log.Logger
}

func (c *ResolverConfig) defaults() error {
	if c.FilePath == "" {
		return fmt.Errorf("config file path is required")
	}
	if c.LookupEnv == nil {
		c.LookupEnv = os.LookupEnv
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "config.Resolver"})
	return nil
}

// Resolver merges CLI overrides, environment variables, the persisted config
// file and built-in defaults into one effective configuration snapshot.
type Resolver struct {
	filePath  string
	lookupEnv func(string) (string, bool)
	logger    log.Logger
}

// NewResolver creates a new configuration resolver.
func NewResolver(cfg ResolverConfig) (*Resolver, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &Resolver{
		filePath:  cfg.FilePath,
		lookupEnv: cfg.LookupEnv,
		logger:    cfg.Logger,
	}, nil
}

// Resolve merges the four layers field by field, highest precedence first:
// CLI flag > environment variable > config file > built-in default.
//
// Resolve itself never fails: an absent credential or endpoint propagates as
// an empty string and is caught by Validate before any network call.
func (r *Resolver) Resolve(o Overrides) model.EffectiveConfig {
	file := r.loadFile()

	return model.EffectiveConfig{
		APIURL:         r.mergeString(o.APIURL, EnvAPIURL, file.APIURL, ""),
		APIKey:         r.mergeString(o.APIKey, EnvAPIKey, file.APIKey, ""),
		RequestTimeout: r.mergeDuration(o.RequestTimeout, EnvTimeout, file.Timeout, DefaultTimeout),
		Mode:           r.mergeString(o.Mode, EnvMode, file.Mode, DefaultMode),
		Resolution:     r.mergeString(o.Resolution, EnvResolution, file.Resolution, DefaultResolution),
		DPI:            r.mergeInt(o.DPI, EnvDPI, file.DPI, DefaultDPI),
		MaxPages:       r.mergeInt(o.MaxPages, EnvMaxPages, file.MaxPages, DefaultMaxPages),
		Workers:        r.mergeInt(o.Workers, EnvWorkers, file.Workers, DefaultWorkers),
		PollInterval:   r.mergeDuration(o.PollInterval, EnvPollInterval, file.PollInterval, DefaultPollInterval),
		PollTimeout:    r.mergeDuration(o.PollTimeout, EnvPollTimeout, file.PollTimeout, DefaultPollTimeout),
	}
}

func (r *Resolver) loadFile() fileConfig {
	var fc fileConfig

	data, err := os.ReadFile(r.filePath)
	if err != nil {
		if !os.IsNotExist(err) {
			r.logger.Warningf("could not read config file %s: %s", r.filePath, err)
		}
		return fc
	}

	if err := yaml.Unmarshal(data, &fc); err != nil {
		// A broken file layer is skipped, not fatal: the user can still
		// supply everything via flags or env vars.
		r.logger.Warningf("could not parse config file %s: %s", r.filePath, err)
		return fileConfig{}
	}

	return fc
}

func (r *Resolver) mergeString(flag *string, envKey string, file *string, def string) string {
	if flag != nil {
		return *flag
	}
	if v, ok := r.lookupEnv(envKey); ok {
		return v
	}
	if file != nil {
		return *file
	}
	return def
}

func (r *Resolver) mergeInt(flag *int, envKey string, file *int, def int) int {
	if flag != nil {
		return *flag
	}
	if v, ok := r.lookupEnv(envKey); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			r.logger.Warningf("ignoring %s=%q: not an integer", envKey, v)
		} else {
			return n
		}
	}
	if file != nil {
		return *file
	}
	return def
}

func (r *Resolver) mergeDuration(flag *time.Duration, envKey string, file *string, def time.Duration) time.Duration {
	if flag != nil {
		return *flag
	}
	if v, ok := r.lookupEnv(envKey); ok {
		d, err := parseDuration(v)
		if err != nil {
			r.logger.Warningf("ignoring %s=%q: %s", envKey, v, err)
		} else {
			return d
		}
	}
	if file != nil {
		d, err := parseDuration(*file)
		if err != nil {
			r.logger.Warningf("ignoring config file value %q: %s", *file, err)
		} else {
			return d
		}
	}
	return def
}

// parseDuration accepts Go duration strings ("90s", "2m") and bare integer
// seconds ("90").
func parseDuration(s string) (time.Duration, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("not a duration: %q", s)
	}
	return d, nil
}

// Validate checks that the effective configuration can back a network call.
// It reports every missing required field along with the three ways to
// supply it.
func Validate(c model.EffectiveConfig) error {
	switch {
	case c.APIURL == "" && c.APIKey == "":
		return fmt.Errorf("API URL and API key are missing (set --api-url/--api-key, %s/%s, or api_url/api_key in the config file): %w", EnvAPIURL, EnvAPIKey, model.ErrConfiguration)
	case c.APIURL == "":
		return fmt.Errorf("API URL is missing (set --api-url, %s, or api_url in the config file): %w", EnvAPIURL, model.ErrConfiguration)
	case c.APIKey == "":
		return fmt.Errorf("API key is missing (set --api-key, %s, or api_key in the config file): %w", EnvAPIKey, model.ErrConfiguration)
	}
	return nil
}
