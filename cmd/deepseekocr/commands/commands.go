package commands

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/alecthomas/kingpin/v2"

	"github.com/lzy756/deepseekocr-cli/internal/client"
	"github.com/lzy756/deepseekocr-cli/internal/config"
	"github.com/lzy756/deepseekocr-cli/internal/conventions"
	"github.com/lzy756/deepseekocr-cli/internal/history"
	"github.com/lzy756/deepseekocr-cli/internal/log"
	"github.com/lzy756/deepseekocr-cli/internal/model"
	"github.com/lzy756/deepseekocr-cli/internal/printer"
	"github.com/lzy756/deepseekocr-cli/internal/task"
)

const (
	// LoggerTypeDefault is the logger default type.
	LoggerTypeDefault = "default"
	// LoggerTypeJSON is the logger json type.
	LoggerTypeJSON = "json"
)

// Command represents an application command, all commands that want to be executed
// should implement and setup on main.
type Command interface {
	Name() string
	Run(ctx context.Context) error
}

// RootCommand represents the root command configuration and global configuration
// for all the commands.
type RootCommand struct {
	// Global flags.
	Debug      bool
	NoLog      bool
	NoColor    bool
	LoggerType string
	ConfigPath string
	HistPath   string
	OutputDir  string

	// Configuration override flags (highest precedence layer of the merge).
	APIURL  string
	APIKey  string
	Timeout time.Duration

	// Global instances.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Logger log.Logger
}

// NewRootCommand initializes the main root configuration.
func NewRootCommand(app *kingpin.Application) *RootCommand {
	c := &RootCommand{}

	app.Flag("debug", "Enable debug mode.").BoolVar(&c.Debug)
	app.Flag("no-log", "Disable logger.").BoolVar(&c.NoLog)
	app.Flag("no-color", "Disable logger color.").BoolVar(&c.NoColor)
	app.Flag("logger", "Selects the logger type.").Default(LoggerTypeDefault).EnumVar(&c.LoggerType, LoggerTypeDefault, LoggerTypeJSON)

	app.Flag("config-path", "Path to the configuration file.").Default(conventions.ConfigPath()).StringVar(&c.ConfigPath)
	app.Flag("history-path", "Path to the task history file.").Default(conventions.HistoryPath()).StringVar(&c.HistPath)
	app.Flag("output-dir", "Directory for OCR results.").Default(conventions.DefaultOutputDir).StringVar(&c.OutputDir)

	// Environment variables for these are read by the configuration
	// resolver, not by kingpin, so the flag and env layers stay distinct.
	app.Flag("api-url", "OCR API endpoint URL.").StringVar(&c.APIURL)
	app.Flag("api-key", "OCR API key.").StringVar(&c.APIKey)
	app.Flag("timeout", "Single request timeout.").DurationVar(&c.Timeout)

	return c
}

// baseOverrides maps the root config override flags into resolver overrides.
// A flag left at its zero value did not participate.
func (c *RootCommand) baseOverrides() config.Overrides {
	o := config.Overrides{}
	if c.APIURL != "" {
		o.APIURL = &c.APIURL
	}
	if c.APIKey != "" {
		o.APIKey = &c.APIKey
	}
	if c.Timeout != 0 {
		o.RequestTimeout = &c.Timeout
	}
	return o
}

// resolveConfig builds the effective configuration from the four layers.
func (c *RootCommand) resolveConfig(overrides config.Overrides) (model.EffectiveConfig, error) {
	resolver, err := config.NewResolver(config.ResolverConfig{
		FilePath: c.ConfigPath,
		Logger:   c.Logger,
	})
	if err != nil {
		return model.EffectiveConfig{}, fmt.Errorf("could not create config resolver: %w", err)
	}
	return resolver.Resolve(overrides), nil
}

// newAPIClient creates the OCR API client for a validated configuration.
func (c *RootCommand) newAPIClient(cfg model.EffectiveConfig) (*client.Client, error) {
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	cl, err := client.New(client.Config{
		BaseURL:    cfg.APIURL,
		APIKey:     cfg.APIKey,
		HTTPClient: &http.Client{Timeout: cfg.RequestTimeout},
		Logger:     c.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create API client: %w", err)
	}
	return cl, nil
}

// newHistoryStore creates the file-backed task history store.
func (c *RootCommand) newHistoryStore() (history.Store, error) {
	store, err := history.NewFileStore(history.FileStoreConfig{
		Path:   c.HistPath,
		Logger: c.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create history store: %w", err)
	}
	return store, nil
}

// newPoller creates the task poller backed by the API client.
func (c *RootCommand) newPoller(cl client.API) (*task.Poller, error) {
	p, err := task.NewPoller(task.PollerConfig{
		Client: cl,
		Logger: c.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create poller: %w", err)
	}
	return p, nil
}

// waitConfig maps the effective configuration into polling parameters.
func waitConfig(cfg model.EffectiveConfig) task.WaitConfig {
	return task.WaitConfig{
		InitialDelay: cfg.PollInterval,
		Timeout:      cfg.PollTimeout,
	}
}

// progressPrinter returns a poll progress sink that rewrites one status line
// on w.
func progressPrinter(w io.Writer) task.ProgressFunc {
	return func(t model.Task) {
		fmt.Fprintf(w, "\rTask %s: %s %3.0f%%", t.ID, t.Status, t.Progress*100)
	}
}

// newPrinter selects the output printer for a format flag.
func (c *RootCommand) newPrinter(format string) printer.Printer {
	switch format {
	case "json":
		return printer.NewJSONPrinter(c.Stdout)
	default: // table
		return printer.NewTablePrinter(c.Stdout)
	}
}
