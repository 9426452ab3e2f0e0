package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/alecthomas/kingpin/v2"

	"github.com/lzy756/deepseekocr-cli/internal/app/document"
	"github.com/lzy756/deepseekocr-cli/internal/model"
)

type PDFCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	file        string
	mode        string
	resolution  string
	prompt      string
	dpi         int
	maxPages    int
	forceAsync  bool
	pollTimeout time.Duration
}

// NewPDFCommand returns the pdf command.
func NewPDFCommand(rootCmd *RootCommand, app *kingpin.Application) *PDFCommand {
	c := &PDFCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("pdf", "Run OCR on a PDF document.")
	c.Cmd.Arg("file", "Path to the PDF file.").Required().StringVar(&c.file)
	c.Cmd.Flag("mode", "Output mode (markdown, text, layout).").StringVar(&c.mode)
	c.Cmd.Flag("resolution", "Model resolution preset (tiny, small, base, large, gundam).").StringVar(&c.resolution)
	c.Cmd.Flag("prompt", "Custom prompt overriding the mode default.").StringVar(&c.prompt)
	c.Cmd.Flag("dpi", "Rasterization density.").IntVar(&c.dpi)
	c.Cmd.Flag("max-pages", "Page processing cap, also the sync/async estimate.").IntVar(&c.maxPages)
	c.Cmd.Flag("async", "Force the asynchronous path regardless of page count.").BoolVar(&c.forceAsync)
	c.Cmd.Flag("poll-timeout", "Overall wait budget for the asynchronous path.").DurationVar(&c.pollTimeout)

	return c
}

func (c PDFCommand) Name() string { return c.Cmd.FullCommand() }

func (c PDFCommand) Run(ctx context.Context) error {
	overrides := c.rootCmd.baseOverrides()
	if c.mode != "" {
		overrides.Mode = &c.mode
	}
	if c.resolution != "" {
		overrides.Resolution = &c.resolution
	}
	if c.dpi != 0 {
		overrides.DPI = &c.dpi
	}
	if c.maxPages != 0 {
		overrides.MaxPages = &c.maxPages
	}
	if c.pollTimeout != 0 {
		overrides.PollTimeout = &c.pollTimeout
	}

	cfg, err := c.rootCmd.resolveConfig(overrides)
	if err != nil {
		return err
	}

	cl, err := c.rootCmd.newAPIClient(cfg)
	if err != nil {
		return err
	}

	store, err := c.rootCmd.newHistoryStore()
	if err != nil {
		return err
	}

	poller, err := c.rootCmd.newPoller(cl)
	if err != nil {
		return err
	}

	svc, err := document.NewService(document.ServiceConfig{
		API:       cl,
		Poller:    poller,
		History:   store,
		OutputDir: c.rootCmd.OutputDir,
		Logger:    c.rootCmd.Logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	res, err := svc.Run(ctx, document.Request{
		File: c.file,
		Params: model.ProcessParams{
			Mode:       cfg.Mode,
			Resolution: cfg.Resolution,
			Prompt:     c.prompt,
			DPI:        cfg.DPI,
			MaxPages:   cfg.MaxPages,
		},
		ForceAsync: c.forceAsync,
		Wait:       waitConfig(cfg),
		OnProgress: progressPrinter(c.rootCmd.Stderr),
	})
	if err != nil {
		return err
	}

	if res.Async {
		fmt.Fprintln(c.rootCmd.Stderr)
		fmt.Fprintf(c.rootCmd.Stdout, "Task %s finished, result extracted to %s\n", res.TaskID, res.OutputPath)
	} else {
		fmt.Fprintf(c.rootCmd.Stdout, "Result written to %s\n", res.OutputPath)
	}
	return nil
}
