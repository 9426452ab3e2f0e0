package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/lzy756/deepseekocr-cli/internal/app/batchrun"
	"github.com/lzy756/deepseekocr-cli/internal/app/document"
	"github.com/lzy756/deepseekocr-cli/internal/app/ocr"
	"github.com/lzy756/deepseekocr-cli/internal/model"
)

type BatchCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	files      []string
	mode       string
	resolution string
	dpi        int
	maxPages   int
	workers    int
	format     string
}

// NewBatchCommand returns the batch command.
func NewBatchCommand(rootCmd *RootCommand, app *kingpin.Application) *BatchCommand {
	c := &BatchCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("batch", "Run OCR on many files with a bounded worker pool.")
	c.Cmd.Arg("files", "Input files (images and PDFs).").Required().StringsVar(&c.files)
	c.Cmd.Flag("mode", "Output mode (markdown, text, layout).").StringVar(&c.mode)
	c.Cmd.Flag("resolution", "Model resolution preset (tiny, small, base, large, gundam).").StringVar(&c.resolution)
	c.Cmd.Flag("dpi", "Rasterization density for documents.").IntVar(&c.dpi)
	c.Cmd.Flag("max-pages", "Page processing cap for documents.").IntVar(&c.maxPages)
	c.Cmd.Flag("workers", "Concurrent worker bound.").IntVar(&c.workers)
	c.Cmd.Flag("format", "Output format (table, json).").Default("table").EnumVar(&c.format, "table", "json")

	return c
}

func (c BatchCommand) Name() string { return c.Cmd.FullCommand() }

func (c BatchCommand) Run(ctx context.Context) error {
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
	if c.workers != 0 {
		overrides.Workers = &c.workers
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

	imageSvc, err := ocr.NewService(ocr.ServiceConfig{
		API:       cl,
		OutputDir: c.rootCmd.OutputDir,
		Logger:    c.rootCmd.Logger,
	})
	if err != nil {
		return fmt.Errorf("could not create image service: %w", err)
	}

	documentSvc, err := document.NewService(document.ServiceConfig{
		API:       cl,
		Poller:    poller,
		History:   store,
		OutputDir: c.rootCmd.OutputDir,
		Logger:    c.rootCmd.Logger,
	})
	if err != nil {
		return fmt.Errorf("could not create document service: %w", err)
	}

	svc, err := batchrun.NewService(batchrun.ServiceConfig{
		Image:     imageSvc,
		Document:  documentSvc,
		Workers:   cfg.Workers,
		OutputDir: c.rootCmd.OutputDir,
		Logger:    c.rootCmd.Logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	summary, err := svc.Run(ctx, batchrun.Request{
		Files: c.files,
		Params: model.ProcessParams{
			Mode:       cfg.Mode,
			Resolution: cfg.Resolution,
			DPI:        cfg.DPI,
			MaxPages:   cfg.MaxPages,
		},
		OnProgress: func(idx int, r model.BatchItemResult) {
			status := "ok"
			if !r.Success {
				status = "failed"
			}
			fmt.Fprintf(c.rootCmd.Stderr, "[%d/%d] %s: %s\n", idx+1, len(c.files), r.File, status)
		},
	})
	if err != nil {
		return err
	}

	if err := c.rootCmd.newPrinter(c.format).PrintBatchSummary(*summary); err != nil {
		return fmt.Errorf("could not print summary: %w", err)
	}

	return nil
}
