package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/lzy756/deepseekocr-cli/internal/app/ocr"
	"github.com/lzy756/deepseekocr-cli/internal/model"
)

type OCRCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	file       string
	mode       string
	resolution string
	prompt     string
}

// NewOCRCommand returns the ocr command.
func NewOCRCommand(rootCmd *RootCommand, app *kingpin.Application) *OCRCommand {
	c := &OCRCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("ocr", "Run OCR on a single image.")
	c.Cmd.Arg("image", "Path to the image file.").Required().StringVar(&c.file)
	c.Cmd.Flag("mode", "Output mode (markdown, text, layout).").StringVar(&c.mode)
	c.Cmd.Flag("resolution", "Model resolution preset (tiny, small, base, large, gundam).").StringVar(&c.resolution)
	c.Cmd.Flag("prompt", "Custom prompt overriding the mode default.").StringVar(&c.prompt)

	return c
}

func (c OCRCommand) Name() string { return c.Cmd.FullCommand() }

func (c OCRCommand) Run(ctx context.Context) error {
	overrides := c.rootCmd.baseOverrides()
	if c.mode != "" {
		overrides.Mode = &c.mode
	}
	if c.resolution != "" {
		overrides.Resolution = &c.resolution
	}

	cfg, err := c.rootCmd.resolveConfig(overrides)
	if err != nil {
		return err
	}

	cl, err := c.rootCmd.newAPIClient(cfg)
	if err != nil {
		return err
	}

	svc, err := ocr.NewService(ocr.ServiceConfig{
		API:       cl,
		OutputDir: c.rootCmd.OutputDir,
		Logger:    c.rootCmd.Logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	res, err := svc.Run(ctx, ocr.Request{
		File: c.file,
		Params: model.ProcessParams{
			Mode:       cfg.Mode,
			Resolution: cfg.Resolution,
			Prompt:     c.prompt,
		},
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(c.rootCmd.Stdout, "Result written to %s\n", res.OutputPath)
	return nil
}
