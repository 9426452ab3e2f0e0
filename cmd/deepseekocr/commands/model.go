package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/lzy756/deepseekocr-cli/internal/app/modelinfo"
)

type ModelCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	format string
}

// NewModelCommand returns the model command.
func NewModelCommand(rootCmd *RootCommand, app *kingpin.Application) *ModelCommand {
	c := &ModelCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("model", "Show the remote OCR model information.")
	c.Cmd.Flag("format", "Output format (table, json).").Default("table").EnumVar(&c.format, "table", "json")

	return c
}

func (c ModelCommand) Name() string { return c.Cmd.FullCommand() }

func (c ModelCommand) Run(ctx context.Context) error {
	cfg, err := c.rootCmd.resolveConfig(c.rootCmd.baseOverrides())
	if err != nil {
		return err
	}

	cl, err := c.rootCmd.newAPIClient(cfg)
	if err != nil {
		return err
	}

	svc, err := modelinfo.NewService(modelinfo.ServiceConfig{
		API:    cl,
		Logger: c.rootCmd.Logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	info, err := svc.Run(ctx)
	if err != nil {
		return err
	}

	if err := c.rootCmd.newPrinter(c.format).PrintModelInfo(*info); err != nil {
		return fmt.Errorf("could not print model info: %w", err)
	}

	return nil
}
