package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/lzy756/deepseekocr-cli/internal/app/health"
)

type HealthCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	format string
}

// NewHealthCommand returns the health command.
func NewHealthCommand(rootCmd *RootCommand, app *kingpin.Application) *HealthCommand {
	c := &HealthCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("health", "Check the remote OCR server health.")
	c.Cmd.Flag("format", "Output format (table, json).").Default("table").EnumVar(&c.format, "table", "json")

	return c
}

func (c HealthCommand) Name() string { return c.Cmd.FullCommand() }

func (c HealthCommand) Run(ctx context.Context) error {
	cfg, err := c.rootCmd.resolveConfig(c.rootCmd.baseOverrides())
	if err != nil {
		return err
	}

	cl, err := c.rootCmd.newAPIClient(cfg)
	if err != nil {
		return err
	}

	svc, err := health.NewService(health.ServiceConfig{
		API:    cl,
		Logger: c.rootCmd.Logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	h, err := svc.Run(ctx)
	if err != nil {
		return err
	}

	if err := c.rootCmd.newPrinter(c.format).PrintHealth(*h); err != nil {
		return fmt.Errorf("could not print health: %w", err)
	}

	return nil
}
