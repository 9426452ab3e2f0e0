package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"
)

type ConfigShowCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	format string
}

// NewConfigShowCommand returns the config show command.
func NewConfigShowCommand(rootCmd *RootCommand, parent *kingpin.CmdClause) *ConfigShowCommand {
	c := &ConfigShowCommand{rootCmd: rootCmd}

	c.Cmd = parent.Command("show", "Show the effective configuration with the credential masked.")
	c.Cmd.Flag("format", "Output format (table, json).").Default("table").EnumVar(&c.format, "table", "json")

	return c
}

func (c ConfigShowCommand) Name() string { return c.Cmd.FullCommand() }

func (c ConfigShowCommand) Run(ctx context.Context) error {
	cfg, err := c.rootCmd.resolveConfig(c.rootCmd.baseOverrides())
	if err != nil {
		return err
	}

	// No validation here: showing an incomplete configuration is exactly
	// how a user finds out what is missing.
	if err := c.rootCmd.newPrinter(c.format).PrintConfig(cfg); err != nil {
		return fmt.Errorf("could not print config: %w", err)
	}

	return nil
}
