package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/alecthomas/kingpin/v2"

	"github.com/lzy756/deepseekocr-cli/internal/app/taskresult"
)

type TaskResultCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	taskID      string
	pollTimeout time.Duration
}

// NewTaskResultCommand returns the task result command.
func NewTaskResultCommand(rootCmd *RootCommand, parent *kingpin.CmdClause) *TaskResultCommand {
	c := &TaskResultCommand{rootCmd: rootCmd}

	c.Cmd = parent.Command("result", "Download and extract the result of a task, waiting if it still runs.")
	c.Cmd.Arg("id", "Task identifier.").Required().StringVar(&c.taskID)
	c.Cmd.Flag("poll-timeout", "Overall wait budget.").DurationVar(&c.pollTimeout)

	return c
}

func (c TaskResultCommand) Name() string { return c.Cmd.FullCommand() }

func (c TaskResultCommand) Run(ctx context.Context) error {
	overrides := c.rootCmd.baseOverrides()
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

	svc, err := taskresult.NewService(taskresult.ServiceConfig{
		API:       cl,
		Poller:    poller,
		History:   store,
		OutputDir: c.rootCmd.OutputDir,
		Logger:    c.rootCmd.Logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	res, err := svc.Run(ctx, taskresult.Request{
		TaskID:     c.taskID,
		Wait:       waitConfig(cfg),
		OnProgress: progressPrinter(c.rootCmd.Stderr),
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(c.rootCmd.Stderr)
	fmt.Fprintf(c.rootCmd.Stdout, "Result extracted to %s\n", res.ResultDir)
	return nil
}
