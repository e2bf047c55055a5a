package commands

import (
	"context"
	"fmt"

	"github.com/colonyops/todosync/internal/core/task"
	"github.com/colonyops/todosync/pkg/iojson"
	"github.com/urfave/cli/v3"
)

type ShowCmd struct {
	flags *Flags
	app   *App

	remote     bool
	jsonOutput bool
}

// NewShowCmd creates a new show command
func NewShowCmd(flags *Flags, app *App) *ShowCmd {
	return &ShowCmd{flags: flags, app: app}
}

// Register adds the show command to the application
func (cmd *ShowCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "show",
		Usage:     "Show a single task",
		UsageText: "todosync show [--remote] [--json] <id>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "remote",
				Usage:       "show the server's copy of the task",
				Destination: &cmd.remote,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON",
				Destination: &cmd.jsonOutput,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *ShowCmd) run(ctx context.Context, c *cli.Command) error {
	if c.Args().Len() != 1 {
		return fmt.Errorf("expected exactly one task id")
	}

	id := c.Args().First()
	t, err := findTask(cmd.app.Sync.Snapshot(ctx), id)
	if err == nil && cmd.remote {
		t, err = cmd.fetchRemote(ctx, t)
	}
	if err != nil {
		if cmd.jsonOutput {
			if werr := iojson.WriteError(c.Root().ErrWriter, err.Error(), map[string]any{"id": id}); werr != nil {
				return werr
			}
			return cli.Exit("", 1)
		}
		return err
	}

	out := c.Root().Writer
	if cmd.jsonOutput {
		return iojson.WriteWith(out, c.Root().ErrWriter, newTaskInfo(t))
	}

	_, err = fmt.Fprint(out, renderMarkdown(taskMarkdown(t), 80))
	return err
}

func (cmd *ShowCmd) fetchRemote(ctx context.Context, local task.Task) (task.Task, error) {
	t, err := cmd.app.Remote.FetchTask(ctx, local.ID, local)
	if err != nil {
		return task.Task{}, fmt.Errorf("fetch task from server: %w", err)
	}
	return t, nil
}
