package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/colonyops/todosync/internal/core/task"
	"github.com/colonyops/todosync/internal/printer"
	"github.com/colonyops/todosync/pkg/iojson"
	"github.com/urfave/cli/v3"
)

type LsCmd struct {
	flags *Flags
	app   *App

	// flags
	jsonOutput bool
	hideDone   bool
	offline    bool
}

// NewLsCmd creates a new ls command
func NewLsCmd(flags *Flags, app *App) *LsCmd {
	return &LsCmd{flags: flags, app: app}
}

// Register adds the ls command to the application
func (cmd *LsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "ls",
		Usage:     "List tasks",
		UsageText: "todosync ls [--json] [--hide-done] [--offline]",
		Description: `Refreshes the local list from the server and displays it, oldest first.

If local changes are pending the local list is pushed to the server instead.
Use --offline to show the local list without contacting the server.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON lines",
				Destination: &cmd.jsonOutput,
			},
			&cli.BoolFlag{
				Name:        "hide-done",
				Usage:       "hide completed tasks (defaults to ui.hide_done)",
				Destination: &cmd.hideDone,
			},
			&cli.BoolFlag{
				Name:        "offline",
				Usage:       "do not contact the server",
				Destination: &cmd.offline,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *LsCmd) run(ctx context.Context, c *cli.Command) error {
	if !cmd.offline {
		cmd.app.Sync.Reload(ctx)
		if _, err := awaitSync(ctx, cmd.app.Sync); err != nil {
			return err
		}
	}

	hideDone := cmd.app.Config.UI.HideDone
	if c.IsSet("hide-done") {
		hideDone = cmd.hideDone
	}

	view := cmd.app.Sync.View(ctx, task.ViewOptions{HideDone: hideDone})
	out := c.Root().Writer

	if cmd.jsonOutput {
		for _, t := range view.Tasks {
			if err := iojson.WriteLine(out, newTaskInfo(t)); err != nil {
				return fmt.Errorf("encode task: %w", err)
			}
		}
		return nil
	}

	if view.Total == 0 {
		printer.Ctx(ctx).Infof("No tasks yet. Add one with 'todosync add'.")
		return nil
	}

	renderTable(out, view, time.Now())
	return nil
}
