package commands

import (
	"context"
	"fmt"

	"github.com/colonyops/todosync/internal/printer"
	"github.com/urfave/cli/v3"
)

type RmCmd struct {
	flags *Flags
	app   *App
}

// NewRmCmd creates a new rm command
func NewRmCmd(flags *Flags, app *App) *RmCmd {
	return &RmCmd{flags: flags, app: app}
}

// Register adds the rm command to the application
func (cmd *RmCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "rm",
		Aliases:   []string{"delete"},
		Usage:     "Delete a task",
		UsageText: "todosync rm <id>",
		Action:    cmd.run,
	})

	return app
}

func (cmd *RmCmd) run(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	if c.Args().Len() != 1 {
		return fmt.Errorf("expected exactly one task id")
	}

	current, err := findTask(cmd.app.Sync.Snapshot(ctx), c.Args().First())
	if err != nil {
		return err
	}

	if !cmd.app.Sync.Delete(ctx, current.ID) {
		return fmt.Errorf("task %s disappeared", current.ID)
	}
	p.Success("Task deleted", current.Text)

	_, err = awaitSync(ctx, cmd.app.Sync)
	return err
}
