package commands

import (
	"context"
	"fmt"

	"github.com/colonyops/todosync/internal/printer"
	"github.com/urfave/cli/v3"
)

type DoneCmd struct {
	flags *Flags
	app   *App
}

// NewDoneCmd creates a new done command
func NewDoneCmd(flags *Flags, app *App) *DoneCmd {
	return &DoneCmd{flags: flags, app: app}
}

// Register adds the done command to the application
func (cmd *DoneCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "done",
		Aliases:   []string{"toggle"},
		Usage:     "Toggle the done flag of a task",
		UsageText: "todosync done <id>",
		Action:    cmd.run,
	})

	return app
}

func (cmd *DoneCmd) run(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	if c.Args().Len() != 1 {
		return fmt.Errorf("expected exactly one task id")
	}

	current, err := findTask(cmd.app.Sync.Snapshot(ctx), c.Args().First())
	if err != nil {
		return err
	}

	t, ok := cmd.app.Sync.Toggle(ctx, current.ID)
	if !ok {
		return fmt.Errorf("task %s disappeared", current.ID)
	}

	if t.IsDone {
		p.Success("Marked done", t.Text)
	} else {
		p.Success("Marked not done", t.Text)
	}

	_, err = awaitSync(ctx, cmd.app.Sync)
	return err
}
