package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/colonyops/todosync/internal/printer"
	"github.com/colonyops/todosync/internal/syncer"
	"github.com/urfave/cli/v3"
)

type AddCmd struct {
	flags *Flags
	app   *App

	fields      taskFields
	interactive bool
}

// NewAddCmd creates a new add command
func NewAddCmd(flags *Flags, app *App) *AddCmd {
	return &AddCmd{flags: flags, app: app}
}

// Register adds the add command to the application
func (cmd *AddCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "add",
		Usage:     "Create a task",
		UsageText: "todosync add [options] [text]",
		Description: `Creates a task locally and sends it to the server.

The text may be given as arguments or with --text. Without text, or with -i,
an interactive form is shown.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "text",
				Aliases:     []string{"t"},
				Usage:       "task text",
				Destination: &cmd.fields.Text,
			},
			&cli.StringFlag{
				Name:        "importance",
				Aliases:     []string{"p"},
				Usage:       "low, normal or high",
				Value:       "normal",
				Destination: &cmd.fields.Importance,
			},
			&cli.StringFlag{
				Name:        "deadline",
				Aliases:     []string{"d"},
				Usage:       "deadline date (YYYY-MM-DD)",
				Destination: &cmd.fields.Deadline,
			},
			&cli.StringFlag{
				Name:        "color",
				Usage:       "hex color (#RRGGBB or #RRGGBBAA)",
				Destination: &cmd.fields.Color,
			},
			&cli.BoolFlag{
				Name:        "interactive",
				Aliases:     []string{"i"},
				Usage:       "fill in the task with a form",
				Destination: &cmd.interactive,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *AddCmd) run(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	if cmd.fields.Text == "" && c.Args().Len() > 0 {
		cmd.fields.Text = joinArgs(c)
	}

	if cmd.interactive || cmd.fields.Text == "" {
		if err := runTaskForm(ctx, "New task", &cmd.fields); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return nil
			}
			return fmt.Errorf("form: %w", err)
		}
	}

	if err := cmd.fields.validate(cmd.app.Config.Store.Format); err != nil {
		return err
	}

	text, imp, deadline, color := cmd.fields.parsed()
	t, err := cmd.app.Sync.Create(ctx, text, syncer.CreateOptions{
		Importance: imp,
		Deadline:   deadline,
		Color:      color,
	})
	if err != nil {
		return fmt.Errorf("create task: %w", err)
	}

	p.Success("Task created", t.ID)

	_, err = awaitSync(ctx, cmd.app.Sync)
	return err
}

func joinArgs(c *cli.Command) string {
	return strings.Join(c.Args().Slice(), " ")
}
