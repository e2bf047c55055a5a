package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/colonyops/todosync/internal/printer"
	"github.com/urfave/cli/v3"
)

type EditCmd struct {
	flags *Flags
	app   *App

	fields        taskFields
	clearDeadline bool
	clearColor    bool
	interactive   bool
}

// NewEditCmd creates a new edit command
func NewEditCmd(flags *Flags, app *App) *EditCmd {
	return &EditCmd{flags: flags, app: app}
}

// Register adds the edit command to the application
func (cmd *EditCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "edit",
		Usage:     "Change a task",
		UsageText: "todosync edit [options] <id>",
		Description: `Updates the given fields of a task and sends it to the server.
The id may be shortened to any unique prefix of at least four characters.

Without field flags, or with -i, an interactive form is shown.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "text",
				Aliases:     []string{"t"},
				Usage:       "new task text",
				Destination: &cmd.fields.Text,
			},
			&cli.StringFlag{
				Name:        "importance",
				Aliases:     []string{"p"},
				Usage:       "low, normal or high",
				Destination: &cmd.fields.Importance,
			},
			&cli.StringFlag{
				Name:        "deadline",
				Aliases:     []string{"d"},
				Usage:       "deadline date (YYYY-MM-DD)",
				Destination: &cmd.fields.Deadline,
			},
			&cli.BoolFlag{
				Name:        "clear-deadline",
				Usage:       "remove the deadline",
				Destination: &cmd.clearDeadline,
			},
			&cli.StringFlag{
				Name:        "color",
				Usage:       "hex color (#RRGGBB or #RRGGBBAA)",
				Destination: &cmd.fields.Color,
			},
			&cli.BoolFlag{
				Name:        "clear-color",
				Usage:       "remove the color",
				Destination: &cmd.clearColor,
			},
			&cli.BoolFlag{
				Name:        "interactive",
				Aliases:     []string{"i"},
				Usage:       "edit the task with a form",
				Destination: &cmd.interactive,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *EditCmd) run(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	if c.Args().Len() != 1 {
		return fmt.Errorf("expected exactly one task id")
	}

	current, err := findTask(cmd.app.Sync.Snapshot(ctx), c.Args().First())
	if err != nil {
		return err
	}

	// Start from the stored values and overlay what was passed.
	merged := fieldsFromTask(current)
	anySet := false
	overlay := func(flag string, dst *string, value string) {
		if c.IsSet(flag) {
			*dst = value
			anySet = true
		}
	}
	overlay("text", &merged.Text, cmd.fields.Text)
	overlay("importance", &merged.Importance, cmd.fields.Importance)
	overlay("deadline", &merged.Deadline, cmd.fields.Deadline)
	overlay("color", &merged.Color, cmd.fields.Color)
	if cmd.clearDeadline {
		merged.Deadline = ""
		anySet = true
	}
	if cmd.clearColor {
		merged.Color = ""
		anySet = true
	}

	if cmd.interactive || !anySet {
		if err := runTaskForm(ctx, "Edit task", &merged); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return nil
			}
			return fmt.Errorf("form: %w", err)
		}
	}

	if err := merged.validate(cmd.app.Config.Store.Format); err != nil {
		return err
	}

	updated := current
	updated.Text, updated.Importance, updated.Deadline, updated.Color = merged.parsed()
	if updated.Equal(current) {
		p.Infof("No changes")
		return nil
	}

	if _, err := cmd.app.Sync.Update(ctx, updated); err != nil {
		return fmt.Errorf("update task: %w", err)
	}

	p.Success("Task updated", current.ID)

	_, err = awaitSync(ctx, cmd.app.Sync)
	return err
}
