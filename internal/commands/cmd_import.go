package commands

import (
	"context"
	"fmt"

	"github.com/colonyops/todosync/internal/core/config"
	"github.com/colonyops/todosync/internal/core/task"
	"github.com/colonyops/todosync/internal/core/validate"
	"github.com/colonyops/todosync/internal/data/codec"
	"github.com/colonyops/todosync/internal/printer"
	"github.com/colonyops/todosync/pkg/iojson"
	"github.com/hay-kot/criterio"
	"github.com/urfave/cli/v3"
)

type ImportCmd struct {
	flags *Flags
	app   *App

	reader iojson.FileReader
	format string
}

// NewImportCmd creates a new import command
func NewImportCmd(flags *Flags, app *App) *ImportCmd {
	return &ImportCmd{flags: flags, app: app}
}

// Register adds the import command to the application
func (cmd *ImportCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "import",
		Usage:     "Add or replace tasks from a JSON or CSV document",
		UsageText: "todosync import [--format json|csv] [-f file]",
		Description: `Reads tasks in the export format and stores each one, replacing any
task with the same id. Every imported task is sent to the server.

Malformed entries are skipped.`,
		Flags: []cli.Flag{
			cmd.reader.Flag(),
			&cli.StringFlag{
				Name:        "format",
				Usage:       "input format (json, csv)",
				Value:       "json",
				Destination: &cmd.format,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *ImportCmd) run(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	dec, err := codec.ForFormat(cmd.format)
	if err != nil {
		return err
	}

	data, err := cmd.reader.ReadAll()
	if err != nil {
		return err
	}

	tasks, err := dec.Decode(data)
	if err != nil {
		return fmt.Errorf("decode %s: %w", cmd.format, err)
	}
	if len(tasks) == 0 {
		p.Infof("Nothing to import")
		return nil
	}

	csvStore := cmd.app.Config.Store.Format == config.FormatCSV

	imported := 0
	for _, t := range tasks {
		if csvStore {
			if err := csvSafeTask(t); err != nil {
				p.Warnf("skipped %s: %v", t.ID, err)
				continue
			}
		}
		if _, err := cmd.app.Sync.Update(ctx, t); err != nil {
			p.Warnf("skipped %s: %v", t.ID, err)
			continue
		}
		imported++
	}
	p.Successf("Imported %d task(s)", imported)

	_, err = awaitSync(ctx, cmd.app.Sync)
	return err
}

func csvSafeTask(t task.Task) error {
	return criterio.ValidateStruct(
		criterio.Run("id", t.ID, validate.CSVSafe),
		criterio.Run("text", t.Text, validate.CSVSafe),
	)
}
