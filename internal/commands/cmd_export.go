package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/colonyops/todosync/internal/data/codec"
	"github.com/colonyops/todosync/internal/printer"
	"github.com/urfave/cli/v3"
)

type ExportCmd struct {
	flags *Flags
	app   *App

	format string
	output string
}

// NewExportCmd creates a new export command
func NewExportCmd(flags *Flags, app *App) *ExportCmd {
	return &ExportCmd{flags: flags, app: app}
}

// Register adds the export command to the application
func (cmd *ExportCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "export",
		Usage:     "Write the local tasks as JSON or CSV",
		UsageText: "todosync export [--format json|csv] [-o file]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "format",
				Usage:       "output format (json, csv)",
				Value:       "json",
				Destination: &cmd.format,
			},
			&cli.StringFlag{
				Name:        "output",
				Aliases:     []string{"o"},
				Usage:       "write to a file instead of stdout",
				Destination: &cmd.output,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *ExportCmd) run(ctx context.Context, c *cli.Command) error {
	enc, err := codec.ForFormat(cmd.format)
	if err != nil {
		return err
	}

	tasks := cmd.app.Sync.Snapshot(ctx)
	data, err := enc.Encode(tasks)
	if err != nil {
		return fmt.Errorf("encode tasks: %w", err)
	}

	if cmd.output == "" {
		_, err = c.Root().Writer.Write(data)
		return err
	}

	if err := os.WriteFile(cmd.output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", cmd.output, err)
	}
	printer.Ctx(ctx).Successf("Exported %d task(s) to %s", len(tasks), cmd.output)
	return nil
}
