package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/colonyops/todosync/internal/core/task"
	"github.com/colonyops/todosync/internal/syncer"
	"github.com/colonyops/todosync/pkg/iojson"
	"github.com/urfave/cli/v3"
)

type StatusCmd struct {
	flags *Flags
	app   *App

	jsonOutput bool
}

// NewStatusCmd creates a new status command
func NewStatusCmd(flags *Flags, app *App) *StatusCmd {
	return &StatusCmd{flags: flags, app: app}
}

// Register adds the status command to the application
func (cmd *StatusCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:        "status",
		Usage:       "Show local sync state",
		UsageText:   "todosync status [--json]",
		Description: "Reports whether local changes are waiting to be pushed. Does not contact the server.",
		Flags: []cli.Flag{
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

type statusInfo struct {
	Dirty    bool   `json:"dirty"`
	Tasks    int    `json:"tasks"`
	Done     int    `json:"done"`
	Format   string `json:"format"`
	Path     string `json:"path"`
	Server   string `json:"server"`
	DeviceID string `json:"device_id"`
}

func (cmd *StatusCmd) run(ctx context.Context, c *cli.Command) error {
	cfg := cmd.app.Config
	view := cmd.app.Sync.View(ctx, task.ViewOptions{})

	info := statusInfo{
		Dirty:    cmd.app.Sync.Dirty(),
		Tasks:    view.Total,
		Done:     view.DoneCount,
		Format:   cfg.Store.Format,
		Path:     cfg.StorePath(),
		Server:   cfg.Remote.BaseURL,
		DeviceID: cfg.DeviceID,
	}

	out := c.Root().Writer
	if cmd.jsonOutput {
		return iojson.WriteWith(out, c.Root().ErrWriter, info)
	}

	state := syncer.StatusSynced
	if info.Dirty {
		state = syncer.StatusDirty
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "state\t%s\n", statusLabel(state))
	_, _ = fmt.Fprintf(w, "tasks\t%d (%d done)\n", info.Tasks, info.Done)
	_, _ = fmt.Fprintf(w, "store\t%s (%s)\n", info.Path, info.Format)
	_, _ = fmt.Fprintf(w, "server\t%s\n", info.Server)
	_, _ = fmt.Fprintf(w, "device\t%s\n", info.DeviceID)
	return w.Flush()
}
