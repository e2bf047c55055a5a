package commands

import (
	"context"

	"github.com/colonyops/todosync/internal/syncer"
	"github.com/urfave/cli/v3"
)

type SyncCmd struct {
	flags *Flags
	app   *App
}

// NewSyncCmd creates a new sync command
func NewSyncCmd(flags *Flags, app *App) *SyncCmd {
	return &SyncCmd{flags: flags, app: app}
}

// Register adds the sync command to the application
func (cmd *SyncCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "sync",
		Usage:     "Synchronize with the server",
		UsageText: "todosync sync",
		Description: `Fetches the server list, or pushes the whole local list when
changes are pending from an earlier failed sync.

Exits with status 1 if the server could not be reached.`,
		Action: cmd.run,
	})

	return app
}

func (cmd *SyncCmd) run(ctx context.Context, c *cli.Command) error {
	cmd.app.Sync.Reload(ctx)

	status, err := awaitSync(ctx, cmd.app.Sync)
	if err != nil {
		return err
	}
	if status == syncer.StatusDirty {
		return cli.Exit("", 1)
	}
	return nil
}
