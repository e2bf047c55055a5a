package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/colonyops/todosync/internal/core/config"
	"github.com/colonyops/todosync/internal/core/logging"
	"github.com/colonyops/todosync/internal/core/revision"
	"github.com/colonyops/todosync/internal/core/task"
	"github.com/colonyops/todosync/internal/data/codec"
	"github.com/colonyops/todosync/internal/data/db"
	"github.com/colonyops/todosync/internal/data/stores"
	"github.com/colonyops/todosync/internal/remote"
	"github.com/colonyops/todosync/internal/syncer"
	"github.com/rs/zerolog"
)

// App holds the long-lived services shared by every command.
type App struct {
	Config    *config.Config
	Store     *stores.ItemStore
	Revisions *revision.Tracker
	Remote    *remote.Client
	Sync      *syncer.Orchestrator
}

// NewApp wires storage, the remote client and the orchestrator from cfg.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	storage, err := openStorage(ctx, cfg, logging.Component("db"))
	if err != nil {
		return nil, err
	}

	store := stores.NewItemStore(storage, stores.StatePath(cfg.StorePath()), logging.Component("store"))
	revisions := &revision.Tracker{}

	client := remote.New(remote.Options{
		BaseURL:  cfg.Remote.BaseURL,
		Token:    cfg.Remote.Token,
		DeviceID: cfg.DeviceID,
		Timeout:  cfg.Remote.Timeout,
		Policy:   cfg.RetryPolicy(),
	}, revisions, logging.Component("remote"))

	return &App{
		Config:    cfg,
		Store:     store,
		Revisions: revisions,
		Remote:    client,
		Sync:      syncer.New(store, client, logging.Component("sync")),
	}, nil
}

// Close stops the orchestrator, cancelling remote calls still in flight, and
// releases storage.
func (a *App) Close() error {
	a.Sync.Close()
	return a.Store.Close()
}

func openStorage(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (task.Storage, error) {
	path := cfg.StorePath()

	if cfg.Store.Format == config.FormatSQLite {
		database, err := stores.OpenDatabase(ctx, path, db.OpenOptions{
			MaxOpenConns: cfg.Database.MaxOpenConns,
			MaxIdleConns: cfg.Database.MaxIdleConns,
			BusyTimeout:  cfg.Database.BusyTimeout,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		return stores.NewTableStorage(database, cfg.DeviceID), nil
	}

	c, err := codec.ForFormat(cfg.Store.Format)
	if err != nil {
		return nil, err
	}
	return stores.NewFileStorage(path, c), nil
}

// findTask resolves id against the local tasks. A unique prefix of an ID is
// accepted.
func findTask(tasks []task.Task, id string) (task.Task, error) {
	var (
		match task.Task
		found int
	)
	for _, t := range tasks {
		if t.ID == id {
			return t, nil
		}
		if len(id) >= 4 && len(t.ID) > len(id) && t.ID[:len(id)] == id {
			match = t
			found++
		}
	}

	switch found {
	case 0:
		return task.Task{}, fmt.Errorf("%w: %s", task.ErrNotFound, id)
	case 1:
		return match, nil
	default:
		return task.Task{}, errors.New("ambiguous id prefix " + id)
	}
}
