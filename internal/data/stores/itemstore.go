package stores

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/colonyops/todosync/internal/core/task"
	"github.com/colonyops/todosync/pkg/kv"
	"github.com/rs/zerolog"
)

// ItemStore owns the in-memory task collection and mirrors every change to
// its backing storage. Storage I/O failures are logged, never returned: the
// in-memory collection stays authoritative for the running process.
type ItemStore struct {
	mu        sync.Mutex
	storage   task.Storage
	items     *kv.Store[string, task.Task]
	loaded    bool
	statePath string
	dirty     bool
	log       zerolog.Logger
}

// NewItemStore creates a store over storage. statePath is the sidecar file
// that persists the dirty flag; an empty path keeps the flag in memory only.
func NewItemStore(storage task.Storage, statePath string, logger zerolog.Logger) *ItemStore {
	s := &ItemStore{
		storage:   storage,
		items:     kv.New[string, task.Task](),
		statePath: statePath,
		log:       logger,
	}

	if statePath != "" {
		st, err := loadState(statePath)
		if err != nil {
			// An unreadable sidecar may hide unsynced edits.
			s.log.Warn().Err(err).Str("path", statePath).Msg("unreadable sync state, assuming dirty")
			st.Dirty = true
		}
		s.dirty = st.Dirty
	}

	return s
}

// LoadAll returns a snapshot of all tasks ordered by creation date. The
// backing storage is read on first access.
func (s *ItemStore) LoadAll(ctx context.Context) []task.Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ensureLoaded(ctx)
	return s.snapshot()
}

// Reload discards the in-memory collection and reads the backing storage
// again.
func (s *ItemStore) Reload(ctx context.Context) []task.Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.loaded = false
	s.ensureLoaded(ctx)
	return s.snapshot()
}

// Get returns a single task or task.ErrNotFound.
func (s *ItemStore) Get(ctx context.Context, id string) (task.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ensureLoaded(ctx)
	t, ok := s.items.Get(id)
	if !ok {
		return task.Task{}, task.ErrNotFound
	}
	return t, nil
}

// Upsert inserts t or replaces the task with the same ID. Only a task that
// fails validation is rejected.
func (s *ItemStore) Upsert(ctx context.Context, t task.Task) error {
	if err := t.Validate(); err != nil {
		return fmt.Errorf("invalid task: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.ensureLoaded(ctx)
	s.items.Set(t.ID, t)
	s.persist(ctx)
	return nil
}

// Remove deletes the task with id. Removing an unknown id is a no-op that
// still rewrites storage.
func (s *ItemStore) Remove(ctx context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ensureLoaded(ctx)
	s.items.Delete(id)
	s.persist(ctx)
}

// ToggleDone flips the done flag of the task with id. The modification date
// is left as is.
func (s *ItemStore) ToggleDone(ctx context.Context, id string) (task.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ensureLoaded(ctx)
	t, ok := s.items.Update(id, func(t task.Task) task.Task {
		return t.WithDone(!t.IsDone)
	})
	if !ok {
		return task.Task{}, false
	}

	s.persist(ctx)
	return t, true
}

// ReplaceAll swaps the whole collection. Duplicate IDs collapse to the last
// occurrence.
func (s *ItemStore) ReplaceAll(ctx context.Context, tasks []task.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items.Replace(tasks, func(t task.Task) string { return t.ID })
	s.loaded = true
	s.persist(ctx)
}

// Dirty reports whether local changes may be missing from the server.
func (s *ItemStore) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// SetDirty records the dirty flag and persists it to the sidecar file.
func (s *ItemStore) SetDirty(dirty bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dirty == dirty {
		return
	}
	s.dirty = dirty

	if s.statePath == "" {
		return
	}
	if err := saveState(s.statePath, syncState{Dirty: dirty}); err != nil {
		s.log.Error().Err(err).Str("path", s.statePath).Msg("failed to persist sync state")
	}
}

// Close releases the backing storage.
func (s *ItemStore) Close() error {
	return s.storage.Close()
}

// ensureLoaded reads storage once. Missing or corrupt storage loads as an
// empty collection which is written back immediately.
func (s *ItemStore) ensureLoaded(ctx context.Context) {
	if s.loaded {
		return
	}
	s.loaded = true

	tasks, err := s.storage.Load(ctx)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.log.Debug().Msg("no task storage yet, starting empty")
		} else {
			s.log.Error().Err(err).Msg("failed to load tasks, resetting storage")
		}
		s.items.Replace(nil, nil)
		s.persist(ctx)
		return
	}

	s.items.Replace(tasks, func(t task.Task) string { return t.ID })
}

func (s *ItemStore) persist(ctx context.Context) {
	if err := s.storage.Save(ctx, s.snapshot()); err != nil {
		s.log.Error().Err(err).Msg("failed to save tasks")
	}
}

func (s *ItemStore) snapshot() []task.Task {
	tasks := s.items.Values()
	task.Sort(tasks)
	return tasks
}
