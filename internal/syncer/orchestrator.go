package syncer

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/colonyops/todosync/internal/core/logging"
	"github.com/colonyops/todosync/internal/core/notify"
	"github.com/colonyops/todosync/internal/core/task"
	"github.com/colonyops/todosync/internal/remote"
	"github.com/rs/zerolog"
)

// Store is the local task collection. It is satisfied by *stores.ItemStore.
type Store interface {
	LoadAll(ctx context.Context) []task.Task
	Reload(ctx context.Context) []task.Task
	Get(ctx context.Context, id string) (task.Task, error)
	Upsert(ctx context.Context, t task.Task) error
	Remove(ctx context.Context, id string)
	ToggleDone(ctx context.Context, id string) (task.Task, bool)
	ReplaceAll(ctx context.Context, tasks []task.Task)
	Dirty() bool
	SetDirty(dirty bool)
}

// Remote is the backend API. It is satisfied by *remote.Client.
type Remote interface {
	FetchList(ctx context.Context) ([]task.Task, error)
	CreateTask(ctx context.Context, t task.Task) (task.Task, error)
	UpdateTask(ctx context.Context, id string, t task.Task) (task.Task, error)
	DeleteTask(ctx context.Context, id string) (task.Task, error)
	ReplaceList(ctx context.Context, tasks []task.Task) ([]task.Task, error)
}

// Event is published on every status change. Tasks is the local snapshot at
// the time of the change.
type Event struct {
	Status Status
	Dirty  bool
	Tasks  []task.Task
}

// CreateOptions carries the optional fields of a new task.
type CreateOptions struct {
	Importance task.Importance
	Deadline   *time.Time
	Color      *string
}

// opResult is sent from a background remote call to the loop goroutine.
type opResult struct {
	op        string
	taskID    string
	prev      Status
	reconcile bool
	replace   bool
	list      []task.Task
	err       error
	cancelled bool
}

// Orchestrator applies user mutations to the local store right away and
// mirrors them to the backend in the background. Each remote call runs in its
// own goroutine; results are applied by a single loop goroutine.
//
// While the store's dirty flag is set, every mutation and reload pushes the
// whole local list to the backend instead of the single change.
type Orchestrator struct {
	store  Store
	remote Remote
	bus    *notify.Bus[Event]
	log    zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	results  chan opResult
	quit     chan struct{}
	loopDone chan struct{}
	inflight sync.WaitGroup

	pubMu  sync.Mutex // orders transitions and their events
	mu     sync.Mutex
	status Status
	closed bool

	closeOnce sync.Once
}

// New creates an orchestrator and starts its loop. The initial status is
// syncing until the first remote outcome arrives.
func New(store Store, remote Remote, logger zerolog.Logger) *Orchestrator {
	ctx, cancel := context.WithCancel(context.Background())

	o := &Orchestrator{
		store:    store,
		remote:   remote,
		bus:      notify.NewBus[Event](),
		log:      logger,
		ctx:      ctx,
		cancel:   cancel,
		results:  make(chan opResult),
		quit:     make(chan struct{}),
		loopDone: make(chan struct{}),
		status:   StatusSyncing,
	}

	go o.loop()
	return o
}

// Subscribe registers fn for status events. fn runs synchronously on the
// goroutine that produced the event and must not call mutating methods.
func (o *Orchestrator) Subscribe(fn func(Event)) (unsubscribe func()) {
	return o.bus.Subscribe(fn)
}

// LastEvent returns the most recent status event, if any operation has
// published one yet.
func (o *Orchestrator) LastEvent() (Event, bool) {
	return o.bus.Last()
}

// Status returns the current sync status.
func (o *Orchestrator) Status() Status {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.status
}

// Dirty reports the persisted dirty flag.
func (o *Orchestrator) Dirty() bool {
	return o.store.Dirty()
}

// Snapshot returns the local tasks ordered by creation date.
func (o *Orchestrator) Snapshot(ctx context.Context) []task.Task {
	return o.store.LoadAll(ctx)
}

// View returns the display view of the local tasks.
func (o *Orchestrator) View(ctx context.Context, opts task.ViewOptions) task.View {
	return task.BuildView(o.store.LoadAll(ctx), opts)
}

// Create adds a new task locally and sends it to the backend.
func (o *Orchestrator) Create(ctx context.Context, text string, opts CreateOptions) (task.Task, error) {
	t := task.New(text, opts.Importance.OrDefault())
	t.Deadline = opts.Deadline
	t.Color = opts.Color

	if err := o.store.Upsert(ctx, t); err != nil {
		return task.Task{}, err
	}

	o.start(ctx, "create", t.ID, func(ctx context.Context) (opResult, error) {
		_, err := o.remote.CreateTask(ctx, t)
		return opResult{}, err
	})

	return t, nil
}

// Update replaces a task locally and on the backend. The modification date
// is set to now. An unknown ID is inserted locally and still sent as an
// update.
func (o *Orchestrator) Update(ctx context.Context, t task.Task) (task.Task, error) {
	t = t.Touch()
	if err := o.store.Upsert(ctx, t); err != nil {
		return task.Task{}, err
	}

	o.start(ctx, "update", t.ID, func(ctx context.Context) (opResult, error) {
		_, err := o.remote.UpdateTask(ctx, t.ID, t)
		return opResult{}, err
	})

	return t, nil
}

// Delete removes a task locally and on the backend. Deleting an unknown ID is
// a no-op and reports false.
func (o *Orchestrator) Delete(ctx context.Context, id string) bool {
	if _, err := o.store.Get(ctx, id); err != nil {
		return false
	}
	o.store.Remove(ctx, id)

	o.start(ctx, "delete", id, func(ctx context.Context) (opResult, error) {
		_, err := o.remote.DeleteTask(ctx, id)
		return opResult{}, err
	})

	return true
}

// Toggle flips the done flag of a task. An unknown ID is a no-op that makes
// no remote call.
func (o *Orchestrator) Toggle(ctx context.Context, id string) (task.Task, bool) {
	t, ok := o.store.ToggleDone(ctx, id)
	if !ok {
		return task.Task{}, false
	}

	o.start(ctx, "toggle", id, func(ctx context.Context) (opResult, error) {
		_, err := o.remote.UpdateTask(ctx, id, t)
		return opResult{}, err
	})

	return t, true
}

// Reload re-reads local storage and then fetches the server list, or pushes
// the local list when the dirty flag is set.
func (o *Orchestrator) Reload(ctx context.Context) {
	o.store.Reload(ctx)

	o.start(ctx, "reload", "", func(ctx context.Context) (opResult, error) {
		list, err := o.remote.FetchList(ctx)
		return opResult{replace: true, list: list}, err
	})
}

// Wait blocks until every dispatched remote call has finished and its result
// has been applied.
func (o *Orchestrator) Wait() {
	o.inflight.Wait()
}

// Close cancels in-flight remote calls, waits for them and stops the loop.
// Cancelled calls leave the dirty flag untouched.
func (o *Orchestrator) Close() {
	o.closeOnce.Do(func() {
		o.mu.Lock()
		o.closed = true
		o.mu.Unlock()

		o.cancel()
		o.inflight.Wait()
		close(o.quit)
		<-o.loopDone
	})
}

// start publishes the optimistic local state and dispatches the remote part
// of an operation. single is used only when the store is clean.
func (o *Orchestrator) start(callerCtx context.Context, op, taskID string, single func(ctx context.Context) (opResult, error)) {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		o.log.Warn().Str("op", op).Msg("orchestrator closed, remote call skipped")
		return
	}
	o.inflight.Add(1)
	o.mu.Unlock()

	prev := o.transition(callerCtx, Outcome{Kind: OutcomeStarted})
	reconcile := o.store.Dirty()

	opCtx, cancel := context.WithCancel(o.ctx)
	stop := context.AfterFunc(callerCtx, cancel)

	opCtx = logging.OpContext(opCtx, o.log, op, taskID)

	go func() {
		defer cancel()
		defer stop()

		var (
			res opResult
			err error
		)
		if reconcile {
			res.list, err = o.remote.ReplaceList(opCtx, o.store.LoadAll(opCtx))
		} else {
			res, err = single(opCtx)
		}

		res.op = op
		res.taskID = taskID
		res.prev = prev
		res.reconcile = reconcile
		res.err = err
		res.cancelled = err != nil && opCtx.Err() != nil

		o.results <- res
	}()
}

func (o *Orchestrator) loop() {
	defer close(o.loopDone)

	for {
		select {
		case res := <-o.results:
			o.apply(res)
			o.inflight.Done()
		case <-o.quit:
			return
		}
	}
}

// apply runs on the loop goroutine.
func (o *Orchestrator) apply(res opResult) {
	ctx := logging.OpContext(context.Background(), o.log, res.op, res.taskID)

	switch {
	case res.cancelled:
		o.log.Debug().Ctx(ctx).Err(res.err).Msg("remote call cancelled")
		o.transition(ctx, Outcome{Kind: OutcomeCancelled, Prev: res.prev})

	case res.err != nil:
		o.logFailure(ctx, res)
		o.store.SetDirty(true)
		o.transition(ctx, Outcome{Kind: OutcomeFailed, Dirty: true})

	case res.reconcile:
		o.store.ReplaceAll(ctx, res.list)
		o.store.SetDirty(false)
		o.log.Info().Ctx(ctx).Int("tasks", len(res.list)).Msg("reconciled local list with server")
		o.transition(ctx, Outcome{Kind: OutcomeSucceeded})

	case res.replace:
		o.store.ReplaceAll(ctx, res.list)
		o.transition(ctx, Outcome{Kind: OutcomeSucceeded, Dirty: o.store.Dirty()})

	default:
		o.transition(ctx, Outcome{Kind: OutcomeSucceeded, Dirty: o.store.Dirty()})
	}
}

func (o *Orchestrator) logFailure(ctx context.Context, res opResult) {
	mode := "single"
	if res.reconcile {
		mode = "reconcile"
	}
	if remote.IsStatus(res.err, http.StatusUnauthorized) {
		o.log.Error().Ctx(ctx).Err(res.err).Str("mode", mode).Msg("server rejected the auth token, check remote.token")
		return
	}
	o.log.Warn().Ctx(ctx).Err(res.err).Str("mode", mode).Msg("remote call failed, switching to dirty mode")
}

// transition applies o to the current status, publishes the fresh local
// snapshot and returns the status from before the change.
func (o *Orchestrator) transition(ctx context.Context, out Outcome) Status {
	o.pubMu.Lock()
	defer o.pubMu.Unlock()

	o.mu.Lock()
	prev := o.status
	o.status = Next(prev, out)
	cur := o.status
	o.mu.Unlock()

	if prev != cur {
		o.log.Debug().Ctx(ctx).Str("from", string(prev)).Str("to", string(cur)).Stringer("outcome", out.Kind).Msg("status changed")
	}

	o.bus.Publish(Event{
		Status: cur,
		Dirty:  o.store.Dirty(),
		Tasks:  o.store.LoadAll(ctx),
	})

	return prev
}

// WaitStatus waits for background work and returns the resulting status, or
// ctx's error if ctx ends first.
func (o *Orchestrator) WaitStatus(ctx context.Context) (Status, error) {
	done := make(chan struct{})
	go func() {
		o.Wait()
		close(done)
	}()

	select {
	case <-done:
		return o.Status(), nil
	case <-ctx.Done():
		return o.Status(), fmt.Errorf("wait for sync: %w", ctx.Err())
	}
}
