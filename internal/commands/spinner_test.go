package commands

import (
	"bytes"
	"context"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/colonyops/todosync/internal/core/config"
	"github.com/colonyops/todosync/internal/core/task"
	"github.com/colonyops/todosync/internal/printer"
	"github.com/colonyops/todosync/internal/syncer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpinnerModel(t *testing.T) {
	m := newSpinnerModel("syncing with server")
	assert.NotNil(t, m.Init())
	assert.Contains(t, m.View(), "syncing with server")

	updated, cmd := m.Update(syncDoneMsg{})
	assert.NotNil(t, cmd)
	assert.Empty(t, updated.View())
}

func TestSpinnerModel_ShowsLiveStatus(t *testing.T) {
	m := newSpinnerModel("syncing with server")
	assert.NotContains(t, m.View(), "tasks")

	updated, cmd := m.Update(syncEventMsg{
		Status: syncer.StatusSyncing,
		Tasks:  []task.Task{{ID: "a"}, {ID: "b"}},
	})
	assert.Nil(t, cmd)
	view := updated.View()
	assert.Contains(t, view, "syncing with server")
	assert.Contains(t, view, "syncing")
	assert.Contains(t, view, "(2 tasks)")

	updated, _ = updated.Update(syncEventMsg{Status: syncer.StatusDirty, Dirty: true, Tasks: []task.Task{{ID: "a"}}})
	view = updated.View()
	assert.Contains(t, view, "offline changes pending")
	assert.Contains(t, view, "(1 task)")
}

type recordingSender struct {
	mu   sync.Mutex
	msgs []tea.Msg
}

func (r *recordingSender) Send(msg tea.Msg) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
}

func (r *recordingSender) events() []syncer.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []syncer.Event
	for _, m := range r.msgs {
		if ev, ok := m.(syncEventMsg); ok {
			out = append(out, syncer.Event(ev))
		}
	}
	return out
}

func TestForwardEvents(t *testing.T) {
	srv := httptest.NewServer(newMemBackend())
	t.Cleanup(srv.Close)
	app := newTestApp(t, config.FormatJSON, srv.URL)
	ctx := context.Background()

	dst := &recordingSender{}
	stop := forwardEvents(app.Sync, dst)

	_, err := app.Sync.Create(ctx, "forwarded", syncer.CreateOptions{})
	require.NoError(t, err)
	_, err = app.Sync.WaitStatus(ctx)
	require.NoError(t, err)

	require.Eventually(t, func() bool { return len(dst.events()) == 2 }, time.Second, 5*time.Millisecond)
	stop()

	events := dst.events()
	assert.Equal(t, syncer.StatusSyncing, events[0].Status)
	assert.Equal(t, syncer.StatusSynced, events[1].Status)
	assert.Len(t, events[1].Tasks, 1)

	_, err = app.Sync.Create(ctx, "after stop", syncer.CreateOptions{})
	require.NoError(t, err)
	_, err = app.Sync.WaitStatus(ctx)
	require.NoError(t, err)
	assert.Len(t, dst.events(), 2, "nothing is forwarded after stop")
}

func TestAwaitSync_PrintsSummary(t *testing.T) {
	srv := httptest.NewServer(newMemBackend())
	t.Cleanup(srv.Close)
	app := newTestApp(t, config.FormatJSON, srv.URL)

	var buf bytes.Buffer
	ctx := printer.NewContext(context.Background(), printer.New(&buf))

	for _, text := range []string{"one", "two"} {
		_, err := app.Sync.Create(ctx, text, syncer.CreateOptions{})
		require.NoError(t, err)
	}

	status, err := awaitSync(ctx, app.Sync)
	require.NoError(t, err)
	assert.Equal(t, syncer.StatusSynced, status)
	assert.Contains(t, buf.String(), "synced")
	assert.Contains(t, buf.String(), "(2 tasks)")
}
