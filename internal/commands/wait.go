package commands

import (
	"context"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/colonyops/todosync/internal/printer"
	"github.com/colonyops/todosync/internal/syncer"
	"github.com/rs/zerolog/log"
	"golang.org/x/term"
)

// awaitSync blocks until the orchestrator has applied every pending remote
// call, showing a spinner on interactive terminals, and prints the outcome.
func awaitSync(ctx context.Context, orch *syncer.Orchestrator) (syncer.Status, error) {
	status, err := waitWithSpinner(ctx, orch, os.Stderr)
	if err != nil {
		return status, err
	}

	p := printer.Ctx(ctx)
	if status == syncer.StatusDirty {
		p.Warnf("could not reach the server; changes are saved locally and will be pushed on the next sync")
		return status, nil
	}
	if ev, ok := orch.LastEvent(); ok && ev.Status == status {
		p.Printf("%s", syncSummary(ev))
	} else {
		p.Printf("%s", statusLabel(status))
	}
	return status, nil
}

func waitWithSpinner(ctx context.Context, orch *syncer.Orchestrator, out io.Writer) (syncer.Status, error) {
	f, ok := out.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return orch.WaitStatus(ctx)
	}

	type result struct {
		status syncer.Status
		err    error
	}

	model := newSpinnerModel("syncing with server")
	if ev, ok := orch.LastEvent(); ok {
		model.event = &ev
	}

	prog := tea.NewProgram(model,
		tea.WithOutput(out),
		tea.WithInput(nil),
		tea.WithContext(ctx),
	)

	stop := forwardEvents(orch, prog)
	defer stop()

	done := make(chan result, 1)
	go func() {
		status, err := orch.WaitStatus(ctx)
		done <- result{status, err}
		prog.Send(syncDoneMsg{})
	}()

	if _, err := prog.Run(); err != nil {
		log.Debug().Err(err).Msg("spinner stopped")
	}

	res := <-done
	return res.status, res.err
}

// eventSender is the part of *tea.Program used by forwardEvents.
type eventSender interface {
	Send(msg tea.Msg)
}

// forwardEvents relays orchestrator events to dst until the returned stop
// function is called. Subscribers run under the orchestrator's publish lock,
// so events are queued without blocking and dropped when the queue is full.
func forwardEvents(orch *syncer.Orchestrator, dst eventSender) (stop func()) {
	events := make(chan syncer.Event, 16)
	quit := make(chan struct{})
	finished := make(chan struct{})

	unsubscribe := orch.Subscribe(func(ev syncer.Event) {
		select {
		case events <- ev:
		default:
		}
	})

	go func() {
		defer close(finished)
		for {
			select {
			case ev := <-events:
				dst.Send(syncEventMsg(ev))
			case <-quit:
				return
			}
		}
	}()

	return func() {
		unsubscribe()
		close(quit)
		<-finished
	}
}
