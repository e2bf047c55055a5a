package commands

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/colonyops/todosync/internal/core/styles"
	"github.com/colonyops/todosync/internal/core/task"
	"github.com/colonyops/todosync/internal/core/validate"
	"github.com/colonyops/todosync/internal/syncer"
	"github.com/rs/zerolog/log"
)

const shortIDLen = 8

// taskInfo is the JSON line shape of `ls --json`.
type taskInfo struct {
	ID         string     `json:"id"`
	Text       string     `json:"text"`
	Importance string     `json:"importance"`
	Deadline   *time.Time `json:"deadline,omitempty"`
	Done       bool       `json:"done"`
	Color      *string    `json:"color,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	ChangedAt  *time.Time `json:"changed_at,omitempty"`
}

func newTaskInfo(t task.Task) taskInfo {
	return taskInfo{
		ID:         t.ID,
		Text:       t.Text,
		Importance: t.Importance.Short(),
		Deadline:   t.Deadline,
		Done:       t.IsDone,
		Color:      t.Color,
		CreatedAt:  t.CreationDate,
		ChangedAt:  t.ModificationDate,
	}
}

func shortID(id string) string {
	if len(id) <= shortIDLen {
		return id
	}
	return id[:shortIDLen]
}

// renderTable writes the task table and the done counter.
func renderTable(w io.Writer, view task.View, now time.Time) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\t \tIMPORTANCE\tDEADLINE\tTEXT")

	for _, t := range view.Tasks {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			styles.IDStyle.Render(shortID(t.ID)),
			doneMark(t),
			importanceLabel(t.Importance),
			deadlineLabel(t, now),
			taskText(t),
		)
	}
	_ = tw.Flush()

	_, _ = fmt.Fprintln(w, styles.MutedStyle.Render(fmt.Sprintf("done %d of %d", view.DoneCount, view.Total)))
}

func doneMark(t task.Task) string {
	if t.IsDone {
		return styles.SuccessStyle.Render(styles.IconDone)
	}
	return styles.MutedStyle.Render(styles.IconOpen)
}

func importanceLabel(imp task.Importance) string {
	switch imp.OrDefault() {
	case task.ImportanceHigh:
		return styles.ImportanceHighStyle.Render(imp.Short())
	case task.ImportanceLow:
		return styles.ImportanceLowStyle.Render(imp.Short())
	default:
		return imp.Short()
	}
}

func deadlineLabel(t task.Task, now time.Time) string {
	if t.Deadline == nil {
		return "-"
	}
	s := t.Deadline.Format(validate.DeadlineLayout)
	if !t.IsDone && t.Deadline.Before(now) {
		return styles.DeadlineOverdueStyle.Render(s)
	}
	return styles.DeadlineStyle.Render(s)
}

func taskText(t task.Task) string {
	text := t.Text
	if t.IsDone {
		text = styles.TaskDoneStyle.Render(text)
	} else {
		text = styles.TaskTextStyle.Render(text)
	}
	if t.Color != nil {
		if swatch := styles.Swatch(*t.Color); swatch != "" {
			text = swatch + " " + text
		}
	}
	return text
}

// statusLabel renders a sync status for humans.
func statusLabel(s syncer.Status) string {
	switch s {
	case syncer.StatusSynced:
		return styles.StatusSyncedStyle.Render(styles.IconSynced + " synced")
	case syncer.StatusDirty:
		return styles.StatusDirtyStyle.Render(styles.IconDirty + " offline changes pending")
	default:
		return styles.StatusSyncingStyle.Render(styles.IconSyncing + " syncing")
	}
}

// syncSummary renders the status of ev followed by the local task count.
func syncSummary(ev syncer.Event) string {
	noun := "tasks"
	if len(ev.Tasks) == 1 {
		noun = "task"
	}
	return statusLabel(ev.Status) + " " + styles.MutedStyle.Render(fmt.Sprintf("(%d %s)", len(ev.Tasks), noun))
}

// taskMarkdown describes a task as a markdown document.
func taskMarkdown(t task.Task) string {
	var b strings.Builder

	title := strings.TrimSpace(t.Text)
	if title == "" {
		title = "(no text)"
	}
	fmt.Fprintf(&b, "# %s\n\n", title)

	done := "no"
	if t.IsDone {
		done = "yes"
	}

	fmt.Fprintf(&b, "| field | value |\n|---|---|\n")
	fmt.Fprintf(&b, "| id | `%s` |\n", t.ID)
	fmt.Fprintf(&b, "| importance | %s |\n", t.Importance.Short())
	fmt.Fprintf(&b, "| done | %s |\n", done)
	if t.Deadline != nil {
		fmt.Fprintf(&b, "| deadline | %s |\n", t.Deadline.Format(validate.DeadlineLayout))
	}
	if t.Color != nil {
		fmt.Fprintf(&b, "| color | `%s` |\n", *t.Color)
	}
	fmt.Fprintf(&b, "| created | %s |\n", t.CreationDate.Format(time.RFC3339))
	if t.ModificationDate != nil {
		fmt.Fprintf(&b, "| modified | %s |\n", t.ModificationDate.Format(time.RFC3339))
	}

	return b.String()
}

// renderMarkdown renders md for the terminal, falling back to the raw text.
func renderMarkdown(md string, width int) string {
	style := styles.GlamourStyle()
	noMargin := uint(0)
	style.Document.Margin = &noMargin

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStyles(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		log.Debug().Err(err).Msg("failed to create markdown renderer, showing raw content")
		return md
	}

	rendered, err := renderer.Render(md)
	if err != nil {
		log.Debug().Err(err).Msg("failed to render markdown, showing raw content")
		return md
	}
	return rendered
}
