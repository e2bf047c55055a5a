package commands

import (
	"bytes"
	"testing"
	"time"

	"github.com/colonyops/todosync/internal/core/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTasks() []task.Task {
	base := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)
	deadline := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	return []task.Task{
		{
			ID:           "aaaa1111-0000-0000-0000-000000000000",
			Text:         "Buy milk",
			Importance:   task.ImportanceHigh,
			Deadline:     &deadline,
			CreationDate: base,
		},
		{
			ID:           "aaaa2222-0000-0000-0000-000000000000",
			Text:         "Call mom",
			Importance:   task.ImportanceLow,
			IsDone:       true,
			CreationDate: base.Add(time.Hour),
		},
		{
			ID:           "bbbb3333-0000-0000-0000-000000000000",
			Text:         "Water plants",
			Color:        task.Ptr("#00FF00"),
			CreationDate: base.Add(2 * time.Hour),
		},
	}
}

func TestFindTask(t *testing.T) {
	tasks := sampleTasks()

	tests := []struct {
		name    string
		id      string
		want    string
		wantErr string
	}{
		{name: "exact", id: tasks[1].ID, want: tasks[1].ID},
		{name: "unique prefix", id: "bbbb33", want: tasks[2].ID},
		{name: "ambiguous prefix", id: "aaaa", wantErr: "ambiguous"},
		{name: "prefix too short", id: "bbb", wantErr: "not found"},
		{name: "unknown", id: "cccc", wantErr: "not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := findTask(tasks, tt.id)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.ID)
		})
	}
}

func TestFindTask_NotFoundWrapsSentinel(t *testing.T) {
	_, err := findTask(nil, "missing")
	assert.ErrorIs(t, err, task.ErrNotFound)
}

func TestRenderTable(t *testing.T) {
	now := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)

	t.Run("all tasks", func(t *testing.T) {
		var buf bytes.Buffer
		renderTable(&buf, task.BuildView(sampleTasks(), task.ViewOptions{}), now)

		out := buf.String()
		assert.Contains(t, out, "aaaa1111")
		assert.NotContains(t, out, "aaaa1111-0000")
		assert.Contains(t, out, "Buy milk")
		assert.Contains(t, out, "Call mom")
		assert.Contains(t, out, "2025-03-01")
		assert.Contains(t, out, "high")
		assert.Contains(t, out, "done 1 of 3")
	})

	t.Run("hide done keeps the counter", func(t *testing.T) {
		var buf bytes.Buffer
		renderTable(&buf, task.BuildView(sampleTasks(), task.ViewOptions{HideDone: true}), now)

		out := buf.String()
		assert.NotContains(t, out, "Call mom")
		assert.Contains(t, out, "Water plants")
		assert.Contains(t, out, "done 1 of 3")
	})
}

func TestDeadlineLabel(t *testing.T) {
	now := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	tasks := sampleTasks()

	assert.Contains(t, deadlineLabel(tasks[0], now), "2025-03-01")
	assert.Equal(t, "-", deadlineLabel(tasks[1], now))
}

func TestTaskMarkdown(t *testing.T) {
	md := taskMarkdown(sampleTasks()[0])

	assert.Contains(t, md, "# Buy milk")
	assert.Contains(t, md, "| importance | high |")
	assert.Contains(t, md, "| done | no |")
	assert.Contains(t, md, "| deadline | 2025-03-01 |")
	assert.NotContains(t, md, "| color |")
	assert.NotContains(t, md, "| modified |")
}

func TestTaskMarkdown_EmptyText(t *testing.T) {
	md := taskMarkdown(task.Task{ID: "x", Color: task.Ptr("#FF0000")})

	assert.Contains(t, md, "# (no text)")
	assert.Contains(t, md, "| color | `#FF0000` |")
}

func TestRenderMarkdown(t *testing.T) {
	out := renderMarkdown(taskMarkdown(sampleTasks()[0]), 80)
	assert.Contains(t, out, "Buy milk")
}

func TestNewTaskInfo(t *testing.T) {
	info := newTaskInfo(sampleTasks()[1])

	assert.Equal(t, "Call mom", info.Text)
	assert.Equal(t, "low", info.Importance)
	assert.True(t, info.Done)
	assert.Nil(t, info.Deadline)
}
