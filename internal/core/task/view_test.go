package task

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildView(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tasks := []Task{
		{ID: "c", CreationDate: t0.Add(2 * time.Hour), IsDone: true},
		{ID: "b", CreationDate: t0},
		{ID: "a", CreationDate: t0},
		{ID: "d", CreationDate: t0.Add(time.Hour)},
	}

	t.Run("sorted by creation date then id", func(t *testing.T) {
		v := BuildView(tasks, ViewOptions{})
		require.Len(t, v.Tasks, 4)
		assert.Equal(t, []string{"a", "b", "d", "c"}, ids(v.Tasks))
		assert.Equal(t, 1, v.DoneCount)
		assert.Equal(t, 4, v.Total)
	})

	t.Run("hide done keeps done count", func(t *testing.T) {
		v := BuildView(tasks, ViewOptions{HideDone: true})
		assert.Equal(t, []string{"a", "b", "d"}, ids(v.Tasks))
		assert.Equal(t, 1, v.DoneCount)
		assert.Equal(t, 4, v.Total)
	})

	t.Run("input is not reordered", func(t *testing.T) {
		_ = BuildView(tasks, ViewOptions{})
		assert.Equal(t, "c", tasks[0].ID)
	})
}

func ids(tasks []Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	return out
}
