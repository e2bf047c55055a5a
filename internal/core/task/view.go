package task

import (
	"slices"
	"strings"
)

// ViewOptions controls how a snapshot is turned into a display list.
type ViewOptions struct {
	HideDone bool
}

// View is the derived, display-ordered form of a snapshot.
type View struct {
	Tasks     []Task
	DoneCount int
	Total     int
}

// Sort orders tasks by creation date, oldest first, using the ID as a
// tiebreaker so the order is stable across reloads.
func Sort(tasks []Task) {
	slices.SortStableFunc(tasks, func(a, b Task) int {
		if c := a.CreationDate.Compare(b.CreationDate); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}

// BuildView sorts a copy of tasks and applies opts. DoneCount is always
// computed over the full list.
func BuildView(tasks []Task, opts ViewOptions) View {
	sorted := slices.Clone(tasks)
	Sort(sorted)

	v := View{Total: len(sorted)}
	visible := make([]Task, 0, len(sorted))
	for _, t := range sorted {
		if t.IsDone {
			v.DoneCount++
			if opts.HideDone {
				continue
			}
		}
		visible = append(visible, t)
	}
	v.Tasks = visible

	return v
}
