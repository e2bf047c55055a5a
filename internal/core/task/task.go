// Package task defines the todo task domain model shared by the store,
// the codecs and the remote client.
package task

import (
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a task does not exist.
var ErrNotFound = errors.New("task not found")

var colorPattern = regexp.MustCompile(`^#([0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)

// Task is a single todo-list entry. Tasks are values: a change is made by
// building a new Task with the same ID and replacing the old one.
type Task struct {
	ID               string
	Text             string
	Importance       Importance
	Deadline         *time.Time
	IsDone           bool
	Color            *string
	CreationDate     time.Time
	ModificationDate *time.Time
}

// New creates a task with a generated ID and the creation date set to now.
func New(text string, importance Importance) Task {
	return Task{
		ID:           NewID(),
		Text:         text,
		Importance:   importance,
		CreationDate: time.Now().UTC().Truncate(time.Second),
	}
}

// NewID returns a fresh task identifier.
func NewID() string {
	return uuid.NewString()
}

// ChangedAt returns the modification date, falling back to the creation date
// when the task was never modified.
func (t Task) ChangedAt() time.Time {
	if t.ModificationDate != nil {
		return *t.ModificationDate
	}
	return t.CreationDate
}

// Touch returns a copy of t with the modification date set to now.
func (t Task) Touch() Task {
	now := time.Now().UTC().Truncate(time.Second)
	t.ModificationDate = &now
	return t
}

// WithDone returns a copy of t with IsDone set. The modification date is left
// untouched.
func (t Task) WithDone(done bool) Task {
	t.IsDone = done
	return t
}

// Validate checks the fields that persistence depends on. Empty text is a
// valid draft and is not rejected here.
func (t Task) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("id is required")
	}
	if !t.Importance.Valid() {
		return fmt.Errorf("unknown importance %q", string(t.Importance))
	}
	if t.CreationDate.IsZero() {
		return fmt.Errorf("creation date is required")
	}
	if t.Color != nil && !ValidColor(*t.Color) {
		return fmt.Errorf("color %q is not a hex color", *t.Color)
	}
	return nil
}

// ValidColor reports whether s is a #RRGGBB or #RRGGBBAA hex color.
func ValidColor(s string) bool {
	return colorPattern.MatchString(s)
}

// Equal reports whether two tasks carry the same values. Times are compared
// with time.Time.Equal so location differences do not matter.
func (t Task) Equal(o Task) bool {
	return t.ID == o.ID &&
		t.Text == o.Text &&
		t.Importance.OrDefault() == o.Importance.OrDefault() &&
		t.IsDone == o.IsDone &&
		t.CreationDate.Equal(o.CreationDate) &&
		equalTime(t.Deadline, o.Deadline) &&
		equalTime(t.ModificationDate, o.ModificationDate) &&
		equalString(t.Color, o.Color)
}

func equalTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

func equalString(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// Ptr returns a pointer to v. Handy for optional fields.
func Ptr[T any](v T) *T {
	return &v
}
