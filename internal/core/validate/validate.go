// Package validate provides shared validation functions for user input.
package validate

import (
	"fmt"
	"strings"
	"time"

	"github.com/colonyops/todosync/internal/core/task"
	"github.com/hay-kot/criterio"
)

// DeadlineLayout is the date format accepted for deadlines.
const DeadlineLayout = "2006-01-02"

// TaskText validates a task text is non-empty after trimming whitespace.
func TaskText(text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("text is required")
	}
	return nil
}

// Importance validates an importance label. Empty means normal.
func Importance(label string) error {
	if label == "" {
		return nil
	}
	if _, ok := task.ParseImportance(label); !ok {
		return fmt.Errorf("unknown importance %q (use low, normal or high)", label)
	}
	return nil
}

// Color validates an optional hex color.
func Color(color string) error {
	color = strings.TrimSpace(color)
	if color == "" {
		return nil
	}
	if !task.ValidColor(color) {
		return fmt.Errorf("color %q must look like #RRGGBB or #RRGGBBAA", color)
	}
	return nil
}

// CSVSafe rejects values the CSV store cannot hold. Rows are written
// without quoting, so a comma or line break would split the row.
func CSVSafe(value string) error {
	if strings.ContainsAny(value, ",\r\n") {
		return fmt.Errorf("cannot contain commas or line breaks when store.format is csv")
	}
	return nil
}

// Deadline validates an optional YYYY-MM-DD date.
func Deadline(date string) error {
	_, err := ParseDeadline(date)
	return err
}

// ParseDeadline parses an optional YYYY-MM-DD date as UTC midnight. An empty
// string yields nil.
func ParseDeadline(date string) (*time.Time, error) {
	date = strings.TrimSpace(date)
	if date == "" {
		return nil, nil
	}
	d, err := time.ParseInLocation(DeadlineLayout, date, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("deadline %q must be YYYY-MM-DD", date)
	}
	return &d, nil
}

// TaskInput validates all user-supplied task fields and reports every bad
// field at once.
func TaskInput(text, importance, deadline, color string) error {
	return criterio.ValidateStruct(
		criterio.Run("text", text, TaskText),
		criterio.Run("importance", importance, Importance),
		criterio.Run("deadline", deadline, Deadline),
		criterio.Run("color", color, Color),
	)
}
