package commands

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/colonyops/todosync/internal/core/config"
	"github.com/colonyops/todosync/internal/core/styles"
	"github.com/colonyops/todosync/internal/core/task"
	"github.com/colonyops/todosync/internal/core/validate"
	"github.com/hay-kot/criterio"
)

// taskFields holds the user-editable fields of a task as entered.
type taskFields struct {
	Text       string
	Importance string
	Deadline   string
	Color      string
}

func fieldsFromTask(t task.Task) taskFields {
	f := taskFields{
		Text:       t.Text,
		Importance: t.Importance.Short(),
	}
	if t.Deadline != nil {
		f.Deadline = t.Deadline.Format(validate.DeadlineLayout)
	}
	if t.Color != nil {
		f.Color = *t.Color
	}
	return f
}

func (f taskFields) validate(storeFormat string) error {
	if err := validate.TaskInput(f.Text, f.Importance, f.Deadline, f.Color); err != nil {
		return err
	}
	if storeFormat == config.FormatCSV {
		return criterio.ValidateStruct(criterio.Run("text", f.Text, validate.CSVSafe))
	}
	return nil
}

// parsed converts the fields. Call validate first.
func (f taskFields) parsed() (text string, imp task.Importance, deadline *time.Time, color *string) {
	text = strings.TrimSpace(f.Text)
	imp, _ = task.ParseImportance(f.Importance)
	deadline, _ = validate.ParseDeadline(f.Deadline)
	if c := strings.TrimSpace(f.Color); c != "" {
		color = &c
	}
	return text, imp, deadline, color
}

// runTaskForm lets the user fill in f interactively.
func runTaskForm(ctx context.Context, title string, f *taskFields) error {
	if f.Importance == "" {
		f.Importance = task.ImportanceNormal.Short()
	}

	options := make([]huh.Option[string], 0, len(task.Importances))
	for _, imp := range task.Importances {
		options = append(options, huh.NewOption(imp.Short(), imp.Short()))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title(title),
			huh.NewText().
				Title("Text").
				Validate(validate.TaskText).
				Value(&f.Text),
			huh.NewSelect[string]().
				Title("Importance").
				Options(options...).
				Value(&f.Importance),
			huh.NewInput().
				Title("Deadline").
				Description("YYYY-MM-DD, empty for none").
				Validate(validate.Deadline).
				Value(&f.Deadline),
			huh.NewInput().
				Title("Color").
				Description("#RRGGBB or #RRGGBBAA, empty for none").
				Validate(validate.Color).
				Value(&f.Color),
		),
	).WithTheme(styles.FormTheme()).RunWithContext(ctx)
}
