package stores

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/colonyops/todosync/internal/core/task"
	"github.com/colonyops/todosync/internal/data/db"
)

// TableStorage implements task.Storage on the TodoItems SQLite table.
type TableStorage struct {
	db       *db.DB
	deviceID string
}

var _ task.Storage = (*TableStorage)(nil)

// NewTableStorage creates a table-backed storage. deviceID is written to the
// last_updated_by column of every row.
func NewTableStorage(database *db.DB, deviceID string) *TableStorage {
	return &TableStorage{db: database, deviceID: deviceID}
}

// Load returns every row ordered by creation date. Unknown importance labels
// decode to normal.
func (s *TableStorage) Load(ctx context.Context) ([]task.Task, error) {
	rows, err := s.db.Queries().ListTodoItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("list todo items: %w", err)
	}

	tasks := make([]task.Task, 0, len(rows))
	for _, row := range rows {
		tasks = append(tasks, rowToTask(row))
	}

	return tasks, nil
}

// Save replaces the table contents in a single transaction.
func (s *TableStorage) Save(ctx context.Context, tasks []task.Task) error {
	return s.db.WithTx(ctx, func(q *db.Queries) error {
		if err := q.DeleteAllTodoItems(ctx); err != nil {
			return fmt.Errorf("clear todo items: %w", err)
		}

		for _, t := range tasks {
			if err := q.InsertTodoItem(ctx, taskToRow(t, s.deviceID)); err != nil {
				return fmt.Errorf("insert todo item %s: %w", t.ID, err)
			}
		}

		return nil
	})
}

// Close closes the underlying database.
func (s *TableStorage) Close() error {
	return s.db.Close()
}

func rowToTask(row db.TodoItem) task.Task {
	imp, _ := task.ParseImportance(row.Importance)
	t := task.Task{
		ID:           row.ID,
		Text:         row.Text,
		Importance:   imp,
		IsDone:       row.Done != 0,
		CreationDate: time.Unix(row.CreatedAt, 0).UTC(),
	}
	if row.Deadline.Valid {
		t.Deadline = task.Ptr(time.Unix(row.Deadline.Int64, 0).UTC())
	}
	if row.ChangedAt.Valid {
		t.ModificationDate = task.Ptr(time.Unix(row.ChangedAt.Int64, 0).UTC())
	}
	if row.Color.Valid {
		t.Color = task.Ptr(row.Color.String)
	}
	return t
}

func taskToRow(t task.Task, deviceID string) db.TodoItem {
	row := db.TodoItem{
		ID:            t.ID,
		Text:          t.Text,
		CreatedAt:     t.CreationDate.Unix(),
		LastUpdatedBy: deviceID,
		Importance:    string(t.Importance.OrDefault()),
		Deadline:      toNullUnix(t.Deadline),
		ChangedAt:     toNullUnix(t.ModificationDate),
	}
	if t.IsDone {
		row.Done = 1
	}
	if t.Color != nil {
		row.Color = sql.NullString{String: *t.Color, Valid: true}
	}
	return row
}

func toNullUnix(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.Unix(), Valid: true}
}
