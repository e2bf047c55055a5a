package db

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

// Queries runs the TodoItems statements against a DBTX.
type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// WithTx returns a copy of q bound to tx.
func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

// TodoItem is one row of the TodoItems table. Times are epoch seconds.
type TodoItem struct {
	ID            string
	Text          string
	Done          int64
	CreatedAt     int64
	LastUpdatedBy string
	Importance    string
	Deadline      sql.NullInt64
	ChangedAt     sql.NullInt64
	Color         sql.NullString
}

const listTodoItems = `
SELECT id, text, done, created_at, last_updated_by, importance, deadline, changed_at, color
FROM TodoItems
ORDER BY created_at ASC, id ASC
`

func (q *Queries) ListTodoItems(ctx context.Context) ([]TodoItem, error) {
	rows, err := q.db.QueryContext(ctx, listTodoItems)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []TodoItem
	for rows.Next() {
		var i TodoItem
		if err := rows.Scan(
			&i.ID,
			&i.Text,
			&i.Done,
			&i.CreatedAt,
			&i.LastUpdatedBy,
			&i.Importance,
			&i.Deadline,
			&i.ChangedAt,
			&i.Color,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const deleteAllTodoItems = `DELETE FROM TodoItems`

func (q *Queries) DeleteAllTodoItems(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteAllTodoItems)
	return err
}

const insertTodoItem = `
INSERT INTO TodoItems (id, text, done, created_at, last_updated_by, importance, deadline, changed_at, color)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
`

func (q *Queries) InsertTodoItem(ctx context.Context, arg TodoItem) error {
	_, err := q.db.ExecContext(ctx, insertTodoItem,
		arg.ID,
		arg.Text,
		arg.Done,
		arg.CreatedAt,
		arg.LastUpdatedBy,
		arg.Importance,
		arg.Deadline,
		arg.ChangedAt,
		arg.Color,
	)
	return err
}
