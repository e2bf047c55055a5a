package remote

import (
	"fmt"
	"time"

	"github.com/colonyops/todosync/internal/core/task"
)

// Backend importance values.
const (
	wireLow       = "low"
	wireBasic     = "basic"
	wireImportant = "important"
)

type wireTask struct {
	ID            string  `json:"id"`
	Text          string  `json:"text"`
	Importance    string  `json:"importance"`
	Deadline      *int64  `json:"deadline,omitempty"`
	Done          bool    `json:"done"`
	Color         *string `json:"color,omitempty"`
	CreatedAt     int64   `json:"created_at"`
	ChangedAt     int64   `json:"changed_at"`
	LastUpdatedBy string  `json:"last_updated_by"`
}

type elementRequest struct {
	Element wireTask `json:"element"`
}

type listRequest struct {
	List []wireTask `json:"list"`
}

// envelope is the response shape shared by every endpoint. Exactly one of
// List or Element is expected depending on the endpoint.
type envelope struct {
	Revision *int64     `json:"revision"`
	List     []wireTask `json:"list"`
	Element  *wireTask  `json:"element"`
}

func toWire(t task.Task, deviceID string) wireTask {
	w := wireTask{
		ID:            t.ID,
		Text:          t.Text,
		Importance:    importanceToWire(t.Importance),
		Done:          t.IsDone,
		Color:         t.Color,
		CreatedAt:     t.CreationDate.Unix(),
		ChangedAt:     t.ChangedAt().Unix(),
		LastUpdatedBy: deviceID,
	}
	if t.Deadline != nil {
		w.Deadline = task.Ptr(t.Deadline.Unix())
	}
	return w
}

func toWireList(tasks []task.Task, deviceID string) []wireTask {
	out := make([]wireTask, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, toWire(t, deviceID))
	}
	return out
}

// fromWire converts a backend element. A changed_at equal to created_at is
// read as "never modified".
func fromWire(w wireTask) (task.Task, error) {
	if w.ID == "" {
		return task.Task{}, fmt.Errorf("element without id")
	}
	if w.CreatedAt == 0 {
		return task.Task{}, fmt.Errorf("element %s without created_at", w.ID)
	}

	imp, _ := task.ParseImportance(w.Importance)
	t := task.Task{
		ID:           w.ID,
		Text:         w.Text,
		Importance:   imp,
		IsDone:       w.Done,
		Color:        w.Color,
		CreationDate: time.Unix(w.CreatedAt, 0).UTC(),
	}
	if w.Deadline != nil {
		t.Deadline = task.Ptr(time.Unix(*w.Deadline, 0).UTC())
	}
	if w.ChangedAt != 0 && w.ChangedAt != w.CreatedAt {
		t.ModificationDate = task.Ptr(time.Unix(w.ChangedAt, 0).UTC())
	}
	return t, nil
}

func fromWireList(ws []wireTask) ([]task.Task, error) {
	out := make([]task.Task, 0, len(ws))
	for _, w := range ws {
		t, err := fromWire(w)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func importanceToWire(imp task.Importance) string {
	switch imp.OrDefault() {
	case task.ImportanceLow:
		return wireLow
	case task.ImportanceHigh:
		return wireImportant
	default:
		return wireBasic
	}
}
