package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/colonyops/todosync/internal/core/task"
	"github.com/rs/zerolog/log"
)

// JSON stores tasks as a JSON array of objects. Normal importance and absent
// optional fields are omitted.
type JSON struct{}

var _ Codec = JSON{}

type jsonTask struct {
	ID               *string `json:"id"`
	Text             *string `json:"text"`
	Importance       *string `json:"importance,omitempty"`
	Deadline         *string `json:"deadline,omitempty"`
	IsDone           *bool   `json:"isDone"`
	Color            *string `json:"color,omitempty"`
	CreationDate     *string `json:"creationDate"`
	ModificationDate *string `json:"modificationDate,omitempty"`
}

func (JSON) Name() string { return "json" }

func (JSON) Encode(tasks []task.Task) ([]byte, error) {
	out := make([]jsonTask, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, toJSONTask(t))
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode json: %w", err)
	}
	return append(data, '\n'), nil
}

// Decode parses a JSON array. Elements missing a required key or holding a
// value of the wrong type are skipped.
func (JSON) Decode(data []byte) ([]task.Task, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return []task.Task{}, nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	tasks := make([]task.Task, 0, len(raw))
	for i, elem := range raw {
		t, err := fromJSONElement(elem)
		if err != nil {
			log.Debug().Err(err).Int("index", i).Msg("skipping json task")
			continue
		}
		tasks = append(tasks, t)
	}

	return tasks, nil
}

func toJSONTask(t task.Task) jsonTask {
	jt := jsonTask{
		ID:           &t.ID,
		Text:         &t.Text,
		IsDone:       &t.IsDone,
		Color:        t.Color,
		CreationDate: task.Ptr(formatTime(t.CreationDate)),
	}
	if !t.Importance.IsNormal() {
		jt.Importance = task.Ptr(string(t.Importance))
	}
	if t.Deadline != nil {
		jt.Deadline = task.Ptr(formatTime(*t.Deadline))
	}
	if t.ModificationDate != nil {
		jt.ModificationDate = task.Ptr(formatTime(*t.ModificationDate))
	}
	return jt
}

func fromJSONElement(elem json.RawMessage) (task.Task, error) {
	var jt jsonTask
	if err := json.Unmarshal(elem, &jt); err != nil {
		return task.Task{}, err
	}

	if jt.ID == nil || jt.Text == nil || jt.IsDone == nil || jt.CreationDate == nil {
		return task.Task{}, fmt.Errorf("missing required key")
	}

	created, err := parseTime(*jt.CreationDate)
	if err != nil {
		return task.Task{}, fmt.Errorf("creationDate: %w", err)
	}

	t := task.Task{
		ID:           *jt.ID,
		Text:         *jt.Text,
		Importance:   task.ImportanceNormal,
		IsDone:       *jt.IsDone,
		Color:        jt.Color,
		CreationDate: created,
	}
	if jt.Importance != nil {
		t.Importance, _ = task.ParseImportance(*jt.Importance)
	}
	t.Deadline = optionalTime(jt.Deadline)
	t.ModificationDate = optionalTime(jt.ModificationDate)

	return t, nil
}

// optionalTime treats an unparsable optional date as absent.
func optionalTime(s *string) *time.Time {
	if s == nil || *s == "" {
		return nil
	}
	v, err := parseTime(*s)
	if err != nil {
		return nil
	}
	return &v
}
