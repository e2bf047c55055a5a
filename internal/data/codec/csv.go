package codec

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/colonyops/todosync/internal/core/task"
	"github.com/rs/zerolog/log"
)

// csvColumns is the number of columns every row must carry. An optional
// eighth column holds the color.
const csvColumns = 7

// CSV stores one task per line with the columns
//
//	id,text,importance,deadline,isDone,creationDate,modificationDate[,color]
//
// There is no header and no quoting: a comma or newline inside the text
// corrupts the row it belongs to.
type CSV struct{}

var _ Codec = CSV{}

func (CSV) Name() string { return "csv" }

func (CSV) Encode(tasks []task.Task) ([]byte, error) {
	var buf bytes.Buffer
	for _, t := range tasks {
		buf.WriteString(encodeRow(t))
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

// Decode parses rows, skipping any with too few columns, an unparsable done
// flag or an unparsable creation date.
func (CSV) Decode(data []byte) ([]task.Task, error) {
	tasks := []task.Task{}
	for i, row := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(row) == "" {
			continue
		}
		t, ok := decodeRow(row)
		if !ok {
			log.Debug().Int("row", i).Msg("skipping csv row")
			continue
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

func encodeRow(t task.Task) string {
	cols := []string{
		t.ID,
		t.Text,
		string(t.Importance.OrDefault()),
		"",
		strconv.FormatBool(t.IsDone),
		formatTime(t.CreationDate),
		"",
	}
	if t.Deadline != nil {
		cols[3] = formatTime(*t.Deadline)
	}
	if t.ModificationDate != nil {
		cols[6] = formatTime(*t.ModificationDate)
	}
	if t.Color != nil {
		cols = append(cols, *t.Color)
	}
	return strings.Join(cols, ",")
}

func decodeRow(row string) (task.Task, bool) {
	cols := strings.Split(row, ",")
	if len(cols) < csvColumns {
		return task.Task{}, false
	}
	for i := range cols {
		cols[i] = strings.TrimSpace(cols[i])
	}

	var done bool
	switch cols[4] {
	case "true":
		done = true
	case "false":
	default:
		return task.Task{}, false
	}
	created, err := parseTime(cols[5])
	if err != nil {
		return task.Task{}, false
	}

	imp, _ := task.ParseImportance(cols[2])
	t := task.Task{
		ID:               cols[0],
		Text:             cols[1],
		Importance:       imp,
		Deadline:         optionalTime(&cols[3]),
		IsDone:           done,
		CreationDate:     created,
		ModificationDate: optionalTime(&cols[6]),
	}
	if len(cols) > csvColumns && cols[csvColumns] != "" {
		t.Color = task.Ptr(cols[csvColumns])
	}

	return t, true
}
