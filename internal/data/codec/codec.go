// Package codec converts task collections to and from their on-disk byte
// representations.
package codec

import (
	"errors"
	"fmt"
	"time"

	"github.com/colonyops/todosync/internal/core/task"
)

// ErrMalformed is returned when a whole document cannot be decoded. Individual
// malformed records are skipped instead.
var ErrMalformed = errors.New("malformed document")

// Codec encodes and decodes a full task collection.
type Codec interface {
	// Name is the format name used in configuration ("json", "csv").
	Name() string
	Encode(tasks []task.Task) ([]byte, error)
	Decode(data []byte) ([]task.Task, error)
}

// ForFormat returns the byte codec registered for a format name.
func ForFormat(format string) (Codec, error) {
	switch format {
	case "json":
		return JSON{}, nil
	case "csv":
		return CSV{}, nil
	default:
		return nil, fmt.Errorf("no byte codec for format %q", format)
	}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}
