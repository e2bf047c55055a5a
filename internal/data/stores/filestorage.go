package stores

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/colonyops/todosync/internal/core/task"
	"github.com/colonyops/todosync/internal/data/codec"
)

// FileStorage implements task.Storage on a single file encoded with a byte
// codec. Every Save rewrites the whole file.
type FileStorage struct {
	path  string
	codec codec.Codec
}

var _ task.Storage = (*FileStorage)(nil)

// NewFileStorage creates a file-backed storage. The file is not touched
// until the first Load or Save.
func NewFileStorage(path string, c codec.Codec) *FileStorage {
	return &FileStorage{path: path, codec: c}
}

// Path returns the backing file path.
func (s *FileStorage) Path() string {
	return s.path
}

// Load reads and decodes the file. A missing file is reported as an error
// wrapping os.ErrNotExist.
func (s *FileStorage) Load(_ context.Context) ([]task.Task, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}

	tasks, err := s.codec.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.path, err)
	}

	return tasks, nil
}

// Save encodes tasks and writes them to disk atomically.
func (s *FileStorage) Save(_ context.Context, tasks []task.Task) error {
	data, err := s.codec.Encode(tasks)
	if err != nil {
		return err
	}

	return writeFileAtomic(s.path, data)
}

func (s *FileStorage) Close() error { return nil }

func writeFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}

	return os.Rename(tmp, path)
}
