package stores

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/colonyops/todosync/internal/core/task"
	"github.com/colonyops/todosync/internal/data/db"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecoverFromCorruption_Success(t *testing.T) {
	tempDir := t.TempDir()
	dbPath := filepath.Join(tempDir, "todos.db")

	require.NoError(t, os.WriteFile(dbPath, []byte("corrupted data"), 0o644))
	require.NoError(t, os.WriteFile(dbPath+"-wal", []byte("wal data"), 0o644))
	require.NoError(t, os.WriteFile(dbPath+"-shm", []byte("shm data"), 0o644))

	require.NoError(t, RecoverFromCorruption(dbPath))

	backups, err := filepath.Glob(filepath.Join(tempDir, "todos.db.corrupt.*"))
	require.NoError(t, err)

	var main, wal, shm int
	for _, f := range backups {
		switch {
		case strings.HasSuffix(f, "-wal"):
			wal++
		case strings.HasSuffix(f, "-shm"):
			shm++
		default:
			main++
		}
	}
	assert.Equal(t, 1, main)
	assert.Equal(t, 1, wal)
	assert.Equal(t, 1, shm)

	for _, p := range []string{dbPath, dbPath + "-wal", dbPath + "-shm"} {
		_, err := os.Stat(p)
		assert.True(t, os.IsNotExist(err), "%s should be moved", p)
	}
}

func TestRecoverFromCorruption_MissingFile(t *testing.T) {
	tempDir := t.TempDir()

	assert.NoError(t, RecoverFromCorruption(filepath.Join(tempDir, "todos.db")))

	files, _ := filepath.Glob(filepath.Join(tempDir, "*.corrupt.*"))
	assert.Empty(t, files)
}

func TestRecoverFromCorruption_WALWithoutDatabase(t *testing.T) {
	tempDir := t.TempDir()
	dbPath := filepath.Join(tempDir, "todos.db")
	require.NoError(t, os.WriteFile(dbPath+"-wal", []byte("wal data"), 0o644))

	require.NoError(t, RecoverFromCorruption(dbPath))

	walBackups, _ := filepath.Glob(filepath.Join(tempDir, "*.corrupt.*-wal"))
	assert.Len(t, walBackups, 1)
	_, err := os.Stat(dbPath + "-wal")
	assert.Error(t, err)
}

func TestIsCorruptionError_Message(t *testing.T) {
	assert.True(t, IsCorruptionError(errors.New("ping: file is not a database (26)")))
	assert.False(t, IsCorruptionError(errors.New("connection refused")))
	assert.False(t, IsBusyError(errors.New("database is locked")))
}

func TestOpenDatabase_RecoversFromCorruption(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "todos.db")
	garbage := []byte(strings.Repeat("this is not a sqlite file ", 200))
	require.NoError(t, os.WriteFile(dbPath, garbage, 0o644))

	database, err := OpenDatabase(context.Background(), dbPath, db.DefaultOpenOptions(), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	storage := NewTableStorage(database, "test")
	tasks, err := storage.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, tasks)

	require.NoError(t, storage.Save(context.Background(), []task.Task{task.New("after recovery", task.ImportanceNormal)}))

	backups, _ := filepath.Glob(dbPath + ".corrupt.*")
	assert.NotEmpty(t, backups)
}
