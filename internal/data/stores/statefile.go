package stores

import (
	"encoding/json"
	"fmt"
	"os"
)

// syncState is the sidecar document persisted next to the task file.
type syncState struct {
	Dirty bool `json:"dirty"`
}

// StatePath returns the sidecar path for a storage file.
func StatePath(storePath string) string {
	return storePath + ".state.json"
}

func loadState(path string) (syncState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return syncState{}, nil
		}
		return syncState{}, err
	}

	if len(data) == 0 {
		return syncState{}, nil
	}

	var st syncState
	if err := json.Unmarshal(data, &st); err != nil {
		return syncState{}, fmt.Errorf("decode %s: %w", path, err)
	}

	return st, nil
}

func saveState(path string, st syncState) error {
	data, err := json.Marshal(st)
	if err != nil {
		return err
	}
	return writeFileAtomic(path, data)
}
