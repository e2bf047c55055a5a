package revision

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTracker(t *testing.T) {
	var tr Tracker
	assert.Equal(t, int64(0), tr.Get())

	tr.Set(42)
	assert.Equal(t, int64(42), tr.Get())

	tr.Set(7)
	assert.Equal(t, int64(7), tr.Get(), "last write wins")
}

func TestTracker_ConcurrentSet(t *testing.T) {
	var tr Tracker
	var wg sync.WaitGroup

	for i := range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tr.Set(int64(i + 1))
			_ = tr.Get()
		}()
	}

	wg.Wait()
	got := tr.Get()
	assert.GreaterOrEqual(t, got, int64(1))
	assert.LessOrEqual(t, got, int64(100))
}
