package remote

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/colonyops/todosync/internal/core/backoff"
	"github.com/colonyops/todosync/internal/core/revision"
	"github.com/colonyops/todosync/internal/core/task"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	Method   string
	Path     string
	Auth     string
	Revision string
	HasRev   bool
	Body     []byte
}

type fakeBackend struct {
	mu       sync.Mutex
	requests []recordedRequest
	handler  func(w http.ResponseWriter, r *http.Request, body []byte)
}

func (f *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	rev, hasRev := r.Header[revisionHeader]

	f.mu.Lock()
	rr := recordedRequest{
		Method: r.Method,
		Path:   r.URL.Path,
		Auth:   r.Header.Get("Authorization"),
		HasRev: hasRev,
		Body:   body,
	}
	if hasRev {
		rr.Revision = rev[0]
	}
	f.requests = append(f.requests, rr)
	handler := f.handler
	f.mu.Unlock()

	handler(w, r, body)
}

func (f *fakeBackend) recorded() []recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recordedRequest(nil), f.requests...)
}

func newTestClient(t *testing.T, handler func(w http.ResponseWriter, r *http.Request, body []byte)) (*Client, *fakeBackend, *revision.Tracker) {
	t.Helper()

	backend := &fakeBackend{handler: handler}
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	revs := &revision.Tracker{}
	c := New(Options{
		BaseURL:  srv.URL + "/",
		Token:    "secret",
		DeviceID: "test-device",
		Timeout:  5 * time.Second,
		Policy:   backoff.DefaultPolicy().NoDelay(),
	}, revs, zerolog.Nop())

	return c, backend, revs
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func sampleWire() map[string]any {
	return map[string]any{
		"id":              "t1",
		"text":            "Buy milk",
		"importance":      "important",
		"deadline":        1700003600,
		"done":            false,
		"color":           "#FF0000",
		"created_at":      1700000000,
		"changed_at":      1700000100,
		"last_updated_by": "other-device",
	}
}

func TestClient_FetchList(t *testing.T) {
	c, backend, revs := newTestClient(t, func(w http.ResponseWriter, r *http.Request, _ []byte) {
		writeJSON(w, map[string]any{"status": "ok", "revision": 12, "list": []any{sampleWire()}})
	})
	revs.Set(5)

	tasks, err := c.FetchList(context.Background())
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	got := tasks[0]
	assert.Equal(t, "t1", got.ID)
	assert.Equal(t, "Buy milk", got.Text)
	assert.Equal(t, task.ImportanceHigh, got.Importance)
	require.NotNil(t, got.Deadline)
	assert.Equal(t, int64(1700003600), got.Deadline.Unix())
	require.NotNil(t, got.Color)
	assert.Equal(t, "#FF0000", *got.Color)
	assert.Equal(t, int64(1700000000), got.CreationDate.Unix())
	require.NotNil(t, got.ModificationDate)
	assert.Equal(t, int64(1700000100), got.ModificationDate.Unix())

	assert.Equal(t, int64(12), revs.Get())

	reqs := backend.recorded()
	require.Len(t, reqs, 1)
	assert.Equal(t, http.MethodGet, reqs[0].Method)
	assert.Equal(t, "/list", reqs[0].Path)
	assert.Equal(t, "Bearer secret", reqs[0].Auth)
	assert.False(t, reqs[0].HasRev, "GET /list carries no revision header")
}

func TestClient_Endpoints(t *testing.T) {
	created := time.Unix(1700000000, 0).UTC()
	tk := task.Task{ID: "t1", Text: "Buy milk", Importance: task.ImportanceNormal, CreationDate: created}

	tests := []struct {
		name       string
		call       func(c *Client) error
		wantMethod string
		wantPath   string
		wantKey    string
	}{
		{
			name: "create",
			call: func(c *Client) error {
				_, err := c.CreateTask(context.Background(), tk)
				return err
			},
			wantMethod: http.MethodPost,
			wantPath:   "/list",
			wantKey:    "element",
		},
		{
			name: "fetch one",
			call: func(c *Client) error {
				_, err := c.FetchTask(context.Background(), "t1", tk)
				return err
			},
			wantMethod: http.MethodPost,
			wantPath:   "/list/t1",
			wantKey:    "element",
		},
		{
			name: "update",
			call: func(c *Client) error {
				_, err := c.UpdateTask(context.Background(), "t1", tk)
				return err
			},
			wantMethod: http.MethodPut,
			wantPath:   "/list/t1",
			wantKey:    "element",
		},
		{
			name: "delete",
			call: func(c *Client) error {
				_, err := c.DeleteTask(context.Background(), "t1")
				return err
			},
			wantMethod: http.MethodDelete,
			wantPath:   "/list/t1",
		},
		{
			name: "replace list",
			call: func(c *Client) error {
				_, err := c.ReplaceList(context.Background(), []task.Task{tk})
				return err
			},
			wantMethod: http.MethodPatch,
			wantPath:   "/list",
			wantKey:    "list",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, backend, revs := newTestClient(t, func(w http.ResponseWriter, r *http.Request, _ []byte) {
				if r.Method == http.MethodPatch {
					writeJSON(w, map[string]any{"revision": 8, "list": []any{sampleWire()}})
					return
				}
				writeJSON(w, map[string]any{"revision": 8, "element": sampleWire()})
			})
			revs.Set(7)

			require.NoError(t, tt.call(c))
			assert.Equal(t, int64(8), revs.Get())

			reqs := backend.recorded()
			require.Len(t, reqs, 1)
			assert.Equal(t, tt.wantMethod, reqs[0].Method)
			assert.Equal(t, tt.wantPath, reqs[0].Path)
			assert.Equal(t, "Bearer secret", reqs[0].Auth)
			assert.True(t, reqs[0].HasRev)
			assert.Equal(t, "7", reqs[0].Revision)

			if tt.wantKey == "" {
				assert.Empty(t, reqs[0].Body)
				return
			}
			var body map[string]json.RawMessage
			require.NoError(t, json.Unmarshal(reqs[0].Body, &body))
			assert.Contains(t, body, tt.wantKey)
		})
	}
}

func TestClient_ElementEncoding(t *testing.T) {
	c, backend, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request, _ []byte) {
		writeJSON(w, map[string]any{"revision": 1, "element": sampleWire()})
	})

	created := time.Unix(1700000000, 0).UTC()
	_, err := c.CreateTask(context.Background(), task.Task{
		ID:           "t9",
		Text:         "Walk",
		Importance:   task.ImportanceLow,
		CreationDate: created,
	})
	require.NoError(t, err)

	var body struct {
		Element map[string]any `json:"element"`
	}
	require.NoError(t, json.Unmarshal(backend.recorded()[0].Body, &body))

	el := body.Element
	assert.Equal(t, "t9", el["id"])
	assert.Equal(t, "low", el["importance"])
	assert.Equal(t, false, el["done"])
	assert.Equal(t, float64(1700000000), el["created_at"])
	assert.Equal(t, float64(1700000000), el["changed_at"], "changed_at falls back to created_at")
	assert.Equal(t, "test-device", el["last_updated_by"])
	assert.NotContains(t, el, "deadline")
	assert.NotContains(t, el, "color")
}

func TestClient_Retries(t *testing.T) {
	t.Run("5xx retried then success", func(t *testing.T) {
		var calls atomic.Int32
		c, backend, revs := newTestClient(t, func(w http.ResponseWriter, r *http.Request, _ []byte) {
			if calls.Add(1) < 3 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			writeJSON(w, map[string]any{"revision": 3, "list": []any{}})
		})

		tasks, err := c.FetchList(context.Background())
		require.NoError(t, err)
		assert.Empty(t, tasks)
		assert.Equal(t, int64(3), revs.Get())
		assert.Len(t, backend.recorded(), 3)
	})

	t.Run("exhausted returns status error", func(t *testing.T) {
		c, backend, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request, _ []byte) {
			w.WriteHeader(http.StatusInternalServerError)
		})

		_, err := c.FetchList(context.Background())
		require.Error(t, err)

		var se *StatusError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, http.StatusInternalServerError, se.StatusCode)
		assert.Len(t, backend.recorded(), 4)
	})

	t.Run("429 is retried", func(t *testing.T) {
		var calls atomic.Int32
		c, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request, _ []byte) {
			if calls.Add(1) == 1 {
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			writeJSON(w, map[string]any{"revision": 1, "list": []any{}})
		})

		_, err := c.FetchList(context.Background())
		require.NoError(t, err)
		assert.Equal(t, int32(2), calls.Load())
	})

	t.Run("4xx is permanent", func(t *testing.T) {
		c, backend, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request, _ []byte) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte("unsynchronized data"))
		})

		_, err := c.UpdateTask(context.Background(), "t1", task.Task{ID: "t1", CreationDate: time.Now()})
		require.Error(t, err)
		assert.True(t, IsStatus(err, http.StatusBadRequest))
		assert.Contains(t, err.Error(), "unsynchronized data")
		assert.Len(t, backend.recorded(), 1)
	})

	t.Run("revision header re-read on every attempt", func(t *testing.T) {
		var revs *revision.Tracker
		var calls atomic.Int32
		c, backend, tr := newTestClient(t, func(w http.ResponseWriter, r *http.Request, _ []byte) {
			if calls.Add(1) == 1 {
				revs.Set(99)
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			writeJSON(w, map[string]any{"revision": 100, "element": sampleWire()})
		})
		revs = tr
		tr.Set(1)

		_, err := c.DeleteTask(context.Background(), "t1")
		require.NoError(t, err)

		reqs := backend.recorded()
		require.Len(t, reqs, 2)
		assert.Equal(t, "1", reqs[0].Revision)
		assert.Equal(t, "99", reqs[1].Revision)
	})
}

func TestClient_DecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "not json", body: "<html>oops</html>"},
		{name: "missing revision", body: `{"list": []}`},
		{name: "missing list", body: `{"revision": 1}`},
		{name: "element without id", body: `{"revision": 1, "list": [{"text": "x", "created_at": 1}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, backend, revs := newTestClient(t, func(w http.ResponseWriter, r *http.Request, _ []byte) {
				_, _ = w.Write([]byte(tt.body))
			})
			revs.Set(4)

			_, err := c.FetchList(context.Background())
			require.ErrorIs(t, err, ErrDecode)
			assert.Len(t, backend.recorded(), 1, "decode errors are not retried")
			assert.Equal(t, int64(4), revs.Get(), "revision untouched")
		})
	}
}

func TestClient_Cancellation(t *testing.T) {
	release := make(chan struct{})
	c, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request, _ []byte) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	t.Cleanup(func() { close(release) })

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() {
		_, err := c.FetchList(ctx)
		errc <- err
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-errc:
		require.Error(t, err)
		assert.True(t, errors.Is(err, context.Canceled))
	case <-time.After(5 * time.Second):
		t.Fatal("request was not interrupted")
	}
}

func TestStatusError(t *testing.T) {
	assert.True(t, (&StatusError{StatusCode: 500}).Retryable())
	assert.True(t, (&StatusError{StatusCode: 503}).Retryable())
	assert.True(t, (&StatusError{StatusCode: 429}).Retryable())
	assert.False(t, (&StatusError{StatusCode: 400}).Retryable())
	assert.False(t, (&StatusError{StatusCode: 404}).Retryable())
	assert.Equal(t, "unexpected status 404 Not Found", (&StatusError{StatusCode: 404}).Error())
}
