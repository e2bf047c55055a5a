// Package remote is the HTTP client for the todo backend's /list API.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/colonyops/todosync/internal/core/backoff"
	"github.com/colonyops/todosync/internal/core/logging"
	"github.com/colonyops/todosync/internal/core/revision"
	"github.com/colonyops/todosync/internal/core/task"
	"github.com/rs/zerolog"
)

const (
	revisionHeader = "X-Last-Known-Revision"
	maxErrorBody   = 512
)

// Options configures a Client.
type Options struct {
	BaseURL  string
	Token    string
	DeviceID string
	Timeout  time.Duration
	Policy   backoff.Policy

	// HTTPClient overrides the default client. Timeout is ignored when set.
	HTTPClient *http.Client
}

// Client talks to the backend. Every call is retried according to the
// configured policy and records the revision of every successful response.
type Client struct {
	baseURL   string
	token     string
	deviceID  string
	http      *http.Client
	policy    backoff.Policy
	revisions *revision.Tracker
	log       zerolog.Logger
}

// New creates a client. revisions is shared with the rest of the process.
func New(opts Options, revisions *revision.Tracker, logger zerolog.Logger) *Client {
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}

	return &Client{
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		token:     opts.Token,
		deviceID:  opts.DeviceID,
		http:      hc,
		policy:    opts.Policy,
		revisions: revisions,
		log:       logger,
	}
}

// FetchList returns the server's full list. It is the only call sent without
// the revision header.
func (c *Client) FetchList(ctx context.Context) ([]task.Task, error) {
	res, err := c.do(ctx, http.MethodGet, "/list", false, nil, true)
	if err != nil {
		return nil, err
	}
	return res.list, nil
}

// FetchTask asks the server for its copy of the task with id.
func (c *Client) FetchTask(ctx context.Context, id string, t task.Task) (task.Task, error) {
	res, err := c.do(ctx, http.MethodPost, "/list/"+url.PathEscape(id), true, elementRequest{Element: toWire(t, c.deviceID)}, false)
	if err != nil {
		return task.Task{}, err
	}
	return res.element, nil
}

// CreateTask adds t on the server.
func (c *Client) CreateTask(ctx context.Context, t task.Task) (task.Task, error) {
	res, err := c.do(ctx, http.MethodPost, "/list", true, elementRequest{Element: toWire(t, c.deviceID)}, false)
	if err != nil {
		return task.Task{}, err
	}
	return res.element, nil
}

// UpdateTask replaces the server's copy of the task with id.
func (c *Client) UpdateTask(ctx context.Context, id string, t task.Task) (task.Task, error) {
	res, err := c.do(ctx, http.MethodPut, "/list/"+url.PathEscape(id), true, elementRequest{Element: toWire(t, c.deviceID)}, false)
	if err != nil {
		return task.Task{}, err
	}
	return res.element, nil
}

// DeleteTask removes the task with id and returns the deleted element.
func (c *Client) DeleteTask(ctx context.Context, id string) (task.Task, error) {
	res, err := c.do(ctx, http.MethodDelete, "/list/"+url.PathEscape(id), true, nil, false)
	if err != nil {
		return task.Task{}, err
	}
	return res.element, nil
}

// ReplaceList overwrites the server list with tasks and returns the merged
// result.
func (c *Client) ReplaceList(ctx context.Context, tasks []task.Task) ([]task.Task, error) {
	res, err := c.do(ctx, http.MethodPatch, "/list", true, listRequest{List: toWireList(tasks, c.deviceID)}, true)
	if err != nil {
		return nil, err
	}
	return res.list, nil
}

// result is a validated response.
type result struct {
	revision int64
	list     []task.Task
	element  task.Task
}

// do sends the request with retries and returns the decoded envelope. The
// revision header is read from the tracker on every attempt.
func (c *Client) do(ctx context.Context, method, path string, withRevision bool, body any, wantList bool) (result, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return result{}, fmt.Errorf("encode request: %w", err)
		}
	}

	ctx = logging.OpContext(ctx, c.log, method+" "+path, logging.GetTaskID(ctx))

	res, err := backoff.Retry(ctx, c.policy, func(ctx context.Context) (result, error) {
		return c.attempt(ctx, method, path, withRevision, payload, wantList)
	})
	if err != nil {
		if errors.Is(err, ErrDecode) {
			c.log.Error().Ctx(ctx).Err(err).Bool("decode", true).Msg("unreadable response")
		}
		return result{}, err
	}

	c.revisions.Set(res.revision)
	return res, nil
}

func (c *Client) attempt(ctx context.Context, method, path string, withRevision bool, payload []byte, wantList bool) (result, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return result{}, backoff.Permanent(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if withRevision {
		req.Header.Set(revisionHeader, strconv.FormatInt(c.revisions.Get(), 10))
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return result{}, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.log.Debug().Err(err).Msg("close response body")
		}
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return result{}, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		se := &StatusError{StatusCode: resp.StatusCode, Body: truncate(strings.TrimSpace(string(data)), maxErrorBody)}
		if se.Retryable() {
			return result{}, se
		}
		return result{}, backoff.Permanent(se)
	}

	res, err := parseResponse(data, wantList)
	if err != nil {
		return result{}, backoff.Permanent(err)
	}

	return res, nil
}

// parseResponse validates the envelope and converts its payload. Any
// failure is wrapped in ErrDecode.
func parseResponse(data []byte, wantList bool) (result, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return result{}, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	if env.Revision == nil {
		return result{}, fmt.Errorf("%w: missing revision", ErrDecode)
	}

	res := result{revision: *env.Revision}

	if wantList {
		if env.List == nil {
			return result{}, fmt.Errorf("%w: missing list", ErrDecode)
		}
		list, err := fromWireList(env.List)
		if err != nil {
			return result{}, fmt.Errorf("%w: %w", ErrDecode, err)
		}
		res.list = list
		return res, nil
	}

	if env.Element == nil {
		return result{}, fmt.Errorf("%w: missing element", ErrDecode)
	}
	t, err := fromWire(*env.Element)
	if err != nil {
		return result{}, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	res.element = t
	return res, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
