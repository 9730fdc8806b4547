// Package remote implements the record store against the mailtriage HTTP API.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"mailtriage/internal/model"
	"mailtriage/internal/store"
)

// Client is a store.RecordStore backed by a remote server.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

var _ store.RecordStore = (*Client)(nil)

type Option func(*Client)

// WithHTTPClient replaces the default client, e.g. with an httptest server client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func New(baseURL, token string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) ListEmails(ctx context.Context) ([]model.Email, error) {
	var out []model.Email
	err := c.do(ctx, "list emails", http.MethodGet, "/api/emails", nil, &out)
	return out, err
}

func (c *Client) GetEmail(ctx context.Context, id string) (model.Email, error) {
	var out model.Email
	err := c.do(ctx, "get email", http.MethodGet, "/api/emails/"+url.PathEscape(id), nil, &out)
	return out, err
}

func (c *Client) MarkEmailRead(ctx context.Context, id string) error {
	return c.do(ctx, "mark email read", http.MethodPost, "/api/emails/"+url.PathEscape(id)+"/read", nil, nil)
}

func (c *Client) SummarizeEmail(ctx context.Context, id string) (model.EmailSummaryResult, error) {
	var out model.EmailSummaryResult
	err := c.do(ctx, "summarize email", http.MethodPost, "/api/emails/"+url.PathEscape(id)+"/summary", nil, &out)
	return out, err
}

func (c *Client) SearchEmails(ctx context.Context, query string) ([]model.Email, error) {
	var out []model.Email
	err := c.do(ctx, "search emails", http.MethodGet, "/api/emails?q="+url.QueryEscape(query), nil, &out)
	return out, err
}

func (c *Client) ListTasks(ctx context.Context) ([]model.Task, error) {
	var out []model.Task
	err := c.do(ctx, "list tasks", http.MethodGet, "/api/tasks", nil, &out)
	return out, err
}

func (c *Client) GetTask(ctx context.Context, id string) (model.Task, error) {
	var out model.Task
	err := c.do(ctx, "get task", http.MethodGet, "/api/tasks/"+url.PathEscape(id), nil, &out)
	return out, err
}

func (c *Client) ListTasksByEmail(ctx context.Context, emailID string) ([]model.Task, error) {
	var out []model.Task
	err := c.do(ctx, "list tasks by email", http.MethodGet, "/api/tasks?emailId="+url.QueryEscape(emailID), nil, &out)
	return out, err
}

func (c *Client) CreateTask(ctx context.Context, input model.TaskInput) (model.Task, error) {
	var out model.Task
	err := c.do(ctx, "create task", http.MethodPost, "/api/tasks", input, &out)
	return out, err
}

func (c *Client) UpdateTask(ctx context.Context, id string, patch model.TaskPatch) (model.Task, error) {
	var out model.Task
	err := c.do(ctx, "update task", http.MethodPatch, "/api/tasks/"+url.PathEscape(id), patch, &out)
	return out, err
}

func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, "delete task", http.MethodDelete, "/api/tasks/"+url.PathEscape(id), nil, nil)
}

func (c *Client) do(ctx context.Context, op, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return store.Invalid(op, "encode request: %v", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return store.Transport(op, fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return store.Transport(op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(op, resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return store.Transport(op, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// decodeError maps a non-2xx response to a classified store error. The kind
// field of the body wins over the status code.
func decodeError(op string, resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var eb errorBody
	_ = json.Unmarshal(raw, &eb)

	msg := eb.Error
	if msg == "" {
		msg = strings.TrimSpace(string(raw))
	}
	if msg == "" {
		msg = resp.Status
	}

	kind := store.KindTransport
	switch {
	case eb.Kind != "":
		kind = store.ParseKind(eb.Kind)
	case resp.StatusCode == http.StatusNotFound:
		kind = store.KindNotFound
	case resp.StatusCode == http.StatusBadRequest:
		kind = store.KindValidation
	}

	switch kind {
	case store.KindNotFound:
		return store.NotFound(op, "%s", msg)
	case store.KindValidation:
		return store.Invalid(op, "%s", msg)
	default:
		return store.Transport(op, fmt.Errorf("%s: %s", resp.Status, msg))
	}
}
