// Package client is a typed HTTP client for the tasker API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/phrazzld/tasker/internal/domain"
)

// DefaultBaseURL is where the server listens by default.
const DefaultBaseURL = "http://localhost:4000"

// maxErrorBody bounds how much of an error response is read.
const maxErrorBody = 64 << 10

// Client calls the /tasks endpoints. It does not retry; each method makes
// exactly one request bounded only by ctx.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger sets the logger used for request failures.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a client for the API at baseURL. An empty baseURL means
// DefaultBaseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid API base URL %q", baseURL)
	}

	c := &Client{
		baseURL:    strings.TrimRight(u.String(), "/"),
		httpClient: &http.Client{},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "task_client")
	return c, nil
}

// BaseURL returns the normalized API base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

type createTaskRequest struct {
	Title string `json:"title"`
}

type deleteTaskResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
}

// List fetches every task, newest first.
func (c *Client) List(ctx context.Context) ([]domain.Task, error) {
	var tasks []domain.Task
	if err := c.do(ctx, http.MethodGet, "/tasks", nil, http.StatusOK, &tasks); err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}
	return tasks, nil
}

// Create adds a task and returns it as stored by the server.
func (c *Client) Create(ctx context.Context, title string) (domain.Task, error) {
	var task domain.Task
	err := c.do(ctx, http.MethodPost, "/tasks", createTaskRequest{Title: title}, http.StatusCreated, &task)
	return task, err
}

// Delete removes the task with the given id. A missing task yields an
// *APIError for which IsNotFound reports true.
func (c *Client) Delete(ctx context.Context, id string) error {
	var resp deleteTaskResponse
	return c.do(ctx, http.MethodDelete, "/tasks/"+url.PathEscape(id), nil, http.StatusOK, &resp)
}

func (c *Client) do(ctx context.Context, method, path string, in interface{}, wantStatus int, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return &NetworkError{Op: method + " " + path, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("request failed", "method", method, "path", path, "error", err)
		return &NetworkError{Op: method + " " + path, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != wantStatus {
		return newAPIError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &NetworkError{Op: method + " " + path, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return nil
}

func newAPIError(resp *http.Response) *APIError {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	var payload struct {
		Error   string `json:"error"`
		TraceID string `json:"trace_id"`
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err := json.Unmarshal(data, &payload); err == nil {
		apiErr.Message = payload.Error
		apiErr.TraceID = payload.TraceID
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}
