// Package api is the HTTP client for the remote task service. It speaks the
// service's JSON contract and maps HTTP failures onto typed errors; it holds
// no state of its own.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/atinyakov/GophTasks/internal/logger"
	"github.com/atinyakov/GophTasks/internal/models"
)

// RequestIDHeader carries a per-request id that the service echoes into its logs.
const RequestIDHeader = "X-Request-Id"

const (
	pathSignUp = "/auth/signup"
	pathSignIn = "/auth/signin"
	pathTasks  = "/tasks"

	maxErrorBody = 4 << 10
)

// Client calls the remote task service.
type Client struct {
	baseURL string
	http    *http.Client
	log     *zap.Logger
}

// New returns a Client for the service at baseURL. httpClient carries the
// transport policy (for task calls, the bearer-token authorizer).
func New(baseURL string, httpClient *http.Client, log *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		log:     logger.OrNop(log),
	}
}

// IsPublicPath reports whether path belongs to the unauthenticated sign-up
// and sign-in endpoints. The service may be mounted under a prefix.
func IsPublicPath(path string) bool {
	return strings.HasSuffix(path, pathSignUp) || strings.HasSuffix(path, pathSignIn)
}

// SignUp registers a new account.
func (c *Client) SignUp(ctx context.Context, cred models.Credentials) error {
	err := c.do(ctx, "sign up", http.MethodPost, pathSignUp, nil, cred, nil)
	if err == nil {
		return nil
	}
	kind := ErrAuthService
	if statusOf(err) == http.StatusConflict {
		kind = ErrUsernameTaken
	}
	return &AuthError{Op: "sign up", Kind: kind, Err: err}
}

// SignIn exchanges credentials for an access token.
func (c *Client) SignIn(ctx context.Context, cred models.Credentials) (string, error) {
	var resp models.AuthResponse
	err := c.do(ctx, "sign in", http.MethodPost, pathSignIn, nil, cred, &resp)
	if err != nil {
		kind := ErrAuthService
		if statusOf(err) == http.StatusUnauthorized {
			kind = ErrInvalidCredentials
		}
		return "", &AuthError{Op: "sign in", Kind: kind, Err: err}
	}
	if resp.AccessToken == "" {
		return "", &AuthError{Op: "sign in", Kind: ErrAuthService, Err: errors.New("empty access token")}
	}
	return resp.AccessToken, nil
}

// ListTasks fetches the caller's tasks, optionally constrained by filter.
func (c *Client) ListTasks(ctx context.Context, filter models.TaskFilter) ([]models.Task, error) {
	q := url.Values{}
	if filter.Status != "" {
		q.Set("status", string(filter.Status))
	}
	if filter.Search != "" {
		q.Set("search", filter.Search)
	}

	var tasks []models.Task
	if err := c.do(ctx, "list tasks", http.MethodGet, pathTasks, q, nil, &tasks); err != nil {
		return nil, mapTaskError(err)
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	return tasks, nil
}

// GetTask fetches a single task.
func (c *Client) GetTask(ctx context.Context, id int64) (models.Task, error) {
	var task models.Task
	if err := c.do(ctx, "get task", http.MethodGet, taskPath(id), nil, nil, &task); err != nil {
		return models.Task{}, mapTaskError(err)
	}
	return task, nil
}

// CreateTask creates a task; the service assigns its id and initial status.
func (c *Client) CreateTask(ctx context.Context, req models.CreateTaskRequest) (models.Task, error) {
	var task models.Task
	if err := c.do(ctx, "create task", http.MethodPost, pathTasks, nil, req, &task); err != nil {
		return models.Task{}, mapTaskError(err)
	}
	return task, nil
}

// UpdateTaskStatus moves a task to status.
func (c *Client) UpdateTaskStatus(ctx context.Context, id int64, status models.Status) (models.Task, error) {
	var task models.Task
	body := models.UpdateStatusRequest{Status: status}
	if err := c.do(ctx, "update task status", http.MethodPut, taskPath(id)+"/status", nil, body, &task); err != nil {
		return models.Task{}, mapTaskError(err)
	}
	return task, nil
}

// DeleteTask removes a task.
func (c *Client) DeleteTask(ctx context.Context, id int64) error {
	if err := c.do(ctx, "delete task", http.MethodDelete, taskPath(id), nil, nil, nil); err != nil {
		return mapTaskError(err)
	}
	return nil
}

func taskPath(id int64) string {
	return fmt.Sprintf("%s/%d", pathTasks, id)
}

func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		body = bytes.NewReader(b)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	reqID := uuid.NewString()
	req.Header.Set(RequestIDHeader, reqID)

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug("request failed",
			zap.String("op", op), zap.String("request_id", reqID), zap.Error(err))
		return &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	c.log.Debug("request done",
		zap.String("op", op),
		zap.String("request_id", reqID),
		zap.Int("status", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &NetworkError{Op: op, StatusCode: resp.StatusCode, Message: errorMessage(data)}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &NetworkError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("invalid response: %w", err)}
	}
	return nil
}

// errorMessage extracts a displayable message from an error body, which is
// either {"message": "..."} or plain text.
func errorMessage(data []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(data, &payload) == nil && payload.Message != "" {
		return payload.Message
	}
	return strings.TrimSpace(string(data))
}

func statusOf(err error) int {
	var ne *NetworkError
	if errors.As(err, &ne) {
		return ne.StatusCode
	}
	return 0
}

func mapTaskError(err error) error {
	var ne *NetworkError
	if !errors.As(err, &ne) {
		return err
	}
	switch ne.StatusCode {
	case http.StatusUnauthorized:
		ne.Err = ErrUnauthorized
		ne.Message = ""
	case http.StatusNotFound:
		ne.Err = ErrNotFound
		ne.Message = ""
	case http.StatusBadRequest:
		msg := ne.Message
		if msg == "" {
			msg = "invalid request"
		}
		return &ValidationError{Message: msg}
	}
	return ne
}
