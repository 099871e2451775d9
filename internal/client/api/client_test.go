package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atinyakov/GophTasks/internal/models"
)

// roundTripperFunc lets a test stand in for the remote service.
type roundTripperFunc func(req *http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func newTestClient(fn roundTripperFunc) *Client {
	return New("http://example.com/", &http.Client{Transport: fn, Timeout: time.Second}, nil)
}

func respond(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestSignIn_Success(t *testing.T) {
	c := newTestClient(func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, http.MethodPost, req.Method)
		assert.Equal(t, "http://example.com/auth/signin", req.URL.String())
		assert.NotEmpty(t, req.Header.Get(RequestIDHeader))
		assert.Equal(t, "application/json", req.Header.Get("Content-Type"))

		var cred models.Credentials
		require.NoError(t, json.NewDecoder(req.Body).Decode(&cred))
		assert.Equal(t, models.Credentials{Username: "alice", Password: "Secret123"}, cred)
		return respond(http.StatusOK, `{"accessToken":"tok"}`), nil
	})

	token, err := c.SignIn(context.Background(), models.Credentials{Username: "alice", Password: "Secret123"})
	require.NoError(t, err)
	assert.Equal(t, "tok", token)
}

func TestSignIn_Failures(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		rtErr    error
		wantKind error
		wantMsg  string
	}{
		{"unauthorized", http.StatusUnauthorized, `{"message":"bad"}`, nil, ErrInvalidCredentials, "Invalid credentials"},
		{"server error", http.StatusInternalServerError, "boom", nil, ErrAuthService, "An error occurred during sign in"},
		{"network down", 0, "", errors.New("dial tcp: refused"), ErrAuthService, "An error occurred during sign in"},
		{"empty token", http.StatusOK, `{"accessToken":""}`, nil, ErrAuthService, "An error occurred during sign in"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(func(*http.Request) (*http.Response, error) {
				if tt.rtErr != nil {
					return nil, tt.rtErr
				}
				return respond(tt.status, tt.body), nil
			})
			_, err := c.SignIn(context.Background(), models.Credentials{Username: "a", Password: "b"})
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantKind)
			assert.Equal(t, tt.wantMsg, err.Error())

			var ae *AuthError
			require.ErrorAs(t, err, &ae)
		})
	}
}

func TestSignUp(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		wantKind error
	}{
		{"created", http.StatusCreated, nil},
		{"conflict", http.StatusConflict, ErrUsernameTaken},
		{"bad request", http.StatusBadRequest, ErrAuthService},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(func(req *http.Request) (*http.Response, error) {
				assert.Equal(t, "/auth/signup", req.URL.Path)
				return respond(tt.status, ""), nil
			})
			err := c.SignUp(context.Background(), models.Credentials{Username: "bob", Password: "pw"})
			if tt.wantKind == nil {
				require.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantKind)
		})
	}
}

func TestListTasks_Query(t *testing.T) {
	c := newTestClient(func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, http.MethodGet, req.Method)
		assert.Equal(t, "/tasks", req.URL.Path)
		assert.Equal(t, "DONE", req.URL.Query().Get("status"))
		assert.Equal(t, "milk", req.URL.Query().Get("search"))
		return respond(http.StatusOK, `[{"id":1,"title":"Buy milk","description":"2l","status":"DONE"}]`), nil
	})

	got, err := c.ListTasks(context.Background(), models.TaskFilter{Status: models.StatusDone, Search: "milk"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, models.Task{ID: 1, Title: "Buy milk", Description: "2l", Status: models.StatusDone}, got[0])
}

func TestListTasks_NoFilterAndNullBody(t *testing.T) {
	c := newTestClient(func(req *http.Request) (*http.Response, error) {
		assert.Empty(t, req.URL.RawQuery)
		return respond(http.StatusOK, `null`), nil
	})
	got, err := c.ListTasks(context.Background(), models.TaskFilter{})
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestTaskCalls_ErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		check   func(t *testing.T, err error)
		wantMsg string
	}{
		{
			name:   "unauthorized",
			status: http.StatusUnauthorized,
			check: func(t *testing.T, err error) {
				assert.True(t, IsUnauthorized(err))
			},
		},
		{
			name:   "not found",
			status: http.StatusNotFound,
			check: func(t *testing.T, err error) {
				assert.True(t, IsNotFound(err))
			},
		},
		{
			name:   "bad request",
			status: http.StatusBadRequest,
			body:   `{"message":"title is required"}`,
			check: func(t *testing.T, err error) {
				var ve *ValidationError
				require.ErrorAs(t, err, &ve)
				assert.Equal(t, "title is required", ve.Message)
			},
		},
		{
			name:   "server error",
			status: http.StatusInternalServerError,
			body:   "internal error\n",
			check: func(t *testing.T, err error) {
				var ne *NetworkError
				require.ErrorAs(t, err, &ne)
				assert.Equal(t, http.StatusInternalServerError, ne.StatusCode)
				assert.Equal(t, "get task failed: internal error", err.Error())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(func(*http.Request) (*http.Response, error) {
				return respond(tt.status, tt.body), nil
			})
			_, err := c.GetTask(context.Background(), 3)
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestCreateUpdateDelete_Requests(t *testing.T) {
	var seen []string
	c := newTestClient(func(req *http.Request) (*http.Response, error) {
		seen = append(seen, req.Method+" "+req.URL.Path)
		switch req.Method {
		case http.MethodPost:
			var body models.CreateTaskRequest
			require.NoError(t, json.NewDecoder(req.Body).Decode(&body))
			assert.Equal(t, "t", body.Title)
			return respond(http.StatusCreated, `{"id":9,"title":"t","description":"d","status":"OPEN"}`), nil
		case http.MethodPut:
			var body models.UpdateStatusRequest
			require.NoError(t, json.NewDecoder(req.Body).Decode(&body))
			assert.Equal(t, models.StatusDone, body.Status)
			return respond(http.StatusOK, `{"id":9,"title":"t","description":"d","status":"DONE"}`), nil
		default:
			return respond(http.StatusNoContent, ""), nil
		}
	})

	ctx := context.Background()
	created, err := c.CreateTask(ctx, models.CreateTaskRequest{Title: "t", Description: "d"})
	require.NoError(t, err)
	assert.Equal(t, int64(9), created.ID)

	updated, err := c.UpdateTaskStatus(ctx, 9, models.StatusDone)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDone, updated.Status)

	require.NoError(t, c.DeleteTask(ctx, 9))
	assert.Equal(t, []string{"POST /tasks", "PUT /tasks/9/status", "DELETE /tasks/9"}, seen)
}

func TestDo_InvalidJSON(t *testing.T) {
	c := newTestClient(func(*http.Request) (*http.Response, error) {
		return respond(http.StatusOK, "not-json"), nil
	})
	_, err := c.GetTask(context.Background(), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid response")
}

func TestDo_NetworkError(t *testing.T) {
	c := newTestClient(func(*http.Request) (*http.Response, error) {
		return nil, errors.New("network down")
	})
	err := c.DeleteTask(context.Background(), 1)
	var ne *NetworkError
	require.ErrorAs(t, err, &ne)
	assert.Zero(t, ne.StatusCode)
	assert.Contains(t, err.Error(), "delete task failed")
}

func TestIsPublicPath(t *testing.T) {
	assert.True(t, IsPublicPath("/auth/signin"))
	assert.True(t, IsPublicPath("/auth/signup"))
	assert.False(t, IsPublicPath("/tasks"))
}
