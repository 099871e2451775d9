// Package models defines the core data structures shared by the task client
// and the reference task service.
package models

import "strings"

// Status is the lifecycle state of a task.
type Status string

const (
	// StatusOpen marks a task that has not been started.
	StatusOpen Status = "OPEN"
	// StatusInProgress marks a task that is being worked on.
	StatusInProgress Status = "IN_PROGRESS"
	// StatusDone marks a finished task.
	StatusDone Status = "DONE"
)

// Statuses lists every valid status in display order.
var Statuses = []Status{StatusOpen, StatusInProgress, StatusDone}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// ParseStatus converts user input such as "done" or "in-progress" into a Status.
// The empty string parses to the empty Status, meaning "any status".
func ParseStatus(raw string) (Status, bool) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, " ", "_")
	if s == "" {
		return "", true
	}
	st := Status(s)
	return st, st.Valid()
}

// Task is a single user task.
type Task struct {
	// ID is assigned by the service on creation.
	ID int64 `json:"id"`
	// Title is immutable after creation.
	Title string `json:"title"`
	// Description is immutable after creation.
	Description string `json:"description"`
	// Status is the only mutable field.
	Status Status `json:"status"`
	// UserID is the owner; the client never relies on it.
	UserID int64 `json:"userId,omitempty"`
}

// TaskFilter narrows a task listing. Zero values mean "no constraint".
type TaskFilter struct {
	Status Status `json:"status,omitempty"`
	Search string `json:"search,omitempty"`
}

// IsZero reports whether the filter has no constraints.
func (f TaskFilter) IsZero() bool {
	return f.Status == "" && f.Search == ""
}

// CreateTaskRequest is the body of POST /tasks.
type CreateTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// UpdateStatusRequest is the body of PUT /tasks/{id}/status.
type UpdateStatusRequest struct {
	Status Status `json:"status"`
}

// Credentials are the username/password pair sent to sign-up and sign-in.
// They are never stored.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthResponse is the body returned by a successful sign-in.
type AuthResponse struct {
	AccessToken string `json:"accessToken"`
}

// UserIdentity is the signed-in user as derived from the bearer token.
type UserIdentity struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// User represents a registered account on the service side.
type User struct {
	// ID is the unique identifier for the user.
	ID int64
	// Username is the login name chosen by the user.
	Username string
	// PasswordHash is the bcrypt hash of the user's password.
	PasswordHash []byte
}
