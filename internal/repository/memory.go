package repository

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/atinyakov/GophTasks/internal/models"
)

// MemoryUserRepository keeps accounts in process memory. It backs the
// service when no database DSN is configured.
type MemoryUserRepository struct {
	mu     sync.RWMutex
	nextID int64
	users  map[string]models.User
}

// NewMemoryUserRepository returns an empty MemoryUserRepository.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[string]models.User)}
}

// CreateUser stores a new account.
func (r *MemoryUserRepository) CreateUser(_ context.Context, username string, passwordHash []byte) (models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[username]; ok {
		return models.User{}, ErrUserExists
	}
	r.nextID++
	u := models.User{ID: r.nextID, Username: username, PasswordHash: slices.Clone(passwordHash)}
	r.users[username] = u
	return u, nil
}

// GetUserByUsername loads an account by its login name.
func (r *MemoryUserRepository) GetUserByUsername(_ context.Context, username string) (models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[username]
	if !ok {
		return models.User{}, ErrNotFound
	}
	return u, nil
}

// MemoryTaskRepository keeps tasks in process memory.
type MemoryTaskRepository struct {
	mu     sync.RWMutex
	nextID int64
	tasks  map[int64]models.Task
}

// NewMemoryTaskRepository returns an empty MemoryTaskRepository.
func NewMemoryTaskRepository() *MemoryTaskRepository {
	return &MemoryTaskRepository{tasks: make(map[int64]models.Task)}
}

// ListTasks returns the user's tasks, newest first, narrowed by filter.
func (r *MemoryTaskRepository) ListTasks(_ context.Context, userID int64, filter models.TaskFilter) ([]models.Task, error) {
	search := normalizeSearch(filter.Search)

	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []models.Task{}
	for _, t := range r.tasks {
		if t.UserID != userID {
			continue
		}
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(t.Title), search) &&
			!strings.Contains(strings.ToLower(t.Description), search) {
			continue
		}
		out = append(out, t)
	}
	slices.SortFunc(out, func(a, b models.Task) int {
		switch {
		case a.ID > b.ID:
			return -1
		case a.ID < b.ID:
			return 1
		}
		return 0
	})
	return out, nil
}

// GetTask loads one of the user's tasks.
func (r *MemoryTaskRepository) GetTask(_ context.Context, userID, id int64) (models.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tasks[id]
	if !ok || t.UserID != userID {
		return models.Task{}, ErrNotFound
	}
	return t, nil
}

// CreateTask stores an OPEN task for the user.
func (r *MemoryTaskRepository) CreateTask(_ context.Context, userID int64, title, description string) (models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	t := models.Task{ID: r.nextID, Title: title, Description: description, Status: models.StatusOpen, UserID: userID}
	r.tasks[t.ID] = t
	return t, nil
}

// UpdateStatus sets the status of one of the user's tasks.
func (r *MemoryTaskRepository) UpdateStatus(_ context.Context, userID, id int64, status models.Status) (models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok || t.UserID != userID {
		return models.Task{}, ErrNotFound
	}
	t.Status = status
	r.tasks[id] = t
	return t, nil
}

// DeleteTask removes one of the user's tasks.
func (r *MemoryTaskRepository) DeleteTask(_ context.Context, userID, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok || t.UserID != userID {
		return ErrNotFound
	}
	delete(r.tasks, id)
	return nil
}

func normalizeSearch(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
