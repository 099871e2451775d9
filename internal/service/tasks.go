package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/atinyakov/GophTasks/internal/models"
)

const maxTitleLength = 100

// TaskRepository defines the persistence operations required by TaskService.
// Every call is scoped to the owning user.
type TaskRepository interface {
	ListTasks(ctx context.Context, userID int64, filter models.TaskFilter) ([]models.Task, error)
	GetTask(ctx context.Context, userID, id int64) (models.Task, error)
	CreateTask(ctx context.Context, userID int64, title, description string) (models.Task, error)
	UpdateStatus(ctx context.Context, userID, id int64, status models.Status) (models.Task, error)
	DeleteTask(ctx context.Context, userID, id int64) error
}

// TaskService validates task requests and delegates them to a TaskRepository.
type TaskService struct {
	repo TaskRepository
}

// NewTaskService constructs a TaskService over repo.
func NewTaskService(repo TaskRepository) *TaskService {
	return &TaskService{repo: repo}
}

// List returns the user's tasks matching filter.
func (s *TaskService) List(ctx context.Context, userID int64, filter models.TaskFilter) ([]models.Task, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, filter.Status)
	}
	return s.repo.ListTasks(ctx, userID, filter)
}

// Get returns one of the user's tasks.
func (s *TaskService) Get(ctx context.Context, userID, id int64) (models.Task, error) {
	return s.repo.GetTask(ctx, userID, id)
}

// Create stores a new OPEN task.
func (s *TaskService) Create(ctx context.Context, userID int64, req models.CreateTaskRequest) (models.Task, error) {
	if strings.TrimSpace(req.Title) == "" {
		return models.Task{}, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if utf8.RuneCountInString(req.Title) > maxTitleLength {
		return models.Task{}, fmt.Errorf("%w: title must be at most %d characters", ErrInvalidInput, maxTitleLength)
	}
	if strings.TrimSpace(req.Description) == "" {
		return models.Task{}, fmt.Errorf("%w: description is required", ErrInvalidInput)
	}
	return s.repo.CreateTask(ctx, userID, req.Title, req.Description)
}

// UpdateStatus moves one of the user's tasks to status.
func (s *TaskService) UpdateStatus(ctx context.Context, userID, id int64, status models.Status) (models.Task, error) {
	if !status.Valid() {
		return models.Task{}, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
	}
	return s.repo.UpdateStatus(ctx, userID, id, status)
}

// Delete removes one of the user's tasks.
func (s *TaskService) Delete(ctx context.Context, userID, id int64) error {
	return s.repo.DeleteTask(ctx, userID, id)
}
