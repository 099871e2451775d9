// Package tasks keeps the client's local copy of the user's task collection
// in step with the remote service.
//
// Every mutation goes to the service first; the local collection only
// changes once the service has confirmed it. Mutations on the same task id
// are serialised, so overlapping status updates or deletes for one task
// are applied in the order they were issued. Responses that arrive after a
// Reset are not applied.
package tasks

import (
	"context"
	"strings"
	"sync/atomic"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/atinyakov/GophTasks/internal/client/api"
	"github.com/atinyakov/GophTasks/internal/client/state"
	"github.com/atinyakov/GophTasks/internal/logger"
	"github.com/atinyakov/GophTasks/internal/models"
)

// MaxTitleLength is the longest title, in characters, a task may have.
const MaxTitleLength = 100

// Remote is the task half of the service API.
type Remote interface {
	ListTasks(ctx context.Context, filter models.TaskFilter) ([]models.Task, error)
	GetTask(ctx context.Context, id int64) (models.Task, error)
	CreateTask(ctx context.Context, req models.CreateTaskRequest) (models.Task, error)
	UpdateTaskStatus(ctx context.Context, id int64, status models.Status) (models.Task, error)
	DeleteTask(ctx context.Context, id int64) error
}

// Store owns the local task collection.
type Store struct {
	remote Remote
	tasks  *state.Cell[[]models.Task]
	locks  *idLocks
	log    *zap.Logger

	// gen is bumped by Reset, inside a tasks transition.
	gen atomic.Uint64
}

// New returns an empty Store backed by remote.
func New(remote Remote, log *zap.Logger) *Store {
	return &Store{
		remote: remote,
		tasks:  state.NewCell([]models.Task{}),
		locks:  newIDLocks(),
		log:    logger.OrNop(log),
	}
}

// Load fetches the tasks matching filter and replaces the local collection
// with the result. Nothing is merged with what was held before.
func (s *Store) Load(ctx context.Context, filter models.TaskFilter) ([]models.Task, error) {
	gen := s.gen.Load()
	list, err := s.remote.ListTasks(ctx, filter)
	if err != nil {
		s.log.Debug("load tasks failed", zap.Error(err))
		return nil, err
	}
	next := append([]models.Task(nil), list...)
	if s.apply(gen, func([]models.Task) []models.Task { return next }) {
		s.log.Debug("tasks loaded", zap.Int("count", len(next)))
	} else {
		s.log.Debug("stale task list dropped", zap.Int("count", len(next)))
	}
	return clone(next), nil
}

// Get fetches one task and refreshes the matching local entry, if any.
func (s *Store) Get(ctx context.Context, id int64) (models.Task, error) {
	gen := s.gen.Load()
	task, err := s.remote.GetTask(ctx, id)
	if err != nil {
		return models.Task{}, err
	}
	s.replace(gen, task)
	return task, nil
}

// Create validates the input, creates the task remotely and puts it at the
// front of the local collection.
func (s *Store) Create(ctx context.Context, title, description string) (models.Task, error) {
	if err := ValidateNew(title, description); err != nil {
		return models.Task{}, err
	}

	gen := s.gen.Load()
	task, err := s.remote.CreateTask(ctx, models.CreateTaskRequest{Title: title, Description: description})
	if err != nil {
		return models.Task{}, err
	}

	applied := s.apply(gen, func(cur []models.Task) []models.Task {
		next := make([]models.Task, 0, len(cur)+1)
		next = append(next, task)
		return append(next, cur...)
	})
	s.log.Info("task created", zap.Int64("id", task.ID), zap.Bool("stored", applied))
	return task, nil
}

// UpdateStatus moves task id to status. If the local copy already has that
// status no request is made and the local copy is returned.
//
// When the task is no longer held locally (deleted or filtered out by a
// later Load) the service's answer is returned but not stored.
func (s *Store) UpdateStatus(ctx context.Context, id int64, status models.Status) (models.Task, error) {
	if !status.Valid() {
		return models.Task{}, &api.ValidationError{Field: "status", Message: "must be one of OPEN, IN_PROGRESS, DONE"}
	}

	unlock := s.locks.lock(id)
	defer unlock()

	if cur, ok := s.find(id); ok && cur.Status == status {
		return cur, nil
	}

	gen := s.gen.Load()
	task, err := s.remote.UpdateTaskStatus(ctx, id, status)
	if err != nil {
		return models.Task{}, err
	}
	if !s.replace(gen, task) {
		s.log.Warn("status update for task not held locally dropped",
			zap.Int64("id", id), zap.String("status", string(status)))
	}
	return task, nil
}

// Delete removes task id remotely and, once confirmed, locally.
func (s *Store) Delete(ctx context.Context, id int64) error {
	unlock := s.locks.lock(id)
	defer unlock()

	if err := s.remote.DeleteTask(ctx, id); err != nil {
		return err
	}
	s.tasks.UpdateIf(func(cur []models.Task) ([]models.Task, bool) {
		next := make([]models.Task, 0, len(cur))
		for _, t := range cur {
			if t.ID != id {
				next = append(next, t)
			}
		}
		return next, len(next) != len(cur)
	})
	s.log.Info("task deleted", zap.Int64("id", id))
	return nil
}

// Tasks returns a copy of the local collection.
func (s *Store) Tasks() []models.Task {
	return clone(s.tasks.Get())
}

// Find returns the locally held task with the given id.
func (s *Store) Find(id int64) (models.Task, bool) {
	return s.find(id)
}

// Subscribe registers fn for every change of the local collection. fn
// receives a copy it may keep.
func (s *Store) Subscribe(fn func([]models.Task)) (unsubscribe func()) {
	return s.tasks.Subscribe(func(list []models.Task) { fn(clone(list)) })
}

// Reset empties the local collection, e.g. after sign-out. Requests still
// in flight complete for their callers but leave the collection alone.
func (s *Store) Reset() {
	s.tasks.Update(func([]models.Task) []models.Task {
		s.gen.Add(1)
		return []models.Task{}
	})
}

// apply runs fn as one transition unless a Reset happened since gen was
// read. It reports whether fn was applied.
func (s *Store) apply(gen uint64, fn func([]models.Task) []models.Task) bool {
	_, ok := s.tasks.UpdateIf(func(cur []models.Task) ([]models.Task, bool) {
		if s.gen.Load() != gen {
			return cur, false
		}
		return fn(cur), true
	})
	return ok
}

func (s *Store) find(id int64) (models.Task, bool) {
	for _, t := range s.tasks.Get() {
		if t.ID == id {
			return t, true
		}
	}
	return models.Task{}, false
}

// replace swaps the local entry with task's id for task. It reports
// whether such an entry existed and no Reset happened since gen was read.
func (s *Store) replace(gen uint64, task models.Task) bool {
	_, found := s.tasks.UpdateIf(func(cur []models.Task) ([]models.Task, bool) {
		if s.gen.Load() != gen {
			return cur, false
		}
		for i, t := range cur {
			if t.ID == task.ID {
				next := clone(cur)
				next[i] = task
				return next, true
			}
		}
		return cur, false
	})
	return found
}

// ValidateNew checks a title and description before they are sent.
func ValidateNew(title, description string) error {
	if strings.TrimSpace(title) == "" {
		return &api.ValidationError{Field: "title", Message: "Title is required"}
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return &api.ValidationError{Field: "title", Message: "Title must be at most 100 characters"}
	}
	if strings.TrimSpace(description) == "" {
		return &api.ValidationError{Field: "description", Message: "Description is required"}
	}
	return nil
}

func clone(list []models.Task) []models.Task {
	out := make([]models.Task, len(list))
	copy(out, list)
	return out
}
