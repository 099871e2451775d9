package tasks

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atinyakov/GophTasks/internal/client/api"
	"github.com/atinyakov/GophTasks/internal/models"
)

type fakeRemote struct {
	mu     sync.Mutex
	calls  map[string]int
	list   []models.Task
	nextID int64
	err    error

	// updateGate, when set, blocks UpdateTaskStatus until it is closed.
	updateGate chan struct{}
	order      []models.Status
}

func newFakeRemote(list ...models.Task) *fakeRemote {
	return &fakeRemote{calls: map[string]int{}, list: list, nextID: 100}
}

func (f *fakeRemote) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeRemote) hit(op string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[op]++
	return f.err
}

func (f *fakeRemote) ListTasks(_ context.Context, _ models.TaskFilter) ([]models.Task, error) {
	if err := f.hit("list"); err != nil {
		return nil, err
	}
	return append([]models.Task(nil), f.list...), nil
}

func (f *fakeRemote) GetTask(_ context.Context, id int64) (models.Task, error) {
	if err := f.hit("get"); err != nil {
		return models.Task{}, err
	}
	for _, t := range f.list {
		if t.ID == id {
			return t, nil
		}
	}
	return models.Task{}, api.ErrNotFound
}

func (f *fakeRemote) CreateTask(_ context.Context, req models.CreateTaskRequest) (models.Task, error) {
	if err := f.hit("create"); err != nil {
		return models.Task{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	return models.Task{ID: f.nextID, Title: req.Title, Description: req.Description, Status: models.StatusOpen}, nil
}

func (f *fakeRemote) UpdateTaskStatus(_ context.Context, id int64, status models.Status) (models.Task, error) {
	if err := f.hit("update"); err != nil {
		return models.Task{}, err
	}
	if f.updateGate != nil {
		<-f.updateGate
	}
	f.mu.Lock()
	f.order = append(f.order, status)
	f.mu.Unlock()
	return models.Task{ID: id, Title: "t", Description: "d", Status: status}, nil
}

func (f *fakeRemote) DeleteTask(_ context.Context, _ int64) error {
	return f.hit("delete")
}

func seed() []models.Task {
	return []models.Task{
		{ID: 1, Title: "Buy milk", Description: "2 litres", Status: models.StatusOpen},
		{ID: 2, Title: "Write report", Description: "quarterly", Status: models.StatusInProgress},
	}
}

func loaded(t *testing.T, remote *fakeRemote) *Store {
	t.Helper()
	s := New(remote, nil)
	_, err := s.Load(context.Background(), models.TaskFilter{})
	require.NoError(t, err)
	return s
}

func TestStore_LoadReplacesWholesale(t *testing.T) {
	remote := newFakeRemote(seed()...)
	s := loaded(t, remote)
	require.Len(t, s.Tasks(), 2)

	remote.list = []models.Task{{ID: 9, Title: "Other", Description: "x", Status: models.StatusDone}}
	got, err := s.Load(context.Background(), models.TaskFilter{Status: models.StatusDone})
	require.NoError(t, err)
	assert.Equal(t, remote.list, got)
	assert.Equal(t, remote.list, s.Tasks())
}

func TestStore_LoadErrorKeepsCollection(t *testing.T) {
	remote := newFakeRemote(seed()...)
	s := loaded(t, remote)

	remote.err = &api.NetworkError{Op: "list tasks", Err: errors.New("down")}
	_, err := s.Load(context.Background(), models.TaskFilter{})
	require.Error(t, err)
	assert.Len(t, s.Tasks(), 2)
}

func TestStore_CreateInsertsAtFront(t *testing.T) {
	remote := newFakeRemote(seed()...)
	s := loaded(t, remote)

	task, err := s.Create(context.Background(), "New", "desc")
	require.NoError(t, err)
	assert.Equal(t, int64(101), task.ID)

	list := s.Tasks()
	require.Len(t, list, 3)
	assert.Equal(t, task, list[0])
}

func TestStore_CreateValidation(t *testing.T) {
	tests := []struct {
		name        string
		title       string
		description string
		field       string
	}{
		{name: "empty title", title: "", description: "d", field: "title"},
		{name: "blank title", title: "   ", description: "d", field: "title"},
		{name: "long title", title: strings.Repeat("a", 101), description: "d", field: "title"},
		{name: "empty description", title: "t", description: " ", field: "description"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			remote := newFakeRemote()
			s := New(remote, nil)
			_, err := s.Create(context.Background(), tt.title, tt.description)

			var verr *api.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
			assert.Zero(t, remote.count("create"))
		})
	}
}

func TestStore_CreateTitleLimitCountsCharacters(t *testing.T) {
	s := New(newFakeRemote(), nil)
	_, err := s.Create(context.Background(), strings.Repeat("ж", 100), "d")
	assert.NoError(t, err)
}

func TestStore_UpdateStatusSameStatusIsNoop(t *testing.T) {
	remote := newFakeRemote(seed()...)
	s := loaded(t, remote)

	task, err := s.UpdateStatus(context.Background(), 1, models.StatusOpen)
	require.NoError(t, err)
	assert.Equal(t, seed()[0], task)
	assert.Zero(t, remote.count("update"))
}

func TestStore_UpdateStatusReplacesEntry(t *testing.T) {
	remote := newFakeRemote(seed()...)
	s := loaded(t, remote)

	var published [][]models.Task
	s.Subscribe(func(list []models.Task) { published = append(published, list) })

	task, err := s.UpdateStatus(context.Background(), 1, models.StatusDone)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDone, task.Status)
	assert.Equal(t, 1, remote.count("update"))

	got, ok := s.Find(1)
	require.True(t, ok)
	assert.Equal(t, models.StatusDone, got.Status)
	assert.Equal(t, int64(1), s.Tasks()[0].ID, "position is kept")
	require.Len(t, published, 1)
}

func TestStore_UpdateStatusUnknownLocallyIsDropped(t *testing.T) {
	remote := newFakeRemote(seed()...)
	s := loaded(t, remote)

	calls := 0
	s.Subscribe(func([]models.Task) { calls++ })

	task, err := s.UpdateStatus(context.Background(), 42, models.StatusDone)
	require.NoError(t, err)
	assert.Equal(t, int64(42), task.ID)
	assert.Zero(t, calls)
	assert.Len(t, s.Tasks(), 2)
}

func TestStore_UpdateStatusRejectsUnknownStatus(t *testing.T) {
	remote := newFakeRemote(seed()...)
	s := loaded(t, remote)

	_, err := s.UpdateStatus(context.Background(), 1, models.Status("LATER"))
	var verr *api.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Zero(t, remote.count("update"))
}

func TestStore_UpdateStatusErrorLeavesEntry(t *testing.T) {
	remote := newFakeRemote(seed()...)
	s := loaded(t, remote)

	remote.err = &api.NetworkError{Op: "update task status", StatusCode: 404, Err: api.ErrNotFound}
	_, err := s.UpdateStatus(context.Background(), 1, models.StatusDone)
	require.Error(t, err)
	assert.True(t, api.IsNotFound(err))

	got, _ := s.Find(1)
	assert.Equal(t, models.StatusOpen, got.Status)
}

func TestStore_OverlappingUpdatesAreSerialised(t *testing.T) {
	remote := newFakeRemote(seed()...)
	s := loaded(t, remote)
	remote.updateGate = make(chan struct{})

	first := make(chan error, 1)
	go func() {
		_, err := s.UpdateStatus(context.Background(), 1, models.StatusInProgress)
		first <- err
	}()
	require.Eventually(t, func() bool { return remote.count("update") == 1 }, time.Second, time.Millisecond)

	second := make(chan error, 1)
	go func() {
		_, err := s.UpdateStatus(context.Background(), 1, models.StatusDone)
		second <- err
	}()

	// The second call waits on the id lock and has not reached the remote.
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 1, remote.count("update"))

	close(remote.updateGate)
	require.NoError(t, <-first)
	require.NoError(t, <-second)

	assert.Equal(t, []models.Status{models.StatusInProgress, models.StatusDone}, remote.order)
	got, _ := s.Find(1)
	assert.Equal(t, models.StatusDone, got.Status)
	assert.Zero(t, s.locks.size())
}

func TestStore_DeleteRemovesOnlyOnSuccess(t *testing.T) {
	remote := newFakeRemote(seed()...)
	s := loaded(t, remote)

	remote.err = &api.NetworkError{Op: "delete task", Err: errors.New("down")}
	require.Error(t, s.Delete(context.Background(), 1))
	assert.Len(t, s.Tasks(), 2)

	remote.err = nil
	require.NoError(t, s.Delete(context.Background(), 1))
	list := s.Tasks()
	require.Len(t, list, 1)
	assert.Equal(t, int64(2), list[0].ID)
}

func TestStore_GetRefreshesEntry(t *testing.T) {
	remote := newFakeRemote(seed()...)
	s := loaded(t, remote)

	remote.list[0].Status = models.StatusDone
	task, err := s.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDone, task.Status)

	got, _ := s.Find(1)
	assert.Equal(t, models.StatusDone, got.Status)
}

func TestStore_TasksReturnsCopy(t *testing.T) {
	s := loaded(t, newFakeRemote(seed()...))
	list := s.Tasks()
	list[0].Title = "changed"
	assert.Equal(t, "Buy milk", s.Tasks()[0].Title)
}

func TestStore_Reset(t *testing.T) {
	s := loaded(t, newFakeRemote(seed()...))
	s.Reset()
	assert.Empty(t, s.Tasks())
}

// resettingRemote resets the store while each request is in flight, as a
// sign-out racing a slow response does.
type resettingRemote struct {
	*fakeRemote
	store *Store
}

func (r *resettingRemote) ListTasks(ctx context.Context, f models.TaskFilter) ([]models.Task, error) {
	r.store.Reset()
	return r.fakeRemote.ListTasks(ctx, f)
}

func (r *resettingRemote) CreateTask(ctx context.Context, req models.CreateTaskRequest) (models.Task, error) {
	r.store.Reset()
	return r.fakeRemote.CreateTask(ctx, req)
}

func (r *resettingRemote) UpdateTaskStatus(ctx context.Context, id int64, status models.Status) (models.Task, error) {
	r.store.Reset()
	return r.fakeRemote.UpdateTaskStatus(ctx, id, status)
}

func TestStore_ResponsesAfterResetAreNotApplied(t *testing.T) {
	remote := newFakeRemote(seed()...)
	s := loaded(t, remote)
	late := &resettingRemote{fakeRemote: remote}
	s.remote = late
	late.store = s

	var published [][]models.Task
	s.Subscribe(func(list []models.Task) { published = append(published, list) })

	got, err := s.Load(context.Background(), models.TaskFilter{})
	require.NoError(t, err)
	assert.Len(t, got, 2, "the caller still gets the answer")
	assert.Empty(t, s.Tasks())

	_, err = s.Create(context.Background(), "New", "desc")
	require.NoError(t, err)
	assert.Empty(t, s.Tasks())

	// Refill, then let a status update race a reset.
	s.remote = remote
	_, err = s.Load(context.Background(), models.TaskFilter{})
	require.NoError(t, err)
	s.remote = late
	_, err = s.UpdateStatus(context.Background(), 1, models.StatusDone)
	require.NoError(t, err)
	assert.Empty(t, s.Tasks())

	// Resets, the refill, and a reset again: nothing stale in between.
	require.Len(t, published, 4)
	assert.Empty(t, published[0])
	assert.Empty(t, published[1])
	assert.Len(t, published[2], 2)
	assert.Empty(t, published[3])

	// Requests started after the reset apply normally.
	s.remote = remote
	_, err = s.Load(context.Background(), models.TaskFilter{})
	require.NoError(t, err)
	assert.Len(t, s.Tasks(), 2)
}
