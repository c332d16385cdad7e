package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"taskdeck-api/domain"
)

// notFoundError identifies references to tasks outside the live set.
type notFoundError struct{}

func (notFoundError) Error() string { return "task not found" }
func (notFoundError) TaskNotFound() {}

// ErrTaskNotFound is returned when the referenced task ID is not in the
// caller's live collection.
var ErrTaskNotFound error = notFoundError{}

// Store holds each user's task collection in memory. State is volatile and
// lost on restart. Every mutation replaces the affected collection wholesale,
// never a cell in place, so previously returned snapshots stay consistent.
type Store struct {
	mu    sync.RWMutex
	tasks map[string][]domain.Task

	now   func() time.Time
	newID func() string
}

// New creates an empty Store with uuid identifiers and a monotonic clock.
func New() *Store {
	return &Store{
		tasks: make(map[string][]domain.Task),
		now:   monotonicNow,
		newID: uuid.NewString,
	}
}

// ListTasks returns the user's current snapshot. The returned slice is never
// mutated by the store and may be shared freely.
func (s *Store) ListTasks(ctx context.Context, userID string) ([]domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tasks[userID], nil
}

// AllTasks returns a snapshot of every live collection, keyed by user.
func (s *Store) AllTasks(ctx context.Context) (map[string][]domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string][]domain.Task, len(s.tasks))
	for userID, tasks := range s.tasks {
		out[userID] = tasks
	}
	return out, nil
}

// CreateTask validates the draft, assigns ID and CreatedAt and appends the
// task to the user's collection.
func (s *Store) CreateTask(ctx context.Context, userID string, draft domain.Draft) (domain.Task, error) {
	draft.Normalize()
	if err := draft.Validate(); err != nil {
		return domain.Task{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	t := domain.Task{
		ID:          s.newID(),
		Title:       draft.Title,
		Description: draft.Description,
		Priority:    draft.Priority,
		Status:      draft.Status,
		Deadline:    draft.Deadline,
		CreatedAt:   s.now(),
	}
	cur := s.tasks[userID]
	next := make([]domain.Task, 0, len(cur)+1)
	next = append(next, cur...)
	next = append(next, t)
	s.tasks[userID] = next
	return t, nil
}

// UpdateTask replaces every field of the identified task except ID and
// CreatedAt.
func (s *Store) UpdateTask(ctx context.Context, userID, taskID string, draft domain.Draft) (domain.Task, error) {
	draft.Normalize()
	if err := draft.Validate(); err != nil {
		return domain.Task{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	cur := s.tasks[userID]
	i := indexOf(cur, taskID)
	if i < 0 {
		return domain.Task{}, ErrTaskNotFound
	}
	t := cur[i]
	t.Title = draft.Title
	t.Description = draft.Description
	t.Priority = draft.Priority
	t.Status = draft.Status
	t.Deadline = draft.Deadline
	s.tasks[userID] = replaceAt(cur, i, t)
	return t, nil
}

// SetTaskStatus replaces only the status of the identified task.
func (s *Store) SetTaskStatus(ctx context.Context, userID, taskID string, status domain.Status) (domain.Task, error) {
	if !status.Valid() {
		return domain.Task{}, domain.ErrInvalidStatus
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	cur := s.tasks[userID]
	i := indexOf(cur, taskID)
	if i < 0 {
		return domain.Task{}, ErrTaskNotFound
	}
	t := cur[i]
	t.Status = status
	s.tasks[userID] = replaceAt(cur, i, t)
	return t, nil
}

// DeleteTask removes exactly the identified task and leaves all others
// untouched.
func (s *Store) DeleteTask(ctx context.Context, userID, taskID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur := s.tasks[userID]
	i := indexOf(cur, taskID)
	if i < 0 {
		return ErrTaskNotFound
	}
	next := make([]domain.Task, 0, len(cur)-1)
	next = append(next, cur[:i]...)
	next = append(next, cur[i+1:]...)
	s.tasks[userID] = next
	return nil
}

func indexOf(tasks []domain.Task, taskID string) int {
	for i := range tasks {
		if tasks[i].ID == taskID {
			return i
		}
	}
	return -1
}

func replaceAt(tasks []domain.Task, i int, t domain.Task) []domain.Task {
	next := make([]domain.Task, len(tasks))
	copy(next, tasks)
	next[i] = t
	return next
}
