package store

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"taskdeck-api/domain"
)

type stubBackend struct {
	listFn      func(ctx context.Context, userID string) ([]domain.Task, error)
	createFn    func(ctx context.Context, userID string, draft domain.Draft) (domain.Task, error)
	updateFn    func(ctx context.Context, userID, taskID string, draft domain.Draft) (domain.Task, error)
	setStatusFn func(ctx context.Context, userID, taskID string, status domain.Status) (domain.Task, error)
	deleteFn    func(ctx context.Context, userID, taskID string) error
}

func (s *stubBackend) ListTasks(ctx context.Context, userID string) ([]domain.Task, error) {
	if s.listFn == nil {
		return nil, errors.New("unexpected ListTasks call")
	}
	return s.listFn(ctx, userID)
}

func (s *stubBackend) CreateTask(ctx context.Context, userID string, draft domain.Draft) (domain.Task, error) {
	if s.createFn == nil {
		return domain.Task{}, errors.New("unexpected CreateTask call")
	}
	return s.createFn(ctx, userID, draft)
}

func (s *stubBackend) UpdateTask(ctx context.Context, userID, taskID string, draft domain.Draft) (domain.Task, error) {
	if s.updateFn == nil {
		return domain.Task{}, errors.New("unexpected UpdateTask call")
	}
	return s.updateFn(ctx, userID, taskID, draft)
}

func (s *stubBackend) SetTaskStatus(ctx context.Context, userID, taskID string, status domain.Status) (domain.Task, error) {
	if s.setStatusFn == nil {
		return domain.Task{}, errors.New("unexpected SetTaskStatus call")
	}
	return s.setStatusFn(ctx, userID, taskID, status)
}

func (s *stubBackend) DeleteTask(ctx context.Context, userID, taskID string) error {
	if s.deleteFn == nil {
		return errors.New("unexpected DeleteTask call")
	}
	return s.deleteFn(ctx, userID, taskID)
}

func newCacheRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestCacheListTasksMissThenHit(t *testing.T) {
	mr, client := newCacheRedis(t)
	ctx := context.Background()
	userID := "user-1"
	deadline := domain.NewDate(2026, 8, 25)
	expected := []domain.Task{{
		ID:        "t1",
		Title:     "Write code",
		Priority:  domain.PriorityHigh,
		Status:    domain.StatusTodo,
		Deadline:  &deadline,
		CreatedAt: time.Date(2026, 8, 23, 9, 0, 0, 0, time.UTC),
	}}

	var calls int
	cache := NewCache(&stubBackend{
		listFn: func(ctx context.Context, uid string) ([]domain.Task, error) {
			calls++
			if uid != userID {
				t.Fatalf("unexpected user id: %s", uid)
			}
			return append([]domain.Task(nil), expected...), nil
		},
	}, client, time.Minute)

	tasks, err := cache.ListTasks(ctx, userID)
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	if !reflect.DeepEqual(tasks, expected) {
		t.Fatalf("unexpected tasks: %#v", tasks)
	}
	if calls != 1 {
		t.Fatalf("expected 1 call to backend, got %d", calls)
	}
	if ttl := mr.TTL(tasksCacheKey(userID)); ttl <= 0 || ttl > time.Minute {
		t.Fatalf("unexpected TTL: %v", ttl)
	}

	again, err := cache.ListTasks(ctx, userID)
	if err != nil {
		t.Fatalf("list tasks from cache: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected cache hit, backend called %d times", calls)
	}
	if !reflect.DeepEqual(again, expected) {
		t.Fatalf("cache round trip changed tasks: %#v", again)
	}
}

func TestCacheMutationsEvict(t *testing.T) {
	mr, client := newCacheRedis(t)
	ctx := context.Background()
	userID := "user-1"

	backend := &stubBackend{
		listFn: func(ctx context.Context, uid string) ([]domain.Task, error) {
			return []domain.Task{{ID: "t1", Title: "x", Priority: domain.PriorityLow, Status: domain.StatusTodo}}, nil
		},
		createFn: func(ctx context.Context, uid string, d domain.Draft) (domain.Task, error) {
			return domain.Task{ID: "t2", Title: d.Title}, nil
		},
		setStatusFn: func(ctx context.Context, uid, id string, st domain.Status) (domain.Task, error) {
			return domain.Task{ID: id, Status: st}, nil
		},
		deleteFn: func(ctx context.Context, uid, id string) error { return nil },
	}
	cache := NewCache(backend, client, time.Minute)

	populate := func() {
		t.Helper()
		if _, err := cache.ListTasks(ctx, userID); err != nil {
			t.Fatalf("populate: %v", err)
		}
		if !mr.Exists(tasksCacheKey(userID)) {
			t.Fatal("expected cache key to exist after list")
		}
	}
	assertEvicted := func(op string) {
		t.Helper()
		if mr.Exists(tasksCacheKey(userID)) {
			t.Fatalf("expected %s to evict cache key", op)
		}
	}

	populate()
	if _, err := cache.CreateTask(ctx, userID, domain.Draft{Title: "new"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	assertEvicted("create")

	populate()
	if _, err := cache.SetTaskStatus(ctx, userID, "t1", domain.StatusCompleted); err != nil {
		t.Fatalf("set status: %v", err)
	}
	assertEvicted("status change")

	populate()
	if err := cache.DeleteTask(ctx, userID, "t1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	assertEvicted("delete")
}

func TestCacheFailedMutationKeepsEntry(t *testing.T) {
	mr, client := newCacheRedis(t)
	ctx := context.Background()
	userID := "user-1"

	backend := &stubBackend{
		listFn: func(ctx context.Context, uid string) ([]domain.Task, error) {
			return []domain.Task{}, nil
		},
		deleteFn: func(ctx context.Context, uid, id string) error { return ErrTaskNotFound },
	}
	cache := NewCache(backend, client, time.Minute)

	if _, err := cache.ListTasks(ctx, userID); err != nil {
		t.Fatalf("populate: %v", err)
	}
	if err := cache.DeleteTask(ctx, userID, "missing"); !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if !mr.Exists(tasksCacheKey(userID)) {
		t.Fatal("failed mutation should not evict")
	}
}

func TestCacheCorruptEntryFallsBack(t *testing.T) {
	mr, client := newCacheRedis(t)
	ctx := context.Background()
	userID := "user-1"

	if err := mr.Set(tasksCacheKey(userID), "{not json"); err != nil {
		t.Fatalf("seed corrupt entry: %v", err)
	}

	var calls int
	cache := NewCache(&stubBackend{
		listFn: func(ctx context.Context, uid string) ([]domain.Task, error) {
			calls++
			return []domain.Task{{ID: "t1", Title: "fresh"}}, nil
		},
	}, client, time.Minute)

	tasks, err := cache.ListTasks(ctx, userID)
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	if calls != 1 || len(tasks) != 1 || tasks[0].ID != "t1" {
		t.Fatalf("expected fallback to backend, calls=%d tasks=%#v", calls, tasks)
	}
}

func TestCacheNilClientPassesThrough(t *testing.T) {
	var calls int
	cache := NewCache(&stubBackend{
		listFn: func(ctx context.Context, uid string) ([]domain.Task, error) {
			calls++
			return nil, nil
		},
	}, nil, time.Minute)

	for i := 0; i < 2; i++ {
		if _, err := cache.ListTasks(context.Background(), "u"); err != nil {
			t.Fatalf("list: %v", err)
		}
	}
	if calls != 2 {
		t.Fatalf("expected passthrough on nil client, got %d calls", calls)
	}
}
