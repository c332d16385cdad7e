package domain

import (
	"testing"
	"time"
)

func projectionFixture() []Task {
	base := time.Date(2026, 8, 23, 8, 0, 0, 0, time.UTC)
	d1 := NewDate(2026, 8, 24)
	d5 := NewDate(2026, 8, 28)
	d3 := NewDate(2026, 8, 26)
	return []Task{
		{ID: "c", Title: "medium no deadline", Priority: PriorityMedium, Status: StatusTodo, CreatedAt: base},
		{ID: "b", Title: "high later deadline", Priority: PriorityHigh, Status: StatusInProgress, Deadline: &d5, CreatedAt: base.Add(time.Minute)},
		{ID: "a", Title: "high near deadline", Priority: PriorityHigh, Status: StatusTodo, Deadline: &d1, CreatedAt: base.Add(2 * time.Minute)},
		{ID: "d", Title: "low done", Priority: PriorityLow, Status: StatusCompleted, Deadline: &d3, CreatedAt: base.Add(3 * time.Minute)},
		{ID: "e", Title: "medium newer", Priority: PriorityMedium, Status: StatusCompleted, CreatedAt: base.Add(4 * time.Minute)},
	}
}

func ids(tasks []Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func TestProjectOrdering(t *testing.T) {
	got := Project(projectionFixture(), Filter{})
	want := []string{"a", "b", "e", "c", "d"}
	if len(got) != len(want) {
		t.Fatalf("expected %d tasks, got %d", len(want), len(got))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Fatalf("position %d: expected %s, got %s (full order %v)", i, id, got[i].ID, ids(got))
		}
	}
}

func TestProjectIsIdempotent(t *testing.T) {
	once := Project(projectionFixture(), Filter{})
	twice := Project(once, Filter{})
	for i := range once {
		if once[i].ID != twice[i].ID {
			t.Fatalf("re-projection changed order: %v vs %v", ids(once), ids(twice))
		}
	}
}

func TestProjectFilterPredicates(t *testing.T) {
	tasks := projectionFixture()
	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{name: "status_todo", filter: Filter{Status: "todo"}, want: []string{"a", "c"}},
		{name: "priority_high", filter: Filter{Priority: "high"}, want: []string{"a", "b"}},
		{name: "both", filter: Filter{Status: "completed", Priority: "low"}, want: []string{"d"}},
		{name: "all_explicit", filter: Filter{Status: FilterAll, Priority: FilterAll}, want: []string{"a", "b", "e", "c", "d"}},
		{name: "no_match", filter: Filter{Status: "in-progress", Priority: "low"}, want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Project(tasks, tt.filter)
			if len(got) != len(tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, ids(got))
			}
			seen := map[string]int{}
			for i, task := range got {
				if !tt.filter.Match(task) {
					t.Fatalf("task %s does not satisfy filter %+v", task.ID, tt.filter)
				}
				if task.ID != tt.want[i] {
					t.Fatalf("expected %v, got %v", tt.want, ids(got))
				}
				seen[task.ID]++
			}
			for id, n := range seen {
				if n != 1 {
					t.Fatalf("task %s appears %d times", id, n)
				}
			}
		})
	}
}

func TestProjectDoesNotMutateInput(t *testing.T) {
	tasks := projectionFixture()
	before := ids(tasks)
	_ = Project(tasks, Filter{Priority: "high"})
	for i, id := range before {
		if tasks[i].ID != id {
			t.Fatal("input slice reordered by Project")
		}
	}
}

func TestFilterValidate(t *testing.T) {
	if err := (Filter{Status: "todo", Priority: "all"}).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := (Filter{}).Validate(); err != nil {
		t.Fatalf("unexpected error for zero filter: %v", err)
	}
	if err := (Filter{Status: "done"}).Validate(); err != ErrInvalidStatusFilter {
		t.Fatalf("expected invalid status filter, got %v", err)
	}
	if err := (Filter{Priority: "urgent"}).Validate(); err != ErrInvalidPriorityFilter {
		t.Fatalf("expected invalid priority filter, got %v", err)
	}
}

func TestCountByStatus(t *testing.T) {
	c := CountByStatus(projectionFixture())
	if c.All != 5 || c.Todo != 2 || c.InProgress != 1 || c.Completed != 2 {
		t.Fatalf("unexpected counts: %+v", c)
	}
	if c.Todo+c.InProgress+c.Completed != c.All {
		t.Fatalf("buckets do not sum to all: %+v", c)
	}
}
