package domain

import "sort"

// FilterAll matches every value of the filtered dimension.
const FilterAll = "all"

// Filter selects which tasks appear on the board. An empty side is
// equivalent to FilterAll.
type Filter struct {
	Status   string
	Priority string
}

var (
	ErrInvalidStatusFilter   = ValidationError("invalid status filter")
	ErrInvalidPriorityFilter = ValidationError("invalid priority filter")
)

// Validate rejects filter values outside the known enums.
func (f Filter) Validate() error {
	if f.Status != "" && f.Status != FilterAll && !Status(f.Status).Valid() {
		return ErrInvalidStatusFilter
	}
	if f.Priority != "" && f.Priority != FilterAll && !Priority(f.Priority).Valid() {
		return ErrInvalidPriorityFilter
	}
	return nil
}

// Match reports whether the task passes both filter predicates.
func (f Filter) Match(t Task) bool {
	if f.Status != "" && f.Status != FilterAll && Status(f.Status) != t.Status {
		return false
	}
	if f.Priority != "" && f.Priority != FilterAll && Priority(f.Priority) != t.Priority {
		return false
	}
	return true
}

// Project returns the tasks passing the filter in display order. The input
// slice is never modified; projecting an already projected slice yields the
// same sequence.
func Project(tasks []Task, f Filter) []Task {
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if f.Match(t) {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return displayLess(out[i], out[j]) })
	return out
}

// displayLess orders by priority rank, then deadline (present before absent,
// earlier first), then newest CreatedAt first.
func displayLess(a, b Task) bool {
	if ar, br := a.Priority.Rank(), b.Priority.Rank(); ar != br {
		return ar < br
	}
	switch {
	case a.Deadline != nil && b.Deadline != nil:
		if !a.Deadline.Equal(b.Deadline.Time) {
			return a.Deadline.Before(b.Deadline.Time)
		}
	case a.Deadline != nil:
		return true
	case b.Deadline != nil:
		return false
	}
	return a.CreatedAt.After(b.CreatedAt)
}

// Counts reports the per-status cardinality of the unfiltered collection.
type Counts struct {
	All        int `json:"all"`
	Todo       int `json:"todo"`
	InProgress int `json:"in-progress"`
	Completed  int `json:"completed"`
}

// CountByStatus tallies every status bucket over the full collection.
func CountByStatus(tasks []Task) Counts {
	c := Counts{All: len(tasks)}
	for _, t := range tasks {
		switch t.Status {
		case StatusTodo:
			c.Todo++
		case StatusInProgress:
			c.InProgress++
		case StatusCompleted:
			c.Completed++
		}
	}
	return c
}
