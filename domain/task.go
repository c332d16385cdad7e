package domain

import (
	"strings"
	"time"
)

// Priority orders tasks on the board, high first.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Rank maps the priority to its sort rank: high=0, medium=1, low=2.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	}
	return 3
}

func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// Status is the lifecycle bucket of a task.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Task represents a single card on the board.
type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Priority    Priority  `json:"priority"`
	Status      Status    `json:"status"`
	Deadline    *Date     `json:"deadline,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Draft carries the caller-supplied fields of a create or edit submission.
// ID and CreatedAt are never taken from a draft.
type Draft struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Priority    Priority `json:"priority"`
	Status      Status   `json:"status"`
	Deadline    *Date    `json:"deadline"`
}

// ValidationError marks a rejected draft field.
type ValidationError string

func (e ValidationError) Error() string { return string(e) }

var (
	ErrBlankTitle      = ValidationError("title must not be blank")
	ErrInvalidPriority = ValidationError("invalid priority")
	ErrInvalidStatus   = ValidationError("invalid status")
)

// Normalize trims the title and fills in defaults for omitted enum fields.
func (d *Draft) Normalize() {
	d.Title = strings.TrimSpace(d.Title)
	if d.Priority == "" {
		d.Priority = PriorityMedium
	}
	if d.Status == "" {
		d.Status = StatusTodo
	}
}

// Validate reports the first violated field constraint of a normalized draft.
func (d Draft) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return ErrBlankTitle
	}
	if !d.Priority.Valid() {
		return ErrInvalidPriority
	}
	if !d.Status.Valid() {
		return ErrInvalidStatus
	}
	return nil
}
