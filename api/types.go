package api

import (
	"context"

	"taskdeck-api/domain"
)

// Storage abstracts the task collection for handlers.
type Storage interface {
	ListTasks(ctx context.Context, userID string) ([]domain.Task, error)
	CreateTask(ctx context.Context, userID string, draft domain.Draft) (domain.Task, error)
	UpdateTask(ctx context.Context, userID, taskID string, draft domain.Draft) (domain.Task, error)
	SetTaskStatus(ctx context.Context, userID, taskID string, status domain.Status) (domain.Task, error)
	DeleteTask(ctx context.Context, userID, taskID string) error
}

// NotFoundError is implemented by storage errors that identify a reference
// to a task outside the live set.
type NotFoundError interface {
	error
	TaskNotFound()
}

// Authenticator is implemented by types able to extract user IDs from headers.
type Authenticator interface {
	UserIDFromAuthHeader(string) (string, error)
}
