package reminder

import (
	"context"

	log "github.com/sirupsen/logrus"

	"taskdeck-api/domain"
)

// Notification describes one reminder for a task nearing its deadline.
type Notification struct {
	UserID string
	Task   domain.Task
	Due    domain.Urgency
}

// Notifier delivers reminder notifications.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// LogNotifier writes notifications to the structured log. It stands in for a
// real delivery channel (push, e-mail) which is outside this service.
type LogNotifier struct {
	Logger *log.Logger
}

func (l LogNotifier) Notify(ctx context.Context, n Notification) error {
	logger := l.Logger
	if logger == nil {
		logger = log.StandardLogger()
	}
	fields := log.Fields{
		"user":     n.UserID,
		"task_id":  n.Task.ID,
		"title":    n.Task.Title,
		"priority": n.Task.Priority,
		"label":    n.Due.Label,
		"urgent":   n.Due.Urgent,
	}
	if n.Task.Deadline != nil {
		fields["deadline"] = n.Task.Deadline.String()
	}
	logger.WithFields(fields).Info("task.reminder")
	return nil
}
