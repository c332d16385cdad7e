package reminder

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"taskdeck-api/domain"
)

// reminderWindowDays bounds the sweep to deadlines falling within the next
// day: due today or due tomorrow.
const reminderWindowDays = 1

// Source provides the full task snapshot to scan.
type Source interface {
	AllTasks(ctx context.Context) (map[string][]domain.Task, error)
}

// Sweeper periodically scans every live task and raises a notification for
// non-completed tasks whose deadline falls within the next 24 hours. With a
// Deduper each task/deadline pair is announced once per dedup TTL; without
// one every sweep re-announces its hits.
type Sweeper struct {
	source   Source
	notifier Notifier
	deduper  Deduper
	interval time.Duration
	logger   *log.Logger
	now      func() time.Time
	dispatch *dispatcher
}

// New creates a Sweeper. A nil deduper disables suppression of repeat
// notifications.
func New(source Source, notifier Notifier, deduper Deduper, interval time.Duration, logger *log.Logger) *Sweeper {
	if logger == nil {
		logger = log.StandardLogger()
	}
	if interval <= 0 {
		interval = time.Minute
	}
	return &Sweeper{
		source:   source,
		notifier: notifier,
		deduper:  deduper,
		interval: interval,
		logger:   logger,
		now:      time.Now,
		dispatch: newDispatcher(notifier, deduper, logger, defaultDispatcherConfig()),
	}
}

// Run sweeps once immediately and then on every interval tick until the
// context is cancelled. It blocks; run it in its own goroutine.
func (s *Sweeper) Run(ctx context.Context) {
	s.logger.Infof("reminder sweeper started, interval: %v, dedup: %v", s.interval, s.deduper != nil)
	s.Sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.dispatch.close()
			s.logger.Info("reminder sweeper stopped")
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep scans the current snapshot once. Each sweep is independent; it holds
// no state between runs beyond the optional dedup keys.
func (s *Sweeper) Sweep(ctx context.Context) {
	snapshot, err := s.source.AllTasks(ctx)
	if err != nil {
		s.logger.Errorf("reminder sweep failed to snapshot tasks: %v", err)
		return
	}

	now := s.now()
	matched := 0
	for userID, tasks := range snapshot {
		for _, t := range tasks {
			if !s.dueSoon(t, now) {
				continue
			}
			due, ok := domain.ClassifyDeadline(t.Deadline, t.Status, now)
			if !ok {
				continue
			}
			matched++

			dedupKey := ""
			if s.deduper != nil {
				dedupKey = t.ID + ":" + t.Deadline.String()
				added, err := s.deduper.Add(ctx, userID, dedupKey)
				if err != nil {
					// Dedup is best effort: deliver rather than drop.
					s.logger.Warnf("reminder dedup unavailable, delivering anyway: %v", err)
					dedupKey = ""
				} else if !added {
					continue
				}
			}

			job := dispatchJob{
				n:        Notification{UserID: userID, Task: t, Due: due},
				dedupKey: dedupKey,
			}
			if s.dispatch.deliver(job) {
				continue
			}

			s.logger.Warn("reminder buffer saturated; delivering inline")
			if err := s.notifier.Notify(ctx, job.n); err != nil {
				s.dispatch.rollback(job)
				s.logger.Errorf("inline reminder delivery failed, err: %v, task: %s, user: %s", err, t.ID, userID)
			}
		}
	}
	s.logger.Debugf("reminder sweep done, tasks due within a day: %d", matched)
}

// dueSoon reports whether the task's deadline is today or tomorrow and the
// task is still open.
func (s *Sweeper) dueSoon(t domain.Task, now time.Time) bool {
	if t.Status == domain.StatusCompleted || t.Deadline == nil {
		return false
	}
	days := t.Deadline.DaysFrom(now)
	return days >= 0 && days <= reminderWindowDays
}
