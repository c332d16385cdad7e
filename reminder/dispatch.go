package reminder

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// dispatchJob pairs a notification with its dedup key so a failed delivery
// can roll the key back.
type dispatchJob struct {
	n        Notification
	dedupKey string
}

// dispatcher fans notification delivery out to a bounded worker pool so a
// slow delivery channel never stalls the sweep loop.
type dispatcher struct {
	jobs     chan dispatchJob
	notifier Notifier
	deduper  Deduper
	logger   *log.Logger

	notifyTimeout  time.Duration
	handoffTimeout time.Duration

	workerWG  sync.WaitGroup
	closeOnce sync.Once
}

type dispatcherConfig struct {
	workers        int
	buffer         int
	notifyTimeout  time.Duration
	handoffTimeout time.Duration
}

func defaultDispatcherConfig() dispatcherConfig {
	return dispatcherConfig{
		workers:        4,
		buffer:         256,
		notifyTimeout:  10 * time.Second,
		handoffTimeout: 15 * time.Millisecond,
	}
}

func newDispatcher(notifier Notifier, deduper Deduper, logger *log.Logger, cfg dispatcherConfig) *dispatcher {
	if cfg.workers <= 0 {
		cfg.workers = 1
	}
	if cfg.buffer < 0 {
		cfg.buffer = 0
	}
	d := &dispatcher{
		jobs:           make(chan dispatchJob, cfg.buffer),
		notifier:       notifier,
		deduper:        deduper,
		logger:         logger,
		notifyTimeout:  cfg.notifyTimeout,
		handoffTimeout: cfg.handoffTimeout,
	}
	for i := 0; i < cfg.workers; i++ {
		d.workerWG.Add(1)
		go d.worker(i)
	}
	return d
}

func (d *dispatcher) worker(id int) {
	defer d.workerWG.Done()
	for j := range d.jobs {
		ctx, cancel := context.WithTimeout(context.Background(), d.notifyTimeout)
		err := d.notifier.Notify(ctx, j.n)
		cancel()
		if err != nil {
			d.rollback(j)
			d.logger.Errorf("reminder delivery failed, err: %v, task: %s, user: %s, worker: %d", err, j.n.Task.ID, j.n.UserID, id)
		}
	}
}

// deliver hands the job to a worker, waiting at most the handoff timeout
// when the buffer is full. It reports false when the caller must deliver
// inline instead, including after the dispatcher is closed.
func (d *dispatcher) deliver(job dispatchJob) bool {
	if ok, closed := trySendNonBlocking(d.jobs, job); closed {
		return false
	} else if ok {
		return true
	}

	if d.handoffTimeout <= 0 {
		return false
	}

	timer := time.NewTimer(d.handoffTimeout)
	defer timer.Stop()

	ok, _ := sendWithTimer(d.jobs, job, timer.C)
	return ok
}

func trySendNonBlocking(ch chan dispatchJob, job dispatchJob) (ok bool, closed bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
			closed = true
		}
	}()

	select {
	case ch <- job:
		return true, false
	default:
		return false, false
	}
}

func sendWithTimer(ch chan dispatchJob, job dispatchJob, timer <-chan time.Time) (ok bool, closed bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
			closed = true
		}
	}()

	select {
	case ch <- job:
		return true, false
	case <-timer:
		return false, false
	}
}

// rollback clears the dedup key so the next sweep retries the reminder.
func (d *dispatcher) rollback(j dispatchJob) {
	if d.deduper == nil || j.dedupKey == "" {
		return
	}
	if err := d.deduper.Remove(context.Background(), j.n.UserID, j.dedupKey); err != nil {
		d.logger.Errorf("dedup rollback failed, err: %v, key: %s, user: %s", err, j.dedupKey, j.n.UserID)
	}
}

// close stops accepting jobs and waits for in-flight deliveries.
func (d *dispatcher) close() {
	d.closeOnce.Do(func() {
		close(d.jobs)
	})
	d.workerWG.Wait()
}
