package services

import (
	"context"
	"sync"
	"time"

	"github.com/Oumaima1mal/task-pilot-front/internal/logging"
)

const (
	TargetTasks  = "tasks"
	TargetGroups = "groups"
)

type Refresher interface {
	Refresh(ctx context.Context)
}

// SyncLoop runs manager refreshes on a single worker. Requests for a target
// that is already queued are coalesced.
type SyncLoop struct {
	queue    chan string
	wg       sync.WaitGroup
	tickWG   sync.WaitGroup
	enqueued sync.Map
	targets  map[string]Refresher
	interval time.Duration
	tickStop chan struct{}

	mu       sync.RWMutex
	stopped  bool
	stopOnce sync.Once
}

// NewSyncLoop starts the worker. A zero interval disables periodic refreshes;
// Enqueue still works.
func NewSyncLoop(targets map[string]Refresher, interval time.Duration, queueSize int) *SyncLoop {
	l := &SyncLoop{
		queue:    make(chan string, queueSize),
		targets:  targets,
		interval: interval,
		tickStop: make(chan struct{}),
	}

	if interval > 0 {
		l.tickWG.Add(1)
		go l.tickLoop()
	}

	l.wg.Add(1)
	go l.worker()

	return l
}

// Enqueue schedules a refresh of target. It reports false when the target is
// unknown, already pending, the queue is full or the loop is stopped.
func (l *SyncLoop) Enqueue(target string) bool {
	if _, ok := l.targets[target]; !ok {
		return false
	}

	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.stopped {
		return false
	}

	if _, loaded := l.enqueued.LoadOrStore(target, struct{}{}); loaded {
		return false
	}

	select {
	case l.queue <- target:
		return true
	default:
		l.enqueued.Delete(target)
		return false
	}
}

func (l *SyncLoop) worker() {
	defer l.wg.Done()

	for target := range l.queue {
		// untracked first so that a request arriving mid-refresh runs again afterwards
		l.enqueued.Delete(target)

		logging.Logger.WithField("target", target).Debug("sync refresh")
		l.targets[target].Refresh(context.Background())
	}
}

func (l *SyncLoop) tickLoop() {
	defer l.tickWG.Done()

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			for target := range l.targets {
				l.Enqueue(target)
			}
		case <-l.tickStop:
			return
		}
	}
}

// Shutdown stops the ticker, drains queued refreshes and waits for the worker
// or for ctx, whichever comes first. Safe to call more than once.
func (l *SyncLoop) Shutdown(ctx context.Context) {
	l.stopOnce.Do(func() {
		close(l.tickStop)
		l.tickWG.Wait()

		l.mu.Lock()
		l.stopped = true
		close(l.queue)
		l.mu.Unlock()
	})

	done := make(chan struct{})
	go func() {
		l.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logging.Logger.Info("sync loop stopped")
	case <-ctx.Done():
		logging.Logger.Warn("sync loop shutdown timed out")
	}
}
