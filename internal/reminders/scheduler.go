package reminders

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Oumaima1mal/task-pilot-front/internal/logging"
	"github.com/Oumaima1mal/task-pilot-front/internal/snapshot"
	model "github.com/Oumaima1mal/task-pilot-front/pkg/models"
)

type Handle struct {
	ID     string    `json:"id"`
	FireAt time.Time `json:"fireAt"`
}

// Scheduler keeps at most one armed reminder per task title.
type Scheduler struct {
	mu      sync.Mutex
	timers  map[string]*time.Timer
	handles map[string]Handle
	closed  bool

	notifier Notifier
	store    *snapshot.Advisory
	now      func() time.Time
}

func NewScheduler(notifier Notifier, store *snapshot.Advisory) *Scheduler {
	if notifier == nil {
		notifier = LogNotifier{}
	}
	return &Scheduler{
		timers:   make(map[string]*time.Timer),
		handles:  make(map[string]Handle),
		notifier: notifier,
		store:    store,
		now:      time.Now,
	}
}

// Schedule arms a reminder for task. It reports false when the task has no
// reminder, no due date, or a reminder that is already in the past.
func (s *Scheduler) Schedule(ctx context.Context, task model.Task) bool {
	if task.Reminder == nil || task.DueDate == nil {
		return false
	}

	delay := task.Reminder.Sub(s.now())
	if delay <= 0 {
		return false
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}
	s.stopLocked(task.Title)

	handle := Handle{ID: uuid.NewString(), FireAt: *task.Reminder}
	title := task.Title
	body := fmt.Sprintf("Échéance: %s", task.DueDate.Format("02/01/2006 15:04"))
	if task.Description != "" {
		body = task.Description
	}

	s.handles[title] = handle
	s.timers[title] = time.AfterFunc(delay, func() { s.fire(title, handle.ID, body) })
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.store.Save(ctx, snapshot.KeyReminderHandle, snap)
	logging.Logger.WithFields(map[string]interface{}{
		"title":  title,
		"fireAt": handle.FireAt,
	}).Debug("reminder scheduled")
	return true
}

func (s *Scheduler) Cancel(ctx context.Context, title string) {
	s.mu.Lock()
	if _, ok := s.handles[title]; !ok {
		s.mu.Unlock()
		return
	}
	s.stopLocked(title)
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.store.Save(ctx, snapshot.KeyReminderHandle, snap)
}

func (s *Scheduler) Pending() map[string]Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Close disarms every pending reminder. Schedule is a no-op afterwards.
func (s *Scheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	for title := range s.timers {
		s.stopLocked(title)
	}
}

func (s *Scheduler) fire(title, id, body string) {
	s.mu.Lock()
	h, ok := s.handles[title]
	if !ok || h.ID != id || s.closed {
		s.mu.Unlock()
		return
	}
	delete(s.handles, title)
	delete(s.timers, title)
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.store.Save(context.Background(), snapshot.KeyReminderHandle, snap)
	s.notifier.Notify("Rappel: "+title, body)
}

func (s *Scheduler) stopLocked(title string) {
	if t, ok := s.timers[title]; ok {
		t.Stop()
	}
	delete(s.timers, title)
	delete(s.handles, title)
}

func (s *Scheduler) snapshotLocked() map[string]Handle {
	out := make(map[string]Handle, len(s.handles))
	for k, v := range s.handles {
		out[k] = v
	}
	return out
}
