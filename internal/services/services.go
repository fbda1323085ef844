package services

import (
	"context"
	"sync"
	"time"

	model "github.com/Oumaima1mal/task-pilot-front/pkg/models"
)

type TaskAPI interface {
	ListActive(ctx context.Context) ([]model.Task, error)
	ListCompleted(ctx context.Context) ([]model.Task, error)
	ListByGroup(ctx context.Context, groupID string) ([]model.Task, error)
	Create(ctx context.Context, in model.CreateTaskInput) (model.Task, error)
	Update(ctx context.Context, id string, patch model.TaskPatch) (model.Task, error)
	UpdateStatus(ctx context.Context, id string, completed bool) (model.Task, error)
	Delete(ctx context.Context, id string) error
	MemberStates(ctx context.Context, groupID, title string) ([]model.MemberTaskState, error)
	Scheduled(ctx context.Context, day time.Time) ([]model.Task, error)
}

type GroupAPI interface {
	List(ctx context.Context) ([]model.Group, error)
	Create(ctx context.Context, in model.CreateGroupInput) (model.Group, error)
	Update(ctx context.Context, id string, patch model.GroupPatch) (model.Group, error)
	Delete(ctx context.Context, id string) error
	AddMember(ctx context.Context, groupID, userID string) error
	RemoveMember(ctx context.Context, groupID, userID string) error
	ListUsers(ctx context.Context) ([]model.User, error)
	Members(ctx context.Context, groupID string) ([]model.GroupMember, error)
}

type NotificationAPI interface {
	List(ctx context.Context) ([]model.Notification, error)
	MarkRead(ctx context.Context, id int64) error
	MarkAllRead(ctx context.Context) error
}

// Session gates every read: no token, or a public route, means nothing to load.
type Session interface {
	Token() string
	OnPublicRoute() bool
}

type ReminderScheduler interface {
	Schedule(ctx context.Context, task model.Task) bool
	Cancel(ctx context.Context, title string)
}

type Phase int

const (
	PhaseUninitialized Phase = iota
	PhaseLoading
	PhaseReady
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	default:
		return "uninitialized"
	}
}

func hasSession(s Session) bool {
	return s != nil && s.Token() != "" && !s.OnPublicRoute()
}

// listeners fans state changes out to subscribers. Callbacks run outside any manager lock.
type listeners[T any] struct {
	mu   sync.Mutex
	next int
	fns  map[int]func(T)
}

func (l *listeners[T]) add(fn func(T)) func() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.fns == nil {
		l.fns = make(map[int]func(T))
	}
	id := l.next
	l.next++
	l.fns[id] = fn

	return func() {
		l.mu.Lock()
		delete(l.fns, id)
		l.mu.Unlock()
	}
}

func (l *listeners[T]) notify(v T) {
	l.mu.Lock()
	fns := make([]func(T), 0, len(l.fns))
	for _, fn := range l.fns {
		fns = append(fns, fn)
	}
	l.mu.Unlock()

	for _, fn := range fns {
		fn(v)
	}
}

// Notifier raises a native notification.
type Notifier interface {
	Notify(title, body string)
}
