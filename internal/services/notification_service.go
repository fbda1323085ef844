package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/Oumaima1mal/task-pilot-front/internal/channel"
	"github.com/Oumaima1mal/task-pilot-front/internal/exceptions"
	"github.com/Oumaima1mal/task-pilot-front/internal/logging"
	model "github.com/Oumaima1mal/task-pilot-front/pkg/models"
)

const appTitle = "Gestionnaire de Tâches"

// BadgeTitle is the window title carrying the unread count.
func BadgeTitle(unread int) string {
	if unread > 0 {
		return fmt.Sprintf("(%d) %s", unread, appTitle)
	}
	return appTitle
}

type EventSource interface {
	Events() <-chan channel.Event
	State() channel.State
}

// NotificationService keeps the notification feed, newest first.
type NotificationService struct {
	api      NotificationAPI
	session  Session
	source   EventSource
	notifier Notifier

	mu            sync.RWMutex
	notifications []model.Notification

	closed atomic.Bool
	subs   listeners[[]model.Notification]
	pushes listeners[model.Notification]
}

func NewNotificationService(api NotificationAPI, session Session, source EventSource, notifier Notifier) *NotificationService {
	return &NotificationService{
		api:           api,
		session:       session,
		source:        source,
		notifier:      notifier,
		notifications: []model.Notification{},
	}
}

func (s *NotificationService) log() *logrus.Entry {
	return logging.Logger.WithField("manager", "notifications")
}

// Run consumes channel events until the source closes or ctx is done.
func (s *NotificationService) Run(ctx context.Context) {
	events := s.source.Events()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			s.handle(ctx, ev)
		}
	}
}

func (s *NotificationService) handle(ctx context.Context, ev channel.Event) {
	switch ev.Kind {
	case channel.EventConnected:
		if err := s.FetchAll(ctx); err != nil {
			s.log().Warnf("pull after connect failed: %v", err)
		}
	case channel.EventNotification:
		s.receive(ev.Notification)
	case channel.EventDisconnected:
		s.log().Info("push channel disconnected")
	}
}

// receive inserts a pushed notification at the head unless its id is already known.
func (s *NotificationService) receive(n model.Notification) {
	if s.closed.Load() {
		return
	}

	s.mu.Lock()
	for _, existing := range s.notifications {
		if existing.ID == n.ID {
			s.mu.Unlock()
			return
		}
	}
	s.notifications = append([]model.Notification{n}, s.notifications...)
	view := append([]model.Notification(nil), s.notifications...)
	s.mu.Unlock()

	s.subs.notify(view)
	if s.notifier != nil {
		s.notifier.Notify("Nouvelle notification", n.Contenu)
	}
	s.pushes.notify(n)
}

// FetchAll replaces the feed with the backend's full list.
func (s *NotificationService) FetchAll(ctx context.Context) error {
	if s.session.Token() == "" {
		return nil
	}

	items, err := s.api.List(ctx)
	if exceptions.IsKind(err, exceptions.NotFoundEmpty) {
		items, err = []model.Notification{}, nil
	}
	if err != nil {
		return err
	}

	seen := make(map[int64]struct{}, len(items))
	feed := make([]model.Notification, 0, len(items))
	for _, n := range items {
		if _, dup := seen[n.ID]; dup {
			continue
		}
		seen[n.ID] = struct{}{}
		feed = append(feed, n)
	}
	sort.SliceStable(feed, func(i, j int) bool {
		return feed[i].DateEnvoi.After(feed[j].DateEnvoi)
	})

	s.replace(feed)
	return nil
}

func (s *NotificationService) MarkAsRead(ctx context.Context, id int64) error {
	if s.session.Token() == "" {
		return nil
	}

	if err := s.api.MarkRead(ctx, id); err != nil {
		s.log().WithField("notification", id).Errorf("mark as read failed: %v", err)
		return err
	}

	if s.closed.Load() {
		return nil
	}
	s.mu.Lock()
	for i := range s.notifications {
		if s.notifications[i].ID == id {
			s.notifications[i].EstLue = true
		}
	}
	view := append([]model.Notification(nil), s.notifications...)
	s.mu.Unlock()

	s.subs.notify(view)
	return nil
}

// MarkAllAsRead flags everything read on the backend, then pulls the feed again.
func (s *NotificationService) MarkAllAsRead(ctx context.Context) error {
	if s.session.Token() == "" {
		return nil
	}

	if err := s.api.MarkAllRead(ctx); err != nil {
		s.log().Errorf("mark all as read failed: %v", err)
		return err
	}
	return s.FetchAll(ctx)
}

func (s *NotificationService) UnreadCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, n := range s.notifications {
		if !n.EstLue {
			count++
		}
	}
	return count
}

func (s *NotificationService) Notifications() []model.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Notification{}, s.notifications...)
}

func (s *NotificationService) ConnectionState() channel.State {
	return s.source.State()
}

func (s *NotificationService) Subscribe(fn func([]model.Notification)) func() {
	return s.subs.add(fn)
}

// OnPush registers fn for every newly received push notification.
func (s *NotificationService) OnPush(fn func(model.Notification)) func() {
	return s.pushes.add(fn)
}

func (s *NotificationService) Close() {
	s.closed.Store(true)
}

func (s *NotificationService) replace(feed []model.Notification) {
	if s.closed.Load() {
		return
	}

	s.mu.Lock()
	s.notifications = feed
	view := append([]model.Notification(nil), feed...)
	s.mu.Unlock()

	s.subs.notify(view)
}
