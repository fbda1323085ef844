package reminders

import "github.com/Oumaima1mal/task-pilot-front/internal/logging"

// Notifier raises a user-visible notification outside the application.
type Notifier interface {
	Notify(title, body string)
}

type LogNotifier struct{}

func (LogNotifier) Notify(title, body string) {
	logging.Logger.WithField("title", title).Info(body)
}

type NotifierFunc func(title, body string)

func (f NotifierFunc) Notify(title, body string) {
	f(title, body)
}
