package channel

import (
	"context"
	"errors"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Oumaima1mal/task-pilot-front/internal/gateway"
	"github.com/Oumaima1mal/task-pilot-front/internal/logging"
	model "github.com/Oumaima1mal/task-pilot-front/pkg/models"
)

type State int32

const (
	Disconnected State = iota
	Connecting
	Connected
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return "disconnected"
	}
}

type EventKind int

const (
	EventConnected EventKind = iota
	EventNotification
	EventDisconnected
)

type Event struct {
	Kind         EventKind
	Notification model.Notification
}

type Credentials interface {
	Token() string
	Valid() bool
}

var ErrAlreadyRunning = errors.New("notification channel already running")

// Channel owns a single push connection and keeps it alive while the session is valid.
type Channel struct {
	url            string
	creds          Credentials
	reconnectDelay time.Duration
	dialer         *websocket.Dialer

	events  chan Event
	state   atomic.Int32
	running atomic.Bool
}

func New(wsURL string, creds Credentials, reconnectDelay time.Duration) *Channel {
	return &Channel{
		url:            wsURL,
		creds:          creds,
		reconnectDelay: reconnectDelay,
		dialer:         websocket.DefaultDialer,
		events:         make(chan Event, 64),
	}
}

// Events is closed once Run returns.
func (c *Channel) Events() <-chan Event {
	return c.events
}

func (c *Channel) State() State {
	return State(c.state.Load())
}

// Run connects, reads pushes and reconnects after every drop until ctx is cancelled.
// Retries are unbounded; attempts are skipped while the credential is invalid.
func (c *Channel) Run(ctx context.Context) error {
	if !c.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer close(c.events)

	for {
		if c.creds.Valid() {
			c.session(ctx)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.reconnectDelay):
		}
	}
}

func (c *Channel) session(ctx context.Context) {
	c.setState(Connecting)

	endpoint, err := c.endpoint()
	if err != nil {
		logging.Logger.Errorf("invalid websocket url: %v", err)
		c.setState(Disconnected)
		return
	}

	conn, _, err := c.dialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		logging.Logger.Warnf("websocket dial failed: %v", err)
		c.setState(Disconnected)
		return
	}

	c.setState(Connected)
	logging.Logger.Info("websocket connected")
	c.emit(ctx, Event{Kind: EventConnected})

	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				logging.Logger.Warnf("websocket closed: %v", err)
			}
			break
		}

		n, err := gateway.DecodeNotification(payload)
		if err != nil {
			logging.Logger.Warnf("dropping malformed push: %v", err)
			continue
		}
		c.emit(ctx, Event{Kind: EventNotification, Notification: n})
	}

	close(done)
	_ = conn.Close()
	c.setState(Disconnected)
	c.emit(ctx, Event{Kind: EventDisconnected})
}

func (c *Channel) endpoint() (string, error) {
	u, err := url.Parse(c.url)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("token", c.creds.Token())
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (c *Channel) emit(ctx context.Context, ev Event) {
	select {
	case c.events <- ev:
	case <-ctx.Done():
	}
}

func (c *Channel) setState(s State) {
	c.state.Store(int32(s))
}
