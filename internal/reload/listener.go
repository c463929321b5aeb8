// Package reload implements the client half of the hot-reload workflow: a
// listener that holds one WebSocket connection to the dev server and reloads
// its page when told to, or shortly after the connection goes away.
package reload

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	// Endpoint is the dev server's hot-reload socket.
	Endpoint = "ws://localhost:8000/hot-reload"

	// Message is the only payload the listener acts on.
	Message = "reload"

	// CloseDelay is how long the listener waits after the connection closes
	// before reloading.
	CloseDelay = 1000 * time.Millisecond
)

// Trigger reports which of the two reactions ended a Listen call.
type Trigger int

const (
	TriggerNone Trigger = iota
	TriggerMessage
	TriggerClosed
)

func (t Trigger) String() string {
	switch t {
	case TriggerMessage:
		return "message"
	case TriggerClosed:
		return "closed"
	default:
		return "none"
	}
}

// Reloader performs a full reload of whatever hosts the listener.
type Reloader interface {
	Reload(ctx context.Context) error
}

type ReloaderFunc func(ctx context.Context) error

func (f ReloaderFunc) Reload(ctx context.Context) error {
	return f(ctx)
}

// Dialer opens the WebSocket connection. *websocket.Dialer satisfies it.
type Dialer interface {
	DialContext(ctx context.Context, urlStr string, requestHeader http.Header) (*websocket.Conn, *http.Response, error)
}

// Clock schedules the delayed reload.
type Clock interface {
	After(d time.Duration) <-chan time.Time
}

type realClock struct{}

func (realClock) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}

type Listener struct {
	endpoint string
	reloader Reloader
	dialer   Dialer
	clock    Clock
	logger   *zap.Logger
}

type Option func(*Listener)

func WithEndpoint(endpoint string) Option {
	return func(l *Listener) { l.endpoint = endpoint }
}

func WithDialer(d Dialer) Option {
	return func(l *Listener) { l.dialer = d }
}

func WithClock(c Clock) Option {
	return func(l *Listener) { l.clock = c }
}

func WithLogger(logger *zap.Logger) Option {
	return func(l *Listener) { l.logger = logger }
}

func NewListener(reloader Reloader, opts ...Option) *Listener {
	l := &Listener{
		endpoint: Endpoint,
		reloader: reloader,
		dialer:   websocket.DefaultDialer,
		clock:    realClock{},
		logger:   zap.L().Named("reload"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Listen connects to the endpoint and blocks until one reaction has run:
// a "reload" text message reloads immediately, and any closure (including a
// failed dial) reloads after CloseDelay. The reloader is called at most once.
// If ctx ends first, Listen returns ctx.Err() without reloading.
func (l *Listener) Listen(ctx context.Context) (Trigger, error) {
	conn, _, err := l.dialer.DialContext(ctx, l.endpoint, nil)
	if err != nil {
		if ctx.Err() != nil {
			return TriggerNone, ctx.Err()
		}
		l.logger.Debug("dial failed", zap.String("endpoint", l.endpoint), zap.Error(err))
		return l.reloadAfterClose(ctx)
	}
	l.logger.Debug("connected", zap.String("endpoint", l.endpoint))

	done := make(chan Trigger, 1)
	go l.readLoop(conn, done)

	var trigger Trigger
	select {
	case <-ctx.Done():
		_ = conn.Close()
		<-done
		return TriggerNone, ctx.Err()
	case trigger = <-done:
	}
	_ = conn.Close()

	if trigger == TriggerMessage {
		l.logger.Info("reload requested")
		return trigger, l.reloader.Reload(ctx)
	}
	return l.reloadAfterClose(ctx)
}

// readLoop stops at the first "reload" message or read error.
func (l *Listener) readLoop(conn *websocket.Conn, done chan<- Trigger) {
	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			l.logger.Debug("connection closed", zap.Error(err))
			done <- TriggerClosed
			return
		}
		if messageType == websocket.TextMessage && string(data) == Message {
			done <- TriggerMessage
			return
		}
	}
}

func (l *Listener) reloadAfterClose(ctx context.Context) (Trigger, error) {
	select {
	case <-ctx.Done():
		return TriggerNone, ctx.Err()
	case <-l.clock.After(CloseDelay):
	}
	l.logger.Info("reloading after disconnect", zap.Duration("delay", CloseDelay))
	return TriggerClosed, l.reloader.Reload(ctx)
}
