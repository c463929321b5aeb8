// Package host provides the environment a reload.Listener reloads: a page
// that is loaded once, then reloaded every time its listener fires.
package host

import (
	"context"
	"sync/atomic"

	"devreload/internal/reload"

	"go.uber.org/zap"
)

// Document is what a Page keeps loaded.
type Document interface {
	reload.Reloader
	Open(ctx context.Context) error
	Close() error
}

// Listener is satisfied by *reload.Listener.
type Listener interface {
	Listen(ctx context.Context) (reload.Trigger, error)
}

// ListenerFactory builds the listener for one page load.
type ListenerFactory func(r reload.Reloader) Listener

// DefaultListeners dials reload.Endpoint with the default dialer.
func DefaultListeners(logger *zap.Logger) ListenerFactory {
	return func(r reload.Reloader) Listener {
		return reload.NewListener(r, reload.WithLogger(logger))
	}
}

type Page struct {
	doc       Document
	listeners ListenerFactory
	logger    *zap.Logger
	loads     atomic.Int64
}

func NewPage(doc Document, listeners ListenerFactory, logger *zap.Logger) *Page {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Page{doc: doc, listeners: listeners, logger: logger}
}

// Loads returns how many times the document has been loaded, the first open
// included.
func (p *Page) Loads() int64 {
	return p.loads.Load()
}

// Run opens the document and keeps a fresh listener attached to every load
// until ctx ends. A failed reload is logged and the next listener still
// starts, the same way a page that failed to refresh keeps its old script.
func (p *Page) Run(ctx context.Context) error {
	if err := p.doc.Open(ctx); err != nil {
		return err
	}
	p.loads.Add(1)
	defer func() {
		if err := p.doc.Close(); err != nil {
			p.logger.Warn("close document", zap.Error(err))
		}
	}()

	reloader := reload.ReloaderFunc(func(ctx context.Context) error {
		if err := p.doc.Reload(ctx); err != nil {
			return err
		}
		p.loads.Add(1)
		return nil
	})

	for {
		trigger, err := p.listeners(reloader).Listen(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			p.logger.Error("reload failed", zap.Stringer("trigger", trigger), zap.Error(err))
			continue
		}
		p.logger.Info("page reloaded", zap.Stringer("trigger", trigger), zap.Int64("loads", p.Loads()))
	}
}

// LogDocument only records reloads. It backs `devreload listen` when no
// command is given.
type LogDocument struct {
	Logger *zap.Logger
}

func (d LogDocument) Open(ctx context.Context) error {
	d.Logger.Info("page opened")
	return nil
}

func (d LogDocument) Reload(ctx context.Context) error {
	d.Logger.Info("reload")
	return nil
}

func (d LogDocument) Close() error {
	return nil
}
