package websocket

import (
	"context"

	"devreload/internal/events"

	"go.uber.org/zap"
)

// Reloader is satisfied by *Hub.
type Reloader interface {
	Reload() int
}

// RedisBridge turns reload events published by other processes into hub
// reloads.
type RedisBridge struct {
	subscriber events.Subscriber
	hub        Reloader
	logger     *zap.Logger
}

func NewRedisBridge(subscriber events.Subscriber, hub Reloader, logger *zap.Logger) *RedisBridge {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisBridge{subscriber: subscriber, hub: hub, logger: logger}
}

func (b *RedisBridge) Run(ctx context.Context, channels []string) error {
	return b.subscriber.Subscribe(ctx, channels, b.handle)
}

func (b *RedisBridge) handle(channel string, payload []byte) {
	env, err := events.DecodeEnvelope(payload)
	if err != nil {
		b.logger.Warn("skipping malformed event", zap.String("channel", channel), zap.Error(err))
		return
	}
	if !env.IsReload() {
		b.logger.Debug("ignoring event", zap.String("channel", channel), zap.String("event_type", env.EventType))
		return
	}
	sent := b.hub.Reload()
	b.logger.Info("reload from bus",
		zap.String("channel", channel),
		zap.String("source", env.Source),
		zap.Int("clients", sent))
}
