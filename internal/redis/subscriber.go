package redis

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

type Subscriber struct {
	client *redis.Client
}

func NewSubscriber(client *redis.Client) *Subscriber {
	return &Subscriber{client: client}
}

// Subscribe listens on channels until ctx ends. Names holding glob
// characters are pattern subscriptions, the rest are exact channels. The
// subscription is confirmed before handler sees any message, so a dead
// server fails here instead of inside the loop.
func (s *Subscriber) Subscribe(ctx context.Context, channels []string, handler func(channel string, payload []byte)) error {
	exact, patterns := splitChannels(channels)

	sub := s.client.Subscribe(ctx)
	defer sub.Close()
	if len(exact) > 0 {
		if err := sub.Subscribe(ctx, exact...); err != nil {
			return fmt.Errorf("subscribe %v: %w", exact, err)
		}
	}
	if len(patterns) > 0 {
		if err := sub.PSubscribe(ctx, patterns...); err != nil {
			return fmt.Errorf("psubscribe %v: %w", patterns, err)
		}
	}

	for {
		msg, err := sub.ReceiveMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		handler(msg.Channel, []byte(msg.Payload))
	}
}

func splitChannels(channels []string) (exact, patterns []string) {
	for _, ch := range channels {
		if ch == "" {
			continue
		}
		if strings.ContainsAny(ch, "*?[") {
			patterns = append(patterns, ch)
		} else {
			exact = append(exact, ch)
		}
	}
	return exact, patterns
}
