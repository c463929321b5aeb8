package redis

import (
	"context"

	"devreload/internal/events"

	"github.com/redis/go-redis/v9"
)

var (
	_ events.Publisher  = (*Publisher)(nil)
	_ events.Subscriber = (*Subscriber)(nil)
)

type Publisher struct {
	client *redis.Client
}

func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client}
}

func (p *Publisher) Publish(ctx context.Context, channel string, payload []byte) error {
	_, err := p.PublishCount(ctx, channel, payload)
	return err
}

// PublishCount publishes payload and returns how many subscribers received it.
func (p *Publisher) PublishCount(ctx context.Context, channel string, payload []byte) (int64, error) {
	return p.client.Publish(ctx, channel, payload).Result()
}
