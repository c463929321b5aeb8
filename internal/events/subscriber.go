package events

import "context"

type Subscriber interface {
	Subscribe(ctx context.Context, channels []string, handler func(channel string, payload []byte)) error
}

type Publisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// PublishReload sends a reload envelope on channel.
func PublishReload(ctx context.Context, pub Publisher, channel, source string) (Envelope, error) {
	env := NewReloadEnvelope(source)
	data, err := env.Marshal()
	if err != nil {
		return Envelope{}, err
	}
	if err := pub.Publish(ctx, channel, data); err != nil {
		return Envelope{}, err
	}
	return env, nil
}
