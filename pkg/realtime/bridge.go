package realtime

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/pkg/logger"
	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/pkg/redis"
)

// Publisher is the outbound half of the fanout bridge. The chat service
// publishes through it so events reach subscribers on every instance.
type Publisher interface {
	PublishEvent(ctx context.Context, event Event) error
}

// Bridge fans events through redis pub/sub: publish locally, relay remotely.
type Bridge struct {
	client *redis.Client
	hub    *Hub
	logg   *logger.Logger
}

// NewBridge wires the hub to the redis fanout channel.
func NewBridge(client *redis.Client, hub *Hub, logg *logger.Logger) (*Bridge, error) {
	if client == nil {
		return nil, errors.New("redis client required")
	}
	if hub == nil {
		return nil, errors.New("hub required")
	}
	return &Bridge{client: client, hub: hub, logg: logg}, nil
}

// PublishEvent pushes the event onto the post's redis channel. Every instance,
// including this one, picks it up via the relay loop.
func (b *Bridge) PublishEvent(ctx context.Context, event Event) error {
	raw, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return b.client.Publish(ctx, b.client.ChatChannel(event.PostID.String()), raw)
}

// Run consumes the redis subscription and rebroadcasts frames to the local hub
// until the context is canceled.
func (b *Bridge) Run(ctx context.Context) error {
	sub, err := b.client.Subscribe(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = sub.Close() }()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return errors.New("realtime subscription closed")
			}
			var event Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				if b.logg != nil {
					b.logg.Warn(ctx, "realtime: dropping malformed event")
				}
				continue
			}
			b.hub.Broadcast(event)
		}
	}
}
