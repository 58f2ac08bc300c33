package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/redis/go-redis/v9"
)

const roomChannelPrefix = "soup:room:"

// RedisBroker relays room events through Redis pub/sub so that every
// instance behind a load balancer sees them. Delivery to local streams is
// handled by an embedded MemoryBroker fed from Run.
type RedisBroker struct {
	rdb    *redis.Client
	local  *MemoryBroker
	logger *slog.Logger
}

func NewRedisBroker(rdb *redis.Client, logger *slog.Logger) *RedisBroker {
	return &RedisBroker{rdb: rdb, local: NewMemoryBroker(), logger: logger}
}

func (b *RedisBroker) Subscribe(room string) chan []byte {
	return b.local.Subscribe(room)
}

func (b *RedisBroker) Unsubscribe(room string, ch chan []byte) {
	b.local.Unsubscribe(room, ch)
}

// Publish sends the event to Redis. If Redis is unreachable the event is
// still delivered to this instance's subscribers.
func (b *RedisBroker) Publish(ctx context.Context, room string, event RoomEvent) {
	data, _ := json.Marshal(event)
	if err := b.rdb.Publish(ctx, roomChannelPrefix+room, data).Err(); err != nil {
		b.logger.Error("publishing room event", "room", room, "type", event.Type, "error", err)
		b.local.deliver(room, data)
	}
}

// Run forwards Redis messages to local subscribers until ctx is done.
func (b *RedisBroker) Run(ctx context.Context) error {
	sub := b.rdb.PSubscribe(ctx, roomChannelPrefix+"*")
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("subscribing to room events: %w", err)
	}

	msgs := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}
			room := strings.TrimPrefix(msg.Channel, roomChannelPrefix)
			b.local.deliver(room, []byte(msg.Payload))
		}
	}
}
