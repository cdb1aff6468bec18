package realtime

import (
	"context"
	"encoding/json"

	"busreserve/models"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// Subscribe relays events published on channel to the hub's clients until ctx is done.
// Every API instance runs one, so a client sees events no matter which instance committed them.
func (h *Hub) Subscribe(ctx context.Context, client *redis.Client, channel string) {
	pubsub := client.Subscribe(ctx, channel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var event models.Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				h.logger.Warn("Discarding malformed event", zap.String("channel", channel), zap.Error(err))
				continue
			}
			if err := h.Dispatch(ctx, event); err != nil {
				h.logger.Warn("Failed to relay event", zap.String("eventId", event.ID), zap.Error(err))
			}
		}
	}
}
