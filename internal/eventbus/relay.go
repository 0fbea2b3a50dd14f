package eventbus

import (
	"context"
	"log/slog"

	"github.com/worldexplorer/backend/internal/hub"
)

// Relay mirrors the events the hub broadcasts out to a RabbitMQ fanout
// exchange so consumers outside this process can follow the stream
// without holding an SSE connection open.
//
// The relay rides on an ordinary hub subscription, which means it shares
// the hub's at-most-once semantics: if the relay stalls long enough to
// overflow its subscription buffer it simply misses those events, and a
// failed exchange publish is logged and forgotten. Anything stronger
// belongs to a broker-side consumer replaying the durable log.
type Relay struct {
	bus    Bus
	logger *slog.Logger
}

func NewRelay(bus Bus, logger *slog.Logger) *Relay {
	return &Relay{bus: bus, logger: logger}
}

// Run subscribes to the hub and republishes every event until ctx is
// cancelled. It blocks, so callers start it on its own goroutine.
func (r *Relay) Run(ctx context.Context, h *hub.Hub) {
	sub := h.Subscribe()
	defer sub.Close()

	r.logger.Info("Event relay attached to broadcast hub")

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("Event relay stopped")
			return
		case ev := <-sub.Events():
			// Fanout exchange: the routing key is ignored by the broker.
			if err := r.bus.Publish(ctx, "", ev); err != nil {
				r.logger.Warn("Failed to relay event to exchange",
					slog.Int64("event_id", ev.ID),
					slog.String("event_type", ev.EventType),
					slog.Any("error", err),
				)
			}
		}
	}
}
