package eventbus

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/worldexplorer/backend/internal/hub"
	"github.com/worldexplorer/backend/internal/repository"
)

type recordingBus struct {
	mu     sync.Mutex
	events []repository.Event
	closed bool
}

func (b *recordingBus) Publish(ctx context.Context, routingKey string, event any) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event.(repository.Event))
	return nil
}

func (b *recordingBus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
}

func (b *recordingBus) snapshot() []repository.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]repository.Event(nil), b.events...)
}

func TestRelayRepublishesBroadcastEvents(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)
	h := hub.New(logger, 16)
	bus := &recordingBus{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		NewRelay(bus, logger).Run(ctx, h)
	}()

	ev := repository.Event{ID: 3, EventType: "COUNTRY_CREATED", Source: "country-service", Version: "1.0"}

	// The relay subscribes on its own goroutine and the hub keeps no
	// history, so broadcast until the relay has demonstrably seen one.
	deadline := time.After(3 * time.Second)
	for len(bus.snapshot()) == 0 {
		select {
		case <-deadline:
			t.Fatal("relay never republished a broadcast event")
		default:
			h.Broadcast(ev)
			time.Sleep(10 * time.Millisecond)
		}
	}

	got := bus.snapshot()
	require.NotEmpty(t, got)
	assert.Equal(t, int64(3), got[0].ID)
	assert.Equal(t, "COUNTRY_CREATED", got[0].EventType)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("relay did not stop on context cancellation")
	}
}
