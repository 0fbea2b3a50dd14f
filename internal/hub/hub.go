// Package hub implements the live multicast stream of the event service.
//
// OVERVIEW:
// The Hub fans every broadcast event out to all currently attached
// subscribers. Each subscriber owns an independent buffered channel, so a
// slow or stalled consumer only ever loses its own events and can never
// block the publisher or its peers. The hub keeps no history: a
// subscriber attached after a broadcast simply never sees that event,
// and an event dropped because a subscriber's buffer was full is gone
// for that subscriber. Durable history lives in the event log and is
// served by the query endpoints, not by the hub.
//
// DELIVERY SEMANTICS:
// At-most-once, best-effort. All subscribers of the unfiltered stream
// observe broadcasts in the same relative order because emission is
// serialized; filtered subscribers observe that same order restricted to
// matching events. Delivery failures are logged, never returned.
package hub

import (
	"log/slog"
	"sync"

	"github.com/worldexplorer/backend/internal/repository"
)

// DefaultSubscriberBuffer is the per-subscriber channel capacity used
// when the configured value is zero or negative.
const DefaultSubscriberBuffer = 64

type Hub struct {
	logger *slog.Logger
	buffer int

	// emitMu serializes Broadcast calls so every subscriber observes the
	// same relative event order. Subscribe and Close only take mu, so
	// attaching or detaching never waits on an in-flight broadcast's
	// channel sends.
	emitMu sync.Mutex

	mu   sync.RWMutex
	subs map[*Subscription]struct{}
}

// New creates a hub. One hub is created per process and lives until the
// process exits; there is no shutdown state beyond that.
func New(logger *slog.Logger, subscriberBuffer int) *Hub {
	if subscriberBuffer <= 0 {
		subscriberBuffer = DefaultSubscriberBuffer
	}
	return &Hub{
		logger: logger,
		buffer: subscriberBuffer,
		subs:   make(map[*Subscription]struct{}),
	}
}

// Broadcast delivers the event to every attached subscriber whose filter
// matches. It never blocks on a subscriber and never returns an error:
// when a subscriber's buffer is full the event is dropped for that
// subscriber and a warning is logged.
func (h *Hub) Broadcast(ev repository.Event) {
	h.emitMu.Lock()
	defer h.emitMu.Unlock()

	h.mu.RLock()
	subs := make([]*Subscription, 0, len(h.subs))
	for s := range h.subs {
		subs = append(subs, s)
	}
	h.mu.RUnlock()

	for _, s := range subs {
		if !s.match(ev) {
			continue
		}
		select {
		case s.ch <- ev:
		default:
			h.logger.Warn("Dropped event for slow subscriber",
				slog.Int64("event_id", ev.ID),
				slog.String("event_type", ev.EventType),
			)
		}
	}
}

// Subscribe attaches a new unfiltered subscriber. Only events broadcast
// after the call are observed; there is no replay.
func (h *Hub) Subscribe() *Subscription {
	return h.attach(func(repository.Event) bool { return true })
}

// SubscribeByType attaches a subscriber that only observes events whose
// EventType equals eventType.
func (h *Hub) SubscribeByType(eventType string) *Subscription {
	return h.attach(func(ev repository.Event) bool { return ev.EventType == eventType })
}

// SubscribeBySource attaches a subscriber that only observes events whose
// Source equals source.
func (h *Hub) SubscribeBySource(source string) *Subscription {
	return h.attach(func(ev repository.Event) bool { return ev.Source == source })
}

func (h *Hub) attach(match func(repository.Event) bool) *Subscription {
	s := &Subscription{
		hub:   h,
		ch:    make(chan repository.Event, h.buffer),
		match: match,
	}

	h.mu.Lock()
	h.subs[s] = struct{}{}
	n := len(h.subs)
	h.mu.Unlock()

	h.logger.Info("Subscriber attached to event stream", slog.Int("subscribers", n))
	return s
}

// Subscription is one live, push-based view over the hub's broadcast
// sequence. It is not rewindable; a consumer that wants the stream again
// creates a new subscription.
type Subscription struct {
	hub   *Hub
	ch    chan repository.Event
	match func(repository.Event) bool
	once  sync.Once
}

// Events returns the channel the hub delivers on. The channel is never
// closed; consumers stop by calling Close and abandoning it.
func (s *Subscription) Events() <-chan repository.Event {
	return s.ch
}

// Close detaches the subscription. Safe to call more than once, and a
// normal part of a consumer disconnecting rather than an error. Pending
// buffered events are discarded with the channel.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.hub.mu.Lock()
		delete(s.hub.subs, s)
		n := len(s.hub.subs)
		s.hub.mu.Unlock()

		// An in-flight broadcast may still hold a reference from its
		// snapshot; draining concurrently with one last non-blocking
		// send is fine, closing the channel now is not. The channel is
		// left to the garbage collector once the broadcast snapshot is
		// gone.
		s.hub.logger.Info("Subscriber detached from event stream", slog.Int("subscribers", n))
	})
}
