package broadcast

import (
	"log/slog"
	"sync"

	"techconnect/internal/domain"
)

// Hub is the process-wide publish/subscribe router. It groups subscribers
// by event identifier and fans typed notifications out to everyone joined
// to that event's channel. Channels are ephemeral: created on first Join,
// dropped when the last subscriber leaves. The hub holds no history — a
// subscriber joining after a Publish never sees that message.
type Hub struct {
	mu        sync.RWMutex
	channels  map[string]map[domain.Subscriber]struct{}
	connected map[domain.Subscriber]struct{}
	logger    *slog.Logger
}

// NewHub returns an empty Hub.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		channels:  make(map[string]map[domain.Subscriber]struct{}),
		connected: make(map[domain.Subscriber]struct{}),
		logger:    logger,
	}
}

// Connect registers sub as an open connection. Connected subscribers
// receive global-scope messages even before joining any event channel.
func (h *Hub) Connect(sub domain.Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.connected[sub] = struct{}{}
}

// Join adds sub to the channel for eventID. Idempotent.
func (h *Hub) Join(eventID string, sub domain.Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	ch, ok := h.channels[eventID]
	if !ok {
		ch = make(map[domain.Subscriber]struct{})
		h.channels[eventID] = ch
	}
	ch[sub] = struct{}{}
}

// Leave removes sub from the channel for eventID. No-op if absent.
func (h *Hub) Leave(eventID string, sub domain.Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leaveLocked(eventID, sub)
}

func (h *Hub) leaveLocked(eventID string, sub domain.Subscriber) {
	ch, ok := h.channels[eventID]
	if !ok {
		return
	}
	delete(ch, sub)
	if len(ch) == 0 {
		delete(h.channels, eventID)
	}
}

// OnDisconnect removes sub from every channel it belonged to and from the
// connected set. Callers must treat an abruptly closed connection exactly
// like an explicit Leave of everything.
func (h *Hub) OnDisconnect(sub domain.Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.connected, sub)
	for eventID, ch := range h.channels {
		delete(ch, sub)
		if len(ch) == 0 {
			delete(h.channels, eventID)
		}
	}
}

// Publish delivers msg to every subscriber currently on the channel of
// msg.EventID, or to all connected subscribers when EventID is empty.
// Delivery is fire-and-forget: failures never propagate to the publisher.
// Subscribers whose Notify reports unreachable are pruned from future
// fan-out.
func (h *Hub) Publish(msg *domain.BroadcastMessage) {
	if msg == nil {
		return
	}
	targets := h.snapshot(msg.EventID)
	var dead []domain.Subscriber
	for _, sub := range targets {
		if !sub.Notify(msg) {
			dead = append(dead, sub)
		}
	}
	if len(dead) > 0 {
		h.logger.Debug("pruning unreachable subscribers", "kind", msg.Kind, "event_id", msg.EventID, "count", len(dead))
		for _, sub := range dead {
			h.OnDisconnect(sub)
		}
	}
}

// snapshot copies the current membership so delivery happens outside the
// lock. A Join racing with a Publish may or may not see the message.
func (h *Hub) snapshot(eventID string) []domain.Subscriber {
	h.mu.RLock()
	defer h.mu.RUnlock()
	var src map[domain.Subscriber]struct{}
	if eventID == "" {
		src = h.connected
	} else {
		src = h.channels[eventID]
	}
	if len(src) == 0 {
		return nil
	}
	out := make([]domain.Subscriber, 0, len(src))
	for sub := range src {
		out = append(out, sub)
	}
	return out
}
