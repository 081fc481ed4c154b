package domain

// Broadcast message kinds. KindEventCreated is delivered on the global
// channel (every connected subscriber); the rest are scoped to the
// channel of their event.
const (
	KindEventCreated    = "event:created"
	KindEventUpdated    = "event:updated"
	KindEventRegistered = "event:registered"
	KindCommentNew      = "comment:new"
)

// BroadcastMessage is a typed notification about an event mutation.
// EventID is empty for global-scope messages.
type BroadcastMessage struct {
	Kind    string `json:"kind"`
	EventID string `json:"event_id,omitempty"`
	Payload any    `json:"payload,omitempty"`
}

// Subscriber is an open, addressable connection capable of receiving push
// notifications. Notify must not block; it reports false once the
// subscriber is no longer reachable so the hub can prune it lazily.
type Subscriber interface {
	Notify(msg *BroadcastMessage) bool
}

// Broadcaster fans typed notifications out to subscribers grouped by event
// channel. Delivery is best-effort and fire-and-forget: a missed message is
// never an error, and publishers are never told about unreachable
// subscribers.
type Broadcaster interface {
	Connect(sub Subscriber)
	Join(eventID string, sub Subscriber)
	Leave(eventID string, sub Subscriber)
	Publish(msg *BroadcastMessage)
	OnDisconnect(sub Subscriber)
}
