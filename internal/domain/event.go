package domain

import (
	"context"
	"errors"
	"time"
)

// ErrEventFull is returned when a registration would exceed event capacity.
var ErrEventFull = errors.New("event is full")

// Event represents a published community event
// swagger:model Event
type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	College     string    `json:"college"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	Location    string    `json:"location"`
	Type        string    `json:"type"`
	Capacity    *int      `json:"capacity"`
	Image       string    `json:"image"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// EventFilter narrows event listings. Zero values mean "no constraint".
type EventFilter struct {
	Query    string
	Type     string
	DateFrom *time.Time
	DateTo   *time.Time
}

// EventPatch holds the updatable event fields; nil means "leave unchanged".
type EventPatch struct {
	Title       *string
	College     *string
	Description *string
	Date        *time.Time
	Location    *string
	Type        *string
	Capacity    *int
	Image       *string
}

// EventRepository defines the interface for event storage
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	List(ctx context.Context, filter EventFilter) ([]*Event, error)
	// ListUpcoming returns events dated now or later, soonest first, capped at limit.
	ListUpcoming(ctx context.Context, now time.Time, limit int) ([]*Event, error)
	Update(ctx context.Context, id string, patch EventPatch) (*Event, error)
	Delete(ctx context.Context, id string) error
}

// EventService defines the business logic for the event directory.
type EventService interface {
	CreateEvent(ctx context.Context, actorID, actorRole string, event *Event) error
	GetEventByID(ctx context.Context, eventID string) (*Event, error)
	ListEvents(ctx context.Context, filter EventFilter) ([]*Event, error)
	ListUpcomingEvents(ctx context.Context, limit int) ([]*Event, error)
	UpdateEvent(ctx context.Context, actorID, actorRole, eventID string, patch EventPatch) (*Event, error)
	DeleteEvent(ctx context.Context, actorID, actorRole, eventID string) error
}
