package domain

import (
	"context"
	"time"
)

// Attendee represents an RSVP for an event. Registration is open: only an
// email address is required, no account.
// swagger:model Attendee
type Attendee struct {
	ID        string    `json:"id"`
	EventID   string    `json:"event_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// NewAttendee creates a new Attendee. ID is typically set by the repository on create.
func NewAttendee(eventID, name, email string, createdAt time.Time) *Attendee {
	return &Attendee{
		EventID:   eventID,
		Name:      name,
		Email:     email,
		CreatedAt: createdAt,
	}
}

// AttendeeRepository defines storage operations for event attendees.
type AttendeeRepository interface {
	Create(ctx context.Context, att *Attendee) error
	CountByEventID(ctx context.Context, eventID string) (int, error)
	ListByEventID(ctx context.Context, eventID string) ([]*Attendee, error)
}

// RegistrationService records RSVPs and comments, broadcasting each
// mutation to subscribers of the event's channel after it is committed.
type RegistrationService interface {
	// Register records an RSVP. Returns ErrEventFull when the event has a
	// capacity and it is already reached.
	Register(ctx context.Context, eventID, name, email string) (*Attendee, error)
	AddComment(ctx context.Context, eventID string, userID *string, name, text string) (*Comment, error)
	ListComments(ctx context.Context, eventID string) ([]*Comment, error)
}
