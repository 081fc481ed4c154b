package domain

import (
	"context"
	"time"
)

// Comment is a short note on an event's page. Guests may comment without an
// account, in which case UserID is nil and Name is whatever they supplied.
// swagger:model Comment
type Comment struct {
	ID        string    `json:"id"`
	EventID   string    `json:"event_id"`
	UserID    *string   `json:"user_id"`
	Name      string    `json:"name"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// CommentRepository defines storage operations for event comments.
type CommentRepository interface {
	Create(ctx context.Context, c *Comment) error
	ListByEventID(ctx context.Context, eventID string) ([]*Comment, error)
}
