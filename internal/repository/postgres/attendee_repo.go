package postgres

import (
	"context"
	"database/sql"

	"techconnect/internal/domain"
)

type attendeeRepository struct {
	DB *sql.DB
}

// NewAttendeeRepository returns a domain.AttendeeRepository implemented with Postgres.
func NewAttendeeRepository(db *sql.DB) domain.AttendeeRepository {
	return &attendeeRepository{DB: db}
}

func (r *attendeeRepository) Create(ctx context.Context, att *domain.Attendee) error {
	query := `
		INSERT INTO attendees (event_id, name, email, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query, att.EventID, att.Name, att.Email, att.CreatedAt).Scan(&att.ID)
}

func (r *attendeeRepository) CountByEventID(ctx context.Context, eventID string) (int, error) {
	var count int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM attendees WHERE event_id = $1`, eventID).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *attendeeRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.Attendee, error) {
	query := `
		SELECT id, event_id, name, email, created_at
		FROM attendees
		WHERE event_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var atts []*domain.Attendee
	for rows.Next() {
		att := &domain.Attendee{}
		if err := rows.Scan(&att.ID, &att.EventID, &att.Name, &att.Email, &att.CreatedAt); err != nil {
			return nil, err
		}
		atts = append(atts, att)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if atts == nil {
		atts = []*domain.Attendee{}
	}
	return atts, nil
}
