package postgres

import (
	"context"
	"database/sql"

	"techconnect/internal/domain"
)

type commentRepository struct {
	DB *sql.DB
}

// NewCommentRepository returns a domain.CommentRepository implemented with Postgres.
func NewCommentRepository(db *sql.DB) domain.CommentRepository {
	return &commentRepository{DB: db}
}

func (r *commentRepository) Create(ctx context.Context, c *domain.Comment) error {
	query := `
		INSERT INTO comments (event_id, user_id, name, text, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query, c.EventID, c.UserID, c.Name, c.Text, c.CreatedAt).Scan(&c.ID)
}

func (r *commentRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.Comment, error) {
	query := `
		SELECT id, event_id, user_id, name, text, created_at
		FROM comments
		WHERE event_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []*domain.Comment
	for rows.Next() {
		c := &domain.Comment{}
		if err := rows.Scan(&c.ID, &c.EventID, &c.UserID, &c.Name, &c.Text, &c.CreatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if comments == nil {
		comments = []*domain.Comment{}
	}
	return comments, nil
}
