package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"techconnect/internal/domain"
)

type inviteRepository struct {
	DB *sql.DB
}

// NewInviteRepository returns a domain.InviteRepository implemented with Postgres.
func NewInviteRepository(db *sql.DB) domain.InviteRepository {
	return &inviteRepository{DB: db}
}

func (r *inviteRepository) Create(ctx context.Context, inv *domain.InviteCode) error {
	query := `
		INSERT INTO invite_codes (code, role, created_by, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query, inv.Code, inv.Role, inv.CreatedBy, inv.CreatedAt).Scan(&inv.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return domain.ErrDuplicateCode
		}
		return err
	}
	return nil
}

func (r *inviteRepository) GetByCode(ctx context.Context, code string) (*domain.InviteCode, error) {
	query := `
		SELECT id, code, role, created_by, used_by, used_at, revoked, created_at
		FROM invite_codes
		WHERE code = $1
	`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, code))
}

func (r *inviteRepository) GetByID(ctx context.Context, id string) (*domain.InviteCode, error) {
	query := `
		SELECT id, code, role, created_by, used_by, used_at, revoked, created_at
		FROM invite_codes
		WHERE id = $1
	`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, id))
}

// Redeem consumes the code for userID with a single conditional update, so
// two concurrent redemptions of the same code serialize at the storage
// layer: exactly one matches the WHERE clause. used_by and used_at are set
// together, never independently.
func (r *inviteRepository) Redeem(ctx context.Context, code, userID string) (*domain.InviteCode, error) {
	query := `
		UPDATE invite_codes
		SET used_by = $1, used_at = $2
		WHERE code = $3 AND used_at IS NULL AND NOT revoked
		RETURNING id, code, role, created_by, used_by, used_at, revoked, created_at
	`
	inv, err := r.scanOne(r.DB.QueryRowContext(ctx, query, userID, time.Now(), code))
	if err == nil {
		return inv, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	// Zero rows matched: classify for a specific rejection.
	existing, lookupErr := r.GetByCode(ctx, code)
	if lookupErr != nil {
		if errors.Is(lookupErr, domain.ErrNotFound) {
			return nil, domain.ErrInviteNotFound
		}
		return nil, lookupErr
	}
	if existing.Revoked {
		return nil, domain.ErrInviteRevoked
	}
	if existing.Used() {
		return nil, domain.ErrInviteUsed
	}
	// The code was revoked-then-unrevoked between the update and the lookup.
	return nil, fmt.Errorf("redeem invite: concurrent modification")
}

func (r *inviteRepository) SetRevoked(ctx context.Context, id string, revoked bool) (*domain.InviteCode, error) {
	query := `
		UPDATE invite_codes
		SET revoked = $1
		WHERE id = $2
		RETURNING id, code, role, created_by, used_by, used_at, revoked, created_at
	`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, revoked, id))
}

func (r *inviteRepository) List(ctx context.Context, params domain.PaginationParams) ([]*domain.InviteCode, int, error) {
	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM invite_codes`).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT id, code, role, created_by, used_by, used_at, revoked, created_at
		FROM invite_codes
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.DB.QueryContext(ctx, query, params.PageSize, params.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var invs []*domain.InviteCode
	for rows.Next() {
		inv := &domain.InviteCode{}
		if err := rows.Scan(&inv.ID, &inv.Code, &inv.Role, &inv.CreatedBy, &inv.UsedBy, &inv.UsedAt, &inv.Revoked, &inv.CreatedAt); err != nil {
			return nil, 0, err
		}
		invs = append(invs, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if invs == nil {
		invs = []*domain.InviteCode{}
	}
	return invs, total, nil
}

func (r *inviteRepository) scanOne(row *sql.Row) (*domain.InviteCode, error) {
	inv := &domain.InviteCode{}
	err := row.Scan(&inv.ID, &inv.Code, &inv.Role, &inv.CreatedBy, &inv.UsedBy, &inv.UsedAt, &inv.Revoked, &inv.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return inv, nil
}
