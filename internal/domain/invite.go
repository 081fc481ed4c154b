package domain

import (
	"context"
	"errors"
	"time"
)

// Redemption-path errors. Each failed precondition is distinct so callers
// can present specific messaging.
var (
	ErrInviteNotFound = errors.New("invalid invite code")
	ErrInviteRevoked  = errors.New("invite code revoked")
	ErrInviteUsed     = errors.New("invite code already used")
	ErrInvalidRole    = errors.New("invalid role")
)

// ErrDuplicateCode is returned by InviteRepository.Create when the generated
// token collides with an existing one. Callers regenerate and retry.
var ErrDuplicateCode = errors.New("invite code already exists")

// InviteCode is a single-use, revocable token gating account creation.
// Redeeming it grants Role to the new account. UsedBy and UsedAt are set
// together, exactly once; revocation is reversible but never un-uses a code.
// swagger:model InviteCode
type InviteCode struct {
	ID        string     `json:"id"`
	Code      string     `json:"code"`
	Role      string     `json:"role"`
	CreatedBy string     `json:"created_by"`
	UsedBy    *string    `json:"used_by"`
	UsedAt    *time.Time `json:"used_at"`
	Revoked   bool       `json:"revoked"`
	CreatedAt time.Time  `json:"created_at"`
}

// Used reports whether the code has been redeemed.
func (c *InviteCode) Used() bool {
	return c.UsedAt != nil
}

// InviteRepository defines storage operations for invite codes.
type InviteRepository interface {
	Create(ctx context.Context, inv *InviteCode) error
	GetByCode(ctx context.Context, code string) (*InviteCode, error)
	GetByID(ctx context.Context, id string) (*InviteCode, error)
	// Redeem atomically marks the code used by userID. The check-and-set is a
	// single conditional update: of two concurrent redemptions of the same
	// code exactly one succeeds. Failures are ErrInviteNotFound,
	// ErrInviteRevoked, or ErrInviteUsed.
	Redeem(ctx context.Context, code, userID string) (*InviteCode, error)
	SetRevoked(ctx context.Context, id string, revoked bool) (*InviteCode, error)
	List(ctx context.Context, params PaginationParams) ([]*InviteCode, int, error)
}

// InviteService gates account creation behind single-use, revocable tokens.
type InviteService interface {
	// Issue mints count fresh codes granting role. Only organizers and admins
	// may issue, and only at or below their own role.
	Issue(ctx context.Context, issuerID, issuerRole, role string, count int) ([]*InviteCode, error)
	// Redeem consumes the code on behalf of userID and returns the granted role.
	Redeem(ctx context.Context, code, userID string) (string, error)
	SetRevoked(ctx context.Context, actorRole, id string, revoked bool) (*InviteCode, error)
	List(ctx context.Context, actorRole string, params PaginationParams) ([]*InviteCode, int, error)
	// SendCodes emails one issued code to each recipient. Send failures are
	// collected per address and never fail the call.
	SendCodes(ctx context.Context, codes []*InviteCode, recipients []string) (failed []string)
}
