package domain

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors for user operations.
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrDuplicateEmail     = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// Application roles, granted at signup by the redeemed invite code.
const (
	RoleParticipant = "participant"
	RoleOrganizer   = "organizer"
	RoleAdmin       = "admin"
)

// ValidRole reports whether role is one of the recognized application roles.
func ValidRole(role string) bool {
	switch role {
	case RoleParticipant, RoleOrganizer, RoleAdmin:
		return true
	}
	return false
}

// RoleAtLeastOrganizer reports whether role carries organizer privileges.
func RoleAtLeastOrganizer(role string) bool {
	return role == RoleOrganizer || role == RoleAdmin
}

// roleRank orders roles for privilege-ceiling checks. Unknown roles rank lowest.
func roleRank(role string) int {
	switch role {
	case RoleAdmin:
		return 3
	case RoleOrganizer:
		return 2
	case RoleParticipant:
		return 1
	}
	return 0
}

// RoleWithinCeiling reports whether granted is at or below the ceiling role.
func RoleWithinCeiling(granted, ceiling string) bool {
	return roleRank(granted) <= roleRank(ceiling)
}

// User represents a registered user
// swagger:model User
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewUser returns a new User with the given fields. ID is typically set by the repository on create.
func NewUser(email, name, role, passwordHash string, createdAt, updatedAt time.Time) *User {
	return &User{
		Email:        email,
		Name:         name,
		Role:         role,
		PasswordHash: passwordHash,
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
	}
}

// PasswordHasher hashes and verifies passwords.
// Implementations may use argon2id, bcrypt, etc.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// TokenIssuer issues tokens (e.g. JWT) for an authenticated user.
type TokenIssuer interface {
	Issue(userID, email, role string, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a token and returns the authenticated user's identity.
type TokenVerifier interface {
	Verify(token string) (userID, role string, err error)
}

// UserRepository defines the interface for user storage
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	Delete(ctx context.Context, id string) error
}

// AuthService defines invite-gated account creation and login.
type AuthService interface {
	// SignUp creates an account gated by an invite code. The invite's role
	// becomes the user's role and the code is consumed exactly once.
	SignUp(ctx context.Context, name, email, password, inviteCode string) (*User, error)
	// Login authenticates the user and returns a signed session token.
	Login(ctx context.Context, email, password string) (token string, user *User, err error)
}
