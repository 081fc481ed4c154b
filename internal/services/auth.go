package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"techconnect/internal/domain"
)

const minPasswordLen = 8

var emailRegexp = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

type authService struct {
	userRepo    domain.UserRepository
	inviteRepo  domain.InviteRepository
	hasher      domain.PasswordHasher
	tokenIssuer domain.TokenIssuer
	tokenExpiry time.Duration
	logger      *slog.Logger
}

// NewAuthService creates an AuthService with the given repositories and auth ports.
func NewAuthService(userRepo domain.UserRepository, inviteRepo domain.InviteRepository, hasher domain.PasswordHasher, tokenIssuer domain.TokenIssuer, tokenExpiry time.Duration, logger *slog.Logger) domain.AuthService {
	return &authService{
		userRepo:    userRepo,
		inviteRepo:  inviteRepo,
		hasher:      hasher,
		tokenIssuer: tokenIssuer,
		tokenExpiry: tokenExpiry,
		logger:      logger,
	}
}

// SignUp creates an account gated by an invite code. The code is consumed
// with a single conditional update after the account exists, so two
// concurrent signups with the same code produce exactly one account: the
// loser's account is rolled back and the specific redemption error returned.
func (s *authService) SignUp(ctx context.Context, name, email, password, inviteCode string) (*domain.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if !emailRegexp.MatchString(email) {
		return nil, fmt.Errorf("%w: invalid email format", domain.ErrInvalidInput)
	}
	if len(password) < minPasswordLen {
		return nil, fmt.Errorf("%w: password must be at least %d characters", domain.ErrInvalidInput, minPasswordLen)
	}
	inviteCode = strings.TrimSpace(inviteCode)
	if inviteCode == "" {
		return nil, domain.ErrInviteNotFound
	}

	// Pre-check for a friendly rejection before any writes. Not authoritative:
	// the conditional update below is what enforces single use.
	inv, err := s.inviteRepo.GetByCode(ctx, inviteCode)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInviteNotFound
		}
		return nil, fmt.Errorf("look up invite: %w", err)
	}
	if inv.Revoked {
		return nil, domain.ErrInviteRevoked
	}
	if inv.Used() {
		return nil, domain.ErrInviteUsed
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now()
	user := domain.NewUser(email, strings.TrimSpace(name), inv.Role, hash, now, now)
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, domain.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	if _, err := s.inviteRepo.Redeem(ctx, inviteCode, user.ID); err != nil {
		// Lost the redemption race (or the code was revoked meanwhile):
		// compensating rollback so no account outlives a failed redemption.
		if delErr := s.userRepo.Delete(ctx, user.ID); delErr != nil {
			s.logger.Error("signup rollback failed, orphaned account", "user_id", user.ID, "err", delErr)
		}
		if errors.Is(err, domain.ErrInviteNotFound) ||
			errors.Is(err, domain.ErrInviteRevoked) ||
			errors.Is(err, domain.ErrInviteUsed) {
			return nil, err
		}
		return nil, fmt.Errorf("redeem invite: %w", err)
	}
	return user, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("get user: %w", err)
	}
	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return "", nil, domain.ErrInvalidCredentials
	}
	token, err := s.tokenIssuer.Issue(user.ID, user.Email, user.Role, s.tokenExpiry)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return token, user, nil
}
