package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"techconnect/internal/domain"
)

const (
	// Issue clamps count to this range rather than rejecting out-of-range values.
	minInvitesPerCall = 1
	maxInvitesPerCall = 20

	// 6 random bytes = 48 bits of entropy, matching the collision bound the
	// code column's unique constraint backs up.
	inviteTokenBytes = 6

	// Attempts before giving up on a token collision. With 48-bit tokens a
	// single retry is already vanishingly rare.
	maxTokenAttempts = 5
)

type inviteService struct {
	inviteRepo     domain.InviteRepository
	emailService   domain.EmailService
	logger         *slog.Logger
	contextTimeout time.Duration
}

// NewInviteService creates an InviteService with the given repository.
// emailService may be nil, in which case SendCodes reports every recipient failed.
func NewInviteService(inviteRepo domain.InviteRepository, emailService domain.EmailService, logger *slog.Logger, timeout time.Duration) domain.InviteService {
	return &inviteService{
		inviteRepo:     inviteRepo,
		emailService:   emailService,
		logger:         logger,
		contextTimeout: timeout,
	}
}

func (s *inviteService) Issue(ctx context.Context, issuerID, issuerRole, role string, count int) ([]*domain.InviteCode, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if !domain.RoleAtLeastOrganizer(issuerRole) {
		return nil, domain.ErrForbidden
	}
	role = strings.TrimSpace(strings.ToLower(role))
	if role == "" {
		role = domain.RoleParticipant
	}
	if !domain.ValidRole(role) {
		return nil, domain.ErrInvalidRole
	}
	// An issuer may only grant at or below their own role: an organizer
	// cannot mint admin invites.
	if !domain.RoleWithinCeiling(role, issuerRole) {
		return nil, domain.ErrForbidden
	}

	if count < minInvitesPerCall {
		count = minInvitesPerCall
	}
	if count > maxInvitesPerCall {
		count = maxInvitesPerCall
	}

	created := make([]*domain.InviteCode, 0, count)
	for i := 0; i < count; i++ {
		inv, err := s.createWithFreshToken(ctx, issuerID, role)
		if err != nil {
			return nil, err
		}
		created = append(created, inv)
	}
	return created, nil
}

// createWithFreshToken inserts one code, regenerating the token on the rare
// unique-constraint collision instead of failing the caller.
func (s *inviteService) createWithFreshToken(ctx context.Context, issuerID, role string) (*domain.InviteCode, error) {
	for attempt := 0; attempt < maxTokenAttempts; attempt++ {
		code, err := generateInviteToken()
		if err != nil {
			return nil, fmt.Errorf("generate invite token: %w", err)
		}
		inv := &domain.InviteCode{
			Code:      code,
			Role:      role,
			CreatedBy: issuerID,
			CreatedAt: time.Now(),
		}
		err = s.inviteRepo.Create(ctx, inv)
		if err == nil {
			return inv, nil
		}
		if errors.Is(err, domain.ErrDuplicateCode) {
			s.logger.Warn("invite token collision, regenerating", "attempt", attempt+1)
			continue
		}
		return nil, fmt.Errorf("create invite code: %w", err)
	}
	return nil, fmt.Errorf("create invite code: token collisions exhausted retries")
}

// generateInviteToken returns a short URL-safe token (base64url, no padding).
func generateInviteToken() (string, error) {
	b := make([]byte, inviteTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func (s *inviteService) Redeem(ctx context.Context, code, userID string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	code = strings.TrimSpace(code)
	if code == "" {
		return "", domain.ErrInviteNotFound
	}
	inv, err := s.inviteRepo.Redeem(ctx, code, userID)
	if err != nil {
		if errors.Is(err, domain.ErrInviteNotFound) ||
			errors.Is(err, domain.ErrInviteRevoked) ||
			errors.Is(err, domain.ErrInviteUsed) {
			return "", err
		}
		return "", fmt.Errorf("redeem invite: %w", err)
	}
	return inv.Role, nil
}

func (s *inviteService) SetRevoked(ctx context.Context, actorRole, id string, revoked bool) (*domain.InviteCode, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if !domain.RoleAtLeastOrganizer(actorRole) {
		return nil, domain.ErrForbidden
	}
	inv, err := s.inviteRepo.SetRevoked(ctx, id, revoked)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("set invite revoked: %w", err)
	}
	return inv, nil
}

func (s *inviteService) List(ctx context.Context, actorRole string, params domain.PaginationParams) ([]*domain.InviteCode, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if !domain.RoleAtLeastOrganizer(actorRole) {
		return nil, 0, domain.ErrForbidden
	}
	invs, total, err := s.inviteRepo.List(ctx, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list invites: %w", err)
	}
	return invs, total, nil
}

func (s *inviteService) SendCodes(ctx context.Context, codes []*domain.InviteCode, recipients []string) []string {
	var failed []string
	for i, email := range recipients {
		if i >= len(codes) {
			break
		}
		email = strings.TrimSpace(strings.ToLower(email))
		if email == "" {
			continue
		}
		if s.emailService == nil {
			failed = append(failed, email)
			continue
		}
		data := &domain.InviteEmailData{
			Email: email,
			Code:  codes[i].Code,
			Role:  codes[i].Role,
		}
		if err := s.emailService.SendInviteCode(ctx, data); err != nil {
			s.logger.Warn("invite email failed", "email", email, "err", err)
			failed = append(failed, email)
		}
	}
	return failed
}
