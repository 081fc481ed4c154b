package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"
	"unicode"

	"techconnect/internal/domain"
)

const upcomingFeedLimit = 50

type eventService struct {
	eventRepo      domain.EventRepository
	broadcaster    domain.Broadcaster
	contextTimeout time.Duration
}

// NewEventService creates an EventService. Each successful mutation is
// announced on the broadcaster after the storage write returns, never before.
func NewEventService(eventRepo domain.EventRepository, broadcaster domain.Broadcaster, timeout time.Duration) domain.EventService {
	return &eventService{
		eventRepo:      eventRepo,
		broadcaster:    broadcaster,
		contextTimeout: timeout,
	}
}

func (s *eventService) CreateEvent(ctx context.Context, actorID, actorRole string, event *domain.Event) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if !domain.RoleAtLeastOrganizer(actorRole) {
		return domain.ErrForbidden
	}
	if strings.TrimSpace(event.Title) == "" || event.Date.IsZero() {
		return domain.ErrInvalidInput
	}

	slug, err := generateSlug(event.Title)
	if err != nil {
		return fmt.Errorf("generate slug: %w", err)
	}
	event.Slug = slug
	event.CreatedBy = actorID
	event.CreatedAt = time.Now()
	event.UpdatedAt = event.CreatedAt

	if err := s.eventRepo.Create(ctx, event); err != nil {
		return fmt.Errorf("create event: %w", err)
	}

	// Post-commit announcement to everyone connected, since list pages care
	// about new events regardless of which channel they joined.
	s.broadcaster.Publish(&domain.BroadcastMessage{
		Kind:    domain.KindEventCreated,
		Payload: map[string]string{"event_id": event.ID},
	})
	return nil
}

const slugSuffixLength = 6

var slugSuffixAlphabet = []rune("abcdefghijklmnopqrstuvwxyz0123456789")

// generateSlug builds a URL-safe slug from the title plus a short random
// suffix so two events with the same title never collide.
func generateSlug(title string) (string, error) {
	var b strings.Builder
	prevDash := true
	for _, r := range strings.ToLower(title) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			prevDash = false
		case !prevDash:
			b.WriteRune('-')
			prevDash = true
		}
	}
	slug := strings.Trim(b.String(), "-")

	suffix := make([]rune, slugSuffixLength)
	max := big.NewInt(int64(len(slugSuffixAlphabet)))
	for i := 0; i < slugSuffixLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		suffix[i] = slugSuffixAlphabet[n.Int64()]
	}
	if slug == "" {
		return string(suffix), nil
	}
	return slug + "-" + string(suffix), nil
}

func (s *eventService) GetEventByID(ctx context.Context, eventID string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

func (s *eventService) ListEvents(ctx context.Context, filter domain.EventFilter) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, err := s.eventRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

func (s *eventService) ListUpcomingEvents(ctx context.Context, limit int) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if limit <= 0 || limit > upcomingFeedLimit {
		limit = upcomingFeedLimit
	}
	events, err := s.eventRepo.ListUpcoming(ctx, time.Now(), limit)
	if err != nil {
		return nil, fmt.Errorf("list upcoming events: %w", err)
	}
	return events, nil
}

func (s *eventService) UpdateEvent(ctx context.Context, actorID, actorRole, eventID string, patch domain.EventPatch) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if actorRole != domain.RoleAdmin && event.CreatedBy != actorID {
		return nil, domain.ErrForbidden
	}

	updated, err := s.eventRepo.Update(ctx, eventID, patch)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update event: %w", err)
	}

	s.broadcaster.Publish(&domain.BroadcastMessage{
		Kind:    domain.KindEventUpdated,
		EventID: eventID,
		Payload: map[string]string{"event_id": eventID},
	})
	return updated, nil
}

func (s *eventService) DeleteEvent(ctx context.Context, actorID, actorRole, eventID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get event: %w", err)
	}
	if actorRole != domain.RoleAdmin && event.CreatedBy != actorID {
		return domain.ErrForbidden
	}
	if err := s.eventRepo.Delete(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}
