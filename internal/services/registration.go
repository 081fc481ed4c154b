package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"techconnect/internal/domain"
)

const guestCommentName = "Guest"

type registrationService struct {
	eventRepo      domain.EventRepository
	attendeeRepo   domain.AttendeeRepository
	commentRepo    domain.CommentRepository
	broadcaster    domain.Broadcaster
	contextTimeout time.Duration
}

// NewRegistrationService creates a RegistrationService. RSVPs and comments
// are broadcast to the event's channel after they are durably stored.
func NewRegistrationService(
	eventRepo domain.EventRepository,
	attendeeRepo domain.AttendeeRepository,
	commentRepo domain.CommentRepository,
	broadcaster domain.Broadcaster,
	timeout time.Duration,
) domain.RegistrationService {
	return &registrationService{
		eventRepo:      eventRepo,
		attendeeRepo:   attendeeRepo,
		commentRepo:    commentRepo,
		broadcaster:    broadcaster,
		contextTimeout: timeout,
	}
}

func (s *registrationService) Register(ctx context.Context, eventID, name, email string) (*domain.Attendee, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", domain.ErrInvalidInput)
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	if event.Capacity != nil {
		count, err := s.attendeeRepo.CountByEventID(ctx, eventID)
		if err != nil {
			return nil, fmt.Errorf("count attendees: %w", err)
		}
		if count >= *event.Capacity {
			return nil, domain.ErrEventFull
		}
	}

	att := domain.NewAttendee(eventID, strings.TrimSpace(name), email, time.Now())
	if err := s.attendeeRepo.Create(ctx, att); err != nil {
		return nil, fmt.Errorf("create attendee: %w", err)
	}

	s.broadcaster.Publish(&domain.BroadcastMessage{
		Kind:    domain.KindEventRegistered,
		EventID: eventID,
		Payload: att,
	})
	return att, nil
}

func (s *registrationService) AddComment(ctx context.Context, eventID string, userID *string, name, text string) (*domain.Comment, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: comment text required", domain.ErrInvalidInput)
	}

	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	name = strings.TrimSpace(name)
	if name == "" && userID == nil {
		name = guestCommentName
	}

	comment := &domain.Comment{
		EventID:   eventID,
		UserID:    userID,
		Name:      name,
		Text:      text,
		CreatedAt: time.Now(),
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}

	s.broadcaster.Publish(&domain.BroadcastMessage{
		Kind:    domain.KindCommentNew,
		EventID: eventID,
		Payload: comment,
	})
	return comment, nil
}

func (s *registrationService) ListComments(ctx context.Context, eventID string) ([]*domain.Comment, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	comments, err := s.commentRepo.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return comments, nil
}
