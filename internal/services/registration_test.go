package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"techconnect/internal/domain"
)

type fakeAttendeeRepo struct {
	byEvent map[string][]*domain.Attendee
	nextID  int
	err     error
}

func newFakeAttendeeRepo() *fakeAttendeeRepo {
	return &fakeAttendeeRepo{byEvent: make(map[string][]*domain.Attendee)}
}

func (f *fakeAttendeeRepo) Create(ctx context.Context, a *domain.Attendee) error {
	if f.err != nil {
		return f.err
	}
	f.nextID++
	a.ID = fmt.Sprintf("att-%d", f.nextID)
	cp := *a
	f.byEvent[a.EventID] = append(f.byEvent[a.EventID], &cp)
	return nil
}

func (f *fakeAttendeeRepo) CountByEventID(ctx context.Context, eventID string) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	return len(f.byEvent[eventID]), nil
}

func (f *fakeAttendeeRepo) ListByEventID(ctx context.Context, eventID string) ([]*domain.Attendee, error) {
	if f.err != nil {
		return nil, f.err
	}
	return append([]*domain.Attendee(nil), f.byEvent[eventID]...), nil
}

type fakeCommentRepo struct {
	byEvent map[string][]*domain.Comment
	nextID  int
	err     error
}

func newFakeCommentRepo() *fakeCommentRepo {
	return &fakeCommentRepo{byEvent: make(map[string][]*domain.Comment)}
}

func (f *fakeCommentRepo) Create(ctx context.Context, c *domain.Comment) error {
	if f.err != nil {
		return f.err
	}
	f.nextID++
	c.ID = fmt.Sprintf("com-%d", f.nextID)
	cp := *c
	f.byEvent[c.EventID] = append(f.byEvent[c.EventID], &cp)
	return nil
}

func (f *fakeCommentRepo) ListByEventID(ctx context.Context, eventID string) ([]*domain.Comment, error) {
	if f.err != nil {
		return nil, f.err
	}
	return append([]*domain.Comment(nil), f.byEvent[eventID]...), nil
}

func newRegistrationFixture(t *testing.T, capacity *int) (domain.RegistrationService, *fakeAttendeeRepo, *fakeCommentRepo, *recordingBroadcaster, string) {
	t.Helper()
	eventRepo := newFakeEventRepo()
	attendeeRepo := newFakeAttendeeRepo()
	commentRepo := newFakeCommentRepo()
	bc := &recordingBroadcaster{}
	svc := NewRegistrationService(eventRepo, attendeeRepo, commentRepo, bc, 2*time.Second)

	event := &domain.Event{Title: "GopherMeet", Date: time.Now().Add(24 * time.Hour), Capacity: capacity}
	require.NoError(t, eventRepo.Create(context.Background(), event))
	return svc, attendeeRepo, commentRepo, bc, event.ID
}

func TestRegistrationService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("email is required", func(t *testing.T) {
		svc, _, _, bc, eventID := newRegistrationFixture(t, nil)
		_, err := svc.Register(ctx, eventID, "Ada", "  ")
		require.ErrorIs(t, err, domain.ErrInvalidInput)
		assert.Empty(t, bc.published())
	})

	t.Run("unknown event", func(t *testing.T) {
		svc, _, _, _, _ := newRegistrationFixture(t, nil)
		_, err := svc.Register(ctx, "missing", "Ada", "ada@example.test")
		require.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("success announces on the event channel", func(t *testing.T) {
		svc, repo, _, bc, eventID := newRegistrationFixture(t, nil)
		att, err := svc.Register(ctx, eventID, " Ada ", "Ada@Example.Test")
		require.NoError(t, err)
		assert.Equal(t, "Ada", att.Name)
		assert.Equal(t, "ada@example.test", att.Email, "emails are normalized")

		count, err := repo.CountByEventID(ctx, eventID)
		require.NoError(t, err)
		assert.Equal(t, 1, count)

		msgs := bc.published()
		require.Len(t, msgs, 1)
		assert.Equal(t, domain.KindEventRegistered, msgs[0].Kind)
		assert.Equal(t, eventID, msgs[0].EventID)
	})

	t.Run("capacity is enforced", func(t *testing.T) {
		capacity := 2
		svc, _, _, bc, eventID := newRegistrationFixture(t, &capacity)

		for i := 0; i < capacity; i++ {
			_, err := svc.Register(ctx, eventID, "Guest", fmt.Sprintf("g%d@example.test", i))
			require.NoError(t, err)
		}
		_, err := svc.Register(ctx, eventID, "Late", "late@example.test")
		require.ErrorIs(t, err, domain.ErrEventFull)
		assert.Len(t, bc.published(), capacity, "a full event publishes nothing")
	})

	t.Run("nil capacity means unlimited", func(t *testing.T) {
		svc, _, _, _, eventID := newRegistrationFixture(t, nil)
		for i := 0; i < 30; i++ {
			_, err := svc.Register(ctx, eventID, "Guest", fmt.Sprintf("g%d@example.test", i))
			require.NoError(t, err)
		}
	})
}

func TestRegistrationService_AddComment(t *testing.T) {
	ctx := context.Background()

	t.Run("text is required", func(t *testing.T) {
		svc, _, _, _, eventID := newRegistrationFixture(t, nil)
		_, err := svc.AddComment(ctx, eventID, nil, "Ada", "   ")
		require.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("anonymous comments get a guest name", func(t *testing.T) {
		svc, _, _, bc, eventID := newRegistrationFixture(t, nil)
		comment, err := svc.AddComment(ctx, eventID, nil, "", "see you there")
		require.NoError(t, err)
		assert.Equal(t, "Guest", comment.Name)
		assert.Nil(t, comment.UserID)

		msgs := bc.published()
		require.Len(t, msgs, 1)
		assert.Equal(t, domain.KindCommentNew, msgs[0].Kind)
		assert.Equal(t, eventID, msgs[0].EventID)
	})

	t.Run("signed-in commenter keeps their identity", func(t *testing.T) {
		svc, _, repo, _, eventID := newRegistrationFixture(t, nil)
		userID := "u-42"
		comment, err := svc.AddComment(ctx, eventID, &userID, "Ada", "count me in")
		require.NoError(t, err)
		require.NotNil(t, comment.UserID)
		assert.Equal(t, "u-42", *comment.UserID)

		stored, err := repo.ListByEventID(ctx, eventID)
		require.NoError(t, err)
		require.Len(t, stored, 1)
	})

	t.Run("unknown event", func(t *testing.T) {
		svc, _, _, _, _ := newRegistrationFixture(t, nil)
		_, err := svc.AddComment(ctx, "missing", nil, "Ada", "hello")
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}
