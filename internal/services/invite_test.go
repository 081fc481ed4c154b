package services

import (
	"context"
	"log/slog"
	"regexp"
	"sort"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"techconnect/internal/domain"
)

// mockInviteRepo is an in-memory InviteRepository whose Redeem performs the
// same atomic check-and-set the Postgres implementation does, so concurrent
// redemption behavior can be exercised for real.
type mockInviteRepo struct {
	mu         sync.Mutex
	byCode     map[string]*domain.InviteCode
	nextID     int
	dupRemain  int // Create returns ErrDuplicateCode this many times
	createErr  error
	createdCnt int
}

func newMockInviteRepo() *mockInviteRepo {
	return &mockInviteRepo{byCode: map[string]*domain.InviteCode{}}
}

func (m *mockInviteRepo) Create(ctx context.Context, inv *domain.InviteCode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	if m.dupRemain > 0 {
		m.dupRemain--
		return domain.ErrDuplicateCode
	}
	if _, exists := m.byCode[inv.Code]; exists {
		return domain.ErrDuplicateCode
	}
	m.nextID++
	inv.ID = "inv-" + strconv.Itoa(m.nextID)
	cp := *inv
	m.byCode[inv.Code] = &cp
	m.createdCnt++
	return nil
}

func (m *mockInviteRepo) GetByCode(ctx context.Context, code string) (*domain.InviteCode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv, ok := m.byCode[code]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *inv
	return &cp, nil
}

func (m *mockInviteRepo) GetByID(ctx context.Context, id string) (*domain.InviteCode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, inv := range m.byCode {
		if inv.ID == id {
			cp := *inv
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockInviteRepo) Redeem(ctx context.Context, code, userID string) (*domain.InviteCode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv, ok := m.byCode[code]
	if !ok {
		return nil, domain.ErrInviteNotFound
	}
	if inv.Revoked {
		return nil, domain.ErrInviteRevoked
	}
	if inv.UsedAt != nil {
		return nil, domain.ErrInviteUsed
	}
	now := time.Now()
	inv.UsedBy = &userID
	inv.UsedAt = &now
	cp := *inv
	return &cp, nil
}

func (m *mockInviteRepo) SetRevoked(ctx context.Context, id string, revoked bool) (*domain.InviteCode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, inv := range m.byCode {
		if inv.ID == id {
			inv.Revoked = revoked
			cp := *inv
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockInviteRepo) List(ctx context.Context, params domain.PaginationParams) ([]*domain.InviteCode, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.InviteCode
	for _, inv := range m.byCode {
		cp := *inv
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, len(out), nil
}

type mockEmailService struct {
	mu      sync.Mutex
	sent    []string
	failFor map[string]bool
}

func (m *mockEmailService) SendInviteCode(ctx context.Context, data *domain.InviteEmailData) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failFor[data.Email] {
		return context.DeadlineExceeded
	}
	m.sent = append(m.sent, data.Email)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func newTestInviteService(repo domain.InviteRepository, email domain.EmailService) domain.InviteService {
	return NewInviteService(repo, email, testLogger(), 2*time.Second)
}

var urlSafeToken = regexp.MustCompile(`^[A-Za-z0-9_-]{8}$`)

func TestInviteService_Issue(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		issuerRole string
		role       string
		count      int
		wantErr    error
		wantCount  int
	}{
		{
			name:       "participant cannot issue",
			issuerRole: domain.RoleParticipant,
			role:       domain.RoleParticipant,
			count:      1,
			wantErr:    domain.ErrForbidden,
		},
		{
			name:       "unrecognized role",
			issuerRole: domain.RoleAdmin,
			role:       "superuser",
			count:      1,
			wantErr:    domain.ErrInvalidRole,
		},
		{
			name:       "organizer cannot mint admin invites",
			issuerRole: domain.RoleOrganizer,
			role:       domain.RoleAdmin,
			count:      1,
			wantErr:    domain.ErrForbidden,
		},
		{
			name:       "organizer mints organizer invites",
			issuerRole: domain.RoleOrganizer,
			role:       domain.RoleOrganizer,
			count:      3,
			wantCount:  3,
		},
		{
			name:       "count clamped to maximum",
			issuerRole: domain.RoleAdmin,
			role:       domain.RoleParticipant,
			count:      500,
			wantCount:  maxInvitesPerCall,
		},
		{
			name:       "count clamped to minimum",
			issuerRole: domain.RoleAdmin,
			role:       domain.RoleParticipant,
			count:      0,
			wantCount:  1,
		},
		{
			name:       "empty role defaults to participant",
			issuerRole: domain.RoleOrganizer,
			role:       "",
			count:      1,
			wantCount:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMockInviteRepo()
			svc := newTestInviteService(repo, nil)

			created, err := svc.Issue(ctx, "issuer-1", tt.issuerRole, tt.role, tt.count)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				require.Zero(t, repo.createdCnt, "failed issuance must create zero records")
				return
			}
			require.NoError(t, err)
			require.Len(t, created, tt.wantCount)
			seen := map[string]bool{}
			for _, inv := range created {
				require.Regexp(t, urlSafeToken, inv.Code, "token must be short and URL-safe")
				require.False(t, seen[inv.Code], "tokens must be unique")
				seen[inv.Code] = true
				require.Equal(t, "issuer-1", inv.CreatedBy)
				require.Nil(t, inv.UsedAt)
				require.False(t, inv.Revoked)
			}
		})
	}
}

func TestInviteService_Issue_RegeneratesOnCollision(t *testing.T) {
	repo := newMockInviteRepo()
	repo.dupRemain = 2
	svc := newTestInviteService(repo, nil)

	created, err := svc.Issue(context.Background(), "issuer-1", domain.RoleAdmin, domain.RoleParticipant, 1)
	require.NoError(t, err, "collisions must be retried, not surfaced")
	require.Len(t, created, 1)
	require.Equal(t, 1, repo.createdCnt)
}

func TestInviteService_Redeem_ConcurrentSingleSuccess(t *testing.T) {
	repo := newMockInviteRepo()
	svc := newTestInviteService(repo, nil)

	created, err := svc.Issue(context.Background(), "issuer-1", domain.RoleAdmin, domain.RoleOrganizer, 1)
	require.NoError(t, err)
	code := created[0].Code

	const redeemers = 8
	results := make(chan error, redeemers)
	var wg sync.WaitGroup
	for i := 0; i < redeemers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := svc.Redeem(context.Background(), code, "user-"+string(rune('a'+n)))
			results <- err
		}(i)
	}
	wg.Wait()
	close(results)

	var successes, alreadyUsed int
	for err := range results {
		switch {
		case err == nil:
			successes++
		case err == domain.ErrInviteUsed:
			alreadyUsed++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if successes != 1 {
		t.Fatalf("expected exactly one successful redemption, got %d", successes)
	}
	if alreadyUsed != redeemers-1 {
		t.Fatalf("expected %d CodeAlreadyUsed failures, got %d", redeemers-1, alreadyUsed)
	}
}

func TestInviteService_Redeem_Errors(t *testing.T) {
	ctx := context.Background()
	repo := newMockInviteRepo()
	svc := newTestInviteService(repo, nil)

	_, err := svc.Redeem(ctx, "nope", "user-1")
	require.ErrorIs(t, err, domain.ErrInviteNotFound)

	_, err = svc.Redeem(ctx, "", "user-1")
	require.ErrorIs(t, err, domain.ErrInviteNotFound)

	created, err := svc.Issue(ctx, "issuer-1", domain.RoleAdmin, domain.RoleParticipant, 1)
	require.NoError(t, err)
	_, err = svc.SetRevoked(ctx, domain.RoleAdmin, created[0].ID, true)
	require.NoError(t, err)

	_, err = svc.Redeem(ctx, created[0].Code, "user-1")
	require.ErrorIs(t, err, domain.ErrInviteRevoked, "revoked wins over unused")
}

func TestInviteService_RevokeUnrevokeRestoresRedeemability(t *testing.T) {
	ctx := context.Background()
	repo := newMockInviteRepo()
	svc := newTestInviteService(repo, nil)

	created, err := svc.Issue(ctx, "issuer-1", domain.RoleAdmin, domain.RoleParticipant, 1)
	require.NoError(t, err)
	inv := created[0]

	_, err = svc.SetRevoked(ctx, domain.RoleAdmin, inv.ID, true)
	require.NoError(t, err)
	_, err = svc.SetRevoked(ctx, domain.RoleAdmin, inv.ID, false)
	require.NoError(t, err)

	role, err := svc.Redeem(ctx, inv.Code, "user-1")
	require.NoError(t, err, "revoke/unrevoke round-trip restores redeemability")
	require.Equal(t, domain.RoleParticipant, role)
}

func TestInviteService_UsedCodeStaysUsedAcrossRevokeToggles(t *testing.T) {
	ctx := context.Background()
	repo := newMockInviteRepo()
	svc := newTestInviteService(repo, nil)

	created, err := svc.Issue(ctx, "issuer-1", domain.RoleAdmin, domain.RoleOrganizer, 1)
	require.NoError(t, err)
	inv := created[0]

	role, err := svc.Redeem(ctx, inv.Code, "user-a")
	require.NoError(t, err)
	require.Equal(t, domain.RoleOrganizer, role)

	_, err = svc.Redeem(ctx, inv.Code, "user-b")
	require.ErrorIs(t, err, domain.ErrInviteUsed)

	revoked, err := svc.SetRevoked(ctx, domain.RoleAdmin, inv.ID, true)
	require.NoError(t, err)
	require.True(t, revoked.Revoked)
	require.NotNil(t, revoked.UsedAt, "revoking must not touch used_at")
	require.NotNil(t, revoked.UsedBy)
	require.Equal(t, "user-a", *revoked.UsedBy)

	unrevoked, err := svc.SetRevoked(ctx, domain.RoleAdmin, inv.ID, false)
	require.NoError(t, err)
	require.NotNil(t, unrevoked.UsedAt, "unrevoking must not un-use a used code")

	_, err = svc.Redeem(ctx, inv.Code, "user-c")
	require.ErrorIs(t, err, domain.ErrInviteUsed)
}

func TestInviteService_SetRevoked_Idempotent(t *testing.T) {
	ctx := context.Background()
	repo := newMockInviteRepo()
	svc := newTestInviteService(repo, nil)

	created, err := svc.Issue(ctx, "issuer-1", domain.RoleAdmin, domain.RoleParticipant, 1)
	require.NoError(t, err)

	first, err := svc.SetRevoked(ctx, domain.RoleAdmin, created[0].ID, true)
	require.NoError(t, err)
	second, err := svc.SetRevoked(ctx, domain.RoleAdmin, created[0].ID, true)
	require.NoError(t, err)
	require.Equal(t, first.Revoked, second.Revoked)
}

func TestInviteService_List(t *testing.T) {
	ctx := context.Background()
	repo := newMockInviteRepo()
	svc := newTestInviteService(repo, nil)

	_, _, err := svc.List(ctx, domain.RoleParticipant, domain.PaginationParams{Page: 1, PageSize: 20})
	require.ErrorIs(t, err, domain.ErrForbidden)

	_, err = svc.Issue(ctx, "issuer-1", domain.RoleAdmin, domain.RoleParticipant, 2)
	require.NoError(t, err)

	invs, total, err := svc.List(ctx, domain.RoleOrganizer, domain.PaginationParams{Page: 1, PageSize: 20})
	require.NoError(t, err)
	require.Equal(t, 2, total)
	require.Len(t, invs, 2)
}

func TestInviteService_SendCodes(t *testing.T) {
	ctx := context.Background()
	repo := newMockInviteRepo()
	email := &mockEmailService{failFor: map[string]bool{"bad@b.test": true}}
	svc := newTestInviteService(repo, email)

	created, err := svc.Issue(ctx, "issuer-1", domain.RoleAdmin, domain.RoleParticipant, 3)
	require.NoError(t, err)

	failed := svc.SendCodes(ctx, created, []string{"ok@b.test", "bad@b.test"})
	require.Equal(t, []string{"bad@b.test"}, failed)
	require.Equal(t, []string{"ok@b.test"}, email.sent)
}
