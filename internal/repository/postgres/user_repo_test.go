package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"techconnect/internal/domain"
)

var userColumns = []string{"id", "email", "name", "role", "password_hash", "created_at", "updated_at"}

func TestUserRepository_Create(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		user    *domain.User
		mock    func(mock sqlmock.Sqlmock)
		wantID  string
		wantErr error
	}{
		{
			name: "success",
			user: domain.NewUser("a@b.test", "Asha", domain.RoleParticipant, "hash", now, now),
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO users \(email, name, role, password_hash, created_at, updated_at\)`).
					WithArgs("a@b.test", "Asha", "participant", "hash", now, now).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("user-1"))
			},
			wantID: "user-1",
		},
		{
			name: "duplicate email",
			user: domain.NewUser("a@b.test", "Asha", domain.RoleParticipant, "hash", now, now),
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO users`).
					WillReturnError(&pq.Error{Code: "23505"})
			},
			wantErr: domain.ErrDuplicateEmail,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewUserRepository(db)
			err = repo.Create(ctx, tt.user)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantID, tt.user.ID)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_GetByEmail(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	t.Run("success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT id, email, name, role, password_hash, created_at, updated_at`).
			WithArgs("a@b.test").
			WillReturnRows(sqlmock.NewRows(userColumns).
				AddRow("user-1", "a@b.test", "Asha", "organizer", "hash", now, now))

		repo := NewUserRepository(db)
		u, err := repo.GetByEmail(ctx, "a@b.test")
		require.NoError(t, err)
		require.Equal(t, "organizer", u.Role)
	})

	t.Run("not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT id, email, name, role, password_hash, created_at, updated_at`).
			WithArgs("missing@b.test").
			WillReturnError(sql.ErrNoRows)

		repo := NewUserRepository(db)
		_, err = repo.GetByEmail(ctx, "missing@b.test")
		require.ErrorIs(t, err, domain.ErrUserNotFound)
	})
}

func TestUserRepository_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(`DELETE FROM users WHERE id = \$1`).
			WithArgs("user-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		repo := NewUserRepository(db)
		require.NoError(t, repo.Delete(ctx, "user-1"))
	})

	t.Run("not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(`DELETE FROM users WHERE id = \$1`).
			WithArgs("user-missing").
			WillReturnResult(sqlmock.NewResult(0, 0))

		repo := NewUserRepository(db)
		require.ErrorIs(t, repo.Delete(ctx, "user-missing"), domain.ErrUserNotFound)
	})
}
