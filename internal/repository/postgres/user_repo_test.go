package postgres

import (
	"context"
	"testing"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"

	"github.com/gotovkk/MyCarExpenses/internal/errs"
	"github.com/gotovkk/MyCarExpenses/internal/model"
	"github.com/gotovkk/MyCarExpenses/internal/repository"
)

func newDB(t *testing.T) (*DB, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	return &DB{Pool: mock}, mock
}

func TestUserRepo_Create_OK_and_UniqueViolation(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewUserRepo(db)
	ctx := context.Background()
	u := &repository.StoredUser{
		User: model.User{
			ID:       uuid.Must(uuid.NewV4()),
			Username: "driver",
			Email:    "driver@example.com",
		},
		PasswordHash: "argon2id$salt$hash",
	}

	// OK
	mock.ExpectExec(`INSERT INTO users \(id, username, email, password_hash\) VALUES \(\$1, \$2, \$3, \$4\)`).
		WithArgs(u.ID, u.Username, u.Email, u.PasswordHash).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	require.NoError(t, r.Create(ctx, u))

	// Unique violation maps to ErrAlreadyExists
	mock.ExpectExec(`INSERT INTO users \(id, username, email, password_hash\) VALUES \(\$1, \$2, \$3, \$4\)`).
		WithArgs(u.ID, u.Username, u.Email, u.PasswordHash).
		WillReturnError(&pgconn.PgError{Code: "23505"})
	err := r.Create(ctx, u)
	require.ErrorIs(t, err, errs.ErrAlreadyExists)
}

func TestUserRepo_GetByEmail(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewUserRepo(db)
	ctx := context.Background()
	id := uuid.Must(uuid.NewV4())

	mock.ExpectQuery(`SELECT id, username, email, password_hash FROM users WHERE email=\$1`).
		WithArgs("driver@example.com").
		WillReturnRows(pgxmock.NewRows([]string{"id", "username", "email", "password_hash"}).
			AddRow(id, "driver", "driver@example.com", "argon2id$s$h"))
	u, err := r.GetByEmail(ctx, "driver@example.com")
	require.NoError(t, err)
	require.Equal(t, id, u.ID)
	require.Equal(t, "driver", u.Username)

	mock.ExpectQuery(`SELECT id, username, email, password_hash FROM users WHERE email=\$1`).
		WithArgs("driver@example.com").
		WillReturnError(pgx.ErrNoRows)
	_, err = r.GetByEmail(ctx, "driver@example.com")
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestUserRepo_GetByID(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewUserRepo(db)
	ctx := context.Background()
	id := uuid.Must(uuid.NewV4())

	mock.ExpectQuery(`SELECT id, username, email, password_hash FROM users WHERE id=\$1`).
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows([]string{"id", "username", "email", "password_hash"}).
			AddRow(id, "driver", "driver@example.com", "argon2id$s$h"))
	u, err := r.GetByID(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "driver@example.com", u.Email)

	mock.ExpectQuery(`SELECT id, username, email, password_hash FROM users WHERE id=\$1`).
		WithArgs(id).
		WillReturnError(pgx.ErrNoRows)
	_, err = r.GetByID(ctx, id)
	require.ErrorIs(t, err, errs.ErrNotFound)
}
