package repository_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/chandrakanthc072-pixel/weather-monitoring-system/internal/model"
	repo "github.com/chandrakanthc072-pixel/weather-monitoring-system/internal/repository"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

func TestPostgresUserRepository_Create(t *testing.T) {
	sqlxDB, mock := newMockDB(t)
	r := repo.NewPostgresUserRepository(sqlxDB)

	id := uuid.New()
	created := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO users (name, email, password_hash, role) VALUES ($1, $2, $3, $4) RETURNING id, created_at`)).
		WithArgs("Alice Smith", "alice@x.com", "hash", "user").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(id, created))

	user := &model.User{Name: "Alice Smith", Email: "alice@x.com", PasswordHash: "hash", Role: "user"}
	nid, err := r.Create(context.Background(), user)
	require.NoError(t, err)
	require.Equal(t, id, nid)
	require.Equal(t, created, user.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUserRepository_FindByEmail_Success(t *testing.T) {
	sqlxDB, mock := newMockDB(t)
	r := repo.NewPostgresUserRepository(sqlxDB)

	id := uuid.New()
	rows := sqlmock.NewRows([]string{"id", "name", "email", "password_hash", "role", "refresh_token_hash", "created_at"}).
		AddRow(id, "Alice Smith", "alice@x.com", "hash", "user", nil, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, name, email, password_hash, role, refresh_token_hash, created_at FROM users WHERE email = $1`)).
		WithArgs("alice@x.com").WillReturnRows(rows)

	u, err := r.FindByEmail(context.Background(), "alice@x.com")
	require.NoError(t, err)
	require.Equal(t, "alice@x.com", u.Email)
	require.Equal(t, "hash", u.PasswordHash)
	require.Nil(t, u.RefreshTokenHash)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUserRepository_FindByEmail_NoRows(t *testing.T) {
	sqlxDB, mock := newMockDB(t)
	r := repo.NewPostgresUserRepository(sqlxDB)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, name, email, password_hash, role, refresh_token_hash, created_at FROM users WHERE email = $1`)).
		WithArgs("missing@x.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "password_hash", "role", "refresh_token_hash", "created_at"}))

	u, err := r.FindByEmail(context.Background(), "missing@x.com")
	require.NoError(t, err)
	require.Nil(t, u)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUserRepository_UpdateRefreshTokenHash(t *testing.T) {
	sqlxDB, mock := newMockDB(t)
	r := repo.NewPostgresUserRepository(sqlxDB)

	id := uuid.New()
	hash := "abc123"
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE users SET refresh_token_hash = $2 WHERE id = $1`)).
		WithArgs(id, &hash).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, r.UpdateRefreshTokenHash(context.Background(), id, &hash))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUserRepository_ListAll(t *testing.T) {
	sqlxDB, mock := newMockDB(t)
	r := repo.NewPostgresUserRepository(sqlxDB)

	rows := sqlmock.NewRows([]string{"id", "name", "email", "role", "created_at"}).
		AddRow(uuid.New(), "Newer", "newer@x.com", "admin", time.Now()).
		AddRow(uuid.New(), "Older", "older@x.com", "user", time.Now().Add(-time.Hour))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, name, email, role, created_at FROM users ORDER BY created_at DESC`)).
		WillReturnRows(rows)

	users, err := r.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	require.Equal(t, "newer@x.com", users[0].Email)
	require.NoError(t, mock.ExpectationsWereMet())
}
