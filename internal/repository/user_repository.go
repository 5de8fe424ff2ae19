package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/chandrakanthc072-pixel/weather-monitoring-system/internal/model"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) (uuid.UUID, error)
	// FindByEmail includes password_hash and refresh_token_hash; it backs the
	// login path only. Returns (nil, nil) when no user matches.
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	UpdateRefreshTokenHash(ctx context.Context, id uuid.UUID, tokenHash *string) error
	ListAll(ctx context.Context) ([]model.User, error)
}

type postgresUserRepository struct {
	db *sqlx.DB
}

func NewPostgresUserRepository(db *sqlx.DB) UserRepository {
	return &postgresUserRepository{db: db}
}

func (r *postgresUserRepository) Create(ctx context.Context, user *model.User) (uuid.UUID, error) {
	query := `INSERT INTO users (name, email, password_hash, role) VALUES ($1, $2, $3, $4) RETURNING id, created_at`
	var newID uuid.UUID
	err := r.db.QueryRowxContext(ctx, query, user.Name, user.Email, user.PasswordHash, user.Role).
		Scan(&newID, &user.CreatedAt)
	if err != nil {
		return uuid.Nil, err
	}

	return newID, nil
}

func (r *postgresUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	query := `SELECT id, name, email, password_hash, role, refresh_token_hash, created_at FROM users WHERE email = $1`
	err := r.db.GetContext(ctx, &user, query, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &user, nil
}

func (r *postgresUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	query := `SELECT id, name, email, role, refresh_token_hash, created_at FROM users WHERE id = $1`
	err := r.db.GetContext(ctx, &user, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &user, nil
}

// UpdateRefreshTokenHash overwrites the stored hash; passing nil clears it.
// Last write wins on concurrent logins.
func (r *postgresUserRepository) UpdateRefreshTokenHash(ctx context.Context, id uuid.UUID, tokenHash *string) error {
	query := `UPDATE users SET refresh_token_hash = $2 WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id, tokenHash)
	return err
}

func (r *postgresUserRepository) ListAll(ctx context.Context) ([]model.User, error) {
	users := []model.User{}
	query := `SELECT id, name, email, role, created_at FROM users ORDER BY created_at DESC`
	err := r.db.SelectContext(ctx, &users, query)
	if err != nil {
		return nil, err
	}

	return users, nil
}
