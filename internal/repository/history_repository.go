package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/chandrakanthc072-pixel/weather-monitoring-system/internal/model"
)

// UserHistoryLimit caps how many records a user sees in their own history.
const UserHistoryLimit = 50

type HistoryRepository interface {
	Insert(ctx context.Context, record *model.SearchHistory) (uuid.UUID, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.SearchHistory, error)
	ListAllWithOwner(ctx context.Context) ([]model.SearchHistoryWithOwner, error)
	// FindByID returns (nil, nil) when no record matches.
	FindByID(ctx context.Context, id uuid.UUID) (*model.SearchHistory, error)
	// Delete reports whether a row was actually removed, so a concurrent
	// second delete of the same id can be surfaced as not-found.
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	DeleteByUser(ctx context.Context, userID uuid.UUID) (int64, error)
}

type postgresHistoryRepository struct {
	db *sqlx.DB
}

func NewPostgresHistoryRepository(db *sqlx.DB) HistoryRepository {
	return &postgresHistoryRepository{db: db}
}

func (r *postgresHistoryRepository) Insert(ctx context.Context, record *model.SearchHistory) (uuid.UUID, error) {
	query := `
		INSERT INTO search_history (user_id, city, temperature, condition, humidity, wind_speed)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, searched_at
	`
	row := r.db.QueryRowxContext(ctx, query,
		record.UserID, record.City, record.Temperature, record.Condition, record.Humidity, record.WindSpeed)
	err := row.Scan(&record.ID, &record.SearchedAt)
	if err != nil {
		return uuid.Nil, err
	}

	return record.ID, nil
}

func (r *postgresHistoryRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.SearchHistory, error) {
	records := []model.SearchHistory{}
	query := `
		SELECT id, user_id, city, temperature, condition, humidity, wind_speed, searched_at
		FROM search_history
		WHERE user_id = $1
		ORDER BY searched_at DESC
		LIMIT $2
	`
	err := r.db.SelectContext(ctx, &records, query, userID, UserHistoryLimit)
	if err != nil {
		return nil, err
	}

	return records, nil
}

func (r *postgresHistoryRepository) ListAllWithOwner(ctx context.Context) ([]model.SearchHistoryWithOwner, error) {
	records := []model.SearchHistoryWithOwner{}
	query := `
		SELECT
			h.id, h.user_id, h.city, h.temperature, h.condition, h.humidity, h.wind_speed, h.searched_at,
			u.name AS owner_name,
			u.email AS owner_email
		FROM search_history h
		JOIN users u ON h.user_id = u.id
		ORDER BY h.searched_at DESC
	`
	err := r.db.SelectContext(ctx, &records, query)
	if err != nil {
		return nil, err
	}

	return records, nil
}

func (r *postgresHistoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.SearchHistory, error) {
	var record model.SearchHistory
	query := `SELECT id, user_id, city, temperature, condition, humidity, wind_speed, searched_at FROM search_history WHERE id = $1`
	err := r.db.GetContext(ctx, &record, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &record, nil
}

func (r *postgresHistoryRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `DELETE FROM search_history WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}

func (r *postgresHistoryRepository) DeleteByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	query := `DELETE FROM search_history WHERE user_id = $1`
	res, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}
