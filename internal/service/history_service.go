package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/chandrakanthc072-pixel/weather-monitoring-system/internal/model"
	"github.com/chandrakanthc072-pixel/weather-monitoring-system/internal/repository"
)

var (
	ErrHistoryNotFound = errors.New("history item not found")
	ErrNotRecordOwner  = errors.New("not authorized to delete this item")
)

type HistoryService interface {
	ListForUser(ctx context.Context, userID uuid.UUID) ([]model.SearchHistory, error)
	ListAll(ctx context.Context) ([]model.SearchHistoryWithOwner, error)
	DeleteOne(ctx context.Context, callerID uuid.UUID, callerRole string, recordID uuid.UUID) error
	ClearForUser(ctx context.Context, userID uuid.UUID) (int64, error)
}

type historyService struct {
	historyRepo repository.HistoryRepository
}

func NewHistoryService(historyRepo repository.HistoryRepository) HistoryService {
	return &historyService{historyRepo: historyRepo}
}

func (s *historyService) ListForUser(ctx context.Context, userID uuid.UUID) ([]model.SearchHistory, error) {
	return s.historyRepo.ListByUser(ctx, userID)
}

func (s *historyService) ListAll(ctx context.Context) ([]model.SearchHistoryWithOwner, error) {
	return s.historyRepo.ListAllWithOwner(ctx)
}

// DeleteOne removes a record if the caller owns it or is an admin. The
// existence check runs first, so probing a nonexistent id always yields
// not-found rather than revealing whether someone else owns it.
func (s *historyService) DeleteOne(ctx context.Context, callerID uuid.UUID, callerRole string, recordID uuid.UUID) error {
	record, err := s.historyRepo.FindByID(ctx, recordID)
	if err != nil {
		return err
	}
	if record == nil {
		return ErrHistoryNotFound
	}

	if record.UserID != callerID && callerRole != model.RoleAdmin {
		return ErrNotRecordOwner
	}

	deleted, err := s.historyRepo.Delete(ctx, recordID)
	if err != nil {
		return err
	}
	if !deleted {
		// lost the race against a concurrent delete
		return ErrHistoryNotFound
	}

	return nil
}

// ClearForUser only ever touches the caller's own records, whatever their
// role.
func (s *historyService) ClearForUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.historyRepo.DeleteByUser(ctx, userID)
}
