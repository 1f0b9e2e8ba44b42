package service

import (
	"context"

	"practice-api/internal/db"
	"practice-api/internal/models"
)

type AdminStore interface {
	ListUsers(ctx context.Context, q string, page models.Page) ([]models.User, int, error)
	Stats(ctx context.Context) (*db.Stats, error)
}

type AdminService struct {
	store AdminStore
}

func NewAdminService(store AdminStore) *AdminService {
	return &AdminService{store: store}
}

func (s *AdminService) Users(ctx context.Context, q string, page models.Page) ([]models.User, models.Pagination, error) {
	users, total, err := s.store.ListUsers(ctx, q, page)
	if err != nil {
		return nil, models.Pagination{}, Internal(err)
	}
	return users, models.NewPagination(page, total), nil
}

func (s *AdminService) Stats(ctx context.Context) (*db.Stats, error) {
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return nil, Internal(err)
	}
	return stats, nil
}
