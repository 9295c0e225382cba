package service

import (
	"context"
	"errors"

	"github.com/123Jonas/aluguel-imoveis-backend/internal/model"
	"github.com/123Jonas/aluguel-imoveis-backend/internal/repository"
	"gorm.io/gorm"
)

type ListingService interface {
	Get(ctx context.Context, id uint64) (*model.Listing, error)
}

type listingService struct {
	repo repository.ListingRepository
}

func NewListingService(repo repository.ListingRepository) ListingService {
	return &listingService{repo: repo}
}

func (s *listingService) Get(ctx context.Context, id uint64) (*model.Listing, error) {
	listing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return listing, nil
}
