package service

import (
	"context"
	"fmt"
	"math"

	"github.com/crestview/residency-api/internal/domain"
	"github.com/crestview/residency-api/internal/repository"
)

// PageSize is the fixed catalog page size.
const PageSize = 6

type CatalogService interface {
	List(ctx context.Context, page int, minRent, maxRent int64) (*domain.ApartmentPage, error)
}

type catalogService struct {
	apartmentRepo repository.ApartmentRepository
}

func NewCatalogService(apartmentRepo repository.ApartmentRepository) CatalogService {
	return &catalogService{apartmentRepo: apartmentRepo}
}

func (s *catalogService) List(ctx context.Context, page int, minRent, maxRent int64) (*domain.ApartmentPage, error) {
	if page < 1 {
		page = 1
	}
	if minRent < 0 {
		minRent = 0
	}
	if maxRent <= 0 {
		maxRent = math.MaxInt64
	}

	total, err := s.apartmentRepo.Count(ctx, minRent, maxRent)
	if err != nil {
		return nil, fmt.Errorf("failed to count apartments: %w", err)
	}

	offset := (page - 1) * PageSize
	apartments, err := s.apartmentRepo.List(ctx, minRent, maxRent, PageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list apartments: %w", err)
	}

	return &domain.ApartmentPage{
		Apartments:  apartments,
		CurrentPage: page,
		TotalPages:  int(math.Ceil(float64(total) / float64(PageSize))),
	}, nil
}
