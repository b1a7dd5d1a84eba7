package service

import (
	"context"
	"fmt"

	"github.com/crestview/residency-api/internal/domain"
	"github.com/crestview/residency-api/internal/repository"
	"github.com/crestview/residency-api/pkg/events"
	"github.com/crestview/residency-api/pkg/logger"
)

type AnnouncementService interface {
	Create(ctx context.Context, req *domain.CreateAnnouncementReq) (*domain.Announcement, error)
	List(ctx context.Context) ([]domain.Announcement, error)
}

type announcementService struct {
	announcementRepo repository.AnnouncementRepository
	eventBus         events.Publisher
}

func NewAnnouncementService(announcementRepo repository.AnnouncementRepository, eventBus events.Publisher) AnnouncementService {
	return &announcementService{announcementRepo: announcementRepo, eventBus: eventBus}
}

func (s *announcementService) Create(ctx context.Context, req *domain.CreateAnnouncementReq) (*domain.Announcement, error) {
	if req.Title == "" || req.Description == "" {
		return nil, fmt.Errorf("%w: title and description are required", domain.ErrValidation)
	}

	announcement, err := s.announcementRepo.Create(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create announcement: %w", err)
	}

	event := events.AnnouncementPostedEvent{
		AnnouncementID: announcement.ID,
		Title:          announcement.Title,
		Type:           announcement.Type,
		PostedAt:       announcement.CreatedAt,
	}
	if err := s.eventBus.Publish(ctx, events.AnnouncementPosted, event); err != nil {
		logger.ErrorContext(ctx, "Failed to publish announcement posted event", "error", err, "announcement_id", announcement.ID)
	}

	return announcement, nil
}

func (s *announcementService) List(ctx context.Context) ([]domain.Announcement, error) {
	return s.announcementRepo.List(ctx)
}
