package service

import (
	"context"
	"fmt"
	"time"

	"github.com/crestview/residency-api/internal/domain"
	"github.com/crestview/residency-api/internal/repository"
	"github.com/crestview/residency-api/pkg/events"
	"github.com/crestview/residency-api/pkg/logger"
)

type UserService interface {
	// Register is idempotent: re-registering an existing email returns the
	// stored record untouched. The bool reports whether a record was created.
	Register(ctx context.Context, req *domain.RegisterUserReq) (*domain.User, bool, error)
	Get(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context, role string) ([]domain.User, error)
	SetRole(ctx context.Context, email, role string) (int64, error)
}

type userService struct {
	userRepo repository.UserRepository
	eventBus events.Publisher
}

func NewUserService(userRepo repository.UserRepository, eventBus events.Publisher) UserService {
	return &userService{userRepo: userRepo, eventBus: eventBus}
}

func (s *userService) Register(ctx context.Context, req *domain.RegisterUserReq) (*domain.User, bool, error) {
	if req.Email == "" {
		return nil, false, fmt.Errorf("%w: email is required", domain.ErrValidation)
	}

	user, created, err := s.userRepo.CreateIfAbsent(ctx, req.Email, req.Name)
	if err != nil {
		return nil, false, fmt.Errorf("failed to register user: %w", err)
	}
	return user, created, nil
}

func (s *userService) Get(ctx context.Context, email string) (*domain.User, error) {
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", domain.ErrValidation)
	}
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: no user for %s", domain.ErrNotFound, email)
	}
	return user, nil
}

func (s *userService) List(ctx context.Context, role string) ([]domain.User, error) {
	var filter *domain.Role
	if role != "" {
		parsed, ok := domain.ParseRole(role)
		if !ok {
			return nil, fmt.Errorf("%w: unknown role %q", domain.ErrValidation, role)
		}
		filter = &parsed
	}
	return s.userRepo.List(ctx, filter)
}

func (s *userService) SetRole(ctx context.Context, email, role string) (int64, error) {
	if email == "" {
		return 0, fmt.Errorf("%w: email is required", domain.ErrValidation)
	}
	parsed, ok := domain.ParseRole(role)
	if !ok {
		return 0, fmt.Errorf("%w: role must be one of guest, member, admin", domain.ErrValidation)
	}

	affected, err := s.userRepo.UpdateRole(ctx, email, parsed)
	if err != nil {
		return 0, fmt.Errorf("failed to update role: %w", err)
	}

	if affected > 0 {
		event := events.RoleChangedEvent{UserEmail: email, NewRole: role, ChangedAt: time.Now()}
		if err := s.eventBus.Publish(ctx, events.RoleChanged, event); err != nil {
			logger.ErrorContext(ctx, "Failed to publish role changed event", "error", err, "email", email)
		}
	}

	return affected, nil
}
