package service

import (
	"context"
	"fmt"

	"bookingapi/internal/domain"
	"bookingapi/pkg/logger"
	"bookingapi/pkg/validator"
)

type PropertyService struct {
	repo        domain.PropertyRepository
	bookingRepo domain.BookingRepository
	users       domain.UserDirectory
	validator   *validator.Validator
	logger      logger.Logger
}

func NewPropertyService(
	repo domain.PropertyRepository,
	bookingRepo domain.BookingRepository,
	users domain.UserDirectory,
	validator *validator.Validator,
	logger logger.Logger,
) domain.PropertyService {
	return &PropertyService{
		repo:        repo,
		bookingRepo: bookingRepo,
		users:       users,
		validator:   validator,
		logger:      logger,
	}
}

func (s *PropertyService) FindPropertyByID(ctx context.Context, id int64) (*domain.Property, error) {
	property, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("property %d could not be loaded: %w", id, err)
	}

	if property == nil {
		return nil, domain.ErrPropertyNotFound
	}

	return property, nil
}

func (s *PropertyService) GetProperty(ctx context.Context, id int64) (*domain.PropertySummary, error) {
	property, err := s.FindPropertyByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.summarize(ctx, property)
}

func (s *PropertyService) CreateProperty(ctx context.Context, intent domain.CreatePropertyIntent) (*domain.PropertySummary, error) {
	if err := s.validator.Struct(intent); err != nil {
		return nil, err
	}

	manager, err := s.users.FindUserByID(ctx, intent.ManagerID)
	if err != nil {
		return nil, err
	}
	owner, err := s.users.FindUserByID(ctx, intent.OwnerID)
	if err != nil {
		return nil, err
	}

	property := &domain.Property{
		Description: intent.Description,
		ManagerID:   manager.ID,
		OwnerID:     owner.ID,
	}

	if err := s.repo.Create(ctx, property); err != nil {
		return nil, fmt.Errorf("property could not be created: %w", err)
	}

	s.logger.InfoContext(ctx, "Property created", map[string]interface{}{
		"property_id": property.ID,
		"manager_id":  manager.ID,
		"owner_id":    owner.ID,
	})

	return &domain.PropertySummary{
		ID:           property.ID,
		Description:  property.Description,
		ManagerEmail: manager.Email,
		OwnerEmail:   owner.Email,
	}, nil
}

func (s *PropertyService) ListProperties(ctx context.Context) ([]*domain.PropertySummary, error) {
	properties, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("properties could not be listed: %w", err)
	}

	summaries := make([]*domain.PropertySummary, 0, len(properties))
	for _, property := range properties {
		summary, err := s.summarize(ctx, property)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, summary)
	}

	return summaries, nil
}

func (s *PropertyService) summarize(ctx context.Context, property *domain.Property) (*domain.PropertySummary, error) {
	manager, err := s.users.FindUserByID(ctx, property.ManagerID)
	if err != nil {
		return nil, err
	}
	owner, err := s.users.FindUserByID(ctx, property.OwnerID)
	if err != nil {
		return nil, err
	}

	active, err := s.bookingRepo.CountByPropertyAndStatus(ctx, property.ID, domain.BookingStatusActive)
	if err != nil {
		return nil, fmt.Errorf("active bookings of property %d could not be counted: %w", property.ID, err)
	}

	return &domain.PropertySummary{
		ID:             property.ID,
		Description:    property.Description,
		ManagerEmail:   manager.Email,
		OwnerEmail:     owner.Email,
		ActiveBookings: active,
	}, nil
}
