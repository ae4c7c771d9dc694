package service

import (
	"context"
	"fmt"
	"strings"

	"bookingapi/internal/domain"
	"bookingapi/pkg/logger"
	"bookingapi/pkg/validator"
)

type UserService struct {
	repo      domain.UserRepository
	validator *validator.Validator
	logger    logger.Logger
}

func NewUserService(repo domain.UserRepository, validator *validator.Validator, logger logger.Logger) domain.UserService {
	return &UserService{
		repo:      repo,
		validator: validator,
		logger:    logger,
	}
}

func (s *UserService) FindUserByID(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("user %d could not be loaded: %w", id, err)
	}

	if user == nil {
		return nil, domain.ErrUserNotFound
	}

	return user, nil
}

func (s *UserService) CreateUser(ctx context.Context, intent domain.CreateUserIntent) (*domain.User, error) {
	intent.Email = strings.TrimSpace(intent.Email)
	if err := s.validator.Struct(intent); err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByEmail(ctx, intent.Email)
	if err != nil {
		return nil, fmt.Errorf("user could not be created: %w", err)
	}

	if existing != nil {
		return nil, domain.NewConflictError("A user with email %s already exists", intent.Email)
	}

	user := &domain.User{
		Email:    intent.Email,
		UserType: intent.UserType,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("user could not be created: %w", err)
	}

	s.logger.InfoContext(ctx, "User created", map[string]interface{}{
		"user_id":   user.ID,
		"user_type": user.UserType,
	})

	return user, nil
}

func (s *UserService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	users, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("users could not be listed: %w", err)
	}
	return users, nil
}
