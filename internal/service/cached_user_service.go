package service

import (
	"context"
	"time"

	"bookingapi/internal/domain"
	"bookingapi/pkg/cache"
	"bookingapi/pkg/logger"
)

// CachedUserService serves user lookups read-through from the cache. Users
// are never updated or deleted, so entries are only ever expired by TTL.
type CachedUserService struct {
	userService  domain.UserService
	cacheManager cache.CacheStrategy
	ttl          time.Duration
	logger       logger.Logger
}

func NewCachedUserService(
	userService domain.UserService,
	cacheManager cache.CacheStrategy,
	ttl time.Duration,
	logger logger.Logger,
) domain.UserService {
	if ttl <= 0 {
		ttl = cache.LongExpiration
	}
	return &CachedUserService{
		userService:  userService,
		cacheManager: cacheManager,
		ttl:          ttl,
		logger:       logger,
	}
}

func (s *CachedUserService) FindUserByID(ctx context.Context, id int64) (*domain.User, error) {
	var user *domain.User
	err := s.cacheManager.ReadThrough(ctx, cache.UserCacheKey(id), &user, func() (interface{}, error) {
		return s.userService.FindUserByID(ctx, id)
	}, s.ttl)
	if err != nil {
		return nil, err
	}

	return user, nil
}

func (s *CachedUserService) CreateUser(ctx context.Context, intent domain.CreateUserIntent) (*domain.User, error) {
	return s.userService.CreateUser(ctx, intent)
}

func (s *CachedUserService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	return s.userService.ListUsers(ctx)
}
