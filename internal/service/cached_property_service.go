package service

import (
	"context"
	"time"

	"bookingapi/internal/domain"
	"bookingapi/pkg/cache"
	"bookingapi/pkg/logger"
)

// CachedPropertyService caches the property record only. Summaries carry a
// live booking count and always go to the store.
type CachedPropertyService struct {
	propertyService domain.PropertyService
	cacheManager    cache.CacheStrategy
	ttl             time.Duration
	logger          logger.Logger
}

func NewCachedPropertyService(
	propertyService domain.PropertyService,
	cacheManager cache.CacheStrategy,
	ttl time.Duration,
	logger logger.Logger,
) domain.PropertyService {
	if ttl <= 0 {
		ttl = cache.LongExpiration
	}
	return &CachedPropertyService{
		propertyService: propertyService,
		cacheManager:    cacheManager,
		ttl:             ttl,
		logger:          logger,
	}
}

func (s *CachedPropertyService) FindPropertyByID(ctx context.Context, id int64) (*domain.Property, error) {
	var property *domain.Property
	err := s.cacheManager.ReadThrough(ctx, cache.PropertyCacheKey(id), &property, func() (interface{}, error) {
		return s.propertyService.FindPropertyByID(ctx, id)
	}, s.ttl)
	if err != nil {
		return nil, err
	}

	return property, nil
}

func (s *CachedPropertyService) GetProperty(ctx context.Context, id int64) (*domain.PropertySummary, error) {
	return s.propertyService.GetProperty(ctx, id)
}

func (s *CachedPropertyService) CreateProperty(ctx context.Context, intent domain.CreatePropertyIntent) (*domain.PropertySummary, error) {
	return s.propertyService.CreateProperty(ctx, intent)
}

func (s *CachedPropertyService) ListProperties(ctx context.Context) ([]*domain.PropertySummary, error) {
	return s.propertyService.ListProperties(ctx)
}
