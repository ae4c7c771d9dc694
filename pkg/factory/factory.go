package factory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"bookingapi/internal/config"
	internaldb "bookingapi/internal/database"
	"bookingapi/internal/domain"
	"bookingapi/internal/repository"
	"bookingapi/internal/service"
	"bookingapi/pkg/cache"
	"bookingapi/pkg/circuitbreaker"
	"bookingapi/pkg/database"
	"bookingapi/pkg/lock"
	"bookingapi/pkg/logger"
	"bookingapi/pkg/metrics"
	redisclient "bookingapi/pkg/redis"
	"bookingapi/pkg/tracing"
	"bookingapi/pkg/validator"
)

type Factory interface {
	GetLogger() logger.Logger
	GetConfig() *config.Config
	GetDB() *sql.DB
	GetRedisClient() *redis.Client
	GetCache() cache.Cache
	GetCacheManager() cache.CacheStrategy

	GetUserRepository() domain.UserRepository
	GetPropertyRepository() domain.PropertyRepository
	GetBookingRepository() domain.BookingRepository

	GetUserService() domain.UserService
	GetPropertyService() domain.PropertyService
	GetBookingService() domain.BookingService

	Close(ctx context.Context) error
}

type AppFactory struct {
	config         *config.Config
	logger         logger.Logger
	db             *sql.DB
	dialect        internaldb.Dialect
	redisClient    *redis.Client
	cache          cache.Cache
	cacheManager   cache.CacheStrategy
	shutdownTracer func(context.Context) error

	txManager *internaldb.TxManager
	locks     *lock.Keyed
	validator *validator.Validator

	userRepository     domain.UserRepository
	propertyRepository domain.PropertyRepository
	bookingRepository  domain.BookingRepository

	userService     domain.UserService
	propertyService domain.PropertyService
	bookingService  domain.BookingService
}

func NewFactory(ctx context.Context) (Factory, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	log := logger.New(logger.LogLevel(cfg.LogLevel), cfg.AppEnv, os.Stdout)

	shutdownTracer, err := tracing.Init(ctx, tracing.Config{
		ServiceName:  cfg.Tracing.ServiceName,
		OTLPEndpoint: cfg.Tracing.OTLPEndpoint,
		Stdout:       cfg.Tracing.Stdout,
	})
	if err != nil {
		return nil, err
	}

	dialect, err := internaldb.NewDialect(cfg.Database.Driver)
	if err != nil {
		return nil, err
	}

	db, err := database.Open(ctx, cfg.Database, log)
	if err != nil {
		return nil, err
	}

	if err := internaldb.NewMigrationService(db, dialect, log).RunMigrations(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrations could not be applied: %w", err)
	}

	factory := &AppFactory{
		config:         cfg,
		logger:         log,
		db:             db,
		dialect:        dialect,
		shutdownTracer: shutdownTracer,
		txManager:      internaldb.NewTxManager(db, log),
		locks:          lock.NewKeyed(),
		validator:      validator.New(),
	}

	if cfg.Redis.Enabled() {
		if err := factory.initCache(ctx); err != nil {
			db.Close()
			return nil, err
		}
	} else {
		log.Info("Redis not configured, directory cache disabled", nil)
	}

	factory.initRepositories()
	factory.initServices()

	return factory, nil
}

func (f *AppFactory) initCache(ctx context.Context) error {
	client, err := redisclient.NewClient(ctx, f.config.Redis, f.logger)
	if err != nil {
		return err
	}

	breaker := circuitbreaker.New(circuitbreaker.Settings{
		Name:             "redis-cache",
		MaxRequests:      3,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
		IsSuccessful:     cache.IsSuccessful,
		OnStateChange: func(name string, from, to circuitbreaker.State) {
			metrics.SetCircuitBreakerState(name, int(to))
			f.logger.Warn("Circuit breaker state changed", map[string]interface{}{
				"name": name,
				"from": from.String(),
				"to":   to.String(),
			})
		},
	})
	metrics.SetCircuitBreakerState(breaker.Name(), int(breaker.State()))

	f.redisClient = client
	f.cache = cache.NewRedisCache(client, f.logger, "bookingapi")
	f.cacheManager = cache.NewCacheManager(f.cache, breaker, f.logger)

	return nil
}

func (f *AppFactory) initRepositories() {
	f.userRepository = repository.NewUserRepository(f.db, f.logger)
	f.propertyRepository = repository.NewPropertyRepository(f.db, f.logger)
	f.bookingRepository = repository.NewBookingRepository(f.db, f.dialect, f.logger)
}

func (f *AppFactory) initServices() {
	f.userService = service.NewUserService(f.userRepository, f.validator, f.logger)
	if f.cacheManager != nil {
		f.userService = service.NewCachedUserService(f.userService, f.cacheManager, f.config.Redis.CacheTTL, f.logger)
	}

	f.propertyService = service.NewPropertyService(
		f.propertyRepository,
		f.bookingRepository,
		f.userService,
		f.validator,
		f.logger,
	)
	if f.cacheManager != nil {
		f.propertyService = service.NewCachedPropertyService(f.propertyService, f.cacheManager, f.config.Redis.CacheTTL, f.logger)
	}

	f.bookingService = service.NewBookingService(
		f.bookingRepository,
		f.userService,
		f.propertyService,
		f.txManager,
		f.locks,
		f.validator,
		f.logger,
	)
}

func (f *AppFactory) GetLogger() logger.Logger {
	return f.logger
}

func (f *AppFactory) GetConfig() *config.Config {
	return f.config
}

func (f *AppFactory) GetDB() *sql.DB {
	return f.db
}

func (f *AppFactory) GetRedisClient() *redis.Client {
	return f.redisClient
}

// GetCache returns nil when Redis is not configured.
func (f *AppFactory) GetCache() cache.Cache {
	return f.cache
}

func (f *AppFactory) GetCacheManager() cache.CacheStrategy {
	return f.cacheManager
}

func (f *AppFactory) GetUserRepository() domain.UserRepository {
	return f.userRepository
}

func (f *AppFactory) GetPropertyRepository() domain.PropertyRepository {
	return f.propertyRepository
}

func (f *AppFactory) GetBookingRepository() domain.BookingRepository {
	return f.bookingRepository
}

func (f *AppFactory) GetUserService() domain.UserService {
	return f.userService
}

func (f *AppFactory) GetPropertyService() domain.PropertyService {
	return f.propertyService
}

func (f *AppFactory) GetBookingService() domain.BookingService {
	return f.bookingService
}

// Close flushes pending spans and releases the connections.
func (f *AppFactory) Close(ctx context.Context) error {
	var errs []error

	if f.shutdownTracer != nil {
		if err := f.shutdownTracer(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer shutdown: %w", err))
		}
	}
	if f.redisClient != nil {
		if err := f.redisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis close: %w", err))
		}
	}
	if err := f.db.Close(); err != nil {
		errs = append(errs, fmt.Errorf("database close: %w", err))
	}

	return errors.Join(errs...)
}
