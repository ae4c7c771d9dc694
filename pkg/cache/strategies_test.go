package cache

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookingapi/pkg/circuitbreaker"
	"bookingapi/pkg/logger"
)

// memoryCache stores JSON like RedisCache does, and can be switched to fail.
type memoryCache struct {
	mu    sync.Mutex
	data  map[string][]byte
	down  bool
	gets  int
	sets  int
	pings int
}

var errDown = errors.New("connection refused")

func newMemoryCache() *memoryCache {
	return &memoryCache{data: make(map[string][]byte)}
}

func (m *memoryCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets++
	if m.down {
		return errDown
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.data[key] = data
	return nil
}

func (m *memoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	if m.down {
		return errDown
	}
	data, ok := m.data[key]
	if !ok {
		return ErrCacheMiss
	}
	return json.Unmarshal(data, dest)
}

func (m *memoryCache) Delete(ctx context.Context, key string) error {
	return m.DeleteMultiple(ctx, []string{key})
}

func (m *memoryCache) DeleteMultiple(ctx context.Context, keys []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.down {
		return errDown
	}
	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

func (m *memoryCache) Ping(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pings++
	if m.down {
		return errDown
	}
	return nil
}

type entity struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

func newManager(c Cache, threshold uint32) CacheStrategy {
	breaker := circuitbreaker.New(circuitbreaker.Settings{
		Name:             "cache-test",
		FailureThreshold: threshold,
		Timeout:          time.Minute,
		IsSuccessful:     IsSuccessful,
	})
	return NewCacheManager(c, breaker, logger.Nop())
}

func TestReadThroughFetchesOnceThenHits(t *testing.T) {
	c := newMemoryCache()
	cm := newManager(c, 3)
	ctx := context.Background()

	fetches := 0
	fetch := func() (interface{}, error) {
		fetches++
		return &entity{ID: 1, Email: "guest@example.com"}, nil
	}

	var first *entity
	require.NoError(t, cm.ReadThrough(ctx, UserCacheKey(1), &first, fetch, ShortExpiration))
	var second *entity
	require.NoError(t, cm.ReadThrough(ctx, UserCacheKey(1), &second, fetch, ShortExpiration))

	assert.Equal(t, 1, fetches)
	assert.Equal(t, "guest@example.com", first.Email)
	assert.Equal(t, first, second)
}

func TestReadThroughPropagatesFetchError(t *testing.T) {
	cm := newManager(newMemoryCache(), 3)
	errNotFound := errors.New("not found")

	var dest *entity
	err := cm.ReadThrough(context.Background(), PropertyCacheKey(9), &dest, func() (interface{}, error) {
		return nil, errNotFound
	}, ShortExpiration)

	assert.ErrorIs(t, err, errNotFound)
	assert.Nil(t, dest)
}

func TestReadThroughSurvivesCacheOutage(t *testing.T) {
	c := newMemoryCache()
	c.down = true
	cm := newManager(c, 2)
	ctx := context.Background()

	fetch := func() (interface{}, error) {
		return &entity{ID: 5}, nil
	}

	for i := 0; i < 5; i++ {
		var dest *entity
		require.NoError(t, cm.ReadThrough(ctx, UserCacheKey(5), &dest, fetch, ShortExpiration))
		assert.Equal(t, int64(5), dest.ID)
	}

	// the breaker opened after the first two failed round trips
	assert.Equal(t, 1, c.gets)
	assert.Equal(t, 1, c.sets)
}

func TestMissesDoNotTripBreaker(t *testing.T) {
	c := newMemoryCache()
	cm := newManager(c, 1)
	ctx := context.Background()

	for i := int64(1); i <= 5; i++ {
		var dest *entity
		require.NoError(t, cm.ReadThrough(ctx, UserCacheKey(i), &dest, func() (interface{}, error) {
			return &entity{ID: i}, nil
		}, ShortExpiration))
	}

	assert.Equal(t, 5, c.gets)
	assert.Equal(t, 5, c.sets)
}

func TestInvalidate(t *testing.T) {
	c := newMemoryCache()
	cm := newManager(c, 3)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, PropertyCacheKey(1), &entity{ID: 1}, ShortExpiration))
	require.NoError(t, cm.Invalidate(ctx, PropertyCacheKey(1)))

	var dest entity
	assert.ErrorIs(t, c.Get(ctx, PropertyCacheKey(1), &dest), ErrCacheMiss)
}

func TestCacheKeys(t *testing.T) {
	assert.Equal(t, "user:id:42", UserCacheKey(42))
	assert.Equal(t, "property:id:7", PropertyCacheKey(7))
}
