package decorators

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Nazarious-ucu/smart-environment-dashboard/internal/models"
)

type environmentGetter interface {
	FetchAll(ctx context.Context, city string) (models.EnvironmentData, error)
	DefaultCity() string
}

type cacheClient[T any] interface {
	Set(ctx context.Context, key string, value T) error
	Get(ctx context.Context, key string) (T, error)
}

// CachedAggregator is a read-through cache in front of the aggregator.
type CachedAggregator struct {
	inner  environmentGetter
	cache  cacheClient[models.EnvironmentData]
	logger zerolog.Logger
}

func NewCachedAggregator(
	inner environmentGetter,
	cache cacheClient[models.EnvironmentData],
	logger zerolog.Logger,
) *CachedAggregator {
	return &CachedAggregator{
		inner:  inner,
		cache:  cache,
		logger: logger.With().Str("component", "CachedAggregator").Logger(),
	}
}

func (s *CachedAggregator) DefaultCity() string {
	return s.inner.DefaultCity()
}

func cacheKey(city string) string {
	return fmt.Sprintf("environment:%s", strings.ToLower(city))
}

func (s *CachedAggregator) FetchAll(ctx context.Context, city string) (models.EnvironmentData, error) {
	if city == "" {
		city = s.inner.DefaultCity()
	}
	key := cacheKey(city)

	data, err := s.cache.Get(ctx, key)
	if err == nil && data.City == city {
		s.logger.Info().
			Ctx(ctx).
			Str("city", city).
			Str("key", key).
			Msg("cache hit")
		return data, nil
	}
	s.logger.Info().
		Ctx(ctx).
		Str("city", city).
		Str("key", key).
		AnErr("reason", err).
		Msg("cache miss")

	return s.fetchAndStore(ctx, city, key)
}

// WriteThrough returns a view of s whose FetchAll always asks the inner
// aggregator and overwrites the cached entry. The refresher uses it so every
// archived snapshot is a fresh reading.
func (s *CachedAggregator) WriteThrough() *WriteThroughAggregator {
	return &WriteThroughAggregator{cached: s}
}

type WriteThroughAggregator struct {
	cached *CachedAggregator
}

func (w *WriteThroughAggregator) DefaultCity() string {
	return w.cached.DefaultCity()
}

func (w *WriteThroughAggregator) FetchAll(ctx context.Context, city string) (models.EnvironmentData, error) {
	if city == "" {
		city = w.cached.DefaultCity()
	}
	return w.cached.fetchAndStore(ctx, city, cacheKey(city))
}

func (s *CachedAggregator) fetchAndStore(ctx context.Context, city, key string) (models.EnvironmentData, error) {
	data, err := s.inner.FetchAll(ctx, city)
	if err != nil {
		s.logger.Error().
			Ctx(ctx).
			Str("city", city).
			Err(err).
			Msg("inner aggregator failed")
		return models.EnvironmentData{}, err
	}

	// An empty reading usually means upstream was down; don't pin it for the whole TTL.
	if len(data.AirQuality) == 0 {
		return data, nil
	}

	if err := s.cache.Set(ctx, key, data); err != nil {
		s.logger.Error().
			Ctx(ctx).
			Str("city", city).
			Str("key", key).
			Err(err).
			Msg("cache set failed")
	}

	return data, nil
}
