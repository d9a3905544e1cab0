package decorators_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Nazarious-ucu/smart-environment-dashboard/internal/models"
	"github.com/Nazarious-ucu/smart-environment-dashboard/internal/services/environment/decorators"
)

type mockAggregator struct {
	mock.Mock
}

func (m *mockAggregator) FetchAll(ctx context.Context, city string) (models.EnvironmentData, error) {
	args := m.Called(ctx, city)
	data, ok := args.Get(0).(models.EnvironmentData)
	if !ok {
		return models.EnvironmentData{}, args.Error(1)
	}
	return data, args.Error(1)
}

func (m *mockAggregator) DefaultCity() string { return "Chicago" }

type mockCache struct {
	mock.Mock
}

func (m *mockCache) Set(ctx context.Context, key string, value models.EnvironmentData) error {
	return m.Called(ctx, key, value).Error(0)
}

func (m *mockCache) Get(ctx context.Context, key string) (models.EnvironmentData, error) {
	args := m.Called(ctx, key)
	data, ok := args.Get(0).(models.EnvironmentData)
	if !ok {
		return models.EnvironmentData{}, args.Error(1)
	}
	return data, args.Error(1)
}

var chicago = models.EnvironmentData{
	City:               "Chicago",
	AirQuality:         map[string]float64{"pm25": 11},
	WaterUsage:         models.WaterUsage{DailyUsageGal: 120, WeeklyAvgGal: 850},
	FoodSustainability: models.FoodSustainability{SustainabilityScore: 70},
}

func TestCachedAggregator_FetchAll(t *testing.T) {
	ctx := context.Background()

	t.Run("CacheHitSkipsInner", func(t *testing.T) {
		inner := &mockAggregator{}
		c := &mockCache{}
		c.On("Get", mock.Anything, "environment:chicago").Return(chicago, nil).Once()
		t.Cleanup(func() {
			c.AssertExpectations(t)
			inner.AssertNumberOfCalls(t, "FetchAll", 0)
		})

		svc := decorators.NewCachedAggregator(inner, c, zerolog.Nop())

		data, err := svc.FetchAll(ctx, "Chicago")
		require.NoError(t, err)
		assert.Equal(t, chicago, data)
	})

	t.Run("CacheMissPopulatesCache", func(t *testing.T) {
		inner := &mockAggregator{}
		c := &mockCache{}
		c.On("Get", mock.Anything, "environment:chicago").Return(nil, errors.New("cache miss")).Once()
		inner.On("FetchAll", mock.Anything, "Chicago").Return(chicago, nil).Once()
		c.On("Set", mock.Anything, "environment:chicago", chicago).Return(nil).Once()
		t.Cleanup(func() {
			c.AssertExpectations(t)
			inner.AssertExpectations(t)
		})

		svc := decorators.NewCachedAggregator(inner, c, zerolog.Nop())

		data, err := svc.FetchAll(ctx, "Chicago")
		require.NoError(t, err)
		assert.Equal(t, chicago, data)
	})

	t.Run("CachedEntryForDifferentSpellingIsRefetched", func(t *testing.T) {
		inner := &mockAggregator{}
		c := &mockCache{}
		upper := chicago
		upper.City = "CHICAGO"
		c.On("Get", mock.Anything, "environment:chicago").Return(chicago, nil).Once()
		inner.On("FetchAll", mock.Anything, "CHICAGO").Return(upper, nil).Once()
		c.On("Set", mock.Anything, "environment:chicago", upper).Return(nil).Once()
		t.Cleanup(func() { inner.AssertExpectations(t) })

		svc := decorators.NewCachedAggregator(inner, c, zerolog.Nop())

		data, err := svc.FetchAll(ctx, "CHICAGO")
		require.NoError(t, err)
		assert.Equal(t, "CHICAGO", data.City)
	})

	t.Run("EmptyReadingIsNotCached", func(t *testing.T) {
		inner := &mockAggregator{}
		c := &mockCache{}
		empty := chicago
		empty.AirQuality = map[string]float64{}
		c.On("Get", mock.Anything, "environment:chicago").Return(nil, errors.New("cache miss")).Once()
		inner.On("FetchAll", mock.Anything, "Chicago").Return(empty, nil).Once()
		t.Cleanup(func() { c.AssertNumberOfCalls(t, "Set", 0) })

		svc := decorators.NewCachedAggregator(inner, c, zerolog.Nop())

		data, err := svc.FetchAll(ctx, "")
		require.NoError(t, err)
		assert.Empty(t, data.AirQuality)
	})

	t.Run("SetFailureIsNotFatal", func(t *testing.T) {
		inner := &mockAggregator{}
		c := &mockCache{}
		c.On("Get", mock.Anything, "environment:chicago").Return(nil, errors.New("dial tcp: refused")).Once()
		inner.On("FetchAll", mock.Anything, "Chicago").Return(chicago, nil).Once()
		c.On("Set", mock.Anything, "environment:chicago", chicago).Return(errors.New("dial tcp: refused")).Once()

		svc := decorators.NewCachedAggregator(inner, c, zerolog.Nop())

		data, err := svc.FetchAll(ctx, "Chicago")
		require.NoError(t, err)
		assert.Equal(t, chicago, data)
	})

	t.Run("InnerErrorIsReturned", func(t *testing.T) {
		inner := &mockAggregator{}
		c := &mockCache{}
		c.On("Get", mock.Anything, "environment:chicago").Return(nil, errors.New("cache miss")).Once()
		inner.On("FetchAll", mock.Anything, "Chicago").Return(nil, context.DeadlineExceeded).Once()

		svc := decorators.NewCachedAggregator(inner, c, zerolog.Nop())

		_, err := svc.FetchAll(ctx, "Chicago")
		require.ErrorIs(t, err, context.DeadlineExceeded)
		c.AssertNumberOfCalls(t, "Set", 0)
	})
}

func TestCachedAggregator_WriteThrough(t *testing.T) {
	ctx := context.Background()

	t.Run("IgnoresCachedEntryAndOverwritesIt", func(t *testing.T) {
		inner := &mockAggregator{}
		c := &mockCache{}
		fresh := chicago
		fresh.AirQuality = map[string]float64{"pm25": 42}
		inner.On("FetchAll", mock.Anything, "Chicago").Return(fresh, nil).Once()
		c.On("Set", mock.Anything, "environment:chicago", fresh).Return(nil).Once()
		t.Cleanup(func() {
			c.AssertExpectations(t)
			c.AssertNumberOfCalls(t, "Get", 0)
			inner.AssertExpectations(t)
		})

		svc := decorators.NewCachedAggregator(inner, c, zerolog.Nop()).WriteThrough()

		data, err := svc.FetchAll(ctx, "Chicago")
		require.NoError(t, err)
		assert.Equal(t, fresh, data)
		assert.Equal(t, "Chicago", svc.DefaultCity())
	})

	t.Run("InnerErrorSkipsCache", func(t *testing.T) {
		inner := &mockAggregator{}
		c := &mockCache{}
		inner.On("FetchAll", mock.Anything, "Chicago").
			Return(models.EnvironmentData{}, context.DeadlineExceeded).Once()
		t.Cleanup(func() { c.AssertNumberOfCalls(t, "Set", 0) })

		svc := decorators.NewCachedAggregator(inner, c, zerolog.Nop()).WriteThrough()

		_, err := svc.FetchAll(ctx, "")
		require.ErrorIs(t, err, context.DeadlineExceeded)
	})
}
