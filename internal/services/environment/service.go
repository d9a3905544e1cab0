package environment

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/Nazarious-ucu/smart-environment-dashboard/internal/models"
)

type airQualityClient interface {
	Fetch(ctx context.Context, city string) (map[string]float64, error)
}

type waterUsageFetcher interface {
	Fetch(ctx context.Context, city string) (models.WaterUsage, error)
}

type foodSustainabilityFetcher interface {
	Fetch(ctx context.Context, city string) (models.FoodSustainability, error)
}

// Aggregator combines the per-metric sources into one EnvironmentData record.
type Aggregator struct {
	air         airQualityClient
	water       waterUsageFetcher
	food        foodSustainabilityFetcher
	defaultCity string
	logger      zerolog.Logger
}

func NewAggregator(
	air airQualityClient,
	water waterUsageFetcher,
	food foodSustainabilityFetcher,
	defaultCity string,
	logger zerolog.Logger,
) *Aggregator {
	return &Aggregator{
		air:         air,
		water:       water,
		food:        food,
		defaultCity: defaultCity,
		logger:      logger.With().Str("component", "Aggregator").Logger(),
	}
}

func (a *Aggregator) DefaultCity() string {
	return a.defaultCity
}

// FetchAll builds the record for city. A failing source degrades to its empty
// value and is logged; only a cancelled or expired context, before or during
// the air quality call, is reported as an error.
func (a *Aggregator) FetchAll(ctx context.Context, city string) (models.EnvironmentData, error) {
	if city == "" {
		city = a.defaultCity
	}
	if err := ctx.Err(); err != nil {
		return models.EnvironmentData{}, err
	}

	data := models.EnvironmentData{City: city}

	air, err := a.air.Fetch(ctx, city)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			a.logger.Warn().
				Ctx(ctx).
				Str("city", city).
				Err(ctxErr).
				Msg("request ended while fetching air quality")
			return models.EnvironmentData{}, ctxErr
		}
		a.logger.Error().
			Ctx(ctx).
			Str("city", city).
			Err(err).
			Msg("air quality fetch failed, using empty readings")
		air = map[string]float64{}
	}
	if air == nil {
		air = map[string]float64{}
	}
	data.AirQuality = air

	water, err := a.water.Fetch(ctx, city)
	if err != nil {
		a.logger.Error().Ctx(ctx).Str("city", city).Err(err).Msg("water usage fetch failed")
	}
	data.WaterUsage = water

	food, err := a.food.Fetch(ctx, city)
	if err != nil {
		a.logger.Error().Ctx(ctx).Str("city", city).Err(err).Msg("food sustainability fetch failed")
	}
	data.FoodSustainability = food

	a.logger.Info().
		Ctx(ctx).
		Str("city", city).
		Int("pollutants", len(data.AirQuality)).
		Msg("environment data aggregated")

	return data, nil
}
