package environment

import (
	"context"

	"github.com/Nazarious-ucu/smart-environment-dashboard/internal/models"
)

// Placeholder figures until a municipal water feed and a USDA/FAO dataset are wired in.
const (
	mockDailyUsageGal       = 120
	mockWeeklyAvgGal        = 850
	mockSustainabilityScore = 70
)

// WaterUsageProvider returns mock water usage, identical for every city.
type WaterUsageProvider struct{}

func NewWaterUsageProvider() *WaterUsageProvider {
	return &WaterUsageProvider{}
}

func (WaterUsageProvider) Fetch(_ context.Context, _ string) (models.WaterUsage, error) {
	return models.WaterUsage{
		DailyUsageGal: mockDailyUsageGal,
		WeeklyAvgGal:  mockWeeklyAvgGal,
	}, nil
}

// FoodSustainabilityProvider returns a mock sustainability score, identical for every city.
type FoodSustainabilityProvider struct{}

func NewFoodSustainabilityProvider() *FoodSustainabilityProvider {
	return &FoodSustainabilityProvider{}
}

func (FoodSustainabilityProvider) Fetch(_ context.Context, _ string) (models.FoodSustainability, error) {
	return models.FoodSustainability{
		SustainabilityScore: mockSustainabilityScore,
	}, nil
}
