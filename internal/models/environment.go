package models

import (
	"errors"
	"time"
)

var ErrSnapshotNotFound = errors.New("snapshot not found")

// EnvironmentData is the combined dashboard record for a single city.
type EnvironmentData struct {
	City               string             `json:"city"`
	AirQuality         map[string]float64 `json:"air_quality"`
	WaterUsage         WaterUsage         `json:"water_usage"`
	FoodSustainability FoodSustainability `json:"food_sustainability"`
}

type WaterUsage struct {
	DailyUsageGal float64 `json:"daily_usage_gal"`
	WeeklyAvgGal  float64 `json:"weekly_avg_gal"`
}

type FoodSustainability struct {
	SustainabilityScore float64 `json:"sustainability_score"`
}

// Snapshot is an archived EnvironmentData taken by the refresher.
type Snapshot struct {
	ID        int64           `json:"id"`
	City      string          `json:"city"`
	Data      EnvironmentData `json:"data"`
	CreatedAt time.Time       `json:"created_at"`
}
