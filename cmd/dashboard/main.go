package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/Nazarious-ucu/smart-environment-dashboard/internal/app"
	"github.com/Nazarious-ucu/smart-environment-dashboard/internal/config"
	"github.com/Nazarious-ucu/smart-environment-dashboard/internal/services/metrics"
	"github.com/Nazarious-ucu/smart-environment-dashboard/pkg/logger"
)

// @title Smart Environment Dashboard API
// @version 1.0
// @description Air quality, water usage and food sustainability data per city
// @host localhost:8080
// @BasePath /
func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found: %v", err)
	}

	cfg, err := config.NewConfig()
	if err != nil {
		log.Panicf("failed to load configuration: %v", err)
	}

	l, err := logger.NewLogger(cfg.LogsPath, cfg.ServiceName)
	if err != nil {
		log.Panicf("failed to initialize logger: %v", err)
	}

	tracked := append([]string{cfg.DefaultCity}, cfg.Refresh.Cities...)
	application := app.New(*cfg, l, metrics.NewMetrics(cfg.ServiceName, tracked...))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := application.Start(ctx); err != nil {
		log.Panicf("Application failed to run: %v", err)
	}
}
