package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

const (
	ModeLive = "live"
	ModeFile = "file"
)

var ErrUnknownDataSource = errors.New("unknown data source mode")

type Server struct {
	Host            string `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port            string `envconfig:"SERVER_PORT" default:"8080"`
	ReadTimeout     int    `envconfig:"SERVER_TIMEOUT" default:"10"`
	ShutdownTimeout int    `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"5"`
}

type AirQuality struct {
	URL     string `envconfig:"AIR_QUALITY_API_URL" default:"https://api.openaq.org/v2/latest"`
	APIKey  string `envconfig:"AIR_QUALITY_API_KEY"`
	Timeout int    `envconfig:"AIR_QUALITY_TIMEOUT" default:"10"`
}

type Breaker struct {
	TimeInterval int    `envconfig:"BREAKER_INTERVAL" default:"30"`
	TimeTimeOut  int    `envconfig:"BREAKER_TIMEOUT" default:"10"`
	RepeatNumber uint32 `envconfig:"BREAKER_REPEAT_NUM" default:"5"`
}

type Redis struct {
	Enabled  bool   `envconfig:"REDIS_ENABLED" default:"false"`
	Host     string `envconfig:"REDIS_HOST" default:"localhost"`
	Port     string `envconfig:"REDIS_PORT" default:"6379"`
	DbType   int    `envconfig:"REDIS_DB_TYPE" default:"0"`
	LiveTime int    `envconfig:"REDIS_LIVE_TIME" default:"10"` // minutes
}

type Db struct {
	Enabled bool   `envconfig:"DB_ENABLED" default:"false"`
	Dialect string `envconfig:"DB_DIALECT" default:"sqlite"`
	Source  string `envconfig:"DB_NAME" default:"environment.db"`
}

type Refresh struct {
	Enabled  bool     `envconfig:"REFRESH_ENABLED" default:"false"`
	Schedule string   `envconfig:"REFRESH_SCHEDULE" default:"0 */15 * * * *"`
	Cities   []string `envconfig:"REFRESH_CITIES" default:"Chicago"`
}

type DataSource struct {
	Mode         string `envconfig:"DATA_SOURCE" default:"live"`
	MockDataPath string `envconfig:"MOCK_DATA_PATH" default:"data/mock_data.json"`
}

type Config struct {
	ServiceName string `envconfig:"SERVICE_NAME" default:"environment_dashboard"`
	DefaultCity string `envconfig:"DEFAULT_CITY" default:"Chicago"`

	AirQuality AirQuality
	Server     Server
	Breaker    Breaker
	Redis      Redis
	DB         Db
	Refresh    Refresh
	DataSource DataSource

	LogsPath     string `envconfig:"LOGS_PATH" default:"./log/environment-dashboard.log"`
	HTTPLogsPath string `envconfig:"HTTP_LOGS_PATH" default:"./log/outbound-http.log"`
}

func NewConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}

	cfg.DataSource.Mode = strings.ToLower(strings.TrimSpace(cfg.DataSource.Mode))
	if cfg.DataSource.Mode != ModeLive && cfg.DataSource.Mode != ModeFile {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDataSource, cfg.DataSource.Mode)
	}
	return &cfg, nil
}

func (c *Config) ServerAddress() string {
	return c.Server.Host + ":" + c.Server.Port
}

func (c *Config) FileMode() bool {
	return c.DataSource.Mode == ModeFile
}

func (r *Redis) Address() string {
	return r.Host + ":" + r.Port
}

// Redacted returns a copy safe to log.
func (c Config) Redacted() Config {
	if c.AirQuality.APIKey != "" {
		c.AirQuality.APIKey = "[REDACTED]"
	}
	return c
}
