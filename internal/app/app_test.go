package app_test

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nazarious-ucu/smart-environment-dashboard/internal/app"
	"github.com/Nazarious-ucu/smart-environment-dashboard/internal/config"
	"github.com/Nazarious-ucu/smart-environment-dashboard/internal/services/metrics"
)

const upstreamBody = `{"results":[
	{"measurements":[{"parameter":"pm25","value":10},{"parameter":"o3","value":0.02}]},
	{"measurements":[{"parameter":"pm25","value":14}]}
]}`

func newUpstream(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, upstreamBody)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(t *testing.T, upstreamURL string) config.Config {
	t.Helper()
	dir := t.TempDir()
	return config.Config{
		ServiceName: "test_dashboard",
		DefaultCity: "Chicago",
		Server: config.Server{
			Host:            "127.0.0.1",
			Port:            "0",
			ReadTimeout:     5,
			ShutdownTimeout: 2,
		},
		AirQuality: config.AirQuality{URL: upstreamURL, Timeout: 5},
		Breaker:    config.Breaker{TimeInterval: 30, TimeTimeOut: 10, RepeatNumber: 5},
		DB:         config.Db{Dialect: "sqlite", Source: filepath.Join(dir, "environment.db")},
		Refresh:    config.Refresh{Schedule: "0 */15 * * * *", Cities: []string{"Chicago"}},
		DataSource: config.DataSource{Mode: config.ModeLive},

		LogsPath:     filepath.Join(dir, "app.log"),
		HTTPLogsPath: filepath.Join(dir, "http.log"),
	}
}

func initApp(t *testing.T, cfg config.Config) (*app.App, app.ServiceContainer) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	a := app.New(cfg, zerolog.Nop(), metrics.NewMetrics(cfg.ServiceName, cfg.DefaultCity))
	container, err := a.Init(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Shutdown(container) })
	return a, container
}

func get(t *testing.T, r http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	req, err := http.NewRequest(http.MethodGet, target, nil)
	require.NoError(t, err)
	r.ServeHTTP(rec, req)
	return rec
}

func TestInit_LiveMode(t *testing.T) {
	upstream := newUpstream(t)
	_, container := initApp(t, testConfig(t, upstream.URL))

	rec := get(t, container.Router, "/api/data/Chicago")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"city":"Chicago",
		"air_quality":{"pm25":14,"o3":0.02},
		"water_usage":{"daily_usage_gal":120,"weekly_avg_gal":850},
		"food_sustainability":{"sustainability_score":70}
	}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = get(t, container.Router, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Environment in Chicago")

	rec = get(t, container.Router, "/static/js/script.js")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Plotly.newPlot")

	rec = get(t, container.Router, "/api/history/Chicago")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = get(t, container.Router, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	// the data and history requests both carry a city
	assert.Contains(t, rec.Body.String(), `test_dashboard_environment_requests_total{city="Chicago"} 2`)
	assert.Contains(t, rec.Body.String(), `test_dashboard_environment_errors_total{city="Chicago",error_type="client_error"} 1`)

	rec = get(t, container.Router, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","air_quality_breaker":"closed"}`, rec.Body.String())
}

func TestInit_FileMode(t *testing.T) {
	cfg := testConfig(t, "http://127.0.0.1:1")
	raw := []byte("{\"city\": \"Springfield\",\n\"air_quality\": {\"pm25\": 3},\n" +
		"\"water_usage\": {\"daily_usage_gal\": 1, \"weekly_avg_gal\": 7},\n" +
		"\"food_sustainability\": {\"sustainability_score\": 55}}\n")
	path := filepath.Join(t.TempDir(), "mock_data.json")
	require.NoError(t, os.WriteFile(path, raw, 0o600))

	cfg.DataSource = config.DataSource{Mode: config.ModeFile, MockDataPath: path}
	_, container := initApp(t, cfg)

	rec := get(t, container.Router, "/api/data")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, raw, rec.Body.Bytes())

	rec = get(t, container.Router, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Environment in Springfield")
}

func TestInit_FileModeInvalidDatasetReleasesResources(t *testing.T) {
	cfg := testConfig(t, "http://127.0.0.1:1")
	path := filepath.Join(t.TempDir(), "mock_data.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"city":"Springfield"}`), 0o600))
	cfg.DataSource = config.DataSource{Mode: config.ModeFile, MockDataPath: path}
	cfg.DB.Enabled = true

	a := app.New(cfg, zerolog.Nop(), metrics.NewMetrics(cfg.ServiceName))
	container, err := a.Init(context.Background())
	require.Error(t, err)

	// the database was opened before the dataset failed to load
	require.NotNil(t, container.Db)
	assert.Error(t, container.Db.Ping())
}

func TestInit_ArchiveAndRefresher(t *testing.T) {
	upstream := newUpstream(t)
	cfg := testConfig(t, upstream.URL)
	cfg.DB.Enabled = true
	cfg.Refresh.Enabled = true
	_, container := initApp(t, cfg)

	require.NotNil(t, container.Snapshots)
	require.NotNil(t, container.Refresher)

	container.Refresher.RunOnce(context.Background())

	rec := get(t, container.Router, "/api/history/Chicago?limit=5")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"city":"Chicago"`)
	assert.Contains(t, rec.Body.String(), `"pm25":14`)

	rec = get(t, container.Router, "/api/history/Chicago/latest")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"city":"Chicago"`)

	rec = get(t, container.Router, "/api/history/Atlantis/latest")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStart_StopsOnContextCancel(t *testing.T) {
	upstream := newUpstream(t)
	cfg := testConfig(t, upstream.URL)

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	_, port, err := net.SplitHostPort(l.Addr().String())
	require.NoError(t, err)
	require.NoError(t, l.Close())
	cfg.Server.Port = port

	a := app.New(cfg, zerolog.Nop(), metrics.NewMetrics(cfg.ServiceName, cfg.DefaultCity))
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- a.Start(ctx) }()

	assert.Eventually(t, func() bool {
		resp, err := http.Get("http://127.0.0.1:" + port + "/healthz")
		if err != nil {
			return false
		}
		defer func() { _ = resp.Body.Close() }()
		body, _ := io.ReadAll(resp.Body)
		return resp.StatusCode == http.StatusOK && strings.Contains(string(body), "ok")
	}, 5*time.Second, 50*time.Millisecond)

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("application did not stop")
	}
}
