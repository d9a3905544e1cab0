package http

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Nazarious-ucu/smart-environment-dashboard/internal/models"
)

const (
	timeoutDuration = 10 * time.Second

	defaultHistoryLimit = 10
	maxHistoryLimit     = 100
)

type environmentGetter interface {
	FetchAll(ctx context.Context, city string) (models.EnvironmentData, error)
	DefaultCity() string
}

type dataset interface {
	Raw() []byte
	Record() models.EnvironmentData
}

type snapshotLister interface {
	ListByCity(ctx context.Context, city string, limit int) ([]models.Snapshot, error)
	Latest(ctx context.Context, city string) (models.Snapshot, error)
}

type breakerState interface {
	State() string
}

type Handler struct {
	service environmentGetter
	dataset dataset
	history snapshotLister
	breaker breakerState
}

func NewHandler(svc environmentGetter) *Handler {
	return &Handler{service: svc}
}

// WithDataset switches the page and /api/data to the preloaded file.
func (h *Handler) WithDataset(ds dataset) *Handler {
	h.dataset = ds
	return h
}

// WithHistory enables the snapshot history endpoint.
func (h *Handler) WithHistory(history snapshotLister) *Handler {
	h.history = history
	return h
}

// WithBreaker reports the upstream circuit breaker state on /healthz.
func (h *Handler) WithBreaker(b breakerState) *Handler {
	h.breaker = b
	return h
}

// Index
// @Summary Dashboard page
// @Description Renders the HTML dashboard for the default city
// @Tags dashboard
// @Produce html
// @Success 200
// @Failure 500
// @Router / [get]
func (h *Handler) Index(c *gin.Context) {
	if h.dataset != nil {
		c.HTML(http.StatusOK, "index.html", gin.H{
			"data":     h.dataset.Record(),
			"endpoint": "/api/data",
		})
		return
	}

	ctxWithTimeout, cancel := context.WithTimeout(c.Request.Context(), timeoutDuration)
	defer cancel()

	city := h.service.DefaultCity()
	data, err := h.service.FetchAll(ctxWithTimeout, city)
	if err != nil {
		writeError(c, err)
		return
	}

	c.HTML(http.StatusOK, "index.html", gin.H{
		"data":     data,
		"endpoint": "/api/data/" + url.PathEscape(city),
	})
}

// GetByCity
// @Summary Get environment data
// @Description Returns air quality, water usage and food sustainability for a city
// @Tags environment
// @Produce json
// @Param city path string true "City name"
// @Success 200 {object} models.EnvironmentData
// @Failure 500
// @Failure 504
// @Router /api/data/{city} [get]
func (h *Handler) GetByCity(c *gin.Context) {
	ctxWithTimeout, cancel := context.WithTimeout(c.Request.Context(), timeoutDuration)
	defer cancel()

	data, err := h.service.FetchAll(ctxWithTimeout, c.Param("city"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, data)
}

// GetData
// @Summary Get dashboard data
// @Description Returns the mock data file unchanged in file mode, or the default city's data
// @Tags environment
// @Produce json
// @Success 200 {object} models.EnvironmentData
// @Failure 500
// @Router /api/data [get]
func (h *Handler) GetData(c *gin.Context) {
	if h.dataset != nil {
		c.Data(http.StatusOK, "application/json", h.dataset.Raw())
		return
	}

	ctxWithTimeout, cancel := context.WithTimeout(c.Request.Context(), timeoutDuration)
	defer cancel()

	data, err := h.service.FetchAll(ctxWithTimeout, h.service.DefaultCity())
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, data)
}

// GetHistory
// @Summary Get archived snapshots
// @Description Returns the newest archived records for a city
// @Tags environment
// @Produce json
// @Param city path string true "City name"
// @Param limit query int false "Maximum number of snapshots (1-100)"
// @Success 200 {array} models.Snapshot
// @Failure 400
// @Failure 404
// @Failure 500
// @Router /api/history/{city} [get]
func (h *Handler) GetHistory(c *gin.Context) {
	if h.history == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "snapshot archive is disabled"})
		return
	}

	limit := defaultHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxHistoryLimit {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be an integer between 1 and 100"})
			return
		}
		limit = n
	}

	ctxWithTimeout, cancel := context.WithTimeout(c.Request.Context(), timeoutDuration)
	defer cancel()

	snapshots, err := h.history.ListByCity(ctxWithTimeout, c.Param("city"), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	if snapshots == nil {
		snapshots = []models.Snapshot{}
	}

	c.JSON(http.StatusOK, snapshots)
}

// GetLatest
// @Summary Get latest snapshot
// @Description Returns the newest archived record for a city
// @Tags environment
// @Produce json
// @Param city path string true "City name"
// @Success 200 {object} models.Snapshot
// @Failure 404
// @Failure 500
// @Router /api/history/{city}/latest [get]
func (h *Handler) GetLatest(c *gin.Context) {
	if h.history == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "snapshot archive is disabled"})
		return
	}

	ctxWithTimeout, cancel := context.WithTimeout(c.Request.Context(), timeoutDuration)
	defer cancel()

	snapshot, err := h.history.Latest(ctxWithTimeout, c.Param("city"))
	if err != nil {
		if errors.Is(err, models.ErrSnapshotNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no snapshots for city"})
			return
		}
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

// Health
// @Summary Liveness probe
// @Description Always 200 while the process serves; reports "degraded" when the air quality breaker is open
// @Tags health
// @Produce json
// @Success 200
// @Router /healthz [get]
func (h *Handler) Health(c *gin.Context) {
	if h.breaker == nil {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
		return
	}

	state := h.breaker.State()
	status := "ok"
	if state == "open" {
		status = "degraded"
	}
	c.JSON(http.StatusOK, gin.H{"status": status, "air_quality_breaker": state})
}

func writeError(c *gin.Context, err error) {
	if errors.Is(err, context.DeadlineExceeded) {
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "timed out fetching environment data"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
