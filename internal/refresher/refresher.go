package refresher

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/Nazarious-ucu/smart-environment-dashboard/internal/models"
)

const timeoutDuration = 30 * time.Second

var ErrNoCities = errors.New("refresher has no cities configured")

type environmentGetter interface {
	FetchAll(ctx context.Context, city string) (models.EnvironmentData, error)
}

type snapshotSaver interface {
	Save(ctx context.Context, data models.EnvironmentData) error
}

type runRecorder interface {
	ObserveRefreshRun()
	ObserveRefreshFailure(city, stage string)
}

// Refresher periodically pulls environment data for a fixed set of cities,
// warming the cache and archiving a snapshot of each result.
type Refresher struct {
	service  environmentGetter
	saver    snapshotSaver
	recorder runRecorder
	cities   []string
	spec     string
	logger   zerolog.Logger
	cron     *cron.Cron
	cancel   context.CancelFunc
}

// New builds a Refresher. saver may be nil when the snapshot archive is disabled.
func New(
	service environmentGetter,
	saver snapshotSaver,
	recorder runRecorder,
	cities []string,
	spec string,
	logger zerolog.Logger,
) *Refresher {
	logger = logger.With().Str("component", "Refresher").Logger()
	return &Refresher{
		service:  service,
		saver:    saver,
		recorder: recorder,
		cities:   cities,
		spec:     spec,
		logger:   logger,
		cron:     cron.New(cron.WithSeconds()),
	}
}

// Start schedules the refresh job.
func (r *Refresher) Start(ctx context.Context) error {
	if len(r.cities) == 0 {
		return ErrNoCities
	}

	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel

	if _, err := r.cron.AddFunc(r.spec, func() { r.RunOnce(ctx) }); err != nil {
		cancel()
		r.logger.Error().Err(err).Str("spec", r.spec).Msg("failed to schedule refresh job")
		return err
	}

	r.cron.Start()
	r.logger.Info().Str("spec", r.spec).Strs("cities", r.cities).Msg("refresher started")
	return nil
}

// Stop cancels the schedule and waits for a running job to finish.
func (r *Refresher) Stop() {
	if r.cancel != nil {
		r.cancel()
	}
	stopCtx := r.cron.Stop()
	<-stopCtx.Done()
	r.logger.Info().Msg("refresher stopped")
}

// RunOnce refreshes every configured city concurrently.
func (r *Refresher) RunOnce(ctx context.Context) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, timeoutDuration)
	defer cancel()

	if r.recorder != nil {
		r.recorder.ObserveRefreshRun()
	}

	var wg sync.WaitGroup
	wg.Add(len(r.cities))

	for _, city := range r.cities {
		city := city
		go func() {
			defer wg.Done()
			r.refreshCity(ctx, city)
		}()
	}

	wg.Wait()
	r.logger.Info().
		Int("cities", len(r.cities)).
		Dur("duration", time.Since(start)).
		Msg("refresh run completed")
}

func (r *Refresher) refreshCity(ctx context.Context, city string) {
	data, err := r.service.FetchAll(ctx, city)
	if err != nil {
		r.logger.Error().Err(err).Str("city", city).Msg("refresh fetch failed")
		r.fail(city, "fetch")
		return
	}

	if r.saver == nil {
		return
	}
	if err := r.saver.Save(ctx, data); err != nil {
		r.logger.Error().Err(err).Str("city", city).Msg("snapshot save failed")
		r.fail(city, "save")
	}
}

func (r *Refresher) fail(city, stage string) {
	if r.recorder != nil {
		r.recorder.ObserveRefreshFailure(city, stage)
	}
}
