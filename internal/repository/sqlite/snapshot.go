package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/Nazarious-ucu/smart-environment-dashboard/internal/models"
)

var ErrSnapshotNotFound = models.ErrSnapshotNotFound

// SnapshotRepository archives aggregated environment records.
type SnapshotRepository struct {
	DB  *sql.DB
	log zerolog.Logger
	now func() time.Time
}

func NewSnapshotRepository(db *sql.DB, logger zerolog.Logger) *SnapshotRepository {
	logger = logger.With().Str("component", "SnapshotRepository").Logger()
	return &SnapshotRepository{DB: db, log: logger, now: time.Now}
}

// Save stores data as a new snapshot stamped with the current time.
func (r *SnapshotRepository) Save(ctx context.Context, data models.EnvironmentData) error {
	start := time.Now()

	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	_, err = r.DB.ExecContext(ctx,
		`INSERT INTO snapshots (city, payload, created_at) VALUES (?, ?, ?)`,
		data.City, string(payload), r.now().UTC().UnixMilli(),
	)
	if err != nil {
		r.log.Error().Err(err).Ctx(ctx).
			Str("city", data.City).
			Msg("failed to insert snapshot")
		return err
	}

	r.log.Debug().Ctx(ctx).
		Str("city", data.City).
		Dur("duration", time.Since(start)).
		Msg("snapshot saved")
	return nil
}

// ListByCity returns up to limit snapshots for city, newest first.
func (r *SnapshotRepository) ListByCity(ctx context.Context, city string, limit int) ([]models.Snapshot, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, city, payload, created_at FROM snapshots
		 WHERE city = ?
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		city, limit,
	)
	if err != nil {
		r.log.Error().Err(err).Ctx(ctx).Str("city", city).Msg("failed to query snapshots")
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			r.log.Error().Err(cerr).Msg("failed to close rows")
		}
	}()

	snapshots := make([]models.Snapshot, 0, limit)
	for rows.Next() {
		s, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return snapshots, nil
}

// Latest returns the newest snapshot for city or ErrSnapshotNotFound.
func (r *SnapshotRepository) Latest(ctx context.Context, city string) (models.Snapshot, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT id, city, payload, created_at FROM snapshots
		 WHERE city = ?
		 ORDER BY created_at DESC, id DESC
		 LIMIT 1`,
		city,
	)

	s, err := scanSnapshot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Snapshot{}, ErrSnapshotNotFound
	}
	return s, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row scanner) (models.Snapshot, error) {
	var (
		s       models.Snapshot
		payload string
		created int64
	)
	if err := row.Scan(&s.ID, &s.City, &payload, &created); err != nil {
		return models.Snapshot{}, err
	}
	if err := json.Unmarshal([]byte(payload), &s.Data); err != nil {
		return models.Snapshot{}, fmt.Errorf("decode snapshot %d: %w", s.ID, err)
	}
	s.CreatedAt = time.UnixMilli(created).UTC()
	return s, nil
}
