package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/mixtape/internal/models"
	"github.com/desertthunder/mixtape/internal/shared"
)

// RunRepository records mirror refresh attempts.
type RunRepository struct {
	db *sql.DB
}

// NewRunRepository creates a new RunRepository with the given database connection
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Start inserts a running record with a generated id.
func (r *RunRepository) Start() (*models.MirrorRun, error) {
	run := &models.MirrorRun{
		ID:        shared.GenerateID(),
		StartedAt: time.Now().UTC(),
		Status:    models.RunRunning,
	}

	_, err := r.db.Exec(
		"INSERT INTO mirror_runs (id, started_at, status) VALUES (?, ?, ?)",
		run.ID, run.StartedAt, run.Status,
	)
	if err != nil {
		return nil, dataErr("insert mirror run", err)
	}
	return run, nil
}

// Finish marks run completed, or failed when runErr is non-nil, and stores its counters.
func (r *RunRepository) Finish(run *models.MirrorRun, runErr error) error {
	now := time.Now().UTC()
	run.CompletedAt = &now
	run.Status = models.RunCompleted
	if runErr != nil {
		run.Status = models.RunFailed
		run.ErrorMessage = runErr.Error()
	}

	query := `
		UPDATE mirror_runs
		SET completed_at = ?, status = ?, releases_fetched = ?, years_backfilled = ?, error_message = ?
		WHERE id = ?
	`
	result, err := r.db.Exec(query,
		now,
		run.Status,
		run.ReleasesFetched,
		run.YearsBackfilled,
		sql.NullString{String: run.ErrorMessage, Valid: run.ErrorMessage != ""},
		run.ID,
	)
	if err != nil {
		return dataErr("update mirror run", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return dataErr("get affected rows", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: mirror run %s", shared.ErrNotFound, run.ID)
	}
	return nil
}

// Get retrieves a run by id
func (r *RunRepository) Get(id string) (*models.MirrorRun, error) {
	run, err := scanRun(r.db.QueryRow(`
		SELECT id, started_at, completed_at, status, releases_fetched, years_backfilled, error_message
		FROM mirror_runs WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: mirror run %s", shared.ErrNotFound, id)
	}
	if err != nil {
		return nil, dataErr("get mirror run", err)
	}
	return run, nil
}

// List returns the most recent runs first. A non-positive limit returns all runs.
func (r *RunRepository) List(limit int) ([]*models.MirrorRun, error) {
	query := `
		SELECT id, started_at, completed_at, status, releases_fetched, years_backfilled, error_message
		FROM mirror_runs
		ORDER BY started_at DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, dataErr("query mirror runs", err)
	}
	defer rows.Close()

	runs := []*models.MirrorRun{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, dataErr("scan mirror run", err)
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, dataErr("iterate mirror runs", err)
	}
	return runs, nil
}

// Latest returns the most recent completed run, or [shared.ErrNotFound].
func (r *RunRepository) Latest() (*models.MirrorRun, error) {
	run, err := scanRun(r.db.QueryRow(`
		SELECT id, started_at, completed_at, status, releases_fetched, years_backfilled, error_message
		FROM mirror_runs WHERE status = ? ORDER BY started_at DESC LIMIT 1`, models.RunCompleted))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: no completed mirror run", shared.ErrNotFound)
	}
	if err != nil {
		return nil, dataErr("get latest mirror run", err)
	}
	return run, nil
}

func scanRun(row scanner) (*models.MirrorRun, error) {
	var (
		run          models.MirrorRun
		completedAt  sql.NullTime
		errorMessage sql.NullString
	)

	err := row.Scan(&run.ID, &run.StartedAt, &completedAt, &run.Status, &run.ReleasesFetched, &run.YearsBackfilled, &errorMessage)
	if err != nil {
		return nil, err
	}

	if completedAt.Valid {
		run.CompletedAt = &completedAt.Time
	}
	run.ErrorMessage = errorMessage.String

	return &run, nil
}
