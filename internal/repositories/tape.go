package repositories

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/desertthunder/mixtape/internal/models"
	"github.com/desertthunder/mixtape/internal/shared"
)

const tapeColumns = "id, side, position, song_id, title, artist, release, track_position, length, created_at"

// TapeRepository persists the two tape sides.
//
// Positions are 1-based and dense per side: every write rewrites the affected side's positions.
type TapeRepository struct {
	db *sql.DB
}

// NewTapeRepository creates a new TapeRepository with the given database connection
func NewTapeRepository(db *sql.DB) *TapeRepository {
	return &TapeRepository{db: db}
}

// Add appends a copy of song to the end of side.
func (r *TapeRepository) Add(side models.Side, song *models.Song) (*models.TapeEntry, error) {
	entry := &models.TapeEntry{
		Side:          side,
		SongID:        song.SongID,
		Title:         song.Title,
		Artist:        song.Artist,
		Release:       song.Release,
		TrackPosition: song.ReleaseTrack,
		Length:        song.Length,
	}
	if err := entry.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	tx, err := r.db.Begin()
	if err != nil {
		return nil, dataErr("begin transaction", err)
	}
	defer tx.Rollback()

	if err := tx.QueryRow("SELECT COALESCE(MAX(position), 0) + 1 FROM tape_entries WHERE side = ?", side).Scan(&entry.Position); err != nil {
		return nil, dataErr("get next position", err)
	}

	query := `
		INSERT INTO tape_entries (side, position, song_id, title, artist, release, track_position, length)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	result, err := tx.Exec(query,
		entry.Side,
		entry.Position,
		sql.NullInt64{Int64: entry.SongID, Valid: entry.SongID != 0},
		entry.Title,
		entry.Artist,
		entry.Release,
		entry.TrackPosition,
		entry.Length,
	)
	if err != nil {
		return nil, dataErr("insert tape entry", err)
	}

	if entry.ID, err = result.LastInsertId(); err != nil {
		return nil, dataErr("get tape entry id", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, dataErr("commit tape entry", err)
	}

	return r.Get(entry.ID)
}

// Get retrieves a tape entry by id
func (r *TapeRepository) Get(id int64) (*models.TapeEntry, error) {
	entry, err := scanTapeEntry(r.db.QueryRow("SELECT "+tapeColumns+" FROM tape_entries WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: tape entry %d", shared.ErrNotFound, id)
	}
	if err != nil {
		return nil, dataErr("get tape entry", err)
	}
	return entry, nil
}

// Remove deletes an entry and closes the gap it leaves on its side.
func (r *TapeRepository) Remove(id int64) error {
	tx, err := r.db.Begin()
	if err != nil {
		return dataErr("begin transaction", err)
	}
	defer tx.Rollback()

	side, err := entrySide(tx, id)
	if err != nil {
		return err
	}

	if _, err := tx.Exec("DELETE FROM tape_entries WHERE id = ?", id); err != nil {
		return dataErr("delete tape entry", err)
	}

	ids, err := sideIDs(tx, side)
	if err != nil {
		return err
	}
	if err := writePositions(tx, side, ids); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return dataErr("commit tape removal", err)
	}
	return nil
}

// Move places an entry at position on side, shifting the other entries. Positions past the end append.
func (r *TapeRepository) Move(id int64, side models.Side, position int) error {
	if side != models.SideA && side != models.SideB {
		return fmt.Errorf("%w: invalid side %q", shared.ErrInvalidInput, side)
	}
	if position < 1 {
		return fmt.Errorf("%w: position must be at least 1", shared.ErrInvalidInput)
	}

	tx, err := r.db.Begin()
	if err != nil {
		return dataErr("begin transaction", err)
	}
	defer tx.Rollback()

	from, err := entrySide(tx, id)
	if err != nil {
		return err
	}

	source, err := sideIDs(tx, from)
	if err != nil {
		return err
	}
	source = removeID(source, id)

	target := source
	if side != from {
		if err := writePositions(tx, from, source); err != nil {
			return err
		}
		if target, err = sideIDs(tx, side); err != nil {
			return err
		}
	}

	idx := min(position-1, len(target))
	target = append(target[:idx], append([]int64{id}, target[idx:]...)...)

	if err := writePositions(tx, side, target); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return dataErr("commit tape move", err)
	}
	return nil
}

// Clear removes every entry from both sides.
func (r *TapeRepository) Clear() error {
	if _, err := r.db.Exec("DELETE FROM tape_entries"); err != nil {
		return dataErr("clear tape", err)
	}
	return nil
}

// Sides returns both sides in position order.
func (r *TapeRepository) Sides() (*models.Tape, error) {
	rows, err := r.db.Query("SELECT " + tapeColumns + " FROM tape_entries ORDER BY side, position")
	if err != nil {
		return nil, dataErr("query tape", err)
	}
	defer rows.Close()

	tape := &models.Tape{A: []models.TapeEntry{}, B: []models.TapeEntry{}}
	for rows.Next() {
		entry, err := scanTapeEntry(rows)
		if err != nil {
			return nil, dataErr("scan tape entry", err)
		}
		if entry.Side == models.SideB {
			tape.B = append(tape.B, *entry)
		} else {
			tape.A = append(tape.A, *entry)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, dataErr("iterate tape", err)
	}

	return tape, nil
}

func entrySide(tx *sql.Tx, id int64) (models.Side, error) {
	var side models.Side
	err := tx.QueryRow("SELECT side FROM tape_entries WHERE id = ?", id).Scan(&side)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: tape entry %d", shared.ErrNotFound, id)
	}
	if err != nil {
		return "", dataErr("get tape entry", err)
	}
	return side, nil
}

func sideIDs(tx *sql.Tx, side models.Side) ([]int64, error) {
	rows, err := tx.Query("SELECT id FROM tape_entries WHERE side = ? ORDER BY position, id", side)
	if err != nil {
		return nil, dataErr("query side "+string(side), err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, dataErr("scan tape entry id", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// writePositions assigns side and positions 1..n to ids in order.
func writePositions(tx *sql.Tx, side models.Side, ids []int64) error {
	for i, id := range ids {
		if _, err := tx.Exec("UPDATE tape_entries SET side = ?, position = ? WHERE id = ?", side, i+1, id); err != nil {
			return dataErr("reorder tape", err)
		}
	}
	return nil
}

func removeID(ids []int64, id int64) []int64 {
	out := make([]int64, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

// scanTapeEntry scans a row selected with tapeColumns into a [models.TapeEntry]
func scanTapeEntry(row scanner) (*models.TapeEntry, error) {
	var (
		entry  models.TapeEntry
		songID sql.NullInt64
	)

	err := row.Scan(
		&entry.ID, &entry.Side, &entry.Position, &songID, &entry.Title, &entry.Artist,
		&entry.Release, &entry.TrackPosition, &entry.Length, &entry.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	entry.SongID = songID.Int64

	return &entry, nil
}
