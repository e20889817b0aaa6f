package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/desertthunder/mixtape/internal/models"
	"github.com/desertthunder/mixtape/internal/shared"
)

const songColumns = "SONG_ID, TITLE, RELEASE, ARTIST, LENGTH, DISCOGS_RELEASE_ID, DISCOGS_RELEASE_TRACK"

// SongRepository implements models.Repository[*models.Song] for the user-curated track store.
type SongRepository struct {
	db *sql.DB
}

// NewSongRepository creates a new SongRepository with the given database connection
func NewSongRepository(db *sql.DB) *SongRepository {
	return &SongRepository{db: db}
}

// Insert normalizes the song length, stores the song and sets its SongID.
func (r *SongRepository) Insert(song *models.Song) error {
	return insertSong(r.db, song)
}

// InsertAll stores songs in one transaction. On error nothing is stored and SongIDs are left unset.
func (r *SongRepository) InsertAll(songs []*models.Song) error {
	tx, err := r.db.Begin()
	if err != nil {
		return dataErr("begin song import", err)
	}
	defer tx.Rollback()

	for _, song := range songs {
		if err := insertSong(tx, song); err != nil {
			for _, s := range songs {
				s.SongID = 0
			}
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return dataErr("commit song import", err)
	}
	return nil
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func insertSong(db execer, song *models.Song) error {
	if err := song.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	length, err := shared.NormalizeLength(song.Length)
	if err != nil {
		return err
	}
	song.Length = length

	query := `
		INSERT INTO SONGS (TITLE, RELEASE, ARTIST, LENGTH, DISCOGS_RELEASE_ID, DISCOGS_RELEASE_TRACK)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := db.Exec(query,
		song.Title,
		song.Release,
		song.Artist,
		song.Length,
		sql.NullInt64{Int64: song.ReleaseID, Valid: song.ReleaseID != 0},
		song.ReleaseTrack,
	)
	if err != nil {
		return dataErr("insert song", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return dataErr("get song id", err)
	}
	song.SongID = id

	return nil
}

// Get retrieves a song by id
func (r *SongRepository) Get(id int64) (*models.Song, error) {
	song, err := scanSong(r.db.QueryRow("SELECT "+songColumns+" FROM SONGS WHERE SONG_ID = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: song %d", shared.ErrNotFound, id)
	}
	if err != nil {
		return nil, dataErr("get song", err)
	}
	return song, nil
}

// Delete removes a song by id
func (r *SongRepository) Delete(id int64) error {
	result, err := r.db.Exec("DELETE FROM SONGS WHERE SONG_ID = ?", id)
	if err != nil {
		return dataErr("delete song", err)
	}
	return checkAffected(result, "song", id)
}

// List retrieves all songs ordered by id
func (r *SongRepository) List() ([]*models.Song, error) {
	return r.query("SELECT " + songColumns + " FROM SONGS ORDER BY SONG_ID")
}

// ForRelease retrieves the songs linked to a remote release, ordered by id
func (r *SongRepository) ForRelease(releaseID int64) ([]*models.Song, error) {
	return r.query("SELECT "+songColumns+" FROM SONGS WHERE DISCOGS_RELEASE_ID = ? ORDER BY SONG_ID", releaseID)
}

// Query retrieves the songs matching every filter set in q, ordered by id.
//
// Text filters are literal case-insensitive substrings. Length bounds are normalized first and songs without a
// length never match them. An empty query wraps [shared.ErrInvalidQuery].
func (r *SongRepository) Query(q models.SongQuery) ([]*models.Song, error) {
	if q.IsEmpty() {
		return nil, fmt.Errorf("%w: at least one song filter is required", shared.ErrInvalidQuery)
	}

	var (
		where []string
		args  []any
	)

	if q.SongID != 0 {
		where = append(where, "SONG_ID = ?")
		args = append(args, q.SongID)
	}

	for _, f := range []struct{ column, value string }{
		{"TITLE", q.Title},
		{"RELEASE", q.Release},
		{"ARTIST", q.Artist},
	} {
		if f.value == "" {
			continue
		}
		where = append(where, fmt.Sprintf("instr(lower(%s), lower(?)) > 0", f.column))
		args = append(args, f.value)
	}

	for _, f := range []struct{ op, value string }{
		{">=", q.MinLength},
		{"<=", q.MaxLength},
	} {
		if f.value == "" {
			continue
		}
		length, err := shared.NormalizeLength(f.value)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrInvalidQuery, err)
		}
		where = append(where, fmt.Sprintf("(LENGTH != '' AND LENGTH %s ?)", f.op))
		args = append(args, length)
	}

	if q.ReleaseID != 0 {
		where = append(where, "DISCOGS_RELEASE_ID = ?")
		args = append(args, q.ReleaseID)
	}

	if q.ReleaseTrack != "" {
		where = append(where, "DISCOGS_RELEASE_TRACK = ?")
		args = append(args, q.ReleaseTrack)
	}

	query := "SELECT " + songColumns + " FROM SONGS WHERE " + strings.Join(where, " AND ") + " ORDER BY SONG_ID"
	return r.query(query, args...)
}

func (r *SongRepository) query(query string, args ...any) ([]*models.Song, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, dataErr("query songs", err)
	}
	defer rows.Close()

	songs := []*models.Song{}
	for rows.Next() {
		song, err := scanSong(rows)
		if err != nil {
			return nil, dataErr("scan song", err)
		}
		songs = append(songs, song)
	}

	if err := rows.Err(); err != nil {
		return nil, dataErr("iterate songs", err)
	}

	return songs, nil
}

// scanSong scans a row selected with songColumns into a [models.Song]
func scanSong(row scanner) (*models.Song, error) {
	var (
		song      models.Song
		releaseID sql.NullInt64
	)

	err := row.Scan(&song.SongID, &song.Title, &song.Release, &song.Artist, &song.Length, &releaseID, &song.ReleaseTrack)
	if err != nil {
		return nil, err
	}
	song.ReleaseID = releaseID.Int64

	return &song, nil
}
