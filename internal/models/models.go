// package models defines the data model for the mixtape catalog
package models

import (
	"fmt"
	"strings"
	"time"
)

// Model defines the base interface for persisted user-curated entities.
type Model interface {
	Key() int64      // Key returns the numeric primary key
	Validate() error // Validate checks if the model's data is valid and returns an error if not
}

// Repository defines the interface for data access operations on user-curated entities.
// Implementations handle database interactions for specific model types.
type Repository[T Model] interface {
	Insert(model T) error    // Insert stores a new model and assigns its key
	Get(id int64) (T, error) // Get retrieves a model by its key
	Delete(id int64) error   // Delete removes a model by its key
	List() ([]T, error)      // List retrieves all models in key order
}

// Release is one flattened row of the mirrored collection.
//
// Multi-value fields hold pipe-joined tokens (see [MultiValue]).
type Release struct {
	ReleaseID  int64  `json:"RELEASE_ID"`
	FolderID   int64  `json:"FOLDER_ID"`
	CatalogID  string `json:"CATALOG_ID"`
	ArtistsID  string `json:"ARTISTS_ID"`
	DateAdded  string `json:"DATE_ADDED"`
	Year       int    `json:"YEAR"`
	Decade     int    `json:"DECADE"`
	Artist     string `json:"ARTIST"`
	Title      string `json:"TITLE"`
	Label      string `json:"LABEL"`
	Format     string `json:"FORMAT"`
	Genre      string `json:"GENRE"`
	Style      string `json:"STYLE"`
	ReleaseURL string `json:"RELEASE_URL"`
	MasterURL  string `json:"MASTER_URL"`
	ThumbURL   string `json:"THUMB_URL"`
	CoverURL   string `json:"COVER_URL"`
}

// Release table column names, in declared order.
const (
	ColReleaseID  = "RELEASE_ID"
	ColFolderID   = "FOLDER_ID"
	ColCatalogID  = "CATALOG_ID"
	ColArtistsID  = "ARTISTS_ID"
	ColDateAdded  = "DATE_ADDED"
	ColYear       = "YEAR"
	ColDecade     = "DECADE"
	ColArtist     = "ARTIST"
	ColTitle      = "TITLE"
	ColLabel      = "LABEL"
	ColFormat     = "FORMAT"
	ColGenre      = "GENRE"
	ColStyle      = "STYLE"
	ColReleaseURL = "RELEASE_URL"
	ColMasterURL  = "MASTER_URL"
	ColThumbURL   = "THUMB_URL"
	ColCoverURL   = "COVER_URL"
)

// ReleaseColumns lists the declared release columns in table order.
var ReleaseColumns = []string{
	ColReleaseID, ColFolderID, ColCatalogID, ColArtistsID, ColDateAdded, ColYear, ColDecade,
	ColArtist, ColTitle, ColLabel, ColFormat, ColGenre, ColStyle,
	ColReleaseURL, ColMasterURL, ColThumbURL, ColCoverURL,
}

// MultiValueColumns are the pipe-joined columns. Browse matches their individual tokens.
var MultiValueColumns = []string{ColCatalogID, ColArtistsID, ColArtist, ColLabel, ColFormat, ColGenre, ColStyle}

// Browse modes that are not column names.
const (
	CategoryRandom = "RANDOM"
	CategoryAll    = "all"
)

// IsReleaseColumn reports whether name is a declared release column. Matching is exact.
func IsReleaseColumn(name string) bool {
	for _, c := range ReleaseColumns {
		if c == name {
			return true
		}
	}
	return false
}

// ReleaseColumn returns the declared column for name, ignoring case.
func ReleaseColumn(name string) (string, bool) {
	column := strings.ToUpper(strings.TrimSpace(name))
	return column, IsReleaseColumn(column)
}

// IsMultiValueColumn reports whether column holds pipe-joined tokens.
func IsMultiValueColumn(column string) bool {
	for _, c := range MultiValueColumns {
		if c == column {
			return true
		}
	}
	return false
}

// Values returns the release fields in [ReleaseColumns] order.
func (r *Release) Values() []any {
	return []any{
		r.ReleaseID, r.FolderID, r.CatalogID, r.ArtistsID, r.DateAdded, r.Year, r.Decade,
		r.Artist, r.Title, r.Label, r.Format, r.Genre, r.Style,
		r.ReleaseURL, r.MasterURL, r.ThumbURL, r.CoverURL,
	}
}

// Field returns the string form of a column value, or "" for an unknown column.
func (r *Release) Field(column string) string {
	for i, c := range ReleaseColumns {
		if c == column {
			return fmt.Sprint(r.Values()[i])
		}
	}
	return ""
}

// ValueCount is a distinct token in a column and the number of times it occurs.
type ValueCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Song is a user-curated track entry.
type Song struct {
	SongID       int64  `json:"SONG_ID"`
	Title        string `json:"TITLE"`
	Release      string `json:"RELEASE"`
	Artist       string `json:"ARTIST"`
	Length       string `json:"LENGTH"`
	ReleaseID    int64  `json:"DISCOGS_RELEASE_ID"`
	ReleaseTrack string `json:"DISCOGS_RELEASE_TRACK"`
}

func (s *Song) Key() int64 { return s.SongID }

// Validate requires a title.
func (s *Song) Validate() error {
	if strings.TrimSpace(s.Title) == "" {
		return fmt.Errorf("song title is required")
	}
	return nil
}

// SongQuery holds ANDed song filters. Zero values are unset.
//
// Title, Release and Artist match as literal case-insensitive substrings.
// MinLength and MaxLength are inclusive bounds on the normalized length.
type SongQuery struct {
	SongID       int64
	Title        string
	Release      string
	Artist       string
	MinLength    string
	MaxLength    string
	ReleaseID    int64
	ReleaseTrack string
}

// IsEmpty reports whether no filter is set.
func (q SongQuery) IsEmpty() bool {
	return q == SongQuery{}
}

// Side is one face of the tape.
type Side string

const (
	SideA Side = "A"
	SideB Side = "B"
)

// ParseSide accepts "a", "A", "b" or "B".
func ParseSide(s string) (Side, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "A":
		return SideA, nil
	case "B":
		return SideB, nil
	default:
		return "", fmt.Errorf("invalid side %q: expected A or B", s)
	}
}

// TapeEntry is a song placed on a side. It is a copy of the song at the time it was added.
type TapeEntry struct {
	ID            int64     `json:"id"`
	Side          Side      `json:"side"`
	Position      int       `json:"position"`
	SongID        int64     `json:"song_id"`
	Title         string    `json:"title"`
	Artist        string    `json:"artist"`
	Release       string    `json:"release"`
	TrackPosition string    `json:"track_position"`
	Length        string    `json:"length"`
	CreatedAt     time.Time `json:"created_at"`
}

func (e *TapeEntry) Key() int64 { return e.ID }

// Validate checks the side and title.
func (e *TapeEntry) Validate() error {
	if e.Side != SideA && e.Side != SideB {
		return fmt.Errorf("invalid side %q", e.Side)
	}
	if strings.TrimSpace(e.Title) == "" {
		return fmt.Errorf("tape entry title is required")
	}
	return nil
}

// Tape is both sides in play order.
type Tape struct {
	A []TapeEntry `json:"A"`
	B []TapeEntry `json:"B"`
}

// Side returns the entries of s.
func (t *Tape) Side(s Side) []TapeEntry {
	if s == SideB {
		return t.B
	}
	return t.A
}

// Len returns the number of entries on both sides.
func (t *Tape) Len() int {
	return len(t.A) + len(t.B)
}

// SideStats is the track count and total playtime of one side.
type SideStats struct {
	Side     Side          `json:"side"`
	Tracks   int           `json:"tracks"`
	Duration time.Duration `json:"-"`
	Total    string        `json:"total"`
}

// Run status values recorded in mirror_runs.
const (
	RunRunning   = "running"
	RunCompleted = "completed"
	RunFailed    = "failed"
)

// MirrorRun records one refresh attempt.
type MirrorRun struct {
	ID              string     `json:"id"`
	StartedAt       time.Time  `json:"started_at"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	Status          string     `json:"status"`
	ReleasesFetched int        `json:"releases_fetched"`
	YearsBackfilled int        `json:"years_backfilled"`
	ErrorMessage    string     `json:"error_message,omitempty"`
}
