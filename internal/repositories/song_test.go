package repositories

import (
	"errors"
	"reflect"
	"testing"

	"github.com/desertthunder/mixtape/internal/models"
	"github.com/desertthunder/mixtape/internal/shared"
)

func songIDs(songs []*models.Song) []int64 {
	ids := make([]int64, len(songs))
	for i, s := range songs {
		ids[i] = s.SongID
	}
	return ids
}

func seedSongs(t *testing.T, repo *SongRepository) []*models.Song {
	t.Helper()
	songs := []*models.Song{
		{Title: "Mysterons", Release: "Dummy", Artist: "Portishead", Length: "5:02", ReleaseID: 1, ReleaseTrack: "A1"},
		{Title: "Sour Times", Release: "Dummy", Artist: "Portishead", Length: "4:11", ReleaseID: 1, ReleaseTrack: "A2"},
		{Title: "Angel", Release: "Mezzanine", Artist: "Massive Attack", Length: "6:18", ReleaseID: 2, ReleaseTrack: "1"},
		{Title: "100% Pure", Release: "Demo", Artist: "Nobody", Length: ""},
	}
	for _, s := range songs {
		if err := repo.Insert(s); err != nil {
			t.Fatalf("failed to insert song %q: %v", s.Title, err)
		}
	}
	return songs
}

func TestSongRepository(t *testing.T) {
	t.Run("Insert", func(t *testing.T) {
		repo := NewSongRepository(setupTestDB(t))

		song := &models.Song{Title: "Roads", Release: "Dummy", Artist: "Portishead", Length: "5:3"}
		if err := repo.Insert(song); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
		if song.SongID == 0 {
			t.Error("song id should be set after insert")
		}

		got, err := repo.Get(song.SongID)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if got.Length != "00:05:03" {
			t.Errorf("expected normalized length 00:05:03, got %s", got.Length)
		}
		if got.ReleaseID != 0 {
			t.Errorf("expected no release link, got %d", got.ReleaseID)
		}
	})

	t.Run("Insert Invalid", func(t *testing.T) {
		repo := NewSongRepository(setupTestDB(t))

		if err := repo.Insert(&models.Song{Title: ""}); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput for missing title, got %v", err)
		}
		if err := repo.Insert(&models.Song{Title: "x", Length: "abc"}); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput for bad length, got %v", err)
		}
	})

	t.Run("InsertAll", func(t *testing.T) {
		repo := NewSongRepository(setupTestDB(t))

		songs := []*models.Song{
			{Title: "Mysterons", ReleaseID: 1, ReleaseTrack: "A1", Length: "5:02"},
			{Title: "Sour Times", ReleaseID: 1, ReleaseTrack: "A2"},
		}
		if err := repo.InsertAll(songs); err != nil {
			t.Fatalf("InsertAll failed: %v", err)
		}
		if songs[0].SongID == 0 || songs[1].SongID == 0 {
			t.Error("song ids should be set after insert")
		}

		got, err := repo.ForRelease(1)
		if err != nil {
			t.Fatalf("ForRelease failed: %v", err)
		}
		if len(got) != 2 || got[0].Length != "00:05:02" {
			t.Errorf("unexpected songs %+v", got)
		}
	})

	t.Run("InsertAll rolls back", func(t *testing.T) {
		repo := NewSongRepository(setupTestDB(t))

		songs := []*models.Song{
			{Title: "Angel", ReleaseID: 2, ReleaseTrack: "1"},
			{Title: "Risingson", ReleaseID: 2, ReleaseTrack: "2", Length: "abc"},
		}
		if err := repo.InsertAll(songs); !errors.Is(err, shared.ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
		if songs[0].SongID != 0 {
			t.Errorf("expected song id to be cleared, got %d", songs[0].SongID)
		}

		got, err := repo.List()
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(got) != 0 {
			t.Errorf("expected no songs after a failed import, got %d", len(got))
		}
	})

	t.Run("Delete", func(t *testing.T) {
		repo := NewSongRepository(setupTestDB(t))
		songs := seedSongs(t, repo)

		if err := repo.Delete(songs[0].SongID); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if _, err := repo.Get(songs[0].SongID); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound after delete, got %v", err)
		}
		if err := repo.Delete(songs[0].SongID); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound deleting twice, got %v", err)
		}
	})

	t.Run("List", func(t *testing.T) {
		repo := NewSongRepository(setupTestDB(t))

		empty, err := repo.List()
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(empty) != 0 {
			t.Errorf("expected no songs, got %d", len(empty))
		}

		songs := seedSongs(t, repo)
		got, err := repo.List()
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if !reflect.DeepEqual(songIDs(got), songIDs(songs)) {
			t.Errorf("List() = %v, want %v", songIDs(got), songIDs(songs))
		}
	})

	t.Run("ForRelease", func(t *testing.T) {
		repo := NewSongRepository(setupTestDB(t))
		songs := seedSongs(t, repo)

		got, err := repo.ForRelease(1)
		if err != nil {
			t.Fatalf("ForRelease failed: %v", err)
		}
		if !reflect.DeepEqual(songIDs(got), []int64{songs[0].SongID, songs[1].SongID}) {
			t.Errorf("unexpected songs %v", songIDs(got))
		}
	})

	t.Run("Query", func(t *testing.T) {
		repo := NewSongRepository(setupTestDB(t))
		songs := seedSongs(t, repo)

		tt := []struct {
			name  string
			query models.SongQuery
			want  []int64
		}{
			{name: "artist substring", query: models.SongQuery{Artist: "portis"}, want: []int64{songs[0].SongID, songs[1].SongID}},
			{name: "title case insensitive", query: models.SongQuery{Title: "ANGEL"}, want: []int64{songs[2].SongID}},
			{name: "ANDed filters", query: models.SongQuery{Artist: "Portishead", Title: "sour"}, want: []int64{songs[1].SongID}},
			{name: "min length", query: models.SongQuery{MinLength: "5:00"}, want: []int64{songs[0].SongID, songs[2].SongID}},
			{name: "max length", query: models.SongQuery{MaxLength: "5:02"}, want: []int64{songs[0].SongID, songs[1].SongID}},
			{name: "length range", query: models.SongQuery{MinLength: "4:30", MaxLength: "6:00"}, want: []int64{songs[0].SongID}},
			{name: "release id", query: models.SongQuery{ReleaseID: 2}, want: []int64{songs[2].SongID}},
			{name: "release track", query: models.SongQuery{ReleaseID: 1, ReleaseTrack: "A2"}, want: []int64{songs[1].SongID}},
			{name: "song id", query: models.SongQuery{SongID: songs[3].SongID}, want: []int64{songs[3].SongID}},
			{name: "percent is literal", query: models.SongQuery{Title: "%"}, want: []int64{songs[3].SongID}},
			{name: "underscore is literal", query: models.SongQuery{Title: "_"}, want: []int64{}},
			{name: "no match", query: models.SongQuery{Release: "Protection"}, want: []int64{}},
		}

		for _, tc := range tt {
			t.Run(tc.name, func(t *testing.T) {
				got, err := repo.Query(tc.query)
				if err != nil {
					t.Fatalf("Query failed: %v", err)
				}
				if !reflect.DeepEqual(songIDs(got), tc.want) {
					t.Errorf("Query(%+v) = %v, want %v", tc.query, songIDs(got), tc.want)
				}
			})
		}

		t.Run("empty query", func(t *testing.T) {
			if _, err := repo.Query(models.SongQuery{}); !errors.Is(err, shared.ErrInvalidQuery) {
				t.Errorf("expected ErrInvalidQuery, got %v", err)
			}
		})

		t.Run("bad length bound", func(t *testing.T) {
			if _, err := repo.Query(models.SongQuery{MinLength: "soon"}); !errors.Is(err, shared.ErrInvalidQuery) {
				t.Errorf("expected ErrInvalidQuery, got %v", err)
			}
		})
	})
}
