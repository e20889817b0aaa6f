package repositories

import (
	"errors"
	"reflect"
	"testing"

	"github.com/desertthunder/mixtape/internal/models"
	"github.com/desertthunder/mixtape/internal/shared"
)

func entryTitles(entries []models.TapeEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Title
	}
	return out
}

func assertDense(t *testing.T, tape *models.Tape) {
	t.Helper()
	for _, side := range [][]models.TapeEntry{tape.A, tape.B} {
		for i, e := range side {
			if e.Position != i+1 {
				t.Errorf("side %s entry %q has position %d, want %d", e.Side, e.Title, e.Position, i+1)
			}
		}
	}
}

func setupTape(t *testing.T) (*TapeRepository, []*models.TapeEntry) {
	t.Helper()
	repo := NewTapeRepository(setupTestDB(t))

	var entries []*models.TapeEntry
	for _, tc := range []struct {
		side  models.Side
		title string
	}{
		{models.SideA, "one"},
		{models.SideA, "two"},
		{models.SideA, "three"},
		{models.SideB, "four"},
	} {
		entry, err := repo.Add(tc.side, &models.Song{SongID: int64(len(entries) + 1), Title: tc.title, Length: "00:03:00"})
		if err != nil {
			t.Fatalf("Add failed: %v", err)
		}
		entries = append(entries, entry)
	}
	return repo, entries
}

func TestTapeRepository(t *testing.T) {
	t.Run("Add", func(t *testing.T) {
		repo, entries := setupTape(t)

		if entries[2].Position != 3 || entries[3].Position != 1 {
			t.Errorf("unexpected positions %d and %d", entries[2].Position, entries[3].Position)
		}
		if entries[0].CreatedAt.IsZero() {
			t.Error("created_at should be set")
		}

		tape, err := repo.Sides()
		if err != nil {
			t.Fatalf("Sides failed: %v", err)
		}
		if !reflect.DeepEqual(entryTitles(tape.A), []string{"one", "two", "three"}) {
			t.Errorf("unexpected side A %v", entryTitles(tape.A))
		}
		if !reflect.DeepEqual(entryTitles(tape.B), []string{"four"}) {
			t.Errorf("unexpected side B %v", entryTitles(tape.B))
		}

		if _, err := repo.Add("C", &models.Song{Title: "x"}); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput for side C, got %v", err)
		}
	})

	t.Run("Remove", func(t *testing.T) {
		repo, entries := setupTape(t)

		if err := repo.Remove(entries[0].ID); err != nil {
			t.Fatalf("Remove failed: %v", err)
		}

		tape, err := repo.Sides()
		if err != nil {
			t.Fatalf("Sides failed: %v", err)
		}
		if !reflect.DeepEqual(entryTitles(tape.A), []string{"two", "three"}) {
			t.Errorf("unexpected side A %v", entryTitles(tape.A))
		}
		assertDense(t, tape)

		if err := repo.Remove(entries[0].ID); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Move", func(t *testing.T) {
		tt := []struct {
			name     string
			entry    int
			side     models.Side
			position int
			wantA    []string
			wantB    []string
		}{
			{name: "within side to front", entry: 2, side: models.SideA, position: 1, wantA: []string{"three", "one", "two"}, wantB: []string{"four"}},
			{name: "within side to end", entry: 0, side: models.SideA, position: 3, wantA: []string{"two", "three", "one"}, wantB: []string{"four"}},
			{name: "past the end appends", entry: 0, side: models.SideA, position: 99, wantA: []string{"two", "three", "one"}, wantB: []string{"four"}},
			{name: "across sides", entry: 1, side: models.SideB, position: 1, wantA: []string{"one", "three"}, wantB: []string{"two", "four"}},
			{name: "across sides to end", entry: 3, side: models.SideA, position: 4, wantA: []string{"one", "two", "three", "four"}, wantB: []string{}},
		}

		for _, tc := range tt {
			t.Run(tc.name, func(t *testing.T) {
				repo, entries := setupTape(t)

				if err := repo.Move(entries[tc.entry].ID, tc.side, tc.position); err != nil {
					t.Fatalf("Move failed: %v", err)
				}

				tape, err := repo.Sides()
				if err != nil {
					t.Fatalf("Sides failed: %v", err)
				}
				if !reflect.DeepEqual(entryTitles(tape.A), tc.wantA) {
					t.Errorf("side A = %v, want %v", entryTitles(tape.A), tc.wantA)
				}
				if !reflect.DeepEqual(entryTitles(tape.B), tc.wantB) {
					t.Errorf("side B = %v, want %v", entryTitles(tape.B), tc.wantB)
				}
				assertDense(t, tape)
			})
		}

		t.Run("invalid", func(t *testing.T) {
			repo, entries := setupTape(t)

			if err := repo.Move(entries[0].ID, models.SideA, 0); !errors.Is(err, shared.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput for position 0, got %v", err)
			}
			if err := repo.Move(entries[0].ID, "C", 1); !errors.Is(err, shared.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput for side C, got %v", err)
			}
			if err := repo.Move(999, models.SideA, 1); !errors.Is(err, shared.ErrNotFound) {
				t.Errorf("expected ErrNotFound, got %v", err)
			}
		})
	})

	t.Run("Clear", func(t *testing.T) {
		repo, _ := setupTape(t)

		if err := repo.Clear(); err != nil {
			t.Fatalf("Clear failed: %v", err)
		}

		tape, err := repo.Sides()
		if err != nil {
			t.Fatalf("Sides failed: %v", err)
		}
		if tape.Len() != 0 {
			t.Errorf("expected empty tape, got %d entries", tape.Len())
		}

		entry, err := repo.Add(models.SideB, &models.Song{Title: "fresh"})
		if err != nil {
			t.Fatalf("Add failed: %v", err)
		}
		if entry.Position != 1 {
			t.Errorf("expected position 1 after clear, got %d", entry.Position)
		}
	})

	t.Run("Entries are copies", func(t *testing.T) {
		db := setupTestDB(t)
		songs := NewSongRepository(db)
		tape := NewTapeRepository(db)

		song := &models.Song{Title: "Glory Box", Artist: "Portishead", Release: "Dummy", Length: "5:06"}
		if err := songs.Insert(song); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
		if _, err := tape.Add(models.SideA, song); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
		if err := songs.Delete(song.SongID); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}

		sides, err := tape.Sides()
		if err != nil {
			t.Fatalf("Sides failed: %v", err)
		}
		if len(sides.A) != 1 || sides.A[0].Length != "00:05:06" || sides.A[0].SongID != song.SongID {
			t.Errorf("unexpected tape after song delete: %+v", sides.A)
		}
	})
}
