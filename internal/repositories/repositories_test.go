package repositories

import (
	"database/sql"
	"testing"

	"github.com/desertthunder/mixtape/internal/models"
	"github.com/desertthunder/mixtape/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	shared.ConfigureDatabase(db, 1, 1)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

// sampleReleases is a small collection covering multi-value columns and the zero year.
func sampleReleases() []models.Release {
	return []models.Release{
		{
			ReleaseID: 1, FolderID: 1, CatalogID: "WIJ 1|WIJ 1X", ArtistsID: "100", DateAdded: "2017-05-04 10:20:33",
			Year: 1994, Decade: 1990, Artist: "Portishead", Title: "Dummy", Label: "Go! Beat",
			Format: "vinyl|lp|album", Genre: "electronic", Style: "trip hop",
			ReleaseURL: "https://api.discogs.com/releases/1", MasterURL: "https://api.discogs.com/masters/10",
		},
		{
			ReleaseID: 2, FolderID: 1, CatalogID: "WBRCD1", ArtistsID: "200", DateAdded: "2018-01-01 00:00:00",
			Year: 1998, Decade: 1990, Artist: "massive attack", Title: "Mezzanine", Label: "Virgin",
			Format: "cd|album", Genre: "electronic|rock", Style: "trip hop|downtempo",
		},
		{
			ReleaseID: 3, FolderID: 2, CatalogID: "", ArtistsID: "300|400", DateAdded: "2019-02-02 12:00:00",
			Year: 0, Decade: 0, Artist: "Tricky|Martina Topley-Bird", Title: "Maxinquaye", Label: "Island",
			Format: "vinyl|lp", Genre: "electronic|hip hop", Style: "trip hop",
		},
		{
			ReleaseID: 4, FolderID: 2, ArtistsID: "500", DateAdded: "2020-03-03 08:00:00",
			Year: 2001, Decade: 2000, Artist: "100%_Pure", Title: "Wildcards", Label: "Self",
			Format: "cassette", Genre: "rock", Style: "indie rock",
		},
	}
}

func mirror(t *testing.T, db *sql.DB) *ReleaseRepository {
	t.Helper()
	repo := NewReleaseRepository(db)
	if _, err := repo.ReplaceAll(sampleReleases()); err != nil {
		t.Fatalf("failed to mirror releases: %v", err)
	}
	return repo
}
