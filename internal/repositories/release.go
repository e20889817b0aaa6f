package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/desertthunder/mixtape/internal/models"
	"github.com/desertthunder/mixtape/internal/shared"
)

const (
	releasesTable = "RELEASES"
	stagingTable  = "RELEASES_STAGING"
	browseOrder   = "ORDER BY ARTIST COLLATE NOCASE, DECADE, TITLE COLLATE NOCASE"
)

// ReleaseRepository owns the mirrored RELEASES table and answers the catalog queries against it.
type ReleaseRepository struct {
	db *sql.DB
}

// NewReleaseRepository creates a new ReleaseRepository with the given database connection
func NewReleaseRepository(db *sql.DB) *ReleaseRepository {
	return &ReleaseRepository{db: db}
}

// createTableSQL declares the fixed release column list. Only RELEASE_ID and DATE_ADDED are typed.
func createTableSQL(table string) string {
	defs := make([]string, len(models.ReleaseColumns))
	for i, c := range models.ReleaseColumns {
		switch c {
		case models.ColReleaseID:
			defs[i] = c + " INTEGER PRIMARY KEY"
		case models.ColDateAdded:
			defs[i] = c + " DATETIME"
		default:
			defs[i] = c
		}
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", table, strings.Join(defs, ", "))
}

// selectExpr returns the select expression for a column.
//
// DATE_ADDED is cast to text so the driver returns the stored string instead of parsing a timestamp.
func selectExpr(column string) string {
	if column == models.ColDateAdded {
		return "CAST(" + column + " AS TEXT)"
	}
	return column
}

func selectColumns() string {
	exprs := make([]string, len(models.ReleaseColumns))
	for i, c := range models.ReleaseColumns {
		exprs[i] = selectExpr(c)
	}
	return strings.Join(exprs, ", ")
}

// Mirrored reports whether a refresh has ever completed.
func (r *ReleaseRepository) Mirrored() (bool, error) {
	return shared.TableExists(r.db, releasesTable)
}

func (r *ReleaseRepository) requireMirror() error {
	ok, err := r.Mirrored()
	if err != nil {
		return err
	}
	if !ok {
		return shared.ErrNotMirrored
	}
	return nil
}

// ReplaceAll swaps the whole release set for releases in a single transaction and returns the number of rows stored.
//
// Rows and their tokens are written to a staging table which then replaces RELEASES. Any failure rolls back and
// leaves the previous mirror intact. When a release id appears more than once the first occurrence is kept.
func (r *ReleaseRepository) ReplaceAll(releases []models.Release) (int, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return 0, dataErr("begin transaction", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DROP TABLE IF EXISTS " + stagingTable); err != nil {
		return 0, dataErr("drop staging table", err)
	}
	if _, err := tx.Exec(createTableSQL(stagingTable)); err != nil {
		return 0, dataErr("create staging table", err)
	}

	insertRelease, err := tx.Prepare(fmt.Sprintf(
		"INSERT OR IGNORE INTO %s (%s) VALUES (%s)",
		stagingTable, strings.Join(models.ReleaseColumns, ", "), placeholders(len(models.ReleaseColumns)),
	))
	if err != nil {
		return 0, dataErr("prepare release insert", err)
	}
	defer insertRelease.Close()

	if _, err := tx.Exec("DELETE FROM release_tokens"); err != nil {
		return 0, dataErr("clear release tokens", err)
	}

	insertToken, err := tx.Prepare("INSERT INTO release_tokens (release_id, field, token) VALUES (?, ?, ?)")
	if err != nil {
		return 0, dataErr("prepare token insert", err)
	}
	defer insertToken.Close()

	stored := 0
	for i := range releases {
		rel := &releases[i]
		result, err := insertRelease.Exec(rel.Values()...)
		if err != nil {
			return 0, dataErr(fmt.Sprintf("insert release %d", rel.ReleaseID), err)
		}
		if n, _ := result.RowsAffected(); n == 0 {
			continue
		}
		stored++

		for _, column := range models.MultiValueColumns {
			for _, token := range models.MultiValue(rel.Field(column)).Split() {
				if _, err := insertToken.Exec(rel.ReleaseID, column, token); err != nil {
					return 0, dataErr(fmt.Sprintf("insert token for release %d", rel.ReleaseID), err)
				}
			}
		}
	}

	insertRelease.Close()
	insertToken.Close()

	if _, err := tx.Exec("DROP TABLE IF EXISTS " + releasesTable); err != nil {
		return 0, dataErr("drop releases table", err)
	}
	if _, err := tx.Exec(fmt.Sprintf("ALTER TABLE %s RENAME TO %s", stagingTable, releasesTable)); err != nil {
		return 0, dataErr("swap releases table", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, dataErr("commit release replacement", err)
	}

	return stored, nil
}

// Get retrieves a release by id. A missing row wraps [shared.ErrNotFound].
func (r *ReleaseRepository) Get(id int64) (*models.Release, error) {
	if err := r.requireMirror(); err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT %s FROM %s WHERE RELEASE_ID = ?", selectColumns(), releasesTable)
	release, err := scanRelease(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: release %d", shared.ErrNotFound, id)
	}
	if err != nil {
		return nil, dataErr("get release", err)
	}
	return release, nil
}

// Browse returns releases for a category and selection.
//
//   - "RANDOM" with selection N returns N rows in random order.
//   - "all" returns every row ordered by artist, decade and title.
//   - any declared column, in any case, returns the rows whose value equals selection, starts with
//     "selection|", contains "|selection|" or ends with "|selection", ignoring case, ordered by artist,
//     decade and title.
//
// A single token on a multi-value column is looked up in release_tokens. An empty selection (or a RANDOM
// count below one) yields no rows. Any other category wraps [shared.ErrInvalidQuery].
func (r *ReleaseRepository) Browse(category, selection string) ([]models.Release, error) {
	var (
		query string
		args  []any
	)

	column, isColumn := models.ReleaseColumn(category)
	switch {
	case category == models.CategoryAll:
		query = fmt.Sprintf("SELECT %s FROM %s %s", selectColumns(), releasesTable, browseOrder)
	case category == models.CategoryRandom:
		n, err := strconv.Atoi(strings.TrimSpace(selection))
		if selection != "" && err != nil {
			return nil, fmt.Errorf("%w: RANDOM count %q is not a number", shared.ErrInvalidQuery, selection)
		}
		if n < 1 {
			return []models.Release{}, r.requireMirror()
		}
		query = fmt.Sprintf("SELECT %s FROM %s ORDER BY RANDOM() LIMIT ?", selectColumns(), releasesTable)
		args = []any{n}
	case isColumn:
		if selection == "" {
			return []models.Release{}, r.requireMirror()
		}
		query, args = matchQuery(column, selection)
	default:
		return nil, fmt.Errorf("%w: unknown category %q", shared.ErrInvalidQuery, category)
	}

	if err := r.requireMirror(); err != nil {
		return nil, err
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, dataErr("browse releases", err)
	}
	defer rows.Close()

	releases := []models.Release{}
	for rows.Next() {
		release, err := scanRelease(rows)
		if err != nil {
			return nil, dataErr("scan release", err)
		}
		releases = append(releases, *release)
	}

	if err := rows.Err(); err != nil {
		return nil, dataErr("iterate releases", err)
	}

	return releases, nil
}

// matchQuery builds the column browse query.
func matchQuery(column, selection string) (string, []any) {
	if models.IsMultiValueColumn(column) && !strings.Contains(selection, models.Separator) {
		query := fmt.Sprintf(`SELECT %s FROM %s r
			WHERE EXISTS (SELECT 1 FROM release_tokens t WHERE t.release_id = r.RELEASE_ID AND t.field = ? AND t.token = ? COLLATE NOCASE)
			%s`, selectColumns(), releasesTable, browseOrder)
		return query, []any{column, selection}
	}

	query := fmt.Sprintf(`SELECT %s FROM %s r
		WHERE instr('|' || lower(CAST(r.%s AS TEXT)) || '|', '|' || lower(?) || '|') > 0
		%s`, selectColumns(), releasesTable, column, browseOrder)
	return query, []any{selection}
}

// UniqueValues counts every distinct value of a column.
//
// Text values are split on "|" and each token counted. Integers count as their decimal form with 0 reported as
// "unknown". NULLs are skipped. The result is sorted case-insensitively with exact order breaking ties.
func (r *ReleaseRepository) UniqueValues(category string) ([]models.ValueCount, error) {
	column, ok := models.ReleaseColumn(category)
	if !ok {
		return nil, fmt.Errorf("%w: unknown category %q", shared.ErrInvalidQuery, category)
	}
	category = column
	if err := r.requireMirror(); err != nil {
		return nil, err
	}

	rows, err := r.db.Query(fmt.Sprintf("SELECT %s FROM %s", selectExpr(category), releasesTable))
	if err != nil {
		return nil, dataErr("scan column "+category, err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var value any
		if err := rows.Scan(&value); err != nil {
			return nil, dataErr("scan value", err)
		}

		switch v := value.(type) {
		case nil:
		case string:
			for _, token := range models.MultiValue(v).Split() {
				counts[token]++
			}
		case []byte:
			for _, token := range models.MultiValue(v).Split() {
				counts[token]++
			}
		case int64:
			if v == 0 {
				counts["unknown"]++
			} else {
				counts[strconv.FormatInt(v, 10)]++
			}
		default:
			counts[fmt.Sprintf("%v", v)]++
		}
	}

	if err := rows.Err(); err != nil {
		return nil, dataErr("iterate values", err)
	}

	return sortedCounts(counts), nil
}

// Categories lists the browsable columns (names without ID, URL or DATE) with their unique value counts,
// plus RANDOM carrying the ARTIST count.
func (r *ReleaseRepository) Categories() ([]models.ValueCount, error) {
	if err := r.requireMirror(); err != nil {
		return nil, err
	}

	var categories []models.ValueCount
	artists := 0
	for _, column := range models.ReleaseColumns {
		if strings.Contains(column, "ID") || strings.Contains(column, "URL") || strings.Contains(column, "DATE") {
			continue
		}

		values, err := r.UniqueValues(column)
		if err != nil {
			return nil, err
		}
		if column == models.ColArtist {
			artists = len(values)
		}
		categories = append(categories, models.ValueCount{Name: column, Count: len(values)})
	}
	categories = append(categories, models.ValueCount{Name: models.CategoryRandom, Count: artists})

	sortValueCounts(categories)
	return categories, nil
}

// Count returns the number of mirrored releases.
func (r *ReleaseRepository) Count() (int, error) {
	if err := r.requireMirror(); err != nil {
		return 0, err
	}

	var n int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM " + releasesTable).Scan(&n); err != nil {
		return 0, dataErr("count releases", err)
	}
	return n, nil
}

func sortedCounts(counts map[string]int) []models.ValueCount {
	values := make([]models.ValueCount, 0, len(counts))
	for name, count := range counts {
		values = append(values, models.ValueCount{Name: name, Count: count})
	}
	sortValueCounts(values)
	return values
}

func sortValueCounts(values []models.ValueCount) {
	sort.Slice(values, func(i, j int) bool {
		a, b := strings.ToLower(values[i].Name), strings.ToLower(values[j].Name)
		if a != b {
			return a < b
		}
		return values[i].Name < values[j].Name
	})
}

// scanRelease scans a row selected with [selectColumns] into a [models.Release]
func scanRelease(row scanner) (*models.Release, error) {
	var (
		rel                                 models.Release
		folderID, year, decade              sql.NullInt64
		catalogID, artistsID, dateAdded     sql.NullString
		artist, title, label, format, genre sql.NullString
		style, releaseURL, masterURL        sql.NullString
		thumbURL, coverURL                  sql.NullString
	)

	err := row.Scan(
		&rel.ReleaseID, &folderID, &catalogID, &artistsID, &dateAdded, &year, &decade,
		&artist, &title, &label, &format, &genre, &style,
		&releaseURL, &masterURL, &thumbURL, &coverURL,
	)
	if err != nil {
		return nil, err
	}

	rel.FolderID = folderID.Int64
	rel.CatalogID = catalogID.String
	rel.ArtistsID = artistsID.String
	rel.DateAdded = dateAdded.String
	rel.Year = int(year.Int64)
	rel.Decade = int(decade.Int64)
	rel.Artist = artist.String
	rel.Title = title.String
	rel.Label = label.String
	rel.Format = format.String
	rel.Genre = genre.String
	rel.Style = style.String
	rel.ReleaseURL = releaseURL.String
	rel.MasterURL = masterURL.String
	rel.ThumbURL = thumbURL.String
	rel.CoverURL = coverURL.String

	return &rel, nil
}
