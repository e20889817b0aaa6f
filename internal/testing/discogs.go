package testing

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
)

// FixtureArtist is an artist credit in fixture payloads.
type FixtureArtist struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// FixtureLabel is a label credit in fixture payloads.
type FixtureLabel struct {
	Name  string `json:"name"`
	CatNo string `json:"catno"`
}

// FixtureFormat is a format with descriptors in fixture payloads.
type FixtureFormat struct {
	Name         string   `json:"name"`
	Descriptions []string `json:"descriptions"`
}

// FixtureRelease is one collection entry served by [DiscogsFixture].
type FixtureRelease struct {
	ID        int64
	MasterID  int64
	FolderID  int64
	Year      int
	Title     string
	DateAdded string
	Artists   []FixtureArtist
	Labels    []FixtureLabel
	Formats   []FixtureFormat
	Genres    []string
	Styles    []string
	Thumb     string
	Cover     string
}

// FixtureTrack is a track listing entry.
type FixtureTrack struct {
	Position string          `json:"position"`
	Type     string          `json:"type_"`
	Title    string          `json:"title"`
	Duration string          `json:"duration"`
	Artists  []FixtureArtist `json:"artists,omitempty"`
}

// FixtureVideo is a release video.
type FixtureVideo struct {
	URI         string `json:"uri"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Duration    int    `json:"duration"`
	Embed       bool   `json:"embed"`
}

// FixtureDetail holds the /releases/{id} payload beyond what the collection entry has.
type FixtureDetail struct {
	Tracklist []FixtureTrack
	Videos    []FixtureVideo
}

// DiscogsFixture is an in-memory Discogs API.
//
// Unknown masters and releases return 404. Status overrides a path's response with the given status code.
type DiscogsFixture struct {
	UserID   string
	Token    string
	Releases []FixtureRelease
	Masters  map[int64]int // master id to year
	Details  map[int64]FixtureDetail
	Status   map[string]int

	mu       sync.Mutex
	requests []string
}

// Requests returns the paths (with query) served so far.
func (f *DiscogsFixture) Requests() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requests...)
}

// SetStatus forces path to respond with code. Safe to call while the server runs.
func (f *DiscogsFixture) SetStatus(path string, code int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Status == nil {
		f.Status = make(map[string]int)
	}
	f.Status[path] = code
}

// NewDiscogsServer starts an httptest server backed by f and closes it when the test ends.
func NewDiscogsServer(t *testing.T, f *DiscogsFixture) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(f.serveHTTP))
	t.Cleanup(server.Close)
	return server
}

func (f *DiscogsFixture) serveHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.requests = append(f.requests, r.URL.RequestURI())
	status, forced := f.Status[r.URL.Path]
	f.mu.Unlock()

	if r.Header.Get("Authorization") != "Discogs token="+f.Token {
		writeFixtureJSON(w, http.StatusUnauthorized, map[string]string{"message": "You must authenticate to access this resource."})
		return
	}
	if forced {
		writeFixtureJSON(w, status, map[string]string{"message": http.StatusText(status)})
		return
	}

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	switch {
	case len(parts) == 6 && parts[0] == "users" && parts[2] == "collection" && parts[5] == "releases":
		if parts[1] != f.UserID {
			writeFixtureJSON(w, http.StatusNotFound, map[string]string{"message": "User does not exist or may have been deleted."})
			return
		}
		f.serveCollection(w, r)
	case len(parts) == 2 && parts[0] == "masters":
		id, _ := strconv.ParseInt(parts[1], 10, 64)
		year, ok := f.Masters[id]
		if !ok {
			writeFixtureJSON(w, http.StatusNotFound, map[string]string{"message": "Master Release not found."})
			return
		}
		writeFixtureJSON(w, http.StatusOK, map[string]any{"id": id, "title": fmt.Sprintf("Master %d", id), "year": year})
	case len(parts) == 2 && parts[0] == "releases":
		id, _ := strconv.ParseInt(parts[1], 10, 64)
		f.serveRelease(w, id)
	default:
		http.NotFound(w, r)
	}
}

func (f *DiscogsFixture) serveCollection(w http.ResponseWriter, r *http.Request) {
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	if perPage <= 0 {
		perPage = 50
	}
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page <= 0 {
		page = 1
	}

	items := len(f.Releases)
	pages := (items + perPage - 1) / perPage
	if pages == 0 {
		pages = 1
	}

	start := (page - 1) * perPage
	end := min(start+perPage, items)
	releases := []map[string]any{}
	for i := start; i < end; i++ {
		releases = append(releases, f.Releases[i].collectionJSON())
	}

	writeFixtureJSON(w, http.StatusOK, map[string]any{
		"pagination": map[string]int{"page": page, "pages": pages, "per_page": perPage, "items": items},
		"releases":   releases,
	})
}

func (f *DiscogsFixture) serveRelease(w http.ResponseWriter, id int64) {
	var release *FixtureRelease
	for i := range f.Releases {
		if f.Releases[i].ID == id {
			release = &f.Releases[i]
		}
	}
	detail, hasDetail := f.Details[id]
	if release == nil && !hasDetail {
		writeFixtureJSON(w, http.StatusNotFound, map[string]string{"message": "Release not found."})
		return
	}

	body := map[string]any{"id": id, "tracklist": detail.Tracklist, "videos": detail.Videos}
	if release != nil {
		body["title"] = release.Title
		body["year"] = release.Year
		body["artists"] = release.Artists
	}
	writeFixtureJSON(w, http.StatusOK, body)
}

func (r FixtureRelease) collectionJSON() map[string]any {
	var masterURL any
	if r.MasterID != 0 {
		masterURL = fmt.Sprintf("https://api.discogs.com/masters/%d", r.MasterID)
	}

	return map[string]any{
		"id":         r.ID,
		"folder_id":  r.FolderID,
		"date_added": r.DateAdded,
		"basic_information": map[string]any{
			"id":           r.ID,
			"master_id":    r.MasterID,
			"master_url":   masterURL,
			"resource_url": fmt.Sprintf("https://api.discogs.com/releases/%d", r.ID),
			"title":        r.Title,
			"year":         r.Year,
			"thumb":        r.Thumb,
			"cover_image":  r.Cover,
			"labels":       r.Labels,
			"artists":      r.Artists,
			"formats":      r.Formats,
			"genres":       r.Genres,
			"styles":       r.Styles,
		},
	}
}

func writeFixtureJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
