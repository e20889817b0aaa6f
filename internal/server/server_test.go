package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/mixtape/internal/models"
	"github.com/desertthunder/mixtape/internal/repositories"
	"github.com/desertthunder/mixtape/internal/shared"
)

type fixture struct {
	releases *repositories.ReleaseRepository
	tape     *repositories.TapeRepository
	logs     *bytes.Buffer
	server   *Server
}

func setup(t *testing.T, mirrored bool) *fixture {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	shared.ConfigureDatabase(db, 1, 1)
	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	f := &fixture{
		releases: repositories.NewReleaseRepository(db),
		tape:     repositories.NewTapeRepository(db),
		logs:     &bytes.Buffer{},
	}

	if mirrored {
		_, err := f.releases.ReplaceAll([]models.Release{
			{ReleaseID: 1, Year: 1994, Decade: 1990, Artist: "Portishead", Title: "Dummy", Genre: "electronic"},
			{ReleaseID: 2, Year: 1998, Decade: 1990, Artist: "Massive Attack", Title: "Mezzanine", Genre: "electronic|rock"},
			{ReleaseID: 3, Year: 2001, Decade: 2000, Artist: "Wildcards", Title: "Self", Genre: "rock"},
		})
		if err != nil {
			t.Fatalf("failed to mirror: %v", err)
		}
	}

	for _, add := range []struct {
		side  models.Side
		title string
		len   string
	}{
		{models.SideA, "Mysterons", "00:05:02"},
		{models.SideA, "Sour Times", "00:04:11"},
		{models.SideB, "Teardrop", "00:05:30"},
	} {
		if _, err := f.tape.Add(add.side, &models.Song{Title: add.title, Artist: "Various", Release: "Tape", Length: add.len}); err != nil {
			t.Fatalf("failed to add tape entry: %v", err)
		}
	}

	f.server = New("127.0.0.1:0", f.releases, f.tape, shared.NewLogger(f.logs))
	return f
}

func (f *fixture) get(t *testing.T, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("failed to decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestCatalogHandler(t *testing.T) {
	f := setup(t, true)

	t.Run("routes", func(t *testing.T) {
		want := []string{
			"GET /browse", "GET /categories", "GET /health", "GET /releases/{id}",
			"GET /tape", "GET /tape/export", "GET /values",
		}
		if got := f.server.router.Patterns(); !reflect.DeepEqual(got, want) {
			t.Errorf("expected patterns %v, got %v", want, got)
		}
	})

	t.Run("health", func(t *testing.T) {
		rec := f.get(t, "/health")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected application/json, got %s", ct)
		}
	})

	t.Run("release", func(t *testing.T) {
		rec := f.get(t, "/releases/2")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		release := decode[models.Release](t, rec)
		if release.ReleaseID != 2 || release.Title != "Mezzanine" {
			t.Errorf("unexpected release %+v", release)
		}
	})

	t.Run("errors", func(t *testing.T) {
		tests := []struct {
			target string
			status int
		}{
			{"/releases/abc", http.StatusBadRequest},
			{"/releases/99", http.StatusNotFound},
			{"/browse", http.StatusBadRequest},
			{"/browse?category=NOPE&selection=x", http.StatusBadRequest},
			{"/browse?category=RANDOM&selection=many", http.StatusBadRequest},
			{"/values", http.StatusBadRequest},
			{"/values?category=NOPE", http.StatusBadRequest},
			{"/tape/export?format=xml", http.StatusBadRequest},
			{"/nowhere", http.StatusNotFound},
		}
		for _, tt := range tests {
			t.Run(tt.target, func(t *testing.T) {
				rec := f.get(t, tt.target)
				if rec.Code != tt.status {
					t.Errorf("expected %d, got %d: %s", tt.status, rec.Code, rec.Body.String())
				}
			})
		}
	})

	t.Run("error body", func(t *testing.T) {
		rec := f.get(t, "/releases/99")
		body := decode[map[string]string](t, rec)
		if !strings.Contains(body["error"], "not found") {
			t.Errorf("expected not found message, got %q", body["error"])
		}
	})

	t.Run("method not allowed", func(t *testing.T) {
		rec := httptest.NewRecorder()
		f.server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/health", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", rec.Code)
		}
	})

	t.Run("browse", func(t *testing.T) {
		tests := []struct {
			target string
			want   []int64
		}{
			{"/browse?category=all", []int64{2, 1, 3}},
			{"/browse?category=GENRE&selection=rock", []int64{2, 3}},
			{"/browse?category=GENRE&selection=ELECTRONIC", []int64{2, 1}},
			{"/browse?category=GENRE", []int64{}},
		}
		for _, tt := range tests {
			t.Run(tt.target, func(t *testing.T) {
				rec := f.get(t, tt.target)
				if rec.Code != http.StatusOK {
					t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
				}
				ids := []int64{}
				for _, r := range decode[[]models.Release](t, rec) {
					ids = append(ids, r.ReleaseID)
				}
				if !reflect.DeepEqual(ids, tt.want) {
					t.Errorf("expected %v, got %v", tt.want, ids)
				}
			})
		}
	})

	t.Run("values", func(t *testing.T) {
		rec := f.get(t, "/values?category=GENRE")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		want := []models.ValueCount{{Name: "electronic", Count: 2}, {Name: "rock", Count: 2}}
		if got := decode[[]models.ValueCount](t, rec); !reflect.DeepEqual(got, want) {
			t.Errorf("expected %v, got %v", want, got)
		}
	})

	t.Run("categories", func(t *testing.T) {
		rec := f.get(t, "/categories")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		found := false
		for _, c := range decode[[]models.ValueCount](t, rec) {
			if c.Name == models.CategoryRandom {
				found = true
			}
		}
		if !found {
			t.Error("expected RANDOM category")
		}
	})

	t.Run("tape", func(t *testing.T) {
		rec := f.get(t, "/tape")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		resp := decode[TapeResponse](t, rec)
		if len(resp.Sides.A) != 2 || len(resp.Sides.B) != 1 {
			t.Errorf("unexpected sides %+v", resp.Sides)
		}
		if len(resp.Stats) != 2 || resp.Stats[0].Total != "00:09:13" || resp.Stats[1].Total != "00:05:30" {
			t.Errorf("unexpected stats %+v", resp.Stats)
		}
	})

	t.Run("tape export", func(t *testing.T) {
		tests := []struct {
			format      string
			contentType string
			prefix      string
		}{
			{"csv", "text/csv; charset=utf-8", "SIDE,TRACK NO,TIME,TITLE,ARTIST,RELEASE\n"},
			{"txt", "text/plain; charset=utf-8", "SIDE A\n"},
			{"", "text/plain; charset=utf-8", "SIDE A\n"},
			{"md", "text/markdown; charset=utf-8", "#"},
		}
		for _, tt := range tests {
			t.Run(tt.format, func(t *testing.T) {
				rec := f.get(t, "/tape/export?format="+tt.format)
				if rec.Code != http.StatusOK {
					t.Fatalf("expected 200, got %d", rec.Code)
				}
				if ct := rec.Header().Get("Content-Type"); ct != tt.contentType {
					t.Errorf("expected %s, got %s", tt.contentType, ct)
				}
				if !strings.HasPrefix(rec.Body.String(), tt.prefix) {
					t.Errorf("expected body to start with %q, got %q", tt.prefix, rec.Body.String())
				}
			})
		}

		rec := f.get(t, "/tape/export?format=csv")
		lines := strings.Split(strings.TrimRight(rec.Body.String(), "\n"), "\n")
		if len(lines) != 4 {
			t.Errorf("expected 4 CSV lines, got %d", len(lines))
		}
	})

	t.Run("logs requests", func(t *testing.T) {
		f.get(t, "/health")
		if !strings.Contains(f.logs.String(), "path=/health") {
			t.Errorf("expected request log, got %q", f.logs.String())
		}
	})
}

func TestNotMirrored(t *testing.T) {
	f := setup(t, false)

	for _, target := range []string{"/categories", "/browse?category=all", "/values?category=ARTIST", "/releases/1"} {
		rec := f.get(t, target)
		if rec.Code != http.StatusConflict {
			t.Errorf("%s: expected 409, got %d", target, rec.Code)
		}
	}

	if rec := f.get(t, "/tape"); rec.Code != http.StatusOK {
		t.Errorf("expected tape to be readable before a refresh, got %d", rec.Code)
	}
}

func TestMiddleware(t *testing.T) {
	t.Run("RecoverMiddleware", func(t *testing.T) {
		logs := &bytes.Buffer{}
		router := NewBasicRouter()
		router.Use(RecoverMiddleware(shared.NewLogger(logs)))
		router.Handle("get", "/boom", http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			panic("boom")
		}))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
		if rec.Code != http.StatusInternalServerError {
			t.Errorf("expected 500, got %d", rec.Code)
		}
		if !strings.Contains(logs.String(), "handler panic") {
			t.Errorf("expected panic to be logged, got %q", logs.String())
		}
	})

	t.Run("order", func(t *testing.T) {
		var calls []string
		mark := func(name string) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					calls = append(calls, name)
					next.ServeHTTP(w, r)
				})
			}
		}

		router := NewBasicRouter()
		router.Use(mark("first"), mark("second"))
		router.Handle(http.MethodGet, "/", http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			calls = append(calls, "handler")
		}))
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

		if want := []string{"first", "second", "handler"}; !reflect.DeepEqual(calls, want) {
			t.Errorf("expected %v, got %v", want, calls)
		}
	})
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("wrap: %w", shared.ErrInvalidQuery), http.StatusBadRequest},
		{shared.ErrInvalidInput, http.StatusBadRequest},
		{fmt.Errorf("%w: release 9", shared.ErrNotFound), http.StatusNotFound},
		{shared.ErrNotMirrored, http.StatusConflict},
		{shared.ErrDataAccess, http.StatusInternalServerError},
		{errors.New("other"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := StatusFor(tt.err); got != tt.want {
			t.Errorf("StatusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestListenAndServe(t *testing.T) {
	f := setup(t, false)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- f.server.ListenAndServe(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("expected clean shutdown, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
