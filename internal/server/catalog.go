package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mixtape/internal/formatter"
	"github.com/desertthunder/mixtape/internal/models"
	"github.com/desertthunder/mixtape/internal/shared"
)

// ReleaseStore is the query surface over the mirrored collection.
type ReleaseStore interface {
	Get(id int64) (*models.Release, error)
	Browse(category, selection string) ([]models.Release, error)
	UniqueValues(category string) ([]models.ValueCount, error)
	Categories() ([]models.ValueCount, error)
}

// TapeStore reads the current tape.
type TapeStore interface {
	Sides() (*models.Tape, error)
}

const (
	routeHealth     = "GET /health"
	routeRelease    = "GET /releases/{id}"
	routeBrowse     = "GET /browse"
	routeCategories = "GET /categories"
	routeValues     = "GET /values"
	routeTape       = "GET /tape"
	routeTapeExport = "GET /tape/export"
)

// TapeResponse is the body of GET /tape.
type TapeResponse struct {
	Sides *models.Tape       `json:"sides"`
	Stats []models.SideStats `json:"stats"`
}

// CatalogHandler serves read-only JSON over the release mirror and the tape.
type CatalogHandler struct {
	releases ReleaseStore
	tape     TapeStore
	logger   *log.Logger
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(releases ReleaseStore, tape TapeStore, logger *log.Logger) *CatalogHandler {
	return &CatalogHandler{releases: releases, tape: tape, logger: logger}
}

// Routes returns the HTTP routes this handler serves.
func (h *CatalogHandler) Routes() []string {
	return []string{routeHealth, routeRelease, routeBrowse, routeCategories, routeValues, routeTape, routeTapeExport}
}

// ServeHTTP dispatches on the matched route pattern.
func (h *CatalogHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Pattern {
	case routeHealth:
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	case routeRelease:
		h.release(w, r)
	case routeBrowse:
		h.browse(w, r)
	case routeCategories:
		h.respond(w, func() (any, error) { return h.releases.Categories() })
	case routeValues:
		h.values(w, r)
	case routeTape:
		h.respond(w, func() (any, error) {
			tape, err := h.tape.Sides()
			if err != nil {
				return nil, err
			}
			return TapeResponse{Sides: tape, Stats: formatter.TapeStats(tape)}, nil
		})
	case routeTapeExport:
		h.export(w, r)
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

func (h *CatalogHandler) release(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		h.fail(w, fmt.Errorf("%w: release id %q", shared.ErrInvalidQuery, r.PathValue("id")))
		return
	}
	h.respond(w, func() (any, error) { return h.releases.Get(id) })
}

func (h *CatalogHandler) browse(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	if category == "" {
		h.fail(w, fmt.Errorf("%w: category is required", shared.ErrInvalidQuery))
		return
	}
	selection := r.URL.Query().Get("selection")
	h.respond(w, func() (any, error) { return h.releases.Browse(category, selection) })
}

func (h *CatalogHandler) values(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	if category == "" {
		h.fail(w, fmt.Errorf("%w: category is required", shared.ErrInvalidQuery))
		return
	}
	h.respond(w, func() (any, error) { return h.releases.UniqueValues(category) })
}

var exportContentTypes = map[string]string{
	formatter.FormatText:     "text/plain; charset=utf-8",
	formatter.FormatCSV:      "text/csv; charset=utf-8",
	formatter.FormatMarkdown: "text/markdown; charset=utf-8",
}

func (h *CatalogHandler) export(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = formatter.FormatText
	}
	contentType, ok := exportContentTypes[format]
	if !ok {
		h.fail(w, fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidQuery, format))
		return
	}

	tape, err := h.tape.Sides()
	if err != nil {
		h.fail(w, err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="tape.%s"`, format))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(formatter.Export(tape, format))
}

func (h *CatalogHandler) respond(w http.ResponseWriter, fn func() (any, error)) {
	body, err := fn()
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, body)
}

func (h *CatalogHandler) fail(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", "error", err)
	}
	writeError(w, status, err.Error())
}

// StatusFor maps an error to its HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, shared.ErrInvalidQuery), errors.Is(err, shared.ErrInvalidInput), errors.Is(err, shared.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, shared.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, shared.ErrNotMirrored):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	data, err := shared.MarshalJSON(body, false)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to encode response")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(data, '\n'))
}

func writeError(w http.ResponseWriter, status int, message string) {
	data, _ := shared.MarshalJSON(map[string]string{"error": message}, false)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(data, '\n'))
}
