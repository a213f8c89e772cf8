package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/schema"

	"github.com/kuncheriajose/firehawk-frontend/internal/core"
	"github.com/kuncheriajose/firehawk-frontend/internal/export"
	"github.com/kuncheriajose/firehawk-frontend/internal/logging"
)

var formDecoder = func() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	d.ZeroEmpty(true)
	return d
}()

// filterPatch holds the spec members present in a request. Nil members are
// left unchanged.
type filterPatch struct {
	SearchTerm      *string `json:"searchTerm" schema:"searchTerm"`
	MakeFilter      *string `json:"makeFilter" schema:"makeFilter"`
	CylindersFilter *string `json:"cylindersFilter" schema:"cylindersFilter"`
	SortBy          *string `json:"sortBy" schema:"sortBy"`
	SortDirection   *string `json:"sortDirection" schema:"sortDirection"`
}

// decodeFilterPatch reads a patch from a JSON body or from query and form
// values, and validates the sort direction.
func decodeFilterPatch(r *http.Request) (*filterPatch, error) {
	var p filterPatch

	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			return nil, fmt.Errorf("invalid form: %w", err)
		}
	} else {
		if err := r.ParseForm(); err != nil {
			return nil, fmt.Errorf("invalid form: %w", err)
		}
		if err := formDecoder.Decode(&p, r.Form); err != nil {
			return nil, fmt.Errorf("invalid form: %w", err)
		}
	}

	if p.SortDirection != nil {
		dir, err := core.ParseDirection(*p.SortDirection)
		if err != nil {
			return nil, err
		}
		normalized := string(dir)
		p.SortDirection = &normalized
	}
	return &p, nil
}

func (p *filterPatch) apply(s *core.FilterSpec) {
	if p.SearchTerm != nil {
		s.SearchTerm = *p.SearchTerm
	}
	if p.MakeFilter != nil {
		s.MakeFilter = *p.MakeFilter
	}
	if p.CylindersFilter != nil {
		s.CylindersFilter = *p.CylindersFilter
	}
	if p.SortBy != nil {
		s.SortBy = *p.SortBy
	}
	if p.SortDirection != nil {
		s.SortDirection = core.Direction(*p.SortDirection)
	}
}

// ============================================================================
// Page
// ============================================================================

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := Page(s.browser.View()).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render page", "error", err)
	}
}

// handleIndexForm applies the page's filter form, or clears it, and sends
// the browser back to the table.
func (s *Server) handleIndexForm(w http.ResponseWriter, r *http.Request) {
	if r.PostFormValue("action") == "clear" {
		s.browser.ClearFilters(r.Context())
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	patch, err := decodeFilterPatch(r)
	if err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}
	s.browser.Update(r.Context(), patch.apply)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleIndexSort(w http.ResponseWriter, r *http.Request) {
	s.browser.OnColumnHeaderClicked(r.Context(), columnParam(r))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// ============================================================================
// API
// ============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]any{
		"status":  "ok",
		"records": s.browser.Total(),
	})
}

func (s *Server) handleCars(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.browser.View())
}

func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.browser.Options())
}

func (s *Server) handleFilters(w http.ResponseWriter, r *http.Request) {
	patch, err := decodeFilterPatch(r)
	if err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}
	s.browser.Update(r.Context(), patch.apply)
	writeJSON(w, r, http.StatusOK, s.browser.View())
}

func (s *Server) handleClearFilters(w http.ResponseWriter, r *http.Request) {
	s.browser.ClearFilters(r.Context())
	writeJSON(w, r, http.StatusOK, s.browser.View())
}

// handleSort is a header click. Columns that are not displayed are ignored.
func (s *Server) handleSort(w http.ResponseWriter, r *http.Request) {
	s.browser.OnColumnHeaderClicked(r.Context(), columnParam(r))
	writeJSON(w, r, http.StatusOK, s.browser.View())
}

// handleExportDownload streams the visible records as a CSV attachment.
func (s *Server) handleExportDownload(w http.ResponseWriter, r *http.Request) {
	records := s.browser.Visible()
	filename := export.Filename(s.exportBase, time.Now())

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))

	if err := export.WriteCSV(w, records); err != nil {
		// Headers are already sent.
		logging.FromContext(r.Context()).Error("export stream failed", "error", err, "filename", filename)
	}
}

// handleExportSink writes the visible records through the configured sink.
func (s *Server) handleExportSink(w http.ResponseWriter, r *http.Request) {
	if s.sink == nil {
		respondError(w, r, errNoSink, http.StatusServiceUnavailable)
		return
	}
	if s.browser.Total() == 0 {
		respondError(w, r, errNoData, http.StatusConflict)
		return
	}

	if err := s.exports.Acquire(r.Context()); err != nil {
		respondError(w, r, err, http.StatusServiceUnavailable)
		return
	}
	defer s.exports.Release()

	records := s.browser.Visible()
	location, err := s.sink.Export(r.Context(), records, s.exportBase)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, r.Context().Err()) {
			status = http.StatusServiceUnavailable
		}
		respondError(w, r, err, status)
		return
	}

	writeJSON(w, r, http.StatusCreated, map[string]any{
		"location": location,
		"records":  len(records),
	})
}

func columnParam(r *http.Request) string {
	column := chi.URLParam(r, "column")
	if unescaped, err := url.PathUnescape(column); err == nil {
		return unescaped
	}
	return column
}
