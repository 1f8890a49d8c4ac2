package api

import (
	"errors"
	"io/fs"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"
)

// handleStats serves the counters accumulated by the scrape and publish runs.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.LoadStats(s.stats)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to read stats: "+err.Error())
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

func (s *Server) handleListMenus(w http.ResponseWriter, r *http.Request) {
	names := make([]string, 0, len(s.menus))
	for name := range s.menus {
		names = append(names, name)
	}
	sort.Strings(names)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"items": names,
	})
}

func (s *Server) handleGetMenu(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	file, ok := s.menus[name]
	if !ok {
		respondError(w, http.StatusNotFound, "Unknown menu: "+name)
		return
	}

	doc, err := s.store.LoadMenu(file)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			respondError(w, http.StatusNotFound, "Menu not scraped yet: "+name)
			return
		}
		respondError(w, http.StatusInternalServerError, "Failed to read menu: "+err.Error())
		return
	}

	if section := r.URL.Query().Get("section"); section != "" {
		if !doc.Has(section) {
			respondError(w, http.StatusNotFound, "Unknown section: "+section)
			return
		}
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"section": section,
			"items":   doc.Items(section),
		})
		return
	}
	respondJSON(w, http.StatusOK, doc)
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	data, err := s.store.ReadFile(s.page)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			respondError(w, http.StatusNotFound, "Page not published yet")
			return
		}
		respondError(w, http.StatusInternalServerError, "Failed to read page: "+err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
