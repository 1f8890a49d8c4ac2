package api

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/baxromumarov/lunch-menu/internal/store"
)

// Server is a read-only preview of the published page and the menu files.
// It never triggers a scrape.
type Server struct {
	router *chi.Mux
	store  *store.Store
	page   string
	stats  string
	menus  map[string]string
}

// NewServer serves page at / and each entry of menus (name -> JSON file)
// at /menus/{name}. Run counters are read from store.DefaultStatsFile unless
// SetStatsPath says otherwise.
func NewServer(st *store.Store, page string, menus map[string]string) *Server {
	s := &Server{
		router: chi.NewRouter(),
		store:  st,
		page:   page,
		stats:  store.DefaultStatsFile,
		menus:  menus,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	s.router.Get("/health", s.handleHealth)
	s.router.Get("/stats", s.handleStats)
	s.router.Get("/menus", s.handleListMenus)
	s.router.Get("/menus/{name}", s.handleGetMenu)
	s.router.Get("/", s.handlePage)
	s.router.Get("/index.html", s.handlePage)
}

func (s *Server) SetStatsPath(name string) {
	if name != "" {
		s.stats = name
	}
}

func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
