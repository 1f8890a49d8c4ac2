package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/baxromumarov/lunch-menu/internal/core"
	"github.com/baxromumarov/lunch-menu/internal/menu"
	"github.com/baxromumarov/lunch-menu/internal/observability"
	"github.com/baxromumarov/lunch-menu/internal/store"
)

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	dir := t.TempDir()
	menus := map[string]string{
		"nacepu": "nacepu_menu.json",
		"sia":    "sia_menu.json",
	}
	return NewServer(store.NewStore(dir), "index.html", menus), dir
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestServer_Health(t *testing.T) {
	s, _ := newTestServer(t)
	rec := get(t, s, "/health")
	if rec.Code != http.StatusOK || rec.Body.String() != "OK" {
		t.Fatalf("got %d %q", rec.Code, rec.Body.String())
	}
}

func TestServer_ListMenus(t *testing.T) {
	s, _ := newTestServer(t)
	rec := get(t, s, "/menus")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	var body struct {
		Items []string `json:"items"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if strings.Join(body.Items, ",") != "nacepu,sia" {
		t.Fatalf("unexpected items %v", body.Items)
	}
}

func TestServer_GetMenu(t *testing.T) {
	s, dir := newTestServer(t)
	content := `{"Polévky": ["Guláš <b>pálivý</b>"], "Menu": []}`
	if err := os.WriteFile(filepath.Join(dir, "nacepu_menu.json"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	rec := get(t, s, "/menus/nacepu")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	want := `{"Polévky":["Guláš <b>pálivý</b>"],"Menu":[]}` + "\n"
	if rec.Body.String() != want {
		t.Fatalf("got %q want %q", rec.Body.String(), want)
	}

	if rec := get(t, s, "/menus/sia"); rec.Code != http.StatusNotFound {
		t.Fatalf("missing file: expected 404, got %d", rec.Code)
	}
	if rec := get(t, s, "/menus/unknown"); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown menu: expected 404, got %d", rec.Code)
	}

	if err := os.WriteFile(filepath.Join(dir, "sia_menu.json"), []byte("{"), 0o644); err != nil {
		t.Fatal(err)
	}
	if rec := get(t, s, "/menus/sia"); rec.Code != http.StatusInternalServerError {
		t.Fatalf("malformed file: expected 500, got %d", rec.Code)
	}
}

func TestServer_Page(t *testing.T) {
	s, dir := newTestServer(t)
	if rec := get(t, s, "/"); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 before publish, got %d", rec.Code)
	}

	page := `<div id="sia-menu"><ul>\n</ul></div>`
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte(page), 0o644); err != nil {
		t.Fatal(err)
	}
	for _, path := range []string{"/", "/index.html"} {
		rec := get(t, s, path)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: status %d", path, rec.Code)
		}
		if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
			t.Fatalf("%s: content type %q", path, ct)
		}
		if rec.Body.String() != page {
			t.Fatalf("%s: body %q", path, rec.Body.String())
		}
	}
}

type staticScraper struct{ doc *menu.Document }

func (s staticScraper) Name() string { return "static" }

func (s staticScraper) FetchMenu(context.Context) (*menu.Document, error) { return s.doc, nil }

func readStats(t *testing.T, s *Server) observability.StatsSnapshot {
	t.Helper()
	rec := get(t, s, "/stats")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var stats observability.StatsSnapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return stats
}

func TestServer_StatsFromScrapeRuns(t *testing.T) {
	s, dir := newTestServer(t)
	if stats := readStats(t, s); stats.SectionsWritten != 0 || stats.ErrorsTotal != 0 {
		t.Fatalf("expected zero counts before any run, got %+v", stats)
	}

	svc := core.NewScrapeService(store.NewStore(dir), slog.New(slog.NewTextHandler(io.Discard, nil)))
	doc := menu.NewDocument("Polévky", "Hlavní jídla", "Menu")
	for i := 0; i < 2; i++ {
		if _, err := svc.Run(context.Background(), staticScraper{doc: doc}, "nacepu_menu.json"); err != nil {
			t.Fatalf("Run: %v", err)
		}
	}

	if stats := readStats(t, s); stats.SectionsWritten != 6 {
		t.Fatalf("expected 6 sections written across runs, got %+v", stats)
	}
}

func TestServer_StatsMalformedFile(t *testing.T) {
	s, dir := newTestServer(t)
	if err := os.WriteFile(filepath.Join(dir, store.DefaultStatsFile), []byte("{"), 0o644); err != nil {
		t.Fatal(err)
	}
	if rec := get(t, s, "/stats"); rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestServer_GetMenuSection(t *testing.T) {
	s, dir := newTestServer(t)
	content := `{"Polévky": ["Guláš"], "Menu": []}`
	if err := os.WriteFile(filepath.Join(dir, "nacepu_menu.json"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	rec := get(t, s, "/menus/nacepu?section=Pol%C3%A9vky")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	if want := `{"items":["Guláš"],"section":"Polévky"}` + "\n"; rec.Body.String() != want {
		t.Fatalf("got %q want %q", rec.Body.String(), want)
	}

	if rec := get(t, s, "/menus/nacepu?section=Menu"); rec.Body.String() != `{"items":[],"section":"Menu"}`+"\n" {
		t.Fatalf("empty section: got %q", rec.Body.String())
	}
	if rec := get(t, s, "/menus/nacepu?section=Dezerty"); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown section: expected 404, got %d", rec.Code)
	}
}
