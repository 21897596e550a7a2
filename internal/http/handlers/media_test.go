package handlers

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"videogenhost/internal/infra"
	"videogenhost/internal/storage"
)

func newMediaApp(t *testing.T) (*App, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewVideoStore(dir)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	app := &App{
		Logger: infra.Logger(zerolog.New(io.Discard)),
		Store:  store,
	}
	return app, dir
}

func serveVideo(t *testing.T, app *App, filename, rangeHeader string) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	r.Get("/video/{filename}", app.ServeVideo)
	req := httptest.NewRequest(http.MethodGet, "/video/"+filename, nil)
	if rangeHeader != "" {
		req.Header.Set("Range", rangeHeader)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func writeVideo(t *testing.T, dir, name string, size int) []byte {
	t.Helper()
	data := make([]byte, size)
	for i := range data {
		data[i] = byte(i % 251)
	}
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return data
}

func TestServeVideoFullBody(t *testing.T) {
	app, dir := newMediaApp(t)
	data := writeVideo(t, dir, "clip.webp", 2048)

	rec := serveVideo(t, app, "clip.webp", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := rec.Header().Get("Accept-Ranges"); got != "bytes" {
		t.Fatalf("Accept-Ranges = %q, want bytes", got)
	}
	if got := rec.Header().Get("Content-Length"); got != "2048" {
		t.Fatalf("Content-Length = %q, want 2048", got)
	}
	if got := rec.Header().Get("Content-Type"); got != "image/webp" {
		t.Fatalf("Content-Type = %q, want image/webp", got)
	}
	if !bytes.Equal(rec.Body.Bytes(), data) {
		t.Fatalf("body mismatch, len = %d", rec.Body.Len())
	}
}

func TestServeVideoBoundedRange(t *testing.T) {
	app, dir := newMediaApp(t)
	data := writeVideo(t, dir, "clip.webp", 1024)

	rec := serveVideo(t, app, "clip.webp", "bytes=0-99")
	if rec.Code != http.StatusPartialContent {
		t.Fatalf("status = %d, want 206", rec.Code)
	}
	if got := rec.Header().Get("Content-Range"); got != "bytes 0-99/1024" {
		t.Fatalf("Content-Range = %q, want bytes 0-99/1024", got)
	}
	if got := rec.Header().Get("Content-Length"); got != "100" {
		t.Fatalf("Content-Length = %q, want 100", got)
	}
	if !bytes.Equal(rec.Body.Bytes(), data[:100]) {
		t.Fatalf("body mismatch for bounded range")
	}
}

func TestServeVideoOpenEndedRange(t *testing.T) {
	app, dir := newMediaApp(t)
	data := writeVideo(t, dir, "clip.webp", 1024)

	rec := serveVideo(t, app, "clip.webp", "bytes=500-")
	if rec.Code != http.StatusPartialContent {
		t.Fatalf("status = %d, want 206", rec.Code)
	}
	if got := rec.Header().Get("Content-Range"); got != "bytes 500-1023/1024" {
		t.Fatalf("Content-Range = %q, want bytes 500-1023/1024", got)
	}
	if rec.Body.Len() != 524 {
		t.Fatalf("body length = %d, want 524", rec.Body.Len())
	}
	if !bytes.Equal(rec.Body.Bytes(), data[500:]) {
		t.Fatalf("body mismatch for open-ended range")
	}
}

func TestServeVideoInteriorRange(t *testing.T) {
	app, dir := newMediaApp(t)
	data := writeVideo(t, dir, "clip.webp", 1024)

	rec := serveVideo(t, app, "clip.webp", "bytes=100-199")
	if rec.Code != http.StatusPartialContent {
		t.Fatalf("status = %d, want 206", rec.Code)
	}
	if !bytes.Equal(rec.Body.Bytes(), data[100:200]) {
		t.Fatalf("body mismatch for interior range")
	}
}

func TestServeVideoEndClampedToSize(t *testing.T) {
	app, dir := newMediaApp(t)
	writeVideo(t, dir, "clip.webp", 100)

	rec := serveVideo(t, app, "clip.webp", "bytes=50-5000")
	if rec.Code != http.StatusPartialContent {
		t.Fatalf("status = %d, want 206", rec.Code)
	}
	if got := rec.Header().Get("Content-Range"); got != "bytes 50-99/100" {
		t.Fatalf("Content-Range = %q, want bytes 50-99/100", got)
	}
}

func TestServeVideoMalformedRanges(t *testing.T) {
	app, dir := newMediaApp(t)
	writeVideo(t, dir, "clip.webp", 100)

	cases := []struct {
		name  string
		value string
	}{
		{"non numeric start", "bytes=abc-10"},
		{"non numeric end", "bytes=0-xyz"},
		{"start beyond size", "bytes=100-"},
		{"start after end", "bytes=50-10"},
		{"negative start", "bytes=-10-20"},
		{"wrong unit", "items=0-10"},
		{"multiple ranges", "bytes=0-10,20-30"},
		{"no separator", "bytes=42"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := serveVideo(t, app, "clip.webp", tc.value)
			if rec.Code != http.StatusRequestedRangeNotSatisfiable {
				t.Fatalf("status = %d, want 416", rec.Code)
			}
			if got := rec.Header().Get("Content-Range"); got != "bytes */100" {
				t.Fatalf("Content-Range = %q, want bytes */100", got)
			}
		})
	}
}

func TestServeVideoMissingFile(t *testing.T) {
	app, _ := newMediaApp(t)

	for _, rangeHeader := range []string{"", "bytes=0-99"} {
		rec := serveVideo(t, app, "missing.webp", rangeHeader)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d (range %q), want 404", rec.Code, rangeHeader)
		}
	}
}

func TestServeVideoRejectsTraversal(t *testing.T) {
	app, dir := newMediaApp(t)
	if err := os.WriteFile(filepath.Join(filepath.Dir(dir), "secret.txt"), []byte("secret"), 0o644); err != nil {
		t.Fatalf("write sibling file: %v", err)
	}

	rec := serveVideo(t, app, "..%2Fsecret.txt", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404 for traversal attempt", rec.Code)
	}
}

func TestServeVideoUnknownExtensionFallsBack(t *testing.T) {
	app, dir := newMediaApp(t)
	writeVideo(t, dir, "clip.weird", 10)

	rec := serveVideo(t, app, "clip.weird", "")
	if got := rec.Header().Get("Content-Type"); got != "application/octet-stream" {
		t.Fatalf("Content-Type = %q, want application/octet-stream", got)
	}
}
