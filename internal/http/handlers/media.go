package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"videogenhost/internal/domain"
)

// streamChunkSize bounds peak memory when serving a whole file.
const streamChunkSize = 1 << 20

type byteRange struct {
	start  int64
	end    int64
	length int64
}

// ServeVideo streams a stored file with HTTP partial-content semantics so
// players can seek. Range bounds are validated against the actual file size;
// anything unparsable or out of bounds gets a 416 rather than an out-of-bounds
// read.
func (a *App) ServeVideo(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")
	f, size, err := a.Store.Open(filename)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", fmt.Sprintf("%s not found", filename))
			return
		}
		a.Logger.Error().Err(err).Str("filename", filename).Msg("media: open failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to open file")
		return
	}
	defer f.Close()

	w.Header().Set("Accept-Ranges", "bytes")
	w.Header().Set("Content-Type", contentTypeFor(filename))

	rangeHeader := r.Header.Get("Range")
	if rangeHeader == "" {
		w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
		w.WriteHeader(http.StatusOK)
		if _, err := io.CopyBuffer(w, f, make([]byte, streamChunkSize)); err != nil {
			a.Logger.Debug().Err(err).Str("filename", filename).Msg("media: stream aborted")
		}
		return
	}

	rng, err := parseRange(rangeHeader, size)
	if err != nil {
		w.Header().Set("Content-Range", fmt.Sprintf("bytes */%d", size))
		a.error(w, http.StatusRequestedRangeNotSatisfiable, "malformed_range", err.Error())
		return
	}

	if _, err := f.Seek(rng.start, io.SeekStart); err != nil {
		a.Logger.Error().Err(err).Str("filename", filename).Msg("media: seek failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to read file")
		return
	}

	w.Header().Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", rng.start, rng.end, size))
	w.Header().Set("Content-Length", strconv.FormatInt(rng.length, 10))
	w.WriteHeader(http.StatusPartialContent)
	if _, err := io.CopyN(w, f, rng.length); err != nil {
		a.Logger.Debug().Err(err).Str("filename", filename).Msg("media: range stream aborted")
	}
}

// parseRange handles the single-range form "bytes=<start>-<end?>". end defaults
// to size-1 and is clamped to it; start must fall inside the file.
func parseRange(header string, size int64) (byteRange, error) {
	spec, ok := strings.CutPrefix(header, "bytes=")
	if !ok {
		return byteRange{}, fmt.Errorf("%w: unsupported unit", domain.ErrMalformedRange)
	}
	if strings.Contains(spec, ",") {
		return byteRange{}, fmt.Errorf("%w: multiple ranges not supported", domain.ErrMalformedRange)
	}
	startStr, endStr, ok := strings.Cut(spec, "-")
	if !ok {
		return byteRange{}, fmt.Errorf("%w: missing separator", domain.ErrMalformedRange)
	}

	start, err := strconv.ParseInt(strings.TrimSpace(startStr), 10, 64)
	if err != nil || start < 0 {
		return byteRange{}, fmt.Errorf("%w: invalid start", domain.ErrMalformedRange)
	}
	if start >= size {
		return byteRange{}, fmt.Errorf("%w: start beyond end of file", domain.ErrMalformedRange)
	}

	end := size - 1
	if trimmed := strings.TrimSpace(endStr); trimmed != "" {
		end, err = strconv.ParseInt(trimmed, 10, 64)
		if err != nil || end < start {
			return byteRange{}, fmt.Errorf("%w: invalid end", domain.ErrMalformedRange)
		}
		if end > size-1 {
			end = size - 1
		}
	}

	return byteRange{start: start, end: end, length: end - start + 1}, nil
}

func contentTypeFor(filename string) string {
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(filename))); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
