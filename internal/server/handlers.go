package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"

	"PairSentinel/internal/comparison"
)

const (
	maxBodyBytes     = 1 << 20
	frontendMissing  = "Frontend build not found. Run 'npm run build' in frontend/"
	indexFile        = "index.html"
	malformedRequest = "Request body must be a JSON object"
)

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCompareStocks(w http.ResponseWriter, r *http.Request) {
	var req comparison.Request
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	err := dec.Decode(&req)
	if err == nil {
		// Only whitespace may follow the object.
		if extra := dec.Decode(&struct{}{}); extra != io.EOF {
			err = errors.New("unexpected data after JSON object")
		}
	}
	if err != nil {
		s.log.Warn().Err(err).Msg("malformed compare request")
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: malformedRequest})
		return
	}

	out, err := s.service.Compare(r.Context(), req, "api")
	if err != nil {
		status, msg := comparison.Classify(err)
		if status >= http.StatusInternalServerError {
			s.log.Error().Err(err).Msg("comparison failed")
		}
		s.writeJSON(w, status, errorResponse{Error: msg})
		return
	}
	s.writeJSON(w, http.StatusOK, out.Result)
}

// handleFrontend serves the built single-page app. Existing files are served
// as-is; every other path gets index.html so client-side routing works.
func (s *Server) handleFrontend(w http.ResponseWriter, r *http.Request) {
	root := http.Dir(s.staticDir)
	if p := path.Clean("/" + r.URL.Path); p != "/" {
		if s.serveFile(w, r, root, p) {
			return
		}
	}
	if s.serveFile(w, r, root, "/"+indexFile) {
		return
	}
	s.log.Warn().Str("static_dir", s.staticDir).Msg("frontend build missing")
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	_, _ = io.WriteString(w, frontendMissing)
}

// serveFile writes name from root if it is a regular file and reports whether it did.
func (s *Server) serveFile(w http.ResponseWriter, r *http.Request, root http.FileSystem, name string) bool {
	f, err := root.Open(name)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.log.Debug().Err(err).Str("path", name).Msg("open static file")
		}
		return false
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		return false
	}
	http.ServeContent(w, r, filepath.Base(name), info.ModTime(), f)
	return true
}
