package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/caretext/cdarender/internal/cda"
	"github.com/caretext/cdarender/internal/fhir"
	"github.com/caretext/cdarender/internal/render"
)

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	doc, err := cda.ParseDocument(r.Body)
	if err != nil {
		jsonError(w, "parse document: "+err.Error(), http.StatusBadRequest)
		return
	}
	rendered, err := fhir.FromDocument(doc, s.cfg.MaxRenderDepth)
	if err != nil {
		jsonError(w, err.Error(), renderStatus(err))
		return
	}
	writeJSON(w, http.StatusOK, rendered)
}

func (s *Server) handleRenderFragment(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	frag, err := cda.ParseFragment(r.Body)
	if err != nil {
		jsonError(w, "parse fragment: "+err.Error(), http.StatusBadRequest)
		return
	}
	root, err := render.RenderFragment(frag, render.Options{MaxDepth: s.cfg.MaxRenderDepth})
	if err != nil {
		jsonError(w, err.Error(), renderStatus(err))
		return
	}
	n, err := fhir.FromHTML(root)
	if err != nil {
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (s *Server) handleRenderMarkdown(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	src, err := io.ReadAll(r.Body)
	if err != nil {
		jsonError(w, "read body: "+err.Error(), http.StatusBadRequest)
		return
	}
	n, err := s.markdown.Render(src)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

// renderStatus maps render failures onto response codes: depth limit
// violations are client errors, anything else is internal.
func renderStatus(err error) int {
	if errors.Is(err, render.ErrDepthExceeded) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
