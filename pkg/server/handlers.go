package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/stratum/pkg/buildinfo"
	"github.com/matzehuels/stratum/pkg/errors"
	"github.com/matzehuels/stratum/pkg/graph"
	"github.com/matzehuels/stratum/pkg/pipeline"
	"github.com/matzehuels/stratum/pkg/render"
)

// HeaderCache reports whether a response was served from the cache.
const HeaderCache = "X-Cache"

// Request is the body of the layout and render routes.
type Request struct {
	Graph   graph.Graph      `json:"graph"`
	Options pipeline.Options `json:"options"`
}

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Version: buildinfo.Version})
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	req, err := s.decode(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	l, hit, err := s.runner.ComputeLayoutWithCacheInfo(r.Context(), req.Graph, req.Options)
	if err != nil {
		writeError(w, r, err)
		return
	}
	setCacheHeader(w, hit)
	writeJSON(w, http.StatusOK, l)
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	if err := pipeline.ValidateFormat(format); err != nil {
		writeError(w, r, err)
		return
	}
	req, err := s.decode(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	ctx := r.Context()
	opts := req.Options
	opts.Formats = []string{format}
	l, layoutHit, err := s.runner.ComputeLayoutWithCacheInfo(ctx, req.Graph, opts)
	if err != nil {
		writeError(w, r, err)
		return
	}
	artifacts, renderHit, err := s.runner.RenderWithCacheInfo(ctx, l, opts)
	if err != nil {
		writeError(w, r, err)
		return
	}

	setCacheHeader(w, layoutHit && renderHit)
	w.Header().Set("Content-Type", render.ContentType(format))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(artifacts[format])
}

// decode reads a size-limited Request. Unknown fields are rejected.
func (s *Server) decode(w http.ResponseWriter, r *http.Request) (Request, error) {
	var req Request
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return Request{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode request")
	}
	if len(req.Graph.Nodes) == 0 && len(req.Graph.Edges) == 0 {
		return Request{}, errors.New(errors.ErrCodeInvalidInput, "graph has no nodes or edges")
	}
	return req, nil
}

func setCacheHeader(w http.ResponseWriter, hit bool) {
	if hit {
		w.Header().Set(HeaderCache, "hit")
	} else {
		w.Header().Set(HeaderCache, "miss")
	}
}
