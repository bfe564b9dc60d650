package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// SearchResponse is the body of a search reply.
type SearchResponse struct {
	Query   string                `json:"query"`
	Results []domain.SearchResult `json:"results"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	session, err := s.ports.Sessions.Get(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		jsonError(w, "q is required", http.StatusBadRequest)
		return
	}

	var topK int
	if v := r.URL.Query().Get("top_k"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			jsonError(w, "top_k must be a positive integer", http.StatusBadRequest)
			return
		}
		topK = n
	}

	results, err := s.ports.Search.Search(r.Context(), query, domain.SearchOptions{
		Identity: session.Identity,
		TopK:     topK,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if results == nil {
		results = []domain.SearchResult{}
	}
	writeJSON(w, http.StatusOK, SearchResponse{Query: query, Results: results})
}

// RunResponse is the body of a single run reply.
type RunResponse struct {
	*domain.IndexRun
	Documents []domain.DocumentOutcome `json:"documents"`
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if s.ports.Runs == nil {
		writeJSON(w, http.StatusOK, []domain.IndexRun{})
		return
	}

	var limit int
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			jsonError(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = n
	}

	runs, err := s.ports.Runs.List(r.Context(), r.URL.Query().Get("identity"), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if runs == nil {
		runs = []domain.IndexRun{}
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	if s.ports.Runs == nil {
		jsonError(w, "run not found", http.StatusNotFound)
		return
	}

	run, outcomes, err := s.ports.Runs.Get(r.Context(), chi.URLParam(r, "runID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if outcomes == nil {
		outcomes = []domain.DocumentOutcome{}
	}
	writeJSON(w, http.StatusOK, RunResponse{IndexRun: run, Documents: outcomes})
}
