package main

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/optionslab/strategy-cli/internal/model"
	"github.com/optionslab/strategy-cli/internal/store"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"success": false, "error": msg})
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) handleExtract(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}

	src, err := ingestURL(r.Context(), s.fetchers, s.engine, req.URL)
	if err != nil {
		zap.L().Warn("extraction failed",
			zap.String("url", req.URL),
			zap.Error(err),
		)
		writeError(w, http.StatusUnprocessableEntity, "no strategy data could be extracted: "+err.Error())
		return
	}

	// Store failures degrade to unsaved results, not errors.
	if err := s.store.SaveSource(r.Context(), src); err != nil {
		zap.L().Warn("failed to save source",
			zap.String("url", req.URL),
			zap.Error(err),
		)
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "source": src})
}

func (s *server) handleListSources(w http.ResponseWriter, r *http.Request) {
	filter := store.SourceFilter{
		SourceType: model.SourceType(r.URL.Query().Get("type")),
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil {
		filter.Limit = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil {
		filter.Offset = v
	}

	sources, err := s.store.ListSources(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if sources == nil {
		sources = []model.Source{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"sources": sources, "count": len(sources)})
}

func (s *server) handleGetSource(w http.ResponseWriter, r *http.Request) {
	src, err := s.store.GetSource(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if src == nil {
		writeError(w, http.StatusNotFound, "source not found")
		return
	}
	writeJSON(w, http.StatusOK, src)
}

func (s *server) handleDeleteSource(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.store.DeleteSource(r.Context(), id); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "deleted": id})
}

func (s *server) handleListStrategies(w http.ResponseWriter, r *http.Request) {
	strategies, err := s.store.ListStrategies(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if strategies == nil {
		strategies = []model.StrategyAggregate{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"strategies": strategies, "count": len(strategies)})
}

func (s *server) handleGetStrategy(w http.ResponseWriter, r *http.Request) {
	st, err := s.store.GetStrategy(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if st == nil {
		writeError(w, http.StatusNotFound, "strategy not found")
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *server) handleSynthesize(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name      string   `json:"name"`
		SourceIDs []string `json:"source_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.SourceIDs) < 2 {
		writeError(w, http.StatusBadRequest, "synthesis requires at least 2 source_ids")
		return
	}

	aggregate, err := synthesizeSources(r.Context(), s.store, chi.URLParam(r, "id"), req.Name, req.SourceIDs)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, aggregate)
}
