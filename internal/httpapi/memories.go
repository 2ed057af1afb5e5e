package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/agrance/memorylane/internal/journal"
)

type memoryRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description" validate:"required"`
	Timestamp   string `json:"timestamp" validate:"required"`
	Image       string `json:"image"`
}

func (req memoryRequest) toMemory() journal.Memory {
	return journal.Memory{
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		Timestamp:   strings.TrimSpace(req.Timestamp),
		Image:       strings.TrimSpace(req.Image),
	}
}

type createMemoryResponse struct {
	Message string `json:"message"`
	ID      int64  `json:"id"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type memoryResponse struct {
	Memory journal.Memory `json:"memory"`
}

func (s *Server) handleListMemories(w http.ResponseWriter, r *http.Request) {
	params := s.listParams(r)
	page, err := s.store.ListMemories(r.Context(), params)
	if err != nil {
		s.respondStorageError(w, "list", err)
		return
	}
	respondJSON(w, http.StatusOK, page)
}

// listParams coerces page and limit to positive numbers and falls back to
// the configured sort order when the parameter is absent. Note there is no
// upper bound on limit.
func (s *Server) listParams(r *http.Request) journal.ListParams {
	params := journal.ListParams{
		Page:  1,
		Limit: s.cfg.DefaultPageLimit,
		Sort:  s.cfg.DefaultSort,
	}
	q := r.URL.Query()
	if v := q.Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			params.Page = n
		}
	}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			params.Limit = n
		}
	}
	if v := q.Get("sort"); v != "" {
		params.Sort = v
	}
	return params
}

func (s *Server) handleCreateMemory(w http.ResponseWriter, r *http.Request) {
	var req memoryRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	m := req.toMemory()
	if err := s.validate.Struct(req); err != nil || m.Validate() != nil {
		respondError(w, http.StatusBadRequest, "invalid_input",
			"Invalid input: All fields must be non-empty strings")
		return
	}

	id, err := s.store.CreateMemory(r.Context(), m)
	if err != nil {
		s.respondStorageError(w, "create", err)
		return
	}
	respondJSON(w, http.StatusCreated, createMemoryResponse{
		Message: "Memory created successfully",
		ID:      id,
	})
}

func (s *Server) handleGetMemory(w http.ResponseWriter, r *http.Request) {
	id, ok := memoryID(w, r)
	if !ok {
		return
	}
	m, err := s.store.GetMemory(r.Context(), id)
	if errors.Is(err, journal.ErrNotFound) {
		respondError(w, http.StatusNotFound, "not_found", "Memory not found")
		return
	}
	if err != nil {
		s.respondStorageError(w, "get", err)
		return
	}
	respondJSON(w, http.StatusOK, memoryResponse{Memory: m})
}

func (s *Server) handleUpdateMemory(w http.ResponseWriter, r *http.Request) {
	id, ok := memoryID(w, r)
	if !ok {
		return
	}
	var req memoryRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	m := req.toMemory()
	if err := s.validate.Struct(req); err != nil || m.Validate() != nil {
		respondError(w, http.StatusBadRequest, "invalid_input",
			"Please provide all fields: name, description, timestamp")
		return
	}

	err := s.store.UpdateMemory(r.Context(), id, m)
	if errors.Is(err, journal.ErrNotFound) {
		respondError(w, http.StatusNotFound, "not_found", "Memory not found")
		return
	}
	if err != nil {
		s.respondStorageError(w, "update", err)
		return
	}
	respondJSON(w, http.StatusOK, messageResponse{Message: "Memory updated successfully"})
}

func (s *Server) handleDeleteMemory(w http.ResponseWriter, r *http.Request) {
	id, ok := memoryID(w, r)
	if !ok {
		return
	}
	if err := s.store.DeleteMemory(r.Context(), id); err != nil {
		s.respondStorageError(w, "delete", err)
		return
	}
	respondJSON(w, http.StatusOK, messageResponse{Message: "Memory deleted successfully"})
}

func memoryID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_id", "memory id must be an integer")
		return 0, false
	}
	return id, true
}
