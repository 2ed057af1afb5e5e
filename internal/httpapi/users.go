package httpapi

import (
	"net/http"
	"strings"
)

// updateUserRequest carries a partial update: nil fields keep their current
// value. The store itself does replace-style writes, so the handler fills the
// gaps from the existing row.
type updateUserRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

func (s *Server) handleGetCurrentUser(w http.ResponseWriter, r *http.Request) {
	user, err := s.store.CurrentUser(r.Context())
	if err != nil {
		s.respondStorageError(w, "get_user", err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	var req updateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	current, err := s.store.CurrentUser(r.Context())
	if err != nil {
		s.respondStorageError(w, "get_user", err)
		return
	}

	name := current.Name
	if req.Name != nil && strings.TrimSpace(*req.Name) != "" {
		name = strings.TrimSpace(*req.Name)
	}
	description := current.Description
	if req.Description != nil && strings.TrimSpace(*req.Description) != "" {
		description = strings.TrimSpace(*req.Description)
	}

	if err := s.store.UpdateUser(r.Context(), name, description); err != nil {
		s.respondStorageError(w, "update_user", err)
		return
	}
	respondJSON(w, http.StatusOK, messageResponse{Message: "User updated successfully"})
}
