package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"pcforge-backend/internal/domain/shared"
	"pcforge-backend/internal/service/users"
	"pcforge-backend/pkg/api"
)

// UserHandler serves profile reads and updates.
type UserHandler struct {
	users  *users.Service
	logger *zap.Logger
}

// NewUserHandler creates a user handler.
func NewUserHandler(users *users.Service, logger *zap.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

// GetProfile handles GET /users/{userID}.
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	id, err := shared.ParseUserID(chi.URLParam(r, "userID"))
	if err != nil {
		api.HandleError(w, err)
		return
	}
	profile, err := h.users.GetProfile(r.Context(), id)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.Success(w, http.StatusOK, profile)
}

type updateBioRequest struct {
	Bio string `json:"bio" validate:"max=500"`
}

// UpdateBio handles PUT /users/me.
func (h *UserHandler) UpdateBio(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req updateBioRequest
	if err := decodeJSON(r, &req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	u, err := h.users.UpdateBio(r.Context(), userID, req.Bio)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.Success(w, http.StatusOK, u)
}

// Me handles GET /users/me.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	profile, err := h.users.GetProfile(r.Context(), userID)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.Success(w, http.StatusOK, profile)
}
