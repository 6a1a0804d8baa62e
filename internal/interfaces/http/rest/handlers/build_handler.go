package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"pcforge-backend/internal/domain/shared"
	"pcforge-backend/internal/service/builds"
	"pcforge-backend/pkg/api"
)

// BuildHandler serves build editing, sharing, and the public feed.
type BuildHandler struct {
	builds *builds.Service
	logger *zap.Logger
}

// NewBuildHandler creates a build handler.
func NewBuildHandler(builds *builds.Service, logger *zap.Logger) *BuildHandler {
	return &BuildHandler{builds: builds, logger: logger}
}

type buildRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=100"`
	Description string `json:"description" validate:"max=1000"`
}

// Create handles POST /builds.
func (h *BuildHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req buildRequest
	if err := decodeJSON(r, &req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	report, err := h.builds.Create(r.Context(), userID, req.Name, req.Description)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.Success(w, http.StatusCreated, report)
}

// List handles GET /builds.
func (h *BuildHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	reports, err := h.builds.ListByUser(r.Context(), userID)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.Success(w, http.StatusOK, map[string]interface{}{"builds": reports})
}

// Get handles GET /builds/{buildID}.
func (h *BuildHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, id, err := h.ownedParams(r)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	report, err := h.builds.Get(r.Context(), userID, id)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.Success(w, http.StatusOK, report)
}

// Update handles PUT /builds/{buildID}.
func (h *BuildHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, id, err := h.ownedParams(r)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	var req buildRequest
	if err := decodeJSON(r, &req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	report, err := h.builds.Rename(r.Context(), userID, id, req.Name, req.Description)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.Success(w, http.StatusOK, report)
}

// Delete handles DELETE /builds/{buildID}.
func (h *BuildHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, id, err := h.ownedParams(r)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	if err := h.builds.Delete(r.Context(), userID, id); err != nil {
		api.HandleError(w, err)
		return
	}
	api.Success(w, http.StatusNoContent, nil)
}

type addComponentRequest struct {
	ComponentID string `json:"componentId" validate:"required,uuid"`
	Quantity    int    `json:"quantity" validate:"omitempty,min=1"`
}

// AddComponent handles POST /builds/{buildID}/components.
func (h *BuildHandler) AddComponent(w http.ResponseWriter, r *http.Request) {
	userID, id, err := h.ownedParams(r)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	var req addComponentRequest
	if err := decodeJSON(r, &req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	componentID, err := shared.ParseComponentID(req.ComponentID)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}

	result, err := h.builds.AddComponent(r.Context(), userID, id, componentID, quantity)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.Success(w, http.StatusOK, result)
}

// RemoveComponent handles DELETE /builds/{buildID}/components/{componentID}.
func (h *BuildHandler) RemoveComponent(w http.ResponseWriter, r *http.Request) {
	userID, id, err := h.ownedParams(r)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	componentID, err := componentIDParam(r)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	report, err := h.builds.RemoveComponent(r.Context(), userID, id, componentID)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.Success(w, http.StatusOK, report)
}

// Check handles POST /builds/{buildID}/check.
func (h *BuildHandler) Check(w http.ResponseWriter, r *http.Request) {
	userID, id, err := h.ownedParams(r)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	report, err := h.builds.Check(r.Context(), userID, id)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.Success(w, http.StatusOK, report)
}

type checkComponentsRequest struct {
	Components []struct {
		ComponentID string `json:"componentId" validate:"required,uuid"`
		Quantity    int    `json:"quantity" validate:"omitempty,min=1"`
	} `json:"components" validate:"required,dive"`
}

// CheckComponents handles POST /compat/check and POST /builds/validate: an
// ad hoc compatibility probe over a component list, nothing persisted.
func (h *BuildHandler) CheckComponents(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req checkComponentsRequest
	if err := decodeJSON(r, &req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	items := make([]builds.SelectionInput, 0, len(req.Components))
	for _, c := range req.Components {
		componentID, err := shared.ParseComponentID(c.ComponentID)
		if err != nil {
			api.HandleError(w, err)
			return
		}
		quantity := c.Quantity
		if quantity == 0 {
			quantity = 1
		}
		items = append(items, builds.SelectionInput{ComponentID: componentID, Quantity: quantity})
	}

	report, err := h.builds.CheckComponents(r.Context(), userID, items)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.Success(w, http.StatusOK, report)
}

// Share handles POST /builds/{buildID}/share.
func (h *BuildHandler) Share(w http.ResponseWriter, r *http.Request) {
	userID, id, err := h.ownedParams(r)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	token, err := h.builds.Share(r.Context(), userID, id)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.Success(w, http.StatusOK, map[string]string{"shareToken": token})
}

type visibilityRequest struct {
	Public bool `json:"public"`
}

// SetVisibility handles PUT /builds/{buildID}/visibility.
func (h *BuildHandler) SetVisibility(w http.ResponseWriter, r *http.Request) {
	userID, id, err := h.ownedParams(r)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	var req visibilityRequest
	if err := decodeJSON(r, &req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	report, err := h.builds.SetPublic(r.Context(), userID, id, req.Public)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.Success(w, http.StatusOK, report)
}

// GetShared handles GET /builds/shared/{token}. No authentication.
func (h *BuildHandler) GetShared(w http.ResponseWriter, r *http.Request) {
	report, err := h.builds.GetShared(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.Success(w, http.StatusOK, report)
}

// ListPublic handles GET /builds/public. No authentication.
func (h *BuildHandler) ListPublic(w http.ResponseWriter, r *http.Request) {
	reports, err := h.builds.ListPublic(r.Context(), paginationFromQuery(r))
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.Success(w, http.StatusOK, map[string]interface{}{"builds": reports})
}

// GetPublic handles GET /builds/public/{buildID}. No authentication.
func (h *BuildHandler) GetPublic(w http.ResponseWriter, r *http.Request) {
	id, err := buildIDParam(r)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	report, err := h.builds.GetPublic(r.Context(), id)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.Success(w, http.StatusOK, report)
}

func (h *BuildHandler) ownedParams(r *http.Request) (shared.UserID, shared.BuildID, error) {
	userID, err := currentUserID(r)
	if err != nil {
		return shared.UserID{}, shared.BuildID{}, shared.ErrUnauthorized
	}
	id, err := buildIDParam(r)
	if err != nil {
		return shared.UserID{}, shared.BuildID{}, err
	}
	return userID, id, nil
}

func buildIDParam(r *http.Request) (shared.BuildID, error) {
	return shared.ParseBuildID(chi.URLParam(r, "buildID"))
}
