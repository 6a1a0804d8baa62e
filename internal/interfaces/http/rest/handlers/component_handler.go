package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"pcforge-backend/internal/domain/component"
	"pcforge-backend/internal/domain/shared"
	"pcforge-backend/internal/repository"
	"pcforge-backend/internal/service/catalog"
	"pcforge-backend/pkg/api"
)

// ComponentHandler serves catalog reads to everyone and inventory
// administration to admins.
type ComponentHandler struct {
	catalog *catalog.Service
	logger  *zap.Logger
}

// NewComponentHandler creates a component handler.
func NewComponentHandler(catalog *catalog.Service, logger *zap.Logger) *ComponentHandler {
	return &ComponentHandler{catalog: catalog, logger: logger}
}

// List handles GET /components.
func (h *ComponentHandler) List(w http.ResponseWriter, r *http.Request) {
	q := repository.ComponentQuery{
		Search:    r.URL.Query().Get("search"),
		SortBy:    r.URL.Query().Get("sort"),
		SortOrder: r.URL.Query().Get("order"),
	}
	if raw := r.URL.Query().Get("category"); raw != "" {
		cat, err := component.ParseCategory(raw)
		if err != nil {
			api.HandleError(w, err)
			return
		}
		q.Category = cat
	}
	if v, err := strconv.ParseInt(r.URL.Query().Get("minPrice"), 10, 64); err == nil && v > 0 {
		q.MinCents = v
	}
	if v, err := strconv.ParseInt(r.URL.Query().Get("maxPrice"), 10, 64); err == nil && v > 0 {
		q.MaxCents = v
	}
	if r.URL.Query().Get("inStock") == "true" {
		q.InStock = true
	}
	p := paginationFromQuery(r)
	q.Limit, q.Offset = p.Limit, p.Offset

	components, err := h.catalog.ListComponents(r.Context(), q)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.Success(w, http.StatusOK, map[string]interface{}{"components": components})
}

// Get handles GET /components/{componentID}.
func (h *ComponentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := componentIDParam(r)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	c, err := h.catalog.GetComponent(r.Context(), id)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.Success(w, http.StatusOK, c)
}

type createComponentRequest struct {
	Name        string                  `json:"name" validate:"required,min=1,max=200"`
	Slug        string                  `json:"slug" validate:"omitempty,max=200"`
	Category    string                  `json:"category" validate:"required"`
	Description string                  `json:"description" validate:"max=2000"`
	PriceCents  int64                   `json:"priceCents" validate:"min=0"`
	Spec        component.Specification `json:"spec"`
}

// Create handles POST /admin/components.
func (h *ComponentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createComponentRequest
	if err := decodeJSON(r, &req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	category, err := component.ParseCategory(req.Category)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	c, err := h.catalog.CreateComponent(r.Context(), catalog.CreateComponentInput{
		Name:        req.Name,
		Slug:        req.Slug,
		Category:    category,
		Description: req.Description,
		PriceCents:  req.PriceCents,
		Spec:        req.Spec,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.Success(w, http.StatusCreated, c)
}

type updateComponentRequest struct {
	Name        *string                  `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Description *string                  `json:"description,omitempty" validate:"omitempty,max=2000"`
	PriceCents  *int64                   `json:"priceCents,omitempty" validate:"omitempty,min=0"`
	Spec        *component.Specification `json:"spec,omitempty"`
}

// Update handles PUT /admin/components/{componentID}.
func (h *ComponentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := componentIDParam(r)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	var req updateComponentRequest
	if err := decodeJSON(r, &req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := h.catalog.UpdateComponent(r.Context(), id, catalog.UpdateComponentInput{
		Name:        req.Name,
		Description: req.Description,
		PriceCents:  req.PriceCents,
		Spec:        req.Spec,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.Success(w, http.StatusOK, c)
}

// Delete handles DELETE /admin/components/{componentID}.
func (h *ComponentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := componentIDParam(r)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	if err := h.catalog.DeleteComponent(r.Context(), id); err != nil {
		api.HandleError(w, err)
		return
	}
	api.Success(w, http.StatusNoContent, nil)
}

type movementRequest struct {
	Type      string `json:"type" validate:"required,oneof=in out adjustment"`
	Quantity  int    `json:"quantity" validate:"required"`
	Reference string `json:"reference" validate:"max=200"`
	Notes     string `json:"notes" validate:"max=1000"`
}

// RecordMovement handles POST /admin/components/{componentID}/movements.
func (h *ComponentHandler) RecordMovement(w http.ResponseWriter, r *http.Request) {
	id, err := componentIDParam(r)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	var req movementRequest
	if err := decodeJSON(r, &req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := h.catalog.RecordMovement(r.Context(), id, catalog.MovementInput{
		Type:      component.MovementType(req.Type),
		Quantity:  req.Quantity,
		Reference: req.Reference,
		Notes:     req.Notes,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.Success(w, http.StatusOK, c)
}

// ListMovements handles GET /admin/components/{componentID}/movements.
func (h *ComponentHandler) ListMovements(w http.ResponseWriter, r *http.Request) {
	id, err := componentIDParam(r)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	movements, err := h.catalog.ListMovements(r.Context(), id)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.Success(w, http.StatusOK, map[string]interface{}{"movements": movements})
}

// PriceHistory handles GET /admin/components/{componentID}/price-history.
func (h *ComponentHandler) PriceHistory(w http.ResponseWriter, r *http.Request) {
	id, err := componentIDParam(r)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	history, changePercent, err := h.catalog.PriceHistory(r.Context(), id)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.Success(w, http.StatusOK, map[string]interface{}{
		"history":       history,
		"changePercent": changePercent,
	})
}

// ListAlerts handles GET /admin/alerts.
func (h *ComponentHandler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := h.catalog.ListOpenAlerts(r.Context())
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.Success(w, http.StatusOK, map[string]interface{}{"alerts": alerts})
}

// ResolveAlert handles POST /admin/alerts/{alertID}/resolve.
func (h *ComponentHandler) ResolveAlert(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.ResolveAlert(r.Context(), chi.URLParam(r, "alertID")); err != nil {
		api.HandleError(w, err)
		return
	}
	api.Success(w, http.StatusNoContent, nil)
}

// ListReorders handles GET /admin/reorders.
func (h *ComponentHandler) ListReorders(w http.ResponseWriter, r *http.Request) {
	var status component.ReorderStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		status = component.ReorderStatus(raw)
	}
	reorders, err := h.catalog.ListReorders(r.Context(), status)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.Success(w, http.StatusOK, map[string]interface{}{"reorders": reorders})
}

type reorderTransitionRequest struct {
	Status string `json:"status" validate:"required,oneof=pending ordered received cancelled"`
}

// TransitionReorder handles POST /admin/reorders/{reorderID}/transition.
func (h *ComponentHandler) TransitionReorder(w http.ResponseWriter, r *http.Request) {
	var req reorderTransitionRequest
	if err := decodeJSON(r, &req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	re, err := h.catalog.TransitionReorder(r.Context(), chi.URLParam(r, "reorderID"),
		component.ReorderStatus(req.Status))
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.Success(w, http.StatusOK, re)
}

func componentIDParam(r *http.Request) (shared.ComponentID, error) {
	return shared.ParseComponentID(chi.URLParam(r, "componentID"))
}
