package handlers

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"pcforge-backend/internal/service/analytics"
	"pcforge-backend/pkg/api"
)

// AnalyticsHandler serves the admin analytics reports.
type AnalyticsHandler struct {
	analytics *analytics.Service
	logger    *zap.Logger
}

// NewAnalyticsHandler creates an analytics handler.
func NewAnalyticsHandler(analytics *analytics.Service, logger *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics, logger: logger}
}

// Popularity handles GET /admin/analytics/popularity.
func (h *AnalyticsHandler) Popularity(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		limit = v
	}

	ranking, err := h.analytics.ComponentPopularity(r.Context(), limit)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.Success(w, http.StatusOK, map[string]interface{}{"ranking": ranking})
}

// PriceTrend handles GET /admin/analytics/components/{componentID}/price-trend.
func (h *AnalyticsHandler) PriceTrend(w http.ResponseWriter, r *http.Request) {
	id, err := componentIDParam(r)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	trend, err := h.analytics.PriceTrendFor(r.Context(), id)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.Success(w, http.StatusOK, trend)
}

// BuildStats handles GET /admin/analytics/builds.
func (h *AnalyticsHandler) BuildStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.analytics.BuildStatistics(r.Context())
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.Success(w, http.StatusOK, stats)
}
