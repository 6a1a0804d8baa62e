package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"pcforge-backend/internal/domain/shared"
	"pcforge-backend/internal/service/social"
	"pcforge-backend/pkg/api"
)

// SocialHandler serves likes, comments, follows, and notifications.
type SocialHandler struct {
	social *social.Service
	logger *zap.Logger
}

// NewSocialHandler creates a social handler.
func NewSocialHandler(social *social.Service, logger *zap.Logger) *SocialHandler {
	return &SocialHandler{social: social, logger: logger}
}

// Like handles POST /builds/{buildID}/like.
func (h *SocialHandler) Like(w http.ResponseWriter, r *http.Request) {
	userID, id, err := h.buildParams(r)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	summary, err := h.social.Like(r.Context(), userID, id)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.Success(w, http.StatusOK, summary)
}

// Unlike handles DELETE /builds/{buildID}/like.
func (h *SocialHandler) Unlike(w http.ResponseWriter, r *http.Request) {
	userID, id, err := h.buildParams(r)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	summary, err := h.social.Unlike(r.Context(), userID, id)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.Success(w, http.StatusOK, summary)
}

// Likes handles GET /builds/{buildID}/likes.
func (h *SocialHandler) Likes(w http.ResponseWriter, r *http.Request) {
	userID, id, err := h.buildParams(r)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	summary, err := h.social.Likes(r.Context(), userID, id)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.Success(w, http.StatusOK, summary)
}

type commentRequest struct {
	Content string `json:"content" validate:"required,min=1,max=1000"`
}

// CreateComment handles POST /builds/{buildID}/comments.
func (h *SocialHandler) CreateComment(w http.ResponseWriter, r *http.Request) {
	userID, id, err := h.buildParams(r)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	var req commentRequest
	if err := decodeJSON(r, &req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := h.social.Comment(r.Context(), userID, id, req.Content)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.Success(w, http.StatusCreated, c)
}

// ListComments handles GET /builds/{buildID}/comments.
func (h *SocialHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	userID, id, err := h.buildParams(r)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	comments, err := h.social.ListComments(r.Context(), userID, id)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.Success(w, http.StatusOK, map[string]interface{}{"comments": comments})
}

// UpdateComment handles PUT /comments/{commentID}.
func (h *SocialHandler) UpdateComment(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req commentRequest
	if err := decodeJSON(r, &req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := h.social.EditComment(r.Context(), userID, chi.URLParam(r, "commentID"), req.Content)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.Success(w, http.StatusOK, c)
}

// DeleteComment handles DELETE /comments/{commentID}.
func (h *SocialHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := h.social.DeleteComment(r.Context(), userID, chi.URLParam(r, "commentID")); err != nil {
		api.HandleError(w, err)
		return
	}
	api.Success(w, http.StatusNoContent, nil)
}

// Follow handles POST /users/{userID}/follow.
func (h *SocialHandler) Follow(w http.ResponseWriter, r *http.Request) {
	follower, followee, err := h.userParams(r)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	if err := h.social.Follow(r.Context(), follower, followee); err != nil {
		api.HandleError(w, err)
		return
	}
	api.Success(w, http.StatusNoContent, nil)
}

// Unfollow handles DELETE /users/{userID}/follow.
func (h *SocialHandler) Unfollow(w http.ResponseWriter, r *http.Request) {
	follower, followee, err := h.userParams(r)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	if err := h.social.Unfollow(r.Context(), follower, followee); err != nil {
		api.HandleError(w, err)
		return
	}
	api.Success(w, http.StatusNoContent, nil)
}

// FollowStats handles GET /users/{userID}/follow-stats.
func (h *SocialHandler) FollowStats(w http.ResponseWriter, r *http.Request) {
	viewer, userID, err := h.userParams(r)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	stats, err := h.social.FollowStatsFor(r.Context(), viewer, userID)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.Success(w, http.StatusOK, stats)
}

// ListNotifications handles GET /notifications.
func (h *SocialHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	unreadOnly := r.URL.Query().Get("unread") == "true"

	notifications, err := h.social.ListNotifications(r.Context(), userID, unreadOnly)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.Success(w, http.StatusOK, map[string]interface{}{"notifications": notifications})
}

// MarkNotificationRead handles POST /notifications/{notificationID}/read.
func (h *SocialHandler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := h.social.MarkNotificationRead(r.Context(), userID, chi.URLParam(r, "notificationID")); err != nil {
		api.HandleError(w, err)
		return
	}
	api.Success(w, http.StatusNoContent, nil)
}

func (h *SocialHandler) buildParams(r *http.Request) (shared.UserID, shared.BuildID, error) {
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

func (h *SocialHandler) userParams(r *http.Request) (shared.UserID, shared.UserID, error) {
	current, err := currentUserID(r)
	if err != nil {
		return shared.UserID{}, shared.UserID{}, shared.ErrUnauthorized
	}
	target, err := shared.ParseUserID(chi.URLParam(r, "userID"))
	if err != nil {
		return shared.UserID{}, shared.UserID{}, err
	}
	return current, target, nil
}
