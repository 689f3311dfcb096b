package handler

import (
	"errors"
	"fmt"
	"net/http"

	"warbler/internal/httputil"
	"warbler/internal/metrics"
	"warbler/internal/model"
	"warbler/internal/service"
	"warbler/internal/session"
	"warbler/internal/transport/http/middleware"
)

type FollowHandler struct {
	*Pages
	followService *service.FollowService
	metrics       *metrics.Metrics
}

func NewFollowHandler(pages *Pages, followService *service.FollowService, m *metrics.Metrics) *FollowHandler {
	return &FollowHandler{
		Pages:         pages,
		followService: followService,
		metrics:       m,
	}
}

// Follow adds the logged-in user as a follower of {id}
// POST /users/follow/{id}
func (h *FollowHandler) Follow(w http.ResponseWriter, r *http.Request) {
	followerID, _ := middleware.GetUserIDFromContext(r.Context())

	followedID, err := httputil.IDParam(r, "id")
	if err != nil {
		h.NotFound(w, r)
		return
	}

	if err := h.followService.Follow(r.Context(), followerID, followedID); err != nil {
		switch {
		case errors.Is(err, model.ErrCannotFollowSelf):
			session.SetFlash(w, "danger", "You cannot follow yourself.")
			httputil.RedirectBack(w, r, "/")
		case errors.Is(err, model.ErrUserNotFound):
			h.NotFound(w, r)
		default:
			h.internalError(w, r, "follow", err)
		}
		return
	}
	h.metrics.RecordFollow("follow")

	http.Redirect(w, r, fmt.Sprintf("/users/%d/following", followerID), http.StatusFound)
}

// StopFollowing removes the logged-in user from {id}'s followers
// POST /users/stop-following/{id}
func (h *FollowHandler) StopFollowing(w http.ResponseWriter, r *http.Request) {
	followerID, _ := middleware.GetUserIDFromContext(r.Context())

	followedID, err := httputil.IDParam(r, "id")
	if err != nil {
		h.NotFound(w, r)
		return
	}

	if err := h.followService.Unfollow(r.Context(), followerID, followedID); err != nil {
		h.internalError(w, r, "unfollow", err)
		return
	}
	h.metrics.RecordFollow("unfollow")

	http.Redirect(w, r, fmt.Sprintf("/users/%d/following", followerID), http.StatusFound)
}
