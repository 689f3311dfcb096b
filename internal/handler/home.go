package handler

import (
	"net/http"

	"warbler/internal/service"
	"warbler/internal/transport/http/middleware"
)

// HomeHandler serves "/": the landing page for visitors, the home timeline
// for logged-in users.
type HomeHandler struct {
	*Pages
	timelineService *service.TimelineService
	userService     *service.UserService
}

func NewHomeHandler(pages *Pages, timelineService *service.TimelineService, userService *service.UserService) *HomeHandler {
	return &HomeHandler{
		Pages:           pages,
		timelineService: timelineService,
		userService:     userService,
	}
}

// Home renders the landing page or the timeline
// GET /
func (h *HomeHandler) Home(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r.Context())
	if user == nil {
		h.render(w, r, http.StatusOK, "home-anon", h.newPage(w, r, ""))
		return
	}

	messages, err := h.timelineService.Home(r.Context(), user.ID)
	if err != nil {
		h.internalError(w, r, "load timeline", err)
		return
	}

	profile, err := h.userService.GetProfile(r.Context(), user.ID, &user.ID)
	if err != nil {
		h.internalError(w, r, "load profile", err)
		return
	}

	page := h.newPage(w, r, "")
	page.Profile = profile
	page.Messages = messages
	h.render(w, r, http.StatusOK, "home", page)
}
