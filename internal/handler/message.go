package handler

import (
	"errors"
	"fmt"
	"net/http"

	"warbler/internal/httputil"
	"warbler/internal/metrics"
	"warbler/internal/model"
	"warbler/internal/service"
	"warbler/internal/transport/http/middleware"
)

type MessageHandler struct {
	*Pages
	messageService *service.MessageService
	likeService    *service.LikeService
	metrics        *metrics.Metrics
}

func NewMessageHandler(pages *Pages, messageService *service.MessageService, likeService *service.LikeService, m *metrics.Metrics) *MessageHandler {
	return &MessageHandler{
		Pages:          pages,
		messageService: messageService,
		likeService:    likeService,
		metrics:        m,
	}
}

// NewForm renders the new message form
// GET /messages/new
func (h *MessageHandler) NewForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "messages-new", h.newPage(w, r, "New message"))
}

// Create posts a message and shows the author's profile
// POST /messages/new
func (h *MessageHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())

	if err := r.ParseForm(); err != nil {
		h.badRequest(w, r)
		return
	}
	req := model.CreateMessageRequest{Text: r.PostFormValue("text")}

	if errs := validateForm(req); errs != nil {
		h.createError(w, r, req, errs...)
		return
	}

	if _, err := h.messageService.Create(r.Context(), userID, req.Text); err != nil {
		switch {
		case errors.Is(err, model.ErrMessageTextRequired):
			h.createError(w, r, req, "Message is required.")
		case errors.Is(err, model.ErrMessageTooLong):
			h.createError(w, r, req, fmt.Sprintf("Message must be at most %d characters.", model.MaxMessageLength))
		default:
			h.internalError(w, r, "create message", err)
		}
		return
	}
	h.metrics.RecordMessage("posted")

	http.Redirect(w, r, fmt.Sprintf("/users/%d", userID), http.StatusFound)
}

func (h *MessageHandler) createError(w http.ResponseWriter, r *http.Request, req model.CreateMessageRequest, errs ...string) {
	page := h.newPage(w, r, "New message")
	page.Form = req
	page.Errors = errs
	h.render(w, r, http.StatusOK, "messages-new", page)
}

// Show renders a single message
// GET /messages/{id}
func (h *MessageHandler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.IDParam(r, "id")
	if err != nil {
		h.NotFound(w, r)
		return
	}

	msg, err := h.messageService.GetByID(r.Context(), id, viewerID(r))
	if err != nil {
		if errors.Is(err, model.ErrMessageNotFound) {
			h.NotFound(w, r)
			return
		}
		h.internalError(w, r, "get message", err)
		return
	}

	page := h.newPage(w, r, "Message")
	page.Message = msg
	h.render(w, r, http.StatusOK, "messages-show", page)
}

// Delete removes one of the logged-in user's messages
// POST /messages/{id}/delete
func (h *MessageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())

	id, err := httputil.IDParam(r, "id")
	if err != nil {
		h.NotFound(w, r)
		return
	}

	if err := h.messageService.Delete(r.Context(), id, userID); err != nil {
		switch {
		case errors.Is(err, model.ErrMessageNotFound):
			h.NotFound(w, r)
		case errors.Is(err, model.ErrNotMessageOwner):
			h.forbidden(w, r)
		default:
			h.internalError(w, r, "delete message", err)
		}
		return
	}
	h.metrics.RecordMessage("deleted")

	http.Redirect(w, r, fmt.Sprintf("/users/%d", userID), http.StatusFound)
}

// Like toggles the logged-in user's like on a message and returns to the previous page
// POST /messages/{id}/like
func (h *MessageHandler) Like(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())

	id, err := httputil.IDParam(r, "id")
	if err != nil {
		h.NotFound(w, r)
		return
	}

	liked, err := h.likeService.ToggleLike(r.Context(), userID, id)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrMessageNotFound):
			h.NotFound(w, r)
		case errors.Is(err, model.ErrCannotLikeOwnMessage):
			h.forbidden(w, r)
		default:
			h.internalError(w, r, "toggle like", err)
		}
		return
	}
	h.metrics.RecordLike(liked)

	httputil.RedirectBack(w, r, "/")
}
