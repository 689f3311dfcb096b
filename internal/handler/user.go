package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"warbler/internal/httputil"
	"warbler/internal/model"
	"warbler/internal/service"
	"warbler/internal/session"
	"warbler/internal/transport/http/middleware"
	"warbler/internal/web"
)

// ImageUploader stores uploaded profile images.
type ImageUploader interface {
	UploadProfileImage(ctx context.Context, r io.Reader, size int64) (*model.UploadResult, error)
	// DiscardProfileImage removes an upload whose profile update failed.
	DiscardProfileImage(ctx context.Context, key string) error
}

type UserHandler struct {
	*Pages
	userService *service.UserService
	sessions    *session.Manager
	images      ImageUploader // nil when image storage is not configured
}

func NewUserHandler(pages *Pages, userService *service.UserService, sessions *session.Manager, images ImageUploader) *UserHandler {
	return &UserHandler{
		Pages:       pages,
		userService: userService,
		sessions:    sessions,
		images:      images,
	}
}

// Index lists users, filtered by username prefix when q is set
// GET /users?q=
func (h *UserHandler) Index(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))

	users, err := h.userService.Search(r.Context(), query, viewerID(r))
	if err != nil {
		h.internalError(w, r, "search users", err)
		return
	}

	page := h.newPage(w, r, "Users")
	page.Query = query
	page.Users = users
	h.render(w, r, http.StatusOK, "users-index", page)
}

// Show renders a profile with the user's messages
// GET /users/{id}
func (h *UserHandler) Show(w http.ResponseWriter, r *http.Request) {
	page, ok := h.profilePage(w, r)
	if !ok {
		return
	}

	messages, err := h.userService.Messages(r.Context(), page.Profile.User.ID, viewerID(r))
	if err != nil {
		h.internalError(w, r, "list user messages", err)
		return
	}

	page.Messages = messages
	h.render(w, r, http.StatusOK, "users-show", page)
}

// Likes renders the messages a user has liked
// GET /users/{id}/likes
func (h *UserHandler) Likes(w http.ResponseWriter, r *http.Request) {
	page, ok := h.profilePage(w, r)
	if !ok {
		return
	}

	messages, err := h.userService.Likes(r.Context(), page.Profile.User.ID, viewerID(r))
	if err != nil {
		h.internalError(w, r, "list liked messages", err)
		return
	}

	page.Messages = messages
	h.render(w, r, http.StatusOK, "users-likes", page)
}

// Following renders the users a user follows
// GET /users/{id}/following
func (h *UserHandler) Following(w http.ResponseWriter, r *http.Request) {
	h.follows(w, r, "Following", h.userService.Following)
}

// Followers renders the users following a user
// GET /users/{id}/followers
func (h *UserHandler) Followers(w http.ResponseWriter, r *http.Request) {
	h.follows(w, r, "Followers", h.userService.Followers)
}

type listUsersFunc func(ctx context.Context, userID int64, viewerID *int64) ([]model.UserSummary, error)

func (h *UserHandler) follows(w http.ResponseWriter, r *http.Request, title string, list listUsersFunc) {
	page, ok := h.profilePage(w, r)
	if !ok {
		return
	}

	users, err := list(r.Context(), page.Profile.User.ID, viewerID(r))
	if err != nil {
		h.internalError(w, r, "list "+strings.ToLower(title), err)
		return
	}

	page.Title = title
	page.Users = users
	h.render(w, r, http.StatusOK, "users-follows", page)
}

// profilePage loads the profile named by the {id} URL parameter. It writes the
// error page and returns false when the user cannot be shown.
func (h *UserHandler) profilePage(w http.ResponseWriter, r *http.Request) (*web.Page, bool) {
	id, err := httputil.IDParam(r, "id")
	if err != nil {
		h.NotFound(w, r)
		return nil, false
	}

	profile, err := h.userService.GetProfile(r.Context(), id, viewerID(r))
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			h.NotFound(w, r)
		} else {
			h.internalError(w, r, "load profile", err)
		}
		return nil, false
	}

	page := h.newPage(w, r, "@"+profile.User.Username)
	page.Profile = profile
	return page, true
}

// EditForm renders the profile edit form prefilled with the current values
// GET /users/profile
func (h *UserHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r.Context())
	h.editError(w, r, model.UpdateProfileRequest{
		Username:       user.Username,
		Email:          user.Email,
		ImageURL:       user.ImageURL,
		HeaderImageURL: user.HeaderImageURL,
		Bio:            deref(user.Bio),
		Location:       deref(user.Location),
	})
}

// Edit applies the profile form once the password is confirmed.
// POST /users/profile
func (h *UserHandler) Edit(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, model.MaxImageSizeBytes+1024*1024)
	if err := r.ParseMultipartForm(model.MaxImageSizeBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		h.editError(w, r, model.UpdateProfileRequest{}, "The upload is too large or malformed.")
		return
	}

	req := model.UpdateProfileRequest{
		Username:       strings.TrimSpace(r.PostFormValue("username")),
		Email:          strings.TrimSpace(r.PostFormValue("email")),
		ImageURL:       strings.TrimSpace(r.PostFormValue("image_url")),
		HeaderImageURL: strings.TrimSpace(r.PostFormValue("header_image_url")),
		Bio:            strings.TrimSpace(r.PostFormValue("bio")),
		Location:       strings.TrimSpace(r.PostFormValue("location")),
		Password:       r.PostFormValue("password"),
	}

	if errs := validateForm(req); errs != nil {
		h.editError(w, r, req, errs...)
		return
	}

	var upload *model.UploadResult
	if h.images != nil {
		var errMsg string
		upload, errMsg = h.uploadImage(r)
		if errMsg != "" {
			h.editError(w, r, req, errMsg)
			return
		}
		if upload != nil {
			req.ImageURL = upload.URL
		}
	}

	updated, err := h.userService.UpdateProfile(r.Context(), user.ID, &req)
	if err != nil {
		if upload != nil {
			h.discardImage(r, upload.Key)
			req.ImageURL = user.ImageURL
		}
		switch {
		case errors.Is(err, model.ErrIncorrectPassword):
			session.SetFlash(w, "danger", "Wrong password, please try again.")
			http.Redirect(w, r, "/", http.StatusFound)
		case errors.Is(err, model.ErrUsernameExists):
			h.editError(w, r, req, "Username already taken")
		case errors.Is(err, model.ErrEmailExists):
			h.editError(w, r, req, "E-mail already taken")
		default:
			h.internalError(w, r, "update profile", err)
		}
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/users/%d", updated.ID), http.StatusFound)
}

// uploadImage stores the optional image_file field. It returns nil when no
// file was sent, or a message to show on the form when the upload is rejected.
func (h *UserHandler) uploadImage(r *http.Request) (*model.UploadResult, string) {
	file, header, err := r.FormFile("image_file")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, ""
	}
	if err != nil {
		return nil, "Invalid image upload."
	}
	defer file.Close()

	result, err := h.images.UploadProfileImage(r.Context(), file, header.Size)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrFileTooLarge):
			return nil, "Image exceeds the 5MB limit."
		case errors.Is(err, model.ErrInvalidImageType):
			return nil, "Unsupported image type. Allowed: jpeg, png, gif, webp."
		}
		h.logger.Error("upload profile image", zap.Error(err))
		return nil, "Could not store the image, please try again."
	}
	return result, ""
}

func (h *UserHandler) discardImage(r *http.Request, key string) {
	if err := h.images.DiscardProfileImage(r.Context(), key); err != nil {
		h.logger.Warn("discard profile image", zap.String("key", key), zap.Error(err))
	}
}

func (h *UserHandler) editError(w http.ResponseWriter, r *http.Request, req model.UpdateProfileRequest, errs ...string) {
	req.Password = ""
	page := h.newPage(w, r, "Edit profile")
	page.Form = req
	page.Errors = errs
	page.ImageUploads = h.images != nil
	h.render(w, r, http.StatusOK, "users-edit", page)
}

// Delete removes the logged-in user and everything they own, then logs out.
// POST /users/delete
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r.Context())

	if err := h.userService.Delete(r.Context(), user.ID); err != nil {
		h.internalError(w, r, "delete user", err)
		return
	}

	h.sessions.Logout(w)
	http.Redirect(w, r, "/signup", http.StatusFound)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
