package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"warbler/internal/metrics"
	"warbler/internal/model"
	"warbler/internal/service"
	"warbler/internal/session"
)

// AuthHandler serves signup, login and logout.
type AuthHandler struct {
	*Pages
	userService *service.UserService
	sessions    *session.Manager
	metrics     *metrics.Metrics
}

func NewAuthHandler(pages *Pages, userService *service.UserService, sessions *session.Manager, m *metrics.Metrics) *AuthHandler {
	return &AuthHandler{
		Pages:       pages,
		userService: userService,
		sessions:    sessions,
		metrics:     m,
	}
}

// SignupForm renders the signup page
// GET /signup
func (h *AuthHandler) SignupForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "signup", h.newPage(w, r, "Sign up"))
}

// Signup creates the account and logs the new user in.
// Invalid input or a taken username/email re-renders the form.
// POST /signup
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.badRequest(w, r)
		return
	}

	req := model.SignupRequest{
		Username: strings.TrimSpace(r.PostFormValue("username")),
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
		ImageURL: strings.TrimSpace(r.PostFormValue("image_url")),
	}

	if errs := validateForm(req); errs != nil {
		h.signupError(w, r, req, errs...)
		return
	}

	user, err := h.userService.Signup(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrUsernameExists):
			h.signupError(w, r, req, "Username already taken")
		case errors.Is(err, model.ErrEmailExists):
			h.signupError(w, r, req, "E-mail already taken")
		default:
			h.internalError(w, r, "signup", err)
		}
		return
	}

	if err := h.sessions.Login(w, user.ID); err != nil {
		h.internalError(w, r, "start session", err)
		return
	}
	h.metrics.RecordSignup()

	http.Redirect(w, r, "/", http.StatusFound)
}

// signupError re-renders the signup form with the submitted values.
func (h *AuthHandler) signupError(w http.ResponseWriter, r *http.Request, req model.SignupRequest, errs ...string) {
	page := h.newPage(w, r, "Sign up")
	page.Form = req
	page.Errors = errs
	h.render(w, r, http.StatusOK, "signup", page)
}

// LoginForm renders the login page
// GET /login
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "login", h.newPage(w, r, "Log in"))
}

// Login checks the credentials and starts a session.
// POST /login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.badRequest(w, r)
		return
	}

	req := model.LoginRequest{
		Username: strings.TrimSpace(r.PostFormValue("username")),
		Password: r.PostFormValue("password"),
	}

	if errs := validateForm(req); errs != nil {
		h.metrics.RecordLogin("invalid_form")
		h.loginError(w, r, req, nil, errs)
		return
	}

	user, err := h.userService.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		if !errors.Is(err, model.ErrInvalidCredentials) {
			h.internalError(w, r, "authenticate", err)
			return
		}
		h.metrics.RecordLogin("invalid_credentials")
		h.loginError(w, r, req, &session.Flash{Category: "danger", Message: "Invalid credentials."}, nil)
		return
	}

	if err := h.sessions.Login(w, user.ID); err != nil {
		h.internalError(w, r, "start session", err)
		return
	}
	h.metrics.RecordLogin("success")
	h.logger.Info("user logged in", zap.Int64("user_id", user.ID))

	session.SetFlash(w, "success", fmt.Sprintf("Hello, %s!", user.Username))
	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *AuthHandler) loginError(w http.ResponseWriter, r *http.Request, req model.LoginRequest, flash *session.Flash, errs []string) {
	page := h.newPage(w, r, "Log in")
	page.Form = model.LoginRequest{Username: req.Username}
	if flash != nil {
		page.Flash = flash
	}
	page.Errors = errs
	h.render(w, r, http.StatusOK, "login", page)
}

// Logout ends the session
// GET /logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Logout(w)
	session.SetFlash(w, "success", "You have successfully logged out.")
	http.Redirect(w, r, "/login", http.StatusFound)
}
