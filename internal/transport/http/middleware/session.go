package middleware

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"warbler/internal/logging"
	"warbler/internal/model"
	"warbler/internal/session"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	// UserIDKey is the context key for the logged-in user's ID
	UserIDKey contextKey = "curr_user"

	// UserKey is the context key for the logged-in *model.User
	UserKey contextKey = "curr_user_record"
)

// UserLoader resolves the session's user id.
type UserLoader interface {
	GetByID(ctx context.Context, id int64) (*model.User, error)
}

// LoadSession reads the session cookie and, when it names an existing user,
// stores the user in the request context. Requests without a valid session
// continue anonymously. A session for a deleted user is cleared.
func LoadSession(sessions *session.Manager, users UserLoader) func(http.Handler) http.Handler {
	logger := logging.WithComponent("session")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := sessions.UserID(r)
			if err != nil {
				if !errors.Is(err, session.ErrNoSession) {
					sessions.Logout(w)
				}
				next.ServeHTTP(w, r)
				return
			}

			user, err := users.GetByID(r.Context(), userID)
			if err != nil {
				if !errors.Is(err, model.ErrUserNotFound) {
					logger.Error("load session user", zap.Int64("user_id", userID), zap.Error(err))
				}
				sessions.Logout(w)
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, user.ID)
			ctx = context.WithValue(ctx, UserKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireLogin redirects anonymous requests to the home page.
func RequireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetUserIDFromContext(r.Context()); !ok {
			session.SetFlash(w, "danger", "Access unauthorized.")
			http.Redirect(w, r, "/", http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetUserIDFromContext extracts the user ID from the request context
// Returns the user ID and true if found, or 0 and false if not found
func GetUserIDFromContext(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(UserIDKey).(int64)
	return userID, ok
}

// CurrentUser returns the logged-in user, or nil for anonymous requests.
func CurrentUser(ctx context.Context) *model.User {
	user, _ := ctx.Value(UserKey).(*model.User)
	return user
}

// WithUser returns a context carrying user as the logged-in user.
func WithUser(ctx context.Context, user *model.User) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, user.ID)
	return context.WithValue(ctx, UserKey, user)
}
