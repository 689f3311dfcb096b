package session

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// CookieName holds the signed session token
	CookieName = "warbler_session"

	// currUserClaim is the token claim carrying the logged-in user id
	currUserClaim = "curr_user"
)

var ErrNoSession = errors.New("no session")

// Manager issues and reads the session cookie. The cookie value is an HS256 JWT
// whose curr_user claim is the logged-in user id.
type Manager struct {
	secret []byte
	maxAge time.Duration
	secure bool
}

func NewManager(secret string, maxAgeSeconds int, secure bool) *Manager {
	return &Manager{
		secret: []byte(secret),
		maxAge: time.Duration(maxAgeSeconds) * time.Second,
		secure: secure,
	}
}

// Login starts a session for userID.
func (m *Manager) Login(w http.ResponseWriter, userID int64) error {
	now := time.Now()
	claims := jwt.MapClaims{
		currUserClaim: userID,
		"iat":         now.Unix(),
		"exp":         now.Add(m.maxAge).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return fmt.Errorf("sign session token: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    signed,
		Path:     "/",
		MaxAge:   int(m.maxAge.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Logout clears the session cookie.
func (m *Manager) Logout(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// UserID returns the user id stored in the request's session cookie.
func (m *Manager) UserID(r *http.Request) (int64, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return 0, ErrNoSession
	}
	return m.parse(cookie.Value)
}

func (m *Manager) parse(tokenString string) (int64, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return m.secret, nil
	})
	if err != nil {
		return 0, fmt.Errorf("parse session token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return 0, ErrNoSession
	}

	// JSON numbers decode as float64
	userID, ok := claims[currUserClaim].(float64)
	if !ok {
		return 0, ErrNoSession
	}
	return int64(userID), nil
}
