package session

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
)

// FlashCookieName holds one pending flash message.
const FlashCookieName = "warbler_flash"

// Flash is a one-shot message shown on the next rendered page.
// Category is one of "success", "info", "danger".
type Flash struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}

func SetFlash(w http.ResponseWriter, category, message string) {
	raw, err := json.Marshal(Flash{Category: category, Message: message})
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     FlashCookieName,
		Value:    base64.RawURLEncoding.EncodeToString(raw),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// PopFlash returns the pending flash, if any, and clears it.
func PopFlash(w http.ResponseWriter, r *http.Request) *Flash {
	cookie, err := r.Cookie(FlashCookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}

	http.SetCookie(w, &http.Cookie{
		Name:   FlashCookieName,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})

	raw, err := base64.RawURLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return nil
	}
	var f Flash
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil
	}
	return &f
}
