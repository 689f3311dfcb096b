package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// ErrInvalidID is returned when a URL id parameter is not a positive integer.
var ErrInvalidID = errors.New("invalid id")

// WriteJSON writes a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// headers already sent
			return
		}
	}
}

// IDParam parses the chi URL parameter name as a positive int64.
func IDParam(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidID
	}
	return id, nil
}

// RedirectBack sends the client to the page it came from, or to fallback when
// the Referer is missing or points at another host.
func RedirectBack(w http.ResponseWriter, r *http.Request, fallback string) {
	target := fallback
	if ref, err := url.Parse(r.Referer()); err == nil && ref.Path != "" && (ref.Host == "" || ref.Host == r.Host) {
		target = ref.RequestURI()
	}
	http.Redirect(w, r, target, http.StatusFound)
}
