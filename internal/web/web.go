package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"time"

	"warbler/internal/model"
	"warbler/internal/session"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Page is the data handed to every template.
type Page struct {
	Title       string
	CurrentUser *model.User
	Flash       *session.Flash
	Errors      []string

	// Form echoes submitted values back into a re-rendered form
	Form any

	Profile  *model.Profile
	User     *model.User
	Users    []model.UserSummary
	Messages []model.Message
	Message  *model.Message
	Query    string

	ImageUploads bool
}

// IsCurrentUser reports whether id is the logged-in user.
func (p *Page) IsCurrentUser(id int64) bool {
	return p.CurrentUser != nil && p.CurrentUser.ID == id
}

var funcs = template.FuncMap{
	"timestamp": func(t time.Time) string { return t.Format("02 January 2006") },
	"deref": func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	},
	"followArgs": func(p *Page, id int64, following bool) followButton {
		return followButton{Page: p, ID: id, IsFollowing: following}
	},
}

// followButton is the argument to the follow_button partial.
type followButton struct {
	Page        *Page
	ID          int64
	IsFollowing bool
}

// Renderer executes the layout together with one page template.
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer parses base.html and _partials.html with every other template
// in templates/.
func NewRenderer() (*Renderer, error) {
	names, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}

	pages := make(map[string]*template.Template)
	for _, name := range names {
		base := path.Base(name)
		if base == "base.html" || strings.HasPrefix(base, "_") {
			continue
		}
		tmpl, err := template.New("base.html").Funcs(funcs).
			ParseFS(templateFS, "templates/base.html", "templates/_partials.html", name)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", base, err)
		}
		pages[strings.TrimSuffix(base, ".html")] = tmpl
	}
	return &Renderer{pages: pages}, nil
}

// Render writes page name with status. Output is buffered so a template
// error never leaves a half-written page.
func (r *Renderer) Render(w http.ResponseWriter, status int, name string, page *Page) error {
	tmpl, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown template %q", name)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base.html", page); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

// Static serves the embedded /static tree.
func Static() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
}
