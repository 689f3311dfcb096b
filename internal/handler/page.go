package handler

import (
	"net/http"

	"go.uber.org/zap"

	"warbler/internal/logging"
	"warbler/internal/session"
	"warbler/internal/transport/http/middleware"
	"warbler/internal/web"
)

// Pages renders templates with the request's session state filled in.
// Every HTML handler embeds one.
type Pages struct {
	renderer *web.Renderer
	logger   *zap.Logger
}

func NewPages(renderer *web.Renderer) *Pages {
	return &Pages{
		renderer: renderer,
		logger:   logging.WithComponent("handler"),
	}
}

// newPage starts the template data for r: the logged-in user and any pending flash.
func (p *Pages) newPage(w http.ResponseWriter, r *http.Request, title string) *web.Page {
	return &web.Page{
		Title:       title,
		CurrentUser: middleware.CurrentUser(r.Context()),
		Flash:       session.PopFlash(w, r),
	}
}

func (p *Pages) render(w http.ResponseWriter, r *http.Request, status int, name string, page *web.Page) {
	if err := p.renderer.Render(w, status, name, page); err != nil {
		p.logger.Error("render template",
			zap.String("template", name),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (p *Pages) errorPage(w http.ResponseWriter, r *http.Request, status int, detail string) {
	page := p.newPage(w, r, http.StatusText(status))
	page.Form = detail
	p.render(w, r, status, "error", page)
}

// NotFound renders the 404 page. It doubles as the router's NotFound handler.
func (p *Pages) NotFound(w http.ResponseWriter, r *http.Request) {
	p.errorPage(w, r, http.StatusNotFound, "The page you are looking for does not exist.")
}

func (p *Pages) forbidden(w http.ResponseWriter, r *http.Request) {
	p.errorPage(w, r, http.StatusForbidden, "You are not allowed to do that.")
}

func (p *Pages) badRequest(w http.ResponseWriter, r *http.Request) {
	p.errorPage(w, r, http.StatusBadRequest, "The request could not be understood.")
}

func (p *Pages) internalError(w http.ResponseWriter, r *http.Request, op string, err error) {
	p.logger.Error(op, zap.String("path", r.URL.Path), zap.Error(err))
	p.errorPage(w, r, http.StatusInternalServerError, "Something went wrong on our end.")
}

// viewerID returns the logged-in user's id, or nil for anonymous requests.
func viewerID(r *http.Request) *int64 {
	if id, ok := middleware.GetUserIDFromContext(r.Context()); ok {
		return &id
	}
	return nil
}
