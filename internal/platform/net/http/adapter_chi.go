package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// AdaptChi wraps a chi root or sub router as a Router
func AdaptChi(r chi.Router) Router { return chiRouter{r} }

type chiRouter struct{ chi chi.Router }

func (c chiRouter) method(m, path string, h Handler) { c.chi.Method(m, path, http.HandlerFunc(h)) }

func (c chiRouter) Get(path string, h Handler)    { c.method(http.MethodGet, path, h) }
func (c chiRouter) Post(path string, h Handler)   { c.method(http.MethodPost, path, h) }
func (c chiRouter) Delete(path string, h Handler) { c.method(http.MethodDelete, path, h) }

func (c chiRouter) Handle(pattern string, h http.Handler)     { c.chi.Handle(pattern, h) }
func (c chiRouter) Use(mw ...func(http.Handler) http.Handler) { c.chi.Use(mw...) }
func (c chiRouter) Mux() http.Handler                         { return c.chi }

func (c chiRouter) Group(fn func(Router)) {
	c.chi.Group(func(g chi.Router) { fn(chiRouter{g}) })
}

func (c chiRouter) Route(prefix string, fn func(Router)) {
	c.chi.Route(prefix, func(g chi.Router) { fn(chiRouter{g}) })
}

// URLParam reads a {name} path segment
func URLParam(r *http.Request, name string) string { return chi.URLParam(r, name) }
