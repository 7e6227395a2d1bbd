package http

import "net/http"

// Handler is a plain handler func; modules never see chi types
type Handler = func(http.ResponseWriter, *http.Request)

// Router is what modules mount routes on.
// The API only reads, creates and deletes, so there is no PUT or PATCH.
type Router interface {
	Get(path string, h Handler)
	Post(path string, h Handler)
	Delete(path string, h Handler)

	// Handle mounts a full http.Handler, e.g. the docs UI or /metrics
	Handle(pattern string, h http.Handler)
	Use(mw ...func(http.Handler) http.Handler)
	Group(fn func(Router))
	Route(prefix string, fn func(Router))

	// Mux exposes the underlying handler for tests and servers
	Mux() http.Handler
}
