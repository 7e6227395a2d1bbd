// Package swaggerkit serves the embedded OpenAPI document and the Swagger UI
package swaggerkit

import (
	"net/http"

	phttp "djnic/internal/platform/net/http"

	httpSwagger "github.com/swaggo/http-swagger"
)

// DocsPath is where the UI lives; the document is DocsPath + "/doc.json"
const DocsPath = "/api/docs"

// Mount serves the UI and the document describing the API under base; a no-op when disabled
func Mount(r phttp.Router, enabled bool, base string) {
	if !enabled {
		return
	}
	doc := DocsPath + "/doc.json"
	r.Route(DocsPath, func(d phttp.Router) {
		d.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, DocsPath+"/index.html", http.StatusFound)
		})
		d.Get("/doc.json", serveDocJSON(base))
		d.Handle("/*", httpSwagger.Handler(httpSwagger.URL(doc)))
	})
}
