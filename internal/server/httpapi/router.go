package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/gophcam/internal/logging"
	"github.com/dmitrijs2005/gophcam/internal/server/auth"
)

// NewRouter registers every route. The webview and the /api routes
// require an identity resolved by resolver.
func NewRouter(h *Handlers, resolver auth.Resolver, logger logging.Logger) http.Handler {
	mux := http.NewServeMux()

	webAuth := auth.Middleware(resolver, h.WebviewUnauthorized)
	apiAuth := auth.Middleware(resolver, h.APIUnauthorized)

	mux.HandleFunc("GET /{$}", h.Health)
	mux.HandleFunc("GET /webview", webAuth(h.Webview))
	mux.HandleFunc("GET /api/processing-status", apiAuth(h.ProcessingStatus))
	mux.HandleFunc("GET /api/photo/{requestId}", apiAuth(h.Photo))
	mux.HandleFunc("POST /webhook", h.Webhook)

	if logger == nil {
		logger = logging.Nop()
	}
	return withLogging(logger.With("module", "http"), mux)
}
