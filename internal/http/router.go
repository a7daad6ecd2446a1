package http

import (
	nethttp "net/http"

	"github.com/preston-bernstein/ntrp-rating-service/internal/http/handlers"
)

// NewRouter registers HTTP routes on a ServeMux.
func NewRouter(handler *handlers.Handler) nethttp.Handler {
	mux := nethttp.NewServeMux()
	handler.Register(mux)
	return mux
}
