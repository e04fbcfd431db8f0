package httpserver

import (
	"net/http"
	"time"
)

// New builds the API server. Batch endpoints can carry up to a thousand
// responses, so write and idle timeouts are generous.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
