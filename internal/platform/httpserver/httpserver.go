package httpserver

import (
	"net/http"
	"time"
)

// New builds the listener for the admin and metrics surface. Only the header
// read is bounded here; per-request deadlines come from the router's timeout
// middleware.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
