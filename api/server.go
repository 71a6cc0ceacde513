package api

import (
	"net"
	"net/http"
	"time"

	"github.com/sunkaracharan/roifinal/pkg/config"
)

const (
	readHeaderTimeout = 10 * time.Second
	readTimeout       = 30 * time.Second
	// PDF export and chatbot calls can take a while.
	writeTimeout = 60 * time.Second
	idleTimeout  = 120 * time.Second
)

// NewServer wraps the router in an http.Server listening on port.
func NewServer(cfg *config.Config, port string, handler http.Handler) *http.Server {
	if port == "" {
		port = cfg.App.Port
	}
	return &http.Server{
		Addr:              net.JoinHostPort("", port),
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}
}
