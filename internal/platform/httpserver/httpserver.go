package httpserver

import (
	"log/slog"
	"net/http"
	"time"

	"regdesk/internal/platform/config"
)

// New builds the check-in desk HTTP server.
// WriteTimeout is left unset: /generate-label blocks for the whole render.
func New(cfg config.Server, handler http.Handler, logger *slog.Logger) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
	}
}
