package infra

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// HTTPServer wraps http.Server with context driven shutdown.
type HTTPServer struct {
	server *http.Server
}

// NewHTTPServer creates the API server. The write timeout is raised to cover
// the generation budget so slow providers are not cut off mid response.
func NewHTTPServer(cfg *Config, handler http.Handler) *HTTPServer {
	write := cfg.HTTPWriteTimeout
	if floor := cfg.GenerationBudget + 5*time.Second; write < floor {
		write = floor
	}
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadTimeout:       cfg.HTTPReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      write,
		IdleTimeout:       cfg.HTTPIdleTimeout,
	}
	return &HTTPServer{server: srv}
}

// Addr returns the listen address.
func (s *HTTPServer) Addr() string { return s.server.Addr }

// Run serves until ctx is cancelled, then drains in-flight requests for at
// most grace.
func (s *HTTPServer) Run(ctx context.Context, grace time.Duration) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	return s.server.Shutdown(shutdownCtx)
}
