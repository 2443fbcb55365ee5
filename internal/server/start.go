package server

import (
	"context"
	"errors"
	"net/http"
	"time"
)

const shutdownTimeout = 10 * time.Second

// Start serves on the configured address until ctx is cancelled or the
// process receives an interrupt, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	ctx, stop := notifyShutdown(ctx)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting server", "addr", s.cfg.GetAppAddr())
		if err := s.E.Start(s.cfg.GetAppAddr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			s.runClosers()
			return err
		}
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.Shutdown(shutdownCtx)
}
