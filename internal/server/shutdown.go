package server

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
)

// notifyShutdown returns a context cancelled on an interrupt or terminate
// signal.
func notifyShutdown(ctx context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
}

// OnShutdown registers fn to run once the HTTP server has stopped. Closers
// run in reverse registration order.
func (s *Server) OnShutdown(fn func() error) {
	s.closers = append(s.closers, fn)
}

// Shutdown stops accepting requests, waits for in-flight ones and then runs
// the registered closers.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.E.Shutdown(ctx)
	return errors.Join(err, s.runClosers())
}

func (s *Server) runClosers() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			s.logger.Error("Shutdown step failed", "error", err)
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}
