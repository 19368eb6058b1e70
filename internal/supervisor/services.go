// Sentinel - Abuse Mitigation and Security Telemetry for IndieVault
// Copyright 2026 IndieVault Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/indievault/sentinel

package supervisor

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/indievault/sentinel/internal/logging"
)

// HTTPServer matches *http.Server's lifecycle methods so tests can
// substitute a fake.
type HTTPServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// HTTPService adapts an HTTP server's blocking ListenAndServe to
// suture's context-aware Serve.
type HTTPService struct {
	server          HTTPServer
	shutdownTimeout time.Duration
}

// NewHTTPService wraps server as a supervised service.
func NewHTTPService(server HTTPServer, shutdownTimeout time.Duration) *HTTPService {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	return &HTTPService{server: server, shutdownTimeout: shutdownTimeout}
}

// Serve implements suture.Service. http.ErrServerClosed maps to nil
// since it is the normal shutdown signal.
func (s *HTTPService) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		// The serve context is already canceled; shutdown needs its own.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()

		if err := s.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http server shutdown: %w", err)
		}
		return ctx.Err()
	}
}

func (s *HTTPService) String() string { return "http-server" }

// SweepFunc reclaims stale state and reports how many entries it
// removed. Errors are logged, not returned: a flaky sweep must not
// crash-loop the maintenance layer.
type SweepFunc func(ctx context.Context) (int, error)

// SweepService runs a SweepFunc on a fixed interval until canceled.
type SweepService struct {
	name     string
	interval time.Duration
	sweep    SweepFunc
}

// NewSweepService creates a periodic sweeper. Interval must be positive.
func NewSweepService(name string, interval time.Duration, sweep SweepFunc) *SweepService {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &SweepService{name: name, interval: interval, sweep: sweep}
}

// Serve implements suture.Service.
func (s *SweepService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	logging.Debug().
		Str("sweeper", s.name).
		Dur("interval", s.interval).
		Msg("Sweeper started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			removed, err := s.sweep(ctx)
			if err != nil {
				logging.Err(err).Str("sweeper", s.name).Msg("Sweep failed")
				continue
			}
			if removed > 0 {
				logging.Debug().
					Str("sweeper", s.name).
					Int("removed", removed).
					Msg("Sweep completed")
			}
		}
	}
}

func (s *SweepService) String() string { return "sweeper-" + s.name }
