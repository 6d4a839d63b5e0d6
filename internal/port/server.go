// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-teamvault.
//
// go-teamvault is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

// Package port exposes the account recovery command surface to the UI
// layer. Commands are correlated by an opaque id and results are tagged
// SUCCESS or ERROR; errors from the recovery subsystem are surfaced
// verbatim, never wrapped or translated.
package port

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jeremyhahn/go-teamvault/pkg/accountrecovery"
	"github.com/jeremyhahn/go-teamvault/pkg/logging"
)

// Server serves the port command surface over a local HTTP listener.
type Server struct {
	server   *http.Server
	handlers *HandlerContext
	logger   *logging.Logger
}

// Config holds the port server configuration.
type Config struct {
	// Host is the listen address (default: 127.0.0.1)
	Host string

	// Port is the listen port (default: 8571)
	Port int

	// Orchestrator handles the recovery commands
	Orchestrator *accountrecovery.Orchestrator

	// Logger is the service logger (optional)
	Logger *logging.Logger

	// ReadTimeout is the maximum duration for reading the entire request
	ReadTimeout time.Duration

	// WriteTimeout is the maximum duration before timing out writes
	WriteTimeout time.Duration
}

// NewServer creates a new port server.
func NewServer(cfg *Config) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if cfg.Orchestrator == nil {
		return nil, fmt.Errorf("orchestrator is required")
	}

	if cfg.Host == "" {
		cfg.Host = "127.0.0.1"
	}
	if cfg.Port == 0 {
		cfg.Port = 8571
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 15 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		// recover-account runs key generation and three decrypt stages
		cfg.WriteTimeout = 120 * time.Second
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.DefaultLogger()
	}

	handlers := NewHandlerContext(cfg.Orchestrator, logger)

	srv := &Server{
		handlers: handlers,
		logger:   logger,
	}
	srv.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      srv.router(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return srv, nil
}

// router builds the chi router for the command surface.
func (s *Server) router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Route("/v1/account-recovery", func(r chi.Router) {
		r.Post("/continue", s.handlers.handleContinue)
		r.Post("/verify-passphrase", s.handlers.handleVerifyPassphrase)
		r.Post("/recover-account", s.handlers.handleRecoverAccount)
		r.Post("/request-help-credentials-lost", s.handlers.handleRequestHelp)
		r.Post("/sign-in", s.handlers.handleSignIn)
	})

	r.Get("/v1/health", func(w http.ResponseWriter, _ *http.Request) {
		writeResult(w, "health", map[string]string{"status": "ok"})
	})

	return r
}

// Handler exposes the router, primarily for tests.
func (s *Server) Handler() http.Handler {
	return s.router()
}

// Start begins serving. Blocks until the listener closes.
func (s *Server) Start() error {
	s.logger.Info("port server listening", "addr", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
