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

// vaultd runs the local recovery service: it owns the durable account
// registry and exposes the account recovery command surface on a loopback
// HTTP listener for the UI layer to drive.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jeremyhahn/go-teamvault/internal/config"
	"github.com/jeremyhahn/go-teamvault/internal/port"
	"github.com/jeremyhahn/go-teamvault/pkg/account"
	"github.com/jeremyhahn/go-teamvault/pkg/accountrecovery"
	"github.com/jeremyhahn/go-teamvault/pkg/api"
	"github.com/jeremyhahn/go-teamvault/pkg/logging"
	"github.com/jeremyhahn/go-teamvault/pkg/sso"
	"github.com/jeremyhahn/go-teamvault/pkg/storage/file"
)

func main() {
	var (
		configFile = flag.String("config", "", "Path to YAML configuration file")
		apiURL     = flag.String("api-url", "", "Vault server base URL (overrides config)")
		host       = flag.String("host", "", "Listen address (overrides config)")
		listenPort = flag.Int("port", 0, "Listen port (overrides config)")
		storageDir = flag.String("storage-dir", "", "Local storage directory (overrides config)")
		debug      = flag.Bool("debug", false, "Enable debug logging")
	)
	flag.Parse()

	cfg := config.Default()
	if *configFile != "" {
		loaded, err := config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if *apiURL != "" {
		cfg.API.BaseURL = *apiURL
	}
	if *host != "" {
		cfg.Server.Host = *host
	}
	if *listenPort != 0 {
		cfg.Server.Port = *listenPort
	}
	if *storageDir != "" {
		cfg.Storage.LocalDir = *storageDir
	}
	if *debug {
		cfg.Logging.Debug = true
	}
	if cfg.API.BaseURL == "" {
		fmt.Fprintln(os.Stderr, "Error: vault server URL is required (-api-url or config)")
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg.Logging.Debug)

	client, err := api.NewClient(&api.Config{
		BaseURL:               cfg.API.BaseURL,
		Timeout:               time.Duration(cfg.API.TimeoutSeconds) * time.Second,
		TLSInsecureSkipVerify: cfg.API.TLSInsecureSkipVerify,
	})
	if err != nil {
		logger.FatalError(err)
	}

	local, err := file.New(cfg.Storage.LocalDir)
	if err != nil {
		logger.FatalError(err)
	}
	defer func() { logger.MaybeError(local.Close()) }()

	registry := account.NewRegistry(local)
	temporary := account.NewTemporaryStore()
	defer func() { logger.MaybeError(temporary.Close()) }()
	identity := account.NewIdentityCell()
	kits := sso.NewKitStore(local)

	orchestrator := accountrecovery.NewOrchestrator(
		client, registry, temporary, identity, kits, logger)

	server, err := port.NewServer(&port.Config{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		Orchestrator: orchestrator,
		Logger:       logger,
	})
	if err != nil {
		logger.FatalError(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.FatalError(err)
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.MaybeError(server.Shutdown(shutdownCtx))
	}
}
