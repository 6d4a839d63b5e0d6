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

// Package cli implements the teamvault command-line interface, a thin
// driver over the same recovery services the port server exposes.
package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jeremyhahn/go-teamvault/internal/config"
	"github.com/jeremyhahn/go-teamvault/pkg/account"
	"github.com/jeremyhahn/go-teamvault/pkg/accountrecovery"
	"github.com/jeremyhahn/go-teamvault/pkg/api"
	"github.com/jeremyhahn/go-teamvault/pkg/logging"
	"github.com/jeremyhahn/go-teamvault/pkg/sso"
	"github.com/jeremyhahn/go-teamvault/pkg/storage/file"
)

// cliWorkerID partitions wizard state driven from the terminal. Each CLI
// invocation is one worker session.
const cliWorkerID = "cli"

var (
	flagConfigFile string
	flagAPIURL     string
	flagStorageDir string
	flagDebug      bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "teamvault",
	Short: "go-teamvault CLI - Team password manager account tooling",
	Long: `go-teamvault CLI drives the vault service's account recovery
flow from the terminal: initiating a recovery request after a lost
passphrase, inspecting the pending request and completing the recovery
once the organization has approved it.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigFile, "config", "",
		"config file (default is built-in defaults plus flags)")
	rootCmd.PersistentFlags().StringVar(&flagAPIURL, "api-url", "",
		"vault server base URL")
	rootCmd.PersistentFlags().StringVar(&flagStorageDir, "storage-dir", "",
		"directory for local durable storage")
	rootCmd.PersistentFlags().BoolVarP(&flagDebug, "debug", "d", false,
		"debug logging")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(recoverCmd)
}

// services bundles everything a CLI command needs.
type services struct {
	config       *config.Config
	logger       *logging.Logger
	registry     *account.Registry
	temporary    *account.TemporaryStore
	orchestrator *accountrecovery.Orchestrator
}

// buildServices loads configuration and wires the recovery services.
func buildServices() (*services, error) {
	cfg := config.Default()
	if flagConfigFile != "" {
		loaded, err := config.Load(flagConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if flagAPIURL != "" {
		cfg.API.BaseURL = flagAPIURL
	}
	if flagStorageDir != "" {
		cfg.Storage.LocalDir = flagStorageDir
	}
	if cfg.API.BaseURL == "" {
		return nil, fmt.Errorf("vault server URL is required (--api-url or config)")
	}

	logger := logging.NewLogger(flagDebug)

	client, err := api.NewClient(&api.Config{
		BaseURL:               cfg.API.BaseURL,
		Timeout:               time.Duration(cfg.API.TimeoutSeconds) * time.Second,
		TLSInsecureSkipVerify: cfg.API.TLSInsecureSkipVerify,
	})
	if err != nil {
		return nil, err
	}

	local, err := file.New(cfg.Storage.LocalDir)
	if err != nil {
		return nil, err
	}

	registry := account.NewRegistry(local)
	temporary := account.NewTemporaryStore()
	identity := account.NewIdentityCell()
	kits := sso.NewKitStore(local)

	return &services{
		config:       cfg,
		logger:       logger,
		registry:     registry,
		temporary:    temporary,
		orchestrator: accountrecovery.NewOrchestrator(client, registry, temporary, identity, kits, logger),
	}, nil
}
