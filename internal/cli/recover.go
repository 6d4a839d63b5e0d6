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

package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeremyhahn/go-teamvault/pkg/account"
	"github.com/jeremyhahn/go-teamvault/pkg/accountrecovery"
	"github.com/jeremyhahn/go-teamvault/pkg/types"
)

var (
	recoverUserID     string
	recoverDomain     string
	recoverUsername   string
	recoverFirstName  string
	recoverLastName   string
	recoverAuthToken  string
	recoverPassphrase string
)

var recoverCmd = &cobra.Command{
	Use:   "recover",
	Short: "Account recovery operations",
	Long: `Initiate, inspect and complete an account recovery attempt.

A recovery attempt starts with "recover request", which generates a fresh
keypair locked under a passphrase of your choosing and submits a recovery
request to the organization. Once an administrator has approved it, run
"recover complete" with the same passphrase to unwrap the escrowed account
key and restore local access.`,
}

var recoverRequestCmd = &cobra.Command{
	Use:   "request",
	Short: "Initiate a recovery request after a lost passphrase",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := buildServices()
		if err != nil {
			return err
		}
		defer svc.temporary.Close()

		passphrase, err := resolvePassphrase()
		if err != nil {
			return err
		}

		requestID, err := svc.orchestrator.RequestHelpCredentialsLost(
			cmd.Context(), cliWorkerID, &accountrecovery.HelpRequest{
				Domain:                   recoverDomain,
				UserID:                   recoverUserID,
				Username:                 recoverUsername,
				FirstName:                recoverFirstName,
				LastName:                 recoverLastName,
				AuthenticationTokenToken: recoverAuthToken,
				Passphrase:               passphrase,
			})
		if err != nil {
			return err
		}

		fmt.Printf("Recovery request submitted.\n")
		fmt.Printf("  Request ID: %s\n", requestID)
		fmt.Printf("\nAsk your organization administrator to review the request,\n")
		fmt.Printf("then run \"teamvault recover complete\" with the same passphrase.\n")
		return nil
	},
}

var recoverStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the pending recovery request, if any",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := buildServices()
		if err != nil {
			return err
		}
		defer svc.temporary.Close()

		stub, err := svc.registry.Get(account.TypeAccountRecovery, recoverUserID)
		if err != nil {
			if errors.Is(err, types.ErrAccountNotFound) {
				fmt.Println("No recovery in progress.")
				return nil
			}
			return err
		}

		fmt.Printf("Recovery in progress.\n")
		fmt.Printf("  Request ID:  %s\n", stub.AccountRecoveryRequestID)
		fmt.Printf("  Domain:      %s\n", stub.Domain)
		fmt.Printf("  User:        %s (%s)\n", stub.Username, stub.UserID)
		fmt.Printf("  Fingerprint: %s\n", stub.RequestFingerprint)
		return nil
	},
}

var recoverCompleteCmd = &cobra.Command{
	Use:   "complete",
	Short: "Complete an approved recovery and restore the account",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := buildServices()
		if err != nil {
			return err
		}
		defer svc.temporary.Close()

		passphrase, err := resolvePassphrase()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		if err := svc.orchestrator.Continue(ctx, cliWorkerID, recoverUserID, recoverDomain); err != nil {
			return err
		}
		if err := svc.orchestrator.RecoverAccount(ctx, cliWorkerID, passphrase); err != nil {
			return err
		}

		fmt.Println("Account recovered.")
		return nil
	},
}

// resolvePassphrase returns the --passphrase flag value, or prompts on
// stdin when the flag was omitted.
func resolvePassphrase() (string, error) {
	if recoverPassphrase != "" {
		return recoverPassphrase, nil
	}

	fmt.Fprint(os.Stderr, "Passphrase: ")
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read passphrase: %w", err)
	}
	passphrase := strings.TrimRight(line, "\r\n")
	if passphrase == "" {
		return "", fmt.Errorf("passphrase is required")
	}
	return passphrase, nil
}

func init() {
	recoverCmd.PersistentFlags().StringVar(&recoverUserID, "user-id", "",
		"user id of the account being recovered")
	recoverCmd.PersistentFlags().StringVar(&recoverDomain, "domain", "",
		"domain of the account being recovered")
	recoverCmd.PersistentFlags().StringVar(&recoverPassphrase, "passphrase", "",
		"attempt passphrase (prompted when omitted)")

	recoverRequestCmd.Flags().StringVar(&recoverUsername, "username", "",
		"username (email) of the account")
	recoverRequestCmd.Flags().StringVar(&recoverFirstName, "first-name", "",
		"first name of the user")
	recoverRequestCmd.Flags().StringVar(&recoverLastName, "last-name", "",
		"last name of the user")
	recoverRequestCmd.Flags().StringVar(&recoverAuthToken, "auth-token", "",
		"authentication token issued by the recovery invitation")
	recoverRequestCmd.MarkFlagRequired("username")

	recoverCmd.MarkPersistentFlagRequired("user-id")
	recoverCmd.MarkPersistentFlagRequired("domain")

	recoverCmd.AddCommand(recoverRequestCmd)
	recoverCmd.AddCommand(recoverStatusCmd)
	recoverCmd.AddCommand(recoverCompleteCmd)
}
