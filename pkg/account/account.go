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

// Package account defines the durable and session-scoped account records of
// the vault service and the stores that hold them. The durable registry
// holds fully usable accounts and pending recovery stubs; the temporary
// store holds per-worker in-flight wizard state.
package account

import (
	"fmt"
)

// Type discriminates durable account records.
type Type string

const (
	// TypeAccount is a fully usable account whose private key has been
	// set up or recovered.
	TypeAccount Type = "account"

	// TypeAccountRecovery is a pending recovery stub awaiting
	// organizational approval of an account recovery request.
	TypeAccountRecovery Type = "account-recovery"
)

// Account is a durable account record stored in the local registry as a
// plain JSON document.
//
// For TypeAccount records the User* fields carry the user's real key
// material, with the private key armored and locked under the user's
// passphrase. For TypeAccountRecovery stubs the Request* fields carry the
// ephemeral request keypair of one recovery attempt, with the private half
// locked under the passphrase chosen when the attempt started; no key
// material is ever stored in the clear.
type Account struct {
	Type      Type   `json:"type"`
	Domain    string `json:"domain"`
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`

	// Real identity key material (TypeAccount only)
	UserKeyFingerprint    string `json:"user_key_fingerprint,omitempty"`
	UserPublicArmoredKey  string `json:"user_public_armored_key,omitempty"`
	UserPrivateArmoredKey string `json:"user_private_armored_key,omitempty"`

	// Recovery attempt state (TypeAccountRecovery only)
	AuthenticationTokenToken string `json:"authentication_token_token,omitempty"`
	AccountRecoveryRequestID string `json:"account_recovery_request_id,omitempty"`
	RequestFingerprint       string `json:"request_fingerprint,omitempty"`
	RequestPublicArmoredKey  string `json:"request_public_armored_key,omitempty"`
	RequestPrivateArmoredKey string `json:"request_private_armored_key,omitempty"`
}

// Validate checks the record for the fields its type requires.
func (a *Account) Validate() error {
	if a.Type != TypeAccount && a.Type != TypeAccountRecovery {
		return fmt.Errorf("account: invalid type %q", a.Type)
	}
	if a.Domain == "" {
		return fmt.Errorf("account: domain is required")
	}
	if a.UserID == "" {
		return fmt.Errorf("account: user id is required")
	}
	if a.Username == "" {
		return fmt.Errorf("account: username is required")
	}

	switch a.Type {
	case TypeAccount:
		if a.UserKeyFingerprint == "" || a.UserPublicArmoredKey == "" || a.UserPrivateArmoredKey == "" {
			return fmt.Errorf("account: user key material is required")
		}
	case TypeAccountRecovery:
		if a.AccountRecoveryRequestID == "" {
			return fmt.Errorf("account: account recovery request id is required")
		}
	}

	return nil
}
