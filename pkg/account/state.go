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

package account

import "fmt"

// PreRecoveryState is the immutable snapshot of one recovery attempt before
// the escrow has been unwrapped: the identity being recovered plus the
// ephemeral request keypair, with the private half locked under the
// passphrase chosen when the attempt started.
type PreRecoveryState struct {
	Domain    string `json:"domain"`
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`

	AuthenticationTokenToken string `json:"authentication_token_token"`
	AccountRecoveryRequestID string `json:"account_recovery_request_id,omitempty"`

	RequestFingerprint       string `json:"request_fingerprint"`
	RequestPublicArmoredKey  string `json:"request_public_armored_key"`
	RequestPrivateArmoredKey string `json:"request_private_armored_key"`
}

// PostRecoveryState is the immutable snapshot of a recovered, signed-in
// identity: the user's real key material, locked under the passphrase
// chosen at recovery time.
type PostRecoveryState struct {
	Domain    string `json:"domain"`
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`

	UserKeyFingerprint    string `json:"user_key_fingerprint"`
	UserPublicArmoredKey  string `json:"user_public_armored_key"`
	UserPrivateArmoredKey string `json:"user_private_armored_key"`
}

// Promote derives the post-recovery identity from a recovery attempt and
// the key material produced by the escrow unwrap. The two states are kept
// as distinct snapshots rather than one record mutated in place.
func (s PreRecoveryState) Promote(fingerprint, armoredPublic, armoredPrivate string) PostRecoveryState {
	return PostRecoveryState{
		Domain:                s.Domain,
		UserID:                s.UserID,
		Username:              s.Username,
		FirstName:             s.FirstName,
		LastName:              s.LastName,
		UserKeyFingerprint:    fingerprint,
		UserPublicArmoredKey:  armoredPublic,
		UserPrivateArmoredKey: armoredPrivate,
	}
}

// Stub builds the durable pending recovery record for this attempt with the
// server-assigned request id.
func (s PreRecoveryState) Stub(requestID string) *Account {
	return &Account{
		Type:                     TypeAccountRecovery,
		Domain:                   s.Domain,
		UserID:                   s.UserID,
		Username:                 s.Username,
		FirstName:                s.FirstName,
		LastName:                 s.LastName,
		AuthenticationTokenToken: s.AuthenticationTokenToken,
		AccountRecoveryRequestID: requestID,
		RequestFingerprint:       s.RequestFingerprint,
		RequestPublicArmoredKey:  s.RequestPublicArmoredKey,
		RequestPrivateArmoredKey: s.RequestPrivateArmoredKey,
	}
}

// Account builds the durable account record for a recovered identity.
func (s PostRecoveryState) Account() *Account {
	return &Account{
		Type:                  TypeAccount,
		Domain:                s.Domain,
		UserID:                s.UserID,
		Username:              s.Username,
		FirstName:             s.FirstName,
		LastName:              s.LastName,
		UserKeyFingerprint:    s.UserKeyFingerprint,
		UserPublicArmoredKey:  s.UserPublicArmoredKey,
		UserPrivateArmoredKey: s.UserPrivateArmoredKey,
	}
}

// PreRecoveryStateFromStub rebuilds the attempt snapshot from a persisted
// pending recovery stub, used when the wizard resumes in a new worker.
func PreRecoveryStateFromStub(a *Account) (PreRecoveryState, error) {
	if a == nil {
		return PreRecoveryState{}, fmt.Errorf("account: stub is nil")
	}
	if a.Type != TypeAccountRecovery {
		return PreRecoveryState{}, fmt.Errorf("account: record %q is not a pending recovery stub", a.UserID)
	}

	return PreRecoveryState{
		Domain:                   a.Domain,
		UserID:                   a.UserID,
		Username:                 a.Username,
		FirstName:                a.FirstName,
		LastName:                 a.LastName,
		AuthenticationTokenToken: a.AuthenticationTokenToken,
		AccountRecoveryRequestID: a.AccountRecoveryRequestID,
		RequestFingerprint:       a.RequestFingerprint,
		RequestPublicArmoredKey:  a.RequestPublicArmoredKey,
		RequestPrivateArmoredKey: a.RequestPrivateArmoredKey,
	}, nil
}
