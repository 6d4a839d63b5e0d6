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

// Package accountrecovery implements the account recovery (key-escrow)
// protocol: a user who lost their passphrase regains access to their vault
// through an organization-mediated escrow without the organization, server
// or network ever observing the passphrase or any unwrapped private key.
//
// Every operation runs its steps strictly in sequence; cross-tab
// concurrency is bounded only by the per-worker partitioning of the
// temporary store and the last-write-wins registry.
package accountrecovery

import (
	"context"

	"github.com/jeremyhahn/go-teamvault/pkg/account"
	"github.com/jeremyhahn/go-teamvault/pkg/api"
	"github.com/jeremyhahn/go-teamvault/pkg/auth"
	"github.com/jeremyhahn/go-teamvault/pkg/crypto/pgp"
	"github.com/jeremyhahn/go-teamvault/pkg/logging"
	"github.com/jeremyhahn/go-teamvault/pkg/sso"
	"github.com/jeremyhahn/go-teamvault/pkg/types"
)

const msgStubDomainMismatch = "The domain does not match the domain of the account recovery request."

// Orchestrator sequences the account recovery flow in response to the
// port commands: continue, verify-passphrase, recover-account,
// request-help-credentials-lost and sign-in.
type Orchestrator struct {
	registry  *account.Registry
	temporary *account.TemporaryStore
	submitter *Submitter
	fetcher   *Fetcher
	unwrapper *Unwrapper
	finalizer *Finalizer
	login     *auth.LoginService
	logger    *logging.Logger
}

// NewOrchestrator wires the recovery services around the given client,
// stores and session identity cell.
func NewOrchestrator(client *api.Client, registry *account.Registry,
	temporary *account.TemporaryStore, identity *account.IdentityCell,
	kits *sso.KitStore, logger *logging.Logger) *Orchestrator {
	if logger == nil {
		logger = logging.DefaultLogger()
	}
	return &Orchestrator{
		registry:  registry,
		temporary: temporary,
		submitter: NewSubmitter(client, registry, temporary, logger),
		fetcher:   NewFetcher(client, logger),
		unwrapper: NewUnwrapper(logger),
		finalizer: NewFinalizer(client, registry, temporary, identity, kits, logger),
		login:     auth.NewLoginService(client, logger),
		logger:    logger,
	}
}

// HelpRequest carries the identity fields needed to initiate a recovery
// attempt, together with the passphrase the user chose for the attempt.
type HelpRequest struct {
	Domain                   string
	UserID                   string
	Username                 string
	FirstName                string
	LastName                 string
	AuthenticationTokenToken string
	Passphrase               string
}

// Continue resumes an in-flight wizard from the persisted pending stub,
// seeding the worker's temporary account from it. Fails with
// ErrNoRecoveryInProgress when no stub exists for the user and with a
// ValidationError when the navigation context does not match the stub.
func (o *Orchestrator) Continue(ctx context.Context, workerID, userID, domain string) error {
	stub, err := o.registry.Get(account.TypeAccountRecovery, userID)
	if err != nil {
		if err == types.ErrAccountNotFound {
			return types.ErrNoRecoveryInProgress
		}
		return err
	}
	if stub.Domain != domain {
		return types.NewValidationError(msgStubDomainMismatch)
	}

	attempt, err := account.PreRecoveryStateFromStub(stub)
	if err != nil {
		return err
	}

	return o.temporary.Set(&account.TemporaryAccount{
		WorkerID: workerID,
		Request:  attempt,
	})
}

// VerifyPassphrase checks the supplied passphrase against the worker's
// in-flight attempt without committing anything: the ephemeral request key
// before recovery, the recovered user key after.
func (o *Orchestrator) VerifyPassphrase(ctx context.Context, workerID, passphrase string) error {
	ta, err := o.temporary.FindOrFail(workerID)
	if err != nil {
		return err
	}

	armored := ta.Request.RequestPrivateArmoredKey
	if ta.Recovered != nil {
		armored = ta.Recovered.UserPrivateArmoredKey
	}
	return o.login.VerifyPassphrase(armored, passphrase)
}

// RecoverAccount executes the recovery for the worker's in-flight attempt:
// fetch and validate the approved request, unwrap the escrowed key and
// finalize. The supplied passphrase unlocks the ephemeral request key and,
// being the passphrase chosen at recovery time, also locks the recovered
// key.
func (o *Orchestrator) RecoverAccount(ctx context.Context, workerID, passphrase string) error {
	ta, err := o.temporary.FindOrFail(workerID)
	if err != nil {
		return err
	}

	validated, err := o.fetcher.FindAndValidate(ctx, ta.Request)
	if err != nil {
		return err
	}

	recovered, err := o.unwrapper.Unwrap(validated.PrivateKey, validated.Response,
		ta.Request, passphrase, passphrase)
	if err != nil {
		return err
	}

	return o.finalizer.Finalize(ctx, ta, recovered, passphrase)
}

// RequestHelpCredentialsLost aborts any current attempt and initiates a new
// recovery request: a fresh ephemeral keypair is generated and locked under
// the chosen passphrase, the request is submitted and the pending stub
// replaces any prior one. Returns the server-assigned request id.
func (o *Orchestrator) RequestHelpCredentialsLost(ctx context.Context, workerID string, req *HelpRequest) (string, error) {
	keypair, err := pgp.GenerateKeyPair(
		req.FirstName+" "+req.LastName, req.Username, req.Passphrase)
	if err != nil {
		return "", err
	}

	ta := &account.TemporaryAccount{
		WorkerID: workerID,
		Request: account.PreRecoveryState{
			Domain:                   req.Domain,
			UserID:                   req.UserID,
			Username:                 req.Username,
			FirstName:                req.FirstName,
			LastName:                 req.LastName,
			AuthenticationTokenToken: req.AuthenticationTokenToken,
			RequestFingerprint:       keypair.Fingerprint,
			RequestPublicArmoredKey:  keypair.ArmoredPublic,
			RequestPrivateArmoredKey: keypair.ArmoredPrivate,
		},
	}
	if err := o.temporary.Set(ta); err != nil {
		return "", err
	}

	return o.submitter.Submit(ctx, workerID)
}

// SignIn authenticates the recovered user, delegating to the login
// subsystem. Fails with ErrRecoveryNotComplete before the attempt has been
// finalized. With rememberMe the passphrase is retained in the worker's
// session state for the rest of the wizard.
func (o *Orchestrator) SignIn(ctx context.Context, workerID, passphrase string, rememberMe bool) error {
	ta, err := o.temporary.FindOrFail(workerID)
	if err != nil {
		return err
	}
	if ta.Recovered == nil {
		return types.ErrRecoveryNotComplete
	}

	if err := o.login.Login(ctx, ta.Recovered.UserID,
		ta.Recovered.UserPrivateArmoredKey, passphrase); err != nil {
		return err
	}

	if rememberMe {
		ta.Passphrase = passphrase
		ta.RememberMe = true
		return o.temporary.Set(ta)
	}
	return nil
}
