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

package accountrecovery

import (
	"context"

	"github.com/jeremyhahn/go-teamvault/pkg/account"
	"github.com/jeremyhahn/go-teamvault/pkg/api"
	"github.com/jeremyhahn/go-teamvault/pkg/logging"
	"github.com/jeremyhahn/go-teamvault/pkg/sso"
)

// Finalizer commits a recovered identity. Its steps are strictly
// sequential and non-compensating: a failure stops the chain and earlier
// committed effects are not rolled back. In particular, if the server
// completion succeeds and a later local step fails, the server considers
// the recovery complete while no local account exists yet; resuming that
// window is a known gap.
type Finalizer struct {
	client    *api.Client
	registry  *account.Registry
	temporary *account.TemporaryStore
	identity  *account.IdentityCell
	kits      *sso.KitStore
	logger    *logging.Logger
}

// NewFinalizer creates a recovery finalizer.
func NewFinalizer(client *api.Client, registry *account.Registry,
	temporary *account.TemporaryStore, identity *account.IdentityCell,
	kits *sso.KitStore, logger *logging.Logger) *Finalizer {
	if logger == nil {
		logger = logging.DefaultLogger()
	}
	return &Finalizer{
		client:    client,
		registry:  registry,
		temporary: temporary,
		identity:  identity,
		kits:      kits,
		logger:    logger,
	}
}

// Finalize commits the recovered identity:
//
//  1. promote the attempt snapshot to a post-recovery snapshot carrying the
//     recovered key material;
//  2. complete the recovery server-side — this must succeed before any
//     local durable record is created;
//  3. insert the recovered account into the durable registry;
//  4. swap the worker's active session identity to the recovered one —
//     there is no session restart primitive, so the worker keeps operating
//     against the swapped identity;
//  5. flush the client-side SSO kit, then regenerate one bound to the new
//     passphrase; the server-side registration is left untouched since only
//     an authenticated user could request its deletion;
//  6. persist the updated wizard state so later wizard steps (sign-in) can
//     read the recovered snapshot.
func (f *Finalizer) Finalize(ctx context.Context, ta *account.TemporaryAccount,
	recovered *RecoveredKey, newPassphrase string) error {

	post := ta.Request.Promote(recovered.Fingerprint,
		recovered.ArmoredPublic, recovered.ArmoredPrivate)
	ta.Recovered = &post
	ta.Passphrase = newPassphrase

	err := f.client.CompleteRecover(ctx, post.UserID, &api.CompleteRecoverDTO{
		AuthenticationToken: api.AuthenticationTokenDTO{
			Token: ta.Request.AuthenticationTokenToken,
		},
		GPGKey: api.GPGKeyDTO{ArmoredKey: post.UserPublicArmoredKey},
	})
	if err != nil {
		return err
	}

	if err := f.registry.Insert(post.Account()); err != nil {
		return err
	}

	f.identity.Swap(&account.Identity{
		Domain:            post.Domain,
		UserID:            post.UserID,
		Fingerprint:       post.UserKeyFingerprint,
		PublicArmoredKey:  post.UserPublicArmoredKey,
		PrivateArmoredKey: post.UserPrivateArmoredKey,
	})

	// Flush strictly before regenerating so a partially valid kit is
	// never observed.
	if err := f.kits.Flush(); err != nil {
		return err
	}
	if _, _, err := f.kits.Generate(newPassphrase); err != nil {
		return err
	}

	if err := f.temporary.Set(ta); err != nil {
		return err
	}

	f.logger.Info("account recovery finalized",
		"user_id", post.UserID, "fingerprint", post.UserKeyFingerprint)

	return nil
}
