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

// Package auth implements passphrase verification and the challenge-based
// login against the vault server.
package auth

import (
	"context"

	"github.com/jeremyhahn/go-teamvault/pkg/api"
	"github.com/jeremyhahn/go-teamvault/pkg/crypto/pgp"
	"github.com/jeremyhahn/go-teamvault/pkg/logging"
)

// LoginService authenticates a user against the vault server by decrypting
// the server-issued challenge with the user's private key.
type LoginService struct {
	client *api.Client
	logger *logging.Logger
}

// NewLoginService creates a login service.
func NewLoginService(client *api.Client, logger *logging.Logger) *LoginService {
	if logger == nil {
		logger = logging.DefaultLogger()
	}
	return &LoginService{client: client, logger: logger}
}

// VerifyPassphrase checks that passphrase unlocks the armored private key.
// Nothing is committed; a wrong passphrase surfaces as a
// CryptographicError.
func (s *LoginService) VerifyPassphrase(armoredPrivateKey, passphrase string) error {
	key, err := pgp.UnlockArmoredKey(armoredPrivateKey, passphrase)
	if err != nil {
		return err
	}
	key.ClearPrivateParams()
	return nil
}

// Login fetches the login challenge for the user, decrypts it with the
// private key unlocked by passphrase and completes the login.
func (s *LoginService) Login(ctx context.Context, userID, armoredPrivateKey, passphrase string) error {
	key, err := pgp.UnlockArmoredKey(armoredPrivateKey, passphrase)
	if err != nil {
		return err
	}
	defer key.ClearPrivateParams()

	challenge, err := s.client.FetchVerifyChallenge(ctx, userID)
	if err != nil {
		return err
	}

	token, err := pgp.DecryptWithKey(challenge.Token, key)
	if err != nil {
		return err
	}

	if err := s.client.Login(ctx, &api.LoginDTO{UserID: userID, Token: string(token)}); err != nil {
		return err
	}

	s.logger.Info("user signed in", "user_id", userID)
	return nil
}
