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
	"encoding/json"

	"github.com/jeremyhahn/go-teamvault/pkg/account"
	"github.com/jeremyhahn/go-teamvault/pkg/api"
	"github.com/jeremyhahn/go-teamvault/pkg/crypto/pgp"
	"github.com/jeremyhahn/go-teamvault/pkg/logging"
	"github.com/jeremyhahn/go-teamvault/pkg/types"
)

const (
	msgResponseDomainMismatch = "The domain contained in the account recovery response data does not match the account being recovered."
	msgResponseUserMismatch   = "The user id contained in the account recovery response data does not match the account being recovered."
	msgEscrowNotPrivate       = "The escrowed key should be a private key."
	msgEscrowLocked           = "The escrowed private key should not be encrypted with a passphrase."
)

// responseData is the plaintext of an approved response envelope.
type responseData struct {
	Type                  string `json:"type"`
	Version               string `json:"version,omitempty"`
	Domain                string `json:"domain"`
	PrivateKeyUserID      string `json:"private_key_user_id"`
	PrivateKeyFingerprint string `json:"private_key_fingerprint,omitempty"`
	PrivateKeySecret      string `json:"private_key_secret"`
}

// RecoveredKey is the outcome of a successful escrow unwrap: the user's
// real keypair, with the private half re-locked under the passphrase chosen
// at recovery time. The fingerprint is recomputed from the decrypted
// material, never read from a cached value.
type RecoveredKey struct {
	Fingerprint    string
	ArmoredPublic  string
	ArmoredPrivate string
}

// Unwrapper runs the three-stage decrypt chain that recovers the original
// private key from an approved request. Each stage's output is the next
// stage's key material; a failure at any stage surfaces as a
// CryptographicError and nothing is retried.
type Unwrapper struct {
	logger *logging.Logger
}

// NewUnwrapper creates an escrow unwrapper.
func NewUnwrapper(logger *logging.Logger) *Unwrapper {
	if logger == nil {
		logger = logging.DefaultLogger()
	}
	return &Unwrapper{logger: logger}
}

// Unwrap recovers the original private key:
//
//  1. the ephemeral request private key is unlocked with requestPassphrase,
//     the passphrase supplied to this call;
//  2. the response envelope is decrypted with the unlocked request key and
//     its plaintext checked against the (userID, domain) of the attempt,
//     yielding the private key secret;
//  3. the escrowed private key is decrypted symmetrically with that secret
//     and asserted to be an unlocked private key.
//
// The recovered key is then re-locked under newPassphrase, the passphrase
// the user is choosing now; the ephemeral request passphrase is never used
// for re-encryption.
func (u *Unwrapper) Unwrap(escrowed *api.AccountRecoveryPrivateKeyDTO,
	response *api.AccountRecoveryResponseDTO, attempt account.PreRecoveryState,
	requestPassphrase, newPassphrase string) (*RecoveredKey, error) {

	// Stage 1: unlock the ephemeral request private key.
	requestKey, err := pgp.UnlockArmoredKey(attempt.RequestPrivateArmoredKey, requestPassphrase)
	if err != nil {
		return nil, err
	}
	defer requestKey.ClearPrivateParams()

	// Stage 2: decrypt the response envelope and extract the secret.
	plaintext, err := pgp.DecryptWithKey(response.Data, requestKey)
	if err != nil {
		return nil, err
	}

	var data responseData
	if err := json.Unmarshal(plaintext, &data); err != nil {
		return nil, types.NewCryptographicError("malformed account recovery response data", err)
	}
	if err := validateResponseData(&data); err != nil {
		return nil, err
	}
	if data.Domain != attempt.Domain {
		return nil, types.NewValidationError(msgResponseDomainMismatch)
	}
	if data.PrivateKeyUserID != attempt.UserID {
		return nil, types.NewValidationError(msgResponseUserMismatch)
	}

	// Stage 3: decrypt the escrow blob with the secret and read the key.
	armoredKey, err := pgp.DecryptWithPassword(escrowed.Data, []byte(data.PrivateKeySecret))
	if err != nil {
		return nil, err
	}

	recoveredKey, err := pgp.ReadArmoredKey(string(armoredKey))
	if err != nil {
		return nil, err
	}
	defer recoveredKey.ClearPrivateParams()

	if !recoveredKey.IsPrivate() {
		return nil, types.NewCryptographicError(msgEscrowNotPrivate, nil)
	}
	locked, err := recoveredKey.IsLocked()
	if err != nil {
		return nil, types.NewCryptographicError("failed to inspect recovered key lock state", err)
	}
	if locked {
		// The enrollment scheme escrows the decrypted key. A key still
		// locked under the forgotten passphrase cannot be re-encrypted.
		return nil, types.NewCryptographicError(msgEscrowLocked, nil)
	}

	// Re-lock under the passphrase chosen at recovery time.
	armoredPrivate, err := pgp.LockKey(recoveredKey, newPassphrase)
	if err != nil {
		return nil, err
	}

	armoredPublic, err := pgp.ArmoredPublic(recoveredKey)
	if err != nil {
		return nil, err
	}

	fingerprint := pgp.Fingerprint(recoveredKey)
	u.logger.Debug("escrowed private key unwrapped", "fingerprint", fingerprint)

	return &RecoveredKey{
		Fingerprint:    fingerprint,
		ArmoredPublic:  armoredPublic,
		ArmoredPrivate: armoredPrivate,
	}, nil
}
