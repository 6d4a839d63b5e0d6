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

// Package pgp wraps the gopenpgp primitives used by the account recovery
// protocol: armored key parsing, private key lock/unlock, asymmetric and
// password-based (symmetric) message encryption and decryption, and key
// fingerprinting. Every failure is reported as a types.CryptographicError
// so callers can surface it verbatim at the port boundary.
package pgp

import (
	"strings"

	"github.com/ProtonMail/gopenpgp/v3/crypto"
	"github.com/ProtonMail/gopenpgp/v3/profile"

	"github.com/jeremyhahn/go-teamvault/pkg/types"
)

// handle returns the PGP handle used for all operations. The RFC 4880
// profile keeps generated keys and messages compatible with every OpenPGP
// implementation the server side may run.
func handle() *crypto.PGPHandle {
	return crypto.PGPWithProfile(profile.RFC4880())
}

// KeyPair holds the armored halves of a generated keypair together with
// the uppercase hex fingerprint of its primary key.
type KeyPair struct {
	Fingerprint    string
	ArmoredPublic  string
	ArmoredPrivate string
}

// GenerateKeyPair generates a new keypair for the given identity and locks
// the private key under passphrase. The returned armored private key cannot
// be used without unlocking it first.
func GenerateKeyPair(name, email, passphrase string) (*KeyPair, error) {
	pgp := handle()

	key, err := pgp.KeyGeneration().
		AddUserId(name, email).
		New().
		GenerateKey()
	if err != nil {
		return nil, types.NewCryptographicError("failed to generate keypair", err)
	}
	defer key.ClearPrivateParams()

	locked, err := pgp.LockKey(key, []byte(passphrase))
	if err != nil {
		return nil, types.NewCryptographicError("failed to lock generated key", err)
	}

	armoredPrivate, err := locked.Armor()
	if err != nil {
		return nil, types.NewCryptographicError("failed to armor private key", err)
	}

	armoredPublic, err := ArmoredPublic(key)
	if err != nil {
		return nil, err
	}

	return &KeyPair{
		Fingerprint:    Fingerprint(key),
		ArmoredPublic:  armoredPublic,
		ArmoredPrivate: armoredPrivate,
	}, nil
}

// ReadArmoredKey parses an ASCII-armored key.
func ReadArmoredKey(armored string) (*crypto.Key, error) {
	key, err := crypto.NewKeyFromArmored(armored)
	if err != nil {
		return nil, types.NewCryptographicError("failed to parse armored key", err)
	}
	return key, nil
}

// ReadArmoredPrivateKey parses an ASCII-armored key and asserts that it
// carries private key material.
func ReadArmoredPrivateKey(armored string) (*crypto.Key, error) {
	key, err := ReadArmoredKey(armored)
	if err != nil {
		return nil, err
	}
	if !key.IsPrivate() {
		return nil, types.NewCryptographicError("the key is not a private key", nil)
	}
	return key, nil
}

// UnlockArmoredKey parses an armored private key and decrypts its secret
// material with passphrase.
func UnlockArmoredKey(armored, passphrase string) (*crypto.Key, error) {
	key, err := ReadArmoredPrivateKey(armored)
	if err != nil {
		return nil, err
	}
	return UnlockKey(key, passphrase)
}

// UnlockKey decrypts the secret material of a private key with passphrase.
// Keys that are already unlocked are returned as-is.
func UnlockKey(key *crypto.Key, passphrase string) (*crypto.Key, error) {
	locked, err := key.IsLocked()
	if err != nil {
		return nil, types.NewCryptographicError("failed to inspect key lock state", err)
	}
	if !locked {
		return key, nil
	}

	unlocked, err := key.Unlock([]byte(passphrase))
	if err != nil {
		return nil, types.NewCryptographicError("failed to decrypt the private key", err)
	}
	return unlocked, nil
}

// LockKey re-encrypts the secret material of an unlocked private key under
// passphrase and returns the armored result.
func LockKey(key *crypto.Key, passphrase string) (string, error) {
	locked, err := handle().LockKey(key, []byte(passphrase))
	if err != nil {
		return "", types.NewCryptographicError("failed to encrypt the private key", err)
	}

	armored, err := locked.Armor()
	if err != nil {
		return "", types.NewCryptographicError("failed to armor the private key", err)
	}
	return armored, nil
}

// ArmoredPublic returns the armored public half of a key.
func ArmoredPublic(key *crypto.Key) (string, error) {
	public, err := key.ToPublic()
	if err != nil {
		return "", types.NewCryptographicError("failed to extract public key", err)
	}

	armored, err := public.Armor()
	if err != nil {
		return "", types.NewCryptographicError("failed to armor public key", err)
	}
	return armored, nil
}

// Fingerprint returns the uppercase hex fingerprint of a key's primary key.
// Always recomputed from the key material, never read from a cached value.
func Fingerprint(key *crypto.Key) string {
	return strings.ToUpper(key.GetFingerprint())
}

// EncryptWithKey encrypts data to the given public key and returns the
// armored message.
func EncryptWithKey(data []byte, recipient *crypto.Key) (string, error) {
	encHandle, err := handle().Encryption().Recipient(recipient).New()
	if err != nil {
		return "", types.NewCryptographicError("failed to create encryption handle", err)
	}

	message, err := encHandle.Encrypt(data)
	if err != nil {
		return "", types.NewCryptographicError("failed to encrypt message", err)
	}

	armored, err := message.Armor()
	if err != nil {
		return "", types.NewCryptographicError("failed to armor message", err)
	}
	return armored, nil
}

// DecryptWithKey decrypts an armored message with an unlocked private key.
func DecryptWithKey(armoredMessage string, key *crypto.Key) ([]byte, error) {
	decHandle, err := handle().Decryption().DecryptionKey(key).New()
	if err != nil {
		return nil, types.NewCryptographicError("failed to create decryption handle", err)
	}
	defer decHandle.ClearPrivateParams()

	result, err := decHandle.Decrypt([]byte(armoredMessage), crypto.Armor)
	if err != nil {
		return nil, types.NewCryptographicError("failed to decrypt message", err)
	}
	return result.Bytes(), nil
}

// EncryptWithPassword symmetrically encrypts data under password and returns
// the armored message.
func EncryptWithPassword(data, password []byte) (string, error) {
	encHandle, err := handle().Encryption().Password(password).New()
	if err != nil {
		return "", types.NewCryptographicError("failed to create encryption handle", err)
	}

	message, err := encHandle.Encrypt(data)
	if err != nil {
		return "", types.NewCryptographicError("failed to encrypt message", err)
	}

	armored, err := message.Armor()
	if err != nil {
		return "", types.NewCryptographicError("failed to armor message", err)
	}
	return armored, nil
}

// DecryptWithPassword decrypts an armored symmetric message with password.
func DecryptWithPassword(armoredMessage string, password []byte) ([]byte, error) {
	decHandle, err := handle().Decryption().Password(password).New()
	if err != nil {
		return nil, types.NewCryptographicError("failed to create decryption handle", err)
	}

	result, err := decHandle.Decrypt([]byte(armoredMessage), crypto.Armor)
	if err != nil {
		return nil, types.NewCryptographicError("failed to decrypt message", err)
	}
	return result.Bytes(), nil
}
