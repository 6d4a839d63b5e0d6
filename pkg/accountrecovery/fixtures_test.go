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
	"net/http"
	"sync"
	"testing"

	"github.com/jeremyhahn/go-teamvault/pkg/account"
	"github.com/jeremyhahn/go-teamvault/pkg/crypto/pgp"
)

// Fixture identity used across the package tests.
const (
	testDomain     = "https://vault.example.com"
	testUserID     = "f848277c-5398-58f8-a82a-72397af2d450"
	testRequestID  = "d4c0e643-3967-443b-93b3-102d902c4510"
	testUsername   = "ada@example.com"
	testToken      = "6af8hc29-5398-58f8-a82a-72397af2d450"
	testPassphrase = "correct horse battery staple"
	testSecret     = "f7cf1b600f9ea9176c4044b5749a7e2a"
)

type fixtures struct {
	// the user's real keypair; escrowed during enrollment
	userKey *pgp.KeyPair
	// the unlocked armored private half, what the escrow blob wraps
	userKeyUnlocked string
	// the ephemeral request keypair of the recovery attempt
	requestKey *pgp.KeyPair
}

var (
	fixturesOnce sync.Once
	sharedFix    *fixtures
	fixturesErr  error
)

// testFixtures generates the two keypairs once for the whole package.
func testFixtures(t *testing.T) *fixtures {
	t.Helper()
	fixturesOnce.Do(func() {
		userKey, err := pgp.GenerateKeyPair("Ada Lovelace", testUsername, testPassphrase)
		if err != nil {
			fixturesErr = err
			return
		}

		unlocked, err := pgp.UnlockArmoredKey(userKey.ArmoredPrivate, testPassphrase)
		if err != nil {
			fixturesErr = err
			return
		}
		unlockedArmored, err := unlocked.Armor()
		if err != nil {
			fixturesErr = err
			return
		}

		requestKey, err := pgp.GenerateKeyPair("Ada Lovelace", testUsername, testPassphrase)
		if err != nil {
			fixturesErr = err
			return
		}

		sharedFix = &fixtures{
			userKey:         userKey,
			userKeyUnlocked: unlockedArmored,
			requestKey:      requestKey,
		}
	})
	if fixturesErr != nil {
		t.Fatalf("fixture key generation failed: %v", fixturesErr)
	}
	return sharedFix
}

// testAttempt builds the attempt snapshot matching the fixtures.
func (f *fixtures) testAttempt() account.PreRecoveryState {
	return account.PreRecoveryState{
		Domain:                   testDomain,
		UserID:                   testUserID,
		Username:                 testUsername,
		FirstName:                "Ada",
		LastName:                 "Lovelace",
		AuthenticationTokenToken: testToken,
		AccountRecoveryRequestID: testRequestID,
		RequestFingerprint:       f.requestKey.Fingerprint,
		RequestPublicArmoredKey:  f.requestKey.ArmoredPublic,
		RequestPrivateArmoredKey: f.requestKey.ArmoredPrivate,
	}
}

// buildEscrow wraps armored key material symmetrically under secret, the way
// enrollment produces the escrow blob.
func buildEscrow(t *testing.T, armoredKey, secret string) string {
	t.Helper()
	escrow, err := pgp.EncryptWithPassword([]byte(armoredKey), []byte(secret))
	if err != nil {
		t.Fatalf("failed to build escrow blob: %v", err)
	}
	return escrow
}

// buildResponse encrypts an approved response plaintext to the request
// public key, the way an organization approval produces the envelope.
func buildResponse(t *testing.T, requestPublicArmored string, plaintext map[string]interface{}) string {
	t.Helper()

	raw, err := json.Marshal(plaintext)
	if err != nil {
		t.Fatalf("failed to encode response plaintext: %v", err)
	}

	recipient, err := pgp.ReadArmoredKey(requestPublicArmored)
	if err != nil {
		t.Fatalf("failed to parse request public key: %v", err)
	}

	envelope, err := pgp.EncryptWithKey(raw, recipient)
	if err != nil {
		t.Fatalf("failed to encrypt response envelope: %v", err)
	}
	return envelope
}

// responsePlaintext returns a valid decrypted response document; tests
// mutate fields to exercise the scope checks.
func responsePlaintext() map[string]interface{} {
	return map[string]interface{}{
		"type":                "account-recovery-private-key-password-decrypted-data",
		"version":             "v1",
		"domain":              testDomain,
		"private_key_user_id": testUserID,
		"private_key_secret":  testSecret,
	}
}

// writeEnvelope writes body wrapped in the server response envelope.
func writeEnvelope(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	message := "OK"
	statusText := "success"
	if status < 200 || status >= 300 {
		statusText = "error"
		message = http.StatusText(status)
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"header": map[string]interface{}{
			"status":  statusText,
			"message": message,
		},
		"body": body,
	})
}
