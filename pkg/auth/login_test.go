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

package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jeremyhahn/go-teamvault/pkg/api"
	"github.com/jeremyhahn/go-teamvault/pkg/crypto/pgp"
	"github.com/jeremyhahn/go-teamvault/pkg/types"
)

const testPassphrase = "correct horse battery staple"

var (
	keypairOnce sync.Once
	keypair     *pgp.KeyPair
	keypairErr  error
)

func testKeyPair(t *testing.T) *pgp.KeyPair {
	t.Helper()
	keypairOnce.Do(func() {
		keypair, keypairErr = pgp.GenerateKeyPair("Ada Lovelace", "ada@example.com", testPassphrase)
	})
	if keypairErr != nil {
		t.Fatalf("GenerateKeyPair failed: %v", keypairErr)
	}
	return keypair
}

func TestVerifyPassphrase(t *testing.T) {
	kp := testKeyPair(t)
	service := NewLoginService(nil, nil)

	if err := service.VerifyPassphrase(kp.ArmoredPrivate, testPassphrase); err != nil {
		t.Errorf("VerifyPassphrase with correct passphrase failed: %v", err)
	}

	err := service.VerifyPassphrase(kp.ArmoredPrivate, "wrong")
	if !types.IsCryptographicError(err) {
		t.Errorf("VerifyPassphrase with wrong passphrase returned %T, want CryptographicError", err)
	}

	err = service.VerifyPassphrase("not a key", testPassphrase)
	if !types.IsCryptographicError(err) {
		t.Errorf("VerifyPassphrase with garbage key returned %T, want CryptographicError", err)
	}
}

func TestLogin(t *testing.T) {
	kp := testKeyPair(t)

	var loggedIn bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/auth/verify/user-1.json":
			recipient, err := pgp.ReadArmoredKey(kp.ArmoredPublic)
			require.NoError(t, err)
			challenge, err := pgp.EncryptWithKey([]byte("challenge-token"), recipient)
			require.NoError(t, err)

			json.NewEncoder(w).Encode(map[string]interface{}{
				"header": map[string]interface{}{"status": "success", "message": "OK"},
				"body":   map[string]interface{}{"token": challenge},
			})

		case r.Method == http.MethodPost && r.URL.Path == "/auth/login.json":
			var dto api.LoginDTO
			require.NoError(t, json.NewDecoder(r.Body).Decode(&dto))
			require.Equal(t, "user-1", dto.UserID)
			require.Equal(t, "challenge-token", dto.Token)
			loggedIn = true

			json.NewEncoder(w).Encode(map[string]interface{}{
				"header": map[string]interface{}{"status": "success", "message": "OK"},
				"body":   nil,
			})

		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
	}))
	defer server.Close()

	client, err := api.NewClient(&api.Config{BaseURL: server.URL})
	require.NoError(t, err)

	service := NewLoginService(client, nil)
	require.NoError(t, service.Login(context.Background(), "user-1", kp.ArmoredPrivate, testPassphrase))
	require.True(t, loggedIn)
}

func TestLoginWrongPassphraseSkipsNetwork(t *testing.T) {
	kp := testKeyPair(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request should reach the server")
	}))
	defer server.Close()

	client, err := api.NewClient(&api.Config{BaseURL: server.URL})
	require.NoError(t, err)

	service := NewLoginService(client, nil)
	err = service.Login(context.Background(), "user-1", kp.ArmoredPrivate, "wrong")
	require.True(t, types.IsCryptographicError(err), "want CryptographicError, got %T", err)
}
