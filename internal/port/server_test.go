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

package port

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jeremyhahn/go-teamvault/pkg/account"
	"github.com/jeremyhahn/go-teamvault/pkg/accountrecovery"
	"github.com/jeremyhahn/go-teamvault/pkg/api"
	"github.com/jeremyhahn/go-teamvault/pkg/sso"
	"github.com/jeremyhahn/go-teamvault/pkg/storage/memory"
	"github.com/jeremyhahn/go-teamvault/pkg/types"
)

func TestMapErrorToStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid request", ErrInvalidRequest, http.StatusBadRequest},
		{"validation", types.NewValidationError("v"), http.StatusBadRequest},
		{"cryptographic", types.NewCryptographicError("c", nil), http.StatusBadRequest},
		{"state", types.NewStateError("s"), http.StatusConflict},
		{"recovery not complete", types.ErrRecoveryNotComplete, http.StatusConflict},
		{"account not found", types.ErrAccountNotFound, http.StatusNotFound},
		{"no recovery in progress", types.ErrNoRecoveryInProgress, http.StatusNotFound},
		{"server error", &api.ServerError{StatusCode: 500, Message: "boom"}, http.StatusBadGateway},
		{"unknown", errors.New("anything else"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mapErrorToStatusCode(tt.err); got != tt.want {
				t.Errorf("mapErrorToStatusCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

// testServer builds a port server over real stores and a client pointed at
// an unreachable vault; commands that stop before any network call exercise
// the full local path.
func testServer(t *testing.T) (*Server, *account.Registry) {
	t.Helper()

	client, err := api.NewClient(&api.Config{BaseURL: "https://vault.invalid"})
	require.NoError(t, err)

	local := memory.New()
	registry := account.NewRegistry(local)
	temporary := account.NewTemporaryStore()
	t.Cleanup(func() { temporary.Close() })

	orchestrator := accountrecovery.NewOrchestrator(client, registry, temporary,
		account.NewIdentityCell(), sso.NewKitStore(local), nil)

	server, err := NewServer(&Config{Orchestrator: orchestrator})
	require.NoError(t, err)
	return server, registry
}

func postCommand(t *testing.T, handler http.Handler, path string, body interface{}) (*httptest.ResponseRecorder, Message) {
	t.Helper()

	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var msg Message
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&msg))
	return rec, msg
}

func TestNewServerRequiresOrchestrator(t *testing.T) {
	if _, err := NewServer(nil); err == nil {
		t.Error("NewServer(nil) should fail")
	}
	if _, err := NewServer(&Config{}); err == nil {
		t.Error("NewServer without orchestrator should fail")
	}
}

func TestHealth(t *testing.T) {
	server, _ := testServer(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/health", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var msg Message
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&msg))
	require.Equal(t, StatusSuccess, msg.Status)
}

func TestContinueNoStub(t *testing.T) {
	server, _ := testServer(t)

	rec, msg := postCommand(t, server.Handler(), "/v1/account-recovery/continue",
		map[string]interface{}{
			"id":        "corr-1",
			"worker_id": "tab-1",
			"user_id":   "f848277c-5398-58f8-a82a-72397af2d450",
			"domain":    "https://vault.example.com",
		})

	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, StatusError, msg.Status)
	require.Equal(t, "corr-1", msg.ID, "correlation id must round-trip")
	require.Equal(t, types.ErrNoRecoveryInProgress.Error(), msg.Error,
		"the error message is surfaced verbatim")
}

func TestContinueDomainMismatch(t *testing.T) {
	server, registry := testServer(t)

	stub := &account.Account{
		Type:                     account.TypeAccountRecovery,
		Domain:                   "https://vault.example.com",
		UserID:                   "f848277c-5398-58f8-a82a-72397af2d450",
		Username:                 "ada@example.com",
		AccountRecoveryRequestID: "d4c0e643-3967-443b-93b3-102d902c4510",
	}
	require.NoError(t, registry.Insert(stub))

	rec, msg := postCommand(t, server.Handler(), "/v1/account-recovery/continue",
		map[string]interface{}{
			"worker_id": "tab-1",
			"user_id":   stub.UserID,
			"domain":    "https://other.example.com",
		})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, StatusError, msg.Status)
	require.NotEmpty(t, msg.ID, "a correlation id is generated when absent")
}

func TestVerifyPassphraseStartedElsewhere(t *testing.T) {
	server, _ := testServer(t)

	rec, msg := postCommand(t, server.Handler(), "/v1/account-recovery/verify-passphrase",
		map[string]interface{}{
			"worker_id":  "tab-2",
			"passphrase": "anything",
		})

	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, account.MsgRecoveryStartedElsewhere, msg.Error)
}

func TestMissingRequiredFields(t *testing.T) {
	server, _ := testServer(t)

	tests := []struct {
		name string
		path string
		body map[string]interface{}
	}{
		{
			"continue without worker id",
			"/v1/account-recovery/continue",
			map[string]interface{}{"user_id": "u", "domain": "d"},
		},
		{
			"verify without passphrase",
			"/v1/account-recovery/verify-passphrase",
			map[string]interface{}{"worker_id": "tab-1"},
		},
		{
			"recover without passphrase",
			"/v1/account-recovery/recover-account",
			map[string]interface{}{"worker_id": "tab-1"},
		},
		{
			"request help without username",
			"/v1/account-recovery/request-help-credentials-lost",
			map[string]interface{}{
				"worker_id":  "tab-1",
				"user_id":    "u",
				"domain":     "d",
				"passphrase": "p",
			},
		},
		{
			"sign in without worker id",
			"/v1/account-recovery/sign-in",
			map[string]interface{}{"passphrase": "p"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, msg := postCommand(t, server.Handler(), tt.path, tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			require.Equal(t, StatusError, msg.Status)
			require.Equal(t, ErrInvalidRequest.Error(), msg.Error)
		})
	}
}

func TestMalformedBody(t *testing.T) {
	server, _ := testServer(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/account-recovery/continue",
		bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var msg Message
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&msg))
	require.Equal(t, StatusError, msg.Status)
	require.NotEmpty(t, msg.ID)
}
