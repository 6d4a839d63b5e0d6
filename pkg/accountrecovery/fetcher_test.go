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
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jeremyhahn/go-teamvault/pkg/api"
	"github.com/jeremyhahn/go-teamvault/pkg/types"
)

// fetcherServer serves the find-request endpoint with a fixed body.
func fetcherServer(t *testing.T, body interface{}) *api.Client {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, testUserID, r.URL.Query().Get("user_id"))
		require.Equal(t, testToken, r.URL.Query().Get("authentication_token_token"))
		require.Equal(t, "1", r.URL.Query().Get("contain[account_recovery_private_key]"))
		require.Equal(t, "1", r.URL.Query().Get("contain[account_recovery_responses]"))
		writeEnvelope(w, http.StatusOK, body)
	}))
	t.Cleanup(server.Close)

	client, err := api.NewClient(&api.Config{BaseURL: server.URL})
	require.NoError(t, err)
	return client
}

func validRequestBody() map[string]interface{} {
	return map[string]interface{}{
		"id":      testRequestID,
		"user_id": testUserID,
		"status":  "approved",
		"account_recovery_private_key": map[string]interface{}{
			"id":   "0e292a47-5398-58f8-a82a-72397af2d450",
			"data": "-----BEGIN PGP MESSAGE-----",
		},
		"account_recovery_responses": []interface{}{
			map[string]interface{}{
				"id":     "2f3b8a01-5398-58f8-a82a-72397af2d450",
				"status": "approved",
				"data":   "-----BEGIN PGP MESSAGE-----",
			},
		},
	}
}

func TestFindAndValidate(t *testing.T) {
	fix := testFixtures(t)
	client := fetcherServer(t, validRequestBody())
	fetcher := NewFetcher(client, nil)

	validated, err := fetcher.FindAndValidate(context.Background(), fix.testAttempt())
	require.NoError(t, err)

	require.Equal(t, testRequestID, validated.ID)
	require.NotNil(t, validated.PrivateKey)
	require.NotNil(t, validated.Response)
	require.Equal(t, "-----BEGIN PGP MESSAGE-----", validated.Response.Data)
}

func TestFindAndValidateFailures(t *testing.T) {
	fix := testFixtures(t)

	tests := []struct {
		name    string
		mutate  func(map[string]interface{})
		wantMsg string
	}{
		{
			"request id mismatch",
			func(body map[string]interface{}) {
				body["id"] = "99999999-9999-4999-8999-999999999999"
			},
			msgRequestIDMismatch,
		},
		{
			"missing private key",
			func(body map[string]interface{}) {
				delete(body, "account_recovery_private_key")
			},
			msgMissingPrivateKey,
		},
		{
			"missing response collection",
			func(body map[string]interface{}) {
				delete(body, "account_recovery_responses")
			},
			msgMissingResponses,
		},
		{
			"empty response collection",
			func(body map[string]interface{}) {
				body["account_recovery_responses"] = []interface{}{}
			},
			msgResponseCount,
		},
		{
			"more than one response",
			func(body map[string]interface{}) {
				body["account_recovery_responses"] = []interface{}{
					map[string]interface{}{"data": "first"},
					map[string]interface{}{"data": "second"},
				}
			},
			msgResponseCount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := validRequestBody()
			tt.mutate(body)

			client := fetcherServer(t, body)
			fetcher := NewFetcher(client, nil)

			_, err := fetcher.FindAndValidate(context.Background(), fix.testAttempt())
			require.Error(t, err)
			require.True(t, types.IsValidationError(err),
				"want ValidationError, got %T", err)
			require.Equal(t, tt.wantMsg, err.Error())
		})
	}
}

func TestFindAndValidateSchemaViolation(t *testing.T) {
	fix := testFixtures(t)

	body := validRequestBody()
	body["id"] = "not-a-uuid"

	client := fetcherServer(t, body)
	fetcher := NewFetcher(client, nil)

	_, err := fetcher.FindAndValidate(context.Background(), fix.testAttempt())
	require.Error(t, err)
	require.True(t, types.IsValidationError(err))
	require.Contains(t, err.Error(), "Could not validate entity AccountRecoveryRequest.")
}

func TestFindAndValidateServerError(t *testing.T) {
	fix := testFixtures(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusNotFound, nil)
	}))
	t.Cleanup(server.Close)

	client, err := api.NewClient(&api.Config{BaseURL: server.URL})
	require.NoError(t, err)

	fetcher := NewFetcher(client, nil)
	_, err = fetcher.FindAndValidate(context.Background(), fix.testAttempt())

	var serverErr *api.ServerError
	require.ErrorAs(t, err, &serverErr)
	require.Equal(t, http.StatusNotFound, serverErr.StatusCode)
}
