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

package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// AuthenticationTokenDTO carries the token authorizing one recovery attempt.
type AuthenticationTokenDTO struct {
	Token string `json:"token"`
}

// AccountRecoveryRequestCreateDTO is the payload creating a server-side
// recovery request. ArmoredKey is the public half of the ephemeral request
// keypair.
type AccountRecoveryRequestCreateDTO struct {
	UserID              string                 `json:"user_id"`
	ArmoredKey          string                 `json:"armored_key"`
	Fingerprint         string                 `json:"fingerprint"`
	AuthenticationToken AuthenticationTokenDTO `json:"authentication_token"`
}

// AccountRecoveryPrivateKeyDTO is the escrowed private key bundled with an
// approved request: a symmetric PGP message wrapping the user's real private
// key, produced at enrollment time. Opaque to client and server alike.
type AccountRecoveryPrivateKeyDTO struct {
	ID   string `json:"id,omitempty"`
	Data string `json:"data"`
}

// AccountRecoveryResponseDTO is an organization-approved response envelope:
// a PGP message encrypted to the ephemeral request public key whose
// plaintext yields the secret unwrapping the escrowed private key.
type AccountRecoveryResponseDTO struct {
	ID     string `json:"id,omitempty"`
	Status string `json:"status,omitempty"`
	Data   string `json:"data"`
}

// AccountRecoveryRequestDTO is a server-side recovery request record.
// AccountRecoveryResponses is nil when the server did not include the
// collection, and an empty non-nil slice when it included an empty one;
// the validator distinguishes the two.
type AccountRecoveryRequestDTO struct {
	ID                        string                        `json:"id"`
	UserID                    string                        `json:"user_id"`
	Status                    string                        `json:"status,omitempty"`
	AccountRecoveryPrivateKey *AccountRecoveryPrivateKeyDTO `json:"account_recovery_private_key,omitempty"`
	AccountRecoveryResponses  []AccountRecoveryResponseDTO  `json:"account_recovery_responses,omitempty"`
}

// GPGKeyDTO carries an armored public key.
type GPGKeyDTO struct {
	ArmoredKey string `json:"armored_key"`
}

// CompleteRecoverDTO is the payload finalizing a recovery server-side.
type CompleteRecoverDTO struct {
	AuthenticationToken AuthenticationTokenDTO `json:"authentication_token"`
	GPGKey              GPGKeyDTO              `json:"gpgkey"`
}

// CreateAccountRecoveryRequest creates a recovery request on the server.
// The server cancels any other outstanding request for the same user.
func (c *Client) CreateAccountRecoveryRequest(ctx context.Context, dto *AccountRecoveryRequestCreateDTO) (*AccountRecoveryRequestDTO, error) {
	body, err := c.doRequest(ctx, http.MethodPost, "/account-recovery/requests.json", dto)
	if err != nil {
		return nil, err
	}

	var request AccountRecoveryRequestDTO
	if err := json.Unmarshal(body, &request); err != nil {
		return nil, fmt.Errorf("api: failed to decode account recovery request: %w", err)
	}
	return &request, nil
}

// FindAccountRecoveryRequest fetches a recovery request by id, scoped to the
// requesting user and authentication token, with the escrowed private key
// and the response collection contained.
func (c *Client) FindAccountRecoveryRequest(ctx context.Context, requestID, userID, token string) (*AccountRecoveryRequestDTO, error) {
	query := url.Values{}
	query.Set("user_id", userID)
	query.Set("authentication_token_token", token)
	query.Set("contain[account_recovery_private_key]", "1")
	query.Set("contain[account_recovery_responses]", "1")

	path := fmt.Sprintf("/account-recovery/requests/%s.json?%s", url.PathEscape(requestID), query.Encode())
	body, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var request AccountRecoveryRequestDTO
	if err := json.Unmarshal(body, &request); err != nil {
		return nil, fmt.Errorf("api: failed to decode account recovery request: %w", err)
	}
	return &request, nil
}

// CompleteRecover finalizes a recovery on the server. This must succeed
// before any local durable account record is created.
func (c *Client) CompleteRecover(ctx context.Context, userID string, dto *CompleteRecoverDTO) error {
	path := fmt.Sprintf("/setup/recover/complete/%s.json", url.PathEscape(userID))
	_, err := c.doRequest(ctx, http.MethodPost, path, dto)
	return err
}
