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

// VerifyChallengeDTO is the server-issued login challenge: an armored
// message encrypted to the user's public key.
type VerifyChallengeDTO struct {
	Token string `json:"token"`
}

// LoginDTO is the payload completing a login with the decrypted challenge.
type LoginDTO struct {
	UserID string `json:"user_id"`
	Token  string `json:"token"`
}

// FetchVerifyChallenge retrieves the login challenge for a user.
func (c *Client) FetchVerifyChallenge(ctx context.Context, userID string) (*VerifyChallengeDTO, error) {
	path := fmt.Sprintf("/auth/verify/%s.json", url.PathEscape(userID))
	body, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var challenge VerifyChallengeDTO
	if err := json.Unmarshal(body, &challenge); err != nil {
		return nil, fmt.Errorf("api: failed to decode verify challenge: %w", err)
	}
	return &challenge, nil
}

// Login completes a login with the decrypted challenge token.
func (c *Client) Login(ctx context.Context, dto *LoginDTO) error {
	_, err := c.doRequest(ctx, http.MethodPost, "/auth/login.json", dto)
	return err
}
