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
	"github.com/jeremyhahn/go-teamvault/pkg/types"
)

// Validation messages for a fetched account recovery request, surfaced
// verbatim to the UI.
const (
	msgRequestIDMismatch = "The account recovery request id should match the request id associated to the account being recovered."
	msgMissingPrivateKey = "The account recovery request should have a private key."
	msgMissingResponses  = "The account recovery request should have a collection of responses."
	msgResponseCount     = "The account recovery request responses should contain exactly one response."
)

// ValidatedRequest is a fetched request that passed every integrity check:
// it matches the locally remembered request id, carries the escrowed
// private key and exactly one approved response.
type ValidatedRequest struct {
	ID         string
	PrivateKey *api.AccountRecoveryPrivateKeyDTO
	Response   *api.AccountRecoveryResponseDTO
}

// Fetcher retrieves an account recovery request from the server and
// enforces the integrity invariants that make it recoverable. No decryption
// is attempted before every check passes.
type Fetcher struct {
	client *api.Client
	logger *logging.Logger
}

// NewFetcher creates a request fetcher.
func NewFetcher(client *api.Client, logger *logging.Logger) *Fetcher {
	if logger == nil {
		logger = logging.DefaultLogger()
	}
	return &Fetcher{client: client, logger: logger}
}

// FindAndValidate fetches the request referenced by the recovery attempt
// and validates it. Checks run in order and the first violation fails with
// a descriptive ValidationError:
//
//  1. the fetched id matches the locally remembered request id
//  2. the escrowed private key is present
//  3. the response collection is present
//  4. the response collection contains exactly one response
//
// More than one response is an error, not a selection problem; there is no
// latest-wins policy.
func (f *Fetcher) FindAndValidate(ctx context.Context, attempt account.PreRecoveryState) (*ValidatedRequest, error) {
	fetched, err := f.client.FindAccountRecoveryRequest(ctx,
		attempt.AccountRecoveryRequestID, attempt.UserID, attempt.AuthenticationTokenToken)
	if err != nil {
		return nil, err
	}

	if err := validateRequestDTO(fetched); err != nil {
		return nil, err
	}

	if fetched.ID != attempt.AccountRecoveryRequestID {
		return nil, types.NewValidationError(msgRequestIDMismatch)
	}
	if fetched.AccountRecoveryPrivateKey == nil {
		return nil, types.NewValidationError(msgMissingPrivateKey)
	}
	if fetched.AccountRecoveryResponses == nil {
		return nil, types.NewValidationError(msgMissingResponses)
	}
	if len(fetched.AccountRecoveryResponses) != 1 {
		return nil, types.NewValidationError(msgResponseCount)
	}

	f.logger.Debug("account recovery request validated",
		"request_id", fetched.ID, "user_id", fetched.UserID)

	return &ValidatedRequest{
		ID:         fetched.ID,
		PrivateKey: fetched.AccountRecoveryPrivateKey,
		Response:   &fetched.AccountRecoveryResponses[0],
	}, nil
}
