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
)

// Submitter creates a server-side recovery request from in-flight wizard
// state and records the pending stub locally. Once submitted, the durable
// stub alone represents the awaiting-approval attempt and the temporary
// entry is dropped.
type Submitter struct {
	client    *api.Client
	registry  *account.Registry
	temporary *account.TemporaryStore
	logger    *logging.Logger
}

// NewSubmitter creates a recovery request submitter.
func NewSubmitter(client *api.Client, registry *account.Registry,
	temporary *account.TemporaryStore, logger *logging.Logger) *Submitter {
	if logger == nil {
		logger = logging.DefaultLogger()
	}
	return &Submitter{
		client:    client,
		registry:  registry,
		temporary: temporary,
		logger:    logger,
	}
}

// Submit creates the recovery request on the server and persists the
// pending stub. Any prior stub for the user is deleted before the new one
// is inserted; the delete-then-insert ordering keeps the registry free of
// duplicate stubs even if the insert fails. The server cancels other
// outstanding requests for the user on its side.
//
// Network and API failures propagate unmodified and leave the registry
// untouched. Returns the server-assigned request id.
func (s *Submitter) Submit(ctx context.Context, workerID string) (string, error) {
	ta, err := s.temporary.FindOrFail(workerID)
	if err != nil {
		return "", err
	}

	created, err := s.client.CreateAccountRecoveryRequest(ctx, &api.AccountRecoveryRequestCreateDTO{
		UserID:      ta.Request.UserID,
		ArmoredKey:  ta.Request.RequestPublicArmoredKey,
		Fingerprint: ta.Request.RequestFingerprint,
		AuthenticationToken: api.AuthenticationTokenDTO{
			Token: ta.Request.AuthenticationTokenToken,
		},
	})
	if err != nil {
		return "", err
	}

	stub := ta.Request.Stub(created.ID)

	if err := s.registry.DeleteByUser(account.TypeAccountRecovery, stub.UserID); err != nil {
		return "", err
	}
	if err := s.registry.Insert(stub); err != nil {
		return "", err
	}

	// The durable stub now represents the attempt; the wizard state for
	// this worker is no longer needed.
	if err := s.temporary.Remove(workerID); err != nil {
		return "", err
	}

	s.logger.Info("account recovery request submitted",
		"request_id", created.ID, "user_id", stub.UserID)

	return created.ID, nil
}
