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

package account

import (
	"encoding/json"
	"fmt"

	"github.com/jeremyhahn/go-teamvault/pkg/storage"
	"github.com/jeremyhahn/go-teamvault/pkg/storage/memory"
	"github.com/jeremyhahn/go-teamvault/pkg/types"
)

// MsgRecoveryStartedElsewhere is the message surfaced when a worker asks
// for wizard state it does not own.
const MsgRecoveryStartedElsewhere = "You have already started the process on another tab."

// temporaryKeyPrefix namespaces temporary accounts in the session tier.
const temporaryKeyPrefix = "workers/"

// TemporaryAccount is the in-flight wizard state of one recovery attempt,
// keyed by the worker (tab/port) that owns it. The attempt starts as a
// PreRecoveryState snapshot; once the escrow is unwrapped a PostRecoveryState
// snapshot is attached alongside it. Later wizard steps (sign-in) read from
// the recovered snapshot.
type TemporaryAccount struct {
	WorkerID   string             `json:"worker_id"`
	Request    PreRecoveryState   `json:"request"`
	Recovered  *PostRecoveryState `json:"recovered,omitempty"`
	Passphrase string             `json:"passphrase,omitempty"`
	RememberMe bool               `json:"remember_me,omitempty"`
}

// TemporaryStore holds TemporaryAccount entries in the session-scoped tier.
// Entries are partitioned by worker id so no two tabs share state, and the
// whole tier vanishes when the service session ends.
type TemporaryStore struct {
	backend storage.Backend
}

// NewTemporaryStore creates a session-scoped temporary account store.
func NewTemporaryStore() *TemporaryStore {
	return &TemporaryStore{backend: memory.New()}
}

// Get retrieves the temporary account for a worker.
// Returns storage.ErrNotFound if the worker has no entry.
func (s *TemporaryStore) Get(workerID string) (*TemporaryAccount, error) {
	data, err := s.backend.Get(temporaryKeyPrefix + workerID)
	if err != nil {
		return nil, err
	}

	var ta TemporaryAccount
	if err := json.Unmarshal(data, &ta); err != nil {
		return nil, fmt.Errorf("temporary store: failed to decode entry for worker %q: %w", workerID, err)
	}
	return &ta, nil
}

// Set stores the temporary account for its worker, replacing any previous
// entry.
func (s *TemporaryStore) Set(ta *TemporaryAccount) error {
	if ta == nil || ta.WorkerID == "" {
		return fmt.Errorf("temporary store: worker id is required")
	}

	data, err := json.Marshal(ta)
	if err != nil {
		return fmt.Errorf("temporary store: failed to encode entry for worker %q: %w", ta.WorkerID, err)
	}
	return s.backend.Put(temporaryKeyPrefix+ta.WorkerID, data, nil)
}

// Remove deletes the temporary account for a worker. Removing an absent
// entry is not an error.
func (s *TemporaryStore) Remove(workerID string) error {
	err := s.backend.Delete(temporaryKeyPrefix + workerID)
	if err != nil && err != storage.ErrNotFound {
		return err
	}
	return nil
}

// FindOrFail retrieves the temporary account for a worker and fails with a
// StateError when the worker owns no in-flight attempt, which happens when
// the wizard was started on another tab.
func (s *TemporaryStore) FindOrFail(workerID string) (*TemporaryAccount, error) {
	ta, err := s.Get(workerID)
	if err != nil {
		if err == storage.ErrNotFound {
			return nil, types.NewStateError(MsgRecoveryStartedElsewhere)
		}
		return nil, err
	}
	return ta, nil
}

// Close releases the underlying session tier.
func (s *TemporaryStore) Close() error {
	return s.backend.Close()
}
