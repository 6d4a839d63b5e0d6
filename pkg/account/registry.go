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
	"github.com/jeremyhahn/go-teamvault/pkg/types"
)

// registryKeyPrefix namespaces account records in the durable tier.
const registryKeyPrefix = "accounts/"

// Registry is the durable, local store of account records: pending recovery
// stubs and fully usable accounts, persisted as plain JSON. Writes are
// last-write-wins; there is no cross-process concurrency control.
type Registry struct {
	backend storage.Backend
}

// NewRegistry creates a registry over the given durable storage backend.
func NewRegistry(backend storage.Backend) *Registry {
	return &Registry{backend: backend}
}

// Get retrieves the account record of the given type for a user.
// Returns types.ErrAccountNotFound if no record exists.
func (r *Registry) Get(t Type, userID string) (*Account, error) {
	data, err := r.backend.Get(registryKey(t, userID))
	if err != nil {
		if err == storage.ErrNotFound {
			return nil, types.ErrAccountNotFound
		}
		return nil, err
	}

	var a Account
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("registry: failed to decode account %q: %w", userID, err)
	}
	return &a, nil
}

// Insert persists an account record, replacing any previous record of the
// same type for the same user.
func (r *Registry) Insert(a *Account) error {
	if a == nil {
		return fmt.Errorf("registry: account is nil")
	}
	if err := a.Validate(); err != nil {
		return err
	}

	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("registry: failed to encode account %q: %w", a.UserID, err)
	}
	return r.backend.Put(registryKey(a.Type, a.UserID), data, storage.DefaultOptions())
}

// DeleteByUser removes the account record of the given type for a user.
// Deleting an absent record is not an error; the delete-then-insert ordering
// of the recovery request submitter relies on this.
func (r *Registry) DeleteByUser(t Type, userID string) error {
	err := r.backend.Delete(registryKey(t, userID))
	if err != nil && err != storage.ErrNotFound {
		return err
	}
	return nil
}

// List returns all account records of the given type.
func (r *Registry) List(t Type) ([]*Account, error) {
	keys, err := r.backend.List(registryKeyPrefix + string(t) + "/")
	if err != nil {
		return nil, err
	}

	accounts := make([]*Account, 0, len(keys))
	for _, key := range keys {
		data, err := r.backend.Get(key)
		if err != nil {
			if err == storage.ErrNotFound {
				continue
			}
			return nil, err
		}

		var a Account
		if err := json.Unmarshal(data, &a); err != nil {
			return nil, fmt.Errorf("registry: failed to decode record %q: %w", key, err)
		}
		accounts = append(accounts, &a)
	}
	return accounts, nil
}

func registryKey(t Type, userID string) string {
	return registryKeyPrefix + string(t) + "/" + userID + ".json"
}
