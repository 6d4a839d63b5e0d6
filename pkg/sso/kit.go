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

// Package sso manages the client-side SSO kit: the user's vault passphrase
// sealed under a random key so an SSO-driven sign-in can unlock the vault
// without prompting. Only the client half lives here; registering or
// deleting the server-side half is an authenticated operation outside this
// package.
package sso

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/chacha20poly1305"

	"github.com/jeremyhahn/go-teamvault/pkg/storage"
)

// kitKey is the storage key of the client-side kit in the local tier.
const kitKey = "sso/kit.json"

// Kit is the client-side SSO kit: a sealed passphrase plus the nonce it was
// sealed with. The sealing key is not stored locally.
type Kit struct {
	ID               string    `json:"id"`
	Nonce            []byte    `json:"nonce"`
	SealedPassphrase []byte    `json:"sealed_passphrase"`
	CreatedAt        time.Time `json:"created_at"`
}

// KitStore persists the client-side SSO kit in the local durable tier.
type KitStore struct {
	backend storage.Backend
}

// NewKitStore creates a kit store over the given durable backend.
func NewKitStore(backend storage.Backend) *KitStore {
	return &KitStore{backend: backend}
}

// Get retrieves the stored kit.
// Returns storage.ErrNotFound when no kit exists.
func (s *KitStore) Get() (*Kit, error) {
	data, err := s.backend.Get(kitKey)
	if err != nil {
		return nil, err
	}

	var kit Kit
	if err := json.Unmarshal(data, &kit); err != nil {
		return nil, fmt.Errorf("sso: failed to decode kit: %w", err)
	}
	return &kit, nil
}

// Flush removes any stored kit. Flushing when no kit exists is not an
// error. Callers regenerating a kit must flush first so a partially valid
// kit is never observed.
func (s *KitStore) Flush() error {
	err := s.backend.Delete(kitKey)
	if err != nil && err != storage.ErrNotFound {
		return err
	}
	return nil
}

// Generate seals passphrase under a fresh random key and persists the kit.
// The raw sealing key is returned to the caller, whose concern it is to
// register it server-side; it is never written to local storage.
func (s *KitStore) Generate(passphrase string) (*Kit, []byte, error) {
	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, nil, fmt.Errorf("sso: failed to generate sealing key: %w", err)
	}

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, nil, fmt.Errorf("sso: failed to create cipher: %w", err)
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, nil, fmt.Errorf("sso: failed to generate nonce: %w", err)
	}

	kit := &Kit{
		ID:               uuid.NewString(),
		Nonce:            nonce,
		SealedPassphrase: aead.Seal(nil, nonce, []byte(passphrase), nil),
		CreatedAt:        time.Now().UTC(),
	}

	data, err := json.Marshal(kit)
	if err != nil {
		return nil, nil, fmt.Errorf("sso: failed to encode kit: %w", err)
	}
	if err := s.backend.Put(kitKey, data, storage.DefaultOptions()); err != nil {
		return nil, nil, err
	}

	return kit, key, nil
}

// Open unseals a kit with its sealing key and returns the passphrase.
func Open(kit *Kit, key []byte) (string, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return "", fmt.Errorf("sso: failed to create cipher: %w", err)
	}

	passphrase, err := aead.Open(nil, kit.Nonce, kit.SealedPassphrase, nil)
	if err != nil {
		return "", fmt.Errorf("sso: failed to unseal kit: %w", err)
	}
	return string(passphrase), nil
}
