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

import "sync"

// Identity is the key material bound to an active worker session. Workers
// keep operating against this identity for the remainder of the session;
// there is no session restart primitive, so recovery swaps the identity
// under them.
type Identity struct {
	Domain            string
	UserID            string
	Fingerprint       string
	PublicArmoredKey  string
	PrivateArmoredKey string
}

// IdentityCell is a swappable reference to the active session identity.
// Holding an explicit cell, rather than mutating a shared identity object
// in place, keeps every reader on a consistent snapshot.
type IdentityCell struct {
	mu       sync.RWMutex
	identity *Identity
}

// NewIdentityCell creates an empty identity cell.
func NewIdentityCell() *IdentityCell {
	return &IdentityCell{}
}

// Load returns the current identity, or nil when no identity is bound.
func (c *IdentityCell) Load() *Identity {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.identity
}

// Swap replaces the current identity and returns the previous one.
func (c *IdentityCell) Swap(identity *Identity) *Identity {
	c.mu.Lock()
	defer c.mu.Unlock()
	previous := c.identity
	c.identity = identity
	return previous
}
