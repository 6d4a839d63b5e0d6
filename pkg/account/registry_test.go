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
	"testing"

	"github.com/jeremyhahn/go-teamvault/pkg/storage/memory"
	"github.com/jeremyhahn/go-teamvault/pkg/types"
)

func TestRegistryGetNotFound(t *testing.T) {
	r := NewRegistry(memory.New())

	if _, err := r.Get(TypeAccountRecovery, "missing"); err != types.ErrAccountNotFound {
		t.Errorf("Get returned %v, want ErrAccountNotFound", err)
	}
}

func TestRegistryInsertGet(t *testing.T) {
	r := NewRegistry(memory.New())

	stub := testAttempt().Stub("d4c0e643-3967-443b-93b3-102d902c4510")
	if err := r.Insert(stub); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	got, err := r.Get(TypeAccountRecovery, stub.UserID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.AccountRecoveryRequestID != stub.AccountRecoveryRequestID {
		t.Errorf("request id = %q, want %q",
			got.AccountRecoveryRequestID, stub.AccountRecoveryRequestID)
	}
	if got.RequestPrivateArmoredKey != stub.RequestPrivateArmoredKey {
		t.Error("stub should round-trip the locked request private key")
	}
}

func TestRegistryInsertValidates(t *testing.T) {
	r := NewRegistry(memory.New())

	if err := r.Insert(nil); err == nil {
		t.Error("Insert of nil should fail")
	}

	invalid := testAttempt().Stub("d4c0e643-3967-443b-93b3-102d902c4510")
	invalid.Domain = ""
	if err := r.Insert(invalid); err == nil {
		t.Error("Insert of invalid record should fail")
	}
}

func TestRegistryTypesAreDisjoint(t *testing.T) {
	r := NewRegistry(memory.New())

	attempt := testAttempt()
	if err := r.Insert(attempt.Stub("d4c0e643-3967-443b-93b3-102d902c4510")); err != nil {
		t.Fatalf("Insert stub failed: %v", err)
	}
	if err := r.Insert(attempt.Promote("FP", "public", "private").Account()); err != nil {
		t.Fatalf("Insert account failed: %v", err)
	}

	// the same user holds one record per type
	if _, err := r.Get(TypeAccountRecovery, attempt.UserID); err != nil {
		t.Errorf("stub lookup failed: %v", err)
	}
	if _, err := r.Get(TypeAccount, attempt.UserID); err != nil {
		t.Errorf("account lookup failed: %v", err)
	}
}

func TestRegistryDeleteByUserAbsentIsOK(t *testing.T) {
	r := NewRegistry(memory.New())

	// delete-then-insert relies on absent deletes succeeding
	if err := r.DeleteByUser(TypeAccountRecovery, "missing"); err != nil {
		t.Errorf("DeleteByUser of absent record returned %v", err)
	}
}

func TestRegistryDeleteThenInsertKeepsOneStub(t *testing.T) {
	r := NewRegistry(memory.New())
	attempt := testAttempt()

	first := attempt.Stub("11111111-1111-4111-8111-111111111111")
	if err := r.Insert(first); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	if err := r.DeleteByUser(TypeAccountRecovery, attempt.UserID); err != nil {
		t.Fatalf("DeleteByUser failed: %v", err)
	}
	second := attempt.Stub("22222222-2222-4222-8222-222222222222")
	if err := r.Insert(second); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	stubs, err := r.List(TypeAccountRecovery)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(stubs) != 1 {
		t.Fatalf("List returned %d stubs, want 1", len(stubs))
	}
	if stubs[0].AccountRecoveryRequestID != second.AccountRecoveryRequestID {
		t.Errorf("surviving stub = %q, want the newer request id",
			stubs[0].AccountRecoveryRequestID)
	}
}

func TestRegistryList(t *testing.T) {
	r := NewRegistry(memory.New())

	stubs, err := r.List(TypeAccountRecovery)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(stubs) != 0 {
		t.Errorf("List of empty registry returned %d records", len(stubs))
	}

	attempt := testAttempt()
	r.Insert(attempt.Stub("d4c0e643-3967-443b-93b3-102d902c4510"))
	r.Insert(attempt.Promote("FP", "public", "private").Account())

	stubs, err = r.List(TypeAccountRecovery)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(stubs) != 1 {
		t.Errorf("List returned %d stubs, want 1", len(stubs))
	}
}
