// Copyright (c) 2026 The veyra developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package vault

import (
	"github.com/veyra-network/kernel/accountid"
	"github.com/veyra-network/kernel/felt"
	"github.com/veyra-network/kernel/kernelerrors"
	"github.com/veyra-network/kernel/smt"
)

// Vault is the sparse-merkle asset container backing an account (spec
// §3, §4.3).
type Vault struct {
	tree *smt.Tree
}

// New returns an empty vault.
func New() *Vault {
	return &Vault{tree: smt.New()}
}

// Root returns the vault's current SMT root.
func (v *Vault) Root() felt.Word {
	return v.tree.Root()
}

// Clone returns a deep copy of the vault (used to snapshot the initial
// vault at prologue and to build the "output vault" at epilogue step 7).
func (v *Vault) Clone() *Vault {
	c := New()
	for k, val := range v.tree.Leaves() {
		c.tree.Set(k, val)
	}
	return c
}

// peek reads the current value at key via the untrusted peek. Callers
// use it to compute the new value before performing the authenticated
// write.
func (v *Vault) peek(key felt.Word) felt.Word {
	return v.tree.Peek(key)
}

// authenticatedSet performs the real SMT write and asserts its returned
// old value matches what peek previously reported -- the "peek vs.
// authenticated set" cross-check design notes §9 requires to defend
// against a dishonest host.
func (v *Vault) authenticatedSet(key, peeked, newValue felt.Word) error {
	old := v.tree.Set(key, newValue)
	if old != peeked {
		log.Error("vault SMT peek disagreed with authenticated set", log.Args("key", key))
		return kernelerrors.AssertError("vault SMT peek disagreed with authenticated set")
	}
	return nil
}

// AddFungible adds asset.Amount of the fungible asset to the vault,
// returning the resulting combined asset. Fails on overflow past
// MaxFungibleAmount (spec §4.3).
func (v *Vault) AddFungible(a Asset) (Asset, error) {
	if !a.IsFungible() {
		return Asset{}, kernelerrors.New(kernelerrors.ErrInvalidAsset, "add_fungible called with a non-fungible asset")
	}
	key := vaultKey(a)
	current := v.peek(key)
	currentAmount := uint64(0)
	if !current.IsEmpty() {
		currentAmount = current[0].Uint64()
	}
	combined := currentAmount + a.FungibleAmount()
	if combined > MaxFungibleAmount || combined < currentAmount {
		return Asset{}, kernelerrors.New(kernelerrors.ErrFungibleOverflow, "fungible max amount exceeded")
	}
	newWord := a.Word
	newWord[0] = felt.New(combined)
	if err := v.authenticatedSet(key, current, newWord); err != nil {
		return Asset{}, err
	}
	return Asset{Word: newWord}, nil
}

// RemoveFungible removes asset.Amount of the fungible asset from the
// vault, returning the removed asset. Fails if the vault balance is
// insufficient (spec §4.3).
func (v *Vault) RemoveFungible(a Asset) (Asset, error) {
	if !a.IsFungible() {
		return Asset{}, kernelerrors.New(kernelerrors.ErrInvalidAsset, "remove_fungible called with a non-fungible asset")
	}
	key := vaultKey(a)
	current := v.peek(key)
	currentAmount := uint64(0)
	if !current.IsEmpty() {
		currentAmount = current[0].Uint64()
	}
	if currentAmount < a.FungibleAmount() {
		return Asset{}, kernelerrors.New(kernelerrors.ErrFungibleUnderflow, "fungible asset underflow on remove")
	}
	remainder := currentAmount - a.FungibleAmount()
	var newWord felt.Word
	if remainder == 0 {
		newWord = felt.EmptyWord
	} else {
		newWord = current
		newWord[0] = felt.New(remainder)
	}
	if err := v.authenticatedSet(key, current, newWord); err != nil {
		return Asset{}, err
	}
	return a, nil
}

// AddNonFungible inserts a unique non-fungible asset. Fails if the slot
// is already occupied (spec §4.3).
func (v *Vault) AddNonFungible(a Asset) (Asset, error) {
	if a.IsFungible() {
		return Asset{}, kernelerrors.New(kernelerrors.ErrInvalidAsset, "add_non_fungible called with a fungible asset")
	}
	key := vaultKey(a)
	current := v.peek(key)
	if !current.IsEmpty() {
		return Asset{}, kernelerrors.New(kernelerrors.ErrNonFungibleAlreadyExists, "non-fungible asset already exists")
	}
	if err := v.authenticatedSet(key, current, a.Word); err != nil {
		return Asset{}, err
	}
	return a, nil
}

// RemoveNonFungible removes a unique non-fungible asset. Fails if it is
// not present (spec §4.3).
func (v *Vault) RemoveNonFungible(a Asset) (Asset, error) {
	if a.IsFungible() {
		return Asset{}, kernelerrors.New(kernelerrors.ErrInvalidAsset, "remove_non_fungible called with a fungible asset")
	}
	key := vaultKey(a)
	current := v.peek(key)
	if current.IsEmpty() {
		return Asset{}, kernelerrors.New(kernelerrors.ErrNonFungibleNotFound, "non-fungible asset not found")
	}
	if err := v.authenticatedSet(key, current, felt.EmptyWord); err != nil {
		return Asset{}, err
	}
	return a, nil
}

// GetBalance returns the fungible balance for faucetID, 0 if absent.
// Fails if faucetID does not name a fungible faucet.
func (v *Vault) GetBalance(faucetID accountid.ID) (uint64, error) {
	if !faucetID.IsFungibleFaucet() {
		return 0, kernelerrors.New(kernelerrors.ErrInvalidAsset, "get_balance called on a non-fungible-faucet id")
	}
	val := v.tree.Peek(fungibleKey(faucetID))
	if val.IsEmpty() {
		return 0, nil
	}
	return val[0].Uint64(), nil
}

// HasNonFungible reports whether the vault currently holds asset a.
// Fails if a is fungible.
func (v *Vault) HasNonFungible(a Asset) (bool, error) {
	if a.IsFungible() {
		return false, kernelerrors.New(kernelerrors.ErrInvalidAsset, "has_non_fungible called with a fungible asset")
	}
	return !v.tree.Peek(vaultKey(a)).IsEmpty(), nil
}

// Assets returns every non-empty (key, value) leaf currently in the
// vault.
func (v *Vault) Assets() map[felt.Word]felt.Word {
	return v.tree.Leaves()
}
