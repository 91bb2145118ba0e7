// Copyright (c) 2026 The veyra developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

// Package vault implements the sparse-merkle asset vault (spec §3, §4.3):
// a Word -> Word tree holding fungible and non-fungible assets, keyed by
// faucet id or asset content.
package vault

import (
	"github.com/veyra-network/kernel/accountid"
	"github.com/veyra-network/kernel/felt"
	"github.com/veyra-network/kernel/kernelerrors"
)

// MaxFungibleAmount is the largest amount a fungible asset word may
// encode (2^63 - 1, spec §3).
const MaxFungibleAmount uint64 = (1 << 63) - 1

// fungibleBit is bit 5 of the low byte of an asset word's position-0
// felt. vaultKey clears it when forming a non-fungible asset's vault
// key; the asset word itself keeps it (spec §3: "hash0 has its fungible
// bit ... cleared when forming the vault key").
const fungibleBit = uint64(1 << 5)

// Asset is a fungible or non-fungible asset word.
type Asset struct {
	Word felt.Word
}

// IsFungible reports whether the asset is fungible: spec §3's "position
// 2" is a 1-indexed reference to the word's second felt, i.e. Word[1] in
// this 0-indexed layout -- the zero that sits between the amount and the
// faucet id in [amount, 0, faucet_id_suffix, faucet_id_prefix].
func (a Asset) IsFungible() bool {
	return a.Word[1] == 0
}

// FungibleAmount returns the encoded amount for a fungible asset.
func (a Asset) FungibleAmount() uint64 {
	return a.Word[0].Uint64()
}

// FungibleFaucetID returns the faucet id encoded in a fungible asset
// word: [amount, 0, faucet_id_suffix, faucet_id_prefix].
func (a Asset) FungibleFaucetID() accountid.ID {
	return accountid.ID{Prefix: a.Word[3], Suffix: a.Word[2]}
}

// NonFungibleFaucetPrefix returns the faucet id prefix encoded in a
// non-fungible asset word: [hash0, hash1, hash2, faucet_id_prefix]. The suffix is
// not carried by non-fungible asset words; callers that need it must
// track it out of band (this mirrors the source layout, which only
// embeds the faucet prefix in the asset word).
func (a Asset) NonFungibleFaucetPrefix() felt.Felt {
	return a.Word[3]
}

// NewFungible builds a fungible asset word: [amount, 0,
// faucet_id_suffix, faucet_id_prefix].
func NewFungible(faucet accountid.ID, amount uint64) (Asset, error) {
	if amount > MaxFungibleAmount {
		return Asset{}, kernelerrors.New(kernelerrors.ErrInvalidAsset, "fungible amount exceeds 2^63-1")
	}
	if !faucet.IsFungibleFaucet() {
		return Asset{}, kernelerrors.New(kernelerrors.ErrInvalidAsset, "asset faucet id is not a fungible faucet")
	}
	return Asset{Word: felt.Word{felt.New(amount), 0, faucet.Suffix, faucet.Prefix}}, nil
}

// NewNonFungible builds a non-fungible asset word:
// [hash0, hash1, hash2, faucet_id_prefix].
func NewNonFungible(faucetPrefix felt.Felt, hash0, hash1, hash2 felt.Felt) Asset {
	return Asset{Word: felt.Word{hash0, hash1, hash2, faucetPrefix}}
}

// fungibleKey returns the vault key for a fungible asset:
// [faucet_prefix, faucet_suffix, 0, 0].
func fungibleKey(faucet accountid.ID) felt.Word {
	return felt.Word{faucet.Prefix, faucet.Suffix, 0, 0}
}

// VaultKey exposes vaultKey to callers outside the package (the delta
// engine) that need to record deltas under the same key the vault uses
// internally.
func VaultKey(a Asset) felt.Word {
	return vaultKey(a)
}

// vaultKey returns the vault key for a in-vault lookup of asset a: the
// fungible key for fungible assets, or the asset word itself with the
// fungible bit forced to 0 at position 0 for non-fungible assets (spec
// §3).
func vaultKey(a Asset) felt.Word {
	if a.IsFungible() {
		return fungibleKey(a.FungibleFaucetID())
	}
	key := a.Word
	low := key[0].Uint64()
	key[0] = felt.New(low &^ fungibleBit)
	return key
}
