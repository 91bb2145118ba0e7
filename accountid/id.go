// Copyright (c) 2026 The veyra developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

// Package accountid implements the account identifier bit layout (spec
// §3): the (prefix, suffix) pair, the account type and storage mode
// packed into the prefix's low byte, and the version/reserved-bit
// invariants. Split out from package account so that packages the
// account model itself depends on (vault, storage) can reference an
// account id without an import cycle. Grounded on the teacher's
// types.ID / bit-packed identifier style (types/id.go,
// types/commitment.go).
package accountid

import (
	"github.com/veyra-network/kernel/felt"
	"github.com/veyra-network/kernel/kernelerrors"
)

// Type is the account type encoded in bits 4-5 of the id prefix's low
// byte.
type Type uint8

const (
	TypeRegularImmutable Type = 0b00
	TypeRegularUpdatable Type = 0b01
	TypeFungibleFaucet   Type = 0b10
	TypeNonFungibleFaucet Type = 0b11
)

// StorageMode is encoded in bits 6-7 of the id prefix's low byte. The
// bit pattern 0b11 is reserved and always invalid.
type StorageMode uint8

const (
	StorageModePublic  StorageMode = 0b00
	StorageModeNetwork StorageMode = 0b01
	StorageModePrivate StorageMode = 0b10
	storageModeInvalid StorageMode = 0b11
)

// ID is the (prefix, suffix) pair identifying an account.
type ID struct {
	Prefix felt.Felt
	Suffix felt.Felt
}

// Type extracts the account type from bits 4-5 of the prefix's low byte.
func (id ID) Type() Type {
	low := byte(id.Prefix.Uint64())
	return Type((low >> 4) & 0b11)
}

// StorageMode extracts the storage mode from bits 6-7 of the prefix's
// low byte.
func (id ID) StorageMode() StorageMode {
	low := byte(id.Prefix.Uint64())
	return StorageMode((low >> 6) & 0b11)
}

// version extracts bits 0-3 of the prefix's low byte. Only version 0 is
// currently valid.
func (id ID) version() uint8 {
	low := byte(id.Prefix.Uint64())
	return low & 0b1111
}

// IsFaucet reports whether id names a fungible or non-fungible faucet.
func (id ID) IsFaucet() bool {
	t := id.Type()
	return t == TypeFungibleFaucet || t == TypeNonFungibleFaucet
}

// IsFungibleFaucet reports whether id names a fungible faucet
// specifically -- the only account type get_balance may be called
// against (spec §4.3).
func (id ID) IsFungibleFaucet() bool {
	return id.Type() == TypeFungibleFaucet
}

// Validate checks the invariants spec §3 places on account ids:
//   - version must be 0,
//   - storage mode must not be the reserved 0b11 pattern,
//   - suffix's most-significant bit must be 0,
//   - suffix's least-significant 8 bits must be 0.
func (id ID) Validate() error {
	if id.version() != 0 {
		return kernelerrors.New(kernelerrors.ErrInvalidAccountID, "account id version must be 0")
	}
	if id.StorageMode() == storageModeInvalid {
		return kernelerrors.New(kernelerrors.ErrInvalidAccountID, "account id storage mode 0b11 is reserved")
	}
	suffix := id.Suffix.Uint64()
	if suffix&(1<<63) != 0 {
		return kernelerrors.New(kernelerrors.ErrInvalidAccountID, "account id suffix most-significant bit must be 0")
	}
	if suffix&0xFF != 0 {
		return kernelerrors.New(kernelerrors.ErrInvalidAccountID, "account id suffix low 8 bits must be 0")
	}
	return nil
}

// Word packs the id into the [prefix, suffix, 0, 0] layout used
// whenever an id is embedded in a hashed Word (e.g. the asset vault's
// fungible key, spec §3).
func (id ID) Word() felt.Word {
	return felt.Word{id.Prefix, id.Suffix, 0, 0}
}
