// Copyright (c) 2026 The veyra developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package accountid

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/veyra-network/kernel/felt"
	"github.com/veyra-network/kernel/kernelerrors"
)

func withLowByte(low byte) ID {
	return ID{Prefix: felt.New(uint64(low)), Suffix: felt.New(0)}
}

func TestTypeAndStorageModeExtraction(t *testing.T) {
	// version 0, storage mode public (0b00), type fungible faucet (0b10).
	id := withLowByte(0b00_10_0000)
	assert.Equal(t, TypeFungibleFaucet, id.Type())
	assert.Equal(t, StorageModePublic, id.StorageMode())
	assert.True(t, id.IsFaucet())
	assert.True(t, id.IsFungibleFaucet())
}

func TestRegularAccountIsNotFaucet(t *testing.T) {
	id := withLowByte(0b01_01_0000)
	assert.Equal(t, TypeRegularUpdatable, id.Type())
	assert.False(t, id.IsFaucet())
	assert.False(t, id.IsFungibleFaucet())
}

func TestValidateRejectsNonZeroVersion(t *testing.T) {
	id := withLowByte(0b00_00_0001)
	err := id.Validate()
	assert.True(t, kernelerrors.Is(err, kernelerrors.ErrInvalidAccountID))
}

func TestValidateRejectsReservedStorageMode(t *testing.T) {
	id := withLowByte(0b11_00_0000)
	err := id.Validate()
	assert.True(t, kernelerrors.Is(err, kernelerrors.ErrInvalidAccountID))
}

func TestValidateRejectsSuffixHighBit(t *testing.T) {
	id := ID{Prefix: felt.New(0), Suffix: felt.New(1 << 63)}
	err := id.Validate()
	assert.True(t, kernelerrors.Is(err, kernelerrors.ErrInvalidAccountID))
}

func TestValidateRejectsSuffixLowByte(t *testing.T) {
	id := ID{Prefix: felt.New(0), Suffix: felt.New(0xFF)}
	err := id.Validate()
	assert.True(t, kernelerrors.Is(err, kernelerrors.ErrInvalidAccountID))
}

func TestValidateAcceptsWellFormedID(t *testing.T) {
	id := ID{Prefix: felt.New(0b00_00_0000), Suffix: felt.New(0x0100)}
	assert.NoError(t, id.Validate())
}

func TestWordPacksPrefixAndSuffixOnly(t *testing.T) {
	id := ID{Prefix: felt.New(11), Suffix: felt.New(22)}
	assert.Equal(t, felt.Word{felt.New(11), felt.New(22), 0, 0}, id.Word())
}
