// Copyright (c) 2026 The veyra developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package txkernel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veyra-network/kernel/account"
	"github.com/veyra-network/kernel/accountid"
	"github.com/veyra-network/kernel/advice"
	"github.com/veyra-network/kernel/felt"
	"github.com/veyra-network/kernel/kernelconfig"
	"github.com/veyra-network/kernel/kernelerrors"
	"github.com/veyra-network/kernel/note"
	"github.com/veyra-network/kernel/vault"
)

// regularAccountID builds a valid regular-updatable, public-storage
// account id with a distinguishing high suffix so tests can construct
// several accounts that don't collide.
func regularAccountID(unique uint64) accountid.ID {
	const typeUpdatablePublicLow = 0x10 // storage=public(00), type=updatable(01), version=0
	return accountid.ID{
		Prefix: felt.New(uint64(typeUpdatablePublicLow) | unique<<8),
		Suffix: felt.New(unique << 8),
	}
}

// fungibleFaucetID builds a valid fungible-faucet, public-storage
// account id.
func fungibleFaucetID(unique uint64) accountid.ID {
	const typeFaucetPublicLow = 0x20 // storage=public(00), type=fungible faucet(10)
	return accountid.ID{
		Prefix: felt.New(uint64(typeFaucetPublicLow) | unique<<8),
		Suffix: felt.New(unique << 8),
	}
}

func newTestParams(nativeAsset accountid.ID) kernelconfig.Params {
	p := kernelconfig.DefaultParams()
	p.NativeAssetID = nativeAsset
	p.VerificationBaseFee = 1
	return p
}

// fundedAccount returns an account holding amount of the native asset,
// enough to pay any fee this test suite generates.
func fundedAccount(t *testing.T, id accountid.ID, nativeAsset accountid.ID, amount uint64) *account.Account {
	t.Helper()
	acct := account.New(id, felt.EmptyWord)
	asset, err := vault.NewFungible(nativeAsset, amount)
	require.NoError(t, err)
	_, err = acct.Vault.AddFungible(asset)
	require.NoError(t, err)
	return acct
}

func runPrologue(t *testing.T, exec *Executor, acct *account.Account, refBlock ReferenceBlock, notes []InputNote) {
	t.Helper()
	inputs := Inputs{
		BlockCommitment:          felt.EmptyWord,
		InitialAccountCommitment: acct.Commitment(),
		InputNotesCommitment:     InputNotesCommitment(notes),
		AccountIDPrefix:          acct.ID.Prefix,
		AccountIDSuffix:          acct.ID.Suffix,
	}
	require.NoError(t, exec.Prologue(inputs, refBlock, notes))
}

// TestPayToIDHappyPath spawns a note that moves a fungible asset
// straight from an input note into a freshly created output note
// without ever touching the account vault, exercising the reference
// asset-conservation scenario (spec §4.7 step 7, §8 scenario 1).
func TestPayToIDHappyPath(t *testing.T) {
	native := fungibleFaucetID(1)
	acctID := regularAccountID(2)
	acct := fundedAccount(t, acctID, native, 1_000_000)

	refBlock := ReferenceBlock{BlockNum: 100, VerificationBaseFee: 1, NativeAssetID: native}
	exec := NewExecutor(newTestParams(native), advice.NewMemProvider(), acct)

	payAsset, err := vault.NewFungible(native, 500)
	require.NoError(t, err)

	spawnScript := Script(func(e *Executor) (*felt.Word, error) {
		md := note.Metadata{SenderID: acctID, Type: note.TypePublic, ExecutionHint: note.ExecutionHint{Tag: note.HintAlways}}
		out, err := note.New(felt.Word{felt.New(9), 0, 0, 0}, felt.EmptyWord, felt.EmptyWord, md)
		if err != nil {
			return nil, err
		}
		idx, err := e.CreateNote(out)
		if err != nil {
			return nil, err
		}
		if err := e.AddAssetToNote(idx, payAsset); err != nil {
			return nil, err
		}
		return nil, nil
	})

	inputNoteMD := note.Metadata{SenderID: acctID, Type: note.TypePublic, ExecutionHint: note.ExecutionHint{Tag: note.HintAlways}}
	inNote, err := note.New(felt.Word{felt.New(1), 0, 0, 0}, felt.EmptyWord, felt.EmptyWord, inputNoteMD)
	require.NoError(t, err)
	require.NoError(t, inNote.AddAsset(payAsset.Word, true, payAsset.Word, 500, vault.MaxFungibleAmount))

	notes := []InputNote{{Note: inNote, Script: spawnScript}}
	runPrologue(t, exec, acct, refBlock, notes)
	require.NoError(t, exec.NoteLoop())
	require.NoError(t, exec.RunTxScript(nil))

	outputs, err := exec.Epilogue(refBlock, nil, felt.EmptyWord)
	require.NoError(t, err)
	assert.NotEqual(t, felt.EmptyWord, outputs.AccountUpdateCommitment)
	assert.NotEqual(t, felt.EmptyWord, outputs.OutputNotesCommitment)
}

// TestPayToIDViolatesConservationWithoutOutputNote consumes the same
// input note but never spawns a matching output note, and must fail
// asset conservation (the mirror of the happy path above).
func TestPayToIDViolatesConservationWithoutOutputNote(t *testing.T) {
	native := fungibleFaucetID(3)
	acctID := regularAccountID(4)
	acct := fundedAccount(t, acctID, native, 1_000_000)

	refBlock := ReferenceBlock{BlockNum: 100, VerificationBaseFee: 1, NativeAssetID: native}
	exec := NewExecutor(newTestParams(native), advice.NewMemProvider(), acct)

	payAsset, err := vault.NewFungible(native, 500)
	require.NoError(t, err)

	noopScript := Script(func(e *Executor) (*felt.Word, error) { return nil, nil })

	inputNoteMD := note.Metadata{SenderID: acctID, Type: note.TypePublic, ExecutionHint: note.ExecutionHint{Tag: note.HintAlways}}
	inNote, err := note.New(felt.Word{felt.New(1), 0, 0, 0}, felt.EmptyWord, felt.EmptyWord, inputNoteMD)
	require.NoError(t, err)
	require.NoError(t, inNote.AddAsset(payAsset.Word, true, payAsset.Word, 500, vault.MaxFungibleAmount))

	notes := []InputNote{{Note: inNote, Script: noopScript}}
	runPrologue(t, exec, acct, refBlock, notes)
	require.NoError(t, exec.NoteLoop())
	require.NoError(t, exec.RunTxScript(nil))

	_, err = exec.Epilogue(refBlock, nil, felt.EmptyWord)
	require.Error(t, err)
	assert.True(t, kernelerrors.Is(err, kernelerrors.ErrAssetsNotPreserved))
}

// TestFungibleOverflowRejected exercises the vault's overflow guard from
// inside a transaction script.
func TestFungibleOverflowRejected(t *testing.T) {
	native := fungibleFaucetID(5)
	acctID := regularAccountID(6)
	acct := fundedAccount(t, acctID, native, vault.MaxFungibleAmount)

	refBlock := ReferenceBlock{BlockNum: 1, VerificationBaseFee: 1, NativeAssetID: native}
	exec := NewExecutor(newTestParams(native), advice.NewMemProvider(), acct)

	runPrologue(t, exec, acct, refBlock, nil)

	overflowScript := Script(func(e *Executor) (*felt.Word, error) {
		one, err := vault.NewFungible(native, 1)
		if err != nil {
			return nil, err
		}
		_, err = e.AddFungible(one)
		return nil, err
	})
	err := exec.RunTxScript(overflowScript)
	require.Error(t, err)
	assert.True(t, kernelerrors.Is(err, kernelerrors.ErrFungibleOverflow))
}

// TestDuplicateNonFungibleRejected exercises the vault's uniqueness
// guard for non-fungible assets.
func TestDuplicateNonFungibleRejected(t *testing.T) {
	native := fungibleFaucetID(7)
	acctID := regularAccountID(8)
	acct := fundedAccount(t, acctID, native, 1_000_000)

	nftFaucet := accountid.ID{Prefix: felt.New(0x30 | 9<<8), Suffix: felt.New(9 << 8)} // non-fungible faucet type 0b11
	nft := vault.NewNonFungible(nftFaucet.Prefix, felt.New(1), felt.New(2), felt.New(3))

	refBlock := ReferenceBlock{BlockNum: 1, VerificationBaseFee: 1, NativeAssetID: native}
	exec := NewExecutor(newTestParams(native), advice.NewMemProvider(), acct)
	runPrologue(t, exec, acct, refBlock, nil)

	_, err := exec.AddNonFungible(nft)
	require.NoError(t, err)

	dupScript := Script(func(e *Executor) (*felt.Word, error) {
		_, err := e.AddNonFungible(nft)
		return nil, err
	})
	err = exec.RunTxScript(dupScript)
	require.Error(t, err)
	assert.True(t, kernelerrors.Is(err, kernelerrors.ErrNonFungibleAlreadyExists))
}

// TestEmptyTransactionRejected runs a transaction with no input notes,
// no script, and no state change, which the epilogue's final check must
// reject.
func TestEmptyTransactionRejected(t *testing.T) {
	native := fungibleFaucetID(10)
	acctID := regularAccountID(11)
	acct := fundedAccount(t, acctID, native, 1_000_000)

	refBlock := ReferenceBlock{BlockNum: 1, VerificationBaseFee: 1, NativeAssetID: native}
	exec := NewExecutor(newTestParams(native), advice.NewMemProvider(), acct)
	runPrologue(t, exec, acct, refBlock, nil)
	require.NoError(t, exec.NoteLoop())
	require.NoError(t, exec.RunTxScript(nil))

	_, err := exec.Epilogue(refBlock, nil, felt.EmptyWord)
	require.Error(t, err)
	assert.True(t, kernelerrors.Is(err, kernelerrors.ErrEmptyTransaction))
}

// TestAuthRequiredACL exercises the edge-triggered procedure tracking:
// a script calls a trigger procedure that funnels through
// AssertAuthProcedure, the mark is visible through WasCalled afterwards,
// and the epilogue then completes. The epilogue itself does not consult
// the mark.
func TestAuthRequiredACL(t *testing.T) {
	native := fungibleFaucetID(12)
	acctID := regularAccountID(13)
	acct := fundedAccount(t, acctID, native, 1_000_000)

	refBlock := ReferenceBlock{BlockNum: 1, VerificationBaseFee: 1, NativeAssetID: native}
	exec := NewExecutor(newTestParams(native), advice.NewMemProvider(), acct)
	runPrologue(t, exec, acct, refBlock, nil)

	triggerScript := Script(func(e *Executor) (*felt.Word, error) {
		e.AssertAuthProcedure("withdraw")
		_, err := e.SetItem(0, felt.Word{felt.New(42), 0, 0, 0})
		return nil, err
	})
	require.NoError(t, exec.RunTxScript(triggerScript))
	assert.True(t, exec.ctx.WasCalled("withdraw"))

	outputs, err := exec.Epilogue(refBlock, nil, felt.EmptyWord)
	require.NoError(t, err)
	assert.NotEqual(t, felt.EmptyWord, outputs.AccountUpdateCommitment)
}

// TestExpirationDeltaOnlyDecreases exercises spec §8 scenario 6: a
// script sets the expiration delta to 10, a later call attempts to
// widen it to 20, and the narrower value must survive.
func TestExpirationDeltaOnlyDecreases(t *testing.T) {
	native := fungibleFaucetID(14)
	acctID := regularAccountID(15)
	acct := fundedAccount(t, acctID, native, 1_000_000)

	refBlock := ReferenceBlock{BlockNum: 1000, VerificationBaseFee: 1, NativeAssetID: native}
	exec := NewExecutor(newTestParams(native), advice.NewMemProvider(), acct)
	runPrologue(t, exec, acct, refBlock, nil)

	script := Script(func(e *Executor) (*felt.Word, error) {
		if err := e.UpdateExpirationBlockDelta(10); err != nil {
			return nil, err
		}
		if err := e.UpdateExpirationBlockDelta(20); err != nil {
			return nil, err
		}
		return nil, nil
	})
	require.NoError(t, exec.RunTxScript(script))

	// touch a value slot so the transaction isn't empty
	_, err := exec.SetItem(0, felt.Word{felt.New(1), 0, 0, 0})
	require.NoError(t, err)

	outputs, err := exec.Epilogue(refBlock, nil, felt.EmptyWord)
	require.NoError(t, err)
	assert.Equal(t, refBlock.BlockNum+10, outputs.ExpirationBlockNum)
}

// TestExpirationDeltaOutOfRangeRejected exercises the [1, 0xFFFF] bound.
func TestExpirationDeltaOutOfRangeRejected(t *testing.T) {
	native := fungibleFaucetID(16)
	acctID := regularAccountID(17)
	acct := fundedAccount(t, acctID, native, 1_000_000)

	refBlock := ReferenceBlock{BlockNum: 1, VerificationBaseFee: 1, NativeAssetID: native}
	exec := NewExecutor(newTestParams(native), advice.NewMemProvider(), acct)
	runPrologue(t, exec, acct, refBlock, nil)

	err := exec.UpdateExpirationBlockDelta(0)
	require.Error(t, err)
	assert.True(t, kernelerrors.Is(err, kernelerrors.ErrExpirationDeltaOutOfRange))

	err = exec.UpdateExpirationBlockDelta(0x10000)
	require.Error(t, err)
	assert.True(t, kernelerrors.Is(err, kernelerrors.ErrExpirationDeltaOutOfRange))
}

// TestFeeInsufficientBalanceRejected exercises epilogue step 4's balance
// check when the account cannot cover the verification fee.
func TestFeeInsufficientBalanceRejected(t *testing.T) {
	native := fungibleFaucetID(18)
	acctID := regularAccountID(19)
	acct := fundedAccount(t, acctID, native, 0)

	refBlock := ReferenceBlock{BlockNum: 1, VerificationBaseFee: 1_000_000, NativeAssetID: native}
	exec := NewExecutor(newTestParams(native), advice.NewMemProvider(), acct)
	runPrologue(t, exec, acct, refBlock, nil)
	require.NoError(t, exec.NoteLoop())

	require.NoError(t, exec.RunTxScript(Script(func(e *Executor) (*felt.Word, error) {
		return nil, nil
	})))

	_, err := exec.SetItem(0, felt.Word{felt.New(7), 0, 0, 0})
	require.NoError(t, err)

	_, err = exec.Epilogue(refBlock, nil, felt.EmptyWord)
	require.Error(t, err)
	assert.True(t, kernelerrors.Is(err, kernelerrors.ErrInsufficientFeeBalance))
}
