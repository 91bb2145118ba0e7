// Copyright (c) 2026 The veyra developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

// Package txkernel implements the transaction lifecycle state machine
// (spec §4.7): Prologue, the input-note loop, the optional transaction
// script, and the Epilogue's nine-step account finalization. It is the
// one package that wires every other domain package (account, vault,
// storage, delta, note, kctx, advice, kauth) into a single entry point,
// grounded on the teacher's Chain/consensus-engine event-driven phase
// style generalized to a fixed four-phase pipeline instead of the block
// lifecycle.
package txkernel

import (
	"math/bits"

	"github.com/veyra-network/kernel/account"
	"github.com/veyra-network/kernel/accountid"
	"github.com/veyra-network/kernel/advice"
	"github.com/veyra-network/kernel/delta"
	"github.com/veyra-network/kernel/felt"
	"github.com/veyra-network/kernel/kauth"
	"github.com/veyra-network/kernel/kctx"
	"github.com/veyra-network/kernel/kernelconfig"
	"github.com/veyra-network/kernel/kernelerrors"
	"github.com/veyra-network/kernel/note"
	"github.com/veyra-network/kernel/sponge"
	"github.com/veyra-network/kernel/vault"
)

// Script is a stand-in for a compiled note or transaction script (spec
// §6, §9 "dynamic dispatch"): a Go closure invoked against the running
// executor, since the arithmetic VM and its script bytecode are out of
// scope. Scripts may leave one Word on the "operand stack" (returned
// here as a *felt.Word), which the note loop discards.
type Script func(exec *Executor) (*felt.Word, error)

// InputNote pairs an input note with the script the note loop dyncalls
// (nil for a note with no executable behavior).
type InputNote struct {
	Note   *note.Note
	Script Script
}

// ReferenceBlock carries the fee schedule and current chain height the
// prologue installs, per spec §6's "fee parameters in the reference
// block header".
type ReferenceBlock struct {
	BlockNum            uint32
	VerificationBaseFee uint32
	NativeAssetID       accountid.ID
}

// Inputs is the operand-stack-shaped input contract (spec §6), expressed
// as a struct since there is no operand stack outside the out-of-scope
// VM.
type Inputs struct {
	BlockCommitment          felt.Word
	InitialAccountCommitment felt.Word
	InputNotesCommitment     felt.Word
	AccountIDPrefix          felt.Felt
	AccountIDSuffix          felt.Felt
}

// Outputs is the operand-stack-shaped output contract (spec §6).
type Outputs struct {
	OutputNotesCommitment   felt.Word
	AccountUpdateCommitment felt.Word
	FeeAsset                felt.Word
	ExpirationBlockNum      uint32
}

// InputNotesCommitment computes the sequential hash of (nullifier_or_id,
// metadata_or_empty) pairs over notes, in the order given (spec §6).
func InputNotesCommitment(notes []InputNote) felt.Word {
	words := make([]felt.Word, 0, len(notes)*2)
	for _, n := range notes {
		words = append(words, n.Note.ID(), n.Note.Metadata.Word())
	}
	return sponge.SequentialHash(words...)
}

// Verifier re-executes a transaction and compares its outputs, standing
// in for the out-of-scope proof verifier (spec §6's "transaction
// verifier" thin collaborator).
type Verifier interface {
	Verify(inputs Inputs, outputs Outputs) (bool, error)
}

// Executor drives one transaction through the prologue / note-loop /
// tx-script / epilogue pipeline against a single account. It is safe for
// exactly one in-flight transaction; construct a fresh Executor for each
// transaction, since an Executor has no reset method (spec §5).
type Executor struct {
	params kernelconfig.Params
	advice advice.Provider
	ctx    *kctx.Context

	account  *account.Account
	nativeID accountid.ID

	initialAccountCommitment felt.Word
	initialNonce             felt.Felt
	initialVaultRoot         felt.Word
	initialValueSlots        [kernelconfig.NumStorageSlots]felt.Word
	initialMapLeaves         map[int]map[felt.Word]felt.Word

	delta *delta.Delta

	inputs           []InputNote
	currentNoteIndex int
	inNoteLoop       bool

	outputNotes []*note.Note

	cycles uint64

	inputVaultRoot felt.Word

	authKeyWord felt.Word
	useKauth    bool

	expirationDelta uint32
	expirationSet   bool
}

// NewExecutor constructs an executor bound to acct, ready for Prologue.
func NewExecutor(params kernelconfig.Params, adv advice.Provider, acct *account.Account) *Executor {
	return &Executor{
		params:  params,
		advice:  adv,
		ctx:     kctx.New(),
		account: acct,
	}
}

// UseDefaultAuth registers the ed25519 default auth procedure (package
// kauth), reading the account's public key from the reserved storage
// slot (spec §4.13).
func (e *Executor) UseDefaultAuth() {
	e.useKauth = true
}

func (e *Executor) recordCycles(n uint64) {
	e.cycles += n
}

// Prologue installs reference-block data, the account and input notes,
// captures the initial state snapshot, and enters Native+Account context
// (spec §4.7).
func (e *Executor) Prologue(inputs Inputs, refBlock ReferenceBlock, notes []InputNote) error {
	log.Debug("prologue started")
	if len(notes) > e.params.MaxInputNotes {
		return kernelerrors.New(kernelerrors.ErrTooManyInputNotes, "input note count exceeds cap")
	}
	if inputs.AccountIDPrefix != e.account.ID.Prefix || inputs.AccountIDSuffix != e.account.ID.Suffix {
		return kernelerrors.New(kernelerrors.ErrInvalidAccountID, "prologue account id does not match installed account")
	}
	if err := e.account.ID.Validate(); err != nil {
		return err
	}

	e.nativeID = e.account.ID
	e.initialNonce = e.account.Nonce
	e.initialAccountCommitment = e.account.Commitment()
	if e.initialAccountCommitment != inputs.InitialAccountCommitment {
		return kernelerrors.AssertError("prologue installed account does not match declared initial commitment")
	}
	e.initialVaultRoot = e.account.Vault.Root()

	// input_vault_root mirrors how the epilogue builds output_vault_root
	// (spec §4.7 step 7): a copy of the vault plus every note's assets,
	// input notes on this side instead of output notes. Grounded on the
	// reference test fixture's input note that exists purely "for
	// maintaining cohesion of involved assets" -- an input note's assets
	// count toward conservation whether or not the note's script ever
	// deposits them into the account vault itself.
	inputVault := e.account.Vault.Clone()
	for _, in := range notes {
		for _, a := range in.Note.Assets {
			asset := vault.Asset{Word: a}
			var err error
			if asset.IsFungible() {
				_, err = inputVault.AddFungible(asset)
			} else {
				_, err = inputVault.AddNonFungible(asset)
			}
			if err != nil {
				return kernelerrors.New(kernelerrors.ErrAssetsNotPreserved, "input note asset could not be reconciled against the account vault")
			}
		}
	}
	e.inputVaultRoot = inputVault.Root()

	for i := 0; i < kernelconfig.NumStorageSlots; i++ {
		w, err := e.account.Storage.GetItem(i)
		if err == nil {
			e.initialValueSlots[i] = w
		}
	}
	e.initialMapLeaves = make(map[int]map[felt.Word]felt.Word)
	for i := 0; i < kernelconfig.NumStorageSlots; i++ {
		kind, err := e.account.Storage.SlotKindAt(i)
		if err != nil || kind != 0 {
			if leaves, err := e.account.Storage.MapLeaves(i); err == nil {
				e.initialMapLeaves[i] = leaves
			}
		}
	}

	e.inputs = notes
	e.delta = delta.New(e.nativeID)
	e.currentNoteIndex = 0
	e.ctx.Enter(kctx.TagNative | kctx.TagAccount)

	if e.useKauth {
		w, err := e.account.Storage.GetItem(kauth.ReservedStorageSlot)
		if err != nil {
			return err
		}
		e.authKeyWord = w
	}

	log.Debug("prologue ended")
	return nil
}

// NoteLoop runs every installed input note's script in Note context, in
// order, discarding any Word the script leaves behind, then resets the
// current-note pointer (spec §4.7). Note context is entered combined
// with Account, since calling an account procedure from a note script
// is one of the two ways (the other being RunTxScript) that a
// transaction is allowed to mutate the native account.
func (e *Executor) NoteLoop() error {
	e.inNoteLoop = true
	defer func() { e.inNoteLoop = false }()

	for i, n := range e.inputs {
		e.currentNoteIndex = i
		if n.Script == nil {
			continue
		}
		leave := e.ctx.Enter(kctx.TagNote | kctx.TagAccount)
		_, err := n.Script(e)
		leave()
		if err != nil {
			return err
		}
		e.recordCycles(1)
	}
	e.currentNoteIndex = 0
	return nil
}

// CurrentNoteIndex returns the input note index the note loop is
// currently executing.
func (e *Executor) CurrentNoteIndex() int {
	return e.currentNoteIndex
}

// CurrentNote returns the note the note loop is currently executing, or
// nil outside the loop.
func (e *Executor) CurrentNote() *note.Note {
	if !e.inNoteLoop || e.currentNoteIndex >= len(e.inputs) {
		return nil
	}
	return e.inputs[e.currentNoteIndex].Note
}

// RunTxScript runs script in Native context if provided; a nil script is
// silently skipped (spec §4.7).
func (e *Executor) RunTxScript(script Script) error {
	if script == nil {
		return nil
	}
	leave := e.ctx.Enter(kctx.TagNative | kctx.TagAccount)
	defer leave()
	_, err := script(e)
	if err != nil {
		return err
	}
	e.recordCycles(1)
	return nil
}

// --- Account-level kernel entry points, callable from Account context. ---

func (e *Executor) requireAccount() error {
	return e.ctx.Require(kctx.TagAccount)
}

// AddFungible mutates the native account's vault and records the
// resulting delta.
func (e *Executor) AddFungible(a vault.Asset) (vault.Asset, error) {
	if err := e.requireAccount(); err != nil {
		return vault.Asset{}, err
	}
	res, err := e.account.Vault.AddFungible(a)
	if err != nil {
		return vault.Asset{}, err
	}
	e.delta.AddFungible(vault.VaultKey(a), a.FungibleAmount())
	e.recordCycles(1)
	return res, nil
}

// RemoveFungible mutates the native account's vault and records the
// resulting delta.
func (e *Executor) RemoveFungible(a vault.Asset) (vault.Asset, error) {
	if err := e.requireAccount(); err != nil {
		return vault.Asset{}, err
	}
	res, err := e.account.Vault.RemoveFungible(a)
	if err != nil {
		return vault.Asset{}, err
	}
	e.delta.RemoveFungible(vault.VaultKey(a), a.FungibleAmount())
	e.recordCycles(1)
	return res, nil
}

// AddNonFungible mutates the native account's vault and records the
// resulting delta.
func (e *Executor) AddNonFungible(a vault.Asset) (vault.Asset, error) {
	if err := e.requireAccount(); err != nil {
		return vault.Asset{}, err
	}
	res, err := e.account.Vault.AddNonFungible(a)
	if err != nil {
		return vault.Asset{}, err
	}
	e.delta.AddNonFungible(vault.VaultKey(a))
	e.recordCycles(1)
	return res, nil
}

// RemoveNonFungible mutates the native account's vault and records the
// resulting delta.
func (e *Executor) RemoveNonFungible(a vault.Asset) (vault.Asset, error) {
	if err := e.requireAccount(); err != nil {
		return vault.Asset{}, err
	}
	res, err := e.account.Vault.RemoveNonFungible(a)
	if err != nil {
		return vault.Asset{}, err
	}
	e.delta.RemoveNonFungible(vault.VaultKey(a))
	e.recordCycles(1)
	return res, nil
}

// SetItem mutates a native account value slot and records the resulting
// delta.
func (e *Executor) SetItem(index int, newValue felt.Word) (felt.Word, error) {
	if err := e.requireAccount(); err != nil {
		return felt.Word{}, err
	}
	old, err := e.account.Storage.SetItem(index, newValue)
	if err != nil {
		return felt.Word{}, err
	}
	// Delta commitment step 4 only wants slots whose final word differs
	// from the one captured at prologue (spec §4.5); re-setting a slot
	// back to its initial value must not resurrect it in the delta.
	if newValue != e.initialValueSlots[index] {
		e.delta.SetValueSlot(index, newValue)
	} else {
		e.delta.ClearValueSlot(index)
	}
	e.recordCycles(1)
	return old, nil
}

// SetMapItem mutates a native account map slot entry and records the
// resulting delta.
func (e *Executor) SetMapItem(index int, key, newValue felt.Word) (felt.Word, felt.Word, error) {
	if err := e.requireAccount(); err != nil {
		return felt.Word{}, felt.Word{}, err
	}
	oldRoot, oldValue, err := e.account.Storage.SetMapItem(index, key, newValue)
	if err != nil {
		return felt.Word{}, felt.Word{}, err
	}
	initial := oldValue
	if leaves, ok := e.initialMapLeaves[index]; ok {
		if v, ok := leaves[key]; ok {
			initial = v
		} else {
			initial = felt.EmptyWord
		}
	}
	e.delta.SetMapEntry(index, key, initial, newValue)
	e.recordCycles(1)
	return oldRoot, oldValue, nil
}

// CreateNote appends a new output note (spec §4.6's create_note).
func (e *Executor) CreateNote(n *note.Note) (int, error) {
	if err := e.requireAccount(); err != nil {
		return 0, err
	}
	if len(e.outputNotes) >= e.params.MaxOutputNotes {
		return 0, kernelerrors.New(kernelerrors.ErrTooManyOutputNotes, "output note count at capacity")
	}
	e.outputNotes = append(e.outputNotes, n)
	e.recordCycles(1)
	return len(e.outputNotes) - 1, nil
}

// AddAssetToNote appends asset to output note noteIndex.
func (e *Executor) AddAssetToNote(noteIndex int, asset vault.Asset) error {
	if err := e.requireAccount(); err != nil {
		return err
	}
	if noteIndex < 0 || noteIndex >= len(e.outputNotes) {
		return kernelerrors.New(kernelerrors.ErrStorageIndexOutOfRange, "note index out of range")
	}
	n := e.outputNotes[noteIndex]
	if asset.IsFungible() {
		mergeKey := felt.Word{0, 0, asset.Word[2], asset.Word[3]}
		return n.AddAsset(asset.Word, true, mergeKey, asset.FungibleAmount(), vault.MaxFungibleAmount)
	}
	return n.AddAsset(asset.Word, false, felt.EmptyWord, 0, 0)
}

// minExpirationDelta and maxExpirationDelta bound the block_height_delta
// a transaction may request (spec §4.6).
const (
	minExpirationDelta = 1
	maxExpirationDelta = 0xFFFF
)

// UpdateExpirationBlockDelta sets the transaction's expiration delta
// (spec §4.6's update_expiration_block_delta). Only decreases are
// honored after the first call; an attempted increase leaves the
// existing value in place and returns no error, matching the note-loop
// scenario where a script observes an already-tighter deadline.
func (e *Executor) UpdateExpirationBlockDelta(deltaBlocks uint32) error {
	if deltaBlocks < minExpirationDelta || deltaBlocks > maxExpirationDelta {
		return kernelerrors.New(kernelerrors.ErrExpirationDeltaOutOfRange, "expiration delta out of [1, 0xFFFF]")
	}
	if !e.expirationSet || deltaBlocks < e.expirationDelta {
		e.expirationDelta = deltaBlocks
		e.expirationSet = true
	}
	e.recordCycles(1)
	return nil
}

// AuthenticateAndTrackProcedure and AssertAuthProcedure delegate to the
// call-context tracker (spec §4.8).
func (e *Executor) AuthenticateAndTrackProcedure(procedureName string) {
	e.ctx.AuthenticateAndTrackProcedure(procedureName)
}

func (e *Executor) AssertAuthProcedure(procedureName string) {
	e.ctx.AssertAuthProcedure(procedureName)
}

// ilog2Plus1 computes floor(log2(v)) + 1, the fee law's cycle-count term
// (spec §8 "Fee law": fee = verification_base_fee * (floor(log2(N)) +
// 1)). bits.Len64(v) already is floor(log2(v)) + 1 for v >= 1 -- no
// separate rounding step is needed, and using ceil(log2(v)) + 1 instead
// overcharges by one whole base fee unit whenever v is not an exact
// power of two.
func ilog2Plus1(v uint64) uint64 {
	if v == 0 {
		return 1
	}
	return uint64(bits.Len64(v))
}

// Epilogue runs the nine finalization steps (spec §4.7) and returns the
// transaction outputs.
func (e *Executor) Epilogue(refBlock ReferenceBlock, authSig []byte, authArgs felt.Word) (Outputs, error) {
	log.Debug("epilogue started")
	// Step 1.
	if err := e.ctx.Require(kctx.TagNative | kctx.TagAccount); err != nil {
		return Outputs{}, kernelerrors.New(kernelerrors.ErrInvalidContext, "epilogue did not return to native account context")
	}

	// Snapshot the account commitment as the note loop and tx script left
	// it, before the epilogue's own mandatory nonce increment and fee
	// charge run -- the empty-transaction rule below asks whether the
	// transaction's own logic did anything, not whether the unconditional
	// bookkeeping that runs on every transaction did.
	preEpilogueCommitment := e.account.Commitment()

	// Step 2.
	leaveAuth, err := e.ctx.EnterAuth()
	if err != nil {
		return Outputs{}, err
	}
	if e.account.Nonce != e.initialNonce {
		return Outputs{}, kernelerrors.New(kernelerrors.ErrNonceInconsistent, "account nonce changed outside the authenticated increment")
	}
	e.delta.IncrementNonce()
	e.account.Nonce = e.account.Nonce.Add(felt.New(1))
	idNonceDigest := sponge.SequentialHash(felt.Word{0, felt.New(1), e.nativeID.Prefix, e.nativeID.Suffix})
	if e.useKauth {
		if err := kauth.Verify(e.authKeyWord, idNonceDigest, authSig); err != nil {
			leaveAuth()
			return Outputs{}, err
		}
	}
	e.ctx.AuthenticateAndTrackProcedure("auth")
	leaveAuth()
	if !e.ctx.WasCalled("auth") {
		return Outputs{}, kernelerrors.AssertError("auth procedure did not track itself")
	}

	// Step 3.
	estimatedTotalCycles := e.cycles + kernelconfig.EstimatedAfterComputeFeeCycles
	fee := uint64(refBlock.VerificationBaseFee) * ilog2Plus1(estimatedTotalCycles)

	// Step 4.
	feeAsset, err := vault.NewFungible(refBlock.NativeAssetID, fee)
	if err != nil {
		return Outputs{}, err
	}
	if _, err := e.account.Vault.RemoveFungible(feeAsset); err != nil {
		return Outputs{}, kernelerrors.New(kernelerrors.ErrInsufficientFeeBalance, "insufficient balance to pay transaction fee")
	}
	e.delta.RemoveFungible(vault.VaultKey(feeAsset), fee)

	// Step 5.
	finalAccountCommitment := e.account.Commitment()
	deltaCommitment := e.delta.Commitment()

	// Step 6.
	accountUpdateCommitment := sponge.HashWords(finalAccountCommitment, deltaCommitment)

	// Step 7: copy the (post-fee) account vault and add back every asset
	// that left it via an output note, plus the fee asset itself (the
	// fee leaves the account exactly like an output note's assets do);
	// the result must equal input_vault_root, or assets were not
	// preserved (spec §4.7 step 7).
	outputVault := e.account.Vault.Clone()
	for _, on := range e.outputNotes {
		for _, a := range on.Assets {
			asset := vault.Asset{Word: a}
			var err error
			if asset.IsFungible() {
				_, err = outputVault.AddFungible(asset)
			} else {
				_, err = outputVault.AddNonFungible(asset)
			}
			if err != nil {
				return Outputs{}, kernelerrors.New(kernelerrors.ErrAssetsNotPreserved, "output note asset could not be reconciled against the input vault")
			}
		}
	}
	if _, err := outputVault.AddFungible(feeAsset); err != nil {
		return Outputs{}, kernelerrors.New(kernelerrors.ErrAssetsNotPreserved, "fee asset could not be reconciled against the input vault")
	}
	if outputVault.Root() != e.inputVaultRoot {
		return Outputs{}, kernelerrors.New(kernelerrors.ErrAssetsNotPreserved, "total assets not preserved across the transaction")
	}

	// Step 8.
	outputNotesCommitment := note.OutputNotesCommitment(e.outputNotes)

	// Empty-transaction rule: judged on the state as the note loop and tx
	// script left it (preEpilogueCommitment), not on finalAccountCommitment,
	// since step 2's nonce increment and step 4's fee charge always move
	// the latter even when the transaction itself did nothing (spec §4.7,
	// §8 scenario 4).
	if preEpilogueCommitment == e.initialAccountCommitment && e.inputNotesCommitmentIsEmpty() {
		return Outputs{}, kernelerrors.New(kernelerrors.ErrEmptyTransaction, "transaction made no account or note changes")
	}

	// Step 9. If the transaction never called update_expiration_block_delta,
	// the maximum delta applies (spec §4.6 leaves the unset case to the
	// implementation; the widest window that still fits the [1, 0xFFFF]
	// range is the natural default).
	expDelta := e.expirationDelta
	if !e.expirationSet {
		expDelta = maxExpirationDelta
	}
	log.Debug("epilogue ended")
	return Outputs{
		OutputNotesCommitment:   outputNotesCommitment,
		AccountUpdateCommitment: accountUpdateCommitment,
		FeeAsset:                feeAsset.Word,
		ExpirationBlockNum:      refBlock.BlockNum + expDelta,
	}, nil
}

func (e *Executor) inputNotesCommitmentIsEmpty() bool {
	return len(e.inputs) == 0
}
