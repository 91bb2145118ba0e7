// Copyright (c) 2026 The veyra developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

// Package kernelconfig holds the transaction kernel's tunable
// parameters: fee computation inputs, the native asset id, and the
// resource caps enforced throughout the other domain packages. Grounded
// on the teacher's repo.Config plain-struct style (repo/config.go), but
// without its go-flags CLI tags -- those belong to cmd/kernelharness,
// which is the one binary in this repository that parses a command
// line.
package kernelconfig

import "github.com/veyra-network/kernel/accountid"

// Resource caps shared with package note and package txkernel (spec
// §5).
const (
	MaxInputNotes     = 1024
	MaxOutputNotes    = 1024
	MaxAssetsPerNote  = 256
	MaxNoteInputs     = 128
	NumStorageSlots   = 255
)

// EstimatedAfterComputeFeeCycles is the fixed cycle estimate the fee
// formula adds for the epilogue steps that still have to run after the
// fee itself is computed (spec §4.7 step 3).
const EstimatedAfterComputeFeeCycles = 4096

// Params carries the reference-block-derived and network-wide values the
// kernel needs but does not itself decide: the fee schedule and the
// native asset used to pay fees (spec §6).
type Params struct {
	// VerificationBaseFee is the reference block's base fee, spec §4.7
	// step 3's `verification_base_fee(ref_block)`; the fee is this value
	// times floor(log2(estimated cycles)) + 1.
	VerificationBaseFee uint32

	// NativeAssetID is the faucet id fees are denominated in and paid
	// from (spec §4.7 step 4).
	NativeAssetID accountid.ID

	MaxInputNotes    int
	MaxOutputNotes   int
	MaxAssetsPerNote int
	MaxNoteInputs    int
	NumStorageSlots  int
}

// DefaultParams returns Params with the resource caps spec §5 fixes and
// a zero-valued fee schedule; callers must set VerificationBaseFee and
// NativeAssetID from the reference block before use.
func DefaultParams() Params {
	return Params{
		MaxInputNotes:    MaxInputNotes,
		MaxOutputNotes:   MaxOutputNotes,
		MaxAssetsPerNote: MaxAssetsPerNote,
		MaxNoteInputs:    MaxNoteInputs,
		NumStorageSlots:  NumStorageSlots,
	}
}
