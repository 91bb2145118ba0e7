// Copyright (c) 2026 The veyra developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

// Package kernelerrors enumerates the kernel's failure kinds. The core
// never recovers from any error: it aborts the transaction and surfaces
// the kind to the caller.
package kernelerrors

import "fmt"

// AssertError identifies an internal-consistency failure: the advice
// channel (host) supplied data that contradicts an authenticated
// structure the kernel itself maintains. This is distinct from a
// RuleError because it indicates host dishonesty or a kernel bug, not a
// violation of a transaction-level business rule.
type AssertError string

func (e AssertError) Error() string {
	return "assertion failed: " + string(e)
}

// ErrorCode identifies one stable kernel failure kind.
type ErrorCode int

const (
	// Malformed input.
	ErrInvalidAccountID ErrorCode = iota
	ErrInvalidAsset
	ErrInvalidNoteInputsLength
	ErrInvalidNoteTagType
	ErrExpirationDeltaOutOfRange

	// Semantic violations.
	ErrFungibleOverflow
	ErrFungibleUnderflow
	ErrNonFungibleAlreadyExists
	ErrNonFungibleNotFound
	ErrInsufficientFeeBalance
	ErrAssetsNotPreserved
	ErrEmptyTransaction
	ErrNonceInconsistent
	ErrNonceIncrementOutsideAuth
	ErrAuthCalledTwice
	ErrStorageIndexOutOfRange
	ErrInvalidStorageAccess
	ErrTooManyInputNotes
	ErrTooManyOutputNotes
	ErrTooManyAssetsInNote

	// Access control.
	ErrInvalidContext
	ErrMutatingCallFromScript
	ErrAuthenticationFailed

	// Host dishonesty.
	ErrLinkMapPointerOutOfRange
	ErrLinkMapUnaligned
	ErrLinkMapWrongTag
	ErrLinkMapOrderingViolation
	ErrSMTPeekDisagreement
)

var errorCodeStrings = map[ErrorCode]string{
	ErrInvalidAccountID:          "ErrInvalidAccountID",
	ErrInvalidAsset:              "ErrInvalidAsset",
	ErrInvalidNoteInputsLength:   "ErrInvalidNoteInputsLength",
	ErrInvalidNoteTagType:        "ErrInvalidNoteTagType",
	ErrExpirationDeltaOutOfRange: "ErrExpirationDeltaOutOfRange",
	ErrFungibleOverflow:          "ErrFungibleOverflow",
	ErrFungibleUnderflow:         "ErrFungibleUnderflow",
	ErrNonFungibleAlreadyExists:  "ErrNonFungibleAlreadyExists",
	ErrNonFungibleNotFound:       "ErrNonFungibleNotFound",
	ErrInsufficientFeeBalance:    "ErrInsufficientFeeBalance",
	ErrAssetsNotPreserved:        "ErrAssetsNotPreserved",
	ErrEmptyTransaction:          "ErrEmptyTransaction",
	ErrNonceInconsistent:         "ErrNonceInconsistent",
	ErrNonceIncrementOutsideAuth: "ErrNonceIncrementOutsideAuth",
	ErrAuthCalledTwice:           "ErrAuthCalledTwice",
	ErrStorageIndexOutOfRange:    "ErrStorageIndexOutOfRange",
	ErrInvalidStorageAccess:      "ErrInvalidStorageAccess",
	ErrTooManyInputNotes:         "ErrTooManyInputNotes",
	ErrTooManyOutputNotes:        "ErrTooManyOutputNotes",
	ErrTooManyAssetsInNote:       "ErrTooManyAssetsInNote",
	ErrInvalidContext:            "ErrInvalidContext",
	ErrMutatingCallFromScript:    "ErrMutatingCallFromScript",
	ErrAuthenticationFailed:      "ErrAuthenticationFailed",
	ErrLinkMapPointerOutOfRange:  "ErrLinkMapPointerOutOfRange",
	ErrLinkMapUnaligned:          "ErrLinkMapUnaligned",
	ErrLinkMapWrongTag:           "ErrLinkMapWrongTag",
	ErrLinkMapOrderingViolation:  "ErrLinkMapOrderingViolation",
	ErrSMTPeekDisagreement:       "ErrSMTPeekDisagreement",
}

// String returns the ErrorCode as a human-readable name.
func (e ErrorCode) String() string {
	if s := errorCodeStrings[e]; s != "" {
		return s
	}
	return fmt.Sprintf("Unknown ErrorCode (%d)", int(e))
}

// RuleError identifies a transaction-rule violation. Callers can type
// assert to a RuleError and inspect ErrorCode to determine the specific
// reason for the failure.
type RuleError struct {
	ErrorCode   ErrorCode
	Description string
}

func (e RuleError) Error() string {
	return e.Description
}

// New creates a RuleError given a code and a description.
func New(c ErrorCode, desc string) RuleError {
	return RuleError{ErrorCode: c, Description: desc}
}

// Is reports whether err is a RuleError with the given code.
func Is(err error, code ErrorCode) bool {
	e, ok := err.(RuleError)
	return ok && e.ErrorCode == code
}
