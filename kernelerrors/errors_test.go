// Copyright (c) 2026 The veyra developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package kernelerrors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewWrapsCodeAndDescription(t *testing.T) {
	err := New(ErrFungibleOverflow, "amount exceeds cap")
	assert.Equal(t, "amount exceeds cap", err.Error())
	assert.Equal(t, ErrFungibleOverflow, err.ErrorCode)
}

func TestIsMatchesOnlyItsOwnCode(t *testing.T) {
	err := New(ErrEmptyTransaction, "no changes")
	assert.True(t, Is(err, ErrEmptyTransaction))
	assert.False(t, Is(err, ErrAssetsNotPreserved))
}

func TestIsRejectsNonRuleErrors(t *testing.T) {
	assert.False(t, Is(AssertError("host lied"), ErrEmptyTransaction))
	assert.False(t, Is(nil, ErrEmptyTransaction))
}

func TestErrorCodeStringIsStable(t *testing.T) {
	assert.Equal(t, "ErrFungibleOverflow", ErrFungibleOverflow.String())
	assert.Equal(t, "ErrTooManyInputNotes", ErrTooManyInputNotes.String())
}

func TestErrorCodeStringFallsBackForUnknownCode(t *testing.T) {
	unknown := ErrorCode(9999)
	assert.Contains(t, unknown.String(), "Unknown ErrorCode")
}

func TestAssertErrorMessage(t *testing.T) {
	err := AssertError("smt peek disagreement")
	assert.Equal(t, "assertion failed: smt peek disagreement", err.Error())
}
