// Copyright (c) 2026 The veyra developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package sponge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/veyra-network/kernel/felt"
)

func w(a uint64) felt.Word {
	return felt.Word{felt.New(a), 0, 0, 0}
}

func TestSequentialHashEmptyIsEmptyWord(t *testing.T) {
	assert.Equal(t, felt.EmptyWord, SequentialHash())
}

func TestSequentialHashDeterministic(t *testing.T) {
	a := SequentialHash(w(1), w(2), w(3))
	b := SequentialHash(w(1), w(2), w(3))
	assert.Equal(t, a, b)
}

func TestSequentialHashOddPadsWithEmptyWord(t *testing.T) {
	a := SequentialHash(w(1))
	b := SequentialHash(w(1), felt.EmptyWord)
	assert.Equal(t, a, b, "odd-length input must pad with EMPTY_WORD before the final permutation")
}

func TestSequentialHashOrderSensitive(t *testing.T) {
	a := SequentialHash(w(1), w(2))
	b := SequentialHash(w(2), w(1))
	assert.NotEqual(t, a, b)
}

func TestHashWordsDeterministicAndDistinct(t *testing.T) {
	d1 := HashWords(w(1), w(2))
	d2 := HashWords(w(1), w(2))
	d3 := HashWords(w(2), w(1))
	assert.Equal(t, d1, d2)
	assert.NotEqual(t, d1, d3)
}

func TestAccumulatorMatchesSequentialHash(t *testing.T) {
	acc := NewAccumulator()
	acc.AbsorbWords(w(1), w(2), w(3), w(4))
	assert.Equal(t, SequentialHash(w(1), w(2), w(3), w(4)), acc.Squeeze())
}
