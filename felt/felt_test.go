// Copyright (c) 2026 The veyra developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package felt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddSubRoundTrip(t *testing.T) {
	a := New(12345)
	b := New(987654321)
	sum := a.Add(b)
	assert.Equal(t, a, sum.Sub(b))
	assert.Equal(t, b, sum.Sub(a))
}

func TestAddWraps(t *testing.T) {
	a := Felt(Modulus - 1)
	b := New(2)
	assert.Equal(t, New(1), a.Add(b))
}

func TestNegIsAdditiveInverse(t *testing.T) {
	a := New(42)
	assert.Equal(t, Felt(0), a.Add(a.Neg()))
	assert.Equal(t, Felt(0), Felt(0).Neg())
}

func TestMulByOneAndZero(t *testing.T) {
	a := New(918273645)
	assert.Equal(t, a, a.Mul(New(1)))
	assert.Equal(t, Felt(0), a.Mul(New(0)))
}

func TestMulModulusMinusOne(t *testing.T) {
	a := Felt(Modulus - 1)
	// (p-1) * (p-1) mod p == 1
	assert.Equal(t, New(1), a.Mul(a))
}

func TestNewFromInt64Negative(t *testing.T) {
	a := NewFromInt64(-1)
	assert.Equal(t, Felt(Modulus-1), a)
	assert.Equal(t, Felt(0), a.Add(New(1)))
}

func TestWordCompareStrictOrder(t *testing.T) {
	w1 := Word{New(1), New(0), New(0), New(0)}
	w2 := Word{New(0), New(0), New(0), New(1)}
	assert.True(t, w1.Less(w2), "position 3 dominates")
	assert.Equal(t, 0, w1.Compare(w1))
	assert.Equal(t, -1, w1.Compare(w2))
	assert.Equal(t, 1, w2.Compare(w1))
}

func TestWordBytesRoundTrip(t *testing.T) {
	w := Word{New(1), New(2), New(3), New(4)}
	b := w.Bytes()
	assert.Equal(t, w, FromBytes(b))
}

func TestEmptyWord(t *testing.T) {
	assert.True(t, EmptyWord.IsEmpty())
	assert.False(t, Word{New(1), 0, 0, 0}.IsEmpty())
}
