// Copyright (c) 2026 The veyra developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

// Package felt implements the finite-field scalar ("felt") and the
// four-felt Word that the kernel hashes and stores everything in.
package felt

import (
	"encoding/binary"
	"fmt"
	"math/bits"
)

// Modulus is the Goldilocks prime p = 2^64 - 2^32 + 1, matching the
// field used by the STARK VM this kernel fronts.
const Modulus uint64 = 0xFFFFFFFF00000001

// Felt is an element of Z/pZ. The zero value is 0.
type Felt uint64

// New reduces v modulo Modulus.
func New(v uint64) Felt {
	if v >= Modulus {
		v -= Modulus
	}
	return Felt(v)
}

// NewFromInt64 reduces a signed value into the field using two's
// complement wraparound, i.e. -1 maps to Modulus-1.
func NewFromInt64(v int64) Felt {
	if v >= 0 {
		return New(uint64(v))
	}
	return New(Modulus - uint64(-v)%Modulus)
}

func (f Felt) Uint64() uint64 { return uint64(f) }

// Add returns f+g mod p.
func (f Felt) Add(g Felt) Felt {
	sum, carry := bits.Add64(uint64(f), uint64(g), 0)
	if carry != 0 || sum >= Modulus {
		sum -= Modulus
	}
	return Felt(sum)
}

// Sub returns f-g mod p.
func (f Felt) Sub(g Felt) Felt {
	diff, borrow := bits.Sub64(uint64(f), uint64(g), 0)
	if borrow != 0 {
		diff += Modulus
	}
	return Felt(diff)
}

// Neg returns -f mod p.
func (f Felt) Neg() Felt {
	if f == 0 {
		return 0
	}
	return Felt(Modulus - uint64(f))
}

// Mul returns f*g mod p using a 128-bit product reduced by the
// Goldilocks-specific fold (p = 2^64 - 2^32 + 1).
func (f Felt) Mul(g Felt) Felt {
	hi, lo := bits.Mul64(uint64(f), uint64(g))
	return reduce128(hi, lo)
}

// epsilon is p's distance below 2^64: p = 2^64 - epsilon.
const epsilon uint64 = 0xFFFFFFFF

// reduce128 reduces a 128-bit value (hi:lo) modulo the Goldilocks prime,
// following the standard Goldilocks-field reduction (hi split into two
// 32-bit halves, each folded back in using epsilon = 2^32-1).
func reduce128(hi, lo uint64) Felt {
	hiHi := hi >> 32
	hiLo := hi & epsilon

	t0, borrow := bits.Sub64(lo, hiHi, 0)
	if borrow != 0 {
		t0 -= epsilon
	}
	t1 := hiLo * epsilon

	t2, carry := bits.Add64(t0, t1, 0)
	if carry != 0 {
		t2 += epsilon
	}
	if t2 >= Modulus {
		t2 -= Modulus
	}
	return Felt(t2)
}

func (f Felt) String() string { return fmt.Sprintf("%d", uint64(f)) }

// Word is the ordered 4-tuple of felts used throughout the kernel as the
// unit of hashing and storage.
type Word [4]Felt

// EmptyWord is the all-zero Word.
var EmptyWord = Word{0, 0, 0, 0}

// IsEmpty reports whether w equals EmptyWord.
func (w Word) IsEmpty() bool { return w == EmptyWord }

// Bytes encodes w as 32 bytes, little-endian per limb, most-significant
// limb (index 3) last.
func (w Word) Bytes() [32]byte {
	var out [32]byte
	for i, f := range w {
		binary.LittleEndian.PutUint64(out[i*8:i*8+8], f.Uint64())
	}
	return out
}

// FromBytes decodes a Word from its 32-byte encoding.
func FromBytes(b [32]byte) Word {
	var w Word
	for i := range w {
		w[i] = New(binary.LittleEndian.Uint64(b[i*8 : i*8+8]))
	}
	return w
}

// Compare implements the strict total order over Words required by the
// link map: felt-by-felt from the most-significant position (3) downward.
// Returns -1, 0 or 1.
func (w Word) Compare(other Word) int {
	for i := 3; i >= 0; i-- {
		if w[i] < other[i] {
			return -1
		}
		if w[i] > other[i] {
			return 1
		}
	}
	return 0
}

// Less reports whether w sorts strictly before other.
func (w Word) Less(other Word) bool { return w.Compare(other) < 0 }
