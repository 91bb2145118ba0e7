// Copyright (c) 2026 The veyra developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

// Package sponge implements the kernel's single cryptographic hash: a
// domain-separated sequential sponge over Words, plus its derived
// two-to-one compression and squeeze operations.
//
// The arithmetic-VM's native Rescue/Poseidon permutation is out of scope
// for this repository (spec §1); the permutation here is instead built
// from unkeyed blake2s hashes, grounded on the teacher's
// params/hash.HashFunc (also blake2s) sequential-absorption idiom used
// by its Merkle-mountain-range accumulator.
package sponge

import (
	"github.com/veyra-network/kernel/felt"
	"golang.org/x/crypto/blake2s"
)

// Digest is a Word produced by the kernel hash.
type Digest = felt.Word

// state holds the sponge's rate (2 words) and capacity (1 word).
type state struct {
	rate0, rate1 felt.Word
	capacity     felt.Word
}

// permute runs one permutation round: it derives a fresh state from the
// byte encoding of the current one via blake2s, then folds the digest
// back into three words (rate0, rate1, capacity) so the construction
// remains a fixed-width permutation over 12 felts.
func (s *state) permute() {
	buf := make([]byte, 0, 96)
	b0 := s.capacity.Bytes()
	b1 := s.rate0.Bytes()
	b2 := s.rate1.Bytes()
	buf = append(buf, b0[:]...)
	buf = append(buf, b1[:]...)
	buf = append(buf, b2[:]...)

	d0 := blake2s.Sum256(buf)
	d1 := blake2s.Sum256(append(buf, 0x01))
	d2 := blake2s.Sum256(append(buf, 0x02))

	s.capacity = felt.FromBytes(d0)
	s.rate0 = felt.FromBytes(d1)
	s.rate1 = felt.FromBytes(d2)
}

func newState() *state {
	return &state{}
}

// absorb XORs (here: felt-adds, since the state is field-valued) a rate
// word pair into the sponge and permutes.
func (s *state) absorb(r0, r1 felt.Word) {
	for i := 0; i < 4; i++ {
		s.rate0[i] = s.rate0[i].Add(r0[i])
		s.rate1[i] = s.rate1[i].Add(r1[i])
	}
	s.permute()
}

func (s *state) squeeze() Digest {
	return s.rate1
}

// HashWords is the two-to-one compression function used to build Merkle
// trees: it absorbs the two input words as a single rate pair and
// squeezes the second rate word.
func HashWords(w1, w2 felt.Word) Digest {
	s := newState()
	s.absorb(w1, w2)
	return s.squeeze()
}

// SequentialHash absorbs an arbitrary list of words two at a time
// (domain-separated by construction: capacity starts at zero and is
// never reset between absorptions) and squeezes the final digest.
//
// Odd-length lists are padded with EMPTY_WORD before the final
// permutation, per spec: the padding is absorbed, not implicit.
// A zero-length list commits to EMPTY_WORD without invoking the
// permutation at all.
func SequentialHash(words ...felt.Word) Digest {
	if len(words) == 0 {
		return felt.EmptyWord
	}
	padded := words
	if len(padded)%2 != 0 {
		padded = append(append([]felt.Word{}, padded...), felt.EmptyWord)
	}
	s := newState()
	for i := 0; i < len(padded); i += 2 {
		s.absorb(padded[i], padded[i+1])
	}
	return s.squeeze()
}

// Accumulator is an in-progress sequential-hash accumulation whose
// digest (second rate word) can be squeezed at any point. Exposed for
// callers (the account delta commitment, §4.5) that need to compare an
// intermediate digest against a later one without restarting the
// absorption.
type Accumulator struct {
	s *state
}

// NewAccumulator starts a fresh sequential-hash accumulation.
func NewAccumulator() *Accumulator {
	return &Accumulator{s: newState()}
}

// Absorb feeds one more pair of rate words into the accumulation.
func (a *Accumulator) Absorb(r0, r1 felt.Word) {
	a.s.absorb(r0, r1)
}

// AbsorbWords absorbs an arbitrary-length list of words, padding with
// EMPTY_WORD if necessary, exactly like SequentialHash.
func (a *Accumulator) AbsorbWords(words ...felt.Word) {
	padded := words
	if len(padded)%2 != 0 {
		padded = append(append([]felt.Word{}, padded...), felt.EmptyWord)
	}
	for i := 0; i < len(padded); i += 2 {
		a.s.absorb(padded[i], padded[i+1])
	}
}

// Squeeze returns the current digest without consuming the accumulator;
// further Absorb calls may follow.
func (a *Accumulator) Squeeze() Digest {
	return a.s.squeeze()
}
