// Copyright (c) 2026 The veyra developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

// Package storage implements account storage (spec §4.4): 255 addressable
// slots, each either a plain value slot (a single Word) or a map slot
// backed by its own depth-64 sparse merkle tree. Grounded on the
// teacher's account-state style (blockchain.Account's stake/nonce
// fields) generalized to a slot array, with the per-slot map trees
// reusing package smt exactly as the asset vault does.
package storage

import (
	"github.com/veyra-network/kernel/felt"
	"github.com/veyra-network/kernel/kernelerrors"
	"github.com/veyra-network/kernel/smt"
	"github.com/veyra-network/kernel/sponge"
)

// NumSlots is the number of addressable storage slots, indices 0..254
// (spec §4.4: "Slot index i ∈ [0, 254]").
const NumSlots = 255

// SlotKind distinguishes a plain value slot from a map slot.
type SlotKind uint8

const (
	SlotValue SlotKind = iota
	SlotMap
)

type slot struct {
	kind  SlotKind
	value felt.Word  // meaningful when kind == SlotValue
	tree  *smt.Tree  // meaningful when kind == SlotMap
}

// Storage holds an account's 255 slots.
type Storage struct {
	slots [NumSlots]slot
}

// New returns storage with every slot a zero-valued value slot.
func New() *Storage {
	s := &Storage{}
	for i := range s.slots {
		s.slots[i] = slot{kind: SlotValue, value: felt.EmptyWord}
	}
	return s
}

func checkIndex(i int) error {
	if i < 0 || i >= NumSlots {
		return kernelerrors.New(kernelerrors.ErrStorageIndexOutOfRange, "storage slot index out of range")
	}
	return nil
}

// SetSlotKind converts slot i into a map slot backed by a fresh empty
// tree, or a value slot initialized to EMPTY_WORD. Used when an account's
// code declares a slot's kind at construction time, before any
// transaction touches it.
func (s *Storage) SetSlotKind(i int, kind SlotKind) error {
	if err := checkIndex(i); err != nil {
		return err
	}
	switch kind {
	case SlotValue:
		s.slots[i] = slot{kind: SlotValue, value: felt.EmptyWord}
	case SlotMap:
		s.slots[i] = slot{kind: SlotMap, tree: smt.New()}
	default:
		return kernelerrors.AssertError("unknown slot kind")
	}
	return nil
}

// GetItem returns the value slot i currently holds.
func (s *Storage) GetItem(i int) (felt.Word, error) {
	if err := checkIndex(i); err != nil {
		return felt.Word{}, err
	}
	sl := &s.slots[i]
	if sl.kind != SlotValue {
		return felt.Word{}, kernelerrors.New(kernelerrors.ErrInvalidStorageAccess, "get_item on a map slot")
	}
	return sl.value, nil
}

// SetItem writes newValue to value slot i, returning the old value.
func (s *Storage) SetItem(i int, newValue felt.Word) (felt.Word, error) {
	if err := checkIndex(i); err != nil {
		return felt.Word{}, err
	}
	sl := &s.slots[i]
	if sl.kind != SlotValue {
		return felt.Word{}, kernelerrors.New(kernelerrors.ErrInvalidStorageAccess, "set_item on a map slot")
	}
	old := sl.value
	sl.value = newValue
	return old, nil
}

// GetMapItem returns the value stored at key in map slot i.
func (s *Storage) GetMapItem(i int, key felt.Word) (felt.Word, error) {
	if err := checkIndex(i); err != nil {
		return felt.Word{}, err
	}
	sl := &s.slots[i]
	if sl.kind != SlotMap {
		return felt.Word{}, kernelerrors.New(kernelerrors.ErrInvalidStorageAccess, "get_map_item on a value slot")
	}
	return sl.tree.Get(key), nil
}

// SetMapItem writes newValue at key in map slot i, returning the map's
// old root and the old value at key (spec §4.4).
func (s *Storage) SetMapItem(i int, key, newValue felt.Word) (oldRoot, oldValue felt.Word, err error) {
	if err = checkIndex(i); err != nil {
		return felt.Word{}, felt.Word{}, err
	}
	sl := &s.slots[i]
	if sl.kind != SlotMap {
		return felt.Word{}, felt.Word{}, kernelerrors.New(kernelerrors.ErrInvalidStorageAccess, "set_map_item on a value slot")
	}
	oldRoot = sl.tree.Root()
	oldValue = sl.tree.Set(key, newValue)
	return oldRoot, oldValue, nil
}

// slotRoot returns the digest a slot contributes to the storage
// commitment: the Word itself for value slots, the SMT root for map
// slots (spec §4.4).
func (s *Storage) slotRoot(i int) felt.Word {
	sl := &s.slots[i]
	if sl.kind == SlotMap {
		return sl.tree.Root()
	}
	return sl.value
}

// Commitment computes the domain-separated hash over the storage's 256
// slot roots: the 255 addressable slots plus one reserved trailing slot
// (spec §4.4, DESIGN.md). The reserved slot always contributes
// EMPTY_WORD here; the default auth procedure (package kauth) uses slot
// 254 itself, not the reserved 256th root, to carry its public key.
func (s *Storage) Commitment() felt.Word {
	roots := make([]felt.Word, 0, NumSlots+1)
	for i := 0; i < NumSlots; i++ {
		roots = append(roots, s.slotRoot(i))
	}
	roots = append(roots, felt.EmptyWord)
	return sponge.SequentialHash(roots...)
}

// Clone returns a deep copy of the storage.
func (s *Storage) Clone() *Storage {
	c := &Storage{}
	for i := range s.slots {
		switch s.slots[i].kind {
		case SlotValue:
			c.slots[i] = slot{kind: SlotValue, value: s.slots[i].value}
		case SlotMap:
			t := smt.New()
			for k, v := range s.slots[i].tree.Leaves() {
				t.Set(k, v)
			}
			c.slots[i] = slot{kind: SlotMap, tree: t}
		}
	}
	return c
}

// SlotKindAt reports the kind of slot i.
func (s *Storage) SlotKindAt(i int) (SlotKind, error) {
	if err := checkIndex(i); err != nil {
		return 0, err
	}
	return s.slots[i].kind, nil
}

// MapLeaves returns the (key, value) pairs currently stored in map slot
// i, used by the delta engine to diff against the slot's initial state.
func (s *Storage) MapLeaves(i int) (map[felt.Word]felt.Word, error) {
	if err := checkIndex(i); err != nil {
		return nil, err
	}
	sl := &s.slots[i]
	if sl.kind != SlotMap {
		return nil, kernelerrors.New(kernelerrors.ErrInvalidStorageAccess, "map_leaves on a value slot")
	}
	return sl.tree.Leaves(), nil
}
