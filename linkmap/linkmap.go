// Copyright (c) 2026 The veyra developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

// Package linkmap implements the host-assisted ordered key/value map
// used to back every delta-bookkeeping collection in the kernel (spec
// §4.2). It gives O(1) ordered iteration -- required for a deterministic
// delta commitment -- while still validating every navigation claim the
// host proposes, so a dishonest host cannot smuggle in an out-of-order
// or duplicate entry.
//
// The package is split into two cooperating halves, mirroring the
// "untrusted host proposes, kernel verifies" architecture spec §9
// describes: Host always answers navigation queries honestly and is
// what a real advice-channel implementation would be; Map is the
// verifying side a test can point at either an honest Host or a
// deliberately dishonest stand-in.
package linkmap

import (
	"github.com/veyra-network/kernel/felt"
	"github.com/veyra-network/kernel/kernelerrors"
)

// EntryPtr indexes an entry within a map's dedicated arena. It is opaque
// to callers outside this package.
type EntryPtr int

// invalidPtr marks "no entry" (used for the head sentinel).
const invalidPtr EntryPtr = -1

// Entry is one (KEY, VALUE0, VALUE1) triple threaded into the map's
// doubly linked, key-sorted list. mapTag ties the entry back to the
// logical map it belongs to so a shared arena can be safely demultiplexed
// across many logical maps (spec §4.2).
type Entry struct {
	Key        felt.Word
	Value0     felt.Word
	Value1     felt.Word
	mapTag     int
	prev, next EntryPtr
}

// ProposalKind is the host's claim about where a key sits (or would sit)
// relative to the current ordering. Exactly one of the three shapes
// spec §4.2 describes.
type ProposalKind int

const (
	// For Set: update an existing entry in place.
	PropUpdate ProposalKind = iota
	// For Set: insert as the new head.
	PropInsertAtHead
	// For Set: insert immediately after the given entry.
	PropInsertAfter
	// For Get: the key is present at the given entry.
	PropFound
	// For Get: the key is absent and would sort before the head.
	PropAbsentAtHead
	// For Get: the key is absent and would sort after the given entry
	// (and before its successor, if any).
	PropAbsentAfter
)

// Proposal is what the host supplies to justify a Set or Get call.
type Proposal struct {
	Kind ProposalKind
	At   EntryPtr // meaningful for PropInsertAfter/PropFound/PropAbsentAfter
}

// Map is the verifying half of the link map. Every arena slot is
// aligned and tagged; Set/Get independently re-derive the answer the
// proposal claims and reject any disagreement. Map never computes a
// proposal itself -- that is Host's job -- it only checks one.
type Map struct {
	tag   int
	arena *[]Entry
	head  EntryPtr

	// host is the honest Proposer paired with this map for SetHonest and
	// GetHonest. It shares this map's head cell by pointer, so it always
	// sees the current ordering without needing to be told about every
	// mutation separately.
	host *Host
}

// NewArena returns a fresh, empty entry arena shared by every logical
// map that is demultiplexed out of it.
func NewArena() *[]Entry {
	arena := make([]Entry, 0, 16)
	return &arena
}

// New creates a logical map with the given tag, backed by arena. Two
// maps sharing an arena must use distinct tags.
func New(arena *[]Entry, tag int) *Map {
	m := &Map{tag: tag, arena: arena, head: invalidPtr}
	m.host = &Host{tag: tag, arena: arena, head: &m.head}
	return m
}

func (m *Map) validPtr(p EntryPtr) error {
	if p < 0 || int(p) >= len(*m.arena) {
		return kernelerrors.New(kernelerrors.ErrLinkMapPointerOutOfRange, "link map entry pointer out of range")
	}
	if (*m.arena)[p].mapTag != m.tag {
		return kernelerrors.New(kernelerrors.ErrLinkMapWrongTag, "link map entry belongs to a different map")
	}
	return nil
}

func (m *Map) entry(p EntryPtr) *Entry {
	return &(*m.arena)[p]
}

func (m *Map) headEntry() *Entry {
	if m.head == invalidPtr {
		return nil
	}
	return m.entry(m.head)
}

// Set inserts or updates KEY -> (V0, V1) per the host's proposal,
// independently validating the proposal against the strict total order
// over Words. Returns whether KEY was newly inserted.
func (m *Map) Set(key, v0, v1 felt.Word, prop Proposal) (isNewKey bool, err error) {
	switch prop.Kind {
	case PropUpdate:
		if err := m.validPtr(prop.At); err != nil {
			return false, err
		}
		e := m.entry(prop.At)
		if e.Key.Compare(key) != 0 {
			return false, kernelerrors.New(kernelerrors.ErrLinkMapOrderingViolation, "update proposal key mismatch")
		}
		e.Value0, e.Value1 = v0, v1
		return false, nil

	case PropInsertAtHead:
		oldHead := m.head
		if oldHead != invalidPtr && !key.Less(m.entry(oldHead).Key) {
			return false, kernelerrors.New(kernelerrors.ErrLinkMapOrderingViolation, "insert-at-head proposal is not strictly less than the current head")
		}
		p := m.append(Entry{Key: key, Value0: v0, Value1: v1, mapTag: m.tag, prev: invalidPtr, next: oldHead})
		if oldHead != invalidPtr {
			m.entry(oldHead).prev = p
		}
		m.head = p
		return true, nil

	case PropInsertAfter:
		if err := m.validPtr(prop.At); err != nil {
			return false, err
		}
		predIdx := prop.At
		predKey := m.entry(predIdx).Key
		if !predKey.Less(key) {
			return false, kernelerrors.New(kernelerrors.ErrLinkMapOrderingViolation, "insert-after proposal predecessor is not strictly less than key")
		}
		succIdx := m.entry(predIdx).next
		if succIdx != invalidPtr {
			if !key.Less(m.entry(succIdx).Key) {
				return false, kernelerrors.New(kernelerrors.ErrLinkMapOrderingViolation, "insert-after proposal key is not strictly less than successor")
			}
		}
		// Append after reading everything we need from the arena: append
		// may reallocate the backing array, invalidating any *Entry taken
		// before this point.
		p := m.append(Entry{Key: key, Value0: v0, Value1: v1, mapTag: m.tag, prev: predIdx, next: succIdx})
		m.entry(predIdx).next = p
		if succIdx != invalidPtr {
			m.entry(succIdx).prev = p
		}
		return true, nil
	}
	return false, kernelerrors.New(kernelerrors.ErrLinkMapOrderingViolation, "unknown set proposal kind")
}

// Get looks up KEY per the host's proposal, independently validating
// the absence/presence claim.
func (m *Map) Get(key felt.Word, prop Proposal) (contains bool, v0, v1 felt.Word, err error) {
	switch prop.Kind {
	case PropFound:
		if err := m.validPtr(prop.At); err != nil {
			return false, felt.EmptyWord, felt.EmptyWord, err
		}
		e := m.entry(prop.At)
		if e.Key.Compare(key) != 0 {
			return false, felt.EmptyWord, felt.EmptyWord, kernelerrors.New(kernelerrors.ErrLinkMapOrderingViolation, "found proposal key mismatch")
		}
		return true, e.Value0, e.Value1, nil

	case PropAbsentAtHead:
		h := m.headEntry()
		if h != nil && !key.Less(h.Key) {
			return false, felt.EmptyWord, felt.EmptyWord, kernelerrors.New(kernelerrors.ErrLinkMapOrderingViolation, "absent-at-head proposal is not strictly less than the current head")
		}
		return false, felt.EmptyWord, felt.EmptyWord, nil

	case PropAbsentAfter:
		if err := m.validPtr(prop.At); err != nil {
			return false, felt.EmptyWord, felt.EmptyWord, err
		}
		pred := m.entry(prop.At)
		if !pred.Key.Less(key) {
			return false, felt.EmptyWord, felt.EmptyWord, kernelerrors.New(kernelerrors.ErrLinkMapOrderingViolation, "absent-after proposal predecessor is not strictly less than key")
		}
		if pred.next != invalidPtr {
			succ := m.entry(pred.next)
			if !key.Less(succ.Key) {
				return false, felt.EmptyWord, felt.EmptyWord, kernelerrors.New(kernelerrors.ErrLinkMapOrderingViolation, "absent-after proposal key is not strictly less than successor")
			}
		}
		return false, felt.EmptyWord, felt.EmptyWord, nil
	}
	return false, felt.EmptyWord, felt.EmptyWord, kernelerrors.New(kernelerrors.ErrLinkMapOrderingViolation, "unknown get proposal kind")
}

func (m *Map) append(e Entry) EntryPtr {
	*m.arena = append(*m.arena, e)
	return EntryPtr(len(*m.arena) - 1)
}

// Iter returns every (KEY, VALUE0, VALUE1) triple in ascending key
// order, the map's native, O(1)-per-step iteration order.
func (m *Map) Iter() []Entry {
	out := make([]Entry, 0)
	for p := m.head; p != invalidPtr; {
		e := m.entry(p)
		out = append(out, Entry{Key: e.Key, Value0: e.Value0, Value1: e.Value1})
		p = e.next
	}
	return out
}

// Len returns the number of entries currently linked into this logical
// map.
func (m *Map) Len() int {
	n := 0
	for p := m.head; p != invalidPtr; {
		n++
		p = m.entry(p).next
	}
	return n
}
