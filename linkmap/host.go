// Copyright (c) 2026 The veyra developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package linkmap

import "github.com/veyra-network/kernel/felt"

// Proposer is anything that can answer Set/Get navigation queries for a
// map's current ordering. Host is the honest implementation production
// code uses; a test can implement Proposer itself to hand Map a
// deliberately dishonest stand-in and assert the verification in Set/Get
// rejects it.
type Proposer interface {
	ProposeSet(key felt.Word) Proposal
	ProposeGet(key felt.Word) Proposal
}

// Host is the honest reference proposer (spec §4.2, §9): it mirrors a
// Map's arena, tag, and head pointer and always answers with the
// correct navigation claim for the map's current ordering. A real
// advice-channel host would compute the same claims off-chain from its
// own copy of the map's contents; Host plays that role in-process for
// callers -- namely Map's own SetHonest/GetHonest -- that trust their
// own bookkeeping and have no reason to lie to themselves.
//
// Host never mutates the map. It shares Map's head cell by pointer
// (set up in New) so its view of the ordering stays current across
// every Set the paired Map accepts, without Host needing to be told
// about each mutation separately.
type Host struct {
	tag   int
	arena *[]Entry
	head  *EntryPtr
}

// NewHost returns a Host that honestly proposes navigation claims for
// the logical map tagged tag within arena. It is independent of any
// particular Map value; pairing one with a specific Map (as New does
// for SetHonest/GetHonest) only requires that both agree on arena, tag,
// and which EntryPtr cell holds the current head.
func NewHost(arena *[]Entry, tag int, head *EntryPtr) *Host {
	return &Host{tag: tag, arena: arena, head: head}
}

func (h *Host) entry(p EntryPtr) *Entry {
	return &(*h.arena)[p]
}

// ProposeSet walks the map's current ordering and returns the honest
// Set proposal for key.
func (h *Host) ProposeSet(key felt.Word) Proposal {
	head := *h.head
	if head == invalidPtr {
		return Proposal{Kind: PropInsertAtHead}
	}
	if key.Less(h.entry(head).Key) {
		return Proposal{Kind: PropInsertAtHead}
	}
	prev := head
	for {
		e := h.entry(prev)
		if e.Key.Compare(key) == 0 {
			return Proposal{Kind: PropUpdate, At: prev}
		}
		if e.next == invalidPtr {
			return Proposal{Kind: PropInsertAfter, At: prev}
		}
		if key.Less(h.entry(e.next).Key) {
			return Proposal{Kind: PropInsertAfter, At: prev}
		}
		prev = e.next
	}
}

// ProposeGet walks the map's current ordering and returns the honest
// Get proposal for key.
func (h *Host) ProposeGet(key felt.Word) Proposal {
	head := *h.head
	if head == invalidPtr {
		return Proposal{Kind: PropAbsentAtHead}
	}
	if key.Less(h.entry(head).Key) {
		return Proposal{Kind: PropAbsentAtHead}
	}
	prev := head
	for {
		e := h.entry(prev)
		if e.Key.Compare(key) == 0 {
			return Proposal{Kind: PropFound, At: prev}
		}
		if e.next == invalidPtr {
			return Proposal{Kind: PropAbsentAfter, At: prev}
		}
		if key.Less(h.entry(e.next).Key) {
			return Proposal{Kind: PropAbsentAfter, At: prev}
		}
		prev = e.next
	}
}

// SetHonest is Set using this map's paired Host's honestly-computed
// proposal. It is what an in-process (non-adversarial) caller uses; the
// three-argument Set remains available so tests can supply a proposal
// from a dishonest Proposer instead.
func (m *Map) SetHonest(key, v0, v1 felt.Word) (bool, error) {
	return m.Set(key, v0, v1, m.host.ProposeSet(key))
}

// GetHonest is Get using this map's paired Host's honestly-computed
// proposal.
func (m *Map) GetHonest(key felt.Word) (bool, felt.Word, felt.Word, error) {
	return m.Get(key, m.host.ProposeGet(key))
}
