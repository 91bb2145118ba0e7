// Copyright (c) 2026 The veyra developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

// Package delta accumulates the per-transaction account delta (spec
// §4.5): the fungible and non-fungible asset deltas, the per-map-slot
// key deltas, and the value-slot deltas derived by comparing final
// storage against the snapshot the prologue captured. The asset and
// value-slot collections, and each map slot's key deltas, are backed by
// package linkmap, so commitment-time iteration over their keys is the
// link map's native ascending-key order; the map slots themselves are
// held in a Go map keyed by slot index and visited in sorted index
// order. This is the same "host proposes,
// kernel/self verifies" structure the rest of the kernel uses, with
// this Delta acting as its own always-honest host. It then computes the
// six-step canonical delta commitment. Grounded on the teacher's
// blockchain.Accumulator sequential-absorption style, generalized from a
// mountain-range append log to this fixed six-step algorithm.
package delta

import (
	"sort"

	"github.com/veyra-network/kernel/accountid"
	"github.com/veyra-network/kernel/felt"
	"github.com/veyra-network/kernel/linkmap"
	"github.com/veyra-network/kernel/sponge"
)

const (
	domainAsset = 1
	domainValue = 2
	domainMap   = 3
)

// Link map tags for the three top-level collections. Map-slot deltas
// use one tag per slot index instead, sharing mapArena.
const (
	tagFungible = -1 - iota
	tagNonFungible
	tagValueSlots
)

// active/inactive flag words: a value slot's Value1 records whether the
// slot still differs from its prologue snapshot (spec §4.5: only
// changed value slots are absorbed into the commitment). Clearing a
// slot back to its initial value must not delete the entry -- link map
// entries are insert/update only -- so it flips the flag off instead.
var (
	flagActive   = felt.Word{0, 0, 0, felt.New(1)}
	flagInactive = felt.Word{0, 0, 0, felt.New(0)}
)

// Delta accumulates one transaction's account-level changes.
type Delta struct {
	accountID  accountid.ID
	nonceDelta felt.Felt

	fungibleArena *[]linkmap.Entry
	fungible      *linkmap.Map // key -> (abs amount, sign)

	nonFungibleArena *[]linkmap.Entry
	nonFungible      *linkmap.Map // key -> (abs net was_added, sign)

	valueArena *[]linkmap.Entry
	valueSlots *linkmap.Map // index word -> (word, active flag)

	mapArena *[]linkmap.Entry
	mapSlots map[int]*linkmap.Map // slot index -> (key -> (initial, current)), sharing mapArena
}

// New returns an empty delta for the account being mutated.
func New(id accountid.ID) *Delta {
	fungibleArena := linkmap.NewArena()
	nonFungibleArena := linkmap.NewArena()
	valueArena := linkmap.NewArena()
	mapArena := linkmap.NewArena()
	return &Delta{
		accountID:        id,
		fungibleArena:    fungibleArena,
		fungible:         linkmap.New(fungibleArena, tagFungible),
		nonFungibleArena: nonFungibleArena,
		nonFungible:      linkmap.New(nonFungibleArena, tagNonFungible),
		valueArena:       valueArena,
		valueSlots:       linkmap.New(valueArena, tagValueSlots),
		mapArena:         mapArena,
		mapSlots:         make(map[int]*linkmap.Map),
	}
}

// IncrementNonce marks the account nonce as incremented by this
// transaction. The kernel only ever increments by exactly 1 (spec §3).
func (d *Delta) IncrementNonce() {
	d.nonceDelta = felt.New(1)
}

// NonceIncremented reports whether IncrementNonce was called.
func (d *Delta) NonceIncremented() bool {
	return d.nonceDelta.Uint64() != 0
}

func indexKey(index int) felt.Word {
	return felt.Word{0, 0, 0, felt.New(uint64(index))}
}

func wasAdded(sign bool) felt.Felt {
	if sign {
		return felt.New(1)
	}
	return felt.New(0)
}

func abs(v int64) uint64 {
	if v < 0 {
		return uint64(-v)
	}
	return uint64(v)
}

func encodeSigned(v int64) (v0, v1 felt.Word) {
	return felt.Word{0, 0, 0, felt.New(abs(v))}, felt.Word{0, 0, 0, wasAdded(v > 0)}
}

func decodeSigned(v0, v1 felt.Word) int64 {
	amount := int64(v0[3].Uint64())
	if v1[3].Uint64() == 0 {
		amount = -amount
	}
	return amount
}

// adjustSigned adds delta to whatever signed amount m currently records
// at key (zero if key is absent), and writes the result back. m is
// always this Delta's own arena-backed map, so the proposal it computes
// for itself can never disagree with its own verification pass.
func adjustSigned(m *linkmap.Map, key felt.Word, delta int64) {
	found, v0, v1, err := m.GetHonest(key)
	current := int64(0)
	if err == nil && found {
		current = decodeSigned(v0, v1)
	}
	newV0, newV1 := encodeSigned(current + delta)
	_, _ = m.SetHonest(key, newV0, newV1)
}

// AddFungible records a fungible vault credit of amount at faucetKey.
func (d *Delta) AddFungible(faucetKey felt.Word, amount uint64) {
	adjustSigned(d.fungible, faucetKey, int64(amount))
}

// RemoveFungible records a fungible vault debit of amount at faucetKey.
func (d *Delta) RemoveFungible(faucetKey felt.Word, amount uint64) {
	adjustSigned(d.fungible, faucetKey, -int64(amount))
}

// AddNonFungible records a non-fungible asset insertion.
func (d *Delta) AddNonFungible(assetKey felt.Word) {
	adjustSigned(d.nonFungible, assetKey, 1)
}

// RemoveNonFungible records a non-fungible asset removal.
func (d *Delta) RemoveNonFungible(assetKey felt.Word) {
	adjustSigned(d.nonFungible, assetKey, -1)
}

// ClearValueSlot removes any recorded change for value slot index,
// letting a slot that was set back to its prologue value drop out of
// the commitment again.
func (d *Delta) ClearValueSlot(index int) {
	key := indexKey(index)
	found, v0, _, err := d.valueSlots.GetHonest(key)
	if err != nil || !found {
		return
	}
	_, _ = d.valueSlots.SetHonest(key, v0, flagInactive)
}

// SetValueSlot records that value slot index now holds newWord. Callers
// (the executor's epilogue) only need to call this for slots whose final
// value differs from the snapshot captured at prologue: step 4 of the
// commitment absorbs every slot whose active flag is set, without
// comparing against the initial value, so a call with the unchanged
// value would still put the slot into the commitment.
func (d *Delta) SetValueSlot(index int, newWord felt.Word) {
	_, _ = d.valueSlots.SetHonest(indexKey(index), newWord, flagActive)
}

// SetMapEntry records that key in map slot index changed from its
// initial value to newValue. The first call for a given (index, key)
// pair within a transaction fixes the recorded initial value; subsequent
// calls only update the current value (spec §4.5: "INITIAL_VALUE,
// NEW_VALUE" pairs are per transaction, not per call).
func (d *Delta) SetMapEntry(index int, key, initial, newValue felt.Word) {
	m, ok := d.mapSlots[index]
	if !ok {
		m = linkmap.New(d.mapArena, index)
		d.mapSlots[index] = m
	}
	found, v0, _, err := m.GetHonest(key)
	if err == nil && found {
		_, _ = m.SetHonest(key, v0, newValue)
		return
	}
	_, _ = m.SetHonest(key, initial, newValue)
}

func sortedIntKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

// Commitment runs the canonical six-step algorithm (spec §4.5) and
// returns the resulting commitment word, or EMPTY_WORD if the delta is
// empty (the squeezed digest equals the id-and-nonce digest from step
// 1).
func (d *Delta) Commitment() felt.Word {
	acc := sponge.NewAccumulator()

	// Step 1.
	acc.AbsorbWords(felt.Word{0, d.nonceDelta, d.accountID.Prefix, d.accountID.Suffix})
	idNonceDigest := acc.Squeeze()

	// Step 2: fungible entries with non-zero amount, ascending key
	// order -- the link map's native iteration order.
	for _, e := range d.fungible.Iter() {
		amount := decodeSigned(e.Value0, e.Value1)
		if amount == 0 {
			continue
		}
		acc.AbsorbWords(
			felt.Word{e.Key[0], e.Key[1], 0, felt.New(abs(amount))},
			felt.Word{0, 0, wasAdded(amount > 0), felt.New(domainAsset)},
		)
	}

	// Step 3: non-fungible entries with net was_added != 0, ascending
	// key order.
	for _, e := range d.nonFungible.Iter() {
		was := decodeSigned(e.Value0, e.Value1)
		if was == 0 {
			continue
		}
		acc.AbsorbWords(e.Key, felt.Word{0, 0, wasAdded(was > 0), felt.New(domainAsset)})
	}

	// Step 4: changed value slots (active flag set), ascending index
	// order.
	for _, e := range d.valueSlots.Iter() {
		if e.Value1 != flagActive {
			continue
		}
		index := e.Key[3].Uint64()
		acc.AbsorbWords(e.Value0, felt.Word{0, 0, felt.New(index), felt.New(domainValue)})
	}

	// Step 5: map slots with at least one changed key, ascending index
	// order; within a slot, changed keys in ascending key order.
	for _, index := range sortedIntKeys(d.mapSlots) {
		m := d.mapSlots[index]
		entries := m.Iter()
		changed := make([]linkmap.Entry, 0, len(entries))
		for _, e := range entries {
			if e.Value1 != e.Value0 {
				changed = append(changed, e)
			}
		}
		if len(changed) == 0 {
			continue
		}
		for _, e := range changed {
			acc.AbsorbWords(e.Key, e.Value1)
		}
		acc.AbsorbWords(felt.EmptyWord, felt.Word{0, felt.New(uint64(len(changed))), felt.New(uint64(index)), felt.New(domainMap)})
	}

	// Step 6.
	squeezed := acc.Squeeze()
	if squeezed == idNonceDigest {
		return felt.EmptyWord
	}
	return squeezed
}

// IsEmpty reports whether the delta's commitment is EMPTY_WORD.
func (d *Delta) IsEmpty() bool {
	return d.Commitment() == felt.EmptyWord
}
