// Copyright (c) 2026 The veyra developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

// Package smt implements the depth-64 sparse merkle tree shared by the
// asset vault (§4.3) and by account storage's map slots (§4.4). Unlike
// the teacher's append-only Merkle-mountain-range accumulator
// (blockchain.Accumulator), the kernel needs authenticated point
// updates keyed by arbitrary Words, so the tree here follows the
// "compressed sparse Merkle tree" shape common to the rest of the
// retrieval pack (only materialize touched leaves/branches; empty
// subtrees collapse to precomputed empty-subtree digests) rather than
// the mountain-range shape.
package smt

import (
	"github.com/veyra-network/kernel/felt"
	"github.com/veyra-network/kernel/sponge"
)

// Depth is the tree depth used for both the asset vault and account
// storage map slots (spec GLOSSARY: "SMT: ... depth 64 or the global
// vault depth").
const Depth = 64

// emptySubtreeDigests[i] is the root of an empty subtree of depth i.
// emptySubtreeDigests[0] is the empty leaf value itself (EMPTY_WORD).
var emptySubtreeDigests = buildEmptySubtreeDigests()

func buildEmptySubtreeDigests() []felt.Word {
	digests := make([]felt.Word, Depth+1)
	digests[0] = felt.EmptyWord
	for i := 1; i <= Depth; i++ {
		digests[i] = sponge.HashWords(digests[i-1], digests[i-1])
	}
	return digests
}

// EmptyRoot is the root of a completely empty depth-Depth tree.
func EmptyRoot() felt.Word {
	return emptySubtreeDigests[Depth]
}

// Tree is a sparse merkle tree over Word -> Word, storing only
// non-empty leaves and the internal nodes on their authentication
// paths.
type Tree struct {
	leaves map[felt.Word]felt.Word // key -> value, only non-empty
	nodes  map[nodeKey]felt.Word   // internal node cache, only non-default
}

type nodeKey struct {
	depth int // 0 = leaf level index bit count consumed
	index uint64
}

// New returns an empty tree.
func New() *Tree {
	return &Tree{
		leaves: make(map[felt.Word]felt.Word),
		nodes:  make(map[nodeKey]felt.Word),
	}
}

// keyIndex maps a Word key to a Depth-bit path by hashing it into a
// single felt-derived index. Using a hashed index (rather than the raw
// key felts) keeps the tree balanced regardless of what the caller's
// keys look like, matching how real sparse Merkle trees index leaves by
// hash rather than by raw key.
func keyIndex(key felt.Word) uint64 {
	d := sponge.HashWords(key, felt.EmptyWord)
	// Fold the four felts of the digest into one 64-bit path.
	return d[0].Uint64() ^ d[1].Uint64() ^ d[2].Uint64() ^ d[3].Uint64()
}

// Peek returns the unauthenticated current value at key, or EMPTY_WORD
// if absent, without touching the authenticated tree structure. Callers
// (the asset vault, in particular) use this as the untrusted "peek" the
// design notes describe, then cross-check it against Set's returned old
// value.
func (t *Tree) Peek(key felt.Word) felt.Word {
	if v, ok := t.leaves[key]; ok {
		return v
	}
	return felt.EmptyWord
}

// Get is the authenticated read: identical to Peek here since the tree
// is held fully in memory, but kept as a distinct entry point so callers
// that want to express "I want the authenticated value" read that
// intent at the call site.
func (t *Tree) Get(key felt.Word) felt.Word {
	return t.Peek(key)
}

// Set writes newValue at key and returns the old value, recomputing
// every internal node on key's authentication path.
func (t *Tree) Set(key, newValue felt.Word) felt.Word {
	old := t.Peek(key)
	if newValue.IsEmpty() {
		delete(t.leaves, key)
	} else {
		t.leaves[key] = newValue
	}
	t.setPath(key, keyIndex(key), newValue)
	return old
}

func (t *Tree) getNode(depth int, index uint64) felt.Word {
	if v, ok := t.nodes[nodeKey{depth, index}]; ok {
		return v
	}
	return emptySubtreeDigests[Depth-depth]
}

func (t *Tree) setNode(depth int, index uint64, v felt.Word) {
	empty := emptySubtreeDigests[Depth-depth]
	if v == empty {
		delete(t.nodes, nodeKey{depth, index})
	} else {
		t.nodes[nodeKey{depth, index}] = v
	}
}

// setPath recomputes every node from the leaf up to the root for key,
// given the leaf's new value. idx is key's Depth-bit path, most
// significant bit first (bit 0 chooses the child at depth 1, etc).
func (t *Tree) setPath(key felt.Word, idx uint64, leafValue felt.Word) {
	// Path indices, one per depth level 0..Depth, where level Depth is
	// the leaf and level 0 is the root.
	cur := leafValue
	curIndex := idx
	t.setNode(Depth, curIndex, cur)
	for d := Depth; d > 0; d-- {
		siblingIndex := curIndex ^ 1
		sibling := t.getNode(d, siblingIndex)
		var left, right felt.Word
		if curIndex&1 == 0 {
			left, right = cur, sibling
		} else {
			left, right = sibling, cur
		}
		cur = sponge.HashWords(left, right)
		curIndex >>= 1
		t.setNode(d-1, curIndex, cur)
	}
}

// Leaves returns every non-empty (key, value) pair currently stored,
// used by callers that need to enumerate the tree's contents (e.g. the
// asset vault's conservation check, or Clone).
func (t *Tree) Leaves() map[felt.Word]felt.Word {
	out := make(map[felt.Word]felt.Word, len(t.leaves))
	for k, v := range t.leaves {
		out[k] = v
	}
	return out
}

// Root returns the tree's current root digest.
func (t *Tree) Root() felt.Word {
	return t.getNode(0, 0)
}

// Proof is an authentication path proving key's value against Root().
type Proof struct {
	Key   felt.Word
	Value felt.Word
	Path  []felt.Word // siblings, leaf to root
	Index uint64
}

// Prove returns an authentication path for key.
func (t *Tree) Prove(key felt.Word) Proof {
	idx := keyIndex(key)
	path := make([]felt.Word, 0, Depth)
	curIndex := idx
	for d := Depth; d > 0; d-- {
		siblingIndex := curIndex ^ 1
		path = append(path, t.getNode(d, siblingIndex))
		curIndex >>= 1
	}
	return Proof{Key: key, Value: t.Peek(key), Path: path, Index: idx}
}

// VerifyProof recomputes the root from a proof and compares it to root.
func VerifyProof(root felt.Word, p Proof) bool {
	cur := p.Value
	curIndex := p.Index
	for _, sibling := range p.Path {
		var left, right felt.Word
		if curIndex&1 == 0 {
			left, right = cur, sibling
		} else {
			left, right = sibling, cur
		}
		cur = sponge.HashWords(left, right)
		curIndex >>= 1
	}
	return cur == root
}
