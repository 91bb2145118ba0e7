// Copyright (c) 2026 The veyra developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

// Package advice implements the advice channel (spec §5, §6): a
// synchronous, append-only, host-supplied map keyed by public Digests
// that the kernel consults for note script images, note inputs/assets,
// SMT pre-image witnesses, and link-map operation tags.
//
// Grounded on the teacher's repo.Datastore interface and its two
// implementations (repo/mock.MapDatastore for tests,
// repo/datastore.IlxdDatastore for the badger-backed persistent store):
// this package plays the same role for the kernel's advice data that
// repo.Datastore plays for chain state.
package advice

import (
	"context"
	"encoding/hex"

	"github.com/ipfs/go-datastore"

	"github.com/veyra-network/kernel/felt"
	"github.com/veyra-network/kernel/kernelerrors"
)

// Provider is the host-side advice channel the kernel reads from. Every
// contribution is keyed by a public digest the kernel already knows or
// can compute (spec §6): callers never need to invent a key.
type Provider interface {
	// Words returns the sequence of Words the host recorded under key,
	// or a host-dishonesty error if nothing was ever provided.
	Words(key felt.Word) ([]felt.Word, error)

	// Provide records words under key, overwriting any prior
	// contribution. Used by the host side of a test or harness to seed
	// the channel before running a transaction.
	Provide(key felt.Word, words []felt.Word)
}

// MemProvider is a plain in-memory advice channel, for unit tests.
type MemProvider struct {
	data map[felt.Word][]felt.Word
}

// NewMemProvider returns an empty in-memory provider.
func NewMemProvider() *MemProvider {
	return &MemProvider{data: make(map[felt.Word][]felt.Word)}
}

func (p *MemProvider) Words(key felt.Word) ([]felt.Word, error) {
	words, ok := p.data[key]
	if !ok {
		return nil, kernelerrors.AssertError("advice channel has no entry for the requested digest")
	}
	return words, nil
}

func (p *MemProvider) Provide(key felt.Word, words []felt.Word) {
	p.data[key] = words
}

// datastoreKeyPrefix namespaces advice-channel entries in the backing
// datastore, mirroring the teacher's db_keys.go key-prefix convention.
const datastoreKeyPrefix = "/veyra/kernel/advice/"

func toDatastoreKey(key felt.Word) datastore.Key {
	b := key.Bytes()
	return datastore.NewKey(datastoreKeyPrefix + hex.EncodeToString(b[:]))
}

// DatastoreProvider is an advice channel backed by any
// github.com/ipfs/go-datastore implementation: datastore.MapDatastore
// for an ephemeral instance, github.com/ipfs/go-ds-badger for a
// persistent one (see NewBadgerProvider), grounded on the teacher's
// repo/datastore package.
type DatastoreProvider struct {
	ds  datastore.Datastore
	ctx context.Context
}

// NewDatastoreProvider wraps an existing datastore.Datastore.
func NewDatastoreProvider(ctx context.Context, ds datastore.Datastore) *DatastoreProvider {
	return &DatastoreProvider{ds: ds, ctx: ctx}
}

func (p *DatastoreProvider) Words(key felt.Word) ([]felt.Word, error) {
	raw, err := p.ds.Get(p.ctx, toDatastoreKey(key))
	if err != nil {
		log.Debug("advice channel miss", log.Args("error", err))
		return nil, kernelerrors.AssertError("advice channel has no entry for the requested digest")
	}
	if len(raw)%32 != 0 {
		return nil, kernelerrors.AssertError("advice channel entry has malformed length")
	}
	words := make([]felt.Word, 0, len(raw)/32)
	for i := 0; i < len(raw); i += 32 {
		var b [32]byte
		copy(b[:], raw[i:i+32])
		words = append(words, felt.FromBytes(b))
	}
	return words, nil
}

func (p *DatastoreProvider) Provide(key felt.Word, words []felt.Word) {
	raw := make([]byte, 0, len(words)*32)
	for _, w := range words {
		b := w.Bytes()
		raw = append(raw, b[:]...)
	}
	if err := p.ds.Put(p.ctx, toDatastoreKey(key), raw); err != nil {
		log.Error("failed to write advice channel entry", log.Args("error", err))
	}
}
