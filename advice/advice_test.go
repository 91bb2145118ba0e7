// Copyright (c) 2026 The veyra developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package advice

import (
	"context"
	"testing"

	"github.com/ipfs/go-datastore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veyra-network/kernel/felt"
)

func TestMemProviderRoundTrip(t *testing.T) {
	p := NewMemProvider()
	key := felt.Word{felt.New(1), 0, 0, 0}
	words := []felt.Word{{felt.New(2), 0, 0, 0}, {felt.New(3), 0, 0, 0}}

	p.Provide(key, words)
	got, err := p.Words(key)
	require.NoError(t, err)
	assert.Equal(t, words, got)
}

func TestMemProviderMissingKeyFails(t *testing.T) {
	p := NewMemProvider()
	_, err := p.Words(felt.Word{felt.New(9), 0, 0, 0})
	require.Error(t, err)
}

func TestDatastoreProviderRoundTrip(t *testing.T) {
	ds := datastore.NewMapDatastore()
	p := NewDatastoreProvider(context.Background(), ds)

	key := felt.Word{felt.New(1), felt.New(2), 0, 0}
	words := []felt.Word{
		{felt.New(10), felt.New(20), felt.New(30), felt.New(40)},
		felt.EmptyWord,
	}

	p.Provide(key, words)
	got, err := p.Words(key)
	require.NoError(t, err)
	assert.Equal(t, words, got)
}

func TestDatastoreProviderMissingKeyFails(t *testing.T) {
	ds := datastore.NewMapDatastore()
	p := NewDatastoreProvider(context.Background(), ds)
	_, err := p.Words(felt.EmptyWord)
	require.Error(t, err)
}
