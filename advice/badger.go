// Copyright (c) 2026 The veyra developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package advice

import (
	"context"

	badger "github.com/ipfs/go-ds-badger"
)

// NewBadgerProvider opens (or creates) a badger-backed advice channel
// rooted at dataDir, grounded on the teacher's
// repo/datastore.NewIlxdDatastore badger setup.
func NewBadgerProvider(ctx context.Context, dataDir string) (*DatastoreProvider, func() error, error) {
	opts := badger.DefaultOptions
	ds, err := badger.NewDatastore(dataDir, &opts)
	if err != nil {
		return nil, nil, err
	}
	return NewDatastoreProvider(ctx, ds), ds.Close, nil
}
