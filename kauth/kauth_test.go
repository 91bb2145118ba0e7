// Copyright (c) 2026 The veyra developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package kauth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veyra-network/kernel/felt"
	"github.com/veyra-network/kernel/kernelerrors"
)

func TestSignAndVerifyRoundTrip(t *testing.T) {
	priv, pub, err := GenerateKeyPair()
	require.NoError(t, err)

	pubWord, err := EncodePublicKey(pub)
	require.NoError(t, err)

	digest := felt.Word{felt.New(1), felt.New(2), felt.New(3), felt.New(4)}
	sig, err := Sign(priv, digest)
	require.NoError(t, err)

	err = Verify(pubWord, digest, sig)
	assert.NoError(t, err)
}

func TestVerifyRejectsWrongDigest(t *testing.T) {
	priv, pub, err := GenerateKeyPair()
	require.NoError(t, err)
	pubWord, err := EncodePublicKey(pub)
	require.NoError(t, err)

	digest := felt.Word{felt.New(1), 0, 0, 0}
	sig, err := Sign(priv, digest)
	require.NoError(t, err)

	wrong := felt.Word{felt.New(2), 0, 0, 0}
	err = Verify(pubWord, wrong, sig)
	require.Error(t, err)
	assert.True(t, kernelerrors.Is(err, kernelerrors.ErrAuthenticationFailed))
}

func TestVerifyRejectsWrongKey(t *testing.T) {
	_, pubA, err := GenerateKeyPair()
	require.NoError(t, err)
	privB, _, err := GenerateKeyPair()
	require.NoError(t, err)

	pubWordA, err := EncodePublicKey(pubA)
	require.NoError(t, err)

	digest := felt.Word{felt.New(5), 0, 0, 0}
	sig, err := Sign(privB, digest)
	require.NoError(t, err)

	err = Verify(pubWordA, digest, sig)
	require.Error(t, err)
	assert.True(t, kernelerrors.Is(err, kernelerrors.ErrAuthenticationFailed))
}

func TestEncodeDecodePublicKeyRoundTrip(t *testing.T) {
	_, pub, err := GenerateKeyPair()
	require.NoError(t, err)

	w, err := EncodePublicKey(pub)
	require.NoError(t, err)

	got, err := DecodePublicKey(w)
	require.NoError(t, err)
	assert.True(t, pub.Equals(got))
}
