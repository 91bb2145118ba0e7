// Copyright (c) 2026 The veyra developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

// Package kauth implements the reference authentication procedure the
// transaction executor calls when an account does not register a custom
// one (spec §4.7 step 2): ed25519 signature verification over the
// id-and-nonce digest, using the same key abstraction the teacher uses
// to verify block-header signatures (blockchain.validateHeader,
// producerPubkey.Verify(sigHash, sig)).
package kauth

import (
	"crypto/rand"

	"github.com/libp2p/go-libp2p/core/crypto"

	"github.com/veyra-network/kernel/felt"
	"github.com/veyra-network/kernel/kernelerrors"
)

// ReservedStorageSlot is the account storage slot the default auth
// procedure reads its public key from (spec §4.13).
const ReservedStorageSlot = 254

// GenerateKeyPair returns a fresh ed25519 key pair for use with the
// default auth procedure.
func GenerateKeyPair() (crypto.PrivKey, crypto.PubKey, error) {
	return crypto.GenerateEd25519Key(rand.Reader)
}

// EncodePublicKey serializes pub into the Word account storage slot 254
// holds. ed25519 public keys are 32 bytes; they occupy the low 8 bytes
// of each of the first three felts (24 bytes) plus the first 8 bytes of
// the fourth, matching the raw-key-in-felts pattern used elsewhere for
// embedding fixed-size byte blobs in a Word. Raw (not the protobuf-
// wrapped MarshalPublicKey encoding) is what fits: MarshalPublicKey
// prepends a key-type tag and would overflow a single Word.
func EncodePublicKey(pub crypto.PubKey) (felt.Word, error) {
	raw, err := pub.Raw()
	if err != nil {
		return felt.Word{}, err
	}
	return packBytes(raw), nil
}

// DecodePublicKey is the inverse of EncodePublicKey.
func DecodePublicKey(w felt.Word) (crypto.PubKey, error) {
	raw := unpackBytes(w)
	return crypto.UnmarshalEd25519PublicKey(raw)
}

func packBytes(raw []byte) felt.Word {
	var w felt.Word
	for i := 0; i < 4 && i*8 < len(raw); i++ {
		end := (i + 1) * 8
		if end > len(raw) {
			end = len(raw)
		}
		var buf [8]byte
		copy(buf[:], raw[i*8:end])
		w[i] = felt.New(uint64(buf[0]) | uint64(buf[1])<<8 | uint64(buf[2])<<16 | uint64(buf[3])<<24 |
			uint64(buf[4])<<32 | uint64(buf[5])<<40 | uint64(buf[6])<<48 | uint64(buf[7])<<56)
	}
	return w
}

func unpackBytes(w felt.Word) []byte {
	out := make([]byte, 0, 32)
	for _, f := range w {
		v := f.Uint64()
		out = append(out,
			byte(v), byte(v>>8), byte(v>>16), byte(v>>24),
			byte(v>>32), byte(v>>40), byte(v>>48), byte(v>>56))
	}
	return out
}

// Sign produces the signature the default auth procedure expects: an
// ed25519 signature over the id-and-nonce digest's byte encoding.
func Sign(priv crypto.PrivKey, digest felt.Word) ([]byte, error) {
	b := digest.Bytes()
	return priv.Sign(b[:])
}

// Verify implements the default auth procedure: it recovers the account's
// public key from pubKeyWord and checks sig against digest. Returns a
// RuleError (not AssertError) since a bad signature is a transaction-level
// authentication failure, not host dishonesty.
func Verify(pubKeyWord felt.Word, digest felt.Word, sig []byte) error {
	pub, err := DecodePublicKey(pubKeyWord)
	if err != nil {
		return kernelerrors.New(kernelerrors.ErrAuthenticationFailed, "malformed auth public key")
	}
	b := digest.Bytes()
	ok, err := pub.Verify(b[:], sig)
	if err != nil || !ok {
		return kernelerrors.New(kernelerrors.ErrAuthenticationFailed, "signature verification failed")
	}
	return nil
}
