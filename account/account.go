// Copyright (c) 2026 The veyra developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package account

import (
	"github.com/veyra-network/kernel/accountid"
	"github.com/veyra-network/kernel/felt"
	"github.com/veyra-network/kernel/sponge"
	"github.com/veyra-network/kernel/storage"
	"github.com/veyra-network/kernel/vault"
)

// ID is the account identifier type, defined in package accountid so
// that vault and storage can reference it without importing account.
type ID = accountid.ID

// Account is the full account state the kernel operates on: id, nonce,
// storage, vault and code commitment (spec §3).
type Account struct {
	ID             ID
	Nonce          felt.Felt
	Storage        *storage.Storage
	Vault          *vault.Vault
	CodeCommitment felt.Word
}

// New returns a fresh, empty account for id with the given code
// commitment.
func New(id ID, codeCommitment felt.Word) *Account {
	return &Account{
		ID:             id,
		Nonce:          0,
		Storage:        storage.New(),
		Vault:          vault.New(),
		CodeCommitment: codeCommitment,
	}
}

// NonceWord packs the id and nonce into the Word the account commitment
// hashes over: [id_prefix, id_suffix, 0, nonce] (spec §6).
func (a *Account) NonceWord() felt.Word {
	return felt.Word{a.ID.Prefix, a.ID.Suffix, 0, a.Nonce}
}

// Commitment computes H(vault_root, storage_commitment, code_commitment,
// nonce_word), the account commitment formula from spec §6.
func (a *Account) Commitment() felt.Word {
	return sponge.SequentialHash(a.Vault.Root(), a.Storage.Commitment(), a.CodeCommitment, a.NonceWord())
}

// Clone returns a deep copy of the account.
func (a *Account) Clone() *Account {
	return &Account{
		ID:             a.ID,
		Nonce:          a.Nonce,
		Storage:        a.Storage.Clone(),
		Vault:          a.Vault.Clone(),
		CodeCommitment: a.CodeCommitment,
	}
}
