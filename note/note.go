// Copyright (c) 2026 The veyra developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

// Package note implements the note model (spec §3, §4.6): input and
// output notes, their recipient/id derivation, metadata packing, and the
// output-notes commitment. Grounded on the teacher's types.Note
// hand-written encoding style (types/note.go) rather than protobuf
// generated code, since no protobuf compiler runs in this repository.
package note

import (
	"github.com/veyra-network/kernel/accountid"
	"github.com/veyra-network/kernel/felt"
	"github.com/veyra-network/kernel/kernelerrors"
	"github.com/veyra-network/kernel/sponge"
)

// MaxOutputNotes is the hard cap on output notes per transaction (spec
// §5).
const MaxOutputNotes = 1024

// MaxAssetsPerNote is the hard cap on assets attached to a single note
// (spec §5, §4.6).
const MaxAssetsPerNote = 256

// MaxNoteInputs is the hard cap on felts a note script may receive (spec
// §5).
const MaxNoteInputs = 128

// Type is the note's privacy classification. Encrypted is reserved and
// rejected at construction (spec §9 open question 2).
type Type uint8

const (
	TypePublic  Type = 1
	TypePrivate Type = 2
	typeEncryptedReserved Type = 3
)

// localAnyTagPrefix is the 2-bit user-tag prefix that permits Private
// notes; every other prefix forces Public (spec §4.6).
const localAnyTagPrefix uint32 = 0b11

// ExecutionHint tells the note-loop scheduler when a note becomes
// eligible for execution. Only Always is exercised by the transaction
// lifecycle in this repository (§4.7's note loop runs every input note
// unconditionally); AfterBlock is carried for completeness of the
// metadata encoding.
type ExecutionHint struct {
	Tag     uint8
	Payload uint32
}

const (
	HintAlways uint8 = 0
	HintAfterBlock uint8 = 1
)

// Metadata packs a note's sender, type, execution hint and user tag into
// a single Word (spec §3).
type Metadata struct {
	SenderID      accountid.ID
	Type          Type
	ExecutionHint ExecutionHint
	UserTag       uint32
}

// Validate enforces the note-type/tag rule and rejects the reserved
// Encrypted type (spec §4.6, §9).
func (m Metadata) Validate() error {
	if m.Type == typeEncryptedReserved {
		return kernelerrors.New(kernelerrors.ErrInvalidNoteTagType, "encrypted note type is reserved and unimplemented")
	}
	if m.Type != TypePublic && m.Type != TypePrivate {
		return kernelerrors.New(kernelerrors.ErrInvalidNoteTagType, "unknown note type")
	}
	prefix := m.UserTag >> 30
	if m.Type == TypePrivate && prefix != localAnyTagPrefix {
		return kernelerrors.New(kernelerrors.ErrInvalidNoteTagType, "private notes require the LocalAny tag prefix 0b11")
	}
	return nil
}

// Word packs the metadata fields: [sender_prefix, sender_suffix,
// type|hint_tag|hint_payload, user_tag].
func (m Metadata) Word() felt.Word {
	packed := uint64(m.Type) | uint64(m.ExecutionHint.Tag)<<8 | uint64(m.ExecutionHint.Payload)<<16
	return felt.Word{m.SenderID.Prefix, m.SenderID.Suffix, felt.New(packed), felt.New(uint64(m.UserTag))}
}

// Asset is a plain Word wrapper; note assets are stored and hashed
// exactly like vault assets, and the note package does not depend on
// package vault to avoid a needless import for a type alias.
type Asset = felt.Word

// Note is the common shape of both input and output notes.
type Note struct {
	SerialNumber      felt.Word
	ScriptRoot        felt.Word
	InputsCommitment  felt.Word
	Assets            []Asset
	Metadata          Metadata
}

// New constructs an empty note (no assets yet) with the given
// identifying fields. Validates metadata immediately (spec §4.6).
func New(serialNumber, scriptRoot, inputsCommitment felt.Word, metadata Metadata) (*Note, error) {
	if err := metadata.Validate(); err != nil {
		return nil, err
	}
	return &Note{
		SerialNumber:     serialNumber,
		ScriptRoot:       scriptRoot,
		InputsCommitment: inputsCommitment,
		Metadata:         metadata,
	}, nil
}

// AssetsCommitment is the sequential hash of the note's assets in
// insertion order (spec §3).
func (n *Note) AssetsCommitment() felt.Word {
	return sponge.SequentialHash(n.Assets...)
}

// Recipient computes recipient = H(H(H(serial_number, EMPTY_WORD),
// script_root), inputs_commitment) (spec §3).
func (n *Note) Recipient() felt.Word {
	step1 := sponge.HashWords(n.SerialNumber, felt.EmptyWord)
	step2 := sponge.HashWords(step1, n.ScriptRoot)
	return sponge.HashWords(step2, n.InputsCommitment)
}

// ID computes note_id = H(recipient, assets_commitment) (spec §3).
func (n *Note) ID() felt.Word {
	return sponge.HashWords(n.Recipient(), n.AssetsCommitment())
}

// AddAsset appends asset to the note, merging fungible amounts from the
// same faucet (subject to the 2^63 bound) and rejecting duplicate
// non-fungible assets, per spec §4.6. isFungible/mergeKey/amount are
// supplied by the caller (the executor, which owns the asset-shape
// logic in package vault) rather than re-derived here, keeping this
// package free of a dependency on package vault's asset layout.
func (n *Note) AddAsset(asset Asset, isFungible bool, mergeKey felt.Word, amount uint64, maxAmount uint64) error {
	if len(n.Assets) >= MaxAssetsPerNote {
		return kernelerrors.New(kernelerrors.ErrTooManyAssetsInNote, "note asset list at capacity")
	}
	if isFungible {
		for i, existing := range n.Assets {
			if existing[2] == mergeKey[2] && existing[3] == mergeKey[3] {
				combined := existing[0].Uint64() + amount
				if combined > maxAmount || combined < existing[0].Uint64() {
					return kernelerrors.New(kernelerrors.ErrFungibleOverflow, "merged note asset amount exceeds 2^63-1")
				}
				merged := existing
				merged[0] = felt.New(combined)
				n.Assets[i] = merged
				return nil
			}
		}
		n.Assets = append(n.Assets, asset)
		return nil
	}
	for _, existing := range n.Assets {
		if existing == asset {
			return kernelerrors.New(kernelerrors.ErrNonFungibleAlreadyExists, "duplicate non-fungible asset in note")
		}
	}
	n.Assets = append(n.Assets, asset)
	return nil
}

// OutputNotesCommitment computes the sequential hash over (note_id,
// metadata) pairs in creation order (spec §4.6).
func OutputNotesCommitment(notes []*Note) felt.Word {
	words := make([]felt.Word, 0, len(notes)*2)
	for _, n := range notes {
		words = append(words, n.ID(), n.Metadata.Word())
	}
	return sponge.SequentialHash(words...)
}
