// Copyright (c) 2026 The veyra developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

// Command kernelharness drives one sample transaction end to end
// through the transaction kernel against an in-memory mock chain: it
// funds a sender account, signs and executes a pay-to-id transfer to a
// fixed sample recipient, and prints the resulting commitments and
// fee. It is a manual exercising tool, not a production node -- grounded
// on the teacher's ilxd.go (flag parsing, then BuildServer, then run)
// scaled down to a single synchronous run instead of a long-lived
// server loop.
package main

import (
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"

	"github.com/veyra-network/kernel/account"
	"github.com/veyra-network/kernel/accountid"
	"github.com/veyra-network/kernel/advice"
	"github.com/veyra-network/kernel/felt"
	"github.com/veyra-network/kernel/kauth"
	"github.com/veyra-network/kernel/kernelconfig"
	"github.com/veyra-network/kernel/note"
	"github.com/veyra-network/kernel/sponge"
	"github.com/veyra-network/kernel/txkernel"
	"github.com/veyra-network/kernel/vault"
)

func main() {
	var cfg config
	parser := flags.NewNamedParser("kernelharness", flags.Default)
	parser.AddGroup("Harness Options", "Configuration options for the harness", &cfg)
	if _, err := parser.Parse(); err != nil {
		os.Exit(1)
	}

	if err := setupLogging(cfg.LogDir, cfg.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "failed to set up logging: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg); err != nil {
		log.Errorw("transaction run failed", "error", err)
		os.Exit(1)
	}
}

func regularAccountID(unique uint64) accountid.ID {
	return accountid.ID{
		Prefix: felt.New(uint64(accountid.TypeRegularUpdatable) << 4),
		Suffix: felt.New(unique << 8),
	}
}

func fungibleFaucetID(unique uint64) accountid.ID {
	return accountid.ID{
		Prefix: felt.New(uint64(accountid.TypeFungibleFaucet) << 4),
		Suffix: felt.New(unique << 8),
	}
}

// run funds a sender account from a mock native-asset faucet, signs and
// executes a transaction that pays part of the balance to a recipient
// via an output note, and reports the resulting outputs.
func run(cfg config) error {
	nativeAsset := fungibleFaucetID(1)
	senderID := regularAccountID(2)

	priv, pub, err := kauth.GenerateKeyPair()
	if err != nil {
		return fmt.Errorf("generating sender key pair: %w", err)
	}
	pubWord, err := kauth.EncodePublicKey(pub)
	if err != nil {
		return fmt.Errorf("encoding sender public key: %w", err)
	}

	sender := account.New(senderID, felt.EmptyWord)
	if _, err := sender.Storage.SetItem(kauth.ReservedStorageSlot, pubWord); err != nil {
		return fmt.Errorf("installing sender auth key: %w", err)
	}
	fundingAsset, err := vault.NewFungible(nativeAsset, cfg.FaucetAmount)
	if err != nil {
		return fmt.Errorf("building funding asset: %w", err)
	}
	if _, err := sender.Vault.AddFungible(fundingAsset); err != nil {
		return fmt.Errorf("funding sender vault: %w", err)
	}

	params := kernelconfig.DefaultParams()
	params.VerificationBaseFee = cfg.VerificationBaseFee
	params.NativeAssetID = nativeAsset

	refBlock := txkernel.ReferenceBlock{
		BlockNum:            1000,
		VerificationBaseFee: cfg.VerificationBaseFee,
		NativeAssetID:       nativeAsset,
	}

	adv := advice.NewMemProvider()
	exec := txkernel.NewExecutor(params, adv, sender)
	exec.UseDefaultAuth()

	initialCommitment := sender.Commitment()
	inputs := txkernel.Inputs{
		BlockCommitment:          felt.EmptyWord,
		InitialAccountCommitment: initialCommitment,
		InputNotesCommitment:     txkernel.InputNotesCommitment(nil),
		AccountIDPrefix:          senderID.Prefix,
		AccountIDSuffix:          senderID.Suffix,
	}

	log.Infow("running sample transaction", "sender", senderID, "faucet", nativeAsset)

	if err := exec.Prologue(inputs, refBlock, nil); err != nil {
		return fmt.Errorf("prologue: %w", err)
	}

	transferAsset, err := vault.NewFungible(nativeAsset, cfg.TransferAmount)
	if err != nil {
		return fmt.Errorf("building transfer asset: %w", err)
	}
	if err := exec.RunTxScript(payToID(transferAsset)); err != nil {
		return fmt.Errorf("tx script: %w", err)
	}

	// The epilogue always increments the nonce by exactly 1 (spec §3), so
	// the digest it will ask kauth.Verify to check is known up front.
	idNonceDigest := sponge.SequentialHash(felt.Word{0, felt.New(1), senderID.Prefix, senderID.Suffix})
	sig, err := kauth.Sign(priv, idNonceDigest)
	if err != nil {
		return fmt.Errorf("signing id-and-nonce digest: %w", err)
	}

	outputs, err := exec.Epilogue(refBlock, sig, felt.EmptyWord)
	if err != nil {
		return fmt.Errorf("epilogue: %w", err)
	}

	log.Infow("transaction executed",
		"account_update_commitment", outputs.AccountUpdateCommitment,
		"output_notes_commitment", outputs.OutputNotesCommitment,
		"fee_amount", vault.Asset{Word: outputs.FeeAsset}.FungibleAmount(),
		"expiration_block", outputs.ExpirationBlockNum,
	)
	fmt.Printf("account update commitment: %x\n", outputs.AccountUpdateCommitment.Bytes())
	fmt.Printf("output notes commitment:   %x\n", outputs.OutputNotesCommitment.Bytes())
	fmt.Printf("fee paid:                  %d\n", vault.Asset{Word: outputs.FeeAsset}.FungibleAmount())
	fmt.Printf("expires at block:          %d\n", outputs.ExpirationBlockNum)
	return nil
}

// payToID returns a transaction script that creates a single output
// note carrying transferAsset to a recipient derived from fixed sample
// serial number, script root and inputs commitment, mirroring
// the reference Miden pay-to-id note script's shape.
func payToID(transferAsset vault.Asset) txkernel.Script {
	return func(exec *txkernel.Executor) (*felt.Word, error) {
		if _, err := exec.RemoveFungible(transferAsset); err != nil {
			return nil, err
		}
		n, err := note.New(
			felt.Word{felt.New(1), felt.New(2), felt.New(3), felt.New(4)},
			felt.EmptyWord,
			felt.EmptyWord,
			note.Metadata{
				SenderID: regularAccountID(2),
				Type:     note.TypePublic,
				UserTag:  0,
			},
		)
		if err != nil {
			return nil, err
		}
		idx, err := exec.CreateNote(n)
		if err != nil {
			return nil, err
		}
		if err := exec.AddAssetToNote(idx, transferAsset); err != nil {
			return nil, err
		}
		return nil, nil
	}
}
