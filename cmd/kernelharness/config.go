// Copyright (c) 2026 The veyra developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package main

// config holds kernelharness's command-line options. Grounded on the
// teacher's repo.Config go-flags struct (repo/config.go): a plain
// struct with `long`/`description` struct tags, parsed once at startup
// and never touched again.
type config struct {
	LogDir              string `short:"l" long:"logdir" description:"Directory to write the harness log file to; empty disables file logging" default:""`
	LogLevel            string `long:"loglevel" description:"Logging level: debug, info, warning, error" default:"info"`
	VerificationBaseFee uint32 `long:"basefee" description:"Reference block base fee, multiplied by floor(log2(cycles))+1 to compute the transaction fee" default:"1"`
	FaucetAmount        uint64 `long:"faucetamount" description:"Native asset amount the sample sender account is funded with" default:"1000000"`
	TransferAmount      uint64 `long:"transferamount" description:"Native asset amount the sample transaction sends to the recipient" default:"250"`
}
