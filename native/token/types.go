package token

import (
	"github.com/gagliardetto/solana-go"
)

// Account sizes in bytes, used to size rent deposits.
const (
	MintSpace         uint64 = 82
	TokenAccountSpace uint64 = 165

	accountStorageOverhead uint64 = 128
	exemptionThreshold     uint64 = 2

	// DefaultLamportsPerByteYear is the rent rate applied when none is configured.
	DefaultLamportsPerByteYear uint64 = 3480
)

// AuthRulesProgramID is the program that evaluates rule sets attached to
// programmable assets.
var AuthRulesProgramID = solana.MustPublicKeyFromBase58("auth9SigNpDKz4sJJ1DfCTuZrZNSAgh9sFD3rboVmgg")

// Mint describes a fungible or non-fungible token class. Programmable assets
// can only move through TransferProgrammable, and when RuleSet is set it must
// be presented on every such transfer.
type Mint struct {
	Address         solana.PublicKey
	Authority       solana.PublicKey
	Decimals        uint8
	Supply          uint64
	Programmable    bool
	NonTransferable bool
	RuleSet         solana.PublicKey
}

// Account is a token balance held by Owner for a single mint.
type Account struct {
	Address solana.PublicKey
	Mint    solana.PublicKey
	Owner   solana.PublicKey
	Amount  uint64
}

// CheckedTransfer moves tokens between two accounts of the same mint. The
// caller states the decimals it expects and the transfer fails when they do
// not match the mint.
type CheckedTransfer struct {
	From      solana.PublicKey
	To        solana.PublicKey
	Mint      solana.PublicKey
	Authority Signer
	Amount    uint64
	Decimals  uint8
}

// ProgrammableTransfer moves an asset whose transfers are governed by the
// metadata program's rules.
type ProgrammableTransfer struct {
	From             solana.PublicKey
	To               solana.PublicKey
	Mint             solana.PublicKey
	Authority        Signer
	Amount           uint64
	AuthRulesProgram solana.PublicKey
	AuthRules        solana.PublicKey
}
