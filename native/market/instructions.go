package market

import (
	"github.com/gagliardetto/solana-go"

	"nftmarket/native/custody"
)

// Instruction is one marketplace operation with its accounts and the keys
// that signed it.
type Instruction interface {
	InstructionName() string
}

// InitializeIx creates a marketplace together with its credit mint, rewards
// mint and credit vault. Admin and CreditMint must sign.
type InitializeIx struct {
	Admin          solana.PublicKey
	CreditMint     solana.PublicKey
	CreditDecimals uint8
	Name           string
	FeeBps         uint16
	MintTiers      [3]MintTier
	Signers        Signers
}

// InitializeUserIx opens a loyalty record for User.
type InitializeUserIx struct {
	Marketplace solana.PublicKey
	User        solana.PublicKey
	Signers     Signers
}

// UpdateMintTiersIx replaces the credit tier table. Admin must sign.
type UpdateMintTiersIx struct {
	Marketplace solana.PublicKey
	Admin       solana.PublicKey
	MintTiers   [3]MintTier
	Signers     Signers
}

// MintBidTokenIx buys the credit package Tier for User.
type MintBidTokenIx struct {
	Marketplace solana.PublicKey
	User        solana.PublicKey
	Tier        MintCostTier
	Signers     Signers
}

// ListIx escrows an asset and opens an auction over it. Seller and the
// marketplace Admin must sign. Authorization selects the rules-enforced
// transfer for programmable assets.
type ListIx struct {
	Marketplace    solana.PublicKey
	Seller         solana.PublicKey
	Admin          solana.PublicKey
	Mint           solana.PublicKey
	Metadata       solana.PublicKey
	Seed           uint64
	BidIncrement   uint64
	TimerExtension uint64
	StartSlot      uint64
	Duration       uint64
	BuyoutPrice    uint64
	Amount         uint64
	Authorization  *custody.Authorization
	Signers        Signers
}

// PlaceBidIx bids on a listing. ClaimedBidder and ClaimedBid are the highest
// bidder and bid the bidder observed; the bid fails if either has changed.
type PlaceBidIx struct {
	Listing       solana.PublicKey
	Bidder        solana.PublicKey
	ClaimedBidder solana.PublicKey
	ClaimedBid    uint64
	Signers       Signers
}

// EndListingIx settles an ended auction to its claimer. Claimer and the
// marketplace Admin must sign.
type EndListingIx struct {
	Listing       solana.PublicKey
	Claimer       solana.PublicKey
	Admin         solana.PublicKey
	Metadata      solana.PublicKey
	Amount        uint64
	Authorization *custody.Authorization
	Signers       Signers
}

// DelistIx returns an unsold asset to its seller.
type DelistIx struct {
	Listing       solana.PublicKey
	Seller        solana.PublicKey
	Metadata      solana.PublicKey
	Authorization *custody.Authorization
	Signers       Signers
}

// PurchaseIx buys a listed asset at its buyout price.
type PurchaseIx struct {
	Listing       solana.PublicKey
	Buyer         solana.PublicKey
	Metadata      solana.PublicKey
	Authorization *custody.Authorization
	Signers       Signers
}

func (*InitializeIx) InstructionName() string      { return "initialize" }
func (*InitializeUserIx) InstructionName() string  { return "initialize_user" }
func (*UpdateMintTiersIx) InstructionName() string { return "update_mint_tiers" }
func (*MintBidTokenIx) InstructionName() string    { return "mint_bid_token" }
func (*ListIx) InstructionName() string            { return "list" }
func (*PlaceBidIx) InstructionName() string        { return "place_bid" }
func (*EndListingIx) InstructionName() string      { return "end_listing" }
func (*DelistIx) InstructionName() string          { return "delist" }
func (*PurchaseIx) InstructionName() string        { return "purchase" }
