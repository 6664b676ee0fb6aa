package market

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// Record sizes in bytes, used to size rent deposits.
const (
	MarketplaceSpace uint64 = 8 + 32*5 + 2 + 4 + MaxNameLength + 3*(1+8*3) + 3
	ListingSpace     uint64 = 8 + 32*4 + 8*8 + 1 + 8 + 1
	UserSpace        uint64 = 8 + 32 + 4*5 + 1

	// MaxNameLength bounds marketplace names. It matches the longest seed the
	// address derivation accepts.
	MaxNameLength = 32
	// MaxFeeBps is 100%.
	MaxFeeBps = 10_000
)

// MintCostTier selects one of the three credit packages a marketplace sells.
type MintCostTier uint8

const (
	Tier1 MintCostTier = iota
	Tier2
	Tier3
)

// Valid reports whether the selector names one of the three tiers.
func (t MintCostTier) Valid() bool {
	return t <= Tier3
}

func (t MintCostTier) String() string {
	switch t {
	case Tier1:
		return "tier1"
	case Tier2:
		return "tier2"
	case Tier3:
		return "tier3"
	default:
		return fmt.Sprintf("tier(%d)", uint8(t))
	}
}

// MintTier prices a credit package: Cost lamports buy Amount+Bonus credits.
type MintTier struct {
	Tier   MintCostTier
	Amount uint64
	Cost   uint64
	Bonus  uint64
}

// Marketplace is the configuration record of one marketplace.
type Marketplace struct {
	Admin        solana.PublicKey
	CreditMint   solana.PublicKey
	CreditVault  solana.PublicKey
	Treasury     solana.PublicKey
	RewardsMint  solana.PublicKey
	FeeBps       uint16
	Name         string
	MintTiers    [3]MintTier
	Bump         uint8
	RewardsBump  uint8
	TreasuryBump uint8
}

// Listing is an auction over a single escrowed asset. A zero HighestBidder
// means no bid has been placed.
type Listing struct {
	Marketplace    solana.PublicKey
	Mint           solana.PublicKey
	Seller         solana.PublicKey
	BidCost        uint64
	BidIncrement   uint64
	CurrentBid     uint64
	HighestBidder  solana.PublicKey
	TimerExtension uint64
	StartSlot      uint64
	EndSlot        uint64
	IsActive       bool
	BuyoutPrice    uint64
	Seed           uint64
	Bump           uint8
}

// UserAccount is the loyalty record of one user within one marketplace.
type UserAccount struct {
	Owner                     solana.PublicKey
	TotalBidsPlaced           uint32
	TotalAuctionsParticipated uint32
	TotalAuctionsWon          uint32
	TotalAuctionsCreated      uint32
	Points                    uint32
	Bump                      uint8
}

// Phase is the lifecycle stage of a listing at a given slot.
type Phase uint8

const (
	PhasePending Phase = iota + 1
	PhaseActive
	PhaseEnded
	PhaseSettled
)

func (p Phase) String() string {
	switch p {
	case PhasePending:
		return "pending"
	case PhaseActive:
		return "active"
	case PhaseEnded:
		return "ended"
	case PhaseSettled:
		return "settled"
	default:
		return "unknown"
	}
}

func isZero(key solana.PublicKey) bool {
	return key == solana.PublicKey{}
}
