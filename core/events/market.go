package events

import (
	"strconv"

	"github.com/gagliardetto/solana-go"

	"nftmarket/core/types"
)

const (
	// TypeMarketplaceInitialized is emitted when a marketplace is created.
	TypeMarketplaceInitialized = "market.marketplace.initialized"
	// TypeMintTiersUpdated is emitted when the admin replaces the credit
	// mint tier table.
	TypeMintTiersUpdated = "market.marketplace.tiers_updated"
	// TypeBidTokensMinted is emitted when a user buys bid credits.
	TypeBidTokensMinted = "market.credits.minted"
	// TypeUserCreated is emitted when a loyalty record is opened for a user.
	TypeUserCreated = "market.user.created"
	// TypeListingCreated is emitted when an asset is escrowed for auction.
	TypeListingCreated = "market.listing.created"
	// TypeBidPlaced is emitted for every accepted bid.
	TypeBidPlaced = "market.listing.bid"
	// TypeListingEnded is emitted when an auction is settled to its claimer.
	TypeListingEnded = "market.listing.ended"
	// TypeListingDelisted is emitted when a seller withdraws an unsold asset.
	TypeListingDelisted = "market.listing.delisted"
	// TypeListingPurchased is emitted when a buyer takes the buyout price.
	TypeListingPurchased = "market.listing.purchased"
)

// Labels are the short, stable names client tooling keys events on.
const (
	LabelMarketInitialized = "market_initialized"
	LabelMintTiersUpdated  = "mint_tiers_updated"
	LabelBidTokensMinted   = "bid_tokens_minted"
	LabelUserCreated       = "user_created"
	LabelListingCreated    = "listing_created"
	LabelBidPlaced         = "bid_placed"
	LabelListingEnded      = "listing_ended"
	LabelListingDelisted   = "listing_delisted"
	LabelListingPurchased  = "listing_purchased"
)

// MintTier is the event form of a credit mint tier.
type MintTier struct {
	Tier   uint8
	Amount uint64
	Cost   uint64
	Bonus  uint64
}

// MarketplaceInitialized snapshots a freshly created marketplace.
type MarketplaceInitialized struct {
	Marketplace solana.PublicKey
	Admin       solana.PublicKey
	CreditMint  solana.PublicKey
	CreditVault solana.PublicKey
	Treasury    solana.PublicKey
	RewardsMint solana.PublicKey
	FeeBps      uint16
	Name        string
	Tiers       [3]MintTier
}

// EventType implements the Event interface.
func (MarketplaceInitialized) EventType() string { return TypeMarketplaceInitialized }

// Label returns the client-facing event name.
func (MarketplaceInitialized) Label() string { return LabelMarketInitialized }

// Event converts the payload to the generic event form.
func (e MarketplaceInitialized) Event() *types.Event {
	attrs := map[string]string{
		"label":        LabelMarketInitialized,
		"marketplace":  e.Marketplace.String(),
		"admin":        e.Admin.String(),
		"credit_mint":  e.CreditMint.String(),
		"credit_vault": e.CreditVault.String(),
		"treasury":     e.Treasury.String(),
		"rewards_mint": e.RewardsMint.String(),
		"fee_bps":      strconv.FormatUint(uint64(e.FeeBps), 10),
		"name":         e.Name,
	}
	addTiers(attrs, e.Tiers)
	return &types.Event{Type: TypeMarketplaceInitialized, Attributes: attrs}
}

// MintTiersUpdated carries the tier table that replaced the previous one.
type MintTiersUpdated struct {
	Marketplace solana.PublicKey
	Admin       solana.PublicKey
	Tiers       [3]MintTier
}

// EventType implements the Event interface.
func (MintTiersUpdated) EventType() string { return TypeMintTiersUpdated }

// Label returns the client-facing event name.
func (MintTiersUpdated) Label() string { return LabelMintTiersUpdated }

// Event converts the payload to the generic event form.
func (e MintTiersUpdated) Event() *types.Event {
	attrs := map[string]string{
		"label":       LabelMintTiersUpdated,
		"marketplace": e.Marketplace.String(),
		"admin":       e.Admin.String(),
	}
	addTiers(attrs, e.Tiers)
	return &types.Event{Type: TypeMintTiersUpdated, Attributes: attrs}
}

// BidTokensMinted records a credit purchase.
type BidTokensMinted struct {
	Marketplace solana.PublicKey
	Owner       solana.PublicKey
	Tier        uint8
	Minted      uint64
	Cost        uint64
	Points      uint32
}

// EventType implements the Event interface.
func (BidTokensMinted) EventType() string { return TypeBidTokensMinted }

// Label returns the client-facing event name.
func (BidTokensMinted) Label() string { return LabelBidTokensMinted }

// Event converts the payload to the generic event form.
func (e BidTokensMinted) Event() *types.Event {
	return &types.Event{
		Type: TypeBidTokensMinted,
		Attributes: map[string]string{
			"label":       LabelBidTokensMinted,
			"marketplace": e.Marketplace.String(),
			"owner":       e.Owner.String(),
			"tier":        strconv.FormatUint(uint64(e.Tier), 10),
			"minted":      strconv.FormatUint(e.Minted, 10),
			"cost":        strconv.FormatUint(e.Cost, 10),
			"points":      strconv.FormatUint(uint64(e.Points), 10),
		},
	}
}

// UserCreated snapshots a new loyalty record.
type UserCreated struct {
	User        solana.PublicKey
	Owner       solana.PublicKey
	Marketplace solana.PublicKey
}

// EventType implements the Event interface.
func (UserCreated) EventType() string { return TypeUserCreated }

// Label returns the client-facing event name.
func (UserCreated) Label() string { return LabelUserCreated }

// Event converts the payload to the generic event form.
func (e UserCreated) Event() *types.Event {
	return &types.Event{
		Type: TypeUserCreated,
		Attributes: map[string]string{
			"label":       LabelUserCreated,
			"user":        e.User.String(),
			"owner":       e.Owner.String(),
			"marketplace": e.Marketplace.String(),
		},
	}
}

// ListingCreated snapshots a listing right after its asset was escrowed.
type ListingCreated struct {
	Listing        solana.PublicKey
	Marketplace    solana.PublicKey
	Mint           solana.PublicKey
	Seller         solana.PublicKey
	Vault          solana.PublicKey
	Seed           uint64
	BidIncrement   uint64
	TimerExtension uint64
	StartSlot      uint64
	EndSlot        uint64
	BuyoutPrice    uint64
}

// EventType implements the Event interface.
func (ListingCreated) EventType() string { return TypeListingCreated }

// Label returns the client-facing event name.
func (ListingCreated) Label() string { return LabelListingCreated }

// Event converts the payload to the generic event form.
func (e ListingCreated) Event() *types.Event {
	return &types.Event{
		Type: TypeListingCreated,
		Attributes: map[string]string{
			"label":           LabelListingCreated,
			"listing":         e.Listing.String(),
			"marketplace":     e.Marketplace.String(),
			"mint":            e.Mint.String(),
			"seller":          e.Seller.String(),
			"vault":           e.Vault.String(),
			"seed":            strconv.FormatUint(e.Seed, 10),
			"bid_increment":   strconv.FormatUint(e.BidIncrement, 10),
			"timer_extension": strconv.FormatUint(e.TimerExtension, 10),
			"start_slot":      strconv.FormatUint(e.StartSlot, 10),
			"end_slot":        strconv.FormatUint(e.EndSlot, 10),
			"buyout_price":    strconv.FormatUint(e.BuyoutPrice, 10),
		},
	}
}

// BidPlaced reports the listing's bid fields after an accepted bid.
type BidPlaced struct {
	Bidder     solana.PublicKey
	Listing    solana.PublicKey
	CurrentBid uint64
	EndSlot    uint64
}

// EventType implements the Event interface.
func (BidPlaced) EventType() string { return TypeBidPlaced }

// Label returns the client-facing event name.
func (BidPlaced) Label() string { return LabelBidPlaced }

// Event converts the payload to the generic event form.
func (e BidPlaced) Event() *types.Event {
	return &types.Event{
		Type: TypeBidPlaced,
		Attributes: map[string]string{
			"label":       LabelBidPlaced,
			"bidder":      e.Bidder.String(),
			"listing":     e.Listing.String(),
			"current_bid": strconv.FormatUint(e.CurrentBid, 10),
			"end_slot":    strconv.FormatUint(e.EndSlot, 10),
		},
	}
}

// ListingEnded records the settlement of an auction.
type ListingEnded struct {
	Listing  solana.PublicKey
	Mint     solana.PublicKey
	Seller   solana.PublicKey
	Claimer  solana.PublicKey
	FinalBid uint64
	EndSlot  uint64
}

// EventType implements the Event interface.
func (ListingEnded) EventType() string { return TypeListingEnded }

// Label returns the client-facing event name.
func (ListingEnded) Label() string { return LabelListingEnded }

// Event converts the payload to the generic event form.
func (e ListingEnded) Event() *types.Event {
	return &types.Event{
		Type: TypeListingEnded,
		Attributes: map[string]string{
			"label":     LabelListingEnded,
			"listing":   e.Listing.String(),
			"mint":      e.Mint.String(),
			"seller":    e.Seller.String(),
			"claimer":   e.Claimer.String(),
			"final_bid": strconv.FormatUint(e.FinalBid, 10),
			"end_slot":  strconv.FormatUint(e.EndSlot, 10),
		},
	}
}

// ListingDelisted records an unsold listing returned to its seller.
type ListingDelisted struct {
	Listing solana.PublicKey
	Mint    solana.PublicKey
	Seller  solana.PublicKey
}

// EventType implements the Event interface.
func (ListingDelisted) EventType() string { return TypeListingDelisted }

// Label returns the client-facing event name.
func (ListingDelisted) Label() string { return LabelListingDelisted }

// Event converts the payload to the generic event form.
func (e ListingDelisted) Event() *types.Event {
	return &types.Event{
		Type: TypeListingDelisted,
		Attributes: map[string]string{
			"label":   LabelListingDelisted,
			"listing": e.Listing.String(),
			"mint":    e.Mint.String(),
			"seller":  e.Seller.String(),
		},
	}
}

// ListingPurchased records a buyout and how the price was split.
type ListingPurchased struct {
	Listing  solana.PublicKey
	Mint     solana.PublicKey
	Seller   solana.PublicKey
	Buyer    solana.PublicKey
	Price    uint64
	Fee      uint64
	Proceeds uint64
}

// EventType implements the Event interface.
func (ListingPurchased) EventType() string { return TypeListingPurchased }

// Label returns the client-facing event name.
func (ListingPurchased) Label() string { return LabelListingPurchased }

// Event converts the payload to the generic event form.
func (e ListingPurchased) Event() *types.Event {
	return &types.Event{
		Type: TypeListingPurchased,
		Attributes: map[string]string{
			"label":    LabelListingPurchased,
			"listing":  e.Listing.String(),
			"mint":     e.Mint.String(),
			"seller":   e.Seller.String(),
			"buyer":    e.Buyer.String(),
			"price":    strconv.FormatUint(e.Price, 10),
			"fee":      strconv.FormatUint(e.Fee, 10),
			"proceeds": strconv.FormatUint(e.Proceeds, 10),
		},
	}
}

func addTiers(attrs map[string]string, tiers [3]MintTier) {
	for i, tier := range tiers {
		prefix := "tier" + strconv.Itoa(i+1) + "_"
		attrs[prefix+"amount"] = strconv.FormatUint(tier.Amount, 10)
		attrs[prefix+"cost"] = strconv.FormatUint(tier.Cost, 10)
		attrs[prefix+"bonus"] = strconv.FormatUint(tier.Bonus, 10)
	}
}
