package market

import (
	"github.com/gagliardetto/solana-go"
)

// ListingTerms are the seller's parameters for a new auction.
type ListingTerms struct {
	Marketplace    solana.PublicKey
	Mint           solana.PublicKey
	Seller         solana.PublicKey
	Seed           uint64
	BidIncrement   uint64
	TimerExtension uint64
	StartSlot      uint64
	Duration       uint64
	BuyoutPrice    uint64
	Bump           uint8
}

// NewListing builds an active listing with no bids.
func NewListing(terms ListingTerms) (*Listing, error) {
	end, err := addU64(terms.StartSlot, terms.Duration)
	if err != nil {
		return nil, err
	}
	return &Listing{
		Marketplace:    terms.Marketplace,
		Mint:           terms.Mint,
		Seller:         terms.Seller,
		BidCost:        1,
		BidIncrement:   terms.BidIncrement,
		TimerExtension: terms.TimerExtension,
		StartSlot:      terms.StartSlot,
		EndSlot:        end,
		IsActive:       true,
		BuyoutPrice:    terms.BuyoutPrice,
		Seed:           terms.Seed,
		Bump:           terms.Bump,
	}, nil
}

// HasBids reports whether anyone has bid on the listing.
func (l *Listing) HasBids() bool {
	return !isZero(l.HighestBidder)
}

// Phase derives the lifecycle stage at slot.
func (l *Listing) Phase(slot uint64) Phase {
	switch {
	case !l.IsActive:
		return PhaseSettled
	case slot < l.StartSlot:
		return PhasePending
	case slot > l.EndSlot:
		return PhaseEnded
	default:
		return PhaseActive
	}
}

// CheckBiddable fails unless the listing accepts bids at slot.
func (l *Listing) CheckBiddable(slot uint64) error {
	switch l.Phase(slot) {
	case PhaseSettled:
		return ErrAuctionNotActive
	case PhasePending:
		return ErrAuctionNotStarted
	case PhaseEnded:
		return ErrAuctionEnded
	}
	return nil
}

// CheckClaim compares the bidder's view of the listing with its current
// state. Any difference means another bid landed first.
func (l *Listing) CheckClaim(claimedBidder solana.PublicKey, claimedBid uint64) error {
	if claimedBidder != l.HighestBidder || claimedBid != l.CurrentBid {
		return ErrInvalidCurrentHighestBidderAndPrice
	}
	return nil
}

// ValidateBid runs every bid precondition in order: timing, the concurrency
// claim, then the self-outbid rule. It does not mutate the listing.
func (l *Listing) ValidateBid(slot uint64, bidder, claimedBidder solana.PublicKey, claimedBid uint64) error {
	if err := l.CheckBiddable(slot); err != nil {
		return err
	}
	if err := l.CheckClaim(claimedBidder, claimedBid); err != nil {
		return err
	}
	if bidder == l.HighestBidder {
		return ErrBidderIsHighestBidder
	}
	return nil
}

// BidCharge is the credit amount one bid costs for a credit mint with the
// given decimals.
func (l *Listing) BidCharge(decimals uint8) (uint64, error) {
	return creditUnits(l.BidCost, decimals)
}

// ApplyBid raises the bid, records the bidder and extends the deadline. The
// listing is left untouched when any field would overflow.
func (l *Listing) ApplyBid(bidder solana.PublicKey) error {
	bid, err := addU64(l.CurrentBid, l.BidIncrement)
	if err != nil {
		return err
	}
	end, err := addU64(l.EndSlot, l.TimerExtension)
	if err != nil {
		return err
	}
	l.CurrentBid = bid
	l.EndSlot = end
	l.HighestBidder = bidder
	return nil
}

// CheckSettleable fails unless the auction can be settled at slot.
func (l *Listing) CheckSettleable(slot uint64) error {
	if !l.IsActive {
		return ErrAuctionAlreadyEnded
	}
	if slot <= l.EndSlot {
		return ErrAuctionNotEnded
	}
	return nil
}

// Claimer is the party entitled to the asset once the auction ends: the
// highest bidder, or the seller when nobody bid.
func (l *Listing) Claimer() solana.PublicKey {
	if l.HasBids() {
		return l.HighestBidder
	}
	return l.Seller
}

// CheckClaimer fails unless caller is the Claimer.
func (l *Listing) CheckClaimer(caller solana.PublicKey) error {
	if caller == l.Claimer() {
		return nil
	}
	if l.HasBids() {
		return ErrClaimerIsNotHighestBidder
	}
	return ErrClaimerIsNotSeller
}

// CheckDelistable fails unless the seller may withdraw the asset at slot.
func (l *Listing) CheckDelistable(slot uint64) error {
	if err := l.CheckSettleable(slot); err != nil {
		return err
	}
	if l.HasBids() {
		return ErrCannotDelistWithActiveBidder
	}
	if l.CurrentBid != 0 {
		return ErrCannotDelistWithActiveCurrentBidPrice
	}
	return nil
}

// CheckPurchasable fails unless a buyer may take the buyout price at slot.
func (l *Listing) CheckPurchasable(slot uint64) error {
	if !l.IsActive {
		return ErrAuctionNotActive
	}
	if slot > l.EndSlot {
		return ErrAuctionEnded
	}
	if l.BuyoutPrice == 0 {
		return ErrBuyoutUnavailable
	}
	return nil
}

// Settle marks the auction as ended.
func (l *Listing) Settle() {
	l.IsActive = false
}
