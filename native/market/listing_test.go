package market_test

import (
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"

	"nftmarket/native/market"
)

func newTestListing(t *testing.T) *market.Listing {
	t.Helper()
	l, err := market.NewListing(market.ListingTerms{
		Seller:         solana.NewWallet().PublicKey(),
		BidIncrement:   5,
		TimerExtension: 3,
		StartSlot:      10,
		Duration:       20,
		BuyoutPrice:    100,
	})
	if err != nil {
		t.Fatalf("new listing: %v", err)
	}
	return l
}

func TestListingPhases(t *testing.T) {
	l := newTestListing(t)
	cases := []struct {
		slot uint64
		want market.Phase
	}{
		{0, market.PhasePending},
		{9, market.PhasePending},
		{10, market.PhaseActive},
		{30, market.PhaseActive},
		{31, market.PhaseEnded},
	}
	for _, tc := range cases {
		if got := l.Phase(tc.slot); got != tc.want {
			t.Fatalf("slot %d: phase %s, want %s", tc.slot, got, tc.want)
		}
	}
	l.Settle()
	if got := l.Phase(15); got != market.PhaseSettled {
		t.Fatalf("settled listing reports %s", got)
	}
	if err := l.CheckBiddable(15); !errors.Is(err, market.ErrAuctionNotActive) {
		t.Fatalf("expected ErrAuctionNotActive, got %v", err)
	}
}

func TestApplyBidIsMonotonic(t *testing.T) {
	l := newTestListing(t)
	bidders := []solana.PublicKey{solana.NewWallet().PublicKey(), solana.NewWallet().PublicKey()}
	prevBid, prevEnd := l.CurrentBid, l.EndSlot
	for i := 0; i < 10; i++ {
		bidder := bidders[i%2]
		if err := l.ValidateBid(l.StartSlot, bidder, l.HighestBidder, l.CurrentBid); err != nil {
			t.Fatalf("bid %d: %v", i, err)
		}
		if err := l.ApplyBid(bidder); err != nil {
			t.Fatalf("apply %d: %v", i, err)
		}
		if l.CurrentBid != prevBid+l.BidIncrement || l.EndSlot != prevEnd+l.TimerExtension {
			t.Fatalf("bid %d: bid %d end %d", i, l.CurrentBid, l.EndSlot)
		}
		if l.HighestBidder != bidder {
			t.Fatalf("bid %d: highest bidder not recorded", i)
		}
		prevBid, prevEnd = l.CurrentBid, l.EndSlot
	}
}

func TestValidateBidOrder(t *testing.T) {
	l := newTestListing(t)
	alice := solana.NewWallet().PublicKey()
	if err := l.ApplyBid(alice); err != nil {
		t.Fatalf("apply: %v", err)
	}
	// Timing is checked before the claim, the claim before the self-outbid rule.
	if err := l.ValidateBid(5, alice, solana.PublicKey{}, 0); !errors.Is(err, market.ErrAuctionNotStarted) {
		t.Fatalf("expected ErrAuctionNotStarted, got %v", err)
	}
	if err := l.ValidateBid(12, alice, solana.PublicKey{}, 0); !errors.Is(err, market.ErrInvalidCurrentHighestBidderAndPrice) {
		t.Fatalf("expected claim mismatch, got %v", err)
	}
	if err := l.ValidateBid(12, alice, alice, l.CurrentBid+1); !errors.Is(err, market.ErrInvalidCurrentHighestBidderAndPrice) {
		t.Fatalf("expected price mismatch, got %v", err)
	}
	if err := l.ValidateBid(12, alice, alice, l.CurrentBid); !errors.Is(err, market.ErrBidderIsHighestBidder) {
		t.Fatalf("expected ErrBidderIsHighestBidder, got %v", err)
	}
}

func TestApplyBidOverflowLeavesListing(t *testing.T) {
	l := newTestListing(t)
	l.CurrentBid = ^uint64(0) - 1
	before := *l
	if err := l.ApplyBid(solana.NewWallet().PublicKey()); !errors.Is(err, market.ErrArithmeticOverflow) {
		t.Fatalf("expected ErrArithmeticOverflow, got %v", err)
	}
	if *l != before {
		t.Fatalf("listing mutated on overflow")
	}

	l = newTestListing(t)
	l.EndSlot = ^uint64(0)
	before = *l
	if err := l.ApplyBid(solana.NewWallet().PublicKey()); !errors.Is(err, market.ErrArithmeticOverflow) {
		t.Fatalf("expected ErrArithmeticOverflow on end slot, got %v", err)
	}
	if *l != before {
		t.Fatalf("listing mutated on end slot overflow")
	}
}

func TestSettlementChecks(t *testing.T) {
	l := newTestListing(t)
	if err := l.CheckSettleable(l.EndSlot); !errors.Is(err, market.ErrAuctionNotEnded) {
		t.Fatalf("expected ErrAuctionNotEnded, got %v", err)
	}
	if err := l.CheckDelistable(l.EndSlot + 1); err != nil {
		t.Fatalf("unbid listing should be delistable: %v", err)
	}
	if l.Claimer() != l.Seller {
		t.Fatalf("claimer of an unbid listing must be the seller")
	}

	bidder := solana.NewWallet().PublicKey()
	if err := l.ApplyBid(bidder); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if err := l.CheckDelistable(l.EndSlot + 1); !errors.Is(err, market.ErrCannotDelistWithActiveBidder) {
		t.Fatalf("expected ErrCannotDelistWithActiveBidder, got %v", err)
	}
	if err := l.CheckClaimer(l.Seller); !errors.Is(err, market.ErrClaimerIsNotHighestBidder) {
		t.Fatalf("expected ErrClaimerIsNotHighestBidder, got %v", err)
	}
	if err := l.CheckClaimer(bidder); err != nil {
		t.Fatalf("winner rejected: %v", err)
	}

	l.HighestBidder = solana.PublicKey{}
	if err := l.CheckDelistable(l.EndSlot + 1); !errors.Is(err, market.ErrCannotDelistWithActiveCurrentBidPrice) {
		t.Fatalf("expected ErrCannotDelistWithActiveCurrentBidPrice, got %v", err)
	}

	l.Settle()
	if err := l.CheckSettleable(l.EndSlot + 1); !errors.Is(err, market.ErrAuctionAlreadyEnded) {
		t.Fatalf("expected ErrAuctionAlreadyEnded, got %v", err)
	}
}

func TestCheckPurchasable(t *testing.T) {
	l := newTestListing(t)
	if err := l.CheckPurchasable(0); err != nil {
		t.Fatalf("buyout before start should be allowed: %v", err)
	}
	if err := l.CheckPurchasable(l.EndSlot); err != nil {
		t.Fatalf("buyout at end slot: %v", err)
	}
	if err := l.CheckPurchasable(l.EndSlot + 1); !errors.Is(err, market.ErrAuctionEnded) {
		t.Fatalf("expected ErrAuctionEnded, got %v", err)
	}
	l.BuyoutPrice = 0
	if err := l.CheckPurchasable(l.StartSlot); !errors.Is(err, market.ErrBuyoutUnavailable) {
		t.Fatalf("expected ErrBuyoutUnavailable, got %v", err)
	}
	l.Settle()
	if err := l.CheckPurchasable(l.StartSlot); !errors.Is(err, market.ErrAuctionNotActive) {
		t.Fatalf("expected ErrAuctionNotActive, got %v", err)
	}
}

func TestBidCharge(t *testing.T) {
	l := newTestListing(t)
	for decimals, want := range map[uint8]uint64{0: 1, 2: 100, 9: 1_000_000_000} {
		got, err := l.BidCharge(decimals)
		if err != nil || got != want {
			t.Fatalf("decimals %d: charge %d (%v), want %d", decimals, got, err, want)
		}
	}
	if _, err := l.BidCharge(20); !errors.Is(err, market.ErrArithmeticOverflow) {
		t.Fatalf("expected ErrArithmeticOverflow, got %v", err)
	}
}
