package market_test

import (
	"math/rand"
	"testing"

	"nftmarket/native/market"
)

func TestSplitBuyout(t *testing.T) {
	cases := []struct {
		price, fee, proceeds uint64
		bps                  uint16
	}{
		{price: 1_000_000, bps: 250, fee: 25_000, proceeds: 975_000},
		{price: 999, bps: 1, fee: 0, proceeds: 999},
		{price: 10_000, bps: market.MaxFeeBps, fee: 10_000, proceeds: 0},
		{price: 12_345, bps: 0, fee: 0, proceeds: 12_345},
		{price: ^uint64(0), bps: 5_000, fee: ^uint64(0) / 2, proceeds: ^uint64(0) - ^uint64(0)/2},
	}
	for _, tc := range cases {
		fee, proceeds, err := market.SplitBuyout(tc.price, tc.bps)
		if err != nil {
			t.Fatalf("split %d @ %d: %v", tc.price, tc.bps, err)
		}
		if fee != tc.fee || proceeds != tc.proceeds {
			t.Fatalf("split %d @ %d: got %d/%d want %d/%d", tc.price, tc.bps, fee, proceeds, tc.fee, tc.proceeds)
		}
	}
}

func TestSplitBuyoutConservesPrice(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 1_000; i++ {
		price := rng.Uint64()
		bps := uint16(rng.Intn(market.MaxFeeBps + 1))
		fee, proceeds, err := market.SplitBuyout(price, bps)
		if err != nil {
			t.Fatalf("split %d @ %d: %v", price, bps, err)
		}
		if fee+proceeds != price {
			t.Fatalf("split %d @ %d leaks: %d + %d", price, bps, fee, proceeds)
		}
		if fee > price {
			t.Fatalf("fee %d above price %d", fee, price)
		}
	}
}

func TestSplitBuyoutRejectsFeeAboveOneHundredPercent(t *testing.T) {
	if _, _, err := market.SplitBuyout(10_000, market.MaxFeeBps+1); err == nil {
		t.Fatalf("expected error for fee above price")
	}
}
