package market_test

import (
	"errors"
	"fmt"
	"testing"

	nativecommon "nftmarket/native/common"
	"nftmarket/native/custody"
	"nftmarket/native/market"
	"nftmarket/native/token"
)

func TestKind(t *testing.T) {
	cases := []struct {
		err  error
		want market.ErrorKind
	}{
		{nil, market.KindNone},
		{market.ErrInvalidFee, market.KindValidation},
		{fmt.Errorf("wrapped: %w", custody.ErrMissingMetadata), market.KindValidation},
		{market.ErrNotSeller, market.KindAuthorization},
		{fmt.Errorf("%w: bidder", market.ErrMissingSignature), market.KindAuthorization},
		{market.ErrAuctionEnded, market.KindState},
		{fmt.Errorf("%w: market", nativecommon.ErrModulePaused), market.KindState},
		{market.ErrArithmeticOverflow, market.KindArithmetic},
		{token.ErrArithmeticOverflow, market.KindArithmetic},
		{token.ErrInsufficientFunds, market.KindExternal},
		{errors.New("disk on fire"), market.KindExternal},
	}
	for _, tc := range cases {
		if got := market.Kind(tc.err); got != tc.want {
			t.Fatalf("Kind(%v) = %s, want %s", tc.err, got, tc.want)
		}
	}
}

func TestRetryable(t *testing.T) {
	if !market.Retryable(fmt.Errorf("bid: %w", market.ErrInvalidCurrentHighestBidderAndPrice)) {
		t.Fatalf("lost race should be retryable")
	}
	for _, err := range []error{nil, market.ErrAuctionEnded, market.ErrBidderIsHighestBidder} {
		if market.Retryable(err) {
			t.Fatalf("%v should not be retryable", err)
		}
	}
}
