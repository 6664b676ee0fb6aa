package market

import (
	"errors"

	nativecommon "nftmarket/native/common"
	"nftmarket/native/custody"
	"nftmarket/native/token"
)

var (
	ErrMarketplaceNameTooLong = errors.New("market: marketplace name must be 1 to 32 bytes")
	ErrInvalidFee             = errors.New("market: fee basis points exceed 10000")
	ErrInvalidMintTier        = errors.New("market: invalid mint tier")
	ErrInvalidMintCost        = errors.New("market: mint tier has no cost")
	ErrInvalidListingAmount   = errors.New("market: listings escrow exactly one unit")
	ErrInvalidAccount         = errors.New("market: account does not belong to this marketplace")

	ErrMissingSignature          = errors.New("market: required signature missing")
	ErrInvalidListingAuthority   = errors.New("market: only the marketplace admin can authorise listings")
	ErrUnauthorizedAdmin         = errors.New("market: caller is not the marketplace admin")
	ErrNotSeller                 = errors.New("market: caller is not the seller")
	ErrClaimerIsNotHighestBidder = errors.New("market: claimer is not the highest bidder")
	ErrClaimerIsNotSeller        = errors.New("market: claimer is not the seller")

	ErrAuctionNotActive                      = errors.New("market: auction is not active")
	ErrAuctionNotStarted                     = errors.New("market: auction has not started")
	ErrAuctionEnded                          = errors.New("market: auction has ended")
	ErrAuctionNotEnded                       = errors.New("market: auction has not ended")
	ErrAuctionAlreadyEnded                   = errors.New("market: auction already ended")
	ErrBidderIsHighestBidder                 = errors.New("market: bidder already holds the highest bid")
	ErrInvalidCurrentHighestBidderAndPrice   = errors.New("market: highest bidder or price changed")
	ErrCannotDelistWithActiveBidder          = errors.New("market: cannot delist a listing with a bidder")
	ErrCannotDelistWithActiveCurrentBidPrice = errors.New("market: cannot delist a listing with a bid price")
	ErrBuyoutUnavailable                     = errors.New("market: listing has no buyout price")
	ErrMarketplaceExists                     = errors.New("market: marketplace already exists")
	ErrMarketplaceNotFound                   = errors.New("market: marketplace not found")
	ErrListingExists                         = errors.New("market: listing already exists")
	ErrListingNotFound                       = errors.New("market: listing not found")
	ErrUserExists                            = errors.New("market: user account already exists")
	ErrUserNotFound                          = errors.New("market: user account not found")

	ErrArithmeticOverflow = errors.New("market: arithmetic overflow")
)

// ErrorKind groups failures by how a caller should react to them.
type ErrorKind uint8

const (
	KindNone ErrorKind = iota
	KindValidation
	KindAuthorization
	KindState
	KindArithmetic
	KindExternal
)

func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindValidation:
		return "validation"
	case KindAuthorization:
		return "authorization"
	case KindState:
		return "state"
	case KindArithmetic:
		return "arithmetic"
	default:
		return "external"
	}
}

var errorKinds = []struct {
	kind ErrorKind
	errs []error
}{
	{KindValidation, []error{
		ErrMarketplaceNameTooLong,
		ErrInvalidFee,
		ErrInvalidMintTier,
		ErrInvalidMintCost,
		ErrInvalidListingAmount,
		ErrInvalidAccount,
		custody.ErrInvalidMetadataProgram,
		custody.ErrMissingMetadata,
	}},
	{KindAuthorization, []error{
		ErrMissingSignature,
		ErrInvalidListingAuthority,
		ErrUnauthorizedAdmin,
		ErrNotSeller,
		ErrClaimerIsNotHighestBidder,
		ErrClaimerIsNotSeller,
	}},
	{KindState, []error{
		ErrAuctionNotActive,
		ErrAuctionNotStarted,
		ErrAuctionEnded,
		ErrAuctionNotEnded,
		ErrAuctionAlreadyEnded,
		ErrBidderIsHighestBidder,
		ErrInvalidCurrentHighestBidderAndPrice,
		ErrCannotDelistWithActiveBidder,
		ErrCannotDelistWithActiveCurrentBidPrice,
		ErrBuyoutUnavailable,
		ErrMarketplaceExists,
		ErrMarketplaceNotFound,
		ErrListingExists,
		ErrListingNotFound,
		ErrUserExists,
		ErrUserNotFound,
		nativecommon.ErrModulePaused,
	}},
	{KindArithmetic, []error{
		ErrArithmeticOverflow,
		nativecommon.ErrCounterOverflow,
		token.ErrArithmeticOverflow,
	}},
}

// Kind classifies err. Errors raised by collaborators that the marketplace does
// not recognise are KindExternal.
func Kind(err error) ErrorKind {
	if err == nil {
		return KindNone
	}
	for _, group := range errorKinds {
		for _, target := range group.errs {
			if errors.Is(err, target) {
				return group.kind
			}
		}
	}
	return KindExternal
}

// Retryable reports whether resubmitting with freshly observed listing state
// may succeed. Only a lost bidding race qualifies.
func Retryable(err error) bool {
	return errors.Is(err, ErrInvalidCurrentHighestBidderAndPrice)
}
