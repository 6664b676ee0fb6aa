package market

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"nftmarket/core/events"
	"nftmarket/native/custody"
)

// escrowAmount is the number of units a vault holds while a listing is open.
const escrowAmount uint64 = 1

// List escrows the seller's asset and opens an auction. It returns the
// listing address.
func (e *Engine) List(ix *ListIx) (solana.PublicKey, error) {
	var created solana.PublicKey
	err := e.atomically(func(uint64) error {
		seller, err := ix.Signers.wallet(ix.Seller, "seller")
		if err != nil {
			return err
		}
		m, err := e.records().marketplace(ix.Marketplace)
		if err != nil {
			return err
		}
		if err := ix.Signers.requireAdmin(m, ix.Admin, ErrInvalidListingAuthority); err != nil {
			return err
		}
		if ix.Amount != escrowAmount {
			return fmt.Errorf("%w: got %d", ErrInvalidListingAmount, ix.Amount)
		}
		addr, bump, err := ListingAddress(e.programID, ix.Marketplace, ix.Mint, ix.Seed)
		if err != nil {
			return err
		}
		exists, err := e.records().exists(listingPrefix, addr)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("%w: %s", ErrListingExists, addr)
		}
		listing, err := NewListing(ListingTerms{
			Marketplace:    ix.Marketplace,
			Mint:           ix.Mint,
			Seller:         ix.Seller,
			Seed:           ix.Seed,
			BidIncrement:   ix.BidIncrement,
			TimerExtension: ix.TimerExtension,
			StartSlot:      ix.StartSlot,
			Duration:       ix.Duration,
			BuyoutPrice:    ix.BuyoutPrice,
			Bump:           bump,
		})
		if err != nil {
			return err
		}

		if err := e.tokens.Allocate(seller, addr, ListingSpace); err != nil {
			return fmt.Errorf("market: fund listing: %w", err)
		}
		source, _, err := solana.FindAssociatedTokenAddress(ix.Seller, ix.Mint)
		if err != nil {
			return fmt.Errorf("market: derive seller account: %w", err)
		}
		vault, err := e.tokens.CreateAssociatedAccount(seller, addr, ix.Mint)
		if err != nil {
			return fmt.Errorf("market: create vault: %w", err)
		}
		err = e.custody.Move(custody.MoveRequest{
			Amount:        ix.Amount,
			From:          source,
			To:            vault,
			AuthorityFrom: ix.Seller,
			AuthorityTo:   addr,
			Mint:          ix.Mint,
			Metadata:      ix.Metadata,
			Signer:        seller,
			Authorization: ix.Authorization,
		})
		if err != nil {
			return err
		}
		if err := e.records().putListing(addr, listing); err != nil {
			return err
		}
		if _, err := e.reward(ix.Marketplace, seller, ActivityList, false); err != nil {
			return err
		}
		e.emit(events.ListingCreated{
			Listing:        addr,
			Marketplace:    listing.Marketplace,
			Mint:           listing.Mint,
			Seller:         listing.Seller,
			Vault:          vault,
			Seed:           listing.Seed,
			BidIncrement:   listing.BidIncrement,
			TimerExtension: listing.TimerExtension,
			StartSlot:      listing.StartSlot,
			EndSlot:        listing.EndSlot,
			BuyoutPrice:    listing.BuyoutPrice,
		})
		created = addr
		return nil
	})
	return created, err
}

// PlaceBid charges the bidder one bid worth of credits and makes them the
// highest bidder.
func (e *Engine) PlaceBid(ix *PlaceBidIx) error {
	return e.atomically(func(slot uint64) error {
		bidder, err := ix.Signers.wallet(ix.Bidder, "bidder")
		if err != nil {
			return err
		}
		listing, err := e.records().listing(ix.Listing)
		if err != nil {
			return err
		}
		if err := listing.ValidateBid(slot, ix.Bidder, ix.ClaimedBidder, ix.ClaimedBid); err != nil {
			return err
		}
		m, err := e.records().marketplace(listing.Marketplace)
		if err != nil {
			return err
		}
		creditMint, err := e.tokens.Mint(m.CreditMint)
		if err != nil {
			return fmt.Errorf("market: load credit mint: %w", err)
		}
		charge, err := listing.BidCharge(creditMint.Decimals)
		if err != nil {
			return err
		}
		source, _, err := solana.FindAssociatedTokenAddress(ix.Bidder, m.CreditMint)
		if err != nil {
			return fmt.Errorf("market: derive bidder account: %w", err)
		}
		err = e.custody.Move(custody.MoveRequest{
			Amount:        charge,
			From:          source,
			To:            m.CreditVault,
			AuthorityFrom: ix.Bidder,
			AuthorityTo:   listing.Marketplace,
			Mint:          m.CreditMint,
			Signer:        bidder,
		})
		if err != nil {
			return err
		}
		if err := listing.ApplyBid(ix.Bidder); err != nil {
			return err
		}
		if err := e.records().putListing(ix.Listing, listing); err != nil {
			return err
		}
		first, err := e.records().markParticipant(ix.Listing, ix.Bidder)
		if err != nil {
			return err
		}
		if _, err := e.reward(listing.Marketplace, bidder, ActivityBid, first); err != nil {
			return err
		}
		e.emit(events.BidPlaced{
			Bidder:     ix.Bidder,
			Listing:    ix.Listing,
			CurrentBid: listing.CurrentBid,
			EndSlot:    listing.EndSlot,
		})
		return nil
	})
}

// EndListing settles an ended auction: the claimer pays the winning bid in
// lamports to the treasury and receives the asset, and the vault is closed.
// The listing record stays behind, inactive.
func (e *Engine) EndListing(ix *EndListingIx) error {
	return e.atomically(func(slot uint64) error {
		claimer, err := ix.Signers.wallet(ix.Claimer, "claimer")
		if err != nil {
			return err
		}
		listing, err := e.records().listing(ix.Listing)
		if err != nil {
			return err
		}
		m, err := e.records().marketplace(listing.Marketplace)
		if err != nil {
			return err
		}
		if err := ix.Signers.requireAdmin(m, ix.Admin, ErrInvalidListingAuthority); err != nil {
			return err
		}
		if ix.Amount != escrowAmount {
			return fmt.Errorf("%w: got %d", ErrInvalidListingAmount, ix.Amount)
		}
		if err := listing.CheckSettleable(slot); err != nil {
			return err
		}
		if err := listing.CheckClaimer(ix.Claimer); err != nil {
			return err
		}
		if listing.CurrentBid > 0 {
			if err := e.tokens.TransferLamports(ix.Claimer, m.Treasury, listing.CurrentBid, claimer); err != nil {
				return fmt.Errorf("market: pay winning bid: %w", err)
			}
		}
		destination, err := e.tokens.EnsureAssociatedAccount(claimer, ix.Claimer, listing.Mint)
		if err != nil {
			return fmt.Errorf("market: open claimer account: %w", err)
		}
		if err := e.release(ix.Listing, listing, destination, ix.Claimer, ix.Metadata, ix.Authorization); err != nil {
			return err
		}
		listing.Settle()
		if err := e.records().putListing(ix.Listing, listing); err != nil {
			return err
		}
		if err := e.records().deleteParticipants(ix.Listing); err != nil {
			return err
		}
		if _, err := e.reward(listing.Marketplace, claimer, ActivityWin, false); err != nil {
			return err
		}
		e.emit(events.ListingEnded{
			Listing:  ix.Listing,
			Mint:     listing.Mint,
			Seller:   listing.Seller,
			Claimer:  ix.Claimer,
			FinalBid: listing.CurrentBid,
			EndSlot:  listing.EndSlot,
		})
		return nil
	})
}

// Delist returns the asset of an ended auction that drew no bids to its
// seller and closes the listing.
func (e *Engine) Delist(ix *DelistIx) error {
	return e.atomically(func(slot uint64) error {
		seller, err := ix.Signers.wallet(ix.Seller, "seller")
		if err != nil {
			return err
		}
		listing, err := e.records().listing(ix.Listing)
		if err != nil {
			return err
		}
		if listing.Seller != ix.Seller {
			return ErrNotSeller
		}
		if err := listing.CheckDelistable(slot); err != nil {
			return err
		}
		destination, err := e.tokens.EnsureAssociatedAccount(seller, ix.Seller, listing.Mint)
		if err != nil {
			return fmt.Errorf("market: open seller account: %w", err)
		}
		if err := e.release(ix.Listing, listing, destination, ix.Seller, ix.Metadata, ix.Authorization); err != nil {
			return err
		}
		if err := e.closeListing(ix.Listing, listing); err != nil {
			return err
		}
		e.emit(events.ListingDelisted{Listing: ix.Listing, Mint: listing.Mint, Seller: listing.Seller})
		return nil
	})
}

// Purchase sells the asset at its buyout price. The marketplace fee goes to
// the treasury and the rest to the seller. It returns the fee charged.
func (e *Engine) Purchase(ix *PurchaseIx) (uint64, error) {
	var charged uint64
	err := e.atomically(func(slot uint64) error {
		buyer, err := ix.Signers.wallet(ix.Buyer, "buyer")
		if err != nil {
			return err
		}
		listing, err := e.records().listing(ix.Listing)
		if err != nil {
			return err
		}
		if err := listing.CheckPurchasable(slot); err != nil {
			return err
		}
		m, err := e.records().marketplace(listing.Marketplace)
		if err != nil {
			return err
		}
		fee, proceeds, err := SplitBuyout(listing.BuyoutPrice, m.FeeBps)
		if err != nil {
			return err
		}
		if err := e.tokens.TransferLamports(ix.Buyer, m.Treasury, fee, buyer); err != nil {
			return fmt.Errorf("market: pay marketplace fee: %w", err)
		}
		if err := e.tokens.TransferLamports(ix.Buyer, listing.Seller, proceeds, buyer); err != nil {
			return fmt.Errorf("market: pay seller: %w", err)
		}
		destination, err := e.tokens.EnsureAssociatedAccount(buyer, ix.Buyer, listing.Mint)
		if err != nil {
			return fmt.Errorf("market: open buyer account: %w", err)
		}
		if err := e.release(ix.Listing, listing, destination, ix.Buyer, ix.Metadata, ix.Authorization); err != nil {
			return err
		}
		if err := e.closeListing(ix.Listing, listing); err != nil {
			return err
		}
		e.emit(events.ListingPurchased{
			Listing:  ix.Listing,
			Mint:     listing.Mint,
			Seller:   listing.Seller,
			Buyer:    ix.Buyer,
			Price:    listing.BuyoutPrice,
			Fee:      fee,
			Proceeds: proceeds,
		})
		charged = fee
		return nil
	})
	return charged, err
}

// release moves the escrowed asset to destination, owned by receiver, and
// closes the vault with its rent going to the seller.
func (e *Engine) release(addr solana.PublicKey, listing *Listing, destination, receiver, metadata solana.PublicKey, auth *custody.Authorization) error {
	authority, err := listingAuthority(e.programID, listing)
	if err != nil {
		return err
	}
	vault, err := VaultAddress(addr, listing.Mint)
	if err != nil {
		return err
	}
	err = e.custody.Move(custody.MoveRequest{
		Amount:        escrowAmount,
		From:          vault,
		To:            destination,
		AuthorityFrom: addr,
		AuthorityTo:   receiver,
		Mint:          listing.Mint,
		Metadata:      metadata,
		Signer:        authority,
		Authorization: auth,
	})
	if err != nil {
		return err
	}
	return e.custody.Close(vault, listing.Seller, authority)
}

// closeListing deletes the listing record and refunds its rent to the seller.
func (e *Engine) closeListing(addr solana.PublicKey, listing *Listing) error {
	authority, err := listingAuthority(e.programID, listing)
	if err != nil {
		return err
	}
	if err := e.tokens.Reclaim(addr, listing.Seller, authority); err != nil {
		return fmt.Errorf("market: close listing: %w", err)
	}
	if err := e.records().deleteListing(addr); err != nil {
		return err
	}
	return e.records().deleteParticipants(addr)
}
