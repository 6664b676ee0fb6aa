package main

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"

	"nftmarket/native/custody"
	"nftmarket/native/market"
	"nftmarket/native/token"
)

type listingView struct {
	Address        solana.PublicKey `json:"address"`
	Marketplace    solana.PublicKey `json:"marketplace"`
	Mint           solana.PublicKey `json:"mint"`
	Seller         solana.PublicKey `json:"seller"`
	Seed           uint64           `json:"seed"`
	Phase          string           `json:"phase"`
	IsActive       bool             `json:"is_active"`
	BidCost        uint64           `json:"bid_cost"`
	BidIncrement   uint64           `json:"bid_increment"`
	CurrentBid     uint64           `json:"current_bid"`
	CurrentBidSOL  string           `json:"current_bid_sol"`
	HighestBidder  solana.PublicKey `json:"highest_bidder"`
	HasBids        bool             `json:"has_bids"`
	TimerExtension uint64           `json:"timer_extension"`
	StartSlot      uint64           `json:"start_slot"`
	EndSlot        uint64           `json:"end_slot"`
	BuyoutPrice    uint64           `json:"buyout_price"`
	BuyoutSOL      string           `json:"buyout_sol"`
}

// addCustodyFlags registers the accounts a programmable asset needs to move.
func addCustodyFlags(cmd *cobra.Command) {
	cmd.Flags().String("metadata", "", "Metadata account of a programmable asset")
	cmd.Flags().String("auth-rules", "", "Rule set presented on rules-enforced transfers")
	cmd.Flags().String("edition", "", "Master edition account of a programmable asset")
}

// custodyAccounts reads the custody flags. A nil authorization selects the
// checked transfer path.
func (a *app) custodyAccounts(cmd *cobra.Command) (solana.PublicKey, *custody.Authorization, error) {
	metadataRef, _ := cmd.Flags().GetString("metadata")
	rulesRef, _ := cmd.Flags().GetString("auth-rules")
	editionRef, _ := cmd.Flags().GetString("edition")
	if metadataRef == "" {
		if rulesRef != "" || editionRef != "" {
			return solana.PublicKey{}, nil, fmt.Errorf("--auth-rules and --edition require --metadata")
		}
		return solana.PublicKey{}, nil, nil
	}
	metadata, err := a.account(metadataRef)
	if err != nil {
		return solana.PublicKey{}, nil, err
	}
	auth := &custody.Authorization{MetadataProgram: custody.TokenMetadataProgramID}
	if rulesRef != "" {
		if auth.AuthRules, err = a.account(rulesRef); err != nil {
			return solana.PublicKey{}, nil, err
		}
		auth.AuthRulesProgram = token.AuthRulesProgramID
	}
	if editionRef != "" {
		if auth.Edition, err = a.account(editionRef); err != nil {
			return solana.PublicKey{}, nil, err
		}
	}
	return metadata, auth, nil
}

func solFlag(cmd *cobra.Command, name string) (uint64, error) {
	raw, _ := cmd.Flags().GetString(name)
	if raw == "" {
		return 0, nil
	}
	v, err := parseSOL(raw)
	if err != nil {
		return 0, fmt.Errorf("--%s: %w", name, err)
	}
	return v, nil
}

func newListingCmd(a *app) *cobra.Command {
	listingCmd := &cobra.Command{
		Use:   "listing",
		Short: "Run auctions",
	}

	createCmd := &cobra.Command{
		Use:   "create MARKETPLACE",
		Short: "Escrow an asset and open an auction over it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sellerName, _ := cmd.Flags().GetString("seller")
			adminName, _ := cmd.Flags().GetString("admin")
			mintRef, _ := cmd.Flags().GetString("mint")
			seed, _ := cmd.Flags().GetUint64("seed")
			extension, _ := cmd.Flags().GetUint64("extension")
			duration, _ := cmd.Flags().GetUint64("duration")
			amount, _ := cmd.Flags().GetUint64("amount")

			marketplace, err := a.account(args[0])
			if err != nil {
				return err
			}
			seller, err := a.signer(sellerName)
			if err != nil {
				return err
			}
			admin, err := a.signer(adminName)
			if err != nil {
				return err
			}
			mint, err := a.account(mintRef)
			if err != nil {
				return err
			}
			increment, err := solFlag(cmd, "increment")
			if err != nil {
				return err
			}
			buyout, err := solFlag(cmd, "buyout")
			if err != nil {
				return err
			}
			start := a.clock.Slot()
			if cmd.Flags().Changed("start") {
				start, _ = cmd.Flags().GetUint64("start")
			}
			metadata, auth, err := a.custodyAccounts(cmd)
			if err != nil {
				return err
			}
			return a.runInstruction(cmd, &market.ListIx{
				Marketplace:    marketplace,
				Seller:         seller,
				Admin:          admin,
				Mint:           mint,
				Metadata:       metadata,
				Seed:           seed,
				BidIncrement:   increment,
				TimerExtension: extension,
				StartSlot:      start,
				Duration:       duration,
				BuyoutPrice:    buyout,
				Amount:         amount,
				Authorization:  auth,
				Signers:        market.Signers{seller, admin},
			})
		},
	}
	createCmd.Flags().String("seller", "", "Key name of the seller")
	createCmd.Flags().String("admin", "", "Key name of the marketplace admin co-signing the listing")
	createCmd.Flags().String("mint", "", "Mint of the asset to list")
	createCmd.Flags().Uint64("seed", 0, "Listing seed, distinguishing relistings of the same asset")
	createCmd.Flags().String("increment", "", "Bid increment in SOL")
	createCmd.Flags().Uint64("extension", 0, "Slots a late bid extends the auction by")
	createCmd.Flags().Uint64("start", 0, "First slot bids are accepted (default: current slot)")
	createCmd.Flags().Uint64("duration", 0, "Auction length in slots")
	createCmd.Flags().String("buyout", "", "Buyout price in SOL; empty disables buyout")
	createCmd.Flags().Uint64("amount", 1, "Units to escrow")
	addCustodyFlags(createCmd)
	for _, flag := range []string{"seller", "admin", "mint", "increment", "duration"} {
		_ = createCmd.MarkFlagRequired(flag)
	}

	bidCmd := &cobra.Command{
		Use:   "bid LISTING",
		Short: "Outbid the current highest bidder",
		Long: `Place a bid on a listing. The bid names the highest bidder and bid it
expects to beat; unless given explicitly they are read from the listing.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bidderName, _ := cmd.Flags().GetString("bidder")
			listingAddr, err := a.account(args[0])
			if err != nil {
				return err
			}
			bidder, err := a.signer(bidderName)
			if err != nil {
				return err
			}
			listing, err := a.processor.Listing(listingAddr)
			if err != nil {
				return err
			}
			claimedBidder, claimedBid := listing.HighestBidder, listing.CurrentBid
			if ref, _ := cmd.Flags().GetString("claimed-bidder"); ref != "" {
				if claimedBidder, err = a.account(ref); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("claimed-bid") {
				if claimedBid, err = solFlag(cmd, "claimed-bid"); err != nil {
					return err
				}
			}
			return a.runInstruction(cmd, &market.PlaceBidIx{
				Listing:       listingAddr,
				Bidder:        bidder,
				ClaimedBidder: claimedBidder,
				ClaimedBid:    claimedBid,
				Signers:       market.Signers{bidder},
			})
		},
	}
	bidCmd.Flags().String("bidder", "", "Key name of the bidder")
	bidCmd.Flags().String("claimed-bidder", "", "Highest bidder the bid expects to replace")
	bidCmd.Flags().String("claimed-bid", "", "Current bid in SOL the bid expects to raise")
	_ = bidCmd.MarkFlagRequired("bidder")

	endCmd := &cobra.Command{
		Use:   "end LISTING",
		Short: "Settle an ended auction to its winner, or to the seller without bids",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			claimerName, _ := cmd.Flags().GetString("claimer")
			adminName, _ := cmd.Flags().GetString("admin")
			amount, _ := cmd.Flags().GetUint64("amount")

			listingAddr, err := a.account(args[0])
			if err != nil {
				return err
			}
			claimer, err := a.signer(claimerName)
			if err != nil {
				return err
			}
			admin, err := a.signer(adminName)
			if err != nil {
				return err
			}
			metadata, auth, err := a.custodyAccounts(cmd)
			if err != nil {
				return err
			}
			return a.runInstruction(cmd, &market.EndListingIx{
				Listing:       listingAddr,
				Claimer:       claimer,
				Admin:         admin,
				Metadata:      metadata,
				Amount:        amount,
				Authorization: auth,
				Signers:       market.Signers{claimer, admin},
			})
		},
	}
	endCmd.Flags().String("claimer", "", "Key name of the winner, or the seller when nobody bid")
	endCmd.Flags().String("admin", "", "Key name of the marketplace admin co-signing the settlement")
	endCmd.Flags().Uint64("amount", 1, "Units to release")
	addCustodyFlags(endCmd)
	_ = endCmd.MarkFlagRequired("claimer")
	_ = endCmd.MarkFlagRequired("admin")

	delistCmd := &cobra.Command{
		Use:   "delist LISTING",
		Short: "Return an unsold asset and the listing rent to the seller",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sellerName, _ := cmd.Flags().GetString("seller")
			listingAddr, err := a.account(args[0])
			if err != nil {
				return err
			}
			seller, err := a.signer(sellerName)
			if err != nil {
				return err
			}
			metadata, auth, err := a.custodyAccounts(cmd)
			if err != nil {
				return err
			}
			return a.runInstruction(cmd, &market.DelistIx{
				Listing:       listingAddr,
				Seller:        seller,
				Metadata:      metadata,
				Authorization: auth,
				Signers:       market.Signers{seller},
			})
		},
	}
	delistCmd.Flags().String("seller", "", "Key name of the seller")
	addCustodyFlags(delistCmd)
	_ = delistCmd.MarkFlagRequired("seller")

	buyCmd := &cobra.Command{
		Use:   "buy LISTING",
		Short: "Buy a listed asset at its buyout price",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			buyerName, _ := cmd.Flags().GetString("buyer")
			listingAddr, err := a.account(args[0])
			if err != nil {
				return err
			}
			buyer, err := a.signer(buyerName)
			if err != nil {
				return err
			}
			metadata, auth, err := a.custodyAccounts(cmd)
			if err != nil {
				return err
			}
			return a.runInstruction(cmd, &market.PurchaseIx{
				Listing:       listingAddr,
				Buyer:         buyer,
				Metadata:      metadata,
				Authorization: auth,
				Signers:       market.Signers{buyer},
			})
		},
	}
	buyCmd.Flags().String("buyer", "", "Key name of the buyer")
	addCustodyFlags(buyCmd)
	_ = buyCmd.MarkFlagRequired("buyer")

	showCmd := &cobra.Command{
		Use:   "show LISTING",
		Short: "Print a listing and its phase at the current slot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := a.account(args[0])
			if err != nil {
				return err
			}
			l, err := a.processor.Listing(addr)
			if err != nil {
				return err
			}
			phase, err := a.processor.ListingPhase(addr)
			if err != nil {
				return err
			}
			return a.printJSON(listingView{
				Address:        addr,
				Marketplace:    l.Marketplace,
				Mint:           l.Mint,
				Seller:         l.Seller,
				Seed:           l.Seed,
				Phase:          phase.String(),
				IsActive:       l.IsActive,
				BidCost:        l.BidCost,
				BidIncrement:   l.BidIncrement,
				CurrentBid:     l.CurrentBid,
				CurrentBidSOL:  formatSOL(l.CurrentBid),
				HighestBidder:  l.HighestBidder,
				HasBids:        l.HasBids(),
				TimerExtension: l.TimerExtension,
				StartSlot:      l.StartSlot,
				EndSlot:        l.EndSlot,
				BuyoutPrice:    l.BuyoutPrice,
				BuyoutSOL:      formatSOL(l.BuyoutPrice),
			})
		},
	}

	listingCmd.AddCommand(createCmd, bidCmd, endCmd, delistCmd, buyCmd, showCmd)
	return listingCmd
}
