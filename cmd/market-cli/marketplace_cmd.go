package main

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"

	"nftmarket/config"
	"nftmarket/core/types"
	"nftmarket/native/market"
)

type tierView struct {
	Tier   string `json:"tier"`
	Amount uint64 `json:"amount"`
	Bonus  uint64 `json:"bonus"`
	Cost   uint64 `json:"cost"`
	Price  string `json:"price_sol"`
}

type marketplaceView struct {
	Address     solana.PublicKey `json:"address"`
	Name        string           `json:"name"`
	Admin       solana.PublicKey `json:"admin"`
	CreditMint  solana.PublicKey `json:"credit_mint"`
	CreditVault solana.PublicKey `json:"credit_vault"`
	Treasury    solana.PublicKey `json:"treasury"`
	RewardsMint solana.PublicKey `json:"rewards_mint"`
	FeeBps      uint16           `json:"fee_bps"`
	Tiers       []tierView       `json:"tiers"`
}

type userView struct {
	Address                   solana.PublicKey `json:"address"`
	Owner                     solana.PublicKey `json:"owner"`
	TotalBidsPlaced           uint32           `json:"total_bids_placed"`
	TotalAuctionsParticipated uint32           `json:"total_auctions_participated"`
	TotalAuctionsWon          uint32           `json:"total_auctions_won"`
	TotalAuctionsCreated      uint32           `json:"total_auctions_created"`
	Points                    uint32           `json:"points"`
}

// instructionView is printed after every successful instruction.
type instructionView struct {
	Instruction string           `json:"instruction"`
	Address     solana.PublicKey `json:"address"`
	Fee         uint64           `json:"fee,omitempty"`
	Minted      uint64           `json:"minted,omitempty"`
	Slot        uint64           `json:"slot"`
	Events      []*types.Event   `json:"events"`
}

func newTierViews(tiers [3]market.MintTier) []tierView {
	out := make([]tierView, 0, len(tiers))
	for _, t := range tiers {
		out = append(out, tierView{
			Tier:   t.Tier.String(),
			Amount: t.Amount,
			Bonus:  t.Bonus,
			Cost:   t.Cost,
			Price:  formatSOL(t.Cost),
		})
	}
	return out
}

func newMarketplaceView(addr solana.PublicKey, m *market.Marketplace) marketplaceView {
	return marketplaceView{
		Address:     addr,
		Name:        m.Name,
		Admin:       m.Admin,
		CreditMint:  m.CreditMint,
		CreditVault: m.CreditVault,
		Treasury:    m.Treasury,
		RewardsMint: m.RewardsMint,
		FeeBps:      m.FeeBps,
		Tiers:       newTierViews(m.MintTiers),
	}
}

func (a *app) printResult(ix market.Instruction, res market.Result, evts []*types.Event) error {
	return a.printJSON(instructionView{
		Instruction: ix.InstructionName(),
		Address:     res.Address,
		Fee:         res.Fee,
		Minted:      res.Minted,
		Slot:        a.clock.Slot(),
		Events:      evts,
	})
}

func (a *app) runInstruction(cmd *cobra.Command, ix market.Instruction) error {
	res, evts, err := a.process(cmd, ix)
	if err != nil {
		return err
	}
	return a.printResult(ix, res, evts)
}

func newMarketplaceCmd(a *app) *cobra.Command {
	marketplaceCmd := &cobra.Command{
		Use:   "marketplace",
		Short: "Create and configure marketplaces",
	}

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Create a marketplace with its credit mint, rewards mint and treasury",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			adminName, _ := cmd.Flags().GetString("admin")
			creditName, _ := cmd.Flags().GetString("credit-mint")
			name, _ := cmd.Flags().GetString("name")
			feeBps, _ := cmd.Flags().GetUint16("fee-bps")
			decimals, _ := cmd.Flags().GetUint8("decimals")
			tiersPath, _ := cmd.Flags().GetString("tiers")

			admin, err := a.signer(adminName)
			if err != nil {
				return err
			}
			creditMint, err := a.signer(creditName)
			if err != nil {
				return err
			}
			tiers, err := config.LoadTiers(tiersPath)
			if err != nil {
				return err
			}
			return a.runInstruction(cmd, &market.InitializeIx{
				Admin:          admin,
				CreditMint:     creditMint,
				CreditDecimals: decimals,
				Name:           name,
				FeeBps:         feeBps,
				MintTiers:      tiers,
				Signers:        market.Signers{admin, creditMint},
			})
		},
	}
	initCmd.Flags().String("admin", "", "Key name of the marketplace admin")
	initCmd.Flags().String("credit-mint", "", "Key name of the credit mint to create")
	initCmd.Flags().String("name", "", "Marketplace name")
	initCmd.Flags().Uint16("fee-bps", 0, "Buyout fee in basis points")
	initCmd.Flags().Uint8("decimals", 0, "Decimals of the credit mint")
	initCmd.Flags().String("tiers", "", "YAML file with the three credit tiers")
	for _, flag := range []string{"admin", "credit-mint", "name", "tiers"} {
		_ = initCmd.MarkFlagRequired(flag)
	}

	tiersCmd := &cobra.Command{
		Use:   "tiers MARKETPLACE",
		Short: "Replace the credit tier table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			adminName, _ := cmd.Flags().GetString("admin")
			tiersPath, _ := cmd.Flags().GetString("tiers")

			marketplace, err := a.account(args[0])
			if err != nil {
				return err
			}
			admin, err := a.signer(adminName)
			if err != nil {
				return err
			}
			tiers, err := config.LoadTiers(tiersPath)
			if err != nil {
				return err
			}
			return a.runInstruction(cmd, &market.UpdateMintTiersIx{
				Marketplace: marketplace,
				Admin:       admin,
				MintTiers:   tiers,
				Signers:     market.Signers{admin},
			})
		},
	}
	tiersCmd.Flags().String("admin", "", "Key name of the marketplace admin")
	tiersCmd.Flags().String("tiers", "", "YAML file with the three credit tiers")
	_ = tiersCmd.MarkFlagRequired("admin")
	_ = tiersCmd.MarkFlagRequired("tiers")

	showCmd := &cobra.Command{
		Use:   "show MARKETPLACE",
		Short: "Print a marketplace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := a.account(args[0])
			if err != nil {
				return err
			}
			m, err := a.processor.Marketplace(addr)
			if err != nil {
				return err
			}
			return a.printJSON(newMarketplaceView(addr, m))
		},
	}

	marketplaceCmd.AddCommand(initCmd, tiersCmd, showCmd)
	return marketplaceCmd
}

func newUserCmd(a *app) *cobra.Command {
	userCmd := &cobra.Command{
		Use:   "user",
		Short: "Manage loyalty records",
	}

	initCmd := &cobra.Command{
		Use:   "init MARKETPLACE",
		Short: "Open the loyalty record of a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userName, _ := cmd.Flags().GetString("user")
			marketplace, err := a.account(args[0])
			if err != nil {
				return err
			}
			user, err := a.signer(userName)
			if err != nil {
				return err
			}
			return a.runInstruction(cmd, &market.InitializeUserIx{
				Marketplace: marketplace,
				User:        user,
				Signers:     market.Signers{user},
			})
		},
	}
	initCmd.Flags().String("user", "", "Key name of the user")
	_ = initCmd.MarkFlagRequired("user")

	showCmd := &cobra.Command{
		Use:   "show MARKETPLACE OWNER",
		Short: "Print the loyalty record of a user",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			marketplace, err := a.account(args[0])
			if err != nil {
				return err
			}
			owner, err := a.account(args[1])
			if err != nil {
				return err
			}
			addr, _, err := market.UserAddress(a.programID, marketplace, owner)
			if err != nil {
				return err
			}
			u, err := a.processor.UserAccount(addr)
			if err != nil {
				return err
			}
			return a.printJSON(userView{
				Address:                   addr,
				Owner:                     u.Owner,
				TotalBidsPlaced:           u.TotalBidsPlaced,
				TotalAuctionsParticipated: u.TotalAuctionsParticipated,
				TotalAuctionsWon:          u.TotalAuctionsWon,
				TotalAuctionsCreated:      u.TotalAuctionsCreated,
				Points:                    u.Points,
			})
		},
	}

	userCmd.AddCommand(initCmd, showCmd)
	return userCmd
}

func newCreditsCmd(a *app) *cobra.Command {
	creditsCmd := &cobra.Command{
		Use:   "credits",
		Short: "Buy bid credits",
	}

	buyCmd := &cobra.Command{
		Use:   "buy MARKETPLACE",
		Short: "Buy one of the three credit packages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userName, _ := cmd.Flags().GetString("user")
			tier, _ := cmd.Flags().GetUint8("tier")
			if tier < 1 || tier > 3 {
				return fmt.Errorf("--tier must be 1, 2 or 3")
			}
			marketplace, err := a.account(args[0])
			if err != nil {
				return err
			}
			user, err := a.signer(userName)
			if err != nil {
				return err
			}
			return a.runInstruction(cmd, &market.MintBidTokenIx{
				Marketplace: marketplace,
				User:        user,
				Tier:        market.MintCostTier(tier - 1),
				Signers:     market.Signers{user},
			})
		},
	}
	buyCmd.Flags().String("user", "", "Key name of the buyer")
	buyCmd.Flags().Uint8("tier", 1, "Credit package: 1, 2 or 3")
	_ = buyCmd.MarkFlagRequired("user")

	creditsCmd.AddCommand(buyCmd)
	return creditsCmd
}
