package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"

	"nftmarket/native/market"
	"nftmarket/native/token"
)

type balanceView struct {
	Account  solana.PublicKey  `json:"account"`
	Mint     *solana.PublicKey `json:"mint,omitempty"`
	Holder   *solana.PublicKey `json:"holder,omitempty"`
	Amount   uint64            `json:"amount"`
	Display  string            `json:"display"`
	Decimals uint8             `json:"decimals"`
}

func newAirdropCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "airdrop ACCOUNT SOL",
		Short: "Credit lamports to an account on the local ledger",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := a.account(args[0])
			if err != nil {
				return err
			}
			amount, err := parseSOL(args[1])
			if err != nil {
				return err
			}
			if err := a.ledger.Airdrop(addr, amount); err != nil {
				return fmt.Errorf("airdrop: %w", err)
			}
			a.logger.Info("airdrop", "account", addr.String(), "lamports", amount)
			balance, err := a.ledger.Lamports(addr)
			if err != nil {
				return err
			}
			return a.printJSON(balanceView{Account: addr, Amount: balance, Display: formatSOL(balance), Decimals: lamportsPerSOLExp})
		},
	}
}

func newBalanceCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "balance ACCOUNT",
		Short: "Print the lamport balance, or the token balance with --mint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, err := a.account(args[0])
			if err != nil {
				return err
			}
			mintRef, _ := cmd.Flags().GetString("mint")
			if mintRef == "" {
				balance, err := a.ledger.Lamports(owner)
				if err != nil {
					return err
				}
				return a.printJSON(balanceView{Account: owner, Amount: balance, Display: formatSOL(balance), Decimals: lamportsPerSOLExp})
			}

			mintAddr, err := a.account(mintRef)
			if err != nil {
				return err
			}
			mint, err := a.ledger.Mint(mintAddr)
			if err != nil {
				return err
			}
			ata, _, err := solana.FindAssociatedTokenAddress(owner, mintAddr)
			if err != nil {
				return err
			}
			balance, err := a.ledger.Balance(ata)
			if err != nil && !errors.Is(err, token.ErrAccountNotFound) {
				return err
			}
			return a.printJSON(balanceView{
				Account:  ata,
				Mint:     &mintAddr,
				Holder:   &owner,
				Amount:   balance,
				Display:  formatUnits(balance, mint.Decimals),
				Decimals: mint.Decimals,
			})
		},
	}
	cmd.Flags().String("mint", "", "Token mint (key name or address)")
	return cmd
}

type clockView struct {
	Slot uint64 `json:"slot"`
}

func newClockCmd(a *app) *cobra.Command {
	clockCmd := &cobra.Command{
		Use:   "clock",
		Short: "Inspect or move the ledger slot",
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the current slot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.printJSON(clockView{Slot: a.clock.Slot()})
		},
	}

	advanceCmd := &cobra.Command{
		Use:   "advance SLOTS",
		Short: "Move the slot forward",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid slot count %q: %w", args[0], err)
			}
			before := a.clock.Slot()
			if n > ^uint64(0)-before {
				return fmt.Errorf("advance by %d overflows slot %d", n, before)
			}
			return a.printJSON(clockView{Slot: a.clock.Advance(n)})
		},
	}

	setCmd := &cobra.Command{
		Use:   "set SLOT",
		Short: "Move the slot to an absolute value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			slot, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid slot %q: %w", args[0], err)
			}
			if slot < a.clock.Slot() {
				return fmt.Errorf("slot %d is behind the current slot %d", slot, a.clock.Slot())
			}
			a.clock.Set(slot)
			return a.printJSON(clockView{Slot: slot})
		},
	}

	clockCmd.AddCommand(showCmd, advanceCmd, setCmd)
	return clockCmd
}

type pauseView struct {
	Module string `json:"module"`
	Paused bool   `json:"paused"`
}

func newPauseCmd(a *app, pause bool) *cobra.Command {
	use, short := "pause", "Stop the marketplace from accepting instructions"
	if !pause {
		use, short = "unpause", "Resume the marketplace"
	}
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pauses, err := a.state.Pauses()
			if err != nil {
				return err
			}
			pauses[market.ModuleName] = pause
			if err := a.state.SetPauses(pauses); err != nil {
				return err
			}
			a.logger.Info("module pause updated", "module", market.ModuleName, "paused", pause)
			return a.printJSON(pauseView{Module: market.ModuleName, Paused: pause})
		},
	}
}

type assetView struct {
	Mint         solana.PublicKey `json:"mint"`
	Owner        solana.PublicKey `json:"owner"`
	Account      solana.PublicKey `json:"account"`
	Programmable bool             `json:"programmable"`
	RuleSet      solana.PublicKey `json:"rule_set"`
}

func newAssetCmd(a *app) *cobra.Command {
	assetCmd := &cobra.Command{
		Use:   "asset",
		Short: "Create assets to trade on the local ledger",
	}

	mintCmd := &cobra.Command{
		Use:   "mint",
		Short: "Mint a one-of-one asset into the owner's associated account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ownerName, _ := cmd.Flags().GetString("owner")
			programmable, _ := cmd.Flags().GetBool("programmable")
			ruleSetRef, _ := cmd.Flags().GetString("rule-set")

			owner, err := a.signer(ownerName)
			if err != nil {
				return err
			}
			var ruleSet solana.PublicKey
			if ruleSetRef != "" {
				if !programmable {
					return fmt.Errorf("--rule-set requires --programmable")
				}
				if ruleSet, err = a.account(ruleSetRef); err != nil {
					return err
				}
			}

			creator := token.Wallet(owner)
			mint := solana.NewWallet().PublicKey()
			err = a.ledger.CreateMint(creator, token.Mint{
				Address:      mint,
				Authority:    owner,
				Programmable: programmable,
				RuleSet:      ruleSet,
			})
			if err != nil {
				return fmt.Errorf("create mint: %w", err)
			}
			account, err := a.ledger.CreateAssociatedAccount(creator, owner, mint)
			if err != nil {
				return fmt.Errorf("create account: %w", err)
			}
			if err := a.ledger.MintTo(mint, account, 1, creator); err != nil {
				return fmt.Errorf("mint: %w", err)
			}
			a.logger.Info("asset minted", "mint", mint.String(), "owner", owner.String(), "programmable", programmable)
			return a.printJSON(assetView{Mint: mint, Owner: owner, Account: account, Programmable: programmable, RuleSet: ruleSet})
		},
	}
	mintCmd.Flags().String("owner", "", "Key name of the owner paying for the mint")
	mintCmd.Flags().Bool("programmable", false, "Require rules-enforced transfers")
	mintCmd.Flags().String("rule-set", "", "Rule set every transfer must present")
	_ = mintCmd.MarkFlagRequired("owner")

	assetCmd.AddCommand(mintCmd)
	return assetCmd
}
