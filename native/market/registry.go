package market

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"nftmarket/core/events"
	"nftmarket/native/token"
)

// ValidateTiers checks that the table lists Tier1, Tier2 and Tier3 in order.
func ValidateTiers(tiers [3]MintTier) error {
	for i, tier := range tiers {
		if tier.Tier != MintCostTier(i) {
			return fmt.Errorf("%w: position %d holds %s", ErrInvalidMintTier, i, tier.Tier)
		}
	}
	return nil
}

// Initialize creates a marketplace and returns its address.
func (e *Engine) Initialize(ix *InitializeIx) (solana.PublicKey, error) {
	var created solana.PublicKey
	err := e.atomically(func(uint64) error {
		if len(ix.Name) == 0 || len(ix.Name) > MaxNameLength {
			return ErrMarketplaceNameTooLong
		}
		if ix.FeeBps > MaxFeeBps {
			return fmt.Errorf("%w: %d", ErrInvalidFee, ix.FeeBps)
		}
		if err := ValidateTiers(ix.MintTiers); err != nil {
			return err
		}
		admin, err := ix.Signers.wallet(ix.Admin, "admin")
		if err != nil {
			return err
		}
		if _, err := ix.Signers.wallet(ix.CreditMint, "credit mint"); err != nil {
			return err
		}
		addr, bump, err := MarketplaceAddress(e.programID, ix.Admin, ix.CreditMint, ix.Name)
		if err != nil {
			return err
		}
		exists, err := e.records().exists(marketplacePrefix, addr)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("%w: %s", ErrMarketplaceExists, addr)
		}
		treasury, treasuryBump, err := TreasuryAddress(e.programID, addr)
		if err != nil {
			return err
		}
		rewards, rewardsBump, err := RewardsMintAddress(e.programID, addr)
		if err != nil {
			return err
		}

		if err := e.tokens.Allocate(admin, addr, MarketplaceSpace); err != nil {
			return fmt.Errorf("market: fund marketplace: %w", err)
		}
		creditMint := token.Mint{Address: ix.CreditMint, Authority: addr, Decimals: ix.CreditDecimals}
		if err := e.tokens.CreateMint(admin, creditMint); err != nil {
			return fmt.Errorf("market: create credit mint: %w", err)
		}
		rewardsMint := token.Mint{Address: rewards, Authority: addr, Decimals: RewardsDecimals}
		if err := e.tokens.CreateMint(admin, rewardsMint); err != nil {
			return fmt.Errorf("market: create rewards mint: %w", err)
		}
		vault, err := e.tokens.CreateAssociatedAccount(admin, addr, ix.CreditMint)
		if err != nil {
			return fmt.Errorf("market: create credit vault: %w", err)
		}

		m := &Marketplace{
			Admin:        ix.Admin,
			CreditMint:   ix.CreditMint,
			CreditVault:  vault,
			Treasury:     treasury,
			RewardsMint:  rewards,
			FeeBps:       ix.FeeBps,
			Name:         ix.Name,
			MintTiers:    ix.MintTiers,
			Bump:         bump,
			RewardsBump:  rewardsBump,
			TreasuryBump: treasuryBump,
		}
		if err := e.records().putMarketplace(addr, m); err != nil {
			return err
		}
		e.emit(events.MarketplaceInitialized{
			Marketplace: addr,
			Admin:       m.Admin,
			CreditMint:  m.CreditMint,
			CreditVault: m.CreditVault,
			Treasury:    m.Treasury,
			RewardsMint: m.RewardsMint,
			FeeBps:      m.FeeBps,
			Name:        m.Name,
			Tiers:       eventTiers(m.MintTiers),
		})
		created = addr
		return nil
	})
	return created, err
}

// InitializeUser opens the loyalty record of the signing user and returns its
// address.
func (e *Engine) InitializeUser(ix *InitializeUserIx) (solana.PublicKey, error) {
	var created solana.PublicKey
	err := e.atomically(func(uint64) error {
		owner, err := ix.Signers.wallet(ix.User, "user")
		if err != nil {
			return err
		}
		if _, err := e.records().marketplace(ix.Marketplace); err != nil {
			return err
		}
		addr, _, err := UserAddress(e.programID, ix.Marketplace, ix.User)
		if err != nil {
			return err
		}
		exists, err := e.records().exists(userPrefix, addr)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("%w: %s", ErrUserExists, addr)
		}
		user, _, err := e.touchUser(ix.Marketplace, owner)
		if err != nil {
			return err
		}
		if err := e.records().putUser(addr, user); err != nil {
			return err
		}
		created = addr
		return nil
	})
	return created, err
}

// UpdateMintTiers replaces the marketplace's credit tier table.
func (e *Engine) UpdateMintTiers(ix *UpdateMintTiersIx) error {
	return e.atomically(func(uint64) error {
		m, err := e.records().marketplace(ix.Marketplace)
		if err != nil {
			return err
		}
		if err := ix.Signers.requireAdmin(m, ix.Admin, ErrUnauthorizedAdmin); err != nil {
			return err
		}
		if err := ValidateTiers(ix.MintTiers); err != nil {
			return err
		}
		m.MintTiers = ix.MintTiers
		if err := e.records().putMarketplace(ix.Marketplace, m); err != nil {
			return err
		}
		e.emit(events.MintTiersUpdated{
			Marketplace: ix.Marketplace,
			Admin:       ix.Admin,
			Tiers:       eventTiers(m.MintTiers),
		})
		return nil
	})
}

// MintBidToken sells a credit package to the signing user: the tier's cost in
// lamports goes to the treasury and Amount+Bonus credits are minted to the
// user. It returns the number of credits minted.
func (e *Engine) MintBidToken(ix *MintBidTokenIx) (uint64, error) {
	var minted uint64
	err := e.atomically(func(uint64) error {
		user, err := ix.Signers.wallet(ix.User, "user")
		if err != nil {
			return err
		}
		m, err := e.records().marketplace(ix.Marketplace)
		if err != nil {
			return err
		}
		if !ix.Tier.Valid() {
			return fmt.Errorf("%w: %s", ErrInvalidMintTier, ix.Tier)
		}
		tier := m.MintTiers[ix.Tier]
		if tier.Cost == 0 {
			return fmt.Errorf("%w: %s", ErrInvalidMintCost, ix.Tier)
		}
		total, err := addU64(tier.Amount, tier.Bonus)
		if err != nil {
			return err
		}
		if err := e.tokens.TransferLamports(ix.User, m.Treasury, tier.Cost, user); err != nil {
			return fmt.Errorf("market: pay for credits: %w", err)
		}
		account, err := e.tokens.EnsureAssociatedAccount(user, ix.User, m.CreditMint)
		if err != nil {
			return fmt.Errorf("market: open credit account: %w", err)
		}
		authority, err := marketplaceAuthority(e.programID, m)
		if err != nil {
			return err
		}
		if err := e.tokens.MintTo(m.CreditMint, account, total, authority); err != nil {
			return fmt.Errorf("market: mint credits: %w", err)
		}
		record, err := e.reward(ix.Marketplace, user, ActivityMint, false)
		if err != nil {
			return err
		}
		e.emit(events.BidTokensMinted{
			Marketplace: ix.Marketplace,
			Owner:       ix.User,
			Tier:        uint8(ix.Tier),
			Minted:      total,
			Cost:        tier.Cost,
			Points:      record.Points,
		})
		minted = total
		return nil
	})
	return minted, err
}
