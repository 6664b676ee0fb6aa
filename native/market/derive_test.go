package market_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/gagliardetto/solana-go"

	"nftmarket/native/market"
)

func TestMarketplaceAddressIsDeterministic(t *testing.T) {
	program := solana.NewWallet().PublicKey()
	admin := solana.NewWallet().PublicKey()
	mint := solana.NewWallet().PublicKey()

	a, bumpA, err := market.MarketplaceAddress(program, admin, mint, "alpha")
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	b, bumpB, err := market.MarketplaceAddress(program, admin, mint, "alpha")
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	if a != b || bumpA != bumpB {
		t.Fatalf("derivation not deterministic")
	}
	c, _, err := market.MarketplaceAddress(program, admin, mint, "beta")
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	if a == c {
		t.Fatalf("names share an address")
	}

	if _, _, err := market.MarketplaceAddress(program, admin, mint, strings.Repeat("x", market.MaxNameLength)); err != nil {
		t.Fatalf("max length name rejected: %v", err)
	}
	if _, _, err := market.MarketplaceAddress(program, admin, mint, strings.Repeat("x", market.MaxNameLength+1)); !errors.Is(err, market.ErrMarketplaceNameTooLong) {
		t.Fatalf("expected ErrMarketplaceNameTooLong, got %v", err)
	}
}

func TestListingAddressUsesSeed(t *testing.T) {
	program := solana.NewWallet().PublicKey()
	marketplace := solana.NewWallet().PublicKey()
	mint := solana.NewWallet().PublicKey()

	first, _, err := market.ListingAddress(program, marketplace, mint, 1)
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	second, _, err := market.ListingAddress(program, marketplace, mint, 2)
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	if first == second {
		t.Fatalf("seeds share an address")
	}
	vault, err := market.VaultAddress(first, mint)
	if err != nil {
		t.Fatalf("vault: %v", err)
	}
	ata, _, err := solana.FindAssociatedTokenAddress(first, mint)
	if err != nil || vault != ata {
		t.Fatalf("vault %s is not the listing's associated account %s (%v)", vault, ata, err)
	}
}

func TestDerivedAddressesAreDistinct(t *testing.T) {
	program := solana.NewWallet().PublicKey()
	marketplace := solana.NewWallet().PublicKey()
	user, _, err := market.UserAddress(program, marketplace, solana.NewWallet().PublicKey())
	if err != nil {
		t.Fatalf("user: %v", err)
	}
	treasury, _, err := market.TreasuryAddress(program, marketplace)
	if err != nil {
		t.Fatalf("treasury: %v", err)
	}
	rewards, _, err := market.RewardsMintAddress(program, marketplace)
	if err != nil {
		t.Fatalf("rewards: %v", err)
	}
	if user == treasury || treasury == rewards || user == rewards {
		t.Fatalf("derived addresses collide")
	}
	other, _, err := market.TreasuryAddress(solana.NewWallet().PublicKey(), marketplace)
	if err != nil {
		t.Fatalf("treasury: %v", err)
	}
	if other == treasury {
		t.Fatalf("treasury ignores the program id")
	}
}
