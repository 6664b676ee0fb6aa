package market

import (
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

const (
	seedMarketplace = "marketplace"
	seedListing     = "listing"
	seedUser        = "user"
	seedTreasury    = "treasury"
	seedRewards     = "rewards"
)

func u64LE(v uint64) []byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	return b[:]
}

func marketplaceSeeds(admin, creditMint solana.PublicKey, name string) [][]byte {
	return [][]byte{[]byte(seedMarketplace), admin[:], creditMint[:], []byte(name)}
}

func listingSeeds(marketplace, mint solana.PublicKey, seed uint64) [][]byte {
	return [][]byte{[]byte(seedListing), marketplace[:], mint[:], u64LE(seed)}
}

func userSeeds(marketplace, owner solana.PublicKey) [][]byte {
	return [][]byte{[]byte(seedUser), marketplace[:], owner[:]}
}

func treasurySeeds(marketplace solana.PublicKey) [][]byte {
	return [][]byte{[]byte(seedTreasury), marketplace[:]}
}

func rewardsSeeds(marketplace solana.PublicKey) [][]byte {
	return [][]byte{[]byte(seedRewards), marketplace[:]}
}

func find(programID solana.PublicKey, seeds [][]byte, what string) (solana.PublicKey, uint8, error) {
	addr, bump, err := solana.FindProgramAddress(seeds, programID)
	if err != nil {
		return solana.PublicKey{}, 0, fmt.Errorf("market: derive %s address: %w", what, err)
	}
	return addr, bump, nil
}

// MarketplaceAddress derives the marketplace record address.
func MarketplaceAddress(programID, admin, creditMint solana.PublicKey, name string) (solana.PublicKey, uint8, error) {
	if len(name) == 0 || len(name) > MaxNameLength {
		return solana.PublicKey{}, 0, ErrMarketplaceNameTooLong
	}
	return find(programID, marketplaceSeeds(admin, creditMint, name), "marketplace")
}

// ListingAddress derives the listing record address. The escrow vault is the
// associated token account of this address for the listed mint.
func ListingAddress(programID, marketplace, mint solana.PublicKey, seed uint64) (solana.PublicKey, uint8, error) {
	return find(programID, listingSeeds(marketplace, mint, seed), "listing")
}

// UserAddress derives the loyalty record address of owner.
func UserAddress(programID, marketplace, owner solana.PublicKey) (solana.PublicKey, uint8, error) {
	return find(programID, userSeeds(marketplace, owner), "user")
}

// TreasuryAddress derives the lamport treasury of a marketplace.
func TreasuryAddress(programID, marketplace solana.PublicKey) (solana.PublicKey, uint8, error) {
	return find(programID, treasurySeeds(marketplace), "treasury")
}

// RewardsMintAddress derives the rewards mint of a marketplace.
func RewardsMintAddress(programID, marketplace solana.PublicKey) (solana.PublicKey, uint8, error) {
	return find(programID, rewardsSeeds(marketplace), "rewards mint")
}

// VaultAddress returns the escrow token account of a listing.
func VaultAddress(listing, mint solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindAssociatedTokenAddress(listing, mint)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("market: derive vault address: %w", err)
	}
	return addr, nil
}

// Authority signs for a program-derived address. The zero value signs for
// nothing; a usable Authority only comes out of this package's derivation.
type Authority struct {
	programID solana.PublicKey
	address   solana.PublicKey
	seeds     [][]byte
}

func newAuthority(programID solana.PublicKey, seeds [][]byte, bump uint8, what string) (*Authority, error) {
	signed := make([][]byte, 0, len(seeds)+1)
	signed = append(signed, seeds...)
	signed = append(signed, []byte{bump})
	addr, err := solana.CreateProgramAddress(signed, programID)
	if err != nil {
		return nil, fmt.Errorf("market: %s authority: %w", what, err)
	}
	return &Authority{programID: programID, address: addr, seeds: signed}, nil
}

// SignerKey returns the address the authority signs for.
func (a *Authority) SignerKey() solana.PublicKey {
	return a.address
}

// SignerSeeds returns the derivation the token program re-checks.
func (a *Authority) SignerSeeds() (solana.PublicKey, [][]byte) {
	seeds := make([][]byte, len(a.seeds))
	for i, s := range a.seeds {
		seeds[i] = append([]byte(nil), s...)
	}
	return a.programID, seeds
}

func marketplaceAuthority(programID solana.PublicKey, m *Marketplace) (*Authority, error) {
	return newAuthority(programID, marketplaceSeeds(m.Admin, m.CreditMint, m.Name), m.Bump, "marketplace")
}

func listingAuthority(programID solana.PublicKey, l *Listing) (*Authority, error) {
	return newAuthority(programID, listingSeeds(l.Marketplace, l.Mint, l.Seed), l.Bump, "listing")
}
