package token

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// Signer proves the right to act for an address.
type Signer interface {
	SignerKey() solana.PublicKey
}

// SeedSigner is a Signer for a program-derived address. The ledger re-derives
// the address from the seeds before accepting it.
type SeedSigner interface {
	Signer
	SignerSeeds() (programID solana.PublicKey, seeds [][]byte)
}

// Wallet is a Signer for a key whose signature the host has already verified.
type Wallet solana.PublicKey

// SignerKey implements Signer.
func (w Wallet) SignerKey() solana.PublicKey { return solana.PublicKey(w) }

func authorize(owner solana.PublicKey, signer Signer) error {
	if signer == nil {
		return ErrMissingSigner
	}
	if signer.SignerKey() != owner {
		return fmt.Errorf("%w: want %s, got %s", ErrOwnerMismatch, owner, signer.SignerKey())
	}
	seeded, ok := signer.(SeedSigner)
	if !ok {
		// Only a seed signer can act for a program-derived address.
		if !solana.IsOnCurve(owner[:]) {
			return fmt.Errorf("%w: %s has no private key", ErrInvalidProgramSigner, owner)
		}
		return nil
	}
	programID, seeds := seeded.SignerSeeds()
	if len(seeds) == 0 {
		return ErrInvalidProgramSigner
	}
	derived, err := solana.CreateProgramAddress(seeds, programID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidProgramSigner, err)
	}
	if derived != owner {
		return ErrInvalidProgramSigner
	}
	return nil
}
