package market

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"nftmarket/native/token"
)

// Signers is the set of keys whose signatures the host verified for an
// instruction.
type Signers []solana.PublicKey

// Has reports whether key signed.
func (s Signers) Has(key solana.PublicKey) bool {
	for _, signer := range s {
		if signer == key {
			return true
		}
	}
	return false
}

// wallet returns a token signer for key when it signed the instruction.
// Program-derived addresses cannot sign, so off-curve keys are refused.
func (s Signers) wallet(key solana.PublicKey, role string) (token.Wallet, error) {
	if isZero(key) || !s.Has(key) || !key.IsOnCurve() {
		return token.Wallet{}, fmt.Errorf("%w: %s %s", ErrMissingSignature, role, key)
	}
	return token.Wallet(key), nil
}

// requireAdmin checks that the marketplace admin co-signed. fail is returned
// when the named admin is not the marketplace admin or did not sign.
func (s Signers) requireAdmin(m *Marketplace, admin solana.PublicKey, fail error) error {
	if admin != m.Admin || !s.Has(admin) {
		return fail
	}
	return nil
}
