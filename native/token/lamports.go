package token

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	nativecommon "nftmarket/native/common"
)

// Lamports returns the native balance held at addr.
func (l *Ledger) Lamports(addr solana.PublicKey) (uint64, error) {
	var balance uint64
	if _, err := l.state.KVGet(lamportsKey(addr), &balance); err != nil {
		return 0, err
	}
	return balance, nil
}

func (l *Ledger) setLamports(addr solana.PublicKey, balance uint64) error {
	if balance == 0 {
		return l.state.KVDelete(lamportsKey(addr))
	}
	return l.state.KVPut(lamportsKey(addr), balance)
}

// Airdrop credits lamports out of thin air. It exists for genesis funding and
// local networks.
func (l *Ledger) Airdrop(addr solana.PublicKey, amount uint64) error {
	balance, err := l.Lamports(addr)
	if err != nil {
		return err
	}
	next, err := nativecommon.AddUint64(balance, amount)
	if err != nil {
		return fmt.Errorf("%w: lamports", ErrArithmeticOverflow)
	}
	return l.setLamports(addr, next)
}

// TransferLamports moves lamports out of a signer's account.
func (l *Ledger) TransferLamports(from, to solana.PublicKey, amount uint64, signer Signer) error {
	if err := authorize(from, signer); err != nil {
		return err
	}
	return l.moveLamports(from, to, amount)
}

// Allocate charges payer the rent deposit for an account of the given size and
// credits it to the account.
func (l *Ledger) Allocate(payer Signer, account solana.PublicKey, space uint64) error {
	if payer == nil {
		return ErrMissingSigner
	}
	if err := authorize(payer.SignerKey(), payer); err != nil {
		return err
	}
	return l.moveLamports(payer.SignerKey(), account, l.RentExempt(space))
}

// Reclaim returns every lamport held by a program-owned account to
// destination. The signer must act for the account itself.
func (l *Ledger) Reclaim(account, destination solana.PublicKey, signer Signer) error {
	if err := authorize(account, signer); err != nil {
		return err
	}
	return l.drain(account, destination)
}

func (l *Ledger) drain(account, destination solana.PublicKey) error {
	balance, err := l.Lamports(account)
	if err != nil {
		return err
	}
	return l.moveLamports(account, destination, balance)
}

func (l *Ledger) moveLamports(from, to solana.PublicKey, amount uint64) error {
	if amount == 0 || from == to {
		return nil
	}
	src, err := l.Lamports(from)
	if err != nil {
		return err
	}
	if src < amount {
		return fmt.Errorf("%w: %s has %d, need %d", ErrInsufficientLamports, from, src, amount)
	}
	dst, err := l.Lamports(to)
	if err != nil {
		return err
	}
	next, err := nativecommon.AddUint64(dst, amount)
	if err != nil {
		return fmt.Errorf("%w: lamports", ErrArithmeticOverflow)
	}
	if err := l.setLamports(from, src-amount); err != nil {
		return err
	}
	return l.setLamports(to, next)
}
