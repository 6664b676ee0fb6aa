package token

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	nativecommon "nftmarket/native/common"
)

type ledgerState interface {
	KVGet(key []byte, out interface{}) (bool, error)
	KVPut(key []byte, value interface{}) error
	KVDelete(key []byte) error
}

var (
	mintPrefix     = []byte("token/mint/")
	accountPrefix  = []byte("token/account/")
	lamportsPrefix = []byte("system/lamports/")
)

func mintKey(addr solana.PublicKey) []byte {
	return append(append([]byte(nil), mintPrefix...), addr[:]...)
}

func accountKey(addr solana.PublicKey) []byte {
	return append(append([]byte(nil), accountPrefix...), addr[:]...)
}

func lamportsKey(addr solana.PublicKey) []byte {
	return append(append([]byte(nil), lamportsPrefix...), addr[:]...)
}

// Ledger is the native token and lamport ledger. It keeps mints, token
// accounts and lamport balances in the shared state so that a state snapshot
// covers every balance an instruction touches.
type Ledger struct {
	state           ledgerState
	rentPerByteYear uint64
}

// NewLedger builds a ledger over the supplied state backend.
func NewLedger(state ledgerState) *Ledger {
	return &Ledger{state: state, rentPerByteYear: DefaultLamportsPerByteYear}
}

// SetRentRate overrides the lamports charged per byte-year. Zero restores
// the default.
func (l *Ledger) SetRentRate(lamportsPerByteYear uint64) {
	if lamportsPerByteYear == 0 {
		lamportsPerByteYear = DefaultLamportsPerByteYear
	}
	l.rentPerByteYear = lamportsPerByteYear
}

// RentExempt returns the deposit that keeps an account of the given size alive.
func (l *Ledger) RentExempt(space uint64) uint64 {
	return (accountStorageOverhead + space) * l.rentPerByteYear * exemptionThreshold
}

// CreateMint registers a new mint funded by payer.
func (l *Ledger) CreateMint(payer Signer, mint Mint) error {
	exists, err := l.state.KVGet(mintKey(mint.Address), nil)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: %s", ErrMintExists, mint.Address)
	}
	if err := l.Allocate(payer, mint.Address, MintSpace); err != nil {
		return err
	}
	mint.Supply = 0
	return l.state.KVPut(mintKey(mint.Address), &mint)
}

// Mint loads the mint stored at addr.
func (l *Ledger) Mint(addr solana.PublicKey) (*Mint, error) {
	var mint Mint
	ok, err := l.state.KVGet(mintKey(addr), &mint)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMintNotFound, addr)
	}
	return &mint, nil
}

// TokenAccount loads the token account stored at addr.
func (l *Ledger) TokenAccount(addr solana.PublicKey) (*Account, error) {
	var account Account
	ok, err := l.state.KVGet(accountKey(addr), &account)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, addr)
	}
	return &account, nil
}

// Balance returns the token amount held by the account at addr.
func (l *Ledger) Balance(addr solana.PublicKey) (uint64, error) {
	account, err := l.TokenAccount(addr)
	if err != nil {
		return 0, err
	}
	return account.Amount, nil
}

// CreateAssociatedAccount opens the associated token account of owner for
// mint, funded by payer.
func (l *Ledger) CreateAssociatedAccount(payer Signer, owner, mint solana.PublicKey) (solana.PublicKey, error) {
	if _, err := l.Mint(mint); err != nil {
		return solana.PublicKey{}, err
	}
	addr, _, err := solana.FindAssociatedTokenAddress(owner, mint)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("token: derive associated account: %w", err)
	}
	exists, err := l.state.KVGet(accountKey(addr), nil)
	if err != nil {
		return solana.PublicKey{}, err
	}
	if exists {
		return solana.PublicKey{}, fmt.Errorf("%w: %s", ErrAccountExists, addr)
	}
	if err := l.Allocate(payer, addr, TokenAccountSpace); err != nil {
		return solana.PublicKey{}, err
	}
	account := Account{Address: addr, Mint: mint, Owner: owner}
	if err := l.state.KVPut(accountKey(addr), &account); err != nil {
		return solana.PublicKey{}, err
	}
	return addr, nil
}

// EnsureAssociatedAccount returns the associated token account of owner for
// mint, creating it when it does not exist yet.
func (l *Ledger) EnsureAssociatedAccount(payer Signer, owner, mint solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindAssociatedTokenAddress(owner, mint)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("token: derive associated account: %w", err)
	}
	var account Account
	ok, err := l.state.KVGet(accountKey(addr), &account)
	if err != nil {
		return solana.PublicKey{}, err
	}
	if ok {
		if account.Owner != owner || account.Mint != mint {
			return solana.PublicKey{}, fmt.Errorf("%w: %s", ErrOwnerMismatch, addr)
		}
		return addr, nil
	}
	return l.CreateAssociatedAccount(payer, owner, mint)
}

// MintTo issues amount new tokens into the account at to. The signer must be
// the mint authority.
func (l *Ledger) MintTo(mintAddr, to solana.PublicKey, amount uint64, authority Signer) error {
	mint, err := l.Mint(mintAddr)
	if err != nil {
		return err
	}
	if err := authorize(mint.Authority, authority); err != nil {
		return fmt.Errorf("%w: %v", ErrMintAuthorityMismatch, err)
	}
	account, err := l.TokenAccount(to)
	if err != nil {
		return err
	}
	if account.Mint != mintAddr {
		return fmt.Errorf("%w: %s", ErrMintMismatch, to)
	}
	supply, err := nativecommon.AddUint64(mint.Supply, amount)
	if err != nil {
		return fmt.Errorf("%w: supply", ErrArithmeticOverflow)
	}
	balance, err := nativecommon.AddUint64(account.Amount, amount)
	if err != nil {
		return fmt.Errorf("%w: balance", ErrArithmeticOverflow)
	}
	mint.Supply = supply
	account.Amount = balance
	if err := l.state.KVPut(mintKey(mintAddr), mint); err != nil {
		return err
	}
	return l.state.KVPut(accountKey(to), account)
}

// TransferChecked moves tokens of a non-programmable mint.
func (l *Ledger) TransferChecked(t CheckedTransfer) error {
	mint, err := l.Mint(t.Mint)
	if err != nil {
		return err
	}
	if mint.Decimals != t.Decimals {
		return fmt.Errorf("%w: mint has %d, got %d", ErrDecimalsMismatch, mint.Decimals, t.Decimals)
	}
	if mint.NonTransferable {
		return ErrNonTransferable
	}
	if mint.Programmable {
		return ErrProgrammableAsset
	}
	return l.move(t.From, t.To, t.Mint, t.Authority, t.Amount)
}

// TransferProgrammable moves an asset through the rules-enforced path. When
// the mint carries a rule set the rules program and rule set accounts must
// match it.
func (l *Ledger) TransferProgrammable(t ProgrammableTransfer) error {
	mint, err := l.Mint(t.Mint)
	if err != nil {
		return err
	}
	if mint.NonTransferable {
		return ErrNonTransferable
	}
	if mint.RuleSet != (solana.PublicKey{}) {
		if t.AuthRulesProgram != AuthRulesProgramID {
			return fmt.Errorf("%w: %s", ErrInvalidRulesProgram, t.AuthRulesProgram)
		}
		if t.AuthRules != mint.RuleSet {
			return fmt.Errorf("%w: %s", ErrRuleSetMismatch, t.AuthRules)
		}
	}
	return l.move(t.From, t.To, t.Mint, t.Authority, t.Amount)
}

func (l *Ledger) move(from, to, mint solana.PublicKey, authority Signer, amount uint64) error {
	src, err := l.TokenAccount(from)
	if err != nil {
		return err
	}
	dst, err := l.TokenAccount(to)
	if err != nil {
		return err
	}
	if src.Mint != mint {
		return fmt.Errorf("%w: %s", ErrMintMismatch, from)
	}
	if dst.Mint != mint {
		return fmt.Errorf("%w: %s", ErrMintMismatch, to)
	}
	if err := authorize(src.Owner, authority); err != nil {
		return err
	}
	if src.Amount < amount {
		return fmt.Errorf("%w: have %d, need %d", ErrInsufficientFunds, src.Amount, amount)
	}
	if from == to {
		return nil
	}
	balance, err := nativecommon.AddUint64(dst.Amount, amount)
	if err != nil {
		return fmt.Errorf("%w: balance", ErrArithmeticOverflow)
	}
	src.Amount -= amount
	dst.Amount = balance
	if err := l.state.KVPut(accountKey(from), src); err != nil {
		return err
	}
	return l.state.KVPut(accountKey(to), dst)
}

// CloseAccount deletes an empty token account and returns its rent deposit to
// destination. The signer must own the account.
func (l *Ledger) CloseAccount(addr, destination solana.PublicKey, authority Signer) error {
	account, err := l.TokenAccount(addr)
	if err != nil {
		return err
	}
	if err := authorize(account.Owner, authority); err != nil {
		return err
	}
	if account.Amount != 0 {
		return fmt.Errorf("%w: %d remaining", ErrNonZeroBalance, account.Amount)
	}
	if err := l.drain(addr, destination); err != nil {
		return err
	}
	return l.state.KVDelete(accountKey(addr))
}
