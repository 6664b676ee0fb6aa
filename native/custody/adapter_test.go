package custody

import (
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"

	"nftmarket/core/state"
	"nftmarket/native/token"
	"nftmarket/storage"
	"nftmarket/storage/trie"
)

type fixture struct {
	ledger  *token.Ledger
	adapter *Adapter
	seller  token.Wallet
	buyer   solana.PublicKey
	mint    solana.PublicKey
	from    solana.PublicKey
	to      solana.PublicKey
}

func newFixture(t *testing.T, mint token.Mint) *fixture {
	t.Helper()
	db := storage.NewMemDB()
	t.Cleanup(db.Close)
	tr, err := trie.NewTrie(db, nil)
	if err != nil {
		t.Fatalf("new trie: %v", err)
	}
	ledger := token.NewLedger(state.NewManager(tr))
	seller := token.Wallet(solana.NewWallet().PublicKey())
	if err := ledger.Airdrop(seller.SignerKey(), 1_000_000_000); err != nil {
		t.Fatalf("airdrop: %v", err)
	}
	mint.Address = solana.NewWallet().PublicKey()
	mint.Authority = seller.SignerKey()
	if err := ledger.CreateMint(seller, mint); err != nil {
		t.Fatalf("create mint: %v", err)
	}
	buyer := solana.NewWallet().PublicKey()
	from, err := ledger.CreateAssociatedAccount(seller, seller.SignerKey(), mint.Address)
	if err != nil {
		t.Fatalf("create source: %v", err)
	}
	to, err := ledger.CreateAssociatedAccount(seller, buyer, mint.Address)
	if err != nil {
		t.Fatalf("create destination: %v", err)
	}
	if err := ledger.MintTo(mint.Address, from, 1, seller); err != nil {
		t.Fatalf("mint: %v", err)
	}
	return &fixture{
		ledger:  ledger,
		adapter: NewAdapter(ledger),
		seller:  seller,
		buyer:   buyer,
		mint:    mint.Address,
		from:    from,
		to:      to,
	}
}

func (f *fixture) request() MoveRequest {
	return MoveRequest{
		Amount:        1,
		From:          f.from,
		To:            f.to,
		AuthorityFrom: f.seller.SignerKey(),
		AuthorityTo:   f.buyer,
		Mint:          f.mint,
		Metadata:      solana.NewWallet().PublicKey(),
		Signer:        f.seller,
	}
}

func (f *fixture) balance(t *testing.T, addr solana.PublicKey) uint64 {
	t.Helper()
	amount, err := f.ledger.Balance(addr)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	return amount
}

func TestMoveWithoutAuthorizationUsesCheckedTransfer(t *testing.T) {
	f := newFixture(t, token.Mint{Decimals: 0})
	if err := f.adapter.Move(f.request()); err != nil {
		t.Fatalf("move: %v", err)
	}
	if got := f.balance(t, f.to); got != 1 {
		t.Fatalf("expected destination to hold 1, got %d", got)
	}
	if got := f.balance(t, f.from); got != 0 {
		t.Fatalf("expected source to be empty, got %d", got)
	}
}

func TestMoveWithoutAuthorizationRejectsProgrammableAsset(t *testing.T) {
	f := newFixture(t, token.Mint{Programmable: true})
	err := f.adapter.Move(f.request())
	if !errors.Is(err, token.ErrProgrammableAsset) {
		t.Fatalf("expected ErrProgrammableAsset, got %v", err)
	}
}

func TestMoveWithAuthorizationUsesRulesPath(t *testing.T) {
	ruleSet := solana.NewWallet().PublicKey()
	f := newFixture(t, token.Mint{Programmable: true, RuleSet: ruleSet})
	req := f.request()
	req.Authorization = &Authorization{
		MetadataProgram:  TokenMetadataProgramID,
		AuthRulesProgram: token.AuthRulesProgramID,
		AuthRules:        ruleSet,
	}
	if err := f.adapter.Move(req); err != nil {
		t.Fatalf("move: %v", err)
	}
	if got := f.balance(t, f.to); got != 1 {
		t.Fatalf("expected destination to hold 1, got %d", got)
	}
}

func TestMoveRejectsWrongMetadataProgram(t *testing.T) {
	f := newFixture(t, token.Mint{Programmable: true})
	req := f.request()
	req.Authorization = &Authorization{MetadataProgram: solana.NewWallet().PublicKey()}
	if err := f.adapter.Move(req); !errors.Is(err, ErrInvalidMetadataProgram) {
		t.Fatalf("expected ErrInvalidMetadataProgram, got %v", err)
	}
	if got := f.balance(t, f.from); got != 1 {
		t.Fatalf("expected source untouched, got %d", got)
	}

	req.Authorization = &Authorization{MetadataProgram: TokenMetadataProgramID}
	req.Metadata = solana.PublicKey{}
	if err := f.adapter.Move(req); !errors.Is(err, ErrMissingMetadata) {
		t.Fatalf("expected ErrMissingMetadata, got %v", err)
	}
}

func TestMovePropagatesTokenProgramFailures(t *testing.T) {
	ruleSet := solana.NewWallet().PublicKey()
	f := newFixture(t, token.Mint{Programmable: true, RuleSet: ruleSet})
	req := f.request()
	req.Authorization = &Authorization{
		MetadataProgram:  TokenMetadataProgramID,
		AuthRulesProgram: token.AuthRulesProgramID,
		AuthRules:        solana.NewWallet().PublicKey(),
	}
	if err := f.adapter.Move(req); !errors.Is(err, token.ErrRuleSetMismatch) {
		t.Fatalf("expected ErrRuleSetMismatch, got %v", err)
	}
}

func TestMoveChecksAuthorities(t *testing.T) {
	f := newFixture(t, token.Mint{})

	req := f.request()
	req.Signer = nil
	if err := f.adapter.Move(req); !errors.Is(err, token.ErrMissingSigner) {
		t.Fatalf("expected ErrMissingSigner, got %v", err)
	}

	req = f.request()
	req.AuthorityFrom = f.buyer
	if err := f.adapter.Move(req); !errors.Is(err, token.ErrOwnerMismatch) {
		t.Fatalf("expected ErrOwnerMismatch, got %v", err)
	}

	req = f.request()
	req.AuthorityTo = f.seller.SignerKey()
	if err := f.adapter.Move(req); !errors.Is(err, ErrDestinationOwner) {
		t.Fatalf("expected ErrDestinationOwner, got %v", err)
	}
}

func TestCloseReturnsRent(t *testing.T) {
	f := newFixture(t, token.Mint{})
	if err := f.adapter.Move(f.request()); err != nil {
		t.Fatalf("move: %v", err)
	}
	before, err := f.ledger.Lamports(f.seller.SignerKey())
	if err != nil {
		t.Fatalf("lamports: %v", err)
	}
	if err := f.adapter.Close(f.from, f.seller.SignerKey(), f.seller); err != nil {
		t.Fatalf("close: %v", err)
	}
	after, err := f.ledger.Lamports(f.seller.SignerKey())
	if err != nil {
		t.Fatalf("lamports: %v", err)
	}
	if after-before != f.ledger.RentExempt(token.TokenAccountSpace) {
		t.Fatalf("expected rent refund, got %d", after-before)
	}
	if _, err := f.ledger.TokenAccount(f.from); !errors.Is(err, token.ErrAccountNotFound) {
		t.Fatalf("expected account to be deleted, got %v", err)
	}
}
