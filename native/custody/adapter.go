package custody

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"nftmarket/native/token"
)

// TokenMetadataProgramID is the only metadata program accepted on the
// rules-enforced path.
var TokenMetadataProgramID = solana.MustPublicKeyFromBase58("metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s")

var (
	ErrInvalidMetadataProgram = errors.New("custody: invalid metadata program")
	ErrMissingMetadata        = errors.New("custody: metadata account required for programmable transfer")
	ErrDestinationOwner       = errors.New("custody: destination is not owned by the receiving authority")
)

// Signer is presented when the source custody is owned by a derived address.
type Signer = token.Signer

// TokenProgram is the token program surface the adapter drives.
type TokenProgram interface {
	Mint(addr solana.PublicKey) (*token.Mint, error)
	TokenAccount(addr solana.PublicKey) (*token.Account, error)
	TransferChecked(t token.CheckedTransfer) error
	TransferProgrammable(t token.ProgrammableTransfer) error
	CloseAccount(addr, destination solana.PublicKey, authority token.Signer) error
}

// Authorization carries the extra accounts a rules-enforced transfer needs.
// Optional accounts are left zero.
type Authorization struct {
	MetadataProgram        solana.PublicKey
	Edition                solana.PublicKey
	OwnerTokenRecord       solana.PublicKey
	DestinationTokenRecord solana.PublicKey
	AuthRulesProgram       solana.PublicKey
	AuthRules              solana.PublicKey
}

// MoveRequest describes a single custody movement.
type MoveRequest struct {
	Amount        uint64
	From          solana.PublicKey
	To            solana.PublicKey
	AuthorityFrom solana.PublicKey
	AuthorityTo   solana.PublicKey
	Mint          solana.PublicKey
	Metadata      solana.PublicKey
	Signer        Signer
	Authorization *Authorization
}

type transferPath interface {
	move(tokens TokenProgram, req MoveRequest) error
}

type checkedPath struct{}

type rulesPath struct {
	auth Authorization
}

// Adapter moves assets between custody accounts through the token program.
type Adapter struct {
	tokens TokenProgram
}

// NewAdapter wraps the supplied token program.
func NewAdapter(tokens TokenProgram) *Adapter {
	return &Adapter{tokens: tokens}
}

func pathFor(req MoveRequest) transferPath {
	if req.Authorization != nil {
		return rulesPath{auth: *req.Authorization}
	}
	return checkedPath{}
}

// Move transfers req.Amount units from req.From to req.To. Requests carrying
// an Authorization go through the metadata program's rules-enforced transfer,
// all others through a checked transfer. Token program failures are returned
// wrapped.
func (a *Adapter) Move(req MoveRequest) error {
	if a == nil || a.tokens == nil {
		return fmt.Errorf("custody: token program not configured")
	}
	if req.Signer == nil {
		return fmt.Errorf("custody: move %s: %w", req.Mint, token.ErrMissingSigner)
	}
	if req.Signer.SignerKey() != req.AuthorityFrom {
		return fmt.Errorf("custody: move %s: %w", req.Mint, token.ErrOwnerMismatch)
	}
	dst, err := a.tokens.TokenAccount(req.To)
	if err != nil {
		return fmt.Errorf("custody: load destination: %w", err)
	}
	if dst.Owner != req.AuthorityTo {
		return fmt.Errorf("%w: %s", ErrDestinationOwner, req.To)
	}
	return pathFor(req).move(a.tokens, req)
}

// Close closes an emptied custody account and returns its rent to
// destination.
func (a *Adapter) Close(account, destination solana.PublicKey, signer Signer) error {
	if a == nil || a.tokens == nil {
		return fmt.Errorf("custody: token program not configured")
	}
	if err := a.tokens.CloseAccount(account, destination, signer); err != nil {
		return fmt.Errorf("custody: close %s: %w", account, err)
	}
	return nil
}

func (checkedPath) move(tokens TokenProgram, req MoveRequest) error {
	mint, err := tokens.Mint(req.Mint)
	if err != nil {
		return fmt.Errorf("custody: load mint: %w", err)
	}
	err = tokens.TransferChecked(token.CheckedTransfer{
		From:      req.From,
		To:        req.To,
		Mint:      req.Mint,
		Authority: req.Signer,
		Amount:    req.Amount,
		Decimals:  mint.Decimals,
	})
	if err != nil {
		return fmt.Errorf("custody: transfer %s: %w", req.Mint, err)
	}
	return nil
}

func (p rulesPath) move(tokens TokenProgram, req MoveRequest) error {
	if p.auth.MetadataProgram != TokenMetadataProgramID {
		return fmt.Errorf("%w: %s", ErrInvalidMetadataProgram, p.auth.MetadataProgram)
	}
	if req.Metadata == (solana.PublicKey{}) {
		return ErrMissingMetadata
	}
	err := tokens.TransferProgrammable(token.ProgrammableTransfer{
		From:             req.From,
		To:               req.To,
		Mint:             req.Mint,
		Authority:        req.Signer,
		Amount:           req.Amount,
		AuthRulesProgram: p.auth.AuthRulesProgram,
		AuthRules:        p.auth.AuthRules,
	})
	if err != nil {
		return fmt.Errorf("custody: programmable transfer %s: %w", req.Mint, err)
	}
	return nil
}
