package market

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"nftmarket/core/events"
	nativecommon "nftmarket/native/common"
	"nftmarket/native/custody"
	"nftmarket/native/token"
)

// ModuleName keys the marketplace in the pause settings.
const ModuleName = "market"

// RewardsDecimals is the precision of the rewards mint.
const RewardsDecimals uint8 = 6

var (
	errNilState  = errors.New("market engine: state not configured")
	errNilTokens = errors.New("market engine: token ledger not configured")
)

// TokenLedger is the token and lamport program the marketplace drives.
type TokenLedger interface {
	custody.TokenProgram
	CreateMint(payer token.Signer, mint token.Mint) error
	CreateAssociatedAccount(payer token.Signer, owner, mint solana.PublicKey) (solana.PublicKey, error)
	EnsureAssociatedAccount(payer token.Signer, owner, mint solana.PublicKey) (solana.PublicKey, error)
	MintTo(mint, to solana.PublicKey, amount uint64, authority token.Signer) error
	TransferLamports(from, to solana.PublicKey, amount uint64, signer token.Signer) error
	Allocate(payer token.Signer, account solana.PublicKey, space uint64) error
	Reclaim(account, destination solana.PublicKey, signer token.Signer) error
}

// Engine executes marketplace instructions against ledger state. Every
// operation is atomic: state is snapshotted first and restored when the
// operation fails, and events are only emitted once it succeeds. The token
// ledger must write to the same state for the snapshot to cover balances.
//
// Engine is not safe for concurrent use; Processor serialises access.
type Engine struct {
	programID solana.PublicKey
	state     engineState
	tokens    TokenLedger
	custody   *custody.Adapter
	emitter   events.Emitter
	clock     Clock
	pauses    nativecommon.PauseView
	pending   []events.Event
}

// NewEngine creates an engine for the marketplace program with a no-op emitter
// and a manual clock at slot zero.
func NewEngine(programID solana.PublicKey) *Engine {
	return &Engine{
		programID: programID,
		emitter:   events.NoopEmitter{},
		clock:     NewManualClock(0),
	}
}

// ProgramID returns the program the engine derives addresses for.
func (e *Engine) ProgramID() solana.PublicKey { return e.programID }

// SetState configures the state backend used by the engine.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetTokens configures the token ledger used for custody and payments.
func (e *Engine) SetTokens(tokens TokenLedger) {
	e.tokens = tokens
	e.custody = custody.NewAdapter(tokens)
}

// SetEmitter configures the event emitter used by the engine. Passing nil resets
// the emitter to a no-op implementation.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetClock overrides the slot source.
func (e *Engine) SetClock(clock Clock) {
	if clock == nil {
		clock = NewManualClock(0)
	}
	e.clock = clock
}

// SetPauses configures the pause view consulted before every instruction.
func (e *Engine) SetPauses(p nativecommon.PauseView) { e.pauses = p }

func (e *Engine) records() records {
	return records{state: e.state}
}

func (e *Engine) emit(evt events.Event) {
	e.pending = append(e.pending, evt)
}

func (e *Engine) atomically(fn func(slot uint64) error) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if e.tokens == nil {
		return errNilTokens
	}
	if err := nativecommon.Guard(e.pauses, ModuleName); err != nil {
		return err
	}
	id := e.state.Snapshot()
	e.pending = e.pending[:0]
	if err := fn(e.clock.Slot()); err != nil {
		e.pending = e.pending[:0]
		if revertErr := e.state.RevertToSnapshot(id); revertErr != nil {
			return fmt.Errorf("%w (revert: %v)", err, revertErr)
		}
		return err
	}
	e.state.DiscardSnapshot(id)
	pending := e.pending
	e.pending = nil
	for _, evt := range pending {
		e.emitter.Emit(evt)
	}
	return nil
}

// touchUser returns the loyalty record of owner, opening it at owner's expense
// when it does not exist yet.
func (e *Engine) touchUser(marketplace solana.PublicKey, owner token.Wallet) (*UserAccount, solana.PublicKey, error) {
	addr, bump, err := UserAddress(e.programID, marketplace, owner.SignerKey())
	if err != nil {
		return nil, solana.PublicKey{}, err
	}
	user, ok, err := e.records().user(addr)
	if err != nil {
		return nil, solana.PublicKey{}, err
	}
	if ok {
		return user, addr, nil
	}
	if err := e.tokens.Allocate(owner, addr, UserSpace); err != nil {
		return nil, solana.PublicKey{}, fmt.Errorf("market: fund user account: %w", err)
	}
	e.emit(events.UserCreated{User: addr, Owner: owner.SignerKey(), Marketplace: marketplace})
	return &UserAccount{Owner: owner.SignerKey(), Bump: bump}, addr, nil
}

func (e *Engine) reward(marketplace solana.PublicKey, owner token.Wallet, activity Activity, firstBid bool) (*UserAccount, error) {
	user, addr, err := e.touchUser(marketplace, owner)
	if err != nil {
		return nil, err
	}
	if err := user.Record(activity, firstBid); err != nil {
		return nil, err
	}
	if err := e.records().putUser(addr, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Marketplace loads the marketplace record at addr.
func (e *Engine) Marketplace(addr solana.PublicKey) (*Marketplace, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	return e.records().marketplace(addr)
}

// Listing loads the listing record at addr.
func (e *Engine) Listing(addr solana.PublicKey) (*Listing, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	return e.records().listing(addr)
}

// ListingPhase reports the lifecycle stage of the listing at the current slot.
func (e *Engine) ListingPhase(addr solana.PublicKey) (Phase, error) {
	listing, err := e.Listing(addr)
	if err != nil {
		return 0, err
	}
	return listing.Phase(e.clock.Slot()), nil
}

// UserAccount loads the loyalty record at addr.
func (e *Engine) UserAccount(addr solana.PublicKey) (*UserAccount, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	user, ok, err := e.records().user(addr)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, addr)
	}
	return user, nil
}

func eventTiers(tiers [3]MintTier) [3]events.MintTier {
	var out [3]events.MintTier
	for i, tier := range tiers {
		out[i] = events.MintTier{Tier: uint8(tier.Tier), Amount: tier.Amount, Cost: tier.Cost, Bonus: tier.Bonus}
	}
	return out
}
