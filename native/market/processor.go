package market

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"

	"nftmarket/observability/metrics"
)

// Result reports what an instruction produced.
type Result struct {
	// Address of the record the instruction created, if any.
	Address solana.PublicKey
	// Fee charged by a purchase, in lamports.
	Fee uint64
	// Minted credits, in base units.
	Minted uint64
}

// Processor is the instruction entry point. It runs one instruction at a time,
// in submission order, and records a span, metrics and a log line for each.
type Processor struct {
	mu      sync.Mutex
	engine  *Engine
	logger  *slog.Logger
	tracer  trace.Tracer
	metrics *metrics.MarketMetrics
	// instructions mirrors the Prometheus counter for OTLP metric export.
	instructions otelmetric.Int64Counter
}

// NewProcessor wraps engine. A nil logger falls back to slog.Default.
func NewProcessor(engine *Engine, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	instructions, err := otel.Meter("nftmarket/native/market").Int64Counter("market.instructions",
		otelmetric.WithDescription("Marketplace instructions processed, by instruction and outcome."))
	if err != nil {
		logger.Warn("otel instruction counter unavailable", "error", err)
		instructions = noop.Int64Counter{}
	}
	return &Processor{
		engine:       engine,
		logger:       logger.With("module", ModuleName),
		tracer:       otel.Tracer("nftmarket/native/market"),
		metrics:      metrics.Market(),
		instructions: instructions,
	}
}

// Process executes ix atomically.
func (p *Processor) Process(ctx context.Context, ix Instruction) (Result, error) {
	if ix == nil {
		return Result{}, fmt.Errorf("market: nil instruction")
	}
	name := ix.InstructionName()
	ctx, span := p.tracer.Start(ctx, "market."+name,
		trace.WithAttributes(attribute.String("market.instruction", name)))
	defer span.End()

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := ctx.Err(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return Result{}, err
	}

	start := time.Now()
	res, err := p.dispatch(ix)
	elapsed := time.Since(start)

	outcome := "ok"
	if err != nil {
		outcome = Kind(err).String()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.String("market.error_kind", outcome))
		p.logger.WarnContext(ctx, "instruction failed",
			"instruction", name,
			"error_kind", outcome,
			"retryable", Retryable(err),
			"error", err)
	} else {
		if !isZero(res.Address) {
			span.SetAttributes(attribute.String("market.address", res.Address.String()))
		}
		p.metrics.AddFeesCollected(res.Fee)
		p.metrics.AddCreditsMinted(res.Minted)
		p.logger.DebugContext(ctx, "instruction processed",
			"instruction", name,
			"slot", p.engine.clock.Slot(),
			"duration", elapsed)
	}
	p.metrics.ObserveInstruction(name, outcome, elapsed)
	p.instructions.Add(ctx, 1, otelmetric.WithAttributes(
		attribute.String("instruction", name),
		attribute.String("outcome", outcome)))
	return res, err
}

func (p *Processor) dispatch(ix Instruction) (Result, error) {
	switch ix := ix.(type) {
	case *InitializeIx:
		addr, err := p.engine.Initialize(ix)
		return Result{Address: addr}, err
	case *InitializeUserIx:
		addr, err := p.engine.InitializeUser(ix)
		return Result{Address: addr}, err
	case *UpdateMintTiersIx:
		return Result{}, p.engine.UpdateMintTiers(ix)
	case *MintBidTokenIx:
		minted, err := p.engine.MintBidToken(ix)
		return Result{Minted: minted}, err
	case *ListIx:
		addr, err := p.engine.List(ix)
		return Result{Address: addr}, err
	case *PlaceBidIx:
		if err := p.engine.PlaceBid(ix); err != nil {
			return Result{}, err
		}
		p.metrics.IncBidsPlaced()
		return Result{}, nil
	case *EndListingIx:
		return Result{}, p.engine.EndListing(ix)
	case *DelistIx:
		return Result{}, p.engine.Delist(ix)
	case *PurchaseIx:
		fee, err := p.engine.Purchase(ix)
		return Result{Fee: fee}, err
	default:
		return Result{}, fmt.Errorf("market: unsupported instruction %q", ix.InstructionName())
	}
}

// Marketplace loads a marketplace record.
func (p *Processor) Marketplace(addr solana.PublicKey) (*Marketplace, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.engine.Marketplace(addr)
}

// Listing loads a listing record.
func (p *Processor) Listing(addr solana.PublicKey) (*Listing, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.engine.Listing(addr)
}

// ListingPhase reports a listing's lifecycle stage at the current slot.
func (p *Processor) ListingPhase(addr solana.PublicKey) (Phase, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.engine.ListingPhase(addr)
}

// UserAccount loads a loyalty record.
func (p *Processor) UserAccount(addr solana.PublicKey) (*UserAccount, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.engine.UserAccount(addr)
}
