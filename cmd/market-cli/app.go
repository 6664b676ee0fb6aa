package main

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
	"github.com/spf13/cobra"

	"nftmarket/config"
	"nftmarket/core/events"
	"nftmarket/core/state"
	"nftmarket/core/types"
	"nftmarket/native/market"
	"nftmarket/native/token"
	"nftmarket/observability"
	"nftmarket/observability/logging"
	telemetry "nftmarket/observability/otel"
	"nftmarket/storage"
	"nftmarket/storage/trie"
)

// Metadata keys written next to the trie nodes.
var (
	headRootKey = []byte("market/head/root")
	headSlotKey = []byte("market/head/slot")
)

const shutdownTimeout = 5 * time.Second

// app holds everything a single command invocation opens.
type app struct {
	configPath string
	stdout     io.Writer
	stderr     io.Writer

	cfg       *config.Config
	logger    *slog.Logger
	logCloser io.Closer
	shutdown  telemetry.Shutdown
	keys      *keyring
	programID solana.PublicKey

	db        *storage.LevelDB
	state     *state.Manager
	ledger    *token.Ledger
	clock     *market.ManualClock
	engine    *market.Engine
	processor *market.Processor
	emitter   *logEmitter
}

func (a *app) open(ctx context.Context, withLedger bool) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg
	programID, err := cfg.Program()
	if err != nil {
		return err
	}
	a.programID = programID

	logger, closer := logging.Setup(logging.Options{
		Service: serviceName,
		Env:     cfg.Environment,
		Level:   cfg.LogLevel,
		Writer:  a.stderr,
		File:    cfg.LogFile,
	})
	a.logger = logger.With("request_id", uuid.NewString())
	a.logCloser = closer

	shutdown, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName: serviceName,
		Environment: cfg.Environment,
		ProgramID:   cfg.ProgramID,
		Endpoint:    cfg.Telemetry.Endpoint,
		Insecure:    cfg.Telemetry.Insecure,
		Headers:     telemetry.ParseHeaders(cfg.Telemetry.Headers),
		Metrics:     cfg.Telemetry.Metrics,
		Traces:      cfg.Telemetry.Traces,
		SampleRatio: cfg.Telemetry.SampleRatio,
	})
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	a.shutdown = shutdown
	a.keys = &keyring{dir: cfg.KeypairDir}

	if !withLedger {
		return nil
	}
	return a.openLedger()
}

func (a *app) openLedger() error {
	if err := os.MkdirAll(a.cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	db, err := storage.NewLevelDB(filepath.Join(a.cfg.DataDir, "ledger"))
	if err != nil {
		return err
	}
	a.db = db

	root, err := db.Get(headRootKey)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("load head root: %w", err)
	}
	var slot uint64
	raw, err := db.Get(headSlotKey)
	switch {
	case errors.Is(err, storage.ErrNotFound):
	case err != nil:
		return fmt.Errorf("load head slot: %w", err)
	case len(raw) != 8:
		return fmt.Errorf("load head slot: corrupt value of %d bytes", len(raw))
	default:
		slot = binary.BigEndian.Uint64(raw)
	}

	tr, err := trie.NewTrie(db, root)
	if err != nil {
		return fmt.Errorf("open state at %x: %w", root, err)
	}
	a.state = state.NewManager(tr)
	if err := state.EnsureSchemaVersion(a.state); err != nil {
		return err
	}
	a.ledger = token.NewLedger(a.state)
	a.ledger.SetRentRate(a.cfg.RentPerByteYear)
	a.clock = market.NewManualClock(slot)
	a.emitter = &logEmitter{logger: a.logger, metrics: observability.Events()}

	a.engine = market.NewEngine(a.programID)
	a.engine.SetState(a.state)
	a.engine.SetTokens(a.ledger)
	a.engine.SetClock(a.clock)
	a.engine.SetPauses(a.state)
	a.engine.SetEmitter(a.emitter)
	a.processor = market.NewProcessor(a.engine, a.logger)

	a.logger.Debug("ledger opened", "root", fmt.Sprintf("%x", root), "slot", slot)
	return nil
}

// close commits the ledger when commit is set and releases everything the
// command acquired.
func (a *app) close(ctx context.Context, commit bool) error {
	var errs []error
	if a.db != nil {
		if commit {
			errs = append(errs, a.commit())
		}
		a.db.Close()
	}
	if a.shutdown != nil {
		shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
		if err := a.shutdown(shutdownCtx); err != nil {
			a.logger.Warn("telemetry shutdown failed", "error", err)
		}
		cancel()
	}
	a.pushMetrics()
	if a.logCloser != nil {
		errs = append(errs, a.logCloser.Close())
	}
	return errors.Join(errs...)
}

func (a *app) commit() error {
	slot := a.clock.Slot()
	root, err := a.state.Commit(slot)
	if err != nil {
		return fmt.Errorf("commit state: %w", err)
	}
	if err := a.db.Put(headRootKey, root.Bytes()); err != nil {
		return fmt.Errorf("store head root: %w", err)
	}
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], slot)
	if err := a.db.Put(headSlotKey, buf[:]); err != nil {
		return fmt.Errorf("store head slot: %w", err)
	}
	a.logger.Debug("ledger committed", "root", root.Hex(), "slot", slot)
	return nil
}

// pushMetrics hands the process metrics to the configured push gateway. A
// failed push is logged and never fails the command.
func (a *app) pushMetrics() {
	if a.cfg == nil || a.cfg.PushGateway == "" {
		return
	}
	err := push.New(a.cfg.PushGateway, serviceName).
		Gatherer(prometheus.DefaultGatherer).
		Grouping("environment", a.cfg.Environment).
		Push()
	if err != nil {
		a.logger.Warn("metrics push failed", "gateway", a.cfg.PushGateway, "error", err)
	}
}

// process runs ix through the processor and reports the outcome together with
// the events it emitted.
func (a *app) process(cmd *cobra.Command, ix market.Instruction) (market.Result, []*types.Event, error) {
	res, err := a.processor.Process(cmd.Context(), ix)
	if err != nil {
		return res, nil, fmt.Errorf("%s failed (%s): %w", ix.InstructionName(), market.Kind(err), err)
	}
	return res, a.emitter.drain(), nil
}

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// signer resolves a keypair the operator holds. Only keys loaded this way are
// treated as having signed an instruction.
func (a *app) signer(name string) (solana.PublicKey, error) {
	key, err := a.keys.load(name)
	if err != nil {
		return solana.PublicKey{}, err
	}
	return key.PublicKey(), nil
}

// account resolves a keypair name or a base58 address.
func (a *app) account(ref string) (solana.PublicKey, error) {
	if a.keys.has(ref) {
		return a.signer(ref)
	}
	key, err := solana.PublicKeyFromBase58(ref)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("%q is neither a key name nor an address: %w", ref, err)
	}
	return key, nil
}

// logEmitter logs and counts every ledger event and buffers its flattened
// form for the command output.
type logEmitter struct {
	logger  *slog.Logger
	metrics *observability.EventMetrics
	pending []*types.Event
}

func (e *logEmitter) Emit(evt events.Event) {
	e.metrics.RecordEvent(evt.EventType())
	flat, ok := evt.(interface{ Event() *types.Event })
	if !ok {
		e.logger.Info("market event", "type", evt.EventType())
		return
	}
	ev := flat.Event()
	e.pending = append(e.pending, ev)
	e.logger.Info("market event", "type", ev.Type, "attributes", ev.Attributes)
}

func (e *logEmitter) drain() []*types.Event {
	out := e.pending
	e.pending = nil
	return out
}
