package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"

	"nftmarket/core/events"
	"nftmarket/core/types"
)

const testTiers = `tiers:
  - amount: 500
    cost: 10000000
  - amount: 2000
    cost: 35000000
    bonus: 200
  - amount: 5000
    cost: 80000000
    bonus: 1000
`

type cliHarness struct {
	t      *testing.T
	dir    string
	config string
}

func newCLIHarness(t *testing.T) *cliHarness {
	t.Helper()
	dir := t.TempDir()
	config := filepath.Join(dir, "market.toml")
	contents := `DataDir = "` + filepath.Join(dir, "data") + `"
Environment = "test"
ProgramID = "` + solana.NewWallet().PublicKey().String() + `"
KeypairDir = "` + filepath.Join(dir, "keys") + `"
LogLevel = "error"
RentPerByteYear = 3480
`
	require.NoError(t, os.WriteFile(config, []byte(contents), 0o600))
	return &cliHarness{t: t, dir: dir, config: config}
}

func (h *cliHarness) run(args ...string) (string, error) {
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), append([]string{"--config", h.config}, args...), &stdout, &stderr)
	return stdout.String(), err
}

func (h *cliHarness) mustRun(args ...string) string {
	h.t.Helper()
	out, err := h.run(args...)
	require.NoError(h.t, err, "market-cli %v", args)
	return out
}

func decodeOutput[T any](t *testing.T, out string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(out), &v), out)
	return v
}

type resultOutput struct {
	Instruction string        `json:"instruction"`
	Address     string        `json:"address"`
	Fee         uint64        `json:"fee"`
	Minted      uint64        `json:"minted"`
	Slot        uint64        `json:"slot"`
	Events      []types.Event `json:"events"`
}

func TestKeysDoNotOpenTheLedger(t *testing.T) {
	h := newCLIHarness(t)

	created := decodeOutput[keyView](t, h.mustRun("keys", "new", "alice"))
	require.Equal(t, "alice", created.Name)
	require.FileExists(t, created.Path)

	shown := decodeOutput[keyView](t, h.mustRun("keys", "show", "alice"))
	require.Equal(t, created.Address, shown.Address)

	_, err := h.run("keys", "new", "alice")
	require.ErrorContains(t, err, "already exists")
	_, err = h.run("keys", "new", "../escape")
	require.ErrorContains(t, err, "invalid key name")

	_, err = os.Stat(filepath.Join(h.dir, "data"))
	require.True(t, os.IsNotExist(err), "keys commands must not create the ledger")
}

func TestAuctionLifecycle(t *testing.T) {
	h := newCLIHarness(t)
	for _, name := range []string{"admin", "credit", "alice", "bob"} {
		h.mustRun("keys", "new", name)
	}
	for _, name := range []string{"admin", "alice", "bob"} {
		h.mustRun("airdrop", name, "10")
	}
	bal := decodeOutput[balanceView](t, h.mustRun("balance", "bob"))
	require.EqualValues(t, 10_000_000_000, bal.Amount)
	require.Equal(t, "10", bal.Display)

	tiersPath := filepath.Join(h.dir, "tiers.yaml")
	require.NoError(t, os.WriteFile(tiersPath, []byte(testTiers), 0o600))

	initRes := decodeOutput[resultOutput](t, h.mustRun("marketplace", "init",
		"--admin", "admin", "--credit-mint", "credit", "--name", "genesis",
		"--fee-bps", "250", "--tiers", tiersPath))
	require.Equal(t, "initialize", initRes.Instruction)
	require.NotEmpty(t, initRes.Events)
	require.Equal(t, events.TypeMarketplaceInitialized, initRes.Events[0].Type)
	marketplace := initRes.Address

	shown := decodeOutput[marketplaceView](t, h.mustRun("marketplace", "show", marketplace))
	require.Equal(t, "genesis", shown.Name)
	require.EqualValues(t, 250, shown.FeeBps)
	require.Len(t, shown.Tiers, 3)
	require.Equal(t, "0.01", shown.Tiers[0].Price)

	bought := decodeOutput[resultOutput](t, h.mustRun("credits", "buy", marketplace, "--user", "bob", "--tier", "1"))
	require.EqualValues(t, 500, bought.Minted)

	asset := decodeOutput[assetView](t, h.mustRun("asset", "mint", "--owner", "alice"))
	mint := asset.Mint.String()

	listed := decodeOutput[resultOutput](t, h.mustRun("listing", "create", marketplace,
		"--seller", "alice", "--admin", "admin", "--mint", mint,
		"--seed", "1", "--increment", "0.001", "--duration", "100", "--extension", "10"))
	listing := listed.Address
	require.Equal(t, events.TypeListingCreated, listed.Events[0].Type)

	h.mustRun("listing", "bid", listing, "--bidder", "bob")
	view := decodeOutput[listingView](t, h.mustRun("listing", "show", listing))
	require.EqualValues(t, 1_000_000, view.CurrentBid)
	require.Equal(t, "0.001", view.CurrentBidSOL)
	require.True(t, view.HasBids)
	require.Equal(t, "active", view.Phase)

	// A bid built on an outdated view is rejected and leaves the ledger as
	// it was.
	_, err := h.run("listing", "bid", listing, "--bidder", "alice", "--claimed-bid", "0")
	require.ErrorContains(t, err, "place_bid failed")
	view = decodeOutput[listingView](t, h.mustRun("listing", "show", listing))
	require.EqualValues(t, 1_000_000, view.CurrentBid)

	_, err = h.run("listing", "end", listing, "--claimer", "bob", "--admin", "admin")
	require.ErrorContains(t, err, "end_listing failed")

	clock := decodeOutput[clockView](t, h.mustRun("clock", "advance", "200"))
	require.EqualValues(t, 200, clock.Slot)

	ended := decodeOutput[resultOutput](t, h.mustRun("listing", "end", listing, "--claimer", "bob", "--admin", "admin"))
	require.Equal(t, events.TypeListingEnded, ended.Events[len(ended.Events)-1].Type)
	require.EqualValues(t, 200, ended.Slot)

	owned := decodeOutput[balanceView](t, h.mustRun("balance", "bob", "--mint", mint))
	require.EqualValues(t, 1, owned.Amount)

	view = decodeOutput[listingView](t, h.mustRun("listing", "show", listing))
	require.Equal(t, "settled", view.Phase)

	winner := decodeOutput[userView](t, h.mustRun("user", "show", marketplace, "bob"))
	require.EqualValues(t, 1, winner.TotalAuctionsWon)
	require.EqualValues(t, 1, winner.TotalBidsPlaced)
}

func TestPausedMarketRejectsInstructions(t *testing.T) {
	h := newCLIHarness(t)
	for _, name := range []string{"admin", "credit"} {
		h.mustRun("keys", "new", name)
	}
	h.mustRun("airdrop", "admin", "10")
	tiersPath := filepath.Join(h.dir, "tiers.yaml")
	require.NoError(t, os.WriteFile(tiersPath, []byte(testTiers), 0o600))

	paused := decodeOutput[pauseView](t, h.mustRun("pause"))
	require.True(t, paused.Paused)

	initArgs := []string{"marketplace", "init", "--admin", "admin", "--credit-mint", "credit", "--name", "genesis", "--tiers", tiersPath}
	_, err := h.run(initArgs...)
	require.ErrorContains(t, err, "paused")

	h.mustRun("unpause")
	h.mustRun(initArgs...)
}

func TestUnknownSignerFails(t *testing.T) {
	h := newCLIHarness(t)
	_, err := h.run("credits", "buy", solana.NewWallet().PublicKey().String(), "--user", "nobody")
	require.ErrorContains(t, err, "nobody")

	_, err = h.run("clock", "set", "5")
	require.NoError(t, err)
	_, err = h.run("clock", "set", "4")
	require.ErrorContains(t, err, "behind")
}
