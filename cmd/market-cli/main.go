package main

import (
	"context"
	"fmt"
	"io"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/cobra"
)

const (
	serviceName       = "market-cli"
	defaultConfigPath = "market.toml"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// run executes one CLI invocation. The ledger opened for the command is
// committed only when the command succeeds.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	a := &app{stdout: stdout, stderr: stderr}
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if closeErr := a.close(ctx, err == nil); closeErr != nil && err == nil {
		err = closeErr
	}
	return err
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   serviceName,
		Short: "Operate an auction marketplace ledger",
		Long: `market-cli runs marketplace instructions against a local ledger.
Every command opens the ledger under DataDir, applies at most one
instruction and commits the new state root when the command succeeds.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open(cmd.Context(), needsLedger(cmd))
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", defaultConfigPath, "Path to the TOML configuration file")

	root.AddCommand(
		newKeysCmd(a),
		newAirdropCmd(a),
		newBalanceCmd(a),
		newClockCmd(a),
		newPauseCmd(a, true),
		newPauseCmd(a, false),
		newAssetCmd(a),
		newMarketplaceCmd(a),
		newUserCmd(a),
		newCreditsCmd(a),
		newListingCmd(a),
	)
	return root
}

const annotationLedger = "ledger"

// needsLedger reports whether cmd or one of its parents asks to skip opening
// the ledger.
func needsLedger(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[annotationLedger] == "none" {
			return false
		}
	}
	return true
}
