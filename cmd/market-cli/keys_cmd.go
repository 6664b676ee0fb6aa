package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"
)

// keyring stores one Solana keygen JSON file per named signer.
type keyring struct {
	dir string
}

func (k *keyring) path(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("invalid key name %q", name)
	}
	return filepath.Join(k.dir, name+".json"), nil
}

func (k *keyring) has(name string) bool {
	path, err := k.path(name)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

func (k *keyring) load(name string) (solana.PrivateKey, error) {
	path, err := k.path(name)
	if err != nil {
		return nil, err
	}
	key, err := solana.PrivateKeyFromSolanaKeygenFile(path)
	if err != nil {
		return nil, fmt.Errorf("load key %q: %w", name, err)
	}
	return key, nil
}

func (k *keyring) create(name string) (solana.PublicKey, string, error) {
	path, err := k.path(name)
	if err != nil {
		return solana.PublicKey{}, "", err
	}
	if _, err := os.Stat(path); err == nil {
		return solana.PublicKey{}, "", fmt.Errorf("key %q already exists at %s", name, path)
	} else if !errors.Is(err, os.ErrNotExist) {
		return solana.PublicKey{}, "", err
	}
	key, err := solana.NewRandomPrivateKey()
	if err != nil {
		return solana.PublicKey{}, "", fmt.Errorf("generate key: %w", err)
	}
	// solana-keygen writes the 64 key bytes as a JSON array of numbers.
	raw := make([]int, len(key))
	for i, b := range key {
		raw[i] = int(b)
	}
	encoded, err := json.Marshal(raw)
	if err != nil {
		return solana.PublicKey{}, "", err
	}
	if err := os.MkdirAll(k.dir, 0o700); err != nil {
		return solana.PublicKey{}, "", fmt.Errorf("create key dir: %w", err)
	}
	if err := os.WriteFile(path, encoded, 0o600); err != nil {
		return solana.PublicKey{}, "", fmt.Errorf("write key: %w", err)
	}
	return key.PublicKey(), path, nil
}

type keyView struct {
	Name    string           `json:"name"`
	Address solana.PublicKey `json:"address"`
	Path    string           `json:"path,omitempty"`
}

func newKeysCmd(a *app) *cobra.Command {
	keysCmd := &cobra.Command{
		Use:         "keys",
		Short:       "Manage named signer keypairs",
		Annotations: map[string]string{annotationLedger: "none"},
	}

	newCmd := &cobra.Command{
		Use:   "new NAME",
		Short: "Generate a keypair and store it under KeypairDir",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, path, err := a.keys.create(args[0])
			if err != nil {
				return err
			}
			return a.printJSON(keyView{Name: args[0], Address: addr, Path: path})
		},
	}

	showCmd := &cobra.Command{
		Use:   "show NAME",
		Short: "Print the address of a stored keypair",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := a.signer(args[0])
			if err != nil {
				return err
			}
			return a.printJSON(keyView{Name: args[0], Address: addr})
		},
	}

	keysCmd.AddCommand(newCmd, showCmd)
	return keysCmd
}
