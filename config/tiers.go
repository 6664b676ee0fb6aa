package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"nftmarket/native/market"
)

// TierTable is the YAML layout of a credit price list. Entries are listed
// cheapest first and map onto tier1, tier2 and tier3.
type TierTable struct {
	Tiers []TierEntry `yaml:"tiers"`
}

// TierEntry prices one credit package. Cost is in lamports.
type TierEntry struct {
	Amount uint64 `yaml:"amount"`
	Cost   uint64 `yaml:"cost"`
	Bonus  uint64 `yaml:"bonus"`
}

// LoadTiers reads a tier table from a YAML file.
func LoadTiers(path string) ([3]market.MintTier, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return [3]market.MintTier{}, fmt.Errorf("read tiers: %w", err)
	}
	return ParseTiers(raw)
}

// ParseTiers decodes a YAML tier table.
func ParseTiers(raw []byte) ([3]market.MintTier, error) {
	var out [3]market.MintTier
	var table TierTable
	if err := yaml.Unmarshal(raw, &table); err != nil {
		return out, fmt.Errorf("decode tiers: %w", err)
	}
	if len(table.Tiers) != len(out) {
		return out, fmt.Errorf("tiers: want %d entries, got %d", len(out), len(table.Tiers))
	}
	for i, entry := range table.Tiers {
		out[i] = market.MintTier{
			Tier:   market.MintCostTier(i),
			Amount: entry.Amount,
			Cost:   entry.Cost,
			Bonus:  entry.Bonus,
		}
	}
	if err := market.ValidateTiers(out); err != nil {
		return out, err
	}
	return out, nil
}
