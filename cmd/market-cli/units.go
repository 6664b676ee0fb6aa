package main

import (
	"fmt"
	"math"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// lamportsPerSOLExp is the number of decimal places between SOL and lamports.
const lamportsPerSOLExp = 9

var maxUint64 = decimal.NewFromBigInt(new(big.Int).SetUint64(math.MaxUint64), 0)

// parseSOL converts a decimal SOL amount such as "1.25" into lamports.
func parseSOL(raw string) (uint64, error) {
	return parseUnits(raw, lamportsPerSOLExp)
}

// parseUnits converts a decimal amount into base units of a token with the
// given number of decimals. Amounts finer than one base unit are rejected.
func parseUnits(raw string, decimals uint8) (uint64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", raw, err)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("invalid amount %q: negative", raw)
	}
	units := d.Shift(int32(decimals))
	if !units.IsInteger() {
		return 0, fmt.Errorf("invalid amount %q: more than %d decimal places", raw, decimals)
	}
	if units.GreaterThan(maxUint64) {
		return 0, fmt.Errorf("invalid amount %q: overflows uint64", raw)
	}
	return units.BigInt().Uint64(), nil
}

// formatSOL renders lamports as a SOL amount without trailing zeros.
func formatSOL(lamports uint64) string {
	return formatUnits(lamports, lamportsPerSOLExp)
}

func formatUnits(units uint64, decimals uint8) string {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(units), -int32(decimals)).String()
}
