package market

import (
	"fmt"

	"github.com/holiman/uint256"

	nativecommon "nftmarket/native/common"
)

var bpsDenominator = uint256.NewInt(MaxFeeBps)

// SplitBuyout divides a buyout price into the treasury fee and the seller's
// proceeds. The fee is floor(price*feeBps/10000); the product is computed in
// 256 bits so it cannot overflow for any 64-bit price.
func SplitBuyout(price uint64, feeBps uint16) (fee, proceeds uint64, err error) {
	product, overflow := new(uint256.Int).MulOverflow(uint256.NewInt(price), uint256.NewInt(uint64(feeBps)))
	if overflow {
		return 0, 0, ErrArithmeticOverflow
	}
	quotient := new(uint256.Int).Div(product, bpsDenominator)
	if !quotient.IsUint64() {
		return 0, 0, ErrArithmeticOverflow
	}
	fee = quotient.Uint64()
	proceeds, err = nativecommon.SubUint64(price, fee)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: fee %d exceeds price %d", ErrArithmeticOverflow, fee, price)
	}
	return fee, proceeds, nil
}

// creditUnits returns units * 10^decimals.
func creditUnits(units uint64, decimals uint8) (uint64, error) {
	scale := uint64(1)
	for i := uint8(0); i < decimals; i++ {
		next, err := nativecommon.MulUint64(scale, 10)
		if err != nil {
			return 0, ErrArithmeticOverflow
		}
		scale = next
	}
	total, err := nativecommon.MulUint64(units, scale)
	if err != nil {
		return 0, ErrArithmeticOverflow
	}
	return total, nil
}

func addU64(a, b uint64) (uint64, error) {
	sum, err := nativecommon.AddUint64(a, b)
	if err != nil {
		return 0, ErrArithmeticOverflow
	}
	return sum, nil
}

func addU32(a, b uint32) (uint32, error) {
	sum, err := nativecommon.AddUint32(a, b)
	if err != nil {
		return 0, ErrArithmeticOverflow
	}
	return sum, nil
}
