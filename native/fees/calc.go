package fees

import "math/big"

// BpsDenominator is the basis-point precision constant: 10000 = 100.00%.
const BpsDenominator = 10_000

// MaxBps is the largest valid basis-point rate.
const MaxBps uint32 = 10_000

var bpsDenom = big.NewInt(BpsDenominator)

// Compute returns floor(amount * bps / 10000). A nil or non-positive amount
// yields zero. The calculation is pure integer arithmetic; no rounding mode
// other than floor is ever applied.
func Compute(amount *big.Int, bps uint32) *big.Int {
	if amount == nil || amount.Sign() <= 0 || bps == 0 {
		return big.NewInt(0)
	}
	fee := new(big.Int).Mul(amount, new(big.Int).SetUint64(uint64(bps)))
	return fee.Div(fee, bpsDenom)
}

// ProtocolFee computes the protocol's cut of an escrow amount at the supplied
// basis-point rate.
func ProtocolFee(amount *big.Int, rateBps uint32) *big.Int {
	return Compute(amount, rateBps)
}

// ArbiterFee computes the arbiter's cut of an escrow amount at the arbiter's
// registered basis-point rate.
func ArbiterFee(amount *big.Int, rateBps uint32) *big.Int {
	return Compute(amount, rateBps)
}

// SplitRemaining divides remaining between buyer and seller according to the
// buyer's share in basis points. The buyer receives the floored share and the
// seller the remainder, so the two always sum exactly to remaining.
func SplitRemaining(remaining *big.Int, buyerBps uint32) (buyer, seller *big.Int) {
	buyer = Compute(remaining, buyerBps)
	seller = big.NewInt(0)
	if remaining != nil && remaining.Sign() > 0 {
		seller = new(big.Int).Sub(remaining, buyer)
	}
	return buyer, seller
}
