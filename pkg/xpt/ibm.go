package xpt

import "math"

// ibmFloat64 converts a big-endian IBM System/360 hexadecimal double to
// IEEE 754. The IBM layout is 1 sign bit, a 7-bit base-16 exponent biased
// by 64, and a 56-bit fraction with no implicit leading bit.
func ibmFloat64(bits uint64) float64 {
	sign := bits & 0x8000000000000000
	exp := (bits >> 56) & 0x7f
	frac := bits & 0x00ffffffffffffff

	// A zero fraction is zero regardless of the exponent byte. SAS writes
	// all-zero fields for missing numeric values.
	if frac == 0 {
		return math.Float64frombits(sign)
	}

	// Base-16 normalization guarantees a nonzero leading nibble. Align the
	// top set bit to position 52, where IEEE's implicit 1 lives.
	var shift uint64
	switch {
	case frac&0x0080000000000000 != 0:
		shift = 3
	case frac&0x0040000000000000 != 0:
		shift = 2
	case frac&0x0020000000000000 != 0:
		shift = 1
	}
	frac >>= shift
	frac &= 0x000fffffffffffff

	e := (int64(exp)-65)*4 + int64(shift) + 1023
	return math.Float64frombits(sign | uint64(e)<<52 | frac)
}
