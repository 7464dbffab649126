package entity

import (
	"math"
	"math/bits"
)

// GlobalTimeBase is the tick rate of the common time base every timestamp in
// the pipeline is compared in: one microsecond per tick.
const GlobalTimeBase = 1_000_000

// Rational is a stream time base expressed as Num/Den seconds per tick.
type Rational struct {
	Num int64
	Den int64
}

// RescaleToGlobal converts a timestamp from the given time base into
// GlobalTimeBase ticks.
func RescaleToGlobal(ts int64, tb Rational) int64 {
	return Rescale(ts, tb.Num*GlobalTimeBase, tb.Den)
}

// Rescale computes ts*num/den with a 128-bit intermediate so the product
// cannot overflow, rounding to the nearest tick. Results outside the int64
// range saturate. Integer arithmetic throughout; floating point would drift
// across large segment indices.
func Rescale(ts, num, den int64) int64 {
	neg := false
	if ts < 0 {
		ts, neg = -ts, !neg
	}
	if num < 0 {
		num, neg = -num, !neg
	}
	if den < 0 {
		den, neg = -den, !neg
	}
	if den == 0 {
		if neg {
			return math.MinInt64
		}
		return math.MaxInt64
	}

	hi, lo := bits.Mul64(uint64(ts), uint64(num))
	lo, carry := bits.Add64(lo, uint64(den)/2, 0)
	hi += carry
	if hi >= uint64(den) {
		if neg {
			return math.MinInt64
		}
		return math.MaxInt64
	}
	q, _ := bits.Div64(hi, lo, uint64(den))

	if neg {
		if q > -math.MinInt64 {
			return math.MinInt64
		}
		return -int64(q)
	}
	if q > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(q)
}
