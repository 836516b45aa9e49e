package analytics

import (
	"math"

	"github.com/shopspring/decimal"
)

// DefaultRatioCap is the ceiling for percentage ratios such as response rate.
const DefaultRatioCap = 100

var half = decimal.NewFromFloat(0.5)

// Round rounds x half up at the given number of decimal places, in decimal
// arithmetic so that values like 2.675 round the way they read.
// NaN and infinities round to 0.
func Round(x float64, places int32) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	r := decimal.NewFromFloat(x).Shift(places).Add(half).Floor().Shift(-places)
	f, _ := r.Float64()
	return f
}

// Ratio is numerator/denominator as a percentage, rounded to one decimal
// place and capped at 100. A non-positive denominator yields 0.
func Ratio(numerator, denominator float64) float64 {
	return RatioWith(numerator, denominator, DefaultRatioCap, 1)
}

// RatioWith is Ratio with an explicit cap and precision.
func RatioWith(numerator, denominator, capAt float64, places int32) float64 {
	if !(denominator > 0) {
		return 0
	}
	v := Round(numerator/denominator*100, places)
	if v > capAt {
		return capAt
	}
	return v
}

// Delta is the whole-number percentage change from previous to current.
//
// A zero previous value has no defined relative change; Delta reports 100
// when current is positive and 0 otherwise.
func Delta(current, previous float64) float64 {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	return Round((current-previous)/previous*100, 0)
}

// Change is the difference between two already-rounded figures, kept at one
// decimal place.
func Change(current, previous float64) float64 {
	return Round(current-previous, 1)
}
