package analysis

import (
	"errors"
	"math"
)

// ErrNoNumericValues is returned when a column holds no parseable number at all.
var ErrNoNumericValues = errors.New("column has no numeric values")

// Normalized is the outcome of coercing and normalizing one column.
type Normalized struct {
	Values   []float64
	Filled   int  // missing entries replaced by the column mean
	Rescaled bool // min-max rescaling was applied
	Before   Stats
}

// FillMean replaces NaN entries in place with the mean of the valid entries and
// returns how many were replaced. If no entry is valid it returns ErrNoNumericValues
// and leaves vals untouched.
func FillMean(vals []float64) (int, error) {
	st := Summarize(vals)
	if st.Count == 0 {
		return 0, ErrNoNumericValues
	}
	filled := 0
	for i, v := range vals {
		if math.IsNaN(v) {
			vals[i] = st.Mean
			filled++
		}
	}
	return filled, nil
}

// RescaleUnit rescales vals in place to [0,1] using observed min/max, but only if
// some value lies outside [0,1]. A constant out-of-range column maps to neutral.
// It reports whether rescaling happened.
func RescaleUnit(vals []float64, neutral float64) bool {
	st := Summarize(vals)
	if st.Count == 0 || (st.Min >= 0 && st.Max <= 1) {
		return false
	}
	span := st.Max - st.Min
	for i, v := range vals {
		if span == 0 {
			vals[i] = neutral
			continue
		}
		vals[i] = (v - st.Min) / span
	}
	return true
}

// NormalizeScore coerces raw cells, fills missing entries with the mean and
// rescales into [0,1] when needed. Applying it to its own output is a no-op.
func NormalizeScore(raw []string, nf NumberFormat, neutral float64) (Normalized, error) {
	vals := Coerce(raw, nf)
	before := Summarize(vals)
	filled, err := FillMean(vals)
	if err != nil {
		return Normalized{}, err
	}
	rescaled := RescaleUnit(vals, neutral)
	return Normalized{Values: vals, Filled: filled, Rescaled: rescaled, Before: before}, nil
}

// NormalizeQuantity coerces raw cells and fills missing entries with the mean.
// No rescaling: square footage keeps its units.
func NormalizeQuantity(raw []string, nf NumberFormat) (Normalized, error) {
	vals := Coerce(raw, nf)
	before := Summarize(vals)
	filled, err := FillMean(vals)
	if err != nil {
		return Normalized{}, err
	}
	return Normalized{Values: vals, Filled: filled, Before: before}, nil
}

// Complement returns 1-v for each value; risk in [0,1] becomes safety in [0,1].
func Complement(vals []float64) []float64 {
	out := make([]float64, len(vals))
	for i, v := range vals {
		out[i] = 1 - v
	}
	return out
}

// Constant returns n copies of v.
func Constant(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}
