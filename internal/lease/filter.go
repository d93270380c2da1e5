package lease

import (
	"math"

	"github.com/KaramelBytes/leasemap/internal/analysis"
)

// Range is an inclusive numeric interval.
type Range struct {
	Low  float64
	High float64
}

// Contains reports whether v lies in [Low, High].
func (r Range) Contains(v float64) bool {
	return v >= r.Low && v <= r.High
}

func (r Range) clamp(v float64) float64 {
	return math.Min(math.Max(v, r.Low), r.High)
}

// Filter selects leases by square footage and score ranges. Bounds are inclusive.
type Filter struct {
	SF     Range
	Safety Range
	Access Range
}

// Apply returns the matching records in input order.
func (f Filter) Apply(records []Record) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if f.SF.Contains(r.SquareFeet) && f.Safety.Contains(r.Safety) && f.Access.Contains(r.Access) {
			out = append(out, r)
		}
	}
	return out
}

// Bounds are the slider limits derived from a dataset. Every SF value a slider
// can take is SF.Low plus a whole number of SFStep.
type Bounds struct {
	SF        Range   // slider limits, up to the largest lease
	SFDefault float64 // initial upper SF value
	SFStep    float64
	Score     Range
	ScoreStep float64
}

// BoundsOptions tunes DefaultBounds.
type BoundsOptions struct {
	Quantile  float64 // initial upper SF quantile, 0.99 by default
	SFStep    float64
	ScoreStep float64
}

// DefaultBoundsOptions returns the explorer defaults.
func DefaultBoundsOptions() BoundsOptions {
	return BoundsOptions{Quantile: 0.99, SFStep: 500, ScoreStep: 0.01}
}

// DefaultBounds derives slider limits. SF starts at floor(min); the slider
// reaches the largest lease and initially stops at floor(quantile). Both upper
// values are rounded up onto the step grid. Scores span [0,1].
func DefaultBounds(records []Record, opt BoundsOptions) Bounds {
	if opt.Quantile <= 0 || opt.Quantile > 1 {
		opt.Quantile = 0.99
	}
	sf := make([]float64, len(records))
	for i, r := range records {
		sf[i] = r.SquareFeet
	}
	st := analysis.Summarize(sf)
	lo := math.Floor(st.Min)
	hi := snapUp(math.Floor(st.Max), lo, opt.SFStep)
	def := snapUp(math.Floor(analysis.Quantile(sf, opt.Quantile)), lo, opt.SFStep)
	return Bounds{
		SF:        Range{Low: lo, High: hi},
		SFDefault: math.Min(def, hi),
		SFStep:    opt.SFStep,
		Score:     Range{Low: 0, High: 1},
		ScoreStep: opt.ScoreStep,
	}
}

// snapUp returns the smallest lo + k*step that is >= v.
func snapUp(v, lo, step float64) float64 {
	if v <= lo {
		return lo
	}
	if step <= 0 {
		return v
	}
	return lo + math.Ceil((v-lo)/step)*step
}

// Filter returns the initial filter: the default SF window and full score ranges.
func (b Bounds) Filter() Filter {
	return Filter{SF: Range{Low: b.SF.Low, High: b.SFDefault}, Safety: b.Score, Access: b.Score}
}

// Clamp pulls f inside the bounds; a reversed range is swapped.
func (b Bounds) Clamp(f Filter) Filter {
	return Filter{
		SF:     clampRange(f.SF, b.SF),
		Safety: clampRange(f.Safety, b.Score),
		Access: clampRange(f.Access, b.Score),
	}
}

func clampRange(r, limit Range) Range {
	lo, hi := limit.clamp(r.Low), limit.clamp(r.High)
	if lo > hi {
		lo, hi = hi, lo
	}
	return Range{Low: lo, High: hi}
}
