// Package bucket computes equal-frequency bucket boundaries for a numeric
// column.
//
// The entry point is Ranges, which turns a sorted slice of values and a
// target bucket count into a list of half-open intervals [Lower, Upper) that
// partition the real line. Values repeated often enough to span several
// quantile cut points are given a bucket of their own and the remaining
// values are re-bucketed recursively.
package bucket

import (
	"fmt"
	"math"
	"sort"
)

// Range is a half-open interval [Lower, Upper).
type Range struct {
	Lower float64
	Upper float64
}

// Contains reports whether Lower <= v < Upper.
func (r Range) Contains(v float64) bool {
	return v >= r.Lower && v < r.Upper
}

// String renders the range as "[lower, upper)".
func (r Range) String() string {
	return fmt.Sprintf("[%g, %g)", r.Lower, r.Upper)
}

// Full is the single range covering the whole real line.
var Full = Range{Lower: math.Inf(-1), Upper: math.Inf(1)}

// FromUnsorted copies and sorts values before calling Ranges.
func FromUnsorted(values []float64, k int) []Range {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	return Ranges(sorted, k)
}

// Ranges returns at most k contiguous ranges over sorted. The first range
// starts at -Inf, the last ends at +Inf and every adjacent pair shares its
// boundary, so each input value falls into exactly one range.
//
// Isolating a repeated value can split its neighbour in two, so the raw
// result may hold more than k ranges. The excess is merged away pairwise,
// always joining the adjacent pair that holds the fewest values.
//
// sorted must be in ascending order and free of NaN. It is not modified.
func Ranges(sorted []float64, k int) []Range {
	return bound(sorted, compute(sorted, k, nil), k)
}

// bound merges adjacent ranges until at most k remain. Ties go to the
// leftmost pair.
func bound(sorted []float64, ranges []Range, k int) []Range {
	if k < 1 {
		k = 1
	}
	for len(ranges) > k {
		best, fewest := 0, -1
		for i := 0; i+1 < len(ranges); i++ {
			n := countIn(sorted, Range{Lower: ranges[i].Lower, Upper: ranges[i+1].Upper})
			if fewest < 0 || n < fewest {
				best, fewest = i, n
			}
		}
		ranges[best].Upper = ranges[best+1].Upper
		ranges = append(ranges[:best+1], ranges[best+2:]...)
	}
	return ranges
}

// countIn returns how many values of sorted fall in r.
func countIn(sorted []float64, r Range) int {
	return sort.SearchFloat64s(sorted, r.Upper) - sort.SearchFloat64s(sorted, r.Lower)
}

func compute(values []float64, k int, excluded map[float64]struct{}) []Range {
	if k <= 1 || len(values) == 0 {
		return []Range{Full}
	}

	ranges := quantiles(values, k)

	// Values spanning a whole quantile bucket become exclusions.
	var degenerate []float64
	seen := make(map[float64]struct{})
	for _, r := range ranges {
		if r.Lower != r.Upper {
			continue
		}
		if _, ok := seen[r.Lower]; ok {
			continue
		}
		if _, ok := excluded[r.Lower]; ok {
			continue
		}
		seen[r.Lower] = struct{}{}
		degenerate = append(degenerate, r.Lower)
	}

	if len(degenerate) > 0 {
		acc := make(map[float64]struct{}, len(excluded)+len(seen))
		for v := range excluded {
			acc[v] = struct{}{}
		}
		for v := range seen {
			acc[v] = struct{}{}
		}

		filtered := make([]float64, 0, len(values))
		for _, v := range values {
			if _, ok := seen[v]; !ok {
				filtered = append(filtered, v)
			}
		}

		ranges = compute(filtered, k-len(degenerate), acc)
		for _, e := range degenerate {
			ranges = isolate(ranges, e, nextHigher(values, e))
		}
	}

	return repair(ranges, values[0])
}

// quantiles splits values at the positions floor(b*n/k).
func quantiles(values []float64, k int) []Range {
	n := len(values)
	out := make([]Range, 0, k)
	for b := 0; b < k; b++ {
		lower := math.Inf(-1)
		if b > 0 {
			lower = values[b*n/k]
		}
		upper := math.Inf(1)
		if b < k-1 {
			upper = values[(b+1)*n/k]
		}
		out = append(out, Range{Lower: lower, Upper: upper})
	}
	return out
}

// nextHigher returns the first value in sorted strictly greater than e, or
// +Inf.
func nextHigher(sorted []float64, e float64) float64 {
	i := sort.Search(len(sorted), func(i int) bool { return sorted[i] > e })
	if i == len(sorted) {
		return math.Inf(1)
	}
	return sorted[i]
}

// isolate splits every range strictly containing e into (lower, e) and
// (next, upper) and appends the singleton range (e, next).
func isolate(ranges []Range, e, next float64) []Range {
	out := make([]Range, 0, len(ranges)+3)
	var split []Range
	for _, r := range ranges {
		if r.Lower < e && r.Upper > e {
			split = append(split, Range{Lower: r.Lower, Upper: e}, Range{Lower: next, Upper: r.Upper})
			continue
		}
		out = append(out, r)
	}
	out = append(out, split...)
	return append(out, Range{Lower: e, Upper: next})
}

// repair sorts ranges, removes empty and dominated ones, closes gaps and pins
// the outer bounds to infinity. min is the smallest value at this level.
func repair(ranges []Range, min float64) []Range {
	sorted := make([]Range, 0, len(ranges))
	for _, r := range ranges {
		if r.Lower < r.Upper {
			sorted = append(sorted, r)
		}
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Lower != sorted[j].Lower {
			return sorted[i].Lower < sorted[j].Lower
		}
		return sorted[i].Upper < sorted[j].Upper
	})
	if len(sorted) == 0 {
		return []Range{Full}
	}

	out := make([]Range, 0, len(sorted))
	for i := 0; i < len(sorted)-1; i++ {
		cur, next := sorted[i], sorted[i+1]
		if cur.Lower == next.Lower {
			continue
		}
		if cur.Upper != next.Lower {
			cur.Upper = next.Lower
		}
		out = append(out, cur)
	}
	out = append(out, sorted[len(sorted)-1])

	// An empty leading bucket is folded into its neighbour.
	if len(out) > 1 && out[0].Upper <= min {
		out = out[1:]
	}

	out[0].Lower = math.Inf(-1)
	out[len(out)-1].Upper = math.Inf(1)
	return out
}
