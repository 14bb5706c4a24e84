package ensemble

import (
	"fmt"
	"math"
	"slices"

	"github.com/arloliu/impfit/errs"
	"github.com/arloliu/impfit/fit"
)

// Levels are the quantile levels of the ±3σ, ±2σ, ±1σ points of a normal
// distribution and its median, in ascending order.
var Levels = [7]float64{
	0.5 * (1 - 0.9973002039367398),
	0.5 * (1 - 0.9544997361036416),
	0.5 * (1 - 0.6826894921370859),
	0.5,
	0.5 * (1 + 0.6826894921370859),
	0.5 * (1 + 0.9544997361036416),
	0.5 * (1 + 0.9973002039367398),
}

const medianIndex = 3

// Quantile is one (level, value) pair of an Interval.
type Quantile struct {
	Level float64
	Value float64
}

// Interval holds the seven quantiles of one parameter, ordered by level.
type Interval []Quantile

// NewInterval pairs values with Levels.
func NewInterval(values [7]float64) Interval {
	iv := make(Interval, len(Levels))
	for i, level := range Levels {
		iv[i] = Quantile{Level: level, Value: values[i]}
	}

	return iv
}

// Bounds returns the lower and upper value at sigma standard deviations,
// i.e. entries [3-sigma] and [3+sigma].
//
// Returns errs.ErrInvalidSigma unless sigma is 1, 2 or 3.
func (iv Interval) Bounds(sigma int) (float64, float64, error) {
	if sigma < 1 || sigma > 3 {
		return 0, 0, fmt.Errorf("%w: got %d", errs.ErrInvalidSigma, sigma)
	}
	if len(iv) != len(Levels) {
		return 0, 0, fmt.Errorf("%w: interval has %d entries", errs.ErrShapeMismatch, len(iv))
	}

	return iv[medianIndex-sigma].Value, iv[medianIndex+sigma].Value, nil
}

// Median returns the value of the median entry, NaN for a malformed interval.
func (iv Interval) Median() float64 {
	if len(iv) != len(Levels) {
		return math.NaN()
	}

	return iv[medianIndex].Value
}

// Percentile returns the q-quantile (0 ≤ q ≤ 1) of sorted data using linear
// interpolation between closest ranks:
//
//	h = (n-1)·q,  v = x[⌊h⌋] + (h-⌊h⌋)·(x[⌊h⌋+1] - x[⌊h⌋])
//
// sorted must be in ascending order. Empty input yields NaN.
func Percentile(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}

	h := float64(n-1) * q
	lo := int(math.Floor(h))
	if lo < 0 {
		return sorted[0]
	}
	if lo >= n-1 {
		return sorted[n-1]
	}

	return sorted[lo] + (h-float64(lo))*(sorted[lo+1]-sorted[lo])
}

// Quantiles returns the values at every level of Levels for unsorted samples.
func Quantiles(samples []float64) [7]float64 {
	sorted := slices.Clone(samples)
	slices.Sort(sorted)

	var out [7]float64
	for i, level := range Levels {
		out[i] = Percentile(sorted, level)
	}

	return out
}

// ConfInterval computes percentile intervals for every varying parameter of an
// ensemble result. When clustered is non-nil its flat chain is used, otherwise
// the full chain.
//
// Parameters:
//   - res: Ensemble fit result
//   - clustered: Optional output of Cluster for res
//
// Returns:
//   - map[string]Interval: Interval per varying parameter name
//   - error: errs.ErrNotEnsembleResult, errs.ErrNoChain or errs.ErrShapeMismatch
func ConfInterval(res *fit.Result, clustered *Clustered) (map[string]Interval, error) {
	if res == nil || !res.IsEnsemble() {
		return nil, errs.ErrNotEnsembleResult
	}

	var flat [][]float64
	if clustered != nil {
		flat = clustered.Flat
	} else {
		if err := checkChain(res); err != nil {
			return nil, err
		}
		flat = FlatChain(res.Chain)
	}
	if len(flat) == 0 {
		return nil, errs.ErrNoChain
	}

	out := make(map[string]Interval, len(res.VarNames))
	column := make([]float64, len(flat))
	for j, name := range res.VarNames {
		for i, row := range flat {
			if len(row) != len(res.VarNames) {
				return nil, fmt.Errorf("%w: sample %d has %d values for %d parameters",
					errs.ErrShapeMismatch, i, len(row), len(res.VarNames))
			}
			column[i] = row[j]
		}
		out[name] = NewInterval(Quantiles(column))
	}

	return out, nil
}

// FlatChain flattens an [iteration][walker][param] chain into rows of samples,
// iteration-major.
func FlatChain(chain [][][]float64) [][]float64 {
	var n int
	for _, step := range chain {
		n += len(step)
	}

	out := make([][]float64, 0, n)
	for _, step := range chain {
		out = append(out, step...)
	}

	return out
}
