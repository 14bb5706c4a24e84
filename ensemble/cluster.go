package ensemble

import (
	"fmt"
	"math"
	"slices"

	"github.com/arloliu/impfit/errs"
	"github.com/arloliu/impfit/fit"
)

// DefaultClusterConstant is the customary cutoff sensitivity. Cluster does not
// apply it implicitly. It only discards walkers from ensembles larger than 101
// walkers; see Cutoff.
const DefaultClusterConstant = 100.0

// Clustered is the retained part of an ensemble chain.
type Clustered struct {
	// Walkers lists the retained walker indices, best (lowest score) first.
	Walkers []int
	// Cut is the number of retained walkers.
	Cut int
	// Scores holds the mean negative log-probability of every walker, in
	// original walker order.
	Scores []float64
	// Chain holds the retained samples indexed [walker][iteration][param],
	// walkers in the order of Walkers.
	Chain [][][]float64
	// Flat holds every retained sample, walker-major, columns in VarNames order.
	Flat [][]float64
	// VarNames names the columns of Flat.
	VarNames []string
}

// Discarded returns the number of dropped walkers.
func (c *Clustered) Discarded() int {
	return len(c.Scores) - c.Cut
}

// Cutoff ranks scores ascending and returns the number of walkers to keep and
// the ranking.
//
// The cut is the first rank i where the gap to the next walker exceeds
// constant times the average gap from the best walker to walker i+1; the
// walkers ranked [0, i) are kept. When no gap qualifies every walker is kept,
// which also covers a single walker and identical scores. Since the gap at
// rank i is part of the average, constants below 1 may cut at rank 0.
//
// The same fact bounds the gap at rank i by (i+1) times the average, so a cut
// at rank i needs constant < i+1. With constant 100 nothing is discarded from
// an ensemble of 101 walkers or fewer; small ensembles need a small constant.
// NaN scores rank last. The ranking is stable, so walkers with equal scores
// keep their original order.
//
// Parameters:
//   - scores: Per-walker scores (lower is better)
//   - constant: Cutoff sensitivity; callers must pass a positive value
//
// Returns:
//   - int: Number of retained walkers
//   - []int: Walker indices sorted by ascending score
func Cutoff(scores []float64, constant float64) (int, []int) {
	w := len(scores)
	order := make([]int, w)
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return compareScores(scores[a], scores[b])
	})

	if w <= 1 {
		return w, order
	}

	l0 := scores[order[0]]
	for i := 0; i < w-1; i++ {
		next := scores[order[i+1]]
		diff := next - scores[order[i]]
		avg := (next - l0) / float64(i+1)
		if diff > constant*avg {
			return i, order
		}
	}

	return w, order
}

// compareScores orders ascending with NaN after every number.
func compareScores(a, b float64) int {
	aNaN, bNaN := math.IsNaN(a), math.IsNaN(b)
	switch {
	case aNaN && bNaN:
		return 0
	case aNaN:
		return 1
	case bNaN:
		return -1
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// WalkerScores returns the mean negative log-probability of every walker.
func WalkerScores(lnprob [][]float64) []float64 {
	if len(lnprob) == 0 {
		return nil
	}

	scores := make([]float64, len(lnprob[0]))
	for _, step := range lnprob {
		for w, lp := range step {
			scores[w] -= lp
		}
	}
	n := float64(len(lnprob))
	for w := range scores {
		scores[w] /= n
	}

	return scores
}

// Cluster discards walkers stuck away from the dominant mode of res's chain.
//
// Parameters:
//   - res: Ensemble result with Chain and LnProb
//   - constant: Cutoff sensitivity (> 0), see Cutoff
//
// Returns:
//   - *Clustered: Retained walkers, their chain and the flat sample matrix
//   - error: errs.ErrInvalidConstant, errs.ErrNotEnsembleResult, errs.ErrNoChain
//     or errs.ErrShapeMismatch
func Cluster(res *fit.Result, constant float64) (*Clustered, error) {
	if math.IsNaN(constant) || constant <= 0 {
		return nil, fmt.Errorf("%w: clustering constant must be positive, got %g", errs.ErrInvalidConstant, constant)
	}
	if res == nil || !res.IsEnsemble() {
		return nil, errs.ErrNotEnsembleResult
	}
	if err := checkChain(res); err != nil {
		return nil, err
	}

	scores := WalkerScores(res.LnProb)
	cut, order := Cutoff(scores, constant)
	retained := slices.Clone(order[:cut])

	steps := len(res.Chain)
	chain := make([][][]float64, len(retained))
	flat := make([][]float64, 0, len(retained)*steps)
	for i, w := range retained {
		chain[i] = make([][]float64, steps)
		for t := range steps {
			sample := slices.Clone(res.Chain[t][w])
			chain[i][t] = sample
			flat = append(flat, sample)
		}
	}

	return &Clustered{
		Walkers:  retained,
		Cut:      cut,
		Scores:   scores,
		Chain:    chain,
		Flat:     flat,
		VarNames: slices.Clone(res.VarNames),
	}, nil
}

// checkChain validates the chain and log-probability shapes of res.
func checkChain(res *fit.Result) error {
	if len(res.Chain) == 0 || len(res.LnProb) == 0 {
		return errs.ErrNoChain
	}
	if len(res.Chain) != len(res.LnProb) {
		return fmt.Errorf("%w: %d chain steps, %d log-probability steps",
			errs.ErrShapeMismatch, len(res.Chain), len(res.LnProb))
	}

	walkers := len(res.Chain[0])
	if walkers == 0 {
		return errs.ErrNoChain
	}
	for t := range res.Chain {
		if len(res.Chain[t]) != walkers || len(res.LnProb[t]) != walkers {
			return fmt.Errorf("%w: step %d has %d walkers and %d log-probabilities, want %d",
				errs.ErrShapeMismatch, t, len(res.Chain[t]), len(res.LnProb[t]), walkers)
		}
		for w, sample := range res.Chain[t] {
			if len(sample) != len(res.VarNames) {
				return fmt.Errorf("%w: step %d walker %d has %d values for %d parameters",
					errs.ErrShapeMismatch, t, w, len(sample), len(res.VarNames))
			}
		}
	}

	return nil
}
