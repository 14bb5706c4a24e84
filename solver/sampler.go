package solver

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"slices"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"github.com/arloliu/impfit/ensemble"
	"github.com/arloliu/impfit/errs"
	"github.com/arloliu/impfit/fit"
)

const (
	// stretchScale is the stretch move parameter a.
	stretchScale = 2.0
	// initSpread scales the Gaussian ball around the starting values.
	initSpread = 1e-4
)

// Sampler is an affine-invariant ensemble sampler (stretch move).
//
// The log-probability of a position is -½·Σr² inside the parameter bounds and
// -Inf outside.
type Sampler struct {
	cfg Config
}

var _ fit.Solver = (*Sampler)(nil)

// Name returns "emcee".
func (s *Sampler) Name() string { return NameEmcee }

// Family returns fit.FamilyEnsemble.
func (s *Sampler) Family() fit.Family { return fit.FamilyEnsemble }

// Fit samples the posterior of the varying parameters of p.
//
// The stored chain skips Burn steps and keeps every Thin-th step after that.
// Best values are the per-parameter medians of the stored chain; Stderr holds
// half the 15.87–84.13 percentile distance.
func (s *Sampler) Fit(ctx context.Context, p fit.Problem) (*fit.Result, error) {
	obj, err := newObjective(p)
	if err != nil {
		return nil, err
	}

	ndim := len(obj.names)
	nw := s.cfg.Walkers
	if nw < 2*ndim {
		return nil, fmt.Errorf("%w: %d walkers for %d varying parameters, need at least %d",
			errs.ErrInvalidSampler, nw, ndim, 2*ndim)
	}

	rng := rand.New(rand.NewPCG(s.cfg.Seed, s.cfg.Seed^0x9e3779b97f4a7c15))

	pos := s.initialPositions(obj, rng)
	lnp := make([]float64, nw)
	if err := s.evaluate(ctx, obj, pos, lnp); err != nil {
		return nil, err
	}

	kept := (s.cfg.Steps - s.cfg.Burn + s.cfg.Thin - 1) / s.cfg.Thin
	chain := make([][][]float64, 0, kept)
	lnprob := make([][]float64, 0, kept)
	accepted := make([]int, nw)

	half := nw / 2
	halves := [2][2]int{{0, half}, {half, nw}}
	proposals := make([][]float64, nw)
	zs := make([]float64, nw)
	propLnp := make([]float64, nw)

	for step := range s.cfg.Steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		for h, bounds := range halves {
			other := halves[1-h]
			lo, hi := bounds[0], bounds[1]

			for k := lo; k < hi; k++ {
				j := other[0] + rng.IntN(other[1]-other[0])
				z := math.Pow((stretchScale-1)*rng.Float64()+1, 2) / stretchScale
				zs[k] = z

				y := make([]float64, ndim)
				for d := range ndim {
					y[d] = pos[j][d] + z*(pos[k][d]-pos[j][d])
				}
				proposals[k] = y
			}

			if err := s.evaluate(ctx, obj, proposals[lo:hi], propLnp[lo:hi]); err != nil {
				return nil, err
			}

			for k := lo; k < hi; k++ {
				q := float64(ndim-1)*math.Log(zs[k]) + propLnp[k] - lnp[k]
				if math.Log(rng.Float64()) < q {
					pos[k] = proposals[k]
					lnp[k] = propLnp[k]
					accepted[k]++
				}
			}
		}

		if step >= s.cfg.Burn && (step-s.cfg.Burn)%s.cfg.Thin == 0 {
			snapshot := make([][]float64, nw)
			for w := range pos {
				snapshot[w] = slices.Clone(pos[w])
			}
			chain = append(chain, snapshot)
			lnprob = append(lnprob, slices.Clone(lnp))
		}
	}

	return s.result(p, obj, chain, lnprob, accepted)
}

// initialPositions scatters the walkers around the starting values:
// v + 1e-4·N(0,1)·max(|v|, 1), clipped into the bounds.
func (s *Sampler) initialPositions(obj *objective, rng *rand.Rand) [][]float64 {
	start := obj.initial()
	pos := make([][]float64, s.cfg.Walkers)
	for w := range pos {
		pos[w] = make([]float64, len(start))
		for d, v := range start {
			x := v + initSpread*rng.NormFloat64()*math.Max(math.Abs(v), 1)
			pos[w][d] = obj.params[d].Clip(x)
		}
	}

	return pos
}

// evaluate fills out with the log-probability of every position, using up to
// cfg.Workers goroutines. Each goroutine writes only its own slot.
func (s *Sampler) evaluate(ctx context.Context, obj *objective, positions [][]float64, out []float64) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Workers)

	for i, x := range positions {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = s.lnProb(obj, x)
			return nil
		})
	}

	return g.Wait()
}

func (s *Sampler) lnProb(obj *objective, x []float64) float64 {
	if !obj.inBounds(x) {
		return math.Inf(-1)
	}

	chi2 := obj.chi2(x)
	if math.IsInf(chi2, 1) {
		return math.Inf(-1)
	}

	return -0.5 * chi2
}

func (s *Sampler) result(p fit.Problem, obj *objective, chain [][][]float64, lnprob [][]float64, accepted []int) (*fit.Result, error) {
	ndim := len(obj.names)
	medians := make([]float64, ndim)
	stderr := make(map[string]float64, ndim)

	column := make([]float64, 0, len(chain)*s.cfg.Walkers)
	for d, name := range obj.names {
		column = column[:0]
		for _, step := range chain {
			for _, sample := range step {
				column = append(column, sample[d])
			}
		}
		slices.Sort(column)
		medians[d] = ensemble.Percentile(column, 0.5)
		lo := ensemble.Percentile(column, ensemble.Levels[2])
		hi := ensemble.Percentile(column, ensemble.Levels[4])
		stderr[name] = 0.5 * (hi - lo)
	}

	best, err := obj.best(medians)
	if err != nil {
		return nil, err
	}
	res, err := fit.Summarize(p, best, NameEmcee, fit.FamilyEnsemble)
	if err != nil {
		return nil, err
	}

	steps := float64(s.cfg.Steps)
	res.AcceptanceFraction = make([]float64, len(accepted))
	for w, n := range accepted {
		res.AcceptanceFraction[w] = float64(n) / steps
	}
	meanAcc := stat.Mean(res.AcceptanceFraction, nil)

	res.MaxLnProb = math.Inf(-1)
	for _, step := range lnprob {
		for _, lp := range step {
			res.MaxLnProb = math.Max(res.MaxLnProb, lp)
		}
	}

	res.Chain = chain
	res.LnProb = lnprob
	res.Stderr = stderr
	res.NFev = int(obj.nfev.Load())
	res.Outcome = fit.Outcome{
		Message: fmt.Sprintf("mean acceptance fraction %.3f over %d walkers and %d steps",
			meanAcc, s.cfg.Walkers, s.cfg.Steps),
		Source:    "acceptance",
		Converged: meanAcc > 0,
	}

	s.cfg.Logger.Debug("ensemble sampling finished",
		zap.Int("walkers", s.cfg.Walkers),
		zap.Int("steps", s.cfg.Steps),
		zap.Int("stored", len(chain)),
		zap.Float64("acceptance", meanAcc))

	return res, nil
}
