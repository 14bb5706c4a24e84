package ensemble

import (
	"fmt"
	"math"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/arloliu/impfit/errs"
	"github.com/arloliu/impfit/fit"
)

const (
	// autocorrWindow is the Sokal windowing constant c.
	autocorrWindow = 5.0
	// autocorrTolerance is the minimum chain length in units of τ.
	autocorrTolerance = 50.0
)

// ChainReport summarizes the mixing of an ensemble chain.
type ChainReport struct {
	// AcceptanceFraction is copied from the result, one value per walker.
	AcceptanceFraction []float64
	// MeanAcceptance is the average acceptance fraction.
	MeanAcceptance float64
	// Autocorr is the integrated autocorrelation time per varying parameter.
	Autocorr map[string]float64
	// Steps is the stored chain length.
	Steps int
	// Reliable is false when the chain is shorter than 50·τ for any parameter.
	Reliable bool
}

// Report estimates acceptance and autocorrelation statistics of res's chain.
func Report(res *fit.Result) (*ChainReport, error) {
	if res == nil || !res.IsEnsemble() {
		return nil, errs.ErrNotEnsembleResult
	}
	if err := checkChain(res); err != nil {
		return nil, err
	}

	rep := &ChainReport{
		AcceptanceFraction: res.AcceptanceFraction,
		Autocorr:           make(map[string]float64, len(res.VarNames)),
		Steps:              len(res.Chain),
		Reliable:           true,
	}
	if len(res.AcceptanceFraction) > 0 {
		rep.MeanAcceptance = stat.Mean(res.AcceptanceFraction, nil)
	}

	walkers := res.Walkers()
	series := make([]float64, len(res.Chain))
	for j, name := range res.VarNames {
		var acf []float64
		for w := range walkers {
			for t := range res.Chain {
				series[t] = res.Chain[t][w][j]
			}
			f := Autocorrelation(series)
			if acf == nil {
				acf = f
			} else {
				floats.Add(acf, f)
			}
		}
		floats.Scale(1/float64(walkers), acf)

		tau := IntegratedTime(acf, autocorrWindow)
		rep.Autocorr[name] = tau
		if float64(rep.Steps) < autocorrTolerance*tau {
			rep.Reliable = false
		}
	}

	return rep, nil
}

// Log writes the report to logger, warning when the chain is too short.
func (r *ChainReport) Log(logger *zap.Logger) {
	for name, tau := range r.Autocorr {
		logger.Info("autocorrelation time", zap.String("param", name), zap.Float64("tau", tau))
	}
	logger.Info("acceptance", zap.Float64("mean", r.MeanAcceptance), zap.Int("steps", r.Steps))
	if !r.Reliable {
		logger.Warn(fmt.Sprintf("chain is shorter than %g autocorrelation times, estimates may be unreliable", autocorrTolerance))
	}
}

// Autocorrelation returns the normalized autocorrelation function of x,
// computed with a zero-padded FFT. A constant series yields all zeros after
// lag 0.
func Autocorrelation(x []float64) []float64 {
	n := len(x)
	if n == 0 {
		return nil
	}

	size := 1
	for size < n {
		size <<= 1
	}
	size *= 2

	mean := stat.Mean(x, nil)
	padded := make([]float64, size)
	for i, v := range x {
		padded[i] = v - mean
	}

	fft := fourier.NewFFT(size)
	coeff := fft.Coefficients(nil, padded)
	for i, c := range coeff {
		coeff[i] = complex(real(c)*real(c)+imag(c)*imag(c), 0)
	}
	seq := fft.Sequence(nil, coeff)

	acf := make([]float64, n)
	if seq[0] == 0 {
		acf[0] = 1
		return acf
	}
	for i := range acf {
		acf[i] = seq[i] / seq[0]
	}

	return acf
}

// IntegratedTime returns τ = 2·Σf - 1 evaluated at the smallest window M with
// M ≥ c·τ(M), the automated windowing procedure of Sokal.
func IntegratedTime(acf []float64, c float64) float64 {
	if len(acf) == 0 {
		return math.NaN()
	}

	var cum float64
	taus := make([]float64, len(acf))
	for i, f := range acf {
		cum += f
		taus[i] = 2*cum - 1
		if float64(i) >= c*taus[i] {
			return taus[i]
		}
	}

	return taus[len(taus)-1]
}
