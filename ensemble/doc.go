// Package ensemble post-processes fit results into confidence intervals.
//
// Two paths exist, selected by the solver family that produced a result:
//
//   - Ensemble results (affine-invariant sampler) use percentiles of the
//     flattened chain, optionally after walker clustering.
//   - Least-squares results delegate to a NativeEstimator, the solver's own
//     profile-likelihood routine.
//
// # Walker clustering
//
// Walkers that never reached the dominant probability mode drag the percentile
// tails. Cluster ranks walkers by mean negative log-probability and cuts the
// ranking at the first gap larger than constant times the average gap from the
// best walker:
//
//	diff[i]    = s[i+1] - s[i]
//	avgDiff[i] = (s[i+1] - s[0]) / (i+1)
//	cut        = first i with diff[i] > constant·avgDiff[i], else W
//
// The constant has no default; callers pass it explicitly (100 is the customary
// value). A cut at rank i needs constant < i+1, so small ensembles need a
// constant well below their walker count.
//
// # Confidence intervals
//
// ConfInterval computes, for each varying parameter, the values at the seven
// quantile levels of a normal distribution's ±3σ, ±2σ, ±1σ points and the
// median (see Levels). Interval.Bounds(σ) then returns the symmetric pair
// around the median entry.
//
//	clustered, err := ensemble.Cluster(res, 100)
//	if err != nil {
//	    return err
//	}
//	ci, err := ensemble.ConfInterval(res, clustered)
//	lo, hi, err := ci["km"].Bounds(2)
package ensemble
