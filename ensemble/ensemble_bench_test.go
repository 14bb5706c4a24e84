package ensemble

import (
	"math/rand/v2"
	"testing"
)

func benchLnProb(walkers int) []float64 {
	rng := rand.New(rand.NewPCG(1, 2))
	lnprob := make([]float64, walkers)
	for w := range lnprob {
		lnprob[w] = -rng.Float64()
		if w%10 == 0 {
			lnprob[w] -= 1e4
		}
	}

	return lnprob
}

func BenchmarkCutoff(b *testing.B) {
	scores := benchLnProb(1000)
	for i := range scores {
		scores[i] = -scores[i]
	}

	b.ReportAllocs()
	for b.Loop() {
		Cutoff(scores, DefaultClusterConstant)
	}
}

func BenchmarkCluster(b *testing.B) {
	res := syntheticResult(500, benchLnProb(200))

	b.ReportAllocs()
	for b.Loop() {
		if _, err := Cluster(res, DefaultClusterConstant); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkConfInterval(b *testing.B) {
	res := syntheticResult(500, benchLnProb(200))

	b.ReportAllocs()
	for b.Loop() {
		if _, err := ConfInterval(res, nil); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkAutocorrelation(b *testing.B) {
	rng := rand.New(rand.NewPCG(3, 4))
	x := make([]float64, 4096)
	for i := range x {
		x[i] = rng.NormFloat64()
	}

	b.ReportAllocs()
	for b.Loop() {
		Autocorrelation(x)
	}
}
