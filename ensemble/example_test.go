package ensemble_test

import (
	"fmt"

	"github.com/arloliu/impfit/ensemble"
)

func ExampleCutoff() {
	// mean negative log-probability per walker; walkers 1 and 4 are stuck
	scores := []float64{0.02, 10.3, 0.00, 0.01, 10.2, 0.03, 0.04, 0.05}

	cut, order := ensemble.Cutoff(scores, 2)
	fmt.Println("cut:", cut)
	fmt.Println("kept:", order[:cut])
	// Output:
	// cut: 5
	// kept: [2 3 0 5 6]
}

func ExampleInterval_Bounds() {
	iv := ensemble.NewInterval([7]float64{0.7, 0.8, 0.9, 1.0, 1.1, 1.2, 1.3})

	lo, hi, err := iv.Bounds(2)
	if err != nil {
		panic(err)
	}
	fmt.Printf("2σ: [%.1f, %.1f]\n", lo, hi)
	// Output:
	// 2σ: [0.8, 1.2]
}
