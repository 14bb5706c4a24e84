package circuit_test

import (
	"fmt"

	"github.com/arloliu/impfit/circuit"
)

func ExampleParse() {
	m, err := circuit.Parse("R + parallel(R_f1, C_f1)", circuit.DefaultConstants())
	if err != nil {
		panic(err)
	}
	fmt.Println(m.ParamNames())

	z, err := m.Evaluate([]float64{1e3}, map[string]float64{"R": 10, "f1_R": 100, "f1_C": 1e-5})
	if err != nil {
		panic(err)
	}
	fmt.Printf("%.2f\n", z[0])
	// Output:
	// [R f1_R f1_C]
	// (60.00-50.00i)
}
