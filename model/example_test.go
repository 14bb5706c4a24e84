package model_test

import (
	"fmt"

	"github.com/arloliu/impfit/model"
)

func ExampleRegistry_ParseClass() {
	reg := model.Builtin()

	class, err := reg.ParseClass("B")
	if err != nil {
		panic(err)
	}

	for stage := 1; stage < class.Stages; stage++ {
		fmt.Printf("stage %d freezes %v\n", stage+1, class.FreezeBefore(stage))
	}
	// Output:
	// stage 2 freezes [k e]
	// stage 3 freezes [km em]
	// stage 4 freezes [kcp]
}
