package main

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/arloliu/impfit/ensemble"
	"github.com/arloliu/impfit/fit"
)

func writeIntervals(w io.Writer, id string, res *fit.Result, ci map[string]ensemble.Interval, sigma int) error {
	names := make([]string, 0, len(ci))
	for name := range ci {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintf(w, "%s (%s, %d sigma)\n", id, res.Solver, sigma)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PARAM\tBEST\tLOWER\tUPPER")
	for _, name := range names {
		lo, hi, err := ci[name].Bounds(sigma)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		fmt.Fprintf(tw, "%s\t%.6g\t%.6g\t%.6g\n", name, res.BestValues[name], lo, hi)
	}

	return tw.Flush()
}
