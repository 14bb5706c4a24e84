package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/arloliu/impfit/model"
)

func newScheduleCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "schedule",
		Short: "Print the freeze schedule of the built-in model classes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printSchedule(cmd.OutOrStdout(), model.Builtin())
		},
	}
}

func printSchedule(w io.Writer, reg *model.Registry) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CLASS\tALIAS\tSTAGES\tFREEZE")
	for _, c := range reg.Classes() {
		steps := make([]string, 0, len(c.Freeze))
		for i, names := range c.Freeze {
			steps = append(steps, fmt.Sprintf("%d→%d: %s", i+1, i+2, strings.Join(names, ", ")))
		}
		alias := c.Alias
		if alias == "" {
			alias = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", c.Name, alias, c.Stages, strings.Join(steps, "; "))
	}

	return tw.Flush()
}
