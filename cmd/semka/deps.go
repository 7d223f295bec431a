package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newDepsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "deps [page]",
		Short: "List the documents a page needs, dependencies first",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var page string
			if len(args) > 0 {
				page = args[0]
			}
			loop, _, err := opts.load(cmd, page)
			if err != nil {
				return err
			}
			tree := loop.Tree()
			order, orderErr := tree.Order()

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, path := range order {
				deps, _ := tree.Dependencies(path)
				fmt.Fprintf(w, "%s\t%s\t%s\n", path, tree.State(path), deps)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			return orderErr
		},
	}
}
