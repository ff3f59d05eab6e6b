package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func (c *cli) banksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "banks",
		Short: "List the supported statement layouts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tPREFIX\tDATE LAYOUTS\tAMOUNT PATTERNS")
			for _, p := range c.registry.Profiles() {
				layouts := make([]string, 0, len(p.DateFormats))
				for _, df := range p.DateFormats {
					layouts = append(layouts, df.Layout)
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
					p.Bank, p.Name, p.ReferencePrefix,
					strings.Join(layouts, ", "), strings.Join(p.AmountPatterns, ", "))
			}
			return tw.Flush()
		},
	}
}
