package cmd

import (
	"fmt"

	"github.com/KaramelBytes/surfloom-cli/internal/quartile"
	"github.com/spf13/cobra"
)

var (
	qData   dataFlags
	qAssign bool
)

var quartilesCmd = &cobra.Command{
	Use:   "quartiles <file>",
	Short: "Compute response quartiles and band counts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, _, err := loadDataset(args[0], &qData)
		if err != nil {
			return err
		}
		q, err := quartile.ComputeQuartiles(ds)
		if err != nil {
			return err
		}
		bands := quartile.Assign(ds, q)
		counts := quartile.Counts(bands)
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s quartiles: q1=%.4g q2=%.4g q3=%.4g\n", ds.Columns.Z, q.Q1, q.Q2, q.Q3)
		for _, b := range quartile.Bands {
			fmt.Fprintf(out, "  %s %s: %d\n", b, b.Hex(), counts[b])
		}
		if qAssign {
			fmt.Fprintln(out)
			for i, o := range ds.Observations {
				name := o.Label
				if name == "" {
					name = fmt.Sprintf("#%d", i+1)
				}
				fmt.Fprintf(out, "- %s: %.4g → %s\n", name, o.Z, bands[i])
			}
		}
		printWarnings(out, ds)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(quartilesCmd)
	qData.register(quartilesCmd)
	quartilesCmd.Flags().BoolVar(&qAssign, "assign", false, "list the band of every observation")
}
