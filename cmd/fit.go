package cmd

import (
	"fmt"

	"github.com/KaramelBytes/surfloom-cli/internal/surface"
	"github.com/KaramelBytes/surfloom-cli/internal/utils"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	fitData dataFlags
	fitJSON bool
)

type fitResult struct {
	File     string  `json:"file"`
	Formula  string  `json:"formula"`
	A        float64 `json:"a"`
	B        float64 `json:"b"`
	C        float64 `json:"c"`
	RSquared float64 `json:"r_squared"`
	RMSE     float64 `json:"rmse"`
	N        int     `json:"n"`
	Skipped  int     `json:"skipped"`
}

var fitCmd = &cobra.Command{
	Use:   "fit <file>",
	Short: "Fit a least-squares response plane and print its coefficients",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, _, err := loadDataset(args[0], &fitData)
		if err != nil {
			return err
		}
		p, err := surface.Fit(ds)
		if err != nil {
			return err
		}
		logger.Debug("plane fitted", zap.Float64("r_squared", p.RSquared), zap.Int("n", p.N))
		cols := ds.Columns
		if fitJSON {
			b, err := utils.PrettyJSON(fitResult{
				File: ds.Name, Formula: p.FormulaFor(cols.X, cols.Y, cols.Z),
				A: p.A, B: p.B, C: p.C, RSquared: p.RSquared, RMSE: p.RMSE, N: p.N, Skipped: ds.Skipped,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(b))
			return nil
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s\n", p.FormulaFor(cols.X, cols.Y, cols.Z))
		fmt.Fprintf(out, "  A (%s): %.6g\n", cols.X, p.A)
		fmt.Fprintf(out, "  B (%s): %.6g\n", cols.Y, p.B)
		fmt.Fprintf(out, "  C (intercept): %.6g\n", p.C)
		fmt.Fprintf(out, "  R²: %.4f  RMSE: %.4g  n=%d\n", p.RSquared, p.RMSE, p.N)
		printWarnings(out, ds)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(fitCmd)
	fitData.register(fitCmd)
	fitCmd.Flags().BoolVar(&fitJSON, "json", false, "print the fit as JSON")
}
