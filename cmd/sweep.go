package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/kilianp07/bessim/app"
	"github.com/kilianp07/bessim/core/model"
	"github.com/kilianp07/bessim/core/sweep"
	"github.com/kilianp07/bessim/pkg/export"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run many simulations concurrently",
}

var sizingOut string

var sizingCmd = &cobra.Command{
	Use:   "sizing",
	Short: "Run the strategy against every battery in the configured grid",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(func(ctx context.Context, svc *app.Service) error {
			out, err := svc.Size(ctx)
			if err != nil {
				return err
			}
			summaries := make([]model.RunSummary, 0, len(out))
			for _, o := range out {
				if o.Report != nil {
					summaries = append(summaries, o.Report.Summary())
				}
			}
			w := cmd.OutOrStdout()
			if sizingOut != "" {
				f, err := os.Create(sizingOut)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			if err := export.WriteSummariesCSV(w, summaries); err != nil {
				return err
			}
			if best, ok := sweep.Best(out); ok {
				cmd.PrintErrf("best feasible: %.2f MW x %.2f h (%s, %s)\n",
					best.Job.Config.PowerMW, best.Job.Config.DurationHours,
					best.Job.Config.Technology, best.Job.Config.Topology)
			} else {
				cmd.PrintErrln("no feasible configuration in grid")
			}
			return nil
		})
	},
}

var monteCarloCmd = &cobra.Command{
	Use:   "montecarlo",
	Short: "Run the configured battery on perturbed solar profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(func(ctx context.Context, svc *app.Service) error {
			res, err := svc.MonteCarlo(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		})
	},
}

func init() {
	sizingCmd.Flags().StringVarP(&sizingOut, "out", "o", "", "write the summaries CSV to a file")
	sweepCmd.AddCommand(sizingCmd, monteCarloCmd)
	rootCmd.AddCommand(sweepCmd)
}
