package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/kilianp07/bessim/app"
)

var flatMW float64

var sizeCmd = &cobra.Command{
	Use:   "size",
	Short: "Suggest a battery that flattens the solar profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(func(ctx context.Context, svc *app.Service) error {
			s, err := svc.SuggestSizing(ctx, flatMW)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), s)
		})
	},
}

func init() {
	sizeCmd.Flags().Float64Var(&flatMW, "flat-mw", 0, "target flat delivery in MW (default: mean solar)")
	rootCmd.AddCommand(sizeCmd)
}
