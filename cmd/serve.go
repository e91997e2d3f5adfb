package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/kilianp07/bessim/app"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the run log and metrics over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(func(ctx context.Context, svc *app.Service) error {
			return svc.Serve(ctx)
		})
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
