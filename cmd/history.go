package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/bessim/app"
	"github.com/kilianp07/bessim/core/model"
	"github.com/kilianp07/bessim/core/runlog"
)

var (
	historySince    string
	historyStrategy string
	historyValid    bool
	historyLimit    int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List runs recorded in the run log",
	RunE: func(cmd *cobra.Command, args []string) error {
		q := runlog.Query{Strategy: model.StrategyKind(historyStrategy), ValidOnly: historyValid, Limit: historyLimit}
		if historySince != "" {
			d, err := time.ParseDuration(historySince)
			if err != nil {
				return fmt.Errorf("invalid --since: %w", err)
			}
			q.Start = time.Now().Add(-d)
		}
		return withService(func(ctx context.Context, svc *app.Service) error {
			recs, err := svc.History(ctx, q)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), recs)
		})
	},
}

func init() {
	historyCmd.Flags().StringVar(&historySince, "since", "", "only runs newer than this duration, e.g. 24h")
	historyCmd.Flags().StringVar(&historyStrategy, "strategy", "", "filter by strategy")
	historyCmd.Flags().BoolVar(&historyValid, "valid", false, "only valid runs")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 0, "keep only the newest N runs")
	rootCmd.AddCommand(historyCmd)
}
