package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cars24/connector-cli/internal/export"
	"github.com/cars24/connector-cli/internal/pipeline"
)

var (
	unsoldFrom  string
	unsoldTo    string
	unsoldState string
)

var unsoldCmd = &cobra.Command{
	Use:   "unsold",
	Short: "Summarize unsold test drives with LLM analysis",
	Long:  "Fetches conducted deals in the date range, consolidates each customer's CRM notes, analyzes why the sale stalled and prints a weekly category breakdown.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		from, to, err := parseRangeFlags(unsoldFrom, unsoldTo, env.Loc)
		if err != nil {
			return err
		}

		records, res, err := env.Pipeline.Unsold(ctx, from, to, unsoldState)
		if err != nil {
			return eris.Wrap(err, "unsold")
		}

		fmt.Printf("unsold: fetched %d deals, %d customers\n\n", res.Fetched, len(records))
		fmt.Print(pipeline.RenderWeeklyBreakdown(pipeline.WeeklyBreakdown(records)))

		if cfg.Pipeline.AuditDir != "" {
			name := fmt.Sprintf("unsold_%s_%s.csv", from.Format("2006-01-02"), to.Format("2006-01-02"))
			path, err := export.WriteUnsold(cfg.Pipeline.AuditDir, name, records)
			if err != nil {
				zap.L().Warn("unsold export failed", zap.Error(err))
			} else if path != "" {
				fmt.Fprintf(os.Stderr, "Summary written to %s\n", path)
			}
		}
		return nil
	},
}

func init() {
	unsoldCmd.Flags().StringVar(&unsoldFrom, "from", "", "range start YYYY-MM-DD (default lookback window)")
	unsoldCmd.Flags().StringVar(&unsoldTo, "to", "", "range end YYYY-MM-DD (default today)")
	unsoldCmd.Flags().StringVar(&unsoldState, "state", "", "filter by car location state (e.g. VIC)")
	rootCmd.AddCommand(unsoldCmd)
}
