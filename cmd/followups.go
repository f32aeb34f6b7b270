package main

import (
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var (
	followupsFrom  string
	followupsTo    string
	followupsState string
	followupsSend  bool
)

var followupsCmd = &cobra.Command{
	Use:   "followups",
	Short: "Send manager follow-up SMS after conducted test drives",
	Long:  "Fetches deals whose test drive was conducted in the date range and drafts follow-ups signed by the sales manager.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		from, to, err := parseRangeFlags(followupsFrom, followupsTo, env.Loc)
		if err != nil {
			return err
		}
		today := time.Now().In(env.Loc)

		res, err := env.Pipeline.FollowUps(ctx, from, to, today, followupsState, followupsSend)
		if err != nil {
			return eris.Wrap(err, "followups")
		}

		printResult(os.Stdout, res)
		writeAudit(res, to.Format("2006-01-02"))
		return nil
	},
}

// parseRangeFlags resolves a date range, defaulting to the configured
// lookback window ending today.
func parseRangeFlags(fromFlag, toFlag string, loc *time.Location) (time.Time, time.Time, error) {
	to, err := parseDateFlag(toFlag, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if fromFlag == "" {
		return to.AddDate(0, 0, -cfg.Pipeline.LookbackDays), to, nil
	}
	from, err := parseDateFlag(fromFlag, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return from, to, nil
}

func init() {
	followupsCmd.Flags().StringVar(&followupsFrom, "from", "", "range start YYYY-MM-DD (default lookback window)")
	followupsCmd.Flags().StringVar(&followupsTo, "to", "", "range end YYYY-MM-DD (default today)")
	followupsCmd.Flags().StringVar(&followupsState, "state", "", "filter by car location state (e.g. VIC)")
	followupsCmd.Flags().BoolVar(&followupsSend, "send", false, "actually send SMS (preview only without it)")
	rootCmd.AddCommand(followupsCmd)
}
