package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	remindersDate  string
	remindersState string
	remindersSend  bool
)

var remindersCmd = &cobra.Command{
	Use:   "reminders",
	Short: "Send test-drive reminder SMS for a booking date",
	Long:  "Fetches deals booked for the target date, filters and dedupes them, assigns customers to rostered associates, drafts reminder SMS and optionally sends them.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		date, err := parseDateFlag(remindersDate, env.Loc)
		if err != nil {
			return err
		}

		associates, err := loadRoster()
		if err != nil {
			return eris.Wrap(err, "load roster")
		}
		zap.L().Info("roster loaded", zap.Int("associates", len(associates)))

		res, err := env.Pipeline.Reminders(ctx, date, remindersState, associates, remindersSend)
		if err != nil {
			return eris.Wrap(err, "reminders")
		}

		printResult(os.Stdout, res)
		writeAudit(res, date.Format("2006-01-02"))
		return nil
	},
}

func init() {
	remindersCmd.Flags().StringVar(&remindersDate, "date", "", "booking date YYYY-MM-DD (default today)")
	remindersCmd.Flags().StringVar(&remindersState, "state", "", "filter by car location state (e.g. VIC)")
	remindersCmd.Flags().BoolVar(&remindersSend, "send", false, "actually send SMS (preview only without it)")
	rootCmd.AddCommand(remindersCmd)
}
