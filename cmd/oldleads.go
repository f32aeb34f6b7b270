package main

import (
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var (
	oldleadsAppointment string
	oldleadsSend        bool
)

var oldleadsCmd = &cobra.Command{
	Use:   "oldleads",
	Short: "Re-engage the old leads attached to an appointment",
	Long:  "Fetches every deal sharing an appointment ID, drops customers who are actively buying or have a future booking, and drafts stage-aware outreach SMS.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		today := time.Now().In(env.Loc)
		res, err := env.Pipeline.OldLeads(ctx, oldleadsAppointment, today, oldleadsSend)
		if err != nil {
			return eris.Wrap(err, "oldleads")
		}

		printResult(os.Stdout, res)
		writeAudit(res, today.Format("2006-01-02"))
		return nil
	},
}

func init() {
	oldleadsCmd.Flags().StringVar(&oldleadsAppointment, "appointment-id", "", "appointment ID to look up (required)")
	oldleadsCmd.Flags().BoolVar(&oldleadsSend, "send", false, "actually send SMS (preview only without it)")
	_ = oldleadsCmd.MarkFlagRequired("appointment-id")
	rootCmd.AddCommand(oldleadsCmd)
}
