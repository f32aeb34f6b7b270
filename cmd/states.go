package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/cars24/connector-cli/pkg/hubspot"
)

var statesCmd = &cobra.Command{
	Use:   "states",
	Short: "List the vehicle location values accepted by --state",
	Long:  "Fetches the selectable options of the car location deal property from the CRM, falling back to the Australian states when the lookup fails.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.HubSpot.Token == "" {
			return eris.New("hubspot token is required (CONNECTOR_HUBSPOT_TOKEN)")
		}

		crm := hubspot.NewClient(cfg.HubSpot.Token,
			hubspot.WithBaseURL(cfg.HubSpot.BaseURL),
			hubspot.WithRateLimit(float64(cfg.HubSpot.RateLimitRPS)),
		)

		options := crm.DealPropertyOptions(cmd.Context(), "car_location_at_time_of_sale")

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "VALUE\tLABEL")
		for _, opt := range options {
			fmt.Fprintf(w, "%s\t%s\n", opt.Value, opt.Label)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(statesCmd)
}
