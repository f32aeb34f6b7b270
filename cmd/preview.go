package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/cars24/connector-cli/internal/pipeline"
)

// printResult writes a human-readable summary of a workflow run.
func printResult(out io.Writer, res *pipeline.Result) {
	fmt.Fprintf(out, "%s: fetched %d deals, kept %d customers, removed %d rows\n\n",
		res.Workflow, res.Fetched, len(res.Identities), len(res.Removals))

	if len(res.Messages) > 0 {
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "CUSTOMER\tPHONE\tASSIGNEE\tMESSAGE")
		_, _ = fmt.Fprintln(w, "--------\t-----\t--------\t-------")
		for _, m := range res.Messages {
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				m.Identity.CustomerName, m.Identity.Phone, m.Identity.AssigneeName, clip(m.Body, 80))
		}
		_ = w.Flush()
		fmt.Fprintln(out)
	}

	if len(res.Skipped) > 0 {
		fmt.Fprintf(out, "Skipped %d customers:\n", len(res.Skipped))
		for _, s := range res.Skipped {
			fmt.Fprintf(out, "  %s: %s\n", s.Identity.CustomerName, s.Reason)
		}
		fmt.Fprintln(out)
	}

	if len(res.Dispatches) > 0 {
		sent, failed := 0, 0
		for _, d := range res.Dispatches {
			if d.Sent {
				sent++
			} else {
				failed++
			}
		}
		fmt.Fprintf(out, "Dispatched: %d sent, %d failed\n", sent, failed)
		for _, d := range res.Dispatches {
			if !d.Sent && d.Error != "" {
				fmt.Fprintf(out, "  %s (%s): %s\n", d.Name, d.Phone, d.Error)
			}
		}
	}

	if res.MarkedOK+res.MarkedFail > 0 {
		fmt.Fprintf(out, "CRM marked sent: %d ok, %d failed\n", res.MarkedOK, res.MarkedFail)
	}
	if res.OwnersOK+res.OwnersFail > 0 {
		fmt.Fprintf(out, "CRM owners updated: %d ok, %d failed\n", res.OwnersOK, res.OwnersFail)
	}
	if res.RunID != "" {
		fmt.Fprintf(out, "Run ID: %s\n", res.RunID)
	}
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
