package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var historyCmdLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent tool invocations handled by a running Tool Host",
	Long: "Lists the most recent invocations recorded by the Tool Host, newest first.\n" +
		"The history lives as long as the host process unless the host uses an external database.",
	Args: cobra.NoArgs,
	RunE: runListHistory,
	Annotations: map[string]string{
		"group": string(subCommandGroupAdvanced),
		"order": "1",
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyCmdLimit, "limit", 20, "maximum number of invocations to show")

	rootCmd.AddCommand(historyCmd)
}

func runListHistory(cmd *cobra.Command, args []string) error {
	if historyCmdLimit < 1 {
		return fmt.Errorf("invalid limit %d, must be a positive integer", historyCmdLimit)
	}

	invocations, err := apiClient.ListInvocations(historyCmdLimit)
	if err != nil {
		return fmt.Errorf("failed to list invocations: %w", err)
	}
	if len(invocations) == 0 {
		cmd.Println("No invocations recorded yet")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tTOOL\tOUTCOME\tDURATION\tDETAIL")
	for _, inv := range invocations {
		detail := string(inv.ErrorKind)
		if inv.Message != "" {
			detail = inv.Message
		}
		fmt.Fprintf(
			w,
			"%d\t%s\t%s\t%s\t%dms\t%s\n",
			inv.ID, inv.CreatedAt.Local().Format(time.DateTime), inv.Tool, inv.Outcome, inv.DurationMs, detail,
		)
	}
	return w.Flush()
}
