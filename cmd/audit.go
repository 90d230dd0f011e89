package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/bughunter/bughunter/internal/domain/audit"
)

// auditCmd is the parent command for audit log operations
var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Inspect the append-only audit log",
	Long: `Display entries from the audit log.

Every security-relevant action (scan submission, completion, failure,
rate limit rejection) is recorded with its actor, timestamp and outcome.
The log is append-only; entries are never modified or deleted.`,
}

// auditListCmd lists audit entries
var auditListCmd = &cobra.Command{
	Use:   "list",
	Short: "List audit entries in append order",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		scanID, _ := cmd.Flags().GetString("scan")
		limit, _ := cmd.Flags().GetInt("limit")
		showAll, _ := cmd.Flags().GetBool("all")

		list, err := listEntries(ctx, scanID)
		if err != nil {
			return err
		}

		if len(list) == 0 {
			fmt.Println("No audit entries found")
			return nil
		}

		toShow := list
		if !showAll && limit > 0 && len(list) > limit {
			toShow = list[len(list)-limit:]
			fmt.Printf("Showing last %d entries (use --all to show all %d entries)\n\n", limit, len(list))
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "Timestamp\tActor\tAction\tEntity\tOutcome")
		fmt.Fprintln(w, "---------\t-----\t------\t------\t-------")

		for _, entry := range toShow {
			outcome := colorSuccess("ok")
			if !entry.Success {
				outcome = colorError("failed")
			}
			entity := entry.EntityType
			if entry.EntityID != "" {
				entity += "/" + entry.EntityID
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				entry.Timestamp.Format("2006-01-02 15:04:05"),
				entry.Actor,
				entry.Action,
				entity,
				outcome,
			)
		}

		w.Flush()
		return nil
	},
}

func listEntries(ctx context.Context, scanID string) ([]*audit.Entry, error) {
	if scanID != "" {
		return app.AuditService.ListForEntity(ctx, "scan", scanID)
	}
	return app.AuditService.List(ctx)
}

func init() {
	auditListCmd.Flags().String("scan", "", "Only show entries for one scan ID")
	auditListCmd.Flags().Int("limit", 20, "Number of recent entries to show (0 for all)")
	auditListCmd.Flags().Bool("all", false, "Show all entries")

	auditCmd.AddCommand(auditListCmd)
}
