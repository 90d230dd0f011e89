package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/bughunter/bughunter/internal/domain/report"
)

// reportCmd is the parent command for report handoff operations
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Register report records for completed scans",
	Long: `Create and list report records.

A report record links a finished scan to an externally rendered
artifact. This command emits the scan's finalized findings as JSON for
the rendering pipeline; it does not produce the artifact itself.`,
}

// reportCreateCmd registers a report for a finished scan
var reportCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Register a report for a finished scan and emit its findings",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		scanID, _ := cmd.Flags().GetString("scan")
		if scanID == "" {
			return errors.New("--scan is required")
		}
		format, _ := cmd.Flags().GetString("format")
		output, _ := cmd.Flags().GetString("output")

		rep, findings, err := app.ReportService.Create(ctx, scanID, format, operator)
		if err != nil {
			return err
		}

		out := os.Stdout
		if output != "" && output != "-" {
			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("failed to create output file: %w", err)
			}
			defer f.Close()
			out = f
		}

		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(findings); err != nil {
			return fmt.Errorf("failed to write findings: %w", err)
		}

		fmt.Fprintf(os.Stderr, "%s Report registered: %s (%d findings)\n",
			colorSuccess("✓"), rep.ID, len(findings))
		return nil
	},
}

// reportListCmd lists report records
var reportListCmd = &cobra.Command{
	Use:   "list",
	Short: "List report records",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		scanID, _ := cmd.Flags().GetString("scan")

		list, err := listReports(ctx, scanID)
		if err != nil {
			return err
		}

		if len(list) == 0 {
			fmt.Println("No reports recorded")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "Report ID\tScan ID\tFormat\tCreated By\tCreated")
		fmt.Fprintln(w, "---------\t-------\t------\t----------\t-------")
		for _, rep := range list {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				rep.ID, rep.ScanID, rep.Format, rep.CreatedBy, rep.CreatedAt.Format(time.RFC3339))
		}
		w.Flush()
		return nil
	},
}

func listReports(ctx context.Context, scanID string) ([]*report.Report, error) {
	if scanID != "" {
		return app.ReportService.ListForScan(ctx, scanID)
	}
	return app.ReportService.List(ctx)
}

func init() {
	reportCreateCmd.Flags().String("scan", "", "Scan ID")
	reportCreateCmd.Flags().String("format", "json", "Format label recorded for the rendering pipeline")
	reportCreateCmd.Flags().String("output", "", "Findings output file (default: stdout)")

	reportListCmd.Flags().String("scan", "", "Only show reports for one scan ID")

	reportCmd.AddCommand(reportCreateCmd)
	reportCmd.AddCommand(reportListCmd)
}
