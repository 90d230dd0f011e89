package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/bughunter/bughunter/internal/domain/scan"
	sharedErrors "github.com/bughunter/bughunter/internal/shared/errors"
)

// scanCmd is the parent command for scan operations
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Submit and manage security scans",
	Long: `Submit scans against authorized targets and inspect their progress.

Each scan runs the selected backends concurrently against the target,
aggregates their findings and persists the result. Scans are subject to
a per-operator rate limit and a global concurrency cap.`,
}

// scanRunCmd submits a new scan
var scanRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Submit a scan against a target",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		target, _ := cmd.Flags().GetString("target")
		if target == "" {
			return errors.New("--target is required")
		}
		backends, _ := cmd.Flags().GetStringSlice("backends")
		wait, _ := cmd.Flags().GetBool("wait")

		scanID, err := app.Orchestrator.Submit(ctx, target, operator, backends)
		if err != nil {
			if errors.Is(err, sharedErrors.ErrRateLimitExceeded) {
				return fmt.Errorf("rate limit exceeded for operator %s, try again later", operator)
			}
			return err
		}

		fmt.Printf("%s Scan submitted: %s\n", colorSuccess("✓"), scanID)

		if !wait {
			fmt.Printf("Check progress with: bughunter scan status --id %s\n", scanID)
			// The process exits once in-flight jobs finalize.
			app.Orchestrator.Wait()
			return nil
		}

		job, err := app.Orchestrator.Await(ctx, scanID)
		if err != nil {
			return err
		}

		printJob(job)
		return nil
	},
}

// scanStatusCmd shows the current state of one scan
var scanStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the status and findings of a scan",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		scanID, _ := cmd.Flags().GetString("id")
		if scanID == "" {
			return errors.New("--id is required")
		}

		job, err := app.Orchestrator.Status(ctx, scanID)
		if err != nil {
			if errors.Is(err, sharedErrors.ErrScanNotFound) {
				return fmt.Errorf("scan %s not found", scanID)
			}
			return err
		}

		printJob(job)
		return nil
	},
}

// scanCancelCmd requests cancellation of a running scan
var scanCancelCmd = &cobra.Command{
	Use:   "cancel",
	Short: "Cancel a pending or running scan",
	RunE: func(cmd *cobra.Command, args []string) error {
		scanID, _ := cmd.Flags().GetString("id")
		if scanID == "" {
			return errors.New("--id is required")
		}

		if !app.Orchestrator.Cancel(scanID) {
			return fmt.Errorf("scan %s is not running", scanID)
		}

		fmt.Printf("%s Cancellation requested for %s\n", colorWarn("!"), scanID)
		return nil
	},
}

// scanListCmd lists recent scans
var scanListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent scans, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		limit, _ := cmd.Flags().GetInt("limit")

		jobs, err := app.ScanRepo.FindRecent(ctx, limit)
		if err != nil {
			return fmt.Errorf("failed to list scans: %w", err)
		}

		if len(jobs) == 0 {
			fmt.Println("No scans recorded yet")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "Scan ID\tTarget\tStatus\tCreated\tFindings")
		fmt.Fprintln(w, "-------\t------\t------\t-------\t--------")

		for _, job := range jobs {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n",
				job.ID(),
				job.Target().URL(),
				formatStatusWithColor(string(job.Status())),
				job.CreatedAt().Format("2006-01-02 15:04:05"),
				len(job.Findings()),
			)
		}

		w.Flush()
		return nil
	},
}

// printJob renders one scan with its findings grouped by severity order.
func printJob(job *scan.Job) {
	fmt.Printf("\nScan:     %s\n", job.ID())
	fmt.Printf("Target:   %s\n", job.Target().URL())
	fmt.Printf("Status:   %s\n", formatStatusWithColor(string(job.Status())))
	fmt.Printf("Operator: %s\n", job.CreatedBy())
	fmt.Printf("Backends: %v\n", job.Backends())
	if !job.StartedAt().IsZero() {
		fmt.Printf("Started:  %s\n", job.StartedAt().Format(time.RFC3339))
	}
	if !job.FinishedAt().IsZero() {
		fmt.Printf("Finished: %s\n", job.FinishedAt().Format(time.RFC3339))
	}
	if job.Reason() != "" {
		fmt.Printf("Reason:   %s\n", colorError(job.Reason()))
	}

	findings := job.Findings()
	fmt.Printf("Findings: %d\n", len(findings))
	if len(findings) == 0 {
		return
	}

	fmt.Println()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Severity\tType\tBackend\tDescription")
	fmt.Fprintln(w, "--------\t----\t-------\t-----------")
	for _, f := range findings {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			formatSeverityWithColor(string(f.Severity)),
			f.Type,
			f.SourceBackend,
			f.Description,
		)
	}
	w.Flush()
}

func init() {
	scanRunCmd.Flags().StringP("target", "t", "", "Target URL or hostname")
	scanRunCmd.Flags().StringSlice("backends", nil, "Backends to run (default: all registered)")
	scanRunCmd.Flags().BoolP("wait", "w", true, "Wait for the scan to finish")

	scanStatusCmd.Flags().String("id", "", "Scan ID")
	scanCancelCmd.Flags().String("id", "", "Scan ID")
	scanListCmd.Flags().Int("limit", 20, "Number of recent scans to show (0 for all)")

	scanCmd.AddCommand(scanRunCmd)
	scanCmd.AddCommand(scanStatusCmd)
	scanCmd.AddCommand(scanCancelCmd)
	scanCmd.AddCommand(scanListCmd)
}
