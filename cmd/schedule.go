package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/bughunter/bughunter/internal/domain/schedule"
)

// scheduleCmd is the parent command for recurring scan schedules
var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Manage recurring scan schedules",
}

// scheduleAddCmd registers a new recurring schedule
var scheduleAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Register a recurring scan against a target",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		target, _ := cmd.Flags().GetString("target")
		if target == "" {
			return errors.New("--target is required")
		}
		frequency, _ := cmd.Flags().GetString("frequency")

		sched, err := app.ScheduleService.Add(ctx, target, schedule.Frequency(frequency), operator)
		if err != nil {
			return err
		}

		fmt.Printf("%s Schedule created: %s\n", colorSuccess("✓"), sched.ID)
		fmt.Printf("Next run: %s\n", sched.NextRun.Format(time.RFC3339))
		return nil
	},
}

// scheduleListCmd lists registered schedules
var scheduleListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered schedules",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		schedules, err := app.ScheduleService.List(ctx)
		if err != nil {
			return err
		}

		if len(schedules) == 0 {
			fmt.Println("No schedules registered")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTarget\tFrequency\tNext Run\tActive")
		fmt.Fprintln(w, "--\t------\t---------\t--------\t------")
		for _, s := range schedules {
			active := colorSuccess("yes")
			if !s.Active {
				active = colorWarn("no")
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				s.ID, s.TargetURL, s.Frequency, s.NextRun.Format("2006-01-02 15:04"), active)
		}
		w.Flush()
		return nil
	},
}

// scheduleRemoveCmd deletes a schedule
var scheduleRemoveCmd = &cobra.Command{
	Use:   "remove",
	Short: "Remove a schedule",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		id, _ := cmd.Flags().GetString("id")
		if id == "" {
			return errors.New("--id is required")
		}

		if err := app.ScheduleService.Remove(ctx, id); err != nil {
			return fmt.Errorf("failed to remove schedule %s: %w", id, err)
		}

		fmt.Printf("%s Schedule removed: %s\n", colorSuccess("✓"), id)
		return nil
	},
}

// scheduleRunDueCmd submits a scan for every due schedule
var scheduleRunDueCmd = &cobra.Command{
	Use:   "run-due",
	Short: "Submit scans for every schedule whose next run has passed",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		now := time.Now().UTC()

		due, err := app.ScheduleService.Due(ctx, now)
		if err != nil {
			return err
		}

		if len(due) == 0 {
			fmt.Println("No schedules are due")
			return nil
		}

		for _, sched := range due {
			scanID, err := app.Orchestrator.Submit(ctx, sched.TargetURL, sched.CreatedBy, nil)
			if err != nil {
				fmt.Printf("%s %s: %v\n", colorError("✗"), sched.TargetURL, err)
				continue
			}
			if err := app.ScheduleService.MarkRun(ctx, sched.ID, now); err != nil {
				logger.Warnw("failed to advance schedule", "schedule_id", sched.ID, "error", err)
			}
			fmt.Printf("%s %s -> %s\n", colorSuccess("✓"), sched.TargetURL, scanID)
		}

		app.Orchestrator.Wait()
		return nil
	},
}

func init() {
	scheduleAddCmd.Flags().StringP("target", "t", "", "Target URL or hostname")
	scheduleAddCmd.Flags().StringP("frequency", "f", "daily", "Run frequency (hourly, daily, weekly, monthly)")

	scheduleRemoveCmd.Flags().String("id", "", "Schedule ID")

	scheduleCmd.AddCommand(scheduleAddCmd)
	scheduleCmd.AddCommand(scheduleListCmd)
	scheduleCmd.AddCommand(scheduleRemoveCmd)
	scheduleCmd.AddCommand(scheduleRunDueCmd)
}
