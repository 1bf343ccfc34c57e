package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"simcontrol/internal/repair"
	"simcontrol/pkg/config"
)

func newRepairPeriodicTasksCmd() *cobra.Command {
	var deleteInvalid bool

	cmd := &cobra.Command{
		Use:   "repair-periodic-tasks",
		Short: "Disable or delete periodic tasks whose stored schedule no longer parses",
		Long: `Scans every periodic task row and validates the stored JSON schedule.
Rows with a malformed schedule are disabled in place so the beat stops
warning about them; with --delete-invalid they are deleted instead.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			config.InitDB()

			report, err := repair.SweepInvalidSchedules(
				repair.GormStore{DB: config.DB},
				deleteInvalid,
				func(format string, args ...interface{}) {
					fmt.Fprintf(cmd.OutOrStdout(), format+"\n", args...)
				},
			)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Scanned:  %d\n", report.Scanned)
			fmt.Fprintf(out, "Valid:    %d\n", report.Valid)
			fmt.Fprintf(out, "Disabled: %d\n", report.Disabled)
			fmt.Fprintf(out, "Deleted:  %d\n", report.Deleted)
			if report.Failed > 0 {
				fmt.Fprintf(out, "Failed:   %d\n", report.Failed)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&deleteInvalid, "delete-invalid", false,
		"delete invalid periodic tasks instead of disabling them")
	return cmd
}
