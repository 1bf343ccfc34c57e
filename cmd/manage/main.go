// Management CLI for operational tasks: migrations, schedule
// seeding, broker queue maintenance and periodic task repair.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:           "manage",
		Short:         "simcontrol management commands",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newMigrateCmd(),
		newRollbackCmd(),
		newRepairPeriodicTasksCmd(),
		newSeedScheduleCmd(),
		newPurgeQueueCmd(),
	)

	if err := root.Execute(); err != nil {
		os.Stderr.WriteString("Error: " + err.Error() + "\n")
		os.Exit(1)
	}
}
