package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"simcontrol/internal/beat"
	"simcontrol/internal/models"
	"simcontrol/pkg/config"
)

func newSeedScheduleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed-schedule",
		Short: "Install the built-in beat schedule as DB periodic tasks",
		Long: `Converts each static beat entry into a crontab periodic task row,
skipping names that already exist. Useful when the schedule should be
editable through the API instead of baked into the beat binary.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			config.InitDB()

			created, skipped := 0, 0
			for _, entry := range beat.Entries {
				var count int64
				if err := config.DB.Model(&models.PeriodicTask{}).
					Where("name = ?", entry.Name).
					Count(&count).Error; err != nil {
					return err
				}
				if count > 0 {
					skipped++
					continue
				}

				schedule, err := crontabScheduleJSON(entry.Spec)
				if err != nil {
					return fmt.Errorf("entry %q: %w", entry.Name, err)
				}

				task := models.PeriodicTask{
					Name:          entry.Name,
					Task:          entry.Task,
					Schedule:      schedule,
					Enabled:       true,
					ExpirySeconds: int(entry.Expiry.Seconds()),
				}
				if entry.Kwargs != nil {
					kwargs, err := json.Marshal(entry.Kwargs)
					if err != nil {
						return fmt.Errorf("entry %q: %w", entry.Name, err)
					}
					task.Kwargs = kwargs
				}

				if err := config.DB.Create(&task).Error; err != nil {
					return fmt.Errorf("entry %q: %w", entry.Name, err)
				}
				created++
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created: %d, skipped existing: %d\n", created, skipped)
			return nil
		},
	}
}

// crontabScheduleJSON converts a 5-field cron spec into the crontab
// schedule form stored on periodic task rows.
func crontabScheduleJSON(spec string) (json.RawMessage, error) {
	fields := strings.Fields(spec)
	if len(fields) != 5 {
		return nil, fmt.Errorf("unexpected cron spec %q", spec)
	}

	return json.Marshal(map[string]string{
		"type":         "crontab",
		"minute":       fields[0],
		"hour":         fields[1],
		"day_of_month": fields[2],
		"month":        fields[3],
		"day_of_week":  fields[4],
	})
}
