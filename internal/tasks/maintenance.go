package tasks

import (
	"time"

	logrus "github.com/sirupsen/logrus"

	"simcontrol/internal/models"
)

// markStale fails runs stuck in pending or running beyond the cutoff.
// A run can get stuck when a worker dies mid-execution or a pending
// message expires before any worker picks it up.
func (r *Runner) markStale() error {
	cutoff := time.Now().UTC().Add(-r.staleCutoff)
	finished := time.Now().UTC()

	res := r.db.Model(&models.BotSimulationRun{}).
		Where("status IN ?", []models.RunStatus{models.RunStatusPending, models.RunStatusRunning}).
		Where("created_at < ?", cutoff).
		Updates(map[string]interface{}{
			"status":      models.RunStatusFailed,
			"error":       "marked stale by maintenance sweep",
			"finished_at": finished,
		})
	if res.Error != nil {
		return res.Error
	}

	if res.RowsAffected > 0 {
		logrus.Infof("Marked %d stale runs as failed", res.RowsAffected)
	}
	return nil
}

// purgeRuns deletes terminal runs (and their trades) older than the
// retention window.
func (r *Runner) purgeRuns() error {
	cutoff := time.Now().UTC().Add(-r.runRetention)

	var ids []uint
	if err := r.db.Model(&models.BotSimulationRun{}).
		Where("status IN ?", []models.RunStatus{models.RunStatusCompleted, models.RunStatusFailed}).
		Where("created_at < ?", cutoff).
		Pluck("id", &ids).Error; err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}

	if err := r.db.Where("run_id IN ?", ids).Delete(&models.SimulationTrade{}).Error; err != nil {
		return err
	}
	if err := r.db.Delete(&models.BotSimulationRun{}, ids).Error; err != nil {
		return err
	}

	logrus.Infof("Purged %d runs older than %s", len(ids), r.runRetention)
	return nil
}
