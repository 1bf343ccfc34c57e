// Package repair fixes periodic task rows whose stored schedule no
// longer parses. Older releases wrote the schedule column in a
// different shape, so upgraded databases can hold rows the beat
// silently skips; this sweep disables or deletes them.
package repair

import (
	"fmt"

	"gorm.io/gorm"

	"simcontrol/internal/models"
)

// Store is the persistence surface the sweep needs.
type Store interface {
	ListPeriodicTasks() ([]models.PeriodicTask, error)
	DisablePeriodicTask(id uint) error
	DeletePeriodicTask(id uint) error
}

// Report counts the outcome of a sweep.
type Report struct {
	Scanned  int
	Valid    int
	Disabled int
	Deleted  int
	Failed   int
}

// SweepInvalidSchedules scans every periodic task and validates its
// stored schedule. Invalid rows are disabled in place, or deleted
// when deleteInvalid is set. Rows that cannot be updated are counted
// as failed and do not stop the sweep.
func SweepInvalidSchedules(store Store, deleteInvalid bool, logf func(format string, args ...interface{})) (Report, error) {
	if logf == nil {
		logf = func(string, ...interface{}) {}
	}

	periodicTasks, err := store.ListPeriodicTasks()
	if err != nil {
		return Report{}, fmt.Errorf("list periodic tasks: %w", err)
	}

	report := Report{Scanned: len(periodicTasks)}
	for i := range periodicTasks {
		task := &periodicTasks[i]

		_, specErr := task.ScheduleSpec()
		if specErr == nil {
			report.Valid++
			continue
		}
		logf("invalid schedule on task %q (id=%d): %v", task.Name, task.ID, specErr)

		if deleteInvalid {
			if err := store.DeletePeriodicTask(task.ID); err != nil {
				logf("failed to delete task %q (id=%d): %v", task.Name, task.ID, err)
				report.Failed++
				continue
			}
			report.Deleted++
		} else {
			if err := store.DisablePeriodicTask(task.ID); err != nil {
				logf("failed to disable task %q (id=%d): %v", task.Name, task.ID, err)
				report.Failed++
				continue
			}
			report.Disabled++
		}
	}

	return report, nil
}

// GormStore backs Store with the application database.
type GormStore struct {
	DB *gorm.DB
}

func (s GormStore) ListPeriodicTasks() ([]models.PeriodicTask, error) {
	var periodicTasks []models.PeriodicTask
	err := s.DB.Find(&periodicTasks).Error
	return periodicTasks, err
}

func (s GormStore) DisablePeriodicTask(id uint) error {
	return s.DB.Model(&models.PeriodicTask{}).
		Where("id = ?", id).
		Update("enabled", false).Error
}

func (s GormStore) DeletePeriodicTask(id uint) error {
	return s.DB.Delete(&models.PeriodicTask{}, id).Error
}
