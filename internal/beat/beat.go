package beat

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	logrus "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"simcontrol/internal/models"
	"simcontrol/internal/tasks"
)

const dbTickInterval = 30 * time.Second

// Publisher is the broker side the beat needs.
type Publisher interface {
	Publish(queueName string, message interface{}) error
}

// Beat drives the static schedule and the DB-stored periodic tasks.
type Beat struct {
	db        *gorm.DB
	publisher Publisher
	cron      *cron.Cron
	entries   []Entry
	stop      chan struct{}
}

func New(db *gorm.DB, publisher Publisher, entries []Entry) (*Beat, error) {
	if err := ValidateEntries(entries); err != nil {
		return nil, err
	}
	return &Beat{
		db:        db,
		publisher: publisher,
		cron:      cron.New(),
		entries:   entries,
		stop:      make(chan struct{}),
	}, nil
}

// Start registers the static entries and launches the DB tick loop.
func (b *Beat) Start() error {
	for _, entry := range b.entries {
		entry := entry
		if _, err := b.cron.AddFunc(entry.Spec, func() {
			if err := b.fire(entry); err != nil {
				logrus.Errorf("Failed to fire schedule entry %q: %v", entry.Name, err)
			}
		}); err != nil {
			return fmt.Errorf("register schedule entry %q: %w", entry.Name, err)
		}
		logrus.WithFields(logrus.Fields{
			"entry": entry.Name,
			"task":  entry.Task,
			"spec":  entry.Spec,
		}).Info("Registered schedule entry")
	}
	b.cron.Start()

	go b.tickLoop()
	return nil
}

// Stop halts cron and the tick loop.
func (b *Beat) Stop() {
	b.cron.Stop()
	close(b.stop)
}

func (b *Beat) fire(entry Entry) error {
	msg, err := tasks.NewMessage(entry.Task, entry.Kwargs, entry.Expiry)
	if err != nil {
		return err
	}
	if err := b.publisher.Publish(tasks.DefaultQueue, msg); err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{
		"entry":      entry.Name,
		"task":       entry.Task,
		"message_id": msg.ID,
	}).Info("Published scheduled task")
	return nil
}

func (b *Beat) tickLoop() {
	ticker := time.NewTicker(dbTickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stop:
			return
		case <-ticker.C:
			if _, err := b.TickDatabaseTasks(time.Now().UTC()); err != nil {
				logrus.Errorf("Database tick failed: %v", err)
			}
		}
	}
}

// TickDatabaseTasks publishes every enabled DB periodic task that is
// due at now. Rows with malformed schedules are skipped with a
// warning; the repair command deals with those. One bad task does not
// block the rest of the batch.
func (b *Beat) TickDatabaseTasks(now time.Time) (int, error) {
	var periodicTasks []models.PeriodicTask
	if err := b.db.Where("enabled = ?", true).Find(&periodicTasks).Error; err != nil {
		return 0, fmt.Errorf("list periodic tasks: %w", err)
	}

	fired := 0
	for i := range periodicTasks {
		task := &periodicTasks[i]

		due, err := task.Due(now)
		if err != nil {
			logrus.Warnf("Skipping periodic task %q with malformed schedule: %v", task.Name, err)
			continue
		}
		if !due {
			continue
		}

		var kwargs interface{}
		if len(task.Kwargs) > 0 {
			kwargs = task.Kwargs
		}
		msg, err := tasks.NewMessage(task.Task, kwargs, task.Expiry())
		if err != nil {
			logrus.Errorf("Failed to build message for periodic task %q: %v", task.Name, err)
			continue
		}
		if err := b.publisher.Publish(tasks.DefaultQueue, msg); err != nil {
			logrus.Errorf("Failed to publish periodic task %q: %v", task.Name, err)
			continue
		}

		updates := map[string]interface{}{
			"last_run_at":     now,
			"total_run_count": gorm.Expr("total_run_count + 1"),
		}
		if task.OneOff {
			updates["enabled"] = false
		}
		if err := b.db.Model(task).Updates(updates).Error; err != nil {
			logrus.Errorf("Failed to record fire of periodic task %q: %v", task.Name, err)
			continue
		}

		fired++
		logrus.WithFields(logrus.Fields{
			"periodic_task": task.Name,
			"task":          task.Task,
			"message_id":    msg.ID,
		}).Info("Published periodic task")
	}

	return fired, nil
}
