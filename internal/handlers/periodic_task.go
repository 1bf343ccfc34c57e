package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"simcontrol/internal/models"
	dbconfig "simcontrol/pkg/config"
)

// validatePeriodicTask rejects payloads the beat could not fire:
// missing name or task, or a schedule that does not parse.
func validatePeriodicTask(task *models.PeriodicTask) error {
	if task.Name == "" || task.Task == "" {
		return errors.New("name and task are required")
	}
	if _, err := task.ScheduleSpec(); err != nil {
		return err
	}
	return nil
}

// CreatePeriodicTask stores a new DB schedule entry. The schedule
// JSON must parse; writing a row the beat cannot fire is rejected up
// front.
func CreatePeriodicTask(c *gin.Context) {
	var task models.PeriodicTask
	if err := c.ShouldBindJSON(&task); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := validatePeriodicTask(&task); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := dbconfig.DB.Create(&task).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, task)
}

// ListPeriodicTasks lists all DB schedule entries.
func ListPeriodicTasks(c *gin.Context) {
	var periodicTasks []models.PeriodicTask
	if err := dbconfig.DB.Order("name ASC").Find(&periodicTasks).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, periodicTasks)
}

// GetPeriodicTask returns one entry by ID.
func GetPeriodicTask(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	var task models.PeriodicTask
	if err := dbconfig.DB.First(&task, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Periodic task not found"})
		return
	}
	c.JSON(http.StatusOK, task)
}

// UpdatePeriodicTask replaces the mutable fields of an entry. The new
// schedule must parse, same as on create.
func UpdatePeriodicTask(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	var existing models.PeriodicTask
	if err := dbconfig.DB.First(&existing, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Periodic task not found"})
		return
	}

	var update models.PeriodicTask
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := validatePeriodicTask(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	existing.Name = update.Name
	existing.Task = update.Task
	existing.Schedule = update.Schedule
	existing.Kwargs = update.Kwargs
	existing.Enabled = update.Enabled
	existing.OneOff = update.OneOff
	existing.ExpirySeconds = update.ExpirySeconds

	if err := dbconfig.DB.Save(&existing).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, existing)
}

// SetPeriodicTaskEnabled flips the enabled flag without touching the
// rest of the row.
func SetPeriodicTaskEnabled(enabled bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
			return
		}

		res := dbconfig.DB.Model(&models.PeriodicTask{}).
			Where("id = ?", id).
			Update("enabled", enabled)
		if res.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": res.Error.Error()})
			return
		}
		if res.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Periodic task not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"enabled": enabled})
	}
}

// DeletePeriodicTask removes an entry.
func DeletePeriodicTask(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	res := dbconfig.DB.Delete(&models.PeriodicTask{}, id)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": res.Error.Error()})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Periodic task not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Periodic task deleted"})
}
