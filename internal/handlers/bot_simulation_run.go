package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	logrus "github.com/sirupsen/logrus"

	"simcontrol/internal/models"
	"simcontrol/internal/simulation"
	"simcontrol/internal/tasks"
	dbconfig "simcontrol/pkg/config"
)

const latestRunCacheKey = "simcontrol:latest_run"

// CreateBotSimulationRunRequest is the payload for creating a run.
type CreateBotSimulationRunRequest struct {
	SimulationType   models.SimulationType `json:"simulation_type" binding:"required"`
	InitialFund      string                `json:"initial_fund"`
	InitialPortfolio map[string]float64    `json:"initial_portfolio"`
	Params           simulation.Params     `json:"params"`
}

// CreateBotSimulationRun creates a pending run and enqueues it for a
// worker. Without a broker the run stays pending until a worker or
// the stale sweep picks it up.
func CreateBotSimulationRun(c *gin.Context) {
	var request CreateBotSimulationRunRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	run := models.BotSimulationRun{
		ExternalID:     uuid.NewString(),
		SimulationType: request.SimulationType,
		Status:         models.RunStatusPending,
	}

	if request.InitialFund != "" {
		fund, err := decimal.NewFromString(request.InitialFund)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid initial_fund"})
			return
		}
		run.InitialFund = fund
	}
	if len(request.InitialPortfolio) > 0 {
		portfolio, err := json.Marshal(request.InitialPortfolio)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		run.InitialPortfolio = portfolio
	}
	if raw, err := json.Marshal(request.Params); err == nil {
		run.Params = raw
	}

	if err := run.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	now := time.Now().UTC()
	run.EnqueuedAt = &now
	if err := dbconfig.DB.Create(&run).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if dbconfig.TaskPublisher != nil {
		msg, err := tasks.NewMessage(tasks.TaskExecuteRun, gin.H{"run_id": run.ID}, time.Hour)
		if err == nil {
			err = dbconfig.TaskPublisher.Publish(tasks.DefaultQueue, msg)
		}
		if err != nil {
			logrus.Errorf("Failed to enqueue run %d: %v", run.ID, err)
		}
	} else {
		logrus.Warnf("No task publisher configured, run %d stays pending", run.ID)
	}

	dbconfig.CacheDel(c.Request.Context(), latestRunCacheKey)
	c.JSON(http.StatusCreated, run)
}

// ListBotSimulationRuns lists runs, optionally filtered by status and
// simulation type, newest first.
func ListBotSimulationRuns(c *gin.Context) {
	query := dbconfig.DB.Model(&models.BotSimulationRun{})

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if simulationType := c.Query("simulation_type"); simulationType != "" {
		query = query.Where("simulation_type = ?", simulationType)
	}

	limit := 100
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 1000 {
			limit = n
		}
	}
	offset := 0
	if raw := c.Query("offset"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n >= 0 {
			offset = n
		}
	}

	var runs []models.BotSimulationRun
	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&runs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, runs)
}

// GetBotSimulationRun returns one run by numeric ID.
func GetBotSimulationRun(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	var run models.BotSimulationRun
	if err := dbconfig.DB.First(&run, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Run not found"})
		return
	}
	c.JSON(http.StatusOK, run)
}

// GetLatestBotSimulationRun returns the most recent run, served from
// cache when available.
func GetLatestBotSimulationRun(c *gin.Context) {
	if cached := dbconfig.CacheGet(c.Request.Context(), latestRunCacheKey); cached != "" {
		c.Data(http.StatusOK, "application/json", []byte(cached))
		return
	}

	var run models.BotSimulationRun
	if err := dbconfig.DB.Order("created_at DESC").First(&run).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Run not found"})
		return
	}

	if body, err := json.Marshal(run); err == nil {
		dbconfig.CacheSet(c.Request.Context(), latestRunCacheKey, string(body), 30*time.Second)
	}
	c.JSON(http.StatusOK, run)
}

// DeleteBotSimulationRun deletes a terminal run and its trades.
// Pending and running runs cannot be deleted.
func DeleteBotSimulationRun(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	var run models.BotSimulationRun
	if err := dbconfig.DB.First(&run, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Run not found"})
		return
	}
	if !run.Terminal() {
		c.JSON(http.StatusConflict, gin.H{"error": "Cannot delete a run that has not finished"})
		return
	}

	if err := dbconfig.DB.Where("run_id = ?", run.ID).Delete(&models.SimulationTrade{}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if err := dbconfig.DB.Delete(&run).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	dbconfig.CacheDel(c.Request.Context(), latestRunCacheKey)
	c.JSON(http.StatusOK, gin.H{"message": "Run deleted"})
}

// ListRunTrades returns the trade log of a run.
func ListRunTrades(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	var trades []models.SimulationTrade
	if err := dbconfig.DB.Where("run_id = ?", id).Order("executed_at ASC").Find(&trades).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, trades)
}
