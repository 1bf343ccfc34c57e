package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	logrus "github.com/sirupsen/logrus"

	"simcontrol/internal/models"
	"simcontrol/internal/settings"
	dbconfig "simcontrol/pkg/config"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     checkStreamOrigin,
}

// checkStreamOrigin gates the WebSocket handshake on the configured
// origins. Non-browser clients send no Origin header and are let
// through.
func checkStreamOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range settings.Get().AllowedOrigins {
		if origin == allowed {
			return true
		}
	}
	return false
}

const runStreamPollInterval = 2 * time.Second

// runStatusUpdate is one frame of the run status stream.
type runStatusUpdate struct {
	RunID      uint             `json:"run_id"`
	Status     models.RunStatus `json:"status"`
	FinalValue string           `json:"final_value,omitempty"`
	Pnl        string           `json:"pnl,omitempty"`
	TradeCount int              `json:"trade_count"`
	Error      string           `json:"error,omitempty"`
}

// StreamRunStatus upgrades to a WebSocket and pushes status updates
// for one run until it reaches a terminal state or the client leaves.
func StreamRunStatus(c *gin.Context) {
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

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.Errorf("WebSocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ticker := time.NewTicker(runStreamPollInterval)
	defer ticker.Stop()

	lastStatus := models.RunStatus("")
	for {
		if run.Status != lastStatus {
			update := runStatusUpdate{
				RunID:      run.ID,
				Status:     run.Status,
				TradeCount: run.TradeCount,
				Error:      run.Error,
			}
			if run.Terminal() {
				update.FinalValue = run.FinalValue.String()
				update.Pnl = run.Pnl.String()
			}
			if err := conn.WriteJSON(update); err != nil {
				return
			}
			lastStatus = run.Status
		}

		if run.Terminal() {
			conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "run finished"))
			return
		}

		<-ticker.C
		if err := dbconfig.DB.First(&run, id).Error; err != nil {
			logrus.Errorf("Failed to reload run %d for stream: %v", id, err)
			return
		}
	}
}
