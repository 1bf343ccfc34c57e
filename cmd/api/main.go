package main

import (
	"log"

	logrus "github.com/sirupsen/logrus"

	"simcontrol/internal/routes"
	"simcontrol/internal/settings"
	"simcontrol/internal/telemetry"
	"simcontrol/pkg/config"
)

func main() {
	cfg := settings.Get()

	flush := telemetry.SetupLogger("api")
	defer flush()

	// Initialize database
	config.InitDB()

	// Initialize cache (optional, skipped when CACHE_URL is unset)
	config.InitCache()

	// Initialize RabbitMQ (optional, will log warning if not configured)
	if cfg.RabbitMQHost != "" {
		config.InitRabbitMQ()
		defer func() {
			if config.RabbitMQ != nil {
				config.RabbitMQ.Close()
			}
		}()

		publisher, err := config.NewPublisher()
		if err != nil {
			logrus.Fatal("Failed to create task publisher: ", err)
		}
		defer publisher.Close()
		config.TaskPublisher = publisher

		logrus.Info("RabbitMQ initialized successfully")
	} else {
		logrus.Warn("RabbitMQ not configured, runs created via the API stay pending")
	}

	// Set up router
	r := routes.SetupRouter()

	// Start server
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
