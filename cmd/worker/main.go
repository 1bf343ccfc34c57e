package main

import (
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	logrus "github.com/sirupsen/logrus"

	"simcontrol/internal/notify"
	"simcontrol/internal/settings"
	"simcontrol/internal/tasks"
	"simcontrol/internal/telemetry"
	"simcontrol/pkg/config"
)

func main() {
	cfg := settings.Get()

	flush := telemetry.SetupLogger("worker")
	defer flush()

	// Initialize database
	config.InitDB()

	// Initialize RabbitMQ
	config.InitRabbitMQ()
	defer config.RabbitMQ.Close()

	// Expose worker metrics when a port is configured
	if metricsPort := os.Getenv("METRICS_PORT"); metricsPort != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(":"+metricsPort, mux); err != nil {
				logrus.Errorf("Metrics server stopped: %v", err)
			}
		}()
	}

	msgConsumer, err := config.NewConsumer(tasks.DefaultQueue)
	if err != nil {
		logrus.Fatal("Failed to create consumer: ", err)
	}
	defer msgConsumer.Close()

	mailer := notify.NewMailer(cfg.Email)
	runner := tasks.NewRunner(config.DB, mailer, cfg.StaleRunCutoff, cfg.RunRetention)

	logrus.Info("Simulation worker started, waiting for messages...")

	if err := msgConsumer.Consume(runner.Handle); err != nil {
		logrus.Fatal("Failed to start consumer: ", err)
	}
}
