package main

import (
	logrus "github.com/sirupsen/logrus"

	"simcontrol/internal/beat"
	"simcontrol/internal/telemetry"
	"simcontrol/pkg/config"
)

func main() {
	flush := telemetry.SetupLogger("beat")
	defer flush()

	// Initialize database
	config.InitDB()

	// Initialize RabbitMQ
	config.InitRabbitMQ()
	defer config.RabbitMQ.Close()

	publisher, err := config.NewPublisher()
	if err != nil {
		logrus.Fatal("Failed to create publisher: ", err)
	}
	defer publisher.Close()

	b, err := beat.New(config.DB, publisher, beat.Entries)
	if err != nil {
		logrus.Fatal("Invalid beat schedule: ", err)
	}
	if err := b.Start(); err != nil {
		logrus.Fatal("Failed to start beat: ", err)
	}

	logrus.Info("Beat started, waiting for schedule fires...")

	// Keep the process running
	select {}
}
