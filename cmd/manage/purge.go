package main

import (
	"github.com/spf13/cobra"

	"simcontrol/internal/tasks"
	"simcontrol/pkg/config"
)

func newPurgeQueueCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "purge-queue [queue]",
		Short: "Remove all pending messages from a broker queue",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			queue := tasks.DefaultQueue
			if len(args) == 1 {
				queue = args[0]
			}

			config.InitRabbitMQ()
			defer config.RabbitMQ.Close()

			return config.PurgeQueue(queue)
		},
	}
}
