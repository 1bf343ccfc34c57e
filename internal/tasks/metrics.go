package tasks

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	tasksProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "simcontrol_worker_tasks_processed_total",
		Help: "Task messages processed by the worker, by task name and outcome",
	}, []string{"task", "outcome"})

	tasksExpired = promauto.NewCounter(prometheus.CounterOpts{
		Name: "simcontrol_worker_tasks_expired_total",
		Help: "Task messages dropped because they were past their expiry",
	})
)
