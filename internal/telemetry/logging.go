// Package telemetry wires structured logging and error reporting.
package telemetry

import (
	"time"

	"github.com/getsentry/sentry-go"
	logrus "github.com/sirupsen/logrus"

	"simcontrol/internal/settings"
)

// SetupLogger configures logrus for a service process and attaches
// the Sentry hook when a DSN is configured. The returned flush
// function should be deferred in main.
func SetupLogger(service string) func() {
	cfg := settings.Get()

	logrus.SetFormatter(&logrus.JSONFormatter{})
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	if cfg.SentryDSN == "" {
		return func() {}
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.SentryDSN,
		Environment: string(cfg.Env),
		ServerName:  service,
	}); err != nil {
		logrus.Warnf("Failed to initialize Sentry, continuing without it: %v", err)
		return func() {}
	}

	logrus.AddHook(&sentryHook{})
	return func() {
		sentry.Flush(2 * time.Second)
	}
}

// sentryHook forwards error-and-above log entries to Sentry.
type sentryHook struct{}

func (h *sentryHook) Levels() []logrus.Level {
	return []logrus.Level{
		logrus.PanicLevel,
		logrus.FatalLevel,
		logrus.ErrorLevel,
	}
}

func (h *sentryHook) Fire(entry *logrus.Entry) error {
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetLevel(sentryLevel(entry.Level))
		for key, value := range entry.Data {
			scope.SetExtra(key, value)
		}
		sentry.CaptureMessage(entry.Message)
	})
	return nil
}

func sentryLevel(level logrus.Level) sentry.Level {
	if level == logrus.PanicLevel || level == logrus.FatalLevel {
		return sentry.LevelFatal
	}
	return sentry.LevelError
}
