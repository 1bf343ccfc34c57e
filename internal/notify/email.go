// Package notify sends operator notifications about failed runs.
package notify

import (
	"fmt"
	"net/smtp"
	"strings"

	logrus "github.com/sirupsen/logrus"

	"simcontrol/internal/settings"
)

// Mailer sends failure notifications over SMTP. In log-only mode
// (testing tier, or no SMTP host configured) the message is written
// to the log instead.
type Mailer struct {
	cfg settings.EmailSettings
}

func NewMailer(cfg settings.EmailSettings) *Mailer {
	return &Mailer{cfg: cfg}
}

// SendRunFailure notifies the admin address that a simulation run
// failed. Missing admin address means nothing to send.
func (m *Mailer) SendRunFailure(runID uint, simulationType string, cause error) error {
	subject := fmt.Sprintf("[simcontrol] simulation run %d failed", runID)
	body := fmt.Sprintf("Run %d (%s simulation) failed: %v", runID, simulationType, cause)

	if m.cfg.LogOnly {
		logrus.WithFields(logrus.Fields{
			"subject": subject,
			"to":      m.cfg.Admin,
		}).Info(body)
		return nil
	}
	if m.cfg.Admin == "" {
		return nil
	}

	return m.send(m.cfg.Admin, subject, body)
}

func (m *Mailer) send(to, subject, body string) error {
	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", m.cfg.From)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("\r\n")
	msg.WriteString(body)
	msg.WriteString("\r\n")

	var auth smtp.Auth
	if m.cfg.User != "" {
		auth = smtp.PlainAuth("", m.cfg.User, m.cfg.Password, m.cfg.Host)
	}

	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{to}, []byte(msg.String())); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}
