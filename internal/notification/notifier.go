// Package notification delivers aggregation reports by e-mail.
package notification

import (
	"Go2FlavorSpectra/internal/config"
	"Go2FlavorSpectra/internal/engine/manager"
	"Go2FlavorSpectra/internal/model"
	"errors"
	"fmt"
	"net/smtp"
	"strings"
)

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// EmailNotifier sends HTML mail through an SMTP relay.
type EmailNotifier struct {
	cfg        config.SMTPConfig
	auth       smtp.Auth
	recipients []string
	send       sendFunc
}

// NewEmailNotifier creates an EmailNotifier. Host, From and at least one
// recipient in the comma separated To list are required.
func NewEmailNotifier(cfg config.SMTPConfig) (*EmailNotifier, error) {
	if cfg.Host == "" {
		return nil, errors.New("smtp host must not be empty")
	}
	if cfg.From == "" {
		return nil, errors.New("smtp sender must not be empty")
	}
	var recipients []string
	for _, r := range strings.Split(cfg.To, ",") {
		if r = strings.TrimSpace(r); r != "" {
			recipients = append(recipients, r)
		}
	}
	if len(recipients) == 0 {
		return nil, errors.New("smtp recipient list must not be empty")
	}
	if cfg.Port == 0 {
		cfg.Port = 25
	}

	n := &EmailNotifier{cfg: cfg, recipients: recipients, send: smtp.SendMail}
	// PlainAuth refuses to send credentials over an unencrypted link to a
	// remote host.
	if cfg.Username != "" {
		n.auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return n, nil
}

// Send mails body as HTML to the configured recipients.
func (n *EmailNotifier) Send(subject, body string) error {
	addr := fmt.Sprintf("%s:%d", n.cfg.Host, n.cfg.Port)
	if err := n.send(addr, n.auth, n.cfg.From, n.recipients, n.message(subject, body)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func (n *EmailNotifier) message(subject, body string) []byte {
	return []byte("To: " + strings.Join(n.recipients, ", ") + "\r\n" +
		"From: " + n.cfg.From + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: text/html; charset=UTF-8\r\n" +
		"\r\n" +
		body)
}

// Subject summarizes a report in one line.
func Subject(r *manager.Report) string {
	switch {
	case r.Empty:
		return fmt.Sprintf("FlavorSpectra aggregation produced no samples (%d runs skipped)", len(r.Skipped))
	case len(r.Skipped) > 0:
		return fmt.Sprintf("FlavorSpectra aggregation: %d samples, %d of %d runs skipped", r.Samples, len(r.Skipped), r.RunsSeen)
	default:
		return fmt.Sprintf("FlavorSpectra aggregation: %d samples from %d runs", r.Samples, r.RunsAggregated)
	}
}

// SendReport mails the HTML rendering of r.
func SendReport(n model.Notifier, r *manager.Report) error {
	body := "<h1>FlavorSpectra Aggregation Report</h1>" + r.HTML()
	return n.Send(Subject(r), body)
}
