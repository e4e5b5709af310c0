// internal/app/system/mailer/mailer.go
package mailer

import (
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"
)

// Email is one outbound message with both plain-text and HTML bodies.
type Email struct {
	To       string
	Subject  string
	TextBody string
	HTMLBody string
}

// Sender delivers email. The reset flow sends fire-and-forget, so a
// failed delivery is logged, never surfaced to the requester.
type Sender interface {
	Send(email Email) error
}

// Config holds SMTP connection settings.
type Config struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromName  string
	FromEmail string
	UseTLS    bool // STARTTLS after connect
}

// SMTPSender sends through a plain SMTP server.
type SMTPSender struct {
	cfg  Config
	auth smtp.Auth
}

func NewSMTPSender(cfg Config) (*SMTPSender, error) {
	if cfg.Host == "" || cfg.FromEmail == "" {
		return nil, fmt.Errorf("mailer: host and from address are required")
	}
	s := &SMTPSender{cfg: cfg}
	if cfg.Username != "" && cfg.Password != "" {
		s.auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return s, nil
}

func (s *SMTPSender) Send(email Email) error {
	if email.To == "" {
		return fmt.Errorf("mailer: no recipient")
	}

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	client, err := smtp.Dial(addr)
	if err != nil {
		return fmt.Errorf("mailer: connect %s: %w", addr, err)
	}
	defer client.Close()

	if s.cfg.UseTLS {
		if err := client.StartTLS(&tls.Config{ServerName: s.cfg.Host}); err != nil {
			return fmt.Errorf("mailer: starttls: %w", err)
		}
	}
	if s.auth != nil {
		if err := client.Auth(s.auth); err != nil {
			return fmt.Errorf("mailer: auth: %w", err)
		}
	}

	if err := client.Mail(s.cfg.FromEmail); err != nil {
		return fmt.Errorf("mailer: set sender: %w", err)
	}
	if err := client.Rcpt(email.To); err != nil {
		return fmt.Errorf("mailer: set recipient: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("mailer: open data: %w", err)
	}
	if _, err := w.Write(s.buildMessage(email)); err != nil {
		return fmt.Errorf("mailer: write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("mailer: close message: %w", err)
	}

	return client.Quit()
}

const boundary = "MEMBERHUB_BOUNDARY"

func (s *SMTPSender) buildMessage(email Email) []byte {
	headers := []string{
		fmt.Sprintf("From: %s <%s>", s.cfg.FromName, s.cfg.FromEmail),
		"To: " + email.To,
		"Subject: " + email.Subject,
		"MIME-version: 1.0;",
		fmt.Sprintf("Content-Type: multipart/alternative; boundary=%q", boundary),
		"",
	}

	var body []string
	if email.TextBody != "" {
		body = append(body,
			"--"+boundary,
			"Content-Type: text/plain; charset=UTF-8",
			"",
			email.TextBody,
			"",
		)
	}
	if email.HTMLBody != "" {
		body = append(body,
			"--"+boundary,
			"Content-Type: text/html; charset=UTF-8",
			"",
			email.HTMLBody,
			"",
		)
	}
	body = append(body, "--"+boundary+"--")

	return []byte(strings.Join(headers, "\r\n") + "\r\n" + strings.Join(body, "\r\n"))
}

// LogSender logs instead of sending. Used in development and tests.
type LogSender struct {
	Log *zap.Logger
}

func (l *LogSender) Send(email Email) error {
	l.Log.Info("email (not sent)",
		zap.String("to", email.To),
		zap.String("subject", email.Subject))
	return nil
}
