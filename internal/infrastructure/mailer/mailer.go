package mailer

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"time"

	"go.uber.org/zap"

	"parcelhub.backend/internal/config"
	"parcelhub.backend/internal/domain/entities"
)

// Message kinds, also used as metric labels
const (
	KindVerification  = "verification"
	KindPasswordReset = "password_reset"
	KindTest          = "test"
)

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPMailer delivers HTML emails through an SMTP relay (STARTTLS when offered)
type SMTPMailer struct {
	cfg                config.EmailConfig
	appName            string
	verificationExpiry time.Duration
	resetExpiry        time.Duration
	send               sendFunc
}

// NewSMTPMailer creates a mailer for the configured relay
func NewSMTPMailer(cfg config.EmailConfig, appName string, tokens config.TokenConfig) *SMTPMailer {
	return &SMTPMailer{
		cfg:                cfg,
		appName:            appName,
		verificationExpiry: tokens.VerificationExpiry,
		resetExpiry:        tokens.ResetExpiry,
		send:               smtp.SendMail,
	}
}

func (m *SMTPMailer) SendVerificationEmail(ctx context.Context, account *entities.Account, link string) error {
	return m.deliver(ctx, account.Email, "Verify Your Email Address", verificationTmpl, templateData{
		AppName:  m.appName,
		FullName: account.FullName,
		Username: account.Username,
		Link:     link,
		Expiry:   humanize(m.verificationExpiry),
	})
}

func (m *SMTPMailer) SendPasswordResetEmail(ctx context.Context, account *entities.Account, link string) error {
	return m.deliver(ctx, account.Email, "Password Reset Request", resetTmpl, templateData{
		AppName:  m.appName,
		FullName: account.FullName,
		Username: account.Username,
		Link:     link,
		Expiry:   humanize(m.resetExpiry),
	})
}

func (m *SMTPMailer) SendTestEmail(ctx context.Context, to string) error {
	return m.deliver(ctx, to, m.appName+" test email", testTmpl, templateData{AppName: m.appName})
}

func (m *SMTPMailer) deliver(ctx context.Context, to, subject string, tmpl *template.Template, data templateData) error {
	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("render %s: %w", tmpl.Name(), err)
	}
	msg := m.buildMessage(to, subject, body.Bytes())

	var auth smtp.Auth
	if m.cfg.User != "" {
		auth = smtp.PlainAuth("", m.cfg.User, m.cfg.Password, m.cfg.Host)
	}
	addr := net.JoinHostPort(m.cfg.Host, strconv.Itoa(m.cfg.Port))

	// net/smtp has no context support; abandon the send when ctx ends
	done := make(chan error, 1)
	go func() {
		done <- m.send(addr, auth, m.cfg.From, []string{to}, msg)
	}()
	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp send: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("smtp send: %w", ctx.Err())
	}
}

func (m *SMTPMailer) buildMessage(to, subject string, html []byte) []byte {
	var b bytes.Buffer
	from := m.cfg.From
	if m.appName != "" {
		from = fmt.Sprintf("%s <%s>", mime.QEncoding.Encode("utf-8", m.appName), m.cfg.From)
	}
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	fmt.Fprintf(&b, "Date: %s\r\n", time.Now().UTC().Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.Write(html)
	return b.Bytes()
}

func humanize(d time.Duration) string {
	switch {
	case d <= 0:
		return "a short while"
	case d%time.Hour == 0:
		h := int(d / time.Hour)
		if h == 1 {
			return "1 hour"
		}
		return strconv.Itoa(h) + " hours"
	case d%time.Minute == 0:
		return strconv.Itoa(int(d/time.Minute)) + " minutes"
	}
	return d.Round(time.Second).String()
}

// LogMailer stands in for SMTP in development. It records who would have
// been emailed and why; links are never written to the log.
type LogMailer struct {
	log *zap.Logger
}

func NewLogMailer(log *zap.Logger) *LogMailer {
	if log == nil {
		log = zap.NewNop()
	}
	return &LogMailer{log: log}
}

func (m *LogMailer) SendVerificationEmail(_ context.Context, account *entities.Account, _ string) error {
	m.log.Info("email suppressed (no SMTP configured)", zap.String("kind", KindVerification), zap.String("to", account.Email))
	return nil
}

func (m *LogMailer) SendPasswordResetEmail(_ context.Context, account *entities.Account, _ string) error {
	m.log.Info("email suppressed (no SMTP configured)", zap.String("kind", KindPasswordReset), zap.String("to", account.Email))
	return nil
}

func (m *LogMailer) SendTestEmail(_ context.Context, to string) error {
	m.log.Info("email suppressed (no SMTP configured)", zap.String("kind", KindTest), zap.String("to", to))
	return nil
}
