package email

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"time"

	"teatroqr/internal/domain"
)

// SESConfig holds configuration for AWS SES.
type SESConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
}

// SMTPConfig holds configuration for an SMTP relay.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	StartTLS bool
}

// MailerConfig holds configuration for creating a mailer.
type MailerConfig struct {
	Provider    string
	FromAddress string
	FromName    string
	SMTP        SMTPConfig
	SES         SESConfig
}

// NewMailer creates a mailer from config. Provider "smtp" uses an SMTP relay, "ses" uses
// AWS SES raw email; "noop" or unknown uses a mailer that only logs and reports
// ErrNotSent.
func NewMailer(config MailerConfig, logger *slog.Logger) (domain.Mailer, error) {
	from := mail.Address{Name: config.FromName, Address: config.FromAddress}
	switch config.Provider {
	case "smtp":
		return newSMTPMailer(config.SMTP, from, logger), nil
	case "ses":
		return newSESMailer(config.SES, from, logger), nil
	case "noop":
		return &noopMailer{logger: logger}, nil
	default:
		logger.Warn("unknown email provider, using noop", "provider", config.Provider)
		return &noopMailer{logger: logger}, nil
	}
}

// ErrNotSent is returned by the noop mailer after it validates a message.
var ErrNotSent = errors.New("email provider is noop: message not sent")

type noopMailer struct {
	logger *slog.Logger
}

func (n *noopMailer) Send(ctx context.Context, msg *domain.Message) error {
	if _, err := buildMIME(mail.Address{Address: "noop@localhost"}, msg, time.Now()); err != nil {
		return err
	}
	n.logger.InfoContext(ctx, "email would be sent (noop)", "to", msg.To, "subject", msg.Subject, "attachments", len(msg.Attachments))
	return ErrNotSent
}
