package email

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/http"
	"net/mail"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	"teatroqr/internal/domain"
)

// sesRawSender is the slice of the SES client this package uses.
type sesRawSender interface {
	SendRawEmail(ctx context.Context, params *ses.SendRawEmailInput, optFns ...func(*ses.Options)) (*ses.SendRawEmailOutput, error)
}

type sesMailer struct {
	client sesRawSender
	from   mail.Address
	logger *slog.Logger
}

func newSESMailer(cfg SESConfig, from mail.Address, logger *slog.Logger) *sesMailer {
	httpClient := &http.Client{
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{MinVersion: tls.VersionTLS12},
		},
	}
	awsCfg := aws.Config{
		Region: cfg.Region,
		Credentials: aws.NewCredentialsCache(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		),
		HTTPClient: httpClient,
	}
	return &sesMailer{
		client: ses.NewFromConfig(awsCfg),
		from:   from,
		logger: logger,
	}
}

// Send uses SendRawEmail because the simple SendEmail API cannot carry attachments.
func (s *sesMailer) Send(ctx context.Context, msg *domain.Message) error {
	raw, err := buildMIME(s.from, msg, time.Now())
	if err != nil {
		return err
	}
	input := &ses.SendRawEmailInput{
		Source:       aws.String(s.from.String()),
		Destinations: []string{msg.To},
		RawMessage:   &types.RawMessage{Data: raw},
	}
	result, err := s.client.SendRawEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to send email via SES: %w", err)
	}
	s.logger.InfoContext(ctx, "email sent via SES", "to", msg.To, "message_id", aws.ToString(result.MessageId))
	return nil
}
