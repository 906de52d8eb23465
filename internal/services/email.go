package services

import (
	"context"
	"fmt"
	"log/slog"

	"teatroqr/internal/domain"
)

const qrAttachmentName = "qr_code.png"

type emailService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
	logger   *slog.Logger
}

// NewEmailService returns an EmailService that uses the given Mailer and template renderer.
func NewEmailService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer, logger *slog.Logger) domain.EmailService {
	return &emailService{mailer: mailer, renderer: renderer, logger: logger}
}

// SendQRCode sends the "qr_code" template with the PNG attached. Every failure wraps
// domain.ErrNotificationDeliveryFailed.
func (s *emailService) SendQRCode(ctx context.Context, data *domain.QRCodeEmailData) error {
	if data == nil {
		return fmt.Errorf("%w: qr code email data is nil", domain.ErrNotificationDeliveryFailed)
	}
	subject, htmlBody, textBody, err := s.renderer.Render("qr_code", data)
	if err != nil {
		return fmt.Errorf("%w: render qr_code template: %w", domain.ErrNotificationDeliveryFailed, err)
	}
	msg := &domain.Message{
		To:      data.Email,
		Subject: subject,
		HTML:    htmlBody,
		Text:    textBody,
		Attachments: []domain.Attachment{
			{Filename: qrAttachmentName, ContentType: "image/png", Data: data.QRCodePNG},
		},
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrNotificationDeliveryFailed, err)
	}
	s.logger.InfoContext(ctx, "qr code email sent", "to", data.Email)
	return nil
}
