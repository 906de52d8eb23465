package domain

import "context"

// Attachment is a file attached to an outgoing email.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Message is a fully rendered email ready for a Mailer.
type Message struct {
	To          string
	Subject     string
	HTML        string
	Text        string
	Attachments []Attachment
}

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(ctx context.Context, msg *Message) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// QRCodeEmailData holds data for the QR code email.
type QRCodeEmailData struct {
	Email           string
	Name            string
	WorkTitle       string
	WorkDate        string
	VerificationURL string
	QRCodePNG       []byte
}

// EmailService defines the contract for sending domain-level emails.
type EmailService interface {
	SendQRCode(ctx context.Context, data *QRCodeEmailData) error
}
