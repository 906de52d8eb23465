package email

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"net/textproto"
	"strings"
	"time"

	"teatroqr/internal/domain"
)

const base64LineLen = 76

// buildMIME renders msg as a multipart/mixed RFC 5322 message: a text/html alternative
// part followed by one base64 part per attachment.
func buildMIME(from mail.Address, msg *domain.Message, now time.Time) ([]byte, error) {
	to, err := parseRecipient(msg.To)
	if err != nil {
		return nil, err
	}
	if strings.ContainsAny(msg.Subject, "\r\n") {
		return nil, fmt.Errorf("invalid subject: contains newline characters")
	}

	var body bytes.Buffer
	mixed := multipart.NewWriter(&body)

	var altBody bytes.Buffer
	alt := multipart.NewWriter(&altBody)
	if msg.Text != "" {
		if err := writeQuotedPrintable(alt, "text/plain; charset=UTF-8", msg.Text); err != nil {
			return nil, err
		}
	}
	if msg.HTML != "" {
		if err := writeQuotedPrintable(alt, "text/html; charset=UTF-8", msg.HTML); err != nil {
			return nil, err
		}
	}
	if err := alt.Close(); err != nil {
		return nil, err
	}
	pw, err := mixed.CreatePart(textproto.MIMEHeader{
		"Content-Type": {"multipart/alternative; boundary=" + alt.Boundary()},
	})
	if err != nil {
		return nil, err
	}
	if _, err := pw.Write(altBody.Bytes()); err != nil {
		return nil, err
	}

	for _, a := range msg.Attachments {
		if err := writeAttachment(mixed, a); err != nil {
			return nil, fmt.Errorf("attach %s: %w", a.Filename, err)
		}
	}
	if err := mixed.Close(); err != nil {
		return nil, err
	}

	var out bytes.Buffer
	header := func(k, v string) { fmt.Fprintf(&out, "%s: %s\r\n", k, v) }
	header("From", from.String())
	header("To", to.String())
	header("Subject", mime.QEncoding.Encode("UTF-8", msg.Subject))
	header("Date", now.Format(time.RFC1123Z))
	header("MIME-Version", "1.0")
	header("Content-Type", "multipart/mixed; boundary="+mixed.Boundary())
	out.WriteString("\r\n")
	out.Write(body.Bytes())
	return out.Bytes(), nil
}

// parseRecipient rejects anything that is not a single plain address, which also
// keeps header injection out of the To line.
func parseRecipient(addr string) (*mail.Address, error) {
	if strings.ContainsAny(addr, "\r\n") {
		return nil, fmt.Errorf("invalid recipient email: contains newline characters")
	}
	parsed, err := mail.ParseAddress(addr)
	if err != nil {
		return nil, fmt.Errorf("invalid recipient email: %w", err)
	}
	return parsed, nil
}

func writeQuotedPrintable(w *multipart.Writer, contentType, content string) error {
	pw, err := w.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {contentType},
		"Content-Transfer-Encoding": {"quoted-printable"},
	})
	if err != nil {
		return err
	}
	qp := quotedprintable.NewWriter(pw)
	if _, err := qp.Write([]byte(content)); err != nil {
		return err
	}
	return qp.Close()
}

func writeAttachment(w *multipart.Writer, a domain.Attachment) error {
	contentType := a.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	pw, err := w.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {mime.FormatMediaType(contentType, map[string]string{"name": a.Filename})},
		"Content-Disposition":       {mime.FormatMediaType("attachment", map[string]string{"filename": a.Filename})},
		"Content-Transfer-Encoding": {"base64"},
	})
	if err != nil {
		return err
	}
	encoded := base64.StdEncoding.EncodeToString(a.Data)
	for len(encoded) > base64LineLen {
		if _, err := fmt.Fprintf(pw, "%s\r\n", encoded[:base64LineLen]); err != nil {
			return err
		}
		encoded = encoded[base64LineLen:]
	}
	_, err = fmt.Fprintf(pw, "%s\r\n", encoded)
	return err
}
