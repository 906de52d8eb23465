package services

import (
	"fmt"
	"regexp"
	"strings"

	"teatroqr/internal/domain"
)

var emailRegexp = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// normalizeEmail trims and lower-cases so lookups, the unique constraint and the
// verification URL all see the same string.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// attendeeInput validates and normalises the fields shared by registration, plain create and update.
func attendeeInput(email, name, workID string) (string, string, string, error) {
	email = normalizeEmail(email)
	name = strings.TrimSpace(name)
	workID = strings.TrimSpace(workID)
	var problems []string
	if !emailRegexp.MatchString(email) {
		problems = append(problems, "invalid email format")
	}
	if name == "" {
		problems = append(problems, "name is required")
	}
	if workID == "" {
		problems = append(problems, "work_id is required")
	}
	if len(problems) > 0 {
		return "", "", "", fmt.Errorf("%w: %s", domain.ErrInvalidInput, strings.Join(problems, "; "))
	}
	return email, name, workID, nil
}

// ticketIssuer derives tokens and renders the QR image of the verification URL.
type ticketIssuer struct {
	tokens  domain.TokenGenerator
	qr      domain.QRRenderer
	baseURL string
}

func newTicketIssuer(tokens domain.TokenGenerator, qr domain.QRRenderer, baseURL string) *ticketIssuer {
	return &ticketIssuer{tokens: tokens, qr: qr, baseURL: baseURL}
}

func (t *ticketIssuer) issueToken(email, workID string) (string, error) {
	salt, err := t.tokens.GenerateSalt(workID)
	if err != nil {
		return "", err
	}
	return t.tokens.Derive(email, salt), nil
}

// render returns the verification URL and its QR image.
func (t *ticketIssuer) render(email, token string) (string, []byte, error) {
	url := domain.VerificationURL(t.baseURL, email, token)
	png, err := t.qr.Render(url)
	if err != nil {
		return "", nil, fmt.Errorf("render qr code: %w", err)
	}
	return url, png, nil
}
