package domain

// TokenGenerator derives verification tokens for attendees.
type TokenGenerator interface {
	GenerateSalt(workID string) (string, error)
	Derive(email, salt string) string
}

// QRRenderer encodes content as a scannable PNG image.
type QRRenderer interface {
	Render(content string) ([]byte, error)
}

// VerificationURL builds the link embedded in the QR image. The front end parses it
// as-is, so nothing is escaped.
func VerificationURL(baseURL, email, qrCode string) string {
	return baseURL + "?email=" + email + "&qr_code=" + qrCode
}
