package email

import (
	"bytes"
	"encoding/base64"
	"io"
	"net/mail"
	"strings"
)

func base64Decoder(encoded []byte) io.Reader {
	clean := strings.NewReplacer("\r", "", "\n", "").Replace(string(encoded))
	return base64.NewDecoder(base64.StdEncoding, bytes.NewReader([]byte(clean)))
}

func mailAddr(addr string) mail.Address {
	return mail.Address{Address: addr}
}
