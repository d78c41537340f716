// pkg/qr/qr.go
package qr

import (
	"encoding/base64"
	"fmt"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

const defaultSize = 256

// PNG renders the given string as a scannable QR code. Lightning payment
// requests are uppercased first, which lets the encoder use the compact
// alphanumeric mode most scanners expect.
func PNG(data string, size int) ([]byte, error) {
	if data == "" {
		return nil, fmt.Errorf("nothing to encode")
	}
	if size <= 0 {
		size = defaultSize
	}

	png, err := qrcode.Encode(normalize(data), qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("failed to encode QR code: %w", err)
	}
	return png, nil
}

// DataURI renders the string as an inline image suitable for an <img> src.
func DataURI(data string, size int) (string, error) {
	png, err := PNG(data, size)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}

func normalize(data string) string {
	if strings.HasPrefix(strings.ToLower(data), "ln") {
		return strings.ToUpper(data)
	}
	return data
}
