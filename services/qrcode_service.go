// services/qrcode_service.go
package services

import (
	"errors"

	"github.com/skip2/go-qrcode"
)

// QRCodeEncoder matches qrcode.Encode so tests can substitute it.
type QRCodeEncoder func(content string, level qrcode.RecoveryLevel, size int) ([]byte, error)

// GenerateQRCode renders url as a square PNG for the classroom posters
// that point students at the login page. The larger of width and height
// is used as the side.
func GenerateQRCode(url string, width, height int, encode QRCodeEncoder) ([]byte, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.New("invalid dimensions: width and height must be positive")
	}
	if url == "" {
		return nil, errors.New("no URL to encode")
	}
	if encode == nil {
		encode = qrcode.Encode
	}
	return encode(url, qrcode.Medium, max(width, height))
}
