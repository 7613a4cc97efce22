package qr

import (
	"encoding/base64"
	"fmt"

	"github.com/skip2/go-qrcode"
)

const dataURLPrefix = "data:image/png;base64,"

// Encoder turns a payload into a scannable image.
type Encoder interface {
	DataURL(payload []byte) (string, error)
}

type PNGEncoder struct {
	size  int
	level qrcode.RecoveryLevel
}

func NewPNGEncoder(size int) *PNGEncoder {
	if size <= 0 {
		size = 256
	}
	return &PNGEncoder{size: size, level: qrcode.Medium}
}

// DataURL renders payload as a PNG QR code and returns it as a data URL.
func (e *PNGEncoder) DataURL(payload []byte) (string, error) {
	png, err := qrcode.Encode(string(payload), e.level, e.size)
	if err != nil {
		return "", fmt.Errorf("failed to encode qr code: %w", err)
	}
	return dataURLPrefix + base64.StdEncoding.EncodeToString(png), nil
}
