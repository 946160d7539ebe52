package scancode

import (
	qrcode "github.com/skip2/go-qrcode"
)

// QRRenderer renders QR code PNGs at medium error correction, which keeps
// codes scannable from printed transcripts and phone screens alike.
type QRRenderer struct{}

func NewQRRenderer() *QRRenderer {
	return &QRRenderer{}
}

func (QRRenderer) Render(url string, size int) ([]byte, error) {
	return qrcode.Encode(url, qrcode.Medium, size)
}
