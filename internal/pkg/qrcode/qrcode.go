// Package qrcode renders text, usually an otpauth:// URI, into a PNG QR code.
package qrcode

import (
	"errors"
	"strings"

	skipqrcode "github.com/skip2/go-qrcode"
)

var (
	// ErrEmptyContent is returned when there is nothing to encode.
	ErrEmptyContent = errors.New("qrcode: content cannot be empty")
	// ErrRender is returned when the encoder fails.
	ErrRender = errors.New("qrcode: failed to render")
)

// DefaultSize is the PNG edge length in pixels used when none is configured.
const DefaultSize = 256

// Renderer turns text into image bytes.
type Renderer interface {
	Render(content string) ([]byte, error)
}

// PNG renders QR codes as PNG images.
type PNG struct {
	size  int
	level skipqrcode.RecoveryLevel
}

// NewPNG returns a PNG renderer. A non-positive size falls back to DefaultSize.
func NewPNG(size int) *PNG {
	if size <= 0 {
		size = DefaultSize
	}

	return &PNG{size: size, level: skipqrcode.Medium}
}

// Render encodes content into a PNG image.
func (p *PNG) Render(content string) ([]byte, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}

	img, err := skipqrcode.Encode(content, p.level, p.size)
	if err != nil {
		return nil, errors.Join(ErrRender, err)
	}

	return img, nil
}
