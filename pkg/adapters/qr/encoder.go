package qr

import (
	"encoding/base64"
	"fmt"
	"strings"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/qrtrack/go-qr-tracker/pkg/ports"
)

const defaultSize = 300

// Encoder renders QR images with medium error correction. The rendered
// payload is produced once at link creation and stored as-is.
type Encoder struct {
	size int
}

func NewEncoder(size int) *Encoder {
	if size <= 0 {
		size = defaultSize
	}
	return &Encoder{size: size}
}

func (e *Encoder) Encode(text, format string) (string, error) {
	switch format {
	case "svg":
		return e.encodeSVG(text)
	default:
		return e.encodePNG(text)
	}
}

func (e *Encoder) encodePNG(text string) (string, error) {
	png, err := qrcode.Encode(text, qrcode.Medium, e.size)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}

// encodeSVG draws the module bitmap as 1x1 rects on a crisp-edges grid; the
// viewBox carries the geometry so the markup scales to any display size.
func (e *Encoder) encodeSVG(text string) (string, error) {
	code, err := qrcode.New(text, qrcode.Medium)
	if err != nil {
		return "", err
	}
	bitmap := code.Bitmap()
	n := len(bitmap)

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" shape-rendering="crispEdges">`,
		e.size, e.size, n, n)
	fmt.Fprintf(&b, `<rect width="%d" height="%d" fill="#ffffff"/>`, n, n)
	for y, row := range bitmap {
		for x, dark := range row {
			if dark {
				fmt.Fprintf(&b, `<rect x="%d" y="%d" width="1" height="1" fill="#000000"/>`, x, y)
			}
		}
	}
	b.WriteString(`</svg>`)
	return b.String(), nil
}

var _ ports.QREncoder = (*Encoder)(nil)
