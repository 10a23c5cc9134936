// Package images implements the image optimization pipeline: decode,
// bound the dimensions, and re-encode as JPEG.
package images

import (
	"bytes"
	"fmt"
	"io"

	"github.com/disintegration/imaging"
)

const (
	// defaultMaxDimension bounds the longest edge of the optimized
	// rendition.
	defaultMaxDimension = 2000

	// defaultQuality is the JPEG encode quality.
	defaultQuality = 80
)

// Processor produces size-optimized JPEG renditions of uploaded images.
type Processor struct {
	maxDimension int
	quality      int
}

// NewProcessor creates a Processor with the default bounds.
func NewProcessor() *Processor {
	return &Processor{
		maxDimension: defaultMaxDimension,
		quality:      defaultQuality,
	}
}

// Optimize decodes the image, scales it down so neither edge exceeds the
// configured maximum, and re-encodes it as JPEG. Images already within
// bounds are re-encoded without resizing. Returns the encoded bytes and
// their content type.
func (p *Processor) Optimize(r io.Reader) ([]byte, string, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() > p.maxDimension || bounds.Dy() > p.maxDimension {
		img = imaging.Fit(img, p.maxDimension, p.maxDimension, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(p.quality)); err != nil {
		return nil, "", fmt.Errorf("failed to encode image: %w", err)
	}

	return buf.Bytes(), "image/jpeg", nil
}
