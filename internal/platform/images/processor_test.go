package images

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, width, height int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), A: 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestOptimizeReencodesAsJPEG(t *testing.T) {
	t.Parallel()

	source := encodePNG(t, 100, 80)
	out, contentType, err := NewProcessor().Optimize(bytes.NewReader(source))
	require.NoError(t, err)

	assert.Equal(t, "image/jpeg", contentType)

	decoded, format, err := image.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 100, decoded.Bounds().Dx())
	assert.Equal(t, 80, decoded.Bounds().Dy())
}

func TestOptimizeBoundsLargeImages(t *testing.T) {
	t.Parallel()

	p := &Processor{maxDimension: 50, quality: 80}
	source := encodePNG(t, 200, 100)

	out, _, err := p.Optimize(bytes.NewReader(source))
	require.NoError(t, err)

	decoded, _, err := image.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 50, decoded.Bounds().Dx(), "longest edge must shrink to the bound")
	assert.Equal(t, 25, decoded.Bounds().Dy(), "aspect ratio must be preserved")
}

func TestOptimizeRejectsNonImages(t *testing.T) {
	t.Parallel()

	_, _, err := NewProcessor().Optimize(strings.NewReader("definitely not an image"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode image")
}
