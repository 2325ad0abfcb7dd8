package media

import (
	"bytes"
	"fmt"
	"image"

	// Raster decoders for everything the messenger accepts.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
)

// webpQuality is the lossy encoding quality for transcoded pictures.
const webpQuality = 80

// Transcoder validates an image buffer and re-encodes it as WebP.
//
// Validate must succeed before ToWebP may be called. Dimension checks read the
// container header only: for animated GIFs that is the logical screen (canvas)
// size, which is what matters — a single frame can be smaller than the canvas,
// and judging by frame height would mis-validate animated uploads.
type Transcoder struct {
	src       []byte
	width     int
	height    int
	validated bool
	valid     bool
}

// NewTranscoder wraps an image buffer for validation and transcoding.
func NewTranscoder(buf []byte) *Transcoder {
	return &Transcoder{src: buf}
}

// Validate decodes the image header and checks that both the width and the
// canvas height lie within [minDim, maxDim], inclusive. It fails closed: an
// undecodable buffer or an unreadable dimension is invalid.
func (t *Transcoder) Validate(minDim, maxDim int) bool {
	t.validated = true
	t.valid = false

	cfg, _, err := image.DecodeConfig(bytes.NewReader(t.src))
	if err != nil {
		return false
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return false
	}

	t.width = cfg.Width
	t.height = cfg.Height
	t.valid = cfg.Width >= minDim && cfg.Width <= maxDim &&
		cfg.Height >= minDim && cfg.Height <= maxDim
	return t.valid
}

// Dimensions returns the width and canvas height recorded by the last
// successful Validate.
func (t *Transcoder) Dimensions() (width, height int) {
	return t.width, t.height
}

// ToWebP decodes the buffer, resizes it to exactly width x height (aspect
// ratio is not preserved), and encodes it as lossy WebP. Calling it before a
// successful Validate is an error and performs no decode or encode work.
func (t *Transcoder) ToWebP(width, height int) ([]byte, error) {
	if !t.validated || !t.valid {
		return nil, ErrInvalidState
	}

	img, _, err := image.Decode(bytes.NewReader(t.src))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	resized := imaging.Resize(img, width, height, imaging.Lanczos)

	var out bytes.Buffer
	if err := webp.Encode(&out, resized, &webp.Options{Quality: webpQuality}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncode, err)
	}
	return out.Bytes(), nil
}
