package raster

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/png"
	"strings"

	"github.com/fogleman/gg"
)

const pngDataURLPrefix = "data:image/png;base64,"

var ErrInvalidDataURL = errors.New("invalid image data url")

// Snapshot is an immutable full-canvas pixel capture. The buffer is copied on the way in
// and on the way out, so no holder can alias or mutate it.
type Snapshot struct {
	img *image.RGBA
}

// Capture copies img into a new Snapshot.
func Capture(img *image.RGBA) Snapshot {
	return Snapshot{img: cloneRGBA(img)}
}

func (s Snapshot) IsZero() bool {
	return s.img == nil
}

func (s Snapshot) Bounds() image.Rectangle {
	if s.img == nil {
		return image.Rectangle{}
	}
	return s.img.Rect
}

// Image returns a private copy of the captured pixels.
func (s Snapshot) Image() *image.RGBA {
	if s.img == nil {
		return nil
	}
	return cloneRGBA(s.img)
}

func (s Snapshot) At(x, y int) color.RGBA {
	if s.img == nil {
		return color.RGBA{}
	}
	return s.img.RGBAAt(x, y)
}

// Equal reports whether both snapshots hold identical pixels.
func (s Snapshot) Equal(o Snapshot) bool {
	if s.img == nil || o.img == nil {
		return s.img == o.img
	}
	return s.img.Rect == o.img.Rect && bytes.Equal(s.img.Pix, o.img.Pix)
}

// PNG encodes the snapshot.
func (s Snapshot) PNG() ([]byte, error) {
	if s.img == nil {
		return nil, fmt.Errorf("encode png: empty snapshot")
	}
	var buf bytes.Buffer
	if err := gg.NewContextForRGBA(s.Image()).EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// DataURL encodes the snapshot as a base64 PNG data URL.
func (s Snapshot) DataURL() (string, error) {
	data, err := s.PNG()
	if err != nil {
		return "", err
	}
	return pngDataURLPrefix + base64.StdEncoding.EncodeToString(data), nil
}

// DecodeDataURL parses a PNG data URL produced by DataURL.
func DecodeDataURL(url string) (Snapshot, error) {
	if !strings.HasPrefix(url, pngDataURLPrefix) {
		return Snapshot{}, ErrInvalidDataURL
	}
	data, err := base64.StdEncoding.DecodeString(url[len(pngDataURLPrefix):])
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrInvalidDataURL, err)
	}
	im, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrInvalidDataURL, err)
	}
	rgba, ok := gg.NewContextForImage(im).Image().(*image.RGBA)
	if !ok {
		return Snapshot{}, ErrInvalidDataURL
	}
	return Snapshot{img: rgba}, nil
}
