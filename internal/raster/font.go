package raster

import (
	"fmt"
	"math"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
)

const minTextSize = 12.0

var (
	fontOnce  sync.Once
	monoFont  *truetype.Font
	fontErr   error
	facesMu   sync.Mutex
	faceCache = map[float64]font.Face{}
)

// TextSize is the point size used for text committed with the given brush size.
func TextSize(brushSize int) float64 {
	return math.Max(minTextSize, float64(brushSize)*4)
}

// Face returns a cached gomono face at size points.
func Face(size float64) (font.Face, error) {
	fontOnce.Do(func() {
		monoFont, fontErr = truetype.Parse(gomono.TTF)
	})
	if fontErr != nil {
		return nil, fmt.Errorf("failed to parse font: %v", fontErr)
	}

	facesMu.Lock()
	defer facesMu.Unlock()
	if face, ok := faceCache[size]; ok {
		return face, nil
	}
	face := truetype.NewFace(monoFont, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	faceCache[size] = face
	return face, nil
}
