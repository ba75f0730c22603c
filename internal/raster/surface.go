package raster

import (
	"image"
	"sync"

	"planboard/internal/geom"
)

// Surface is the rendering backend a Canvas paints onto. The engine needs only the
// surface origin (for device-to-canvas mapping) and whole-frame pixel transfer.
type Surface interface {
	Origin() geom.Point
	PaintPixels(img *image.RGBA)
	ReadPixels() *image.RGBA
}

// MemorySurface keeps the last painted frame in memory. Front-ends that render on their
// own schedule read the frame back with ReadPixels.
type MemorySurface struct {
	mu     sync.Mutex
	origin geom.Point
	frame  *image.RGBA
	paints int
}

func NewMemorySurface(origin geom.Point) *MemorySurface {
	return &MemorySurface{origin: origin}
}

func (s *MemorySurface) Origin() geom.Point {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.origin
}

// SetOrigin moves the surface, e.g. when the front-end reflows its layout.
func (s *MemorySurface) SetOrigin(p geom.Point) {
	s.mu.Lock()
	s.origin = p
	s.mu.Unlock()
}

func (s *MemorySurface) PaintPixels(img *image.RGBA) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frame = cloneRGBA(img)
	s.paints++
}

// ReadPixels returns a copy of the last painted frame, or nil before the first paint.
func (s *MemorySurface) ReadPixels() *image.RGBA {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.frame == nil {
		return nil
	}
	return cloneRGBA(s.frame)
}

// Paints counts PaintPixels calls.
func (s *MemorySurface) Paints() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paints
}

func cloneRGBA(img *image.RGBA) *image.RGBA {
	out := &image.RGBA{
		Pix:    make([]uint8, len(img.Pix)),
		Stride: img.Stride,
		Rect:   img.Rect,
	}
	copy(out.Pix, img.Pix)
	return out
}
