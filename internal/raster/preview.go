package raster

import (
	"image"
	"image/color"

	"github.com/fogleman/gg"

	"planboard/internal/geom"
	"planboard/internal/tool"
)

// Shape is a line, rectangle or circle gesture from Start to End.
type Shape struct {
	Kind  tool.Tool
	Start geom.Point
	End   geom.Point
	Color color.RGBA
	Width float64
}

// PreviewFrom draws shape over a copy of base and returns the copy. base is not touched,
// so repeated pointer moves never accumulate overlapping previews.
func PreviewFrom(base Snapshot, shape Shape) *image.RGBA {
	img := base.Image()
	if img == nil {
		return nil
	}
	dc := gg.NewContextForRGBA(img)
	drawShape(dc, shape)
	return img
}

func drawShape(dc *gg.Context, s Shape) {
	dc.SetColor(s.Color)
	dc.SetLineWidth(s.Width)
	dc.SetLineCap(gg.LineCapRound)
	dc.SetLineJoin(gg.LineJoinRound)

	switch s.Kind {
	case tool.Line:
		dc.DrawLine(s.Start.X, s.Start.Y, s.End.X, s.End.Y)
	case tool.Rect:
		// Signed size: the rectangle may be dragged out in any direction.
		dc.DrawRectangle(s.Start.X, s.Start.Y, s.End.X-s.Start.X, s.End.Y-s.Start.Y)
	case tool.Circle:
		dc.DrawCircle(s.Start.X, s.Start.Y, s.Start.Dist(s.End))
	default:
		return
	}
	dc.Stroke()
}
