// Package raster owns the board's pixel buffer, its undo history and every destructive
// paint operation.
//
// All operations are silent no-ops when they cannot apply: a locked board, no gesture in
// progress, or no pending text insertion point. None of them returns an error.
package raster

import (
	"image"
	"image/color"
	"image/draw"
	"log/slog"

	"github.com/fogleman/gg"

	"planboard/internal/geom"
	"planboard/internal/tool"
)

const highlighterAlpha = 0.3

// Canvas is the raster drawing surface of a board.
type Canvas struct {
	img        *image.RGBA
	dc         *gg.Context
	surface    Surface
	history    *History
	background color.RGBA
	log        *slog.Logger

	locked  bool
	drawing bool
	tool    tool.Tool
	start   geom.Point
	last    geom.Point
	textAt  *geom.Point
}

// Options configures a new Canvas.
type Options struct {
	Width, Height int
	Background    color.RGBA
	HistoryLimit  int
	Surface       Surface
	Logger        *slog.Logger
}

// NewCanvas fills the buffer with the background and seeds the history with it.
func NewCanvas(opts Options) *Canvas {
	if opts.Width < 1 {
		opts.Width = 1
	}
	if opts.Height < 1 {
		opts.Height = 1
	}
	if opts.Surface == nil {
		opts.Surface = NewMemorySurface(geom.Point{})
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	img := image.NewRGBA(image.Rect(0, 0, opts.Width, opts.Height))
	c := &Canvas{
		img:        img,
		dc:         gg.NewContextForRGBA(img),
		surface:    opts.Surface,
		background: opts.Background,
		log:        opts.Logger,
	}
	c.fillBackground()
	c.history = NewHistory(Capture(c.img), opts.HistoryLimit)
	c.paint()
	return c
}

func (c *Canvas) Width() int  { return c.img.Rect.Dx() }
func (c *Canvas) Height() int { return c.img.Rect.Dy() }

func (c *Canvas) Surface() Surface { return c.surface }

// HistoryLen is the number of committed snapshots, seed included.
func (c *Canvas) HistoryLen() int { return c.history.Len() }

func (c *Canvas) Locked() bool  { return c.locked }
func (c *Canvas) Drawing() bool { return c.drawing }

// Tool is the tool of the gesture in progress.
func (c *Canvas) Tool() tool.Tool { return c.tool }

// SetLocked toggles locked mode. Locking abandons a gesture in progress.
func (c *Canvas) SetLocked(locked bool) {
	c.locked = locked
	if locked {
		c.drawing = false
		c.textAt = nil
	}
}

// Snapshot captures the current pixels.
func (c *Canvas) Snapshot() Snapshot {
	return Capture(c.img)
}

// PendingText returns the text insertion point, if one is pending.
func (c *Canvas) PendingText() (geom.Point, bool) {
	if c.textAt == nil {
		return geom.Point{}, false
	}
	return *c.textAt, true
}

// BeginStroke opens a gesture at p. With the text tool it only records the insertion
// point for CommitText.
func (c *Canvas) BeginStroke(p geom.Point, ts tool.State) {
	if c.locked {
		return
	}
	if ts.Tool() == tool.Text {
		at := p
		c.textAt = &at
		c.drawing = false
		return
	}
	c.drawing = true
	c.tool = ts.Tool()
	c.start, c.last = p, p
}

// ExtendStroke continues the gesture to p.
func (c *Canvas) ExtendStroke(p geom.Point, ts tool.State) {
	if c.locked || !c.drawing {
		return
	}

	switch t := ts.Tool(); {
	case t == tool.Pencil:
		c.segment(c.last, p, ts.RGBA(), 1, float64(ts.BrushSize()))
	case t == tool.Highlighter:
		c.segment(c.last, p, ts.RGBA(), highlighterAlpha, float64(ts.BrushSize()*2))
	case t == tool.Eraser:
		c.erase(p, ts.BrushSize())
	case t.IsShape():
		preview := PreviewFrom(c.history.Top(), Shape{
			Kind:  t,
			Start: c.start,
			End:   p,
			Color: ts.RGBA(),
			Width: float64(ts.BrushSize()),
		})
		copy(c.img.Pix, preview.Pix)
	default:
		return
	}
	c.last = p
	c.paint()
}

// EndStroke commits the current pixels to the history.
func (c *Canvas) EndStroke() {
	if !c.drawing {
		return
	}
	c.drawing = false
	if c.locked {
		return
	}
	c.history.Push(Capture(c.img))
	c.log.Debug("stroke committed", slog.String("tool", string(c.tool)), slog.Int("history", c.history.Len()))
}

// AbandonStroke ends a gesture without committing it. Pixels already painted stay until
// the next undo repaints from the previous committed snapshot.
func (c *Canvas) AbandonStroke() {
	c.drawing = false
}

// CommitText paints text at the pending insertion point and commits it.
func (c *Canvas) CommitText(text string, ts tool.State) {
	if c.locked || c.textAt == nil || text == "" {
		return
	}
	at := *c.textAt
	c.textAt = nil

	face, err := Face(TextSize(ts.BrushSize()))
	if err != nil {
		c.log.Warn("text face unavailable", slog.Any("error", err))
		return
	}
	c.dc.SetFontFace(face)
	c.dc.SetColor(ts.RGBA())
	c.dc.DrawString(text, at.X, at.Y)
	c.history.Push(Capture(c.img))
	c.paint()
}

// CancelText drops the pending insertion point.
func (c *Canvas) CancelText() {
	c.textAt = nil
}

// Clear repaints the background and resets the history to that single state. It is a
// hard reset, not an undoable step, and requires confirmation.
func (c *Canvas) Clear(confirmed bool) {
	if !confirmed || c.locked {
		return
	}
	c.drawing = false
	c.textAt = nil
	c.fillBackground()
	c.history.Reset(Capture(c.img))
	c.paint()
}

// Undo pops the newest snapshot and repaints from the one below. At the seed state it
// repaints the seed.
func (c *Canvas) Undo() {
	if c.locked {
		return
	}
	top, _ := c.history.Undo()
	c.drawing = false
	c.restore(top)
}

// Load replaces the pixels with s and commits them as a new history entry. Snapshots of a
// different size are ignored.
func (c *Canvas) Load(s Snapshot) {
	if c.locked || s.IsZero() || s.Bounds() != c.img.Rect {
		return
	}
	c.restore(s)
	c.history.Push(Capture(c.img))
}

func (c *Canvas) restore(s Snapshot) {
	copy(c.img.Pix, s.img.Pix)
	c.paint()
}

func (c *Canvas) segment(from, to geom.Point, col color.RGBA, alpha, width float64) {
	c.dc.SetRGBA(float64(col.R)/255, float64(col.G)/255, float64(col.B)/255, alpha)
	c.dc.SetLineWidth(width)
	c.dc.SetLineCap(gg.LineCapRound)
	c.dc.SetLineJoin(gg.LineJoinRound)
	c.dc.DrawLine(from.X, from.Y, to.X, to.Y)
	c.dc.Stroke()
}

// erase punches a fully transparent square of the given side centred on p.
func (c *Canvas) erase(p geom.Point, side int) {
	x0 := int(p.X) - side/2
	y0 := int(p.Y) - side/2
	r := image.Rect(x0, y0, x0+side, y0+side).Intersect(c.img.Rect)
	draw.Draw(c.img, r, image.Transparent, image.Point{}, draw.Src)
}

func (c *Canvas) fillBackground() {
	draw.Draw(c.img, c.img.Rect, image.NewUniform(c.background), image.Point{}, draw.Src)
}

func (c *Canvas) paint() {
	c.surface.PaintPixels(c.img)
}
