package board

import (
	"strings"

	"planboard/internal/geom"
	"planboard/internal/tool"
	"planboard/internal/viewport"
)

const clearPrompt = "Clear the entire board? This cannot be undone."

// canvasPoint maps a device position to canvas space and applies grid snapping.
func (b *Board) canvasPoint(device geom.Point) geom.Point {
	p := viewport.ToCanvasSpace(device, b.canvas.Surface().Origin())
	return viewport.Snap(p, b.tool)
}

// PointerDown starts a stroke, or sets the text insertion point with the text tool.
func (b *Board) PointerDown(device geom.Point) {
	b.canvas.BeginStroke(b.canvasPoint(device), b.tool)
}

// PointerMove extends the stroke in progress and publishes the cursor.
func (b *Board) PointerMove(device geom.Point) {
	p := b.canvasPoint(device)
	b.canvas.ExtendStroke(p, b.tool)
	b.channel.PointerMoved(b.ctx, p)
	if b.simulate {
		b.channel.Simulate(p, b.rng)
	}
}

// PointerUp commits the stroke in progress.
func (b *Board) PointerUp() {
	b.canvas.EndStroke()
}

// PointerLeave abandons the stroke without committing and clears every cursor.
func (b *Board) PointerLeave() {
	b.canvas.AbandonStroke()
	b.channel.ClearCursors()
}

// Wheel zooms one step: scrolling down zooms out.
func (b *Board) Wheel(scrollDown bool) {
	b.view = b.view.Wheel(scrollDown)
	b.autosave()
}

// TouchStart records the distance between two touches for pinch tracking.
func (b *Board) TouchStart(a, c geom.Point) {
	b.touchDist = viewport.TouchDistance(a, c)
}

// TouchMove zooms by the change in two-touch distance.
func (b *Board) TouchMove(a, c geom.Point) {
	d := viewport.TouchDistance(a, c)
	if b.touchDist > 0 {
		b.view = b.view.Pinch(b.touchDist, d)
	}
	b.touchDist = d
}

// TouchEnd finishes a pinch and saves the resulting zoom.
func (b *Board) TouchEnd() {
	if b.touchDist > 0 {
		b.touchDist = 0
		b.autosave()
	}
}

func (b *Board) ZoomIn() {
	b.view = b.view.ZoomIn()
	b.autosave()
}

func (b *Board) ZoomOut() {
	b.view = b.view.ZoomOut()
	b.autosave()
}

func (b *Board) PanBy(dx, dy float64) {
	b.view = b.view.PanBy(dx, dy)
	b.autosave()
}

func (b *Board) ResetView() {
	b.view = b.view.Reset()
	b.autosave()
}

// Undo reverts the last committed stroke.
func (b *Board) Undo() {
	b.canvas.Undo()
}

// CommitText paints text at the pending insertion point.
func (b *Board) CommitText(text string) {
	b.canvas.CommitText(text, b.tool)
}

func (b *Board) CancelText() {
	b.canvas.CancelText()
}

// RequestClear asks for confirmation, then wipes the raster and the object layer.
// A locked board is left alone without asking.
func (b *Board) RequestClear() bool {
	if b.canvas.Locked() {
		return false
	}
	if !b.confirm(clearPrompt) {
		return false
	}
	b.canvas.Clear(true)
	b.layer.Clear()
	b.autosave()
	return true
}

// Key handles a keyboard shortcut and reports whether it was consumed. Keys are given
// as lower-case names with modifiers, e.g. "ctrl+z", "cmd+s", "delete".
func (b *Board) Key(key string) bool {
	switch strings.ToLower(key) {
	case "ctrl+z", "cmd+z", "meta+z":
		b.Undo()
		return true
	case "ctrl+s", "cmd+s", "meta+s":
		if err := b.DownloadPNG(); err != nil {
			b.alert("Could not download image: " + err.Error())
		}
		return true
	case "delete", "backspace":
		if b.tool.Tool() == tool.Eraser && b.canvas.Drawing() {
			b.canvas.AbandonStroke()
			b.RequestClear()
			return true
		}
	}
	return false
}
