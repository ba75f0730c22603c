package raster

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planboard/internal/geom"
	"planboard/internal/tool"
)

var darkFill = color.RGBA{R: 0x1e, G: 0x1e, B: 0x2e, A: 0xff}

func newTestCanvas(t *testing.T) (*Canvas, *MemorySurface) {
	t.Helper()
	surface := NewMemorySurface(geom.Pt(0, 0))
	c := NewCanvas(Options{Width: 100, Height: 80, Background: darkFill, Surface: surface})
	return c, surface
}

func pencil(t *testing.T, col string, size int) tool.State {
	t.Helper()
	ts, err := tool.NewState().WithColor(col)
	require.NoError(t, err)
	return ts.WithBrushSize(size)
}

func withTool(t *testing.T, ts tool.State, tl tool.Tool) tool.State {
	t.Helper()
	ts, err := ts.WithTool(tl)
	require.NoError(t, err)
	return ts
}

func TestNewCanvas_SeedsHistory(t *testing.T) {
	c, surface := newTestCanvas(t)

	assert.Equal(t, 1, c.HistoryLen())
	assert.Equal(t, darkFill, c.Snapshot().At(50, 40))
	require.NotNil(t, surface.ReadPixels())
	assert.Equal(t, 1, surface.Paints())
}

func TestPencilStrokeThenUndo(t *testing.T) {
	c, _ := newTestCanvas(t)
	seed := c.Snapshot()
	ts := pencil(t, "#ffffff", 3)

	c.BeginStroke(geom.Pt(10, 10), ts)
	c.ExtendStroke(geom.Pt(50, 50), ts)
	c.EndStroke()

	require.Equal(t, 2, c.HistoryLen())
	px := c.Snapshot().At(30, 30)
	assert.Greater(t, px.R, uint8(200))
	assert.False(t, c.Snapshot().Equal(seed))

	c.Undo()
	assert.Equal(t, 1, c.HistoryLen())
	assert.True(t, c.Snapshot().Equal(seed))
}

func TestUndoFloor(t *testing.T) {
	c, _ := newTestCanvas(t)
	seed := c.Snapshot()
	for n := 0; n < 5; n++ {
		c.Undo()
		assert.Equal(t, 1, c.HistoryLen())
		assert.True(t, c.Snapshot().Equal(seed))
	}
}

func TestBeginStrokeHasNoVisibleEffect(t *testing.T) {
	c, _ := newTestCanvas(t)
	seed := c.Snapshot()

	c.BeginStroke(geom.Pt(20, 20), pencil(t, "#ffffff", 10))
	assert.True(t, c.Snapshot().Equal(seed))
	assert.True(t, c.Drawing())
}

func TestExtendWithoutBeginIsNoop(t *testing.T) {
	c, _ := newTestCanvas(t)
	seed := c.Snapshot()

	c.ExtendStroke(geom.Pt(20, 20), pencil(t, "#ffffff", 10))
	c.EndStroke()

	assert.True(t, c.Snapshot().Equal(seed))
	assert.Equal(t, 1, c.HistoryLen())
}

func TestHighlighterIsTranslucent(t *testing.T) {
	c, _ := newTestCanvas(t)
	ts := withTool(t, pencil(t, "#ffffff", 4), tool.Highlighter)

	c.BeginStroke(geom.Pt(10, 40), ts)
	c.ExtendStroke(geom.Pt(90, 40), ts)

	px := c.Snapshot().At(50, 40)
	assert.Greater(t, px.R, darkFill.R)
	assert.Less(t, px.R, uint8(200))
}

func TestEraserPunchesTransparency(t *testing.T) {
	c, _ := newTestCanvas(t)
	ts := withTool(t, pencil(t, "#ffffff", 10), tool.Eraser)

	c.BeginStroke(geom.Pt(50, 40), ts)
	c.ExtendStroke(geom.Pt(50, 40), ts)
	c.EndStroke()

	snap := c.Snapshot()
	assert.Equal(t, color.RGBA{}, snap.At(50, 40))
	assert.Equal(t, color.RGBA{}, snap.At(45, 35))
	assert.Equal(t, darkFill, snap.At(44, 40))
	assert.Equal(t, darkFill, snap.At(55, 40))
	assert.Equal(t, 2, c.HistoryLen())
}

func TestShapePreviewDoesNotAccumulate(t *testing.T) {
	c, _ := newTestCanvas(t)
	ts := withTool(t, pencil(t, "#ffffff", 2), tool.Line)

	c.BeginStroke(geom.Pt(10, 10), ts)
	c.ExtendStroke(geom.Pt(90, 10), ts)
	assert.Greater(t, c.Snapshot().At(50, 10).R, uint8(200))

	c.ExtendStroke(geom.Pt(10, 70), ts)
	// The first preview is gone, only the latest one remains.
	assert.Equal(t, darkFill, c.Snapshot().At(50, 10))
	assert.Greater(t, c.Snapshot().At(10, 40).R, uint8(200))

	c.EndStroke()
	assert.Equal(t, 2, c.HistoryLen())
}

func TestLockedCanvasIgnoresEverything(t *testing.T) {
	c, _ := newTestCanvas(t)
	seed := c.Snapshot()
	ts := pencil(t, "#ffffff", 5)

	c.SetLocked(true)
	c.BeginStroke(geom.Pt(10, 10), ts)
	c.ExtendStroke(geom.Pt(60, 60), ts)
	c.EndStroke()
	c.Clear(true)

	assert.True(t, c.Snapshot().Equal(seed))
	assert.Equal(t, 1, c.HistoryLen())
}

func TestLockMidStrokeSkipsCommit(t *testing.T) {
	c, _ := newTestCanvas(t)
	ts := pencil(t, "#ffffff", 5)

	c.BeginStroke(geom.Pt(10, 10), ts)
	c.ExtendStroke(geom.Pt(60, 60), ts)
	c.SetLocked(true)
	c.EndStroke()

	assert.Equal(t, 1, c.HistoryLen())
}

func TestAbandonStroke(t *testing.T) {
	c, _ := newTestCanvas(t)
	seed := c.Snapshot()
	ts := pencil(t, "#ffffff", 5)

	c.BeginStroke(geom.Pt(10, 10), ts)
	c.ExtendStroke(geom.Pt(60, 60), ts)
	c.AbandonStroke()
	c.EndStroke()

	assert.Equal(t, 1, c.HistoryLen())
	assert.False(t, c.Snapshot().Equal(seed), "partial pixels stay until undo")

	c.Undo()
	assert.True(t, c.Snapshot().Equal(seed))
}

func TestClear(t *testing.T) {
	c, _ := newTestCanvas(t)
	seed := c.Snapshot()
	ts := pencil(t, "#ffffff", 5)

	for i := 0; i < 3; i++ {
		c.BeginStroke(geom.Pt(10, float64(10+i*10)), ts)
		c.ExtendStroke(geom.Pt(90, float64(10+i*10)), ts)
		c.EndStroke()
	}
	require.Equal(t, 4, c.HistoryLen())

	c.Clear(false)
	assert.Equal(t, 4, c.HistoryLen())

	c.Clear(true)
	assert.Equal(t, 1, c.HistoryLen())
	assert.True(t, c.Snapshot().Equal(seed))

	c.Undo()
	assert.True(t, c.Snapshot().Equal(seed))
}

func TestCommitText(t *testing.T) {
	c, _ := newTestCanvas(t)
	seed := c.Snapshot()
	ts := withTool(t, pencil(t, "#ffffff", 3), tool.Text)

	c.CommitText("ignored", ts)
	assert.Equal(t, 1, c.HistoryLen())

	c.BeginStroke(geom.Pt(10, 40), ts)
	assert.False(t, c.Drawing())
	_, pending := c.PendingText()
	require.True(t, pending)

	c.CommitText("", ts)
	assert.Equal(t, 1, c.HistoryLen())

	c.CommitText("Prep", ts)
	assert.Equal(t, 2, c.HistoryLen())
	assert.False(t, c.Snapshot().Equal(seed))
	_, pending = c.PendingText()
	assert.False(t, pending)
}

func TestLoadSnapshot(t *testing.T) {
	c, _ := newTestCanvas(t)
	ts := pencil(t, "#ffffff", 5)
	c.BeginStroke(geom.Pt(10, 10), ts)
	c.ExtendStroke(geom.Pt(60, 60), ts)
	c.EndStroke()
	drawn := c.Snapshot()
	c.Clear(true)

	c.Load(drawn)
	assert.True(t, c.Snapshot().Equal(drawn))
	assert.Equal(t, 2, c.HistoryLen())

	other := NewCanvas(Options{Width: 10, Height: 10, Background: darkFill})
	c.Load(other.Snapshot())
	assert.True(t, c.Snapshot().Equal(drawn))
}

func TestPreviewFrom_Shapes(t *testing.T) {
	c, _ := newTestCanvas(t)
	base := c.Snapshot()
	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}

	// Rectangle dragged up and to the left still covers the same edges.
	rect := PreviewFrom(base, Shape{Kind: tool.Rect, Start: geom.Pt(80, 60), End: geom.Pt(20, 20), Color: white, Width: 2})
	assert.Greater(t, rect.RGBAAt(50, 20).R, uint8(200))
	assert.Greater(t, rect.RGBAAt(20, 40).R, uint8(200))
	assert.Equal(t, darkFill, rect.RGBAAt(50, 40))

	// Circle radius is the drag distance.
	circle := PreviewFrom(base, Shape{Kind: tool.Circle, Start: geom.Pt(50, 40), End: geom.Pt(70, 40), Color: white, Width: 2})
	assert.Greater(t, circle.RGBAAt(70, 40).R, uint8(150))
	assert.Equal(t, darkFill, circle.RGBAAt(50, 40))
}
