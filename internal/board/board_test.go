package board

import (
	"encoding/json"
	"image/color"
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planboard/internal/collab"
	"planboard/internal/geom"
	"planboard/internal/objects"
	"planboard/internal/persist"
	"planboard/internal/raster"
	"planboard/internal/tool"
)

var dark = color.RGBA{R: 0x1e, G: 0x1e, B: 0x2e, A: 0xff}

type harness struct {
	board     *Board
	surface   *raster.MemorySurface
	store     *persist.MemoryStore
	alerts    []string
	confirm   bool
	prompts   int
	downloads map[string][]byte
}

func newHarness(t *testing.T, origin geom.Point) *harness {
	t.Helper()
	h := &harness{
		surface:   raster.NewMemorySurface(origin),
		store:     persist.NewMemoryStore(),
		downloads: map[string][]byte{},
	}
	h.board = h.open()
	return h
}

// open builds a board over the harness store, as a page reload would.
func (h *harness) open() *Board {
	return New(Options{
		Width:      200,
		Height:     150,
		Background: dark,
		Surface:    h.surface,
		Persister:  persist.New(h.store, "", nil),
		Channel: collab.NewChannel(collab.Participant{ID: "me", Name: "Chef"},
			collab.WithSimulatedPeers(collab.DefaultPeers()...)),
		Simulate: true,
		Callbacks: Callbacks{
			Alert: func(msg string) { h.alerts = append(h.alerts, msg) },
			Confirm: func(string) bool {
				h.prompts++
				return h.confirm
			},
			Download: func(name string, data []byte) error {
				h.downloads[name] = data
				return nil
			},
		},
		Now:  func() time.Time { return time.UnixMilli(1767225600000) },
		Rand: rand.New(rand.NewPCG(7, 7)),
	})
}

func (h *harness) stroke(from, to geom.Point) {
	h.board.PointerDown(from)
	h.board.PointerMove(to)
	h.board.PointerUp()
}

func TestPencilStrokeAndUndo(t *testing.T) {
	h := newHarness(t, geom.Point{})
	seed := h.board.Canvas().Snapshot()
	require.NoError(t, h.board.SetColor("#ffffff"))
	h.board.SetBrushSize(3)

	h.stroke(geom.Pt(10, 10), geom.Pt(50, 50))
	assert.Equal(t, 2, h.board.Canvas().HistoryLen())

	assert.True(t, h.board.Key("ctrl+z"))
	assert.Equal(t, 1, h.board.Canvas().HistoryLen())
	assert.True(t, h.board.Canvas().Snapshot().Equal(seed))
}

func TestPointerUsesSurfaceOriginAndGrid(t *testing.T) {
	h := newHarness(t, geom.Pt(100, 50))
	h.board.SetGrid(true, 10)
	h.board.SetBrushSize(2)
	require.NoError(t, h.board.SetTool("rect"))

	// Device (122,73) maps to canvas (22,23), snapped to (20,20).
	h.board.PointerDown(geom.Pt(122, 73))
	h.board.PointerMove(geom.Pt(181, 118))
	h.board.PointerUp()

	snap := h.board.Canvas().Snapshot()
	assert.Greater(t, snap.At(40, 20).R, uint8(200))
	assert.Greater(t, snap.At(80, 50).R, uint8(200))
	assert.Equal(t, dark, snap.At(50, 40))
}

func TestPointerLeaveAbandonsAndClearsCursors(t *testing.T) {
	h := newHarness(t, geom.Point{})

	h.board.PointerDown(geom.Pt(10, 10))
	h.board.PointerMove(geom.Pt(60, 60))
	assert.NotEmpty(t, h.board.Channel().Cursors())

	h.board.PointerLeave()
	h.board.PointerUp()
	assert.Empty(t, h.board.Channel().Cursors())
	assert.Equal(t, 1, h.board.Canvas().HistoryLen())
}

func TestZoomInputsStayClamped(t *testing.T) {
	h := newHarness(t, geom.Point{})
	for i := 0; i < 80; i++ {
		h.board.Wheel(false)
	}
	assert.Equal(t, 5.0, h.board.Viewport().Zoom)

	h.board.TouchStart(geom.Pt(0, 0), geom.Pt(100, 0))
	h.board.TouchMove(geom.Pt(0, 0), geom.Pt(10000, 0))
	h.board.TouchEnd()
	assert.Equal(t, 5.0, h.board.Viewport().Zoom)

	h.board.TouchStart(geom.Pt(0, 0), geom.Pt(5000, 0))
	h.board.TouchMove(geom.Pt(0, 0), geom.Pt(0, 1))
	h.board.TouchEnd()
	assert.InDelta(t, 0.1, h.board.Viewport().Zoom, 1e-9)

	h.board.ResetView()
	assert.Equal(t, 1.0, h.board.Viewport().Zoom)
}

func TestClearShortcutNeedsEraserMidGestureAndConfirmation(t *testing.T) {
	h := newHarness(t, geom.Point{})
	h.stroke(geom.Pt(10, 10), geom.Pt(50, 50))
	h.board.AddSticky("", "")

	assert.False(t, h.board.Key("delete"), "pencil tool ignores delete")

	require.NoError(t, h.board.SetTool("eraser"))
	assert.False(t, h.board.Key("backspace"), "no gesture in progress")
	assert.Zero(t, h.prompts)

	h.board.PointerDown(geom.Pt(5, 5))
	h.confirm = false
	assert.True(t, h.board.Key("delete"))
	assert.Equal(t, 1, h.prompts)
	assert.Equal(t, 2, h.board.Canvas().HistoryLen())
	assert.Equal(t, 1, h.board.Layer().Len())

	h.board.PointerDown(geom.Pt(5, 5))
	h.confirm = true
	assert.True(t, h.board.Key("Backspace"))
	assert.Equal(t, 1, h.board.Canvas().HistoryLen())
	assert.Zero(t, h.board.Layer().Len())
}

func TestLockBlocksRasterButNotViewport(t *testing.T) {
	h := newHarness(t, geom.Point{})
	h.stroke(geom.Pt(10, 10), geom.Pt(50, 50))

	assert.True(t, h.board.ToggleLock())
	before := h.board.Canvas().Snapshot()
	h.stroke(geom.Pt(60, 60), geom.Pt(90, 90))
	h.board.Undo()
	h.confirm = true
	assert.False(t, h.board.RequestClear())
	assert.Zero(t, h.prompts)

	assert.True(t, h.board.Canvas().Snapshot().Equal(before))
	assert.Equal(t, 2, h.board.Canvas().HistoryLen())

	h.board.ZoomIn()
	assert.InDelta(t, 1.1, h.board.Viewport().Zoom, 1e-9)
	assert.False(t, h.board.ToggleLock())
}

func TestTextTool(t *testing.T) {
	h := newHarness(t, geom.Point{})
	require.NoError(t, h.board.SetTool("text"))

	h.board.PointerDown(geom.Pt(20, 60))
	h.board.PointerUp()
	assert.Equal(t, 1, h.board.Canvas().HistoryLen())

	h.board.CommitText("86 salmon")
	assert.Equal(t, 2, h.board.Canvas().HistoryLen())
}

func TestSetToolRejectsUnknown(t *testing.T) {
	h := newHarness(t, geom.Point{})
	require.ErrorIs(t, h.board.SetTool("spray"), tool.ErrUnknownTool)
	assert.Equal(t, tool.Pencil, h.board.Tool().Tool())
	require.ErrorIs(t, h.board.SetColor("blue-ish"), tool.ErrInvalidColor)
}

func TestAutosaveAndReload(t *testing.T) {
	h := newHarness(t, geom.Point{})
	h.board.AddSticky("Order eggs", "")
	panel := h.board.AddFloatingPanel("Timer", objects.PanelTimer)
	h.board.PanBy(15, -5)
	require.NoError(t, h.board.SendChat("walk-in is cold"))

	reloaded := h.open()
	assert.Equal(t, 2, reloaded.Layer().Len())
	assert.Equal(t, geom.Pt(15, -5), reloaded.Viewport().Pan)
	require.Len(t, reloaded.Channel().Messages(), 1)
	assert.Equal(t, "walk-in is cold", reloaded.Channel().Messages()[0].Text)
	assert.Equal(t, 1, reloaded.Canvas().HistoryLen(), "raster is not persisted")

	next := reloaded.AddFloatingPanel("Checklist", objects.PanelChecklist)
	assert.Greater(t, next.Z, panel.Z)
	assert.Greater(t, next.ID, panel.ID)
}

func TestRosterStableAcrossLaunches(t *testing.T) {
	store := persist.NewMemoryStore()
	var b *Board
	for range 4 {
		b = New(Options{
			Width:     50,
			Height:    50,
			Persister: persist.New(store, "", nil),
			Channel: collab.NewChannel(collab.Participant{Name: "Chef"},
				collab.WithSimulatedPeers(collab.DefaultPeers()...)),
			Rand: rand.New(rand.NewPCG(1, 2)),
		})
		b.AddSticky("", "")
	}

	names := []string{}
	for _, p := range b.Channel().Participants() {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"Chef", "Head Chef", "Front of House"}, names)
	assert.Equal(t, 4, b.Layer().Len())
}

func TestSnapshotGallery(t *testing.T) {
	h := newHarness(t, geom.Point{})

	_, err := h.board.SaveSnapshot("  ")
	require.Error(t, err)
	require.Len(t, h.alerts, 1)
	assert.Zero(t, h.board.Gallery().Len())

	h.stroke(geom.Pt(10, 10), geom.Pt(90, 90))
	h.board.AddSticky("Lunch prep", "")
	drawn := h.board.Canvas().Snapshot()
	rec, err := h.board.SaveSnapshot("Lunch")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(rec.RasterDataURL, "data:image/png;base64,"))

	h.confirm = true
	require.NoError(t, h.board.SetTool("eraser"))
	h.board.PointerDown(geom.Pt(1, 1))
	require.True(t, h.board.Key("delete"))
	h.board.ZoomOut()
	require.Zero(t, h.board.Layer().Len())

	assert.False(t, h.board.RestoreSnapshot("missing"))
	require.True(t, h.board.RestoreSnapshot(rec.ID))
	assert.Equal(t, 1, h.board.Layer().Len())
	assert.Equal(t, 1.0, h.board.Viewport().Zoom)
	assert.True(t, h.board.Canvas().Snapshot().Equal(drawn))

	assert.True(t, h.board.DeleteSnapshot(rec.ID))
	assert.False(t, h.board.DeleteSnapshot(rec.ID))
}

func TestImportExport(t *testing.T) {
	h := newHarness(t, geom.Point{})
	h.board.AddImage("data:image/png;base64,"+strings.Repeat("Q", 300), nil)
	require.NoError(t, h.board.SetTool("highlighter"))
	require.NoError(t, h.board.SetColor("#ff0000"))

	require.NoError(t, h.board.DownloadJSON())
	data, ok := h.downloads["whiteboard-1767225600000.json"]
	require.True(t, ok)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "highlighter", doc["tool"])
	assert.Equal(t, "#ff0000", doc["color"])

	other := newHarness(t, geom.Point{})
	require.NoError(t, other.board.ImportJSON(data))
	assert.Equal(t, tool.Highlighter, other.board.Tool().Tool())
	require.Equal(t, 1, other.board.Layer().Len())
	img := other.board.Layer().Objects()[0].(*objects.PlacedImage)
	assert.Len(t, img.Src, len("data:image/png;base64,")+300)

	err := other.board.ImportJSON([]byte("{oops"))
	require.ErrorIs(t, err, persist.ErrInvalidDocument)
	assert.Len(t, other.alerts, 1)
	assert.Equal(t, 1, other.board.Layer().Len(), "current board kept")
}

func TestImportZoomOnly(t *testing.T) {
	h := newHarness(t, geom.Point{})
	h.board.AddSticky("", "")
	h.board.PanBy(40, 40)

	require.NoError(t, h.board.ImportJSON([]byte(`{"zoom": 2.5}`)))
	assert.Equal(t, 2.5, h.board.Viewport().Zoom)
	assert.Equal(t, geom.Point{}, h.board.Viewport().Pan)
	assert.Zero(t, h.board.Layer().Len())
}

func TestDownloads(t *testing.T) {
	h := newHarness(t, geom.Point{})
	h.board.AddSticky("", "")

	assert.True(t, h.board.Key("cmd+s"))
	png := h.downloads["whiteboard-1767225600000.png"]
	require.NotEmpty(t, png)
	assert.Equal(t, "\x89PNG", string(png[:4]))

	require.NoError(t, h.board.DownloadPDF())
	assert.Equal(t, "%PDF", string(h.downloads["whiteboard-1767225600000.pdf"][:4]))

	require.NoError(t, h.board.DownloadBoardImage())
	assert.NotEmpty(t, h.downloads["whiteboard-1767225600000.board.png"])

	b := New(Options{Width: 10, Height: 10})
	assert.ErrorIs(t, b.DownloadPNG(), ErrNoDownloader)
}

func TestDropFile(t *testing.T) {
	h := newHarness(t, geom.Pt(10, 10))

	at := geom.Pt(210, 160)
	o, err := h.board.DropFile("plating.png", "image/png", []byte{1, 2, 3}, &at)
	require.NoError(t, err)
	img := o.(*objects.PlacedImage)
	assert.Equal(t, geom.Pt(125, 75), img.Position())
	assert.Equal(t, "data:image/png;base64,AQID", img.Src)

	o, err = h.board.DropFile("menu.pdf", "application/pdf", []byte("pdf"), nil)
	require.NoError(t, err)
	m := o.(*objects.MediaEmbed)
	assert.Equal(t, objects.MediaPDF, m.Media)
	assert.Equal(t, "menu.pdf", m.FileName)
	assert.Equal(t, 400.0, m.Height)

	o, err = h.board.DropFile("tick.mp3", "audio/mpeg", []byte("x"), nil)
	require.NoError(t, err)
	assert.Equal(t, objects.MediaAudio, o.(*objects.MediaEmbed).Media)

	_, err = h.board.DropFile("notes.docx", "application/msword", nil, nil)
	require.ErrorIs(t, err, ErrUnsupportedFile)
	assert.Len(t, h.alerts, 1)
	assert.Equal(t, 3, h.board.Layer().Len())
}

func TestChat(t *testing.T) {
	h := newHarness(t, geom.Point{})
	require.Error(t, h.board.SendChat("  "))
	assert.Len(t, h.alerts, 1)

	h.board.ToggleMute("sim-chef")
	for _, p := range h.board.Channel().Participants() {
		if p.ID == "sim-chef" {
			assert.True(t, p.IsMuted)
		}
	}
}
