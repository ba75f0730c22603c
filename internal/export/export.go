// Package export renders a board for download: the raster as PNG, a flattened image of
// raster and objects, and a one-page PDF.
package export

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fogleman/gg"

	"planboard/internal/objects"
	"planboard/internal/raster"
	"planboard/internal/tool"
)

const (
	filePrefix = "whiteboard-"
	labelSize  = 12.0
	labelPad   = 6.0
	titleBar   = 20.0
)

var (
	outline    = color.RGBA{R: 0x2b, G: 0x2b, B: 0x3b, A: 0xff}
	ink        = color.RGBA{R: 0x11, G: 0x11, B: 0x11, A: 0xff}
	panelFill  = color.RGBA{R: 0x31, G: 0x32, B: 0x44, A: 0xff}
	panelTitle = color.RGBA{R: 0x45, G: 0x47, B: 0x5a, A: 0xff}
	mediaFill  = color.RGBA{R: 0x18, G: 0x18, B: 0x25, A: 0xff}
	lightInk   = color.RGBA{R: 0xcd, G: 0xd6, B: 0xf4, A: 0xff}
)

// Filename is the download name for a board export, whiteboard-<epoch-ms>.<ext>.
func Filename(now time.Time, ext string) string {
	return fmt.Sprintf("%s%d.%s", filePrefix, now.UnixMilli(), ext)
}

func PNGFilename(now time.Time) string  { return Filename(now, "png") }
func JSONFilename(now time.Time) string { return Filename(now, "json") }
func PDFFilename(now time.Time) string  { return Filename(now, "pdf") }

// WriteFile writes data to dir/name and returns the full path.
func WriteFile(dir, name string, data []byte) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("export: create %s: %w", dir, err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("export: write %s: %w", path, err)
	}
	return path, nil
}

// DrawOrder returns objs with panels moved to the end in z order, the order they are
// stacked on screen.
func DrawOrder(objs []objects.Object) []objects.Object {
	out := make([]objects.Object, 0, len(objs))
	var panels []*objects.FloatingPanel
	for _, o := range objs {
		if p, ok := o.(*objects.FloatingPanel); ok {
			panels = append(panels, p)
			continue
		}
		out = append(out, o)
	}
	sort.SliceStable(panels, func(i, j int) bool { return panels[i].Z < panels[j].Z })
	for _, p := range panels {
		out = append(out, p)
	}
	return out
}

// Compose draws the object layer over a copy of the raster.
func Compose(snap raster.Snapshot, objs []objects.Object) (*image.RGBA, error) {
	if snap.IsZero() {
		return nil, fmt.Errorf("export: empty snapshot")
	}
	img := snap.Image()
	dc := gg.NewContextForRGBA(img)

	face, err := raster.Face(labelSize)
	if err != nil {
		return nil, err
	}
	dc.SetFontFace(face)
	dc.SetLineWidth(1)

	for _, o := range DrawOrder(objs) {
		drawObject(dc, o)
	}
	return img, nil
}

func drawObject(dc *gg.Context, o objects.Object) {
	r := objects.Bounds(o)
	x, y, w, h := r.Min.X, r.Min.Y, r.Size.Width, r.Size.Height

	switch v := o.(type) {
	case *objects.StickyNote:
		bg, err := tool.ParseColor(v.BgColor)
		if err != nil {
			bg, _ = tool.ParseColor(objects.DefaultStickyColor)
		}
		box(dc, x, y, w, h, bg)
		dc.SetColor(ink)
		dc.DrawStringWrapped(v.Text, x+labelPad, y+labelPad, 0, 0, w-2*labelPad, 1.3, gg.AlignLeft)
	case *objects.PlacedImage:
		if drawImage(dc, v) {
			return
		}
		box(dc, x, y, w, h, mediaFill)
		dc.SetColor(lightInk)
		dc.DrawStringAnchored("image", x+w/2, y+h/2, 0.5, 0.5)
	case *objects.MediaEmbed:
		box(dc, x, y, w, h, mediaFill)
		label := string(v.Media)
		if v.FileName != "" {
			label += ": " + v.FileName
		}
		dc.SetColor(lightInk)
		dc.DrawStringAnchored(label, x+w/2, y+h/2, 0.5, 0.5)
	case *objects.FloatingPanel:
		box(dc, x, y, w, h, panelFill)
		dc.SetColor(panelTitle)
		dc.DrawRectangle(x, y, w, titleBar)
		dc.Fill()
		dc.SetColor(lightInk)
		dc.DrawStringAnchored(v.Title, x+labelPad, y+titleBar/2, 0, 0.5)
	}
}

// drawImage paints a decodable PNG source scaled into its placement box.
func drawImage(dc *gg.Context, im *objects.PlacedImage) bool {
	snap, err := raster.DecodeDataURL(im.Src)
	if err != nil {
		return false
	}
	b := snap.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return false
	}
	dc.Push()
	dc.Translate(im.X, im.Y)
	dc.Scale(im.Width/float64(b.Dx()), im.Height/float64(b.Dy()))
	dc.DrawImage(snap.Image(), 0, 0)
	dc.Pop()
	return true
}

func box(dc *gg.Context, x, y, w, h float64, fill color.Color) {
	dc.SetColor(fill)
	dc.DrawRectangle(x, y, w, h)
	dc.Fill()
	dc.SetColor(outline)
	dc.DrawRectangle(x, y, w, h)
	dc.Stroke()
}
