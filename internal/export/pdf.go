package export

import (
	"bytes"
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"

	"planboard/internal/objects"
	"planboard/internal/raster"
	"planboard/internal/tool"
)

const rasterImage = "raster"

// PDF writes a single page the size of the canvas: the raster as a background image and
// every object as an outlined box with its label. One canvas pixel is one point.
func PDF(w io.Writer, snap raster.Snapshot, objs []objects.Object) error {
	png, err := snap.PNG()
	if err != nil {
		return err
	}
	b := snap.Bounds()
	width, height := float64(b.Dx()), float64(b.Dy())

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: width, Ht: height},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle("Whiteboard", true)
	pdf.AddPage()

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader(rasterImage, opts, bytes.NewReader(png))
	pdf.ImageOptions(rasterImage, 0, 0, width, height, false, opts, 0, "")

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetFont("Courier", "", 10)
	pdf.SetLineWidth(0.5)

	for _, o := range DrawOrder(objs) {
		r := objects.Bounds(o)
		x, y, w, h := r.Min.X, r.Min.Y, r.Size.Width, r.Size.Height

		fill := panelFill
		text := lightInk
		label := ""
		switch v := o.(type) {
		case *objects.StickyNote:
			if c, err := tool.ParseColor(v.BgColor); err == nil {
				fill = c
			}
			text = ink
			label = v.Text
		case *objects.PlacedImage:
			fill = mediaFill
			label = "image"
		case *objects.MediaEmbed:
			fill = mediaFill
			label = string(v.Media)
			if v.FileName != "" {
				label += ": " + v.FileName
			}
		case *objects.FloatingPanel:
			label = v.Title
		}

		pdf.SetFillColor(int(fill.R), int(fill.G), int(fill.B))
		pdf.SetDrawColor(int(outline.R), int(outline.G), int(outline.B))
		pdf.Rect(x, y, w, h, "FD")
		pdf.SetTextColor(int(text.R), int(text.G), int(text.B))
		pdf.SetXY(x+labelPad, y+labelPad)
		pdf.MultiCell(w-2*labelPad, 12, tr(label), "", "L", false)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("export: write pdf: %w", err)
	}
	return nil
}
