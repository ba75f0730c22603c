package main

import (
	"fmt"
	"image"
	"image/color"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"planboard/internal/export"
	"planboard/internal/geom"
	"planboard/internal/objects"
	"planboard/internal/tool"
)

const halfBlock = '▀'

var (
	backdrop   = color.RGBA{0x11, 0x11, 0x1b, 0xff}
	objectInk  = color.RGBA{0x1e, 0x1e, 0x2e, 0xff}
	imageFill  = color.RGBA{0x58, 0x5b, 0x70, 0xff}
	mediaFill  = color.RGBA{0x31, 0x32, 0x44, 0xff}
	panelFill  = color.RGBA{0x45, 0x47, 0x5a, 0xff}
	panelTitle = color.RGBA{0x89, 0xb4, 0xfa, 0xff}
	lightInk   = color.RGBA{0xcd, 0xd6, 0xf4, 0xff}

	luminanceRamp = []rune(" .:-=+*#%@")
)

// cell is one terminal character. Raster cells draw two pixels with a half block: fg is
// the upper pixel and bg the lower one.
type cell struct {
	ch     rune
	fg, bg color.RGBA
}

type grid [][]cell

// renderGrid samples the raster under every cell and stacks objects, the text caret and
// remote cursors on top.
func (m *model) renderGrid(cols, rows int) grid {
	g := make(grid, rows)
	img := m.surface.ReadPixels()
	origin := m.surface.Origin()
	w, h := m.pixelsPerCell()

	for r := range rows {
		g[r] = make([]cell, cols)
		for c := range cols {
			x := (float64(c)+0.5)*w - origin.X
			top := (float64(r)+0.25)*h - origin.Y
			bottom := (float64(r)+0.75)*h - origin.Y
			g[r][c] = cell{ch: halfBlock, fg: sample(img, x, top), bg: sample(img, x, bottom)}
		}
	}

	for _, o := range export.DrawOrder(m.board.Layer().Objects()) {
		m.drawObject(g, o)
	}
	if p, ok := m.board.Canvas().PendingText(); ok {
		col, row := m.cellAt(p)
		g.put(col, row, '│', m.board.Tool().RGBA(), g.bgAt(col, row))
	}
	m.drawCursors(g)
	return g
}

func sample(img *image.RGBA, x, y float64) color.RGBA {
	if img == nil || x < 0 || y < 0 {
		return backdrop
	}
	px, py := int(x), int(y)
	if !(image.Point{X: px, Y: py}).In(img.Rect) {
		return backdrop
	}
	c := img.RGBAAt(px, py)
	if c.A == 0 {
		return backdrop
	}
	return c
}

func (m *model) drawObject(g grid, o objects.Object) {
	r := objects.Bounds(o)
	c0, r0 := m.cellAt(r.Min)
	c1, r1 := m.cellAt(r.Max())
	if c1 <= c0 {
		c1 = c0 + 1
	}
	if r1 <= r0 {
		r1 = r0 + 1
	}

	fill, ink := mediaFill, lightInk
	var lines []string
	switch v := o.(type) {
	case *objects.StickyNote:
		if bg, err := tool.ParseColor(v.BgColor); err == nil {
			fill = bg
		}
		ink = objectInk
		lines = strings.Split(v.Text, "\n")
	case *objects.PlacedImage:
		fill = imageFill
		lines = []string{"[image]"}
	case *objects.MediaEmbed:
		label := string(v.Media)
		if v.FileName != "" {
			label += ": " + v.FileName
		}
		lines = []string{"▶ " + label}
	case *objects.FloatingPanel:
		fill = panelFill
		lines = []string{fmt.Sprintf("%s [%s] #%d", v.Title, v.PanelType, v.Z)}
	}

	for row := r0; row < r1; row++ {
		for col := c0; col < c1; col++ {
			g.put(col, row, ' ', ink, fill)
		}
	}
	if o.Kind() == objects.KindPanel {
		for col := c0; col < c1; col++ {
			g.put(col, r0, ' ', objectInk, panelTitle)
		}
		g.text(c0, r0, c1-c0, lines[0], objectInk, panelTitle)
		return
	}
	for i, line := range lines {
		if r0+i >= r1 {
			break
		}
		g.text(c0, r0+i, c1-c0, line, ink, fill)
	}
}

func (m *model) drawCursors(g grid) {
	cursors := m.board.Channel().Cursors()
	ids := make([]string, 0, len(cursors))
	for id := range cursors {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		cur := cursors[id]
		col, row := m.cellAt(geom.Pt(cur.X, cur.Y))
		fg := lightInk
		if c, err := tool.ParseColor(cur.Color); err == nil {
			fg = c
		}
		g.put(col, row, '➤', fg, g.bgAt(col, row))
		g.text(col+1, row, len(cur.Name), cur.Name, objectInk, fg)
	}
}

func (g grid) put(col, row int, ch rune, fg, bg color.RGBA) {
	if row < 0 || row >= len(g) || col < 0 || col >= len(g[row]) {
		return
	}
	g[row][col] = cell{ch: ch, fg: fg, bg: bg}
}

func (g grid) bgAt(col, row int) color.RGBA {
	if row < 0 || row >= len(g) || col < 0 || col >= len(g[row]) {
		return backdrop
	}
	return g[row][col].bg
}

// text writes s from col, cut to width cells.
func (g grid) text(col, row, width int, s string, fg, bg color.RGBA) {
	for i, ch := range []rune(clip(s, width)) {
		g.put(col+i, row, ch, fg, bg)
	}
}

// styled renders the grid with colours, one lipgloss style per run of equal colours.
func (g grid) styled() []string {
	styles := map[[2]color.RGBA]lipgloss.Style{}
	out := make([]string, len(g))
	for r, row := range g {
		var b strings.Builder
		start := 0
		for c := 1; c <= len(row); c++ {
			if c < len(row) && row[c].fg == row[start].fg && row[c].bg == row[start].bg {
				continue
			}
			key := [2]color.RGBA{row[start].fg, row[start].bg}
			st, ok := styles[key]
			if !ok {
				st = lipgloss.NewStyle().
					Foreground(lipgloss.Color(hex(key[0]))).
					Background(lipgloss.Color(hex(key[1])))
				styles[key] = st
			}
			var run strings.Builder
			for _, cl := range row[start:c] {
				run.WriteRune(cl.ch)
			}
			b.WriteString(st.Render(run.String()))
			start = c
		}
		out[r] = b.String()
	}
	return out
}

// plain renders the grid as uncoloured text, shading raster cells by brightness.
func (g grid) plain() []string {
	out := make([]string, len(g))
	for r, row := range g {
		var b strings.Builder
		for _, cl := range row {
			if cl.ch != halfBlock {
				b.WriteRune(cl.ch)
				continue
			}
			b.WriteRune(shade(cl.fg, cl.bg))
		}
		out[r] = strings.TrimRight(b.String(), " ")
	}
	return out
}

// shade maps the contrast of two pixels against the backdrop onto the ramp.
func shade(a, b color.RGBA) rune {
	diff := func(c color.RGBA) float64 {
		return (absDiff(c.R, backdrop.R) + absDiff(c.G, backdrop.G) + absDiff(c.B, backdrop.B)) / 3
	}
	v := (diff(a) + diff(b)) / 2 / 255
	i := int(v * float64(len(luminanceRamp)-1))
	return luminanceRamp[i]
}

func absDiff(x, y uint8) float64 {
	if x > y {
		return float64(x - y)
	}
	return float64(y - x)
}

func hex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
