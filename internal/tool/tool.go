// Package tool holds the active drawing tool selection and its settings.
package tool

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

var (
	ErrUnknownTool  = errors.New("unknown tool")
	ErrInvalidColor = errors.New("invalid color")
)

// Tool is one of the fixed drawing tools. Free-form strings never reach drawing code:
// every Tool value is produced by Parse or one of the constants below.
type Tool string

const (
	Pencil      Tool = "pencil"
	Highlighter Tool = "highlighter"
	Eraser      Tool = "eraser"
	Line        Tool = "line"
	Rect        Tool = "rect"
	Circle      Tool = "circle"
	Text        Tool = "text"
)

// All lists the tools in toolbar order.
var All = []Tool{Pencil, Highlighter, Eraser, Line, Rect, Circle, Text}

// Parse validates s against the tool set.
func Parse(s string) (Tool, error) {
	t := Tool(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range All {
		if t == known {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTool, s)
}

// IsShape reports whether the tool previews by full repaint instead of painting incrementally.
func (t Tool) IsShape() bool {
	return t == Line || t == Rect || t == Circle
}

const (
	MinBrushSize = 1
	MaxBrushSize = 50
	MinGridSize  = 5
	MaxGridSize  = 50

	DefaultColor     = "#ffffff"
	DefaultBrushSize = 3
	DefaultGridSize  = 20
)

// State is the tool selection together with stroke color, brush size and grid settings.
// BrushSize and GridSize are always inside their ranges.
type State struct {
	tool       Tool
	color      string
	rgba       color.RGBA
	brushSize  int
	snapToGrid bool
	gridSize   int
}

func NewState() State {
	s := State{tool: Pencil, brushSize: DefaultBrushSize, gridSize: DefaultGridSize}
	s.color, s.rgba = DefaultColor, color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	return s
}

func (s State) Tool() Tool       { return s.tool }
func (s State) Color() string    { return s.color }
func (s State) RGBA() color.RGBA { return s.rgba }
func (s State) BrushSize() int   { return s.brushSize }
func (s State) SnapToGrid() bool { return s.snapToGrid }
func (s State) GridSize() int    { return s.gridSize }

func (s State) WithTool(t Tool) (State, error) {
	t, err := Parse(string(t))
	if err != nil {
		return s, err
	}
	s.tool = t
	return s, nil
}

// WithColor accepts "#rgb", "#rrggbb" or "rgb(r, g, b)".
func (s State) WithColor(c string) (State, error) {
	rgba, err := ParseColor(c)
	if err != nil {
		return s, err
	}
	s.color, s.rgba = strings.ToLower(strings.TrimSpace(c)), rgba
	return s, nil
}

func (s State) WithBrushSize(n int) State {
	s.brushSize = clampInt(n, MinBrushSize, MaxBrushSize)
	return s
}

func (s State) WithGrid(snap bool, size int) State {
	s.snapToGrid = snap
	s.gridSize = clampInt(size, MinGridSize, MaxGridSize)
	return s
}

// ParseColor converts a hex or rgb() color string to an opaque RGBA value.
func ParseColor(c string) (color.RGBA, error) {
	c = strings.ToLower(strings.TrimSpace(c))
	switch {
	case strings.HasPrefix(c, "#"):
		return parseHex(c[1:])
	case strings.HasPrefix(c, "rgb(") && strings.HasSuffix(c, ")"):
		parts := strings.Split(c[4:len(c)-1], ",")
		if len(parts) != 3 {
			return color.RGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, c)
		}
		var ch [3]uint8
		for i, p := range parts {
			v, err := strconv.Atoi(strings.TrimSpace(p))
			if err != nil || v < 0 || v > 255 {
				return color.RGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, c)
			}
			ch[i] = uint8(v)
		}
		return color.RGBA{R: ch[0], G: ch[1], B: ch[2], A: 0xff}, nil
	}
	return color.RGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, c)
}

func parseHex(h string) (color.RGBA, error) {
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return color.RGBA{}, fmt.Errorf("%w: #%s", ErrInvalidColor, h)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("%w: #%s", ErrInvalidColor, h)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
