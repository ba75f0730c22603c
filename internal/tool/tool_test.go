package tool

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	for _, tl := range All {
		got, err := Parse(string(tl))
		require.NoError(t, err)
		assert.Equal(t, tl, got)
	}

	got, err := Parse("  Rect ")
	require.NoError(t, err)
	assert.Equal(t, Rect, got)

	_, err = Parse("spray")
	assert.ErrorIs(t, err, ErrUnknownTool)
}

func TestState_ClampsSizes(t *testing.T) {
	s := NewState()

	assert.Equal(t, MinBrushSize, s.WithBrushSize(-4).BrushSize())
	assert.Equal(t, MaxBrushSize, s.WithBrushSize(500).BrushSize())
	assert.Equal(t, 12, s.WithBrushSize(12).BrushSize())

	g := s.WithGrid(true, 1)
	assert.True(t, g.SnapToGrid())
	assert.Equal(t, MinGridSize, g.GridSize())
	assert.Equal(t, MaxGridSize, s.WithGrid(true, 99).GridSize())
}

func TestState_WithToolRejectsUnknown(t *testing.T) {
	s := NewState()
	next, err := s.WithTool("lasso")
	assert.ErrorIs(t, err, ErrUnknownTool)
	assert.Equal(t, Pencil, next.Tool())

	next, err = s.WithTool(Circle)
	require.NoError(t, err)
	assert.Equal(t, Circle, next.Tool())
	assert.True(t, next.Tool().IsShape())
	assert.False(t, Highlighter.IsShape())
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want color.RGBA
		ok   bool
	}{
		{"#ffffff", color.RGBA{255, 255, 255, 255}, true},
		{"#F00", color.RGBA{255, 0, 0, 255}, true},
		{"rgb(10, 20, 30)", color.RGBA{10, 20, 30, 255}, true},
		{"rgb(10, 20)", color.RGBA{}, false},
		{"rgb(300, 0, 0)", color.RGBA{}, false},
		{"#12345", color.RGBA{}, false},
		{"red", color.RGBA{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseColor(tt.in)
			if !tt.ok {
				assert.ErrorIs(t, err, ErrInvalidColor)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestState_WithColorKeepsPreviousOnError(t *testing.T) {
	s, err := NewState().WithColor("#00ff00")
	require.NoError(t, err)
	assert.Equal(t, "#00ff00", s.Color())

	s2, err := s.WithColor("nope")
	assert.Error(t, err)
	assert.Equal(t, "#00ff00", s2.Color())
	assert.Equal(t, color.RGBA{0, 255, 0, 255}, s2.RGBA())
}
