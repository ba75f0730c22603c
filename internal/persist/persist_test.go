package persist

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planboard/internal/collab"
	"planboard/internal/geom"
	"planboard/internal/objects"
	"planboard/internal/state"
)

var longSrc = "data:image/png;base64," + strings.Repeat("A", 400)

func sampleBoard() state.BoardState {
	b := state.New()
	b.Zoom = 1.5
	b.Pan = geom.Pt(10, -20)
	b.Objects = []objects.Record{
		{Type: objects.KindSticky, ID: 1, X: 120, Y: 130, Text: "Order produce", BgColor: "#fef08a"},
		{Type: objects.KindImage, ID: 2, X: 100, Y: 100, Width: 150, Height: 150, Src: longSrc},
		{Type: objects.KindImage, ID: 3, X: 5, Y: 5, Width: 150, Height: 150, Src: "https://example.com/a.png"},
	}
	b.Participants = []collab.Participant{{ID: "me", Name: "Chef", Role: collab.RoleHost}}
	b.ChatMessages = []collab.ChatMessage{{ID: "c1", Author: "Chef", Text: "Service at 6", Timestamp: time.Date(2026, 5, 1, 17, 0, 0, 0, time.UTC)}}
	return b
}

func TestImportJSON_Defaults(t *testing.T) {
	got, err := ImportJSON([]byte(`{"zoom": 2.5}`))
	require.NoError(t, err)

	assert.Equal(t, 2.5, got.Board.Zoom)
	assert.Equal(t, []objects.Record{}, got.Board.Objects)
	assert.Equal(t, geom.Point{X: 0, Y: 0}, got.Board.Pan)
	assert.Empty(t, got.Board.Participants)
	assert.Empty(t, got.Board.ChatMessages)
	assert.Equal(t, ToolSettings{}, got.Settings)
}

func TestImportJSON_Cases(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantErr  bool
		wantZoom float64
	}{
		{name: "empty object", input: `{}`, wantZoom: 1},
		{name: "null", input: `null`, wantZoom: 1},
		{name: "zoom clamped high", input: `{"zoom": 40}`, wantZoom: 5},
		{name: "zoom clamped low", input: `{"zoom": 0}`, wantZoom: 0.1},
		{name: "not json", input: `{zoom`, wantErr: true},
		{name: "array", input: `[1,2]`, wantErr: true},
		{name: "wrong field type", input: `{"zoom": "big"}`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ImportJSON([]byte(tt.input))
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidDocument)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantZoom, got.Board.Zoom)
		})
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	board := sampleBoard()
	now := time.Date(2026, 5, 1, 18, 30, 0, 0, time.UTC)

	raw, err := ExportJSON(board, ToolSettings{Tool: "highlighter", Color: "#ff0000", BrushSize: 7}, now)
	require.NoError(t, err)

	var fields map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &fields))
	for _, k := range []string{"timestamp", "zoom", "pan", "objects", "participants", "chatMessages", "tool", "color", "brushSize"} {
		assert.Contains(t, fields, k)
	}
	assert.NotContains(t, fields, "images")
	assert.JSONEq(t, `"2026-05-01T18:30:00Z"`, string(fields["timestamp"]))

	got, err := ImportJSON(raw)
	require.NoError(t, err)
	assert.Equal(t, board, got.Board)
	assert.Equal(t, longSrc, got.Board.Objects[1].Src)
	assert.Equal(t, ToolSettings{Tool: "highlighter", Color: "#ff0000", BrushSize: 7}, got.Settings)
}

func TestMarshalLocalTruncatesImages(t *testing.T) {
	raw, err := MarshalLocal(sampleBoard())
	require.NoError(t, err)

	var doc struct {
		Objects []objects.Record `json:"objects"`
		Images  []objects.Record `json:"images"`
	}
	require.NoError(t, json.Unmarshal(raw, &doc))

	require.Len(t, doc.Images, 2)
	assert.Equal(t, longSrc[:100]+"...", doc.Images[0].Src)
	assert.Equal(t, "https://example.com/a.png", doc.Images[1].Src)
	assert.Equal(t, longSrc[:100]+"...", doc.Objects[1].Src)
	assert.Equal(t, "Order produce", doc.Objects[0].Text)
}

func TestTruncateSrcKeepsRunesWhole(t *testing.T) {
	src := "https://example.com/x" + strings.Repeat("é", 60)
	got := truncateSrc(src)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, src[:99]+"...", got)

	b := state.New()
	b.Objects = []objects.Record{{Type: objects.KindImage, ID: 1, Width: 150, Height: 150, Src: src}}
	raw, err := MarshalLocal(b)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "\\ufffd")
	assert.NotContains(t, string(raw), "\ufffd")
}

func TestSaveDoesNotMutateInput(t *testing.T) {
	board := sampleBoard()
	p := New(NewMemoryStore(), "", nil)
	require.NoError(t, p.Save(board))
	assert.Equal(t, longSrc, board.Objects[1].Src)
}

func TestSaveLoad(t *testing.T) {
	store := NewMemoryStore()
	p := New(store, "", nil)
	assert.Equal(t, DefaultKey, p.Key())

	_, ok := p.Load()
	assert.False(t, ok)

	board := sampleBoard()
	require.NoError(t, p.Save(board))

	got, ok := p.Load()
	require.True(t, ok)
	assert.Equal(t, board.Zoom, got.Zoom)
	assert.Equal(t, board.Pan, got.Pan)
	assert.Equal(t, board.Participants, got.Participants)
	assert.Equal(t, board.ChatMessages, got.ChatMessages)
	assert.Equal(t, board.Objects[0], got.Objects[0])
	assert.Len(t, got.Objects[1].Src, 103)
}

func TestLoadCorruptFallsBackAndLogs(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))
	store := NewMemoryStore()
	require.NoError(t, store.Set(DefaultKey, "{not json"))

	got, ok := New(store, "", log).Load()
	assert.False(t, ok)
	assert.Equal(t, state.New(), got)
	assert.Contains(t, buf.String(), "corrupt")
	assert.Contains(t, buf.String(), DefaultKey)
}
