// Package persist serializes board state with two profiles. The local profile, written
// to a Store on every change, truncates image sources to keep the stored value small.
// The export profile is full fidelity and also carries the tool settings.
package persist

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"planboard/internal/collab"
	"planboard/internal/geom"
	"planboard/internal/objects"
	"planboard/internal/state"
	"planboard/internal/viewport"
)

const (
	DefaultKey = "whiteboard-state"

	// srcLimit is how much of an image source the local profile keeps.
	srcLimit     = 100
	srcEllipsis  = "..."
	exportIndent = "  "
)

var ErrInvalidDocument = errors.New("invalid board document")

// document is the wire shape of both profiles. Pointer fields tell a missing field from
// a zero one so defaults can be substituted.
type document struct {
	Timestamp    *string              `json:"timestamp,omitempty"`
	Zoom         *float64             `json:"zoom"`
	Pan          *geom.Point          `json:"pan"`
	Objects      []objects.Record     `json:"objects"`
	Participants []collab.Participant `json:"participants"`
	ChatMessages []collab.ChatMessage `json:"chatMessages"`
	Images       []objects.Record     `json:"images,omitempty"`
	Tool         *string              `json:"tool,omitempty"`
	Color        *string              `json:"color,omitempty"`
	BrushSize    *int                 `json:"brushSize,omitempty"`
}

// ToolSettings are the tool fields carried by an exported file. Zero values mean the
// field was absent.
type ToolSettings struct {
	Tool      string
	Color     string
	BrushSize int
}

// Imported is the result of reading an exported file.
type Imported struct {
	Board    state.BoardState
	Settings ToolSettings
}

// Persister saves and loads the local profile under a fixed key.
type Persister struct {
	store Store
	key   string
	log   *slog.Logger
}

func New(store Store, key string, log *slog.Logger) *Persister {
	if key == "" {
		key = DefaultKey
	}
	if log == nil {
		log = slog.Default()
	}
	return &Persister{store: store, key: key, log: log}
}

func (p *Persister) Key() string { return p.key }

// Save writes the local profile of board.
func (p *Persister) Save(board state.BoardState) error {
	raw, err := MarshalLocal(board)
	if err != nil {
		return err
	}
	if err := p.store.Set(p.key, string(raw)); err != nil {
		return fmt.Errorf("persist: save %s: %w", p.key, err)
	}
	return nil
}

// Load reads the local profile. It never fails: a missing key yields defaults and false,
// a corrupt value is logged and also yields defaults and false.
func (p *Persister) Load() (state.BoardState, bool) {
	raw, ok, err := p.store.Get(p.key)
	if err != nil {
		p.log.Warn("board state unreadable", slog.String("key", p.key), slog.Any("error", err))
		return state.New(), false
	}
	if !ok {
		return state.New(), false
	}
	doc, err := decode([]byte(raw))
	if err != nil {
		p.log.Warn("stored board state is corrupt, using defaults", slog.String("key", p.key), slog.Any("error", err))
		return state.New(), false
	}
	return doc.board(), true
}

// MarshalLocal encodes the local profile: image sources longer than the limit are cut
// and suffixed with an ellipsis, in objects as well as the images list.
func MarshalLocal(board state.BoardState) ([]byte, error) {
	doc := fromBoard(board)
	images := make([]objects.Record, 0)
	for i, r := range doc.Objects {
		if r.Type != objects.KindImage {
			continue
		}
		r.Src = truncateSrc(r.Src)
		doc.Objects[i] = r
		images = append(images, r)
	}
	doc.Images = images
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("persist: encode board: %w", err)
	}
	return raw, nil
}

// ExportJSON encodes the full-fidelity export profile.
func ExportJSON(board state.BoardState, settings ToolSettings, now time.Time) ([]byte, error) {
	doc := fromBoard(board)
	ts := now.UTC().Format(time.RFC3339Nano)
	doc.Timestamp = &ts
	doc.Tool = &settings.Tool
	doc.Color = &settings.Color
	doc.BrushSize = &settings.BrushSize

	raw, err := json.MarshalIndent(doc, "", exportIndent)
	if err != nil {
		return nil, fmt.Errorf("persist: encode export: %w", err)
	}
	return raw, nil
}

// ImportJSON parses an exported file. Missing fields fall back to defaults and zoom is
// clamped; a document that is not a JSON object wraps ErrInvalidDocument.
func ImportJSON(text []byte) (Imported, error) {
	doc, err := decode(text)
	if err != nil {
		return Imported{}, err
	}
	out := Imported{Board: doc.board()}
	if doc.Tool != nil {
		out.Settings.Tool = *doc.Tool
	}
	if doc.Color != nil {
		out.Settings.Color = *doc.Color
	}
	if doc.BrushSize != nil {
		out.Settings.BrushSize = *doc.BrushSize
	}
	return out, nil
}

func decode(raw []byte) (document, error) {
	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return document{}, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	return doc, nil
}

func fromBoard(board state.BoardState) document {
	board = board.Clone()
	vp := board.Viewport()
	return document{
		Zoom:         &vp.Zoom,
		Pan:          &vp.Pan,
		Objects:      board.Objects,
		Participants: board.Participants,
		ChatMessages: board.ChatMessages,
	}
}

func (d document) board() state.BoardState {
	b := state.New()
	if d.Zoom != nil {
		b.Zoom = *d.Zoom
	}
	if d.Pan != nil {
		b.Pan = *d.Pan
	}
	b.Zoom = viewport.State{Zoom: b.Zoom}.Normalize().Zoom
	if d.Objects != nil {
		b.Objects = d.Objects
	}
	if d.Participants != nil {
		b.Participants = d.Participants
	}
	if d.ChatMessages != nil {
		b.ChatMessages = d.ChatMessages
	}
	return b
}

// truncateSrc keeps at most srcLimit bytes, backing off to a rune boundary.
func truncateSrc(src string) string {
	if len(src) <= srcLimit {
		return src
	}
	cut := srcLimit
	for cut > 0 && !utf8.RuneStart(src[cut]) {
		cut--
	}
	return src[:cut] + srcEllipsis
}
