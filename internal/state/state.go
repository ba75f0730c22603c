// Package state defines BoardState, the serializable description of everything on a
// board except its raster pixels.
package state

import (
	"planboard/internal/collab"
	"planboard/internal/geom"
	"planboard/internal/objects"
	"planboard/internal/viewport"
)

// BoardState is the object layer, the viewport and the collaboration-visible state.
type BoardState struct {
	Objects      []objects.Record     `json:"objects"`
	Zoom         float64              `json:"zoom"`
	Pan          geom.Point           `json:"pan"`
	Participants []collab.Participant `json:"participants"`
	ChatMessages []collab.ChatMessage `json:"chatMessages"`
}

// New returns an empty board state at the default viewport.
func New() BoardState {
	vp := viewport.Default()
	return BoardState{
		Objects:      []objects.Record{},
		Zoom:         vp.Zoom,
		Pan:          vp.Pan,
		Participants: []collab.Participant{},
		ChatMessages: []collab.ChatMessage{},
	}
}

// Viewport returns the normalized viewport described by the state.
func (s BoardState) Viewport() viewport.State {
	return viewport.State{Zoom: s.Zoom, Pan: s.Pan}.Normalize()
}

// Clone returns a deep copy; mutating it never affects s.
func (s BoardState) Clone() BoardState {
	out := s
	out.Objects = cloneSlice(s.Objects)
	out.Participants = cloneSlice(s.Participants)
	out.ChatMessages = cloneSlice(s.ChatMessages)
	return out
}

// cloneSlice copies a slice of value types, keeping nil as an empty slice so that
// serialized state always carries arrays.
func cloneSlice[T any](in []T) []T {
	out := make([]T, len(in))
	copy(out, in)
	return out
}
