package collab

import (
	"context"
	"sync"
)

type MessageType string

const (
	TypeCursor MessageType = "cursor"
	TypeLeave  MessageType = "leave"
	TypeChat   MessageType = "chat"
	TypeRoster MessageType = "roster"
)

// CursorUpdate is a participant's pointer position in canvas space.
type CursorUpdate struct {
	ParticipantID string  `json:"participantId"`
	X             float64 `json:"x"`
	Y             float64 `json:"y"`
}

// Envelope is the unit a Transport carries. Exactly one payload is set, matching Type.
type Envelope struct {
	Type   MessageType   `json:"type"`
	Cursor *CursorUpdate `json:"cursor,omitempty"`
	Chat   *ChatMessage  `json:"chat,omitempty"`
	Roster []Participant `json:"roster,omitempty"`
}

// Transport delivers envelopes between peers of one board.
type Transport interface {
	Send(ctx context.Context, env Envelope) error
	Receive(ctx context.Context) (Envelope, error)
	Close() error
}

// Loopback is an in-process Transport. Envelopes sent on one end arrive on its peer.
type Loopback struct {
	in   chan Envelope
	peer *Loopback

	once   sync.Once
	closed chan struct{}
}

// NewLoopbackPair returns two connected ends.
func NewLoopbackPair(buffer int) (*Loopback, *Loopback) {
	a := &Loopback{in: make(chan Envelope, buffer), closed: make(chan struct{})}
	b := &Loopback{in: make(chan Envelope, buffer), closed: make(chan struct{})}
	a.peer, b.peer = b, a
	return a, b
}

func (l *Loopback) Send(ctx context.Context, env Envelope) error {
	select {
	case <-l.closed:
		return ErrClosed
	case <-l.peer.closed:
		return ErrClosed
	default:
	}
	select {
	case l.peer.in <- env:
		return nil
	case <-l.closed:
		return ErrClosed
	case <-l.peer.closed:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *Loopback) Receive(ctx context.Context) (Envelope, error) {
	select {
	case env := <-l.in:
		return env, nil
	case <-l.closed:
		return Envelope{}, ErrClosed
	case <-ctx.Done():
		return Envelope{}, ctx.Err()
	}
}

func (l *Loopback) Close() error {
	l.once.Do(func() { close(l.closed) })
	return nil
}
