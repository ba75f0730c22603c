// Package collab carries the collaboration-visible board state: the participant roster,
// their cursors and the chat log, plus the message shapes a transport must deliver.
//
// A transport only needs at-least-once delivery of the latest cursor per participant.
// Cursor updates overwrite each other, so no ordering is required.
package collab

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"planboard/internal/geom"
)

var (
	ErrEmptyMessage = errors.New("chat message is empty")
	ErrClosed       = errors.New("transport closed")
)

type Role string

const (
	RoleHost  Role = "host"
	RoleChef  Role = "chef"
	RoleStaff Role = "staff"
	RoleGuest Role = "guest"
)

// Participant is one roster entry.
type Participant struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Role       Role   `json:"role"`
	IsSpeaking bool   `json:"isSpeaking"`
	IsMuted    bool   `json:"isMuted"`
	Color      string `json:"color,omitempty"`
}

// Cursor is the last known pointer position of a participant.
type Cursor struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Name  string  `json:"name"`
	Color string  `json:"color"`
}

type ChatMessage struct {
	ID        string    `json:"id"`
	Author    string    `json:"author"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Channel holds collaboration state for one board. It is safe for concurrent use so a
// transport can deliver from its own goroutine.
type Channel struct {
	mu           sync.Mutex
	local        Participant
	participants []Participant
	simulated    []string
	cursors      map[string]Cursor
	chat         []ChatMessage
	transport    Transport
	now          func() time.Time
	log          *slog.Logger
}

type Option func(*Channel)

func WithTransport(t Transport) Option {
	return func(c *Channel) { c.transport = t }
}

func WithClock(now func() time.Time) Option {
	return func(c *Channel) { c.now = now }
}

func WithLogger(log *slog.Logger) Option {
	return func(c *Channel) { c.log = log }
}

// WithSimulatedPeers adds participants whose cursors are driven locally by Simulate.
func WithSimulatedPeers(peers ...Participant) Option {
	return func(c *Channel) {
		for _, p := range peers {
			c.participants = append(c.participants, p)
			c.simulated = append(c.simulated, p.ID)
		}
	}
}

// DefaultPeers is the simulated kitchen crew shown on a fresh board.
func DefaultPeers() []Participant {
	return []Participant{
		{ID: "sim-chef", Name: "Head Chef", Role: RoleChef, Color: "#f97316"},
		{ID: "sim-foh", Name: "Front of House", Role: RoleStaff, Color: "#22c55e", IsMuted: true},
	}
}

func NewChannel(local Participant, opts ...Option) *Channel {
	if local.ID == "" {
		local.ID = uuid.NewString()
	}
	if local.Role == "" {
		local.Role = RoleHost
	}
	c := &Channel{
		local:        local,
		participants: []Participant{local},
		cursors:      make(map[string]Cursor),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.log == nil {
		c.log = slog.Default()
	}
	return c
}

func (c *Channel) Local() Participant {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.local
}

// Participants returns a copy of the roster.
func (c *Channel) Participants() []Participant {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Participant(nil), c.participants...)
}

// Cursors returns a copy of the remote cursors keyed by participant id.
func (c *Channel) Cursors() map[string]Cursor {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]Cursor, len(c.cursors))
	for k, v := range c.cursors {
		out[k] = v
	}
	return out
}

// Messages returns a copy of the chat log in arrival order.
func (c *Channel) Messages() []ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]ChatMessage(nil), c.chat...)
}

// PointerMoved publishes the local pointer position.
func (c *Channel) PointerMoved(ctx context.Context, p geom.Point) {
	c.mu.Lock()
	id := c.local.ID
	c.mu.Unlock()
	c.send(ctx, Envelope{Type: TypeCursor, Cursor: &CursorUpdate{ParticipantID: id, X: p.X, Y: p.Y}})
}

// Simulate places every simulated participant's cursor near p.
func (c *Channel) Simulate(p geom.Point, rng *rand.Rand) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range c.simulated {
		c.setCursorLocked(CursorUpdate{
			ParticipantID: id,
			X:             p.X + (rng.Float64()-0.5)*100,
			Y:             p.Y + (rng.Float64()-0.5)*100,
		})
	}
}

// ClearCursors forgets every cursor; used when the pointer leaves the canvas.
func (c *Channel) ClearCursors() {
	c.mu.Lock()
	c.cursors = make(map[string]Cursor)
	c.mu.Unlock()
}

// SendChat appends a message from the local participant and publishes it.
func (c *Channel) SendChat(ctx context.Context, text string) (ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return ChatMessage{}, ErrEmptyMessage
	}
	c.mu.Lock()
	msg := ChatMessage{ID: uuid.NewString(), Author: c.local.Name, Text: text, Timestamp: c.now().UTC()}
	c.chat = append(c.chat, msg)
	c.mu.Unlock()

	c.send(ctx, Envelope{Type: TypeChat, Chat: &msg})
	return msg, nil
}

// ToggleMute flips the mute flag of a participant; unknown ids are ignored.
func (c *Channel) ToggleMute(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.participants {
		if c.participants[i].ID == id {
			c.participants[i].IsMuted = !c.participants[i].IsMuted
			if c.participants[i].IsMuted {
				c.participants[i].IsSpeaking = false
			}
			c.syncLocalLocked(c.participants[i])
			return
		}
	}
}

// SetSpeaking marks a participant as speaking. Muted participants never speak.
func (c *Channel) SetSpeaking(id string, speaking bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.participants {
		if c.participants[i].ID == id {
			c.participants[i].IsSpeaking = speaking && !c.participants[i].IsMuted
			c.syncLocalLocked(c.participants[i])
			return
		}
	}
}

// Restore replaces roster and chat in one step and drops the cursors. The local
// participant always comes first. A saved entry with the local id carries over its
// flags; a saved entry with the local name and role but another id is an earlier
// session of this user and is dropped.
func (c *Channel) Restore(participants []Participant, chat []ChatMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()

	roster := make([]Participant, 1, len(participants)+1)
	for _, p := range participants {
		switch {
		case p.ID == c.local.ID:
			c.local.IsMuted, c.local.IsSpeaking = p.IsMuted, p.IsSpeaking
		case p.Name == c.local.Name && p.Role == c.local.Role && !c.isSimulatedLocked(p.ID):
			c.log.Debug("dropping earlier local session", slog.String("id", p.ID))
		default:
			roster = append(roster, p)
		}
	}
	roster[0] = c.local
	c.participants = roster
	c.chat = append([]ChatMessage(nil), chat...)
	c.cursors = make(map[string]Cursor)
}

func (c *Channel) syncLocalLocked(p Participant) {
	if p.ID == c.local.ID {
		c.local = p
	}
}

func (c *Channel) isSimulatedLocked(id string) bool {
	for _, s := range c.simulated {
		if s == id {
			return true
		}
	}
	return false
}

// Apply merges an envelope received from the transport.
func (c *Channel) Apply(env Envelope) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch env.Type {
	case TypeCursor:
		if env.Cursor != nil && env.Cursor.ParticipantID != c.local.ID {
			c.setCursorLocked(*env.Cursor)
		}
	case TypeLeave:
		if env.Cursor != nil {
			delete(c.cursors, env.Cursor.ParticipantID)
		}
	case TypeChat:
		if env.Chat == nil {
			return
		}
		for _, m := range c.chat {
			if m.ID == env.Chat.ID {
				return
			}
		}
		c.chat = append(c.chat, *env.Chat)
	case TypeRoster:
		for _, p := range env.Roster {
			c.upsertLocked(p)
		}
	default:
		c.log.Debug("ignoring envelope", slog.String("type", string(env.Type)))
	}
}

// AnnounceRoster publishes the local participant.
func (c *Channel) AnnounceRoster(ctx context.Context) {
	c.mu.Lock()
	local := c.local
	c.mu.Unlock()
	c.send(ctx, Envelope{Type: TypeRoster, Roster: []Participant{local}})
}

// Run applies envelopes from the transport until ctx is done or the transport fails.
func (c *Channel) Run(ctx context.Context) error {
	if c.transport == nil {
		return nil
	}
	for {
		env, err := c.transport.Receive(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, ErrClosed) {
				return nil
			}
			return fmt.Errorf("collab: receive: %w", err)
		}
		c.Apply(env)
	}
}

func (c *Channel) send(ctx context.Context, env Envelope) {
	if c.transport == nil {
		return
	}
	if err := c.transport.Send(ctx, env); err != nil {
		c.log.Warn("collab send failed", slog.String("type", string(env.Type)), slog.Any("error", err))
	}
}

func (c *Channel) setCursorLocked(u CursorUpdate) {
	cur := Cursor{X: u.X, Y: u.Y, Name: u.ParticipantID}
	for _, p := range c.participants {
		if p.ID == u.ParticipantID {
			cur.Name, cur.Color = p.Name, p.Color
			break
		}
	}
	c.cursors[u.ParticipantID] = cur
}

func (c *Channel) upsertLocked(p Participant) {
	for i := range c.participants {
		if c.participants[i].ID == p.ID {
			c.participants[i] = p
			return
		}
	}
	c.participants = append(c.participants, p)
}
