package collab

import (
	"context"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planboard/internal/geom"
)

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func newChannel(opts ...Option) *Channel {
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	return NewChannel(Participant{ID: "me", Name: "Sous Chef"}, opts...)
}

func TestNewChannel_Defaults(t *testing.T) {
	c := NewChannel(Participant{Name: "Anon"})

	local := c.Local()
	assert.NotEmpty(t, local.ID)
	assert.Equal(t, RoleHost, local.Role)
	assert.Equal(t, []Participant{local}, c.Participants())
	assert.Empty(t, c.Cursors())
	assert.Empty(t, c.Messages())
}

func TestSendChat(t *testing.T) {
	c := newChannel()

	_, err := c.SendChat(context.Background(), "   ")
	require.ErrorIs(t, err, ErrEmptyMessage)

	msg, err := c.SendChat(context.Background(), " 86 the halibut ")
	require.NoError(t, err)
	assert.Equal(t, "86 the halibut", msg.Text)
	assert.Equal(t, "Sous Chef", msg.Author)
	assert.Equal(t, fixedNow, msg.Timestamp)
	assert.NotEmpty(t, msg.ID)
	assert.Equal(t, []ChatMessage{msg}, c.Messages())
}

func TestSimulateAndClearCursors(t *testing.T) {
	c := newChannel(WithSimulatedPeers(DefaultPeers()...))
	rng := rand.New(rand.NewPCG(1, 2))

	c.Simulate(geom.Pt(300, 200), rng)
	cursors := c.Cursors()
	require.Len(t, cursors, 2)
	chef := cursors["sim-chef"]
	assert.Equal(t, "Head Chef", chef.Name)
	assert.InDelta(t, 300, chef.X, 50)
	assert.InDelta(t, 200, chef.Y, 50)

	c.ClearCursors()
	assert.Empty(t, c.Cursors())
}

func TestApply(t *testing.T) {
	c := newChannel()

	c.Apply(Envelope{Type: TypeRoster, Roster: []Participant{{ID: "p2", Name: "Pastry", Role: RoleStaff, Color: "#ff00ff"}}})
	require.Len(t, c.Participants(), 2)

	c.Apply(Envelope{Type: TypeCursor, Cursor: &CursorUpdate{ParticipantID: "p2", X: 1, Y: 2}})
	c.Apply(Envelope{Type: TypeCursor, Cursor: &CursorUpdate{ParticipantID: "p2", X: 5, Y: 6}})
	c.Apply(Envelope{Type: TypeCursor, Cursor: &CursorUpdate{ParticipantID: "me", X: 9, Y: 9}})
	assert.Equal(t, map[string]Cursor{"p2": {X: 5, Y: 6, Name: "Pastry", Color: "#ff00ff"}}, c.Cursors())

	chat := ChatMessage{ID: "m1", Author: "Pastry", Text: "tarts ready"}
	c.Apply(Envelope{Type: TypeChat, Chat: &chat})
	c.Apply(Envelope{Type: TypeChat, Chat: &chat})
	assert.Len(t, c.Messages(), 1)

	c.Apply(Envelope{Type: TypeLeave, Cursor: &CursorUpdate{ParticipantID: "p2"}})
	assert.Empty(t, c.Cursors())

	c.Apply(Envelope{Type: "bogus"})
}

func TestMuteAndSpeaking(t *testing.T) {
	c := newChannel(WithSimulatedPeers(DefaultPeers()...))

	c.SetSpeaking("sim-chef", true)
	assert.True(t, find(t, c, "sim-chef").IsSpeaking)

	c.ToggleMute("sim-chef")
	chef := find(t, c, "sim-chef")
	assert.True(t, chef.IsMuted)
	assert.False(t, chef.IsSpeaking)

	c.SetSpeaking("sim-chef", true)
	assert.False(t, find(t, c, "sim-chef").IsSpeaking)

	c.ToggleMute("nobody")
	assert.Len(t, c.Participants(), 3)
}

func TestRestoreKeepsLocalParticipant(t *testing.T) {
	c := newChannel()
	c.Apply(Envelope{Type: TypeCursor, Cursor: &CursorUpdate{ParticipantID: "x", X: 1, Y: 1}})

	c.Restore([]Participant{{ID: "old", Name: "Line Cook"}}, []ChatMessage{{ID: "a", Text: "hi"}})

	ids := []string{}
	for _, p := range c.Participants() {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []string{"me", "old"}, ids)
	assert.Len(t, c.Messages(), 1)
	assert.Empty(t, c.Cursors())
}

func TestRestoreDropsEarlierLocalSession(t *testing.T) {
	c := newChannel(WithSimulatedPeers(DefaultPeers()...))
	c.Restore([]Participant{
		{ID: "previous-run", Name: "Sous Chef", Role: RoleHost},
		{ID: "sim-chef", Name: "Head Chef", Role: RoleChef},
		{ID: "guest", Name: "Sous Chef", Role: RoleGuest},
		{ID: "me", Name: "Sous Chef", Role: RoleHost, IsMuted: true},
	}, nil)

	ids := []string{}
	for _, p := range c.Participants() {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []string{"me", "sim-chef", "guest"}, ids)
	assert.True(t, c.Local().IsMuted)
}

func TestToggleMuteUpdatesLocal(t *testing.T) {
	c := newChannel()
	c.ToggleMute("me")
	assert.True(t, c.Local().IsMuted)
	c.ToggleMute("me")
	c.SetSpeaking("me", true)
	assert.True(t, c.Local().IsSpeaking)
}

func TestChannelsOverLoopback(t *testing.T) {
	a, b := NewLoopbackPair(8)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	left := NewChannel(Participant{ID: "left", Name: "Left"}, WithTransport(a))
	right := NewChannel(Participant{ID: "right", Name: "Right"}, WithTransport(b))

	done := make(chan error, 1)
	go func() { done <- right.Run(ctx) }()

	left.AnnounceRoster(ctx)
	left.PointerMoved(ctx, geom.Pt(40, 60))
	_, err := left.SendChat(ctx, "fire table 4")
	require.NoError(t, err)

	require.Eventually(t, func() bool { return len(right.Messages()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, Cursor{X: 40, Y: 60, Name: "Left"}, right.Cursors()["left"])
	assert.Len(t, right.Participants(), 2)

	require.NoError(t, b.Close())
	require.NoError(t, <-done)
}

func TestLoopbackClosed(t *testing.T) {
	a, b := NewLoopbackPair(1)
	require.NoError(t, b.Close())

	err := a.Send(context.Background(), Envelope{Type: TypeChat})
	assert.ErrorIs(t, err, ErrClosed)

	_, err = b.Receive(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
	require.NoError(t, b.Close())
}

func find(t *testing.T, c *Channel, id string) Participant {
	t.Helper()
	for _, p := range c.Participants() {
		if p.ID == id {
			return p
		}
	}
	t.Fatalf("participant %s not found", id)
	return Participant{}
}
