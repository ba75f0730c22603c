// Package board combines the raster canvas, object layer, viewport, snapshot gallery,
// persistence and collaboration channel into one whiteboard instance driven by input
// events.
//
// A Board is not safe for concurrent use; every method is expected to run on the single
// UI event loop. Only the collaboration channel may be touched from other goroutines.
package board

import (
	"context"
	"errors"
	"image/color"
	"log/slog"
	"math/rand/v2"
	"time"

	"planboard/internal/collab"
	"planboard/internal/gallery"
	"planboard/internal/objects"
	"planboard/internal/persist"
	"planboard/internal/raster"
	"planboard/internal/state"
	"planboard/internal/tool"
	"planboard/internal/viewport"
)

var ErrNoDownloader = errors.New("no download handler configured")

// Callbacks connect the board to the user. Alert blocks until acknowledged, Confirm
// returns the user's answer and Download hands a finished file to the user.
type Callbacks struct {
	Alert    func(msg string)
	Confirm  func(msg string) bool
	Download func(name string, data []byte) error
}

type Options struct {
	Width, Height int
	Background    color.RGBA
	HistoryLimit  int
	Surface       raster.Surface
	Tool          tool.State

	// Persister receives an autosave after every meaningful change. Nil disables it.
	Persister *persist.Persister
	// Channel defaults to a local channel for a participant named "You".
	Channel *collab.Channel
	// Simulate jitters simulated participants' cursors on pointer moves.
	Simulate bool

	Callbacks Callbacks
	Context   context.Context
	Now       func() time.Time
	Rand      *rand.Rand
	Logger    *slog.Logger
}

type Board struct {
	canvas    *raster.Canvas
	layer     *objects.Layer
	gallery   *gallery.Gallery
	channel   *collab.Channel
	persister *persist.Persister

	tool      tool.State
	view      viewport.State
	simulate  bool
	touchDist float64

	cb  Callbacks
	ctx context.Context
	now func() time.Time
	rng *rand.Rand
	log *slog.Logger
}

// New creates a board and, when a persister is set, restores the saved object layer,
// viewport and collaboration state. The raster always starts blank.
func New(opts Options) *Board {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	if opts.Rand == nil {
		seed := uint64(opts.Now().UnixNano())
		opts.Rand = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
	if opts.Tool == (tool.State{}) {
		opts.Tool = tool.NewState()
	}
	if opts.Channel == nil {
		opts.Channel = collab.NewChannel(collab.Participant{Name: "You"}, collab.WithLogger(opts.Logger))
	}

	b := &Board{
		canvas: raster.NewCanvas(raster.Options{
			Width:        opts.Width,
			Height:       opts.Height,
			Background:   opts.Background,
			HistoryLimit: opts.HistoryLimit,
			Surface:      opts.Surface,
			Logger:       opts.Logger,
		}),
		layer:     objects.NewLayer(objects.WithRand(opts.Rand), objects.WithLogger(opts.Logger)),
		gallery:   gallery.New(opts.Now, opts.Logger),
		channel:   opts.Channel,
		persister: opts.Persister,
		tool:      opts.Tool,
		view:      viewport.Default(),
		simulate:  opts.Simulate,
		cb:        opts.Callbacks,
		ctx:       opts.Context,
		now:       opts.Now,
		rng:       opts.Rand,
		log:       opts.Logger,
	}

	if b.persister != nil {
		if saved, ok := b.persister.Load(); ok {
			b.applyState(saved)
			b.log.Info("board state restored", slog.Int("objects", len(saved.Objects)))
		}
	}
	return b
}

func (b *Board) Canvas() *raster.Canvas    { return b.canvas }
func (b *Board) Layer() *objects.Layer     { return b.layer }
func (b *Board) Gallery() *gallery.Gallery { return b.gallery }
func (b *Board) Channel() *collab.Channel  { return b.channel }
func (b *Board) Tool() tool.State          { return b.tool }
func (b *Board) Viewport() viewport.State  { return b.view }
func (b *Board) Locked() bool              { return b.canvas.Locked() }

// Now is the board's clock, the one download names are stamped with.
func (b *Board) Now() time.Time { return b.now() }

// State captures the persistable board state.
func (b *Board) State() state.BoardState {
	return state.BoardState{
		Objects:      b.layer.ToSerializable(),
		Zoom:         b.view.Zoom,
		Pan:          b.view.Pan,
		Participants: b.channel.Participants(),
		ChatMessages: b.channel.Messages(),
	}.Clone()
}

// applyState replaces objects, viewport and collaboration state together.
func (b *Board) applyState(s state.BoardState) {
	s = s.Clone()
	b.layer.FromSerializable(s.Objects)
	b.view = s.Viewport()
	b.channel.Restore(s.Participants, s.ChatMessages)
}

// SetLocked toggles locked mode, in which the raster ignores every mutation.
func (b *Board) SetLocked(locked bool) {
	b.canvas.SetLocked(locked)
	b.log.Debug("lock toggled", slog.Bool("locked", locked))
}

func (b *Board) ToggleLock() bool {
	b.SetLocked(!b.canvas.Locked())
	return b.canvas.Locked()
}

// SetTool selects a tool by name. Unknown names are reported and leave the tool as is.
func (b *Board) SetTool(name string) error {
	t, err := tool.Parse(name)
	if err != nil {
		return err
	}
	next, err := b.tool.WithTool(t)
	if err != nil {
		return err
	}
	if b.canvas.Drawing() {
		b.canvas.AbandonStroke()
	}
	if t != tool.Text {
		b.canvas.CancelText()
	}
	b.tool = next
	return nil
}

func (b *Board) SetColor(c string) error {
	next, err := b.tool.WithColor(c)
	if err != nil {
		return err
	}
	b.tool = next
	return nil
}

func (b *Board) SetBrushSize(n int) {
	b.tool = b.tool.WithBrushSize(n)
}

func (b *Board) SetGrid(snap bool, size int) {
	b.tool = b.tool.WithGrid(snap, size)
}

func (b *Board) alert(msg string) {
	b.log.Info("alert", slog.String("message", msg))
	if b.cb.Alert != nil {
		b.cb.Alert(msg)
	}
}

func (b *Board) confirm(msg string) bool {
	if b.cb.Confirm == nil {
		return false
	}
	return b.cb.Confirm(msg)
}

func (b *Board) download(name string, data []byte) error {
	if b.cb.Download == nil {
		return ErrNoDownloader
	}
	if err := b.cb.Download(name, data); err != nil {
		return err
	}
	b.log.Info("file downloaded", slog.String("name", name), slog.Int("bytes", len(data)))
	return nil
}

// autosave writes the local profile; failures are logged and otherwise ignored.
func (b *Board) autosave() {
	if b.persister == nil {
		return
	}
	if err := b.persister.Save(b.State()); err != nil {
		b.log.Warn("autosave failed", slog.Any("error", err))
	}
}
