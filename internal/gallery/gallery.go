// Package gallery keeps named full-board captures that live outside the undo history.
package gallery

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"planboard/internal/state"
)

var ErrBlankName = errors.New("snapshot name is blank")

// SnapshotRecord is an immutable full-board capture.
type SnapshotRecord struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	Timestamp     time.Time        `json:"timestamp"`
	RasterDataURL string           `json:"rasterDataURL"`
	BoardState    state.BoardState `json:"boardState"`
}

func (r SnapshotRecord) clone() SnapshotRecord {
	r.BoardState = r.BoardState.Clone()
	return r
}

// Gallery holds snapshot records in creation order.
type Gallery struct {
	records []SnapshotRecord
	now     func() time.Time
	log     *slog.Logger
}

func New(now func() time.Time, log *slog.Logger) *Gallery {
	if now == nil {
		now = time.Now
	}
	if log == nil {
		log = slog.Default()
	}
	return &Gallery{now: now, log: log}
}

// Create appends a record with a fresh id and the current time. The board state is
// copied so later changes to the live board never reach the record.
func (g *Gallery) Create(name, rasterDataURL string, board state.BoardState) (SnapshotRecord, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return SnapshotRecord{}, ErrBlankName
	}
	rec := SnapshotRecord{
		ID:            uuid.NewString(),
		Name:          name,
		Timestamp:     g.now().UTC(),
		RasterDataURL: rasterDataURL,
		BoardState:    board.Clone(),
	}
	g.records = append(g.records, rec)
	g.log.Info("snapshot saved", slog.String("id", rec.ID), slog.String("name", name))
	return rec.clone(), nil
}

// Restore returns a copy of the record with id for the caller to apply in one step.
// A missing id yields false and nothing else happens.
func (g *Gallery) Restore(id string) (SnapshotRecord, bool) {
	i := g.index(id)
	if i < 0 {
		g.log.Debug("restore: snapshot not found", slog.String("id", id))
		return SnapshotRecord{}, false
	}
	return g.records[i].clone(), true
}

// Delete removes the record with id; missing ids are ignored.
func (g *Gallery) Delete(id string) bool {
	i := g.index(id)
	if i < 0 {
		return false
	}
	g.records = append(g.records[:i], g.records[i+1:]...)
	return true
}

// Records returns copies of all records in creation order.
func (g *Gallery) Records() []SnapshotRecord {
	out := make([]SnapshotRecord, len(g.records))
	for i, r := range g.records {
		out[i] = r.clone()
	}
	return out
}

func (g *Gallery) Len() int { return len(g.records) }

func (g *Gallery) index(id string) int {
	for i, r := range g.records {
		if r.ID == id {
			return i
		}
	}
	return -1
}
