package board

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"

	"planboard/internal/collab"
	"planboard/internal/export"
	"planboard/internal/gallery"
	"planboard/internal/persist"
	"planboard/internal/raster"
)

// SaveSnapshot stores a named capture of the whole board in the gallery. A blank name
// is reported to the user and nothing is stored.
func (b *Board) SaveSnapshot(name string) (gallery.SnapshotRecord, error) {
	url, err := b.canvas.Snapshot().DataURL()
	if err != nil {
		b.log.Warn("snapshot raster not encoded", slog.Any("error", err))
	}
	rec, err := b.gallery.Create(name, url, b.State())
	if err != nil {
		if errors.Is(err, gallery.ErrBlankName) {
			b.alert("Please enter a name for the snapshot.")
		}
		return gallery.SnapshotRecord{}, err
	}
	return rec, nil
}

// RestoreSnapshot replaces the live board with the snapshot. The raster is repainted
// from the snapshot's image when it decodes and fits the canvas.
func (b *Board) RestoreSnapshot(id string) bool {
	rec, ok := b.gallery.Restore(id)
	if !ok {
		return false
	}
	b.applyState(rec.BoardState)
	if rec.RasterDataURL != "" {
		snap, err := raster.DecodeDataURL(rec.RasterDataURL)
		if err != nil {
			b.log.Warn("snapshot raster not decoded", slog.String("id", id), slog.Any("error", err))
		} else {
			b.canvas.Load(snap)
		}
	}
	b.autosave()
	return true
}

func (b *Board) DeleteSnapshot(id string) bool {
	return b.gallery.Delete(id)
}

// PNGDataURL renders the raster as a PNG data URL.
func (b *Board) PNGDataURL() (string, error) {
	return b.canvas.Snapshot().DataURL()
}

// DownloadPNG hands the raster to the user as whiteboard-<epoch-ms>.png.
func (b *Board) DownloadPNG() error {
	data, err := b.canvas.Snapshot().PNG()
	if err != nil {
		return err
	}
	return b.download(export.PNGFilename(b.now()), data)
}

// DownloadBoardImage flattens raster and objects into one PNG.
func (b *Board) DownloadBoardImage() error {
	img, err := export.Compose(b.canvas.Snapshot(), b.layer.Objects())
	if err != nil {
		return err
	}
	data, err := raster.Capture(img).PNG()
	if err != nil {
		return err
	}
	return b.download(export.Filename(b.now(), "board.png"), data)
}

func (b *Board) DownloadPDF() error {
	var buf bytes.Buffer
	if err := export.PDF(&buf, b.canvas.Snapshot(), b.layer.Objects()); err != nil {
		return err
	}
	return b.download(export.PDFFilename(b.now()), buf.Bytes())
}

// ExportJSON encodes the full-fidelity export file including the tool settings.
func (b *Board) ExportJSON() ([]byte, error) {
	return persist.ExportJSON(b.State(), persist.ToolSettings{
		Tool:      string(b.tool.Tool()),
		Color:     b.tool.Color(),
		BrushSize: b.tool.BrushSize(),
	}, b.now())
}

func (b *Board) DownloadJSON() error {
	data, err := b.ExportJSON()
	if err != nil {
		return err
	}
	return b.download(export.JSONFilename(b.now()), data)
}

// ImportJSON replaces the board with an exported file. A malformed file is reported to
// the user and the current board is kept.
func (b *Board) ImportJSON(data []byte) error {
	imported, err := persist.ImportJSON(data)
	if err != nil {
		b.log.Warn("import rejected", slog.Any("error", err))
		b.alert("Could not import whiteboard: the file is not valid JSON.")
		return err
	}
	b.applyState(imported.Board)
	b.applySettings(imported.Settings)
	b.autosave()
	return nil
}

func (b *Board) applySettings(s persist.ToolSettings) {
	if s.Tool != "" {
		if err := b.SetTool(s.Tool); err != nil {
			b.log.Warn("imported tool ignored", slog.String("tool", s.Tool), slog.Any("error", err))
		}
	}
	if s.Color != "" {
		if err := b.SetColor(s.Color); err != nil {
			b.log.Warn("imported color ignored", slog.String("color", s.Color), slog.Any("error", err))
		}
	}
	if s.BrushSize != 0 {
		b.tool = b.tool.WithBrushSize(s.BrushSize)
	}
}

// SendChat posts a message from the local participant.
func (b *Board) SendChat(text string) error {
	if _, err := b.channel.SendChat(b.ctx, text); err != nil {
		if errors.Is(err, collab.ErrEmptyMessage) {
			b.alert("Type a message first.")
		}
		return err
	}
	b.autosave()
	return nil
}

func (b *Board) ToggleMute(id string) {
	b.channel.ToggleMute(id)
	b.autosave()
}

// SetSpeaking marks a participant as speaking; muted participants stay silent.
func (b *Board) SetSpeaking(id string, speaking bool) {
	b.channel.SetSpeaking(id, speaking)
	b.autosave()
}

// RunCollab applies remote collaboration messages until ctx ends.
func (b *Board) RunCollab(ctx context.Context) error {
	if err := b.channel.Run(ctx); err != nil {
		return fmt.Errorf("board: collaboration: %w", err)
	}
	return nil
}
