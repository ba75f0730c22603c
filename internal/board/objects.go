package board

import (
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"planboard/internal/geom"
	"planboard/internal/objects"
)

var ErrUnsupportedFile = errors.New("unsupported file type")

func (b *Board) AddSticky(text, bgColor string) *objects.StickyNote {
	s := b.layer.AddSticky(text, bgColor)
	b.autosave()
	return s
}

func (b *Board) AddImage(src string, at *geom.Point) *objects.PlacedImage {
	img := b.layer.AddImage(src, at)
	b.autosave()
	return img
}

func (b *Board) AddMediaEmbed(kind objects.MediaKind, url string, at *geom.Point, fileName string) *objects.MediaEmbed {
	m := b.layer.AddMediaEmbed(kind, url, at, fileName)
	b.autosave()
	return m
}

func (b *Board) AddFloatingPanel(title string, panelType objects.PanelType) *objects.FloatingPanel {
	p := b.layer.AddFloatingPanel(title, panelType)
	b.autosave()
	return p
}

func (b *Board) RemoveObject(id int) bool {
	ok := b.layer.Remove(id)
	if ok {
		b.autosave()
	}
	return ok
}

func (b *Board) UpdateObject(id int, patch objects.Patch) bool {
	ok := b.layer.Update(id, patch)
	if ok {
		b.autosave()
	}
	return ok
}

func (b *Board) BringToFront(id int) bool {
	ok := b.layer.BringToFront(id)
	if ok {
		b.autosave()
	}
	return ok
}

// DropFile places a dropped file. Images become placed images, video, audio and PDF
// files become media embeds; both carry the file as a data URI. The drop point is in
// device coordinates, nil for a file picked without a position.
func (b *Board) DropFile(name, mime string, data []byte, device *geom.Point) (objects.Object, error) {
	var at *geom.Point
	if device != nil {
		p := b.canvasPoint(*device)
		at = &p
	}
	mime = strings.ToLower(strings.TrimSpace(mime))
	uri := DataURI(mime, data)

	var kind objects.MediaKind
	switch {
	case strings.HasPrefix(mime, "image/"):
		return b.AddImage(uri, at), nil
	case strings.HasPrefix(mime, "video/"):
		kind = objects.MediaVideo
	case strings.HasPrefix(mime, "audio/"):
		kind = objects.MediaAudio
	case mime == "application/pdf":
		kind = objects.MediaPDF
	default:
		b.log.Warn("dropped file rejected", slog.String("name", name), slog.String("mime", mime))
		b.alert(fmt.Sprintf("Cannot place %s: unsupported file type", name))
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFile, mime)
	}
	return b.AddMediaEmbed(kind, uri, at, name), nil
}

// DataURI encodes data as a base64 data URI.
func DataURI(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}
