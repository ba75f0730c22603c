// Package objects holds the vector objects placed above the raster canvas: sticky notes,
// images, media embeds and floating panels.
package objects

import (
	"planboard/internal/geom"
)

// Kind tags a CanvasObject variant in its serialized form.
type Kind string

const (
	KindSticky Kind = "sticky"
	KindImage  Kind = "image"
	KindMedia  Kind = "media"
	KindPanel  Kind = "panel"
)

// MediaKind is the type of an embedded media object.
type MediaKind string

const (
	MediaVideo MediaKind = "video"
	MediaAudio MediaKind = "audio"
	MediaPDF   MediaKind = "pdf"
)

// PanelType names the widget a floating panel hosts.
type PanelType string

const (
	PanelNotes       PanelType = "notes"
	PanelChecklist   PanelType = "checklist"
	PanelTimer       PanelType = "timer"
	PanelRecipeScale PanelType = "recipe-scaler"
	PanelProduction  PanelType = "production-tasks"
)

// Object is one placed vector object. Every variant has a layer-unique ID and a
// top-left placement in canvas space.
type Object interface {
	ObjectID() int
	Kind() Kind
	Position() geom.Point
}

type StickyNote struct {
	ID      int
	X, Y    float64
	Text    string
	BgColor string
}

type PlacedImage struct {
	ID            int
	Src           string
	X, Y          float64
	Width, Height float64
}

type MediaEmbed struct {
	ID            int
	Media         MediaKind
	URL           string
	X, Y          float64
	Width, Height float64
	FileName      string
}

type FloatingPanel struct {
	ID            int
	X, Y          float64
	Width, Height float64
	Z             int
	Title         string
	PanelType     PanelType
}

func (s *StickyNote) ObjectID() int           { return s.ID }
func (s *StickyNote) Kind() Kind              { return KindSticky }
func (s *StickyNote) Position() geom.Point    { return geom.Pt(s.X, s.Y) }
func (i *PlacedImage) ObjectID() int          { return i.ID }
func (i *PlacedImage) Kind() Kind             { return KindImage }
func (i *PlacedImage) Position() geom.Point   { return geom.Pt(i.X, i.Y) }
func (m *MediaEmbed) ObjectID() int           { return m.ID }
func (m *MediaEmbed) Kind() Kind              { return KindMedia }
func (m *MediaEmbed) Position() geom.Point    { return geom.Pt(m.X, m.Y) }
func (p *FloatingPanel) ObjectID() int        { return p.ID }
func (p *FloatingPanel) Kind() Kind           { return KindPanel }
func (p *FloatingPanel) Position() geom.Point { return geom.Pt(p.X, p.Y) }

// MediaSize is the default embed size for each media kind.
func MediaSize(kind MediaKind) geom.Size {
	switch kind {
	case MediaAudio:
		return geom.Size{Width: 300, Height: 60}
	case MediaPDF:
		return geom.Size{Width: 300, Height: 400}
	default:
		return geom.Size{Width: 300, Height: 200}
	}
}

// ParseMediaKind validates a media kind name.
func ParseMediaKind(s string) (MediaKind, bool) {
	switch k := MediaKind(s); k {
	case MediaVideo, MediaAudio, MediaPDF:
		return k, true
	}
	return "", false
}

// Patch carries a partial update; nil fields are left unchanged. Fields that do not
// apply to the target variant are ignored.
type Patch struct {
	X, Y          *float64
	Width, Height *float64
	Text          *string
	BgColor       *string
	Title         *string
	Src           *string
	URL           *string
}

func (p Patch) apply(o Object) {
	switch v := o.(type) {
	case *StickyNote:
		setF(&v.X, p.X)
		setF(&v.Y, p.Y)
		setS(&v.Text, p.Text)
		setS(&v.BgColor, p.BgColor)
	case *PlacedImage:
		setF(&v.X, p.X)
		setF(&v.Y, p.Y)
		setF(&v.Width, p.Width)
		setF(&v.Height, p.Height)
		setS(&v.Src, p.Src)
	case *MediaEmbed:
		setF(&v.X, p.X)
		setF(&v.Y, p.Y)
		setF(&v.Width, p.Width)
		setF(&v.Height, p.Height)
		setS(&v.URL, p.URL)
	case *FloatingPanel:
		setF(&v.X, p.X)
		setF(&v.Y, p.Y)
		setF(&v.Width, p.Width)
		setF(&v.Height, p.Height)
		setS(&v.Title, p.Title)
	}
}

func setF(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func setS(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
