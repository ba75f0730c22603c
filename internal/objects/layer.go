package objects

import (
	"log/slog"
	"math/rand/v2"
	"time"

	"planboard/internal/geom"
)

const (
	DefaultStickyText  = "New note"
	DefaultStickyColor = "#fef08a"

	imageSize   = 150.0
	panelWidth  = 320.0
	panelHeight = 240.0
	panelStep   = 30.0
	baseZ       = 100
)

// StickyBounds is the area new sticky notes are scattered in.
var StickyBounds = geom.Rect{Min: geom.Pt(100, 100), Size: geom.Size{Width: 400, Height: 300}}

var (
	defaultImageAt = geom.Pt(100, 100)
	defaultMediaAt = geom.Pt(120, 120)
)

// Layer is the ordered collection of placed objects. Object IDs and panel z values come
// from counters owned by the layer that only ever increase.
type Layer struct {
	objects []Object
	nextID  int
	maxZ    int
	rng     *rand.Rand
	log     *slog.Logger
}

type Option func(*Layer)

// WithRand sets the source used for sticky note placement.
func WithRand(r *rand.Rand) Option {
	return func(l *Layer) { l.rng = r }
}

func WithLogger(log *slog.Logger) Option {
	return func(l *Layer) { l.log = log }
}

func NewLayer(opts ...Option) *Layer {
	l := &Layer{maxZ: baseZ}
	for _, opt := range opts {
		opt(l)
	}
	if l.rng == nil {
		seed := uint64(time.Now().UnixNano())
		l.rng = rand.New(rand.NewPCG(seed, seed>>1))
	}
	if l.log == nil {
		l.log = slog.Default()
	}
	return l
}

func (l *Layer) allocID() int {
	l.nextID++
	return l.nextID
}

// AddSticky appends a sticky note at a random point inside StickyBounds. Empty text or
// color fall back to the defaults.
func (l *Layer) AddSticky(text, bgColor string) *StickyNote {
	if text == "" {
		text = DefaultStickyText
	}
	if bgColor == "" {
		bgColor = DefaultStickyColor
	}
	s := &StickyNote{
		ID:      l.allocID(),
		X:       StickyBounds.Min.X + l.rng.Float64()*StickyBounds.Size.Width,
		Y:       StickyBounds.Min.Y + l.rng.Float64()*StickyBounds.Size.Height,
		Text:    text,
		BgColor: bgColor,
	}
	l.objects = append(l.objects, s)
	return s
}

// AddImage appends a 150x150 image centred on at, or at the default offset when at is nil.
func (l *Layer) AddImage(src string, at *geom.Point) *PlacedImage {
	pos := defaultImageAt
	if at != nil {
		pos = geom.Pt(at.X-imageSize/2, at.Y-imageSize/2)
	}
	img := &PlacedImage{
		ID:     l.allocID(),
		Src:    src,
		X:      pos.X,
		Y:      pos.Y,
		Width:  imageSize,
		Height: imageSize,
	}
	l.objects = append(l.objects, img)
	return img
}

// AddMediaEmbed appends a media embed sized for its kind.
func (l *Layer) AddMediaEmbed(kind MediaKind, url string, at *geom.Point, fileName string) *MediaEmbed {
	size := MediaSize(kind)
	pos := defaultMediaAt
	if at != nil {
		pos = geom.Pt(at.X-size.Width/2, at.Y-size.Height/2)
	}
	m := &MediaEmbed{
		ID:       l.allocID(),
		Media:    kind,
		URL:      url,
		X:        pos.X,
		Y:        pos.Y,
		Width:    size.Width,
		Height:   size.Height,
		FileName: fileName,
	}
	l.objects = append(l.objects, m)
	return m
}

// AddFloatingPanel appends a panel above every panel added before it.
func (l *Layer) AddFloatingPanel(title string, panelType PanelType) *FloatingPanel {
	n := float64(l.countKind(KindPanel) % 10)
	l.maxZ++
	p := &FloatingPanel{
		ID:        l.allocID(),
		X:         200 + n*panelStep,
		Y:         120 + n*panelStep,
		Width:     panelWidth,
		Height:    panelHeight,
		Z:         l.maxZ,
		Title:     title,
		PanelType: panelType,
	}
	l.objects = append(l.objects, p)
	return p
}

// BringToFront raises a panel above all others.
func (l *Layer) BringToFront(id int) bool {
	i := l.index(id)
	if i < 0 {
		return false
	}
	p, ok := l.objects[i].(*FloatingPanel)
	if !ok {
		return false
	}
	l.maxZ++
	p.Z = l.maxZ
	return true
}

// Remove deletes the object with id; missing ids are ignored.
func (l *Layer) Remove(id int) bool {
	i := l.index(id)
	if i < 0 {
		l.log.Debug("remove: object not found", slog.Int("id", id))
		return false
	}
	l.objects = append(l.objects[:i], l.objects[i+1:]...)
	return true
}

// Update applies patch to the object with id; missing ids are ignored.
func (l *Layer) Update(id int, patch Patch) bool {
	i := l.index(id)
	if i < 0 {
		l.log.Debug("update: object not found", slog.Int("id", id))
		return false
	}
	patch.apply(l.objects[i])
	return true
}

// Get returns a copy of the object with id.
func (l *Layer) Get(id int) (Object, bool) {
	i := l.index(id)
	if i < 0 {
		return nil, false
	}
	return clone(l.objects[i]), true
}

// Objects returns copies of all objects in insertion order.
func (l *Layer) Objects() []Object {
	out := make([]Object, len(l.objects))
	for i, o := range l.objects {
		out[i] = clone(o)
	}
	return out
}

// At returns the topmost object whose bounds contain p. Panels are ranked by z above
// everything else.
func (l *Layer) At(p geom.Point) (Object, bool) {
	var hit Object
	hitZ := -1
	for _, o := range l.objects {
		if !Bounds(o).Contains(p) {
			continue
		}
		z := 0
		if fp, ok := o.(*FloatingPanel); ok {
			z = fp.Z
		}
		if z >= hitZ {
			hit, hitZ = o, z
		}
	}
	if hit == nil {
		return nil, false
	}
	return clone(hit), true
}

func (l *Layer) Len() int {
	return len(l.objects)
}

// Clear removes every object. Counters keep their values.
func (l *Layer) Clear() {
	l.objects = nil
}

// MaxZ is the highest z value handed out so far.
func (l *Layer) MaxZ() int {
	return l.maxZ
}

func (l *Layer) countKind(k Kind) int {
	n := 0
	for _, o := range l.objects {
		if o.Kind() == k {
			n++
		}
	}
	return n
}

func (l *Layer) index(id int) int {
	for i, o := range l.objects {
		if o.ObjectID() == id {
			return i
		}
	}
	return -1
}

// Bounds returns the placement rectangle of o. Sticky notes use a fixed footprint.
func Bounds(o Object) geom.Rect {
	switch v := o.(type) {
	case *StickyNote:
		return geom.Rect{Min: v.Position(), Size: geom.Size{Width: 160, Height: 120}}
	case *PlacedImage:
		return geom.Rect{Min: v.Position(), Size: geom.Size{Width: v.Width, Height: v.Height}}
	case *MediaEmbed:
		return geom.Rect{Min: v.Position(), Size: geom.Size{Width: v.Width, Height: v.Height}}
	case *FloatingPanel:
		return geom.Rect{Min: v.Position(), Size: geom.Size{Width: v.Width, Height: v.Height}}
	}
	return geom.Rect{}
}

func clone(o Object) Object {
	switch v := o.(type) {
	case *StickyNote:
		c := *v
		return &c
	case *PlacedImage:
		c := *v
		return &c
	case *MediaEmbed:
		c := *v
		return &c
	case *FloatingPanel:
		c := *v
		return &c
	}
	return o
}
