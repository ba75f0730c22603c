package objects

import "log/slog"

// Record is the serialized form of any Object, discriminated by Type.
type Record struct {
	Type      Kind      `json:"type"`
	ID        int       `json:"id"`
	X         float64   `json:"x"`
	Y         float64   `json:"y"`
	Width     float64   `json:"width,omitempty"`
	Height    float64   `json:"height,omitempty"`
	Text      string    `json:"text,omitempty"`
	BgColor   string    `json:"bgColor,omitempty"`
	Src       string    `json:"src,omitempty"`
	Media     MediaKind `json:"kind,omitempty"`
	URL       string    `json:"url,omitempty"`
	FileName  string    `json:"fileName,omitempty"`
	Z         int       `json:"z,omitempty"`
	Title     string    `json:"title,omitempty"`
	PanelType PanelType `json:"panelType,omitempty"`
}

// ToRecord converts an object to its serialized form.
func ToRecord(o Object) Record {
	switch v := o.(type) {
	case *StickyNote:
		return Record{Type: KindSticky, ID: v.ID, X: v.X, Y: v.Y, Text: v.Text, BgColor: v.BgColor}
	case *PlacedImage:
		return Record{Type: KindImage, ID: v.ID, X: v.X, Y: v.Y, Width: v.Width, Height: v.Height, Src: v.Src}
	case *MediaEmbed:
		return Record{Type: KindMedia, ID: v.ID, X: v.X, Y: v.Y, Width: v.Width, Height: v.Height,
			Media: v.Media, URL: v.URL, FileName: v.FileName}
	case *FloatingPanel:
		return Record{Type: KindPanel, ID: v.ID, X: v.X, Y: v.Y, Width: v.Width, Height: v.Height,
			Z: v.Z, Title: v.Title, PanelType: v.PanelType}
	}
	return Record{}
}

// Object converts the record back; ok is false for unknown types.
func (r Record) Object() (Object, bool) {
	switch r.Type {
	case KindSticky:
		return &StickyNote{ID: r.ID, X: r.X, Y: r.Y, Text: r.Text, BgColor: r.BgColor}, true
	case KindImage:
		return &PlacedImage{ID: r.ID, X: r.X, Y: r.Y, Width: r.Width, Height: r.Height, Src: r.Src}, true
	case KindMedia:
		return &MediaEmbed{ID: r.ID, X: r.X, Y: r.Y, Width: r.Width, Height: r.Height,
			Media: r.Media, URL: r.URL, FileName: r.FileName}, true
	case KindPanel:
		return &FloatingPanel{ID: r.ID, X: r.X, Y: r.Y, Width: r.Width, Height: r.Height,
			Z: r.Z, Title: r.Title, PanelType: r.PanelType}, true
	}
	return nil, false
}

// ToSerializable returns the layer as records in insertion order.
func (l *Layer) ToSerializable() []Record {
	out := make([]Record, 0, len(l.objects))
	for _, o := range l.objects {
		out = append(out, ToRecord(o))
	}
	return out
}

// FromSerializable replaces the layer contents with records. Unknown types and
// duplicate ids are skipped. The id and z counters are raised past any loaded value so
// they keep increasing.
func (l *Layer) FromSerializable(records []Record) {
	objs := make([]Object, 0, len(records))
	seen := make(map[int]bool, len(records))
	for _, r := range records {
		o, ok := r.Object()
		if !ok {
			l.log.Warn("skipping object with unknown type", slog.String("type", string(r.Type)), slog.Int("id", r.ID))
			continue
		}
		if seen[r.ID] {
			l.log.Warn("skipping duplicate object id", slog.Int("id", r.ID))
			continue
		}
		seen[r.ID] = true
		if r.ID > l.nextID {
			l.nextID = r.ID
		}
		if r.Type == KindPanel && r.Z > l.maxZ {
			l.maxZ = r.Z
		}
		objs = append(objs, o)
	}
	l.objects = objs
}
