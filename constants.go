package main

import (
	"time"

	"planboard/internal/objects"
	"planboard/internal/tool"
)

type Mode int

const (
	ModeDraw Mode = iota
	ModeTextInput
	ModeStickyInput
	ModeChatInput
	ModeSnapshotName
	ModeSnapshotList
	ModeFileInput
	ModeConfirm
	ModeAlert
)

type FileOperation int

const (
	FileOpImportJSON FileOperation = iota
	FileOpDropFile
)

type ConfirmAction int

const (
	ConfirmClear ConfirmAction = iota
	ConfirmQuit
)

const (
	refreshInterval = 250 * time.Millisecond
	panStep         = 20.0
	statusLines     = 1
	participantKey  = "participant-id"
)

// toolKeys maps the number row to tools in toolbar order.
var toolKeys = map[string]tool.Tool{
	"1": tool.Pencil,
	"2": tool.Highlighter,
	"3": tool.Eraser,
	"4": tool.Line,
	"5": tool.Rect,
	"6": tool.Circle,
	"7": tool.Text,
}

var palette = []string{
	"#ffffff", "#f38ba8", "#fab387", "#f9e2af", "#a6e3a1", "#89b4fa", "#cba6f7", "#000000",
}

var stickyColors = []string{
	objects.DefaultStickyColor, "#bbf7d0", "#bfdbfe", "#fbcfe8", "#fed7aa",
}

var panelTypes = []objects.PanelType{
	objects.PanelNotes,
	objects.PanelChecklist,
	objects.PanelTimer,
	objects.PanelRecipeScale,
	objects.PanelProduction,
}

var panelTitles = map[objects.PanelType]string{
	objects.PanelNotes:       "Notes",
	objects.PanelChecklist:   "Checklist",
	objects.PanelTimer:       "Timer",
	objects.PanelRecipeScale: "Recipe Scaler",
	objects.PanelProduction:  "Production Tasks",
}
