package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#cdd6f4")).Background(lipgloss.Color("#313244"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#f38ba8")).Background(lipgloss.Color("#313244")).Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#a6e3a1")).Background(lipgloss.Color("#313244"))
	dialogStyle  = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#89b4fa")).
			Padding(0, 1)
	selectedStyle = lipgloss.NewStyle().Reverse(true)
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6c7086"))
)

func (m model) View() string {
	if m.width < 1 || m.height < 1 {
		return ""
	}
	if m.help {
		return m.helpView()
	}

	rows := m.canvasRows()
	lines := m.renderGrid(m.width, rows).styled()
	if panel := m.dialog(); panel != "" {
		lines = overlay(lines, panel, m.width)
	}
	return strings.Join(lines, "\n") + "\n" + m.statusLine()
}

func (m model) modeString() string {
	switch m.mode {
	case ModeDraw:
		return "DRAW"
	case ModeTextInput:
		return "TEXT"
	case ModeStickyInput:
		return "STICKY"
	case ModeChatInput:
		return "CHAT"
	case ModeSnapshotName, ModeSnapshotList:
		return "SNAPSHOT"
	case ModeFileInput:
		return "FILE"
	case ModeConfirm:
		return "CONFIRM"
	case ModeAlert:
		return "ALERT"
	default:
		return "UNKNOWN"
	}
}

func (m model) statusLine() string {
	ts := m.board.Tool()
	vp := m.board.Viewport()
	status := fmt.Sprintf("Mode: %s | Tool: %s | Color: %s | Size: %d | Zoom: %.0f%%",
		m.modeString(), ts.Tool(), ts.Color(), ts.BrushSize(), vp.Zoom*100)
	if ts.SnapToGrid() {
		status += fmt.Sprintf(" | Grid: %d", ts.GridSize())
	}
	if m.board.Locked() {
		status += " | LOCKED"
	}
	status += fmt.Sprintf(" | People: %d", len(m.board.Channel().Participants()))
	switch local := m.board.Channel().Local(); {
	case local.IsMuted:
		status += " (muted)"
	case local.IsSpeaking:
		status += " (speaking)"
	}

	line := statusStyle.Render(status)
	switch {
	case m.errorMessage != "":
		line += errorStyle.Render(" | ERROR: " + m.errorMessage)
	case m.successMessage != "":
		line += successStyle.Render(" | " + m.successMessage)
	default:
		line += statusStyle.Render(" | ? for help | q to quit")
	}
	return lipgloss.NewStyle().MaxWidth(m.width).Render(line)
}

// dialog renders the box for the current mode, or "" when drawing.
func (m model) dialog() string {
	var body []string
	switch m.mode {
	case ModeTextInput:
		body = []string{"Text:", m.input + "█", mutedStyle.Render("enter to place, esc to cancel")}
	case ModeStickyInput:
		body = []string{"Sticky note:", m.input + "█", mutedStyle.Render("alt+enter for a new line")}
	case ModeChatInput:
		body = append(m.chatLog(8), "> "+m.input+"█")
	case ModeSnapshotName:
		body = []string{"Snapshot name:", m.input + "█"}
	case ModeSnapshotList:
		body = []string{"Snapshots (enter restore, d delete, esc close)"}
		for i, rec := range m.board.Gallery().Records() {
			line := fmt.Sprintf("%s  %s", rec.Timestamp.Local().Format("Jan 02 15:04"), rec.Name)
			if i == m.snapshotIndex {
				line = selectedStyle.Render(line)
			}
			body = append(body, line)
		}
	case ModeFileInput:
		title := "Import board JSON:"
		if m.fileOp == FileOpDropFile {
			title = "Place file:"
		}
		body = []string{title, m.input + "█"}
		if m.input == "" {
			for i, name := range m.fileList {
				if i == m.selectedFileIndex {
					name = selectedStyle.Render(name)
				}
				body = append(body, name)
			}
		}
	case ModeConfirm:
		body = []string{m.promptText, mutedStyle.Render("y/n")}
	case ModeAlert:
		body = []string{m.alertText, mutedStyle.Render("press enter")}
	default:
		return ""
	}
	return dialogStyle.Render(strings.Join(body, "\n"))
}

// chatLog is the last n chat messages with their authors.
func (m model) chatLog(n int) []string {
	msgs := m.board.Channel().Messages()
	if len(msgs) > n {
		msgs = msgs[len(msgs)-n:]
	}
	lines := make([]string, 0, len(msgs)+1)
	lines = append(lines, "Chat:")
	for _, msg := range msgs {
		lines = append(lines, fmt.Sprintf("%s %s: %s",
			mutedStyle.Render(msg.Timestamp.Local().Format("15:04")), msg.Author, msg.Text))
	}
	return lines
}

// overlay centres panel over lines.
func overlay(lines []string, panel string, width int) []string {
	box := strings.Split(panel, "\n")
	top := (len(lines) - len(box)) / 2
	if top < 0 {
		top = 0
	}
	for i, row := range box {
		if top+i >= len(lines) {
			break
		}
		pad := (width - lipgloss.Width(row)) / 2
		if pad < 0 {
			pad = 0
		}
		lines[top+i] = lipgloss.PlaceHorizontal(width, lipgloss.Left, strings.Repeat(" ", pad)+row)
	}
	return lines
}

func (m model) helpView() string {
	helpLines := []string{
		"planboard help",
		"==============",
		"",
		"Drawing:",
		"  mouse drag       Draw with the current tool",
		"  1-7              Pencil, highlighter, eraser, line, rectangle, circle, text",
		"  c / C            Next / previous colour",
		"  [ / ]            Smaller / larger brush",
		"  g                Toggle snap to grid",
		"  ctrl+z           Undo last stroke",
		"  x                Clear the board",
		"  delete           Clear the board while erasing",
		"  ctrl+l           Lock / unlock drawing",
		"",
		"View:",
		"  h/j/k/l, arrows  Pan (shift for 2x)",
		"  + / - / wheel    Zoom in / out",
		"  0                Reset view",
		"",
		"Objects:",
		"  n                New sticky note",
		"  v                Sticky note from clipboard",
		"  p                New floating panel",
		"  o                Place a file (image, video, audio, pdf)",
		"  d / f            Delete / raise the object under the pointer",
		"",
		"Files:",
		"  ctrl+s           Save PNG",
		"  B / P / T        Save board image / PDF / text",
		"  e / i            Export / import JSON",
		"  y                Copy PNG to clipboard",
		"  s / S            Save / browse snapshots",
		"",
		"Team:",
		"  t                Chat",
		"  m                Start / stop speaking",
		"  M                Mute / unmute yourself",
		"",
		"Press ? or esc to close",
	}
	if len(helpLines) > m.height {
		helpLines = helpLines[:m.height]
	}
	return strings.Join(helpLines, "\n")
}
