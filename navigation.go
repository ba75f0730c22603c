package main

import (
	tea "github.com/charmbracelet/bubbletea"

	"planboard/internal/geom"
)

func isPanKey(key string) bool {
	switch key {
	case "h", "j", "k", "l", "H", "J", "K", "L",
		"left", "right", "up", "down",
		"shift+left", "shift+right", "shift+up", "shift+down":
		return true
	}
	return false
}

// handlePan moves the view; the content slides opposite to the key.
func (m *model) handlePan(key string, speed float64) {
	step := panStep * speed
	switch key {
	case "h", "left", "H", "shift+left":
		m.board.PanBy(step, 0)
	case "l", "right", "L", "shift+right":
		m.board.PanBy(-step, 0)
	case "k", "up", "K", "shift+up":
		m.board.PanBy(0, step)
	case "j", "down", "J", "shift+down":
		m.board.PanBy(0, -step)
	}
	m.syncOrigin()
}

func (m *model) getMoveSpeed(key string) float64 {
	switch key {
	case "H", "L", "K", "J", "shift+left", "shift+right", "shift+up", "shift+down":
		return 2
	default:
		return 1
	}
}

// syncOrigin places the canvas's top-left corner at the pan offset on screen.
func (m *model) syncOrigin() {
	m.surface.SetOrigin(m.board.Viewport().Pan)
}

// pixelsPerCell is how many device pixels one terminal cell covers at the current zoom.
func (m *model) pixelsPerCell() (float64, float64) {
	z := m.board.Viewport().Zoom
	return float64(m.cfg.Terminal.CellWidth) / z, float64(m.cfg.Terminal.CellHeight) / z
}

// deviceAt is the device position at the centre of a terminal cell.
func (m *model) deviceAt(col, row int) geom.Point {
	w, h := m.pixelsPerCell()
	return geom.Pt((float64(col)+0.5)*w, (float64(row)+0.5)*h)
}

// cellAt is the terminal cell showing the canvas point p.
func (m *model) cellAt(p geom.Point) (int, int) {
	w, h := m.pixelsPerCell()
	d := p.Add(m.surface.Origin())
	return int(d.X / w), int(d.Y / h)
}

func (m *model) canvasRows() int {
	rows := m.height - statusLines
	if rows < 1 {
		rows = 1
	}
	return rows
}

// handleMouse turns terminal mouse reports into pointer events. Leaving the canvas rows
// counts as the pointer leaving the board.
func (m *model) handleMouse(msg tea.MouseMsg) {
	if msg.Y >= m.canvasRows() {
		if m.mouseDown {
			m.mouseDown = false
		}
		m.board.PointerLeave()
		return
	}
	device := m.deviceAt(msg.X, msg.Y)
	m.pointer = device

	switch msg.Type {
	case tea.MouseWheelUp:
		m.board.Wheel(false)
		m.syncOrigin()
	case tea.MouseWheelDown:
		m.board.Wheel(true)
		m.syncOrigin()
	case tea.MouseLeft:
		if !m.mouseDown {
			m.mouseDown = true
			m.board.PointerDown(device)
			if _, pending := m.board.Canvas().PendingText(); pending {
				m.mouseDown = false
				m.mode = ModeTextInput
				m.input = ""
			}
			return
		}
		m.board.PointerMove(device)
	case tea.MouseMotion:
		m.board.PointerMove(device)
	case tea.MouseRelease:
		if m.mouseDown {
			m.mouseDown = false
			m.board.PointerMove(device)
			m.board.PointerUp()
		}
	}
}
