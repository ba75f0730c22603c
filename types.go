package main

import (
	"context"
	"log/slog"

	"planboard/internal/board"
	"planboard/internal/config"
	"planboard/internal/export"
	"planboard/internal/geom"
	"planboard/internal/raster"
)

type model struct {
	board   *board.Board
	surface *raster.MemorySurface
	ui      *session
	cfg     *config.Config
	log     *slog.Logger
	ctx     context.Context
	cancel  context.CancelFunc

	width  int
	height int

	mode          Mode
	confirmAction ConfirmAction
	fileOp        FileOperation
	input         string
	promptText    string
	alertText     string

	fileList          []string
	selectedFileIndex int
	snapshotIndex     int

	colorIndex  int
	stickyIndex int
	panelIndex  int

	mouseDown bool
	pointer   geom.Point
	help      bool

	errorMessage   string
	successMessage string
}

type tickMsg struct{}

type collabDoneMsg struct{ err error }

// session receives the board's callbacks. It outlives individual model values, which
// bubbletea copies on every update.
type session struct {
	confirmations bool
	saveDir       string

	alerts    []string
	prompt    string
	granted   bool
	lastSaved string
}

func (s *session) alert(msg string) {
	s.alerts = append(s.alerts, msg)
}

// confirm cannot block the event loop. The first call parks the question in prompt and
// answers no; once the user agrees, the repeated request is answered yes exactly once.
func (s *session) confirm(msg string) bool {
	if !s.confirmations {
		return true
	}
	if s.granted {
		s.granted = false
		return true
	}
	s.prompt = msg
	return false
}

func (s *session) download(name string, data []byte) error {
	path, err := export.WriteFile(s.saveDir, name, data)
	if err != nil {
		return err
	}
	s.lastSaved = path
	return nil
}

func (s *session) takeAlert() (string, bool) {
	if len(s.alerts) == 0 {
		return "", false
	}
	msg := s.alerts[0]
	s.alerts = s.alerts[1:]
	return msg, true
}

func (s *session) takePrompt() (string, bool) {
	p := s.prompt
	s.prompt = ""
	return p, p != ""
}
