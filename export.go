package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"planboard/internal/export"
)

// saved reports the file the last download wrote.
func (m *model) saved(err error) {
	if err != nil {
		m.errorMessage = err.Error()
		return
	}
	m.successMessage = "Saved " + m.ui.lastSaved
}

func (m *model) exportBoardImage() { m.saved(m.board.DownloadBoardImage()) }
func (m *model) exportPDF()        { m.saved(m.board.DownloadPDF()) }
func (m *model) exportJSON()       { m.saved(m.board.DownloadJSON()) }

// exportVisualTXT writes what the terminal currently shows as plain text.
func (m *model) exportVisualTXT() error {
	cols := m.width
	if cols < 1 {
		cols = 80
	}
	lines := m.renderGrid(cols, m.canvasRows()).plain()
	data := []byte(strings.Join(lines, "\n") + "\n")
	name := export.Filename(m.board.Now(), "txt")
	return m.ui.download(name, data)
}

// copyDataURL puts the raster on the clipboard as a PNG data URL.
func (m *model) copyDataURL() error {
	url, err := m.board.PNGDataURL()
	if err != nil {
		return err
	}
	return writeClipboardText(url)
}

func (m *model) startFilePicker(op FileOperation) {
	m.fileOp = op
	m.mode = ModeFileInput
	m.input = ""
	switch op {
	case FileOpImportJSON:
		m.fileList = listFiles(saveDir(m.cfg), ".json")
	default:
		m.fileList = listFiles(saveDir(m.cfg))
	}
	m.selectedFileIndex = -1
	if len(m.fileList) > 0 {
		m.selectedFileIndex = 0
	}
}

// chosenFile is the typed name, or the highlighted entry when nothing was typed.
func (m *model) chosenFile() string {
	if name := strings.TrimSpace(m.input); name != "" {
		return name
	}
	if m.selectedFileIndex >= 0 && m.selectedFileIndex < len(m.fileList) {
		return m.fileList[m.selectedFileIndex]
	}
	return ""
}

func (m *model) finishFileOperation() {
	name := m.chosenFile()
	m.mode = ModeDraw
	m.input = ""
	if name == "" {
		return
	}
	path := savePath(m.cfg, name)
	data, err := os.ReadFile(path)
	if err != nil {
		m.errorMessage = fmt.Sprintf("Cannot read %s: %v", name, err)
		return
	}

	switch m.fileOp {
	case FileOpImportJSON:
		if err := m.board.ImportJSON(data); err == nil {
			m.syncOrigin()
			m.successMessage = "Imported " + filepath.Base(path)
		}
	case FileOpDropFile:
		base := filepath.Base(path)
		if _, err := m.board.DropFile(base, detectMime(base, data), data, nil); err == nil {
			m.successMessage = "Placed " + base
		}
	}
}
