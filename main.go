package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"planboard/internal/app"
	"planboard/internal/board"
	"planboard/internal/collab"
	"planboard/internal/config"
	"planboard/internal/geom"
	"planboard/internal/persist"
	"planboard/internal/raster"
	"planboard/internal/tool"
)

func main() {
	configPath := flag.String("config", "", "path to planboard.yaml")
	serve := flag.Bool("serve", false, "run the collaboration relay on collab.listen instead of the board")
	flag.Parse()

	cfg, err := loadSettings(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if *serve {
		log := app.NewLogger(cfg.Log, os.Stderr)
		if err := runRelay(cfg, log); err != nil {
			log.Error("relay stopped", slog.Any("error", err))
			os.Exit(1)
		}
		return
	}

	// The board owns the terminal, so logs go to the configured file or nowhere.
	out, closeLog, err := app.LogOutput(cfg.Log, io.Discard)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer closeLog()
	log := app.NewLogger(cfg.Log, out)

	m, err := newModel(cfg, log)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer m.cancel()

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
	)
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error: %v", err)
		os.Exit(1)
	}
}

// runRelay serves the websocket hub until interrupted.
func runRelay(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := collab.NewHub(log)
	srv := &http.Server{
		Addr:              cfg.Collab.Listen,
		Handler:           hub.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn("relay shutdown", slog.Any("error", err))
		}
	}()

	log.Info("relay listening", slog.String("addr", cfg.Collab.Listen))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("relay: %w", err)
	}
	return nil
}

func newModel(cfg *config.Config, log *slog.Logger) (model, error) {
	store, err := persist.NewFileStore(cfg.Store.Dir)
	if err != nil {
		return model{}, err
	}
	bg, err := tool.ParseColor(cfg.Board.Background)
	if err != nil {
		return model{}, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	ui := &session{confirmations: cfg.Store.Confirmations, saveDir: saveDir(cfg)}
	surface := raster.NewMemorySurface(geom.Point{})

	// The participant id is kept beside the board state so every launch is the same
	// roster entry.
	localID, _, err := store.Get(participantKey)
	if err != nil {
		log.Warn("participant id not read", slog.Any("error", err))
	}
	local := collab.Participant{ID: localID, Name: cfg.Collab.Name, Role: collab.RoleHost}
	chOpts := []collab.Option{collab.WithLogger(log)}
	simulate := false
	if cfg.Collab.URL != "" {
		ws, err := collab.Dial(ctx, cfg.Collab.URL, log)
		if err != nil {
			cancel()
			return model{}, err
		}
		chOpts = append(chOpts, collab.WithTransport(ws))
	} else if cfg.Collab.Simulate {
		chOpts = append(chOpts, collab.WithSimulatedPeers(collab.DefaultPeers()...))
		simulate = true
	}

	channel := collab.NewChannel(local, chOpts...)
	if localID == "" {
		if err := store.Set(participantKey, channel.Local().ID); err != nil {
			log.Warn("participant id not saved", slog.Any("error", err))
		}
	}

	b := board.New(board.Options{
		Width:        cfg.Board.Width,
		Height:       cfg.Board.Height,
		Background:   bg,
		HistoryLimit: cfg.Board.HistoryLimit,
		Surface:      surface,
		Tool:         cfg.Board.ToolState(),
		Persister:    persist.New(store, cfg.Store.Key, log),
		Channel:      channel,
		Simulate:     simulate,
		Callbacks: board.Callbacks{
			Alert:    ui.alert,
			Confirm:  ui.confirm,
			Download: ui.download,
		},
		Context: ctx,
		Logger:  log,
	})

	m := model{
		board:   b,
		surface: surface,
		ui:      ui,
		cfg:     cfg,
		log:     log,
		ctx:     ctx,
		cancel:  cancel,
		mode:    ModeDraw,
	}
	m.colorIndex = indexOf(palette, b.Tool().Color())
	m.syncOrigin()
	return m, nil
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if strings.EqualFold(v, s) {
			return i
		}
	}
	return 0
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(time.Time) tea.Msg { return tickMsg{} })
}

func (m model) Init() tea.Cmd {
	if m.cfg.Collab.URL == "" {
		return tick()
	}
	ctx, b := m.ctx, m.board
	b.Channel().AnnounceRoster(ctx)
	return tea.Batch(tick(), func() tea.Msg {
		return collabDoneMsg{err: b.RunCollab(ctx)}
	})
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		return m, tick()

	case collabDoneMsg:
		if msg.err != nil {
			m.errorMessage = "Collaboration stopped: " + msg.err.Error()
		}
		return m, nil

	case tea.MouseMsg:
		if m.mode == ModeDraw && !m.help {
			m.handleMouse(msg)
			m.afterBoard()
		}
		return m, nil

	case tea.KeyMsg:
		key := msg.String()
		if key == "ctrl+c" {
			m.cancel()
			return m, tea.Quit
		}
		if m.help {
			switch key {
			case "esc", "q", "?":
				m.help = false
			}
			return m, nil
		}

		switch m.mode {
		case ModeAlert:
			switch key {
			case "enter", "esc", " ":
				m.mode = ModeDraw
				m.afterBoard()
			}
			return m, nil

		case ModeConfirm:
			switch key {
			case "y", "Y", "enter":
				m.mode = ModeDraw
				switch m.confirmAction {
				case ConfirmClear:
					m.ui.granted = true
					if m.board.RequestClear() {
						m.successMessage = "Board cleared"
					}
					m.ui.granted = false
				case ConfirmQuit:
					m.cancel()
					return m, tea.Quit
				}
			case "n", "N", "esc":
				m.mode = ModeDraw
			}
			m.afterBoard()
			return m, nil

		case ModeTextInput, ModeStickyInput, ModeChatInput, ModeSnapshotName:
			m.handleTextInput(msg)
			m.afterBoard()
			return m, nil

		case ModeSnapshotList:
			m.handleSnapshotList(key)
			m.afterBoard()
			return m, nil

		case ModeFileInput:
			m.handleFileInput(msg)
			m.afterBoard()
			return m, nil
		}

		cmd := m.handleDrawKey(key)
		m.afterBoard()
		return m, cmd
	}
	return m, nil
}

// afterBoard surfaces whatever the board asked of the user during the last event.
func (m *model) afterBoard() {
	if prompt, ok := m.ui.takePrompt(); ok {
		m.mode = ModeConfirm
		m.confirmAction = ConfirmClear
		m.promptText = prompt
		return
	}
	if m.mode == ModeAlert || m.mode == ModeConfirm {
		return
	}
	if msg, ok := m.ui.takeAlert(); ok {
		if m.mode == ModeTextInput {
			m.board.CancelText()
		}
		m.mode = ModeAlert
		m.alertText = msg
		m.input = ""
	}
}

func (m *model) handleDrawKey(key string) tea.Cmd {
	m.errorMessage = ""
	m.successMessage = ""

	if m.board.Key(key) {
		if key == "ctrl+s" && len(m.ui.alerts) == 0 {
			m.successMessage = "Saved " + m.ui.lastSaved
		}
		return nil
	}
	if t, ok := toolKeys[key]; ok {
		if err := m.board.SetTool(string(t)); err != nil {
			m.errorMessage = err.Error()
		}
		return nil
	}
	if isPanKey(key) {
		m.handlePan(key, m.getMoveSpeed(key))
		return nil
	}

	switch key {
	case "q":
		if !m.cfg.Store.Confirmations {
			m.cancel()
			return tea.Quit
		}
		m.mode = ModeConfirm
		m.confirmAction = ConfirmQuit
		m.promptText = "Quit planboard?"
	case "?":
		m.help = true
	case "esc":
		m.board.CancelText()
	case "c", "C":
		if key == "c" {
			m.colorIndex = (m.colorIndex + 1) % len(palette)
		} else {
			m.colorIndex = (m.colorIndex + len(palette) - 1) % len(palette)
		}
		if err := m.board.SetColor(palette[m.colorIndex]); err != nil {
			m.errorMessage = err.Error()
		}
	case "]":
		m.board.SetBrushSize(m.board.Tool().BrushSize() + 1)
	case "[":
		m.board.SetBrushSize(m.board.Tool().BrushSize() - 1)
	case "g":
		ts := m.board.Tool()
		m.board.SetGrid(!ts.SnapToGrid(), ts.GridSize())
	case "+", "=":
		m.board.ZoomIn()
		m.syncOrigin()
	case "-":
		m.board.ZoomOut()
		m.syncOrigin()
	case "0":
		m.board.ResetView()
		m.syncOrigin()
	case "ctrl+l":
		if m.board.ToggleLock() {
			m.successMessage = "Board locked"
		} else {
			m.successMessage = "Board unlocked"
		}
	case "x":
		if m.board.Locked() {
			m.errorMessage = "Board is locked"
			return nil
		}
		if m.board.RequestClear() {
			m.successMessage = "Board cleared"
		}
	case "n":
		m.mode = ModeStickyInput
		m.input = ""
	case "v":
		m.pasteSticky()
	case "p":
		pt := panelTypes[m.panelIndex%len(panelTypes)]
		m.panelIndex++
		m.board.AddFloatingPanel(panelTitles[pt], pt)
	case "d":
		if o, ok := m.objectUnderPointer(); ok {
			m.board.RemoveObject(o)
		}
	case "f":
		if o, ok := m.objectUnderPointer(); ok {
			m.board.BringToFront(o)
		}
	case "s":
		m.mode = ModeSnapshotName
		m.input = ""
	case "S":
		if m.board.Gallery().Len() == 0 {
			m.errorMessage = "No snapshots yet"
			return nil
		}
		m.mode = ModeSnapshotList
		m.snapshotIndex = 0
	case "e":
		m.exportJSON()
	case "P":
		m.exportPDF()
	case "B":
		m.exportBoardImage()
	case "T":
		m.saved(m.exportVisualTXT())
	case "y":
		if err := m.copyDataURL(); err != nil {
			m.errorMessage = err.Error()
		} else {
			m.successMessage = "Copied image to clipboard"
		}
	case "i":
		m.startFilePicker(FileOpImportJSON)
	case "o":
		m.startFilePicker(FileOpDropFile)
	case "t":
		m.mode = ModeChatInput
		m.input = ""
	case "M":
		m.board.ToggleMute(m.board.Channel().Local().ID)
	case "m":
		local := m.board.Channel().Local()
		m.board.SetSpeaking(local.ID, !local.IsSpeaking)
	}
	return nil
}

func (m *model) pasteSticky() {
	text, err := readClipboardText()
	if err != nil {
		m.errorMessage = "Cannot read clipboard: " + err.Error()
		return
	}
	text = cleanClipboardText(text)
	if text == "" {
		m.errorMessage = "Clipboard is empty"
		return
	}
	m.addSticky(text)
}

func (m *model) addSticky(text string) {
	color := stickyColors[m.stickyIndex%len(stickyColors)]
	m.stickyIndex++
	m.board.AddSticky(text, color)
}

// objectUnderPointer is the id of the topmost object under the last mouse position.
func (m *model) objectUnderPointer() (int, bool) {
	p := m.pointer.Sub(m.surface.Origin())
	o, ok := m.board.Layer().At(p)
	if !ok {
		m.errorMessage = "No object under the pointer"
		return 0, false
	}
	return o.ObjectID(), true
}

// editInput applies a key to the input line and reports enter or esc.
func (m *model) editInput(msg tea.KeyMsg) (done, cancelled bool) {
	switch msg.Type {
	case tea.KeyEnter:
		return true, false
	case tea.KeyEsc:
		return false, true
	case tea.KeyBackspace:
		if r := []rune(m.input); len(r) > 0 {
			m.input = string(r[:len(r)-1])
		}
	case tea.KeyCtrlU:
		m.input = ""
	case tea.KeySpace:
		m.input += " "
	case tea.KeyRunes:
		m.input += string(msg.Runes)
	case tea.KeyCtrlV:
		if text, err := readClipboardText(); err == nil {
			m.input += cleanClipboardText(text)
		}
	}
	return false, false
}

func (m *model) handleTextInput(msg tea.KeyMsg) {
	if m.mode == ModeStickyInput && msg.Type == tea.KeyEnter && msg.Alt {
		m.input += "\n"
		return
	}
	done, cancelled := m.editInput(msg)
	if cancelled {
		if m.mode == ModeTextInput {
			m.board.CancelText()
		}
		m.mode = ModeDraw
		m.input = ""
		return
	}
	if !done {
		return
	}

	mode, text := m.mode, m.input
	m.mode = ModeDraw
	m.input = ""
	switch mode {
	case ModeTextInput:
		m.board.CommitText(text)
	case ModeStickyInput:
		if strings.TrimSpace(text) == "" {
			text = ""
		}
		m.addSticky(text)
	case ModeChatInput:
		if m.board.SendChat(text) == nil {
			m.successMessage = "Message sent"
		}
	case ModeSnapshotName:
		if rec, err := m.board.SaveSnapshot(text); err == nil {
			m.successMessage = "Snapshot saved: " + rec.Name
		}
	}
}

func (m *model) handleSnapshotList(key string) {
	records := m.board.Gallery().Records()
	if len(records) == 0 {
		m.mode = ModeDraw
		return
	}
	if m.snapshotIndex >= len(records) {
		m.snapshotIndex = len(records) - 1
	}
	switch key {
	case "k", "up":
		if m.snapshotIndex > 0 {
			m.snapshotIndex--
		}
	case "j", "down":
		if m.snapshotIndex < len(records)-1 {
			m.snapshotIndex++
		}
	case "enter":
		rec := records[m.snapshotIndex]
		if m.board.RestoreSnapshot(rec.ID) {
			m.syncOrigin()
			m.successMessage = "Restored " + rec.Name
		}
		m.mode = ModeDraw
	case "d":
		m.board.DeleteSnapshot(records[m.snapshotIndex].ID)
		if m.board.Gallery().Len() == 0 {
			m.mode = ModeDraw
		}
	case "esc", "q":
		m.mode = ModeDraw
	}
}

func (m *model) handleFileInput(msg tea.KeyMsg) {
	switch msg.String() {
	case "up":
		if m.selectedFileIndex > 0 {
			m.selectedFileIndex--
		}
		return
	case "down":
		if m.selectedFileIndex < len(m.fileList)-1 {
			m.selectedFileIndex++
		}
		return
	}
	done, cancelled := m.editInput(msg)
	switch {
	case cancelled:
		m.mode = ModeDraw
		m.input = ""
	case done:
		m.finishFileOperation()
	}
}
