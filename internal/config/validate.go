package config

import (
	"fmt"
	"strings"

	"planboard/internal/tool"
)

// Validate performs business-rule validation on the loaded configuration and resolves
// directory paths. Load calls it automatically.
func (c *Config) Validate() error {
	if err := c.Board.validate(); err != nil {
		return fmt.Errorf("board: %w", err)
	}
	if strings.TrimSpace(c.Store.Key) == "" {
		return fmt.Errorf("store: key must not be empty")
	}
	if strings.ContainsAny(c.Store.Key, `/\`) {
		return fmt.Errorf("store: key %q must not contain path separators", c.Store.Key)
	}
	if c.Terminal.CellWidth <= 0 || c.Terminal.CellHeight <= 0 {
		return fmt.Errorf("terminal: cell size must be > 0 (got %dx%d)", c.Terminal.CellWidth, c.Terminal.CellHeight)
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("log: format must be text or json (got %q)", c.Log.Format)
	}

	c.Store.Dir = expandHome(c.Store.Dir)
	c.Store.SaveDirectory = expandHome(c.Store.SaveDirectory)
	return nil
}

func (b *BoardConfig) validate() error {
	if b.Width <= 0 || b.Height <= 0 {
		return fmt.Errorf("size must be > 0 (got %dx%d)", b.Width, b.Height)
	}
	if b.HistoryLimit < 1 {
		return fmt.Errorf("history_limit must be >= 1 (got %d)", b.HistoryLimit)
	}
	if _, err := tool.ParseColor(b.Background); err != nil {
		return fmt.Errorf("background: %w", err)
	}
	if _, err := tool.ParseColor(b.Color); err != nil {
		return fmt.Errorf("color: %w", err)
	}
	if _, err := tool.Parse(b.Tool); err != nil {
		return fmt.Errorf("tool: %w", err)
	}
	return nil
}

// ToolState builds the initial tool state. Brush and grid sizes are clamped.
func (b BoardConfig) ToolState() tool.State {
	ts := tool.NewState()
	if t, err := tool.Parse(b.Tool); err == nil {
		ts, _ = ts.WithTool(t)
	}
	if next, err := ts.WithColor(b.Color); err == nil {
		ts = next
	}
	return ts.WithBrushSize(b.BrushSize).WithGrid(b.SnapToGrid, b.GridSize)
}
