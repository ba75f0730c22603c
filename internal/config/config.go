package config

// Config is the root application configuration.
type Config struct {
	Board    BoardConfig    `yaml:"board"`
	Store    StoreConfig    `yaml:"store"`
	Log      LogConfig      `yaml:"log"`
	Collab   CollabConfig   `yaml:"collab"`
	Terminal TerminalConfig `yaml:"terminal"`
}

// BoardConfig sizes the raster and sets the initial tool.
type BoardConfig struct {
	Width        int    `yaml:"width"         env:"BOARD_WIDTH"         env-default:"960"`
	Height       int    `yaml:"height"        env:"BOARD_HEIGHT"        env-default:"640"`
	Background   string `yaml:"background"    env:"BOARD_BACKGROUND"    env-default:"#1e1e2e"`
	HistoryLimit int    `yaml:"history_limit" env:"BOARD_HISTORY_LIMIT" env-default:"50"`
	Tool         string `yaml:"tool"          env:"BOARD_TOOL"          env-default:"pencil"`
	Color        string `yaml:"color"         env:"BOARD_COLOR"         env-default:"#ffffff"`
	BrushSize    int    `yaml:"brush_size"    env:"BOARD_BRUSH_SIZE"    env-default:"3"`
	GridSize     int    `yaml:"grid_size"     env:"BOARD_GRID_SIZE"     env-default:"20"`
	SnapToGrid   bool   `yaml:"snap_to_grid"  env:"BOARD_SNAP_TO_GRID"  env-default:"false"`
}

// StoreConfig locates the local board state and exported files.
type StoreConfig struct {
	Dir           string `yaml:"dir"            env:"STORE_DIR"            env-default:"~/.planboard"`
	Key           string `yaml:"key"            env:"STORE_KEY"            env-default:"whiteboard-state"`
	SaveDirectory string `yaml:"save_directory" env:"STORE_SAVE_DIRECTORY" env-default:""`
	Confirmations bool   `yaml:"confirmations"  env:"STORE_CONFIRMATIONS"  env-default:"true"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"text"`
	File   string `yaml:"file"   env:"LOG_FILE"   env-default:""`
}

// CollabConfig selects the collaboration transport. An empty URL keeps the board local
// with simulated participants.
type CollabConfig struct {
	URL      string `yaml:"url"       env:"COLLAB_URL"       env-default:""`
	Name     string `yaml:"name"      env:"COLLAB_NAME"      env-default:"Chef"`
	Simulate bool   `yaml:"simulate"  env:"COLLAB_SIMULATE"  env-default:"true"`
	Listen   string `yaml:"listen"    env:"COLLAB_LISTEN"    env-default:":8090"`
}

// TerminalConfig maps terminal cells to canvas pixels.
type TerminalConfig struct {
	CellWidth  int `yaml:"cell_width"  env:"TERMINAL_CELL_WIDTH"  env-default:"8"`
	CellHeight int `yaml:"cell_height" env:"TERMINAL_CELL_HEIGHT" env-default:"16"`
}
