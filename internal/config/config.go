package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	charmLog "github.com/charmbracelet/log"
	"github.com/hylla/kanban/internal/app"
	toml "github.com/pelletier/go-toml/v2"
)

// DefaultDevLogDir is the workspace-relative directory for dev-mode log files.
const DefaultDevLogDir = ".kanban/log"

type Config struct {
	Database DatabaseConfig `toml:"database"`
	Board    BoardConfig    `toml:"board"`
	UI       UIConfig       `toml:"ui"`
	Keys     KeyConfig      `toml:"keys"`
	Logging  LoggingConfig  `toml:"logging"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

type BoardConfig struct {
	Order           string `toml:"order"` // category | updated
	ShowCategories  bool   `toml:"show_categories"`
	ShowBodyPreview bool   `toml:"show_body_preview"`
}

type UIConfig struct {
	ConfirmDelete bool `toml:"confirm_delete"`
}

// KeyConfig rebinds board actions. Each value is a single key such as "n", "N" or "space".
type KeyConfig struct {
	AddTask     string `toml:"add_task"`
	EditTask    string `toml:"edit_task"`
	DeleteTask  string `toml:"delete_task"`
	PromoteTask string `toml:"promote_task"`
	RegressTask string `toml:"regress_task"`
	YankTitle   string `toml:"yank_title"`
}

type LoggingConfig struct {
	Level   string        `toml:"level"`
	DevFile DevFileConfig `toml:"dev_file"`
}

type DevFileConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

func Default(dbPath string) Config {
	return Config{
		Database: DatabaseConfig{
			Path: dbPath,
		},
		Board: BoardConfig{
			Order:           string(app.BoardOrderCategory),
			ShowCategories:  true,
			ShowBodyPreview: true,
		},
		UI: UIConfig{
			ConfirmDelete: true,
		},
		Keys: KeyConfig{
			AddTask:     "a",
			EditTask:    "e",
			DeleteTask:  "d",
			PromoteTask: "p",
			RegressTask: "r",
			YankTitle:   "y",
		},
		Logging: LoggingConfig{
			Level: "info",
			DevFile: DevFileConfig{
				Enabled: true,
				Dir:     DefaultDevLogDir,
			},
		},
	}
}

func Load(path string, defaults Config) (Config, error) {
	cfg := defaults
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if len(content) == 0 {
		return cfg, nil
	}

	if err := toml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode toml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Database.Path) == "" {
		return errors.New("database path is required")
	}
	if _, err := app.ParseBoardOrder(c.Board.Order); err != nil {
		return fmt.Errorf("invalid board.order: %q", c.Board.Order)
	}
	if _, err := charmLog.ParseLevel(strings.ToLower(strings.TrimSpace(c.Logging.Level))); err != nil {
		return fmt.Errorf("invalid logging.level: %q", c.Logging.Level)
	}
	if err := c.Keys.validate(); err != nil {
		return err
	}
	if c.Logging.DevFile.Enabled && strings.TrimSpace(c.Logging.DevFile.Dir) == "" {
		return errors.New("logging.dev_file.dir is required when enabled")
	}
	return nil
}

// reservedKeys are the fixed board bindings that action keys may not take over.
var reservedKeys = map[string]struct{}{
	"q": {}, "ctrl+c": {}, "?": {}, "esc": {}, "enter": {},
	"h": {}, "j": {}, "k": {}, "l": {},
	"left": {}, "right": {}, "up": {}, "down": {},
}

// validate rejects action keys that collide with a fixed binding or with another action.
// Blank entries fall back to the default key for that action.
func (k KeyConfig) validate() error {
	defaults := Default("").Keys
	seen := map[string]string{}
	for _, entry := range []struct{ name, value, fallback string }{
		{"add_task", k.AddTask, defaults.AddTask},
		{"edit_task", k.EditTask, defaults.EditTask},
		{"delete_task", k.DeleteTask, defaults.DeleteTask},
		{"promote_task", k.PromoteTask, defaults.PromoteTask},
		{"regress_task", k.RegressTask, defaults.RegressTask},
		{"yank_title", k.YankTitle, defaults.YankTitle},
	} {
		value := normalizeKey(entry.value)
		if value == "" {
			value = entry.fallback
		}
		if _, ok := reservedKeys[value]; ok {
			return fmt.Errorf("keys.%s uses reserved key %q", entry.name, value)
		}
		if prev, ok := seen[value]; ok {
			return fmt.Errorf("keys.%s duplicates keys.%s: %q", entry.name, prev, value)
		}
		seen[value] = entry.name
	}
	return nil
}

// normalizeKey folds a configured key to the form the board matches on.
func normalizeKey(raw string) string {
	if raw == " " {
		return "space"
	}
	raw = strings.TrimSpace(raw)
	if utf8.RuneCountInString(raw) <= 1 {
		return raw
	}
	return strings.ToLower(raw)
}

// BoardOrder returns the parsed panel ordering, defaulting to category clustering.
func (c Config) BoardOrder() app.BoardOrder {
	order, err := app.ParseBoardOrder(c.Board.Order)
	if err != nil {
		return app.BoardOrderCategory
	}
	return order
}

// EnsureConfigDir creates the directory that holds the config file at path.
func EnsureConfigDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
