package tui

import "github.com/atotto/clipboard"

// BoardConfig controls what the board renders for each task.
type BoardConfig struct {
	ShowCategories  bool
	ShowBodyPreview bool
}

// Logger receives persistence events. *log.Logger from charmbracelet/log satisfies it.
type Logger interface {
	Debug(msg any, keyvals ...any)
	Error(msg any, keyvals ...any)
}

// ClipboardFunc writes text to the system clipboard.
type ClipboardFunc func(string) error

type Option func(*Model)

func DefaultBoardConfig() BoardConfig {
	return BoardConfig{
		ShowCategories:  true,
		ShowBodyPreview: true,
	}
}

func WithBoardConfig(cfg BoardConfig) Option {
	return func(m *Model) {
		m.boardCfg = cfg
	}
}

// WithConfirmDelete toggles the delete confirmation screen. When disabled, d deletes immediately.
func WithConfirmDelete(enabled bool) Option {
	return func(m *Model) {
		m.confirmDelete = enabled
	}
}

func WithKeyConfig(cfg KeyConfig) Option {
	return func(m *Model) {
		m.keys.applyConfig(cfg)
	}
}

func WithLogger(logger Logger) Option {
	return func(m *Model) {
		m.logger = logger
	}
}

func WithClipboard(fn ClipboardFunc) Option {
	return func(m *Model) {
		if fn != nil {
			m.copyText = fn
		}
	}
}

// defaultClipboard writes through the OS clipboard.
func defaultClipboard(text string) error {
	return clipboard.WriteAll(text)
}
