package tui

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"charm.land/bubbles/v2/key"
)

// KeyConfig overrides board action keys. Blank fields keep the defaults.
type KeyConfig struct {
	AddTask     string
	EditTask    string
	DeleteTask  string
	PromoteTask string
	RegressTask string
	YankTitle   string
}

// keyMap holds board-screen bindings. Form and confirm screens match keys directly.
type keyMap struct {
	quit        key.Binding
	toggleHelp  key.Binding
	moveLeft    key.Binding
	moveRight   key.Binding
	moveUp      key.Binding
	moveDown    key.Binding
	addTask     key.Binding
	editTask    key.Binding
	deleteTask  key.Binding
	promoteTask key.Binding
	regressTask key.Binding
	yankTitle   key.Binding
}

// newKeyMap constructs key map.
func newKeyMap() keyMap {
	return keyMap{
		quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		toggleHelp:  key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
		moveLeft:    key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h/←", "panel left")),
		moveRight:   key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("l/→", "panel right")),
		moveUp:      key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "task up")),
		moveDown:    key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "task down")),
		addTask:     key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add task")),
		editTask:    key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit task")),
		deleteTask:  key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete task")),
		promoteTask: key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "promote")),
		regressTask: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "regress")),
		yankTitle:   key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy title")),
	}
}

// applyConfig rebinds the action keys named in cfg.
// An override that collides with a navigation, help or quit key keeps the default.
func (k *keyMap) applyConfig(cfg KeyConfig) {
	reserved := map[string]struct{}{"esc": {}, "enter": {}}
	for _, b := range []key.Binding{k.quit, k.toggleHelp, k.moveLeft, k.moveRight, k.moveUp, k.moveDown} {
		for _, name := range b.Keys() {
			reserved[name] = struct{}{}
		}
	}
	configureBinding(&k.addTask, reserved, cfg.AddTask, "a", "add task")
	configureBinding(&k.editTask, reserved, cfg.EditTask, "e", "edit task")
	configureBinding(&k.deleteTask, reserved, cfg.DeleteTask, "d", "delete task")
	configureBinding(&k.promoteTask, reserved, cfg.PromoteTask, "p", "promote")
	configureBinding(&k.regressTask, reserved, cfg.RegressTask, "r", "regress")
	configureBinding(&k.yankTitle, reserved, cfg.YankTitle, "y", "copy title")
}

// configureBinding replaces the keys and help of b from a raw config value.
func configureBinding(b *key.Binding, reserved map[string]struct{}, raw, fallback, desc string) {
	keys, help := parseBindingKeys(raw, fallback)
	for _, name := range keys {
		if _, ok := reserved[name]; ok {
			keys, help = parseBindingKeys(fallback, fallback)
			break
		}
	}
	b.SetKeys(keys...)
	b.SetHelp(help, desc)
}

// parseBindingKeys turns a configured key into matcher keys and a help label.
// Uppercase single runes also match their shift+ form; "space" matches a literal space.
func parseBindingKeys(raw, fallback string) ([]string, string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		raw = fallback
	}
	if strings.EqualFold(raw, "space") || raw == " " {
		return []string{" ", "space"}, "space"
	}
	if utf8.RuneCountInString(raw) == 1 {
		r, _ := utf8.DecodeRuneInString(raw)
		if unicode.IsUpper(r) {
			return []string{raw, "shift+" + string(unicode.ToLower(r))}, raw
		}
		return []string{raw}, raw
	}
	return []string{strings.ToLower(raw)}, raw
}

// ShortHelp handles short help.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.addTask, k.editTask, k.deleteTask, k.promoteTask, k.regressTask, k.toggleHelp, k.quit,
	}
}

// FullHelp handles full help.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.addTask, k.editTask, k.deleteTask, k.yankTitle},
		{k.promoteTask, k.regressTask},
		{k.moveLeft, k.moveRight, k.moveUp, k.moveDown},
		{k.toggleHelp, k.quit},
	}
}
