package resource

import "github.com/meridian-erp/ledgercore/internal/shared"

// Shortcut identifies one of the Alt-key bindings shared by every resource
// page.
type Shortcut string

// Uniform shortcut bindings.
const (
	ShortcutNew    Shortcut = "alt+n"
	ShortcutSave   Shortcut = "alt+s"
	ShortcutPrint  Shortcut = "alt+p"
	ShortcutEdit   Shortcut = "alt+e"
	ShortcutDelete Shortcut = "alt+d"
	ShortcutBack   Shortcut = "alt+b"
)

// ShortcutMap dispatches key bindings to page actions, suppressing any
// binding whose capability is absent.
type ShortcutMap struct {
	caps    shared.Capability
	actions map[Shortcut]func()
}

// NewShortcutMap builds an empty map gated by the page's capability.
func NewShortcutMap(caps shared.Capability) *ShortcutMap {
	return &ShortcutMap{caps: caps, actions: make(map[Shortcut]func())}
}

// Bind attaches an action to a shortcut.
func (m *ShortcutMap) Bind(s Shortcut, fn func()) {
	m.actions[s] = fn
}

// Dispatch runs the bound action and reports whether it fired. It never
// fires while focus is inside a text-entry control, and silently no-ops
// when the shortcut's capability is absent or nothing is bound.
func (m *ShortcutMap) Dispatch(s Shortcut, textEntryFocused bool) bool {
	if textEntryFocused {
		return false
	}
	if !m.allowed(s) {
		return false
	}
	fn, ok := m.actions[s]
	if !ok {
		return false
	}
	fn()
	return true
}

func (m *ShortcutMap) allowed(s Shortcut) bool {
	switch s {
	case ShortcutNew:
		return m.caps.Create
	case ShortcutSave:
		return m.caps.Create || m.caps.Update
	case ShortcutEdit:
		return m.caps.Update
	case ShortcutDelete:
		return m.caps.Delete
	case ShortcutPrint:
		return m.caps.Export
	case ShortcutBack:
		return true
	}
	return false
}
