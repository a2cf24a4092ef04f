package resource

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meridian-erp/ledgercore/internal/shared"
)

func TestShortcutDispatch(t *testing.T) {
	fired := map[Shortcut]int{}
	m := NewShortcutMap(shared.FullAccess())
	for _, s := range []Shortcut{ShortcutNew, ShortcutSave, ShortcutPrint, ShortcutEdit, ShortcutDelete, ShortcutBack} {
		s := s
		m.Bind(s, func() { fired[s]++ })
	}

	require.True(t, m.Dispatch(ShortcutNew, false))
	require.True(t, m.Dispatch(ShortcutBack, false))
	require.Equal(t, 1, fired[ShortcutNew])
	require.Equal(t, 1, fired[ShortcutBack])
}

func TestShortcutNeverFiresInTextEntry(t *testing.T) {
	fired := 0
	m := NewShortcutMap(shared.FullAccess())
	m.Bind(ShortcutSave, func() { fired++ })

	require.False(t, m.Dispatch(ShortcutSave, true))
	require.Zero(t, fired)
}

func TestShortcutSuppressedWithoutCapability(t *testing.T) {
	fired := 0
	m := NewShortcutMap(shared.ViewOnly())
	for _, s := range []Shortcut{ShortcutNew, ShortcutSave, ShortcutPrint, ShortcutEdit, ShortcutDelete} {
		m.Bind(s, func() { fired++ })
	}
	for _, s := range []Shortcut{ShortcutNew, ShortcutSave, ShortcutPrint, ShortcutEdit, ShortcutDelete} {
		require.False(t, m.Dispatch(s, false), "shortcut %s", s)
	}
	require.Zero(t, fired)

	// Back never needs a capability.
	m.Bind(ShortcutBack, func() { fired++ })
	require.True(t, m.Dispatch(ShortcutBack, false))
	require.Equal(t, 1, fired)
}

func TestShortcutUnboundNoOps(t *testing.T) {
	m := NewShortcutMap(shared.FullAccess())
	require.False(t, m.Dispatch(ShortcutDelete, false))
}
