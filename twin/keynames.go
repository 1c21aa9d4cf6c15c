package twin

import "strings"

type namedKey struct {
	key  KeyCode
	name string
}

var namedKeyNames = []namedKey{
	{KeyCtrlSpace, "Ctrl+Space"},
	{KeyInsert, "Insert"},
	{KeyDelete, "Delete"},
	{KeyHome, "Home"},
	{KeyEnd, "End"},
	{KeyPgUp, "PgUp"},
	{KeyPgDown, "PgDown"},
	{KeyUp, "Up"},
	{KeyDown, "Down"},
	{KeyRight, "Right"},
	{KeyLeft, "Left"},
	{KeyBacktab, "Shift+Tab"},
	{KeyCenter, "Center"},
	{KeyF1, "F1"},
	{KeyF2, "F2"},
	{KeyF3, "F3"},
	{KeyF4, "F4"},
	{KeyF5, "F5"},
	{KeyF6, "F6"},
	{KeyF7, "F7"},
	{KeyF8, "F8"},
	{KeyF9, "F9"},
	{KeyF10, "F10"},
	{KeyF11, "F11"},
	{KeyF12, "F12"},
}

// The human readable key name table, later entries win. Built once by init()
// and read-only after that.
var keyNames []namedKey

func init() {
	keyNames = append(keyNames,
		namedKey{KeyNone, "None"},
		namedKey{KeyBackspace, "Backspace"},
		namedKey{KeyTab, "Tab"},
		namedKey{KeyEnter, "Enter"},
		namedKey{KeyEscape, "Escape"},
		namedKey{KeySpace, "Space"},
	)

	// Ctrl+A..Ctrl+Z, where not already named above
	for char := byte('A'); char <= 'Z'; char++ {
		key := KeyCode(char - 'A' + 1)
		if key == KeyBackspace || key == KeyTab || key == KeyEnter {
			continue
		}
		keyNames = append(keyNames, namedKey{key, "Ctrl+" + string(char)})
	}
	keyNames = append(keyNames,
		namedKey{KeyCode(0x1c), "Ctrl+\\"},
		namedKey{KeyCode(0x1d), "Ctrl+]"},
		namedKey{KeyCode(0x1e), "Ctrl+^"},
		namedKey{KeyCode(0x1f), "Ctrl+_"},
	)

	keyNames = append(keyNames, namedKeyNames...)
	for mods := Modifiers(1); mods <= ModShift|ModMeta|ModCtrl; mods++ {
		for _, named := range namedKeyNames {
			if named.key == KeyCtrlSpace || named.key == KeyBacktab {
				continue
			}
			keyNames = append(keyNames, namedKey{
				named.key.WithModifiers(mods),
				modifiersPrefix(mods) + named.name,
			})
		}
	}
	keyNames = append(keyNames, namedKey{MetaKey(0x7f), "Meta+Backspace"})

	for char := byte(0x20); char < 0x7f; char++ {
		name := string(char)
		if char == ' ' {
			name = "Space"
		}
		keyNames = append(keyNames, namedKey{MetaKey(char), "Meta+" + name})
	}

	keyNames = append(keyNames,
		namedKey{KeyIncomplete, "Incomplete"},
		namedKey{KeyX11Mouse, "X11 mouse"},
		namedKey{KeyExtendedMouse, "SGR mouse"},
		namedKey{KeyUrxvtMouse, "urxvt mouse"},
	)
}

func modifiersPrefix(mods Modifiers) string {
	var builder strings.Builder
	if mods&ModCtrl != 0 {
		builder.WriteString("Ctrl+")
	}
	if mods&ModMeta != 0 {
		builder.WriteString("Meta+")
	}
	if mods&ModShift != 0 {
		builder.WriteString("Shift+")
	}
	return builder.String()
}

// Names for key codes. KeyNone never matches, printable ASCII without a name
// of its own is rendered as itself, everything else unnamed is "".
func keyName(key KeyCode) string {
	for i := len(keyNames) - 1; i >= 0; i-- {
		kn := keyNames[i]
		if kn.key != KeyNone && kn.key == key {
			return kn.name
		}
	}

	if key > 32 && key < 127 {
		return string(rune(key))
	}

	return ""
}
