package twin

// ModifierState tells which modifier keys are held down right now.
type ModifierState struct {
	Shift bool
	Ctrl  bool
	Alt   bool
}

// Keys the Linux console sends the same sequence for, whatever modifiers are
// held down
var correctableKeys = map[KeyCode]bool{
	KeyInsert: true,
	KeyDelete: true,
	KeyHome:   true,
	KeyEnd:    true,
	KeyPgUp:   true,
	KeyPgDown: true,
	KeyUp:     true,
	KeyDown:   true,
	KeyRight:  true,
	KeyLeft:   true,
	KeyF1:     true,
	KeyF2:     true,
	KeyF3:     true,
	KeyF4:     true,
	KeyF5:     true,
	KeyF6:     true,
	KeyF7:     true,
	KeyF8:     true,
	KeyF9:     true,
	KeyF10:    true,
	KeyF11:    true,
	KeyF12:    true,
}

// CorrectModifiers adds the currently held modifiers to keys whose sequences
// don't say anything about modifiers. Use it from a KeyCorrection hook on
// terminals like the Linux console.
func CorrectModifiers(key KeyCode, state ModifierState) KeyCode {
	if key == KeyTab && state.Shift && !state.Ctrl && !state.Alt {
		return KeyBacktab
	}

	if !correctableKeys[key] {
		// Either not a named key, or the sequence already carried modifiers
		return key
	}

	var mods Modifiers
	if state.Shift {
		mods |= ModShift
	}
	if state.Ctrl {
		mods |= ModCtrl
	}
	if state.Alt {
		mods |= ModMeta
	}

	return key.WithModifiers(mods)
}
