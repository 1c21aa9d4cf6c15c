package twin

import (
	"github.com/rivo/uniseg"
)

// KeyCode identifies one logical key press.
//
// Unicode code points are their own key codes, so typing 'a' gives you
// KeyCode('a'). Keys without a code point of their own live above the Unicode
// range, see the const() sections below.
type KeyCode uint32

// Modifiers are the modifier keys held down together with a named key.
//
// The bit values match the xterm modifier parameter minus one, so
// "\x1b[1;5A" (Ctrl+Up, parameter 5) has Modifiers 4 == ModCtrl.
type Modifiers uint8

const (
	ModShift Modifiers = 1 << iota
	ModMeta
	ModCtrl
)

const (
	KeyNone KeyCode = 0

	KeyBackspace KeyCode = 0x08
	KeyTab       KeyCode = 0x09
	KeyEnter     KeyCode = 0x0d
	KeyEscape    KeyCode = 0x1b
	KeySpace     KeyCode = 0x20
)

// Named keys. Modifier bits go into bits 16-18 of these, see WithModifiers().
const (
	KeyCtrlSpace KeyCode = keyNamedBase + iota

	KeyInsert
	KeyDelete

	KeyHome
	KeyEnd
	KeyPgUp
	KeyPgDown

	KeyUp
	KeyDown
	KeyRight
	KeyLeft

	KeyBacktab
	KeyCenter

	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12
)

// Meta (Alt) plus a printable ASCII character, "\x1bO" for example. Use
// MetaKey() to get the other ones.
const (
	KeyMetaO                  KeyCode = keyMetaBase + 'O'
	KeyMetaLeftSquareBracket  KeyCode = keyMetaBase + '['
	KeyMetaRightSquareBracket KeyCode = keyMetaBase + ']'
)

// Sentinels. None of these is ever put in the event queue.
const (
	// The buffered bytes are the beginning of some longer sequence, wait for
	// more input or for the keypress timeout.
	KeyIncomplete KeyCode = keySentinelBase + iota

	// "\x1b[M" followed by three bytes
	KeyX11Mouse

	// SGR mouse reporting, "\x1b[<0;12;34M" for example
	KeyExtendedMouse

	// urxvt mouse reporting, "\x1b[32;12;34M" for example
	KeyUrxvtMouse

	// Nothing matched, try the next decoding strategy
	keyNotSet KeyCode = 0xffffffff
)

const (
	keyNamedBase    KeyCode = 0x01000000
	keyMetaBase     KeyCode = 0x02000000
	keySentinelBase KeyCode = 0x03000000

	modifierShift = 16
	modifierMask  = KeyCode(ModShift|ModMeta|ModCtrl) << modifierShift
)

// MetaKey returns the key code for Meta (Alt) plus the given printable ASCII
// character.
func MetaKey(char byte) KeyCode {
	return keyMetaBase + KeyCode(char)
}

// WithModifiers returns the named key with the given modifiers added. Key codes
// that aren't named keys are returned unchanged.
func (key KeyCode) WithModifiers(mods Modifiers) KeyCode {
	if !key.isNamed() {
		return key
	}

	return key | KeyCode(mods)<<modifierShift
}

// Modifiers returns the modifiers held together with a named key.
func (key KeyCode) Modifiers() Modifiers {
	if !key.isNamed() {
		return 0
	}

	return Modifiers((key & modifierMask) >> modifierShift)
}

// Unmodified returns the named key without any modifiers.
func (key KeyCode) Unmodified() KeyCode {
	if !key.isNamed() {
		return key
	}

	return key &^ modifierMask
}

func (key KeyCode) isNamed() bool {
	return key >= keyNamedBase && key < keyMetaBase
}

// IsRune returns true if this key code is a Unicode code point.
func (key KeyCode) IsRune() bool {
	return key > KeyNone && key <= 0x10ffff
}

// IsMouse returns true for the mouse protocol key codes.
func (key KeyCode) IsMouse() bool {
	return key == KeyX11Mouse || key == KeyExtendedMouse || key == KeyUrxvtMouse
}

// How many screen cells will this key's rune cover? Most runes cover one, but
// some like '午' will cover two. Keys that aren't runes cover zero cells.
func (key KeyCode) Width() int {
	if !key.IsRune() {
		return 0
	}

	return uniseg.StringWidth(string(rune(key)))
}

func (key KeyCode) String() string {
	return keyName(key)
}
