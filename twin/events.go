package twin

type Event interface {
	// This interface will be blank until further notice
}

type EventKeyPress struct {
	key KeyCode
}

type EventKeyRelease struct {
	key KeyCode
}

// A lone ESC timed out. Always followed by an EventKeyPress / EventKeyRelease
// pair for KeyEscape.
//
// Handle either this or the KeyEscape key press, not both, or you will act on
// the same Escape twice. Key presses are what most consumers want, this is
// for telling a timed out ESC apart from the ESC of an escape sequence.
type EventEscape struct {
	// This struct intentionally left blank
}

type EventMouse struct {
	key    KeyCode
	mouse  MouseState
	report []byte
}

func (eventKeyPress EventKeyPress) Key() KeyCode {
	return eventKeyPress.key
}

func (eventKeyRelease EventKeyRelease) Key() KeyCode {
	return eventKeyRelease.key
}

// Which mouse protocol this report came in: KeyX11Mouse, KeyExtendedMouse or
// KeyUrxvtMouse
func (eventMouse EventMouse) Key() KeyCode {
	return eventMouse.key
}

// Button, action and position
func (eventMouse EventMouse) Mouse() MouseState {
	return eventMouse.mouse
}

// The raw report, including the leading ESC
func (eventMouse EventMouse) Report() []byte {
	return eventMouse.report
}
