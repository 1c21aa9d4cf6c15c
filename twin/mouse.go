package twin

import (
	"fmt"
	"regexp"
	"strconv"
)

type MouseButton uint8

const (
	MouseNoButton MouseButton = iota
	MouseLeft
	MouseMiddle
	MouseRight
	MouseWheelUp
	MouseWheelDown
	MouseWheelLeft
	MouseWheelRight
)

type MouseAction uint8

const (
	MousePress MouseAction = iota
	MouseRelease
	MouseMove
)

// MouseState is what a mouse report says happened. Column and Row are
// 1-based.
type MouseState struct {
	Button    MouseButton
	Action    MouseAction
	Column    int
	Row       int
	Modifiers Modifiers
}

// Button code bits shared by all three protocols
const (
	mouseShiftBit  = 0x04
	mouseMetaBit   = 0x08
	mouseCtrlBit   = 0x10
	mouseMotionBit = 0x20
	mouseWheelBit  = 0x40
	mouseLowBits   = 0x03

	// X11 and urxvt add this to the button code, X11 also to the coordinates
	mouseOffset = 32
)

var sgrMouseRegex = regexp.MustCompile("^\x1b\\[<([0-9]+);([0-9]+);([0-9]+)([Mm])$")
var urxvtMouseRegex = regexp.MustCompile("^\x1b\\[([0-9]+);([0-9]+);([0-9]+)M$")

var mouseButtonNames = map[MouseButton]string{
	MouseNoButton:   "No button",
	MouseLeft:       "Left",
	MouseMiddle:     "Middle",
	MouseRight:      "Right",
	MouseWheelUp:    "Wheel up",
	MouseWheelDown:  "Wheel down",
	MouseWheelLeft:  "Wheel left",
	MouseWheelRight: "Wheel right",
}

var mouseActionNames = map[MouseAction]string{
	MousePress:   "press",
	MouseRelease: "release",
	MouseMove:    "move",
}

func (button MouseButton) String() string {
	return mouseButtonNames[button]
}

func (action MouseAction) String() string {
	return mouseActionNames[action]
}

// Renders as "Ctrl+Left press at 12,34"
func (mouse MouseState) String() string {
	return fmt.Sprintf("%s%s %s at %d,%d",
		modifiersPrefix(mouse.Modifiers), mouse.Button, mouse.Action, mouse.Column, mouse.Row)
}

// ParseMouseReport decodes a raw report, including the leading ESC, in the
// protocol given by key: KeyX11Mouse, KeyExtendedMouse or KeyUrxvtMouse.
func ParseMouseReport(key KeyCode, report []byte) (MouseState, error) {
	switch key {
	case KeyX11Mouse:
		return parseX11MouseReport(report)
	case KeyExtendedMouse:
		return parseSgrMouseReport(report)
	case KeyUrxvtMouse:
		return parseUrxvtMouseReport(report)
	}

	return MouseState{}, fmt.Errorf("not a mouse protocol: %s", key)
}

// "\x1b[M" followed by button, column and row, each a byte offset by 32
func parseX11MouseReport(report []byte) (MouseState, error) {
	if len(report) != 6 || string(report[:3]) != "\x1b[M" {
		return MouseState{}, fmt.Errorf("malformed X11 mouse report: %q", report)
	}

	column := int(report[4]) - mouseOffset
	row := int(report[5]) - mouseOffset
	if report[3] < mouseOffset || column < 1 || row < 1 {
		return MouseState{}, fmt.Errorf("X11 mouse report out of range: %q", report)
	}

	mouse := decodeMouseButton(int(report[3]) - mouseOffset)
	mouse.Column = column
	mouse.Row = row
	return mouse, nil
}

// "\x1b[<0;12;34M" on press, lowercase 'm' on release
func parseSgrMouseReport(report []byte) (MouseState, error) {
	match := sgrMouseRegex.FindSubmatch(report)
	if match == nil {
		return MouseState{}, fmt.Errorf("malformed SGR mouse report: %q", report)
	}

	code, column, row, err := parseMouseNumbers(match[1], match[2], match[3])
	if err != nil {
		return MouseState{}, fmt.Errorf("bad SGR mouse report %q: %w", report, err)
	}

	mouse := decodeMouseButton(code)
	if string(match[4]) == "m" {
		mouse.Action = MouseRelease
	}
	mouse.Column = column
	mouse.Row = row
	return mouse, nil
}

// "\x1b[32;12;34M", with the button code offset by 32
func parseUrxvtMouseReport(report []byte) (MouseState, error) {
	match := urxvtMouseRegex.FindSubmatch(report)
	if match == nil {
		return MouseState{}, fmt.Errorf("malformed urxvt mouse report: %q", report)
	}

	code, column, row, err := parseMouseNumbers(match[1], match[2], match[3])
	if err != nil {
		return MouseState{}, fmt.Errorf("bad urxvt mouse report %q: %w", report, err)
	}
	if code < mouseOffset {
		return MouseState{}, fmt.Errorf("urxvt mouse button code out of range: %q", report)
	}

	mouse := decodeMouseButton(code - mouseOffset)
	mouse.Column = column
	mouse.Row = row
	return mouse, nil
}

func parseMouseNumbers(codeText, columnText, rowText []byte) (code, column, row int, err error) {
	code, err = strconv.Atoi(string(codeText))
	if err != nil {
		return
	}
	column, err = strconv.Atoi(string(columnText))
	if err != nil {
		return
	}
	row, err = strconv.Atoi(string(rowText))
	if err != nil {
		return
	}

	if column < 1 || row < 1 {
		err = fmt.Errorf("position %d,%d is outside of the screen", column, row)
	}
	return
}

// Button codes without any offset. The low bits are the button, 3 means
// "released" in the X11 and urxvt protocols.
func decodeMouseButton(code int) MouseState {
	mouse := MouseState{}

	if code&mouseShiftBit != 0 {
		mouse.Modifiers |= ModShift
	}
	if code&mouseMetaBit != 0 {
		mouse.Modifiers |= ModMeta
	}
	if code&mouseCtrlBit != 0 {
		mouse.Modifiers |= ModCtrl
	}

	low := code & mouseLowBits
	if code&mouseWheelBit != 0 {
		mouse.Button = MouseWheelUp + MouseButton(low)
		mouse.Action = MousePress
		return mouse
	}

	if low == mouseLowBits {
		mouse.Button = MouseNoButton
		mouse.Action = MouseRelease
	} else {
		mouse.Button = MouseLeft + MouseButton(low)
		mouse.Action = MousePress
	}

	if code&mouseMotionBit != 0 {
		mouse.Action = MouseMove
	}

	return mouse
}
