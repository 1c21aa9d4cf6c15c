package twin

import (
	log "github.com/sirupsen/logrus"
)

const escByte = 0x1b

// Reads input one byte at a time and decodes as we go, until there is nothing
// more to read or the queue is full.
func (keyboard *Keyboard) parseKeyBuffer() {
	keyboard.timeKeypressed = keyboard.now()

	// Whatever the read returns, the input the poll saw has been looked at
	keyboard.hasPendingInput = false

	for keyboard.readKey() > 0 {
		if keyboard.buffer.isFull() {
			log.Trace("Input buffer full, dropping byte ", keyboard.readCharacter[0])
		}
		keyboard.buffer.push(keyboard.readCharacter[0])

		keyboard.decodeBuffered()
		keyboard.fkey = KeyNone

		if keyboard.queue.isFull() {
			break
		}
	}
}

// Decodes as many keys as possible from the buffered bytes
func (keyboard *Keyboard) decodeBuffered() {
	for keyboard.buffer.hasData() &&
		keyboard.fkey != KeyIncomplete &&
		!keyboard.queue.isFull() {
		keyboard.fkey = keyboard.parseKeyString()
		keyboard.fkey = keyboard.correctKey(keyboard.fkey)

		if keyboard.fkey.IsMouse() {
			keyboard.key = keyboard.fkey
			if keyboard.parseMouseReport() {
				keyboard.mouseTracking()
			}
			break
		}

		if keyboard.fkey != KeyIncomplete {
			keyboard.queue.push(keyboard.fkey)
		}
	}
}

// Decodes at most one key from the start of the buffer, and consumes the
// bytes it was made from.
//
// Returns KeyIncomplete if we need more bytes, nothing is consumed then.
func (keyboard *Keyboard) parseKeyString() KeyCode {
	if keyboard.buffer.front() == escByte {
		key := keyboard.getMouseProtocolKey()
		if key != keyNotSet {
			return key
		}

		key = keyboard.getTermcapKey()
		if key != keyNotSet {
			return key
		}

		key = keyboard.getKnownKey()
		if key != keyNotSet {
			return key
		}

		if !keyboard.isKeypressTimeout() {
			return KeyIncomplete
		}

		// Timed out, the ESC is a key of its own
	}

	return keyboard.getSingleKey()
}

// Recognizes mouse reports by their shape. These must be checked before the
// key tables since they can start like ordinary sequences.
func (keyboard *Keyboard) getMouseProtocolKey() KeyCode {
	if !keyboard.config.MouseTracking {
		return keyNotSet
	}

	buffer := &keyboard.buffer
	length := buffer.size()
	if length < 3 || buffer.at(1) != '[' {
		return keyNotSet
	}

	// X11 mouse tracking: "\x1b[M" plus button, column and row bytes
	if length >= 6 && buffer.at(2) == 'M' {
		keyboard.consumeMouseReport(6)
		return KeyX11Mouse
	}

	last := buffer.at(length - 1)

	// SGR mouse tracking: "\x1b[<0;12;34M", or lowercase 'm' on release
	if buffer.at(2) == '<' && length >= 9 && (last == 'M' || last == 'm') {
		keyboard.consumeMouseReport(length)
		return KeyExtendedMouse
	}

	// urxvt mouse tracking: "\x1b[32;12;34M"
	if length >= 9 &&
		buffer.at(2) >= '1' && buffer.at(2) <= '9' &&
		buffer.at(3) >= '0' && buffer.at(3) <= '9' &&
		last == 'M' {
		keyboard.consumeMouseReport(length)
		return KeyUrxvtMouse
	}

	return keyNotSet
}

func (keyboard *Keyboard) consumeMouseReport(length int) {
	keyboard.mouseReport = keyboard.buffer.bytes(length)
	keyboard.buffer.pop(length)
}

// Returns false if the report in keyboard.mouseReport doesn't make sense, it
// has been consumed anyway then.
func (keyboard *Keyboard) parseMouseReport() bool {
	mouse, err := ParseMouseReport(keyboard.fkey, keyboard.mouseReport)
	if err != nil {
		log.Debug("Ignoring mouse report: ", err)
		keyboard.mouse = MouseState{}
		return false
	}

	keyboard.mouse = mouse
	return true
}

// Looks for the whole buffer in the terminal's own key sequences
func (keyboard *Keyboard) getTermcapKey() KeyCode {
	if keyboard.keyMap.capabilities == nil {
		return keyNotSet
	}

	found, ok := findSequence(keyboard.keyMap.capabilities, &keyboard.buffer)
	if !ok {
		return keyNotSet
	}

	keyboard.buffer.pop(len(found.Sequence))
	return found.Key
}

// Looks for the whole buffer in the built in key sequences
func (keyboard *Keyboard) getKnownKey() KeyCode {
	found, ok := findSequence(keyboard.keyMap.known, &keyboard.buffer)
	if !ok {
		return keyNotSet
	}

	if len(found.Sequence) == 2 &&
		isSubstringMarker(keyboard.buffer.at(1)) &&
		!keyboard.isKeypressTimeout() {
		// This could be the start of something longer
		return KeyIncomplete
	}

	keyboard.buffer.pop(len(found.Sequence))
	return found.Key
}

// ESC followed by one of these is both a key (Meta-O, Meta-[, Meta-]) and the
// start of many other sequences
func isSubstringMarker(b byte) bool {
	return b == 'O' || b == '[' || b == ']'
}

// Decodes one character, UTF-8 or a single byte
func (keyboard *Keyboard) getSingleKey() KeyCode {
	length := 1
	firstChar := keyboard.buffer.front()
	var key KeyCode

	if keyboard.config.UTF8 && firstChar&0xc0 == 0xc0 {
		switch {
		case firstChar&0xe0 == 0xc0:
			length = 2
		case firstChar&0xf0 == 0xe0:
			length = 3
		case firstChar&0xf8 == 0xf0:
			length = 4
		}

		if keyboard.buffer.size() < length && !keyboard.isKeypressTimeout() {
			return KeyIncomplete
		}

		key = keyboard.utf8Decode(length)
	} else {
		key = KeyCode(firstChar)
	}

	keyboard.buffer.pop(length)

	if key == 0 {
		// Ctrl+Space or Ctrl+@
		return KeyCtrlSpace
	}

	if key == 127 {
		return KeyBackspace
	}

	return key
}

// Puts together a code point from the first length bytes of the buffer. If the
// buffer is shorter than that, we use what we have.
func (keyboard *Keyboard) utf8Decode(length int) KeyCode {
	available := length
	if available > keyboard.buffer.size() {
		available = keyboard.buffer.size()
	}

	var ucs KeyCode
	for i := 0; i < available; i++ {
		char := keyboard.buffer.at(i)

		switch {
		case char&0xc0 == 0x80:
			// Byte 2..4 = 10xxxxxx
			ucs = ucs<<6 | KeyCode(char&0x3f)
		case char < 0x80:
			// 0xxxxxxx, plain ASCII
			ucs = KeyCode(char)
		case length == 2:
			// 110xxxxx
			ucs = KeyCode(char & 0x1f)
		case length == 3:
			// 1110xxxx
			ucs = KeyCode(char & 0x0f)
		case length == 4:
			// 11110xxx
			ucs = KeyCode(char & 0x07)
		default:
			// Not a valid lead byte, report the byte as it is
			log.Debug("Invalid UTF-8 lead byte: ", char)
			ucs = KeyCode(char)
		}
	}

	return ucs
}

func (keyboard *Keyboard) correctKey(key KeyCode) KeyCode {
	if keyboard.keyCorrection == nil {
		return key
	}

	if key == KeyIncomplete || key.IsMouse() {
		return key
	}

	return keyboard.keyCorrection(key)
}
