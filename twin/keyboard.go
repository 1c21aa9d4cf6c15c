package twin

import (
	"fmt"
	"io"
	"time"

	log "github.com/sirupsen/logrus"
)

// Handlers are notified about keyboard activity. Query Keyboard.Key() from
// inside a handler to find out which key it was about. Nil handlers are
// skipped.
type Handlers struct {
	KeyPressed  func()
	KeyReleased func()

	// A lone ESC byte timed out and was queued as KeyEscape. KeyPressed
	// will fire for the same ESC later, act on only one of them.
	EscapePressed func()

	// A mouse report was decoded, see Keyboard.Mouse() and
	// Keyboard.MouseReport(). Reports that can't be parsed are dropped
	// without notification.
	MouseTracking func()
}

// Keyboard turns the bytes coming from a terminal into key codes.
//
// A Keyboard is not safe for concurrent use. Have one goroutine own it, see
// Run() for a way to do that.
type Keyboard struct {
	input  TtyInput
	config Config
	keyMap *KeyMap

	handlers      Handlers
	isQuit        func() bool
	keyCorrection func(KeyCode) KeyCode

	buffer ringBuffer
	queue  keyQueue

	// The latest decoder result. Kept apart from key so that handlers never
	// see a half done decode.
	fkey KeyCode

	// The key currently being delivered to the handlers
	key KeyCode

	mouseReport []byte
	mouse       MouseState

	hasPendingInput bool
	timeKeypressed  time.Time
	now             func() time.Time

	// Set once a read has returned io.EOF, a hung up tty for example
	inputClosed bool
	sleep       func(time.Duration)

	readCharacter [1]byte
}

// NewKeyboard creates a Keyboard reading from input. Zero durations in config
// get their default values.
func NewKeyboard(input TtyInput, config Config) (*Keyboard, error) {
	if input == nil {
		return nil, fmt.Errorf("keyboard needs an input")
	}

	config, err := config.withDefaults()
	if err != nil {
		return nil, fmt.Errorf("invalid keyboard config: %w", err)
	}

	return &Keyboard{
		input:  input,
		config: config,
		keyMap: NewKeyMap(),
		now:    time.Now,
		sleep:  time.Sleep,

		// The zero time is long ago, so we start out timed out with nothing in
		// flight
		timeKeypressed: time.Time{},
	}, nil
}

// KeyMap returns the key map used for decoding, install terminal capability
// sequences on it with SetCapabilities().
func (keyboard *Keyboard) KeyMap() *KeyMap {
	return keyboard.keyMap
}

func (keyboard *Keyboard) SetHandlers(handlers Handlers) {
	keyboard.handlers = handlers
}

// SetQuitCondition installs a check that stops event delivery as soon as it
// returns true. It is checked after each press and release notification.
func (keyboard *Keyboard) SetQuitCondition(isQuit func() bool) {
	keyboard.isQuit = isQuit
}

// SetKeyCorrection installs a hook that may rewrite each decoded key, see
// CorrectModifiers().
func (keyboard *Keyboard) SetKeyCorrection(correction func(KeyCode) KeyCode) {
	keyboard.keyCorrection = correction
}

func (keyboard *Keyboard) SetUTF8(enable bool) {
	keyboard.config.UTF8 = enable
}

func (keyboard *Keyboard) SetMouseTracking(enable bool) {
	keyboard.config.MouseTracking = enable
}

func (keyboard *Keyboard) Config() Config {
	return keyboard.config
}

// Key returns the key being delivered right now. Valid inside handlers.
func (keyboard *Keyboard) Key() KeyCode {
	return keyboard.key
}

// MouseReport returns the raw bytes of the latest mouse report, including the
// leading ESC.
func (keyboard *Keyboard) MouseReport() []byte {
	return keyboard.mouseReport
}

// Mouse returns the button, action and position of the latest mouse report.
func (keyboard *Keyboard) Mouse() MouseState {
	return keyboard.mouse
}

// KeyName returns a human readable name for key, or "" if there is none.
func (keyboard *Keyboard) KeyName(key KeyCode) string {
	return keyboard.keyMap.Name(key)
}

// HasUnprocessedInput returns true if there are bytes buffered that haven't
// been decoded yet.
func (keyboard *Keyboard) HasUnprocessedInput() bool {
	return keyboard.buffer.hasData()
}

// HasPendingInput returns true if IsInputAvailable() found input that hasn't
// been read yet.
func (keyboard *Keyboard) HasPendingInput() bool {
	return keyboard.hasPendingInput
}

// IsInputAvailable checks whether there is input to read, without reading it.
//
// If nothing is available right away, this waits up to blockingTime. But if
// a sequence is in flight, we only wait for ShortPollInterval so it gets
// resolved quickly.
func (keyboard *Keyboard) IsInputAvailable(blockingTime time.Duration) bool {
	if keyboard.hasPendingInput {
		return true
	}

	if keyboard.inputClosed {
		// A hung up tty polls as readable forever without ever having
		// anything to read, so don't trust the poll.
		keyboard.sleep(blockingTime)
		return false
	}

	if blockingTime > 0 && keyboard.waitReadable(0) {
		keyboard.hasPendingInput = true
		return true
	}

	timeout := keyboard.config.ShortPollInterval
	if keyboard.isKeypressTimeout() {
		timeout = blockingTime
	}

	if keyboard.waitReadable(timeout) {
		keyboard.hasPendingInput = true
	}

	return keyboard.hasPendingInput
}

func (keyboard *Keyboard) waitReadable(timeout time.Duration) bool {
	ready, err := keyboard.input.WaitReadable(timeout)
	if err != nil {
		log.Debug("Waiting for tty input failed: ", err)
		return false
	}
	return ready
}

// FetchKeyCode reads and decodes available input, unless the event queue is
// already full.
func (keyboard *Keyboard) FetchKeyCode() {
	if keyboard.queue.isFull() {
		log.Trace("Key queue full, not reading any input")
		return
	}

	keyboard.parseKeyBuffer()
}

// ClearKeyBuffer drops all buffered input bytes.
func (keyboard *Keyboard) ClearKeyBuffer() {
	keyboard.fkey = KeyNone
	keyboard.key = KeyNone
	keyboard.buffer.clear()
}

// ClearKeyBufferOnTimeout drops all buffered input bytes if they have been
// waiting for longer than the key timeout.
func (keyboard *Keyboard) ClearKeyBufferOnTimeout() {
	if keyboard.buffer.hasData() && keyboard.isKeypressTimeout() {
		log.Debug("Dropping ", keyboard.buffer.size(), " timed out input bytes")
		keyboard.ClearKeyBuffer()
	}
}

// EscapeKeyHandling resolves buffered sequences that can only be told apart
// by waiting: a lone ESC, and ESC followed by 'O', '[' or ']'.
func (keyboard *Keyboard) EscapeKeyHandling() {
	if keyboard.queue.isFull() {
		// Leave the bytes buffered until there is room for the key
		return
	}

	if keyboard.buffer.size() == 1 &&
		keyboard.buffer.front() == escByte &&
		keyboard.isKeypressTimeout() {
		keyboard.buffer.clear()
		keyboard.queue.push(KeyEscape)
		keyboard.escapeKeyPressed()
	}

	keyboard.substringKeyHandling()
}

// ESC O, ESC [ and ESC ] (Meta-O, Meta-[ and Meta-]) start lots of other
// sequences, so they are only reported after a timeout.
func (keyboard *Keyboard) substringKeyHandling() {
	if keyboard.queue.isFull() ||
		keyboard.buffer.size() != 2 ||
		keyboard.buffer.front() != escByte ||
		!isSubstringMarker(keyboard.buffer.at(1)) ||
		!keyboard.isKeypressTimeout() {
		return
	}

	keyboard.fkey = MetaKey(keyboard.buffer.at(1))
	keyboard.queue.push(keyboard.fkey)
	keyboard.buffer.clear()
	keyboard.fkey = KeyNone
}

// ResolveBufferOnTimeout decodes bytes left over from an unfinished sequence
// once the key timeout has passed. Unknown sequences come out as their
// individual bytes.
func (keyboard *Keyboard) ResolveBufferOnTimeout() {
	if !keyboard.buffer.hasData() || !keyboard.isKeypressTimeout() {
		return
	}

	log.Trace("Resolving ", keyboard.buffer.size(), " timed out input bytes")
	keyboard.decodeBuffered()
	keyboard.fkey = KeyNone
}

// ProcessQueuedInput delivers queued keys to the handlers, press then release
// for each one. Stops as soon as the quit condition becomes true.
func (keyboard *Keyboard) ProcessQueuedInput() {
	for !keyboard.queue.isEmpty() {
		keyboard.key = keyboard.queue.pop()

		if keyboard.key > KeyNone {
			keyboard.keyPressed()

			if keyboard.quitRequested() {
				return
			}

			keyboard.keyReleased()

			if keyboard.quitRequested() {
				return
			}

			keyboard.key = KeyNone
		}
	}
}

// ProcessInput runs one round of the input loop: wait for input, decode it,
// resolve anything that timed out and deliver the results.
//
// This blocks for at most PollInterval.
func (keyboard *Keyboard) ProcessInput() {
	if keyboard.IsInputAvailable(keyboard.config.PollInterval) {
		keyboard.FetchKeyCode()
	}

	keyboard.EscapeKeyHandling()
	keyboard.ResolveBufferOnTimeout()
	keyboard.ProcessQueuedInput()
}

func (keyboard *Keyboard) isKeypressTimeout() bool {
	return keyboard.now().Sub(keyboard.timeKeypressed) > keyboard.config.KeyTimeout
}

func (keyboard *Keyboard) quitRequested() bool {
	return keyboard.isQuit != nil && keyboard.isQuit()
}

// Reads at most one byte, in non-blocking mode so that we never hang here
func (keyboard *Keyboard) readKey() int {
	err := keyboard.input.SetNonBlocking(true)
	if err != nil {
		log.Debug("Failed to enable non-blocking tty input: ", err)
	}

	count, err := keyboard.input.Read(keyboard.readCharacter[:])
	if err == io.EOF && !keyboard.inputClosed {
		log.Debug("Tty input closed")
		keyboard.inputClosed = true
	} else if err != nil && err != io.EOF {
		log.Debug("Reading tty input failed: ", err)
	}

	err = keyboard.input.SetNonBlocking(false)
	if err != nil {
		log.Debug("Failed to restore blocking tty input: ", err)
	}

	return count
}

func (keyboard *Keyboard) keyPressed() {
	if keyboard.handlers.KeyPressed != nil {
		keyboard.handlers.KeyPressed()
	}
}

func (keyboard *Keyboard) keyReleased() {
	if keyboard.handlers.KeyReleased != nil {
		keyboard.handlers.KeyReleased()
	}
}

func (keyboard *Keyboard) escapeKeyPressed() {
	if keyboard.handlers.EscapePressed != nil {
		keyboard.handlers.EscapePressed()
	}
}

func (keyboard *Keyboard) mouseTracking() {
	if keyboard.handlers.MouseTracking != nil {
		keyboard.handlers.MouseTracking()
	}
}
