package twin

import (
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	log "github.com/sirupsen/logrus"
	"gotest.tools/v3/assert"
)

func init() {
	// Trace logs clutter the test output
	log.SetLevel(log.InfoLevel)
}

type fakeClock struct {
	now time.Time
}

func (clock *fakeClock) Now() time.Time {
	return clock.now
}

// Moves the clock past the default key timeout
func (clock *fakeClock) timeOut() {
	clock.now = clock.now.Add(DefaultConfig().KeyTimeout + time.Millisecond)
}

type testKeyboard struct {
	*Keyboard
	tty   *FakeTty
	clock *fakeClock

	pressed  []KeyCode
	released []KeyCode
	escapes  int
	mice     []KeyCode
}

func newTestKeyboard(t *testing.T, config Config) *testKeyboard {
	tty := NewFakeTty()
	keyboard, err := NewKeyboard(tty, config)
	assert.NilError(t, err)

	clock := &fakeClock{now: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)}
	keyboard.now = clock.Now

	testKeyboard := &testKeyboard{
		Keyboard: keyboard,
		tty:      tty,
		clock:    clock,
	}
	keyboard.SetHandlers(Handlers{
		KeyPressed: func() {
			testKeyboard.pressed = append(testKeyboard.pressed, keyboard.Key())
		},
		KeyReleased: func() {
			testKeyboard.released = append(testKeyboard.released, keyboard.Key())
		},
		EscapePressed: func() {
			testKeyboard.escapes++
		},
		MouseTracking: func() {
			testKeyboard.mice = append(testKeyboard.mice, keyboard.Key())
		},
	})

	return testKeyboard
}

// Types the input, decodes it and returns the keys that were pressed
func (keyboard *testKeyboard) typeAndDecode(input string) []KeyCode {
	keyboard.tty.Type(input)
	keyboard.FetchKeyCode()
	return keyboard.drain()
}

func (keyboard *testKeyboard) drain() []KeyCode {
	keyboard.pressed = nil
	keyboard.released = nil
	keyboard.ProcessQueuedInput()
	return keyboard.pressed
}

func assertKeys(t *testing.T, actual []KeyCode, expected ...KeyCode) {
	t.Helper()
	if diff := cmp.Diff(expected, actual); diff != "" {
		t.Errorf("Unexpected keys (-want +got):\n%s", diff)
	}
}

func TestPrintableAscii(t *testing.T) {
	keyboard := newTestKeyboard(t, DefaultConfig())

	var input strings.Builder
	var expected []KeyCode
	for char := byte(' '); char < 127; char++ {
		input.WriteByte(char)
		expected = append(expected, KeyCode(char))
	}

	assertKeys(t, keyboard.typeAndDecode(input.String()), expected...)
	assertKeys(t, keyboard.released, expected...)
	assert.Assert(t, !keyboard.HasUnprocessedInput())
}

func TestOneByteReadPerCall(t *testing.T) {
	keyboard := newTestKeyboard(t, DefaultConfig())

	assertKeys(t, keyboard.typeAndDecode("abc"), 'a', 'b', 'c')

	// Three bytes plus the final empty read, each with non-blocking mode
	// toggled on and off again
	assert.Equal(t, keyboard.tty.NonBlockingToggles(), 8)
}

func TestLoneEscape(t *testing.T) {
	keyboard := newTestKeyboard(t, DefaultConfig())

	assertKeys(t, keyboard.typeAndDecode("\x1b"))
	assert.Assert(t, keyboard.HasUnprocessedInput())

	// Not timed out yet, keep waiting
	keyboard.EscapeKeyHandling()
	assertKeys(t, keyboard.drain())
	assert.Equal(t, keyboard.escapes, 0)

	keyboard.clock.timeOut()
	keyboard.EscapeKeyHandling()
	assertKeys(t, keyboard.drain(), KeyEscape)
	assert.Equal(t, keyboard.escapes, 1)
	assert.Assert(t, !keyboard.HasUnprocessedInput())

	// Exactly once
	keyboard.EscapeKeyHandling()
	assertKeys(t, keyboard.drain())
	assert.Equal(t, keyboard.escapes, 1)
}

func TestMetaO(t *testing.T) {
	keyboard := newTestKeyboard(t, DefaultConfig())

	// Could be the start of "\x1bOA" for example
	assertKeys(t, keyboard.typeAndDecode("\x1bO"))
	keyboard.EscapeKeyHandling()
	assertKeys(t, keyboard.drain())
	assert.Equal(t, keyboard.buffer.size(), 2)

	keyboard.clock.timeOut()
	keyboard.EscapeKeyHandling()
	assertKeys(t, keyboard.drain(), KeyMetaO)
	assert.Assert(t, !keyboard.HasUnprocessedInput())
	assert.Equal(t, keyboard.escapes, 0)
}

func TestMetaSquareBrackets(t *testing.T) {
	keyboard := newTestKeyboard(t, DefaultConfig())

	assertKeys(t, keyboard.typeAndDecode("\x1b["))
	keyboard.clock.timeOut()
	keyboard.EscapeKeyHandling()
	assertKeys(t, keyboard.drain(), KeyMetaLeftSquareBracket)

	assertKeys(t, keyboard.typeAndDecode("\x1b]"))
	keyboard.clock.timeOut()
	keyboard.EscapeKeyHandling()
	assertKeys(t, keyboard.drain(), KeyMetaRightSquareBracket)
}

func TestMetaLetter(t *testing.T) {
	keyboard := newTestKeyboard(t, DefaultConfig())

	// Not a prefix of anything, no need to wait
	assertKeys(t, keyboard.typeAndDecode("\x1bx"), MetaKey('x'))
}

func TestEscapeSequences(t *testing.T) {
	keyboard := newTestKeyboard(t, DefaultConfig())

	assertKeys(t, keyboard.typeAndDecode("\x1b[A"), KeyUp)
	assertKeys(t, keyboard.typeAndDecode("\x1bOB"), KeyDown)
	assertKeys(t, keyboard.typeAndDecode("\x1b[1;5C"), KeyRight.WithModifiers(ModCtrl))
	assertKeys(t, keyboard.typeAndDecode("\x1b[1;3D"), KeyLeft.WithModifiers(ModMeta))
	assertKeys(t, keyboard.typeAndDecode("\x1bOP"), KeyF1)
	assertKeys(t, keyboard.typeAndDecode("\x1b[15;2~"), KeyF5.WithModifiers(ModShift))
	assertKeys(t, keyboard.typeAndDecode("\x1b[3~"), KeyDelete)
	assertKeys(t, keyboard.typeAndDecode("\x1b[Z"), KeyBacktab)
	assertKeys(t, keyboard.typeAndDecode("\x1b\x1b[A"), KeyUp.WithModifiers(ModMeta))

	// Back to back
	assertKeys(t, keyboard.typeAndDecode("\x1b[Ax\x1b[6~"), KeyUp, 'x', KeyPgDown)
}

func TestUnknownSequenceResolvedOnTimeout(t *testing.T) {
	keyboard := newTestKeyboard(t, DefaultConfig())

	assertKeys(t, keyboard.typeAndDecode("\x1b[1;"))
	assert.Equal(t, keyboard.buffer.size(), 4)

	keyboard.ResolveBufferOnTimeout()
	assertKeys(t, keyboard.drain())

	keyboard.clock.timeOut()
	keyboard.ResolveBufferOnTimeout()
	assertKeys(t, keyboard.drain(), KeyEscape, '[', '1', ';')
	assert.Assert(t, !keyboard.HasUnprocessedInput())
}

func TestClearKeyBufferOnTimeout(t *testing.T) {
	keyboard := newTestKeyboard(t, DefaultConfig())

	assertKeys(t, keyboard.typeAndDecode("\x1b[1;"))

	keyboard.ClearKeyBufferOnTimeout()
	assert.Assert(t, keyboard.HasUnprocessedInput())

	keyboard.clock.timeOut()
	keyboard.ClearKeyBufferOnTimeout()
	assert.Assert(t, !keyboard.HasUnprocessedInput())
	assertKeys(t, keyboard.drain())
}

func TestSpecialSingleBytes(t *testing.T) {
	keyboard := newTestKeyboard(t, DefaultConfig())

	assertKeys(t, keyboard.typeAndDecode("\x00"), KeyCtrlSpace)
	assertKeys(t, keyboard.typeAndDecode("\x7f"), KeyBackspace)
	assertKeys(t, keyboard.typeAndDecode("\r\t\x01"), KeyEnter, KeyTab, KeyCode(1))
}

func TestUtf8(t *testing.T) {
	keyboard := newTestKeyboard(t, DefaultConfig())

	assertKeys(t, keyboard.typeAndDecode("é"), 'é')
	assertKeys(t, keyboard.typeAndDecode("午"), '午')
	assertKeys(t, keyboard.typeAndDecode("a😀b"), 'a', KeyCode(0x1f600), 'b')
}

func TestUtf8Incomplete(t *testing.T) {
	keyboard := newTestKeyboard(t, DefaultConfig())

	// The first three bytes of "😀"
	assertKeys(t, keyboard.typeAndDecode("\xf0\x9f\x98"))
	assert.Equal(t, keyboard.buffer.size(), 3)

	assertKeys(t, keyboard.typeAndDecode("\x80"), KeyCode(0x1f600))
	assert.Assert(t, !keyboard.HasUnprocessedInput())
}

func TestUtf8IncompleteTimedOut(t *testing.T) {
	keyboard := newTestKeyboard(t, DefaultConfig())

	// The first two bytes of "午" (U+5348)
	assertKeys(t, keyboard.typeAndDecode("\xe5\x8d"))

	keyboard.clock.timeOut()
	keyboard.ResolveBufferOnTimeout()
	assertKeys(t, keyboard.drain(), KeyCode(0x5<<6|0x0d))
	assert.Assert(t, !keyboard.HasUnprocessedInput())
}

func TestUtf8Disabled(t *testing.T) {
	config := DefaultConfig()
	config.UTF8 = false
	keyboard := newTestKeyboard(t, config)

	assertKeys(t, keyboard.typeAndDecode("é"), KeyCode(0xc3), KeyCode(0xa9))
}

func TestX11Mouse(t *testing.T) {
	config := DefaultConfig()
	config.MouseTracking = true
	keyboard := newTestKeyboard(t, config)

	report := "\x1b[M !\""
	assertKeys(t, keyboard.typeAndDecode(report))
	assertKeys(t, keyboard.mice, KeyX11Mouse)
	assert.Equal(t, string(keyboard.MouseReport()), report)
	assert.Equal(t, keyboard.Mouse(), MouseState{Button: MouseLeft, Action: MousePress, Column: 1, Row: 2})
	assert.Assert(t, !keyboard.HasUnprocessedInput())

	// Input after the report is decoded as usual
	assertKeys(t, keyboard.typeAndDecode("x"), 'x')
}

func TestX11MouseWithoutMouseTracking(t *testing.T) {
	keyboard := newTestKeyboard(t, DefaultConfig())

	assertKeys(t, keyboard.typeAndDecode("\x1b[M !\""))
	keyboard.clock.timeOut()
	keyboard.ResolveBufferOnTimeout()

	assertKeys(t, keyboard.drain(), KeyEscape, '[', 'M', ' ', '!', '"')
	assertKeys(t, keyboard.mice)
}

func TestSgrMouse(t *testing.T) {
	config := DefaultConfig()
	config.MouseTracking = true
	keyboard := newTestKeyboard(t, config)

	assertKeys(t, keyboard.typeAndDecode("\x1b[<65;127;41M"))
	assert.Equal(t, keyboard.Mouse(), MouseState{Button: MouseWheelDown, Action: MousePress, Column: 127, Row: 41})
	assertKeys(t, keyboard.typeAndDecode("\x1b[<0;1;2m"))
	assertKeys(t, keyboard.mice, KeyExtendedMouse, KeyExtendedMouse)
	assert.Equal(t, string(keyboard.MouseReport()), "\x1b[<0;1;2m")
	assert.Equal(t, keyboard.Mouse(), MouseState{Button: MouseLeft, Action: MouseRelease, Column: 1, Row: 2})
	assert.Assert(t, !keyboard.HasUnprocessedInput())
}

func TestUrxvtMouse(t *testing.T) {
	config := DefaultConfig()
	config.MouseTracking = true
	keyboard := newTestKeyboard(t, config)

	assertKeys(t, keyboard.typeAndDecode("\x1b[32;12;34M"))
	assertKeys(t, keyboard.mice, KeyUrxvtMouse)
	assert.Equal(t, string(keyboard.MouseReport()), "\x1b[32;12;34M")
	assert.Equal(t, keyboard.Mouse(), MouseState{Button: MouseLeft, Action: MousePress, Column: 12, Row: 34})
}

func TestMalformedMouseReport(t *testing.T) {
	config := DefaultConfig()
	config.MouseTracking = true
	keyboard := newTestKeyboard(t, config)

	// Shaped like an urxvt report, but not one
	assertKeys(t, keyboard.typeAndDecode("\x1b[12abcdeM"))
	assertKeys(t, keyboard.mice)
	assert.Assert(t, !keyboard.HasUnprocessedInput())

	assertKeys(t, keyboard.typeAndDecode("x"), 'x')
}

func TestMouseBeforeCapabilities(t *testing.T) {
	config := DefaultConfig()
	config.MouseTracking = true
	keyboard := newTestKeyboard(t, config)
	keyboard.KeyMap().SetCapabilities(map[KeyCode]string{
		KeyF12: "\x1b[M !\"",
	})

	assertKeys(t, keyboard.typeAndDecode("\x1b[M !\""))
	assertKeys(t, keyboard.mice, KeyX11Mouse)
}

func TestCapabilities(t *testing.T) {
	keyboard := newTestKeyboard(t, DefaultConfig())

	// Unknown without capabilities
	assertKeys(t, keyboard.typeAndDecode("\x1b[Q"))
	keyboard.ClearKeyBuffer()

	keyboard.KeyMap().SetCapabilities(map[KeyCode]string{
		KeyF1:  "\x1b[Q",
		KeyF12: "\x1b[A", // Capabilities win over known sequences
		KeyF2:  "",       // Unsupported
	})
	assertKeys(t, keyboard.typeAndDecode("\x1b[Q"), KeyF1)
	assertKeys(t, keyboard.typeAndDecode("\x1b[A"), KeyF12)
	assert.Equal(t, len(keyboard.KeyMap().Capabilities()), 2)

	keyboard.KeyMap().SetCapabilities(nil)
	assert.Assert(t, keyboard.KeyMap().Capabilities() == nil)
	assertKeys(t, keyboard.typeAndDecode("\x1b[A"), KeyUp)
}

func TestRingBufferOverflowDuringDecode(t *testing.T) {
	keyboard := newTestKeyboard(t, DefaultConfig())

	// An ESC followed by digits never completes, so everything stays buffered
	// until the buffer fills up
	input := "\x1b[" + strings.Repeat("1", ringBufferSize)
	assertKeys(t, keyboard.typeAndDecode(input))
	assert.Equal(t, keyboard.buffer.size(), ringBufferSize)
	assert.Equal(t, keyboard.tty.Unread(), 0)
	assert.Assert(t, keyboard.buffer.hasPrefix("\x1b[111"))
}

func TestQueueBackpressure(t *testing.T) {
	keyboard := newTestKeyboard(t, DefaultConfig())

	keyboard.tty.Type(strings.Repeat("a", maxQueueSize+6))
	keyboard.FetchKeyCode()
	assert.Equal(t, keyboard.queue.size(), maxQueueSize)
	assert.Equal(t, keyboard.tty.Unread(), 6)

	// Full queue, nothing more gets read
	keyboard.FetchKeyCode()
	assert.Equal(t, keyboard.tty.Unread(), 6)

	assert.Equal(t, len(keyboard.drain()), maxQueueSize)

	keyboard.FetchKeyCode()
	assert.Equal(t, keyboard.tty.Unread(), 0)
	assert.Equal(t, len(keyboard.drain()), 6)
}

func TestQuitBetweenPressAndRelease(t *testing.T) {
	keyboard := newTestKeyboard(t, DefaultConfig())

	quit := false
	keyboard.SetQuitCondition(func() bool {
		return quit
	})
	keyboard.SetHandlers(Handlers{
		KeyPressed: func() {
			keyboard.pressed = append(keyboard.pressed, keyboard.Key())
			quit = true
		},
		KeyReleased: func() {
			keyboard.released = append(keyboard.released, keyboard.Key())
		},
	})

	keyboard.tty.Type("ab")
	keyboard.FetchKeyCode()
	keyboard.ProcessQueuedInput()

	assertKeys(t, keyboard.pressed, 'a')
	assertKeys(t, keyboard.released)
}

func TestKeyCorrection(t *testing.T) {
	keyboard := newTestKeyboard(t, DefaultConfig())
	keyboard.SetKeyCorrection(func(key KeyCode) KeyCode {
		return CorrectModifiers(key, ModifierState{Shift: true})
	})

	assertKeys(t, keyboard.typeAndDecode("\x1b[Aa"), KeyUp.WithModifiers(ModShift), 'a')
}

func TestIsInputAvailable(t *testing.T) {
	keyboard := newTestKeyboard(t, DefaultConfig())
	long := DefaultConfig().PollInterval
	short := DefaultConfig().ShortPollInterval

	// Nothing in flight, nothing to read: quick check, then the long wait
	assert.Assert(t, !keyboard.IsInputAvailable(long))
	assert.DeepEqual(t, keyboard.tty.Waits(), []time.Duration{0, long})

	keyboard.tty.Type("\x1b")
	assert.Assert(t, keyboard.IsInputAvailable(long))
	assert.Assert(t, keyboard.HasPendingInput())

	// Already flagged, no need to wait again
	assert.Assert(t, keyboard.IsInputAvailable(long))
	assert.Equal(t, len(keyboard.tty.Waits()), 3)

	// Reading clears the flag, and the ESC is now in flight
	keyboard.FetchKeyCode()
	assert.Assert(t, !keyboard.HasPendingInput())
	assert.Assert(t, !keyboard.IsInputAvailable(long))
	assert.DeepEqual(t, keyboard.tty.Waits()[3:], []time.Duration{0, short})

	// Timed out, back to long waits
	keyboard.clock.timeOut()
	assert.Assert(t, !keyboard.IsInputAvailable(long))
	assert.DeepEqual(t, keyboard.tty.Waits()[5:], []time.Duration{0, long})
}

func TestProcessInput(t *testing.T) {
	keyboard := newTestKeyboard(t, DefaultConfig())

	keyboard.tty.Type("q\x1b")
	keyboard.ProcessInput()
	assertKeys(t, keyboard.pressed, 'q')
	assertKeys(t, keyboard.released, 'q')

	keyboard.pressed = nil
	keyboard.released = nil
	keyboard.clock.timeOut()
	keyboard.ProcessInput()
	assertKeys(t, keyboard.pressed, KeyEscape)
	assert.Equal(t, keyboard.escapes, 1)
}

func TestNewKeyboardErrors(t *testing.T) {
	_, err := NewKeyboard(nil, DefaultConfig())
	assert.ErrorContains(t, err, "input")

	config := DefaultConfig()
	config.KeyTimeout = -time.Second
	_, err = NewKeyboard(NewFakeTty(), config)
	assert.ErrorContains(t, err, "key timeout")
}

func TestNewKeyboardDefaults(t *testing.T) {
	keyboard, err := NewKeyboard(NewFakeTty(), Config{UTF8: true})
	assert.NilError(t, err)
	assert.Equal(t, keyboard.Config(), DefaultConfig())
}

// Polls readable forever but has nothing to read, like a hung up tty
type hungUpTty struct {
	waits int
}

func (tty *hungUpTty) Read([]byte) (int, error) {
	return 0, io.EOF
}

func (tty *hungUpTty) SetNonBlocking(bool) error {
	return nil
}

func (tty *hungUpTty) WaitReadable(time.Duration) (bool, error) {
	tty.waits++
	return true, nil
}

func TestHungUpInput(t *testing.T) {
	tty := &hungUpTty{}
	keyboard, err := NewKeyboard(tty, DefaultConfig())
	assert.NilError(t, err)

	var sleeps []time.Duration
	keyboard.sleep = func(duration time.Duration) {
		sleeps = append(sleeps, duration)
	}

	for i := 0; i < 1000; i++ {
		keyboard.ProcessInput()
	}

	assert.Assert(t, !keyboard.HasPendingInput())
	assert.Equal(t, tty.waits, 1)

	// Every round after the EOF waits for the full poll interval
	assert.Equal(t, len(sleeps), 999)
	assert.Equal(t, sleeps[0], DefaultConfig().PollInterval)
}

func TestEscapeWithFullQueue(t *testing.T) {
	keyboard := newTestKeyboard(t, DefaultConfig())
	keyboard.tty.Type(strings.Repeat("a", maxQueueSize))
	keyboard.FetchKeyCode()
	assert.Equal(t, keyboard.queue.size(), maxQueueSize)
	keyboard.buffer.push(escByte)

	keyboard.clock.timeOut()
	keyboard.EscapeKeyHandling()
	assert.Equal(t, keyboard.escapes, 0)
	assert.Equal(t, keyboard.buffer.size(), 1)

	assert.Equal(t, len(keyboard.drain()), maxQueueSize)
	keyboard.EscapeKeyHandling()
	assertKeys(t, keyboard.drain(), KeyEscape)
	assert.Equal(t, keyboard.escapes, 1)
}

func TestMetaOWithFullQueue(t *testing.T) {
	keyboard := newTestKeyboard(t, DefaultConfig())
	keyboard.tty.Type(strings.Repeat("a", maxQueueSize))
	keyboard.FetchKeyCode()
	assert.Equal(t, keyboard.queue.size(), maxQueueSize)
	keyboard.buffer.push(escByte)
	keyboard.buffer.push('O')

	keyboard.clock.timeOut()
	keyboard.EscapeKeyHandling()
	assert.Equal(t, keyboard.buffer.size(), 2)

	assert.Equal(t, len(keyboard.drain()), maxQueueSize)
	keyboard.EscapeKeyHandling()
	assertKeys(t, keyboard.drain(), KeyMetaO)
}
