package twin

import (
	"io"
	"time"
)

// Used for testing.
//
// Type() some bytes, then have a Keyboard read them.
type FakeTty struct {
	pending []byte

	nonBlocking     bool
	nonBlockingSets int
	waits           []time.Duration

	// If set, Read() returns this once there is nothing left to read
	ReadError error
}

func NewFakeTty() *FakeTty {
	return &FakeTty{}
}

// Type queues up bytes for reading, as if they were typed on a keyboard
func (tty *FakeTty) Type(input string) {
	tty.pending = append(tty.pending, input...)
}

// Unread returns how many typed bytes nobody has read yet
func (tty *FakeTty) Unread() int {
	return len(tty.pending)
}

// NonBlockingToggles returns how many times non-blocking mode was changed
func (tty *FakeTty) NonBlockingToggles() int {
	return tty.nonBlockingSets
}

// Waits returns the timeouts of all WaitReadable() calls so far
func (tty *FakeTty) Waits() []time.Duration {
	return tty.waits
}

func (tty *FakeTty) Read(p []byte) (int, error) {
	if len(tty.pending) == 0 {
		if tty.ReadError != nil {
			return 0, tty.ReadError
		}
		if tty.nonBlocking {
			return 0, nil
		}

		// A real tty would block forever here
		return 0, io.EOF
	}

	n := copy(p, tty.pending)
	tty.pending = tty.pending[n:]
	return n, nil
}

func (tty *FakeTty) SetNonBlocking(enable bool) error {
	if enable != tty.nonBlocking {
		tty.nonBlockingSets++
	}
	tty.nonBlocking = enable
	return nil
}

func (tty *FakeTty) WaitReadable(timeout time.Duration) (bool, error) {
	tty.waits = append(tty.waits, timeout)

	// This method intentionally doesn't sleep
	return len(tty.pending) > 0, nil
}
