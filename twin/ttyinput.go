package twin

import "time"

// TtyInput is where the Keyboard gets its bytes from, normally the terminal.
type TtyInput interface {
	// Read at most len(p) bytes. The Keyboard always asks for exactly one.
	//
	// In non-blocking mode, no input available is reported as (0, nil).
	Read(p []byte) (int, error)

	// Toggle non-blocking mode. The Keyboard turns it on around each Read()
	// and off again afterwards.
	SetNonBlocking(enable bool) error

	// Wait until input is available or the timeout expires, whichever comes
	// first. A zero timeout just checks. Never consumes anything.
	WaitReadable(timeout time.Duration) (bool, error)
}
