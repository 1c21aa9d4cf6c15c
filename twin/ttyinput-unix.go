//go:build !windows
// +build !windows

package twin

import (
	"fmt"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

type unixTtyInput struct {
	fd          int
	statusFlags int
	nonBlocking bool
}

// NewTtyInput wraps a terminal file descriptor for reading key presses.
//
// Fails if the file status flags can't be read, in which case we wouldn't be
// able to switch between blocking and non-blocking reads.
func NewTtyInput(file *os.File) (TtyInput, error) {
	fd := int(file.Fd())
	flags, err := unix.FcntlInt(uintptr(fd), unix.F_GETFL, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to get status flags for %s (fd=%d): %w", file.Name(), fd, err)
	}

	return &unixTtyInput{
		fd:          fd,
		statusFlags: flags,
		nonBlocking: flags&unix.O_NONBLOCK != 0,
	}, nil
}

func (input *unixTtyInput) SetNonBlocking(enable bool) error {
	if enable == input.nonBlocking {
		return nil
	}

	flags := input.statusFlags
	if enable {
		flags |= unix.O_NONBLOCK
	} else {
		flags &^= unix.O_NONBLOCK
	}

	_, err := unix.FcntlInt(uintptr(input.fd), unix.F_SETFL, flags)
	if err != nil {
		return err
	}

	input.statusFlags = flags
	input.nonBlocking = enable
	return nil
}

func (input *unixTtyInput) Read(p []byte) (int, error) {
	for {
		n, err := unix.Read(input.fd, p)
		if err == unix.EINTR {
			// Not really a problem, we can get this on window resizes for
			// example, just try again.
			continue
		}

		if err == unix.EAGAIN {
			// Non-blocking and nothing to read
			return 0, nil
		}

		if n < 0 {
			n = 0
		}
		return n, err
	}
}

func (input *unixTtyInput) WaitReadable(timeout time.Duration) (bool, error) {
	readFds := unix.FdSet{}
	readFds.Set(input.fd)

	timeval := unix.NsecToTimeval(timeout.Nanoseconds())
	n, err := unix.Select(input.fd+1, &readFds, nil, nil, &timeval)
	if err == unix.EINTR {
		// Interrupted by a signal, report nothing and let the caller poll again
		log.Trace("Select interrupted while waiting for tty input")
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return n > 0 && readFds.IsSet(input.fd), nil
}
