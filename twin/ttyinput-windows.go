//go:build windows
// +build windows

package twin

import (
	"fmt"
	"os"
)

// NewTtyInput is not available on Windows for now, contributions welcome, see
// ttyinput-unix.go for inspiration.
func NewTtyInput(file *os.File) (TtyInput, error) {
	return nil, fmt.Errorf("reading key presses from %s is not supported on Windows", file.Name())
}
