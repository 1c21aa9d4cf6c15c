package internal

import (
	"strings"
	"sync"
)

// LogWriter collects log output while the terminal is in raw mode. Print
// String() after restoring the terminal.
type LogWriter struct {
	lock   sync.Mutex
	buffer strings.Builder
	lines  int
}

func (lw *LogWriter) Write(p []byte) (n int, err error) {
	lw.lock.Lock()
	defer lw.lock.Unlock()

	lw.lines += strings.Count(string(p), "\n")
	return lw.buffer.Write(p)
}

func (lw *LogWriter) String() string {
	lw.lock.Lock()
	defer lw.lock.Unlock()

	return lw.buffer.String()
}

// Lines returns how many complete lines have been logged
func (lw *LogWriter) Lines() int {
	lw.lock.Lock()
	defer lw.lock.Unlock()

	return lw.lines
}
