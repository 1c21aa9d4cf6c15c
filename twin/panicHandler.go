package twin

import (
	log "github.com/sirupsen/logrus"
)

// Logs a panic recovered from the goroutine running the Keyboard, together
// with what we were decoding at the time.
func (keyboard *Keyboard) panicHandler(goroutineName string, recoverResult any, stackTrace []byte) {
	if recoverResult == nil {
		return
	}

	log.WithFields(log.Fields{
		"panic":      recoverResult,
		"key":        keyboard.key.String(),
		"buffered":   keyboard.buffer.bytes(keyboard.buffer.size()),
		"queued":     keyboard.queue.size(),
		"stackTrace": string(stackTrace),
	}).Error("Goroutine panicked: " + goroutineName)
}
