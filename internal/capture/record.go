package capture

import (
	"io"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/walles/twinkeys/twin"
)

type recordingInput struct {
	base      twin.TtyInput
	recording io.Writer
	failed    bool
}

// NewRecordingInput passes everything through from base, and writes a copy
// of each byte read to recording.
func NewRecordingInput(base twin.TtyInput, recording io.Writer) twin.TtyInput {
	return &recordingInput{base: base, recording: recording}
}

func (input *recordingInput) Read(p []byte) (int, error) {
	n, err := input.base.Read(p)
	if n > 0 && !input.failed {
		_, writeErr := input.recording.Write(p[:n])
		if writeErr != nil {
			// Keep going without recording, the user still wants their keys
			log.Warn("Recording input failed, not recording any more: ", writeErr)
			input.failed = true
		}
	}
	return n, err
}

func (input *recordingInput) SetNonBlocking(enable bool) error {
	return input.base.SetNonBlocking(enable)
}

func (input *recordingInput) WaitReadable(timeout time.Duration) (bool, error) {
	return input.base.WaitReadable(timeout)
}
