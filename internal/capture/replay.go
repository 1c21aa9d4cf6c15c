package capture

import (
	"io"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/walles/twinkeys/twin"
)

type replayInput struct {
	reader    io.Reader
	lookahead []byte
	done      bool
}

// NewReplayInput feeds a recorded capture to a twin.Keyboard. Input is always
// available until the recording ends, so nothing in it ever times out.
func NewReplayInput(reader io.Reader) twin.TtyInput {
	return &replayInput{reader: reader}
}

// Make sure we have a byte to hand out next, if there is one
func (input *replayInput) fill() {
	if len(input.lookahead) > 0 || input.done {
		return
	}

	buffer := make([]byte, 1)
	for {
		n, err := input.reader.Read(buffer)
		if n > 0 {
			input.lookahead = buffer[:n]
			return
		}
		if err != nil {
			if err != io.EOF {
				log.Warn("Reading capture failed: ", err)
			}
			input.done = true
			return
		}
	}
}

func (input *replayInput) Read(p []byte) (int, error) {
	input.fill()
	if len(input.lookahead) == 0 {
		return 0, io.EOF
	}

	n := copy(p, input.lookahead)
	input.lookahead = input.lookahead[n:]
	return n, nil
}

func (input *replayInput) SetNonBlocking(bool) error {
	// This method intentionally left blank
	return nil
}

func (input *replayInput) WaitReadable(time.Duration) (bool, error) {
	input.fill()
	return len(input.lookahead) > 0, nil
}

// Done returns true once the whole recording has been read
func (input *replayInput) Done() bool {
	input.fill()
	return len(input.lookahead) == 0
}

// ReplayDone returns true if input is a replay that has been read to the end.
func ReplayDone(input twin.TtyInput) bool {
	replay, ok := input.(*replayInput)
	return ok && replay.Done()
}
