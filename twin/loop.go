package twin

import (
	"context"
	"runtime/debug"

	log "github.com/sirupsen/logrus"
)

// Run decodes input and posts the results on the events channel until ctx is
// cancelled. Any handlers and quit condition set earlier are replaced.
//
// The Keyboard belongs to Run() until it returns, don't call anything else on
// it in the meantime.
func (keyboard *Keyboard) Run(ctx context.Context, events chan<- Event) {
	defer func() {
		keyboard.panicHandler("Keyboard.Run()", recover(), debug.Stack())
	}()

	post := func(event Event) {
		select {
		case events <- event:
			// Delivered
		case <-ctx.Done():
			// Nobody is listening any more
		}
	}

	keyboard.SetHandlers(Handlers{
		KeyPressed: func() {
			post(EventKeyPress{key: keyboard.Key()})
		},
		KeyReleased: func() {
			post(EventKeyRelease{key: keyboard.Key()})
		},
		EscapePressed: func() {
			post(EventEscape{})
		},
		MouseTracking: func() {
			post(EventMouse{key: keyboard.Key(), mouse: keyboard.Mouse(), report: keyboard.MouseReport()})
		},
	})
	keyboard.SetQuitCondition(func() bool {
		return ctx.Err() != nil
	})

	log.Debug("Keyboard loop starting")
	for ctx.Err() == nil {
		keyboard.ProcessInput()
	}
	log.Debug("Keyboard loop done: ", ctx.Err())
}
