package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rivo/uniseg"
	log "github.com/sirupsen/logrus"
	"golang.org/x/term"

	"github.com/walles/twinkeys/internal"
	"github.com/walles/twinkeys/internal/capture"
	"github.com/walles/twinkeys/twin"
)

var versionString = "Should be set when building, please use build.sh to build"

func main() {
	defer func() {
		err := recover()
		if err == nil {
			return
		}

		printProblemsHeader()
		panic(err)
	}()

	flagSet := newFlagSet(os.Stderr)
	flagSet.Usage = func() {
		printUsage(os.Stdout, flagSet, false)
	}
	options, err := optionsFromArgs(flagSet, os.Args[1:], os.Getenv("TWINKEYS"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "ERROR: Command line parsing failed:", err.Error())
		fmt.Fprintln(os.Stderr)
		printUsage(os.Stderr, flagSet, true)

		os.Exit(1)
	}

	if options.printVersion {
		fmt.Println(versionString)
		os.Exit(0)
	}

	log.SetLevel(log.InfoLevel)
	if options.trace {
		log.SetLevel(log.TraceLevel)
	} else if options.debug {
		log.SetLevel(log.DebugLevel)
	}

	log.SetFormatter(&log.TextFormatter{
		TimestampFormat: time.RFC3339Nano,
	})

	if options.listKeys {
		err = listKeys(os.Stdout, term.IsTerminal(int(os.Stdout.Fd())))
		if err != nil {
			fmt.Fprintln(os.Stderr, "ERROR:", err)
			os.Exit(1)
		}
		return
	}

	if options.replay != "" {
		err = replay(options.replay, options.config, os.Stdout)
		if err != nil {
			fmt.Fprintln(os.Stderr, "ERROR:", err)
			os.Exit(1)
		}
		return
	}

	var loglines internal.LogWriter
	err = showKeys(options.config, options.record, &loglines)
	if loglines.Lines() > 0 {
		printProblemsHeader()
		fmt.Fprintf(os.Stderr, "%s", loglines.String())
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "ERROR:", err)
		os.Exit(1)
	}
	if loglines.Lines() > 0 {
		os.Exit(1)
	}
}

// Renders one line describing a key, with the key code column aligned no
// matter how wide the key name is.
func formatKey(key twin.KeyCode) string {
	label := key.String()
	if label == "" && key.IsRune() {
		label = string(rune(key))
	}

	const nameColumnWidth = 20
	padding := nameColumnWidth - uniseg.StringWidth(label)
	if padding < 1 {
		padding = 1
	}

	if key.IsRune() {
		return fmt.Sprintf("%s%sU+%04X", label, strings.Repeat(" ", padding), uint32(key))
	}
	return fmt.Sprintf("%s%s0x%08x", label, strings.Repeat(" ", padding), uint32(key))
}

// Like "SGR mouse: Left press at 12,34 "\x1b[<0;12;34M""
func formatMouse(key twin.KeyCode, mouse twin.MouseState, report []byte) string {
	return fmt.Sprintf("%s: %s %q", key, mouse, report)
}

// Decodes a recorded capture and prints one line per key
func replay(filename string, config twin.Config, output io.Writer) error {
	reader, err := capture.Open(filename)
	if err != nil {
		return err
	}
	defer reader.Close()

	input := capture.NewReplayInput(reader)
	keyboard, err := twin.NewKeyboard(input, config)
	if err != nil {
		return err
	}
	keyboard.SetHandlers(twin.Handlers{
		KeyPressed: func() {
			fmt.Fprintln(output, formatKey(keyboard.Key())) //nolint:errcheck
		},
		MouseTracking: func() {
			fmt.Fprintln(output, formatMouse(keyboard.Key(), keyboard.Mouse(), keyboard.MouseReport())) //nolint:errcheck
		},
	})

	for !capture.ReplayDone(input) || keyboard.HasUnprocessedInput() {
		keyboard.ProcessInput()
	}

	return nil
}

// Shows the keys the user presses until they press 'q' or Ctrl+C
func showKeys(config twin.Config, recordFilename string, loglines *internal.LogWriter) error {
	ttyIn := os.Stdin
	fd := int(ttyIn.Fd())
	if !term.IsTerminal(fd) {
		return fmt.Errorf("stdin (fd=%d) must be a terminal, try --replay for recorded input", fd)
	}

	input, err := twin.NewTtyInput(ttyIn)
	if err != nil {
		return err
	}

	if recordFilename != "" {
		recording, err := capture.Create(recordFilename)
		if err != nil {
			return err
		}
		defer func() {
			err := recording.Close()
			if err != nil {
				log.Warn("Failed to finish recording ", recordFilename, ": ", err)
			}
		}()
		input = capture.NewRecordingInput(input, recording)
	}

	keyboard, err := twin.NewKeyboard(input, config)
	if err != nil {
		return err
	}
	if os.Getenv("TERM") == "linux" {
		keyboard.SetKeyCorrection(twin.LinuxConsoleCorrection(fd))
	}

	oldTerminalState, err := term.MakeRaw(fd)
	if err != nil {
		return err
	}

	// Log into a buffer while the terminal is raw, otherwise the output will
	// have broken linefeeds and be hard to follow
	log.SetOutput(loglines)
	defer func() {
		err := term.Restore(fd, oldTerminalState)
		log.SetOutput(os.Stderr)
		if err != nil {
			log.Warn("Problem restoring TTY state: ", err)
		}
	}()

	write := func(text string) {
		// Raw mode, so no automatic carriage returns
		_, err := os.Stdout.WriteString(text + "\r\n")
		if err != nil {
			panic(err)
		}
	}

	if config.MouseTracking {
		write("\x1b[?1006;1000h")
		defer write("\x1b[?1006;1000l")
	}

	write("Press keys to see their names, 'q' or Ctrl+C to quit.")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events := make(chan twin.Event, 80)
	done := make(chan struct{})
	go func() {
		defer close(done)
		keyboard.Run(ctx, events)
	}()

	for running := true; running; {
		switch event := (<-events).(type) {
		case twin.EventKeyPress:
			write(formatKey(event.Key()))
			if event.Key() == 'q' || event.Key() == twin.KeyCode(0x03) {
				running = false
			}
		case twin.EventMouse:
			write(formatMouse(event.Key(), event.Mouse(), event.Report()))
		case twin.EventEscape:
			log.Debug("Lone ESC timed out")
		}
	}

	// The keyboard toggles blocking mode on the tty, so it must be done
	// before we restore the terminal
	cancel()
	<-done

	return nil
}
