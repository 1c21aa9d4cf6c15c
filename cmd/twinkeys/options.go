package main

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/walles/twinkeys/twin"
)

type options struct {
	config twin.Config

	printVersion bool
	debug        bool
	trace        bool
	listKeys     bool
	replay       string
	record       string
}

// Parses command line flags, with any flags from the TWINKEYS environment
// variable going first.
func optionsFromArgs(flagSet *flag.FlagSet, args []string, twinkeysEnv string) (options, error) {
	defaults := twin.DefaultConfig()
	result := options{}

	flagSet.BoolVar(&result.printVersion, "version", false, "Prints the twinkeys version number")
	flagSet.BoolVar(&result.debug, "debug", false, "Print debug logs after exiting")
	flagSet.BoolVar(&result.trace, "trace", false, "Print trace logs after exiting")
	flagSet.BoolVar(&result.listKeys, "list-keys", false, "List all known key sequences and exit")
	flagSet.StringVar(&result.replay, "replay", "", "Decode a capture made with --record instead of the keyboard")
	flagSet.StringVar(&result.record, "record", "", "Record all keyboard input into this file")
	keyTimeout := flagSet.Duration("key-timeout", defaults.KeyTimeout, "Resolve incomplete key sequences after this long")
	poll := flagSet.Duration("poll", defaults.PollInterval, "How long to wait for input when idle")
	pollShort := flagSet.Duration("poll-short", defaults.ShortPollInterval, "How long to wait for input while a sequence is incomplete")
	noUtf8 := flagSet.Bool("no-utf8", false, "Decode every input byte as its own key")
	mouse := flagSet.Bool("mouse", false, "Enable mouse reporting")

	flags := args
	twinkeysEnv = strings.Trim(twinkeysEnv, " ")
	if len(twinkeysEnv) > 0 {
		flags = append(strings.Fields(twinkeysEnv), flags...)
	}

	err := flagSet.Parse(flags)
	if err != nil {
		return result, err
	}

	if len(flagSet.Args()) > 0 {
		return result, fmt.Errorf("unexpected arguments: %v", flagSet.Args())
	}

	for name, value := range map[string]bool{
		"key-timeout": *keyTimeout > 0,
		"poll":        *poll > 0,
		"poll-short":  *pollShort > 0,
	} {
		if !value {
			return result, fmt.Errorf("--%s must be positive", name)
		}
	}

	if result.replay != "" && result.record != "" {
		return result, fmt.Errorf("--replay and --record can't be combined")
	}

	result.config = twin.Config{
		KeyTimeout:        *keyTimeout,
		PollInterval:      *poll,
		ShortPollInterval: *pollShort,
		UTF8:              !*noUtf8,
		MouseTracking:     *mouse,
	}

	return result, nil
}

func newFlagSet(output io.Writer) *flag.FlagSet {
	flagSet := flag.NewFlagSet("", flag.ContinueOnError)
	flagSet.SetOutput(output)
	return flagSet
}
