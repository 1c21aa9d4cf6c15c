package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
)

func printCommandline(output io.Writer) {
	fmt.Fprintln(output, "Commandline: twinkeys", strings.Join(os.Args[1:], " "))   //nolint:errcheck
	fmt.Fprintf(output, "Environment: TWINKEYS=\"%v\"\n", os.Getenv("TWINKEYS")) //nolint:errcheck
	fmt.Fprintln(output)                                                          //nolint:errcheck
}

func printUsage(output io.Writer, flagSet *flag.FlagSet, withCommandline bool) {
	// This controls where PrintDefaults() prints, see below
	flagSet.SetOutput(output)

	if withCommandline {
		printCommandline(output)
	}

	_, _ = fmt.Fprintln(output, "Usage:")
	_, _ = fmt.Fprintln(output, "  twinkeys [options]")
	_, _ = fmt.Fprintln(output, "  twinkeys --replay <capture>")
	_, _ = fmt.Fprintln(output, "  twinkeys --list-keys")
	_, _ = fmt.Fprintln(output)
	_, _ = fmt.Fprintln(output, "Shows the name of each key you press, press 'q' or Ctrl+C to quit.")
	_, _ = fmt.Fprintln(output)
	_, _ = fmt.Fprintln(output, "Captures written by --record can be compressed by naming them *.gz, *.zst")
	_, _ = fmt.Fprintln(output, "or *.xz. Compressed captures are detected automatically on --replay.")
	_, _ = fmt.Fprintln(output)
	_, _ = fmt.Fprintln(output, "Environment:")
	twinkeysEnv := os.Getenv("TWINKEYS")
	if len(twinkeysEnv) == 0 {
		_, _ = fmt.Fprintln(output, "  Additional options are read from the TWINKEYS environment variable if set.")
		_, _ = fmt.Fprintln(output, "  But currently, the TWINKEYS environment variable is not set.")
	} else {
		_, _ = fmt.Fprintln(output, "  Additional options are read from the TWINKEYS environment variable.")
		_, _ = fmt.Fprintf(output, "  Current setting: TWINKEYS=\"%s\"\n", twinkeysEnv)
	}
	_, _ = fmt.Fprintln(output)
	_, _ = fmt.Fprintln(output, "Options:")

	flagSet.PrintDefaults()
}

// printProblemsHeader prints bug reporting information to stderr
func printProblemsHeader() {
	fmt.Fprintln(os.Stderr, "Please post the following report at <https://github.com/walles/twinkeys/issues>.")
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "Version:", versionString)
	fmt.Fprintln(os.Stderr, "LANG   :", os.Getenv("LANG"))
	fmt.Fprintln(os.Stderr, "TERM   :", os.Getenv("TERM"))
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "GOOS    :", runtime.GOOS)
	fmt.Fprintln(os.Stderr, "GOARCH  :", runtime.GOARCH)
	fmt.Fprintln(os.Stderr, "Compiler:", runtime.Compiler)
	fmt.Fprintln(os.Stderr, "NumCPU  :", runtime.NumCPU())

	fmt.Fprintln(os.Stderr)
}
