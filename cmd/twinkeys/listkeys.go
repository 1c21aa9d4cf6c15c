package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"

	"github.com/walles/twinkeys/twin"
)

// Renders the known key sequences as INI, one section per sequence length
func renderKeyTable(keyMap *twin.KeyMap) string {
	var builder strings.Builder

	length := 0
	for _, sequence := range keyMap.Known() {
		if len(sequence.Sequence) != length {
			if length > 0 {
				builder.WriteString("\n")
			}
			length = len(sequence.Sequence)
			fmt.Fprintf(&builder, "[length %d]\n", length)
		}

		fmt.Fprintf(&builder, "%s = %s\n",
			sequence.Key,
			strings.ReplaceAll(fmt.Sprintf("%q", sequence.Sequence), `\x1b`, "ESC"))
	}

	return builder.String()
}

func listKeys(output io.Writer, colored bool) error {
	table := renderKeyTable(twin.NewKeyMap())
	if !colored {
		_, err := io.WriteString(output, table)
		return err
	}

	return quick.Highlight(output, table, "ini", "terminal16m", "native")
}
