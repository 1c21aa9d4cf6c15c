package twin

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"golang.org/x/exp/slices"
)

// KeySequence maps a literal byte sequence to the key it encodes.
type KeySequence struct {
	Key      KeyCode
	Sequence string
}

// KeyMap holds the sequences the decoder knows about. The known sequences are
// built in, the capability sequences come from the terminal and may be
// missing.
//
// Both tables are sorted by ascending sequence length. Matching requires the
// buffered bytes to be exactly as long as the sequence, so the order only
// keeps equal length entries together.
type KeyMap struct {
	known        []KeySequence
	capabilities []KeySequence
}

// Map incoming escape sequences to key codes, used by getKnownKey() in
// decoder.go.
//
// NOTE: Never put a single ESC character ('\x1b') in here. It would be consumed
// by itself rather than as part of the sequence it belongs to. Lone ESCs are
// resolved by the keypress timeout instead.
var knownSequences = []KeySequence{
	// Cursor keys, normal and application mode
	{KeyUp, "\x1b[A"},
	{KeyDown, "\x1b[B"},
	{KeyRight, "\x1b[C"},
	{KeyLeft, "\x1b[D"},
	{KeyUp, "\x1bOA"},
	{KeyDown, "\x1bOB"},
	{KeyRight, "\x1bOC"},
	{KeyLeft, "\x1bOD"},

	// rxvt
	{KeyUp.WithModifiers(ModShift), "\x1b[a"},
	{KeyDown.WithModifiers(ModShift), "\x1b[b"},
	{KeyRight.WithModifiers(ModShift), "\x1b[c"},
	{KeyLeft.WithModifiers(ModShift), "\x1b[d"},
	{KeyUp.WithModifiers(ModCtrl), "\x1bOa"},
	{KeyDown.WithModifiers(ModCtrl), "\x1bOb"},
	{KeyRight.WithModifiers(ModCtrl), "\x1bOc"},
	{KeyLeft.WithModifiers(ModCtrl), "\x1bOd"},

	// Alt + arrow keys on some macOS terminals
	{KeyUp.WithModifiers(ModMeta), "\x1b\x1b[A"},
	{KeyDown.WithModifiers(ModMeta), "\x1b\x1b[B"},
	{KeyRight.WithModifiers(ModMeta), "\x1b\x1b[C"},
	{KeyLeft.WithModifiers(ModMeta), "\x1b\x1b[D"},

	{KeyHome, "\x1b[H"},
	{KeyEnd, "\x1b[F"},
	{KeyHome, "\x1bOH"},
	{KeyEnd, "\x1bOF"},
	{KeyHome, "\x1b[1~"},
	{KeyInsert, "\x1b[2~"},
	{KeyDelete, "\x1b[3~"},
	{KeyEnd, "\x1b[4~"},
	{KeyPgUp, "\x1b[5~"},
	{KeyPgDown, "\x1b[6~"},
	{KeyHome, "\x1b[7~"},
	{KeyEnd, "\x1b[8~"},

	{KeyBacktab, "\x1b[Z"},
	{KeyCenter, "\x1b[E"},
	{KeyCenter, "\x1b[G"},
	{KeyCenter, "\x1bOE"},

	// Function keys, xterm
	{KeyF1, "\x1bOP"},
	{KeyF2, "\x1bOQ"},
	{KeyF3, "\x1bOR"},
	{KeyF4, "\x1bOS"},

	// Function keys, vt220 and rxvt
	{KeyF1, "\x1b[11~"},
	{KeyF2, "\x1b[12~"},
	{KeyF3, "\x1b[13~"},
	{KeyF4, "\x1b[14~"},
	{KeyF5, "\x1b[15~"},
	{KeyF6, "\x1b[17~"},
	{KeyF7, "\x1b[18~"},
	{KeyF8, "\x1b[19~"},
	{KeyF9, "\x1b[20~"},
	{KeyF10, "\x1b[21~"},
	{KeyF11, "\x1b[23~"},
	{KeyF12, "\x1b[24~"},

	// Function keys, Linux console
	{KeyF1, "\x1b[[A"},
	{KeyF2, "\x1b[[B"},
	{KeyF3, "\x1b[[C"},
	{KeyF4, "\x1b[[D"},
	{KeyF5, "\x1b[[E"},

	{MetaKey(0x7f), "\x1b\x7f"},
}

// xterm style modified keys ending in a letter: "\x1b[1;<m><letter>"
var modifiableLetterKeys = []struct {
	key    KeyCode
	letter byte
}{
	{KeyUp, 'A'},
	{KeyDown, 'B'},
	{KeyRight, 'C'},
	{KeyLeft, 'D'},
	{KeyHome, 'H'},
	{KeyEnd, 'F'},
	{KeyF1, 'P'},
	{KeyF2, 'Q'},
	{KeyF3, 'R'},
	{KeyF4, 'S'},
}

// xterm style modified keys ending in a tilde: "\x1b[<number>;<m>~"
var modifiableTildeKeys = []struct {
	key    KeyCode
	number int
}{
	{KeyInsert, 2},
	{KeyDelete, 3},
	{KeyPgUp, 5},
	{KeyPgDown, 6},
	{KeyF5, 15},
	{KeyF6, 17},
	{KeyF7, 18},
	{KeyF8, 19},
	{KeyF9, 20},
	{KeyF10, 21},
	{KeyF11, 23},
	{KeyF12, 24},
}

// NewKeyMap returns a key map with all known sequences and no capability
// sequences.
func NewKeyMap() *KeyMap {
	known := make([]KeySequence, 0, 512)
	known = append(known, knownSequences...)

	for mods := Modifiers(1); mods <= ModShift|ModMeta|ModCtrl; mods++ {
		parameter := int(mods) + 1
		for _, k := range modifiableLetterKeys {
			known = append(known, KeySequence{
				Key:      k.key.WithModifiers(mods),
				Sequence: fmt.Sprintf("\x1b[1;%d%c", parameter, k.letter),
			})
		}
		for _, k := range modifiableTildeKeys {
			known = append(known, KeySequence{
				Key:      k.key.WithModifiers(mods),
				Sequence: fmt.Sprintf("\x1b[%d;%d~", k.number, parameter),
			})
		}
	}

	// Meta + printable ASCII. This includes Meta-O, Meta-[ and Meta-], which
	// are also prefixes of longer sequences, see getKnownKey().
	for char := byte(0x20); char < 0x7f; char++ {
		known = append(known, KeySequence{
			Key:      MetaKey(char),
			Sequence: "\x1b" + string(char),
		})
	}

	sortByLength(known)

	return &KeyMap{known: known}
}

func sortByLength(sequences []KeySequence) {
	slices.SortStableFunc(sequences, func(a, b KeySequence) int {
		return len(a.Sequence) - len(b.Sequence)
	})
}

// SetCapabilities installs the sequences reported by the terminal. A nil map
// means the capabilities are unknown, and lookups against them will never
// match.
func (keyMap *KeyMap) SetCapabilities(capabilities map[KeyCode]string) {
	if capabilities == nil {
		keyMap.capabilities = nil
		return
	}

	sequences := make([]KeySequence, 0, len(capabilities))
	for key, sequence := range capabilities {
		if len(sequence) == 0 {
			// Capability not supported by this terminal
			continue
		}
		sequences = append(sequences, KeySequence{Key: key, Sequence: sequence})
	}

	// Map iteration order is random, get us something repeatable before
	// sorting by length
	slices.SortFunc(sequences, func(a, b KeySequence) int {
		if a.Sequence < b.Sequence {
			return -1
		}
		if a.Sequence > b.Sequence {
			return 1
		}
		return 0
	})
	sortByLength(sequences)

	log.Debug("Installed ", len(sequences), " terminal capability key sequences")
	keyMap.capabilities = sequences
}

// Capabilities returns a copy of the installed capability sequences, or nil if
// there are none.
func (keyMap *KeyMap) Capabilities() []KeySequence {
	if keyMap.capabilities == nil {
		return nil
	}
	return slices.Clone(keyMap.capabilities)
}

// Known returns a copy of the built in sequences, sorted by length.
func (keyMap *KeyMap) Known() []KeySequence {
	return slices.Clone(keyMap.known)
}

// Validate reports sequences listed more than once in the known table. That's
// a mistake in the table, the decoder would only ever find the first one.
func (keyMap *KeyMap) Validate() error {
	seen := make(map[string]KeyCode, len(keyMap.known))
	for _, sequence := range keyMap.known {
		if previous, found := seen[sequence.Sequence]; found {
			return fmt.Errorf("sequence %q maps to both %s and %s",
				sequence.Sequence, previous, sequence.Key)
		}
		seen[sequence.Sequence] = sequence.Key
	}

	return nil
}

// Name returns a human readable name for the key code, or "" if there is none.
func (keyMap *KeyMap) Name(key KeyCode) string {
	return keyName(key)
}

func findSequence(sequences []KeySequence, buffer *ringBuffer) (KeySequence, bool) {
	length := buffer.size()
	for _, sequence := range sequences {
		if len(sequence.Sequence) != length {
			continue
		}

		if buffer.hasPrefix(sequence.Sequence) {
			return sequence, true
		}
	}

	return KeySequence{}, false
}
