package charstream

import (
	"unicode/utf8"

	"github.com/noxbrowser/htmlcore/loc"
)

// Normalizer iterates the characters of a Source, collapsing CR and
// CRLF sequences into a single LF, and tracks the (line, column)
// location of the most recently returned character.
type Normalizer struct {
	src *Source
	loc loc.Location
	// afterNewline is true when the character most recently returned
	// was a newline, so the next character starts a new line.
	afterNewline bool
}

// NewNormalizer wraps src starting at the beginning of the input.
func NewNormalizer(src *Source) *Normalizer {
	return &Normalizer{src: src, loc: loc.Start}
}

// Next returns the next normalized character. ok is false at end of
// input; err is non-nil only for a fatal Source error (I/O failure or
// invalid UTF-8), never for a recoverable condition.
func (n *Normalizer) Next() (ch rune, ok bool, err error) {
	s, err := n.src.Fill()
	if err != nil {
		return 0, false, err
	}
	if s == "" {
		return 0, false, nil
	}

	r, size := utf8.DecodeRuneInString(s)
	switch r {
	case '\r':
		if size == len(s) {
			// The '\r' is the last buffered byte; we can't yet tell
			// whether it's followed by '\n'. Force another read.
			if err := n.src.Grow(); err != nil {
				return 0, false, err
			}
			s, err = n.src.Fill()
			if err != nil {
				return 0, false, err
			}
		}
		consumed := size
		if len(s) > size {
			if r2, size2 := utf8.DecodeRuneInString(s[size:]); r2 == '\n' {
				consumed += size2
			}
		}
		n.src.Consume(consumed)
		n.loc = n.loc.Advance(n.afterNewline)
		n.afterNewline = true
		return '\n', true, nil
	case '\n':
		n.src.Consume(size)
		n.loc = n.loc.Advance(n.afterNewline)
		n.afterNewline = true
		return '\n', true, nil
	default:
		n.src.Consume(size)
		n.loc = n.loc.Advance(n.afterNewline)
		n.afterNewline = false
		return r, true, nil
	}
}

// Loc returns the location of the character most recently returned by
// Next, or loc.Start before the first call.
func (n *Normalizer) Loc() loc.Location {
	return n.loc
}
