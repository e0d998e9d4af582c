// Package charstream turns a byte stream into a sequence of Unicode
// characters, collapsing CR and CRLF line endings into a single LF as it
// goes (C1/C2 of the parsing pipeline).
package charstream

import (
	"fmt"
	"io"
	"unicode/utf8"
)

// InvalidUTF8Error reports a byte offset, relative to the start of the
// underlying reader, at which the buffered bytes are not valid UTF-8.
// This is distinct from a merely-truncated multibyte sequence at the end
// of the currently buffered prefix, which is not an error.
type InvalidUTF8Error struct {
	Offset int
}

func (e *InvalidUTF8Error) Error() string {
	return fmt.Sprintf("charstream: invalid UTF-8 at byte offset %d", e.Offset)
}

// Source fills a buffer from an io.Reader and exposes the largest valid
// UTF-8 prefix of the unconsumed bytes at any time. Callers consume
// bytes explicitly once they've decided how many characters they used.
type Source struct {
	r    io.Reader
	buf  []byte
	pos  int
	eof  bool
	base int // reader offset of buf[0]
}

// NewSource wraps r for character-granular reading.
func NewSource(r io.Reader) *Source {
	return &Source{r: r, buf: make([]byte, 0, 4096)}
}

func (s *Source) compact() {
	if s.pos == 0 {
		return
	}
	n := copy(s.buf, s.buf[s.pos:])
	s.buf = s.buf[:n]
	s.base += s.pos
	s.pos = 0
}

// pump reads one more chunk from the underlying reader into buf.
func (s *Source) pump() error {
	if s.eof {
		return nil
	}
	s.compact()
	if len(s.buf) == cap(s.buf) {
		nb := make([]byte, len(s.buf), cap(s.buf)*2+4096)
		copy(nb, s.buf)
		s.buf = nb
	}
	n, err := s.r.Read(s.buf[len(s.buf):cap(s.buf)])
	s.buf = s.buf[:len(s.buf)+n]
	if err != nil {
		if err == io.EOF {
			s.eof = true
			return nil
		}
		return err
	}
	return nil
}

// Fill returns the largest valid-UTF-8 prefix of the currently buffered,
// unconsumed bytes, pumping the underlying reader first whenever no
// complete character is buffered. A multibyte sequence truncated at the
// end of the buffer is not an error unless the underlying reader has
// reached EOF, in which case it is genuinely invalid UTF-8. Invalid
// bytes that follow a valid prefix are reported by the first Fill call
// made after that prefix has been consumed.
func (s *Source) Fill() (string, error) {
	for {
		str, err := s.validPrefix()
		if err != nil || str != "" || s.eof {
			return str, err
		}
		if err := s.pump(); err != nil {
			return "", err
		}
	}
}

// Grow forces one additional read from the underlying reader even if
// some bytes are already buffered. The normalizer uses this to resolve
// a lone trailing '\r' that might be the first half of a CRLF pair
// split across a fill boundary.
func (s *Source) Grow() error {
	return s.pump()
}

func (s *Source) validPrefix() (string, error) {
	b := s.buf[s.pos:]
	i := 0
	for i < len(b) {
		if !utf8.FullRune(b[i:]) {
			if s.eof && i == 0 {
				return "", &InvalidUTF8Error{Offset: s.base + s.pos + i}
			}
			break
		}
		r, size := utf8.DecodeRune(b[i:])
		if r == utf8.RuneError && size == 1 {
			if i == 0 {
				return "", &InvalidUTF8Error{Offset: s.base + s.pos + i}
			}
			break
		}
		i += size
	}
	return string(b[:i]), nil
}

// Consume advances the cursor by nBytes, the sum of the UTF-8 byte
// lengths of characters the caller has already processed out of the
// string most recently returned by Fill.
func (s *Source) Consume(nBytes int) {
	s.pos += nBytes
}
