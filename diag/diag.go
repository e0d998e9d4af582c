// Package diag implements the optional diagnostics side channel: a
// recorder for the HTML5 tokenizer's recoverable, named parse errors,
// and a renderer that writes each one as a single "line:column: kind"
// line, without surrounding source context.
package diag

import (
	"fmt"
	"io"

	"github.com/noxbrowser/htmlcore/loc"
)

// Kind enumerates the named HTML5 parse errors the tokenizer and tree
// constructor can recover from.
type Kind int

const (
	UnexpectedNullCharacter Kind = iota
	UnexpectedQuestionMarkInsteadOfTagName
	EOFBeforeTagName
	MissingEndTagName
	DuplicateAttribute
	MissingAttributeValue
	EOFInTag
	UnexpectedCharacterInAttributeName
	UnexpectedEqualsSignBeforeAttributeName
	UnexpectedSolidusInTag
	MissingWhitespaceBetweenAttributes
	UnsupportedConstruct
)

func (k Kind) String() string {
	switch k {
	case UnexpectedNullCharacter:
		return "unexpected-null-character"
	case UnexpectedQuestionMarkInsteadOfTagName:
		return "unexpected-question-mark-instead-of-tag-name"
	case EOFBeforeTagName:
		return "eof-before-tag-name"
	case MissingEndTagName:
		return "missing-end-tag-name"
	case DuplicateAttribute:
		return "duplicate-attribute"
	case MissingAttributeValue:
		return "missing-attribute-value"
	case EOFInTag:
		return "eof-in-tag"
	case UnexpectedCharacterInAttributeName:
		return "unexpected-character-in-attribute-name"
	case UnexpectedEqualsSignBeforeAttributeName:
		return "unexpected-equals-sign-before-attribute-name"
	case UnexpectedSolidusInTag:
		return "unexpected-solidus-in-tag"
	case MissingWhitespaceBetweenAttributes:
		return "missing-whitespace-between-attributes"
	case UnsupportedConstruct:
		return "unsupported-construct"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Reporter receives one call per recoverable parse error the tokenizer
// reports. Tokenizer.SetReporter accepts nil; recovery always proceeds
// the same way whether or not a Reporter is attached.
type Reporter interface {
	Report(l loc.Location, kind Kind, detail string)
}

// Record is one diagnostic captured by a RecordingReporter.
type Record struct {
	Loc    loc.Location
	Kind   Kind
	Detail string
}

// RecordingReporter accumulates every reported diagnostic in memory,
// for tests and for callers that want to inspect the full list before
// deciding how to present it.
type RecordingReporter struct {
	Records []Record
}

func (r *RecordingReporter) Report(l loc.Location, kind Kind, detail string) {
	r.Records = append(r.Records, Record{Loc: l, Kind: kind, Detail: detail})
}

// TextReporter writes one line per diagnostic to w, in the form
// "line:column: kind: detail". It never returns an error from Report;
// a write failure is silently dropped, matching the tokenizer and tree
// constructor's own contract that diagnostics are best-effort and never
// influence parsing.
type TextReporter struct {
	w io.Writer
}

// NewTextReporter returns a Reporter that renders each diagnostic as a
// single line written to w.
func NewTextReporter(w io.Writer) *TextReporter {
	return &TextReporter{w: w}
}

func (r *TextReporter) Report(l loc.Location, kind Kind, detail string) {
	if detail == "" {
		fmt.Fprintf(r.w, "%s: %s\n", l, kind)
		return
	}
	fmt.Fprintf(r.w, "%s: %s: %s\n", l, kind, detail)
}
