// Package treebuilder implements the HTML5 tree-construction
// insertion-mode state machine over a tokenizer's output, mutating a
// document store and emitting high-level parse events.
package treebuilder

import (
	"github.com/noxbrowser/htmlcore/loc"
	"github.com/noxbrowser/htmlcore/store"
)

// EventKind discriminates the outcomes PollNext can report.
type EventKind int

const (
	// Done means parsing completed normally: the tokenizer reached EOF
	// and the state machine accepted it.
	Done EventKind = iota
	// Fatal means parsing stopped: the tokenizer surfaced an
	// unrecoverable error, or the input opened a construct this core
	// does not model (ErrUnsupportedConstruct).
	Fatal
	// Title means a <title> element has been fully parsed.
	Title
	// Style means a <style> element has been fully parsed.
	Style
	// Link is reserved for <link> completion.
	Link
	// IFrame is reserved.
	IFrame
)

// Event is the tree constructor's output unit.
type Event struct {
	Kind    EventKind
	Loc     loc.Location
	Err     error
	Element store.ElementID
}
