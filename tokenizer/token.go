// Package tokenizer implements the HTML5 tokenization state machine:
// a pull-based scanner over normalized characters that emits interned
// tokens with source locations, recovering from the HTML5-named parse
// errors in place rather than aborting.
package tokenizer

import "github.com/noxbrowser/htmlcore/store"

// Kind discriminates the token variants this tokenizer emits. Comment
// and DocType are placeholders: their content is not decoded, only
// acknowledged, per the core's scope.
type Kind int

const (
	Char Kind = iota
	StartTag
	EndTag
	DocType
	Comment
)

// Token is the tokenizer's output unit. Name and Attrs are interned
// ids resolved against the Store passed to PollNext; Char and
// SelfClosing are meaningful only for their respective Kinds.
type Token struct {
	Kind        Kind
	Char        rune
	Name        store.RangeID
	Attrs       store.RangeID
	SelfClosing bool
}

// State is the subset of lexical states the tree constructor may force
// the tokenizer into, used to switch into RCDATA for elements like
// <title> and <style> whose content is not itself markup.
type State int

const (
	DataState State = iota
	RcDataState
)
