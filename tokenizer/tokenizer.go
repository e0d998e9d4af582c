package tokenizer

import (
	"io"
	"strings"

	"github.com/noxbrowser/htmlcore/charstream"
	"github.com/noxbrowser/htmlcore/diag"
	"github.com/noxbrowser/htmlcore/loc"
	"github.com/noxbrowser/htmlcore/store"
)

type state int

const (
	stateData state = iota
	stateTagOpen
	stateEndTagOpen
	stateTagName
	stateSelfClosingStartTag
	stateBeforeAttributeName
	stateAttributeName
	stateAfterAttributeName
	stateBeforeAttributeValue
	stateAttributeValueDoubleQuote
	stateAttributeValueSingleQuote
	stateAttributeValueNoQuote
	stateAfterAttributeValueQuoted
	stateBogusComment
	stateRcData
	stateRcDataLessThan
	stateRcDataEndTagOpen
	stateRcDataEndTagName
)

type syntheticTok struct {
	loc loc.Location
	tok Token
}

// Tokenizer is a pull-based HTML5 tokenizer over a normalized character
// stream. The zero value is not usable; construct one with New.
type Tokenizer struct {
	norm  *charstream.Normalizer
	state state
	st    *store.Store // valid only during a PollNext call

	havePeek bool
	peekCh   rune
	peekEOF  bool
	curLoc   loc.Location

	startLoc loc.Location // location of the most recent '<'
	ltLoc    loc.Location // location of '<' that opened an RCDATA end-tag attempt
	slashLoc loc.Location // location of '/' that followed it

	nameBuf     []rune
	curName     []rune
	curValue    []rune
	haveCurAttr bool
	attrBuf     []store.AttrPair
	isEndTag    bool
	selfClosing bool

	lastStartTagName string
	rcBuf            []rune
	rcBufLoc         []loc.Location

	synthetic []syntheticTok
	forceEOF  bool

	reporter diag.Reporter
}

// New returns a Tokenizer reading from r, starting in the Data state.
func New(r io.Reader) *Tokenizer {
	return &Tokenizer{norm: charstream.NewNormalizer(charstream.NewSource(r))}
}

// SetReporter attaches an optional diagnostics sink. Every recoverable
// parse error encountered from this point on is also reported to it;
// recovery itself is unaffected by whether a reporter is attached.
func (t *Tokenizer) SetReporter(r diag.Reporter) { t.reporter = r }

func (t *Tokenizer) report(l loc.Location, kind diag.Kind, detail string) {
	if t.reporter != nil {
		t.reporter.Report(l, kind, detail)
	}
}

// SetState forces the tokenizer's lexical state. The tree constructor
// calls this with RcDataState immediately after opening an element like
// <title> whose content must not be parsed as markup.
func (t *Tokenizer) SetState(s State) {
	switch s {
	case RcDataState:
		t.state = stateRcData
	default:
		t.state = stateData
	}
}

func (t *Tokenizer) peek() (rune, bool, error) {
	if !t.havePeek {
		ch, ok, err := t.norm.Next()
		if err != nil {
			return 0, false, err
		}
		t.havePeek = true
		t.peekCh = ch
		t.peekEOF = !ok
	}
	if t.peekEOF {
		return 0, false, nil
	}
	return t.peekCh, true, nil
}

func (t *Tokenizer) consume() {
	t.curLoc = t.norm.Loc()
	t.havePeek = false
}

func isASCIIAlpha(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isSpace(r rune) bool {
	return r == '\t' || r == '\n' || r == '\f' || r == ' '
}

func toASCIILower(r rune) rune {
	if r >= 'A' && r <= 'Z' {
		return r + ('a' - 'A')
	}
	return r
}

// flushCurAttr interns the in-progress attribute name/value and appends
// it to attrBuf, dropping it instead if an attribute with the same
// interned name is already present (first occurrence wins; the HTML5
// "duplicate-attribute" parse error).
func (t *Tokenizer) flushCurAttr() {
	if !t.haveCurAttr {
		return
	}
	t.haveCurAttr = false
	nameID := t.st.InternStr(string(t.curName))
	valueID := t.st.InternStr(string(t.curValue))
	t.curName = t.curName[:0]
	t.curValue = t.curValue[:0]

	for _, p := range t.attrBuf {
		if p.Name == nameID {
			t.report(t.curLoc, diag.DuplicateAttribute, t.st.Text(nameID))
			return
		}
	}
	t.attrBuf = append(t.attrBuf, store.AttrPair{Name: nameID, Value: valueID})
}

func (t *Tokenizer) startAttr() {
	t.flushCurAttr()
	t.haveCurAttr = true
	t.curName = t.curName[:0]
	t.curValue = t.curValue[:0]
}

// finishTag interns the accumulated name and attributes and returns the
// completed tag token, resetting the tokenizer's tag-scoped scratch
// state for the next tag.
func (t *Tokenizer) finishTag() Token {
	t.flushCurAttr()
	name := t.st.InternStr(string(t.nameBuf))
	var attrs store.RangeID
	if len(t.attrBuf) > 0 {
		attrs = t.st.InsertAttrs(t.attrBuf)
	}
	kind := StartTag
	if t.isEndTag {
		kind = EndTag
	}
	tok := Token{Kind: kind, Name: name, Attrs: attrs, SelfClosing: t.selfClosing}
	if kind == StartTag {
		t.lastStartTagName = strings.ToLower(string(t.nameBuf))
	}
	t.attrBuf = nil
	t.selfClosing = false
	t.isEndTag = false
	return tok
}

func (t *Tokenizer) pushSynthetic(l loc.Location, tok Token) {
	t.synthetic = append(t.synthetic, syntheticTok{loc: l, tok: tok})
}

// PollNext returns the next token. ok is false once the tokenizer has
// reached a terminal state and will never produce another token; err is
// non-nil only for a fatal failure (I/O error or invalid UTF-8), never
// for a recoverable parse error, which this method absorbs internally.
func (t *Tokenizer) PollNext(st *store.Store) (loc.Location, Token, bool, error) {
	t.st = st

	if n := len(t.synthetic); n > 0 {
		top := t.synthetic[n-1]
		t.synthetic = t.synthetic[:n-1]
		return top.loc, top.tok, true, nil
	}
	if t.forceEOF {
		return loc.Location{}, Token{}, false, nil
	}

	for {
		switch t.state {

		case stateData:
			ch, ok, err := t.peek()
			if err != nil {
				return t.curLoc, Token{}, false, &FatalError{Loc: t.curLoc, Err: err}
			}
			if !ok {
				t.forceEOF = true
				return loc.Location{}, Token{}, false, nil
			}
			if ch == '<' {
				t.consume()
				t.startLoc = t.curLoc
				t.state = stateTagOpen
				continue
			}
			t.consume()
			if ch == 0 {
				t.report(t.curLoc, diag.UnexpectedNullCharacter, "")
			}
			return t.curLoc, Token{Kind: Char, Char: ch}, true, nil

		case stateTagOpen:
			ch, ok, err := t.peek()
			if err != nil {
				return t.curLoc, Token{}, false, &FatalError{Loc: t.curLoc, Err: err}
			}
			if !ok {
				t.forceEOF = true
				t.report(t.startLoc, diag.EOFBeforeTagName, "")
				return t.startLoc, Token{Kind: Char, Char: '<'}, true, nil
			}
			switch {
			case ch == '!':
				// Markup declaration open (DOCTYPE/comment) is acknowledged
				// but not decoded by this core; sink it like other
				// unrecognized bracket content.
				t.state = stateBogusComment
			case ch == '/':
				t.consume()
				t.state = stateEndTagOpen
			case ch == '?':
				t.report(t.startLoc, diag.UnexpectedQuestionMarkInsteadOfTagName, "")
				t.state = stateBogusComment
			case isASCIIAlpha(ch):
				t.nameBuf = t.nameBuf[:0]
				t.isEndTag = false
				t.state = stateTagName
			default:
				t.state = stateData
				return t.startLoc, Token{Kind: Char, Char: '<'}, true, nil
			}

		case stateEndTagOpen:
			ch, ok, err := t.peek()
			if err != nil {
				return t.curLoc, Token{}, false, &FatalError{Loc: t.curLoc, Err: err}
			}
			if !ok {
				t.forceEOF = true
				t.pushSynthetic(t.curLoc, Token{Kind: Char, Char: '/'})
				return t.startLoc, Token{Kind: Char, Char: '<'}, true, nil
			}
			switch {
			case ch == '>':
				t.report(t.startLoc, diag.MissingEndTagName, "")
				t.consume()
				t.state = stateData
			case isASCIIAlpha(ch):
				t.nameBuf = t.nameBuf[:0]
				t.isEndTag = true
				t.state = stateTagName
			default:
				t.state = stateBogusComment
			}

		case stateTagName:
			ch, ok, err := t.peek()
			if err != nil {
				return t.curLoc, Token{}, false, &FatalError{Loc: t.curLoc, Err: err}
			}
			if !ok {
				t.forceEOF = true
				t.report(t.startLoc, diag.EOFInTag, "")
				return loc.Location{}, Token{}, false, nil
			}
			switch {
			case isSpace(ch):
				t.consume()
				t.state = stateBeforeAttributeName
			case ch == '/':
				t.consume()
				t.state = stateSelfClosingStartTag
			case ch == '>':
				t.consume()
				tok := t.finishTag()
				t.state = stateData
				return t.startLoc, tok, true, nil
			case ch == 0:
				t.consume()
				t.report(t.curLoc, diag.UnexpectedNullCharacter, "")
				t.nameBuf = append(t.nameBuf, 0xFFFD)
			default:
				t.consume()
				t.nameBuf = append(t.nameBuf, toASCIILower(ch))
			}

		case stateSelfClosingStartTag:
			ch, ok, err := t.peek()
			if err != nil {
				return t.curLoc, Token{}, false, &FatalError{Loc: t.curLoc, Err: err}
			}
			if !ok {
				t.forceEOF = true
				t.report(t.startLoc, diag.EOFInTag, "")
				return loc.Location{}, Token{}, false, nil
			}
			if ch == '>' {
				t.consume()
				t.selfClosing = true
				tok := t.finishTag()
				t.state = stateData
				return t.startLoc, tok, true, nil
			}
			t.report(t.curLoc, diag.UnexpectedSolidusInTag, "")
			t.state = stateBeforeAttributeName

		case stateBeforeAttributeName:
			ch, ok, err := t.peek()
			if err != nil {
				return t.curLoc, Token{}, false, &FatalError{Loc: t.curLoc, Err: err}
			}
			if !ok {
				t.forceEOF = true
				t.report(t.startLoc, diag.EOFInTag, "")
				return loc.Location{}, Token{}, false, nil
			}
			switch {
			case isSpace(ch):
				t.consume()
			case ch == '/' || ch == '>':
				t.flushCurAttr()
				t.state = stateAfterAttributeName
			case ch == '=':
				t.consume()
				t.report(t.curLoc, diag.UnexpectedEqualsSignBeforeAttributeName, "")
				t.startAttr()
				t.curName = append(t.curName, '=')
				t.state = stateAttributeName
			default:
				t.startAttr()
				t.state = stateAttributeName
			}

		case stateAttributeName:
			ch, ok, err := t.peek()
			if err != nil {
				return t.curLoc, Token{}, false, &FatalError{Loc: t.curLoc, Err: err}
			}
			if !ok {
				t.forceEOF = true
				t.report(t.startLoc, diag.EOFInTag, "")
				return loc.Location{}, Token{}, false, nil
			}
			switch {
			case isSpace(ch):
				t.consume()
				t.state = stateAfterAttributeName
			case ch == '/' || ch == '>':
				t.state = stateAfterAttributeName
			case ch == '=':
				t.consume()
				t.state = stateBeforeAttributeValue
			case ch == 0:
				t.consume()
				t.report(t.curLoc, diag.UnexpectedNullCharacter, "")
				t.curName = append(t.curName, 0xFFFD)
			case ch == '"' || ch == '\'' || ch == '<':
				t.consume()
				t.report(t.curLoc, diag.UnexpectedCharacterInAttributeName, "")
				t.curName = append(t.curName, ch)
			default:
				t.consume()
				t.curName = append(t.curName, toASCIILower(ch))
			}

		case stateAfterAttributeName:
			ch, ok, err := t.peek()
			if err != nil {
				return t.curLoc, Token{}, false, &FatalError{Loc: t.curLoc, Err: err}
			}
			if !ok {
				t.forceEOF = true
				t.report(t.startLoc, diag.EOFInTag, "")
				return loc.Location{}, Token{}, false, nil
			}
			switch {
			case isSpace(ch):
				t.consume()
			case ch == '/':
				t.consume()
				t.flushCurAttr()
				t.state = stateSelfClosingStartTag
			case ch == '=':
				t.consume()
				t.state = stateBeforeAttributeValue
			case ch == '>':
				t.consume()
				t.flushCurAttr()
				tok := t.finishTag()
				t.state = stateData
				return t.startLoc, tok, true, nil
			default:
				t.startAttr()
				t.state = stateAttributeName
			}

		case stateBeforeAttributeValue:
			ch, ok, err := t.peek()
			if err != nil {
				return t.curLoc, Token{}, false, &FatalError{Loc: t.curLoc, Err: err}
			}
			if !ok {
				t.forceEOF = true
				t.report(t.startLoc, diag.EOFInTag, "")
				return loc.Location{}, Token{}, false, nil
			}
			switch ch {
			case '\t', '\n', '\f', ' ':
				t.consume()
			case '"':
				t.consume()
				t.state = stateAttributeValueDoubleQuote
			case '\'':
				t.consume()
				t.state = stateAttributeValueSingleQuote
			case '>':
				t.report(t.curLoc, diag.MissingAttributeValue, "")
				t.consume()
				t.flushCurAttr()
				tok := t.finishTag()
				t.state = stateData
				return t.startLoc, tok, true, nil
			default:
				t.state = stateAttributeValueNoQuote
			}

		case stateAttributeValueDoubleQuote, stateAttributeValueSingleQuote:
			q := rune('"')
			if t.state == stateAttributeValueSingleQuote {
				q = '\''
			}
			ch, ok, err := t.peek()
			if err != nil {
				return t.curLoc, Token{}, false, &FatalError{Loc: t.curLoc, Err: err}
			}
			if !ok {
				t.forceEOF = true
				t.report(t.startLoc, diag.EOFInTag, "")
				return loc.Location{}, Token{}, false, nil
			}
			switch {
			case ch == q:
				t.consume()
				t.state = stateAfterAttributeValueQuoted
			case ch == 0:
				t.consume()
				t.report(t.curLoc, diag.UnexpectedNullCharacter, "")
				t.curValue = append(t.curValue, 0xFFFD)
			default:
				t.consume()
				t.curValue = append(t.curValue, ch)
			}

		case stateAttributeValueNoQuote:
			ch, ok, err := t.peek()
			if err != nil {
				return t.curLoc, Token{}, false, &FatalError{Loc: t.curLoc, Err: err}
			}
			if !ok {
				t.forceEOF = true
				t.report(t.startLoc, diag.EOFInTag, "")
				return loc.Location{}, Token{}, false, nil
			}
			switch {
			case isSpace(ch):
				t.consume()
				t.state = stateBeforeAttributeName
			case ch == '>':
				t.consume()
				t.flushCurAttr()
				tok := t.finishTag()
				t.state = stateData
				return t.startLoc, tok, true, nil
			case ch == 0:
				t.consume()
				t.report(t.curLoc, diag.UnexpectedNullCharacter, "")
				t.curValue = append(t.curValue, 0xFFFD)
			default:
				t.consume()
				t.curValue = append(t.curValue, ch)
			}

		case stateAfterAttributeValueQuoted:
			ch, ok, err := t.peek()
			if err != nil {
				return t.curLoc, Token{}, false, &FatalError{Loc: t.curLoc, Err: err}
			}
			if !ok {
				t.forceEOF = true
				t.report(t.startLoc, diag.EOFInTag, "")
				return loc.Location{}, Token{}, false, nil
			}
			switch {
			case isSpace(ch):
				t.consume()
				t.flushCurAttr()
				t.state = stateBeforeAttributeName
			case ch == '/':
				t.consume()
				t.flushCurAttr()
				t.state = stateSelfClosingStartTag
			case ch == '>':
				t.consume()
				t.flushCurAttr()
				tok := t.finishTag()
				t.state = stateData
				return t.startLoc, tok, true, nil
			default:
				t.report(t.curLoc, diag.MissingWhitespaceBetweenAttributes, "")
				t.flushCurAttr()
				t.state = stateBeforeAttributeName
			}

		case stateBogusComment:
			ch, ok, err := t.peek()
			if err != nil {
				return t.curLoc, Token{}, false, &FatalError{Loc: t.curLoc, Err: err}
			}
			if !ok {
				t.forceEOF = true
				return loc.Location{}, Token{}, false, nil
			}
			t.consume()
			if ch == '>' {
				t.state = stateData
				return t.startLoc, Token{Kind: Comment}, true, nil
			}

		case stateRcData:
			ch, ok, err := t.peek()
			if err != nil {
				return t.curLoc, Token{}, false, &FatalError{Loc: t.curLoc, Err: err}
			}
			if !ok {
				t.forceEOF = true
				return loc.Location{}, Token{}, false, nil
			}
			if ch == '<' {
				t.consume()
				t.ltLoc = t.curLoc
				t.state = stateRcDataLessThan
				continue
			}
			t.consume()
			return t.curLoc, Token{Kind: Char, Char: ch}, true, nil

		case stateRcDataLessThan:
			ch, ok, err := t.peek()
			if err != nil {
				return t.curLoc, Token{}, false, &FatalError{Loc: t.curLoc, Err: err}
			}
			if !ok {
				t.forceEOF = true
				return t.ltLoc, Token{Kind: Char, Char: '<'}, true, nil
			}
			if ch == '/' {
				t.consume()
				t.slashLoc = t.curLoc
				t.rcBuf = t.rcBuf[:0]
				t.rcBufLoc = t.rcBufLoc[:0]
				t.state = stateRcDataEndTagOpen
				continue
			}
			t.state = stateRcData
			return t.ltLoc, Token{Kind: Char, Char: '<'}, true, nil

		case stateRcDataEndTagOpen:
			ch, ok, err := t.peek()
			if err != nil {
				return t.curLoc, Token{}, false, &FatalError{Loc: t.curLoc, Err: err}
			}
			if !ok {
				t.forceEOF = true
				t.pushSynthetic(t.slashLoc, Token{Kind: Char, Char: '/'})
				return t.ltLoc, Token{Kind: Char, Char: '<'}, true, nil
			}
			if isASCIIAlpha(ch) {
				t.state = stateRcDataEndTagName
				continue
			}
			t.state = stateRcData
			t.pushSynthetic(t.slashLoc, Token{Kind: Char, Char: '/'})
			return t.ltLoc, Token{Kind: Char, Char: '<'}, true, nil

		case stateRcDataEndTagName:
			ch, ok, err := t.peek()
			if err != nil {
				return t.curLoc, Token{}, false, &FatalError{Loc: t.curLoc, Err: err}
			}
			if ok && isASCIIAlpha(ch) {
				t.consume()
				t.rcBuf = append(t.rcBuf, ch)
				t.rcBufLoc = append(t.rcBufLoc, t.curLoc)
				continue
			}

			name := strings.ToLower(string(t.rcBuf))
			if ok && ch == '>' && name == t.lastStartTagName {
				t.consume()
				t.state = stateData
				nameID := t.st.InternStr(name)
				return t.ltLoc, Token{Kind: EndTag, Name: nameID}, true, nil
			}

			// Speculative lookahead failed: this wasn't the matching end
			// tag, so re-emit everything consumed while scanning for it as
			// plain characters, in source order, and resume RCDATA without
			// consuming the character that ended the run.
			t.state = stateRcData
			for i := len(t.rcBuf) - 1; i >= 0; i-- {
				t.pushSynthetic(t.rcBufLoc[i], Token{Kind: Char, Char: t.rcBuf[i]})
			}
			t.pushSynthetic(t.slashLoc, Token{Kind: Char, Char: '/'})
			if !ok {
				t.forceEOF = true
			}
			return t.ltLoc, Token{Kind: Char, Char: '<'}, true, nil
		}
	}
}
