package treebuilder

import (
	"github.com/noxbrowser/htmlcore/loc"
	"github.com/noxbrowser/htmlcore/store"
	"github.com/noxbrowser/htmlcore/tokenizer"
)

// ptok wraps a tokenizer result so mode functions can distinguish a
// real token from end-of-input without relying on a zero-value Token
// coinciding with a meaningful Kind.
type ptok struct {
	tok tokenizer.Token
	eof bool
}

type modeResult struct {
	event    Event
	hasEvent bool
	consumed bool
}

type modeFn func(c *Constructor, tk *tokenizer.Tokenizer, st *store.Store, l loc.Location, pt ptok) modeResult

// Constructor implements the tree-construction insertion-mode state
// machine. The zero value is not usable; construct one with New.
type Constructor struct {
	mode         modeFn
	originalMode modeFn

	// templateModes mirrors the bookkeeping record's "stack of modes"
	// saved when entering a <template>; no insertion mode in this core
	// switches into InTemplate, so this never grows, but it is kept to
	// preserve the record's shape for future extension.
	templateModes []modeFn

	stack            []store.ElementID
	head             store.ElementID
	textBuf          []byte
	frameSetOK       bool
	skipNextLinefeed bool

	haveTok bool
	curLoc  loc.Location
	curPT   ptok
}

// New returns a Constructor starting in the Initial insertion mode.
func New() *Constructor {
	return &Constructor{mode: initialMode}
}

func (c *Constructor) push(id store.ElementID) { c.stack = append(c.stack, id) }

func (c *Constructor) pop() store.ElementID {
	n := len(c.stack)
	id := c.stack[n-1]
	c.stack = c.stack[:n-1]
	return id
}

func (c *Constructor) top() store.ElementID {
	if len(c.stack) == 0 {
		return store.RootID
	}
	return c.stack[len(c.stack)-1]
}

// currentElement is the element new nodes are inserted into: the top
// of the open-elements stack, or the document root before <html> has
// been pushed.
func (c *Constructor) currentElement(st *store.Store) store.ElementHandle {
	if len(c.stack) == 0 {
		return st.Root()
	}
	e, _ := st.GetElement(c.top())
	return e
}

func (c *Constructor) addElement(st *store.Store, tok tokenizer.Token) store.ElementID {
	cur := c.currentElement(st)
	id := cur.AppendChildElement(tok.Name, tok.Attrs)
	c.push(id)
	return id
}

// appendChar implements the text-appending protocol: consecutive
// characters extend a single growable text node rather than minting a
// fresh one each time.
func (c *Constructor) appendChar(st *store.Store, ch rune) {
	cur := c.currentElement(st)
	if th, ok := cur.LastChildText(); ok {
		st.AppendChar(ch)
		c.textBuf = append(c.textBuf, string(ch)...)
		th.SetText(string(c.textBuf))
		return
	}
	c.textBuf = []byte(string(ch))
	cur.AppendChildText(string(c.textBuf))
}

// PollNext drives the state machine forward, pulling tokens one at a
// time (a token a mode does not consume is offered again to the next
// mode) until a mode reports an Event, which it returns.
func (c *Constructor) PollNext(tk *tokenizer.Tokenizer, st *store.Store) Event {
	for {
		if !c.haveTok {
			l, tok, ok, err := tk.PollNext(st)
			c.curLoc = l
			if err != nil {
				return Event{Kind: Fatal, Loc: l, Err: &FatalError{Loc: l, Err: err}}
			}
			if ok {
				c.curPT = ptok{tok: tok}
			} else {
				c.curPT = ptok{eof: true}
			}
			c.haveTok = true
		}

		res := c.mode(c, tk, st, c.curLoc, c.curPT)
		if res.consumed {
			c.haveTok = false
		}
		if res.hasEvent {
			return res.event
		}
	}
}
