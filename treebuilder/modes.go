package treebuilder

import (
	"github.com/noxbrowser/htmlcore/loc"
	"github.com/noxbrowser/htmlcore/store"
	"github.com/noxbrowser/htmlcore/tokenizer"
)

func isSpaceChar(ch rune) bool {
	switch ch {
	case ' ', '\t', '\n', '\f', '\r':
		return true
	}
	return false
}

// initialMode corresponds to the "Initial" insertion mode: it does
// nothing but switch to BeforeHtml, since this core never decodes a
// doctype into quirks-mode decisions.
func initialMode(c *Constructor, tk *tokenizer.Tokenizer, st *store.Store, l loc.Location, pt ptok) modeResult {
	c.mode = beforeHtmlMode
	return modeResult{consumed: false}
}

func beforeHtmlMode(c *Constructor, tk *tokenizer.Tokenizer, st *store.Store, l loc.Location, pt ptok) modeResult {
	if pt.eof {
		synthesizeHTML(c, st)
		c.mode = beforeHeadMode
		return modeResult{consumed: false}
	}
	tok := pt.tok
	if tok.Kind == tokenizer.Char && isSpaceChar(tok.Char) {
		return modeResult{consumed: true}
	}
	if tok.Kind == tokenizer.StartTag && st.Text(tok.Name) == "html" {
		c.addElement(st, tok)
		c.mode = beforeHeadMode
		return modeResult{consumed: true}
	}
	synthesizeHTML(c, st)
	c.mode = beforeHeadMode
	return modeResult{consumed: false}
}

func synthesizeHTML(c *Constructor, st *store.Store) {
	id := st.Root().AppendChildElement(st.InternStr("html"), store.NoRange)
	c.push(id)
}

func beforeHeadMode(c *Constructor, tk *tokenizer.Tokenizer, st *store.Store, l loc.Location, pt ptok) modeResult {
	if pt.eof {
		synthesizeHead(c, st)
		c.mode = inHeadMode
		return modeResult{consumed: false}
	}
	tok := pt.tok
	if tok.Kind == tokenizer.Char && isSpaceChar(tok.Char) {
		return modeResult{consumed: true}
	}
	if tok.Kind == tokenizer.StartTag && st.Text(tok.Name) == "head" {
		id := c.addElement(st, tok)
		c.head = id
		c.mode = inHeadMode
		return modeResult{consumed: true}
	}
	synthesizeHead(c, st)
	c.mode = inHeadMode
	return modeResult{consumed: false}
}

func synthesizeHead(c *Constructor, st *store.Store) {
	id := c.addElement(st, tokenizer.Token{Name: st.InternStr("head")})
	c.head = id
}

func inHeadMode(c *Constructor, tk *tokenizer.Tokenizer, st *store.Store, l loc.Location, pt ptok) modeResult {
	if pt.eof {
		if len(c.stack) > 0 && elementName(st, c.currentElement(st)) == "head" {
			c.pop()
		}
		c.mode = afterHeadMode
		return modeResult{consumed: false}
	}
	tok := pt.tok
	if tok.Kind == tokenizer.Char && isSpaceChar(tok.Char) {
		c.appendChar(st, tok.Char)
		return modeResult{consumed: true}
	}
	if tok.Kind == tokenizer.StartTag {
		name := st.Text(tok.Name)
		switch name {
		case "title":
			c.addElement(st, tok)
			tk.SetState(tokenizer.RcDataState)
			c.originalMode = afterHeadModeForHead
			c.mode = textMode
			return modeResult{consumed: true}
		case "style":
			c.addElement(st, tok)
			tk.SetState(tokenizer.RcDataState)
			c.originalMode = afterHeadModeForHead
			c.mode = textMode
			return modeResult{consumed: true}
		}
	}
	if tok.Kind == tokenizer.EndTag && st.Text(tok.Name) == "head" {
		c.pop()
		c.mode = afterHeadMode
		return modeResult{consumed: true}
	}
	// Anything else in InHead that we don't recognize closes head,
	// matching the standard's "anything else" fallthrough.
	if len(c.stack) > 0 && elementName(st, c.currentElement(st)) == "head" {
		c.pop()
	}
	c.mode = afterHeadMode
	return modeResult{consumed: false}
}

// afterHeadModeForHead is a thin wrapper around inHeadMode that InHead
// records as originalMode when it switches the tokenizer into RCDATA for
// <title> or <style>, so that exitTextMode (run after </title> or
// </style>) returns control to InHead. InBody, which also switches into
// RCDATA for those elements, records its own mode instead.
func afterHeadModeForHead(c *Constructor, tk *tokenizer.Tokenizer, st *store.Store, l loc.Location, pt ptok) modeResult {
	return inHeadMode(c, tk, st, l, pt)
}

func afterHeadMode(c *Constructor, tk *tokenizer.Tokenizer, st *store.Store, l loc.Location, pt ptok) modeResult {
	if pt.eof {
		synthesizeBody(c, st)
		c.mode = inBodyMode
		return modeResult{consumed: false}
	}
	tok := pt.tok
	if tok.Kind == tokenizer.Char && isSpaceChar(tok.Char) {
		return modeResult{consumed: true}
	}
	if tok.Kind == tokenizer.StartTag && st.Text(tok.Name) == "body" {
		c.addElement(st, tok)
		c.frameSetOK = false
		c.mode = inBodyMode
		return modeResult{consumed: true}
	}
	synthesizeBody(c, st)
	c.mode = inBodyMode
	return modeResult{consumed: false}
}

func synthesizeBody(c *Constructor, st *store.Store) {
	id := c.addElement(st, tokenizer.Token{Name: st.InternStr("body")})
	_ = id
	c.frameSetOK = true
}

func inBodyMode(c *Constructor, tk *tokenizer.Tokenizer, st *store.Store, l loc.Location, pt ptok) modeResult {
	if pt.eof {
		return modeResult{event: Event{Kind: Done, Loc: l}, hasEvent: true, consumed: true}
	}
	tok := pt.tok

	switch tok.Kind {
	case tokenizer.Char:
		if tok.Char == '\n' && c.skipNextLinefeed {
			c.skipNextLinefeed = false
			return modeResult{consumed: true}
		}
		c.skipNextLinefeed = false
		if !isSpaceChar(tok.Char) {
			c.frameSetOK = false
		}
		c.appendChar(st, tok.Char)
		return modeResult{consumed: true}

	case tokenizer.StartTag:
		name := st.Text(tok.Name)
		c.skipNextLinefeed = false

		if unsupportedConstructs[name] {
			return modeResult{
				event:    Event{Kind: Fatal, Loc: l, Err: &FatalError{Loc: l, Err: ErrUnsupportedConstruct}},
				hasEvent: true,
				consumed: true,
			}
		}

		if blockContainers[name] {
			if c.inButtonScope(st, "p") {
				c.closeP(st)
			}
			c.addElement(st, tok)
			if tok.SelfClosing {
				c.pop()
			}
			return modeResult{consumed: true}
		}

		if headingTags[name] {
			if c.inButtonScope(st, "p") {
				c.closeP(st)
			}
			if len(c.stack) > 0 && headingTags[elementName(st, c.currentElement(st))] {
				c.pop()
			}
			c.addElement(st, tok)
			return modeResult{consumed: true}
		}

		switch name {
		case "pre", "listing":
			if c.inButtonScope(st, "p") {
				c.closeP(st)
			}
			c.addElement(st, tok)
			c.frameSetOK = false
			c.skipNextLinefeed = true
			return modeResult{consumed: true}
		case "title", "style":
			c.addElement(st, tok)
			tk.SetState(tokenizer.RcDataState)
			c.originalMode = c.mode
			c.mode = textMode
			return modeResult{consumed: true}
		}

		// Unrecognized start tags are opened as ordinary elements; the
		// core doesn't model every HTML5 special case (e.g. formatting
		// elements' adoption agency), only the ones SPEC_FULL names.
		c.addElement(st, tok)
		if tok.SelfClosing {
			c.pop()
		}
		return modeResult{consumed: true}

	case tokenizer.EndTag:
		name := st.Text(tok.Name)
		c.skipNextLinefeed = false

		if name == "body" || name == "html" {
			c.mode = afterBodyMode
			return modeResult{consumed: true}
		}
		if blockContainers[name] || headingTags[name] || name == "pre" || name == "listing" {
			if c.inScope(st, name) {
				c.generateImpliedEndTags(st, name)
				c.popUntil(st, name)
			}
			return modeResult{consumed: true}
		}
		if c.inScope(st, name) {
			c.popUntil(st, name)
		}
		return modeResult{consumed: true}
	}

	return modeResult{consumed: true}
}

func afterBodyMode(c *Constructor, tk *tokenizer.Tokenizer, st *store.Store, l loc.Location, pt ptok) modeResult {
	if pt.eof {
		return modeResult{event: Event{Kind: Done, Loc: l}, hasEvent: true, consumed: true}
	}
	tok := pt.tok
	if tok.Kind == tokenizer.Char && isSpaceChar(tok.Char) {
		c.appendChar(st, tok.Char)
		return modeResult{consumed: true}
	}
	if tok.Kind == tokenizer.EndTag && st.Text(tok.Name) == "html" {
		c.mode = afterAfterBodyMode
		return modeResult{consumed: true}
	}
	// Anything else reopens body processing; reprocess under InBody.
	c.mode = inBodyMode
	return modeResult{consumed: false}
}

func afterAfterBodyMode(c *Constructor, tk *tokenizer.Tokenizer, st *store.Store, l loc.Location, pt ptok) modeResult {
	if !pt.eof {
		tok := pt.tok
		if tok.Kind == tokenizer.Char && isSpaceChar(tok.Char) {
			c.appendChar(st, tok.Char)
			return modeResult{consumed: true}
		}
	}
	// Anything else, including EOF, switches back to InBody without
	// consuming, which supplies InBody's own EOF -> Done rule.
	c.mode = inBodyMode
	return modeResult{consumed: false}
}

// textMode corresponds to the "Text" insertion mode entered for
// <title>/<style> RCDATA content.
func textMode(c *Constructor, tk *tokenizer.Tokenizer, st *store.Store, l loc.Location, pt ptok) modeResult {
	if pt.eof {
		return exitTextMode(c, tk, st, l, pt)
	}
	tok := pt.tok
	switch tok.Kind {
	case tokenizer.Char:
		c.appendChar(st, tok.Char)
		return modeResult{consumed: true}
	case tokenizer.EndTag:
		return exitTextMode(c, tk, st, l, pt)
	}
	return modeResult{consumed: true}
}

func exitTextMode(c *Constructor, tk *tokenizer.Tokenizer, st *store.Store, l loc.Location, pt ptok) modeResult {
	var ev Event
	if len(c.stack) > 0 {
		e := c.currentElement(st)
		switch elementName(st, e) {
		case "title":
			ev = Event{Kind: Title, Loc: l, Element: e.ID()}
		case "style":
			ev = Event{Kind: Style, Loc: l, Element: e.ID()}
		}
		c.pop()
	}
	tk.SetState(tokenizer.DataState)
	c.mode = c.originalMode
	consumed := !pt.eof
	return modeResult{event: ev, hasEvent: true, consumed: consumed}
}
