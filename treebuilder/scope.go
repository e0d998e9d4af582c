package treebuilder

import "github.com/noxbrowser/htmlcore/store"

// defaultScopeBarriers names the elements that stop an "in scope" walk
// regardless of which target is being searched for. <html> is always a
// barrier, so walking off the bottom of the stack without a hit is a
// bug, never a legitimate outcome.
var defaultScopeBarriers = map[string]bool{
	"html":    true,
	"table":   true,
	"td":      true,
	"th":      true,
	"marquee": true,
}

var impliedEndTags = map[string]bool{
	"dd":       true,
	"dt":       true,
	"li":       true,
	"optgroup": true,
	"option":   true,
	"p":        true,
}

var blockContainers = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true,
	"center": true, "details": true, "dialog": true, "dir": true,
	"div": true, "dl": true, "fieldset": true, "figcaption": true,
	"figure": true, "footer": true, "header": true, "hgroup": true,
	"main": true, "menu": true, "nav": true, "ol": true, "p": true,
	"search": true, "section": true, "summary": true, "ul": true,
}

var headingTags = map[string]bool{
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

// unsupportedConstructs names start tags that would require an
// insertion mode this constructor never enters (InTable, InSelect,
// InTemplate, and foreign content). Opening one is reported as a fatal
// error rather than silently mis-parsed as an ordinary element.
var unsupportedConstructs = map[string]bool{
	"table": true, "select": true, "template": true,
	"svg": true, "math": true,
}

func elementName(st *store.Store, e store.ElementHandle) string {
	return st.Text(e.Name())
}

// elementInScope walks the open-elements stack top-down, returning true
// if target is found before any barrier (the default set plus extra).
func (c *Constructor) elementInScope(st *store.Store, target string, extra map[string]bool) bool {
	for i := len(c.stack) - 1; i >= 0; i-- {
		e, ok := st.GetElement(c.stack[i])
		if !ok {
			continue
		}
		name := elementName(st, e)
		if name == target {
			return true
		}
		if defaultScopeBarriers[name] || extra[name] {
			return false
		}
	}
	return false
}

func (c *Constructor) inScope(st *store.Store, target string) bool {
	return c.elementInScope(st, target, nil)
}

func (c *Constructor) inButtonScope(st *store.Store, target string) bool {
	return c.elementInScope(st, target, map[string]bool{"button": true})
}

// generateImpliedEndTags pops elements from impliedEndTags off the top
// of the stack, stopping at exclude (never popped by this call) or at
// the first element whose name isn't in the implied set.
func (c *Constructor) generateImpliedEndTags(st *store.Store, exclude string) {
	for len(c.stack) > 0 {
		e, ok := st.GetElement(c.top())
		if !ok {
			return
		}
		name := elementName(st, e)
		if name == exclude || !impliedEndTags[name] {
			return
		}
		c.pop()
	}
}

// popUntil pops the stack until an element named name has been popped,
// or the stack is exhausted.
func (c *Constructor) popUntil(st *store.Store, name string) {
	for len(c.stack) > 0 {
		e, ok := st.GetElement(c.pop())
		if ok && elementName(st, e) == name {
			return
		}
	}
}

func (c *Constructor) closeP(st *store.Store) {
	c.generateImpliedEndTags(st, "p")
	c.popUntil(st, "p")
}
