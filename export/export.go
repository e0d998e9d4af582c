// Package export renders a completed document store to the parser's
// indented text format and, for interchange with XML-consuming tooling,
// to an etree document.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/beevik/etree"

	"github.com/noxbrowser/htmlcore/store"
)

// Serialize writes st's tree rooted at st.Root() in the indented text
// format: two spaces per depth level, an element written as "<name>",
// a text node written as "<>text", and the synthetic root written as
// a bare "<>" when it has no name of its own.
func Serialize(w io.Writer, st *store.Store) error {
	return serializeElement(w, st, st.Root(), 0)
}

func serializeElement(w io.Writer, st *store.Store, e store.ElementHandle, depth int) error {
	indent := strings.Repeat("  ", depth)
	name := st.Text(e.Name())
	if _, err := fmt.Fprintf(w, "%s<%s>\n", indent, name); err != nil {
		return err
	}
	for _, id := range e.Children() {
		if child, ok := st.GetElement(store.ElementID(id)); ok {
			if err := serializeElement(w, st, child, depth+1); err != nil {
				return err
			}
			continue
		}
		if text, ok := st.GetText(store.TextID(id)); ok {
			childIndent := strings.Repeat("  ", depth+1)
			if _, err := fmt.Fprintf(w, "%s<>%s\n", childIndent, text.Text()); err != nil {
				return err
			}
		}
	}
	return nil
}

// ExportXML walks st's node forest and builds an etree.Document with
// one etree.Element per element node and one CharData per text node.
// The synthetic document root is not itself emitted; its children
// become the document's top-level elements. This is an interchange
// format, not a faithful HTML-to-XHTML transform: attribute and text
// escaping follow etree's own XML rules.
func ExportXML(st *store.Store) (*etree.Document, error) {
	doc := etree.NewDocument()
	if err := appendChildrenXML(st, st.Root(), &doc.Element); err != nil {
		return nil, err
	}
	return doc, nil
}

func appendChildrenXML(st *store.Store, e store.ElementHandle, parent *etree.Element) error {
	for _, id := range e.Children() {
		if child, ok := st.GetElement(store.ElementID(id)); ok {
			el := parent.CreateElement(st.Text(child.Name()))
			for _, attr := range st.Attrs(child.Attrs()) {
				el.CreateAttr(st.Text(attr.Name), st.Text(attr.Value))
			}
			if err := appendChildrenXML(st, child, el); err != nil {
				return err
			}
			continue
		}
		if text, ok := st.GetText(store.TextID(id)); ok {
			parent.CreateText(text.Text())
		}
	}
	return nil
}
