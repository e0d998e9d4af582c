package treebuilder

import (
	"strings"
	"testing"

	"github.com/noxbrowser/htmlcore/store"
	"github.com/noxbrowser/htmlcore/tokenizer"
	"github.com/stretchr/testify/require"
)

// runAll drives the constructor to completion, returning every Event
// produced along the way including the final Done/Fatal.
func runAll(t *testing.T, src string) ([]Event, *store.Store) {
	t.Helper()
	st := store.New()
	tk := tokenizer.New(strings.NewReader(src))
	c := New()
	var evs []Event
	for {
		ev := c.PollNext(tk, st)
		evs = append(evs, ev)
		if ev.Kind == Done || ev.Kind == Fatal {
			return evs, st
		}
	}
}

func TestConstructor_EmptyInput(t *testing.T) {
	evs, st := runAll(t, "")
	require.Equal(t, Done, evs[len(evs)-1].Kind)

	root := st.Root()
	kids := root.Children()
	require.Len(t, kids, 1)
	html, ok := st.GetElement(store.ElementID(kids[0]))
	require.True(t, ok)
	require.Equal(t, "html", st.Text(html.Name()))
}

func TestConstructor_BareText(t *testing.T) {
	_, st := runAll(t, "hello")

	root := st.Root()
	htmlEl := nthChildElement(t, st, root, 0)
	require.Equal(t, "html", st.Text(htmlEl.Name()))

	bodyEl := findChildByName(t, st, htmlEl, "body")
	text := nthChildText(t, st, bodyEl, 0)
	require.Equal(t, "hello", text.Text())
}

func TestConstructor_TitleEmitsEvent(t *testing.T) {
	evs, st := runAll(t, "<title>X</title>")
	var titleEv Event
	for _, ev := range evs {
		if ev.Kind == Title {
			titleEv = ev
		}
	}
	require.Equal(t, Title, titleEv.Kind)
	el, ok := st.GetElement(titleEv.Element)
	require.True(t, ok)
	text := nthChildText(t, st, el, 0)
	require.Equal(t, "X", text.Text())

	htmlEl := nthChildElement(t, st, st.Root(), 0)
	require.Equal(t, "html", st.Text(htmlEl.Name()))
	headEl := findChildByName(t, st, htmlEl, "head")
	title := nthChildElement(t, st, headEl, 0)
	require.Equal(t, "title", st.Text(title.Name()))
	require.Equal(t, el.ID(), title.ID())

	bodyEl := findChildByName(t, st, htmlEl, "body")
	require.Empty(t, bodyEl.Children())
}

func TestConstructor_ParagraphText(t *testing.T) {
	_, st := runAll(t, "<p>x</p>")
	htmlEl := nthChildElement(t, st, st.Root(), 0)
	bodyEl := findChildByName(t, st, htmlEl, "body")
	p := findChildByName(t, st, bodyEl, "p")
	text := nthChildText(t, st, p, 0)
	require.Equal(t, "x", text.Text())
}

func TestConstructor_ParagraphButtonScopeClosesPriorP(t *testing.T) {
	_, st := runAll(t, "<p>a<p>b")
	htmlEl := nthChildElement(t, st, st.Root(), 0)
	bodyEl := findChildByName(t, st, htmlEl, "body")

	require.Len(t, bodyEl.Children(), 2, "expected two sibling <p> elements")

	first := nthChildElement(t, st, bodyEl, 0)
	second := nthChildElement(t, st, bodyEl, 1)
	require.Equal(t, "p", st.Text(first.Name()))
	require.Equal(t, "p", st.Text(second.Name()))
	require.Equal(t, "a", nthChildText(t, st, first, 0).Text())
	require.Equal(t, "b", nthChildText(t, st, second, 0).Text())
}

func TestConstructor_PreSuppressesLeadingNewline(t *testing.T) {
	_, st := runAll(t, "<pre>\nx</pre>")
	htmlEl := nthChildElement(t, st, st.Root(), 0)
	bodyEl := findChildByName(t, st, htmlEl, "body")
	pre := findChildByName(t, st, bodyEl, "pre")
	text := nthChildText(t, st, pre, 0)
	require.Equal(t, "x", text.Text())
}

func TestConstructor_DoneOnEOF(t *testing.T) {
	evs, _ := runAll(t, "<html><head></head><body></body></html>")
	require.Equal(t, Done, evs[len(evs)-1].Kind)
}

// --- helpers ---

func nthChildElement(t *testing.T, st *store.Store, e store.ElementHandle, n int) store.ElementHandle {
	t.Helper()
	count := 0
	for _, id := range e.Children() {
		h, ok := st.GetElement(store.ElementID(id))
		if !ok {
			continue
		}
		if count == n {
			return h
		}
		count++
	}
	t.Fatalf("no element child at position %d", n)
	return store.ElementHandle{}
}

func nthChildText(t *testing.T, st *store.Store, e store.ElementHandle, n int) store.TextHandle {
	t.Helper()
	count := 0
	for _, id := range e.Children() {
		h, ok := st.GetText(store.TextID(id))
		if !ok {
			continue
		}
		if count == n {
			return h
		}
		count++
	}
	t.Fatalf("no text child at position %d", n)
	return store.TextHandle{}
}

func findChildByName(t *testing.T, st *store.Store, e store.ElementHandle, name string) store.ElementHandle {
	t.Helper()
	for _, id := range e.Children() {
		h, ok := st.GetElement(store.ElementID(id))
		if ok && st.Text(h.Name()) == name {
			return h
		}
	}
	t.Fatalf("no child element named %q", name)
	return store.ElementHandle{}
}
