package store

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNew_RootIsEmptyElement(t *testing.T) {
	s := New()
	root := s.Root()
	require.Equal(t, RootID, root.ID())
	require.Equal(t, NoRange, root.Name())
	require.Equal(t, NoRange, root.Attrs())
	start, end := root.ChildIndices()
	require.Equal(t, start, end)
}

func TestInternStr_DeduplicatesAndRoundTrips(t *testing.T) {
	s := New()
	id1 := s.InternStr("div")
	id2 := s.InternStr("div")
	require.Equal(t, id1, id2)
	require.Equal(t, "div", s.Text(id1))

	found, ok := s.FindStr("div")
	require.True(t, ok)
	require.Equal(t, id1, found)

	_, ok = s.FindStr("span")
	require.False(t, ok)
}

func TestInternStr_Empty(t *testing.T) {
	s := New()
	require.Equal(t, NoRange, s.InternStr(""))
	id, ok := s.FindStr("")
	require.True(t, ok)
	require.Equal(t, NoRange, id)
}

func TestAppendChildElement_GrowsKidsRangeAndInvalidatesOld(t *testing.T) {
	s := New()
	root := s.Root()

	nameA := s.InternStr("a")
	nameB := s.InternStr("b")

	idA := root.AppendChildElement(nameA, NoRange)
	idB := root.AppendChildElement(nameB, NoRange)

	start, end := root.ChildIndices()
	require.Equal(t, 2, end-start)

	eltA, ok := s.GetElement(idA)
	require.True(t, ok)
	require.Equal(t, "a", s.Text(eltA.Name()))

	eltB, ok := s.GetElement(idB)
	require.True(t, ok)
	require.Equal(t, "b", s.Text(eltB.Name()))

	// both ids still resolve to live, distinct elements after relocation
	require.NotEqual(t, idA, idB)
}

func TestAppendChildElement_StableIDAcrossRelocation(t *testing.T) {
	s := New()
	root := s.Root()
	idA := root.AppendChildElement(s.InternStr("a"), NoRange)

	eltA, ok := s.GetElement(idA)
	require.True(t, ok)

	// Appending a sibling relocates a's slot to the end of the vector;
	// idA must still resolve to the same logical element.
	root.AppendChildElement(s.InternStr("b"), NoRange)

	eltA2, ok := s.GetElement(idA)
	require.True(t, ok)
	require.Equal(t, eltA.ID(), eltA2.ID())
	require.Equal(t, "a", s.Text(eltA2.Name()))
}

func TestAppendChildText_GrowInPlace(t *testing.T) {
	s := New()
	root := s.Root()

	textID := root.AppendChildText("a")
	th, ok := s.GetText(textID)
	require.True(t, ok)
	require.Equal(t, "a", th.Text())

	buf := "a"
	s.AppendChar('b')
	buf += "b"
	th.SetText(buf)
	require.Equal(t, "ab", th.Text())

	s.AppendChar('c')
	buf += "c"
	th.SetText(buf)
	require.Equal(t, "abc", th.Text())
}

func TestLastChildText(t *testing.T) {
	s := New()
	root := s.Root()

	_, ok := root.LastChildText()
	require.False(t, ok)

	root.AppendChildText("hi")
	th, ok := root.LastChildText()
	require.True(t, ok)
	require.Equal(t, "hi", th.Text())

	root.AppendChildElement(s.InternStr("span"), NoRange)
	_, ok = root.LastChildText()
	require.False(t, ok)
}

func TestInsertMissingAttrs_OnlyAddsNewNames(t *testing.T) {
	s := New()
	root := s.Root()

	classID := s.InternStr("class")
	idAttr := s.InternStr("id")
	v1 := s.InternStr("foo")
	v2 := s.InternStr("bar")
	v3 := s.InternStr("baz")

	attrs := s.InsertAttrs([]AttrPair{{Name: classID, Value: v1}})
	eltID := root.AppendChildElement(s.InternStr("div"), attrs)
	elt, _ := s.GetElement(eltID)

	// class already present with v1: must not be overwritten by v2; id is new.
	newAttrs := s.InsertAttrs([]AttrPair{{Name: classID, Value: v2}, {Name: idAttr, Value: v3}})
	elt.InsertMissingAttrs(newAttrs)

	pairs := s.Attrs(elt.Attrs())
	require.Len(t, pairs, 2)

	var gotClass, gotID bool
	for _, p := range pairs {
		switch p.Name {
		case classID:
			require.Equal(t, v1, p.Value)
			gotClass = true
		case idAttr:
			require.Equal(t, v3, p.Value)
			gotID = true
		}
	}
	require.True(t, gotClass)
	require.True(t, gotID)
}

func TestGetElementByAttr(t *testing.T) {
	s := New()
	root := s.Root()

	idName := s.InternStr("id")
	val := s.InternStr("main")
	attrs := s.InsertAttrs([]AttrPair{{Name: idName, Value: val}})
	want := root.AppendChildElement(s.InternStr("div"), attrs)

	found, ok := s.GetElementByAttr("id", "main")
	require.True(t, ok)
	require.Equal(t, want, found.ID())

	_, ok = s.GetElementByAttr("id", "missing")
	require.False(t, ok)
}

func TestGetElement_UnknownID(t *testing.T) {
	s := New()
	_, ok := s.GetElement(ElementID(9999))
	require.False(t, ok)
}
