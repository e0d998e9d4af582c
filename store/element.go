package store

// ElementHandle borrows a Store and the stable id of one element node.
// It must re-resolve the node's current vector index on every access;
// the index is not cached, since sibling-block relocation can move a
// node between calls. See Store.appendChild.
type ElementHandle struct {
	s  *Store
	id ElementID
}

// ID returns the element's stable id.
func (e ElementHandle) ID() ElementID { return e.id }

// Valid reports whether the element is still live (its id has not been
// invalidated by a sibling-block relocation it was a member of).
func (e ElementHandle) Valid() bool {
	_, ok := e.idx()
	return ok
}

func (e ElementHandle) idx() (int, bool) {
	return e.s.findIndexByID(NodeID(e.id))
}

func (e ElementHandle) node() *node {
	i, ok := e.idx()
	if !ok {
		panic("store: stale element handle")
	}
	return &e.s.nodes[i]
}

// Name returns the text-range id of the element's tag name.
func (e ElementHandle) Name() RangeID { return e.node().name }

// Attrs returns the attr-range id of the element's attribute list.
func (e ElementHandle) Attrs() RangeID { return e.node().attrs }

// ChildIndices returns the half-open node-vector range currently
// occupied by the element's children.
func (e ElementHandle) ChildIndices() (start, end int) {
	r := e.s.ranges[e.node().kids]
	return r.start, r.end
}

// Children returns the stable ids of the element's children in order.
// The ids carry no node kind; callers tell elements from text nodes
// with Store.GetElement and Store.GetText.
func (e ElementHandle) Children() []NodeID {
	start, end := e.ChildIndices()
	ids := make([]NodeID, 0, end-start)
	for i := start; i < end; i++ {
		n := e.s.nodes[i]
		if n.id == 0 {
			continue
		}
		ids = append(ids, n.id)
	}
	return ids
}

// AppendChildElement appends a new element child with the given interned
// name and attribute list, returning its stable id.
func (e ElementHandle) AppendChildElement(nameID, attrsID RangeID) ElementID {
	i, ok := e.idx()
	if !ok {
		panic("store: AppendChildElement on stale handle")
	}
	id := e.s.appendChild(i, node{kind: kindElement, name: nameID, attrs: attrsID})
	return ElementID(id)
}

// AppendChildText appends a new text child holding str, returning its
// stable id. str is interned directly into the text pool without
// deduplication.
func (e ElementHandle) AppendChildText(str string) TextID {
	i, ok := e.idx()
	if !ok {
		panic("store: AppendChildText on stale handle")
	}
	start := len(e.s.text)
	e.s.text = append(e.s.text, str...)
	rangeID := e.s.addRange(start, len(e.s.text))
	id := e.s.appendChild(i, node{kind: kindText, text: rangeID})
	return TextID(id)
}

// LastChildText returns a handle to the element's last child if, and
// only if, that child is a text node. The tree constructor uses this to
// decide whether a character should extend an existing text node or
// start a new one.
func (e ElementHandle) LastChildText() (TextHandle, bool) {
	start, end := e.ChildIndices()
	if end <= start {
		return TextHandle{}, false
	}
	last := e.s.nodes[end-1]
	if last.id == 0 || last.kind != kindText {
		return TextHandle{}, false
	}
	return TextHandle{s: e.s, id: TextID(last.id)}, true
}

// InsertMissingAttrs merges attrsID's pairs into the element's attribute
// list, keeping only names the element does not already carry. Existing
// attribute values are never overwritten.
func (e ElementHandle) InsertMissingAttrs(attrsID RangeID) {
	i, ok := e.idx()
	if !ok {
		panic("store: InsertMissingAttrs on stale handle")
	}
	existing := e.s.Attrs(e.s.nodes[i].attrs)
	have := make(map[RangeID]bool, len(existing))
	for _, p := range existing {
		have[p.Name] = true
	}

	var toAdd []AttrPair
	for _, p := range e.s.Attrs(attrsID) {
		if !have[p.Name] {
			toAdd = append(toAdd, p)
			have[p.Name] = true
		}
	}
	if len(toAdd) == 0 {
		return
	}
	e.s.appendAttrs(i, toAdd)
}
