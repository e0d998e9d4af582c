// Package query evaluates a boolean expression over every element in a
// parsed document, the query half of a grep-for-HTML tool.
package query

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/noxbrowser/htmlcore/store"
)

// env is the per-element binding exposed to a compiled expression:
// the element's tag name, its attributes, and the concatenation of
// its direct text children.
type env struct {
	Name  string            `expr:"name"`
	Attrs map[string]string `expr:"attrs"`
	Text  string            `expr:"text"`
}

// Eval compiles expr once and runs it against every live element
// reachable from the document root, in document order, returning the
// ids for which it evaluates to true. It never mutates st.
func Eval(st *store.Store, exprStr string) ([]store.ElementID, error) {
	program, err := expr.Compile(exprStr, expr.Env(env{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("query: compile: %w", err)
	}

	var matches []store.ElementID
	var walk func(e store.ElementHandle) error
	walk = func(e store.ElementHandle) error {
		for _, id := range e.Children() {
			child, ok := st.GetElement(store.ElementID(id))
			if !ok {
				continue
			}
			ok, err := evalElement(program, st, child)
			if err != nil {
				return err
			}
			if ok {
				matches = append(matches, child.ID())
			}
			if err := walk(child); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(st.Root()); err != nil {
		return nil, err
	}
	return matches, nil
}

func evalElement(program *vm.Program, st *store.Store, e store.ElementHandle) (bool, error) {
	attrs := make(map[string]string)
	for _, p := range st.Attrs(e.Attrs()) {
		attrs[st.Text(p.Name)] = st.Text(p.Value)
	}

	var text string
	for _, id := range e.Children() {
		if t, ok := st.GetText(store.TextID(id)); ok {
			text += t.Text()
		}
	}

	out, err := vm.Run(program, env{Name: st.Text(e.Name()), Attrs: attrs, Text: text})
	if err != nil {
		return false, fmt.Errorf("query: eval: %w", err)
	}
	b, _ := out.(bool)
	return b, nil
}
