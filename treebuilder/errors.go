package treebuilder

import (
	"errors"
	"fmt"

	"github.com/noxbrowser/htmlcore/loc"
)

// ErrUnsupportedConstruct is returned when parsing reaches a construct
// this core does not model: table/select/template content or foreign
// (SVG/MathML) content, all of which need insertion modes this state
// machine never enters. The tokenizer and tree constructor otherwise
// stay total; this is the one documented place parsing gives up rather
// than guessing at unspecified behavior.
var ErrUnsupportedConstruct = errors.New("treebuilder: unsupported construct")

// FatalError wraps a tokenizer fatal error (or ErrUnsupportedConstruct)
// with the location the tree constructor had reached, mirroring
// tokenizer.FatalError's shape.
type FatalError struct {
	Loc loc.Location
	Err error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("treebuilder: %s: %v", e.Loc, e.Err)
}

func (e *FatalError) Unwrap() error { return e.Err }
