package tokenizer

import (
	"fmt"

	"github.com/noxbrowser/htmlcore/loc"
)

// FatalError wraps an unrecoverable failure from the underlying byte
// source (I/O error or invalid UTF-8) with the location the tokenizer
// had reached when it surfaced. Parse errors never produce a
// FatalError; they are absorbed via the documented recovery.
type FatalError struct {
	Loc loc.Location
	Err error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("tokenizer: %s: %v", e.Loc, e.Err)
}

func (e *FatalError) Unwrap() error { return e.Err }
