package asm

import (
	"errors"
	"fmt"
)

// Every error the assembler returns is fatal. The sentinels below let callers
// tell the kinds apart with errors.Is; placement failures and allocator bugs
// come through as memory.ErrNoFit and memory.ErrInvariant.
var (
	ErrSegmentOverflow = errors.New("segment too large")
	ErrDuplicateLabel  = errors.New("redefinition of label")
	ErrUnresolvedLabel = errors.New("unresolved label")
	ErrFieldOverflow   = errors.New("value does not fit into field")
	ErrMisaligned      = errors.New("misaligned segment start")
	ErrUnassigned      = errors.New("entry has no address")
)

// LineError ties an error to the source line it came from.
type LineError struct {
	Line     int
	Contents string
	Err      error
}

func (e *LineError) Error() string {
	contents := e.Contents
	if len(contents) > 64 {
		contents = contents[:64]
	}
	return fmt.Sprintf("%d (%s): %v", e.Line, contents, e.Err)
}

func (e *LineError) Unwrap() error { return e.Err }

// atLine prefixes err with a source line number when one is known.
func atLine(line int, err error) error {
	if line <= 0 {
		return err
	}
	return fmt.Errorf("line %d: %w", line, err)
}
