package asm

import (
	"fmt"
	"io"

	"github.com/danielcbailey/mipsasm/isa"
	"github.com/danielcbailey/mipsasm/memory"
)

// Emit encodes a resolved program into a memory image. Instructions are
// stored as words, data entries byte by byte in little-endian order.
func Emit(p *Parsed) (memory.Image, error) {
	img := memory.NewImage()
	for _, segs := range [][]*TextSegment{p.Text, p.KernelText} {
		for _, seg := range segs {
			for _, e := range seg.Entries {
				if !e.Addr.Resolved() {
					return nil, atLine(e.Line, fmt.Errorf("%w: %s", ErrUnassigned, e.Inst))
				}
				word, err := isa.Encode(e.Inst)
				if err != nil {
					return nil, atLine(e.Line, err)
				}
				if err := img.StoreWord(e.Addr.Numeric, word); err != nil {
					return nil, atLine(e.Line, err)
				}
			}
		}
	}
	for _, segs := range [][]*DataSegment{p.Data, p.KernelData} {
		for _, seg := range segs {
			for _, e := range seg.Entries {
				if e.Value.Size() == 0 {
					continue
				}
				if !e.Addr.Resolved() {
					return nil, atLine(e.Line, fmt.Errorf("%w: %s", ErrUnassigned, e.Value))
				}
				img.StoreBytes(e.Addr.Numeric, e.Value.Encode())
			}
		}
	}
	return img, nil
}

// Program is the result of assembling one source file.
type Program struct {
	*Parsed
	Symbols *SymbolTable
	Image   memory.Image
}

// Assemble runs the whole pipeline on the source read from r: parse,
// resolve and emit.
func Assemble(r io.Reader, cfg Config) (*Program, error) {
	parsed, err := Parse(r)
	if err != nil {
		return nil, err
	}
	syms, err := Resolve(parsed, cfg)
	if err != nil {
		return nil, err
	}
	img, err := Emit(parsed)
	if err != nil {
		return nil, err
	}
	return &Program{Parsed: parsed, Symbols: syms, Image: img}, nil
}
