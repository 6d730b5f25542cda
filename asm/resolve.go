package asm

import (
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/danielcbailey/mipsasm/isa"
	"github.com/danielcbailey/mipsasm/memory"
)

// segmentAlign keeps every data segment start on a doubleword boundary when
// segments are packed back to back.
const segmentAlign = 8

// Resolve expands pseudo instructions, lays out every segment inside its
// configured region, assigns addresses to all entries and replaces label
// operands with numeric ones. It returns the symbol table, including the
// @hi and @lo halves of every label.
//
// The four categories are laid out and addressed concurrently. Label
// substitution only starts once every label is known.
func Resolve(p *Parsed, cfg Config) (*SymbolTable, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	ExpandPseudo(p)

	syms := NewSymbolTable()
	var g errgroup.Group
	for _, k := range []Kind{KindText, KindKernelText} {
		k := k
		segs, region := p.TextSegments(k), cfg.Region(k)
		g.Go(func() error {
			if err := layout(segs, k, region); err != nil {
				return err
			}
			for _, seg := range segs {
				if err := addressText(seg, region, syms); err != nil {
					return err
				}
			}
			return nil
		})
	}
	for _, k := range []Kind{KindData, KindKernelData} {
		k := k
		segs, region := p.DataSegments(k), cfg.Region(k)
		g.Go(func() error {
			if err := layout(segs, k, region); err != nil {
				return err
			}
			for _, seg := range segs {
				if err := addressData(seg, region, syms); err != nil {
					return err
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, segs := range [][]*TextSegment{p.Text, p.KernelText} {
		for _, seg := range segs {
			if err := substitute(seg, syms); err != nil {
				return nil, err
			}
		}
	}
	return syms, nil
}

// layout places the segments of one category. Segments with a numeric
// start keep it; the others go first-fit into what is left. Empty segments
// take no space and start at their requested address or the region start.
func layout[S placeable](segs []S, k Kind, region memory.Region) error {
	align := uint32(segmentAlign)
	if k.IsText() {
		align = 4
	}

	positions := make([]memory.Position, 0, len(segs))
	for i, seg := range segs {
		start := seg.startAddress()
		size := alignUp(seg.Size(), align)
		if size == 0 {
			if !start.Resolved() {
				seg.setStart(region.Start)
			}
			continue
		}
		if !start.Resolved() {
			positions = append(positions, memory.Anywhere(size, i))
			continue
		}
		if k.IsText() && start.Numeric%4 != 0 {
			return fmt.Errorf("%w: %s segment at 0x%08X is not word aligned", ErrMisaligned, k, start.Numeric)
		}
		positions = append(positions, memory.At(start.Numeric, size, i))
	}
	if len(positions) == 0 {
		return nil
	}

	ranges, err := memory.Layout(positions, region.Start, region.Last())
	if err != nil {
		return fmt.Errorf("laying out %s segments in %s: %w", k, region, err)
	}
	for _, r := range ranges {
		if r.Status == memory.Allocated {
			segs[r.Owner].setStart(r.Lower)
		}
	}
	return nil
}

// addressText gives each instruction in seg its address and records its
// labels.
func addressText(seg *TextSegment, region memory.Region, syms *SymbolTable) error {
	addr := uint64(seg.Start.Numeric)
	for i := range seg.Entries {
		e := &seg.Entries[i]
		if addr+4 > uint64(region.End) {
			return atLine(e.Line, fmt.Errorf("%w: text segment at 0x%08X runs past the end of %s",
				ErrSegmentOverflow, seg.Start.Numeric, region))
		}
		e.Addr = place(e.Addr, uint32(addr))
		for _, name := range e.Addr.Labels {
			if err := syms.DefineSplit(name, uint32(addr)); err != nil {
				return atLine(e.Line, err)
			}
		}
		addr += 4
	}
	return nil
}

func addressData(seg *DataSegment, region memory.Region, syms *SymbolTable) error {
	addr := uint64(seg.Start.Numeric)
	for i := range seg.Entries {
		e := &seg.Entries[i]
		size := uint64(e.Value.Size())
		if addr+size > uint64(region.End) {
			return atLine(e.Line, fmt.Errorf("%w: data segment at 0x%08X runs past the end of %s",
				ErrSegmentOverflow, seg.Start.Numeric, region))
		}
		e.Addr = place(e.Addr, uint32(addr))
		for _, name := range e.Addr.Labels {
			if err := syms.DefineSplit(name, uint32(addr)); err != nil {
				return atLine(e.Line, err)
			}
		}
		addr += size
	}
	return nil
}

// substitute replaces every label operand in seg with its numeric value.
func substitute(seg *TextSegment, syms *SymbolTable) error {
	for i := range seg.Entries {
		e := &seg.Entries[i]
		at := e.Addr.Numeric
		switch inst := e.Inst.(type) {
		case isa.ITypeLabel:
			target, ok := syms.Lookup(inst.Label)
			if !ok {
				return atLine(e.Line, fmt.Errorf("%w: %s", ErrUnresolvedLabel, inst.Label))
			}
			var imm uint32
			if inst.Op.NeedsOffset() {
				var err error
				if imm, err = calculateOffset(target, at, 16); err != nil {
					return atLine(e.Line, fmt.Errorf("%s to %s: %w", inst.Op, inst.Label, err))
				}
			} else {
				if target > 0xFFFF {
					return atLine(e.Line, fmt.Errorf("%w: %s = 0x%X needs more than 16 bits",
						ErrFieldOverflow, inst.Label, target))
				}
				imm = target
			}
			e.Inst = isa.IType{Op: inst.Op, Rs: inst.Rs, Rt: inst.Rt, Imm: uint16(imm)}
		case isa.JTypeLabel:
			target, ok := syms.Lookup(inst.Label)
			if !ok {
				return atLine(e.Line, fmt.Errorf("%w: %s", ErrUnresolvedLabel, inst.Label))
			}
			imm, err := calculateOffset(target, at, 26)
			if err != nil {
				return atLine(e.Line, fmt.Errorf("%s to %s: %w", inst.Op, inst.Label, err))
			}
			e.Inst = isa.JType{Op: inst.Op, Target: imm}
		}
	}
	return nil
}

// calculateOffset returns the signed word distance from inst to label,
// truncated to bits. It fails when the distance does not fit.
func calculateOffset(label, inst uint32, bits uint) (uint32, error) {
	offset := int64(int32(label-inst)) >> 2
	limit := int64(1) << (bits - 1)
	if offset < -limit || offset >= limit {
		return 0, fmt.Errorf("%w: offset %d from 0x%08X to 0x%08X needs more than %d bits",
			ErrFieldOverflow, offset, inst, label, bits)
	}
	return uint32(offset) & (1<<bits - 1), nil
}
