package asm

import "github.com/danielcbailey/mipsasm/isa"

// ExpandPseudo rewrites every la and li in the text segments of p into a
// lui/ori pair. A label on the pseudo instruction stays on the lui.
func ExpandPseudo(p *Parsed) {
	for _, segs := range [][]*TextSegment{p.Text, p.KernelText} {
		for _, seg := range segs {
			seg.Entries = expandEntries(seg.Entries)
		}
	}
}

func expandEntries(entries []TextEntry) []TextEntry {
	out := make([]TextEntry, 0, len(entries))
	for _, e := range entries {
		switch inst := e.Inst.(type) {
		case isa.ITypeLabel:
			if inst.Op.IsPseudo() {
				out = append(out,
					TextEntry{Addr: e.Addr, Line: e.Line, Inst: isa.ITypeLabel{Op: isa.OpLUI, Rt: inst.Rt, Label: inst.Label + HiSuffix}},
					TextEntry{Line: e.Line, Inst: isa.ITypeLabel{Op: isa.OpORI, Rs: inst.Rt, Rt: inst.Rt, Label: inst.Label + LoSuffix}},
				)
				continue
			}
		case isa.LoadImmediate:
			out = append(out, splitImmediate(e, inst.Rt, inst.Value)...)
			continue
		case isa.IType:
			if inst.Op.IsPseudo() {
				out = append(out, splitImmediate(e, inst.Rt, uint32(inst.Imm))...)
				continue
			}
		}
		out = append(out, e)
	}
	return out
}

func splitImmediate(e TextEntry, rt isa.Reg, value uint32) []TextEntry {
	return []TextEntry{
		{Addr: e.Addr, Line: e.Line, Inst: isa.IType{Op: isa.OpLUI, Rt: rt, Imm: uint16(value >> 16)}},
		{Line: e.Line, Inst: isa.IType{Op: isa.OpORI, Rs: rt, Rt: rt, Imm: uint16(value)}},
	}
}
