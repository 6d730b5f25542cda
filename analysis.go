package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/danielcbailey/mipsasm/asm"
	"github.com/danielcbailey/mipsasm/isa"
)

// Summary is the static picture of an assembled program.
type Summary struct {
	Segments     map[asm.Kind]int
	Instructions int
	DataBytes    uint32
	Symbols      int
	Opcodes      map[string]int
}

func analyze(prog *asm.Program) Summary {
	s := Summary{
		Segments: make(map[asm.Kind]int),
		Opcodes:  make(map[string]int),
	}
	for _, k := range []asm.Kind{asm.KindText, asm.KindKernelText} {
		for _, seg := range prog.TextSegments(k) {
			s.Segments[k]++
			s.Instructions += len(seg.Entries)
			for _, e := range seg.Entries {
				name := isa.Mnemonic(e.Inst)
				if e.Inst == isa.Nop {
					name = "nop"
				}
				s.Opcodes[name]++
			}
		}
	}
	for _, k := range []asm.Kind{asm.KindData, asm.KindKernelData} {
		for _, seg := range prog.DataSegments(k) {
			s.Segments[k]++
			s.DataBytes += seg.Size()
		}
	}
	for _, name := range prog.Symbols.Names() {
		if !asm.IsSplit(name) {
			s.Symbols++
		}
	}
	return s
}

func displayGeneralResults(w io.Writer, fName string, s Summary, detailed bool) {
	fmt.Fprintln(w, "+====[ ASSEMBLY RESULTS ]====+")
	fmt.Fprintf(w, "Assembly of %s.\n", fName)
	fmt.Fprintf(w, "Summary:\n")
	for _, k := range []asm.Kind{asm.KindText, asm.KindData, asm.KindKernelText, asm.KindKernelData} {
		if n := s.Segments[k]; n > 0 {
			fmt.Fprintf(w, " - %d %s segment(s)\n", n, k)
		}
	}
	fmt.Fprintf(w, " - %d SI; %d bytes of data; %d label(s)\n", s.Instructions, s.DataBytes, s.Symbols)

	if !detailed || s.Instructions == 0 {
		return
	}
	names := make([]string, 0, len(s.Opcodes))
	for name := range s.Opcodes {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if s.Opcodes[names[i]] != s.Opcodes[names[j]] {
			return s.Opcodes[names[i]] > s.Opcodes[names[j]]
		}
		return names[i] < names[j]
	})
	fmt.Fprintf(w, "\nOp-code usage:\n")
	for _, name := range names {
		n := s.Opcodes[name]
		fmt.Fprintf(w, " - %s: %d (%.3f%%)\n", name, n, float64(n)/float64(s.Instructions)*100)
	}
}
