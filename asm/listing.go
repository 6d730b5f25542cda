package asm

import (
	"fmt"
	"io"
	"sort"

	"github.com/danielcbailey/mipsasm/isa"
)

type listingWriter struct {
	w     io.Writer
	width int
	err   error
}

func (lw *listingWriter) printf(format string, args ...interface{}) {
	if lw.err != nil {
		return
	}
	line := []rune(fmt.Sprintf(format, args...))
	if lw.width > 0 && len(line) > lw.width {
		line = line[:lw.width]
	}
	_, lw.err = fmt.Fprintln(lw.w, string(line))
}

func numeric(a *Address) uint32 {
	if a == nil {
		return 0
	}
	return a.Numeric
}

// WriteListing prints every segment of p with the address, encoding and
// source form of each entry. Lines wider than width are cut; zero means no
// limit.
func WriteListing(w io.Writer, p *Parsed, width int) error {
	lw := &listingWriter{w: w, width: width}
	for _, k := range []Kind{KindText, KindData, KindKernelText, KindKernelData} {
		if k.IsText() {
			for _, seg := range p.TextSegments(k) {
				lw.printf(".%s 0x%08X", k, numeric(seg.Start))
				for _, e := range seg.Entries {
					writeLabels(lw, e.Addr)
					encoded := "????????"
					if word, err := isa.Encode(e.Inst); err == nil {
						encoded = fmt.Sprintf("%08X", word)
					}
					lw.printf("  0x%08X  %s  %s", numeric(e.Addr), encoded, e.Inst)
				}
			}
			continue
		}
		for _, seg := range p.DataSegments(k) {
			lw.printf(".%s 0x%08X", k, numeric(seg.Start))
			for _, e := range seg.Entries {
				writeLabels(lw, e.Addr)
				lw.printf("  0x%08X  %s", numeric(e.Addr), e.Value)
			}
		}
	}
	return lw.err
}

func writeLabels(lw *listingWriter, a *Address) {
	if a == nil {
		return
	}
	for _, name := range a.Labels {
		lw.printf("%s:", name)
	}
}

// WriteSymbols prints the symbol table ordered by address. The synthesized
// @hi and @lo entries are only included when split is set.
func WriteSymbols(w io.Writer, syms *SymbolTable, split bool) error {
	table := syms.Map()
	names := make([]string, 0, len(table))
	for name := range table {
		if split || !IsSplit(name) {
			names = append(names, name)
		}
	}
	sort.Slice(names, func(i, j int) bool {
		if table[names[i]] != table[names[j]] {
			return table[names[i]] < table[names[j]]
		}
		return names[i] < names[j]
	})
	for _, name := range names {
		if _, err := fmt.Fprintf(w, "0x%08X  %s\n", table[name], name); err != nil {
			return err
		}
	}
	return nil
}
