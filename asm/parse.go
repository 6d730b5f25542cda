package asm

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/danielcbailey/mipsasm/isa"
)

/**
 * Front end
 * Turns assembly source into a Parsed program. Nothing is placed here: labels
 * are only attached to the entry that follows them, and every operand that
 * names a label is left for the resolver.
 *
 * Source before the first segment directive belongs to an implicit .text
 * segment. Data directives keep halfwords and words naturally aligned
 * relative to the start of their segment.
 */

type inputLine struct {
	Contents   string
	LineNumber int
}

type parser struct {
	prog    *Parsed
	text    *TextSegment
	data    *DataSegment
	offset  uint32 //bytes emitted so far in the current data segment
	pending []string
	errs    []error
}

// Parse reads a whole source file from r.
func Parse(r io.Reader) (*Parsed, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return ParseString(string(b))
}

// ParseString parses src. Every bad line is reported; the returned error
// joins one *LineError per line.
func ParseString(src string) (*Parsed, error) {
	p := &parser{prog: new(Parsed)}

	var last inputLine
	for i, raw := range strings.Split(src, "\n") {
		l := inputLine{
			Contents:   strings.Trim(raw, " \t\r\n"),
			LineNumber: i + 1, //lines are 1 indexed
		}
		line := strings.TrimSpace(stripComment(l.Contents))
		if line == "" {
			continue
		}
		last = l

		labels, rest, err := splitLabels(line)
		if err != nil {
			p.report(l, err)
			continue
		}
		p.pending = append(p.pending, labels...)
		if rest == "" {
			continue
		}

		if rest[0] == '.' {
			err = p.directive(rest, l.LineNumber)
		} else {
			err = p.instruction(rest, l.LineNumber)
		}
		if err != nil {
			p.report(l, err)
		}
	}

	if len(p.pending) > 0 {
		p.report(last, fmt.Errorf("labels %s are not followed by an instruction or data", strings.Join(p.pending, ", ")))
	}
	if len(p.errs) > 0 {
		return nil, errors.Join(p.errs...)
	}
	return p.prog, nil
}

func (p *parser) report(l inputLine, err error) {
	p.errs = append(p.errs, &LineError{Line: l.LineNumber, Contents: l.Contents, Err: err})
}

// takeLabels hands the labels seen since the last entry to the next one.
func (p *parser) takeLabels() *Address {
	if len(p.pending) == 0 {
		return nil
	}
	a := Labeled(p.pending...)
	p.pending = nil
	return a
}

// startSegment opens a new segment of kind k. Pending labels carry over to
// its first entry.
func (p *parser) startSegment(k Kind, start *Address) {
	p.text, p.data, p.offset = nil, nil, 0
	switch k {
	case KindText:
		p.text = &TextSegment{Start: start}
		p.prog.Text = append(p.prog.Text, p.text)
	case KindKernelText:
		p.text = &TextSegment{Start: start}
		p.prog.KernelText = append(p.prog.KernelText, p.text)
	case KindData:
		p.data = &DataSegment{Start: start}
		p.prog.Data = append(p.prog.Data, p.data)
	case KindKernelData:
		p.data = &DataSegment{Start: start}
		p.prog.KernelData = append(p.prog.KernelData, p.data)
	}
}

var segmentDirectives = map[string]Kind{
	".text":  KindText,
	".data":  KindData,
	".ktext": KindKernelText,
	".kdata": KindKernelData,
}

func (p *parser) directive(s string, line int) error {
	name, args := s, ""
	if i := strings.IndexAny(s, " \t"); i >= 0 {
		name, args = s[:i], strings.TrimSpace(s[i+1:])
	}
	name = strings.ToLower(name)

	if k, ok := segmentDirectives[name]; ok {
		if len(p.pending) > 0 {
			labels := strings.Join(p.pending, ", ")
			p.pending = nil
			return fmt.Errorf("labels %s must be followed by an instruction or data in the same segment", labels)
		}
		start := &Address{}
		if args != "" {
			v, err := parseNumber(args, 1, math.MaxUint32)
			if err != nil {
				return fmt.Errorf("%s start address: %w", name, err)
			}
			start.Numeric = uint32(v)
		}
		p.startSegment(k, start)
		return nil
	}

	switch name {
	case ".globl", ".global", ".extern", ".set":
		//accepted for compatibility, nothing to do
		return nil
	case ".align":
		n, err := parseNumber(args, 0, 12)
		if err != nil {
			return fmt.Errorf(".align: %w", err)
		}
		if p.data == nil {
			if n > 2 {
				return fmt.Errorf(".align %d is not supported in a text segment", n)
			}
			return nil
		}
		p.pad(1<<n, line)
		return nil
	}

	if p.data == nil {
		return fmt.Errorf("%s is only allowed in a data segment", name)
	}

	switch name {
	case ".byte":
		values, err := parseList(args, math.MinInt8, math.MaxUint8)
		if err != nil {
			return err
		}
		b := Bytes{Values: make([]byte, len(values))}
		for i, v := range values {
			b.Values[i] = byte(v)
		}
		p.addData(b, line)
	case ".half", ".halfword":
		values, err := parseList(args, math.MinInt16, math.MaxUint16)
		if err != nil {
			return err
		}
		h := Halfs{Values: make([]uint16, len(values))}
		for i, v := range values {
			h.Values[i] = uint16(v)
		}
		p.pad(2, line)
		p.addData(h, line)
	case ".word":
		values, err := parseList(args, math.MinInt32, math.MaxUint32)
		if err != nil {
			return err
		}
		w := Words{Values: make([]uint32, len(values))}
		for i, v := range values {
			w.Values[i] = uint32(v)
		}
		p.pad(4, line)
		p.addData(w, line)
	case ".space":
		n, err := parseNumber(args, 0, math.MaxInt32)
		if err != nil {
			return fmt.Errorf(".space: %w", err)
		}
		p.addData(Space{N: uint32(n)}, line)
	case ".ascii", ".asciiz":
		chars, err := strconv.Unquote(args)
		if err != nil || !strings.HasPrefix(args, "\"") {
			return fmt.Errorf("%s expects a double quoted string, got %q", name, args)
		}
		p.addData(CString{Chars: chars, NullTerminated: name == ".asciiz"}, line)
	default:
		return fmt.Errorf("invalid directive %q. Valid data directives are .byte, .half, .word, .space, .ascii, .asciiz and .align", name)
	}
	return nil
}

func (p *parser) addData(v Data, line int) {
	p.data.Entries = append(p.data.Entries, DataEntry{Addr: p.takeLabels(), Value: v, Line: line})
	p.offset += v.Size()
}

// pad inserts unlabeled zero bytes up to the next multiple of align.
func (p *parser) pad(align uint32, line int) {
	if r := p.offset % align; r != 0 {
		p.data.Entries = append(p.data.Entries, DataEntry{Value: Space{N: align - r}, Line: line})
		p.offset += align - r
	}
}

func (p *parser) instruction(s string, line int) error {
	if p.text == nil {
		if p.data != nil {
			return fmt.Errorf("instructions are only allowed in a text segment")
		}
		p.startSegment(KindText, &Address{})
	}
	addr := p.takeLabels()
	inst, err := parseInstruction(s)
	if err != nil {
		return err
	}
	p.text.Entries = append(p.text.Entries, TextEntry{Addr: addr, Inst: inst, Line: line})
	return nil
}

// stripComment cuts s at the first '#' outside a string or character
// literal.
func stripComment(s string) string {
	var quote byte
	escaped := false
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case escaped:
			escaped = false
		case quote != 0 && c == '\\':
			escaped = true
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '#':
			return s[:i]
		}
	}
	return s
}

// splitOperands splits s at commas outside quotes and drops whitespace that
// is not quoted, so "8 ($sp)" and "8($sp)" read the same.
func splitOperands(s string) []string {
	var (
		fields  []string
		field   strings.Builder
		quote   byte
		escaped bool
	)
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case quote != 0 && c == '\\':
			escaped = true
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == ',':
			fields = append(fields, field.String())
			field.Reset()
			continue
		case c == ' ' || c == '\t':
			continue
		}
		field.WriteByte(c)
	}
	return append(fields, field.String())
}

// splitLabels peels "name:" prefixes off a line.
func splitLabels(line string) ([]string, string, error) {
	var labels []string
	for {
		i := strings.Index(line, ":")
		if i < 0 {
			break
		}
		name := strings.TrimSpace(line[:i])
		if !isIdent(name) {
			if strings.ContainsAny(line[:i], " \t\"'") {
				//the colon belongs to an operand
				break
			}
			return nil, "", fmt.Errorf("%q is not a valid label name", name)
		}
		labels = append(labels, name)
		line = strings.TrimSpace(line[i+1:])
	}
	return labels, line, nil
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, c := range s {
		switch {
		case c == '_' || c == '.' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z'):
		case i > 0 && c >= '0' && c <= '9':
		default:
			return false
		}
	}
	return true
}

// isSymbol reports whether an operand names a label, optionally with an
// @hi or @lo suffix.
func isSymbol(s string) bool {
	return isIdent(strings.TrimSuffix(strings.TrimSuffix(s, HiSuffix), LoSuffix))
}

// parseNumber accepts decimal, 0x, 0o and 0b literals with an optional sign,
// and single quoted characters.
func parseNumber(s string, lo, hi int64) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("expected a literal, got nothing")
	}

	var v int64
	if s[0] == '\'' {
		c, err := strconv.Unquote(s)
		if err != nil || len([]rune(c)) != 1 {
			return 0, fmt.Errorf("%s is not a valid character literal", s)
		}
		v = int64([]rune(c)[0])
	} else {
		var err error
		v, err = strconv.ParseInt(s, 0, 64)
		if err != nil {
			return 0, fmt.Errorf("%q is not a valid number", s)
		}
	}

	if v < lo || v > hi {
		return 0, fmt.Errorf("%w: %s is outside [%d, %d]", ErrFieldOverflow, s, lo, hi)
	}
	return v, nil
}

func parseList(s string, lo, hi int64) ([]int64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, fmt.Errorf("expected a comma separated list of values, got nothing")
	}
	parts := splitOperands(s)
	values := make([]int64, len(parts))
	for i, part := range parts {
		v, err := parseNumber(part, lo, hi)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}

func parseImmediate16(s string) (uint16, error) {
	v, err := parseNumber(s, math.MinInt16, math.MaxUint16)
	if err != nil {
		return 0, err
	}
	return uint16(v), nil
}

// operands checks that fields matches the operand form of an instruction.
func operands(mnemonic string, fields []string, form string) error {
	want := 0
	if form != "" {
		want = strings.Count(form, ",") + 1
	}
	if len(fields) != want {
		if want == 0 {
			return fmt.Errorf("%s takes no operands", mnemonic)
		}
		return fmt.Errorf("%s must be in the form \"%s %s\"", mnemonic, mnemonic, form)
	}
	return nil
}

func registers(fields ...string) ([]isa.Reg, error) {
	regs := make([]isa.Reg, len(fields))
	for i, f := range fields {
		r, err := isa.ParseReg(f)
		if err != nil {
			return nil, err
		}
		regs[i] = r
	}
	return regs, nil
}

func parseInstruction(s string) (isa.Instruction, error) {
	//obtaining the op code and comma separated fields
	opcode, rest := s, ""
	if i := strings.IndexAny(s, " \t"); i >= 0 {
		opcode, rest = s[:i], strings.TrimSpace(s[i+1:])
	}
	mnemonic := strings.ToLower(opcode)
	var fields []string
	if rest != "" {
		fields = splitOperands(rest)
	}

	if mnemonic == "nop" {
		if err := operands(mnemonic, fields, ""); err != nil {
			return nil, err
		}
		return isa.Nop, nil
	}
	if f, ok := isa.LookupR(mnemonic); ok {
		return parseR(f, fields)
	}
	if op, ok := isa.LookupI(mnemonic); ok {
		return parseI(op, fields)
	}
	if op, ok := isa.LookupJ(mnemonic); ok {
		if err := operands(mnemonic, fields, "label"); err != nil {
			return nil, err
		}
		if isSymbol(fields[0]) {
			return isa.JTypeLabel{Op: op, Label: fields[0]}, nil
		}
		v, err := parseNumber(fields[0], -1<<25, 1<<25-1)
		if err != nil {
			return nil, err
		}
		return isa.JType{Op: op, Target: uint32(v) & isa.TargetMask}, nil
	}
	return nil, fmt.Errorf("invalid opcode %q", opcode)
}

func parseR(f isa.Funct, fields []string) (isa.Instruction, error) {
	name := f.String()
	switch f.Format() {
	case isa.FormatRdRsRt:
		if err := operands(name, fields, "$rd, $rs, $rt"); err != nil {
			return nil, err
		}
		regs, err := registers(fields...)
		if err != nil {
			return nil, err
		}
		return isa.RType{Funct: f, Rd: regs[0], Rs: regs[1], Rt: regs[2]}, nil
	case isa.FormatShift:
		if err := operands(name, fields, "$rd, $rt, shamt"); err != nil {
			return nil, err
		}
		regs, err := registers(fields[:2]...)
		if err != nil {
			return nil, err
		}
		shamt, err := parseNumber(fields[2], 0, 31)
		if err != nil {
			return nil, fmt.Errorf("cannot shift by more than 31 bits and cannot be a negative number: %w", err)
		}
		return isa.RType{Funct: f, Rd: regs[0], Rt: regs[1], Shamt: uint8(shamt)}, nil
	case isa.FormatShiftVar:
		if err := operands(name, fields, "$rd, $rt, $rs"); err != nil {
			return nil, err
		}
		regs, err := registers(fields...)
		if err != nil {
			return nil, err
		}
		return isa.RType{Funct: f, Rd: regs[0], Rt: regs[1], Rs: regs[2]}, nil
	case isa.FormatRs:
		if err := operands(name, fields, "$rs"); err != nil {
			return nil, err
		}
		regs, err := registers(fields...)
		if err != nil {
			return nil, err
		}
		return isa.RType{Funct: f, Rs: regs[0]}, nil
	case isa.FormatRdRs:
		if len(fields) == 1 {
			//jalr $rs links through $ra
			fields = []string{isa.RA.String(), fields[0]}
		}
		if err := operands(name, fields, "$rd, $rs"); err != nil {
			return nil, err
		}
		regs, err := registers(fields...)
		if err != nil {
			return nil, err
		}
		return isa.RType{Funct: f, Rd: regs[0], Rs: regs[1]}, nil
	case isa.FormatRsRt:
		if err := operands(name, fields, "$rs, $rt"); err != nil {
			return nil, err
		}
		regs, err := registers(fields...)
		if err != nil {
			return nil, err
		}
		return isa.RType{Funct: f, Rs: regs[0], Rt: regs[1]}, nil
	case isa.FormatRd:
		if err := operands(name, fields, "$rd"); err != nil {
			return nil, err
		}
		regs, err := registers(fields...)
		if err != nil {
			return nil, err
		}
		return isa.RType{Funct: f, Rd: regs[0]}, nil
	}
	if err := operands(name, fields, ""); err != nil {
		return nil, err
	}
	return isa.RType{Funct: f}, nil
}

func parseI(op isa.IOp, fields []string) (isa.Instruction, error) {
	name := op.String()
	switch op.Format() {
	case isa.FormatArithImm:
		if err := operands(name, fields, "$rt, $rs, imm"); err != nil {
			return nil, err
		}
		regs, err := registers(fields[:2]...)
		if err != nil {
			return nil, err
		}
		return immediateOperand(op, regs[1], regs[0], fields[2])
	case isa.FormatUpperImm:
		if err := operands(name, fields, "$rt, imm"); err != nil {
			return nil, err
		}
		regs, err := registers(fields[0])
		if err != nil {
			return nil, err
		}
		return immediateOperand(op, isa.Zero, regs[0], fields[1])
	case isa.FormatBranch:
		if err := operands(name, fields, "$rs, $rt, label"); err != nil {
			return nil, err
		}
		regs, err := registers(fields[:2]...)
		if err != nil {
			return nil, err
		}
		return immediateOperand(op, regs[0], regs[1], fields[2])
	case isa.FormatBranchZ:
		if err := operands(name, fields, "$rs, label"); err != nil {
			return nil, err
		}
		regs, err := registers(fields[0])
		if err != nil {
			return nil, err
		}
		return immediateOperand(op, regs[0], isa.Zero, fields[1])
	case isa.FormatMem:
		if err := operands(name, fields, "$rt, offset($rs)"); err != nil {
			return nil, err
		}
		regs, err := registers(fields[0])
		if err != nil {
			return nil, err
		}
		offset, base := fields[1], isa.Zero
		if i := strings.Index(offset, "("); i >= 0 {
			if !strings.HasSuffix(offset, ")") {
				return nil, fmt.Errorf("invalid format, missing closing parenthesis in %q", fields[1])
			}
			if base, err = isa.ParseReg(offset[i+1 : len(offset)-1]); err != nil {
				return nil, err
			}
			offset = offset[:i]
		}
		if offset == "" {
			offset = "0"
		}
		return immediateOperand(op, base, regs[0], offset)
	case isa.FormatLoadAddr:
		if err := operands(name, fields, "$rt, value"); err != nil {
			return nil, err
		}
		regs, err := registers(fields[0])
		if err != nil {
			return nil, err
		}
		if strings.HasSuffix(fields[1], HiSuffix) || strings.HasSuffix(fields[1], LoSuffix) {
			return nil, fmt.Errorf("%s loads a whole address, use %s without %s or %s",
				name, strings.TrimSuffix(strings.TrimSuffix(fields[1], HiSuffix), LoSuffix), HiSuffix, LoSuffix)
		}
		if isSymbol(fields[1]) {
			return isa.ITypeLabel{Op: op, Rt: regs[0], Label: fields[1]}, nil
		}
		if op == isa.OpLA {
			return nil, fmt.Errorf("la expects a label, got %q", fields[1])
		}
		v, err := parseNumber(fields[1], math.MinInt32, math.MaxUint32)
		if err != nil {
			return nil, err
		}
		return isa.LoadImmediate{Op: op, Rt: regs[0], Value: uint32(v)}, nil
	}
	return nil, fmt.Errorf("invalid opcode %q", name)
}

// immediateOperand builds an I-type instruction whose last operand is
// either a label or a 16 bit literal. For branches a literal is the raw
// word offset.
func immediateOperand(op isa.IOp, rs, rt isa.Reg, operand string) (isa.Instruction, error) {
	if isSymbol(operand) {
		return isa.ITypeLabel{Op: op, Rs: rs, Rt: rt, Label: operand}, nil
	}
	imm, err := parseImmediate16(operand)
	if err != nil {
		return nil, err
	}
	return isa.IType{Op: op, Rs: rs, Rt: rt, Imm: imm}, nil
}
