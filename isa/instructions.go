package isa

import (
	"fmt"
	"strings"
)

// Format says which operands an instruction takes and in which order they
// are written in source.
type Format int

const (
	FormatNone     Format = iota
	FormatRdRsRt          // add $rd, $rs, $rt
	FormatShift           // sll $rd, $rt, shamt
	FormatShiftVar        // sllv $rd, $rt, $rs
	FormatRs              // jr $rs
	FormatRdRs            // jalr $rd, $rs
	FormatRsRt            // mult $rs, $rt
	FormatRd              // mfhi $rd
	FormatArithImm        // addi $rt, $rs, imm
	FormatUpperImm        // lui $rt, imm
	FormatBranch          // beq $rs, $rt, label
	FormatBranchZ         // blez $rs, label
	FormatMem             // lw $rt, imm($rs)
	FormatLoadAddr        // la $rt, label
	FormatJump            // j label
)

// Funct is the function field of an R-type instruction. Every R-type
// instruction here uses the SPECIAL (0) opcode.
type Funct uint8

const (
	FnSLL     Funct = 0x00
	FnSRL     Funct = 0x02
	FnSRA     Funct = 0x03
	FnSLLV    Funct = 0x04
	FnSRLV    Funct = 0x06
	FnSRAV    Funct = 0x07
	FnJR      Funct = 0x08
	FnJALR    Funct = 0x09
	FnSYSCALL Funct = 0x0C
	FnBREAK   Funct = 0x0D
	FnMFHI    Funct = 0x10
	FnMTHI    Funct = 0x11
	FnMFLO    Funct = 0x12
	FnMTLO    Funct = 0x13
	FnMULT    Funct = 0x18
	FnMULTU   Funct = 0x19
	FnDIV     Funct = 0x1A
	FnDIVU    Funct = 0x1B
	FnADD     Funct = 0x20
	FnADDU    Funct = 0x21
	FnSUB     Funct = 0x22
	FnSUBU    Funct = 0x23
	FnAND     Funct = 0x24
	FnOR      Funct = 0x25
	FnXOR     Funct = 0x26
	FnNOR     Funct = 0x27
	FnSLT     Funct = 0x2A
	FnSLTU    Funct = 0x2B
)

// IOp is the opcode of an I-type instruction. Values above 0x3F are
// assembler pseudo instructions and have no machine encoding.
type IOp uint8

const (
	OpBLEZ  IOp = 0x06
	OpBGTZ  IOp = 0x07
	OpBEQ   IOp = 0x04
	OpBNE   IOp = 0x05
	OpADDI  IOp = 0x08
	OpADDIU IOp = 0x09
	OpSLTI  IOp = 0x0A
	OpSLTIU IOp = 0x0B
	OpANDI  IOp = 0x0C
	OpORI   IOp = 0x0D
	OpXORI  IOp = 0x0E
	OpLUI   IOp = 0x0F
	OpLB    IOp = 0x20
	OpLH    IOp = 0x21
	OpLW    IOp = 0x23
	OpLBU   IOp = 0x24
	OpLHU   IOp = 0x25
	OpSB    IOp = 0x28
	OpSH    IOp = 0x29
	OpSW    IOp = 0x2B
	OpLL    IOp = 0x30
	OpSC    IOp = 0x38

	OpLA IOp = 0x41
	OpLI IOp = 0x42
)

// JOp is the opcode of a J-type instruction.
type JOp uint8

const (
	OpJ   JOp = 0x02
	OpJAL JOp = 0x03
)

type opInfo struct {
	name   string
	format Format
}

var functTable = map[Funct]opInfo{
	FnSLL:     {"sll", FormatShift},
	FnSRL:     {"srl", FormatShift},
	FnSRA:     {"sra", FormatShift},
	FnSLLV:    {"sllv", FormatShiftVar},
	FnSRLV:    {"srlv", FormatShiftVar},
	FnSRAV:    {"srav", FormatShiftVar},
	FnJR:      {"jr", FormatRs},
	FnJALR:    {"jalr", FormatRdRs},
	FnSYSCALL: {"syscall", FormatNone},
	FnBREAK:   {"break", FormatNone},
	FnMFHI:    {"mfhi", FormatRd},
	FnMTHI:    {"mthi", FormatRs},
	FnMFLO:    {"mflo", FormatRd},
	FnMTLO:    {"mtlo", FormatRs},
	FnMULT:    {"mult", FormatRsRt},
	FnMULTU:   {"multu", FormatRsRt},
	FnDIV:     {"div", FormatRsRt},
	FnDIVU:    {"divu", FormatRsRt},
	FnADD:     {"add", FormatRdRsRt},
	FnADDU:    {"addu", FormatRdRsRt},
	FnSUB:     {"sub", FormatRdRsRt},
	FnSUBU:    {"subu", FormatRdRsRt},
	FnAND:     {"and", FormatRdRsRt},
	FnOR:      {"or", FormatRdRsRt},
	FnXOR:     {"xor", FormatRdRsRt},
	FnNOR:     {"nor", FormatRdRsRt},
	FnSLT:     {"slt", FormatRdRsRt},
	FnSLTU:    {"sltu", FormatRdRsRt},
}

var iopTable = map[IOp]opInfo{
	OpBLEZ:  {"blez", FormatBranchZ},
	OpBGTZ:  {"bgtz", FormatBranchZ},
	OpBEQ:   {"beq", FormatBranch},
	OpBNE:   {"bne", FormatBranch},
	OpADDI:  {"addi", FormatArithImm},
	OpADDIU: {"addiu", FormatArithImm},
	OpSLTI:  {"slti", FormatArithImm},
	OpSLTIU: {"sltiu", FormatArithImm},
	OpANDI:  {"andi", FormatArithImm},
	OpORI:   {"ori", FormatArithImm},
	OpXORI:  {"xori", FormatArithImm},
	OpLUI:   {"lui", FormatUpperImm},
	OpLB:    {"lb", FormatMem},
	OpLH:    {"lh", FormatMem},
	OpLW:    {"lw", FormatMem},
	OpLBU:   {"lbu", FormatMem},
	OpLHU:   {"lhu", FormatMem},
	OpSB:    {"sb", FormatMem},
	OpSH:    {"sh", FormatMem},
	OpSW:    {"sw", FormatMem},
	OpLL:    {"ll", FormatMem},
	OpSC:    {"sc", FormatMem},
	OpLA:    {"la", FormatLoadAddr},
	OpLI:    {"li", FormatLoadAddr},
}

var jopTable = map[JOp]opInfo{
	OpJ:   {"j", FormatJump},
	OpJAL: {"jal", FormatJump},
}

func (f Funct) String() string {
	if info, ok := functTable[f]; ok {
		return info.name
	}
	return fmt.Sprintf("funct(0x%02X)", uint8(f))
}

func (f Funct) Format() Format { return functTable[f].format }

func (op IOp) String() string {
	if info, ok := iopTable[op]; ok {
		return info.name
	}
	return fmt.Sprintf("op(0x%02X)", uint8(op))
}

func (op IOp) Format() Format { return iopTable[op].format }

// NeedsOffset reports whether the immediate of op is a PC-relative word
// offset rather than an absolute value.
func (op IOp) NeedsOffset() bool {
	return op == OpBEQ || op == OpBNE || op == OpBLEZ || op == OpBGTZ
}

// IsPseudo reports whether op only exists in assembly source.
func (op IOp) IsPseudo() bool { return op > 0x3F }

func (op JOp) String() string {
	if info, ok := jopTable[op]; ok {
		return info.name
	}
	return fmt.Sprintf("op(0x%02X)", uint8(op))
}

// LookupR, LookupI and LookupJ map a lower case mnemonic to its opcode.
func LookupR(name string) (Funct, bool) {
	for f, info := range functTable {
		if info.name == name {
			return f, true
		}
	}
	return 0, false
}

func LookupI(name string) (IOp, bool) {
	for op, info := range iopTable {
		if info.name == name {
			return op, true
		}
	}
	return 0, false
}

func LookupJ(name string) (JOp, bool) {
	for op, info := range jopTable {
		if info.name == name {
			return op, true
		}
	}
	return 0, false
}

// Instruction is one of RType, IType, JType (resolved, encodable) or
// ITypeLabel, JTypeLabel, LoadImmediate (still waiting on the assembler).
type Instruction interface {
	fmt.Stringer
	isInstruction()
}

type RType struct {
	Funct Funct
	Rs    Reg
	Rt    Reg
	Rd    Reg
	Shamt uint8
}

type IType struct {
	Op  IOp
	Rs  Reg
	Rt  Reg
	Imm uint16
}

// JType holds the 26-bit target field.
type JType struct {
	Op     JOp
	Target uint32
}

// ITypeLabel is an I-type instruction whose immediate is a symbol.
type ITypeLabel struct {
	Op    IOp
	Rs    Reg
	Rt    Reg
	Label string
}

// JTypeLabel is a jump whose target is a symbol.
type JTypeLabel struct {
	Op    JOp
	Label string
}

// LoadImmediate is li/la with a literal 32-bit value.
type LoadImmediate struct {
	Op    IOp
	Rt    Reg
	Value uint32
}

func (RType) isInstruction()         {}
func (IType) isInstruction()         {}
func (JType) isInstruction()         {}
func (ITypeLabel) isInstruction()    {}
func (JTypeLabel) isInstruction()    {}
func (LoadImmediate) isInstruction() {}

// Nop is sll $zero, $zero, 0, which encodes as the zero word.
var Nop = RType{Funct: FnSLL}

func (r RType) String() string {
	name := r.Funct.String()
	switch r.Funct.Format() {
	case FormatRdRsRt:
		return fmt.Sprintf("%s %s, %s, %s", name, r.Rd, r.Rs, r.Rt)
	case FormatShift:
		if r == Nop {
			return "nop"
		}
		return fmt.Sprintf("%s %s, %s, %d", name, r.Rd, r.Rt, r.Shamt)
	case FormatShiftVar:
		return fmt.Sprintf("%s %s, %s, %s", name, r.Rd, r.Rt, r.Rs)
	case FormatRs:
		return fmt.Sprintf("%s %s", name, r.Rs)
	case FormatRdRs:
		return fmt.Sprintf("%s %s, %s", name, r.Rd, r.Rs)
	case FormatRsRt:
		return fmt.Sprintf("%s %s, %s", name, r.Rs, r.Rt)
	case FormatRd:
		return fmt.Sprintf("%s %s", name, r.Rd)
	}
	return name
}

func formatI(op IOp, rs, rt Reg, imm string) string {
	switch op.Format() {
	case FormatArithImm:
		return fmt.Sprintf("%s %s, %s, %s", op, rt, rs, imm)
	case FormatUpperImm, FormatLoadAddr:
		return fmt.Sprintf("%s %s, %s", op, rt, imm)
	case FormatBranch:
		return fmt.Sprintf("%s %s, %s, %s", op, rs, rt, imm)
	case FormatBranchZ:
		return fmt.Sprintf("%s %s, %s", op, rs, imm)
	case FormatMem:
		return fmt.Sprintf("%s %s, %s(%s)", op, rt, imm, rs)
	}
	return fmt.Sprintf("%s %s, %s, %s", op, rt, rs, imm)
}

func (i IType) String() string {
	if i.Op.NeedsOffset() {
		return formatI(i.Op, i.Rs, i.Rt, fmt.Sprintf("%d", int16(i.Imm)))
	}
	return formatI(i.Op, i.Rs, i.Rt, fmt.Sprintf("0x%04X", i.Imm))
}

func (i ITypeLabel) String() string { return formatI(i.Op, i.Rs, i.Rt, i.Label) }

func (j JType) String() string { return fmt.Sprintf("%s 0x%07X", j.Op, j.Target) }

func (j JTypeLabel) String() string { return fmt.Sprintf("%s %s", j.Op, j.Label) }

func (l LoadImmediate) String() string {
	return fmt.Sprintf("%s %s, 0x%X", l.Op, l.Rt, l.Value)
}

// IsResolved reports whether inst can be encoded as it stands.
func IsResolved(inst Instruction) bool {
	switch i := inst.(type) {
	case RType, JType:
		return true
	case IType:
		return !i.Op.IsPseudo()
	}
	return false
}

// Mnemonic returns the lower case mnemonic of inst.
func Mnemonic(inst Instruction) string {
	switch i := inst.(type) {
	case RType:
		return i.Funct.String()
	case IType:
		return i.Op.String()
	case ITypeLabel:
		return i.Op.String()
	case LoadImmediate:
		return i.Op.String()
	case JType:
		return i.Op.String()
	case JTypeLabel:
		return i.Op.String()
	}
	return strings.ToLower(fmt.Sprintf("%T", inst))
}
