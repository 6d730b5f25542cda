package isa

import (
	"errors"
	"testing"
)

func TestEncodeKnownWords(t *testing.T) {
	tests := []struct {
		inst Instruction
		want uint32
	}{
		{RType{Funct: FnADD, Rs: T1, Rt: T2, Rd: T0}, 0x012A4020},
		{RType{Funct: FnSLL, Rt: T1, Rd: T0, Shamt: 4}, 0x00094100},
		{RType{Funct: FnJR, Rs: RA}, 0x03E00008},
		{Nop, 0x00000000},
		{IType{Op: OpADDI, Rs: SP, Rt: SP, Imm: 0xFFFC}, 0x23BDFFFC},
		{IType{Op: OpLUI, Rt: T0, Imm: 0x1001}, 0x3C081001},
		{IType{Op: OpORI, Rs: T0, Rt: T0, Imm: 0x0000}, 0x35080000},
		{IType{Op: OpBEQ, Rs: T0, Rt: Zero, Imm: 0x0004}, 0x11000004},
		{IType{Op: OpLW, Rs: SP, Rt: RA, Imm: 0x0010}, 0x8FBF0010},
		{JType{Op: OpJ, Target: 0x0100000}, 0x08100000},
		{JType{Op: OpJAL, Target: 0x3FFFFFF}, 0x0FFFFFFF},
	}
	for _, tc := range tests {
		got, err := Encode(tc.inst)
		if err != nil {
			t.Fatalf("Encode(%v): %v", tc.inst, err)
		}
		if got != tc.want {
			t.Errorf("Encode(%v) = 0x%08X, want 0x%08X", tc.inst, got, tc.want)
		}
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	var insts []Instruction
	for f := range functTable {
		insts = append(insts, RType{Funct: f, Rs: S0, Rt: T9, Rd: V1, Shamt: 31})
	}
	for op := range iopTable {
		if op.IsPseudo() {
			continue
		}
		insts = append(insts, IType{Op: op, Rs: A3, Rt: K1, Imm: 0x8001})
	}
	for op := range jopTable {
		insts = append(insts, JType{Op: op, Target: 0x2AAAAAA})
	}

	for _, inst := range insts {
		word, err := Encode(inst)
		if err != nil {
			t.Fatalf("Encode(%v): %v", inst, err)
		}
		back, err := Decode(word)
		if err != nil {
			t.Fatalf("Decode(0x%08X): %v", word, err)
		}
		if back != inst {
			t.Errorf("round trip of %v gave %v", inst, back)
		}
	}
}

func TestEncodeRejectsUnresolved(t *testing.T) {
	for _, inst := range []Instruction{
		ITypeLabel{Op: OpBEQ, Rs: T0, Label: "loop"},
		JTypeLabel{Op: OpJ, Label: "main"},
		LoadImmediate{Op: OpLI, Rt: T0, Value: 5},
		IType{Op: OpLA, Rt: T0},
		JType{Op: OpJ, Target: 0x4000000},
	} {
		if _, err := Encode(inst); !errors.Is(err, ErrNotEncodable) {
			t.Errorf("Encode(%v) error = %v, want ErrNotEncodable", inst, err)
		}
		if IsResolved(inst) && inst != (JType{Op: OpJ, Target: 0x4000000}) {
			t.Errorf("IsResolved(%v) = true", inst)
		}
	}
}

func TestDecodeUnknownOpcode(t *testing.T) {
	for _, word := range []uint32{0xFC000000, 0x0000003F} {
		if _, err := Decode(word); !errors.Is(err, ErrUnknownOpcode) {
			t.Errorf("Decode(0x%08X) error = %v, want ErrUnknownOpcode", word, err)
		}
	}
}

func TestParseReg(t *testing.T) {
	tests := map[string]Reg{
		"$zero": Zero,
		"$0":    Zero,
		"$t0":   T0,
		"$8":    T0,
		"$SP":   SP,
		"$31":   RA,
		"$s8":   FP,
	}
	for in, want := range tests {
		got, err := ParseReg(in)
		if err != nil {
			t.Fatalf("ParseReg(%q): %v", in, err)
		}
		if got != want {
			t.Errorf("ParseReg(%q) = %v, want %v", in, got, want)
		}
	}
	for _, bad := range []string{"t0", "$32", "$foo", "$"} {
		if _, err := ParseReg(bad); err == nil {
			t.Errorf("ParseReg(%q) succeeded", bad)
		}
	}
}

func TestDisassembly(t *testing.T) {
	tests := []struct {
		inst Instruction
		want string
	}{
		{RType{Funct: FnADD, Rs: T1, Rt: T2, Rd: T0}, "add $t0, $t1, $t2"},
		{Nop, "nop"},
		{IType{Op: OpBNE, Rs: T0, Rt: T1, Imm: 0xFFFC}, "bne $t0, $t1, -4"},
		{IType{Op: OpLW, Rs: SP, Rt: RA, Imm: 0x10}, "lw $ra, 0x0010($sp)"},
		{ITypeLabel{Op: OpLUI, Rt: T0, Label: "buf@hi"}, "lui $t0, buf@hi"},
		{JTypeLabel{Op: OpJAL, Label: "main"}, "jal main"},
	}
	for _, tc := range tests {
		if got := tc.inst.String(); got != tc.want {
			t.Errorf("String() = %q, want %q", got, tc.want)
		}
	}
}
