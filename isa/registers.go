package isa

import (
	"fmt"
	"strconv"
	"strings"
)

// Reg is a general purpose register number, 0 through 31.
type Reg uint8

const (
	Zero Reg = iota
	AT
	V0
	V1
	A0
	A1
	A2
	A3
	T0
	T1
	T2
	T3
	T4
	T5
	T6
	T7
	S0
	S1
	S2
	S3
	S4
	S5
	S6
	S7
	T8
	T9
	K0
	K1
	GP
	SP
	FP
	RA
)

var regNames = [32]string{
	"$zero", "$at", "$v0", "$v1", "$a0", "$a1", "$a2", "$a3",
	"$t0", "$t1", "$t2", "$t3", "$t4", "$t5", "$t6", "$t7",
	"$s0", "$s1", "$s2", "$s3", "$s4", "$s5", "$s6", "$s7",
	"$t8", "$t9", "$k0", "$k1", "$gp", "$sp", "$fp", "$ra",
}

func (r Reg) String() string {
	if int(r) < len(regNames) {
		return regNames[r]
	}
	return fmt.Sprintf("$?%d", uint8(r))
}

// ParseReg accepts both the symbolic ($t0) and the numeric ($8) spelling.
func ParseReg(s string) (Reg, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) < 2 || s[0] != '$' {
		return 0, fmt.Errorf("registers are marked with a preceding '$', got %q", s)
	}
	if s == "$s8" {
		return FP, nil
	}
	for i, name := range regNames {
		if name == s {
			return Reg(i), nil
		}
	}
	v, err := strconv.Atoi(s[1:])
	if err != nil {
		return 0, fmt.Errorf("%q is not a valid register", s)
	}
	if v < 0 || v > 31 {
		return 0, fmt.Errorf("invalid register %q, registers are between $0 and $31", s)
	}
	return Reg(v), nil
}
