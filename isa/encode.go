package isa

import (
	"errors"
	"fmt"
)

var (
	ErrNotEncodable  = errors.New("instruction cannot be encoded")
	ErrUnknownOpcode = errors.New("unknown opcode")
)

const (
	opSpecial = 0x00

	// TargetMask covers the 26-bit J-type target field.
	TargetMask = 0x03FFFFFF
)

func formRInstruction(rs, rt, rd Reg, shamt uint8, funct Funct) uint32 {
	return uint32(opSpecial)<<26 | uint32(rs&0x1F)<<21 | uint32(rt&0x1F)<<16 |
		uint32(rd&0x1F)<<11 | uint32(shamt&0x1F)<<6 | uint32(funct&0x3F)
}

func formIInstruction(op IOp, rs, rt Reg, imm uint16) uint32 {
	return uint32(op)<<26 | uint32(rs&0x1F)<<21 | uint32(rt&0x1F)<<16 | uint32(imm)
}

func formJInstruction(op JOp, target uint32) uint32 {
	return uint32(op)<<26 | (target & TargetMask)
}

// Encode packs a resolved instruction into its 32-bit machine word.
func Encode(inst Instruction) (uint32, error) {
	switch i := inst.(type) {
	case RType:
		if _, ok := functTable[i.Funct]; !ok {
			return 0, fmt.Errorf("%w: funct 0x%02X", ErrUnknownOpcode, uint8(i.Funct))
		}
		if i.Shamt > 0x1F {
			return 0, fmt.Errorf("%w: shift amount %d does not fit into 5 bits", ErrNotEncodable, i.Shamt)
		}
		return formRInstruction(i.Rs, i.Rt, i.Rd, i.Shamt, i.Funct), nil
	case IType:
		if i.Op.IsPseudo() {
			return 0, fmt.Errorf("%w: %q is a pseudo instruction", ErrNotEncodable, i.Op)
		}
		if _, ok := iopTable[i.Op]; !ok {
			return 0, fmt.Errorf("%w: opcode 0x%02X", ErrUnknownOpcode, uint8(i.Op))
		}
		return formIInstruction(i.Op, i.Rs, i.Rt, i.Imm), nil
	case JType:
		if _, ok := jopTable[i.Op]; !ok {
			return 0, fmt.Errorf("%w: opcode 0x%02X", ErrUnknownOpcode, uint8(i.Op))
		}
		if i.Target&^TargetMask != 0 {
			return 0, fmt.Errorf("%w: jump target 0x%X does not fit into 26 bits", ErrNotEncodable, i.Target)
		}
		return formJInstruction(i.Op, i.Target), nil
	}
	return 0, fmt.Errorf("%w: unresolved %q", ErrNotEncodable, inst)
}

// Decode splits a machine word back into the instruction it encodes.
func Decode(word uint32) (Instruction, error) {
	op := uint8(word >> 26)
	rs := Reg((word >> 21) & 0x1F)
	rt := Reg((word >> 16) & 0x1F)

	switch {
	case op == opSpecial:
		funct := Funct(word & 0x3F)
		if _, ok := functTable[funct]; !ok {
			return nil, fmt.Errorf("%w: funct 0x%02X in 0x%08X", ErrUnknownOpcode, uint8(funct), word)
		}
		return RType{
			Funct: funct,
			Rs:    rs,
			Rt:    rt,
			Rd:    Reg((word >> 11) & 0x1F),
			Shamt: uint8((word >> 6) & 0x1F),
		}, nil
	case JOp(op) == OpJ || JOp(op) == OpJAL:
		return JType{Op: JOp(op), Target: word & TargetMask}, nil
	}

	if _, ok := iopTable[IOp(op)]; !ok {
		return nil, fmt.Errorf("%w: 0x%02X in 0x%08X", ErrUnknownOpcode, op, word)
	}
	return IType{Op: IOp(op), Rs: rs, Rt: rt, Imm: uint16(word)}, nil
}
