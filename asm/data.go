package asm

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
)

// Data is the payload of one data entry. Size is the number of bytes the
// payload occupies once laid out, and Encode returns exactly that many
// bytes in little-endian order.
type Data interface {
	Size() uint32
	Encode() []byte
	String() string
}

// Align on Bytes, Halfs and Words is the number of bytes every element
// takes up, padded with zeros. Zero means the natural element size.

type Bytes struct {
	Values []byte
	Align  uint32
}

type Halfs struct {
	Values []uint16
	Align  uint32
}

type Words struct {
	Values []uint32
	Align  uint32
}

// CString is a run of characters, optionally NUL terminated, padded with
// zeros up to a multiple of Align.
type CString struct {
	Chars          string
	NullTerminated bool
	Align          uint32
}

// Space is N zero bytes.
type Space struct {
	N uint32
}

func unit(natural, align uint32) uint32 {
	if align > natural {
		return align
	}
	return natural
}

func alignUp(n, align uint32) uint32 {
	if align <= 1 {
		return n
	}
	if r := n % align; r != 0 {
		return n + align - r
	}
	return n
}

func (b Bytes) Size() uint32 { return uint32(len(b.Values)) * unit(1, b.Align) }
func (h Halfs) Size() uint32 { return uint32(len(h.Values)) * unit(2, h.Align) }
func (w Words) Size() uint32 { return uint32(len(w.Values)) * unit(4, w.Align) }
func (s Space) Size() uint32 { return s.N }

func (c CString) Size() uint32 {
	n := uint32(len(c.Chars))
	if c.NullTerminated {
		n++
	}
	return alignUp(n, c.Align)
}

func (b Bytes) Encode() []byte {
	u := unit(1, b.Align)
	out := make([]byte, b.Size())
	for i, v := range b.Values {
		out[uint32(i)*u] = v
	}
	return out
}

func (h Halfs) Encode() []byte {
	u := unit(2, h.Align)
	out := make([]byte, h.Size())
	for i, v := range h.Values {
		binary.LittleEndian.PutUint16(out[uint32(i)*u:], v)
	}
	return out
}

func (w Words) Encode() []byte {
	u := unit(4, w.Align)
	out := make([]byte, w.Size())
	for i, v := range w.Values {
		binary.LittleEndian.PutUint32(out[uint32(i)*u:], v)
	}
	return out
}

func (c CString) Encode() []byte {
	out := make([]byte, c.Size())
	copy(out, c.Chars)
	return out
}

func (s Space) Encode() []byte { return make([]byte, s.N) }

func (b Bytes) String() string { return ".byte " + joinHex(len(b.Values), func(i int) uint32 { return uint32(b.Values[i]) }) }
func (h Halfs) String() string { return ".half " + joinHex(len(h.Values), func(i int) uint32 { return uint32(h.Values[i]) }) }
func (w Words) String() string { return ".word " + joinHex(len(w.Values), func(i int) uint32 { return w.Values[i] }) }
func (s Space) String() string { return fmt.Sprintf(".space %d", s.N) }

func (c CString) String() string {
	if c.NullTerminated {
		return ".asciiz " + strconv.Quote(c.Chars)
	}
	return ".ascii " + strconv.Quote(c.Chars)
}

func joinHex(n int, at func(int) uint32) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("0x%X", at(i))
	}
	return strings.Join(parts, ", ")
}
