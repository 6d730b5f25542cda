package asm

import (
	"bytes"
	"testing"
)

func TestDataSizeAndEncoding(t *testing.T) {
	tests := []struct {
		name string
		data Data
		want []byte
	}{
		{"bytes", Bytes{Values: []byte{1, 2, 3}}, []byte{1, 2, 3}},
		{"padded bytes", Bytes{Values: []byte{1, 2}, Align: 4}, []byte{1, 0, 0, 0, 2, 0, 0, 0}},
		{"halfs", Halfs{Values: []uint16{0x1234, 0xABCD}}, []byte{0x34, 0x12, 0xCD, 0xAB}},
		{"padded halfs", Halfs{Values: []uint16{0x1234}, Align: 4}, []byte{0x34, 0x12, 0, 0}},
		{"words", Words{Values: []uint32{0xDEADBEEF}}, []byte{0xEF, 0xBE, 0xAD, 0xDE}},
		{"under aligned words", Words{Values: []uint32{1}, Align: 2}, []byte{1, 0, 0, 0}},
		{"ascii", CString{Chars: "abc"}, []byte("abc")},
		{"asciiz", CString{Chars: "abc", NullTerminated: true}, []byte("abc\x00")},
		{"aligned asciiz", CString{Chars: "abcd", NullTerminated: true, Align: 4}, []byte("abcd\x00\x00\x00\x00")},
		{"space", Space{N: 5}, make([]byte, 5)},
		{"empty", Space{}, []byte{}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.data.Size(); got != uint32(len(tc.want)) {
				t.Errorf("Size = %d, want %d", got, len(tc.want))
			}
			if got := tc.data.Encode(); !bytes.Equal(got, tc.want) {
				t.Errorf("Encode = % X, want % X", got, tc.want)
			}
		})
	}
}

func TestDataString(t *testing.T) {
	tests := []struct {
		data Data
		want string
	}{
		{Words{Values: []uint32{1, 0xFF}}, ".word 0x1, 0xFF"},
		{CString{Chars: "a\n", NullTerminated: true}, `.asciiz "a\n"`},
		{Space{N: 3}, ".space 3"},
	}
	for _, tc := range tests {
		if got := tc.data.String(); got != tc.want {
			t.Errorf("String = %q, want %q", got, tc.want)
		}
	}
}
