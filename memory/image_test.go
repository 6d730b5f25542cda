package memory

import (
	"bytes"
	"testing"
)

func TestImageLittleEndianBytes(t *testing.T) {
	img := NewImage()
	img.StoreBytes(0x10010000, []byte{0x78, 0x56, 0x34, 0x12, 0xAA})

	if w, ok := img.LoadWord(0x10010000); !ok || w != 0x12345678 {
		t.Fatalf("LoadWord = 0x%08X, %v", w, ok)
	}
	if w, ok := img.LoadWord(0x10010004); !ok || w != 0x000000AA {
		t.Fatalf("LoadWord = 0x%08X, %v", w, ok)
	}
	if _, ok := img.LoadWord(0x10010008); ok {
		t.Fatal("unwritten word reported as initialized")
	}
}

func TestImageWordsAcrossPages(t *testing.T) {
	img := NewImage()
	if err := img.StoreWord(0x0A000FFC, 0xDEADBEEF); err != nil {
		t.Fatal(err)
	}
	if err := img.StoreWord(0x0A001000, 0x00000001); err != nil {
		t.Fatal(err)
	}
	if err := img.StoreWord(0x0A001001, 1); err == nil {
		t.Fatal("unaligned store accepted")
	}
	if got := img.Pages(); len(got) != 2 || got[0] != 0x0A000 || got[1] != 0x0A001 {
		t.Fatalf("Pages = %v", got)
	}

	var buf bytes.Buffer
	if err := img.Dump(&buf); err != nil {
		t.Fatal(err)
	}
	want := "0x0A000FFC: 0xDEADBEEF\n0x0A001000: 0x00000001\n"
	if buf.String() != want {
		t.Fatalf("Dump = %q, want %q", buf.String(), want)
	}
}
