package asm

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"
)

func TestDefineSplit(t *testing.T) {
	syms := NewSymbolTable()
	if err := syms.DefineSplit("buffer", 0x10010004); err != nil {
		t.Fatal(err)
	}
	want := map[string]uint32{
		"buffer":    0x10010004,
		"buffer@hi": 0x1001,
		"buffer@lo": 0x0004,
	}
	if got := syms.Map(); !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	if names := syms.Names(); !reflect.DeepEqual(names, []string{"buffer", "buffer@hi", "buffer@lo"}) {
		t.Errorf("Names = %v", names)
	}
}

func TestDefineDuplicate(t *testing.T) {
	syms := NewSymbolTable()
	if err := syms.DefineSplit("foo", 0x0A000000); err != nil {
		t.Fatal(err)
	}
	for _, define := range []func() error{
		func() error { return syms.DefineSplit("foo", 0x10000000) },
		func() error { return syms.Define("foo", 0x10000000) },
		func() error { return syms.Define("foo@hi", 0) },
	} {
		if err := define(); !errors.Is(err, ErrDuplicateLabel) {
			t.Errorf("error = %v, want ErrDuplicateLabel", err)
		}
	}
	if addr, _ := syms.Lookup("foo"); addr != 0x0A000000 {
		t.Errorf("foo rebound to 0x%08X", addr)
	}
	if syms.Len() != 3 {
		t.Errorf("Len = %d", syms.Len())
	}
}

func TestSymbolTableConcurrentDefine(t *testing.T) {
	syms := NewSymbolTable()
	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				if err := syms.DefineSplit(fmt.Sprintf("l%d_%d", g, i), uint32(g<<16|i*4)); err != nil {
					t.Error(err)
				}
			}
		}(g)
	}
	wg.Wait()
	if syms.Len() != 4*100*3 {
		t.Fatalf("Len = %d", syms.Len())
	}
}

func TestIsSplit(t *testing.T) {
	for name, want := range map[string]bool{"a": false, "a@hi": true, "a@lo": true, "hi": false} {
		if IsSplit(name) != want {
			t.Errorf("IsSplit(%q) = %v", name, !want)
		}
	}
}
