package asm

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Suffixes of the synthesized halves of a label's address.
const (
	HiSuffix = "@hi"
	LoSuffix = "@lo"
)

// Address is a location that may not be fully known yet. Numeric is zero
// until the resolver assigns it; zero is never a valid assigned address.
// Labels are every name the location is known by.
type Address struct {
	Numeric uint32
	Labels  []string
}

// Labeled returns an unplaced address carrying names.
func Labeled(names ...string) *Address {
	return &Address{Labels: append([]string(nil), names...)}
}

// Fixed returns an address pinned to n.
func Fixed(n uint32) *Address {
	return &Address{Numeric: n}
}

// Resolved reports whether a has a concrete address.
func (a *Address) Resolved() bool { return a != nil && a.Numeric != 0 }

func (a *Address) String() string {
	if a == nil {
		return "<none>"
	}
	var s string
	if a.Numeric != 0 {
		s = fmt.Sprintf("0x%08X", a.Numeric)
	}
	if len(a.Labels) > 0 {
		if s != "" {
			s += " "
		}
		s += strings.Join(a.Labels, ",")
	}
	return s
}

// SymbolTable maps label names to addresses. A name can be defined once.
// It is safe for concurrent use.
type SymbolTable struct {
	mu      sync.Mutex
	symbols map[string]uint32
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{symbols: make(map[string]uint32)}
}

// Define binds name to addr.
func (s *SymbolTable) Define(name string, addr uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.symbols[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateLabel, name)
	}
	s.symbols[name] = addr
	return nil
}

// DefineSplit binds name@hi and name@lo to the upper and lower halves of
// addr, then name to addr itself.
func (s *SymbolTable) DefineSplit(name string, addr uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	hi, lo := name+HiSuffix, name+LoSuffix
	for _, n := range []string{name, hi, lo} {
		if _, ok := s.symbols[n]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateLabel, name)
		}
	}
	s.symbols[hi] = addr >> 16
	s.symbols[lo] = addr & 0xFFFF
	s.symbols[name] = addr
	return nil
}

func (s *SymbolTable) Lookup(name string) (uint32, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	addr, ok := s.symbols[name]
	return addr, ok
}

func (s *SymbolTable) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.symbols)
}

// Names returns every defined name in sorted order.
func (s *SymbolTable) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.symbols))
	for name := range s.symbols {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Map returns a copy of the table.
func (s *SymbolTable) Map() map[string]uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]uint32, len(s.symbols))
	for k, v := range s.symbols {
		out[k] = v
	}
	return out
}

// IsSplit reports whether name is a synthesized @hi or @lo entry.
func IsSplit(name string) bool {
	return strings.HasSuffix(name, HiSuffix) || strings.HasSuffix(name, LoSuffix)
}
