package asm

import (
	"fmt"

	"github.com/danielcbailey/mipsasm/isa"
	"github.com/danielcbailey/mipsasm/memory"
)

// Kind is the category of a segment. Each category is laid out in its own
// region of memory.
type Kind int

const (
	KindText Kind = iota
	KindData
	KindKernelText
	KindKernelData
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindData:
		return "data"
	case KindKernelText:
		return "ktext"
	case KindKernelData:
		return "kdata"
	}
	return "unknown"
}

// IsText reports whether segments of kind k hold instructions.
func (k Kind) IsText() bool { return k == KindText || k == KindKernelText }

// TextEntry is one instruction. Addr may be nil for an unlabeled entry; the
// resolver fills it in.
type TextEntry struct {
	Addr *Address
	Inst isa.Instruction
	Line int
}

type TextSegment struct {
	Start   *Address
	Entries []TextEntry
}

// Size is four bytes per instruction.
func (s *TextSegment) Size() uint32 { return 4 * uint32(len(s.Entries)) }

type DataEntry struct {
	Addr  *Address
	Value Data
	Line  int
}

type DataSegment struct {
	Start   *Address
	Entries []DataEntry
}

func (s *DataSegment) Size() uint32 {
	var n uint32
	for _, e := range s.Entries {
		n += e.Value.Size()
	}
	return n
}

// Parsed is a whole program as the front end produced it, grouped by
// segment category in source order.
type Parsed struct {
	Text       []*TextSegment
	Data       []*DataSegment
	KernelText []*TextSegment
	KernelData []*DataSegment
}

// TextSegments returns the text segments of kind k.
func (p *Parsed) TextSegments(k Kind) []*TextSegment {
	if k == KindKernelText {
		return p.KernelText
	}
	return p.Text
}

// DataSegments returns the data segments of kind k.
func (p *Parsed) DataSegments(k Kind) []*DataSegment {
	if k == KindKernelData {
		return p.KernelData
	}
	return p.Data
}

// placeable is what layout needs from a segment.
type placeable interface {
	Size() uint32
	startAddress() *Address
	setStart(addr uint32)
}

func (s *TextSegment) startAddress() *Address { return s.Start }
func (s *DataSegment) startAddress() *Address { return s.Start }

func (s *TextSegment) setStart(addr uint32) { s.Start = place(s.Start, addr) }
func (s *DataSegment) setStart(addr uint32) { s.Start = place(s.Start, addr) }

func place(a *Address, addr uint32) *Address {
	if a == nil {
		return &Address{Numeric: addr}
	}
	a.Numeric = addr
	return a
}

// Config says where each segment category may be placed.
type Config struct {
	Text       memory.Region
	Data       memory.Region
	KernelText memory.Region
	KernelData memory.Region
}

// DefaultConfig places user code and data in the text and static data
// regions of the standard memory map, and kernel code and data in theirs.
func DefaultConfig() Config {
	return Config{
		Text:       memory.Text,
		Data:       memory.StaticData,
		KernelText: memory.KernelText,
		KernelData: memory.KernelData,
	}
}

// Region returns the region segments of kind k are placed in.
func (c Config) Region(k Kind) memory.Region {
	switch k {
	case KindData:
		return c.Data
	case KindKernelText:
		return c.KernelText
	case KindKernelData:
		return c.KernelData
	}
	return c.Text
}

func (c Config) validate() error {
	for _, r := range []memory.Region{c.Text, c.Data, c.KernelText, c.KernelData} {
		if err := r.Validate(); err != nil {
			return err
		}
		//address 0 marks an unplaced segment
		if r.Start == 0 {
			return fmt.Errorf("%w: region %s starts at address 0", memory.ErrInvariant, r)
		}
	}
	return nil
}
