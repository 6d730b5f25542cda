package memory

import "fmt"

// The address space is carved from the top down (reserved, MMIO, kernel
// data, kernel text, stack) and from STATIC_DATA_START down (text, bottom
// reserved). Static data grows up from STATIC_DATA_START towards the stack.
const (
	TopReservedSize  uint32 = 0x0000FFEF
	TopReservedStart uint32 = 0xFFFFFFFF
	TopReservedEnd          = TopReservedStart - TopReservedSize

	MMIOSize  uint32 = 0x00000010
	MMIOStart        = TopReservedEnd
	MMIOEnd          = MMIOStart - MMIOSize

	KernelDataSize  uint32 = 0x6FFF0000
	KernelDataStart        = MMIOEnd
	KernelDataEnd          = KernelDataStart - KernelDataSize

	KernelTextSize  uint32 = 0x10000000
	KernelTextStart        = KernelDataEnd
	KernelTextEnd          = KernelTextStart - KernelTextSize

	StackStart = KernelTextEnd

	StaticDataStart uint32 = 0x10000000

	TextSize  uint32 = 0x06000000
	TextEnd          = StaticDataStart
	TextStart        = TextEnd - TextSize

	BottomReservedSize  uint32 = 0x04000000
	BottomReservedEnd          = TextStart
	BottomReservedStart        = BottomReservedEnd - BottomReservedSize
)

// Region is the half-open window [Start, End) a segment category may use.
type Region struct {
	Name  string
	Start uint32
	End   uint32
}

var (
	TopReserved    = Region{"top reserved", TopReservedEnd, TopReservedStart}
	MMIO           = Region{"mmio", MMIOEnd, MMIOStart}
	KernelData     = Region{"kernel data", KernelDataEnd, KernelDataStart}
	KernelText     = Region{"kernel text", KernelTextEnd, KernelTextStart}
	StaticData     = Region{"static data", StaticDataStart, StackStart}
	Text           = Region{"text", TextStart, TextEnd}
	BottomReserved = Region{"bottom reserved", BottomReservedStart, BottomReservedEnd}
)

// Regions lists every window in ascending address order.
var Regions = []Region{BottomReserved, Text, StaticData, KernelText, KernelData, MMIO, TopReserved}

// Last is the highest address inside r.
func (r Region) Last() uint32 { return r.End - 1 }

func (r Region) Size() uint32 { return r.End - r.Start }

func (r Region) Contains(addr uint32) bool { return addr >= r.Start && addr < r.End }

func (r Region) String() string {
	return fmt.Sprintf("%s [0x%08X, 0x%08X)", r.Name, r.Start, r.End)
}

// Validate checks that r is non-empty.
func (r Region) Validate() error {
	if r.End <= r.Start {
		return fmt.Errorf("%w: region %s is empty", ErrInvariant, r)
	}
	return nil
}
