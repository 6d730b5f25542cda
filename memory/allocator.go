package memory

import "fmt"

// Position is a placement request. A request with neither Lower nor Upper
// fixed is "arbitrary" and is placed after every fixed request.
type Position struct {
	Lower    uint32
	Upper    uint32
	HasLower bool
	HasUpper bool
	Size     uint32
	Owner    int
}

// Fixed requests exactly [lower, upper].
func Fixed(lower, upper uint32, owner int) Position {
	return Position{
		Lower: lower, Upper: upper, HasLower: true, HasUpper: true,
		Size: upper - lower + 1, Owner: owner,
	}
}

// At requests size bytes starting at lower.
func At(lower, size uint32, owner int) Position {
	return Position{Lower: lower, HasLower: true, Size: size, Owner: owner}
}

// EndingAt requests size bytes whose last byte is upper.
func EndingAt(upper, size uint32, owner int) Position {
	return Position{Upper: upper, HasUpper: true, Size: size, Owner: owner}
}

// Anywhere requests size bytes wherever they fit first.
func Anywhere(size uint32, owner int) Position {
	return Position{Size: size, Owner: owner}
}

func (p Position) Arbitrary() bool { return !p.HasLower && !p.HasUpper }

func (p Position) String() string {
	switch {
	case p.HasLower && p.HasUpper:
		return fmt.Sprintf("[0x%08X, 0x%08X] (%d bytes)", p.Lower, p.Upper, p.Size)
	case p.HasLower:
		return fmt.Sprintf("%d bytes at 0x%08X", p.Size, p.Lower)
	case p.HasUpper:
		return fmt.Sprintf("%d bytes ending at 0x%08X", p.Size, p.Upper)
	}
	return fmt.Sprintf("%d bytes", p.Size)
}

// span derives the inclusive bounds of a placed position.
func (p Position) span() (uint32, uint32, error) {
	if p.Size == 0 {
		return 0, 0, fmt.Errorf("%w: zero sized request %v", ErrInvariant, p)
	}
	switch {
	case p.HasLower && p.HasUpper:
		if p.Lower > p.Upper {
			return 0, 0, fmt.Errorf("%w: lower 0x%08X > upper 0x%08X", ErrInvariant, p.Lower, p.Upper)
		}
		if uint64(p.Upper)-uint64(p.Lower)+1 != uint64(p.Size) {
			return 0, 0, fmt.Errorf("%w: size %d does not match address range %v", ErrInvariant, p.Size, p)
		}
		return p.Lower, p.Upper, nil
	case p.HasLower:
		if uint64(p.Lower)+uint64(p.Size)-1 > 0xFFFFFFFF {
			return 0, 0, fmt.Errorf("%w: %v runs past the end of the address space", ErrNoFit, p)
		}
		return p.Lower, p.Lower + p.Size - 1, nil
	case p.HasUpper:
		if p.Size-1 > p.Upper {
			return 0, 0, fmt.Errorf("%w: %v runs below address zero", ErrNoFit, p)
		}
		return p.Upper + 1 - p.Size, p.Upper, nil
	}
	return 0, 0, fmt.Errorf("%w: %v has no fixed bound", ErrInvariant, p)
}

// Layout partitions [low, high] into free and allocated ranges. Positions
// with a fixed bound are placed first, in input order, then arbitrary
// positions go first-fit at the low end of the first free range big enough.
func Layout(positions []Position, low, high uint32) (Ranges, error) {
	if low > high {
		return nil, fmt.Errorf("%w: window lower 0x%08X > upper 0x%08X", ErrInvariant, low, high)
	}
	memory := Ranges{freeRange(low, high)}

	var arbitraries []Position
	for _, pos := range positions {
		if pos.Arbitrary() {
			arbitraries = append(arbitraries, pos)
			continue
		}
		lower, upper, err := pos.span()
		if err != nil {
			return nil, err
		}
		if memory, err = firstFitInsert(memory, lower, upper, pos); err != nil {
			return nil, err
		}
	}

	for _, pos := range arbitraries {
		var err error
		if memory, err = firstFitInsertArbitrary(memory, pos); err != nil {
			return nil, err
		}
	}
	if err := memory.Check(low, high); err != nil {
		return nil, err
	}
	return memory, nil
}

func firstFitInsert(memory Ranges, lower, upper uint32, pos Position) (Ranges, error) {
	for i, m := range memory {
		if m.Status != Free || !m.Contains(lower, upper) {
			continue
		}
		return splice(memory, i, Range{Lower: lower, Upper: upper, Status: Allocated, Owner: pos.Owner})
	}
	return nil, fmt.Errorf("%w: could not find placement for [0x%08X, 0x%08X] in %v",
		ErrNoFit, lower, upper, memory.Free())
}

func firstFitInsertArbitrary(memory Ranges, pos Position) (Ranges, error) {
	if pos.Size == 0 {
		return nil, fmt.Errorf("%w: zero sized request %v", ErrInvariant, pos)
	}
	for i, m := range memory {
		if m.Status != Free || m.Size() < uint64(pos.Size) {
			continue
		}
		return splice(memory, i, Range{Lower: m.Lower, Upper: m.Lower + pos.Size - 1, Status: Allocated, Owner: pos.Owner})
	}
	return nil, fmt.Errorf("%w: could not find placement for %d bytes in %v",
		ErrNoFit, pos.Size, memory.Free())
}

// splice replaces memory[i] with the result of inserting middle into it.
func splice(memory Ranges, i int, middle Range) (Ranges, error) {
	parts, err := memory[i].Insert(middle)
	if err != nil {
		return nil, err
	}
	out := make(Ranges, 0, len(memory)+len(parts)-1)
	out = append(out, memory[:i]...)
	out = append(out, parts...)
	return append(out, memory[i+1:]...), nil
}
