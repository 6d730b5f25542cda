package memory

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoFit means no free range could hold a placement request.
	ErrNoFit = errors.New("no free memory range fits")
	// ErrInvariant means the allocator was handed, or produced, an
	// inconsistent range. It points at a bug rather than at user input.
	ErrInvariant = errors.New("memory range invariant violated")
)

type Status uint8

const (
	Free Status = iota
	Allocated
)

func (s Status) String() string {
	if s == Allocated {
		return "allocated"
	}
	return "free"
}

// NoOwner marks a range that does not belong to any segment.
const NoOwner = -1

// Range is the inclusive span [Lower, Upper]. Owner is the index of the
// segment occupying an allocated range.
type Range struct {
	Lower  uint32
	Upper  uint32
	Status Status
	Owner  int
}

// NewRange builds a range, refusing lower > upper.
func NewRange(lower, upper uint32, status Status, owner int) (Range, error) {
	if lower > upper {
		return Range{}, fmt.Errorf("%w: lower 0x%08X > upper 0x%08X", ErrInvariant, lower, upper)
	}
	return Range{Lower: lower, Upper: upper, Status: status, Owner: owner}, nil
}

func freeRange(lower, upper uint32) Range {
	return Range{Lower: lower, Upper: upper, Status: Free, Owner: NoOwner}
}

// Size is the byte count of r. It needs 33 bits for the full address space.
func (r Range) Size() uint64 { return uint64(r.Upper) - uint64(r.Lower) + 1 }

func (r Range) Contains(lower, upper uint32) bool {
	return r.Lower <= lower && upper <= r.Upper
}

func (r Range) String() string {
	s := fmt.Sprintf("[0x%08X, 0x%08X] %s", r.Lower, r.Upper, r.Status)
	if r.Owner != NoOwner {
		s += fmt.Sprintf(" #%d", r.Owner)
	}
	return s
}

// Shrink splits the trailing n bytes off r and returns them as a new free
// range. r must keep at least one byte.
func (r Range) Shrink(n uint32) (Range, Range, error) {
	if n == 0 || uint64(n) >= r.Size() {
		return r, Range{}, fmt.Errorf("%w: cannot shrink %v by %d bytes", ErrInvariant, r, n)
	}
	tail := freeRange(r.Upper-n+1, r.Upper)
	r.Upper -= n
	return r, tail, nil
}

// Grow extends r forward by n bytes, consuming the free ranges in next that
// follow it. It returns the grown range and what is left of next.
func (r Range) Grow(next []Range, n uint32) (Range, []Range, error) {
	if n == 0 {
		return r, next, nil
	}
	if uint64(r.Upper)+uint64(n) > 0xFFFFFFFF {
		return r, next, fmt.Errorf("%w: growing %v by %d bytes wraps the address space", ErrInvariant, r, n)
	}
	upper := r.Upper + n
	covered := r.Upper
	i := 0
	for ; i < len(next) && covered < upper; i++ {
		m := next[i]
		if m.Lower != covered+1 {
			return r, next, fmt.Errorf("%w: hole between %v and %v", ErrInvariant, r, m)
		}
		if m.Status != Free {
			return r, next, fmt.Errorf("%w: tried to grow %v into non-free %v", ErrInvariant, r, m)
		}
		if m.Upper > upper {
			break
		}
		covered = m.Upper
	}
	if covered < upper && i == len(next) {
		return r, next, fmt.Errorf("%w: not enough free space after %v to grow by %d bytes", ErrInvariant, r, n)
	}

	rest := append([]Range(nil), next[i:]...)
	if len(rest) > 0 && rest[0].Lower <= upper {
		rest[0].Lower = upper + 1
	}
	r.Upper = upper
	return r, rest, nil
}

// Insert places middle inside the free range r and returns the ranges that
// replace r, in address order: an optional free prefix, middle, and an
// optional free suffix.
func (r Range) Insert(middle Range) ([]Range, error) {
	if r.Status != Free {
		return nil, fmt.Errorf("%w: tried to insert into non-free %v <- %v", ErrInvariant, r, middle)
	}
	if middle.Lower > middle.Upper {
		return nil, fmt.Errorf("%w: lower 0x%08X > upper 0x%08X", ErrInvariant, middle.Lower, middle.Upper)
	}
	if !r.Contains(middle.Lower, middle.Upper) {
		return nil, fmt.Errorf("%w: tried to insert out of bounds %v <- %v", ErrInvariant, r, middle)
	}

	out := make([]Range, 0, 3)
	if middle.Lower > r.Lower {
		out = append(out, freeRange(r.Lower, middle.Lower-1))
	}
	out = append(out, middle)
	if middle.Upper < r.Upper {
		out = append(out, freeRange(middle.Upper+1, r.Upper))
	}
	return out, nil
}

// Merge coalesces r with the free range directly after it.
func (r Range) Merge(other Range) (Range, error) {
	if uint64(r.Upper)+1 != uint64(other.Lower) {
		return r, fmt.Errorf("%w: is there a hole? %v <-> %v", ErrInvariant, r, other)
	}
	if r.Status != Free || other.Status != Free {
		return r, fmt.Errorf("%w: cannot merge non-free ranges %v <-> %v", ErrInvariant, r, other)
	}
	r.Upper = other.Upper
	return r, nil
}

// Ranges is the allocator's working list.
type Ranges []Range

func (rs Ranges) String() string {
	parts := make([]string, len(rs))
	for i, r := range rs {
		parts[i] = r.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Free returns only the free ranges of rs.
func (rs Ranges) Free() Ranges {
	var out Ranges
	for _, r := range rs {
		if r.Status == Free {
			out = append(out, r)
		}
	}
	return out
}

// Coalesce merges neighbouring free ranges.
func (rs Ranges) Coalesce() (Ranges, error) {
	var out Ranges
	for _, r := range rs {
		if n := len(out); n > 0 && out[n-1].Status == Free && r.Status == Free {
			merged, err := out[n-1].Merge(r)
			if err != nil {
				return nil, err
			}
			out[n-1] = merged
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// Check verifies that rs tiles [low, high] exactly.
func (rs Ranges) Check(low, high uint32) error {
	if len(rs) == 0 {
		return fmt.Errorf("%w: empty range list", ErrInvariant)
	}
	if rs[0].Lower != low || rs[len(rs)-1].Upper != high {
		return fmt.Errorf("%w: %v does not span [0x%08X, 0x%08X]", ErrInvariant, rs, low, high)
	}
	for i, r := range rs {
		if r.Lower > r.Upper {
			return fmt.Errorf("%w: inverted range %v", ErrInvariant, r)
		}
		if i > 0 && uint64(rs[i-1].Upper)+1 != uint64(r.Lower) {
			return fmt.Errorf("%w: %v and %v are not contiguous", ErrInvariant, rs[i-1], r)
		}
	}
	return nil
}
