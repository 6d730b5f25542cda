package memory

import (
	"errors"
	"reflect"
	"testing"
)

func TestNewRangeRejectsInverted(t *testing.T) {
	if _, err := NewRange(0x20, 0x1F, Free, NoOwner); !errors.Is(err, ErrInvariant) {
		t.Fatalf("error = %v, want ErrInvariant", err)
	}
	r, err := NewRange(0x20, 0x20, Allocated, 3)
	if err != nil || r.Size() != 1 {
		t.Fatalf("single byte range: %v, %v", r, err)
	}
}

func TestRangeInsert(t *testing.T) {
	outer := freeRange(0x100, 0x1FF)
	tests := []struct {
		name   string
		middle Range
		want   []Range
	}{
		{
			"exact",
			Range{0x100, 0x1FF, Allocated, 0},
			[]Range{{0x100, 0x1FF, Allocated, 0}},
		},
		{
			"low end",
			Range{0x100, 0x10F, Allocated, 0},
			[]Range{{0x100, 0x10F, Allocated, 0}, freeRange(0x110, 0x1FF)},
		},
		{
			"high end",
			Range{0x1F0, 0x1FF, Allocated, 0},
			[]Range{freeRange(0x100, 0x1EF), {0x1F0, 0x1FF, Allocated, 0}},
		},
		{
			"middle",
			Range{0x140, 0x14F, Allocated, 0},
			[]Range{freeRange(0x100, 0x13F), {0x140, 0x14F, Allocated, 0}, freeRange(0x150, 0x1FF)},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := outer.Insert(tc.middle)
			if err != nil {
				t.Fatalf("Insert: %v", err)
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}

	if _, err := outer.Insert(Range{0x0F0, 0x10F, Allocated, 0}); !errors.Is(err, ErrInvariant) {
		t.Errorf("out of bounds insert error = %v", err)
	}
	busy := Range{0x100, 0x1FF, Allocated, 1}
	if _, err := busy.Insert(Range{0x100, 0x10F, Allocated, 0}); !errors.Is(err, ErrInvariant) {
		t.Errorf("insert into allocated error = %v", err)
	}
}

func TestRangeMerge(t *testing.T) {
	a := freeRange(0x00, 0x0F)
	merged, err := a.Merge(freeRange(0x10, 0x1F))
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if merged != freeRange(0x00, 0x1F) {
		t.Fatalf("merged = %v", merged)
	}
	if _, err := a.Merge(freeRange(0x11, 0x1F)); !errors.Is(err, ErrInvariant) {
		t.Errorf("merge across a hole error = %v", err)
	}
	if _, err := a.Merge(Range{0x10, 0x1F, Allocated, 2}); !errors.Is(err, ErrInvariant) {
		t.Errorf("merge with allocated error = %v", err)
	}
}

func TestRangeShrink(t *testing.T) {
	r := Range{0x100, 0x1FF, Allocated, 4}
	head, tail, err := r.Shrink(0x40)
	if err != nil {
		t.Fatalf("Shrink: %v", err)
	}
	if head != (Range{0x100, 0x1BF, Allocated, 4}) || tail != freeRange(0x1C0, 0x1FF) {
		t.Fatalf("Shrink = %v, %v", head, tail)
	}
	if _, _, err := r.Shrink(0x100); !errors.Is(err, ErrInvariant) {
		t.Errorf("shrinking to nothing error = %v", err)
	}
}

func TestRangeGrow(t *testing.T) {
	r := Range{0x00, 0x0F, Allocated, 0}
	next := []Range{freeRange(0x10, 0x1F), freeRange(0x20, 0x2F), {0x30, 0x3F, Allocated, 1}}

	grown, rest, err := r.Grow(next, 0x18)
	if err != nil {
		t.Fatalf("Grow: %v", err)
	}
	if grown.Upper != 0x27 {
		t.Errorf("grown = %v", grown)
	}
	want := []Range{freeRange(0x28, 0x2F), {0x30, 0x3F, Allocated, 1}}
	if !reflect.DeepEqual(rest, want) {
		t.Errorf("rest = %v, want %v", rest, want)
	}
	if next[1].Lower != 0x20 {
		t.Errorf("Grow modified its input: %v", next)
	}

	if _, _, err := r.Grow(next, 0x21); !errors.Is(err, ErrInvariant) {
		t.Errorf("growing into allocated error = %v", err)
	}
	if _, _, err := r.Grow(next[:1], 0x20); !errors.Is(err, ErrInvariant) {
		t.Errorf("growing past the list error = %v", err)
	}
	if _, _, err := r.Grow([]Range{freeRange(0x12, 0x1F)}, 4); !errors.Is(err, ErrInvariant) {
		t.Errorf("growing across a hole error = %v", err)
	}
}

func TestRangesCoalesce(t *testing.T) {
	rs := Ranges{freeRange(0, 9), freeRange(10, 19), {20, 29, Allocated, 0}, freeRange(30, 39), freeRange(40, 49)}
	got, err := rs.Coalesce()
	if err != nil {
		t.Fatalf("Coalesce: %v", err)
	}
	want := Ranges{freeRange(0, 19), {20, 29, Allocated, 0}, freeRange(30, 49)}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestRegionsDisjoint(t *testing.T) {
	for i := 1; i < len(Regions); i++ {
		prev, cur := Regions[i-1], Regions[i]
		if err := cur.Validate(); err != nil {
			t.Fatalf("%v", err)
		}
		if prev.End != cur.Start {
			t.Errorf("%v and %v are not adjacent", prev, cur)
		}
	}
	if Text.Start != 0x0A000000 || StaticData.Start != 0x10000000 || KernelText.Start != 0x80000000 ||
		KernelData.Start != 0x90000000 || MMIO.Start != 0xFFFF0000 || TopReserved.End != 0xFFFFFFFF {
		t.Errorf("unexpected region bounds: %v", Regions)
	}
}
