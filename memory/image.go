package memory

import (
	"fmt"
	"io"
	"sort"
)

const (
	PageSize  = 4096
	pageWords = PageSize / 4
)

// Page is one 4 KiB page of the image. A bit in Initialized is set for
// every word that was written at least once.
type Page struct {
	Start       uint32
	Words       [pageWords]uint32
	Initialized [pageWords / 32]uint32
}

// Image is a sparse, little-endian memory image keyed by the upper 20 bits
// of the address.
type Image map[uint32]*Page

func NewImage() Image { return make(Image) }

func (m Image) page(addr uint32) *Page {
	key := addr >> 12
	p, ok := m[key]
	if !ok {
		p = &Page{Start: key << 12}
		m[key] = p
	}
	return p
}

func (p *Page) mark(addr uint32) {
	word := (addr % PageSize) / 4
	p.Initialized[word/32] |= 1 << (word % 32)
}

func (p *Page) initialized(addr uint32) bool {
	word := (addr % PageSize) / 4
	return (p.Initialized[word/32]>>(word%32))&1 == 1
}

// StoreByte stores b at addr, leaving the other bytes of the word alone.
func (m Image) StoreByte(addr uint32, b byte) {
	p := m.page(addr)
	shift := (addr % 4) * 8
	w := &p.Words[(addr%PageSize)/4]
	*w = (*w &^ (0xFF << shift)) | uint32(b)<<shift
	p.mark(addr)
}

// StoreBytes stores data starting at addr.
func (m Image) StoreBytes(addr uint32, data []byte) {
	for i, b := range data {
		m.StoreByte(addr+uint32(i), b)
	}
}

// StoreWord stores a word at a word aligned address.
func (m Image) StoreWord(addr, value uint32) error {
	if addr%4 != 0 {
		return fmt.Errorf("unaligned word write at 0x%08X", addr)
	}
	p := m.page(addr)
	p.Words[(addr%PageSize)/4] = value
	p.mark(addr)
	return nil
}

// LoadWord returns the word containing addr and whether it was ever written.
func (m Image) LoadWord(addr uint32) (uint32, bool) {
	p, ok := m[addr>>12]
	if !ok || !p.initialized(addr) {
		return 0, false
	}
	return p.Words[(addr%PageSize)/4], true
}

// Pages returns the page keys in ascending order.
func (m Image) Pages() []uint32 {
	keys := make([]uint32, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Dump writes every initialized word as "address: value" lines.
func (m Image) Dump(w io.Writer) error {
	for _, key := range m.Pages() {
		p := m[key]
		for i := range p.Words {
			addr := p.Start + uint32(i)*4
			if !p.initialized(addr) {
				continue
			}
			if _, err := fmt.Fprintf(w, "0x%08X: 0x%08X\n", addr, p.Words[i]); err != nil {
				return err
			}
		}
	}
	return nil
}
