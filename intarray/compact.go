package intarray

import "fmt"

// Compact packs fixed-width cells into a contiguous bitstream with no
// per-word padding: a cell may straddle a 64-bit word boundary. This is
// the "tight"/unpadded layout (Litematica-style), as opposed to Worded's
// vanilla word-aligned layout.
type Compact struct {
	words        []uint64
	size         int
	bitsPerEntry int
}

// NewCompact allocates a Compact array of size cells at bitsPerEntry bits
// each, zero-initialized.
func NewCompact(size, bitsPerEntry int) *Compact {
	totalBits := size * bitsPerEntry
	wordCount := (totalBits + 63) / 64
	if wordCount == 0 {
		wordCount = 1
	}
	return &Compact{words: make([]uint64, wordCount), size: size, bitsPerEntry: bitsPerEntry}
}

// CompactFromData wraps pre-packed words as a Compact array.
func CompactFromData(words []uint64, size, bitsPerEntry int) *Compact {
	return &Compact{words: words, size: size, bitsPerEntry: bitsPerEntry}
}

func (c *Compact) Size() int         { return c.size }
func (c *Compact) BitsPerEntry() int { return c.bitsPerEntry }
func (c *Compact) MaxValue() uint64  { return maxValue(c.bitsPerEntry) }
func (c *Compact) Data() []uint64    { return c.words }

func (c *Compact) Get(index int) (uint64, error) {
	if index < 0 || index >= c.size {
		return 0, fmt.Errorf("%w: %d", ErrOutOfBounds, index)
	}
	bitStart := index * c.bitsPerEntry
	wordIdx := bitStart / 64
	bitOff := uint(bitStart % 64)
	mask := maxValue(c.bitsPerEntry)

	value := c.words[wordIdx] >> bitOff
	bitsFromFirst := 64 - bitOff
	if uint(c.bitsPerEntry) > bitsFromFirst && wordIdx+1 < len(c.words) {
		value |= c.words[wordIdx+1] << bitsFromFirst
	}
	return value & mask, nil
}

func (c *Compact) Set(index int, value uint64) error {
	if index < 0 || index >= c.size {
		return fmt.Errorf("%w: %d", ErrOutOfBounds, index)
	}
	if value > maxValue(c.bitsPerEntry) {
		return fmt.Errorf("%w: %d", ErrValueTooLarge, value)
	}
	bitStart := index * c.bitsPerEntry
	wordIdx := bitStart / 64
	bitOff := uint(bitStart % 64)
	mask := maxValue(c.bitsPerEntry)

	c.words[wordIdx] = (c.words[wordIdx] &^ (mask << bitOff)) | (value << bitOff)
	bitsFromFirst := 64 - bitOff
	if uint(c.bitsPerEntry) > bitsFromFirst && wordIdx+1 < len(c.words) {
		remaining := uint(c.bitsPerEntry) - bitsFromFirst
		tailMask := maxValue(int(remaining))
		c.words[wordIdx+1] = (c.words[wordIdx+1] &^ tailMask) | (value >> bitsFromFirst)
	}
	return nil
}

func (c *Compact) ForEach(f func(index int, value uint64)) {
	for i := 0; i < c.size; i++ {
		v, _ := c.Get(i)
		f(i, v)
	}
}

func (c *Compact) Resize(newBits int) (Array, error) {
	if newBits < c.bitsPerEntry {
		max := uint64(0)
		c.ForEach(func(_ int, v uint64) {
			if v > max {
				max = v
			}
		})
		if max > maxValue(newBits) {
			return nil, fmt.Errorf("intarray: cannot shrink Compact to %d bits, value %d does not fit", newBits, max)
		}
	}
	nc := NewCompact(c.size, newBits)
	c.ForEach(func(i int, v uint64) {
		_ = nc.Set(i, v)
	})
	return nc, nil
}
