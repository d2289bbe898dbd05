package intarray

import "fmt"

// Worded packs fixed-width cells into 64-bit words such that no cell ever
// straddles a word boundary: when bitsPerEntry doesn't divide 64 evenly,
// the tail bits of each word are left unused (padding), matching vanilla
// Minecraft's long-array block storage.
type Worded struct {
	words        []uint64
	size         int
	bitsPerEntry int
	perWord      int
}

// NewWorded allocates a Worded array of size cells at bitsPerEntry bits
// each, zero-initialized.
func NewWorded(size, bitsPerEntry int) *Worded {
	perWord := 64 / bitsPerEntry
	wordCount := (size + perWord - 1) / perWord
	return &Worded{
		words:        make([]uint64, wordCount),
		size:         size,
		bitsPerEntry: bitsPerEntry,
		perWord:      perWord,
	}
}

// WordedFromData wraps pre-packed words (e.g. decoded off disk) as a
// Worded array.
func WordedFromData(words []uint64, size, bitsPerEntry int) *Worded {
	return &Worded{words: words, size: size, bitsPerEntry: bitsPerEntry, perWord: 64 / bitsPerEntry}
}

func (w *Worded) Size() int            { return w.size }
func (w *Worded) BitsPerEntry() int    { return w.bitsPerEntry }
func (w *Worded) MaxValue() uint64     { return maxValue(w.bitsPerEntry) }
func (w *Worded) Data() []uint64       { return w.words }

func (w *Worded) Get(index int) (uint64, error) {
	if index < 0 || index >= w.size {
		return 0, fmt.Errorf("%w: %d", ErrOutOfBounds, index)
	}
	wordIdx := index / w.perWord
	bitOff := uint((index % w.perWord) * w.bitsPerEntry)
	mask := maxValue(w.bitsPerEntry)
	return (w.words[wordIdx] >> bitOff) & mask, nil
}

func (w *Worded) Set(index int, value uint64) error {
	if index < 0 || index >= w.size {
		return fmt.Errorf("%w: %d", ErrOutOfBounds, index)
	}
	if value > maxValue(w.bitsPerEntry) {
		return fmt.Errorf("%w: %d", ErrValueTooLarge, value)
	}
	wordIdx := index / w.perWord
	bitOff := uint((index % w.perWord) * w.bitsPerEntry)
	mask := maxValue(w.bitsPerEntry)
	w.words[wordIdx] = (w.words[wordIdx] &^ (mask << bitOff)) | (value << bitOff)
	return nil
}

func (w *Worded) ForEach(f func(index int, value uint64)) {
	for i := 0; i < w.size; i++ {
		v, _ := w.Get(i)
		f(i, v)
	}
}

func (w *Worded) Resize(newBits int) (Array, error) {
	if newBits < w.bitsPerEntry {
		// shrinking must still fit every stored value
		max := uint64(0)
		w.ForEach(func(_ int, v uint64) {
			if v > max {
				max = v
			}
		})
		if max > maxValue(newBits) {
			return nil, fmt.Errorf("intarray: cannot shrink Worded to %d bits, value %d does not fit", newBits, max)
		}
	}
	nw := NewWorded(w.size, newBits)
	w.ForEach(func(i int, v uint64) {
		_ = nw.Set(i, v)
	})
	return nw, nil
}
