package intarray

import "testing"

func TestBitsForCapacity(t *testing.T) {
	cases := []struct {
		size int
		want int
	}{
		{0, 1}, {1, 1}, {2, 1}, {3, 2}, {4, 2}, {5, 3}, {256, 8}, {257, 9},
	}
	for _, c := range cases {
		if got := BitsForCapacity(c.size); got != c.want {
			t.Errorf("BitsForCapacity(%d) = %d, want %d", c.size, got, c.want)
		}
	}
}

func testArrayRoundTrip(t *testing.T, newArr func(size, bits int) Array) {
	t.Helper()
	const size = 4096
	for _, bits := range []int{1, 2, 3, 4, 5, 8, 9, 15, 16, 32} {
		arr := newArr(size, bits)
		want := make([]uint64, size)
		max := arr.MaxValue()
		for i := 0; i < size; i++ {
			v := uint64(i) % (max + 1)
			want[i] = v
			if err := arr.Set(i, v); err != nil {
				t.Fatalf("bits=%d Set(%d,%d): %v", bits, i, v, err)
			}
		}
		for i := 0; i < size; i++ {
			got, err := arr.Get(i)
			if err != nil {
				t.Fatalf("bits=%d Get(%d): %v", bits, i, err)
			}
			if got != want[i] {
				t.Errorf("bits=%d Get(%d) = %d, want %d", bits, i, got, want[i])
			}
		}
	}
}

func TestWordedRoundTrip(t *testing.T) {
	testArrayRoundTrip(t, func(size, bits int) Array { return NewWorded(size, bits) })
}

func TestCompactRoundTrip(t *testing.T) {
	testArrayRoundTrip(t, func(size, bits int) Array { return NewCompact(size, bits) })
}

func TestWordedBoundaryErrors(t *testing.T) {
	arr := NewWorded(16, 4)
	if _, err := arr.Get(-1); err == nil {
		t.Error("expected error for negative index")
	}
	if _, err := arr.Get(16); err == nil {
		t.Error("expected error for out-of-range index")
	}
	if err := arr.Set(0, 16); err == nil {
		t.Error("expected error for value exceeding 4 bits")
	}
}

func TestResizeGrow(t *testing.T) {
	arr := NewCompact(8, 2)
	for i := 0; i < 8; i++ {
		_ = arr.Set(i, uint64(i%4))
	}
	grown, err := arr.Resize(5)
	if err != nil {
		t.Fatalf("Resize: %v", err)
	}
	for i := 0; i < 8; i++ {
		got, _ := grown.Get(i)
		if got != uint64(i%4) {
			t.Errorf("after resize Get(%d) = %d, want %d", i, got, i%4)
		}
	}
}

func TestResizeShrinkRejectsOverflow(t *testing.T) {
	arr := NewWorded(4, 8)
	_ = arr.Set(0, 200)
	if _, err := arr.Resize(4); err == nil {
		t.Error("expected shrink to reject a value that no longer fits")
	}
}
