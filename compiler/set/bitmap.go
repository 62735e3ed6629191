package set

import (
	"math/bits"

	"tlog.app/go/tlog/tlwire"
)

type (
	// Bitmap is a growable set of small non-negative ints.
	Bitmap struct {
		w []uint64
	}
)

func MakeBitmap(size int) Bitmap {
	return Bitmap{
		w: make([]uint64, (size+63)/64),
	}
}

func (s *Bitmap) Set(i int) {
	w, bit := i/64, uint(i%64)

	for w >= len(s.w) {
		s.w = append(s.w, 0)
	}

	s.w[w] |= 1 << bit
}

func (s *Bitmap) Clear(i int) {
	w, bit := i/64, uint(i%64)

	if w < len(s.w) {
		s.w[w] &^= 1 << bit
	}
}

func (s *Bitmap) IsSet(i int) bool {
	w, bit := i/64, uint(i%64)

	return w < len(s.w) && s.w[w]&(1<<bit) != 0
}

func (s *Bitmap) Size() (n int) {
	for _, x := range s.w {
		n += bits.OnesCount64(x)
	}

	return n
}

// Range calls f for set elements in increasing order until f returns false.
func (s *Bitmap) Range(f func(i int) bool) {
	for w, x := range s.w {
		for x != 0 {
			bit := bits.TrailingZeros64(x)
			x &^= 1 << uint(bit)

			if !f(w*64 + bit) {
				return
			}
		}
	}
}

func (s Bitmap) TlogAppend(b []byte) []byte {
	var e tlwire.LowEncoder

	b = e.AppendTag(b, tlwire.Array, -1)

	s.Range(func(i int) bool {
		b = e.AppendInt(b, i)

		return true
	})

	return e.AppendBreak(b)
}
