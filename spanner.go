package csvmonkey

// probeWidth is the number of bytes examined per scan probe. A probe that
// finds no stop byte returns probeWidth as the "keep scanning" sentinel.
const probeWidth = 16

// spanner locates the first member of a small stop set within a fixed
// probeWidth-byte chunk. Two implementations exist: a hardware-accelerated
// scan (spanner_simd.go) and the portable membership-table scan below. Both
// agree bit-for-bit on every input.
//
// The stop set may hold at most probeWidth byte values and must not contain
// NUL: short tails are probed through a zero-padded chunk, so a NUL stop
// would report phantom matches past the end of real data.
type spanner struct {
	stops []byte
	table [256]bool
}

func newSpanner(stops ...byte) *spanner {
	if len(stops) > probeWidth {
		panic("csvmonkey: stop set exceeds probe width")
	}
	s := &spanner{stops: stops}
	for _, b := range stops {
		if b == 0 {
			panic("csvmonkey: NUL is not a valid stop byte")
		}
		s.table[b] = true
	}
	return s
}

// scanPortable probes exactly probeWidth bytes, four at a time, and returns
// the offset of the first stop-set member, or probeWidth if none occurs.
// Precondition: len(p) >= probeWidth.
func (s *spanner) scanPortable(p []byte) int {
	_ = p[probeWidth-1]
	for i := 0; i < probeWidth; i += 4 {
		t0 := s.table[p[i]]
		t1 := s.table[p[i+1]]
		t2 := s.table[p[i+2]]
		t3 := s.table[p[i+3]]
		if t0 || t1 || t2 || t3 {
			if t0 {
				return i
			}
			if t1 {
				return i + 1
			}
			if t2 {
				return i + 2
			}
			return i + 3
		}
	}
	return probeWidth
}
