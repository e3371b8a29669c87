//go:build goexperiment.simd && amd64

package csvmonkey

import (
	"math/bits"
	"simd/archsimd"
	"unsafe"

	"golang.org/x/sys/cpu"
)

// useSIMD indicates whether the accelerated scan path is available at
// runtime. Set once at init time.
//
// NOTE: archsimd mask extraction (ToBits) generates AVX-512BW instructions,
// which SIGILL on CPUs without AVX-512 support, so all three feature flags
// are required before dispatching to the accelerated path.
var useSIMD bool

func init() {
	useSIMD = cpu.X86.HasAVX512F && cpu.X86.HasAVX512BW && cpu.X86.HasAVX512VL
}

// scan probes exactly probeWidth bytes with one hardware compare per stop
// byte and returns the offset of the first stop-set member, or probeWidth if
// none occurs. Behaviorally identical to scanPortable.
// Precondition: len(p) >= probeWidth.
func (s *spanner) scan(p []byte) int {
	if !useSIMD {
		return s.scanPortable(p)
	}

	chunk := archsimd.LoadInt8x16((*[probeWidth]int8)(unsafe.Pointer(&p[0])))
	var mask uint16
	for _, b := range s.stops {
		mask |= chunk.Equal(archsimd.BroadcastInt8x16(int8(b))).ToBits()
	}
	if mask == 0 {
		return probeWidth
	}
	return bits.TrailingZeros16(mask)
}
