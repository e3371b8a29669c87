//go:build !goexperiment.simd || !amd64

package csvmonkey

// scan probes exactly probeWidth bytes. Without the simd experiment the
// portable membership-table scan is the only implementation.
// Precondition: len(p) >= probeWidth.
func (s *spanner) scan(p []byte) int {
	return s.scanPortable(p)
}
