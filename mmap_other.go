//go:build !unix

package csvmonkey

// MappedSource is unavailable on platforms without mmap support; use
// [BufferedSource] over an os.File instead.
type MappedSource struct{}

var _ ByteSource = (*MappedSource)(nil)

// OpenMapped always fails with [ErrMappingUnsupported] on this platform.
func OpenMapped(path string) (*MappedSource, error) {
	return nil, ErrMappingUnsupported
}

func (m *MappedSource) Window() []byte { return nil }

func (m *MappedSource) Refill(keep int) (bool, error) { return false, ErrMappingUnsupported }

func (m *MappedSource) Close() error { return nil }
