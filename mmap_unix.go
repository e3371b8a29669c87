//go:build unix

package csvmonkey

import (
	"os"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// MappedSource exposes a memory-mapped file as a [ByteSource]. The whole file
// is mapped read-only once; Refill is a pure window slide with no I/O.
type MappedSource struct {
	mapping []byte // full mapping, nil once closed or for empty files
	window  []byte // unconsumed remainder of the mapping
}

var _ ByteSource = (*MappedSource)(nil)

// OpenMapped opens path, maps it read-only and advises the kernel of
// sequential access. Open, stat and map failures are fatal to the source and
// reported immediately; there is no partial-success state.
func OpenMapped(path string) (*MappedSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open")
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, errors.Wrap(err, "stat")
	}

	size := st.Size()
	if size == 0 {
		return &MappedSource{}, nil
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, errors.Wrap(err, "mmap")
	}
	if err := unix.Madvise(data, unix.MADV_SEQUENTIAL); err != nil {
		_ = unix.Munmap(data)
		return nil, errors.Wrap(err, "madvise")
	}

	return &MappedSource{mapping: data, window: data}, nil
}

// Window returns the unconsumed remainder of the mapping.
func (m *MappedSource) Window() []byte {
	return m.window
}

// Refill slides the window forward, dropping everything but the last keep
// bytes. The whole file is already resident, so no new bytes are ever loaded;
// false means the mapping is exhausted.
func (m *MappedSource) Refill(keep int) (bool, error) {
	if keep < 0 || keep > len(m.window) {
		return false, errors.Errorf("refill: keep %d out of range [0, %d]", keep, len(m.window))
	}
	m.window = m.window[len(m.window)-keep:]
	return len(m.window) > 0, nil
}

// Close unmaps the file. The window must not be used afterwards.
func (m *MappedSource) Close() error {
	if m.mapping == nil {
		return nil
	}
	data := m.mapping
	m.mapping = nil
	m.window = nil
	return unix.Munmap(data)
}
