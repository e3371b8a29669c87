package csvmonkey

import (
	"io"

	"github.com/pkg/errors"
)

// DefaultBufferSize is the capacity of a [BufferedSource] created by
// [NewBufferedSource].
const DefaultBufferSize = 128 * 1024

// BufferedSource adapts any io.Reader to the [ByteSource] capability. It owns
// a single fixed-capacity buffer; the buffer never grows, so a row or cell
// longer than capacity minus the carried-over tail can never be buffered.
type BufferedSource struct {
	r    io.Reader
	buf  []byte // fixed-capacity storage
	size int    // valid bytes in buf
	err  error  // sticky read error, replayed on later refills

	// One byte read while probing a full buffer for end of stream. It is
	// delivered ahead of the next read once the window has room again.
	pending    byte
	hasPending bool
}

var _ ByteSource = (*BufferedSource)(nil)

// NewBufferedSource returns a BufferedSource over r with [DefaultBufferSize]
// capacity.
func NewBufferedSource(r io.Reader) *BufferedSource {
	return NewBufferedSourceSize(r, DefaultBufferSize)
}

// NewBufferedSourceSize returns a BufferedSource over r with the given buffer
// capacity. Non-positive capacities fall back to [DefaultBufferSize].
func NewBufferedSourceSize(r io.Reader, capacity int) *BufferedSource {
	if capacity <= 0 {
		capacity = DefaultBufferSize
	}
	return &BufferedSource{r: r, buf: make([]byte, capacity)}
}

// Window returns the valid prefix of the buffer.
func (b *BufferedSource) Window() []byte {
	return b.buf[:b.size]
}

// Refill copies the last keep bytes of the window to the front of the buffer,
// then issues one read into the remaining capacity. End of stream reports
// (false, nil). A refill with the buffer entirely unconsumed reports
// [ErrRowTooLarge] only when the stream still has bytes pending: a full
// window at end of stream is end of data, so an unterminated final row that
// exactly fills the buffer still parses.
func (b *BufferedSource) Refill(keep int) (bool, error) {
	if keep < 0 || keep > b.size {
		return false, errors.Errorf("refill: keep %d out of range [0, %d]", keep, b.size)
	}

	copy(b.buf, b.buf[b.size-keep:b.size])
	b.size = keep

	appended := 0
	if b.hasPending && b.size < len(b.buf) {
		b.buf[b.size] = b.pending
		b.size++
		b.hasPending = false
		appended = 1
	}

	if b.err != nil {
		if b.err == io.EOF {
			return appended > 0, nil
		}
		return false, errors.Wrap(b.err, "read")
	}

	if b.size == len(b.buf) {
		if b.hasPending {
			return false, ErrRowTooLarge
		}
		// No room to append: whether the row is too large depends on
		// whether the stream is exhausted. Probe one byte to find out.
		var probe [1]byte
		n, err := b.r.Read(probe[:])
		if err != nil {
			b.err = err
		}
		if n > 0 {
			b.pending = probe[0]
			b.hasPending = true
			return false, ErrRowTooLarge
		}
		if err == nil || err == io.EOF {
			return false, nil
		}
		return false, errors.Wrap(err, "read")
	}

	n, err := b.r.Read(b.buf[b.size:])
	b.size += n
	if err != nil {
		b.err = err
	}
	if n+appended > 0 {
		return true, nil
	}
	if err == nil || err == io.EOF {
		return false, nil
	}
	return false, errors.Wrap(err, "read")
}

// Close closes the underlying reader when it implements io.Closer.
func (b *BufferedSource) Close() error {
	if c, ok := b.r.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
