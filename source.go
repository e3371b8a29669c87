package csvmonkey

// ByteSource is the capability a [Reader] parses from: a window of buffered
// bytes plus a refill protocol that slides the window through the input.
//
// Exactly one Reader should borrow from a ByteSource at a time. Every call to
// Refill invalidates all byte slices previously obtained through Window,
// including the [Cell] views carved from them.
type ByteSource interface {
	// Window returns the currently buffered bytes. The returned slice
	// reflects the state after the most recent Refill and is only valid
	// until the next Refill.
	Window() []byte

	// Refill preserves the last keep bytes of the current window at the
	// start of storage and appends more bytes from the underlying medium.
	// It reports whether any new bytes were made available; false signals
	// end of data. The precondition 0 <= keep <= len(Window()) is the
	// caller's responsibility.
	Refill(keep int) (bool, error)

	// Close releases the source's storage. The window must not be used
	// afterwards.
	Close() error
}
