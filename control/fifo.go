//go:build !windows

package control

import (
	"errors"
	"fmt"
	"io"

	"golang.org/x/sys/unix"
)

// fd is a raw non-blocking file descriptor. It bypasses os.File so reads
// never park the caller waiting for data.
type fd int

// Open opens the control channel at path for non-blocking reads.
func Open(path string) (*Reader, error) {
	f, err := unix.Open(path, unix.O_RDONLY|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		if errors.Is(err, unix.ENOENT) {
			return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w: %v", path, ErrNotReadable, err)
	}
	return NewReader(fd(f)), nil
}

// Read implements io.Reader. No data available is reported as (0, nil).
func (f fd) Read(p []byte) (int, error) {
	n, err := unix.Read(int(f), p)
	switch {
	case errors.Is(err, unix.EAGAIN), errors.Is(err, unix.EINTR):
		return 0, nil
	case err != nil:
		return 0, err
	case n == 0 && len(p) > 0:
		return 0, io.EOF
	}
	return n, nil
}

// Close releases the descriptor.
func (f fd) Close() error {
	return unix.Close(int(f))
}
