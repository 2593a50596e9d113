package control

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// Open opens the control channel at path. Reads from named pipes may block
// on this platform.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w: %v", path, ErrNotReadable, err)
	}
	return NewReader(f), nil
}
