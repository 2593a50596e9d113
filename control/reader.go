package control

import (
	"bytes"
	"errors"
	"io"
)

// BufferSize is the capacity of the line buffer. Lines longer than
// BufferSize-1 bytes are truncated.
const BufferSize = 100

var (
	// ErrNotFound is returned when control channel path doesn't exist.
	ErrNotFound = errors.New("control channel not found")
	// ErrNotReadable is returned when control channel cannot be opened for reading.
	ErrNotReadable = errors.New("control channel not readable")
)

// Reader frames a non-blocking byte source into lines. The source must
// return (0, nil) when no data is available instead of blocking.
type Reader struct {
	src     io.Reader
	buf     [BufferSize]byte
	n       int  // pending bytes in buf
	discard bool // dropping the tail of a truncated line
}

// NewReader returns a line reader over src.
func NewReader(src io.Reader) *Reader {
	return &Reader{src: src}
}

// ReadLine returns the next complete line including its terminator. At
// most one read is issued to the source per call. False is returned if no
// complete line is available or the source failed.
func (r *Reader) ReadLine() (string, bool) {
	read := false
	for {
		if i := bytes.IndexByte(r.buf[:r.n], '\n'); i >= 0 {
			line := string(r.buf[:i+1])
			r.consume(i + 1)
			if r.discard {
				r.discard = false
				continue
			}
			return line, true
		}

		// buffer is full without terminator.
		if r.n == BufferSize-1 {
			line := string(r.buf[:r.n])
			r.n = 0
			if r.discard {
				continue
			}
			r.discard = true
			return line, true
		}

		if read {
			return "", false
		}
		read = true
		m, err := r.src.Read(r.buf[r.n : BufferSize-1])
		r.n += m
		if err == io.EOF && m == 0 {
			// writer is gone, pending bytes are its unterminated last line.
			discard := r.discard
			r.discard = false
			if r.n == 0 || discard {
				r.n = 0
				return "", false
			}
			line := string(r.buf[:r.n])
			r.n = 0
			return line, true
		}
		if err != nil && m == 0 {
			return "", false
		}
	}
}

// Close closes the source if it's closable.
func (r *Reader) Close() error {
	if c, ok := r.src.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (r *Reader) consume(n int) {
	copy(r.buf[:], r.buf[n:r.n])
	r.n -= n
}
