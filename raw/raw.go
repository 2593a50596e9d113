// Package raw writes pipe output as headerless PCM.
package raw

import (
	"bufio"
	"errors"
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

// Stdout is a path that refers to standard output.
const Stdout = "-"

// ErrTerminal is returned when output is a terminal.
var ErrTerminal = errors.New("not writing audio data to a terminal")

// Sink writes signed 16-bit little-endian frames to a file or stdout.
type Sink struct {
	Path        string
	SampleRate  int
	NumChannels int

	w    *bufio.Writer
	file io.Closer
}

// Sink opens output and returns writer closure.
func (s *Sink) Sink(pipeID string) (func([]byte) error, int, int, error) {
	var out io.Writer
	if s.Path == Stdout || s.Path == "" {
		if isTerminal(os.Stdout) {
			return nil, 0, 0, ErrTerminal
		}
		out = os.Stdout
	} else {
		f, err := os.Create(s.Path)
		if err != nil {
			return nil, 0, 0, err
		}
		s.file = f
		out = f
	}
	s.w = bufio.NewWriter(out)
	return func(b []byte) error {
		_, err := s.w.Write(b)
		return err
	}, s.SampleRate, s.NumChannels, nil
}

// Flush flushes buffered frames and closes the file.
func (s *Sink) Flush(string) error {
	if s.w == nil {
		return nil
	}
	err := s.w.Flush()
	s.w = nil
	if s.file != nil {
		if cerr := s.file.Close(); err == nil {
			err = cerr
		}
		s.file = nil
	}
	return err
}

var isTerminal = func(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
