// Package portaudio plays pipe output on default audio device.
package portaudio

import (
	"encoding/binary"
	"errors"

	"github.com/gordonklaus/portaudio"
)

// DefaultFramesPerBuffer is used when FramesPerBuffer is not set.
const DefaultFramesPerBuffer = 1024

var terminate = portaudio.Terminate

type (
	// Sink represets portaudio sink which allows to play audio using default device.
	Sink struct {
		SampleRate      int
		NumChannels     int
		FramesPerBuffer int

		stream stream
		chunker
	}

	// stream is a started blocking portaudio stream.
	stream interface {
		Write() error
		Stop() error
		Close() error
	}

	// chunker packs arbitrary sized frames into fixed stream buffer.
	chunker struct {
		buf   []int16
		n     int
		flush func() error
	}
)

// Sink writes frames to portaudio stream.
// It aslo initilizes a portaudio api with default stream.
func (s *Sink) Sink(string) (func([]byte) error, int, int, error) {
	if s.FramesPerBuffer <= 0 {
		s.FramesPerBuffer = DefaultFramesPerBuffer
	}
	s.chunker = chunker{buf: make([]int16, s.FramesPerBuffer*s.NumChannels)}
	err := portaudio.Initialize()
	if err != nil {
		return nil, 0, 0, err
	}
	st, err := portaudio.OpenDefaultStream(0, s.NumChannels, float64(s.SampleRate), s.FramesPerBuffer, &s.chunker.buf)
	if err != nil {
		terminate()
		return nil, 0, 0, err
	}
	err = st.Start()
	if err != nil {
		st.Close()
		terminate()
		return nil, 0, 0, err
	}
	s.stream = st
	s.chunker.flush = st.Write
	return s.push, s.SampleRate, s.NumChannels, nil
}

// Flush plays buffered tail and terminates portaudio structures. Stream
// is closed and portaudio is terminated even if playback fails.
func (s *Sink) Flush(string) error {
	if s.stream == nil {
		return nil
	}
	stream := s.stream
	s.stream = nil
	errDrain := s.drain()
	errStop := stream.Stop()
	errClose := stream.Close()
	return errors.Join(errDrain, errStop, errClose, terminate())
}

// push copies little-endian samples into buffer and flushes it every time
// it's full.
func (c *chunker) push(b []byte) error {
	for len(b) >= 2 {
		c.buf[c.n] = int16(binary.LittleEndian.Uint16(b))
		c.n++
		b = b[2:]
		if c.n == len(c.buf) {
			c.n = 0
			if err := c.flush(); err != nil {
				return err
			}
		}
	}
	return nil
}

// drain pads the pending samples with silence and flushes them.
func (c *chunker) drain() error {
	if c.n == 0 {
		return nil
	}
	for i := c.n; i < len(c.buf); i++ {
		c.buf[i] = 0
	}
	c.n = 0
	return c.flush()
}
