// Package wav reads audio input and writes pipe output in WAV format.
package wav

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// BitDepth of written files.
const BitDepth = 16

type (
	// Source reads from wav file.
	// This component cannot be reused for consequent runs.
	Source struct {
		file     *os.File
		decoder  *wav.Decoder
		buf      *audio.IntBuffer
		scale    float64
		channels int
	}

	// Sink saves audio to wav file.
	Sink struct {
		Path        string
		SampleRate  int
		NumChannels int

		file    *os.File
		encoder *wav.Encoder
	}
)

var (
	// ErrUnsupportedBitDepth is returned when unsupported bit depth is used.
	ErrUnsupportedBitDepth = errors.New("only 16, 24 and 32 bit depth is supported")
	// ErrInvalidFile is returned when file doesn't contain valid wav data.
	ErrInvalidFile = errors.New("wav is not valid")
)

// Open opens the wav file, wav attributes are accessible after that.
func Open(path string) (*Source, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	decoder := wav.NewDecoder(file)
	if !decoder.IsValidFile() {
		if err := file.Close(); err != nil {
			return nil, fmt.Errorf("wav is not valid, failed to close the file %v: %w", path, err)
		}
		return nil, fmt.Errorf("%v: %w", path, ErrInvalidFile)
	}

	switch decoder.BitDepth {
	case 16, 24, 32:
	default:
		file.Close()
		return nil, fmt.Errorf("%v: %w", path, ErrUnsupportedBitDepth)
	}

	format := decoder.Format()
	return &Source{
		file:    file,
		decoder: decoder,
		buf: &audio.IntBuffer{
			Format:         format,
			SourceBitDepth: int(decoder.BitDepth),
		},
		scale:    float64(int64(1) << (decoder.BitDepth - 1)),
		channels: format.NumChannels,
	}, nil
}

// SampleRate returns sample rate of the file.
func (s *Source) SampleRate() int {
	return int(s.decoder.SampleRate)
}

// NumChannels returns number of channels of the file.
func (s *Source) NumChannels() int {
	return s.channels
}

// Read decodes interleaved samples into p. Number of read samples is
// always a multiple of channels. io.EOF is returned when file is drained.
func (s *Source) Read(p []float64) (int, error) {
	size := len(p) - len(p)%s.channels
	if size == 0 {
		return 0, io.ErrShortBuffer
	}
	if cap(s.buf.Data) < size {
		s.buf.Data = make([]int, size)
	}
	s.buf.Data = s.buf.Data[:size]

	n, err := s.decoder.PCMBuffer(s.buf)
	if err != nil && !errors.Is(err, io.EOF) {
		return 0, err
	}
	if n == 0 {
		return 0, io.EOF
	}
	for i := 0; i < n; i++ {
		p[i] = float64(s.buf.Data[i]) / s.scale
	}
	return n, nil
}

// Close closes the file.
func (s *Source) Close() error {
	return s.file.Close()
}

// Sink returns new Sink function instance.
func (s *Sink) Sink(pipeID string) (func([]byte) error, int, int, error) {
	if s.SampleRate <= 0 || s.NumChannels <= 0 {
		return nil, 0, 0, fmt.Errorf("invalid wav format: %d Hz %d channels", s.SampleRate, s.NumChannels)
	}
	f, err := os.Create(s.Path)
	if err != nil {
		return nil, 0, 0, err
	}
	s.file = f
	s.encoder = wav.NewEncoder(f, s.SampleRate, BitDepth, s.NumChannels, 1)

	ib := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: s.NumChannels,
			SampleRate:  s.SampleRate,
		},
		SourceBitDepth: BitDepth,
	}

	return func(b []byte) error {
		n := len(b) / 2
		if cap(ib.Data) < n {
			ib.Data = make([]int, n)
		}
		ib.Data = ib.Data[:n]
		for i := range ib.Data {
			ib.Data[i] = int(int16(binary.LittleEndian.Uint16(b[2*i:])))
		}
		return s.encoder.Write(ib)
	}, s.SampleRate, s.NumChannels, nil
}

// Flush flushes encoder and closes the file.
func (s *Sink) Flush(string) error {
	if s.encoder == nil {
		return nil
	}
	err := s.encoder.Close()
	s.encoder = nil
	if cerr := s.file.Close(); err == nil {
		err = cerr
	}
	return err
}
