package mpx

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/aiff"
	"github.com/go-audio/audio"
	"github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"

	"github.com/dudk/mpxgen/wav"
)

// ErrUnsupportedFormat is returned when audio file format isn't known.
var ErrUnsupportedFormat = errors.New("unsupported audio format")

// Source is a decoded audio input.
type Source interface {
	SampleRate() int
	NumChannels() int
	// Read decodes interleaved samples in [-1, 1] into p and returns
	// number of samples. io.EOF is returned when input is drained.
	Read(p []float64) (int, error)
	Close() error
}

// Formats returns file extensions of supported audio formats.
func Formats() []string {
	return []string{".aif", ".aiff", ".mp3", ".oga", ".ogg", ".wav", ".wave"}
}

// Open opens audio file. Format is chosen by extension.
func Open(path string) (Source, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav", ".wave":
		s, err := wav.Open(path)
		if err != nil {
			return nil, err
		}
		return s, nil
	case ".aif", ".aiff":
		return openAIFF(path)
	case ".mp3":
		return openMP3(path)
	case ".ogg", ".oga":
		return openOgg(path)
	}
	return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, path)
}

type aiffSource struct {
	file     *os.File
	decoder  *aiff.Decoder
	buf      *audio.IntBuffer
	scale    float64
	channels int
}

func openAIFF(path string) (*aiffSource, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	decoder := aiff.NewDecoder(file)
	if !decoder.IsValidFile() {
		file.Close()
		return nil, fmt.Errorf("%w: invalid aiff file %v", ErrUnsupportedFormat, path)
	}
	decoder.ReadInfo()
	format := decoder.Format()
	if format == nil || format.NumChannels <= 0 {
		file.Close()
		return nil, fmt.Errorf("%w: unsupported aiff layout %v", ErrUnsupportedFormat, path)
	}
	switch decoder.BitDepth {
	case 16, 24, 32:
	default:
		file.Close()
		return nil, fmt.Errorf("%w: %d bit aiff %v", ErrUnsupportedFormat, decoder.BitDepth, path)
	}
	return &aiffSource{
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

func (s *aiffSource) SampleRate() int  { return s.buf.Format.SampleRate }
func (s *aiffSource) NumChannels() int { return s.channels }
func (s *aiffSource) Close() error     { return s.file.Close() }

func (s *aiffSource) Read(p []float64) (int, error) {
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

// mp3Source decodes to stereo 16-bit little-endian.
type mp3Source struct {
	file    *os.File
	decoder *mp3.Decoder
	buf     []byte
}

func openMP3(path string) (*mp3Source, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	decoder, err := mp3.NewDecoder(file)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("%w: %v: %v", ErrUnsupportedFormat, path, err)
	}
	return &mp3Source{
		file:    file,
		decoder: decoder,
	}, nil
}

func (s *mp3Source) SampleRate() int  { return s.decoder.SampleRate() }
func (s *mp3Source) NumChannels() int { return 2 }
func (s *mp3Source) Close() error     { return s.file.Close() }

func (s *mp3Source) Read(p []float64) (int, error) {
	size := (len(p) / 2) * 4
	if size == 0 {
		return 0, io.ErrShortBuffer
	}
	if cap(s.buf) < size {
		s.buf = make([]byte, size)
	}
	s.buf = s.buf[:size]
	n, err := io.ReadFull(s.decoder, s.buf)
	if errors.Is(err, io.ErrUnexpectedEOF) {
		err = nil
	}
	// whole frames only.
	n -= n % 4
	if n == 0 {
		if err == nil {
			err = io.EOF
		}
		return 0, err
	}
	for i := 0; i < n/2; i++ {
		p[i] = float64(int16(uint16(s.buf[2*i])|uint16(s.buf[2*i+1])<<8)) / 32768
	}
	return n / 2, nil
}

type oggSource struct {
	file   *os.File
	reader *oggvorbis.Reader
	buf    []float32
}

func openOgg(path string) (*oggSource, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	reader, err := oggvorbis.NewReader(file)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("%w: %v: %v", ErrUnsupportedFormat, path, err)
	}
	return &oggSource{
		file:   file,
		reader: reader,
	}, nil
}

func (s *oggSource) SampleRate() int  { return s.reader.SampleRate() }
func (s *oggSource) NumChannels() int { return s.reader.Channels() }
func (s *oggSource) Close() error     { return s.file.Close() }

func (s *oggSource) Read(p []float64) (int, error) {
	size := len(p) - len(p)%s.reader.Channels()
	if size == 0 {
		return 0, io.ErrShortBuffer
	}
	if cap(s.buf) < size {
		s.buf = make([]float32, size)
	}
	s.buf = s.buf[:size]
	n, err := s.reader.Read(s.buf)
	if n == 0 {
		if err == nil {
			err = io.EOF
		}
		return 0, err
	}
	for i := 0; i < n; i++ {
		p[i] = float64(s.buf[i])
	}
	return n, nil
}
