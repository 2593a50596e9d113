// Package mock provides mocks for pipeline components and allows to execute integration tests.
package mock

import (
	"io"

	"github.com/dudk/mpxgen"
	"github.com/dudk/mpxgen/control"
)

// Generator mocks a pipe.Generator interface. It produces Limit samples
// of Value, or of Signal if it's set. Zero Limit means endless signal.
type Generator struct {
	counter
	SampleRate  int
	Limit       int
	Value       float64
	Signal      func(i int) float64
	ErrorOnCall error
	ErrorOnOpen error
	Hooks
}

// Generator returns closure that fills buffers.
func (m *Generator) Generator(pipeID string) (func([]float64) (int, error), int, error) {
	if m.ErrorOnOpen != nil {
		return nil, 0, m.ErrorOnOpen
	}
	return func(b []float64) (int, error) {
		if m.ErrorOnCall != nil {
			return 0, m.ErrorOnCall
		}
		bs := len(b)
		if m.Limit > 0 {
			if m.Samples >= m.Limit {
				return 0, io.EOF
			}
			// check if we need a shorter.
			if left := m.Limit - m.Samples; left < bs {
				bs = left
			}
		}
		for i := 0; i < bs; i++ {
			if m.Signal != nil {
				b[i] = m.Signal(m.Samples + i)
			} else {
				b[i] = m.Value
			}
		}
		m.advance(bs)
		return bs, nil
	}, m.SampleRate, nil
}

// Flush implements pipe.Flusher.
func (m *Generator) Flush(string) error {
	return m.flush("generator")
}

// Resampler mocks a pipe.Resampler interface. It doesn't change samples,
// but records every ratio it was opened with.
type Resampler struct {
	counter
	Ratios        []float64
	InputRates    []int
	ErrorOnCall   error
	ErrorOnOpen   error
	ErrorOnReopen error
	Hooks
}

// Resampler returns passthrough closure.
func (m *Resampler) Resampler(pipeID string, inputRate int, ratio float64) (func([]float64) ([]float64, error), error) {
	if m.ErrorOnOpen != nil {
		return nil, m.ErrorOnOpen
	}
	if m.ErrorOnReopen != nil && len(m.Ratios) > 0 {
		return nil, m.ErrorOnReopen
	}
	m.Ratios = append(m.Ratios, ratio)
	m.InputRates = append(m.InputRates, inputRate)
	return func(in []float64) ([]float64, error) {
		if m.ErrorOnCall != nil {
			return nil, m.ErrorOnCall
		}
		m.advance(len(in))
		return in, nil
	}, nil
}

// Flush implements pipe.Flusher.
func (m *Resampler) Flush(string) error {
	return m.flush("resampler")
}

// Sink mocks up a pipe.Sink interface.
// Frames are not thread-safe, so should not be checked while pipe is running.
type Sink struct {
	counter
	SampleRate  int
	NumChannels int
	Discard     bool
	// OnWrite is called after every successful write with the number of
	// writes done so far.
	OnWrite     func(writes int)
	ErrorOnCall error
	ErrorOnOpen error
	frames      [][]byte
	Hooks
}

// Sink implementation for runner.
func (m *Sink) Sink(pipeID string) (func([]byte) error, int, int, error) {
	if m.ErrorOnOpen != nil {
		return nil, 0, 0, m.ErrorOnOpen
	}
	return func(b []byte) error {
		if m.ErrorOnCall != nil {
			return m.ErrorOnCall
		}
		if !m.Discard {
			m.frames = append(m.frames, append([]byte(nil), b...))
		}
		m.advance(len(b))
		if m.OnWrite != nil {
			m.OnWrite(m.Messages)
		}
		return nil
	}, m.SampleRate, m.NumChannels, nil
}

// Flush implements pipe.Flusher.
func (m *Sink) Flush(string) error {
	return m.flush("sink")
}

// Frames returns copies of all written frames.
func (m *Sink) Frames() [][]byte {
	return m.frames
}

// Bytes returns all written frames joined.
func (m *Sink) Bytes() []byte {
	var b []byte
	for _, f := range m.frames {
		b = append(b, f...)
	}
	return b
}

// Control mocks a pipe.Control interface. Every poll executes one of
// queued Lines.
type Control struct {
	Lines       []string
	Polls       int
	Applied     int
	ErrorOnOpen error
	Hooks
}

// Control returns poll closure.
func (m *Control) Control(pipeID string, s mpxgen.Setter) (func() bool, error) {
	if m.ErrorOnOpen != nil {
		return nil, m.ErrorOnOpen
	}
	return func() bool {
		m.Polls++
		if len(m.Lines) == 0 {
			return false
		}
		line := m.Lines[0]
		m.Lines = m.Lines[1:]
		if control.Execute(s, line) {
			m.Applied++
		}
		return true
	}, nil
}

// Flush implements pipe.Flusher.
func (m *Control) Flush(string) error {
	return m.flush("control")
}

// Hooks allows to mock components hooks.
type Hooks struct {
	Flushed      int
	ErrorOnFlush error
	// Trace collects names of flushed components in order of calls.
	Trace *[]string
}

func (h *Hooks) flush(name string) error {
	h.Flushed++
	if h.Trace != nil {
		*h.Trace = append(*h.Trace, name)
	}
	return h.ErrorOnFlush
}

// counter counts messages and samples.
type counter struct {
	Messages int
	Samples  int
}

// advance counter's metrics.
func (c *counter) advance(size int) {
	c.Messages++
	c.Samples = c.Samples + size
}
