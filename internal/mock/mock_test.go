package mock_test

import (
	"errors"
	"io"
	"testing"

	"github.com/dudk/mpxgen"
	"github.com/dudk/mpxgen/internal/mock"
)

var errTest = errors.New("Test error")

func TestGenerator(t *testing.T) {
	type params struct {
		bufferSize int
		calls      int
	}
	testGenerator := func(generator mock.Generator, p params) func(*testing.T) {
		return func(t *testing.T) {
			fn, _, err := generator.Generator("")
			assertError(t, nil, err)

			buf := make([]float64, p.bufferSize)
			for {
				n, err := fn(buf)
				if err != nil {
					if err != io.EOF {
						assertError(t, generator.ErrorOnCall, err)
					}
					break
				}
				for i := 0; i < n; i++ {
					if buf[i] != generator.Value {
						t.Fatalf("Invalid sample: %v expected: %v", buf[i], generator.Value)
					}
				}
			}

			if p.calls != generator.Messages {
				t.Fatalf("Invalid number of calls: %d expected: %d", generator.Messages, p.calls)
			}
			if generator.Limit != generator.Samples {
				t.Fatalf("Invalid number of samples: %d expected: %d", generator.Samples, generator.Limit)
			}
		}
	}

	t.Run("3 calls", testGenerator(
		mock.Generator{
			SampleRate: 228000,
			Limit:      11,
			Value:      0.5,
		},
		params{
			bufferSize: 5,
			calls:      3,
		},
	))
	t.Run("500 calls", testGenerator(
		mock.Generator{
			SampleRate: 228000,
			Limit:      2500,
			Value:      -0.25,
		},
		params{
			bufferSize: 5,
			calls:      500,
		},
	))
	t.Run("error on call", testGenerator(
		mock.Generator{
			ErrorOnCall: errTest,
		},
		params{},
	))
}

func TestResampler(t *testing.T) {
	r := mock.Resampler{}
	fn, err := r.Resampler("", 228000, 0.84)
	assertError(t, nil, err)
	out, err := fn([]float64{1, 2, 3})
	assertError(t, nil, err)
	if len(out) != 3 {
		t.Fatalf("Invalid output size: %d expected: %d", len(out), 3)
	}
	if len(r.Ratios) != 1 || r.Ratios[0] != 0.84 {
		t.Fatalf("Invalid ratios: %v", r.Ratios)
	}

	r.ErrorOnCall = errTest
	_, err = fn(nil)
	assertError(t, errTest, err)

	r.ErrorOnReopen = errTest
	_, err = r.Resampler("", 228000, 0.85)
	assertError(t, errTest, err)
}

func TestSink(t *testing.T) {
	testSink := func(sinkMock mock.Sink, in []byte) func(*testing.T) {
		return func(t *testing.T) {
			fn, _, _, err := sinkMock.Sink("")
			assertError(t, nil, err)

			err = fn(in)
			assertError(t, sinkMock.ErrorOnCall, err)
			if err != nil {
				return
			}
			// written frame must be a copy.
			expected := string(in)
			in[0] = 0xFF
			if string(sinkMock.Bytes()) != expected {
				t.Fatalf("Invalid frames: %v expected: %v", sinkMock.Bytes(), []byte(expected))
			}
		}
	}

	t.Run("frame", testSink(mock.Sink{}, []byte{1, 2, 3, 4}))
	t.Run("error on call", testSink(mock.Sink{ErrorOnCall: errTest}, []byte{1}))
}

func TestControl(t *testing.T) {
	c := mock.Control{Lines: []string{"PS TEST\n", "XY unknown\n"}}
	p := mpxgen.NewParams()
	poll, err := c.Control("", p)
	assertError(t, nil, err)

	for poll() {
	}
	if c.Polls != 3 || c.Applied != 1 {
		t.Fatalf("Invalid polls: %d applied: %d", c.Polls, c.Applied)
	}
	if p.Station().PS != "TEST" {
		t.Fatalf("Invalid PS: %v", p.Station().PS)
	}
}

func TestHooks(t *testing.T) {
	var trace []string
	testFlush := func(f interface{ Flush(string) error }, expected error) func(*testing.T) {
		return func(t *testing.T) {
			err := f.Flush("")
			assertError(t, expected, err)
		}
	}

	t.Run("flush nil", testFlush(&mock.Sink{Hooks: mock.Hooks{Trace: &trace}}, nil))
	t.Run("flush err", testFlush(&mock.Generator{Hooks: mock.Hooks{Trace: &trace, ErrorOnFlush: errTest}}, errTest))
	if len(trace) != 2 || trace[0] != "sink" || trace[1] != "generator" {
		t.Fatalf("Invalid trace: %v", trace)
	}
}

func assertError(t *testing.T, expected, err error) {
	if err != expected {
		t.Fatalf("Unexpected error: %v expected: %v", err, expected)
	}
}
