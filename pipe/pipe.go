package pipe

import (
	"fmt"
	"os"
	"sync/atomic"

	"github.com/rs/xid"

	"github.com/dudk/mpxgen"
	"github.com/dudk/mpxgen/log"
)

// Generator is a source of baseband samples. Generator method returns a
// closure that fills the buffer and returns the number of samples written,
// together with output sample rate. Any error returned by the closure ends
// the pipe, io.EOF is the regular end of input.
type Generator interface {
	Generator(pipeID string) (func([]float64) (int, error), int, error)
}

// Resampler converts samples from input rate to inputRate*ratio. Every
// call of Resampler method must return a closure with fresh state. When
// ratio changes, the pipe flushes the resampler before opening it again.
type Resampler interface {
	Resampler(pipeID string, inputRate int, ratio float64) (func([]float64) ([]float64, error), error)
}

// Sink is the final stage of pipe. Sink method returns a closure that
// consumes interleaved signed 16-bit little-endian frames, together with
// sample rate and number of channels of the device. The closure must not
// retain the slice after it returns.
type Sink interface {
	Sink(pipeID string) (func([]byte) error, int, int, error)
}

// Control is a source of parameter changes. The returned closure applies
// at most one pending change and returns true if something was consumed.
type Control interface {
	Control(pipeID string, s mpxgen.Setter) (func() bool, error)
}

// Flusher defines component that must be flushed in the end of execution.
type Flusher interface {
	Flush(pipeID string) error
}

// Pipe is a broadcast pipeline. It has:
//
//	1	generator
//	0..1	resampler
//	1	sink
//	0..1	control
//
// Pipe is executed in the goroutine that calls Run.
type Pipe struct {
	uid       string
	name      string
	blockSize int

	generator Generator
	resampler Resampler
	sink      Sink
	control   Control

	params  *mpxgen.Params
	station mpxgen.Station
	signals []os.Signal
	metric  bool
	log     log.Logger

	state atomic.Int32
	stop  atomic.Bool

	run *runner
}

// Option provides a way to set parameters to pipe.
type Option func(p *Pipe) error

// New creates a new pipe and applies provided options. Returned pipe is
// in Idle state.
func New(blockSize int, options ...Option) (*Pipe, error) {
	if blockSize <= 0 {
		return nil, fmt.Errorf("invalid block size: %d", blockSize)
	}
	p := &Pipe{
		uid:       xid.New().String(),
		blockSize: blockSize,
		log:       log.GetLogger(),
	}
	for _, option := range options {
		if err := option(p); err != nil {
			return nil, err
		}
	}
	if p.generator == nil {
		return nil, ErrNoGenerator
	}
	if p.sink == nil {
		return nil, ErrNoSink
	}
	if p.params == nil {
		p.params = mpxgen.NewParams()
		p.station = p.params.Station()
	}
	return p, nil
}

// WithName sets name to pipe.
func WithName(n string) Option {
	return func(p *Pipe) error {
		p.name = n
		return nil
	}
}

// WithGenerator sets generator to pipe.
func WithGenerator(g Generator) Option {
	return func(p *Pipe) error {
		p.generator = g
		return nil
	}
}

// WithResampler sets resampler to pipe.
func WithResampler(r Resampler) Option {
	return func(p *Pipe) error {
		p.resampler = r
		return nil
	}
}

// WithSink sets sink to pipe.
func WithSink(s Sink) Option {
	return func(p *Pipe) error {
		p.sink = s
		return nil
	}
}

// WithControl sets control channel to pipe.
func WithControl(c Control) Option {
	return func(p *Pipe) error {
		p.control = c
		return nil
	}
}

// WithParams sets parameters store. The store is seeded with s when pipe
// starts.
func WithParams(params *mpxgen.Params, s mpxgen.Station) Option {
	return func(p *Pipe) error {
		if params == nil {
			return fmt.Errorf("nil params")
		}
		p.params = params
		p.station = s
		return nil
	}
}

// WithSignals stops the pipe gracefully when any of signals is received.
func WithSignals(signals ...os.Signal) Option {
	return func(p *Pipe) error {
		p.signals = signals
		return nil
	}
}

// WithMetric enables metrics of the pipe. Counters are published under
// the pipe name, see metric.Get.
func WithMetric() Option {
	return func(p *Pipe) error {
		p.metric = true
		return nil
	}
}

// WithLogger sets logger to pipe.
func WithLogger(l log.Logger) Option {
	return func(p *Pipe) error {
		p.log = l
		return nil
	}
}

// ID returns unique identifier of pipe. It is passed to every component.
func (p *Pipe) ID() string {
	return p.uid
}

// State returns current state of pipe.
func (p *Pipe) State() State {
	return State(p.state.Load())
}

// Stop requests graceful stop. Pipe finishes current block and drains.
// It's safe to call Stop from any goroutine and at any moment.
func (p *Pipe) Stop() {
	p.stop.Store(true)
}

// Ratio returns resampling ratio for a sink running at sinkRate, fed with
// a generator at generatorRate. Clock drift is added in parts per million.
func Ratio(sinkRate, generatorRate int, ppm float64) float64 {
	return float64(sinkRate)/float64(generatorRate) + ppm/1e6
}

// Convert pipe to string. Name is included if has value.
func (p *Pipe) String() string {
	if p.name == "" {
		return p.ID()
	}
	return fmt.Sprintf("%v %v", p.name, p.ID())
}

// metricName returns name counters are published under.
func (p *Pipe) metricName() string {
	if p.name == "" {
		return "pipe"
	}
	return p.name
}

func (p *Pipe) setState(s State) {
	p.state.Store(int32(s))
}
