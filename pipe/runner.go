package pipe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"
	"sync"

	"github.com/dudk/mpxgen"
	"github.com/dudk/mpxgen/metric"
)

// hook represents optional functions for components lifecycle.
type hook func(string) error

// flusher checks if interface implements Flusher and if so, return it.
func flusher(i interface{}) hook {
	if v, ok := i.(Flusher); ok {
		return v.Flush
	}
	return nil
}

// runner holds closures allocated by components for a single run.
type runner struct {
	generate func([]float64) (int, error)
	resample func([]float64) ([]float64, error)
	write    func([]byte) error
	poll     func() bool

	generatorRate int
	sinkRate      int
	numChannels   int
	ratio         float64

	meter *metric.Meter

	// flush hooks of opened components, released in this order.
	control   hook
	generator hook
	sink      hook
	resampler hook

	releaseSignals func()
}

// tuner forwards parameter changes to the store and retunes resampler
// when clock drift is changed.
type tuner struct {
	*mpxgen.Params
	p *Pipe
}

// SetPPM implements mpxgen.Setter.
func (t tuner) SetPPM(ppm float64) {
	before := t.Station().PPM
	t.Params.SetPPM(ppm)
	if after := t.Station().PPM; after != before {
		t.p.retune(after)
	}
}

// Run executes the pipe in the calling goroutine until generator runs
// out of input, Stop is called, one of configured signals is received or
// ctx is done. Pipe can be run only once.
//
// Errors that happen while components are opened are returned as is,
// after already opened components are flushed. Errors of execution and
// flush are returned as *ErrorRun.
func (p *Pipe) Run(ctx context.Context) error {
	if !p.state.CompareAndSwap(int32(Idle), int32(Initializing)) {
		return ErrInvalidState
	}
	p.run = &runner{}
	if err := p.open(); err != nil {
		p.log.Debug(fmt.Sprintf("%v failed to start: %v", p, err))
		p.setState(Draining)
		if ferr := p.flush(); ferr != nil {
			p.log.Warn(fmt.Sprintf("%v failed to flush: %v", p, ferr))
		}
		p.setState(Closed)
		return err
	}

	p.setState(Running)
	p.log.Debug(fmt.Sprintf("%v running at ratio %v", p, p.run.ratio))
	errExec := p.loop(ctx)

	p.setState(Draining)
	errFlush := p.flush()
	p.setState(Closed)
	p.log.Debug(fmt.Sprintf("%v closed", p))
	if errExec != nil || errFlush != nil {
		return &ErrorRun{
			ErrExec:  errExec,
			ErrFlush: errFlush,
		}
	}
	return nil
}

// open allocates components in the order they are needed: sink defines
// output rate, generator defines input rate and resampler needs both.
func (p *Pipe) open() error {
	r := p.run
	p.params.Seed(p.station)
	if len(p.signals) > 0 {
		r.releaseSignals = p.notify()
	}

	var err error
	r.write, r.sinkRate, r.numChannels, err = p.sink.Sink(p.ID())
	if err != nil {
		return fmt.Errorf("sink: %w", err)
	}
	r.sink = flusher(p.sink)
	if r.sinkRate <= 0 || r.numChannels <= 0 {
		return fmt.Errorf("sink: invalid format %d Hz %d channels", r.sinkRate, r.numChannels)
	}

	r.generate, r.generatorRate, err = p.generator.Generator(p.ID())
	if err != nil {
		return fmt.Errorf("generator: %w", err)
	}
	r.generator = flusher(p.generator)
	if r.generatorRate <= 0 {
		return fmt.Errorf("generator: invalid sample rate %d", r.generatorRate)
	}

	r.ratio = Ratio(r.sinkRate, r.generatorRate, p.params.Station().PPM)
	if !validRatio(r.ratio) {
		return fmt.Errorf("%w: %v", ErrInvalidRatio, r.ratio)
	}
	switch {
	case p.resampler != nil:
		r.resample, err = p.resampler.Resampler(p.ID(), r.generatorRate, r.ratio)
		if err != nil {
			return fmt.Errorf("resampler: %w", err)
		}
		r.resampler = flusher(p.resampler)
	case r.ratio == 1:
		r.resample = passthrough
	default:
		return fmt.Errorf("%w: ratio %v", ErrNoResampler, r.ratio)
	}

	if p.metric {
		r.meter = metric.New(p.metricName(), r.generatorRate)
		r.meter.Tuned(r.ratio)
	}

	if p.control != nil {
		r.poll, err = p.control.Control(p.ID(), tuner{Params: p.params, p: p})
		if err != nil {
			return fmt.Errorf("control: %w", err)
		}
		r.control = flusher(p.control)
	}
	return nil
}

// loop executes blocks until the end of input or stop request. Returned
// error is always fatal.
func (p *Pipe) loop(ctx context.Context) error {
	r := p.run
	block := make([]float64, p.blockSize)
	var frames []byte
	for {
		if r.poll != nil && r.poll() {
			r.meter.Command()
		}

		n, err := r.generate(block)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				p.log.Warn(fmt.Sprintf("%v generator stopped: %v", p, err))
			}
			return nil
		}
		r.meter.Generated(n)

		out, err := r.resample(block[:n])
		if err != nil {
			return fmt.Errorf("resample: %w", err)
		}

		frames = AppendInt16LE(frames[:0], out, r.numChannels)
		if len(frames) > 0 {
			if err := r.write(frames); err != nil {
				return fmt.Errorf("write: %w", err)
			}
		}
		r.meter.Written(len(out), len(frames))

		if p.stop.Load() {
			p.log.Debug(fmt.Sprintf("%v stopped", p))
			return nil
		}
		if ctx.Err() != nil {
			p.log.Debug(fmt.Sprintf("%v cancelled: %v", p, ctx.Err()))
			return nil
		}
	}
}

// retune re-opens resampler with ratio for the new clock drift. Invalid
// ratios keep the current resampler. If the resampler cannot be opened
// with the new ratio, it's opened with the current one; if that fails
// too, the next block ends the run.
func (p *Pipe) retune(ppm float64) {
	r := p.run
	if r == nil || r.resample == nil {
		return
	}
	ratio := Ratio(r.sinkRate, r.generatorRate, ppm)
	if !validRatio(ratio) {
		p.log.Warn(fmt.Sprintf("%v ignoring ppm %v: %v", p, ppm, ErrInvalidRatio))
		return
	}
	if p.resampler == nil {
		p.log.Warn(fmt.Sprintf("%v ignoring ppm %v: %v", p, ppm, ErrNoResampler))
		return
	}
	// previous engine is released before the resampler is opened again.
	if r.resampler != nil {
		if err := r.resampler(p.ID()); err != nil {
			p.log.Warn(fmt.Sprintf("%v failed to flush resampler: %v", p, err))
		}
		r.resampler = nil
	}
	fn, err := p.resampler.Resampler(p.ID(), r.generatorRate, ratio)
	if err != nil {
		p.log.Warn(fmt.Sprintf("%v failed to retune resampler: %v", p, err))
		// fall back to the current ratio.
		ratio = r.ratio
		if fn, err = p.resampler.Resampler(p.ID(), r.generatorRate, ratio); err != nil {
			r.resample = func([]float64) ([]float64, error) {
				return nil, fmt.Errorf("retune: %w", err)
			}
			return
		}
	}
	r.resample = fn
	r.resampler = flusher(p.resampler)
	if ratio != r.ratio {
		r.ratio = ratio
		r.meter.Retuned(ratio)
		p.log.Debug(fmt.Sprintf("%v retuned to ratio %v", p, ratio))
	}
}

// flush calls flush hooks of opened components. Every hook is called
// once, even if previous one failed.
func (p *Pipe) flush() error {
	r := p.run
	var errs execErrors
	for _, h := range []*hook{&r.control, &r.generator, &r.sink, &r.resampler} {
		if *h == nil {
			continue
		}
		if err := (*h)(p.ID()); err != nil {
			errs = append(errs, err)
		}
		*h = nil
	}
	if r.releaseSignals != nil {
		r.releaseSignals()
		r.releaseSignals = nil
	}
	return errs.ret()
}

// notify starts a goroutine that stops the pipe on signals. Returned
// function releases signal handlers and waits for the goroutine to exit.
func (p *Pipe) notify() func() {
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, p.signals...)
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		select {
		case sig := <-sigc:
			p.log.Info(fmt.Sprintf("%v received %v, stopping", p, sig))
			p.Stop()
		case <-done:
		}
	}()
	return func() {
		signal.Stop(sigc)
		close(done)
		wg.Wait()
	}
}

func passthrough(in []float64) ([]float64, error) {
	return in, nil
}

func validRatio(ratio float64) bool {
	return ratio > 0 && !math.IsNaN(ratio) && !math.IsInf(ratio, 0)
}
