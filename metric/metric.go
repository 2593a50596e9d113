// Package metric publishes counters of running pipes with expvar.
package metric

import (
	"expvar"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

const label = "mpxgen"

// Counters reported for every pipe.
const (
	// BlockCounter is the number of generated blocks.
	BlockCounter = "Blocks"
	// SampleCounter is the number of generated samples.
	SampleCounter = "Samples"
	// FrameCounter is the number of frames written to sink.
	FrameCounter = "Frames"
	// ByteCounter is the number of bytes written to sink.
	ByteCounter = "Bytes"
	// CommandCounter is the number of control lines consumed.
	CommandCounter = "Commands"
	// RetuneCounter is the number of resampler re-opens caused by ppm change.
	RetuneCounter = "Retunes"
	// RatioGauge is the current resampling ratio.
	RatioGauge = "Ratio"
	// DurationCounter is the duration of generated signal.
	DurationCounter = "Duration"
	// LatencyGauge is the time between two last blocks.
	LatencyGauge = "Latency"
)

var pipes = struct {
	sync.Mutex
	m map[string]*expvar.Map
}{m: make(map[string]*expvar.Map)}

// Meter captures counters of one pipe run. Counters are shared by pipes
// with the same name. Methods of nil Meter do nothing.
type Meter struct {
	m          *expvar.Map
	sampleRate int
	ratio      *expvar.Float
	duration   *duration
	latency    *duration
	calledAt   time.Time
}

// New returns meter for pipe name. Sample rate is the generator rate and
// is used to convert samples into signal duration.
func New(name string, sampleRate int) *Meter {
	m := published(name)
	return &Meter{
		m:          m,
		sampleRate: sampleRate,
		ratio:      m.Get(RatioGauge).(*expvar.Float),
		duration:   m.Get(DurationCounter).(*duration),
		latency:    m.Get(LatencyGauge).(*duration),
		calledAt:   time.Now(),
	}
}

// Generated captures a block of n samples.
func (m *Meter) Generated(n int) {
	if m == nil {
		return
	}
	now := time.Now()
	m.latency.set(now.Sub(m.calledAt))
	m.calledAt = now
	m.m.Add(BlockCounter, 1)
	m.m.Add(SampleCounter, int64(n))
	if m.sampleRate > 0 {
		m.duration.add(time.Duration(float64(n) / float64(m.sampleRate) * float64(time.Second)))
	}
}

// Written captures frames passed to sink.
func (m *Meter) Written(frames, bytes int) {
	if m == nil {
		return
	}
	m.m.Add(FrameCounter, int64(frames))
	m.m.Add(ByteCounter, int64(bytes))
}

// Command captures consumed control line.
func (m *Meter) Command() {
	if m == nil {
		return
	}
	m.m.Add(CommandCounter, 1)
}

// Tuned sets the resampling ratio. Retuned also counts the change.
func (m *Meter) Tuned(ratio float64) {
	if m == nil {
		return
	}
	m.ratio.Set(ratio)
}

// Retuned captures ratio change caused by ppm command.
func (m *Meter) Retuned(ratio float64) {
	if m == nil {
		return
	}
	m.m.Add(RetuneCounter, 1)
	m.ratio.Set(ratio)
}

// Get returns counters of pipe name.
func Get(name string) map[string]string {
	pipes.Lock()
	m, ok := pipes.m[name]
	pipes.Unlock()
	if !ok {
		return nil
	}
	return values(m)
}

// GetAll returns counters of every measured pipe.
func GetAll() map[string]map[string]string {
	pipes.Lock()
	defer pipes.Unlock()
	all := make(map[string]map[string]string, len(pipes.m))
	for name, m := range pipes.m {
		all[name] = values(m)
	}
	return all
}

func values(m *expvar.Map) map[string]string {
	v := make(map[string]string)
	m.Do(func(kv expvar.KeyValue) {
		v[kv.Key] = kv.Value.String()
	})
	return v
}

// published returns expvar map of pipe, creating it on first use.
func published(name string) *expvar.Map {
	pipes.Lock()
	defer pipes.Unlock()
	if m, ok := pipes.m[name]; ok {
		return m
	}
	m := expvar.NewMap(fmt.Sprintf("%s.%s", label, name))
	for _, counter := range []string{BlockCounter, SampleCounter, FrameCounter, ByteCounter, CommandCounter, RetuneCounter} {
		m.Add(counter, 0)
	}
	m.Set(RatioGauge, new(expvar.Float))
	m.Set(DurationCounter, &duration{})
	m.Set(LatencyGauge, &duration{})
	pipes.m[name] = m
	return m
}

// duration allows to format time.Duration metric values.
type duration struct {
	d int64
}

func (v *duration) String() string {
	return fmt.Sprintf("%q", time.Duration(atomic.LoadInt64(&v.d)))
}

func (v *duration) add(delta time.Duration) {
	atomic.AddInt64(&v.d, int64(delta))
}

func (v *duration) set(value time.Duration) {
	atomic.StoreInt64(&v.d, int64(value))
}
