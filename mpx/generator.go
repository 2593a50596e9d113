// Package mpx generates FM multiplex baseband signal.
//
// Generator produces a stereo multiplex at 228 kHz: the mono sum of the
// input, 19 kHz pilot and the difference signal on 38 kHz suppressed
// carrier. Carrier levels and output volume are read from parameters
// store before every block.
package mpx

import (
	"errors"
	"fmt"
	"io"
	"math"

	resampling "github.com/tphakala/go-audio-resampling"

	"github.com/dudk/mpxgen"
	"github.com/dudk/mpxgen/log"
	"github.com/dudk/mpxgen/resample"
)

// SampleRate of generated baseband.
const SampleRate = 228000

// Nominal carrier levels at 100% gain.
const (
	monoLevel   = 0.45
	pilotLevel  = 0.09
	stereoLevel = 0.45
)

// pilot period in samples, 38 kHz carrier is its second harmonic.
const period = SampleRate / 19000

// readFrames is number of input frames decoded at once.
const readFrames = 4096

var (
	pilotTable  [period]float64
	stereoTable [period]float64
)

func init() {
	for i := 0; i < period; i++ {
		pilotTable[i] = math.Sin(2 * math.Pi * float64(i) / period)
		stereoTable[i] = math.Sin(4 * math.Pi * float64(i) / period)
	}
}

// Generator is a pipe generator of multiplex signal. Without Input it
// emits pilot tone only and never ends.
type Generator struct {
	Params  *mpxgen.Params
	Input   string
	Quality string
	Logger  log.Logger

	src    Source
	up     resampling.Resampler
	in     []float64
	frames []float64 // pending stereo frames at SampleRate
	eof    bool
	phase  int
}

// Generator opens input and returns generator closure.
func (g *Generator) Generator(pipeID string) (func([]float64) (int, error), int, error) {
	if g.Params == nil {
		return nil, 0, errors.New("mpx generator has no params")
	}
	if g.Logger == nil {
		g.Logger = log.GetLogger()
	}
	if g.Input == "" {
		return g.generate, SampleRate, nil
	}

	spec, err := resample.Spec(g.Quality)
	if err != nil {
		return nil, 0, err
	}
	src, err := Open(g.Input)
	if err != nil {
		return nil, 0, err
	}
	if src.SampleRate() <= 0 || src.NumChannels() <= 0 {
		src.Close()
		return nil, 0, fmt.Errorf("%w: %v has invalid format", ErrUnsupportedFormat, g.Input)
	}
	if src.SampleRate() != SampleRate {
		g.up, err = resampling.New(&resampling.Config{
			InputRate:  float64(src.SampleRate()),
			OutputRate: SampleRate,
			Channels:   2,
			Quality:    spec,
		})
		if err != nil {
			src.Close()
			return nil, 0, fmt.Errorf("failed to create upsampler: %w", err)
		}
	}
	g.src = src
	g.in = make([]float64, readFrames*src.NumChannels())
	g.Logger.Info(fmt.Sprintf("playing %v: %d Hz %d channels", g.Input, src.SampleRate(), src.NumChannels()))
	return g.generate, SampleRate, nil
}

// Flush closes input.
func (g *Generator) Flush(string) error {
	g.up = nil
	g.frames = nil
	if g.src == nil {
		return nil
	}
	err := g.src.Close()
	g.src = nil
	return err
}

func (g *Generator) generate(b []float64) (int, error) {
	s := g.Params.Station()
	volume := float64(s.Volume) / 100
	monoGain := monoLevel * float64(s.Gains[mpxgen.CarrierMono]) / 100 * volume
	pilotGain := pilotLevel * float64(s.Gains[mpxgen.CarrierPilot]) / 100 * volume
	stereoGain := stereoLevel * float64(s.Gains[mpxgen.CarrierStereo]) / 100 * volume

	if g.src == nil {
		for i := range b {
			b[i] = pilotGain * pilotTable[g.phase]
			g.phase = (g.phase + 1) % period
		}
		return len(b), nil
	}

	if err := g.fill(len(b)); err != nil {
		return 0, err
	}
	n := min(len(b), len(g.frames)/2)
	if n == 0 && g.eof {
		return 0, io.EOF
	}
	for i := 0; i < n; i++ {
		l, r := g.frames[2*i], g.frames[2*i+1]
		b[i] = monoGain*(l+r)/2 +
			pilotGain*pilotTable[g.phase] +
			stereoGain*(l-r)/2*stereoTable[g.phase]
		g.phase = (g.phase + 1) % period
	}
	g.frames = g.frames[:copy(g.frames, g.frames[2*n:])]
	return n, nil
}

// fill decodes input until n frames are pending or input is drained.
func (g *Generator) fill(n int) error {
	for len(g.frames)/2 < n && !g.eof {
		read, err := g.src.Read(g.in)
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		if read > 0 {
			if err := g.push(stereo(g.in[:read], g.src.NumChannels())); err != nil {
				return err
			}
		}
		if errors.Is(err, io.EOF) {
			g.eof = true
			if g.up != nil {
				tail, err := g.up.Flush()
				if err != nil {
					return err
				}
				g.frames = append(g.frames, tail...)
			}
			return nil
		}
		if read == 0 {
			// nothing decoded, try on next block.
			return nil
		}
	}
	return nil
}

func (g *Generator) push(frames []float64) error {
	if g.up == nil {
		g.frames = append(g.frames, frames...)
		return nil
	}
	out, err := g.up.Process(frames)
	if err != nil {
		return err
	}
	g.frames = append(g.frames, out...)
	return nil
}

// stereo converts interleaved samples to interleaved stereo frames. Mono
// is duplicated, channels above second are dropped.
func stereo(in []float64, numChannels int) []float64 {
	if numChannels == 2 {
		return in
	}
	numFrames := len(in) / numChannels
	out := make([]float64, 2*numFrames)
	for i := 0; i < numFrames; i++ {
		out[2*i] = in[i*numChannels]
		if numChannels == 1 {
			out[2*i+1] = in[i]
		} else {
			out[2*i+1] = in[i*numChannels+1]
		}
	}
	return out
}
