// Package resample adapts sample rate of baseband signal to the sink.
package resample

import (
	"errors"
	"fmt"
	"sort"

	resampling "github.com/tphakala/go-audio-resampling"
)

// DefaultQuality is used when Quality is empty.
const DefaultQuality = "low"

// ErrUnknownQuality is returned when quality name isn't recognized.
var ErrUnknownQuality = errors.New("unknown resampling quality")

var qualities = map[string]resampling.QualitySpec{
	"quick":    {Preset: resampling.QualityQuick},
	"low":      {Preset: resampling.QualityLow},
	"medium":   {Preset: resampling.QualityMedium},
	"high":     {Preset: resampling.QualityHigh},
	"veryhigh": {Preset: resampling.QualityVeryHigh},
}

// Qualities returns sorted names of supported quality presets.
func Qualities() []string {
	names := make([]string, 0, len(qualities))
	for name := range qualities {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Spec returns quality preset for the name. Empty name means
// DefaultQuality.
func Spec(name string) (resampling.QualitySpec, error) {
	if name == "" {
		name = DefaultQuality
	}
	spec, ok := qualities[name]
	if !ok {
		return resampling.QualitySpec{}, fmt.Errorf("%w: %q", ErrUnknownQuality, name)
	}
	return spec, nil
}

// Resampler converts mono signal with polyphase filter. Every call of
// Resampler method replaces the engine, so filter state doesn't survive
// ratio changes.
type Resampler struct {
	Quality string

	engine resampling.Resampler
}

// Resampler returns closure that resamples mono signal from inputRate to
// inputRate*ratio.
func (r *Resampler) Resampler(pipeID string, inputRate int, ratio float64) (func([]float64) ([]float64, error), error) {
	spec, err := Spec(r.Quality)
	if err != nil {
		return nil, err
	}
	engine, err := resampling.New(&resampling.Config{
		InputRate:  float64(inputRate),
		OutputRate: float64(inputRate) * ratio,
		Channels:   1,
		Quality:    spec,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create resampler: %w", err)
	}
	r.engine = engine
	return engine.Process, nil
}

// Flush releases the engine. Samples left in the filter are dropped
// because sink is already closed.
func (r *Resampler) Flush(string) error {
	if r.engine == nil {
		return nil
	}
	_, err := r.engine.Flush()
	r.engine = nil
	return err
}
