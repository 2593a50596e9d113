// Package config loads encoder settings from YAML file.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dudk/mpxgen"
	"github.com/dudk/mpxgen/resample"
)

// Defaults of encoder settings.
const (
	DefaultBlockSize  = 5700
	DefaultSampleRate = 192000
)

// ErrInvalid is returned when settings are out of range.
var ErrInvalid = errors.New("invalid config")

// Config holds encoder settings. Zero values of paths mean the feature
// is disabled.
type Config struct {
	// Audio is an input file, empty for pilot tone only.
	Audio string `yaml:"audio"`
	// OutputFile is a wav file or "-" for raw stdout. Empty means
	// playback on default audio device.
	OutputFile string `yaml:"output_file"`
	// Control is a path of control channel.
	Control string `yaml:"control"`

	BlockSize  int            `yaml:"block_size"`
	SampleRate int            `yaml:"sample_rate"`
	Quality    string         `yaml:"quality"`
	Debug      bool           `yaml:"debug"`
	Station    mpxgen.Station `yaml:"station"`
}

// Default returns settings the encoder starts with.
func Default() Config {
	return Config{
		BlockSize:  DefaultBlockSize,
		SampleRate: DefaultSampleRate,
		Quality:    resample.DefaultQuality,
		Station:    mpxgen.DefaultStation(),
	}
}

// Load reads YAML file at path over Default and validates the result.
func Load(path string) (Config, error) {
	c := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return c, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return c, c.Validate()
}

// Validate checks that settings are in range.
func (c Config) Validate() error {
	if c.Station.Volume < 1 || c.Station.Volume > mpxgen.MaxVolume {
		return fmt.Errorf("%w: MPX volume must be between 1 - %d", ErrInvalid, mpxgen.MaxVolume)
	}
	if c.Station.PTY > mpxgen.MaxPTY {
		return fmt.Errorf("%w: PTY must be between 0 - %d", ErrInvalid, mpxgen.MaxPTY)
	}
	if c.BlockSize <= 0 {
		return fmt.Errorf("%w: block size must be positive", ErrInvalid)
	}
	if c.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate must be positive", ErrInvalid)
	}
	if _, err := resample.Spec(c.Quality); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}
