package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dudk/mpxgen/config"
	"github.com/dudk/mpxgen/portaudio"
	"github.com/dudk/mpxgen/raw"
	"github.com/dudk/mpxgen/wav"
)

// execute runs root command with args and returns the config it resolved.
func execute(t *testing.T, args ...string) (config.Config, error) {
	t.Helper()
	var resolved config.Config
	cmd := rootCommand(func(_ context.Context, c config.Config) error {
		resolved = c
		return nil
	})
	cmd.SetArgs(args)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	err := cmd.ExecuteContext(context.Background())
	return resolved, err
}

func TestInit(t *testing.T) {
	cmd := newRootCommand()
	assert.Equal(t, 1, len(cmd.Commands()))
	for _, name := range []string{"audio", "output-file", "mpx", "ppm", "pi", "ps", "rt", "pty", "tp", "ptyn", "ctl", "config"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "flag %s", name)
	}
}

func TestDefaults(t *testing.T) {
	c, err := execute(t)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), c)
}

func TestFlags(t *testing.T) {
	c, err := execute(t,
		"-a", "in.wav",
		"-o", "out.wav",
		"-m", "80",
		"-x", "-12.5",
		"-i", "0x12ab",
		"-s", "Radio",
		"-r", "Hello",
		"-p", "10",
		"-T", "1",
		"-P", "Talk",
		"-C", "/tmp/ctl",
		"--quality", "high",
		"--block-size", "1000",
	)
	require.NoError(t, err)
	assert.Equal(t, "in.wav", c.Audio)
	assert.Equal(t, "out.wav", c.OutputFile)
	assert.Equal(t, "/tmp/ctl", c.Control)
	assert.Equal(t, uint(80), c.Station.Volume)
	assert.Equal(t, -12.5, c.Station.PPM)
	assert.Equal(t, uint16(0x12AB), c.Station.PI)
	assert.Equal(t, "Radio", c.Station.PS)
	assert.Equal(t, "Hello", c.Station.RT)
	assert.Equal(t, uint8(10), c.Station.PTY)
	assert.True(t, c.Station.TP)
	assert.Equal(t, "Talk", c.Station.PTYN)
	assert.Equal(t, "high", c.Quality)
	assert.Equal(t, 1000, c.BlockSize)
}

func TestConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mpxgen.yaml")
	data := []byte("station:\n  ps: FromFile\n  volume: 30\n")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	c, err := execute(t, "--config", path)
	require.NoError(t, err)
	assert.Equal(t, "FromFile", c.Station.PS)
	assert.Equal(t, uint(30), c.Station.Volume)

	// explicit flags win over file.
	c, err = execute(t, "--config", path, "-s", "Flag")
	require.NoError(t, err)
	assert.Equal(t, "Flag", c.Station.PS)
	assert.Equal(t, uint(30), c.Station.Volume)
}

func TestInvalidFlags(t *testing.T) {
	tests := []struct {
		description string
		args        []string
	}{
		{description: "mpx zero", args: []string{"-m", "0"}},
		{description: "mpx above max", args: []string{"-m", "101"}},
		{description: "pi not hex", args: []string{"-i", "zz"}},
		{description: "pty above max", args: []string{"-p", "32"}},
		{description: "unknown quality", args: []string{"--quality", "best"}},
		{description: "missing config", args: []string{"--config", "missing.yaml"}},
		{description: "extra args", args: []string{"extra"}},
	}
	for _, test := range tests {
		_, err := execute(t, test.args...)
		assert.Error(t, err, test.description)
	}
}

func TestNewSink(t *testing.T) {
	c := config.Default()
	s, ok := newSink(c).(*portaudio.Sink)
	require.True(t, ok)
	assert.Equal(t, 2, s.NumChannels)
	assert.Equal(t, config.DefaultSampleRate, s.SampleRate)

	c.OutputFile = raw.Stdout
	r, ok := newSink(c).(*raw.Sink)
	require.True(t, ok)
	assert.Equal(t, 1, r.NumChannels)

	c.OutputFile = "out.wav"
	w, ok := newSink(c).(*wav.Sink)
	require.True(t, ok)
	assert.Equal(t, "out.wav", w.Path)
	assert.Equal(t, 1, w.NumChannels)
}

func TestList(t *testing.T) {
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"list"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), ".wav")
	assert.Contains(t, out.String(), "high")
}
