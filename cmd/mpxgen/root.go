package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dudk/mpxgen"
	"github.com/dudk/mpxgen/config"
	"github.com/dudk/mpxgen/control"
	"github.com/dudk/mpxgen/log"
	"github.com/dudk/mpxgen/metric"
	"github.com/dudk/mpxgen/mpx"
	"github.com/dudk/mpxgen/pipe"
	"github.com/dudk/mpxgen/portaudio"
	"github.com/dudk/mpxgen/raw"
	"github.com/dudk/mpxgen/resample"
	"github.com/dudk/mpxgen/wav"
)

// flags holds command line values. They override config file only when
// set explicitly.
type flags struct {
	config     string
	audio      string
	outputFile string
	control    string
	mpx        uint
	ppm        float64
	pi         string
	ps         string
	rt         string
	pty        uint8
	tp         int
	ptyn       string
	blockSize  int
	sampleRate int
	quality    string
	debug      bool
}

func newRootCommand() *cobra.Command {
	return rootCommand(run)
}

// rootCommand builds command that passes resolved config to runFn.
func rootCommand(runFn func(context.Context, config.Config) error) *cobra.Command {
	var f flags
	d := config.Default()
	cmd := &cobra.Command{
		Use:   "mpxgen",
		Short: "FM stereo multiplex encoder",
		Long: `Mpxgen generates FM stereo multiplex baseband and plays it on the
default audio device at 192 kHz. Use --output-file to write a wav file
or "-" to write raw PCM to stdout.

Parameters can be changed while running by writing commands to the
control channel, one per line, e.g. "PS MyRadio" or "VOL 80".`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := f.load(cmd)
			if err != nil {
				return err
			}
			return runFn(cmd.Context(), c)
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&f.config, "config", "", "YAML config file")
	fs.StringVarP(&f.audio, "audio", "a", "", "Input file")
	fs.StringVarP(&f.outputFile, "output-file", "o", "", `Output wav file, "-" for raw PCM on stdout`)
	fs.StringVarP(&f.control, "ctl", "C", "", "Control pipe")
	fs.UintVarP(&f.mpx, "mpx", "m", d.Station.Volume, "MPX volume")
	fs.Float64VarP(&f.ppm, "ppm", "x", d.Station.PPM, "Clock drift correction")
	fs.StringVarP(&f.pi, "pi", "i", fmt.Sprintf("%04X", d.Station.PI), "Program Identification code")
	fs.StringVarP(&f.ps, "ps", "s", d.Station.PS, "Program Service name")
	fs.StringVarP(&f.rt, "rt", "r", d.Station.RT, "Radio Text")
	fs.Uint8VarP(&f.pty, "pty", "p", d.Station.PTY, "Program Type")
	fs.IntVarP(&f.tp, "tp", "T", 0, "Traffic Program")
	fs.StringVarP(&f.ptyn, "ptyn", "P", "", "PTY Name")
	fs.IntVar(&f.blockSize, "block-size", d.BlockSize, "Samples generated per block")
	fs.IntVar(&f.sampleRate, "sample-rate", d.SampleRate, "Output sample rate")
	fs.StringVar(&f.quality, "quality", d.Quality, "Resampling quality: "+strings.Join(resample.Qualities(), ", "))
	fs.BoolVar(&f.debug, "debug", false, "Verbose logging")

	cmd.AddCommand(newListCommand())
	return cmd
}

// load reads config file and applies explicitly set flags.
func (f *flags) load(cmd *cobra.Command) (config.Config, error) {
	c := config.Default()
	if f.config != "" {
		var err error
		if c, err = config.Load(f.config); err != nil {
			return c, err
		}
	}

	set := cmd.Flags().Changed
	if set("audio") {
		c.Audio = f.audio
	}
	if set("output-file") {
		c.OutputFile = f.outputFile
	}
	if set("ctl") {
		c.Control = f.control
	}
	if set("mpx") {
		c.Station.Volume = f.mpx
	}
	if set("ppm") {
		c.Station.PPM = f.ppm
	}
	if set("pi") {
		pi, err := strconv.ParseUint(strings.TrimPrefix(strings.ToLower(f.pi), "0x"), 16, 16)
		if err != nil {
			return c, fmt.Errorf("%w: invalid PI code %q", config.ErrInvalid, f.pi)
		}
		c.Station.PI = uint16(pi)
	}
	if set("ps") {
		c.Station.PS = f.ps
	}
	if set("rt") {
		c.Station.RT = f.rt
	}
	if set("pty") {
		c.Station.PTY = f.pty
	}
	if set("tp") {
		c.Station.TP = f.tp != 0
	}
	if set("ptyn") {
		c.Station.PTYN = f.ptyn
	}
	if set("block-size") {
		c.BlockSize = f.blockSize
	}
	if set("sample-rate") {
		c.SampleRate = f.sampleRate
	}
	if set("quality") {
		c.Quality = f.quality
	}
	if set("debug") {
		c.Debug = f.debug
	}
	return c, c.Validate()
}

// newSink picks output: device playback is stereo, files are mono.
func newSink(c config.Config) pipe.Sink {
	switch c.OutputFile {
	case "":
		return &portaudio.Sink{SampleRate: c.SampleRate, NumChannels: 2}
	case raw.Stdout:
		return &raw.Sink{Path: raw.Stdout, SampleRate: c.SampleRate, NumChannels: 1}
	}
	return &wav.Sink{Path: c.OutputFile, SampleRate: c.SampleRate, NumChannels: 1}
}

func run(ctx context.Context, c config.Config) error {
	logger := log.GetLogger()
	if c.Debug {
		logger.SetLevel(logrus.DebugLevel)
	}

	params := mpxgen.NewParams()
	options := []pipe.Option{
		pipe.WithName("mpxgen"),
		pipe.WithGenerator(&mpx.Generator{
			Params:  params,
			Input:   c.Audio,
			Quality: c.Quality,
			Logger:  logger,
		}),
		pipe.WithResampler(&resample.Resampler{Quality: c.Quality}),
		pipe.WithSink(newSink(c)),
		pipe.WithParams(params, c.Station),
		pipe.WithSignals(os.Interrupt, syscall.SIGTERM),
		pipe.WithLogger(logger),
		pipe.WithMetric(),
	}
	if c.Control != "" {
		options = append(options, pipe.WithControl(&control.Channel{
			Path:   c.Control,
			Logger: logger,
		}))
	}

	p, err := pipe.New(c.BlockSize, options...)
	if err != nil {
		return err
	}
	err = p.Run(ctx)
	for name, counters := range metric.GetAll() {
		logger.WithFields(logrus.Fields{"pipe": name}).Debug(counters)
	}
	return err
}
