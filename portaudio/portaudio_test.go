//go:build portaudio

package portaudio_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dudk/mpxgen"
	"github.com/dudk/mpxgen/log"
	"github.com/dudk/mpxgen/mpx"
	"github.com/dudk/mpxgen/pipe"
	"github.com/dudk/mpxgen/portaudio"
	"github.com/dudk/mpxgen/resample"
)

func TestSink(t *testing.T) {
	params := mpxgen.NewParams()
	sink := &portaudio.Sink{SampleRate: 192000, NumChannels: 2}
	p, err := pipe.New(2280,
		pipe.WithGenerator(&mpx.Generator{Params: params, Logger: log.Discard()}),
		pipe.WithResampler(&resample.Resampler{}),
		pipe.WithSink(sink),
		pipe.WithParams(params, mpxgen.DefaultStation()),
		pipe.WithLogger(log.Discard()),
	)
	assert.Nil(t, err)

	// pilot tone for a second.
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	err = p.Run(ctx)
	assert.Nil(t, err)
}
