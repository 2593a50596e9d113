/*
Package mpxgen is the runtime core of an FM broadcast encoder front end.

Concept

The encoder continuously streams a baseband (multiplex) signal to an audio
sink while broadcast parameters are updated from a control channel. The
work is split into:

    Params - the parameter store, mutated only through setters;
    control - the non-blocking control channel and its command parser;
    pipe - the streaming pipeline that generates, resamples, converts and writes.

Pipeline

The pipeline is built from components, every stage is allocated when the
pipe is initialized:

    p, err := pipe.New(8192,
        pipe.WithGenerator(&mpx.Generator{Params: params}),
        pipe.WithResampler(&resample.Resampler{}),
        pipe.WithSink(&portaudio.Sink{SampleRate: 192000, NumChannels: 2}),
        pipe.WithControl(&control.Channel{Path: "/tmp/rds"}),
        pipe.WithParams(params, mpxgen.DefaultStation()),
    )
    err = p.Run(context.Background())

Each iteration polls one control command, pulls one block from the
generator, resamples it, converts it to 16-bit PCM and writes it to the
sink. Run returns when the generator is drained, the pipe is stopped or
an I/O error occurs.

Control protocol

Commands are newline terminated ASCII lines, one per pipeline iteration:

    PI <hex>     PS <text>    RT <text>     TA ON|OFF    TP ON|OFF
    MS ON|OFF    AB A|B       DI <n>        PTY <0-31>   RTP t,s,l,t,s,l
    MPX g,g,g,g,g             VOL <n>       PPM <float>  RTPF r,t
    PTYN OFF|<text>
*/
package mpxgen
