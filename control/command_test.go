package control_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dudk/mpxgen"
	"github.com/dudk/mpxgen/control"
)

func TestExecute(t *testing.T) {
	tests := []struct {
		line    string
		handled bool
		check   func(*testing.T, mpxgen.Station)
	}{
		{
			line:    "PI 12AB\n",
			handled: true,
			check: func(t *testing.T, s mpxgen.Station) {
				assert.Equal(t, uint16(0x12AB), s.PI)
			},
		},
		{
			line:    "PI 12ABCDEF\n",
			handled: true,
			check: func(t *testing.T, s mpxgen.Station) {
				assert.Equal(t, uint16(0x12AB), s.PI)
			},
		},
		{
			line:    "PI 0x1F\n",
			handled: true,
			check: func(t *testing.T, s mpxgen.Station) {
				assert.Equal(t, uint16(0x001F), s.PI)
			},
		},
		{
			line:    "PI 0X2a\n",
			handled: true,
			check: func(t *testing.T, s mpxgen.Station) {
				assert.Equal(t, uint16(0x002A), s.PI)
			},
		},
		{
			// prefix counts towards the first 4 characters.
			line:    "PI 0x12AB\n",
			handled: true,
			check: func(t *testing.T, s mpxgen.Station) {
				assert.Equal(t, uint16(0x0012), s.PI)
			},
		},
		{
			line:    "PI zz\n",
			handled: true,
			check: func(t *testing.T, s mpxgen.Station) {
				assert.Equal(t, uint16(0xFFFF), s.PI)
			},
		},
		{
			line:    "PS ABCDEFGHIJK\n",
			handled: true,
			check: func(t *testing.T, s mpxgen.Station) {
				assert.Equal(t, "ABCDEFGH", s.PS)
			},
		},
		{
			line:    "RT " + strings.Repeat("x", 80) + "\n",
			handled: true,
			check: func(t *testing.T, s mpxgen.Station) {
				assert.Equal(t, strings.Repeat("x", mpxgen.MaxRT), s.RT)
			},
		},
		{
			line:    "RT Now playing\r\n",
			handled: true,
			check: func(t *testing.T, s mpxgen.Station) {
				assert.Equal(t, "Now playing", s.RT)
			},
		},
		{
			line:    "TA ON\n",
			handled: true,
			check: func(t *testing.T, s mpxgen.Station) {
				assert.True(t, s.TA)
			},
		},
		{
			line:    "TP ON\n",
			handled: true,
			check: func(t *testing.T, s mpxgen.Station) {
				assert.True(t, s.TP)
			},
		},
		{
			line:    "MS ONWARD\n",
			handled: true,
			check: func(t *testing.T, s mpxgen.Station) {
				assert.True(t, s.MS)
			},
		},
		{
			line:    "AB A\n",
			handled: true,
			check: func(t *testing.T, s mpxgen.Station) {
				assert.True(t, s.AB)
			},
		},
		{
			line:    "DI 9\n",
			handled: true,
			check: func(t *testing.T, s mpxgen.Station) {
				assert.Equal(t, uint8(9), s.DI)
			},
		},
		{
			line:    "PTY 10\n",
			handled: true,
			check: func(t *testing.T, s mpxgen.Station) {
				assert.Equal(t, uint8(10), s.PTY)
			},
		},
		{
			line:    "PTY 99\n",
			handled: true,
			check: func(t *testing.T, s mpxgen.Station) {
				assert.Equal(t, uint8(0), s.PTY)
			},
		},
		{
			line:    "RTP 1,2,3,4,5,6\n",
			handled: true,
			check: func(t *testing.T, s mpxgen.Station) {
				assert.Equal(t, mpxgen.RTPlusTag{Type: 1, Start: 2, Length: 3}, s.RTPlus[0])
				assert.Equal(t, mpxgen.RTPlusTag{Type: 4, Start: 5, Length: 6}, s.RTPlus[1])
			},
		},
		{
			line:    "RTP 1,2,3\n",
			handled: true,
			check: func(t *testing.T, s mpxgen.Station) {
				assert.Equal(t, [2]mpxgen.RTPlusTag{}, s.RTPlus)
			},
		},
		{
			line:    "MPX 10,20,30,40,50\n",
			handled: true,
			check: func(t *testing.T, s mpxgen.Station) {
				assert.Equal(t, [mpxgen.NumCarriers]uint{10, 20, 30, 40, 50}, s.Gains)
			},
		},
		{
			line:    "MPX 10,20\n",
			handled: true,
			check: func(t *testing.T, s mpxgen.Station) {
				assert.Equal(t, mpxgen.DefaultStation().Gains, s.Gains)
			},
		},
		{
			line:    "VOL 75\n",
			handled: true,
			check: func(t *testing.T, s mpxgen.Station) {
				assert.Equal(t, uint(75), s.Volume)
			},
		},
		{
			line:    "PPM -12.5\n",
			handled: true,
			check: func(t *testing.T, s mpxgen.Station) {
				assert.Equal(t, -12.5, s.PPM)
			},
		},
		{
			line:    "PPM abc\n",
			handled: true,
			check: func(t *testing.T, s mpxgen.Station) {
				assert.Equal(t, 0.0, s.PPM)
			},
		},
		{
			line:    "RTPF 1,1\n",
			handled: true,
			check: func(t *testing.T, s mpxgen.Station) {
				assert.True(t, s.RTPlusRunning)
				assert.True(t, s.RTPlusToggle)
			},
		},
		{
			line:    "PTYN Jazz\n",
			handled: true,
			check: func(t *testing.T, s mpxgen.Station) {
				assert.Equal(t, "Jazz", s.PTYN)
			},
		},
		{
			line:    "PTYN LongerThan8\n",
			handled: true,
			check: func(t *testing.T, s mpxgen.Station) {
				assert.Equal(t, "LongerTh", s.PTYN)
			},
		},
		{
			line:    "XY hello\n",
			handled: false,
			check: func(t *testing.T, s mpxgen.Station) {
				assert.Equal(t, mpxgen.DefaultStation(), s)
			},
		},
		{
			line:    "PS\n",
			handled: false,
			check: func(t *testing.T, s mpxgen.Station) {
				assert.Equal(t, mpxgen.DefaultStation(), s)
			},
		},
		{
			line:    "PSX name\n",
			handled: false,
			check: func(t *testing.T, s mpxgen.Station) {
				assert.Equal(t, mpxgen.DefaultStation(), s)
			},
		},
	}

	for _, test := range tests {
		t.Run(strings.TrimSpace(test.line), func(t *testing.T) {
			p := mpxgen.NewParams()
			handled := control.Execute(p, test.line)
			assert.Equal(t, test.handled, handled)
			test.check(t, p.Station())
		})
	}
}

func TestFlagCommands(t *testing.T) {
	for _, arg := range []string{"OFF", "on", "X", "O"} {
		p := mpxgen.NewParams()
		p.SetTA(true)
		assert.True(t, control.Execute(p, "TA "+arg+"\n"))
		assert.False(t, p.Station().TA, arg)
	}
}

func TestRTPlusFlagsCoercion(t *testing.T) {
	p := mpxgen.NewParams()
	p.SetRTPlusFlags(true, true)
	assert.True(t, control.Execute(p, "RTPF 2,0\n"))
	s := p.Station()
	assert.False(t, s.RTPlusRunning)
	assert.False(t, s.RTPlusToggle)

	// incomplete flags are ignored.
	p.SetRTPlusFlags(true, true)
	assert.True(t, control.Execute(p, "RTPF 1\n"))
	s = p.Station()
	assert.True(t, s.RTPlusRunning)
	assert.True(t, s.RTPlusToggle)
}

func TestPTYNOff(t *testing.T) {
	p := mpxgen.NewParams()
	p.SetPTYN("Jazz")
	assert.True(t, control.Execute(p, "PTYN OFF\n"))
	assert.Equal(t, "", p.Station().PTYN)
}

func TestPTYUnchangedOnInvalid(t *testing.T) {
	p := mpxgen.NewParams()
	assert.True(t, control.Execute(p, "PTY 12\n"))
	for _, line := range []string{"PTY 32\n", "PTY 99\n", "PTY x\n", "PTY -1\n"} {
		assert.True(t, control.Execute(p, line))
		assert.Equal(t, uint8(12), p.Station().PTY, line)
	}
}

func TestRTPlusOutOfRange(t *testing.T) {
	p := mpxgen.NewParams()
	assert.True(t, control.Execute(p, "RTP 1,2,3,4,5,6\n"))
	assert.True(t, control.Execute(p, "RTP 1,2,300,4,5,6\n"))
	assert.Equal(t, mpxgen.RTPlusTag{Type: 1, Start: 2, Length: 3}, p.Station().RTPlus[0])
}
