package mpxgen

import "math"

// Text field limits.
const (
	MaxPS   = 8
	MaxRT   = 64
	MaxPTYN = 8
)

// Numeric field limits.
const (
	MaxDI         = 15
	MaxPTY        = 31
	MaxRTPlusTag  = 63
	MaxVolume     = 100
	MaxGain       = 200
	NumCarriers   = 5
	DefaultVolume = 50
	DefaultGain   = 100
)

// Carrier indices for gain levels.
const (
	CarrierMono = iota
	CarrierPilot
	CarrierStereo
	CarrierRDS
	CarrierRDS2
)

// RTPlusTag describes a RadioText-Plus tag: content type and the substring
// of radio text it points to.
type RTPlusTag struct {
	Type   uint8 `yaml:"type"`
	Start  uint8 `yaml:"start"`
	Length uint8 `yaml:"length"`
}

// Station is a snapshot of all broadcast parameters.
type Station struct {
	PI            uint16            `yaml:"pi"`
	PS            string            `yaml:"ps"`
	RT            string            `yaml:"rt"`
	TA            bool              `yaml:"ta"`
	TP            bool              `yaml:"tp"`
	MS            bool              `yaml:"ms"`
	AB            bool              `yaml:"ab"`
	DI            uint8             `yaml:"di"`
	PTY           uint8             `yaml:"pty"`
	PTYN          string            `yaml:"ptyn"`
	RTPlus        [2]RTPlusTag      `yaml:"rtplus"`
	RTPlusRunning bool              `yaml:"rtplus_running"`
	RTPlusToggle  bool              `yaml:"rtplus_toggle"`
	Gains         [NumCarriers]uint `yaml:"gains"`
	Volume        uint              `yaml:"volume"`
	PPM           float64           `yaml:"ppm"`
}

// DefaultStation returns the parameters a fresh encoder starts with.
func DefaultStation() Station {
	s := Station{
		PI:     0xFFFF,
		PS:     "Mpxgen",
		RT:     "Mpxgen: FM Stereo and RDS encoder",
		Volume: DefaultVolume,
	}
	for i := range s.Gains {
		s.Gains[i] = DefaultGain
	}
	return s
}

// Setter mutates broadcast parameters. Setters never fail: text is
// truncated and out of range numbers are clamped or ignored.
type Setter interface {
	SetPI(pi uint16)
	SetPS(ps string)
	SetRT(rt string)
	SetTA(ta bool)
	SetTP(tp bool)
	SetMS(ms bool)
	SetAB(ab bool)
	SetDI(di uint8)
	SetPTY(pty uint8)
	SetPTYN(ptyn string)
	SetRTPlusTags(tag1, tag2 RTPlusTag)
	SetRTPlusFlags(running, toggle bool)
	SetCarrierGain(carrier int, gain uint)
	SetVolume(volume uint)
	SetPPM(ppm float64)
}

// Params is the parameter store shared by the command parser and the
// baseband generator. It is not safe for concurrent use: the pipeline
// accesses it from a single goroutine.
type Params struct {
	s Station
}

// NewParams returns a store seeded with DefaultStation.
func NewParams() *Params {
	return &Params{s: DefaultStation()}
}

// Station returns a copy of current parameters.
func (p *Params) Station() Station {
	return p.s
}

// Seed applies every field of s through the setters.
func (p *Params) Seed(s Station) {
	p.SetPI(s.PI)
	p.SetPS(s.PS)
	p.SetRT(s.RT)
	p.SetTA(s.TA)
	p.SetTP(s.TP)
	p.SetMS(s.MS)
	p.SetAB(s.AB)
	p.SetDI(s.DI)
	p.SetPTY(s.PTY)
	p.SetPTYN(s.PTYN)
	p.SetRTPlusTags(s.RTPlus[0], s.RTPlus[1])
	p.SetRTPlusFlags(s.RTPlusRunning, s.RTPlusToggle)
	for i, g := range s.Gains {
		p.SetCarrierGain(i, g)
	}
	p.SetVolume(s.Volume)
	p.SetPPM(s.PPM)
}

// SetPI sets program identification code.
func (p *Params) SetPI(pi uint16) { p.s.PI = pi }

// SetPS sets program service name.
func (p *Params) SetPS(ps string) { p.s.PS = truncate(ps, MaxPS) }

// SetRT sets radio text.
func (p *Params) SetRT(rt string) { p.s.RT = truncate(rt, MaxRT) }

// SetTA sets traffic announcement flag.
func (p *Params) SetTA(ta bool) { p.s.TA = ta }

// SetTP sets traffic program flag.
func (p *Params) SetTP(tp bool) { p.s.TP = tp }

// SetMS sets music/speech flag.
func (p *Params) SetMS(ms bool) { p.s.MS = ms }

// SetAB sets group version flag.
func (p *Params) SetAB(ab bool) { p.s.AB = ab }

// SetDI sets decoder information. Values above MaxDI are ignored.
func (p *Params) SetDI(di uint8) {
	if di <= MaxDI {
		p.s.DI = di
	}
}

// SetPTY sets program type. Values above MaxPTY are ignored.
func (p *Params) SetPTY(pty uint8) {
	if pty <= MaxPTY {
		p.s.PTY = pty
	}
}

// SetPTYN sets program type name. Empty name disables it.
func (p *Params) SetPTYN(ptyn string) { p.s.PTYN = truncate(ptyn, MaxPTYN) }

// SetRTPlusTags sets both RT+ tags. Tags with any field above
// MaxRTPlusTag are ignored.
func (p *Params) SetRTPlusTags(tag1, tag2 RTPlusTag) {
	if !validTag(tag1) || !validTag(tag2) {
		return
	}
	p.s.RTPlus = [2]RTPlusTag{tag1, tag2}
}

// SetRTPlusFlags sets RT+ running and toggle flags.
func (p *Params) SetRTPlusFlags(running, toggle bool) {
	p.s.RTPlusRunning = running
	p.s.RTPlusToggle = toggle
}

// SetCarrierGain sets gain of one carrier in percent of nominal level.
// Unknown carriers are ignored, gains are clamped to MaxGain.
func (p *Params) SetCarrierGain(carrier int, gain uint) {
	if carrier < 0 || carrier >= NumCarriers {
		return
	}
	p.s.Gains[carrier] = min(gain, MaxGain)
}

// SetVolume sets output volume in percent, clamped to MaxVolume.
func (p *Params) SetVolume(volume uint) { p.s.Volume = min(volume, MaxVolume) }

// SetPPM sets clock drift correction. Non-finite values are ignored.
func (p *Params) SetPPM(ppm float64) {
	if math.IsNaN(ppm) || math.IsInf(ppm, 0) {
		return
	}
	p.s.PPM = ppm
}

func validTag(t RTPlusTag) bool {
	return t.Type <= MaxRTPlusTag && t.Start <= MaxRTPlusTag && t.Length <= MaxRTPlusTag
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
